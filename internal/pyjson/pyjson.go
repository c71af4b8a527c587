// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package pyjson writes JSON in the layout of Python's json.dumps defaults:
// ", " and ": " separators, ASCII-only output with \uXXXX escapes, floats
// always carrying a fraction or exponent, and mapping keys in insertion order.
package pyjson

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Options controls the output layout.
type Options struct {
	// Compact drops the space after "," and ":".
	Compact bool
}

// UnsupportedTypeError is returned for values the encoder cannot represent.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("pyjson: unsupported type %T", e.Value)
}

// Marshal returns the encoding of v without a trailing newline.
func Marshal(v any, opts Options) ([]byte, error) {
	e := newEncoder(opts)
	if err := e.value(v); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// Encode writes the encoding of v followed by a newline.
func Encode(w io.Writer, v any, opts Options) error {
	b, err := Marshal(v, opts)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

type encoder struct {
	buf     bytes.Buffer
	itemSep string
	keySep  string
}

func newEncoder(opts Options) *encoder {
	e := &encoder{itemSep: ", ", keySep: ": "}
	if opts.Compact {
		e.itemSep, e.keySep = ",", ":"
	}
	return e
}

func (e *encoder) value(v any) error {
	switch x := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		if x {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case string:
		e.string(x)
	case int:
		e.buf.WriteString(strconv.Itoa(x))
	case int32:
		e.buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		e.buf.WriteString(strconv.FormatInt(x, 10))
	case uint32:
		e.buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		e.buf.WriteString(strconv.FormatUint(x, 10))
	case float32:
		e.buf.WriteString(FormatFloat(float64(x)))
	case float64:
		e.buf.WriteString(FormatFloat(x))
	case []any:
		return e.list(len(x), func(i int) any { return x[i] })
	case []string:
		return e.list(len(x), func(i int) any { return x[i] })
	case *orderedmap.OrderedMap[string, any]:
		return e.ordered(x)
	case map[string]any:
		return e.mapping(x)
	default:
		return &UnsupportedTypeError{Value: v}
	}
	return nil
}

func (e *encoder) list(n int, at func(int) any) error {
	e.buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			e.buf.WriteString(e.itemSep)
		}
		if err := e.value(at(i)); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) ordered(m *orderedmap.OrderedMap[string, any]) error {
	if m == nil {
		e.buf.WriteString("null")
		return nil
	}
	e.buf.WriteByte('{')
	first := true
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			e.buf.WriteString(e.itemSep)
		}
		first = false
		e.string(pair.Key)
		e.buf.WriteString(e.keySep)
		if err := e.value(pair.Value); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

// mapping writes a plain map with sorted keys since Go maps have no order.
func (e *encoder) mapping(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			e.buf.WriteString(e.itemSep)
		}
		e.string(k)
		e.buf.WriteString(e.keySep)
		if err := e.value(m[k]); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

const hex = "0123456789abcdef"

func (e *encoder) string(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == '"':
			e.buf.WriteString(`\"`)
		case r == '\\':
			e.buf.WriteString(`\\`)
		case r == '\n':
			e.buf.WriteString(`\n`)
		case r == '\r':
			e.buf.WriteString(`\r`)
		case r == '\t':
			e.buf.WriteString(`\t`)
		case r == '\b':
			e.buf.WriteString(`\b`)
		case r == '\f':
			e.buf.WriteString(`\f`)
		case r >= 0x20 && r < 0x7f:
			e.buf.WriteByte(byte(r))
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			e.escape(r1)
			e.escape(r2)
		default:
			e.escape(r)
		}
	}
	e.buf.WriteByte('"')
}

func (e *encoder) escape(r rune) {
	e.buf.WriteString(`\u`)
	e.buf.WriteByte(hex[r>>12&0xf])
	e.buf.WriteByte(hex[r>>8&0xf])
	e.buf.WriteByte(hex[r>>4&0xf])
	e.buf.WriteByte(hex[r&0xf])
}

// FormatFloat formats f like Python's float repr: the shortest round-trip
// digits, fixed notation for decimal exponents in [-4, 16), scientific
// notation otherwise, and always a ".0" on integral fixed values.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if f == 0 {
		exp = 0
	}
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
