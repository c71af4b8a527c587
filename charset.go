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

package docling

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts data to a UTF-8 string. A declared charset wins when it
// decodes cleanly; otherwise the encoding is detected.
func decodeText(data []byte, declared string) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if declared != "" {
		if enc := lookupEncoding(declared); enc != nil {
			if s, ok := decodeWith(enc, data); ok {
				return s
			}
		}
	}
	return decodeWithDetection(data)
}

// decodeWithDetection detects the encoding of data and decodes it to UTF-8.
func decodeWithDetection(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	results, err := chardet.NewTextDetector().DetectAll(data)
	if err == nil {
		// Results come sorted by confidence; take the first that decodes
		// without replacement characters.
		for _, r := range results {
			enc := lookupEncoding(r.Charset)
			if enc == nil {
				continue
			}
			if s, ok := decodeWith(enc, data); ok {
				return s
			}
		}
	}

	return strings.ToValidUTF8(string(data), "�")
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	return s, !strings.ContainsRune(s, utf8.RuneError)
}

// lookupEncoding maps a charset label (IANA or chardet name) to an encoding.
func lookupEncoding(charset string) encoding.Encoding {
	name := strings.ToLower(strings.TrimSpace(charset))
	// chardet and Python codec names htmlindex does not know.
	switch name {
	case "gb-18030":
		name = "gb18030"
	case "cp932":
		name = "shift_jis"
	case "utf-32le", "utf-32be":
		return nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil
	}
	return enc
}
