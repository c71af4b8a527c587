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

package cli

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.yaml.in/yaml/v3"

	docling "github.com/nicholasgasior/docling-go"
	"github.com/nicholasgasior/docling-go/internal/config"
	"github.com/nicholasgasior/docling-go/internal/pyjson"
)

// render writes doc in the configured output format.
func render(w io.Writer, doc *docling.Document, out config.OutputConfig) error {
	switch out.Format {
	case "yaml":
		return writeYAML(w, doc.ToDict())
	case "markdown":
		_, err := fmt.Fprintln(w, doc.ExportToMarkdown())
		return err
	case "text":
		_, err := fmt.Fprintln(w, doc.ExportToText())
		return err
	case "headings":
		headings := doc.Headings()
		list := make([]any, len(headings))
		for i, h := range headings {
			list[i] = h.ToDict()
		}
		return writeJSON(w, list, out.Compact)
	default:
		return writeJSON(w, doc.ToDict(), out.Compact)
	}
}

// writeJSON writes v as one line of JSON followed by a newline.
func writeJSON(w io.Writer, v any, compact bool) error {
	if err := pyjson.Encode(w, v, pyjson.Options{Compact: compact}); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	node, err := yamlNode(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}

// yamlNode builds a node tree so mapping keys keep their insertion order.
func yamlNode(v any) (*yaml.Node, error) {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch t := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case string:
		return scalar("!!str", t), nil
	case int:
		return scalar("!!int", strconv.Itoa(t)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(t, 10)), nil
	case uint64:
		return scalar("!!int", strconv.FormatUint(t, 10)), nil
	case float64:
		switch {
		case math.IsNaN(t):
			return scalar("!!float", ".nan"), nil
		case math.IsInf(t, 1):
			return scalar("!!float", ".inf"), nil
		case math.IsInf(t, -1):
			return scalar("!!float", "-.inf"), nil
		}
		return scalar("!!float", pyjson.FormatFloat(t)), nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			n, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			seq.Content = append(seq.Content, scalar("!!str", item))
		}
		return seq, nil
	case *orderedmap.OrderedMap[string, any]:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			n, err := yamlNode(pair.Value)
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, scalar("!!str", pair.Key), n)
		}
		return m, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			n, err := yamlNode(t[k])
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content, scalar("!!str", k), n)
		}
		return m, nil
	}
	return nil, fmt.Errorf("encode YAML: unsupported type %T", v)
}
