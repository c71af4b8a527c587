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
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// IpynbBackend handles Jupyter notebooks. Markdown cells go through the
// Markdown backend; code cells and their text outputs become code items.
type IpynbBackend struct {
	markdown *MarkdownBackend
}

// NewIpynbBackend creates a new IpynbBackend.
func NewIpynbBackend(c *DocumentConverter) *IpynbBackend {
	return &IpynbBackend{markdown: NewMarkdownBackend(c)}
}

func (b *IpynbBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".ipynb"}, []string{"application/x-ipynb+json"})
}

type notebook struct {
	Metadata struct {
		Title      string `json:"title"`
		KernelSpec *struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo *struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
	Outputs  []cellOutput    `json:"outputs"`
}

type cellOutput struct {
	OutputType string                     `json:"output_type"`
	Text       json.RawMessage            `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
}

func (b *IpynbBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("parse notebook JSON: %w", err)
	}

	language := "python"
	switch {
	case nb.Metadata.KernelSpec != nil && nb.Metadata.KernelSpec.Language != "":
		language = nb.Metadata.KernelSpec.Language
	case nb.Metadata.LanguageInfo != nil && nb.Metadata.LanguageInfo.Name != "":
		language = nb.Metadata.LanguageInfo.Name
	}

	doc := NewDocument(info.stem())
	if nb.Metadata.Title != "" {
		doc.AddTitle(nb.Metadata.Title, nil, nil)
	}

	for _, cell := range nb.Cells {
		source := joinSource(cell.Source)
		if strings.TrimSpace(source) == "" && len(cell.Outputs) == 0 {
			continue
		}
		switch cell.CellType {
		case "markdown":
			b.markdown.appendTo(doc, nil, []byte(source))
		case "code":
			if strings.TrimSpace(source) != "" {
				doc.AddCode(source, language, nil, nil)
			}
			for _, out := range cell.Outputs {
				if text := outputText(out); text != "" {
					doc.AddCode(text, "", nil, nil)
				}
			}
		case "raw":
			doc.AddCode(source, "", nil, nil)
		}
	}
	return doc, nil
}

// joinSource reads a cell source, which is either a string or a list of lines.
func joinSource(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return strings.Join(lines, "")
	}
	return ""
}

// outputText returns the stream text or text/plain data of an output.
func outputText(out cellOutput) string {
	if out.Text != nil {
		if text := joinSource(out.Text); text != "" {
			return strings.TrimRight(text, "\n")
		}
	}
	if raw, ok := out.Data["text/plain"]; ok {
		return strings.TrimRight(joinSource(raw), "\n")
	}
	return ""
}
