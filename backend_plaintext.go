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
	"fmt"
	"io"
	"regexp"
	"strings"
)

var reBlankLines = regexp.MustCompile(`\n[ \t]*\n`)

// PlainTextBackend handles plain text, JSON and JSONL files.
type PlainTextBackend struct{}

// NewPlainTextBackend creates a new PlainTextBackend.
func NewPlainTextBackend() *PlainTextBackend {
	return &PlainTextBackend{}
}

func (b *PlainTextBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info,
		[]string{".txt", ".text", ".json", ".jsonl", ".log"},
		[]string{"text/", "application/json", "application/jsonl"})
}

func (b *PlainTextBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	text := decodeText(data, info.Charset)
	doc := NewDocument(info.stem())

	if isJSONInput(info) {
		if strings.TrimSpace(text) != "" {
			doc.AddCode(text, "json", nil, nil)
		}
		return doc, nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, para := range reBlankLines.Split(text, -1) {
		if strings.TrimSpace(para) == "" {
			continue
		}
		doc.AddText(LabelText, para, nil, nil)
	}
	return doc, nil
}

func isJSONInput(info StreamInfo) bool {
	switch strings.ToLower(info.Extension) {
	case ".json", ".jsonl":
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "application/json")
}
