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
	"io"
	"log/slog"
	"strings"
)

// PdfBackend handles PDF files. The text engine is chosen at build time:
// PDFium via WebAssembly by default, a pure Go reader with the nopdfium tag.
type PdfBackend struct {
	opts   PdfOptions
	logger *slog.Logger
}

// NewPdfBackend creates a new PdfBackend.
func NewPdfBackend(opts PdfOptions, logger *slog.Logger) *PdfBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PdfBackend{opts: opts, logger: logger}
}

func (b *PdfBackend) Accepts(info StreamInfo) bool {
	if info.Extension == ".pdf" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(info.MIMEType), "application/pdf")
}

func (b *PdfBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	pages, err := b.extractPages(data)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("extracted PDF text", "pages", len(pages))

	doc := NewDocument(info.stem())
	pdfLayout{headerMargin: b.opts.HeaderMargin}.build(doc, pages)
	return doc, nil
}

// pageLimit returns how many of total pages to read.
func (b *PdfBackend) pageLimit(total int) int {
	if b.opts.MaxPages > 0 && b.opts.MaxPages < total {
		return b.opts.MaxPages
	}
	return total
}
