//go:build !nopdfium

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
	"strings"
	"sync"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/responses"
	"github.com/klippa-app/go-pdfium/webassembly"
)

var (
	pdfiumPool     pdfium.Pool
	pdfiumPoolOnce sync.Once
	pdfiumPoolErr  error
)

func initPdfiumPool() {
	pdfiumPool, pdfiumPoolErr = webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
}

func (b *PdfBackend) extractPages(data []byte) ([]pdfPage, error) {
	pdfiumPoolOnce.Do(initPdfiumPool)
	if pdfiumPoolErr != nil {
		return nil, fmt.Errorf("init pdfium: %w", pdfiumPoolErr)
	}

	instance, err := pdfiumPool.GetInstance(30 * time.Second)
	if err != nil {
		return nil, fmt.Errorf("get pdfium instance: %w", err)
	}
	defer instance.Close()

	doc, err := instance.OpenDocument(&requests.OpenDocument{
		File: &data,
	})
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	defer instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCountResp, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, fmt.Errorf("get page count: %w", err)
	}

	n := b.pageLimit(pageCountResp.PageCount)
	pages := make([]pdfPage, 0, n)
	for i := 0; i < n; i++ {
		page, err := b.extractPage(instance, doc, i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (b *PdfBackend) extractPage(instance pdfium.Pdfium, doc *responses.OpenDocument, pageIdx int) (pdfPage, error) {
	ref := requests.Page{
		ByIndex: &requests.PageByIndex{
			Document: doc.Document,
			Index:    pageIdx,
		},
	}
	page := pdfPage{number: pageIdx + 1}

	size, err := instance.GetPageSize(&requests.GetPageSize{Page: ref})
	if err != nil {
		return page, fmt.Errorf("get page size: %w", err)
	}
	page.size = Size{Width: size.Width, Height: size.Height}

	structured, err := instance.GetPageTextStructured(&requests.GetPageTextStructured{
		Page:                   ref,
		Mode:                   requests.GetPageTextStructuredModeRects,
		CollectFontInformation: true,
	})
	if err != nil {
		// Pages without a text layer still count.
		b.logger.Debug("no structured text", "page", page.number, "error", err)
		return page, nil
	}

	for _, r := range structured.Rects {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		c := textCell{
			text: r.Text,
			box: BoundingBox{
				L:           r.PointPosition.Left,
				T:           r.PointPosition.Top,
				R:           r.PointPosition.Right,
				B:           r.PointPosition.Bottom,
				CoordOrigin: OriginBottomLeft,
			},
		}
		if r.FontInformation != nil {
			c.fontSize = r.FontInformation.Size
			c.fontName = r.FontInformation.Name
		}
		if c.fontSize == 0 {
			c.fontSize = c.box.Height()
		}
		page.cells = append(page.cells, c)
	}
	return page, nil
}
