//go:build nopdfium

package docling

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Letter size, used when a page has no readable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

func (b *PdfBackend) extractPages(data []byte) ([]pdfPage, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	n := b.pageLimit(reader.NumPage())
	pages := make([]pdfPage, 0, n)
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		page := pdfPage{number: i, size: mediaBoxSize(p.V)}
		if !p.V.IsNull() {
			page.cells = pageCells(p)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// glyphWidthRatio estimates a glyph's advance as a fraction of the font size
// when the font carries no /Widths, as with the standard 14 fonts.
const glyphWidthRatio = 0.55

// pageCells merges the glyphs of a page into words. Y is the baseline.
// Glyphs of fonts without widths are reported without advancing, so they are
// laid out from an estimated cursor instead.
func pageCells(p pdf.Page) []textCell {
	var cells []textCell
	brk, space := true, false
	var cursor, rawX, rawY float64
	for i, t := range p.Content().Text {
		if t.S == "" {
			continue
		}
		x, w := t.X, t.W
		if w == 0 {
			w = float64(utf8.RuneCountInString(t.S)) * t.FontSize * glyphWidthRatio
			if i > 0 && t.X == rawX && t.Y == rawY {
				x = cursor
			}
		}
		rawX, rawY = t.X, t.Y
		cursor = x + w

		if strings.TrimSpace(t.S) == "" {
			brk, space = true, true
			continue
		}
		box := BoundingBox{
			L:           x,
			T:           t.Y + t.FontSize,
			R:           x + w,
			B:           t.Y,
			CoordOrigin: OriginBottomLeft,
		}
		if n := len(cells); n > 0 {
			last := &cells[n-1]
			if !brk && last.fontName == t.Font && last.box.B == t.Y &&
				x-last.box.R < t.FontSize*0.15 && x >= last.box.L {
				last.text += t.S
				last.box = last.box.Union(box)
				continue
			}
		}
		cells = append(cells, textCell{
			text:        t.S,
			box:         box,
			fontSize:    t.FontSize,
			fontName:    t.Font,
			spaceBefore: space,
		})
		brk, space = false, false
	}
	return cells
}

// mediaBoxSize reads the page MediaBox, following inherited values up the page tree.
func mediaBoxSize(v pdf.Value) Size {
	for node := v; !node.IsNull(); node = node.Key("Parent") {
		box := node.Key("MediaBox")
		if box.Len() == 4 {
			return Size{
				Width:  box.Index(2).Float64() - box.Index(0).Float64(),
				Height: box.Index(3).Float64() - box.Index(1).Float64(),
			}
		}
	}
	return Size{Width: defaultPageWidth, Height: defaultPageHeight}
}
