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
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// textCell is a run of text positioned in PDF user space (origin bottom-left).
type textCell struct {
	text     string
	box      BoundingBox
	fontSize float64
	fontName string

	// spaceBefore is set when the engine saw an explicit space before the cell.
	spaceBefore bool
}

// pdfPage is the text extracted from one page, independent of the PDF engine.
type pdfPage struct {
	number int
	size   Size
	cells  []textCell
}

// textLine is a set of cells sharing a baseline, left to right.
type textLine struct {
	cells    []textCell
	box      BoundingBox
	fontSize float64
	fontName string
}

// text joins the cells, inserting a space where the engine saw one or where
// the horizontal gap is wider than a fraction of the font size.
func (l *textLine) text() string {
	var b strings.Builder
	var prev *textCell
	for i := range l.cells {
		c := &l.cells[i]
		if prev != nil {
			gap := c.box.L - prev.box.R
			threshold := math.Max(c.fontSize*0.15, 1.0)
			if (c.spaceBefore || gap > threshold) && !strings.HasSuffix(prev.text, " ") && !strings.HasPrefix(c.text, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(c.text)
		prev = c
	}
	return strings.TrimSpace(b.String())
}

// textBlock is a run of consecutive lines that belong to one item.
type textBlock struct {
	lines    []textLine
	box      BoundingBox
	fontSize float64
	fontName string
}

// text joins the lines with spaces, removing end-of-line hyphenation.
func (b *textBlock) text() string {
	var sb strings.Builder
	for _, l := range b.lines {
		t := l.text()
		if t == "" {
			continue
		}
		cur := sb.String()
		switch {
		case cur == "":
		case dehyphenate(cur, t):
			sb.Reset()
			sb.WriteString(strings.TrimSuffix(cur, "-"))
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// code joins the lines keeping line breaks.
func (b *textBlock) code() string {
	lines := make([]string, 0, len(b.lines))
	for _, l := range b.lines {
		lines = append(lines, l.text())
	}
	return strings.Join(lines, "\n")
}

// dehyphenate reports whether prev ends in a word broken by a hyphen that
// next continues.
func dehyphenate(prev, next string) bool {
	if !strings.HasSuffix(prev, "-") || len(prev) < 2 {
		return false
	}
	before, _ := utf8.DecodeLastRuneInString(strings.TrimSuffix(prev, "-"))
	first, _ := utf8.DecodeRuneInString(next)
	return unicode.IsLetter(before) && unicode.IsLower(first)
}

var (
	reBulletItem   = regexp.MustCompile(`^([•◦▪‣∙·●○■□➢►–—*-])\s+(.+)$`)
	reEnumItem     = regexp.MustCompile(`^(\(?\d{1,3}[.)]|\(?[a-z][.)])\s+(.+)$`)
	reCaptionStart = regexp.MustCompile(`^(?i:figure|fig\.|table)\s*\d+`)
	reFootnote     = regexp.MustCompile(`^(\d{1,3}|[*†‡§])\s*\S`)
)

func isListStart(text string) bool {
	return reBulletItem.MatchString(text) || reEnumItem.MatchString(text)
}

// pdfLayout turns extracted pages into labelled document items.
type pdfLayout struct {
	// headerMargin is the fraction of the page height at the top and bottom
	// where short blocks are page furniture.
	headerMargin float64
}

type layoutState struct {
	doc      *Document
	bodySize float64
	title    bool
	list     *GroupItem
}

// build adds every page and its items to doc in reading order.
func (lo pdfLayout) build(doc *Document, pages []pdfPage) {
	lines := make([][]textLine, len(pages))
	for i, p := range pages {
		doc.AddPage(p.number, p.size)
		lines[i] = groupCellsIntoLines(p.cells)
	}

	st := &layoutState{doc: doc, bodySize: detectBodyFontSize(lines)}
	for i, p := range pages {
		for _, b := range splitBlocks(lines[i], st.bodySize) {
			lo.emit(st, p, b)
		}
	}
}

func (lo pdfLayout) emit(st *layoutState, p pdfPage, b textBlock) {
	text := b.text()
	if text == "" {
		return
	}
	doc := st.doc
	prov := &ProvenanceItem{PageNo: p.number, BBox: b.box}

	if label, ok := lo.furniture(p, b); ok {
		doc.AddFurniture(label, text, prov)
		return
	}

	if m := reBulletItem.FindStringSubmatch(text); m != nil {
		st.listItem(m[2], false, m[1], prov)
		return
	}
	if m := reEnumItem.FindStringSubmatch(text); m != nil && !st.heading(b, text) {
		st.listItem(m[2], true, m[1], prov)
		return
	}
	st.list = nil

	if level := st.headingLevel(b, text); level > 0 {
		if level == 1 && !st.title && p.number == 1 {
			st.title = true
			doc.AddTitle(text, nil, prov)
			return
		}
		doc.AddHeading(text, level, nil, prov)
		return
	}

	switch {
	case reCaptionStart.MatchString(text):
		doc.AddText(LabelCaption, text, nil, prov)
	case st.bodySize > 0 && b.fontSize < st.bodySize*0.85 && b.box.T < p.size.Height/2 && reFootnote.MatchString(text):
		doc.AddText(LabelFootnote, text, nil, prov)
	case allCells(b, fontIsMono):
		doc.AddCode(b.code(), "", nil, prov)
	default:
		doc.AddText(LabelText, text, nil, prov)
	}
}

// furniture labels short blocks that lie entirely within the top or bottom margin.
func (lo pdfLayout) furniture(p pdfPage, b textBlock) (DocItemLabel, bool) {
	if lo.headerMargin <= 0 || p.size.Height <= 0 || len(b.lines) > 2 {
		return "", false
	}
	margin := p.size.Height * lo.headerMargin
	switch {
	case b.box.B >= p.size.Height-margin:
		return LabelPageHeader, true
	case b.box.T <= margin:
		return LabelPageFooter, true
	}
	return "", false
}

func (st *layoutState) listItem(text string, enumerated bool, marker string, prov *ProvenanceItem) {
	label := GroupList
	if enumerated {
		label = GroupOrderedList
	}
	if st.list == nil || st.list.Label != label {
		st.list = st.doc.AddGroup(label, "list", nil)
	}
	st.doc.AddListItem(text, enumerated, marker, st.list, prov)
}

func (st *layoutState) heading(b textBlock, text string) bool {
	return st.headingLevel(b, text) > 0
}

// headingLevel returns the section level of a block, or 0 for body text.
// Headings are short blocks set larger than the body, or short bold lines.
func (st *layoutState) headingLevel(b textBlock, text string) int {
	if len(b.lines) > 3 || utf8.RuneCountInString(text) > 200 {
		return 0
	}
	bold := allCells(b, fontIsBold)
	level := headingLevel(b.fontSize, st.bodySize, bold)
	if level == 0 && bold && len(b.lines) == 1 && b.fontSize >= st.bodySize*0.95 && utf8.RuneCountInString(text) < 80 {
		level = 4
	}
	return level
}

// headingLevel maps the font size relative to the body size to a level.
func headingLevel(fontSize, bodySize float64, isBold bool) int {
	if bodySize <= 0 {
		return 0
	}
	ratio := fontSize / bodySize
	switch {
	case ratio >= 2.0:
		return 1
	case ratio >= 1.5:
		return 2
	case ratio >= 1.1:
		if isBold {
			return 3
		}
		return 4
	default:
		return 0
	}
}

// groupCellsIntoLines groups cells by baseline, top of page first.
func groupCellsIntoLines(cells []textCell) []textLine {
	sorted := make([]textCell, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(c.text) != "" {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].box.B != sorted[j].box.B {
			return sorted[i].box.B > sorted[j].box.B
		}
		return sorted[i].box.L < sorted[j].box.L
	})

	var lines []textLine
	for _, c := range sorted {
		merged := false
		for i := range lines {
			tolerance := math.Max(2, math.Max(c.fontSize, lines[i].fontSize)*0.3)
			if math.Abs(lines[i].box.B-c.box.B) < tolerance {
				lines[i].cells = append(lines[i].cells, c)
				lines[i].box = lines[i].box.Union(c.box)
				merged = true
				break
			}
		}
		if !merged {
			lines = append(lines, textLine{cells: []textCell{c}, box: c.box, fontSize: c.fontSize})
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].box.B > lines[j].box.B
	})
	for i := range lines {
		sort.SliceStable(lines[i].cells, func(a, b int) bool {
			return lines[i].cells[a].box.L < lines[i].cells[b].box.L
		})
		lines[i].fontSize, lines[i].fontName = dominantFont(lines[i].cells)
	}
	return lines
}

// splitBlocks groups consecutive lines into blocks. A block ends at a vertical
// gap, a change of font size or weight, or a line that starts a list item or caption.
func splitBlocks(lines []textLine, bodySize float64) []textBlock {
	var blocks []textBlock
	for _, l := range lines {
		if n := len(blocks); n > 0 && continuesBlock(&blocks[n-1], l, bodySize) {
			cur := &blocks[n-1]
			cur.lines = append(cur.lines, l)
			cur.box = cur.box.Union(l.box)
			continue
		}
		blocks = append(blocks, textBlock{
			lines:    []textLine{l},
			box:      l.box,
			fontSize: l.fontSize,
			fontName: l.fontName,
		})
	}
	return blocks
}

func continuesBlock(b *textBlock, l textLine, bodySize float64) bool {
	prev := b.lines[len(b.lines)-1]
	height := prev.box.Height()
	if height <= 0 {
		height = math.Max(prev.fontSize, bodySize)
	}
	if gap := prev.box.B - l.box.T; gap > math.Max(height*0.7, 2) {
		return false
	}
	ref := math.Max(bodySize, 1)
	if math.Abs(prev.fontSize-l.fontSize) > ref*0.1 {
		return false
	}
	if fontIsBold(prev.fontName) != fontIsBold(l.fontName) {
		return false
	}
	text := l.text()
	return !isListStart(text) && !reCaptionStart.MatchString(text)
}

// dominantFont returns the font covering the most characters in a line.
// Ties go to the larger size, then the name.
func dominantFont(cells []textCell) (float64, string) {
	type fontKey struct {
		size float64
		name string
	}
	counts := map[fontKey]int{}
	for _, c := range cells {
		k := fontKey{size: math.Round(c.fontSize*10) / 10, name: c.fontName}
		counts[k] += utf8.RuneCountInString(strings.TrimSpace(c.text))
	}
	var best fontKey
	bestCount := -1
	for k, n := range counts {
		if n > bestCount ||
			(n == bestCount && (k.size > best.size || (k.size == best.size && k.name < best.name))) {
			best, bestCount = k, n
		}
	}
	return best.size, best.name
}

// detectBodyFontSize returns the font size carrying the most characters in
// the document. Ties go to the smaller size.
func detectBodyFontSize(pages [][]textLine) float64 {
	counts := map[float64]int{}
	for _, lines := range pages {
		for _, l := range lines {
			for _, c := range l.cells {
				counts[math.Round(c.fontSize*10)/10] += utf8.RuneCountInString(strings.TrimSpace(c.text))
			}
		}
	}
	var body float64
	best := 0
	for size, n := range counts {
		if n > best || (n == best && size < body) {
			body, best = size, n
		}
	}
	return body
}

func allCells(b textBlock, pred func(string) bool) bool {
	seen := false
	for _, l := range b.lines {
		for _, c := range l.cells {
			if strings.TrimSpace(c.text) == "" {
				continue
			}
			if !pred(c.fontName) {
				return false
			}
			seen = true
		}
	}
	return seen
}

// fontIsBold reports whether the font name suggests bold weight.
func fontIsBold(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "bold") ||
		strings.Contains(lower, "medi") || // e.g. NimbusRomNo9L-Medi
		strings.Contains(lower, "black") ||
		strings.HasSuffix(lower, "-bd") ||
		strings.HasSuffix(lower, "bd")
}

// fontIsMono reports whether the font name suggests a monospace font.
func fontIsMono(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "mono") ||
		strings.Contains(lower, "courier") ||
		strings.Contains(lower, "consola") ||
		strings.HasPrefix(lower, "cmtt") || // Computer Modern Typewriter
		strings.Contains(lower, "typewriter")
}
