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
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// HTMLBackend handles HTML and XHTML files.
type HTMLBackend struct {
	c *DocumentConverter
}

// NewHTMLBackend creates a new HTMLBackend.
func NewHTMLBackend(c *DocumentConverter) *HTMLBackend {
	return &HTMLBackend{c: c}
}

func (b *HTMLBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".html", ".htm", ".xhtml"}, []string{"text/html", "application/xhtml"})
}

func (b *HTMLBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	doc := NewDocument(info.stem())
	if err := b.appendTo(doc, nil, decodeHTML(data, info.Charset)); err != nil {
		return nil, err
	}
	return doc, nil
}

// appendTo parses an HTML page and appends its content under parent.
func (b *HTMLBackend) appendTo(doc *Document, parent Node, page string) error {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("parse HTML: %w", err)
	}
	w := &htmlWalker{doc: doc, keepURIs: b.c.keepDataURIs, hasTitle: hasTitle(doc)}
	w.blocks(root, parent)
	w.flush(parent)
	return nil
}

// decodeHTML honours a declared charset, then a BOM or <meta> declaration, then detection.
func decodeHTML(data []byte, declared string) string {
	if declared != "" {
		return decodeText(data, declared)
	}
	// windows-1252 without certainty is the sniffer's fallback, not a declaration.
	if enc, name, certain := charset.DetermineEncoding(data, "text/html"); certain || name != "windows-1252" {
		if s, ok := decodeWith(enc, data); ok {
			return s
		}
	}
	return decodeText(data, "")
}

func hasTitle(doc *Document) bool {
	for _, t := range doc.Texts {
		if t.Label == LabelTitle {
			return true
		}
	}
	return false
}

type htmlWalker struct {
	doc      *Document
	keepURIs bool
	hasTitle bool
	// pending collects loose inline text between block elements.
	pending strings.Builder
}

var skippedElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Svg: true, atom.Iframe: true, atom.Object: true,
	atom.Button: true, atom.Select: true, atom.Input: true,
}

var inlineElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Bdi: true, atom.Bdo: true,
	atom.Cite: true, atom.Code: true, atom.Data: true, atom.Dfn: true, atom.Em: true,
	atom.I: true, atom.Kbd: true, atom.Mark: true, atom.Q: true, atom.S: true,
	atom.Samp: true, atom.Small: true, atom.Span: true, atom.Strong: true,
	atom.Sub: true, atom.Sup: true, atom.Time: true, atom.U: true, atom.Var: true,
	atom.Br: true, atom.Label: true, atom.Font: true, atom.Del: true, atom.Ins: true,
}

func (w *htmlWalker) blocks(n *html.Node, parent Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c, parent)
	}
}

func (w *htmlWalker) node(n *html.Node, parent Node) {
	switch n.Type {
	case html.TextNode:
		w.pending.WriteString(n.Data)
		return
	case html.DocumentNode:
		w.blocks(n, parent)
		return
	case html.ElementNode:
	default:
		return
	}
	if skippedElements[n.DataAtom] {
		return
	}
	if inlineElements[n.DataAtom] {
		if n.DataAtom == atom.Br {
			w.pending.WriteByte(' ')
			return
		}
		if hasImage(n) {
			w.flush(parent)
			w.images(n, parent)
			return
		}
		w.pending.WriteString(textContent(n))
		return
	}

	w.flush(parent)
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		t := textContent(n)
		if strings.TrimSpace(t) == "" {
			return
		}
		level := int(n.Data[1] - '0')
		if level == 1 && !w.hasTitle {
			w.doc.AddTitle(t, parent, nil)
			w.hasTitle = true
		} else {
			w.doc.AddHeading(t, max(level-1, 1), parent, nil)
		}
	case atom.P, atom.Address, atom.Summary, atom.Dt, atom.Dd, atom.Legend:
		w.images(n, parent)
		if t := textContent(n); strings.TrimSpace(t) != "" {
			item := w.doc.AddText(LabelText, t, parent, nil)
			item.Hyperlink = soleLink(n)
		}
	case atom.Ul, atom.Ol:
		w.list(n, parent)
	case atom.Pre:
		w.doc.AddCode(rawText(n), codeLanguage(n), parent, nil)
	case atom.Table:
		w.table(n, parent)
	case atom.Figure:
		w.figure(n, parent)
	case atom.Img:
		w.picture(n, parent)
	case atom.Hr:
	default:
		w.blocks(n, parent)
		w.flush(parent)
	}
}

// flush turns pending loose text into a paragraph.
func (w *htmlWalker) flush(parent Node) {
	t := w.pending.String()
	w.pending.Reset()
	if strings.TrimSpace(t) != "" {
		w.doc.AddText(LabelText, t, parent, nil)
	}
}

func (w *htmlWalker) list(n *html.Node, parent Node) {
	label := GroupList
	ordered := n.DataAtom == atom.Ol
	if ordered {
		label = GroupOrderedList
	}
	g := w.doc.AddGroup(label, "list", parent)
	num := 1
	if s := attr(n, "start"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			num = v
		}
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		marker := "-"
		if ordered {
			marker = strconv.Itoa(num) + "."
			num++
		}
		var own strings.Builder
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, c)
				continue
			}
			own.WriteString(textOf(c))
			own.WriteByte(' ')
		}
		item := w.doc.AddListItem(own.String(), ordered, marker, g, nil)
		for _, sub := range nested {
			w.list(sub, item)
		}
	}
}

func (w *htmlWalker) figure(n *html.Node, parent Node) {
	var pics []*PictureItem
	var caption string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch c.DataAtom {
			case atom.Img:
				pics = append(pics, w.picture(c, parent))
				return
			case atom.Figcaption:
				caption = textContent(c)
				return
			case atom.Table:
				w.table(c, parent)
				return
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	if len(pics) > 0 && strings.TrimSpace(caption) != "" {
		w.doc.AddCaption(pics[0], caption, nil)
	}
}

func (w *htmlWalker) picture(img *html.Node, parent Node) *PictureItem {
	return w.doc.AddPicture(imageFromSource(attr(img, "src"), w.keepURIs), parent, nil)
}

// images emits pictures for every <img> below n.
func (w *htmlWalker) images(n *html.Node, parent Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Img {
			w.picture(c, parent)
			continue
		}
		w.images(c, parent)
	}
}

func (w *htmlWalker) table(n *html.Node, parent Node) {
	var rows []*html.Node
	var caption string
	var collect func(*html.Node, bool)
	headRows := map[*html.Node]bool{}
	collect = func(c *html.Node, inHead bool) {
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			if cc.Type != html.ElementNode {
				continue
			}
			switch cc.DataAtom {
			case atom.Tr:
				rows = append(rows, cc)
				if inHead {
					headRows[cc] = true
				}
			case atom.Thead:
				collect(cc, true)
			case atom.Tbody, atom.Tfoot:
				collect(cc, false)
			case atom.Caption:
				caption = textContent(cc)
			}
		}
	}
	collect(n, false)
	if len(rows) == 0 {
		return
	}

	var data TableData
	occupied := map[[2]int]bool{}
	for r, tr := range rows {
		col := 0
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.DataAtom != atom.Td && td.DataAtom != atom.Th) {
				continue
			}
			for occupied[[2]int{r, col}] {
				col++
			}
			rowSpan := spanAttr(td, "rowspan")
			colSpan := spanAttr(td, "colspan")
			isTh := td.DataAtom == atom.Th
			cell := TableCell{
				Text:         normalizeText(textContent(td)),
				StartRow:     r,
				EndRow:       min(r+rowSpan, len(rows)),
				StartCol:     col,
				EndCol:       col + colSpan,
				ColumnHeader: headRows[tr] || (isTh && r == 0),
				RowHeader:    isTh && !headRows[tr] && r > 0,
			}
			cell.RowSpan = cell.EndRow - cell.StartRow
			cell.ColSpan = colSpan
			for rr := cell.StartRow; rr < cell.EndRow; rr++ {
				for cc := cell.StartCol; cc < cell.EndCol; cc++ {
					occupied[[2]int{rr, cc}] = true
				}
			}
			data.Cells = append(data.Cells, cell)
			data.NumCols = max(data.NumCols, cell.EndCol)
			col += colSpan
		}
	}
	data.NumRows = len(rows)

	t := w.doc.AddTable(data, parent, nil)
	if strings.TrimSpace(caption) != "" {
		w.doc.AddCaption(t, caption, nil)
	}
}

func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(attr(n, key)))
	if err != nil || v < 1 {
		return 1
	}
	return min(v, 1000)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasImage(n *html.Node) bool {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasImage(c) {
			return true
		}
	}
	return false
}

// soleLink returns the href when a paragraph is a single link.
func soleLink(n *html.Node) string {
	var link *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == html.ElementNode && c.DataAtom == atom.A && link == nil:
			link = c
		default:
			return ""
		}
	}
	if link == nil {
		return ""
	}
	return attr(link, "href")
}

// textContent is the visible text below n with block boundaries as spaces.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			return
		case html.ElementNode:
			if skippedElements[c.DataAtom] {
				return
			}
			if c.DataAtom == atom.Br {
				sb.WriteByte(' ')
				return
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
		if c.Type == html.ElementNode && !inlineElements[c.DataAtom] {
			sb.WriteByte(' ')
		}
	}
	walk(n)
	return sb.String()
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	return textContent(n)
}

// rawText keeps whitespace, for <pre>.
func rawText(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			buf.WriteByte('\n')
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return buf.String()
}

// codeLanguage reads a "language-xxx" class from <pre> or its <code> child.
func codeLanguage(pre *html.Node) string {
	nodes := []*html.Node{pre}
	if c := pre.FirstChild; c != nil && c.Type == html.ElementNode && c.DataAtom == atom.Code {
		nodes = append(nodes, c)
	}
	for _, n := range nodes {
		for _, class := range strings.Fields(attr(n, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				return lang
			}
			if lang, ok := strings.CutPrefix(class, "lang-"); ok {
				return lang
			}
		}
	}
	return ""
}
