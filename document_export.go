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
)

// ExportToMarkdown renders the body tree as Markdown.
func (d *Document) ExportToMarkdown() string {
	w := &exportWriter{doc: d}
	w.children(d.Body)
	return normalizeOutput(strings.Join(w.blocks, "\n\n"))
}

// ExportToText renders the body tree as plain text: no heading marks, no
// fences, tables as tab-separated rows.
func (d *Document) ExportToText() string {
	w := &exportWriter{doc: d, plain: true}
	w.children(d.Body)
	return normalizeOutput(strings.Join(w.blocks, "\n\n"))
}

type exportWriter struct {
	doc    *Document
	plain  bool
	blocks []string
}

func (w *exportWriter) children(n Node) {
	for _, ref := range n.node().Children {
		if c := w.doc.Resolve(ref); c != nil {
			w.item(c)
		}
	}
}

func (w *exportWriter) item(n Node) {
	switch it := n.(type) {
	case *GroupItem:
		if isListGroup(it.Label) {
			if lines := w.list(it, 0); len(lines) > 0 {
				w.blocks = append(w.blocks, strings.Join(lines, "\n"))
			}
			return
		}
		w.children(it)
	case *TextItem:
		if s := w.text(it); s != "" {
			w.blocks = append(w.blocks, s)
		}
		w.children(it)
	case *TableItem:
		if s := w.table(it.Data); s != "" {
			w.blocks = append(w.blocks, s)
		}
		w.children(it)
	case *PictureItem:
		if !w.plain {
			if it.Image != nil && it.Image.URI != "" {
				w.blocks = append(w.blocks, fmt.Sprintf("![Image](%s)", it.Image.URI))
			} else {
				w.blocks = append(w.blocks, "<!-- image -->")
			}
		}
		w.children(it)
	}
}

func (w *exportWriter) text(t *TextItem) string {
	if t.Text == "" {
		return ""
	}
	if w.plain {
		return t.Text
	}
	switch t.Label {
	case LabelTitle:
		return "# " + t.Text
	case LabelSectionHeader:
		return strings.Repeat("#", min(t.Level+1, 6)) + " " + t.Text
	case LabelCode:
		lang := t.CodeLanguage
		return "```" + lang + "\n" + t.Text + "\n```"
	case LabelFormula:
		return "$$" + t.Text + "$$"
	case LabelCaption:
		return "*" + t.Text + "*"
	}
	if t.Hyperlink != "" {
		return fmt.Sprintf("[%s](%s)", t.Text, t.Hyperlink)
	}
	return t.Text
}

func isListGroup(l GroupLabel) bool {
	return l == GroupList || l == GroupOrderedList
}

// list renders a list group and the lists nested in it, one line per item.
func (w *exportWriter) list(g *GroupItem, level int) []string {
	var lines []string
	indent := strings.Repeat("    ", level)
	n := 0
	for _, ref := range g.Children {
		switch c := w.doc.Resolve(ref).(type) {
		case *TextItem:
			n++
			marker := "-"
			if c.Enumerated || g.Label == GroupOrderedList {
				marker = fmt.Sprintf("%d.", n)
			}
			lines = append(lines, indent+marker+" "+c.Text)
			for _, sub := range c.Children {
				if sg, ok := w.doc.Resolve(sub).(*GroupItem); ok && isListGroup(sg.Label) {
					lines = append(lines, w.list(sg, level+1)...)
				}
			}
		case *GroupItem:
			if isListGroup(c.Label) {
				lines = append(lines, w.list(c, level+1)...)
			}
		}
	}
	return lines
}

func (w *exportWriter) table(t TableData) string {
	grid := t.Grid()
	if len(grid) == 0 || t.NumCols == 0 {
		return ""
	}
	var b strings.Builder
	for r, row := range grid {
		cells := make([]string, len(row))
		for c, cell := range row {
			cells[c] = strings.ReplaceAll(cell.Text, "|", `\|`)
		}
		if w.plain {
			b.WriteString(strings.Join(cells, "\t"))
			b.WriteString("\n")
			continue
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		if r == 0 {
			b.WriteString("|" + strings.Repeat(" --- |", len(row)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// HeadingBox is a heading's rectangle measured from the top-left page corner.
type HeadingBox struct {
	X, Y, W, H float64
}

// Heading is one entry of the document outline.
type Heading struct {
	Title string
	Level int
	Page  int
	BBox  HeadingBox
}

// ToDict exports the heading as an ordered mapping.
func (h Heading) ToDict() Dict {
	box := newDict()
	box.Set("x", h.BBox.X)
	box.Set("y", h.BBox.Y)
	box.Set("w", h.BBox.W)
	box.Set("h", h.BBox.H)

	m := newDict()
	m.Set("title", h.Title)
	m.Set("level", h.Level)
	m.Set("page", h.Page)
	m.Set("bbox", box)
	return m
}

// Headings lists the title and section headers of the body in reading order.
// A title reports level 1; items without provenance report page 1 and a zero box.
func (d *Document) Headings() []Heading {
	var out []Heading
	d.Walk(func(n Node, _ int) bool {
		t, ok := n.(*TextItem)
		if !ok || (t.Label != LabelTitle && t.Label != LabelSectionHeader) {
			return true
		}
		title := strings.TrimSpace(t.Text)
		if title == "" {
			return true
		}
		h := Heading{Title: title, Level: 1, Page: 1}
		if t.Label == LabelSectionHeader {
			h.Level = t.Level
		}
		if len(t.Prov) > 0 {
			p := t.Prov[0]
			h.Page = p.PageNo
			box := p.BBox
			if page, ok := d.Pages[p.PageNo]; ok {
				box = box.ToTopLeft(page.Size.Height)
			}
			h.BBox = HeadingBox{X: box.L, Y: box.T, W: box.Width(), H: box.Height()}
		}
		out = append(out, h)
		return true
	})
	return out
}
