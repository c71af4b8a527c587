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
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownBackend parses Markdown (CommonMark + GFM tables) into a Document.
type MarkdownBackend struct {
	c  *DocumentConverter
	md goldmark.Markdown
}

// NewMarkdownBackend creates a new MarkdownBackend.
func NewMarkdownBackend(c *DocumentConverter) *MarkdownBackend {
	return &MarkdownBackend{
		c:  c,
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (b *MarkdownBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".md", ".markdown"}, []string{"text/markdown", "text/x-markdown", "application/markdown"})
}

func (b *MarkdownBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	doc := NewDocument(info.stem())
	b.appendTo(doc, nil, []byte(decodeText(data, info.Charset)))
	return doc, nil
}

// appendTo parses src and appends its blocks under parent. Feeds and notebooks
// reuse it for their Markdown bodies.
func (b *MarkdownBackend) appendTo(doc *Document, parent Node, src []byte) {
	root := b.md.Parser().Parse(text.NewReader(src))
	w := &mdWalker{doc: doc, src: src, keepURIs: b.c.keepDataURIs}
	w.blocks(root, parent)
}

type mdWalker struct {
	doc      *Document
	src      []byte
	keepURIs bool
}

func (w *mdWalker) blocks(n ast.Node, parent Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c, parent)
	}
}

func (w *mdWalker) block(n ast.Node, parent Node) {
	switch n := n.(type) {
	case *ast.Heading:
		t := w.inline(n)
		if t == "" {
			return
		}
		if n.Level == 1 {
			w.doc.AddTitle(t, parent, nil)
		} else {
			w.doc.AddHeading(t, n.Level-1, parent, nil)
		}
	case *ast.Paragraph, *ast.TextBlock:
		w.pictures(n, parent)
		if t := w.inline(n); t != "" {
			w.doc.AddText(LabelText, t, parent, nil)
		}
	case *ast.List:
		w.list(n, parent)
	case *ast.FencedCodeBlock:
		lang := string(n.Language(w.src))
		w.doc.AddCode(w.lines(n), lang, parent, nil)
	case *ast.CodeBlock:
		w.doc.AddCode(w.lines(n), "", parent, nil)
	case *ast.Blockquote:
		w.blocks(n, parent)
	case *east.Table:
		w.table(n, parent)
	}
}

func (w *mdWalker) list(l *ast.List, parent Node) {
	label := GroupList
	if l.IsOrdered() {
		label = GroupOrderedList
	}
	g := w.doc.AddGroup(label, "list", parent)
	num := l.Start
	if num == 0 {
		num = 1
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := string(l.Marker)
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d%c", num, l.Marker)
			num++
		}
		var li *TextItem
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if li == nil {
					li = w.doc.AddListItem(w.inline(c), l.IsOrdered(), marker, g, nil)
				} else {
					w.block(c, li)
				}
			case *ast.List:
				if li == nil {
					li = w.doc.AddListItem("", l.IsOrdered(), marker, g, nil)
				}
				w.list(c, li)
			default:
				w.block(c, g)
			}
		}
	}
}

func (w *mdWalker) table(t *east.Table, parent Node) {
	var rows [][]string
	headerRows := 0
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			if cell, ok := c.(*east.TableCell); ok {
				row = append(row, w.inline(cell))
			}
		}
		if _, ok := r.(*east.TableHeader); ok {
			headerRows++
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		w.doc.AddTable(TableFromRows(rows, headerRows), parent, nil)
	}
}

// pictures emits a picture for every image inside a paragraph, with the alt
// text as its caption.
func (w *mdWalker) pictures(n ast.Node, parent Node) {
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		img, ok := c.(*ast.Image)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		p := w.doc.AddPicture(imageFromSource(string(img.Destination), w.keepURIs), parent, nil)
		if alt := w.inline(img); alt != "" {
			w.doc.AddCaption(p, alt, nil)
		}
		return ast.WalkSkipChildren, nil
	})
}

// inline flattens the inline content of n to text. Images are skipped; their
// alt text becomes a caption instead.
func (w *mdWalker) inline(n ast.Node) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				sb.Write(c.Segment.Value(w.src))
				if c.SoftLineBreak() || c.HardLineBreak() {
					sb.WriteByte(' ')
				}
			case *ast.String:
				sb.Write(c.Value)
			case *ast.AutoLink:
				sb.Write(c.Label(w.src))
			case *ast.Image, *ast.RawHTML:
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func (w *mdWalker) lines(n ast.Node) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.src))
	}
	return sb.String()
}
