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
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func convertString(t *testing.T, content string, info StreamInfo, opts ...Option) *Document {
	t.Helper()
	res, err := New(opts...).ConvertReader(strings.NewReader(content), info)
	require.NoError(t, err)
	require.NotNil(t, res.Document)
	return res.Document
}

// bodyNodes resolves the direct children of the body.
func bodyNodes(doc *Document) []Node {
	var out []Node
	for _, ref := range doc.Body.Children {
		out = append(out, doc.Resolve(ref))
	}
	return out
}

func textsWithLabel(doc *Document, label DocItemLabel) []string {
	var out []string
	for _, t := range doc.Texts {
		if t.Label == label {
			out = append(out, t.Text)
		}
	}
	return out
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPlainTextParagraphs(t *testing.T) {
	doc := convertString(t, "First  line\ncontinues.\n\n  \nSecond paragraph.\r\n", StreamInfo{Extension: ".txt"})

	assert.Equal(t, []string{"First line continues.", "Second paragraph."}, textsWithLabel(doc, LabelText))
	assert.Len(t, doc.Body.Children, 2)
}

func TestPlainTextJSONIsCode(t *testing.T) {
	doc := convertString(t, "{\n  \"a\": 1\n}\n", StreamInfo{Extension: ".json"})

	require.Len(t, doc.Texts, 1)
	assert.Equal(t, LabelCode, doc.Texts[0].Label)
	assert.Equal(t, "json", doc.Texts[0].CodeLanguage)
	assert.Equal(t, "{\n  \"a\": 1\n}", doc.Texts[0].Text)
}

func TestCsvTable(t *testing.T) {
	doc := convertString(t, "name,score\nann,9\nbob\n", StreamInfo{Extension: ".csv"})

	require.Len(t, doc.Tables, 1)
	data := doc.Tables[0].Data
	assert.Equal(t, 3, data.NumRows)
	assert.Equal(t, 2, data.NumCols)

	grid := data.Grid()
	assert.Equal(t, "name", grid[0][0].Text)
	assert.True(t, grid[0][0].ColumnHeader)
	assert.Equal(t, "9", grid[1][1].Text)
	assert.False(t, grid[1][1].ColumnHeader)
	assert.Equal(t, "", grid[2][1].Text)
}

func TestCsvTabSeparated(t *testing.T) {
	doc := convertString(t, "a\tb\n1\t2\n", StreamInfo{Extension: ".tsv"})

	require.Len(t, doc.Tables, 1)
	grid := doc.Tables[0].Data.Grid()
	assert.Equal(t, "b", grid[0][1].Text)
	assert.Equal(t, "2", grid[1][1].Text)
}

func TestCsvDeclaredCharset(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("名前,値\n東京,1\n")
	require.NoError(t, err)

	doc := convertString(t, encoded, StreamInfo{Extension: ".csv", Charset: "cp932"})

	require.Len(t, doc.Tables, 1)
	grid := doc.Tables[0].Data.Grid()
	assert.Equal(t, "名前", grid[0][0].Text)
	assert.Equal(t, "東京", grid[1][0].Text)
}

func TestMarkdownBackend(t *testing.T) {
	uri := pngDataURI(t)
	src := "# Guide\n\n" +
		"Intro paragraph with **bold** text.\n\n" +
		"## Setup\n\n" +
		"1. Install\n" +
		"2. Configure\n" +
		"   - nested\n\n" +
		"```go\ngo build\n```\n\n" +
		"| A | B |\n|---|---|\n| 1 | 2 |\n\n" +
		"![Diagram](" + uri + ")\n"

	doc := convertString(t, src, StreamInfo{Extension: ".md"})

	assert.Equal(t, []string{"Guide"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"Intro paragraph with bold text."}, textsWithLabel(doc, LabelText))

	headings := doc.Headings()
	require.Len(t, headings, 2)
	assert.Equal(t, "Setup", headings[1].Title)
	assert.Equal(t, 1, headings[1].Level)

	var items []*TextItem
	for _, it := range doc.Texts {
		if it.Label == LabelListItem {
			items = append(items, it)
		}
	}
	require.Len(t, items, 3)
	assert.Equal(t, "Install", items[0].Text)
	assert.Equal(t, "1.", items[0].Marker)
	assert.True(t, items[0].Enumerated)
	assert.Equal(t, "2.", items[1].Marker)
	assert.Equal(t, "nested", items[2].Text)
	assert.Equal(t, "-", items[2].Marker)
	assert.False(t, items[2].Enumerated)
	// The nested list hangs off the second item.
	require.NotNil(t, items[2].Parent)
	nested, ok := doc.Resolve(*items[2].Parent).(*GroupItem)
	require.True(t, ok)
	assert.Equal(t, items[1].SelfRef, nested.Parent.Ref)

	code := textsWithLabel(doc, LabelCode)
	assert.Equal(t, []string{"go build"}, code)

	require.Len(t, doc.Tables, 1)
	grid := doc.Tables[0].Data.Grid()
	assert.Equal(t, "A", grid[0][0].Text)
	assert.True(t, grid[0][0].ColumnHeader)
	assert.Equal(t, "2", grid[1][1].Text)

	require.Len(t, doc.Pictures, 1)
	pic := doc.Pictures[0]
	require.NotNil(t, pic.Image)
	assert.Equal(t, "image/png", pic.Image.MIMEType)
	assert.Equal(t, Size{Width: 2, Height: 1}, pic.Image.Size)
	assert.Empty(t, pic.Image.URI)
	require.Len(t, pic.Captions, 1)
	assert.Equal(t, "Diagram", doc.Resolve(pic.Captions[0]).(*TextItem).Text)

	md := doc.ExportToMarkdown()
	assert.True(t, strings.HasPrefix(md, "# Guide\n\nIntro paragraph with bold text.\n\n## Setup\n\n1. Install\n2. Configure\n    - nested"))
	assert.Contains(t, md, "```go\ngo build\n```")
	assert.Contains(t, md, "| A | B |\n| --- | --- |\n| 1 | 2 |")
}

func TestMarkdownKeepsDataURIsWhenAsked(t *testing.T) {
	uri := pngDataURI(t)
	doc := convertString(t, "![x]("+uri+")\n", StreamInfo{Extension: ".md"}, WithKeepDataURIs(true))

	require.Len(t, doc.Pictures, 1)
	assert.Equal(t, uri, doc.Pictures[0].Image.URI)
	assert.Contains(t, doc.ExportToMarkdown(), "![Image]("+uri+")")
}

func TestHTMLBackend(t *testing.T) {
	page := `<html><head><title>Ignored</title><meta charset="utf-8"></head><body>
<h1>Main Title</h1>
<p>Intro with <a href="https://a.example">link</a>.</p>
<p><a href="https://b.example">Only link</a></p>
<h2>Details</h2>
<ul><li>One<ul><li>Nested</li></ul></li><li>Two</li></ul>
<ol start="3"><li>Three</li></ol>
<pre><code class="language-go">fmt.Println("x")
</code></pre>
<table><caption>Scores</caption>
<thead><tr><th>Name</th><th>Score</th></tr></thead>
<tbody><tr><th>Ann</th><td>9</td></tr><tr><td colspan="2">total</td></tr></tbody>
</table>
<figure><img src="` + pngDataURI(t) + `"><figcaption>A dot</figcaption></figure>
loose text
</body></html>`

	doc := convertString(t, page, StreamInfo{Extension: ".html"})

	assert.Equal(t, []string{"Main Title"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"Details"}, textsWithLabel(doc, LabelSectionHeader))
	assert.Equal(t, 1, doc.Headings()[1].Level)

	texts := textsWithLabel(doc, LabelText)
	assert.Equal(t, []string{"Intro with link.", "Only link", "loose text"}, texts)
	for _, it := range doc.Texts {
		switch it.Text {
		case "Intro with link.":
			assert.Empty(t, it.Hyperlink)
		case "Only link":
			assert.Equal(t, "https://b.example", it.Hyperlink)
		}
	}

	assert.Equal(t, []string{"One", "Nested", "Two", "Three"}, textsWithLabel(doc, LabelListItem))
	for _, it := range doc.Texts {
		if it.Text == "Three" {
			assert.Equal(t, "3.", it.Marker)
			assert.True(t, it.Enumerated)
		}
	}

	var code *TextItem
	for _, it := range doc.Texts {
		if it.Label == LabelCode {
			code = it
		}
	}
	require.NotNil(t, code)
	assert.Equal(t, `fmt.Println("x")`, code.Text)
	assert.Equal(t, "go", code.CodeLanguage)

	require.Len(t, doc.Tables, 1)
	tbl := doc.Tables[0]
	assert.Equal(t, 3, tbl.Data.NumRows)
	assert.Equal(t, 2, tbl.Data.NumCols)
	assert.Len(t, tbl.Data.Cells, 5)
	grid := tbl.Data.Grid()
	assert.True(t, grid[0][1].ColumnHeader)
	assert.True(t, grid[1][0].RowHeader)
	assert.False(t, grid[1][1].RowHeader)
	assert.Equal(t, "total", grid[2][1].Text)
	assert.Equal(t, 2, grid[2][0].ColSpan)
	require.Len(t, tbl.Captions, 1)
	assert.Equal(t, "Scores", doc.Resolve(tbl.Captions[0]).(*TextItem).Text)

	require.Len(t, doc.Pictures, 1)
	require.Len(t, doc.Pictures[0].Captions, 1)
	assert.Equal(t, "A dot", doc.Resolve(doc.Pictures[0].Captions[0]).(*TextItem).Text)
	assert.Equal(t, "image/png", doc.Pictures[0].Image.MIMEType)

	// Body order follows the page.
	nodes := bodyNodes(doc)
	require.Len(t, nodes, 10)
	assert.IsType(t, &TextItem{}, nodes[0])
	assert.IsType(t, &GroupItem{}, nodes[4])
	assert.Equal(t, GroupOrderedList, nodes[5].(*GroupItem).Label)
	assert.IsType(t, &TableItem{}, nodes[7])
	assert.IsType(t, &PictureItem{}, nodes[8])
}

func TestHTMLSecondH1IsHeading(t *testing.T) {
	doc := convertString(t, "<h1>One</h1><h1>Two</h1><h3>Three</h3>", StreamInfo{Extension: ".html"})

	headings := doc.Headings()
	require.Len(t, headings, 3)
	assert.Equal(t, "One", headings[0].Title)
	assert.Equal(t, 1, headings[1].Level)
	assert.Equal(t, 2, headings[2].Level)
}

func TestHTMLMetaCharset(t *testing.T) {
	body, err := japanese.ShiftJIS.NewEncoder().String(`<html><head><meta charset="shift_jis"></head><body><p>東京</p></body></html>`)
	require.NoError(t, err)

	doc := convertString(t, body, StreamInfo{Extension: ".html"})

	assert.Equal(t, []string{"東京"}, textsWithLabel(doc, LabelText))
}

func TestRSSBackend(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Engineering Blog</title>
<description>Posts about systems</description>
<item>
<title>Release 1.0</title>
<link>https://example.com/r1</link>
<author>dev@example.com (Dana)</author>
<pubDate>Mon, 06 Jan 2025 10:00:00 GMT</pubDate>
<description><![CDATA[<p>We shipped <b>version 1.0</b>.</p><ul><li>Faster</li><li>Smaller</li></ul>]]></description>
</item>
</channel></rss>`

	doc := convertString(t, feed, StreamInfo{Extension: ".rss"})

	assert.Equal(t, []string{"Engineering Blog"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"Release 1.0"}, textsWithLabel(doc, LabelSectionHeader))

	var section *GroupItem
	for _, g := range doc.Groups {
		if g.Label == GroupSection {
			section = g
		}
	}
	require.NotNil(t, section)
	assert.Equal(t, "Release 1.0", section.Name)

	texts := textsWithLabel(doc, LabelText)
	assert.Contains(t, texts, "Posts about systems")
	assert.Contains(t, texts, "By: Dana")
	assert.Contains(t, texts, "Published: Mon, 06 Jan 2025 10:00:00 GMT")
	assert.Contains(t, texts, "We shipped version 1.0.")
	assert.Equal(t, []string{"Faster", "Smaller"}, textsWithLabel(doc, LabelListItem))

	for _, it := range doc.Texts {
		if it.Text == "https://example.com/r1" {
			assert.Equal(t, "https://example.com/r1", it.Hyperlink)
			require.NotNil(t, it.Parent)
			assert.Equal(t, section.SelfRef, it.Parent.Ref)
		}
	}
}

func TestIpynbBackend(t *testing.T) {
	nb := `{
 "metadata": {"kernelspec": {"language": "python", "name": "python3"}},
 "nbformat": 4,
 "cells": [
  {"cell_type": "markdown", "source": ["# Test Notebook\n", "\n", "Some *text*."]},
  {"cell_type": "code", "source": "print(\"hi\")", "outputs": [
    {"output_type": "stream", "text": ["hi\n"]},
    {"output_type": "execute_result", "data": {"text/plain": ["42"]}}
  ]},
  {"cell_type": "code", "source": [], "outputs": []}
 ]
}`

	res, err := New().ConvertReader(strings.NewReader(nb), StreamInfo{Extension: ".ipynb", Filename: "analysis.ipynb"})
	require.NoError(t, err)
	doc := res.Document

	assert.Equal(t, "ipynb", res.Input.Format)
	assert.Equal(t, "analysis", doc.Name)
	assert.Equal(t, []string{"Test Notebook"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"Some text."}, textsWithLabel(doc, LabelText))

	var code []*TextItem
	for _, it := range doc.Texts {
		if it.Label == LabelCode {
			code = append(code, it)
		}
	}
	require.Len(t, code, 3)
	assert.Equal(t, `print("hi")`, code[0].Text)
	assert.Equal(t, "python", code[0].CodeLanguage)
	assert.Equal(t, "hi", code[1].Text)
	assert.Empty(t, code[1].CodeLanguage)
	assert.Equal(t, "42", code[2].Text)
}
