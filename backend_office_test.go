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
	"archive/zip"
	"bytes"
	"encoding/base64"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type zipEntry struct {
	name string
	body string
}

// buildZip writes entries in order, so tests control member order.
func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func convertData(t *testing.T, data []byte, info StreamInfo, opts ...Option) *ConversionResult {
	t.Helper()
	res, err := New(opts...).ConvertReader(bytes.NewReader(data), info)
	require.NoError(t, err)
	return res
}

func pngBytes(t *testing.T) string {
	t.Helper()
	uri := pngDataURI(t)
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	return string(data)
}

const (
	wNS   = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	relNS = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	pNS   = `xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	aNS   = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`
)

func docxFixture(t *testing.T) []byte {
	t.Helper()
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + wNS + ` ` + relNS + ` xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math"><w:body>
<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Annual Report</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Summary</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Revenue grew </w:t></w:r><w:r><w:t>strongly by </w:t></w:r><m:oMath><m:r><m:t>x%</m:t></m:r></m:oMath><w:r><w:t>.</w:t></w:r></w:p>
<w:p><w:hyperlink r:id="rId5"><w:r><w:t>Project site</w:t></w:r></w:hyperlink></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>First</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>Second</w:t></w:r></w:p>
<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="2"/></w:numPr></w:pPr><w:r><w:t>Bullet</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>Totals</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>Q1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>10</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
<w:p><w:pPr><w:pStyle w:val="Caption"/></w:pPr><w:r><w:t>Table 1: Totals</w:t></w:r></w:p>
<w:p><m:oMathPara><m:oMath><m:r><m:t>E=m</m:t></m:r><m:sSup><m:e><m:r><m:t>c</m:t></m:r></m:e><m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup></m:oMath></m:oMathPara></w:p>
<w:p><w:r><w:drawing><a:graphic ` + aNS + `><a:blip r:embed="rId7"/></a:graphic></w:drawing></w:r></w:p>
</w:body></w:document>`

	rels := `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/project" TargetMode="External"/>
<Relationship Id="rId6" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>
<Relationship Id="rId7" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>
</Relationships>`

	numbering := `<?xml version="1.0" encoding="UTF-8"?>
<w:numbering ` + wNS + `>
<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/></w:lvl></w:abstractNum>
<w:abstractNum w:abstractNumId="1"><w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/></w:lvl></w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>
</w:numbering>`

	header := `<w:hdr ` + wNS + `><w:p><w:r><w:t>Confidential</w:t></w:r></w:p></w:hdr>`

	footnotes := `<w:footnotes ` + wNS + `>
<w:footnote w:type="separator" w:id="-1"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>
<w:footnote w:id="1"><w:p><w:r><w:t>See appendix.</w:t></w:r></w:p></w:footnote>
</w:footnotes>`

	return buildZip(t, []zipEntry{
		{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"word/document.xml", document},
		{"word/_rels/document.xml.rels", rels},
		{"word/numbering.xml", numbering},
		{"word/header1.xml", header},
		{"word/footnotes.xml", footnotes},
		{"word/media/image1.png", pngBytes(t)},
	})
}

func TestDocxBackend(t *testing.T) {
	res := convertData(t, docxFixture(t), StreamInfo{Extension: ".docx", Filename: "report.docx"})
	doc := res.Document

	assert.Equal(t, "docx", res.Input.Format)
	assert.Equal(t, "report", doc.Name)

	assert.Equal(t, []string{"Annual Report"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"Summary"}, textsWithLabel(doc, LabelSectionHeader))
	assert.Equal(t, []string{"Revenue grew strongly by $x\\%$.", "Project site"}, textsWithLabel(doc, LabelParagraph))
	assert.Equal(t, []string{"E=mc^{2}"}, textsWithLabel(doc, LabelFormula))
	assert.Equal(t, []string{"See appendix."}, textsWithLabel(doc, LabelFootnote))

	for _, it := range doc.Texts {
		switch it.Text {
		case "Project site":
			assert.Equal(t, "https://example.com/project", it.Hyperlink)
		case "Revenue grew strongly by $x\\%$.":
			assert.Empty(t, it.Hyperlink)
		}
	}

	var items []*TextItem
	for _, it := range doc.Texts {
		if it.Label == LabelListItem {
			items = append(items, it)
		}
	}
	require.Len(t, items, 3)
	assert.Equal(t, "1.", items[0].Marker)
	assert.Equal(t, "2.", items[1].Marker)
	assert.True(t, items[1].Enumerated)
	assert.Equal(t, "-", items[2].Marker)
	assert.False(t, items[2].Enumerated)
	assert.Equal(t, items[0].Parent.Ref, items[1].Parent.Ref)
	assert.NotEqual(t, items[1].Parent.Ref, items[2].Parent.Ref)

	require.Len(t, doc.Tables, 1)
	tbl := doc.Tables[0]
	assert.Equal(t, 2, tbl.Data.NumRows)
	assert.Equal(t, 2, tbl.Data.NumCols)
	grid := tbl.Data.Grid()
	assert.Equal(t, "Totals", grid[0][1].Text)
	assert.Equal(t, 2, grid[0][0].ColSpan)
	assert.True(t, grid[0][0].ColumnHeader)
	assert.Equal(t, "10", grid[1][1].Text)
	require.Len(t, tbl.Captions, 1)
	assert.Equal(t, "Table 1: Totals", doc.Resolve(tbl.Captions[0]).(*TextItem).Text)

	require.Len(t, doc.Pictures, 1)
	require.NotNil(t, doc.Pictures[0].Image)
	assert.Equal(t, "image/png", doc.Pictures[0].Image.MIMEType)

	require.Len(t, doc.Furniture.Children, 1)
	header := doc.Resolve(doc.Furniture.Children[0]).(*TextItem)
	assert.Equal(t, LabelPageHeader, header.Label)
	assert.Equal(t, "Confidential", header.Text)

	// title, heading, two paragraphs, two lists, table, formula, picture, footnote
	assert.Len(t, doc.Body.Children, 10)

	md := doc.ExportToMarkdown()
	assert.Contains(t, md, "# Annual Report\n\n## Summary\n\nRevenue grew strongly by $x\\%$.\n\n[Project site](https://example.com/project)")
	assert.Contains(t, md, "1. First\n2. Second")
	assert.Contains(t, md, "$$E=mc^{2}$$")
	assert.NotContains(t, md, "Confidential")
}

func TestDocxRejectsBrokenPackage(t *testing.T) {
	_, err := New().ConvertReader(strings.NewReader("not a zip"), StreamInfo{Extension: ".docx"})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "docx", convErr.Attempts[0].Backend)
}

func slideXML(shapes string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><p:sld ` + pNS + ` ` + aNS + ` ` + relNS + `><p:cSld><p:spTree>` + shapes + `</p:spTree></p:cSld></p:sld>`
}

func shapeXML(ph string, y int, paragraphs string) string {
	nv := `<p:nvPr/>`
	if ph != "" {
		nv = `<p:nvPr>` + ph + `</p:nvPr>`
	}
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Shape"/><p:cNvSpPr/>` + nv + `</p:nvSpPr>` +
		`<p:spPr><a:xfrm><a:off x="0" y="` + strconv.Itoa(y) + `"/><a:ext cx="9144000" cy="1270000"/></a:xfrm></p:spPr>` +
		`<p:txBody><a:bodyPr/>` + paragraphs + `</p:txBody></p:sp>`
}

func para(text string) string {
	return `<a:p><a:r><a:t>` + text + `</a:t></a:r></a:p>`
}

func pptxFixture(t *testing.T) []byte {
	t.Helper()
	presentation := `<?xml version="1.0" encoding="UTF-8"?>
<p:presentation ` + pNS + ` ` + relNS + `>
<p:sldIdLst><p:sldId id="257" r:id="rId3"/><p:sldId id="256" r:id="rId2"/></p:sldIdLst>
<p:sldSz cx="9144000" cy="6858000"/>
</p:presentation>`
	presRels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/>
</Relationships>`

	agenda := slideXML(
		shapeXML(`<p:ph type="sldNum"/>`, 6350000, para("1")) +
			shapeXML(`<p:ph type="title"/>`, 0, para("Agenda")) +
			shapeXML(`<p:ph idx="1"/>`, 1270000, para("Intro")+`<a:p><a:pPr lvl="1"/><a:r><a:t>Details</a:t></a:r></a:p>`),
	)
	agendaRels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide1.xml"/>
</Relationships>`
	notes := `<p:notes ` + pNS + ` ` + aNS + `><p:cSld><p:spTree>` +
		shapeXML(`<p:ph type="body" idx="1"/>`, 0, para("Remember timing")) +
		`</p:spTree></p:cSld></p:notes>`

	table := `<p:graphicFrame><p:nvGraphicFramePr/><p:xfrm><a:off x="0" y="2540000"/><a:ext cx="9144000" cy="2540000"/></p:xfrm>` +
		`<a:graphic><a:graphicData><a:tbl>` +
		`<a:tr><a:tc gridSpan="2"><a:txBody>` + para("Head") + `</a:txBody></a:tc><a:tc hMerge="1"><a:txBody/></a:tc></a:tr>` +
		`<a:tr><a:tc><a:txBody>` + para("a") + `</a:txBody></a:tc><a:tc><a:txBody>` + para("b") + `</a:txBody></a:tc></a:tr>` +
		`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
	wrapUp := slideXML(
		shapeXML(`<p:ph type="title"/>`, 0, para("Wrap Up")) +
			shapeXML("", 1270000, para("Thanks")) +
			table,
	)

	return buildZip(t, []zipEntry{
		{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"ppt/presentation.xml", presentation},
		{"ppt/_rels/presentation.xml.rels", presRels},
		{"ppt/slides/slide1.xml", wrapUp},
		{"ppt/slides/slide2.xml", agenda},
		{"ppt/slides/_rels/slide2.xml.rels", agendaRels},
		{"ppt/notesSlides/notesSlide1.xml", notes},
	})
}

func TestPptxGroupedShapesUseSlideCoordinates(t *testing.T) {
	presentation := `<p:presentation ` + pNS + ` ` + relNS + `>` +
		`<p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/></p:presentation>`
	presRels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>` +
		`</Relationships>`
	// The group doubles its child space: child (1135000, 500000) lands at
	// (2540000, 3810000) EMU, i.e. 200pt by 300pt.
	group := `<p:grpSp><p:nvGrpSpPr/><p:grpSpPr><a:xfrm>` +
		`<a:off x="1270000" y="3810000"/><a:ext cx="2540000" cy="1270000"/>` +
		`<a:chOff x="500000" y="500000"/><a:chExt cx="1270000" cy="635000"/>` +
		`</a:xfrm></p:grpSpPr>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="5" name="Grouped"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>` +
		`<p:spPr><a:xfrm><a:off x="1135000" y="500000"/><a:ext cx="635000" cy="317500"/></a:xfrm></p:spPr>` +
		`<p:txBody><a:bodyPr/>` + para("Grouped") + `</p:txBody></p:sp></p:grpSp>`
	slide := slideXML(group + shapeXML("", 1270000, para("Top")) + shapeXML("", 5080000, para("Bottom")))

	data := buildZip(t, []zipEntry{
		{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"ppt/presentation.xml", presentation},
		{"ppt/_rels/presentation.xml.rels", presRels},
		{"ppt/slides/slide1.xml", slide},
	})
	doc := convertData(t, data, StreamInfo{Extension: ".pptx", Filename: "grouped.pptx"}).Document

	assert.Equal(t, []string{"Top", "Grouped", "Bottom"}, textsWithLabel(doc, LabelText))
	for _, it := range doc.Texts {
		if it.Text == "Grouped" {
			require.Len(t, it.Prov, 1)
			assert.Equal(t, BoundingBox{L: 200, T: 300, R: 300, B: 350, CoordOrigin: OriginTopLeft}, it.Prov[0].BBox)
		}
	}
}

func TestPptxBackend(t *testing.T) {
	res := convertData(t, pptxFixture(t), StreamInfo{Extension: ".pptx", Filename: "deck.pptx"})
	doc := res.Document

	assert.Equal(t, "pptx", res.Input.Format)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, Size{Width: 720, Height: 540}, doc.Pages[1].Size)

	// Slides follow the presentation's slide list, not part names.
	assert.Equal(t, []string{"Agenda", "Wrap Up"}, textsWithLabel(doc, LabelTitle))

	var slides []*GroupItem
	for _, g := range doc.Groups {
		if g.Label == GroupSlide {
			slides = append(slides, g)
		}
	}
	require.Len(t, slides, 2)
	assert.Equal(t, "slide-0", slides[0].Name)
	assert.Equal(t, "slide-1", slides[1].Name)

	var title *TextItem
	for _, it := range doc.Texts {
		if it.Text == "Agenda" {
			title = it
		}
	}
	require.NotNil(t, title)
	require.Len(t, title.Prov, 1)
	assert.Equal(t, 1, title.Prov[0].PageNo)
	assert.Equal(t, BoundingBox{L: 0, T: 0, R: 720, B: 100, CoordOrigin: OriginTopLeft}, title.Prov[0].BBox)
	assert.Equal(t, slides[0].SelfRef, title.Parent.Ref)

	items := textsWithLabel(doc, LabelListItem)
	assert.Equal(t, []string{"Intro", "Details"}, items)

	assert.Contains(t, textsWithLabel(doc, LabelText), "Thanks")

	require.Len(t, doc.Furniture.Children, 2)
	footer := doc.Resolve(doc.Furniture.Children[0]).(*TextItem)
	assert.Equal(t, LabelPageFooter, footer.Label)
	assert.Equal(t, "1", footer.Text)
	notes := doc.Resolve(doc.Furniture.Children[1]).(*TextItem)
	assert.Equal(t, "Remember timing", notes.Text)
	assert.Equal(t, 1, notes.Prov[0].PageNo)

	require.Len(t, doc.Tables, 1)
	tbl := doc.Tables[0]
	assert.Len(t, tbl.Data.Cells, 3)
	assert.Equal(t, 2, tbl.Data.NumCols)
	assert.Equal(t, "Head", tbl.Data.Grid()[0][1].Text)
	assert.Equal(t, 2, tbl.Prov[0].PageNo)

	headings := doc.Headings()
	require.Len(t, headings, 2)
	assert.Equal(t, 2, headings[1].Page)
}

func epubFixture(t *testing.T) []byte {
	t.Helper()
	chapter := func(heading, body string) string {
		return `<?xml version="1.0" encoding="utf-8"?><html xmlns="http://www.w3.org/1999/xhtml"><head><title>x</title></head>` +
			`<body><h1>` + heading + `</h1><p>` + body + `</p></body></html>`
	}
	return buildZip(t, []zipEntry{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?><container xmlns="urn:oasis:names:tc:opendocument:xmlns:container" version="1.0">` +
			`<rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`},
		{"OEBPS/content.opf", `<?xml version="1.0"?><package xmlns="http://www.idpf.org/2007/opf" version="3.0">` +
			`<metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Field Guide</dc:title>` +
			`<dc:creator>Ana Ruiz</dc:creator><dc:creator>Li Wei</dc:creator><dc:language>en</dc:language></metadata>` +
			`<manifest><item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/>` +
			`<item id="c2" href="text/ch2.xhtml" media-type="application/xhtml+xml"/>` +
			`<item id="css" href="style.css" media-type="text/css"/></manifest>` +
			`<spine><itemref idref="c2"/><itemref idref="c1"/><itemref idref="css"/><itemref idref="missing"/></spine></package>`},
		{"OEBPS/ch1.xhtml", chapter("Chapter One", "First body.")},
		{"OEBPS/text/ch2.xhtml", chapter("Chapter Two", "Second body.")},
		{"OEBPS/style.css", "p { margin: 0 }"},
	})
}

func TestEpubBackend(t *testing.T) {
	res := convertData(t, epubFixture(t), StreamInfo{Extension: ".epub", Filename: "guide.epub"})
	doc := res.Document

	assert.Equal(t, "epub", res.Input.Format)
	assert.Equal(t, []string{"Field Guide"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"Author: Ana Ruiz, Li Wei", "Language: en", "Second body.", "First body."}, textsWithLabel(doc, LabelText))
	assert.Equal(t, []string{"Chapter Two", "Chapter One"}, textsWithLabel(doc, LabelSectionHeader))

	var chapters []string
	for _, g := range doc.Groups {
		if g.Label == GroupChapter {
			chapters = append(chapters, g.Name)
		}
	}
	assert.Equal(t, []string{"text/ch2.xhtml", "ch1.xhtml"}, chapters)
}

func TestEpubWithoutContainer(t *testing.T) {
	data := buildZip(t, []zipEntry{{"mimetype", "application/epub+zip"}})
	_, err := New().ConvertReader(bytes.NewReader(data), StreamInfo{Extension: ".epub"})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Error(), "find OPF")
}

func archiveFixture(t *testing.T) []byte {
	t.Helper()
	return buildZip(t, []zipEntry{
		{"docs/", ""},
		{"docs/a.md", "# Alpha\n\nFirst file.\n"},
		{"docs/b.txt", "Plain notes.\n"},
		{"skip/c.md", "# Gamma\n"},
		{"bin/d.bin", "\x00\x01\x02\x03"},
	})
}

func sectionNames(doc *Document) []string {
	var names []string
	for _, g := range doc.Groups {
		if g.Label == GroupSection {
			names = append(names, g.Name)
		}
	}
	return names
}

func TestZipBackend(t *testing.T) {
	res := convertData(t, archiveFixture(t), StreamInfo{Extension: ".zip", Filename: "bundle.zip"})
	doc := res.Document

	assert.Equal(t, "zip", res.Input.Format)
	assert.Equal(t, []string{"docs/a.md", "docs/b.txt", "skip/c.md"}, sectionNames(doc))
	assert.Equal(t, []string{"Alpha", "Gamma"}, textsWithLabel(doc, LabelTitle))
	assert.Equal(t, []string{"First file.", "Plain notes."}, textsWithLabel(doc, LabelText))

	var alpha *TextItem
	for _, it := range doc.Texts {
		if it.Text == "Alpha" {
			alpha = it
		}
	}
	require.NotNil(t, alpha)
	section := doc.Resolve(*alpha.Parent).(*GroupItem)
	assert.Equal(t, "docs/a.md", section.Name)
}

func TestZipBackendFilters(t *testing.T) {
	res := convertData(t, archiveFixture(t), StreamInfo{Extension: ".zip"},
		WithArchiveFilter([]string{"docs/**"}, []string{"**/*.txt"}))

	assert.Equal(t, []string{"docs/a.md"}, sectionNames(res.Document))
}

func TestZipBackendSkipsLargeMembers(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{"small.txt", "ok"},
		{"large.txt", strings.Repeat("x", 4000)},
	})
	res := convertData(t, data, StreamInfo{Extension: ".zip"}, WithMaxFileSize(int64(len(data))))

	assert.Equal(t, []string{"small.txt"}, sectionNames(res.Document))
}

func TestZipBackendLimitsNesting(t *testing.T) {
	// Each level holds a note and the next archive down.
	var data []byte
	for level := maxArchiveDepth + 1; level >= 0; level-- {
		entries := []zipEntry{{"level.txt", "Level " + strconv.Itoa(level) + " note."}}
		if data != nil {
			entries = append(entries, zipEntry{"inner.zip", string(data)})
		}
		data = buildZip(t, entries)
	}

	res := convertData(t, data, StreamInfo{Extension: ".zip", Filename: "outer.zip"})
	texts := textsWithLabel(res.Document, LabelText)

	want := make([]string, 0, maxArchiveDepth)
	for level := 0; level < maxArchiveDepth; level++ {
		want = append(want, "Level "+strconv.Itoa(level)+" note.")
	}
	assert.Equal(t, want, texts)
}

func TestXlsxBackend(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Region"))
	require.NoError(t, f.MergeCell("Sheet1", "A1", "B1"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "North"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 10))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "South"))
	require.NoError(t, f.SetCellValue("Sheet1", "B3", 20))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res := convertData(t, buf.Bytes(), StreamInfo{Extension: ".xlsx", Filename: "sales.xlsx"})
	doc := res.Document

	assert.Equal(t, "xlsx", res.Input.Format)
	require.Len(t, doc.Tables, 1)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, Size{Width: 2, Height: 3}, doc.Pages[1].Size)

	tbl := doc.Tables[0]
	assert.Len(t, tbl.Data.Cells, 5)
	grid := tbl.Data.Grid()
	assert.Equal(t, "Region", grid[0][1].Text)
	assert.Equal(t, 2, grid[0][0].ColSpan)
	assert.True(t, grid[0][0].ColumnHeader)
	assert.Equal(t, "20", grid[2][1].Text)
	assert.False(t, grid[2][1].ColumnHeader)

	require.Len(t, tbl.Prov, 1)
	assert.Equal(t, OriginTopLeft, tbl.Prov[0].BBox.CoordOrigin)
	assert.Equal(t, 2.0, tbl.Prov[0].BBox.R)

	sheet := doc.Resolve(*tbl.Parent).(*GroupItem)
	assert.Equal(t, GroupSheet, sheet.Label)
	assert.Equal(t, "sheet: Sheet1", sheet.Name)
}
