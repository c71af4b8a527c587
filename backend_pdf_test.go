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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a PDF with one content stream per page, all pages sharing
// the given MediaBox and an unembedded Helvetica without /Widths.
func buildPDF(t *testing.T, width, height float64, pages ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	add := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	add("<< /Type /Catalog /Pages 2 0 R >>")
	add(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %g %g] >>",
		strings.Join(kids, " "), len(pages), width, height))
	add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, content := range pages {
		add(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func showText(size, x, y float64, text string) string {
	return fmt.Sprintf("BT /F1 %g Tf %g %g Td (%s) Tj ET\n", size, x, y, text)
}

func reportPDF(t *testing.T) []byte {
	return buildPDF(t, 600, 800,
		showText(24, 50, 700, "Annual Report")+
			showText(16, 50, 650, "Introduction")+
			showText(10, 50, 620, "This is the body paragraph of the report.")+
			showText(10, 50, 608, "It has words separated by spaces.")+
			showText(9, 295, 30, "1"),
		showText(10, 50, 700, "The second page continues the report.")+
			showText(9, 295, 30, "2"),
	)
}

func TestPdfBackendConvertsGeneratedPDF(t *testing.T) {
	res := convertData(t, reportPDF(t), StreamInfo{Extension: ".pdf", Filename: "report.pdf"})
	doc := res.Document

	assert.Equal(t, []string{
		"title|Annual Report",
		"section_header|Introduction",
		"text|This is the body paragraph of the report. It has words separated by spaces.",
		"page_footer|1",
		"text|The second page continues the report.",
		"page_footer|2",
	}, labelledTexts(doc))

	require.Len(t, doc.Pages, 2)
	for _, no := range []int{1, 2} {
		assert.Equal(t, Size{Width: 600, Height: 800}, doc.Pages[no].Size, "page %d", no)
	}

	headings := doc.Headings()
	require.Len(t, headings, 2)
	assert.Equal(t, "Annual Report", headings[0].Title)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, 1, headings[0].Page)
	assert.Equal(t, "Introduction", headings[1].Title)
	assert.Equal(t, 2, headings[1].Level)

	for _, it := range doc.Texts {
		require.Len(t, it.Prov, 1, it.Text)
		assert.Equal(t, OriginBottomLeft, it.Prov[0].BBox.CoordOrigin)
	}
	assert.Equal(t, 2, doc.Texts[4].Prov[0].PageNo)
}

func TestPdfBackendRespectsPageLimit(t *testing.T) {
	doc, err := NewPdfBackend(PdfOptions{MaxPages: 1, HeaderMargin: 0.07}, nil).
		Convert(bytes.NewReader(reportPDF(t)), StreamInfo{Extension: ".pdf", Filename: "report.pdf"})
	require.NoError(t, err)

	assert.Len(t, doc.Pages, 1)
	assert.NotContains(t, labelledTexts(doc), "text|The second page continues the report.")
}

func TestPdfBackendRejectsGarbage(t *testing.T) {
	_, err := NewPdfBackend(DefaultPdfOptions(), nil).
		Convert(bytes.NewReader([]byte("%PDF-1.4\nnot really a pdf")), StreamInfo{Extension: ".pdf"})
	assert.Error(t, err)
}
