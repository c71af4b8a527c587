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
	"sort"
	"strconv"
	"strings"

	"github.com/nicholasgasior/docling-go/internal/omml"
	"github.com/nicholasgasior/docling-go/internal/ooxml"
)

const docxMainPart = "word/document.xml"

// DocxBackend handles DOCX files.
type DocxBackend struct {
	c *DocumentConverter
}

// NewDocxBackend creates a new DocxBackend.
func NewDocxBackend(c *DocumentConverter) *DocxBackend {
	return &DocxBackend{c: c}
}

func (b *DocxBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".docx"}, []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"})
}

func (b *DocxBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read DOCX: %w", err)
	}
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}
	root, err := pkg.ReadNode(docxMainPart)
	if err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}
	rels, err := pkg.Relationships(docxMainPart)
	if err != nil {
		return nil, fmt.Errorf("read document relationships: %w", err)
	}

	d := &docxBuilder{
		doc:       NewDocument(info.stem()),
		pkg:       pkg,
		rels:      rels,
		styles:    parseDocxStyles(pkg),
		numbering: parseDocxNumbering(pkg),
		keepURIs:  b.c.keepDataURIs,
	}
	d.furniture()
	if body := root.Child("body"); body != nil {
		d.blocks(body, nil)
	}
	d.footnotes()
	return d.doc, nil
}

type docxStyle struct {
	name       string
	basedOn    string
	outlineLvl int // -1 when unset
}

type docxLevel struct {
	numFmt string
	start  int
}

type docxBuilder struct {
	doc       *Document
	pkg       *ooxml.Package
	rels      map[string]ooxml.Relationship
	styles    map[string]docxStyle
	numbering map[string]map[int]docxLevel
	keepURIs  bool

	// open list state, one entry per nesting level
	listNumID string
	lists     []*GroupItem
	listItems []*TextItem
	counts    []int

	// last table or picture, target for a following caption paragraph
	lastFloat Node
}

func parseDocxStyles(pkg *ooxml.Package) map[string]docxStyle {
	styles := make(map[string]docxStyle)
	root, err := pkg.ReadNode("word/styles.xml")
	if err != nil {
		return styles
	}
	for _, s := range root.ChildrenNamed("style") {
		st := docxStyle{outlineLvl: -1}
		if n := s.Child("name"); n != nil {
			st.name = n.Attr("val")
		}
		if n := s.Child("basedOn"); n != nil {
			st.basedOn = n.Attr("val")
		}
		if n := s.Path("pPr", "outlineLvl"); n != nil {
			if v, err := strconv.Atoi(n.Attr("val")); err == nil {
				st.outlineLvl = v
			}
		}
		styles[s.Attr("styleId")] = st
	}
	return styles
}

func parseDocxNumbering(pkg *ooxml.Package) map[string]map[int]docxLevel {
	numbering := make(map[string]map[int]docxLevel)
	root, err := pkg.ReadNode("word/numbering.xml")
	if err != nil {
		return numbering
	}
	abstract := make(map[string]map[int]docxLevel)
	for _, an := range root.ChildrenNamed("abstractNum") {
		levels := make(map[int]docxLevel)
		for _, lvl := range an.ChildrenNamed("lvl") {
			ilvl, _ := strconv.Atoi(lvl.Attr("ilvl"))
			l := docxLevel{start: 1}
			if n := lvl.Child("numFmt"); n != nil {
				l.numFmt = n.Attr("val")
			}
			if n := lvl.Child("start"); n != nil {
				if v, err := strconv.Atoi(n.Attr("val")); err == nil {
					l.start = v
				}
			}
			levels[ilvl] = l
		}
		abstract[an.Attr("abstractNumId")] = levels
	}
	for _, num := range root.ChildrenNamed("num") {
		if ref := num.Child("abstractNumId"); ref != nil {
			numbering[num.Attr("numId")] = abstract[ref.Attr("val")]
		}
	}
	return numbering
}

// styleKind classifies a paragraph style: "title", "heading", "caption",
// "code" or "". For headings the level is returned too.
func (d *docxBuilder) styleKind(styleID string) (string, int) {
	if styleID == "" {
		return "", 0
	}
	seen := map[string]bool{}
	for id := styleID; id != "" && !seen[id]; id = d.styles[id].basedOn {
		seen[id] = true
		st := d.styles[id]
		name := strings.ToLower(st.name)
		if name == "" {
			name = strings.ToLower(id)
		}
		switch {
		case name == "title":
			return "title", 0
		case strings.HasPrefix(name, "heading"):
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(name, "heading"))); err == nil && n > 0 {
				return "heading", n
			}
		case name == "caption":
			return "caption", 0
		case strings.Contains(name, "code") || name == "html preformatted":
			return "code", 0
		}
		if st.outlineLvl >= 0 && st.outlineLvl < 9 {
			return "heading", st.outlineLvl + 1
		}
	}
	return "", 0
}

func (d *docxBuilder) blocks(n *ooxml.Node, parent Node) {
	for i := range n.Children {
		c := &n.Children[i]
		switch c.Local() {
		case "p":
			d.paragraph(c, parent)
		case "tbl":
			d.endList()
			d.table(c, parent)
		case "sdt":
			if content := c.Child("sdtContent"); content != nil {
				d.blocks(content, parent)
			}
		case "customXml":
			d.blocks(c, parent)
		}
	}
}

// paragraphContent is what a w:p yields once its runs are flattened.
type paragraphContent struct {
	text      strings.Builder
	images    []string
	formula   strings.Builder
	hyperlink string
	links     int
}

func (d *docxBuilder) collect(n *ooxml.Node, pc *paragraphContent) {
	for i := range n.Children {
		c := &n.Children[i]
		switch c.Local() {
		case "t":
			pc.text.WriteString(c.Content)
		case "tab":
			pc.text.WriteByte('\t')
		case "br", "cr":
			pc.text.WriteByte(' ')
		case "drawing", "pict", "object":
			for _, blip := range c.FindAll("blip") {
				pc.images = append(pc.images, blip.Attr("embed"))
			}
			for _, img := range c.FindAll("imagedata") {
				pc.images = append(pc.images, img.Attr("id"))
			}
		case "oMathPara":
			pc.formula.WriteString(omml.Latex(c))
		case "oMath":
			if eq := omml.Latex(c); eq != "" {
				pc.text.WriteString("$" + eq + "$")
			}
		case "hyperlink":
			pc.links++
			if rel, ok := d.rels[c.Attr("id")]; ok && rel.External() {
				pc.hyperlink = rel.Target
			}
			d.collect(c, pc)
		case "pPr", "rPr", "delText", "instrText", "del", "commentReference":
		default:
			d.collect(c, pc)
		}
	}
}

func (d *docxBuilder) paragraph(p *ooxml.Node, parent Node) {
	var styleID, numID string
	ilvl := 0
	if ppr := p.Child("pPr"); ppr != nil {
		if s := ppr.Child("pStyle"); s != nil {
			styleID = s.Attr("val")
		}
		if np := ppr.Child("numPr"); np != nil {
			if n := np.Child("numId"); n != nil {
				numID = n.Attr("val")
			}
			if n := np.Child("ilvl"); n != nil {
				ilvl, _ = strconv.Atoi(n.Attr("val"))
			}
		}
	}

	var pc paragraphContent
	d.collect(p, &pc)
	text := strings.TrimSpace(pc.text.String())

	for _, id := range pc.images {
		if pic := d.picture(id, parent); pic != nil {
			d.lastFloat = pic
		}
	}
	if f := strings.TrimSpace(pc.formula.String()); f != "" {
		d.endList()
		d.doc.AddText(LabelFormula, f, parent, nil)
	}
	if text == "" {
		return
	}

	kind, level := d.styleKind(styleID)
	if numID != "" && numID != "0" && kind == "" {
		d.listItem(text, numID, ilvl, parent)
		return
	}
	d.endList()

	switch kind {
	case "title":
		if hasTitle(d.doc) {
			d.doc.AddHeading(text, 1, parent, nil)
		} else {
			d.doc.AddTitle(text, parent, nil)
		}
	case "heading":
		d.doc.AddHeading(text, level, parent, nil)
	case "caption":
		if d.lastFloat != nil {
			d.doc.AddCaption(d.lastFloat, text, nil)
			d.lastFloat = nil
		} else {
			d.doc.AddText(LabelCaption, text, parent, nil)
		}
	case "code":
		d.doc.AddCode(pc.text.String(), "", parent, nil)
	default:
		item := d.doc.AddText(LabelParagraph, text, parent, nil)
		if pc.links == 1 {
			item.Hyperlink = pc.hyperlink
		}
	}
	if kind != "caption" {
		d.lastFloat = nil
	}
}

func (d *docxBuilder) listItem(text, numID string, ilvl int, parent Node) {
	if numID != d.listNumID {
		d.endList()
		d.listNumID = numID
	}
	ilvl = max(0, min(ilvl, 8))
	lvl, ok := d.numbering[numID][ilvl]
	if !ok {
		lvl = docxLevel{numFmt: "bullet", start: 1}
	}
	enumerated := lvl.numFmt != "bullet" && lvl.numFmt != "none" && lvl.numFmt != ""

	for len(d.lists) > ilvl+1 {
		d.lists = d.lists[:len(d.lists)-1]
		d.listItems = d.listItems[:len(d.listItems)-1]
		d.counts = d.counts[:len(d.counts)-1]
	}
	for len(d.lists) < ilvl+1 {
		var owner Node = parent
		if n := len(d.lists); n > 0 {
			owner = d.lists[n-1]
			if d.listItems[n-1] != nil {
				owner = d.listItems[n-1]
			}
		}
		label := GroupList
		if enumerated {
			label = GroupOrderedList
		}
		d.lists = append(d.lists, d.doc.AddGroup(label, "list", owner))
		d.listItems = append(d.listItems, nil)
		d.counts = append(d.counts, 0)
	}

	top := len(d.lists) - 1
	d.counts[top]++
	marker := "-"
	if enumerated {
		marker = strconv.Itoa(lvl.start+d.counts[top]-1) + "."
	}
	d.listItems[top] = d.doc.AddListItem(text, enumerated, marker, d.lists[top], nil)
}

func (d *docxBuilder) endList() {
	d.listNumID = ""
	d.lists = nil
	d.listItems = nil
	d.counts = nil
}

func (d *docxBuilder) picture(relID string, parent Node) *PictureItem {
	rel, ok := d.rels[relID]
	if !ok || rel.External() {
		return nil
	}
	data, err := d.pkg.Read(ooxml.ResolveTarget(docxMainPart, rel.Target))
	if err != nil {
		return nil
	}
	return d.doc.AddPicture(imageFromBytes(data, d.keepURIs), parent, nil)
}

// cellText flattens the paragraphs of a table cell.
func (d *docxBuilder) cellText(tc *ooxml.Node) string {
	var parts []string
	for _, p := range tc.FindAll("p") {
		var pc paragraphContent
		d.collect(p, &pc)
		if t := strings.TrimSpace(pc.text.String()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (d *docxBuilder) table(tbl *ooxml.Node, parent Node) {
	rows := tbl.ChildrenNamed("tr")
	if len(rows) == 0 {
		return
	}
	var data TableData
	// open vertical merges by start column
	open := map[int]int{}

	for r, tr := range rows {
		col := 0
		header := r == 0
		if trPr := tr.Child("trPr"); trPr != nil {
			if gb := trPr.Child("gridBefore"); gb != nil {
				n, _ := strconv.Atoi(gb.Attr("val"))
				col += n
			}
			if trPr.Child("tblHeader") != nil {
				header = true
			}
		}
		for _, tc := range tr.ChildrenNamed("tc") {
			span := 1
			merge := ""
			if tcPr := tc.Child("tcPr"); tcPr != nil {
				if gs := tcPr.Child("gridSpan"); gs != nil {
					if v, err := strconv.Atoi(gs.Attr("val")); err == nil && v > 0 {
						span = v
					}
				}
				if vm := tcPr.Child("vMerge"); vm != nil {
					merge = vm.Attr("val")
					if merge == "" {
						merge = "continue"
					}
				}
			}
			if idx, ok := open[col]; ok && merge == "continue" {
				data.Cells[idx].EndRow = r + 1
				data.Cells[idx].RowSpan++
				col += span
				continue
			}
			delete(open, col)
			data.Cells = append(data.Cells, TableCell{
				Text:         normalizeText(d.cellText(tc)),
				StartRow:     r,
				EndRow:       r + 1,
				StartCol:     col,
				EndCol:       col + span,
				RowSpan:      1,
				ColSpan:      span,
				ColumnHeader: header,
			})
			if merge == "restart" {
				open[col] = len(data.Cells) - 1
			}
			col += span
			data.NumCols = max(data.NumCols, col)
		}
	}
	data.NumRows = len(rows)
	d.lastFloat = d.doc.AddTable(data, parent, nil)
}

// furniture adds page header and footer paragraphs, once per distinct text.
func (d *docxBuilder) furniture() {
	ids := make([]string, 0, len(d.rels))
	for id := range d.rels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seen := map[string]bool{}
	for _, id := range ids {
		rel := d.rels[id]
		var label DocItemLabel
		switch {
		case strings.HasSuffix(rel.Type, "/header"):
			label = LabelPageHeader
		case strings.HasSuffix(rel.Type, "/footer"):
			label = LabelPageFooter
		default:
			continue
		}
		root, err := d.pkg.ReadNode(ooxml.ResolveTarget(docxMainPart, rel.Target))
		if err != nil {
			continue
		}
		for _, p := range root.ChildrenNamed("p") {
			var pc paragraphContent
			d.collect(p, &pc)
			text := strings.TrimSpace(pc.text.String())
			if text == "" || seen[string(label)+text] {
				continue
			}
			seen[string(label)+text] = true
			d.doc.AddFurniture(label, text, nil)
		}
	}
}

// footnotes appends the document's footnotes after the body content.
func (d *docxBuilder) footnotes() {
	root, err := d.pkg.ReadNode("word/footnotes.xml")
	if err != nil {
		return
	}
	for _, fn := range root.ChildrenNamed("footnote") {
		if t := fn.Attr("type"); t != "" && t != "normal" {
			continue
		}
		text := d.cellText(fn)
		if text != "" {
			d.doc.AddText(LabelFootnote, text, nil, nil)
		}
	}
}
