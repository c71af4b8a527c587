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

	"github.com/nicholasgasior/docling-go/internal/ooxml"
)

const (
	pptxMainPart = "ppt/presentation.xml"
	// emuPerPoint converts DrawingML English Metric Units to points.
	emuPerPoint = 12700.0
)

// PptxBackend handles PPTX files. Every slide becomes a page and a slide group.
type PptxBackend struct {
	c *DocumentConverter
}

// NewPptxBackend creates a new PptxBackend.
func NewPptxBackend(c *DocumentConverter) *PptxBackend {
	return &PptxBackend{c: c}
}

func (b *PptxBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".pptx"}, []string{"application/vnd.openxmlformats-officedocument.presentationml"})
}

func (b *PptxBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read PPTX: %w", err)
	}
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open PPTX: %w", err)
	}
	pres, err := pkg.ReadNode(pptxMainPart)
	if err != nil {
		return nil, fmt.Errorf("read presentation.xml: %w", err)
	}

	size := Size{Width: 720, Height: 540}
	if sz := pres.Child("sldSz"); sz != nil {
		size = Size{Width: emuAttr(sz, "cx") / emuPerPoint, Height: emuAttr(sz, "cy") / emuPerPoint}
	}

	slides, err := slideOrder(pkg, pres)
	if err != nil {
		return nil, fmt.Errorf("get slide order: %w", err)
	}

	doc := NewDocument(info.stem())
	for i, slidePath := range slides {
		pageNo := i + 1
		doc.AddPage(pageNo, size)

		slide, err := pkg.ReadNode(slidePath)
		if err != nil {
			continue
		}
		rels, err := pkg.Relationships(slidePath)
		if err != nil {
			return nil, fmt.Errorf("slide %d relationships: %w", pageNo, err)
		}
		s := &slideBuilder{
			doc:      doc,
			pkg:      pkg,
			path:     slidePath,
			rels:     rels,
			pageNo:   pageNo,
			keepURIs: b.c.keepDataURIs,
			group:    doc.AddGroup(GroupSlide, fmt.Sprintf("slide-%d", i), nil),
		}
		s.build(slide)
		s.notes()
	}
	return doc, nil
}

// slideOrder returns slide part names in presentation order.
func slideOrder(pkg *ooxml.Package, pres *ooxml.Node) ([]string, error) {
	rels, err := pkg.Relationships(pptxMainPart)
	if err != nil {
		return nil, err
	}
	var paths []string
	if lst := pres.Child("sldIdLst"); lst != nil {
		for _, id := range lst.ChildrenNamed("sldId") {
			for _, a := range id.Attrs {
				if a.Name.Local == "id" && a.Name.Space == ooxml.NSRelDoc {
					if rel, ok := rels[a.Value]; ok {
						paths = append(paths, ooxml.ResolveTarget(pptxMainPart, rel.Target))
					}
				}
			}
		}
	}
	if len(paths) == 0 {
		paths = pkg.Names("ppt/slides/slide", ".xml")
		sort.SliceStable(paths, func(i, j int) bool {
			return slideNumber(paths[i]) < slideNumber(paths[j])
		})
	}
	return paths, nil
}

func slideNumber(p string) int {
	n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(p, "ppt/slides/slide"), ".xml"))
	return n
}

func emuAttr(n *ooxml.Node, key string) float64 {
	v, _ := strconv.ParseFloat(n.Attr(key), 64)
	return v
}

type pptxShape struct {
	node     *ooxml.Node
	bbox     BoundingBox
	hasFrame bool
}

type slideBuilder struct {
	doc      *Document
	pkg      *ooxml.Package
	path     string
	rels     map[string]ooxml.Relationship
	pageNo   int
	keepURIs bool
	group    *GroupItem
}

func (s *slideBuilder) build(slide *ooxml.Node) {
	tree := slide.Path("cSld", "spTree")
	if tree == nil {
		return
	}
	var shapes []pptxShape
	s.collect(tree, slideSpace, &shapes)

	// reading order: top to bottom, then left to right
	sort.SliceStable(shapes, func(i, j int) bool {
		if shapes[i].bbox.T != shapes[j].bbox.T {
			return shapes[i].bbox.T < shapes[j].bbox.T
		}
		return shapes[i].bbox.L < shapes[j].bbox.L
	})

	for _, sh := range shapes {
		switch sh.node.Local() {
		case "sp":
			s.textShape(sh)
		case "pic":
			s.picture(sh)
		case "graphicFrame":
			s.graphicFrame(sh)
		}
	}
}

// groupTransform maps the child coordinates of nested groups to slide EMUs,
// one scale and offset per axis.
type groupTransform struct {
	sx, dx, sy, dy float64
}

var slideSpace = groupTransform{sx: 1, sy: 1}

// within returns t composed with the child space of a group's a:xfrm.
func (t groupTransform) within(xfrm *ooxml.Node) groupTransform {
	if xfrm == nil {
		return t
	}
	off, chOff := xfrm.Child("off"), xfrm.Child("chOff")
	if off == nil || chOff == nil {
		return t
	}
	local := slideSpace
	if ext, chExt := xfrm.Child("ext"), xfrm.Child("chExt"); ext != nil && chExt != nil {
		if cx := emuAttr(chExt, "cx"); cx > 0 {
			local.sx = emuAttr(ext, "cx") / cx
		}
		if cy := emuAttr(chExt, "cy"); cy > 0 {
			local.sy = emuAttr(ext, "cy") / cy
		}
	}
	local.dx = emuAttr(off, "x") - local.sx*emuAttr(chOff, "x")
	local.dy = emuAttr(off, "y") - local.sy*emuAttr(chOff, "y")
	return groupTransform{
		sx: t.sx * local.sx, dx: t.sx*local.dx + t.dx,
		sy: t.sy * local.sy, dy: t.sy*local.dy + t.dy,
	}
}

func (s *slideBuilder) collect(n *ooxml.Node, tf groupTransform, out *[]pptxShape) {
	for i := range n.Children {
		c := &n.Children[i]
		switch c.Local() {
		case "sp", "pic", "graphicFrame":
			sh := pptxShape{node: c, bbox: BoundingBox{CoordOrigin: OriginTopLeft}}
			xfrm := c.Path("spPr", "xfrm")
			if xfrm == nil {
				xfrm = c.Child("xfrm")
			}
			if xfrm != nil {
				if off := xfrm.Child("off"); off != nil {
					sh.bbox.L = (tf.sx*emuAttr(off, "x") + tf.dx) / emuPerPoint
					sh.bbox.T = (tf.sy*emuAttr(off, "y") + tf.dy) / emuPerPoint
					sh.hasFrame = true
				}
				if ext := xfrm.Child("ext"); ext != nil {
					sh.bbox.R = sh.bbox.L + tf.sx*emuAttr(ext, "cx")/emuPerPoint
					sh.bbox.B = sh.bbox.T + tf.sy*emuAttr(ext, "cy")/emuPerPoint
				}
			}
			*out = append(*out, sh)
		case "grpSp":
			s.collect(c, tf.within(c.Path("grpSpPr", "xfrm")), out)
		}
	}
}

func (s *slideBuilder) prov(sh pptxShape) *ProvenanceItem {
	if !sh.hasFrame {
		return &ProvenanceItem{PageNo: s.pageNo, BBox: BoundingBox{CoordOrigin: OriginTopLeft}}
	}
	return &ProvenanceItem{PageNo: s.pageNo, BBox: sh.bbox}
}

func placeholderType(sp *ooxml.Node) (string, bool) {
	ph := sp.Path("nvSpPr", "nvPr", "ph")
	if ph == nil {
		return "", false
	}
	return ph.Attr("type"), true
}

// paragraphText flattens the runs, fields and breaks of an a:p.
func paragraphText(p *ooxml.Node) string {
	var sb strings.Builder
	for i := range p.Children {
		c := &p.Children[i]
		switch c.Local() {
		case "r", "fld":
			if t := c.Child("t"); t != nil {
				sb.WriteString(t.Content)
			}
		case "br":
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func (s *slideBuilder) textShape(sh pptxShape) {
	body := sh.node.Child("txBody")
	if body == nil {
		return
	}
	phType, isPlaceholder := placeholderType(sh.node)
	prov := s.prov(sh)

	switch phType {
	case "title", "ctrTitle":
		if t := s.joinParagraphs(body); t != "" {
			s.doc.AddTitle(t, s.group, prov)
		}
		return
	case "subTitle":
		if t := s.joinParagraphs(body); t != "" {
			s.doc.AddHeading(t, 1, s.group, prov)
		}
		return
	case "sldNum", "dt", "ftr":
		if t := s.joinParagraphs(body); t != "" {
			s.doc.AddFurniture(LabelPageFooter, t, prov)
		}
		return
	case "hdr":
		if t := s.joinParagraphs(body); t != "" {
			s.doc.AddFurniture(LabelPageHeader, t, prov)
		}
		return
	}

	// Body placeholders bullet their paragraphs unless told otherwise.
	defaultBullets := isPlaceholder && (phType == "" || phType == "body" || phType == "obj")

	var lists []*GroupItem
	var counts []int
	for _, p := range body.ChildrenNamed("p") {
		text := strings.TrimSpace(paragraphText(p))
		if text == "" {
			continue
		}
		bullet, enumerated, level := paragraphBullet(p, defaultBullets)
		if !bullet {
			lists, counts = nil, nil
			s.doc.AddText(LabelText, text, s.group, prov)
			continue
		}
		for len(lists) > level+1 {
			lists, counts = lists[:len(lists)-1], counts[:len(counts)-1]
		}
		for len(lists) < level+1 {
			var owner Node = s.group
			if len(lists) > 0 {
				owner = lists[len(lists)-1]
			}
			label := GroupList
			if enumerated {
				label = GroupOrderedList
			}
			lists = append(lists, s.doc.AddGroup(label, "list", owner))
			counts = append(counts, 0)
		}
		top := len(lists) - 1
		counts[top]++
		marker := "-"
		if enumerated {
			marker = strconv.Itoa(counts[top]) + "."
		}
		s.doc.AddListItem(text, enumerated, marker, lists[top], prov)
	}
}

// paragraphBullet reads a:pPr: whether the paragraph is bulleted, numbered,
// and its nesting level.
func paragraphBullet(p *ooxml.Node, defaultBullets bool) (bullet, enumerated bool, level int) {
	bullet = defaultBullets
	ppr := p.Child("pPr")
	if ppr == nil {
		return bullet, false, 0
	}
	level, _ = strconv.Atoi(ppr.Attr("lvl"))
	switch {
	case ppr.Child("buNone") != nil:
		return false, false, level
	case ppr.Child("buAutoNum") != nil:
		return true, true, level
	case ppr.Child("buChar") != nil:
		return true, false, level
	}
	return bullet, false, level
}

func (s *slideBuilder) joinParagraphs(body *ooxml.Node) string {
	var parts []string
	for _, p := range body.ChildrenNamed("p") {
		if t := strings.TrimSpace(paragraphText(p)); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (s *slideBuilder) picture(sh pptxShape) {
	var img *ImageRef
	if blip := sh.node.Find("blip"); blip != nil {
		if rel, ok := s.rels[blip.Attr("embed")]; ok && !rel.External() {
			if data, err := s.pkg.Read(ooxml.ResolveTarget(s.path, rel.Target)); err == nil {
				img = imageFromBytes(data, s.keepURIs)
			}
		}
	}
	pic := s.doc.AddPicture(img, s.group, s.prov(sh))
	if c := sh.node.Path("nvPicPr", "cNvPr"); c != nil {
		if alt := strings.TrimSpace(c.Attr("descr")); alt != "" {
			s.doc.AddCaption(pic, alt, s.prov(sh))
		}
	}
}

func (s *slideBuilder) graphicFrame(sh pptxShape) {
	tbl := sh.node.Find("tbl")
	if tbl == nil {
		return
	}
	rows := tbl.ChildrenNamed("tr")
	if len(rows) == 0 {
		return
	}
	var data TableData
	data.NumRows = len(rows)
	for r, tr := range rows {
		for col, tc := range tr.ChildrenNamed("tc") {
			// merged continuation cells are covered by their origin cell
			if tc.Attr("hMerge") == "1" || tc.Attr("vMerge") == "1" {
				continue
			}
			rowSpan := max(1, int(emuAttr(tc, "rowSpan")))
			colSpan := max(1, int(emuAttr(tc, "gridSpan")))
			var text string
			if body := tc.Child("txBody"); body != nil {
				text = s.joinParagraphs(body)
			}
			data.Cells = append(data.Cells, TableCell{
				Text:         normalizeText(text),
				StartRow:     r,
				EndRow:       min(r+rowSpan, len(rows)),
				StartCol:     col,
				EndCol:       col + colSpan,
				RowSpan:      min(rowSpan, len(rows)-r),
				ColSpan:      colSpan,
				ColumnHeader: r == 0,
			})
			data.NumCols = max(data.NumCols, col+colSpan)
		}
	}
	s.doc.AddTable(data, s.group, s.prov(sh))
}

// notes adds the slide's speaker notes to the furniture.
func (s *slideBuilder) notes() {
	for _, rel := range s.rels {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		notes, err := s.pkg.ReadNode(ooxml.ResolveTarget(s.path, rel.Target))
		if err != nil {
			return
		}
		for _, sp := range notes.FindAll("sp") {
			if phType, _ := placeholderType(sp); phType != "body" {
				continue
			}
			if body := sp.Child("txBody"); body != nil {
				if t := s.joinParagraphs(body); t != "" {
					s.doc.AddFurniture(LabelText, t, &ProvenanceItem{
						PageNo: s.pageNo,
						BBox:   BoundingBox{CoordOrigin: OriginTopLeft},
					})
				}
			}
		}
		return
	}
}
