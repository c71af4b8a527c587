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
	"strconv"
	"strings"
)

const (
	// SchemaName identifies the exported document layout.
	SchemaName = "DoclingDocument"
	// SchemaVersion is the version of the exported document layout.
	SchemaVersion = "1.0.0"
)

// DocItemLabel classifies a content item.
type DocItemLabel string

const (
	LabelTitle         DocItemLabel = "title"
	LabelSectionHeader DocItemLabel = "section_header"
	LabelText          DocItemLabel = "text"
	LabelParagraph     DocItemLabel = "paragraph"
	LabelListItem      DocItemLabel = "list_item"
	LabelCaption       DocItemLabel = "caption"
	LabelFootnote      DocItemLabel = "footnote"
	LabelPageHeader    DocItemLabel = "page_header"
	LabelPageFooter    DocItemLabel = "page_footer"
	LabelCode          DocItemLabel = "code"
	LabelFormula       DocItemLabel = "formula"
	LabelTable         DocItemLabel = "table"
	LabelPicture       DocItemLabel = "picture"
)

// GroupLabel classifies a group node.
type GroupLabel string

const (
	GroupUnspecified GroupLabel = "unspecified"
	GroupList        GroupLabel = "list"
	GroupOrderedList GroupLabel = "ordered_list"
	GroupChapter     GroupLabel = "chapter"
	GroupSection     GroupLabel = "section"
	GroupSheet       GroupLabel = "sheet"
	GroupSlide       GroupLabel = "slide"
)

// ContentLayer separates main content from page furniture (headers, footers, notes).
type ContentLayer string

const (
	LayerBody      ContentLayer = "body"
	LayerFurniture ContentLayer = "furniture"
)

// CoordOrigin tells which corner a bounding box is measured from.
type CoordOrigin string

const (
	OriginTopLeft    CoordOrigin = "TOPLEFT"
	OriginBottomLeft CoordOrigin = "BOTTOMLEFT"
)

// RefItem is a JSON pointer to another node of the same document, e.g. "#/texts/3".
type RefItem struct {
	Ref string
}

// Size is a width/height pair in points (PDF, PPTX) or cells (spreadsheets).
type Size struct {
	Width  float64
	Height float64
}

// BoundingBox is a rectangle on a page. For BOTTOMLEFT boxes T > B.
type BoundingBox struct {
	L, T, R, B  float64
	CoordOrigin CoordOrigin
}

// Width returns the horizontal extent of the box.
func (b BoundingBox) Width() float64 { return b.R - b.L }

// Height returns the vertical extent of the box regardless of origin.
func (b BoundingBox) Height() float64 {
	if b.CoordOrigin == OriginBottomLeft {
		return b.T - b.B
	}
	return b.B - b.T
}

// Union returns the smallest box covering both b and o. Both must share an origin.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	u := BoundingBox{
		L:           min(b.L, o.L),
		R:           max(b.R, o.R),
		CoordOrigin: b.CoordOrigin,
	}
	if b.CoordOrigin == OriginBottomLeft {
		u.T = max(b.T, o.T)
		u.B = min(b.B, o.B)
	} else {
		u.T = min(b.T, o.T)
		u.B = max(b.B, o.B)
	}
	return u
}

// ToTopLeft converts the box to a top-left origin on a page of the given height.
func (b BoundingBox) ToTopLeft(pageHeight float64) BoundingBox {
	if b.CoordOrigin != OriginBottomLeft {
		return b
	}
	return BoundingBox{
		L:           b.L,
		T:           pageHeight - b.T,
		R:           b.R,
		B:           pageHeight - b.B,
		CoordOrigin: OriginTopLeft,
	}
}

// ProvenanceItem locates an item on a page.
type ProvenanceItem struct {
	PageNo   int
	BBox     BoundingBox
	Charspan [2]int
}

// NodeItem holds the tree links shared by groups and content items.
type NodeItem struct {
	SelfRef      string
	Parent       *RefItem
	Children     []RefItem
	ContentLayer ContentLayer
}

func (n *NodeItem) node() *NodeItem { return n }

// Node is implemented by every item that can take part in the document tree.
type Node interface {
	node() *NodeItem
}

// GroupItem is a structural container without content of its own.
type GroupItem struct {
	NodeItem
	Name  string
	Label GroupLabel
}

// TextItem covers every textual label: titles, headers, paragraphs, list items,
// captions, code and formulas.
type TextItem struct {
	NodeItem
	Label DocItemLabel
	Prov  []ProvenanceItem
	Orig  string
	Text  string

	// Level is set for section headers (1-based).
	Level int
	// Enumerated and Marker are set for list items.
	Enumerated bool
	Marker     string
	// CodeLanguage is set for code items.
	CodeLanguage string
	Hyperlink    string
}

// TableCell is one cell of a table grid. Offsets are half-open.
type TableCell struct {
	Text         string
	StartRow     int
	EndRow       int
	StartCol     int
	EndCol       int
	RowSpan      int
	ColSpan      int
	ColumnHeader bool
	RowHeader    bool
}

// TableData is the content of a table.
type TableData struct {
	NumRows int
	NumCols int
	Cells   []TableCell
}

// Grid expands the cells into a NumRows x NumCols matrix. Spanning cells occupy
// every slot they cover; empty slots get a zero-span placeholder.
func (t TableData) Grid() [][]TableCell {
	grid := make([][]TableCell, t.NumRows)
	for r := range grid {
		grid[r] = make([]TableCell, t.NumCols)
		for c := range grid[r] {
			grid[r][c] = TableCell{
				StartRow: r, EndRow: r + 1,
				StartCol: c, EndCol: c + 1,
				RowSpan: 1, ColSpan: 1,
			}
		}
	}
	for _, cell := range t.Cells {
		for r := cell.StartRow; r < cell.EndRow && r < t.NumRows; r++ {
			for c := cell.StartCol; c < cell.EndCol && c < t.NumCols; c++ {
				grid[r][c] = cell
			}
		}
	}
	return grid
}

// TableItem is a table with optional captions.
type TableItem struct {
	NodeItem
	Label    DocItemLabel
	Prov     []ProvenanceItem
	Captions []RefItem
	Data     TableData
}

// ImageRef describes the pixels behind a picture.
type ImageRef struct {
	MIMEType string
	DPI      int
	Size     Size
	URI      string
}

// PictureItem is an embedded image with optional captions.
type PictureItem struct {
	NodeItem
	Label    DocItemLabel
	Prov     []ProvenanceItem
	Captions []RefItem
	Image    *ImageRef
}

// PageItem describes one page of the source document.
type PageItem struct {
	PageNo int
	Size   Size
}

// DocumentOrigin records where the document came from.
type DocumentOrigin struct {
	MIMEType   string
	BinaryHash uint64
	Filename   string
	URI        string
}

// Document is the structured representation produced by every backend.
//
// Items live in flat per-kind slices; the tree is expressed through
// Parent/Children references rooted at Body and Furniture.
type Document struct {
	Name      string
	Origin    *DocumentOrigin
	Furniture *GroupItem
	Body      *GroupItem
	Groups    []*GroupItem
	Texts     []*TextItem
	Tables    []*TableItem
	Pictures  []*PictureItem
	Pages     map[int]*PageItem
}

// NewDocument creates an empty document with body and furniture roots.
func NewDocument(name string) *Document {
	return &Document{
		Name: name,
		Furniture: &GroupItem{
			NodeItem: NodeItem{SelfRef: "#/furniture", ContentLayer: LayerFurniture},
			Name:     "_root_",
			Label:    GroupUnspecified,
		},
		Body: &GroupItem{
			NodeItem: NodeItem{SelfRef: "#/body", ContentLayer: LayerBody},
			Name:     "_root_",
			Label:    GroupUnspecified,
		},
		Pages: make(map[int]*PageItem),
	}
}

// Resolve returns the node a reference points to, or nil when it is dangling.
func (d *Document) Resolve(ref RefItem) Node {
	switch ref.Ref {
	case "#/body":
		return d.Body
	case "#/furniture":
		return d.Furniture
	}
	parts := strings.Split(strings.TrimPrefix(ref.Ref, "#/"), "/")
	if len(parts) != 2 {
		return nil
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return nil
	}
	switch parts[0] {
	case "groups":
		if idx < len(d.Groups) {
			return d.Groups[idx]
		}
	case "texts":
		if idx < len(d.Texts) {
			return d.Texts[idx]
		}
	case "tables":
		if idx < len(d.Tables) {
			return d.Tables[idx]
		}
	case "pictures":
		if idx < len(d.Pictures) {
			return d.Pictures[idx]
		}
	}
	return nil
}

// Walk visits the body tree depth-first in reading order. The callback receives
// each node and its depth below the root; returning false skips the node's children.
func (d *Document) Walk(fn func(n Node, depth int) bool) {
	d.walk(d.Body, 0, fn)
}

// WalkFurniture is Walk for the furniture tree.
func (d *Document) WalkFurniture(fn func(n Node, depth int) bool) {
	d.walk(d.Furniture, 0, fn)
}

func (d *Document) walk(n Node, depth int, fn func(Node, int) bool) {
	for _, child := range n.node().Children {
		c := d.Resolve(child)
		if c == nil {
			continue
		}
		if fn(c, depth) {
			d.walk(c, depth+1, fn)
		}
	}
}

// NumPages returns the number of pages recorded for the document.
func (d *Document) NumPages() int {
	return len(d.Pages)
}

// String implements fmt.Stringer for debugging.
func (d *Document) String() string {
	return fmt.Sprintf("Document(name=%q, texts=%d, tables=%d, pictures=%d, pages=%d)",
		d.Name, len(d.Texts), len(d.Tables), len(d.Pictures), len(d.Pages))
}
