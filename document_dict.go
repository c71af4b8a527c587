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
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Dict is the exported mapping of a document. Keys keep insertion order so the
// same document always serializes to the same bytes.
type Dict = *orderedmap.OrderedMap[string, any]

func newDict() Dict {
	return orderedmap.New[string, any]()
}

// ToDict exports the document as a nested mapping of field names to values.
// Values are nil, bool, int, uint64, float64, string, []any or Dict.
func (d *Document) ToDict() Dict {
	m := newDict()
	m.Set("schema_name", SchemaName)
	m.Set("version", SchemaVersion)
	m.Set("name", d.Name)
	if d.Origin != nil {
		m.Set("origin", originDict(d.Origin))
	} else {
		m.Set("origin", nil)
	}
	m.Set("furniture", groupDict(d.Furniture))
	m.Set("body", groupDict(d.Body))

	groups := make([]any, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, groupDict(g))
	}
	m.Set("groups", groups)

	texts := make([]any, 0, len(d.Texts))
	for _, t := range d.Texts {
		texts = append(texts, textDict(t))
	}
	m.Set("texts", texts)

	tables := make([]any, 0, len(d.Tables))
	for _, t := range d.Tables {
		tables = append(tables, tableDict(t))
	}
	m.Set("tables", tables)

	pictures := make([]any, 0, len(d.Pictures))
	for _, p := range d.Pictures {
		pictures = append(pictures, pictureDict(p))
	}
	m.Set("pictures", pictures)

	m.Set("pages", pagesDict(d.Pages))
	return m
}

func originDict(o *DocumentOrigin) Dict {
	m := newDict()
	m.Set("mimetype", o.MIMEType)
	m.Set("binary_hash", o.BinaryHash)
	m.Set("filename", o.Filename)
	if o.URI != "" {
		m.Set("uri", o.URI)
	} else {
		m.Set("uri", nil)
	}
	return m
}

func refDict(r RefItem) Dict {
	m := newDict()
	m.Set("$ref", r.Ref)
	return m
}

func refList(refs []RefItem) []any {
	out := make([]any, 0, len(refs))
	for _, r := range refs {
		out = append(out, refDict(r))
	}
	return out
}

func nodeDict(n *NodeItem) Dict {
	m := newDict()
	m.Set("self_ref", n.SelfRef)
	if n.Parent != nil {
		m.Set("parent", refDict(*n.Parent))
	} else {
		m.Set("parent", nil)
	}
	m.Set("children", refList(n.Children))
	m.Set("content_layer", string(n.ContentLayer))
	return m
}

func groupDict(g *GroupItem) Dict {
	m := nodeDict(&g.NodeItem)
	m.Set("name", g.Name)
	m.Set("label", string(g.Label))
	return m
}

func textDict(t *TextItem) Dict {
	m := nodeDict(&t.NodeItem)
	m.Set("label", string(t.Label))
	m.Set("prov", provList(t.Prov))
	m.Set("orig", t.Orig)
	m.Set("text", t.Text)
	switch t.Label {
	case LabelSectionHeader:
		m.Set("level", t.Level)
	case LabelListItem:
		m.Set("enumerated", t.Enumerated)
		m.Set("marker", t.Marker)
	case LabelCode:
		if t.CodeLanguage != "" {
			m.Set("code_language", t.CodeLanguage)
		} else {
			m.Set("code_language", "unknown")
		}
	}
	if t.Hyperlink != "" {
		m.Set("hyperlink", t.Hyperlink)
	}
	return m
}

func provList(prov []ProvenanceItem) []any {
	out := make([]any, 0, len(prov))
	for _, p := range prov {
		m := newDict()
		m.Set("page_no", p.PageNo)
		m.Set("bbox", bboxDict(p.BBox))
		m.Set("charspan", []any{p.Charspan[0], p.Charspan[1]})
		out = append(out, m)
	}
	return out
}

func bboxDict(b BoundingBox) Dict {
	m := newDict()
	m.Set("l", b.L)
	m.Set("t", b.T)
	m.Set("r", b.R)
	m.Set("b", b.B)
	m.Set("coord_origin", string(b.CoordOrigin))
	return m
}

func tableDict(t *TableItem) Dict {
	m := nodeDict(&t.NodeItem)
	m.Set("label", string(t.Label))
	m.Set("prov", provList(t.Prov))
	m.Set("captions", refList(t.Captions))

	data := newDict()
	cells := make([]any, 0, len(t.Data.Cells))
	for _, c := range t.Data.Cells {
		cells = append(cells, cellDict(c))
	}
	data.Set("table_cells", cells)
	data.Set("num_rows", t.Data.NumRows)
	data.Set("num_cols", t.Data.NumCols)

	grid := make([]any, 0, t.Data.NumRows)
	for _, row := range t.Data.Grid() {
		r := make([]any, 0, len(row))
		for _, c := range row {
			r = append(r, cellDict(c))
		}
		grid = append(grid, r)
	}
	data.Set("grid", grid)
	m.Set("data", data)
	return m
}

func cellDict(c TableCell) Dict {
	m := newDict()
	m.Set("row_span", c.RowSpan)
	m.Set("col_span", c.ColSpan)
	m.Set("start_row_offset_idx", c.StartRow)
	m.Set("end_row_offset_idx", c.EndRow)
	m.Set("start_col_offset_idx", c.StartCol)
	m.Set("end_col_offset_idx", c.EndCol)
	m.Set("text", c.Text)
	m.Set("column_header", c.ColumnHeader)
	m.Set("row_header", c.RowHeader)
	return m
}

func pictureDict(p *PictureItem) Dict {
	m := nodeDict(&p.NodeItem)
	m.Set("label", string(p.Label))
	m.Set("prov", provList(p.Prov))
	m.Set("captions", refList(p.Captions))
	if p.Image == nil {
		m.Set("image", nil)
		return m
	}
	img := newDict()
	img.Set("mimetype", p.Image.MIMEType)
	img.Set("dpi", p.Image.DPI)
	img.Set("size", sizeDict(p.Image.Size))
	if p.Image.URI != "" {
		img.Set("uri", p.Image.URI)
	} else {
		img.Set("uri", nil)
	}
	m.Set("image", img)
	return m
}

func sizeDict(s Size) Dict {
	m := newDict()
	m.Set("width", s.Width)
	m.Set("height", s.Height)
	return m
}

func pagesDict(pages map[int]*PageItem) Dict {
	nums := make([]int, 0, len(pages))
	for n := range pages {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	m := newDict()
	for _, n := range nums {
		p := newDict()
		p.Set("size", sizeDict(pages[n].Size))
		p.Set("page_no", pages[n].PageNo)
		m.Set(strconv.Itoa(n), p)
	}
	return m
}
