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
	"unicode/utf8"
)

// attach links child under parent. A nil parent means the body root.
func (d *Document) attach(child *NodeItem, parent Node) {
	if parent == nil {
		parent = d.Body
	}
	p := parent.node()
	child.Parent = &RefItem{Ref: p.SelfRef}
	if child.ContentLayer == "" {
		child.ContentLayer = p.ContentLayer
	}
	p.Children = append(p.Children, RefItem{Ref: child.SelfRef})
}

// AddGroup appends a group under parent.
func (d *Document) AddGroup(label GroupLabel, name string, parent Node) *GroupItem {
	g := &GroupItem{
		NodeItem: NodeItem{SelfRef: fmt.Sprintf("#/groups/%d", len(d.Groups))},
		Name:     name,
		Label:    label,
	}
	if g.Name == "" {
		g.Name = string(label)
	}
	d.Groups = append(d.Groups, g)
	d.attach(&g.NodeItem, parent)
	return g
}

// AddText appends a text item under parent. prov may be nil.
func (d *Document) AddText(label DocItemLabel, text string, parent Node, prov *ProvenanceItem) *TextItem {
	return d.addText(&TextItem{Label: label, Orig: text, Text: normalizeText(text)}, parent, prov)
}

// AddTitle appends a title item.
func (d *Document) AddTitle(text string, parent Node, prov *ProvenanceItem) *TextItem {
	return d.AddText(LabelTitle, text, parent, prov)
}

// AddHeading appends a section header. Levels below 1 are clamped to 1.
func (d *Document) AddHeading(text string, level int, parent Node, prov *ProvenanceItem) *TextItem {
	if level < 1 {
		level = 1
	}
	return d.addText(&TextItem{
		Label: LabelSectionHeader,
		Orig:  text,
		Text:  normalizeText(text),
		Level: level,
	}, parent, prov)
}

// AddListItem appends a list item. parent should be a list group.
func (d *Document) AddListItem(text string, enumerated bool, marker string, parent Node, prov *ProvenanceItem) *TextItem {
	if marker == "" {
		marker = "-"
	}
	return d.addText(&TextItem{
		Label:      LabelListItem,
		Orig:       text,
		Text:       normalizeText(text),
		Enumerated: enumerated,
		Marker:     marker,
	}, parent, prov)
}

// AddCode appends a code block. Code keeps its whitespace.
func (d *Document) AddCode(text, language string, parent Node, prov *ProvenanceItem) *TextItem {
	return d.addText(&TextItem{
		Label:        LabelCode,
		Orig:         text,
		Text:         normalizeCode(text),
		CodeLanguage: language,
	}, parent, prov)
}

// AddFurniture appends a text item to the furniture tree (page headers, footers, notes).
func (d *Document) AddFurniture(label DocItemLabel, text string, prov *ProvenanceItem) *TextItem {
	return d.addText(&TextItem{Label: label, Orig: text, Text: normalizeText(text)}, d.Furniture, prov)
}

func (d *Document) addText(item *TextItem, parent Node, prov *ProvenanceItem) *TextItem {
	item.SelfRef = fmt.Sprintf("#/texts/%d", len(d.Texts))
	if prov != nil {
		p := *prov
		p.Charspan = [2]int{0, utf8.RuneCountInString(item.Text)}
		item.Prov = []ProvenanceItem{p}
	}
	d.Texts = append(d.Texts, item)
	d.attach(&item.NodeItem, parent)
	return item
}

// AddTable appends a table under parent.
func (d *Document) AddTable(data TableData, parent Node, prov *ProvenanceItem) *TableItem {
	t := &TableItem{
		NodeItem: NodeItem{SelfRef: fmt.Sprintf("#/tables/%d", len(d.Tables))},
		Label:    LabelTable,
		Data:     data,
	}
	if prov != nil {
		t.Prov = []ProvenanceItem{*prov}
	}
	d.Tables = append(d.Tables, t)
	d.attach(&t.NodeItem, parent)
	return t
}

// AddPicture appends a picture under parent. image may be nil.
func (d *Document) AddPicture(image *ImageRef, parent Node, prov *ProvenanceItem) *PictureItem {
	p := &PictureItem{
		NodeItem: NodeItem{SelfRef: fmt.Sprintf("#/pictures/%d", len(d.Pictures))},
		Label:    LabelPicture,
		Image:    image,
	}
	if prov != nil {
		p.Prov = []ProvenanceItem{*prov}
	}
	d.Pictures = append(d.Pictures, p)
	d.attach(&p.NodeItem, parent)
	return p
}

// AddCaption appends a caption as a child of a table or picture and links it
// from the target's captions.
func (d *Document) AddCaption(target Node, text string, prov *ProvenanceItem) *TextItem {
	c := d.AddText(LabelCaption, text, target, prov)
	switch t := target.(type) {
	case *TableItem:
		t.Captions = append(t.Captions, RefItem{Ref: c.SelfRef})
	case *PictureItem:
		t.Captions = append(t.Captions, RefItem{Ref: c.SelfRef})
	}
	return c
}

// AddPage records a page. Adding an existing page number replaces its size.
func (d *Document) AddPage(pageNo int, size Size) *PageItem {
	p := &PageItem{PageNo: pageNo, Size: size}
	d.Pages[pageNo] = p
	return p
}

// Graft copies the body tree of src under parent. Provenance is dropped because
// page numbers of src do not exist in d.
func (d *Document) Graft(src *Document, parent Node) {
	if parent == nil {
		parent = d.Body
	}
	d.graft(src, src.Body, parent)
}

func (d *Document) graft(src *Document, from Node, to Node) {
	for _, ref := range from.node().Children {
		n := src.Resolve(ref)
		switch it := n.(type) {
		case *GroupItem:
			g := d.AddGroup(it.Label, it.Name, to)
			d.graft(src, it, g)
		case *TextItem:
			cp := *it
			cp.NodeItem = NodeItem{}
			cp.Prov = nil
			added := d.addText(&cp, to, nil)
			d.graft(src, it, added)
		case *TableItem:
			t := d.AddTable(it.Data, to, nil)
			d.graftCaptions(src, it, t, it.Captions)
		case *PictureItem:
			p := d.AddPicture(it.Image, to, nil)
			d.graftCaptions(src, it, p, it.Captions)
		}
	}
}

func (d *Document) graftCaptions(src *Document, from Node, to Node, captions []RefItem) {
	isCaption := make(map[string]bool, len(captions))
	for _, c := range captions {
		isCaption[c.Ref] = true
	}
	for _, ref := range from.node().Children {
		it, ok := src.Resolve(ref).(*TextItem)
		if !ok {
			continue
		}
		if isCaption[ref.Ref] {
			d.AddCaption(to, it.Orig, nil)
		} else {
			d.AddText(it.Label, it.Orig, to, nil)
		}
	}
}

// TableFromRows builds TableData from a row-major string matrix. Short rows are
// padded; the first headerRows rows are flagged as column headers.
func TableFromRows(rows [][]string, headerRows int) TableData {
	numCols := 0
	for _, row := range rows {
		numCols = max(numCols, len(row))
	}
	data := TableData{NumRows: len(rows), NumCols: numCols}
	for r, row := range rows {
		for c := 0; c < numCols; c++ {
			text := ""
			if c < len(row) {
				text = row[c]
			}
			data.Cells = append(data.Cells, TableCell{
				Text:         normalizeText(text),
				StartRow:     r,
				EndRow:       r + 1,
				StartCol:     c,
				EndCol:       c + 1,
				RowSpan:      1,
				ColSpan:      1,
				ColumnHeader: r < headerRows,
			})
		}
	}
	return data
}
