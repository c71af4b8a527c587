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

	"github.com/xuri/excelize/v2"
)

// XlsxBackend handles XLSX files. Each non-empty sheet becomes a page holding
// one table; sizes are measured in cells.
type XlsxBackend struct{}

// NewXlsxBackend creates a new XlsxBackend.
func NewXlsxBackend() *XlsxBackend {
	return &XlsxBackend{}
}

func (b *XlsxBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".xlsx", ".xlsm"}, []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"})
}

func (b *XlsxBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open XLSX: %w", err)
	}
	defer f.Close()

	doc := NewDocument(info.stem())
	pageNo := 0
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		merges, err := f.GetMergeCells(sheet)
		if err != nil {
			return nil, fmt.Errorf("read merged cells of %q: %w", sheet, err)
		}

		data := sheetTable(rows, mergeRanges(merges))
		if data.NumCols == 0 {
			continue
		}
		pageNo++
		size := Size{Width: float64(data.NumCols), Height: float64(data.NumRows)}
		doc.AddPage(pageNo, size)
		g := doc.AddGroup(GroupSheet, "sheet: "+sheet, nil)
		doc.AddTable(data, g, &ProvenanceItem{
			PageNo: pageNo,
			BBox:   BoundingBox{R: size.Width, B: size.Height, CoordOrigin: OriginTopLeft},
		})
	}
	return doc, nil
}

// cellRange is a zero-based, end-exclusive block of merged cells.
type cellRange struct {
	row, col, endRow, endCol int
}

func mergeRanges(merges []excelize.MergeCell) []cellRange {
	var out []cellRange
	for _, m := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		out = append(out, cellRange{row: r1 - 1, col: c1 - 1, endRow: r2, endCol: c2})
	}
	return out
}

// sheetTable builds table data from a sheet's rows. Merged ranges become one
// spanning cell; the first row is the column header.
func sheetTable(rows [][]string, merges []cellRange) TableData {
	data := TableData{NumRows: len(rows)}
	for _, row := range rows {
		data.NumCols = max(data.NumCols, len(row))
	}
	for _, m := range merges {
		data.NumRows = max(data.NumRows, m.endRow)
		data.NumCols = max(data.NumCols, m.endCol)
	}

	covered := map[[2]int]bool{}
	origin := map[[2]int]cellRange{}
	for _, m := range merges {
		origin[[2]int{m.row, m.col}] = m
		for r := m.row; r < m.endRow; r++ {
			for c := m.col; c < m.endCol; c++ {
				if r != m.row || c != m.col {
					covered[[2]int{r, c}] = true
				}
			}
		}
	}

	for r := 0; r < data.NumRows; r++ {
		for c := 0; c < data.NumCols; c++ {
			if covered[[2]int{r, c}] {
				continue
			}
			text := ""
			if r < len(rows) && c < len(rows[r]) {
				text = rows[r][c]
			}
			cell := TableCell{
				Text:         normalizeText(text),
				StartRow:     r,
				EndRow:       r + 1,
				StartCol:     c,
				EndCol:       c + 1,
				ColumnHeader: r == 0,
			}
			if m, ok := origin[[2]int{r, c}]; ok {
				cell.EndRow, cell.EndCol = m.endRow, m.endCol
			}
			cell.RowSpan = cell.EndRow - cell.StartRow
			cell.ColSpan = cell.EndCol - cell.StartCol
			data.Cells = append(data.Cells, cell)
		}
	}
	return data
}
