package docling

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
)

// XlsBackend handles legacy XLS files.
type XlsBackend struct{}

// NewXlsBackend creates a new XlsBackend.
func NewXlsBackend() *XlsBackend {
	return &XlsBackend{}
}

func (b *XlsBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".xls"}, []string{"application/vnd.ms-excel"})
}

func (b *XlsBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	wb, err := xls.OpenReader(reader, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open XLS: %w", err)
	}

	doc := NewDocument(info.stem())
	pageNo := 0
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		rows = trimEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}

		data := sheetTable(rows, nil)
		pageNo++
		size := Size{Width: float64(data.NumCols), Height: float64(data.NumRows)}
		doc.AddPage(pageNo, size)
		g := doc.AddGroup(GroupSheet, "sheet: "+name, nil)
		doc.AddTable(data, g, &ProvenanceItem{
			PageNo: pageNo,
			BBox:   BoundingBox{R: size.Width, B: size.Height, CoordOrigin: OriginTopLeft},
		})
	}
	return doc, nil
}

// trimEmptyRows drops trailing rows without any content.
func trimEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 {
		last := rows[len(rows)-1]
		empty := true
		for _, c := range last {
			if c != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		rows = rows[:len(rows)-1]
	}
	return rows
}
