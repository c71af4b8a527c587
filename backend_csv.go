package docling

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CsvBackend handles CSV files. The whole file becomes one table whose first
// row is the column header.
type CsvBackend struct{}

// NewCsvBackend creates a new CsvBackend.
func NewCsvBackend() *CsvBackend {
	return &CsvBackend{}
}

func (b *CsvBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".csv", ".tsv"}, []string{"text/csv", "application/csv", "text/tab-separated-values"})
}

func (b *CsvBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	text := decodeText(data, info.Charset)

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // allow variable fields
	r.LazyQuotes = true
	if strings.EqualFold(info.Extension, ".tsv") || strings.HasPrefix(info.MIMEType, "text/tab-separated-values") {
		r.Comma = '\t'
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	doc := NewDocument(info.stem())
	if len(records) == 0 {
		return doc, nil
	}
	doc.AddTable(TableFromRows(records, 1), nil, nil)
	return doc, nil
}
