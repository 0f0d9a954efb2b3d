// Package ingest loads payee tables from CSV and XLSX files and selects the
// payee-name column for classification.
package ingest

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/payee-cli/internal/model"
)

// Table is a loaded spreadsheet: a header row plus data rows. Rows may be
// ragged; missing cells read as empty strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columns returns the header names.
func (t *Table) Columns() []string {
	return t.Header
}

// cell returns the value at column c of row, tolerating short rows.
func cell(row []string, c int) string {
	if c < len(row) {
		return row[c]
	}
	return ""
}

// Select extracts the named column as raw names, one per data row, with each
// name carrying its origin row index and the full original row keyed by
// header. Column matching is case-insensitive.
func (t *Table) Select(column string) ([]model.RawName, []map[string]string, error) {
	col := -1
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(column)) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil, eris.Errorf("ingest: column %q not found (have: %s)", column, strings.Join(t.Header, ", "))
	}

	names := make([]model.RawName, len(t.Rows))
	rowData := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		data := make(map[string]string, len(t.Header))
		for c, h := range t.Header {
			data[h] = cell(row, c)
		}
		names[i] = model.RawName{
			Text:            cell(row, col),
			OriginRowIndex:  i,
			OriginalRowData: data,
		}
		rowData[i] = data
	}
	return names, rowData, nil
}
