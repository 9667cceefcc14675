package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table is a raw header-delimited table: every cell is a string, exactly
// as it appears on the wire. The bronze stage works on Tables without
// knowing any entity schema.
type Table struct {
	Header []string
	Rows   [][]string
}

// Decode parses CSV bytes into a Table. The first record is the header;
// ragged rows are a parse error (encoding/csv enforces the field count).
func Decode(data []byte) (*Table, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("decode csv: missing header row")
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// Encode renders the table back to CSV bytes, header first.
func (t *Table) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AddColumn appends a column with the same value on every row. If the
// column already exists it is overwritten in place, so re-tagging a table
// replaces the old stamp instead of growing the header.
func (t *Table) AddColumn(name, value string) {
	for i, h := range t.Header {
		if h == name {
			for _, row := range t.Rows {
				row[i] = value
			}
			return
		}
	}
	t.Header = append(t.Header, name)
	for i, row := range t.Rows {
		t.Rows[i] = append(row, value)
	}
}

// columnIndex maps header names to positions.
func (t *Table) columnIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		idx[h] = i
	}
	return idx
}
