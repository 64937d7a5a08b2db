// Package workbook implements the marker scanner for summary-log spreadsheets.
// Submitted workbooks have no fixed layout; reserved sentinel prefixes embedded
// in cell values locate the metadata fields and data tables the pipeline cares
// about, so organisations can arrange (and decorate) their templates freely.
package workbook

import "errors"

// Reserved sentinel values recognized by the scanner.
const (
	// MetaMarkerPrefix introduces a metadata field. The field value sits in
	// the cell immediately to the right of the marker cell.
	MetaMarkerPrefix = "##META:"
	// DataMarkerPrefix introduces a data table. Column headers are read
	// rightward from the cell after the marker until the first blank cell.
	DataMarkerPrefix = "##DATA:"
	// SkipColumnMarker in a header position preserves the column in every row
	// but marks its values as display-only.
	SkipColumnMarker = "##SKIP"
	// ExampleRowText in a skip-column cell drops the entire row. Templates
	// ship with instructional example rows; this keeps them out of the data.
	ExampleRowText = "EXAMPLE"
	// BlankPlaceholder in a value cell normalizes to nil, recording that the
	// submitter intentionally left the value blank rather than never filling
	// it in (an unfilled cell scans as the empty string).
	BlankPlaceholder = "N/A"
)

// ErrWorkbookCorrupt indicates the submitted bytes could not be opened as a
// spreadsheet. No partial scan result accompanies it.
var ErrWorkbookCorrupt = errors.New("workbook cannot be read")

// Location identifies a cell by sheet name and 1-based row and column.
type Location struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
}

// MetaField is a single extracted metadata value and where it was found.
// Location points at the value cell, not the marker cell.
type MetaField struct {
	Value    any      `json:"value"`
	Location Location `json:"location"`
}

// Column describes one table column. Skip columns keep their position in every
// row but carry display-only values.
type Column struct {
	Header string `json:"header"`
	Skip   bool   `json:"skip"`
}

// Table is an extracted data table. Rows hold typed cell values positionally
// aligned with Columns: integers as int64, other numerics as float64,
// placeholders as nil, everything else as string. RowRefs records the 1-based
// sheet row each kept data row came from.
type Table struct {
	Location Location `json:"location"`
	Columns  []Column `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowRefs  []int    `json:"row_refs,omitempty"`
}

// SheetRow returns the 1-based sheet row of data row i. Tables built without
// refs fall back to positional arithmetic from the header row, which is only
// exact when no example rows were dropped above row i.
func (t Table) SheetRow(i int) int {
	if i < len(t.RowRefs) {
		return t.RowRefs[i]
	}
	return t.Location.Row + 1 + i
}

// Headers returns the column headers with nil entries at skip positions,
// matching the shape downstream schemas validate against.
func (t Table) Headers() []*string {
	out := make([]*string, len(t.Columns))
	for i, c := range t.Columns {
		if c.Skip {
			continue
		}
		h := c.Header
		out[i] = &h
	}
	return out
}

// Parsed is the scan result for one workbook: metadata fields and data tables
// keyed by marker name. It is produced per submission and never persisted.
type Parsed struct {
	Meta map[string]MetaField `json:"meta"`
	Data map[string]Table     `json:"data"`
}

// MetaValue returns the value of a metadata field, or nil if absent.
func (p *Parsed) MetaValue(name string) any {
	f, ok := p.Meta[name]
	if !ok {
		return nil
	}
	return f.Value
}
