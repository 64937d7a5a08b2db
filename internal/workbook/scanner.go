package workbook

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse opens workbook bytes and scans every sheet for markers.
// Returns ErrWorkbookCorrupt (wrapping the underlying error) when the bytes
// cannot be opened as a spreadsheet.
func Parse(data []byte) (*Parsed, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkbookCorrupt, err)
	}
	defer f.Close()

	return ParseFile(f)
}

// ParseFile scans an already-opened workbook for markers.
// When the same metadata field or table name is marked more than once,
// the last marker in sheet order wins.
func ParseFile(f *excelize.File) (*Parsed, error) {
	parsed := &Parsed{
		Meta: make(map[string]MetaField),
		Data: make(map[string]Table),
	}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet %s: %w", ErrWorkbookCorrupt, sheet, err)
		}

		scanSheet(parsed, sheet, rows)
	}

	return parsed, nil
}

func scanSheet(parsed *Parsed, sheet string, rows [][]string) {
	for r, row := range rows {
		for c, cell := range row {
			value := strings.TrimSpace(cell)

			switch {
			case strings.HasPrefix(value, MetaMarkerPrefix):
				name := strings.TrimPrefix(value, MetaMarkerPrefix)
				parsed.Meta[name] = scanMetaField(sheet, rows, r, c)

			case strings.HasPrefix(value, DataMarkerPrefix):
				name := strings.TrimPrefix(value, DataMarkerPrefix)
				parsed.Data[name] = scanTable(sheet, rows, r, c)
			}
		}
	}
}

// scanMetaField reads the value cell immediately right of a metadata marker.
// A marker with nothing beside it scans as an unfilled value.
func scanMetaField(sheet string, rows [][]string, r, c int) MetaField {
	return MetaField{
		Value:    typeCell(cellAt(rows, r, c+1)),
		Location: Location{Sheet: sheet, Row: r + 1, Column: c + 2},
	}
}

// scanTable reads headers rightward from the cell after the data marker until
// the first blank header, then data rows downward until a blank row or the
// sheet ends. Rows whose skip-column cell carries the example sentinel are
// dropped entirely.
func scanTable(sheet string, rows [][]string, r, c int) Table {
	table := Table{
		Location: Location{Sheet: sheet, Row: r + 1, Column: c + 2},
	}

	start := c + 1
	for col := start; ; col++ {
		header := strings.TrimSpace(cellAt(rows, r, col))
		if header == "" {
			break
		}
		table.Columns = append(table.Columns, Column{
			Header: header,
			Skip:   header == SkipColumnMarker,
		})
	}
	if len(table.Columns) == 0 {
		return table
	}

	for dr := r + 1; dr < len(rows); dr++ {
		raw := make([]string, len(table.Columns))
		blank := true
		for i := range table.Columns {
			raw[i] = strings.TrimSpace(cellAt(rows, dr, start+i))
			if raw[i] != "" {
				blank = false
			}
		}
		if blank {
			break
		}

		if isExampleRow(table.Columns, raw) {
			continue
		}

		typed := make([]any, len(raw))
		for i, cell := range raw {
			typed[i] = typeCell(cell)
		}
		table.Rows = append(table.Rows, typed)
		table.RowRefs = append(table.RowRefs, dr+1)
	}

	return table
}

func isExampleRow(columns []Column, raw []string) bool {
	for i, col := range columns {
		if col.Skip && strings.EqualFold(raw[i], ExampleRowText) {
			return true
		}
	}
	return false
}

func cellAt(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) {
		return ""
	}
	if c < 0 || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// typeCell normalizes a raw cell string: integers become int64, other
// numerics float64, the blank placeholder nil. Everything else stays a
// string, including the empty string for unfilled cells.
func typeCell(cell string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}
	if cell == BlankPlaceholder {
		return nil
	}
	if n, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}
