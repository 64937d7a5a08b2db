package workbook_test

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/wasteworks/reclaim/internal/workbook"
)

// buildWorkbook writes cells onto a single sheet and returns the workbook
// bytes. Cells are keyed by A1-style reference.
func buildWorkbook(t *testing.T, cells map[string]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for ref, value := range cells {
		if err := f.SetCellValue("Sheet1", ref, value); err != nil {
			t.Fatalf("set cell %s: %v", ref, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseCorruptBytes(t *testing.T) {
	_, err := workbook.Parse([]byte("not a spreadsheet"))
	if !errors.Is(err, workbook.ErrWorkbookCorrupt) {
		t.Fatalf("Parse(garbage) error = %v, want ErrWorkbookCorrupt", err)
	}
}

func TestParseMetaField(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"B2": "##META:REGISTRATION_NUMBER",
		"C2": "REG-12345",
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	field, ok := parsed.Meta["REGISTRATION_NUMBER"]
	if !ok {
		t.Fatal("REGISTRATION_NUMBER not found")
	}
	if field.Value != "REG-12345" {
		t.Errorf("value = %v, want REG-12345", field.Value)
	}
	if field.Location.Sheet != "Sheet1" || field.Location.Row != 2 || field.Location.Column != 3 {
		t.Errorf("location = %+v, want Sheet1 row 2 column 3", field.Location)
	}
}

func TestParseMetaFieldUnfilled(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##META:MATERIAL",
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := parsed.MetaValue("MATERIAL"); got != "" {
		t.Errorf("unfilled value = %v (%T), want empty string", got, got)
	}
}

func TestParseTableCellTyping(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##DATA:EXPORTED",
		"B1": "ROW_ID",
		"C1": "DATE_SHIPPED",
		"D1": "TONNES",
		"E1": "NOTES",
		"B2": 12345678910,
		"C2": "2025-05-25",
		"D2": 14.5,
		"E2": "N/A",
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table, ok := parsed.Data["EXPORTED"]
	if !ok {
		t.Fatal("EXPORTED table not found")
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.Rows))
	}

	row := table.Rows[0]
	if got, want := row[0], int64(12345678910); got != want {
		t.Errorf("ROW_ID = %v (%T), want %v", got, got, want)
	}
	if got, want := row[1], "2025-05-25"; got != want {
		t.Errorf("DATE_SHIPPED = %v (%T), want %q", got, got, want)
	}
	if got, want := row[2], 14.5; got != want {
		t.Errorf("TONNES = %v (%T), want %v", got, got, want)
	}
	if row[3] != nil {
		t.Errorf("placeholder cell = %v (%T), want nil", row[3], row[3])
	}
}

func TestParseTableHeadersStopAtBlank(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##DATA:RECEIVED",
		"B1": "ROW_ID",
		"C1": "TONNAGE_RECEIVED",
		// D1 blank; E1 must not be picked up as a header.
		"E1": "STRAY",
		"B2": 1,
		"C2": 10,
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := parsed.Data["RECEIVED"]
	headers := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		headers[i] = col.Header
	}
	if len(headers) != 2 || headers[0] != "ROW_ID" || headers[1] != "TONNAGE_RECEIVED" {
		t.Errorf("headers = %v, want [ROW_ID TONNAGE_RECEIVED]", headers)
	}
}

func TestParseTableStopsAtBlankRow(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##DATA:RECEIVED",
		"B1": "ROW_ID",
		"B2": 1,
		// row 3 blank
		"B4": 2,
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := len(parsed.Data["RECEIVED"].Rows); got != 1 {
		t.Errorf("rows = %d, want 1 (scan stops at blank row)", got)
	}
}

func TestParseExampleRowDropped(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##DATA:RECEIVED",
		"B1": "##SKIP",
		"C1": "ROW_ID",
		"D1": "TONNAGE_RECEIVED",
		"B2": "EXAMPLE",
		"C2": 1,
		"D2": 99,
		"C3": 2,
		"D3": 10,
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := parsed.Data["RECEIVED"]
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (example row dropped)", len(table.Rows))
	}
	if got, want := table.Rows[0][1], int64(2); got != want {
		t.Errorf("surviving ROW_ID = %v, want %v", got, want)
	}
	if got := table.SheetRow(0); got != 3 {
		t.Errorf("sheet row = %d, want 3 (ref skips the dropped example row)", got)
	}
}

func TestParseSkipColumnValuesKept(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##DATA:RECEIVED",
		"B1": "##SKIP",
		"C1": "ROW_ID",
		"B2": "some note",
		"C2": 7,
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	table := parsed.Data["RECEIVED"]
	if !table.Columns[0].Skip {
		t.Error("first column should be marked skip")
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 (non-example skip cell keeps the row)", len(table.Rows))
	}
}

func TestParseLastMarkerWins(t *testing.T) {
	data := buildWorkbook(t, map[string]any{
		"A1": "##META:MATERIAL",
		"B1": "Glass",
		"A3": "##META:MATERIAL",
		"B3": "Aluminium",
	})

	parsed, err := workbook.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := parsed.MetaValue("MATERIAL"); got != "Aluminium" {
		t.Errorf("duplicate marker value = %v, want Aluminium (last wins)", got)
	}
}
