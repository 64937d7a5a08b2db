package validation_test

import (
	"strings"
	"testing"

	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/validation"
	"github.com/wasteworks/reclaim/internal/workbook"
)

func makeTable(headers []string, rows ...[]any) workbook.Table {
	table := workbook.Table{
		Location: workbook.Location{Sheet: "Data", Row: 1, Column: 2},
	}
	for _, h := range headers {
		table.Columns = append(table.Columns, workbook.Column{
			Header: h,
			Skip:   h == workbook.SkipColumnMarker,
		})
	}
	table.Rows = rows
	return table
}

func exporterWorkbook(rows ...[]any) *workbook.Parsed {
	return &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: map[string]workbook.Table{
			validation.TableExported: makeTable(
				[]string{
					validation.ColRowID,
					validation.ColDateShipped,
					validation.ColDestinationCountry,
					validation.ColPRNIssued,
					validation.ColTonnes,
				},
				rows...,
			),
		},
	}
}

func TestValidateDataIncludesValidRow(t *testing.T) {
	parsed := exporterWorkbook(
		[]any{int64(1), "2025-05-25", "France", "Yes", 14.5},
	)

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	if result.Issues.IsFatal() {
		t.Fatalf("unexpected fatal issues: %v", result.Issues.Items)
	}

	rows := result.Tables[validation.TableExported].Rows
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Outcome != validation.OutcomeIncluded {
		t.Errorf("outcome = %s, want INCLUDED", rows[0].Outcome)
	}
	if got := rows[0].Fields[validation.ColTonnes]; got != 14.5 {
		t.Errorf("TONNES field = %v, want 14.5", got)
	}
}

func TestValidateDataMissingTableIsFatal(t *testing.T) {
	parsed := &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: make(map[string]workbook.Table),
	}

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	if !result.Issues.IsFatal() {
		t.Fatal("missing required table should be fatal")
	}
	if got := result.Issues.Items[0].Code; got != validation.CodeTableMissing {
		t.Errorf("code = %s, want %s", got, validation.CodeTableMissing)
	}
}

func TestValidateDataReprocessorRequiresAllTables(t *testing.T) {
	parsed := &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: map[string]workbook.Table{
			validation.TableReceived: makeTable([]string{
				validation.ColRowID,
				validation.ColDateReceived,
				validation.ColTonnageReceived,
			}),
		},
	}

	result := validation.ValidateData(parsed, validation.ProcessingReprocessor)

	missing := 0
	for _, i := range result.Issues.Items {
		if i.Code == validation.CodeTableMissing {
			missing++
		}
	}
	if missing != 2 {
		t.Errorf("missing-table issues = %d, want 2 (PROCESSED, SENT_ON)", missing)
	}
}

func TestValidateDataUnrecognizedTableWarns(t *testing.T) {
	parsed := exporterWorkbook([]any{int64(1), "2025-05-25", "", "", 1.0})
	parsed.Data["SOMETHING_ELSE"] = makeTable([]string{"A"})

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	if result.Issues.IsFatal() {
		t.Fatalf("unexpected fatal issues: %v", result.Issues.Items)
	}

	found := false
	for _, i := range result.Issues.Items {
		if i.Code == validation.CodeTableUnrecognized && i.Severity == issues.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Error("expected TABLE_NOT_RECOGNIZED warning")
	}
}

func TestValidateDataExcludesGateEmptyRow(t *testing.T) {
	parsed := exporterWorkbook(
		[]any{int64(1), "", "France", "", ""},
	)

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	rows := result.Tables[validation.TableExported].Rows
	if rows[0].Outcome != validation.OutcomeExcluded {
		t.Errorf("outcome = %s, want EXCLUDED", rows[0].Outcome)
	}
	if len(rows[0].Issues) != 0 {
		t.Errorf("excluded row should carry no issues, got %v", rows[0].Issues)
	}
}

func TestValidateDataRejectsRowErrors(t *testing.T) {
	tests := []struct {
		name     string
		row      []any
		wantCode string
	}{
		{
			"missing required date",
			[]any{int64(1), "", "France", "", 5.0},
			validation.CodeRowFieldMissing,
		},
		{
			"bad date format",
			[]any{int64(1), "25/05/2025", "France", "", 5.0},
			validation.CodeRowFieldType,
		},
		{
			"negative tonnage",
			[]any{int64(1), "2025-05-25", "France", "", -3.0},
			validation.CodeRowFieldRange,
		},
		{
			"non-integer row id",
			[]any{"abc", "2025-05-25", "France", "", 5.0},
			validation.CodeRowFieldType,
		},
		{
			"bad boolean",
			[]any{int64(1), "2025-05-25", "France", "maybe", 5.0},
			validation.CodeRowFieldType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := exporterWorkbook(tt.row)
			result := validation.ValidateData(parsed, validation.ProcessingExporter)

			rows := result.Tables[validation.TableExported].Rows
			if rows[0].Outcome != validation.OutcomeRejected {
				t.Fatalf("outcome = %s, want REJECTED", rows[0].Outcome)
			}

			found := false
			for _, i := range rows[0].Issues {
				if i.Code == tt.wantCode {
					found = true
					if i.Severity != issues.SeverityError {
						t.Errorf("severity = %s, want error", i.Severity)
					}
				}
			}
			if !found {
				t.Errorf("issues = %v, want code %s", rows[0].Issues, tt.wantCode)
			}
		})
	}
}

func TestValidateDataRejectionDoesNotHaltOtherRows(t *testing.T) {
	parsed := exporterWorkbook(
		[]any{int64(1), "bad-date", "France", "", 5.0},
		[]any{int64(2), "2025-05-25", "Spain", "", 7.0},
	)

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	rows := result.Tables[validation.TableExported].Rows

	if rows[0].Outcome != validation.OutcomeRejected {
		t.Errorf("row 0 outcome = %s, want REJECTED", rows[0].Outcome)
	}
	if rows[1].Outcome != validation.OutcomeIncluded {
		t.Errorf("row 1 outcome = %s, want INCLUDED", rows[1].Outcome)
	}
}

func TestValidateDataPlaceholderSatisfiesOptional(t *testing.T) {
	// nil is the scanner's rendering of the intentional-blank placeholder.
	parsed := exporterWorkbook(
		[]any{int64(1), "2025-05-25", nil, nil, 5.0},
	)

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	rows := result.Tables[validation.TableExported].Rows
	if rows[0].Outcome != validation.OutcomeIncluded {
		t.Errorf("outcome = %s, want INCLUDED: %v", rows[0].Outcome, rows[0].Issues)
	}
}

func TestValidateDataLargeTonnageWarns(t *testing.T) {
	parsed := exporterWorkbook(
		[]any{int64(1), "2025-05-25", "France", "", int64(12000)},
	)

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	rows := result.Tables[validation.TableExported].Rows
	if rows[0].Outcome != validation.OutcomeIncluded {
		t.Fatalf("outcome = %s, want INCLUDED (warnings never reject)", rows[0].Outcome)
	}

	found := false
	for _, i := range rows[0].Issues {
		if i.Code == validation.CodeTonnageLarge && i.Severity == issues.SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("issues = %v, want TONNAGE_UNUSUALLY_LARGE warning", rows[0].Issues)
	}
}

func TestValidateDataUnknownColumnWarns(t *testing.T) {
	parsed := &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: map[string]workbook.Table{
			validation.TableExported: makeTable(
				[]string{
					validation.ColRowID,
					validation.ColDateShipped,
					validation.ColTonnes,
					"MYSTERY_COLUMN",
				},
				[]any{int64(1), "2025-05-25", 5.0, "x"},
			),
		},
	}

	result := validation.ValidateData(parsed, validation.ProcessingExporter)

	found := false
	for _, i := range result.Issues.Items {
		if i.Code == validation.CodeColumnUnknown {
			found = true
		}
	}
	if !found {
		t.Error("expected COLUMN_NOT_RECOGNIZED warning")
	}

	rows := result.Tables[validation.TableExported].Rows
	if rows[0].Outcome != validation.OutcomeIncluded {
		t.Errorf("outcome = %s, want INCLUDED (unknown column never rejects)", rows[0].Outcome)
	}
}

func TestValidateDataSkipColumnIgnored(t *testing.T) {
	parsed := &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: map[string]workbook.Table{
			validation.TableExported: makeTable(
				[]string{
					workbook.SkipColumnMarker,
					validation.ColRowID,
					validation.ColDateShipped,
					validation.ColTonnes,
				},
				[]any{"guidance text", int64(1), "2025-05-25", 5.0},
			),
		},
	}

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	if result.Issues.IsFatal() {
		t.Fatalf("unexpected fatal issues: %v", result.Issues.Items)
	}

	rows := result.Tables[validation.TableExported].Rows
	if rows[0].Outcome != validation.OutcomeIncluded {
		t.Fatalf("outcome = %s, want INCLUDED", rows[0].Outcome)
	}
	if _, ok := rows[0].Fields[workbook.SkipColumnMarker]; ok {
		t.Error("skip column should not appear in row fields")
	}
}

func TestValidateDataDeterministic(t *testing.T) {
	parsed := exporterWorkbook(
		[]any{int64(1), "bad", "France", "maybe", -1.0},
		[]any{"x", "", "", "", ""},
	)

	first := validation.ValidateData(parsed, validation.ProcessingExporter)
	for range 10 {
		again := validation.ValidateData(parsed, validation.ProcessingExporter)
		if again.Issues.Len() != first.Issues.Len() {
			t.Fatalf("issue count changed: %d vs %d", again.Issues.Len(), first.Issues.Len())
		}
		for i := range first.Issues.Items {
			if again.Issues.Items[i].Code != first.Issues.Items[i].Code {
				t.Fatalf("issue order changed at %d", i)
			}
		}
	}
}

func TestValidateDataIssueLocationsUseSheetRows(t *testing.T) {
	table := makeTable(
		[]string{
			validation.ColRowID,
			validation.ColDateShipped,
			validation.ColDestinationCountry,
			validation.ColPRNIssued,
			validation.ColTonnes,
		},
		[]any{int64(1), "2025-05-25", "France", "Yes", 14.5},
		[]any{int64(2), "not a date", "Spain", "No", 3.5},
	)
	table.Location = workbook.Location{Sheet: "Data", Row: 7, Column: 2}
	table.RowRefs = []int{9, 10}

	parsed := &workbook.Parsed{
		Meta: make(map[string]workbook.MetaField),
		Data: map[string]workbook.Table{validation.TableExported: table},
	}

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	rows := result.Tables[validation.TableExported].Rows
	if len(rows) != 2 || len(rows[1].Issues) == 0 {
		t.Fatalf("rows = %+v, want a second row with issues", rows)
	}

	loc := rows[1].Issues[0].Context.Location
	if loc == nil {
		t.Fatal("issue should carry a location")
	}
	if loc.Sheet != "Data" || loc.Row != 10 {
		t.Errorf("location = %+v, want sheet Data row 10", loc)
	}
	if !strings.Contains(rows[1].Issues[0].Message, "row 10") {
		t.Errorf("message = %q, should name sheet row 10", rows[1].Issues[0].Message)
	}
}

func TestValidateDataSheetRowFallback(t *testing.T) {
	parsed := exporterWorkbook(
		[]any{int64(1), "not a date", "France", "Yes", 14.5},
	)

	result := validation.ValidateData(parsed, validation.ProcessingExporter)
	rows := result.Tables[validation.TableExported].Rows
	if len(rows) != 1 || len(rows[0].Issues) == 0 {
		t.Fatalf("rows = %+v, want one row with issues", rows)
	}

	loc := rows[0].Issues[0].Context.Location
	if loc == nil || loc.Row != 2 {
		t.Errorf("location = %+v, want row 2 (first data row under a header at row 1)", loc)
	}
}
