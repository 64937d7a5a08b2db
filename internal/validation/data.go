package validation

import (
	"fmt"
	"sort"

	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/workbook"
)

// Row is one validated table row: its typed field values keyed by column
// header, the outcome assigned to it, and any issues it raised. Index is the
// row's position within the scanned table (0-based, example rows already
// dropped by the scanner).
type Row struct {
	Index   int            `json:"index"`
	Outcome Outcome        `json:"outcome"`
	Fields  map[string]any `json:"fields"`
	Issues  []issues.Issue `json:"issues,omitempty"`
}

// TableResult carries the validated rows of one table.
type TableResult struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Included returns the rows eligible for materialization.
func (t TableResult) Included() []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.Outcome == OutcomeIncluded {
			out = append(out, r)
		}
	}
	return out
}

// DataResult is the output of the data syntax validator: validated tables and
// the accumulated issue set across every row of every table.
type DataResult struct {
	Tables map[string]TableResult `json:"tables"`
	Issues issues.Set             `json:"issues"`
}

// ValidateData schema-checks every row of every table the processing type
// requires. Unlike the metadata validator it never short-circuits: each row
// is validated in full and classified independently, so identical input
// always yields identical outcomes and issues.
func ValidateData(parsed *workbook.Parsed, pt ProcessingType) DataResult {
	result := DataResult{Tables: make(map[string]TableResult)}

	schemas, ok := TableSchemas[pt]
	if !ok {
		result.Issues.Add(issues.Fatal(issues.CategoryTechnical, CodeTableUnrecognized,
			fmt.Sprintf("no table schemas registered for processing type %q", pt)))
		return result
	}

	for _, name := range sortedKeys(schemas) {
		schema := schemas[name]
		table, present := parsed.Data[name]
		if !present {
			result.Issues.Add(issues.Fatal(issues.CategoryTechnical, CodeTableMissing,
				fmt.Sprintf("required table %s was not found in the workbook", name)))
			continue
		}

		tr := validateTable(name, table, schema, &result.Issues)
		result.Tables[name] = tr
	}

	for _, name := range sortedKeys(parsed.Data) {
		if _, known := schemas[name]; !known {
			result.Issues.Add(issues.Warning(CodeTableUnrecognized,
				fmt.Sprintf("table %s is not part of a %s summary log and was ignored", name, pt)))
		}
	}

	return result
}

func validateTable(name string, table workbook.Table, schema TableSchema, acc *issues.Set) TableResult {
	tr := TableResult{Name: name}

	index := columnIndex(table)
	for _, col := range table.Columns {
		if col.Skip {
			continue
		}
		if _, known := schema.Fields[col.Header]; !known {
			acc.Add(issues.Warning(CodeColumnUnknown,
				fmt.Sprintf("table %s column %s is not recognized", name, col.Header)).
				At(issues.Location{Sheet: table.Location.Sheet, Field: col.Header}))
		}
	}

	order := fieldOrder(table, schema)

	for i, cells := range table.Rows {
		row := validateRow(name, table, schema, order, index, i, cells)
		for _, iss := range row.Issues {
			acc.Add(iss)
		}
		tr.Rows = append(tr.Rows, row)
	}

	return tr
}

func validateRow(
	name string,
	table workbook.Table,
	schema TableSchema,
	order []string,
	index map[string]int,
	rowIdx int,
	cells []any,
) Row {
	row := Row{Index: rowIdx, Fields: make(map[string]any)}

	at := func(header string) any {
		col, ok := index[header]
		if !ok || col >= len(cells) {
			return ""
		}
		return cells[col]
	}

	for header := range index {
		row.Fields[header] = at(header)
	}

	if gatesEmpty(schema, at) {
		row.Outcome = OutcomeExcluded
		return row
	}

	rejected := false
	for _, field := range order {
		rule := schema.Fields[field]
		value := at(field)

		if v, ok := rule.Check(value); !ok {
			rejected = true
			row.Issues = append(row.Issues, rowIssue(name, table, field, rowIdx, v, value))
			continue
		}

		row.Issues = append(row.Issues, rowWarnings(name, table, rule, field, rowIdx, value)...)
	}

	if rejected {
		row.Outcome = OutcomeRejected
	} else {
		row.Outcome = OutcomeIncluded
	}
	return row
}

// gatesEmpty reports whether every gate column of the schema is blank,
// marking the row as intentionally non-applicable.
func gatesEmpty(schema TableSchema, at func(string) any) bool {
	if len(schema.Gates) == 0 {
		return false
	}
	for _, gate := range schema.Gates {
		if !isEmpty(at(gate)) {
			return false
		}
	}
	return true
}

// rowIssue locates the failing cell by its sheet row, matching the
// coordinates metadata issues carry, so readers can find it in the workbook.
func rowIssue(name string, table workbook.Table, field string, rowIdx int, v Violation, value any) issues.Issue {
	sheetRow := table.SheetRow(rowIdx)
	loc := issues.Location{
		Sheet: table.Location.Sheet,
		Row:   sheetRow,
		Field: field,
	}

	switch v {
	case ViolationMissing:
		return issues.Error(rowCode(v),
			fmt.Sprintf("table %s row %d: %s is required", name, sheetRow, field)).At(loc)
	case ViolationType:
		return issues.Error(rowCode(v),
			fmt.Sprintf("table %s row %d: %s value %q has the wrong type", name, sheetRow, field, AsString(value))).At(loc)
	case ViolationRange:
		return issues.Error(rowCode(v),
			fmt.Sprintf("table %s row %d: %s value %s is out of range", name, sheetRow, field, AsString(value))).At(loc)
	default:
		return issues.Error(rowCode(v),
			fmt.Sprintf("table %s row %d: %s value %q is not valid", name, sheetRow, field, AsString(value))).At(loc)
	}
}

// rowWarnings evaluates non-blocking anomaly checks on a passing value.
func rowWarnings(name string, table workbook.Table, rule FieldRule, field string, rowIdx int, value any) []issues.Issue {
	if rule.Kind != KindDecimal || isEmpty(value) {
		return nil
	}

	d, ok := AsDecimal(value)
	if !ok || !d.GreaterThan(TonnageWarningThreshold) {
		return nil
	}

	sheetRow := table.SheetRow(rowIdx)
	return []issues.Issue{
		issues.Warning(CodeTonnageLarge,
			fmt.Sprintf("table %s row %d: %s value %s is unusually large", name, sheetRow, field, d)).
			At(issues.Location{Sheet: table.Location.Sheet, Row: sheetRow, Field: field}),
	}
}

// columnIndex maps non-skip headers to their cell positions.
func columnIndex(table workbook.Table) map[string]int {
	index := make(map[string]int)
	for i, col := range table.Columns {
		if col.Skip {
			continue
		}
		index[col.Header] = i
	}
	return index
}

// fieldOrder yields schema fields in table column order first, then any
// schema fields absent from the table alphabetically, so issue output is
// stable for a given (table, schema) pair.
func fieldOrder(table workbook.Table, schema TableSchema) []string {
	var order []string
	seen := make(map[string]bool)

	for _, col := range table.Columns {
		if col.Skip {
			continue
		}
		if _, known := schema.Fields[col.Header]; known && !seen[col.Header] {
			order = append(order, col.Header)
			seen[col.Header] = true
		}
	}

	var missing []string
	for field := range schema.Fields {
		if !seen[field] {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)

	return append(order, missing...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
