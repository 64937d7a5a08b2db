package validation

import (
	"fmt"

	"github.com/wasteworks/reclaim/internal/issues"
	"github.com/wasteworks/reclaim/internal/workbook"
)

// metaFieldOrder fixes the order fields are checked in so issue output is
// stable across runs.
var metaFieldOrder = []string{
	FieldRegistrationNumber,
	FieldAccreditationNumber,
	FieldMaterial,
	FieldProcessingType,
	FieldReportingPeriod,
}

// ValidateMeta schema-checks every extracted metadata field. Every violation
// is fatal and technical: a summary log whose metadata does not parse cannot
// be attributed to a registration, so nothing downstream may run.
func ValidateMeta(parsed *workbook.Parsed) issues.Set {
	var set issues.Set

	for _, field := range metaFieldOrder {
		rule := MetaSchema[field]
		meta, present := parsed.Meta[field]
		if !present {
			if rule.Required {
				set.Add(metaIssue(field, ViolationMissing,
					fmt.Sprintf("metadata field %s was not found in the workbook", field)))
			}
			continue
		}

		if v, ok := rule.Check(meta.Value); !ok {
			issue := metaIssue(field, v, metaMessage(field, v, meta.Value)).
				At(issues.Location{
					Sheet:  meta.Location.Sheet,
					Row:    meta.Location.Row,
					Column: meta.Location.Column,
					Field:  field,
				})
			if v == ViolationValue {
				issue = issue.Expecting(enumList(rule.Enum), AsString(meta.Value))
			}
			set.Add(issue)
		}
	}

	return set
}

func metaIssue(field string, v Violation, message string) issues.Issue {
	return issues.Fatal(issues.CategoryTechnical, metaCode(field, v), message)
}

func metaMessage(field string, v Violation, value any) string {
	switch v {
	case ViolationMissing:
		return fmt.Sprintf("metadata field %s is required", field)
	case ViolationType:
		return fmt.Sprintf("metadata field %s has the wrong type", field)
	case ViolationValue:
		return fmt.Sprintf("metadata field %s value %q is not recognized", field, AsString(value))
	case ViolationRange:
		return fmt.Sprintf("metadata field %s is out of range", field)
	default:
		return fmt.Sprintf("metadata field %s is invalid", field)
	}
}

func enumList(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
