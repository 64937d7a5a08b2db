// Package validation implements syntax validation for scanned summary logs:
// a fail-fast metadata validator and an accumulate-everything data validator
// that classifies every table row as included, excluded, or rejected.
package validation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the value types a field rule can demand.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindDecimal Kind = "decimal"
	KindDate    Kind = "date"
	KindBool    Kind = "bool"
	KindEnum    Kind = "enum"
)

// DateLayout is the reporting date format accepted across all templates.
const DateLayout = "2006-01-02"

// Violation identifies the way a value failed its rule.
type Violation string

const (
	ViolationMissing Violation = "missing"
	ViolationType    Violation = "type"
	ViolationValue   Violation = "value"
	ViolationRange   Violation = "range"
)

// FieldRule is a declarative constraint on one metadata field or table column.
type FieldRule struct {
	Required bool
	Kind     Kind
	Enum     []string
	Min      *decimal.Decimal
	Max      *decimal.Decimal
}

// Check evaluates a scanned cell value against the rule. It returns at most
// one violation: missing dominates, then type, then value/range.
func (r FieldRule) Check(value any) (Violation, bool) {
	if isEmpty(value) {
		if r.Required {
			return ViolationMissing, false
		}
		return "", true
	}

	switch r.Kind {
	case KindString:
		// Any scanned value renders as a string.
	case KindInteger:
		if _, ok := value.(int64); !ok {
			return ViolationType, false
		}
	case KindDecimal:
		d, ok := AsDecimal(value)
		if !ok {
			return ViolationType, false
		}
		if v, ok := r.checkBounds(d); !ok {
			return v, false
		}
	case KindDate:
		if _, ok := AsDate(value); !ok {
			return ViolationType, false
		}
	case KindBool:
		if _, ok := AsBool(value); !ok {
			return ViolationType, false
		}
	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return ViolationType, false
		}
		if !containsFold(r.Enum, s) {
			return ViolationValue, false
		}
	}

	return "", true
}

func (r FieldRule) checkBounds(d decimal.Decimal) (Violation, bool) {
	if r.Min != nil && d.LessThan(*r.Min) {
		return ViolationRange, false
	}
	if r.Max != nil && d.GreaterThan(*r.Max) {
		return ViolationRange, false
	}
	return "", true
}

// isEmpty reports whether a scanned cell carries no value: nil for the
// intentional-blank placeholder, the empty string for unfilled cells.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// AsDecimal coerces a scanned cell value to an exact decimal.
func AsDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// AsDate coerces a scanned cell value to a calendar date in DateLayout.
func AsDate(value any) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AsBool coerces a scanned cell value to a boolean. Templates record booleans
// as Yes/No; true/false and Y/N are tolerated.
func AsBool(value any) (bool, bool) {
	s, ok := value.(string)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return true, true
	case "no", "n", "false":
		return false, true
	default:
		return false, false
	}
}

// AsString renders a scanned cell value for comparison and display.
func AsString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return decimal.NewFromInt(v).String()
	case float64:
		return decimal.NewFromFloat(v).String()
	default:
		return ""
	}
}
