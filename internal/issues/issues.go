// Package issues defines the validation issue model shared by every stage of
// the summary-log pipeline. Validators produce Issue values; the collection
// type answers the questions downstream stages ask of them (is the submission
// fatally broken, how many concerns per table, and so on).
package issues

import "fmt"

// Severity classifies how an issue affects the submission.
type Severity string

const (
	// SeverityFatal means the submission must not progress past the stage
	// that raised the issue.
	SeverityFatal Severity = "fatal"
	// SeverityError attaches to a row and rejects it without halting the run.
	SeverityError Severity = "error"
	// SeverityWarning flags a non-blocking anomaly.
	SeverityWarning Severity = "warning"
)

// Category distinguishes schema-level problems from business-rule problems.
type Category string

const (
	CategoryTechnical Category = "technical"
	CategoryBusiness  Category = "business"
)

// Location identifies the cell or field an issue refers to.
type Location struct {
	Sheet  string `json:"sheet,omitempty"`
	Row    int    `json:"row,omitempty"`
	Column int    `json:"column,omitempty"`
	Field  string `json:"field,omitempty"`
}

// Context carries the supporting detail rendered alongside an issue.
type Context struct {
	Location *Location `json:"location,omitempty"`
	Expected string    `json:"expected,omitempty"`
	Actual   string    `json:"actual,omitempty"`
}

// Issue is a single validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Context  Context  `json:"context"`
}

// Fatal builds a fatal issue in the given category.
func Fatal(category Category, code, message string) Issue {
	return Issue{Severity: SeverityFatal, Category: category, Code: code, Message: message}
}

// Error builds a row-level error issue in the technical category.
func Error(code, message string) Issue {
	return Issue{Severity: SeverityError, Category: CategoryTechnical, Code: code, Message: message}
}

// Warning builds a warning issue in the technical category.
func Warning(code, message string) Issue {
	return Issue{Severity: SeverityWarning, Category: CategoryTechnical, Code: code, Message: message}
}

// At returns a copy of the issue with its location set.
func (i Issue) At(loc Location) Issue {
	i.Context.Location = &loc
	return i
}

// Expecting returns a copy of the issue with expected/actual context set.
func (i Issue) Expecting(expected, actual string) Issue {
	i.Context.Expected = expected
	i.Context.Actual = actual
	return i
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s/%s] %s: %s", i.Severity, i.Category, i.Code, i.Message)
}

// Set aggregates issues raised during a validation run.
type Set struct {
	Items []Issue `json:"items"`
}

// New creates a Set from the given issues.
func New(items ...Issue) Set {
	return Set{Items: items}
}

// Add appends issues to the set.
func (s *Set) Add(items ...Issue) {
	s.Items = append(s.Items, items...)
}

// Merge appends all issues from other.
func (s *Set) Merge(other Set) {
	s.Items = append(s.Items, other.Items...)
}

// IsFatal reports whether any issue in the set is fatal.
func (s Set) IsFatal() bool {
	for _, i := range s.Items {
		if i.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Empty reports whether the set contains no issues.
func (s Set) Empty() bool {
	return len(s.Items) == 0
}

// Len returns the number of issues in the set.
func (s Set) Len() int {
	return len(s.Items)
}

// CountBySeverity returns the number of issues with the given severity.
func (s Set) CountBySeverity(sev Severity) int {
	n := 0
	for _, i := range s.Items {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

// CountByCategory returns the number of issues in the given category.
func (s Set) CountByCategory(cat Category) int {
	n := 0
	for _, i := range s.Items {
		if i.Category == cat {
			n++
		}
	}
	return n
}

// Filter returns a new set containing the issues that satisfy keep.
func (s Set) Filter(keep func(Issue) bool) Set {
	var out Set
	for _, i := range s.Items {
		if keep(i) {
			out.Add(i)
		}
	}
	return out
}

// Fatals returns the fatal issues, in order of discovery. Downstream renderers
// present these as the enumerated failure list.
func (s Set) Fatals() []Issue {
	var out []Issue
	for _, i := range s.Items {
		if i.Severity == SeverityFatal {
			out = append(out, i)
		}
	}
	return out
}
