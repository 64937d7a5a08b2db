package validation

// Outcome is the per-row disposition assigned exactly once during data
// syntax validation.
type Outcome string

const (
	// OutcomeIncluded marks a row that passed and is eligible for materialization.
	OutcomeIncluded Outcome = "INCLUDED"
	// OutcomeExcluded marks a row recognized as intentionally non-applicable.
	// Exclusion is not an error; no issues accompany it.
	OutcomeExcluded Outcome = "EXCLUDED"
	// OutcomeRejected marks a row that failed required-field or format checks.
	OutcomeRejected Outcome = "REJECTED"
)
