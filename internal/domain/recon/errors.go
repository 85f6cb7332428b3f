package recon

import "fmt"

// InvalidDateError reports a transaction date that could not be parsed.
// It is non-fatal: the matcher routes the transaction straight to the
// unmatched list and reports the exclusion on the result, so callers can
// log it or reject the run. Source and ID identify the excluded
// transaction when the error comes out of a matching run; ParseDate alone
// only fills Raw.
type InvalidDateError struct {
	Source string // "A" or "B", empty outside a matching run
	ID     string
	Raw    string
}

func (e *InvalidDateError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("transaction %s: invalid date format: %q", e.ID, e.Raw)
	}
	return fmt.Sprintf("invalid date format: %q", e.Raw)
}

// DuplicateIDError reports a transaction ID that occurs more than once
// within a single source list. Duplicate identity would break the
// one-to-one matching invariant, so the run is rejected before any
// scoring happens.
type DuplicateIDError struct {
	Source string // "A" or "B"
	ID     string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate transaction ID %q in source %s", e.ID, e.Source)
}
