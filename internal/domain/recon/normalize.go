package recon

import (
	"sort"
	"strings"
	"time"
	"unicode"
)

// dateFormats are tried in order by ParseDate. Timestamp formats discard
// their time-of-day component.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// NormalizeName canonicalizes a person or organization name for comparison:
// lower-cased, punctuation stripped, whitespace collapsed, and tokens sorted
// so that surname-first forms like "Tan, John" normalize identically to
// "John Tan". Idempotent.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// nameTokens returns the sorted normalized tokens of a name.
func nameTokens(name string) []string {
	norm := NormalizeName(name)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}

// ParseDate parses a raw date or timestamp string into a naive calendar
// date in UTC. Returns *InvalidDateError when no known format applies.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &InvalidDateError{Raw: raw}
	}
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, &InvalidDateError{Raw: raw}
}

// referenceTokens extracts candidate reference identifiers from free-text
// descriptions: alphanumeric runs of at least four characters containing at
// least one digit, upper-cased. Plain words never qualify, so "Donation"
// appearing in both descriptions is not treated as a shared reference.
func referenceTokens(description string) map[string]struct{} {
	tokens := make(map[string]struct{})
	var cur strings.Builder
	hasDigit := false

	flush := func() {
		if hasDigit && cur.Len() >= 4 {
			tokens[strings.ToUpper(cur.String())] = struct{}{}
		}
		cur.Reset()
		hasDigit = false
	}

	for _, r := range description {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
			if unicode.IsDigit(r) {
				hasDigit = true
			}
			continue
		}
		flush()
	}
	flush()
	return tokens
}
