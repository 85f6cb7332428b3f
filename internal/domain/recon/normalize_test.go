package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "John Tan", "john tan"},
		{"surname first", "Tan, John", "john tan"},
		{"extra whitespace", "  John   Tan ", "john tan"},
		{"punctuation stripped", "Siti B. Ahmad!", "ahmad b siti"},
		{"already normalized", "john tan", "john tan"},
		{"empty", "", ""},
		{"punctuation only", ".,-", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeName_ReordersSurnameFirst(t *testing.T) {
	// "Tan, John" and "John Tan" must normalize identically.
	assert.Equal(t, NormalizeName("John Tan"), NormalizeName("Tan, John"))
	assert.Equal(t, NormalizeName("Lim Wei"), NormalizeName("Wei Lim"))
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{"Tan, John", "  Siti B. Ahmad ", "O'Brien, Mary-Jane", "", "J. Tan"}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "input %q", in)
	}
}

func TestParseDate(t *testing.T) {
	expected := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"ISO date", "2023-11-01"},
		{"RFC3339 timestamp", "2023-11-01T14:30:00Z"},
		{"timestamp without zone", "2023-11-01 14:30:00"},
		{"slash format", "01/11/2023"},
		{"short month", "01-Nov-2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, expected.Equal(got), "got %v", got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not a date", "2023-13-45", "someday"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseDate(raw)
			require.Error(t, err)

			var invalidDate *InvalidDateError
			require.ErrorAs(t, err, &invalidDate)
			assert.Equal(t, raw, invalidDate.Raw)
		})
	}
}

func TestReferenceTokens(t *testing.T) {
	t.Run("extracts reference-looking tokens", func(t *testing.T) {
		tokens := referenceTokens("Donation ref PN54321 via PayNow")
		_, ok := tokens["PN54321"]
		assert.True(t, ok)
	})

	t.Run("ignores plain words", func(t *testing.T) {
		tokens := referenceTokens("General Donation via PayNow")
		assert.Empty(t, tokens)
	})

	t.Run("ignores short tokens", func(t *testing.T) {
		tokens := referenceTokens("ref A1 only")
		assert.Empty(t, tokens)
	})
}
