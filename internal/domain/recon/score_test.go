package recon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNameScore(t *testing.T) {
	t.Run("identical names score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, NameScore("John Tan", "John Tan"))
	})

	t.Run("surname-first form scores 1", func(t *testing.T) {
		assert.Equal(t, 1.0, NameScore("John Tan", "Tan, John"))
	})

	t.Run("initial scores high but below exact", func(t *testing.T) {
		score := NameScore("J. Tan", "John Tan")
		assert.Greater(t, score, 0.8)
		assert.Less(t, score, 1.0)
	})

	t.Run("unrelated names score low", func(t *testing.T) {
		assert.Less(t, NameScore("Cheryl Ong", "Rajesh Kumar"), 0.3)
	})

	t.Run("empty name scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, NameScore("", "John Tan"))
	})

	t.Run("symmetric", func(t *testing.T) {
		pairs := [][2]string{
			{"J. Tan", "John Tan"},
			{"Siti B. Ahmad", "Siti Binte Ahmad"},
			{"R Kumar", "Rajesh Kumar"},
		}
		for _, p := range pairs {
			assert.Equal(t, NameScore(p[0], p[1]), NameScore(p[1], p[0]), "%q vs %q", p[0], p[1])
		}
	})
}

func TestAmountScore(t *testing.T) {
	cfg := DefaultConfig()
	amt := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	t.Run("equal amounts score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, AmountScore(amt("96.80"), amt("96.80"), cfg))
	})

	t.Run("decays linearly within tolerance", func(t *testing.T) {
		// 0.30 of a 0.50 tolerance leaves 40% of the score.
		assert.InDelta(t, 0.4, AmountScore(amt("100.00"), amt("99.70"), cfg), 1e-9)
	})

	t.Run("zero at or beyond tolerance", func(t *testing.T) {
		assert.Equal(t, 0.0, AmountScore(amt("50.00"), amt("49.50"), cfg))
		assert.Equal(t, 0.0, AmountScore(amt("50.00"), amt("48.25"), cfg))
	})

	t.Run("percentage tolerance widens for large amounts", func(t *testing.T) {
		pctCfg := cfg
		pctCfg.AmountTolerancePct = decimal.RequireFromString("0.01")

		// 1% of 5500 = 55, so a 5.00 difference stays well inside.
		score := AmountScore(amt("5500.00"), amt("5495.00"), pctCfg)
		assert.Greater(t, score, 0.9)

		// Same difference with only the absolute tolerance is a miss.
		assert.Equal(t, 0.0, AmountScore(amt("5500.00"), amt("5495.00"), cfg))
	})
}

func TestDateScore(t *testing.T) {
	t.Run("equal dates score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, DateScore(0, 3))
	})

	t.Run("decays linearly across the window", func(t *testing.T) {
		assert.InDelta(t, 2.0/3.0, DateScore(1, 3), 1e-9)
		assert.InDelta(t, 1.0/3.0, DateScore(2, 3), 1e-9)
		assert.Equal(t, 0.0, DateScore(3, 3))
	})

	t.Run("zero window only accepts equal dates", func(t *testing.T) {
		assert.Equal(t, 1.0, DateScore(0, 0))
		assert.Equal(t, 0.0, DateScore(1, 0))
	})
}

func TestReferenceScore(t *testing.T) {
	t.Run("shared reference token scores 1", func(t *testing.T) {
		assert.Equal(t, 1.0, ReferenceScore("Donation PN54321", "PN54321 received"))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, 1.0, ReferenceScore("ref pn54321", "PN54321"))
	})

	t.Run("common words are not references", func(t *testing.T) {
		assert.Equal(t, 0.0, ReferenceScore("General Donation", "Donation via PayNow"))
	})

	t.Run("no tokens scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, ReferenceScore("", ""))
	})
}
