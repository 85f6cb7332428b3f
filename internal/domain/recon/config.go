package recon

import "github.com/shopspring/decimal"

// Config holds all engine tunables. The zero value is not usable; start
// from DefaultConfig and override fields as needed.
type Config struct {
	// AmountToleranceAbs is the absolute difference (major units) at which
	// the amount score decays to zero. Defaults to S$0.50, which absorbs
	// typical processor fee deductions.
	AmountToleranceAbs decimal.Decimal

	// AmountTolerancePct widens the tolerance for large amounts: the
	// effective tolerance is the larger of the absolute tolerance and this
	// fraction of the bigger amount. Zero disables it.
	AmountTolerancePct decimal.Decimal

	// DateWindowDays is the hard candidate cutoff. Pairs whose dates differ
	// by more than this many calendar days are never scored.
	DateWindowDays int

	// MinConsiderationScore is the minimum combined score for a candidate
	// pair to enter the assignment step.
	MinConsiderationScore float64

	// PerfectThreshold is the minimum combined score for an assigned pair
	// to be classified as a perfect match.
	PerfectThreshold float64

	// Signal weights for the combined score. They are normalized by their
	// sum, so they need not add up to 1.
	NameWeight      float64
	AmountWeight    float64
	DateWeight      float64
	ReferenceWeight float64

	// Per-signal floors for the perfect classification. An assigned pair
	// whose name, amount or date score falls below its floor is partial
	// even when the combined score clears PerfectThreshold.
	NameFloor   float64
	AmountFloor float64
	DateFloor   float64

	// Workers bounds concurrent candidate scoring. Values below 2 keep
	// scoring on the calling goroutine.
	Workers int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		AmountToleranceAbs:    decimal.NewFromFloat(0.50),
		AmountTolerancePct:    decimal.Zero,
		DateWindowDays:        3,
		MinConsiderationScore: 0.3,
		PerfectThreshold:      0.9,
		NameWeight:            0.4,
		AmountWeight:          0.35,
		DateWeight:            0.2,
		ReferenceWeight:       0.05,
		NameFloor:             0.85,
		AmountFloor:           0.99,
		DateFloor:             0.5,
		Workers:               4,
	}
}

// weightSum returns the normalization divisor for the combined score.
func (c Config) weightSum() float64 {
	sum := c.NameWeight + c.AmountWeight + c.DateWeight + c.ReferenceWeight
	if sum <= 0 {
		return 1
	}
	return sum
}
