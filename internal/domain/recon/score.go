package recon

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"
)

// Scores holds the independent similarity signals for one candidate pair
// plus their weighted combination. All values are in [0,1].
type Scores struct {
	Name      float64 `json:"name"`
	Amount    float64 `json:"amount"`
	Date      float64 `json:"date"`
	Reference float64 `json:"reference"`
	Combined  float64 `json:"combined"`
}

// NameScore computes token-set similarity between two names after
// normalization. Tokens are paired greedily by similarity; an initial
// ("J." vs "John") scores high but below an exact token match. Symmetric.
func NameScore(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ta, tb := nameTokens(a), nameTokens(b)

	type pairing struct {
		ai, bi int
		sim    float64
	}
	pairs := make([]pairing, 0, len(ta)*len(tb))
	for i, x := range ta {
		for j, y := range tb {
			if sim := tokenSimilarity(x, y); sim > 0 {
				pairs = append(pairs, pairing{ai: i, bi: j, sim: sim})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].sim > pairs[j].sim })

	usedA := make([]bool, len(ta))
	usedB := make([]bool, len(tb))
	total := 0.0
	for _, p := range pairs {
		if usedA[p.ai] || usedB[p.bi] {
			continue
		}
		usedA[p.ai] = true
		usedB[p.bi] = true
		total += p.sim
	}

	return 2 * total / float64(len(ta)+len(tb))
}

// tokenSimilarity scores a single token pair: exact match 1.0, matching
// initial 0.85, otherwise edit-distance similarity with everything below
// 0.5 treated as no match.
func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 1 || lb == 1 {
		ra, _ := utf8.DecodeRuneInString(a)
		rb, _ := utf8.DecodeRuneInString(b)
		if ra == rb {
			return 0.85
		}
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	sim := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
	if sim < 0.5 {
		return 0
	}
	return sim
}

// AmountScore is 1.0 for exactly equal amounts and decays linearly to zero
// at the effective tolerance: the larger of the absolute tolerance and the
// percentage tolerance applied to the bigger amount.
func AmountScore(a, b decimal.Decimal, cfg Config) float64 {
	diff := a.Sub(b).Abs()
	if diff.IsZero() {
		return 1
	}

	tol := cfg.AmountToleranceAbs
	if cfg.AmountTolerancePct.IsPositive() {
		bigger := decimal.Max(a.Abs(), b.Abs())
		if pctTol := bigger.Mul(cfg.AmountTolerancePct); pctTol.GreaterThan(tol) {
			tol = pctTol
		}
	}
	if !tol.IsPositive() || diff.GreaterThanOrEqual(tol) {
		return 0
	}

	frac, _ := diff.Div(tol).Float64()
	return 1 - frac
}

// DateScore is 1.0 for equal dates and decays linearly over the window.
// Callers must not invoke it for pairs beyond the window; the candidate
// generator enforces that hard cutoff.
func DateScore(dayDiff, windowDays int) float64 {
	if dayDiff == 0 {
		return 1
	}
	if windowDays <= 0 || dayDiff > windowDays {
		return 0
	}
	return 1 - float64(dayDiff)/float64(windowDays)
}

// ReferenceScore is 1 when the two descriptions share a reference-looking
// token and 0 otherwise.
func ReferenceScore(descA, descB string) float64 {
	tb := referenceTokens(descB)
	if len(tb) == 0 {
		return 0
	}
	for tok := range referenceTokens(descA) {
		if _, ok := tb[tok]; ok {
			return 1
		}
	}
	return 0
}

// scorePair computes all signals for one candidate pair. dayDiff is the
// calendar-day distance already computed by the candidate generator.
func scorePair(a, b Transaction, dayDiff int, cfg Config) Scores {
	s := Scores{
		Name:      NameScore(a.Name, b.Name),
		Amount:    AmountScore(a.Amount, b.Amount, cfg),
		Date:      DateScore(dayDiff, cfg.DateWindowDays),
		Reference: ReferenceScore(a.Description, b.Description),
	}
	s.Combined = (cfg.NameWeight*s.Name +
		cfg.AmountWeight*s.Amount +
		cfg.DateWeight*s.Date +
		cfg.ReferenceWeight*s.Reference) / cfg.weightSum()
	return s
}
