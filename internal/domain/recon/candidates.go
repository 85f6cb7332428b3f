package recon

import (
	"sync"
	"time"
)

// candidate is a scorable (source A, source B) pair that passed the date
// hard cutoff.
type candidate struct {
	aIdx    int
	bIdx    int
	dayDiff int
	scores  Scores
}

// dayKey collapses a date-only value to a day number for indexing.
func dayKey(t time.Time) int64 {
	return t.Unix() / 86400
}

// parseDates resolves every transaction date up front. Unparseable dates
// mark the transaction invalid; the matcher routes those to unmatched and
// surfaces the collected errors on the result.
func parseDates(list []Transaction, source string) (dates []time.Time, valid []bool, errs []*InvalidDateError) {
	dates = make([]time.Time, len(list))
	valid = make([]bool, len(list))
	for i, tx := range list {
		d, err := ParseDate(tx.Date)
		if err != nil {
			errs = append(errs, &InvalidDateError{Source: source, ID: tx.ID, Raw: tx.Date})
			continue
		}
		dates[i] = d
		valid[i] = true
	}
	return dates, valid, errs
}

// generateCandidates indexes source B by date and, for each source A
// transaction, emits every B transaction within the date window. This
// bounds scoring to near-linear on typical near-diagonal datasets without
// ever excluding a pair the scorer itself would accept: the window is the
// scorer's own hard cutoff.
//
// Candidate order is a function of input order alone (A order, then window
// offset, then B order within a day bucket), which is what makes the
// matcher's tie-breaking reproducible.
func generateCandidates(a, b []Transaction, aDates, bDates []time.Time, aValid, bValid []bool, window int) []candidate {
	index := make(map[int64][]int)
	for j := range b {
		if !bValid[j] {
			continue
		}
		key := dayKey(bDates[j])
		index[key] = append(index[key], j)
	}

	var cands []candidate
	for i := range a {
		if !aValid[i] {
			continue
		}
		key := dayKey(aDates[i])
		for off := -int64(window); off <= int64(window); off++ {
			for _, j := range index[key+off] {
				diff := int(off)
				if diff < 0 {
					diff = -diff
				}
				cands = append(cands, candidate{aIdx: i, bIdx: j, dayDiff: diff})
			}
		}
	}
	return cands
}

// scoreCandidates fills in the scores for every candidate. Pairs are
// independent, so large inputs are scored across a bounded worker pool;
// each worker writes into its candidate's fixed slot, so the merged slice
// is identical to the serial path regardless of scheduling.
func scoreCandidates(cands []candidate, a, b []Transaction, cfg Config) {
	score := func(k int) {
		c := &cands[k]
		c.scores = scorePair(a[c.aIdx], b[c.bIdx], c.dayDiff, cfg)
	}

	if cfg.Workers < 2 || len(cands) < 256 {
		for k := range cands {
			score(k)
		}
		return
	}

	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range work {
				score(k)
			}
		}()
	}
	for k := range cands {
		work <- k
	}
	close(work)
	wg.Wait()
}
