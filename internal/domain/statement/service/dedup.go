package service

import (
	"sort"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// identity is the deduplication key of a candidate.
type identity struct {
	date        string
	description string
	amount      string
}

func identityOf(c statement.CandidateTransaction) identity {
	return identity{
		date:        c.Date.Format(time.DateOnly),
		description: strings.ToLower(strings.TrimSpace(c.Description)),
		amount:      c.Amount.StringFixed(2),
	}
}

// Deduplicate keeps the first candidate for each (date, description, amount)
// key, in input order, and reports how many were dropped.
func Deduplicate(cands []statement.CandidateTransaction) ([]statement.CandidateTransaction, int) {
	seen := make(map[identity]struct{}, len(cands))
	kept := make([]statement.CandidateTransaction, 0, len(cands))
	for _, c := range cands {
		key := identityOf(c)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}
	return kept, len(cands) - len(kept)
}

// SortByDate orders candidates by date ascending. Ties keep their input order.
func SortByDate(cands []statement.CandidateTransaction) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Date.Before(cands[j].Date)
	})
}
