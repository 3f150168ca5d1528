package inventory

import (
	"sort"
	"time"

	"labstock/internal/domain"
)

// ScoredUnit is a candidate unit with its ranking score. Suggested marks
// the top-N picks; the caller is free to override them.
type ScoredUnit struct {
	domain.Unit
	Score     int  `json:"score"`
	Suggested bool `json:"suggested"`
}

const day = 24 * time.Hour

// Score ranks one available unit. Higher is better: prefer units in good
// condition, spread wear away from heavily used or often-repaired units,
// and push units whose warranty is about to lapse out the door while a
// claim is still possible. Clamped to [0, 100].
func Score(u domain.Unit, now time.Time) int {
	s := 100

	switch u.Condition {
	case domain.ConditionNew:
		s += 30
	case domain.ConditionGood:
		s += 20
	case domain.ConditionFair:
		s += 10
	}

	s -= 2 * u.TotalBorrows
	s -= 10 * u.TotalRepairs

	if u.LastBorrowedAt == nil {
		s += 10
	} else {
		idle := now.Sub(*u.LastBorrowedAt)
		switch {
		case idle > 60*day:
			s += 25
		case idle > 30*day:
			s += 15
		}
	}

	if u.WarrantyUntil != nil {
		left := u.WarrantyUntil.Sub(now)
		if left > 0 && left <= 90*day {
			s += 10
		}
	}

	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}

// Rank scores the candidates, orders them by score descending (serial
// ascending on ties, for determinism) and marks the top qty as suggested.
// It never commits anything: selection stays advisory.
func Rank(units []domain.Unit, qty int, now time.Time) []ScoredUnit {
	out := make([]ScoredUnit, 0, len(units))
	for _, u := range units {
		out = append(out, ScoredUnit{Unit: u, Score: Score(u, now)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Serial < out[j].Serial
	})

	for i := 0; i < qty && i < len(out); i++ {
		out[i].Suggested = true
	}
	return out
}
