package inventory

import (
	"testing"
	"time"

	"labstock/internal/domain"

	"github.com/stretchr/testify/assert"
)

func ts(t time.Time) *time.Time { return &t }

func TestScore_ConditionTiers(t *testing.T) {
	now := time.Now()
	recent := now.Add(-2 * day)

	base := domain.Unit{
		TotalBorrows:   10,
		TotalRepairs:   1,
		LastBorrowedAt: ts(recent),
	}

	newUnit := base
	newUnit.Condition = domain.ConditionNew
	goodUnit := base
	goodUnit.Condition = domain.ConditionGood
	fairUnit := base
	fairUnit.Condition = domain.ConditionFair
	poorUnit := base
	poorUnit.Condition = domain.ConditionPoor

	// 100 + tier - 20 - 10
	assert.Equal(t, 100, Score(newUnit, now))
	assert.Equal(t, 90, Score(goodUnit, now))
	assert.Equal(t, 80, Score(fairUnit, now))
	assert.Equal(t, 70, Score(poorUnit, now))
}

func TestScore_UsagePenalties(t *testing.T) {
	now := time.Now()
	recent := now.Add(-day)

	u := domain.Unit{
		Condition:      domain.ConditionGood,
		TotalBorrows:   20,
		TotalRepairs:   3,
		LastBorrowedAt: ts(recent),
	}

	// 100 + 20 - 40 - 30
	assert.Equal(t, 50, Score(u, now))
}

func TestScore_NeverBorrowedClampsAt100(t *testing.T) {
	now := time.Now()
	u := domain.Unit{Condition: domain.ConditionNew}

	// 100 + 30 + 10 would be 140; clamp wins
	assert.Equal(t, 100, Score(u, now))
}

func TestScore_FloorAtZero(t *testing.T) {
	now := time.Now()
	u := domain.Unit{
		Condition:      domain.ConditionPoor,
		TotalBorrows:   40,
		TotalRepairs:   5,
		LastBorrowedAt: ts(now.Add(-day)),
	}

	assert.Equal(t, 0, Score(u, now))
}

func TestScore_IdleBonuses(t *testing.T) {
	now := time.Now()

	u := domain.Unit{
		Condition:      domain.ConditionGood,
		TotalBorrows:   20,
		TotalRepairs:   1,
		LastBorrowedAt: ts(now.Add(-10 * day)),
	}
	assert.Equal(t, 70, Score(u, now))

	u.LastBorrowedAt = ts(now.Add(-45 * day))
	assert.Equal(t, 85, Score(u, now))

	u.LastBorrowedAt = ts(now.Add(-90 * day))
	assert.Equal(t, 95, Score(u, now))
}

func TestScore_WarrantyWindow(t *testing.T) {
	now := time.Now()

	u := domain.Unit{
		Condition:      domain.ConditionFair,
		TotalBorrows:   20,
		LastBorrowedAt: ts(now.Add(-day)),
	}
	assert.Equal(t, 70, Score(u, now))

	// inside the 90-day window before lapse
	u.WarrantyUntil = ts(now.Add(30 * day))
	assert.Equal(t, 80, Score(u, now))

	// already lapsed: no bonus
	u.WarrantyUntil = ts(now.Add(-day))
	assert.Equal(t, 70, Score(u, now))

	// far from lapsing: no bonus
	u.WarrantyUntil = ts(now.Add(400 * day))
	assert.Equal(t, 70, Score(u, now))
}

func TestRank_OrdersByScoreThenSerial(t *testing.T) {
	now := time.Now()
	recent := now.Add(-day)

	units := []domain.Unit{
		{Serial: "C-3", Condition: domain.ConditionFair, TotalBorrows: 15, TotalRepairs: 3, LastBorrowedAt: ts(recent)}, // 50
		{Serial: "A-1", Condition: domain.ConditionGood, TotalBorrows: 5, TotalRepairs: 3, LastBorrowedAt: ts(recent)},  // 80
		{Serial: "B-2", Condition: domain.ConditionGood, TotalBorrows: 10, TotalRepairs: 2, LastBorrowedAt: ts(recent)}, // 80
	}

	ranked := Rank(units, 2, now)

	assert.Len(t, ranked, 3)
	assert.Equal(t, "A-1", ranked[0].Serial)
	assert.Equal(t, "B-2", ranked[1].Serial) // tie broken by serial
	assert.Equal(t, "C-3", ranked[2].Serial)

	assert.True(t, ranked[0].Suggested)
	assert.True(t, ranked[1].Suggested)
	assert.False(t, ranked[2].Suggested)
}

func TestRank_Deterministic(t *testing.T) {
	now := time.Now()
	units := []domain.Unit{
		{Serial: "X-2", Condition: domain.ConditionNew},
		{Serial: "X-1", Condition: domain.ConditionNew},
		{Serial: "X-3", Condition: domain.ConditionNew},
	}

	first := Rank(units, 1, now)
	second := Rank(units, 1, now)

	for i := range first {
		assert.Equal(t, first[i].Serial, second[i].Serial)
		assert.Equal(t, first[i].Score, second[i].Score)
		assert.Equal(t, first[i].Suggested, second[i].Suggested)
	}
}

func TestRank_QtyLargerThanCandidates(t *testing.T) {
	ranked := Rank([]domain.Unit{{Serial: "A"}}, 5, time.Now())
	assert.Len(t, ranked, 1)
	assert.True(t, ranked[0].Suggested)
}
