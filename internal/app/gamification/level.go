// Package gamification implements the LifeQuran engagement engine:
// reading streaks with a weekly grace freeze, cumulative XP with six levels,
// a one-way badge catalog, and one rotating challenge per calendar day.
//
// The rule functions in this package operate on a domain.Store, which is
// always one open transaction. Engine is the serialized facade that opens
// those transactions.
package gamification

import (
	"fmt"

	"github.com/lifequran/lifequran/internal/domain"
)

// Reward constants.
const (
	XPPerPage         int64 = 10
	XPPerAudioSurah   int64 = 5
	XPStreakBonus     int64 = 100
	StreakBonusPeriod       = 7
)

// MaxLevel is the terminal level.
const MaxLevel = 6

// levelTable is ordered by level; index i holds level i+1.
var levelTable = []domain.LevelTier{
	{Level: 1, Name: "Pemula", Icon: "🌱", MinXP: 0},
	{Level: 2, Name: "Pelajar", Icon: "📖", MinXP: 500},
	{Level: 3, Name: "Rajin", Icon: "⭐", MinXP: 1500},
	{Level: 4, Name: "Istiqomah", Icon: "🌙", MinXP: 3500},
	{Level: 5, Name: "Hafizh Muda", Icon: "💎", MinXP: 7000},
	{Level: 6, Name: "Master", Icon: "👑", MinXP: 15000},
}

// Levels returns a copy of the level table.
func Levels() []domain.LevelTier {
	out := make([]domain.LevelTier, len(levelTable))
	copy(out, levelTable)
	return out
}

// TierFor returns the table row of level. Out-of-range levels (below 1 or
// above the terminal level) resolve to the terminal Master row.
func TierFor(level int) domain.LevelTier {
	if level < 1 || level > MaxLevel {
		return levelTable[MaxLevel-1]
	}
	return levelTable[level-1]
}

// LevelForXP returns the unique level whose threshold range contains xp.
func LevelForXP(xp int64) int {
	for i := len(levelTable) - 1; i >= 0; i-- {
		if xp >= levelTable[i].MinXP {
			return levelTable[i].Level
		}
	}
	return 1
}

// NextLevelXP returns the XP lower bound of the level after level.
// The terminal level reports its own threshold.
func NextLevelXP(level int) int64 {
	if level < 1 {
		return levelTable[1].MinXP
	}
	if level >= MaxLevel {
		return levelTable[MaxLevel-1].MinXP
	}
	return levelTable[level].MinXP
}

// GetLevelInfo projects cumulative XP onto the level table.
func GetLevelInfo(totalXP int64) domain.LevelInfo {
	level := LevelForXP(totalXP)
	tier := TierFor(level)
	info := domain.LevelInfo{
		Level:       level,
		Name:        tier.Name,
		Icon:        tier.Icon,
		CurrentXP:   totalXP,
		NextLevelXP: NextLevelXP(level),
	}
	if level >= MaxLevel {
		info.Progress = 1
		info.MaxLevel = true
		return info
	}

	span := info.NextLevelXP - tier.MinXP
	progress := float64(totalXP-tier.MinXP) / float64(span)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}
	info.Progress = progress
	return info
}

// ─── XP Award ───────────────────────────────────────────────────────────────

// AwardXP appends a ledger row and raises the cached total and level in the
// same unit of work. amount must be positive.
func AwardXP(s domain.Store, act Activity, amount int64, source domain.XPSource, description string) (domain.XPResult, error) {
	if amount <= 0 {
		return domain.XPResult{}, fmt.Errorf("%w, got %d", domain.ErrInvalidAmount, amount)
	}
	if !source.Valid() {
		return domain.XPResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidSource, source)
	}

	stats, err := s.GetUserStats()
	if err != nil {
		return domain.XPResult{}, err
	}

	oldLevel := stats.Level
	newTotal := stats.TotalXP + amount
	newLevel := LevelForXP(newTotal)
	if newLevel < oldLevel {
		newLevel = oldLevel // levels never decrease
	}

	if err := s.AppendXPTransaction(domain.XPTransaction{
		Amount:      amount,
		Source:      source,
		Description: description,
		ActivityID:  act.ID,
		CreatedAt:   act.At,
	}); err != nil {
		return domain.XPResult{}, err
	}
	if err := s.UpdateUserStats(domain.StatsUpdate{
		TotalXP: &newTotal,
		Level:   &newLevel,
	}); err != nil {
		return domain.XPResult{}, err
	}

	return domain.XPResult{
		NewTotalXP: newTotal,
		OldLevel:   oldLevel,
		NewLevel:   newLevel,
		LeveledUp:  newLevel > oldLevel,
	}, nil
}
