package gamification

import (
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

// RegisterActivity records that the user was active on the calendar date of
// today (in today's location) and advances the streak state machine:
//
//	same day            -> no-op
//	yesterday           -> +1
//	never active        -> 1
//	gap, freeze ready   -> consume freeze, +1
//	gap, no freeze      -> 1
//
// Whenever the resulting streak is a multiple of seven the freeze is
// replenished and WeeklyMilestone is set; the caller awards the bonus.
func RegisterActivity(s domain.Store, today time.Time) (domain.StreakResult, error) {
	stats, err := s.GetUserStats()
	if err != nil {
		return domain.StreakResult{}, err
	}

	date := domain.DateOf(today)
	yesterday := domain.DateOf(today.AddDate(0, 0, -1))

	res := domain.StreakResult{
		CurrentStreak:   stats.CurrentStreak,
		LongestStreak:   stats.LongestStreak,
		FreezeAvailable: stats.FreezeAvailable,
	}

	last := stats.LastActiveDate
	// A last-active date after today means the clock went backwards;
	// treat it like a same-day re-entry rather than breaking the streak.
	if last == date || (last != "" && last > date) {
		return res, nil
	}

	freezeAvailable := stats.FreezeAvailable
	freezeUsedDate := stats.FreezeUsedDate

	switch {
	case last == "":
		res.CurrentStreak = 1
	case last == yesterday:
		res.CurrentStreak = stats.CurrentStreak + 1
	case canUseFreeze(stats):
		freezeAvailable = false
		freezeUsedDate = date
		res.FreezeConsumed = true
		res.CurrentStreak = stats.CurrentStreak + 1
	default:
		res.CurrentStreak = 1
	}

	if res.CurrentStreak%StreakBonusPeriod == 0 {
		freezeAvailable = true
		freezeUsedDate = ""
		res.WeeklyMilestone = true
	}
	if res.CurrentStreak > res.LongestStreak {
		res.LongestStreak = res.CurrentStreak
	}
	res.FreezeAvailable = freezeAvailable
	res.Changed = true

	if err := s.UpdateUserStats(domain.StatsUpdate{
		CurrentStreak:   &res.CurrentStreak,
		LongestStreak:   &res.LongestStreak,
		LastActiveDate:  &date,
		FreezeAvailable: &freezeAvailable,
		FreezeUsedDate:  &freezeUsedDate,
	}); err != nil {
		return domain.StreakResult{}, err
	}
	if err := s.AppendStreakHistory(domain.StreakHistoryEntry{
		Date:        date,
		StreakCount: res.CurrentStreak,
		FreezeUsed:  res.FreezeConsumed,
	}); err != nil {
		return domain.StreakResult{}, err
	}
	return res, nil
}

// canUseFreeze: one grace day per cycle, and only if not spent in it.
func canUseFreeze(stats domain.UserStats) bool {
	return stats.FreezeAvailable && stats.FreezeUsedDate == ""
}

// GetStreakStatus builds the dashboard view of the streak as of now.
func GetStreakStatus(stats domain.UserStats, now time.Time) domain.StreakStatus {
	return domain.StreakStatus{
		CurrentStreak:   stats.CurrentStreak,
		LongestStreak:   stats.LongestStreak,
		FreezeAvailable: stats.FreezeAvailable,
		FreezeUsedDate:  stats.FreezeUsedDate,
		NextMilestone:   domain.NextStreakMilestone(stats.CurrentStreak),
		AtRisk:          stats.CurrentStreak > 0 && stats.LastActiveDate != domain.DateOf(now),
		Message:         StreakMessage(stats.CurrentStreak),
	}
}
