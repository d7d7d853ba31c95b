package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lifequran/lifequran/internal/domain"
)

// ─── User Stats ─────────────────────────────────────────────────────────────

const statsColumns = `total_pages_read, total_minutes, current_streak, longest_streak,
	level, total_xp, last_active_date, daily_target_pages, challenges_completed,
	freeze_available, freeze_used_date`

// GetUserStats returns the single stats row, inserting defaults first if the
// row is missing.
func (t *Tx) GetUserStats() (domain.UserStats, error) {
	s, err := scanUserStats(t.tx.QueryRow(`SELECT ` + statsColumns + ` FROM user_stats WHERE id = 1`))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.UserStats{}, fmt.Errorf("get user stats: %w", err)
	}

	def := domain.DefaultUserStats()
	_, err = t.tx.Exec(
		`INSERT OR IGNORE INTO user_stats (id, level, daily_target_pages, freeze_available)
		 VALUES (1, ?, ?, ?)`,
		def.Level, def.DailyTargetPages, def.FreezeAvailable,
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("create user stats: %w", err)
	}
	return def, nil
}

// UpdateUserStats applies the non-nil fields of u to the stats row.
// longest_streak only grows: it keeps the max of its stored value, the given
// value and the resulting current_streak.
func (t *Tx) UpdateUserStats(u domain.StatsUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	// Make sure the row exists before updating it.
	if _, err := t.GetUserStats(); err != nil {
		return err
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if u.TotalPagesRead != nil {
		set("total_pages_read", *u.TotalPagesRead)
	}
	if u.TotalMinutes != nil {
		set("total_minutes", *u.TotalMinutes)
	}
	if u.CurrentStreak != nil {
		set("current_streak", *u.CurrentStreak)
	}
	if u.LongestStreak != nil {
		sets = append(sets, "longest_streak = MAX(longest_streak, ?)")
		args = append(args, *u.LongestStreak)
	}
	if u.Level != nil {
		set("level", *u.Level)
	}
	if u.TotalXP != nil {
		set("total_xp", *u.TotalXP)
	}
	if u.LastActiveDate != nil {
		set("last_active_date", nullableString(*u.LastActiveDate))
	}
	if u.DailyTargetPages != nil {
		set("daily_target_pages", *u.DailyTargetPages)
	}
	if u.ChallengesCompleted != nil {
		set("challenges_completed", *u.ChallengesCompleted)
	}
	if u.FreezeAvailable != nil {
		set("freeze_available", *u.FreezeAvailable)
	}
	if u.FreezeUsedDate != nil {
		set("freeze_used_date", nullableString(*u.FreezeUsedDate))
	}

	q := `UPDATE user_stats SET ` + strings.Join(sets, ", ") + ` WHERE id = 1`
	if _, err := t.tx.Exec(q, args...); err != nil {
		return fmt.Errorf("update user stats: %w", err)
	}
	// SET expressions see pre-update values, so the max is a second pass.
	if _, err := t.tx.Exec(
		`UPDATE user_stats SET longest_streak = current_streak
		 WHERE id = 1 AND current_streak > longest_streak`,
	); err != nil {
		return fmt.Errorf("update longest streak: %w", err)
	}
	return nil
}

func scanUserStats(s scanner) (domain.UserStats, error) {
	var (
		st         domain.UserStats
		lastActive sql.NullString
		freezeUsed sql.NullString
	)
	err := s.Scan(&st.TotalPagesRead, &st.TotalMinutes, &st.CurrentStreak, &st.LongestStreak,
		&st.Level, &st.TotalXP, &lastActive, &st.DailyTargetPages, &st.ChallengesCompleted,
		&st.FreezeAvailable, &freezeUsed)
	if err != nil {
		return domain.UserStats{}, err
	}
	st.LastActiveDate = lastActive.String
	st.FreezeUsedDate = freezeUsed.String
	return st, nil
}
