package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

// ─── Daily Challenges ───────────────────────────────────────────────────────

const challengeColumns = `id, date, title, description, challenge_type, target_value,
	current_progress, xp_reward, completed, completed_at`

// GetChallengeForDate returns the challenge of date, or nil if none exists.
func (t *Tx) GetChallengeForDate(date string) (*domain.DailyChallenge, error) {
	row := t.tx.QueryRow(`SELECT `+challengeColumns+` FROM daily_challenges WHERE date = ?`, date)
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found, no error
	}
	if err != nil {
		return nil, fmt.Errorf("get challenge %s: %w", date, err)
	}
	return &c, nil
}

// CreateChallenge inserts a fresh row for date from tpl. The unique date key
// makes a second create a no-op; the stored row is returned either way.
func (t *Tx) CreateChallenge(date string, tpl domain.ChallengeTemplate) (domain.DailyChallenge, error) {
	_, err := t.tx.Exec(
		`INSERT OR IGNORE INTO daily_challenges
			(date, title, description, challenge_type, target_value, current_progress, xp_reward, completed)
		 VALUES (?, ?, ?, ?, ?, 0, ?, 0)`,
		date, tpl.Title, tpl.Description, string(tpl.Type), tpl.Target, tpl.XPReward,
	)
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("create challenge %s: %w", date, err)
	}
	c, err := t.GetChallengeForDate(date)
	if err != nil {
		return domain.DailyChallenge{}, err
	}
	if c == nil {
		return domain.DailyChallenge{}, fmt.Errorf("create challenge %s: %w", date, domain.ErrNoChallenge)
	}
	return *c, nil
}

// SetChallengeProgress stores progress (clamped to the target) on a row that
// is still active. Completed rows are never touched.
func (t *Tx) SetChallengeProgress(date string, progress int, completed bool, at time.Time) error {
	var completedAt sql.NullInt64
	if completed {
		completedAt = nullableUnix(at)
	}
	_, err := t.tx.Exec(
		`UPDATE daily_challenges
		 SET current_progress = MIN(MAX(?, 0), target_value), completed = ?, completed_at = ?
		 WHERE date = ? AND completed = 0`,
		progress, completed, completedAt, date,
	)
	if err != nil {
		return fmt.Errorf("set challenge progress %s: %w", date, err)
	}
	return nil
}

func scanChallenge(s scanner) (domain.DailyChallenge, error) {
	var (
		c           domain.DailyChallenge
		typ         string
		completedAt sql.NullInt64
	)
	err := s.Scan(&c.ID, &c.Date, &c.Title, &c.Description, &typ, &c.TargetValue,
		&c.CurrentProgress, &c.XPReward, &c.Completed, &completedAt)
	if err != nil {
		return domain.DailyChallenge{}, err
	}
	c.Type = domain.ChallengeType(typ)
	c.CompletedAt = fromNullableUnix(completedAt)
	return c, nil
}
