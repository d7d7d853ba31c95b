package sqlite

import (
	"fmt"

	"github.com/lifequran/lifequran/internal/domain"
)

// ─── Streak History ─────────────────────────────────────────────────────────

// AppendStreakHistory logs one streak transition.
func (t *Tx) AppendStreakHistory(e domain.StreakHistoryEntry) error {
	_, err := t.tx.Exec(
		`INSERT INTO streak_history (date, streak_count, freeze_used) VALUES (?, ?, ?)`,
		e.Date, e.StreakCount, e.FreezeUsed,
	)
	if err != nil {
		return fmt.Errorf("append streak history: %w", err)
	}
	return nil
}

// ListStreakHistory returns history rows, newest first.
func (t *Tx) ListStreakHistory(limit int) ([]domain.StreakHistoryEntry, error) {
	rows, err := t.tx.Query(
		`SELECT id, date, streak_count, freeze_used FROM streak_history
		 ORDER BY id DESC LIMIT ?`, limitOrAll(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list streak history: %w", err)
	}
	defer rows.Close()

	var entries []domain.StreakHistoryEntry
	for rows.Next() {
		var e domain.StreakHistoryEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.StreakCount, &e.FreezeUsed); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
