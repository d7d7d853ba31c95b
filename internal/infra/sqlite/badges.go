package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

// ─── Badges ─────────────────────────────────────────────────────────────────

const badgeColumns = `id, name, description, icon, category, requirement_type,
	requirement_value, xp_reward, unlocked, unlocked_at`

// SeedBadges inserts the catalog once, when the badge table is empty.
// Catalog order is kept in sort_order.
func (t *Tx) SeedBadges(badges []domain.Badge) error {
	var count int
	if err := t.tx.QueryRow(`SELECT COUNT(*) FROM badges`).Scan(&count); err != nil {
		return fmt.Errorf("count badges: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, b := range badges {
		_, err := t.tx.Exec(
			`INSERT INTO badges (id, name, description, icon, category, requirement_type,
				requirement_value, xp_reward, sort_order, unlocked, unlocked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL)
			 ON CONFLICT(id) DO NOTHING`,
			b.ID, b.Name, b.Description, b.Icon, string(b.Category), string(b.RequirementType),
			b.RequirementValue, b.XPReward, i,
		)
		if err != nil {
			return fmt.Errorf("seed badge %s: %w", b.ID, err)
		}
	}
	return nil
}

// GetAllBadges returns the catalog in seed order.
func (t *Tx) GetAllBadges() ([]domain.Badge, error) {
	return t.queryBadges(`SELECT ` + badgeColumns + ` FROM badges ORDER BY sort_order, id`)
}

// SetBadgeUnlocked performs the one-way unlock. It returns true only when
// this call flipped the row.
func (t *Tx) SetBadgeUnlocked(id string, at time.Time) (bool, error) {
	result, err := t.tx.Exec(
		`UPDATE badges SET unlocked = 1, unlocked_at = ? WHERE id = ? AND unlocked = 0`,
		at.Unix(), id,
	)
	if err != nil {
		return false, fmt.Errorf("unlock badge %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil // true = newly unlocked
}

// ListUnlockedBadges returns unlocked badges, most recent first.
func (t *Tx) ListUnlockedBadges(limit int) ([]domain.Badge, error) {
	return t.queryBadges(
		`SELECT `+badgeColumns+` FROM badges WHERE unlocked = 1
		 ORDER BY unlocked_at DESC, sort_order DESC LIMIT ?`, limitOrAll(limit),
	)
}

func (t *Tx) queryBadges(q string, args ...any) ([]domain.Badge, error) {
	rows, err := t.tx.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func scanBadge(s scanner) (domain.Badge, error) {
	var (
		b          domain.Badge
		category   string
		reqType    string
		unlockedAt sql.NullInt64
	)
	err := s.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &category, &reqType,
		&b.RequirementValue, &b.XPReward, &b.Unlocked, &unlockedAt)
	if err != nil {
		return domain.Badge{}, err
	}
	b.Category = domain.BadgeCategory(category)
	b.RequirementType = domain.RequirementType(reqType)
	b.UnlockedAt = fromNullableUnix(unlockedAt)
	return b, nil
}
