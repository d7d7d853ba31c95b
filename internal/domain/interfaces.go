package domain

import (
	"context"
	"time"
)

// ─── Persistence Interfaces ─────────────────────────────────────────────────
// Infrastructure implements these; the application layer depends on them.

// Store is the persistence contract of the gamification engine. All calls
// made through one Store value belong to one atomic unit of work.
type Store interface {
	// GetUserStats returns the single stats row, creating it with
	// DefaultUserStats if absent.
	GetUserStats() (UserStats, error)
	// UpdateUserStats applies a partial update. LongestStreak is never
	// lowered below the stored value or below the resulting CurrentStreak.
	UpdateUserStats(u StatsUpdate) error

	AppendXPTransaction(tx XPTransaction) error
	ListXPTransactions(limit int) ([]XPTransaction, error)

	// SeedBadges inserts the catalog when the badge table is empty.
	SeedBadges(badges []Badge) error
	GetAllBadges() ([]Badge, error)
	// SetBadgeUnlocked flips a locked badge to unlocked. It reports false
	// when the badge was already unlocked.
	SetBadgeUnlocked(id string, at time.Time) (bool, error)
	// ListUnlockedBadges returns unlocked badges, most recent first.
	ListUnlockedBadges(limit int) ([]Badge, error)

	// GetChallengeForDate returns nil, nil when no row exists for date.
	GetChallengeForDate(date string) (*DailyChallenge, error)
	// CreateChallenge materializes tpl for date unless the date already
	// has a row, and returns the stored row either way.
	CreateChallenge(date string, tpl ChallengeTemplate) (DailyChallenge, error)
	// SetChallengeProgress stores progress on a row that is not yet
	// completed. A completed row is left untouched.
	SetChallengeProgress(date string, progress int, completed bool, at time.Time) error

	AppendStreakHistory(e StreakHistoryEntry) error
	ListStreakHistory(limit int) ([]StreakHistoryEntry, error)

	CreateNotification(n Notification) (int64, error)
	CountNotificationsSince(since time.Time) (int, error)
	PendingNotifications(limit int) ([]Notification, error)
	MarkNotificationShown(id int64) error

	// ResetAll wipes progress and re-locks every badge.
	ResetAll() error
}

// Transactor opens units of work over a Store.
type Transactor interface {
	// Update runs fn in a read-write transaction. Any error rolls back.
	Update(ctx context.Context, fn func(Store) error) error
	// View runs fn in a transaction that is always rolled back.
	View(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}
