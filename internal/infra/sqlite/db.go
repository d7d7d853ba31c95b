// Package sqlite provides SQLite-based persistent storage for LifeQuran.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/lifequran/lifequran/internal/domain"
)

// FileName is the database file created inside the data directory.
const FileName = "state.db"

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

var _ domain.Transactor = (*DB)(nil)

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout. Transactions
// begin IMMEDIATE so a second process waits on the busy timeout for the
// write lock instead of failing mid-transaction.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w: %w", domain.ErrStoreUnavailable, err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := "file:" + dbPath +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)" +
		"&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", domain.ErrStoreUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w: %w", domain.ErrStoreUnavailable, err)
	}

	// SQLite is single-writer. Every unit of work holds the only connection,
	// so a Store must never be used outside the callback that received it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Update runs fn inside a read-write transaction. The transaction commits
// only when fn returns nil.
func (d *DB) Update(ctx context.Context, fn func(domain.Store) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// View runs fn inside a transaction that is always rolled back.
func (d *DB) View(ctx context.Context, fn func(domain.Store) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer sqlTx.Rollback()
	return fn(&Tx{tx: sqlTx})
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Single aggregate row, pinned to id 1.
		`CREATE TABLE IF NOT EXISTS user_stats (
			id                   INTEGER PRIMARY KEY CHECK (id = 1),
			total_pages_read     INTEGER NOT NULL DEFAULT 0,
			total_minutes        INTEGER NOT NULL DEFAULT 0,
			current_streak       INTEGER NOT NULL DEFAULT 0,
			longest_streak       INTEGER NOT NULL DEFAULT 0,
			level                INTEGER NOT NULL DEFAULT 1,
			total_xp             INTEGER NOT NULL DEFAULT 0,
			last_active_date     TEXT,
			daily_target_pages   INTEGER NOT NULL DEFAULT 2,
			challenges_completed INTEGER NOT NULL DEFAULT 0,
			freeze_available     BOOLEAN NOT NULL DEFAULT 1,
			freeze_used_date     TEXT
		)`,

		// XP ledger (append-only audit trail)
		`CREATE TABLE IF NOT EXISTS xp_transactions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			amount      INTEGER NOT NULL,
			source      TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			activity_id TEXT NOT NULL DEFAULT '',
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_created ON xp_transactions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_xp_activity ON xp_transactions(activity_id)`,

		// Badge catalog with one-way unlock state
		`CREATE TABLE IF NOT EXISTS badges (
			id                TEXT PRIMARY KEY,
			name              TEXT NOT NULL,
			description       TEXT NOT NULL,
			icon              TEXT NOT NULL,
			category          TEXT NOT NULL,
			requirement_type  TEXT NOT NULL,
			requirement_value INTEGER NOT NULL,
			xp_reward         INTEGER NOT NULL DEFAULT 0,
			sort_order        INTEGER NOT NULL DEFAULT 0,
			unlocked          BOOLEAN NOT NULL DEFAULT 0,
			unlocked_at       INTEGER
		)`,

		// One challenge per calendar date
		`CREATE TABLE IF NOT EXISTS daily_challenges (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			date             TEXT NOT NULL UNIQUE,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL,
			challenge_type   TEXT NOT NULL,
			target_value     INTEGER NOT NULL CHECK (target_value > 0),
			current_progress INTEGER NOT NULL DEFAULT 0,
			xp_reward        INTEGER NOT NULL,
			completed        BOOLEAN NOT NULL DEFAULT 0,
			completed_at     INTEGER
		)`,

		// Streak history (report-only)
		`CREATE TABLE IF NOT EXISTS streak_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			date         TEXT NOT NULL,
			streak_count INTEGER NOT NULL,
			freeze_used  BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_streak_date ON streak_history(date)`,

		// Notification feed (policy: max per day, quiet hours)
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_created ON notifications(created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Transaction ────────────────────────────────────────────────────────────

// Tx is one unit of work. It implements domain.Store.
type Tx struct {
	tx *sql.Tx
}

var _ domain.Store = (*Tx)(nil)

// ResetAll restores default stats, re-locks every badge and clears the
// ledger, challenges, streak history and notifications.
func (t *Tx) ResetAll() error {
	stmts := []string{
		`DELETE FROM xp_transactions`,
		`DELETE FROM daily_challenges`,
		`DELETE FROM streak_history`,
		`DELETE FROM notifications`,
		`DELETE FROM user_stats`,
		`UPDATE badges SET unlocked = 0, unlocked_at = NULL`,
	}
	for _, s := range stmts {
		if _, err := t.tx.Exec(s); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromNullableUnix(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0)
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1 // SQLite: no limit
	}
	return limit
}
