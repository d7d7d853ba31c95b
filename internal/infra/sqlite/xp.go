package sqlite

import (
	"fmt"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// AppendXPTransaction writes one immutable ledger row.
func (t *Tx) AppendXPTransaction(x domain.XPTransaction) error {
	createdAt := x.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := t.tx.Exec(
		`INSERT INTO xp_transactions (amount, source, description, activity_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		x.Amount, string(x.Source), x.Description, x.ActivityID, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("append xp transaction: %w", err)
	}
	return nil
}

// ListXPTransactions returns ledger rows, newest first.
func (t *Tx) ListXPTransactions(limit int) ([]domain.XPTransaction, error) {
	rows, err := t.tx.Query(
		`SELECT id, amount, source, description, activity_id, created_at
		 FROM xp_transactions ORDER BY id DESC LIMIT ?`, limitOrAll(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list xp transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.XPTransaction
	for rows.Next() {
		var (
			x         domain.XPTransaction
			source    string
			createdAt int64
		)
		if err := rows.Scan(&x.ID, &x.Amount, &source, &x.Description, &x.ActivityID, &createdAt); err != nil {
			return nil, err
		}
		x.Source = domain.XPSource(source)
		x.CreatedAt = time.Unix(createdAt, 0)
		txs = append(txs, x)
	}
	return txs, rows.Err()
}
