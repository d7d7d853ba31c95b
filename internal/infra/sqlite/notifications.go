package sqlite

import (
	"fmt"
	"time"

	"github.com/lifequran/lifequran/internal/domain"
)

// ─── Notifications ──────────────────────────────────────────────────────────

// CreateNotification inserts a new feed entry and returns its ID.
func (t *Tx) CreateNotification(n domain.Notification) (int64, error) {
	result, err := t.tx.Exec(
		`INSERT INTO notifications (type, title, body, created_at, shown) VALUES (?, ?, ?, ?, ?)`,
		string(n.Type), n.Title, n.Body, n.CreatedAt.Unix(), n.Shown,
	)
	if err != nil {
		return 0, fmt.Errorf("create notification: %w", err)
	}
	return result.LastInsertId()
}

// CountNotificationsSince counts entries created at or after since.
func (t *Tx) CountNotificationsSince(since time.Time) (int, error) {
	var count int
	err := t.tx.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE created_at >= ?`, since.Unix(),
	).Scan(&count)
	return count, err
}

// PendingNotifications returns entries not yet shown, oldest first.
func (t *Tx) PendingNotifications(limit int) ([]domain.Notification, error) {
	rows, err := t.tx.Query(
		`SELECT id, type, title, body, created_at, shown FROM notifications
		 WHERE shown = 0 ORDER BY created_at ASC, id ASC LIMIT ?`, limitOrAll(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("pending notifications: %w", err)
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		var (
			n         domain.Notification
			typ       string
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Body, &createdAt, &n.Shown); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		n.CreatedAt = time.Unix(createdAt, 0)
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown flags an entry as displayed.
func (t *Tx) MarkNotificationShown(id int64) error {
	result, err := t.tx.Exec(`UPDATE notifications SET shown = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification shown: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
