package repositories

import (
	"database/sql"
	"time"

	"structwatch/internal/platform/models"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `notification_id, owner_id, sender_id, timestamp, type, text,
	is_read, is_sent, is_timer_added, created, last_updated`

// Upsert stores a fetched notification. Re-ingesting an existing row may
// refresh text and is_read but never resets is_sent, is_timer_added or
// created. Returns true when a new row was inserted.
func (r *NotificationRepository) Upsert(n *models.Notification) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM notifications WHERE notification_id = ? AND owner_id = ?)`,
		n.NotificationID, n.OwnerID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	n.LastUpdated = now

	if exists {
		_, err = r.db.Exec(`
			UPDATE notifications SET sender_id = ?, timestamp = ?, type = ?, text = ?,
				is_read = ?, last_updated = ?
			WHERE notification_id = ? AND owner_id = ?`,
			n.SenderID, fmtTime(n.Timestamp), n.Type, n.Text,
			n.IsRead, fmtTime(n.LastUpdated),
			n.NotificationID, n.OwnerID,
		)
		return false, err
	}

	n.Created = now
	_, err = r.db.Exec(`
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		n.NotificationID, n.OwnerID, n.SenderID, fmtTime(n.Timestamp), n.Type, n.Text,
		n.IsRead, fmtTime(n.Created), fmtTime(n.LastUpdated),
	)
	return true, err
}

func (r *NotificationRepository) Get(notificationID, ownerID int64) (*models.Notification, error) {
	row := r.db.QueryRow(
		`SELECT `+notificationColumns+` FROM notifications WHERE notification_id = ? AND owner_id = ?`,
		notificationID, ownerID,
	)
	return scanNotification(row)
}

// ListUnsentByOwner returns unsent notifications oldest first, so
// earlier events reach webhooks before later ones.
func (r *NotificationRepository) ListUnsentByOwner(ownerID int64) ([]*models.Notification, error) {
	rows, err := r.db.Query(
		`SELECT `+notificationColumns+` FROM notifications
		WHERE owner_id = ? AND is_sent = 0 ORDER BY timestamp ASC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkSent(notificationID, ownerID int64) error {
	_, err := r.db.Exec(
		`UPDATE notifications SET is_sent = 1 WHERE notification_id = ? AND owner_id = ?`,
		notificationID, ownerID,
	)
	return err
}

func (r *NotificationRepository) MarkTimerAdded(notificationID, ownerID int64) error {
	_, err := r.db.Exec(
		`UPDATE notifications SET is_timer_added = 1 WHERE notification_id = ? AND owner_id = ?`,
		notificationID, ownerID,
	)
	return err
}

// RecordDelivery writes a per-webhook delivery receipt. Duplicate
// receipts are ignored.
func (r *NotificationRepository) RecordDelivery(d *models.NotificationDelivery) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO notification_deliveries (notification_id, owner_id, webhook_id, sent_at)
		VALUES (?, ?, ?, ?)`,
		d.NotificationID, d.OwnerID, d.WebhookID, fmtTime(d.SentAt),
	)
	return err
}

func (r *NotificationRepository) DeliveredWebhookIDs(notificationID, ownerID int64) (map[string]bool, error) {
	rows, err := r.db.Query(
		`SELECT webhook_id FROM notification_deliveries WHERE notification_id = ? AND owner_id = ?`,
		notificationID, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	delivered := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		delivered[id] = true
	}
	return delivered, rows.Err()
}

func scanNotification(s interface {
	Scan(dest ...any) error
}) (*models.Notification, error) {
	var n models.Notification
	var timestamp, created, updated string
	var isRead sql.NullBool

	err := s.Scan(
		&n.NotificationID, &n.OwnerID, &n.SenderID, &timestamp, &n.Type, &n.Text,
		&isRead, &n.IsSent, &n.IsTimerAdded, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	if isRead.Valid {
		n.IsRead = &isRead.Bool
	}
	n.Timestamp = parseTime(timestamp)
	n.Created = parseTime(created)
	n.LastUpdated = parseTime(updated)

	return &n, nil
}
