package repositories

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"structwatch/internal/platform/models"
)

type WebhookRepository struct {
	db DBTX
}

func NewWebhookRepository(db DBTX) *WebhookRepository {
	return &WebhookRepository{db: db}
}

const webhookColumns = `id, name, url, secret, notification_types, is_active, is_default, notes, created_at, updated_at`

func (r *WebhookRepository) Create(webhook *models.Webhook) error {
	webhook.ID = "wh_" + uuid.New().String()
	webhook.CreatedAt = time.Now().UTC()
	webhook.UpdatedAt = webhook.CreatedAt

	typesJSON, err := json.Marshal(webhook.NotificationTypes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhooks (` + webhookColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		webhook.ID, webhook.Name, webhook.URL, webhook.Secret, string(typesJSON),
		webhook.IsActive, webhook.IsDefault, webhook.Notes,
		fmtTime(webhook.CreatedAt), fmtTime(webhook.UpdatedAt),
	)
	return err
}

func (r *WebhookRepository) GetByID(id string) (*models.Webhook, error) {
	row := r.db.QueryRow(`SELECT `+webhookColumns+` FROM webhooks WHERE id = ?`, id)
	return scanWebhook(row)
}

func (r *WebhookRepository) GetByName(name string) (*models.Webhook, error) {
	row := r.db.QueryRow(`SELECT `+webhookColumns+` FROM webhooks WHERE name = ?`, name)
	return scanWebhook(row)
}

func (r *WebhookRepository) List() ([]*models.Webhook, error) {
	return r.list(`SELECT ` + webhookColumns + ` FROM webhooks ORDER BY name`)
}

// ListActiveForOwner returns the active webhooks subscribed by an owner.
func (r *WebhookRepository) ListActiveForOwner(ownerID int64) ([]*models.Webhook, error) {
	return r.list(`
		SELECT w.id, w.name, w.url, w.secret, w.notification_types, w.is_active,
			w.is_default, w.notes, w.created_at, w.updated_at
		FROM webhooks w
		JOIN owner_webhooks ow ON ow.webhook_id = w.id
		WHERE ow.owner_id = ? AND w.is_active = 1
		ORDER BY w.name`, ownerID)
}

func (r *WebhookRepository) ListDefault() ([]*models.Webhook, error) {
	return r.list(`SELECT ` + webhookColumns + ` FROM webhooks WHERE is_default = 1 ORDER BY name`)
}

func (r *WebhookRepository) Update(webhook *models.Webhook) error {
	typesJSON, err := json.Marshal(webhook.NotificationTypes)
	if err != nil {
		return err
	}
	webhook.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE webhooks
		SET name = ?, url = ?, secret = ?, notification_types = ?, is_active = ?,
			is_default = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		webhook.Name, webhook.URL, webhook.Secret, string(typesJSON),
		webhook.IsActive, webhook.IsDefault, webhook.Notes,
		fmtTime(webhook.UpdatedAt), webhook.ID,
	)
	return err
}

func (r *WebhookRepository) list(query string, args ...any) ([]*models.Webhook, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, w)
	}
	return webhooks, rows.Err()
}

func scanWebhook(s interface {
	Scan(dest ...any) error
}) (*models.Webhook, error) {
	var w models.Webhook
	var typesRaw, createdAt, updatedAt string

	err := s.Scan(
		&w.ID, &w.Name, &w.URL, &w.Secret, &typesRaw,
		&w.IsActive, &w.IsDefault, &w.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(typesRaw), &w.NotificationTypes); err != nil {
		return nil, err
	}
	w.CreatedAt = parseTime(createdAt)
	w.UpdatedAt = parseTime(updatedAt)

	return &w, nil
}
