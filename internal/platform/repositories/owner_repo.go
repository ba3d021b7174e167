package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"structwatch/internal/platform/models"
)

type OwnerRepository struct {
	db DBTX
}

func NewOwnerRepository(db DBTX) *OwnerRepository {
	return &OwnerRepository{db: db}
}

const ownerColumns = `id, corporation_id, corporation_name, credential_ref, is_active,
	is_included_in_service_status,
	structures_last_sync, structures_last_error,
	notifications_last_sync, notifications_last_error,
	forwarding_last_sync, forwarding_last_error,
	assets_last_sync, assets_last_error, created_at`

func (r *OwnerRepository) Create(owner *models.Owner) error {
	owner.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO owners (corporation_id, corporation_name, credential_ref,
			is_active, is_included_in_service_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.Exec(query,
		owner.CorporationID,
		owner.CorporationName,
		owner.CredentialRef,
		owner.IsActive,
		owner.IsIncludedInServiceStatus,
		fmtTime(owner.CreatedAt),
	)
	if err != nil {
		return err
	}
	owner.ID, err = res.LastInsertId()
	return err
}

func (r *OwnerRepository) GetByID(id int64) (*models.Owner, error) {
	row := r.db.QueryRow(`SELECT `+ownerColumns+` FROM owners WHERE id = ?`, id)
	return scanOwner(row)
}

func (r *OwnerRepository) GetByCorporationID(corporationID int64) (*models.Owner, error) {
	row := r.db.QueryRow(`SELECT `+ownerColumns+` FROM owners WHERE corporation_id = ?`, corporationID)
	return scanOwner(row)
}

func (r *OwnerRepository) ListActive() ([]*models.Owner, error) {
	return r.list(`SELECT ` + ownerColumns + ` FROM owners WHERE is_active = 1 ORDER BY id`)
}

func (r *OwnerRepository) ListIncludedInServiceStatus() ([]*models.Owner, error) {
	return r.list(`SELECT ` + ownerColumns + ` FROM owners
		WHERE is_active = 1 AND is_included_in_service_status = 1 ORDER BY id`)
}

func (r *OwnerRepository) list(query string) ([]*models.Owner, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []*models.Owner
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}

// RecordSyncResult updates one category's status pair. A nil syncedAt
// records the error without advancing the freshness timestamp.
func (r *OwnerRepository) RecordSyncResult(ownerID int64, category models.SyncCategory, kind models.ErrorKind, syncedAt *time.Time) error {
	var prefix string
	switch category {
	case models.CategoryStructures:
		prefix = "structures"
	case models.CategoryNotifications:
		prefix = "notifications"
	case models.CategoryForwarding:
		prefix = "forwarding"
	case models.CategoryAssets:
		prefix = "assets"
	default:
		return fmt.Errorf("unknown sync category %q", category)
	}

	if syncedAt == nil {
		query := fmt.Sprintf(`UPDATE owners SET %s_last_error = ? WHERE id = ?`, prefix)
		_, err := r.db.Exec(query, kind, ownerID)
		return err
	}
	query := fmt.Sprintf(`UPDATE owners SET %s_last_error = ?, %s_last_sync = ? WHERE id = ?`, prefix, prefix)
	_, err := r.db.Exec(query, kind, fmtTime(*syncedAt), ownerID)
	return err
}

func (r *OwnerRepository) AddWebhook(ownerID int64, webhookID string) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO owner_webhooks (owner_id, webhook_id) VALUES (?, ?)`,
		ownerID, webhookID,
	)
	return err
}

func (r *OwnerRepository) RemoveWebhooks(ownerID int64) error {
	_, err := r.db.Exec(`DELETE FROM owner_webhooks WHERE owner_id = ?`, ownerID)
	return err
}

func scanOwner(s interface {
	Scan(dest ...any) error
}) (*models.Owner, error) {
	var o models.Owner
	var structSync, notifSync, fwdSync, assetSync sql.NullString
	var createdAt string

	err := s.Scan(
		&o.ID,
		&o.CorporationID,
		&o.CorporationName,
		&o.CredentialRef,
		&o.IsActive,
		&o.IsIncludedInServiceStatus,
		&structSync,
		&o.StructuresLastError,
		&notifSync,
		&o.NotificationsLastError,
		&fwdSync,
		&o.ForwardingLastError,
		&assetSync,
		&o.AssetsLastError,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	o.StructuresLastSync = parseNullTime(structSync)
	o.NotificationsLastSync = parseNullTime(notifSync)
	o.ForwardingLastSync = parseNullTime(fwdSync)
	o.AssetsLastSync = parseNullTime(assetSync)
	o.CreatedAt = parseTime(createdAt)

	return &o, nil
}
