package repositories

import (
	"time"

	"structwatch/internal/platform/models"
)

type AssetRepository struct {
	db DBTX
}

func NewAssetRepository(db DBTX) *AssetRepository {
	return &AssetRepository{db: db}
}

// ReplaceForOwner swaps the owner's full asset set for the fresh fetch.
func (r *AssetRepository) ReplaceForOwner(ownerID int64, assets []*models.OwnerAsset) error {
	if _, err := r.db.Exec(`DELETE FROM owner_assets WHERE owner_id = ?`, ownerID); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, a := range assets {
		a.OwnerID = ownerID
		a.LastUpdatedAt = now
		if _, err := r.db.Exec(`
			INSERT INTO owner_assets (item_id, owner_id, type_id, location_id, name, quantity, last_updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ItemID, a.OwnerID, a.TypeID, a.LocationID, a.Name, a.Quantity, fmtTime(a.LastUpdatedAt),
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *AssetRepository) ListByOwner(ownerID int64) ([]*models.OwnerAsset, error) {
	rows, err := r.db.Query(`
		SELECT item_id, owner_id, type_id, location_id, name, quantity, last_updated_at
		FROM owner_assets WHERE owner_id = ? ORDER BY item_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.OwnerAsset
	for rows.Next() {
		var a models.OwnerAsset
		var updated string
		if err := rows.Scan(&a.ItemID, &a.OwnerID, &a.TypeID, &a.LocationID, &a.Name, &a.Quantity, &updated); err != nil {
			return nil, err
		}
		a.LastUpdatedAt = parseTime(updated)
		assets = append(assets, &a)
	}
	return assets, rows.Err()
}
