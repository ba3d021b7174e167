package status

import (
	"time"

	"structwatch/internal/platform/config"
	"structwatch/internal/platform/models"
)

// CategoryStatus is the health verdict for one sync lane of one owner.
type CategoryStatus struct {
	Category models.SyncCategory `json:"category"`
	OK       bool                `json:"ok"`
	Message  string              `json:"message,omitempty"`
	LastSync *time.Time          `json:"last_sync,omitempty"`
}

// OwnerStatus aggregates the four lane verdicts for one owner.
type OwnerStatus struct {
	OwnerID         int64            `json:"owner_id"`
	CorporationName string           `json:"corporation_name"`
	OK              bool             `json:"ok"`
	Categories      []CategoryStatus `json:"categories"`
}

// IsCategorySyncOK reports whether a lane is healthy: no recorded error
// and a last sync within the grace window. A lane that has never synced
// is unhealthy.
func IsCategorySyncOK(lastError models.ErrorKind, lastSync *time.Time, grace time.Duration, now time.Time) bool {
	if lastError != models.ErrorNone {
		return false
	}
	if lastSync == nil {
		return false
	}
	return now.Sub(*lastSync) <= grace
}

func IsStructureSyncOK(owner *models.Owner, cfg config.SyncConfig, now time.Time) bool {
	return IsCategorySyncOK(owner.StructuresLastError, owner.StructuresLastSync, cfg.StructuresGrace, now)
}

func IsNotificationSyncOK(owner *models.Owner, cfg config.SyncConfig, now time.Time) bool {
	return IsCategorySyncOK(owner.NotificationsLastError, owner.NotificationsLastSync, cfg.NotificationsGrace, now)
}

func IsForwardingSyncOK(owner *models.Owner, cfg config.SyncConfig, now time.Time) bool {
	return IsCategorySyncOK(owner.ForwardingLastError, owner.ForwardingLastSync, cfg.ForwardingGrace, now)
}

func IsAssetSyncOK(owner *models.Owner, cfg config.SyncConfig, now time.Time) bool {
	return IsCategorySyncOK(owner.AssetsLastError, owner.AssetsLastSync, cfg.AssetsGrace, now)
}

// AreAllSyncsOK reports whether every lane of the owner is healthy.
func AreAllSyncsOK(owner *models.Owner, cfg config.SyncConfig, now time.Time) bool {
	return IsStructureSyncOK(owner, cfg, now) &&
		IsNotificationSyncOK(owner, cfg, now) &&
		IsForwardingSyncOK(owner, cfg, now) &&
		IsAssetSyncOK(owner, cfg, now)
}

// ForOwner builds the per-lane status report for one owner.
func ForOwner(owner *models.Owner, cfg config.SyncConfig, now time.Time) OwnerStatus {
	lanes := []struct {
		category  models.SyncCategory
		lastError models.ErrorKind
		lastSync  *time.Time
		grace     time.Duration
	}{
		{models.CategoryStructures, owner.StructuresLastError, owner.StructuresLastSync, cfg.StructuresGrace},
		{models.CategoryNotifications, owner.NotificationsLastError, owner.NotificationsLastSync, cfg.NotificationsGrace},
		{models.CategoryForwarding, owner.ForwardingLastError, owner.ForwardingLastSync, cfg.ForwardingGrace},
		{models.CategoryAssets, owner.AssetsLastError, owner.AssetsLastSync, cfg.AssetsGrace},
	}

	result := OwnerStatus{
		OwnerID:         owner.ID,
		CorporationName: owner.CorporationName,
		OK:              true,
	}
	for _, lane := range lanes {
		ok := IsCategorySyncOK(lane.lastError, lane.lastSync, lane.grace, now)
		cs := CategoryStatus{
			Category: lane.category,
			OK:       ok,
			LastSync: lane.lastSync,
		}
		if !ok {
			result.OK = false
			if lane.lastError != models.ErrorNone {
				cs.Message = lane.lastError.FriendlyMessage()
			} else if lane.lastSync == nil {
				cs.Message = "Never synced"
			} else {
				cs.Message = "Sync is overdue"
			}
		}
		result.Categories = append(result.Categories, cs)
	}
	return result
}

// Aggregate builds the service-wide verdict over the owners that opt
// into service status. No participating owners means healthy.
func Aggregate(owners []*models.Owner, cfg config.SyncConfig, now time.Time) (bool, []OwnerStatus) {
	ok := true
	var reports []OwnerStatus
	for _, owner := range owners {
		report := ForOwner(owner, cfg, now)
		if !report.OK {
			ok = false
		}
		reports = append(reports, report)
	}
	return ok, reports
}
