package models

import "time"

// Notification is one notification event fetched from ESI, unique per
// (notification_id, owner_id). Once stored, IsSent and Created never
// regress on re-ingestion.
type Notification struct {
	NotificationID int64
	OwnerID        int64
	SenderID       int64
	Timestamp      time.Time
	Type           string
	// Text is the raw YAML payload as delivered by ESI.
	Text   string
	IsRead *bool

	IsSent       bool
	IsTimerAdded bool

	Created     time.Time
	LastUpdated time.Time
}

// NotificationDelivery is a receipt for one successful send of a
// notification to one webhook. Receipts make dispatch retries
// per-webhook instead of all-or-nothing.
type NotificationDelivery struct {
	NotificationID int64
	OwnerID        int64
	WebhookID      string
	SentAt         time.Time
}

// OwnerAsset is a corporation asset row, used to resolve display names
// for customs offices. The set is fully replaced on every asset pass.
type OwnerAsset struct {
	ItemID        int64
	OwnerID       int64
	TypeID        int64
	LocationID    int64
	Name          string
	Quantity      int64
	LastUpdatedAt time.Time
}
