package models

import "time"

// ErrorKind classifies the last failure recorded for a sync category.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorNoCredential
	ErrorAuthExpired
	ErrorAuthInvalid
	ErrorInsufficientScope
	ErrorUpstreamUnavailable
	ErrorUnknown
)

var errorMessages = map[ErrorKind]string{
	ErrorNone:                "No error",
	ErrorNoCredential:        "No credential set for fetching data from ESI",
	ErrorAuthExpired:         "Access token has expired",
	ErrorAuthInvalid:         "Access token is invalid",
	ErrorInsufficientScope:   "Credential is missing required scopes",
	ErrorUpstreamUnavailable: "ESI is currently unavailable",
	ErrorUnknown:             "Unknown error",
}

// FriendlyMessage returns an operator-facing description of the error kind.
func (k ErrorKind) FriendlyMessage() string {
	if msg, ok := errorMessages[k]; ok {
		return msg
	}
	return "Undefined error"
}

// SyncCategory names one of the four independently tracked sync lanes.
type SyncCategory string

const (
	CategoryStructures    SyncCategory = "structures"
	CategoryNotifications SyncCategory = "notifications"
	CategoryForwarding    SyncCategory = "forwarding"
	CategoryAssets        SyncCategory = "assets"
)

// Owner is one corporation whose structures are tracked. Sync components
// are the only writers of the per-category status fields.
type Owner struct {
	ID              int64
	CorporationID   int64
	CorporationName string
	// CredentialRef selects the ESI credential used for this owner.
	// Empty means no credential is configured.
	CredentialRef string
	IsActive      bool
	// IsIncludedInServiceStatus controls whether this owner counts
	// toward the service-wide health signal.
	IsIncludedInServiceStatus bool

	StructuresLastSync     *time.Time
	StructuresLastError    ErrorKind
	NotificationsLastSync  *time.Time
	NotificationsLastError ErrorKind
	ForwardingLastSync     *time.Time
	ForwardingLastError    ErrorKind
	AssetsLastSync         *time.Time
	AssetsLastError        ErrorKind

	CreatedAt time.Time
}
