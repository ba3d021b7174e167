package esi

import (
	"context"
	"time"
)

// Raw record types mirror the ESI response payloads. They are normalized
// into the local schema by the sync engine, never stored directly.

type RawService struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type RawStructure struct {
	StructureID     int64        `json:"structure_id"`
	TypeID          int64        `json:"type_id"`
	SystemID        int64        `json:"system_id"`
	ProfileID       int64        `json:"profile_id"`
	State           string       `json:"state"`
	StateTimerStart *time.Time   `json:"state_timer_start,omitempty"`
	StateTimerEnd   *time.Time   `json:"state_timer_end,omitempty"`
	FuelExpires     *time.Time   `json:"fuel_expires,omitempty"`
	UnanchorsAt     *time.Time   `json:"unanchors_at,omitempty"`
	ReinforceHour   *int         `json:"reinforce_hour,omitempty"`
	Services        []RawService `json:"services,omitempty"`
}

type RawPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type RawUniverseStructure struct {
	Name          string       `json:"name"`
	SolarSystemID int64        `json:"solar_system_id"`
	TypeID        int64        `json:"type_id"`
	Position      *RawPosition `json:"position,omitempty"`
}

type RawCustomsOffice struct {
	OfficeID                 int64    `json:"office_id"`
	SystemID                 int64    `json:"system_id"`
	ReinforceExitStart       int      `json:"reinforce_exit_start"`
	ReinforceExitEnd         int      `json:"reinforce_exit_end"`
	AllianceTaxRate          *float64 `json:"alliance_tax_rate,omitempty"`
	CorporationTaxRate       *float64 `json:"corporation_tax_rate,omitempty"`
	ExcellentStandingTaxRate *float64 `json:"excellent_standing_tax_rate,omitempty"`
	GoodStandingTaxRate      *float64 `json:"good_standing_tax_rate,omitempty"`
	NeutralStandingTaxRate   *float64 `json:"neutral_standing_tax_rate,omitempty"`
	BadStandingTaxRate       *float64 `json:"bad_standing_tax_rate,omitempty"`
	TerribleStandingTaxRate  *float64 `json:"terrible_standing_tax_rate,omitempty"`
	AllowAllianceAccess      bool     `json:"allow_alliance_access"`
	AllowAccessWithStandings bool     `json:"allow_access_with_standings"`
	StandingLevel            string   `json:"standing_level,omitempty"`
}

type RawStarbase struct {
	StarbaseID      int64      `json:"starbase_id"`
	TypeID          int64      `json:"type_id"`
	SystemID        int64      `json:"system_id"`
	MoonID          *int64     `json:"moon_id,omitempty"`
	State           string     `json:"state,omitempty"`
	ReinforcedUntil *time.Time `json:"reinforced_until,omitempty"`
	UnanchorAt      *time.Time `json:"unanchor_at,omitempty"`
	OnlinedSince    *time.Time `json:"onlined_since,omitempty"`
}

type RawStarbaseFuel struct {
	TypeID   int64 `json:"type_id"`
	Quantity int64 `json:"quantity"`
}

type RawStarbaseDetail struct {
	Fuels []RawStarbaseFuel `json:"fuels,omitempty"`
}

type RawAsset struct {
	ItemID     int64  `json:"item_id"`
	TypeID     int64  `json:"type_id"`
	LocationID int64  `json:"location_id"`
	Quantity   int64  `json:"quantity"`
	Flag       string `json:"location_flag,omitempty"`
}

type RawAssetName struct {
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
}

type RawNotification struct {
	NotificationID int64     `json:"notification_id"`
	SenderID       int64     `json:"sender_id"`
	SenderType     string    `json:"sender_type,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Type           string    `json:"type"`
	Text           string    `json:"text,omitempty"`
	IsRead         *bool     `json:"is_read,omitempty"`
}

// Gateway is the typed fetch surface to ESI. Implementations never
// mutate local state; all failures are *FetchError values.
type Gateway interface {
	// CorporationStructures fetches upwell structures, localized for
	// the given language.
	CorporationStructures(ctx context.Context, corporationID int64, lang string) ([]RawStructure, error)
	// UniverseStructure fetches name and position details for one
	// upwell structure.
	UniverseStructure(ctx context.Context, structureID int64) (*RawUniverseStructure, error)
	CustomsOffices(ctx context.Context, corporationID int64) ([]RawCustomsOffice, error)
	Starbases(ctx context.Context, corporationID int64) ([]RawStarbase, error)
	StarbaseDetail(ctx context.Context, corporationID, starbaseID, systemID int64) (*RawStarbaseDetail, error)
	Assets(ctx context.Context, corporationID int64) ([]RawAsset, error)
	AssetNames(ctx context.Context, corporationID int64, itemIDs []int64) ([]RawAssetName, error)
	Notifications(ctx context.Context, corporationID int64) ([]RawNotification, error)
}
