package models

import (
	"time"

	"structwatch/internal/pkg/localized"
)

// StructureState values are passed through from ESI unchanged; the only
// local rule is defaulting to unknown when ESI provides none.
type StructureState string

const (
	StateNA                  StructureState = ""
	StateAnchoring           StructureState = "anchoring"
	StateAnchorVulnerable    StructureState = "anchor_vulnerable"
	StateArmorReinforce      StructureState = "armor_reinforce"
	StateArmorVulnerable     StructureState = "armor_vulnerable"
	StateDeployVulnerable    StructureState = "deploy_vulnerable"
	StateFittingInvulnerable StructureState = "fitting_invulnerable"
	StateHullReinforce       StructureState = "hull_reinforce"
	StateHullVulnerable      StructureState = "hull_vulnerable"
	StateOnliningVulnerable  StructureState = "onlining_vulnerable"
	StateShieldVulnerable    StructureState = "shield_vulnerable"
	StateUnanchored          StructureState = "unanchored"
	StateUnknown             StructureState = "unknown"

	// starbase states
	StatePosOffline     StructureState = "offline"
	StatePosOnline      StructureState = "online"
	StatePosOnlining    StructureState = "onlining"
	StatePosReinforced  StructureState = "reinforced"
	StatePosUnanchoring StructureState = "unanchoring"
)

// StructureCategory identifies which sync category a structure row was
// written by. Pruning is scoped per category so a failed fetch in one
// category never deletes rows of another.
type StructureCategory string

const (
	StructureCategoryUpwell   StructureCategory = "upwell"
	StructureCategoryPoco     StructureCategory = "poco"
	StructureCategoryStarbase StructureCategory = "starbase"
)

// Structure is a player-owned object in the game world, keyed by its
// globally unique ESI structure ID.
type Structure struct {
	ID            int64
	OwnerID       int64
	Category      StructureCategory
	TypeID        int64
	SolarSystemID int64
	PlanetID      *int64
	MoonID        *int64

	Name       string
	PositionX  *float64
	PositionY  *float64
	PositionZ  *float64
	State      StructureState
	StateStart *time.Time
	StateEnd   *time.Time

	FuelExpiresAt *time.Time
	UnanchorsAt   *time.Time
	ReinforceHour *int

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

type ServiceState string

const (
	ServiceOnline  ServiceState = "online"
	ServiceOffline ServiceState = "offline"
)

// StructureService is a child record of a structure, unique per
// (structure, name). The full set is replaced on every sync pass.
type StructureService struct {
	StructureID int64
	Name        localized.String
	State       ServiceState
}

// StandingLevel mirrors the POCO access standing tiers.
type StandingLevel int

const (
	StandingNone StandingLevel = iota
	StandingTerrible
	StandingBad
	StandingNeutral
	StandingGood
	StandingExcellent
)

// PocoDetails extends a customs-office structure 1:1 and shares its
// lifecycle.
type PocoDetails struct {
	StructureID              int64
	AllianceTaxRate          *float64
	CorporationTaxRate       *float64
	ExcellentStandingTaxRate *float64
	GoodStandingTaxRate      *float64
	NeutralStandingTaxRate   *float64
	BadStandingTaxRate       *float64
	TerribleStandingTaxRate  *float64
	AllowAllianceAccess      bool
	AllowAccessWithStandings bool
	StandingLevel            StandingLevel
	ReinforceExitStart       int
	ReinforceExitEnd         int
}

// StructureTag is user-curated metadata. Sync only ever touches tags via
// the apply-default-tags-on-create policy.
type StructureTag struct {
	ID          string
	Name        string
	Description string
	Style       string
	IsDefault   bool
}

// StructureTimer is a persisted calendar entry derived from a
// reinforcement or extraction notification, at most one per
// notification.
type StructureTimer struct {
	ID             int64
	OwnerID        int64
	StructureID    int64
	NotificationID int64
	Kind           string
	At             time.Time
	CreatedAt      time.Time
}
