package sync

import (
	"regexp"
	"time"

	"structwatch/internal/engine/esi"
	"structwatch/internal/platform/models"
)

// Explicit per-entity mappings from ESI payloads to the local schema.
// Field routing is written out here instead of derived at runtime.

const noDataName = "(no data)"

func normalizeUpwell(raw esi.RawStructure, detail *esi.RawUniverseStructure, ownerID int64) *models.Structure {
	s := &models.Structure{
		ID:            raw.StructureID,
		OwnerID:       ownerID,
		Category:      models.StructureCategoryUpwell,
		TypeID:        raw.TypeID,
		SolarSystemID: raw.SystemID,
		Name:          noDataName,
		State:         normalizeState(raw.State),
		StateStart:    raw.StateTimerStart,
		StateEnd:      raw.StateTimerEnd,
		FuelExpiresAt: raw.FuelExpires,
		UnanchorsAt:   raw.UnanchorsAt,
		ReinforceHour: raw.ReinforceHour,
	}
	if detail != nil {
		s.Name = detail.Name
		if detail.SolarSystemID != 0 {
			s.SolarSystemID = detail.SolarSystemID
		}
		if detail.TypeID != 0 {
			s.TypeID = detail.TypeID
		}
		if detail.Position != nil {
			x, y, z := detail.Position.X, detail.Position.Y, detail.Position.Z
			s.PositionX, s.PositionY, s.PositionZ = &x, &y, &z
		}
	}
	return s
}

// customs office structures use the generic POCO type
const pocoTypeID = 2233

func normalizePoco(raw esi.RawCustomsOffice, ownerID int64, name string, planetID *int64) (*models.Structure, *models.PocoDetails) {
	hour := raw.ReinforceExitStart
	s := &models.Structure{
		ID:            raw.OfficeID,
		OwnerID:       ownerID,
		Category:      models.StructureCategoryPoco,
		TypeID:        pocoTypeID,
		SolarSystemID: raw.SystemID,
		PlanetID:      planetID,
		Name:          name,
		State:         models.StateUnknown,
		ReinforceHour: &hour,
	}
	details := &models.PocoDetails{
		StructureID:              raw.OfficeID,
		AllianceTaxRate:          raw.AllianceTaxRate,
		CorporationTaxRate:       raw.CorporationTaxRate,
		ExcellentStandingTaxRate: raw.ExcellentStandingTaxRate,
		GoodStandingTaxRate:      raw.GoodStandingTaxRate,
		NeutralStandingTaxRate:   raw.NeutralStandingTaxRate,
		BadStandingTaxRate:       raw.BadStandingTaxRate,
		TerribleStandingTaxRate:  raw.TerribleStandingTaxRate,
		AllowAllianceAccess:      raw.AllowAllianceAccess,
		AllowAccessWithStandings: raw.AllowAccessWithStandings,
		StandingLevel:            normalizeStandingLevel(raw.StandingLevel),
		ReinforceExitStart:       raw.ReinforceExitStart,
		ReinforceExitEnd:         raw.ReinforceExitEnd,
	}
	return s, details
}

func normalizeStandingLevel(raw string) models.StandingLevel {
	switch raw {
	case "terrible":
		return models.StandingTerrible
	case "bad":
		return models.StandingBad
	case "neutral":
		return models.StandingNeutral
	case "good":
		return models.StandingGood
	case "excellent":
		return models.StandingExcellent
	default:
		return models.StandingNone
	}
}

func normalizeStarbase(raw esi.RawStarbase, detail *esi.RawStarbaseDetail, ownerID int64, name string, now time.Time) *models.Structure {
	s := &models.Structure{
		ID:            raw.StarbaseID,
		OwnerID:       ownerID,
		Category:      models.StructureCategoryStarbase,
		TypeID:        raw.TypeID,
		SolarSystemID: raw.SystemID,
		MoonID:        raw.MoonID,
		Name:          name,
		State:         normalizeStarbaseState(raw.State),
		UnanchorsAt:   raw.UnanchorAt,
	}
	if raw.ReinforcedUntil != nil {
		s.StateEnd = raw.ReinforcedUntil
	}
	if s.State == models.StatePosOnline && detail != nil {
		if expires := starbaseFuelExpiry(raw.TypeID, detail, now); expires != nil {
			s.FuelExpiresAt = expires
		}
	}
	return s
}

func normalizeStarbaseState(raw string) models.StructureState {
	switch raw {
	case "online":
		return models.StatePosOnline
	case "offline":
		return models.StatePosOffline
	case "onlining":
		return models.StatePosOnlining
	case "reinforced":
		return models.StatePosReinforced
	case "unanchoring":
		return models.StatePosUnanchoring
	default:
		return models.StateUnknown
	}
}

func normalizeState(raw string) models.StructureState {
	if raw == "" {
		return models.StateUnknown
	}
	return models.StructureState(raw)
}

// fuel block type IDs as reported in starbase details
var fuelBlockTypeIDs = map[int64]bool{
	4051: true, 4246: true, 4247: true, 4312: true,
}

// fuel blocks burned per hour by tower size; large towers are the
// default rate
var starbaseFuelRates = map[int64]int64{
	20061: 20, // medium
	20062: 10, // small
}

func starbaseFuelConsumption(typeID int64) int64 {
	if rate, ok := starbaseFuelRates[typeID]; ok {
		return rate
	}
	return 40
}

func starbaseFuelExpiry(typeID int64, detail *esi.RawStarbaseDetail, now time.Time) *time.Time {
	var quantity int64
	for _, fuel := range detail.Fuels {
		if fuelBlockTypeIDs[fuel.TypeID] {
			quantity += fuel.Quantity
		}
	}
	if quantity == 0 {
		return nil
	}
	hours := quantity / starbaseFuelConsumption(typeID)
	expires := now.Add(time.Duration(hours) * time.Hour)
	return &expires
}

var pocoAssetNamePattern = regexp.MustCompile(`^Customs Office \((.+)\)$`)

// extractPlanetName pulls the planet name out of a customs office asset
// name like "Customs Office (Amamake V)". Empty when the name does not
// match.
func extractPlanetName(assetName string) string {
	m := pocoAssetNamePattern.FindStringSubmatch(assetName)
	if m == nil {
		return ""
	}
	return m[1]
}
