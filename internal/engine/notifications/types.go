package notifications

// Notification type tags as delivered by ESI. The set is open: unknown
// tags pass through unchanged and simply never match a webhook
// subscription or a side-effect rule.
const (
	TypeStructureAnchoring         = "StructureAnchoring"
	TypeStructureDestroyed         = "StructureDestroyed"
	TypeStructureFuelAlert         = "StructureFuelAlert"
	TypeStructureLostArmor         = "StructureLostArmor"
	TypeStructureLostShields       = "StructureLostShields"
	TypeStructureOnline            = "StructureOnline"
	TypeStructureServicesOffline   = "StructureServicesOffline"
	TypeStructureUnanchoring       = "StructureUnanchoring"
	TypeStructureUnderAttack       = "StructureUnderAttack"
	TypeStructureWentHighPower     = "StructureWentHighPower"
	TypeStructureWentLowPower      = "StructureWentLowPower"
	TypeOwnershipTransferred       = "OwnershipTransferred"
	TypeOrbitalAttacked            = "OrbitalAttacked"
	TypeOrbitalReinforced          = "OrbitalReinforced"
	TypeTowerAlertMsg              = "TowerAlertMsg"
	TypeTowerResourceAlertMsg      = "TowerResourceAlertMsg"
	TypeMoonminingAutomaticFracture = "MoonminingAutomaticFracture"
	TypeMoonminingExtractionCancelled = "MoonminingExtractionCancelled"
	TypeMoonminingExtractionFinished  = "MoonminingExtractionFinished"
	TypeMoonminingExtractionStarted   = "MoonminingExtractionStarted"
	TypeMoonminingLaserFired          = "MoonminingLaserFired"
	TypeSovStructureReinforced     = "SovStructureReinforced"
	TypeSovStructureDestroyed      = "SovStructureDestroyed"
	TypeSovCommandNodeEventStarted = "SovCommandNodeEventStarted"
	TypeSovAllClaimAcquiredMsg     = "SovAllClaimAquiredMsg"
	TypeSovAllClaimLostMsg         = "SovAllClaimLostMsg"
	TypeEntosisCaptureStarted      = "EntosisCaptureStarted"
	TypeWarDeclared                = "WarDeclared"
	TypeWarAdopted                 = "AllyJoinedWarAggressorMsg"
	TypeWarInherited               = "WarInherited"
	TypeWarRetractedByConcord      = "WarRetractedByConcord"
	TypeCorpWarSurrenderMsg        = "CorpWarSurrenderMsg"
	TypeCharLeftCorpMsg            = "CharLeftCorpMsg"
	TypeCorpAllBillMsg             = "CorpAllBillMsg"
	TypeBillOutOfMoneyMsg          = "BillOutOfMoneyMsg"
)

// All lists every known type, the default subscription set for webhooks
// that should receive everything.
var All = []string{
	TypeStructureAnchoring,
	TypeStructureDestroyed,
	TypeStructureFuelAlert,
	TypeStructureLostArmor,
	TypeStructureLostShields,
	TypeStructureOnline,
	TypeStructureServicesOffline,
	TypeStructureUnanchoring,
	TypeStructureUnderAttack,
	TypeStructureWentHighPower,
	TypeStructureWentLowPower,
	TypeOwnershipTransferred,
	TypeOrbitalAttacked,
	TypeOrbitalReinforced,
	TypeTowerAlertMsg,
	TypeTowerResourceAlertMsg,
	TypeMoonminingAutomaticFracture,
	TypeMoonminingExtractionCancelled,
	TypeMoonminingExtractionFinished,
	TypeMoonminingExtractionStarted,
	TypeMoonminingLaserFired,
	TypeSovStructureReinforced,
	TypeSovStructureDestroyed,
	TypeSovCommandNodeEventStarted,
	TypeSovAllClaimAcquiredMsg,
	TypeSovAllClaimLostMsg,
	TypeEntosisCaptureStarted,
	TypeWarDeclared,
	TypeWarAdopted,
	TypeWarInherited,
	TypeWarRetractedByConcord,
	TypeCorpWarSurrenderMsg,
	TypeCharLeftCorpMsg,
	TypeCorpAllBillMsg,
	TypeBillOutOfMoneyMsg,
}

// moonMiningTypes carry a moonID in their payload and trigger the moon
// backfill side effect on the referenced structure.
var moonMiningTypes = map[string]bool{
	TypeMoonminingAutomaticFracture:   true,
	TypeMoonminingExtractionCancelled: true,
	TypeMoonminingExtractionFinished:  true,
	TypeMoonminingExtractionStarted:   true,
	TypeMoonminingLaserFired:          true,
}

// timerTypes announce a scheduled future event a calendar timer can be
// derived from.
var timerTypes = map[string]bool{
	TypeStructureLostArmor:          true,
	TypeStructureLostShields:        true,
	TypeOrbitalReinforced:           true,
	TypeMoonminingExtractionStarted: true,
	TypeSovStructureReinforced:      true,
}
