package sync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"structwatch/internal/engine/esi"
	"structwatch/internal/pkg/localized"
	"structwatch/internal/platform/config"
	"structwatch/internal/platform/models"
	"structwatch/internal/platform/repositories"
)

// Planet is a reference-data record resolved by the external lookup.
type Planet struct {
	ID       int64
	Name     string
	TypeName localized.String
}

// UniverseLookup resolves reference data. It is an external collaborator;
// implementations return nil (no error) for unknown names.
type UniverseLookup interface {
	PlanetByName(ctx context.Context, name string) (*Planet, error)
}

// Reconciler performs the per-owner structure and asset category syncs.
type Reconciler struct {
	db       *sql.DB
	universe UniverseLookup
	cfg      config.SyncConfig
}

func NewReconciler(db *sql.DB, universe UniverseLookup, cfg config.SyncConfig) *Reconciler {
	return &Reconciler{db: db, universe: universe, cfg: cfg}
}

// UpdateStructures runs the upwell, customs-office and starbase
// category syncs for one owner. Each category fetches, normalizes,
// upserts and prunes inside its own transaction; a category that fails
// to fetch keeps its stored rows untouched while the others prune
// normally. Returns false when any attempted category failed.
func (r *Reconciler) UpdateStructures(ctx context.Context, gw esi.Gateway, owner *models.Owner) bool {
	owners := repositories.NewOwnerRepository(r.db)

	if owner.CredentialRef == "" {
		r.recordStructures(owners, owner, models.ErrorNoCredential, false)
		return false
	}

	firstErr := models.ErrorNone
	committed := false

	type categorySync struct {
		name    string
		enabled bool
		run     func(context.Context, esi.Gateway, *models.Owner) error
	}
	categories := []categorySync{
		{"upwell", true, r.syncUpwell},
		{"poco", r.cfg.CustomsOfficesEnabled, r.syncCustomsOffices},
		{"starbase", r.cfg.StarbasesEnabled, r.syncStarbases},
	}

	for _, cat := range categories {
		if !cat.enabled {
			continue
		}
		if err := cat.run(ctx, gw, owner); err != nil {
			log.Error().Err(err).
				Int64("owner_id", owner.ID).
				Str("category", cat.name).
				Msg("structure category sync failed")
			if firstErr == models.ErrorNone {
				firstErr = esi.KindOf(err)
			}
			continue
		}
		committed = true
	}

	r.recordStructures(owners, owner, firstErr, committed)
	return firstErr == models.ErrorNone
}

func (r *Reconciler) recordStructures(owners *repositories.OwnerRepository, owner *models.Owner, kind models.ErrorKind, committed bool) {
	var syncedAt *time.Time
	if committed {
		now := time.Now().UTC()
		syncedAt = &now
	}
	if err := owners.RecordSyncResult(owner.ID, models.CategoryStructures, kind, syncedAt); err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to record structures sync result")
	}
}

func (r *Reconciler) syncUpwell(ctx context.Context, gw esi.Gateway, owner *models.Owner) error {
	structuresByLang := make(map[string][]esi.RawStructure)
	langs := append([]string{}, r.cfg.Languages...)
	if len(langs) == 0 {
		langs = []string{r.cfg.DefaultLanguage}
	}
	for _, lang := range langs {
		raws, err := gw.CorporationStructures(ctx, owner.CorporationID, lang)
		if err != nil {
			if lang == r.cfg.DefaultLanguage {
				return err
			}
			// a missing translation fetch only loses variants
			log.Warn().Err(err).
				Int64("owner_id", owner.ID).
				Str("lang", lang).
				Msg("skipping structure localization fetch")
			continue
		}
		structuresByLang[lang] = raws
	}
	if _, ok := structuresByLang[r.cfg.DefaultLanguage]; !ok {
		return fmt.Errorf("no structures fetched for default language %q", r.cfg.DefaultLanguage)
	}

	collected := collectServiceLocalizations(structuresByLang, r.cfg.DefaultLanguage)
	servicesByStructure := condenseServiceLocalizations(structuresByLang, r.cfg.DefaultLanguage, collected)

	type upwellRecord struct {
		structure *models.Structure
		services  []models.StructureService
	}
	records := make([]upwellRecord, 0, len(structuresByLang[r.cfg.DefaultLanguage]))
	for _, raw := range structuresByLang[r.cfg.DefaultLanguage] {
		detail, err := gw.UniverseStructure(ctx, raw.StructureID)
		if err != nil {
			// the structure still syncs, just without name or position
			log.Warn().Err(err).
				Int64("structure_id", raw.StructureID).
				Msg("structure detail fetch failed")
			detail = nil
		}
		records = append(records, upwellRecord{
			structure: normalizeUpwell(raw, detail, owner.ID),
			services:  servicesByStructure[raw.StructureID],
		})
	}

	return r.inTx(func(tx *sql.Tx) error {
		repo := repositories.NewStructureRepository(tx)
		seen := make(map[int64]bool, len(records))
		for _, rec := range records {
			if err := r.storeStructure(tx, repo, rec.structure); err != nil {
				return err
			}
			if err := repo.ReplaceServices(rec.structure.ID, rec.services); err != nil {
				return err
			}
			seen[rec.structure.ID] = true
		}
		return pruneCategory(repo, owner.ID, models.StructureCategoryUpwell, seen)
	})
}

func (r *Reconciler) syncCustomsOffices(ctx context.Context, gw esi.Gateway, owner *models.Owner) error {
	raws, err := gw.CustomsOffices(ctx, owner.CorporationID)
	if err != nil {
		return err
	}

	assetNames, err := r.assetNamesByItemID(owner.ID)
	if err != nil {
		return err
	}

	type pocoRecord struct {
		structure *models.Structure
		details   *models.PocoDetails
	}
	records := make([]pocoRecord, 0, len(raws))
	for _, raw := range raws {
		name := ""
		var planetID *int64
		if assetName, ok := assetNames[raw.OfficeID]; ok {
			if planetName := extractPlanetName(assetName); planetName != "" {
				planet, err := r.universe.PlanetByName(ctx, planetName)
				if err != nil {
					return err
				}
				if planet != nil {
					planetID = &planet.ID
					name = planet.TypeName.Resolve(r.cfg.DefaultLanguage)
				}
			}
		}
		structure, details := normalizePoco(raw, owner.ID, name, planetID)
		records = append(records, pocoRecord{structure: structure, details: details})
	}

	return r.inTx(func(tx *sql.Tx) error {
		repo := repositories.NewStructureRepository(tx)
		seen := make(map[int64]bool, len(records))
		for _, rec := range records {
			if err := r.storeStructure(tx, repo, rec.structure); err != nil {
				return err
			}
			if err := repo.UpsertPocoDetails(rec.details); err != nil {
				return err
			}
			seen[rec.structure.ID] = true
		}
		return pruneCategory(repo, owner.ID, models.StructureCategoryPoco, seen)
	})
}

func (r *Reconciler) syncStarbases(ctx context.Context, gw esi.Gateway, owner *models.Owner) error {
	raws, err := gw.Starbases(ctx, owner.CorporationID)
	if err != nil {
		return err
	}

	assetNames, err := r.assetNamesByItemID(owner.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	structures := make([]*models.Structure, 0, len(raws))
	for _, raw := range raws {
		detail, err := gw.StarbaseDetail(ctx, owner.CorporationID, raw.StarbaseID, raw.SystemID)
		if err != nil {
			log.Warn().Err(err).
				Int64("starbase_id", raw.StarbaseID).
				Msg("starbase detail fetch failed")
			detail = nil
		}
		structures = append(structures, normalizeStarbase(raw, detail, owner.ID, assetNames[raw.StarbaseID], now))
	}

	return r.inTx(func(tx *sql.Tx) error {
		repo := repositories.NewStructureRepository(tx)
		seen := make(map[int64]bool, len(structures))
		for _, s := range structures {
			if err := r.storeStructure(tx, repo, s); err != nil {
				return err
			}
			seen[s.ID] = true
		}
		return pruneCategory(repo, owner.ID, models.StructureCategoryStarbase, seen)
	})
}

// UpdateAssets fully replaces the owner's asset rows from a fresh
// fetch, resolving display names in the same pass.
func (r *Reconciler) UpdateAssets(ctx context.Context, gw esi.Gateway, owner *models.Owner) bool {
	owners := repositories.NewOwnerRepository(r.db)

	record := func(kind models.ErrorKind, ok bool) {
		var syncedAt *time.Time
		if ok {
			now := time.Now().UTC()
			syncedAt = &now
		}
		if err := owners.RecordSyncResult(owner.ID, models.CategoryAssets, kind, syncedAt); err != nil {
			log.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to record assets sync result")
		}
	}

	if owner.CredentialRef == "" {
		record(models.ErrorNoCredential, false)
		return false
	}

	raws, err := gw.Assets(ctx, owner.CorporationID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("asset fetch failed")
		record(esi.KindOf(err), false)
		return false
	}

	itemIDs := make([]int64, len(raws))
	for i, raw := range raws {
		itemIDs[i] = raw.ItemID
	}
	names := make(map[int64]string)
	if len(itemIDs) > 0 {
		rawNames, err := gw.AssetNames(ctx, owner.CorporationID, itemIDs)
		if err != nil {
			log.Error().Err(err).Int64("owner_id", owner.ID).Msg("asset name fetch failed")
			record(esi.KindOf(err), false)
			return false
		}
		for _, rn := range rawNames {
			names[rn.ItemID] = rn.Name
		}
	}

	assets := make([]*models.OwnerAsset, len(raws))
	for i, raw := range raws {
		assets[i] = &models.OwnerAsset{
			ItemID:     raw.ItemID,
			OwnerID:    owner.ID,
			TypeID:     raw.TypeID,
			LocationID: raw.LocationID,
			Name:       names[raw.ItemID],
			Quantity:   raw.Quantity,
		}
	}

	err = r.inTx(func(tx *sql.Tx) error {
		return repositories.NewAssetRepository(tx).ReplaceForOwner(owner.ID, assets)
	})
	if err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("asset store failed")
		record(models.ErrorUnknown, false)
		return false
	}

	record(models.ErrorNone, true)
	return true
}

// storeStructure upserts one structure, applying default tags only when
// the row is newly created. Tags are otherwise never touched by sync.
func (r *Reconciler) storeStructure(tx *sql.Tx, repo *repositories.StructureRepository, s *models.Structure) error {
	exists, err := repo.Exists(s.ID)
	if err != nil {
		return err
	}
	if err := repo.Upsert(s); err != nil {
		return err
	}
	if exists || !r.cfg.DefaultTagsEnabled {
		return nil
	}

	tags, err := repositories.NewTagRepository(tx).ListDefault()
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if err := repo.AddTag(s.ID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

func pruneCategory(repo *repositories.StructureRepository, ownerID int64, category models.StructureCategory, seen map[int64]bool) error {
	existing, err := repo.IDsByOwnerCategory(ownerID, category)
	if err != nil {
		return err
	}
	var stale []int64
	for _, id := range existing {
		if !seen[id] {
			stale = append(stale, id)
		}
	}
	return repo.Delete(stale)
}

func (r *Reconciler) assetNamesByItemID(ownerID int64) (map[int64]string, error) {
	assets, err := repositories.NewAssetRepository(r.db).ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(assets))
	for _, a := range assets {
		if a.Name != "" {
			names[a.ItemID] = a.Name
		}
	}
	return names, nil
}

func (r *Reconciler) inTx(fn func(*sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
