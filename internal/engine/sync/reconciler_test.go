package sync

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structwatch/internal/engine/esi"
	"structwatch/internal/pkg/localized"
	"structwatch/internal/platform/config"
	"structwatch/internal/platform/database"
	"structwatch/internal/platform/models"
	"structwatch/internal/platform/repositories"
)

type fakeGateway struct {
	structuresByLang map[string][]esi.RawStructure
	structuresErr    map[string]error
	details          map[int64]*esi.RawUniverseStructure
	pocos            []esi.RawCustomsOffice
	pocosErr         error
	starbases        []esi.RawStarbase
	starbasesErr     error
	starbaseDetails  map[int64]*esi.RawStarbaseDetail
	assets           []esi.RawAsset
	assetsErr        error
	assetNames       []esi.RawAssetName
	notifications    []esi.RawNotification
	notificationsErr error
}

func upstreamErr(op string) error {
	return &esi.FetchError{Kind: models.ErrorUpstreamUnavailable, Op: op}
}

func (g *fakeGateway) CorporationStructures(_ context.Context, _ int64, lang string) ([]esi.RawStructure, error) {
	if err := g.structuresErr[lang]; err != nil {
		return nil, err
	}
	return g.structuresByLang[lang], nil
}

func (g *fakeGateway) UniverseStructure(_ context.Context, structureID int64) (*esi.RawUniverseStructure, error) {
	if detail, ok := g.details[structureID]; ok {
		return detail, nil
	}
	return nil, upstreamErr("universe structure")
}

func (g *fakeGateway) CustomsOffices(_ context.Context, _ int64) ([]esi.RawCustomsOffice, error) {
	return g.pocos, g.pocosErr
}

func (g *fakeGateway) Starbases(_ context.Context, _ int64) ([]esi.RawStarbase, error) {
	return g.starbases, g.starbasesErr
}

func (g *fakeGateway) StarbaseDetail(_ context.Context, _, starbaseID, _ int64) (*esi.RawStarbaseDetail, error) {
	if detail, ok := g.starbaseDetails[starbaseID]; ok {
		return detail, nil
	}
	return nil, upstreamErr("starbase detail")
}

func (g *fakeGateway) Assets(_ context.Context, _ int64) ([]esi.RawAsset, error) {
	return g.assets, g.assetsErr
}

func (g *fakeGateway) AssetNames(_ context.Context, _ int64, _ []int64) ([]esi.RawAssetName, error) {
	return g.assetNames, nil
}

func (g *fakeGateway) Notifications(_ context.Context, _ int64) ([]esi.RawNotification, error) {
	return g.notifications, g.notificationsErr
}

type fakeUniverse struct {
	planets map[string]*Planet
}

func (u *fakeUniverse) PlanetByName(_ context.Context, name string) (*Planet, error) {
	return u.planets[name], nil
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)
	require.NoError(t, database.ApplySchema(db))
	return db
}

func createTestOwner(t *testing.T, db *sql.DB) *models.Owner {
	t.Helper()
	owner := &models.Owner{
		CorporationID:   2001,
		CorporationName: "Test Corp",
		CredentialRef:   "cred-1",
		IsActive:        true,
	}
	require.NoError(t, repositories.NewOwnerRepository(db).Create(owner))
	return owner
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		DefaultLanguage: "en-us",
		Languages:       []string{"en-us"},
	}
}

func upwellRaw(id int64) esi.RawStructure {
	return esi.RawStructure{StructureID: id, TypeID: 35832, SystemID: 30002537, State: "shield_vulnerable"}
}

func upwellDetail(name string) *esi.RawUniverseStructure {
	return &esi.RawUniverseStructure{Name: name, SolarSystemID: 30002537, TypeID: 35832}
}

func structureIDs(t *testing.T, db *sql.DB, ownerID int64) []int64 {
	t.Helper()
	structures, err := repositories.NewStructureRepository(db).ListByOwner(ownerID)
	require.NoError(t, err)
	ids := make([]int64, len(structures))
	for i, s := range structures {
		ids[i] = s.ID
	}
	return ids
}

func TestUpdateStructuresReconcilesToRemoteSet(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	// first pass stores 1 and 2
	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{
			"en-us": {upwellRaw(1000000001), upwellRaw(1000000002)},
		},
		details: map[int64]*esi.RawUniverseStructure{
			1000000001: upwellDetail("Alpha"),
			1000000002: upwellDetail("Bravo"),
		},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))
	assert.ElementsMatch(t, []int64{1000000001, 1000000002}, structureIDs(t, db, owner.ID))

	// second pass drops 1, adds 3
	gw.structuresByLang["en-us"] = []esi.RawStructure{upwellRaw(1000000002), upwellRaw(1000000003)}
	gw.details[1000000003] = upwellDetail("Charlie")
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))
	assert.ElementsMatch(t, []int64{1000000002, 1000000003}, structureIDs(t, db, owner.ID))

	fetched, err := repositories.NewOwnerRepository(db).GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ErrorNone, fetched.StructuresLastError)
	assert.NotNil(t, fetched.StructuresLastSync)
}

func TestUpdateStructuresNoCredential(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	owner.CredentialRef = ""
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	require.False(t, r.UpdateStructures(context.Background(), &fakeGateway{}, owner))

	fetched, err := repositories.NewOwnerRepository(db).GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ErrorNoCredential, fetched.StructuresLastError)
	assert.Nil(t, fetched.StructuresLastSync)
}

func TestUpdateStructuresDefaultLanguageFailure(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	// seed a structure, then fail the fetch entirely
	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{"en-us": {upwellRaw(1000000001)}},
		details:          map[int64]*esi.RawUniverseStructure{1000000001: upwellDetail("Alpha")},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	gw.structuresErr = map[string]error{"en-us": upstreamErr("corporation structures")}
	require.False(t, r.UpdateStructures(context.Background(), gw, owner))

	// stored rows survive the failed pass
	assert.ElementsMatch(t, []int64{1000000001}, structureIDs(t, db, owner.ID))
	fetched, err := repositories.NewOwnerRepository(db).GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ErrorUpstreamUnavailable, fetched.StructuresLastError)
}

// a failed category keeps its rows while the others still prune
func TestUpdateStructuresPartialFailureIsolation(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	cfg := testSyncConfig()
	cfg.CustomsOfficesEnabled = true
	r := NewReconciler(db, &fakeUniverse{}, cfg)

	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{
			"en-us": {upwellRaw(1000000001), upwellRaw(1000000002)},
		},
		details: map[int64]*esi.RawUniverseStructure{
			1000000001: upwellDetail("Alpha"),
			1000000002: upwellDetail("Bravo"),
		},
		pocos: []esi.RawCustomsOffice{{OfficeID: 1000000010, SystemID: 30002537}},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))
	assert.ElementsMatch(t, []int64{1000000001, 1000000002, 1000000010}, structureIDs(t, db, owner.ID))

	// upwell shrinks; the POCO fetch fails
	gw.structuresByLang["en-us"] = []esi.RawStructure{upwellRaw(1000000001)}
	gw.pocosErr = upstreamErr("customs offices")
	require.False(t, r.UpdateStructures(context.Background(), gw, owner))

	// upwell pruned, POCO rows untouched
	assert.ElementsMatch(t, []int64{1000000001, 1000000010}, structureIDs(t, db, owner.ID))

	fetched, err := repositories.NewOwnerRepository(db).GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ErrorUpstreamUnavailable, fetched.StructuresLastError)
	// at least one category committed, so freshness still advances
	assert.NotNil(t, fetched.StructuresLastSync)
}

func TestUpdateStructuresPreservesCreatedAtAndTags(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{"en-us": {upwellRaw(1000000001)}},
		details:          map[int64]*esi.RawUniverseStructure{1000000001: upwellDetail("Alpha")},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	repo := repositories.NewStructureRepository(db)
	first, err := repo.GetByID(1000000001)
	require.NoError(t, err)

	// user tags a structure between passes
	tagRepo := repositories.NewTagRepository(db)
	tag := &models.StructureTag{Name: "watchlist"}
	require.NoError(t, tagRepo.Create(tag))
	require.NoError(t, repo.AddTag(1000000001, tag.ID))

	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	second, err := repo.GetByID(1000000001)
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	tags, err := repo.ListTags(1000000001)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "watchlist", tags[0].Name)
}

func TestUpdateStructuresAppliesDefaultTagsOnCreateOnly(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	cfg := testSyncConfig()
	cfg.DefaultTagsEnabled = true
	r := NewReconciler(db, &fakeUniverse{}, cfg)

	tagRepo := repositories.NewTagRepository(db)
	def := &models.StructureTag{Name: "new", IsDefault: true}
	require.NoError(t, tagRepo.Create(def))

	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{"en-us": {upwellRaw(1000000001)}},
		details:          map[int64]*esi.RawUniverseStructure{1000000001: upwellDetail("Alpha")},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	repo := repositories.NewStructureRepository(db)
	tags, err := repo.ListTags(1000000001)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	// user removes the tag; resync must not re-apply it
	_, err = db.Exec(`DELETE FROM structure_tag_links WHERE structure_id = 1000000001`)
	require.NoError(t, err)
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	tags, err = repo.ListTags(1000000001)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestUpdateStructuresDetailFailureUsesPlaceholderName(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{"en-us": {upwellRaw(1000000001)}},
		// no detail entry: the fetch fails
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	s, err := repositories.NewStructureRepository(db).GetByID(1000000001)
	require.NoError(t, err)
	assert.Equal(t, "(no data)", s.Name)
}

func TestUpdateStructuresPocoNaming(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	cfg := testSyncConfig()
	cfg.CustomsOfficesEnabled = true

	universe := &fakeUniverse{planets: map[string]*Planet{
		"Amamake V": {ID: 40001, Name: "Amamake V", TypeName: localized.New("Planet (Barren)")},
	}}
	r := NewReconciler(db, universe, cfg)

	// asset rows provide the display names POCO naming depends on
	require.NoError(t, repositories.NewAssetRepository(db).ReplaceForOwner(owner.ID, []*models.OwnerAsset{
		{ItemID: 1000000010, TypeID: 2233, Name: "Customs Office (Amamake V)"},
		{ItemID: 1000000011, TypeID: 2233, Name: "garbled"},
	}))

	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{"en-us": {}},
		pocos: []esi.RawCustomsOffice{
			{OfficeID: 1000000010, SystemID: 30002537},
			{OfficeID: 1000000011, SystemID: 30002537},
			{OfficeID: 1000000012, SystemID: 30002537}, // no asset row at all
		},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	repo := repositories.NewStructureRepository(db)

	named, err := repo.GetByID(1000000010)
	require.NoError(t, err)
	assert.Equal(t, "Planet (Barren)", named.Name)
	require.NotNil(t, named.PlanetID)
	assert.EqualValues(t, 40001, *named.PlanetID)

	unmatched, err := repo.GetByID(1000000011)
	require.NoError(t, err)
	assert.Equal(t, "", unmatched.Name)
	assert.Nil(t, unmatched.PlanetID)

	unnamed, err := repo.GetByID(1000000012)
	require.NoError(t, err)
	assert.Equal(t, "", unnamed.Name)
}

func TestUpdateStructuresStarbases(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	cfg := testSyncConfig()
	cfg.StarbasesEnabled = true
	r := NewReconciler(db, &fakeUniverse{}, cfg)

	require.NoError(t, repositories.NewAssetRepository(db).ReplaceForOwner(owner.ID, []*models.OwnerAsset{
		{ItemID: 1000000020, TypeID: 16213, Name: "Home Tower"},
	}))

	moonID := int64(40161465)
	gw := &fakeGateway{
		structuresByLang: map[string][]esi.RawStructure{"en-us": {}},
		starbases: []esi.RawStarbase{
			{StarbaseID: 1000000020, TypeID: 16213, SystemID: 30002537, MoonID: &moonID, State: "online"},
			{StarbaseID: 1000000021, TypeID: 16213, SystemID: 30002537, State: "offline"},
		},
		starbaseDetails: map[int64]*esi.RawStarbaseDetail{
			1000000020: {Fuels: []esi.RawStarbaseFuel{{TypeID: 4051, Quantity: 400}}},
			// 1000000021 detail fetch fails; the starbase still syncs
		},
	}
	require.True(t, r.UpdateStructures(context.Background(), gw, owner))

	repo := repositories.NewStructureRepository(db)

	online, err := repo.GetByID(1000000020)
	require.NoError(t, err)
	assert.Equal(t, "Home Tower", online.Name)
	assert.Equal(t, models.StatePosOnline, online.State)
	require.NotNil(t, online.MoonID)
	assert.EqualValues(t, 40161465, *online.MoonID)
	assert.NotNil(t, online.FuelExpiresAt)

	offline, err := repo.GetByID(1000000021)
	require.NoError(t, err)
	assert.Equal(t, "", offline.Name)
	assert.Equal(t, models.StatePosOffline, offline.State)
	assert.Nil(t, offline.FuelExpiresAt)
}

func TestUpdateAssetsReplacesSet(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	gw := &fakeGateway{
		assets:     []esi.RawAsset{{ItemID: 1, TypeID: 2233, LocationID: 30002537}},
		assetNames: []esi.RawAssetName{{ItemID: 1, Name: "Customs Office (Amamake V)"}},
	}
	require.True(t, r.UpdateAssets(context.Background(), gw, owner))

	assets, err := repositories.NewAssetRepository(db).ListByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "Customs Office (Amamake V)", assets[0].Name)

	// a later pass fully replaces the stored set
	gw.assets = []esi.RawAsset{{ItemID: 2, TypeID: 2233, LocationID: 30002537}}
	gw.assetNames = []esi.RawAssetName{{ItemID: 2, Name: "Customs Office (Amamake II)"}}
	require.True(t, r.UpdateAssets(context.Background(), gw, owner))

	assets, err = repositories.NewAssetRepository(db).ListByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.EqualValues(t, 2, assets[0].ItemID)
}

func TestUpdateAssetsFetchFailure(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db)
	r := NewReconciler(db, &fakeUniverse{}, testSyncConfig())

	gw := &fakeGateway{assetsErr: &esi.FetchError{Kind: models.ErrorInsufficientScope, Op: "assets"}}
	require.False(t, r.UpdateAssets(context.Background(), gw, owner))

	fetched, err := repositories.NewOwnerRepository(db).GetByID(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ErrorInsufficientScope, fetched.AssetsLastError)
	assert.Nil(t, fetched.AssetsLastSync)
}
