package repositories

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"structwatch/internal/pkg/localized"
	"structwatch/internal/platform/models"
)

func testStructure(ownerID, structureID int64) *models.Structure {
	return &models.Structure{
		ID:            structureID,
		OwnerID:       ownerID,
		Category:      models.StructureCategoryUpwell,
		TypeID:        35832,
		SolarSystemID: 30002537,
		Name:          "Home Base",
		State:         models.StateShieldVulnerable,
	}
}

func TestStructureRepository_UpsertPreservesCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewStructureRepository(db)

	s := testStructure(owner.ID, 1000000001)
	require.NoError(t, repo.Upsert(s))

	first, err := repo.GetByID(s.ID)
	require.NoError(t, err)

	s.Name = "Renamed Base"
	require.NoError(t, repo.Upsert(s))

	second, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed Base", second.Name)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestStructureRepository_UpsertDefaultsState(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewStructureRepository(db)

	s := testStructure(owner.ID, 1000000001)
	s.State = models.StateNA
	require.NoError(t, repo.Upsert(s))

	fetched, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	require.Equal(t, models.StateUnknown, fetched.State)
}

func TestStructureRepository_SetMoonIfMissing(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewStructureRepository(db)

	s := testStructure(owner.ID, 1000000001)
	require.NoError(t, repo.Upsert(s))

	require.NoError(t, repo.SetMoonIfMissing(s.ID, 40001))
	fetched, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.MoonID)
	require.EqualValues(t, 40001, *fetched.MoonID)

	// an already-set moon is never overwritten
	require.NoError(t, repo.SetMoonIfMissing(s.ID, 40999))
	fetched, err = repo.GetByID(s.ID)
	require.NoError(t, err)
	require.EqualValues(t, 40001, *fetched.MoonID)
}

func TestStructureRepository_ReplaceServices(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewStructureRepository(db)

	s := testStructure(owner.ID, 1000000001)
	require.NoError(t, repo.Upsert(s))

	require.NoError(t, repo.ReplaceServices(s.ID, []models.StructureService{
		{StructureID: s.ID, Name: localized.New("Clone Bay").WithVariant("de", "Klonbucht"), State: models.ServiceOnline},
		{StructureID: s.ID, Name: localized.New("Market"), State: models.ServiceOffline},
	}))

	services, err := repo.ListServices(s.ID)
	require.NoError(t, err)
	require.Len(t, services, 2)
	require.Equal(t, "Clone Bay", services[0].Name.Default)
	require.Equal(t, "Klonbucht", services[0].Name.Resolve("de"))

	// stale names are removed, survivors updated
	require.NoError(t, repo.ReplaceServices(s.ID, []models.StructureService{
		{StructureID: s.ID, Name: localized.New("Market"), State: models.ServiceOnline},
	}))
	services, err = repo.ListServices(s.ID)
	require.NoError(t, err)
	require.Len(t, services, 1)
	require.Equal(t, "Market", services[0].Name.Default)
	require.Equal(t, models.ServiceOnline, services[0].State)

	// empty remote list clears everything
	require.NoError(t, repo.ReplaceServices(s.ID, nil))
	services, err = repo.ListServices(s.ID)
	require.NoError(t, err)
	require.Empty(t, services)
}

func TestStructureRepository_DeleteRemovesChildren(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewStructureRepository(db)

	s := testStructure(owner.ID, 1000000001)
	s.Category = models.StructureCategoryPoco
	require.NoError(t, repo.Upsert(s))
	require.NoError(t, repo.ReplaceServices(s.ID, []models.StructureService{
		{StructureID: s.ID, Name: localized.New("Market"), State: models.ServiceOnline},
	}))
	require.NoError(t, repo.UpsertPocoDetails(&models.PocoDetails{StructureID: s.ID}))

	tagRepo := NewTagRepository(db)
	tag := &models.StructureTag{Name: "watchlist"}
	require.NoError(t, tagRepo.Create(tag))
	require.NoError(t, repo.AddTag(s.ID, tag.ID))

	require.NoError(t, repo.Delete([]int64{s.ID}))

	_, err := repo.GetByID(s.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)
	services, err := repo.ListServices(s.ID)
	require.NoError(t, err)
	require.Empty(t, services)
	_, err = repo.GetPocoDetails(s.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)
	tags, err := repo.ListTags(s.ID)
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestStructureRepository_IDsByOwnerCategory(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewStructureRepository(db)

	upwell := testStructure(owner.ID, 1000000001)
	require.NoError(t, repo.Upsert(upwell))
	poco := testStructure(owner.ID, 1000000002)
	poco.Category = models.StructureCategoryPoco
	require.NoError(t, repo.Upsert(poco))

	ids, err := repo.IDsByOwnerCategory(owner.ID, models.StructureCategoryUpwell)
	require.NoError(t, err)
	require.Equal(t, []int64{upwell.ID}, ids)
}
