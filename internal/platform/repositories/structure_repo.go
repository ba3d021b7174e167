package repositories

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"structwatch/internal/platform/models"
)

type StructureRepository struct {
	db DBTX
}

func NewStructureRepository(db DBTX) *StructureRepository {
	return &StructureRepository{db: db}
}

const structureColumns = `structure_id, owner_id, category, type_id, solar_system_id,
	planet_id, moon_id, name, position_x, position_y, position_z,
	state, state_timer_start, state_timer_end, fuel_expires_at, unanchors_at,
	reinforce_hour, created_at, last_updated_at`

func (r *StructureRepository) Exists(id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM structures WHERE structure_id = ?)`, id).Scan(&exists)
	return exists, err
}

// Upsert writes a structure from a sync pass. On update the created_at
// column and tag links are left untouched.
func (r *StructureRepository) Upsert(s *models.Structure) error {
	now := time.Now().UTC()
	s.LastUpdatedAt = now
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.State == models.StateNA {
		s.State = models.StateUnknown
	}

	query := `
		INSERT INTO structures (` + structureColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(structure_id) DO UPDATE SET
			owner_id = excluded.owner_id,
			category = excluded.category,
			type_id = excluded.type_id,
			solar_system_id = excluded.solar_system_id,
			planet_id = excluded.planet_id,
			moon_id = excluded.moon_id,
			name = excluded.name,
			position_x = excluded.position_x,
			position_y = excluded.position_y,
			position_z = excluded.position_z,
			state = excluded.state,
			state_timer_start = excluded.state_timer_start,
			state_timer_end = excluded.state_timer_end,
			fuel_expires_at = excluded.fuel_expires_at,
			unanchors_at = excluded.unanchors_at,
			reinforce_hour = excluded.reinforce_hour,
			last_updated_at = excluded.last_updated_at
	`
	_, err := r.db.Exec(query,
		s.ID, s.OwnerID, s.Category, s.TypeID, s.SolarSystemID,
		s.PlanetID, s.MoonID, s.Name, s.PositionX, s.PositionY, s.PositionZ,
		s.State,
		fmtNullTime(s.StateStart), fmtNullTime(s.StateEnd),
		fmtNullTime(s.FuelExpiresAt), fmtNullTime(s.UnanchorsAt),
		s.ReinforceHour,
		fmtTime(s.CreatedAt), fmtTime(s.LastUpdatedAt),
	)
	return err
}

func (r *StructureRepository) GetByID(id int64) (*models.Structure, error) {
	row := r.db.QueryRow(`SELECT `+structureColumns+` FROM structures WHERE structure_id = ?`, id)
	return scanStructure(row)
}

func (r *StructureRepository) IDsByOwnerCategory(ownerID int64, category models.StructureCategory) ([]int64, error) {
	rows, err := r.db.Query(
		`SELECT structure_id FROM structures WHERE owner_id = ? AND category = ?`,
		ownerID, category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *StructureRepository) ListByOwner(ownerID int64) ([]*models.Structure, error) {
	rows, err := r.db.Query(`SELECT `+structureColumns+` FROM structures WHERE owner_id = ? ORDER BY structure_id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var structures []*models.Structure
	for rows.Next() {
		s, err := scanStructure(rows)
		if err != nil {
			return nil, err
		}
		structures = append(structures, s)
	}
	return structures, rows.Err()
}

// Delete removes structures and their child records. Service, POCO and
// tag-link rows go first so the delete works with foreign keys off too.
func (r *StructureRepository) Delete(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	for _, table := range []string{"structure_services", "poco_details", "structure_tag_links", "structures"} {
		col := "structure_id"
		query := `DELETE FROM ` + table + ` WHERE ` + col + ` IN (` + placeholders + `)`
		if _, err := r.db.Exec(query, args...); err != nil {
			return err
		}
	}
	return nil
}

// SetMoonIfMissing backfills the moon reference, a side effect of
// ingesting moon mining notifications for structures synced without one.
func (r *StructureRepository) SetMoonIfMissing(structureID, moonID int64) error {
	_, err := r.db.Exec(
		`UPDATE structures SET moon_id = ? WHERE structure_id = ? AND moon_id IS NULL`,
		moonID, structureID,
	)
	return err
}

// ReplaceServices reconciles the child service rows to match the remote
// list: stale names removed, the rest upserted.
func (r *StructureRepository) ReplaceServices(structureID int64, services []models.StructureService) error {
	if len(services) == 0 {
		_, err := r.db.Exec(`DELETE FROM structure_services WHERE structure_id = ?`, structureID)
		return err
	}

	names := make([]any, 0, len(services)+1)
	names = append(names, structureID)
	for _, svc := range services {
		names = append(names, svc.Name.Default)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(services)), ",")
	if _, err := r.db.Exec(
		`DELETE FROM structure_services WHERE structure_id = ? AND name NOT IN (`+placeholders+`)`,
		names...,
	); err != nil {
		return err
	}

	for _, svc := range services {
		variants, err := json.Marshal(svc.Name.Variants)
		if err != nil {
			return err
		}
		if _, err := r.db.Exec(`
			INSERT INTO structure_services (structure_id, name, name_variants, state)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(structure_id, name) DO UPDATE SET
				name_variants = excluded.name_variants,
				state = excluded.state`,
			structureID, svc.Name.Default, string(variants), svc.State,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *StructureRepository) ListServices(structureID int64) ([]models.StructureService, error) {
	rows, err := r.db.Query(
		`SELECT structure_id, name, name_variants, state FROM structure_services WHERE structure_id = ? ORDER BY name`,
		structureID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.StructureService
	for rows.Next() {
		var svc models.StructureService
		var variantsRaw string
		if err := rows.Scan(&svc.StructureID, &svc.Name.Default, &variantsRaw, &svc.State); err != nil {
			return nil, err
		}
		if variantsRaw != "" && variantsRaw != "{}" {
			if err := json.Unmarshal([]byte(variantsRaw), &svc.Name.Variants); err != nil {
				return nil, err
			}
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (r *StructureRepository) UpsertPocoDetails(p *models.PocoDetails) error {
	query := `
		INSERT INTO poco_details (structure_id, alliance_tax_rate, corporation_tax_rate,
			excellent_standing_tax_rate, good_standing_tax_rate, neutral_standing_tax_rate,
			bad_standing_tax_rate, terrible_standing_tax_rate,
			allow_alliance_access, allow_access_with_standings, standing_level,
			reinforce_exit_start, reinforce_exit_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(structure_id) DO UPDATE SET
			alliance_tax_rate = excluded.alliance_tax_rate,
			corporation_tax_rate = excluded.corporation_tax_rate,
			excellent_standing_tax_rate = excluded.excellent_standing_tax_rate,
			good_standing_tax_rate = excluded.good_standing_tax_rate,
			neutral_standing_tax_rate = excluded.neutral_standing_tax_rate,
			bad_standing_tax_rate = excluded.bad_standing_tax_rate,
			terrible_standing_tax_rate = excluded.terrible_standing_tax_rate,
			allow_alliance_access = excluded.allow_alliance_access,
			allow_access_with_standings = excluded.allow_access_with_standings,
			standing_level = excluded.standing_level,
			reinforce_exit_start = excluded.reinforce_exit_start,
			reinforce_exit_end = excluded.reinforce_exit_end
	`
	_, err := r.db.Exec(query,
		p.StructureID, p.AllianceTaxRate, p.CorporationTaxRate,
		p.ExcellentStandingTaxRate, p.GoodStandingTaxRate, p.NeutralStandingTaxRate,
		p.BadStandingTaxRate, p.TerribleStandingTaxRate,
		p.AllowAllianceAccess, p.AllowAccessWithStandings, p.StandingLevel,
		p.ReinforceExitStart, p.ReinforceExitEnd,
	)
	return err
}

func (r *StructureRepository) GetPocoDetails(structureID int64) (*models.PocoDetails, error) {
	var p models.PocoDetails
	err := r.db.QueryRow(`
		SELECT structure_id, alliance_tax_rate, corporation_tax_rate,
			excellent_standing_tax_rate, good_standing_tax_rate, neutral_standing_tax_rate,
			bad_standing_tax_rate, terrible_standing_tax_rate,
			allow_alliance_access, allow_access_with_standings, standing_level,
			reinforce_exit_start, reinforce_exit_end
		FROM poco_details WHERE structure_id = ?`, structureID,
	).Scan(
		&p.StructureID, &p.AllianceTaxRate, &p.CorporationTaxRate,
		&p.ExcellentStandingTaxRate, &p.GoodStandingTaxRate, &p.NeutralStandingTaxRate,
		&p.BadStandingTaxRate, &p.TerribleStandingTaxRate,
		&p.AllowAllianceAccess, &p.AllowAccessWithStandings, &p.StandingLevel,
		&p.ReinforceExitStart, &p.ReinforceExitEnd,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *StructureRepository) AddTag(structureID int64, tagID string) error {
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO structure_tag_links (structure_id, tag_id) VALUES (?, ?)`,
		structureID, tagID,
	)
	return err
}

func (r *StructureRepository) ListTags(structureID int64) ([]*models.StructureTag, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.name, t.description, t.style, t.is_default
		FROM structure_tags t
		JOIN structure_tag_links l ON l.tag_id = t.id
		WHERE l.structure_id = ?
		ORDER BY t.name`, structureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.StructureTag
	for rows.Next() {
		var t models.StructureTag
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Style, &t.IsDefault); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

func scanStructure(s interface {
	Scan(dest ...any) error
}) (*models.Structure, error) {
	var st models.Structure
	var planetID, moonID sql.NullInt64
	var posX, posY, posZ sql.NullFloat64
	var stateStart, stateEnd, fuelExpires, unanchors sql.NullString
	var reinforceHour sql.NullInt64
	var createdAt, updatedAt string

	err := s.Scan(
		&st.ID, &st.OwnerID, &st.Category, &st.TypeID, &st.SolarSystemID,
		&planetID, &moonID, &st.Name, &posX, &posY, &posZ,
		&st.State, &stateStart, &stateEnd, &fuelExpires, &unanchors,
		&reinforceHour, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if planetID.Valid {
		st.PlanetID = &planetID.Int64
	}
	if moonID.Valid {
		st.MoonID = &moonID.Int64
	}
	if posX.Valid {
		st.PositionX = &posX.Float64
	}
	if posY.Valid {
		st.PositionY = &posY.Float64
	}
	if posZ.Valid {
		st.PositionZ = &posZ.Float64
	}
	if reinforceHour.Valid {
		hour := int(reinforceHour.Int64)
		st.ReinforceHour = &hour
	}
	st.StateStart = parseNullTime(stateStart)
	st.StateEnd = parseNullTime(stateEnd)
	st.FuelExpiresAt = parseNullTime(fuelExpires)
	st.UnanchorsAt = parseNullTime(unanchors)
	st.CreatedAt = parseTime(createdAt)
	st.LastUpdatedAt = parseTime(updatedAt)

	return &st, nil
}
