package repositories

import (
	"github.com/google/uuid"
	"structwatch/internal/platform/models"
)

type TagRepository struct {
	db DBTX
}

func NewTagRepository(db DBTX) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(tag *models.StructureTag) error {
	tag.ID = "tag_" + uuid.New().String()
	_, err := r.db.Exec(`
		INSERT INTO structure_tags (id, name, description, style, is_default)
		VALUES (?, ?, ?, ?, ?)`,
		tag.ID, tag.Name, tag.Description, tag.Style, tag.IsDefault,
	)
	return err
}

func (r *TagRepository) GetByName(name string) (*models.StructureTag, error) {
	var t models.StructureTag
	err := r.db.QueryRow(`
		SELECT id, name, description, style, is_default FROM structure_tags WHERE name = ?`, name,
	).Scan(&t.ID, &t.Name, &t.Description, &t.Style, &t.IsDefault)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListDefault returns the tags applied once to newly created structures.
func (r *TagRepository) ListDefault() ([]*models.StructureTag, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, style, is_default FROM structure_tags WHERE is_default = 1 ORDER BY name`)
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
