package repositories

import (
	"time"

	"structwatch/internal/platform/models"
)

type TimerRepository struct {
	db DBTX
}

func NewTimerRepository(db DBTX) *TimerRepository {
	return &TimerRepository{db: db}
}

// Create stores a timer. A second timer for the same notification is
// silently ignored.
func (r *TimerRepository) Create(t *models.StructureTimer) error {
	t.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO structure_timers (owner_id, structure_id, notification_id, kind, at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.StructureID, t.NotificationID, t.Kind, fmtTime(t.At), fmtTime(t.CreatedAt),
	)
	return err
}

// ListUpcoming returns the owner's timers that have not yet elapsed,
// soonest first.
func (r *TimerRepository) ListUpcoming(ownerID int64, now time.Time) ([]*models.StructureTimer, error) {
	rows, err := r.db.Query(`
		SELECT id, owner_id, structure_id, notification_id, kind, at, created_at
		FROM structure_timers
		WHERE owner_id = ? AND at >= ?
		ORDER BY at ASC`,
		ownerID, fmtTime(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timers []*models.StructureTimer
	for rows.Next() {
		var t models.StructureTimer
		var at, createdAt string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.StructureID, &t.NotificationID, &t.Kind, &at, &createdAt); err != nil {
			return nil, err
		}
		t.At = parseTime(at)
		t.CreatedAt = parseTime(createdAt)
		timers = append(timers, &t)
	}
	return timers, rows.Err()
}
