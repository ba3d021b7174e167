package notifications

import (
	"context"
	"database/sql"
	"time"

	"structwatch/internal/platform/models"
	"structwatch/internal/platform/repositories"
)

// Timer is a calendar entry derived from a notification announcing a
// scheduled future event.
type Timer struct {
	OwnerID        int64
	StructureID    int64
	NotificationID int64
	Kind           string
	At             time.Time
}

// TimerCreator is the calendar collaborator. Creation must be cheap to
// call repeatedly; the ingestor guarantees at most one call per
// notification via the is_timer_added flag.
type TimerCreator interface {
	CreateTimer(ctx context.Context, timer Timer) error
}

// DBTimerCreator persists timers to the structure_timers table where
// external timerboard tooling picks them up.
type DBTimerCreator struct {
	db *sql.DB
}

func NewDBTimerCreator(db *sql.DB) *DBTimerCreator {
	return &DBTimerCreator{db: db}
}

func (c *DBTimerCreator) CreateTimer(_ context.Context, timer Timer) error {
	return repositories.NewTimerRepository(c.db).Create(&models.StructureTimer{
		OwnerID:        timer.OwnerID,
		StructureID:    timer.StructureID,
		NotificationID: timer.NotificationID,
		Kind:           timer.Kind,
		At:             timer.At,
	})
}

// timerFromNotification derives the calendar entry for a timer-bearing
// notification, or nil when the payload carries no usable time.
func timerFromNotification(n *models.Notification, p *Payload) *Timer {
	var at time.Time
	var kind string

	switch n.Type {
	case TypeStructureLostShields:
		kind = "armor"
		at = n.Timestamp.Add(ticksDuration(p.TimeLeft))
	case TypeStructureLostArmor:
		kind = "hull"
		at = n.Timestamp.Add(ticksDuration(p.TimeLeft))
	case TypeOrbitalReinforced:
		kind = "poco"
		at = fromFiletime(p.ReinforceExitTime)
	case TypeMoonminingExtractionStarted:
		kind = "moon_extraction"
		at = fromFiletime(p.ReadyTime)
	case TypeSovStructureReinforced:
		kind = "sov"
		at = fromFiletime(p.DecloakTime)
	default:
		return nil
	}

	if at.IsZero() {
		return nil
	}
	return &Timer{
		OwnerID:        n.OwnerID,
		StructureID:    p.StructureID,
		NotificationID: n.NotificationID,
		Kind:           kind,
		At:             at,
	}
}
