package notifications

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"structwatch/internal/engine/esi"
	"structwatch/internal/platform/config"
	"structwatch/internal/platform/models"
	"structwatch/internal/platform/repositories"
)

// Fetcher is the slice of the ESI surface the ingestor needs.
type Fetcher interface {
	Notifications(ctx context.Context, corporationID int64) ([]esi.RawNotification, error)
}

// Ingestor fetches, classifies and stores notification events for one
// owner per call.
type Ingestor struct {
	db     *sql.DB
	timers TimerCreator
	cfg    config.SyncConfig
}

func NewIngestor(db *sql.DB, timers TimerCreator, cfg config.SyncConfig) *Ingestor {
	return &Ingestor{db: db, timers: timers, cfg: cfg}
}

// FetchNotifications ingests the owner's notification feed. Returns the
// number of newly stored notifications and whether the pass succeeded;
// failures are recorded on the owner, never raised to the scheduler.
func (i *Ingestor) FetchNotifications(ctx context.Context, gw Fetcher, owner *models.Owner) (int, bool) {
	owners := repositories.NewOwnerRepository(i.db)

	record := func(kind models.ErrorKind, ok bool) {
		var syncedAt *time.Time
		if ok {
			now := time.Now().UTC()
			syncedAt = &now
		}
		if err := owners.RecordSyncResult(owner.ID, models.CategoryNotifications, kind, syncedAt); err != nil {
			log.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to record notifications sync result")
		}
	}

	if owner.CredentialRef == "" {
		record(models.ErrorNoCredential, false)
		return 0, false
	}

	raws, err := gw.Notifications(ctx, owner.CorporationID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("notification fetch failed")
		record(esi.KindOf(err), false)
		return 0, false
	}

	created, err := i.store(ctx, owner, raws)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("notification store failed")
		record(models.ErrorUnknown, false)
		return 0, false
	}

	record(models.ErrorNone, true)
	log.Info().
		Int64("owner_id", owner.ID).
		Int("fetched", len(raws)).
		Int("created", created).
		Msg("notifications ingested")
	return created, true
}

type timerCandidate struct {
	notification *models.Notification
	payload      *Payload
}

func (i *Ingestor) store(ctx context.Context, owner *models.Owner, raws []esi.RawNotification) (int, error) {
	tx, err := i.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	structures := repositories.NewStructureRepository(tx)

	created := 0
	var candidates []timerCandidate
	for _, raw := range raws {
		n := &models.Notification{
			NotificationID: raw.NotificationID,
			OwnerID:        owner.ID,
			SenderID:       raw.SenderID,
			Timestamp:      raw.Timestamp.UTC(),
			Type:           raw.Type,
			Text:           raw.Text,
			IsRead:         raw.IsRead,
		}
		isNew, err := repositories.NewNotificationRepository(tx).Upsert(n)
		if err != nil {
			return 0, err
		}
		if isNew {
			created++
		}
		if p := i.applySideEffects(structures, n); p != nil {
			candidates = append(candidates, timerCandidate{notification: n, payload: p})
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	// Timers are created only after the notification rows are committed;
	// the creator may write through its own connection.
	repo := repositories.NewNotificationRepository(i.db)
	for _, c := range candidates {
		i.maybeCreateTimer(ctx, repo, c.notification, c.payload)
	}
	return created, nil
}

// applySideEffects handles moon backfill inside the ingest transaction
// and returns the parsed payload when the notification should produce a
// timer. Both effects are best effort; a malformed payload never fails
// the ingest pass.
func (i *Ingestor) applySideEffects(structures *repositories.StructureRepository, n *models.Notification) *Payload {
	if !moonMiningTypes[n.Type] && !timerTypes[n.Type] {
		return nil
	}
	p, err := ParsePayload(n.Text)
	if err != nil {
		log.Warn().Err(err).
			Int64("notification_id", n.NotificationID).
			Str("type", n.Type).
			Msg("unparseable notification payload")
		return nil
	}

	if moonMiningTypes[n.Type] && p.MoonID != 0 && p.StructureID != 0 {
		if err := structures.SetMoonIfMissing(p.StructureID, p.MoonID); err != nil {
			log.Warn().Err(err).
				Int64("structure_id", p.StructureID).
				Msg("moon backfill failed")
		}
	}

	if i.cfg.TimersEnabled && i.timers != nil && timerTypes[n.Type] {
		return p
	}
	return nil
}

func (i *Ingestor) maybeCreateTimer(ctx context.Context, repo *repositories.NotificationRepository, n *models.Notification, p *Payload) {
	stored, err := repo.Get(n.NotificationID, n.OwnerID)
	if err != nil {
		log.Warn().Err(err).Int64("notification_id", n.NotificationID).Msg("timer lookup failed")
		return
	}
	if stored.IsTimerAdded {
		return
	}
	timer := timerFromNotification(n, p)
	if timer == nil {
		return
	}
	if err := i.timers.CreateTimer(ctx, *timer); err != nil {
		log.Warn().Err(err).
			Int64("notification_id", n.NotificationID).
			Msg("timer creation failed")
		return
	}
	if err := repo.MarkTimerAdded(n.NotificationID, n.OwnerID); err != nil {
		log.Warn().Err(err).
			Int64("notification_id", n.NotificationID).
			Msg("failed to flag timer creation")
	}
}
