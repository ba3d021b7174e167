package forwarding

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"structwatch/internal/platform/models"
	"structwatch/internal/platform/repositories"
)

// Forwarder pushes stored notifications to the owner's webhooks. Each
// successful send leaves a delivery receipt; a notification is marked
// sent only once every subscribed active webhook holds a receipt, so a
// partially failed pass retries just the missing endpoints.
type Forwarder struct {
	db     *sql.DB
	sender Sender
}

func NewForwarder(db *sql.DB, sender Sender) *Forwarder {
	return &Forwarder{db: db, sender: sender}
}

// SendNewNotifications forwards every unsent notification for the owner,
// oldest first. Returns the number of notifications fully delivered and
// whether the pass completed without failures.
func (f *Forwarder) SendNewNotifications(ctx context.Context, owner *models.Owner) (int, bool) {
	owners := repositories.NewOwnerRepository(f.db)
	notifs := repositories.NewNotificationRepository(f.db)
	webhooks := repositories.NewWebhookRepository(f.db)

	record := func(kind models.ErrorKind, ok bool) {
		var syncedAt *time.Time
		if ok {
			now := time.Now().UTC()
			syncedAt = &now
		}
		if err := owners.RecordSyncResult(owner.ID, models.CategoryForwarding, kind, syncedAt); err != nil {
			log.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to record forwarding sync result")
		}
	}

	pending, err := notifs.ListUnsentByOwner(owner.ID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to load unsent notifications")
		record(models.ErrorUnknown, false)
		return 0, false
	}

	hooks, err := webhooks.ListActiveForOwner(owner.ID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", owner.ID).Msg("failed to load webhooks")
		record(models.ErrorUnknown, false)
		return 0, false
	}

	sent := 0
	failed := false
	for _, n := range pending {
		done, ok := f.forwardOne(ctx, notifs, owner, n, hooks)
		if done {
			sent++
		}
		if !ok {
			failed = true
		}
	}

	if failed {
		record(models.ErrorUnknown, false)
		return sent, false
	}
	record(models.ErrorNone, true)
	if sent > 0 {
		log.Info().Int64("owner_id", owner.ID).Int("sent", sent).Msg("notifications forwarded")
	}
	return sent, true
}

// forwardOne delivers a single notification to all subscribed webhooks
// that do not yet hold a receipt. Reports whether the notification is
// now fully delivered and whether all attempted sends succeeded.
func (f *Forwarder) forwardOne(ctx context.Context, notifs *repositories.NotificationRepository, owner *models.Owner, n *models.Notification, hooks []*models.Webhook) (bool, bool) {
	delivered, err := notifs.DeliveredWebhookIDs(n.NotificationID, n.OwnerID)
	if err != nil {
		log.Error().Err(err).Int64("notification_id", n.NotificationID).Msg("failed to load delivery receipts")
		return false, false
	}

	var subscribed []*models.Webhook
	for _, h := range hooks {
		if h.SubscribesTo(n.Type) {
			subscribed = append(subscribed, h)
		}
	}

	ok := true
	var event *Event
	for _, h := range subscribed {
		if delivered[h.ID] {
			continue
		}
		if event == nil {
			event = renderEvent(owner, n)
		}
		if err := f.sender.Send(ctx, h, event); err != nil {
			log.Warn().Err(err).
				Int64("notification_id", n.NotificationID).
				Str("webhook", h.Name).
				Msg("webhook delivery failed")
			ok = false
			continue
		}
		receipt := &models.NotificationDelivery{
			NotificationID: n.NotificationID,
			OwnerID:        n.OwnerID,
			WebhookID:      h.ID,
			SentAt:         time.Now().UTC(),
		}
		if err := notifs.RecordDelivery(receipt); err != nil {
			log.Error().Err(err).Int64("notification_id", n.NotificationID).Msg("failed to record delivery")
			ok = false
			continue
		}
		delivered[h.ID] = true
	}

	for _, h := range subscribed {
		if !delivered[h.ID] {
			return false, ok
		}
	}
	// No subscribed webhook is still owed this notification; this also
	// retires notifications no webhook subscribes to.
	if err := notifs.MarkSent(n.NotificationID, n.OwnerID); err != nil {
		log.Error().Err(err).Int64("notification_id", n.NotificationID).Msg("failed to mark notification sent")
		return false, false
	}
	return true, ok
}
