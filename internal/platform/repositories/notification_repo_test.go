package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"structwatch/internal/platform/models"
)

func testNotification(ownerID, notificationID int64) *models.Notification {
	return &models.Notification{
		NotificationID: notificationID,
		OwnerID:        ownerID,
		SenderID:       1000127,
		Timestamp:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Type:           "StructureUnderAttack",
		Text:           "structureID: 1000000001\n",
	}
}

func TestNotificationRepository_UpsertIdempotent(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewNotificationRepository(db)

	n := testNotification(owner.ID, 9001)
	created, err := repo.Upsert(n)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, repo.MarkSent(n.NotificationID, n.OwnerID))
	require.NoError(t, repo.MarkTimerAdded(n.NotificationID, n.OwnerID))
	first, err := repo.Get(n.NotificationID, n.OwnerID)
	require.NoError(t, err)

	// re-ingesting refreshes content but keeps the bookkeeping flags
	isRead := true
	n.IsRead = &isRead
	created, err = repo.Upsert(n)
	require.NoError(t, err)
	require.False(t, created)

	second, err := repo.Get(n.NotificationID, n.OwnerID)
	require.NoError(t, err)
	require.True(t, second.IsSent)
	require.True(t, second.IsTimerAdded)
	require.Equal(t, first.Created, second.Created)
	require.NotNil(t, second.IsRead)
	require.True(t, *second.IsRead)
}

func TestNotificationRepository_SameIDDifferentOwners(t *testing.T) {
	db := setupTestDB(t)
	ownerA := createTestOwner(t, db, 2001)
	ownerB := createTestOwner(t, db, 2002)
	repo := NewNotificationRepository(db)

	created, err := repo.Upsert(testNotification(ownerA.ID, 9001))
	require.NoError(t, err)
	require.True(t, created)
	created, err = repo.Upsert(testNotification(ownerB.ID, 9001))
	require.NoError(t, err)
	require.True(t, created)
}

func TestNotificationRepository_ListUnsentOrder(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewNotificationRepository(db)

	later := testNotification(owner.ID, 9002)
	later.Timestamp = later.Timestamp.Add(time.Hour)
	_, err := repo.Upsert(later)
	require.NoError(t, err)

	earlier := testNotification(owner.ID, 9001)
	_, err = repo.Upsert(earlier)
	require.NoError(t, err)

	sent := testNotification(owner.ID, 9003)
	_, err = repo.Upsert(sent)
	require.NoError(t, err)
	require.NoError(t, repo.MarkSent(sent.NotificationID, owner.ID))

	unsent, err := repo.ListUnsentByOwner(owner.ID)
	require.NoError(t, err)
	require.Len(t, unsent, 2)
	require.EqualValues(t, 9001, unsent[0].NotificationID)
	require.EqualValues(t, 9002, unsent[1].NotificationID)
}

func TestNotificationRepository_DeliveryReceipts(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestOwner(t, db, 2001)
	repo := NewNotificationRepository(db)

	n := testNotification(owner.ID, 9001)
	_, err := repo.Upsert(n)
	require.NoError(t, err)

	receipt := &models.NotificationDelivery{
		NotificationID: n.NotificationID,
		OwnerID:        n.OwnerID,
		WebhookID:      "wh_abc",
		SentAt:         time.Now().UTC(),
	}
	require.NoError(t, repo.RecordDelivery(receipt))
	// duplicate receipts are a no-op
	require.NoError(t, repo.RecordDelivery(receipt))

	delivered, err := repo.DeliveredWebhookIDs(n.NotificationID, n.OwnerID)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"wh_abc": true}, delivered)
}
