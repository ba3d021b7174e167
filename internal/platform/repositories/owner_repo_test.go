package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"structwatch/internal/platform/models"
)

// RecordSyncResult builds its column names from the category; verify the
// generated SQL hits the right lane.
func TestOwnerRepository_RecordSyncResultColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOwnerRepository(db)

	mock.ExpectExec(`UPDATE owners SET notifications_last_error = \? WHERE id = \?`).
		WithArgs(models.ErrorAuthExpired, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RecordSyncResult(7, models.CategoryNotifications, models.ErrorAuthExpired, nil))

	syncedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE owners SET forwarding_last_error = \?, forwarding_last_sync = \? WHERE id = \?`).
		WithArgs(models.ErrorNone, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RecordSyncResult(7, models.CategoryForwarding, models.ErrorNone, &syncedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerRepository_RecordSyncResultPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOwnerRepository(db)

	boom := errors.New("disk I/O error")
	mock.ExpectExec(`UPDATE owners SET structures_last_error = \? WHERE id = \?`).
		WillReturnError(boom)

	err = repo.RecordSyncResult(7, models.CategoryStructures, models.ErrorUnknown, nil)
	require.ErrorIs(t, err, boom)
}
