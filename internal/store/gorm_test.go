package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zaqqye/room_console/internal/models"
)

func setupGormStore(t *testing.T) (sqlmock.Sqlmock, *GormRoomStore, *LocalFeed) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	feed := NewLocalFeed()
	return mock, NewGormRoomStore(db, feed, zap.NewNop()), feed
}

func TestGormStore_ListOrdersNewestFirst(t *testing.T) {
	mock, s, _ := setupGormStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "room", "admin", "expire", "camera_id", "created_at"}).
		AddRow("b", "B202", "Somchai", "18:00", "", now).
		AddRow("a", "A101", "Malee", "17:00", "cam-1", now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT \* FROM "rooms" ORDER BY created_at DESC`).WillReturnRows(rows)

	rooms, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "B202", rooms[0].Room)
	assert.Equal(t, "cam-1", rooms[1].CameraID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteNotifiesFeed(t *testing.T) {
	mock, s, feed := setupGormStore(t)
	changes, stop := feed.Listen()
	defer stop()

	id := uuid.NewString()
	mock.ExpectExec(`DELETE FROM "rooms" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), id))
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteMissing(t *testing.T) {
	mock, s, _ := setupGormStore(t)

	id := uuid.NewString()
	mock.ExpectExec(`DELETE FROM "rooms" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteMalformedID(t *testing.T) {
	mock, s, _ := setupGormStore(t)

	err := s.Delete(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AddLeavesCreatedAtToDatabase(t *testing.T) {
	mock, s, feed := setupGormStore(t)
	changes, stop := feed.Listen()
	defer stop()

	stamp := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO "rooms" \("id","room","admin","expire","camera_id"\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING "created_at"`).
		WithArgs(sqlmock.AnyArg(), "A101", "Somchai", "17:00", "cam-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(stamp))

	room, err := s.Add(context.Background(), models.NewRoom{Room: "A101", Admin: "Somchai", Expire: "17:00", CameraID: "cam-1"})
	require.NoError(t, err)
	_, parseErr := uuid.Parse(room.ID)
	assert.NoError(t, parseErr)
	assert.True(t, stamp.Equal(room.CreatedAt))
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AddFailureDoesNotNotify(t *testing.T) {
	mock, s, feed := setupGormStore(t)
	changes, stop := feed.Listen()
	defer stop()

	mock.ExpectQuery(`INSERT INTO "rooms"`).WillReturnError(errors.New("connection reset"))

	_, err := s.Add(context.Background(), models.NewRoom{Room: "A101", Admin: "Somchai", Expire: "17:00"})
	require.Error(t, err)
	select {
	case <-changes:
		t.Fatal("failed write must not notify")
	case <-time.After(50 * time.Millisecond):
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
