package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativespark/fablab-booking/internal/test_utils"
)

func storedBooking(date, startTime, endTime string) Booking {
	return Booking{
		EquipmentID:   "laser_cutter",
		EquipmentName: "Laser Cutter",
		Date:          date,
		StartTime:     startTime,
		EndTime:       endTime,
		DurationHours: 1.0,
		UserName:      "Alice Murphy",
		UserEmail:     "alice@example.com",
		Notes:         "cutting birch ply",
		Status:        StatusConfirmed,
		CreatedAt:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLRepository_StoreAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	first, err := repo.Store(ctx, storedBooking("2024-06-10", "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, "BK0001", first.ID)

	second, err := repo.Store(ctx, storedBooking("2024-06-10", "11:00", "12:00"))
	require.NoError(t, err)
	assert.Equal(t, "BK0002", second.ID)
}

func TestSQLRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	original := storedBooking("2024-06-10", "10:00", "11:00")
	stored, err := repo.Store(ctx, original)
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, stored.ID, loaded.ID)
	assert.Equal(t, original.EquipmentID, loaded.EquipmentID)
	assert.Equal(t, original.EquipmentName, loaded.EquipmentName)
	assert.Equal(t, original.Date, loaded.Date)
	assert.Equal(t, original.StartTime, loaded.StartTime)
	assert.Equal(t, original.EndTime, loaded.EndTime)
	assert.Equal(t, original.DurationHours, loaded.DurationHours)
	assert.Equal(t, original.UserName, loaded.UserName)
	assert.Equal(t, original.UserEmail, loaded.UserEmail)
	assert.Equal(t, original.Notes, loaded.Notes)
	assert.Equal(t, original.Status, loaded.Status)
	assert.True(t, original.CreatedAt.Equal(loaded.CreatedAt))
	assert.Nil(t, loaded.CancelledAt)
}

func TestSQLRepository_FindByID_Unknown(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	loaded, err := repo.FindByID(ctx, "BK9999")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLRepository_ActiveQueriesExcludeCancelled(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	kept, err := repo.Store(ctx, storedBooking("2024-06-10", "10:00", "11:00"))
	require.NoError(t, err)
	dropped, err := repo.Store(ctx, storedBooking("2024-06-10", "12:00", "13:00"))
	require.NoError(t, err)

	found, err := repo.Cancel(ctx, dropped.ID, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, found)

	forDay, err := repo.FindActiveForDate(ctx, "2024-06-10")
	require.NoError(t, err)
	require.Len(t, forDay, 1)
	assert.Equal(t, kept.ID, forDay[0].ID)

	forEquipment, err := repo.FindActiveForEquipmentAndDate(ctx, "laser_cutter", "2024-06-10")
	require.NoError(t, err)
	require.Len(t, forEquipment, 1)

	forUser, err := repo.FindActiveForUser(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, forUser, 1)

	// The cancelled booking stays reachable by id and in the full history.
	byID, err := repo.FindByID(ctx, dropped.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, StatusCancelled, byID.Status)
	require.NotNil(t, byID.CancelledAt)

	all, err := repo.FindAll(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repo.FindAll(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSQLRepository_FindActiveForDateRange(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	for _, date := range []string{"2024-06-09", "2024-06-10", "2024-06-16", "2024-06-17"} {
		_, err := repo.Store(ctx, storedBooking(date, "10:00", "11:00"))
		require.NoError(t, err)
	}

	week, err := repo.FindActiveForDateRange(ctx, "2024-06-10", "2024-06-17")
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, "2024-06-10", week[0].Date)
	assert.Equal(t, "2024-06-16", week[1].Date)
}

func TestSQLRepository_CounterSurvivesCancellation(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	first, err := repo.Store(ctx, storedBooking("2024-06-10", "10:00", "11:00"))
	require.NoError(t, err)

	_, err = repo.Cancel(ctx, first.ID, time.Now())
	require.NoError(t, err)

	// Ids are never reused, even after the only booking is cancelled.
	second, err := repo.Store(ctx, storedBooking("2024-06-10", "10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, "BK0002", second.ID)
}

func TestSQLRepository_Cancel_Unknown(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepository(test_utils.SetupTestDB(t))

	found, err := repo.Cancel(ctx, "BK9999", time.Now())
	require.NoError(t, err)
	assert.False(t, found)
}
