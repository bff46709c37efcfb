package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creativespark/fablab-booking/pkg/booking"
)

type stubBookingSource struct {
	byDate map[string][]booking.Booking
	err    error
}

func (s *stubBookingSource) GetForDate(_ context.Context, date string) ([]booking.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byDate[date], nil
}

func TestService_Grid(t *testing.T) {
	ctx := context.Background()
	policy := NewPolicy(weekdayRules())
	source := &stubBookingSource{byDate: map[string][]booking.Booking{
		// Monday: laser booked 10:00-11:30.
		"2024-06-10": {
			{ID: "BK0001", EquipmentID: "laser_cutter", Date: "2024-06-10", StartTime: "10:00", EndTime: "11:30"},
			{ID: "BK0002", EquipmentID: "resin_printer", Date: "2024-06-10", StartTime: "13:00", EndTime: "14:00"},
		},
	}}
	svc := NewService(policy, source)

	// Monday through Saturday.
	grid, err := svc.Grid(ctx, "laser_cutter", "2024-06-10", 6)
	require.NoError(t, err)
	require.Len(t, grid, 6)

	monday := grid[0]
	assert.Equal(t, "2024-06-10", monday.Date)
	assert.Equal(t, SlotAvailable, monday.Slots["09:30"])
	assert.Equal(t, SlotBooked, monday.Slots["10:00"])
	assert.Equal(t, SlotBooked, monday.Slots["10:30"])
	assert.Equal(t, SlotBooked, monday.Slots["11:00"])
	// The booking ends at 11:30, so that slot is free again.
	assert.Equal(t, SlotAvailable, monday.Slots["11:30"])
	// The resin printer booking does not block the laser cutter.
	assert.Equal(t, SlotAvailable, monday.Slots["13:00"])

	tuesday := grid[1]
	assert.Equal(t, "2024-06-11", tuesday.Date)
	assert.Equal(t, SlotAvailable, tuesday.Slots["10:00"])

	saturday := grid[5]
	assert.Equal(t, "2024-06-15", saturday.Date)
	for slot, state := range saturday.Slots {
		assert.Equalf(t, SlotClosed, state, "saturday slot %s", slot)
	}
}

func TestService_Grid_SourceErrorPropagates(t *testing.T) {
	ctx := context.Background()
	policy := NewPolicy(weekdayRules())
	source := &stubBookingSource{err: errors.New("store down")}
	svc := NewService(policy, source)

	_, err := svc.Grid(ctx, "laser_cutter", "2024-06-10", 1)
	assert.Error(t, err)
}

func TestService_Grid_RejectsBadDate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewPolicy(weekdayRules()), &stubBookingSource{})

	_, err := svc.Grid(ctx, "laser_cutter", "June 10", 7)
	assert.Error(t, err)
}
