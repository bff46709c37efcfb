package schedule

import (
	"context"
	"time"

	"github.com/creativespark/fablab-booking/internal/utils"
	"github.com/creativespark/fablab-booking/pkg/booking"
)

type SlotState string

const (
	SlotAvailable SlotState = "available"
	SlotBooked    SlotState = "booked"
	SlotClosed    SlotState = "closed"
)

// DaySchedule is the state of every slot of one equipment on one date.
type DaySchedule struct {
	Date  string
	Slots map[string]SlotState
}

// BookingSource is the subset of the booking engine the grid needs.
type BookingSource interface {
	GetForDate(ctx context.Context, date string) ([]booking.Booking, error)
}

// Service renders the calendar grid the booking UI displays: for each date in
// a range, the availability of every slot of a given equipment.
type Service struct {
	policy   *Policy
	bookings BookingSource
	clock    utils.Clock
}

func NewService(policy *Policy, bookings BookingSource) *Service {
	return &Service{policy: policy, bookings: bookings, clock: utils.SystemClock{}}
}

// Grid computes the slot states for equipmentID over days consecutive dates
// starting at fromDate.
func (s *Service) Grid(ctx context.Context, equipmentID, fromDate string, days int) ([]DaySchedule, error) {
	start, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return nil, err
	}

	slots := s.policy.Slots()
	grid := make([]DaySchedule, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		day := DaySchedule{Date: date, Slots: make(map[string]SlotState, len(slots))}

		open, err := s.policy.IsOperatingDay(date)
		if err != nil {
			return nil, err
		}
		if !open {
			for _, slot := range slots {
				day.Slots[slot] = SlotClosed
			}
			grid = append(grid, day)
			continue
		}

		dayBookings, err := s.bookings.GetForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			day.Slots[slot] = SlotAvailable
			slotMin, err := booking.ParseClock(slot)
			if err != nil {
				return nil, err
			}
			for _, b := range dayBookings {
				if b.EquipmentID != equipmentID {
					continue
				}
				booked, err := coversSlot(b, slotMin)
				if err != nil {
					return nil, err
				}
				if booked {
					day.Slots[slot] = SlotBooked
					break
				}
			}
		}
		grid = append(grid, day)
	}
	return grid, nil
}

// DefaultWindow returns today's date and the original two-week lookahead.
func (s *Service) DefaultWindow() (string, int) {
	return s.clock.Now().Format("2006-01-02"), 14
}

// coversSlot reports whether the slot's start instant falls inside the
// booking's half-open interval.
func coversSlot(b booking.Booking, slotMin int) (bool, error) {
	startMin, err := b.StartMinute()
	if err != nil {
		return false, err
	}
	endMin, err := b.EndMinute()
	if err != nil {
		return false, err
	}
	return startMin <= slotMin && slotMin < endMin, nil
}
