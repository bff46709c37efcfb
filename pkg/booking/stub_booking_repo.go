package booking

import (
	"context"
	"time"
)

// StubBookingRepo is an in-memory Repository for service tests. It can be
// primed to fail to exercise storage error propagation.
type StubBookingRepo struct {
	nextID   int
	bookings []Booking
	failWith error
}

func NewStubBookingRepo() *StubBookingRepo {
	return &StubBookingRepo{nextID: 1, bookings: []Booking{}}
}

func (s *StubBookingRepo) FailWith(err error) {
	s.failWith = err
}

func (s *StubBookingRepo) Store(ctx context.Context, b Booking) (Booking, error) {
	if s.failWith != nil {
		return Booking{}, s.failWith
	}
	b.ID = FormatBookingID(s.nextID)
	s.nextID++
	s.bookings = append(s.bookings, b)
	return b, nil
}

func (s *StubBookingRepo) FindByID(ctx context.Context, id string) (*Booking, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, b := range s.bookings {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubBookingRepo) FindActiveForEquipmentAndDate(ctx context.Context, equipmentID, date string) ([]Booking, error) {
	return s.filterActive(func(b Booking) bool {
		return b.EquipmentID == equipmentID && b.Date == date
	})
}

func (s *StubBookingRepo) FindActiveForDate(ctx context.Context, date string) ([]Booking, error) {
	return s.filterActive(func(b Booking) bool {
		return b.Date == date
	})
}

func (s *StubBookingRepo) FindActiveForDateRange(ctx context.Context, fromDate, toDateExclusive string) ([]Booking, error) {
	return s.filterActive(func(b Booking) bool {
		return b.Date >= fromDate && b.Date < toDateExclusive
	})
}

func (s *StubBookingRepo) FindActiveForUser(ctx context.Context, userEmail string) ([]Booking, error) {
	return s.filterActive(func(b Booking) bool {
		return b.UserEmail == userEmail
	})
}

func (s *StubBookingRepo) FindAll(ctx context.Context, includeCancelled bool) ([]Booking, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if includeCancelled {
		return append([]Booking{}, s.bookings...), nil
	}
	return s.filterActive(func(Booking) bool { return true })
}

func (s *StubBookingRepo) Cancel(ctx context.Context, id string, cancelledAt time.Time) (bool, error) {
	if s.failWith != nil {
		return false, s.failWith
	}
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = StatusCancelled
			t := cancelledAt
			s.bookings[i].CancelledAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (s *StubBookingRepo) filterActive(keep func(Booking) bool) ([]Booking, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	matched := make([]Booking, 0)
	for _, b := range s.bookings {
		if !b.IsCancelled() && keep(b) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (s *StubBookingRepo) Reset() {
	s.nextID = 1
	s.bookings = []Booking{}
	s.failWith = nil
}
