package booking

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/utils"
)

// CreateRequest carries everything needed to create a booking. The caller is
// expected to have validated operating-hours bounds already; the engine
// validates slot alignment, duration, identity, and the conflict invariant.
type CreateRequest struct {
	EquipmentID   string
	EquipmentName string
	Date          string
	StartTime     string
	DurationHours float64
	UserName      string
	UserEmail     string
	Notes         string
}

// MaxDurationProvider resolves an equipment id to its configured maximum
// booking duration in hours. The second return is false for unknown ids.
type MaxDurationProvider func(equipmentID string) (float64, bool)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Booking, error)
	CheckConflict(ctx context.Context, equipmentID, date, startTime string, durationHours float64, excludeBookingID string) (bool, error)
	Cancel(ctx context.Context, bookingID string) (*Booking, error)
	GetByID(ctx context.Context, bookingID string) (*Booking, error)
	GetForDate(ctx context.Context, date string) ([]Booking, error)
	GetForWeek(ctx context.Context, startDate string) ([]Booking, error)
	GetUserBookings(ctx context.Context, userEmail string) ([]Booking, error)
	GetAll(ctx context.Context, includeCancelled bool) ([]Booking, error)
}

type ServiceImpl struct {
	repo        Repository
	clock       utils.Clock
	maxDuration MaxDurationProvider
	globalMax   float64

	// mu serializes all mutating operations so the conflict check and the
	// append it guards can never interleave with another writer.
	mu sync.Mutex
}

func NewService(repo Repository, maxDuration MaxDurationProvider, globalMaxHours float64) *ServiceImpl {
	return &ServiceImpl{
		repo:        repo,
		clock:       utils.SystemClock{},
		maxDuration: maxDuration,
		globalMax:   globalMaxHours,
	}
}

// Create validates the request, checks for conflicts, and persists the new
// booking, all under the single-writer lock. Conflicting requests fail with
// ErrConflict and leave no state behind.
func (s *ServiceImpl) Create(ctx context.Context, req CreateRequest) (Booking, error) {
	if err := s.validate(req); err != nil {
		return Booking{}, err
	}
	endTime, err := EndTime(req.StartTime, req.DurationHours)
	if err != nil {
		return Booking{}, &ValidationError{Field: "duration_hours", Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conflict, err := s.checkConflictLocked(ctx, req.EquipmentID, req.Date, req.StartTime, req.DurationHours, "")
	if err != nil {
		return Booking{}, err
	}
	if conflict {
		return Booking{}, ErrConflict
	}

	b := Booking{
		EquipmentID:   req.EquipmentID,
		EquipmentName: req.EquipmentName,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       endTime,
		DurationHours: req.DurationHours,
		UserName:      req.UserName,
		UserEmail:     req.UserEmail,
		Notes:         req.Notes,
		Status:        StatusConfirmed,
		CreatedAt:     s.clock.Now(),
	}
	stored, err := s.repo.Store(ctx, b)
	if err != nil {
		return Booking{}, err
	}
	log.Infof("Created booking %s: %s on %s %s-%s for %s",
		stored.ID, stored.EquipmentID, stored.Date, stored.StartTime, stored.EndTime, stored.UserEmail)
	return stored, nil
}

// CheckConflict reports whether the candidate interval overlaps any
// non-cancelled booking for the same equipment and date. Pure read.
func (s *ServiceImpl) CheckConflict(ctx context.Context, equipmentID, date, startTime string, durationHours float64, excludeBookingID string) (bool, error) {
	return s.checkConflictLocked(ctx, equipmentID, date, startTime, durationHours, excludeBookingID)
}

func (s *ServiceImpl) checkConflictLocked(ctx context.Context, equipmentID, date, startTime string, durationHours float64, excludeBookingID string) (bool, error) {
	startMin, err := ParseClock(startTime)
	if err != nil {
		return false, &ValidationError{Field: "start_time", Reason: err.Error()}
	}
	endMin := startMin + DurationMinutes(durationHours)

	existing, err := s.repo.FindActiveForEquipmentAndDate(ctx, equipmentID, date)
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if excludeBookingID != "" && b.ID == excludeBookingID {
			continue
		}
		bStart, err := b.StartMinute()
		if err != nil {
			return false, fmt.Errorf("stored booking %s has invalid start_time: %w", b.ID, err)
		}
		bEnd, err := b.EndMinute()
		if err != nil {
			return false, fmt.Errorf("stored booking %s has invalid end_time: %w", b.ID, err)
		}
		if Overlaps(startMin, endMin, bStart, bEnd) {
			return true, nil
		}
	}
	return false, nil
}

// Cancel marks the booking cancelled and returns the updated record, or nil
// if no booking has that id. Cancelling twice refreshes cancelled_at and
// still succeeds; there is no un-cancel.
func (s *ServiceImpl) Cancel(ctx context.Context, bookingID string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.repo.Cancel(ctx, bookingID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !found {
		log.Debugf("Cancel requested for unknown booking %s", bookingID)
		return nil, nil
	}
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	log.Infof("Cancelled booking %s", bookingID)
	return b, nil
}

func (s *ServiceImpl) GetByID(ctx context.Context, bookingID string) (*Booking, error) {
	return s.repo.FindByID(ctx, bookingID)
}

func (s *ServiceImpl) GetForDate(ctx context.Context, date string) ([]Booking, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	return s.repo.FindActiveForDate(ctx, date)
}

// GetForWeek returns every non-cancelled booking whose date falls within
// [startDate, startDate+7d), compared at calendar-date precision.
func (s *ServiceImpl) GetForWeek(ctx context.Context, startDate string) ([]Booking, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	end := start.AddDate(0, 0, 7).Format("2006-01-02")
	return s.repo.FindActiveForDateRange(ctx, startDate, end)
}

func (s *ServiceImpl) GetUserBookings(ctx context.Context, userEmail string) ([]Booking, error) {
	return s.repo.FindActiveForUser(ctx, userEmail)
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeCancelled bool) ([]Booking, error) {
	return s.repo.FindAll(ctx, includeCancelled)
}

func (s *ServiceImpl) validate(req CreateRequest) error {
	if req.EquipmentID == "" {
		return validationErr("equipment_id", "must not be empty")
	}
	if req.EquipmentName == "" {
		return validationErr("equipment_name", "must not be empty")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return validationErr("date", "expected YYYY-MM-DD")
	}
	startMin, err := ParseClock(req.StartTime)
	if err != nil {
		return validationErr("start_time", "%v", err)
	}
	if startMin%30 != 0 {
		return validationErr("start_time", "must align to a 30-minute boundary")
	}
	if req.DurationHours <= 0 {
		return validationErr("duration_hours", "must be positive")
	}
	if !isHalfHourMultiple(req.DurationHours) {
		return validationErr("duration_hours", "must be a multiple of 0.5")
	}
	if s.globalMax > 0 && req.DurationHours > s.globalMax {
		return validationErr("duration_hours", "exceeds the maximum of %.1f hours", s.globalMax)
	}
	if s.maxDuration != nil {
		max, ok := s.maxDuration(req.EquipmentID)
		if !ok {
			return validationErr("equipment_id", "unknown equipment %q", req.EquipmentID)
		}
		if req.DurationHours > max {
			return validationErr("duration_hours", "exceeds the equipment maximum of %.1f hours", max)
		}
	}
	if req.UserName == "" {
		return validationErr("user_name", "must not be empty")
	}
	if req.UserEmail == "" {
		return validationErr("user_email", "must not be empty")
	}
	if !isLooselyValidEmail(req.UserEmail) {
		return validationErr("user_email", "must contain '@' and '.'")
	}
	return nil
}

func isHalfHourMultiple(hours float64) bool {
	scaled := hours * 2
	return scaled == math.Trunc(scaled)
}

// isLooselyValidEmail applies the original system's check: "@" and "." must
// both be present. Anything stricter belongs to the caller.
func isLooselyValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}
