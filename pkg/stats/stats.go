package stats

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/creativespark/fablab-booking/internal/utils"
	"github.com/creativespark/fablab-booking/pkg/booking"
	"github.com/creativespark/fablab-booking/pkg/equipment"
	"github.com/creativespark/fablab-booking/pkg/schedule"
)

// UserStats summarizes one user's recent booking activity.
type UserStats struct {
	UserEmail    string  `json:"user_email"`
	MonthlyCount int     `json:"monthly_count"`
	MonthlyHours float64 `json:"monthly_hours"`
	AnnualCount  int     `json:"annual_count"`
	AnnualHours  float64 `json:"annual_hours"`
}

// EquipmentStats aggregates bookings per machine.
type EquipmentStats struct {
	EquipmentID   string  `json:"equipment_id"`
	EquipmentName string  `json:"equipment_name"`
	TotalBookings int     `json:"total_bookings"`
	TotalHours    float64 `json:"total_hours"`
	// Utilization is booked hours over bookable hours in the last 30 days.
	Utilization float64 `json:"utilization_30d"`
}

// Service computes reporting aggregates over the booking history.
type Service struct {
	bookings booking.Service
	catalog  *equipment.Catalog
	policy   *schedule.Policy
	clock    utils.Clock
}

func NewService(bookings booking.Service, catalog *equipment.Catalog, policy *schedule.Policy) *Service {
	return &Service{bookings: bookings, catalog: catalog, policy: policy, clock: utils.SystemClock{}}
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(clock utils.Clock) *Service {
	s.clock = clock
	return s
}

// UserStats counts the user's active bookings over 30-day and 365-day
// rolling windows ending today.
func (s *Service) UserStats(ctx context.Context, userEmail string) (UserStats, error) {
	all, err := s.bookings.GetUserBookings(ctx, userEmail)
	if err != nil {
		return UserStats{}, err
	}

	now := s.clock.Now()
	monthCutoff := now.AddDate(0, 0, -30)
	yearCutoff := now.AddDate(0, 0, -365)

	result := UserStats{UserEmail: userEmail}
	for _, b := range all {
		d, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		if d.After(now) || d.Before(yearCutoff) {
			continue
		}
		result.AnnualCount++
		result.AnnualHours += b.DurationHours
		if !d.Before(monthCutoff) {
			result.MonthlyCount++
			result.MonthlyHours += b.DurationHours
		}
	}
	return result, nil
}

// AllUserStats computes the rolling-window stats for every user that has at
// least one active booking, ordered by email.
func (s *Service) AllUserStats(ctx context.Context) ([]UserStats, error) {
	all, err := s.bookings.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	monthCutoff := now.AddDate(0, 0, -30)
	yearCutoff := now.AddDate(0, 0, -365)

	byEmail := make(map[string]*UserStats)
	for _, b := range all {
		d, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		st, ok := byEmail[b.UserEmail]
		if !ok {
			st = &UserStats{UserEmail: b.UserEmail}
			byEmail[b.UserEmail] = st
		}
		if d.After(now) || d.Before(yearCutoff) {
			continue
		}
		st.AnnualCount++
		st.AnnualHours += b.DurationHours
		if !d.Before(monthCutoff) {
			st.MonthlyCount++
			st.MonthlyHours += b.DurationHours
		}
	}

	result := make([]UserStats, 0, len(byEmail))
	for _, st := range byEmail {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserEmail < result[j].UserEmail })
	return result, nil
}

// EquipmentStats returns all-time totals per machine plus a 30-day
// utilization ratio against the bookable hours the operating rules allow.
func (s *Service) EquipmentStats(ctx context.Context) ([]EquipmentStats, error) {
	all, err := s.bookings.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	monthCutoff := now.AddDate(0, 0, -30)
	capacity := s.bookableHours(monthCutoff, now)

	byID := make(map[string]*EquipmentStats)
	result := make([]EquipmentStats, 0, len(s.catalog.List()))
	for _, eq := range s.catalog.List() {
		result = append(result, EquipmentStats{EquipmentID: eq.ID, EquipmentName: eq.Name})
	}
	for i := range result {
		byID[result[i].EquipmentID] = &result[i]
	}

	for _, b := range all {
		st, ok := byID[b.EquipmentID]
		if !ok {
			continue
		}
		st.TotalBookings++
		st.TotalHours += b.DurationHours

		if capacity <= 0 {
			continue
		}
		d, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		if !d.After(now) && !d.Before(monthCutoff) {
			st.Utilization += b.DurationHours / capacity
		}
	}
	return result, nil
}

// WeeklyOverview lists the active bookings of the week starting at startDate,
// ordered by date then start time.
func (s *Service) WeeklyOverview(ctx context.Context, startDate string) ([]booking.Booking, error) {
	week, err := s.bookings.GetForWeek(ctx, startDate)
	if err != nil {
		return nil, err
	}
	sort.Slice(week, func(i, j int) bool {
		if week[i].Date != week[j].Date {
			return week[i].Date < week[j].Date
		}
		if week[i].StartTime != week[j].StartTime {
			return week[i].StartTime < week[j].StartTime
		}
		return week[i].ID < week[j].ID
	})
	return week, nil
}

var csvHeader = []string{
	"id", "equipment_id", "equipment_name", "date", "start_time", "end_time",
	"duration_hours", "user_name", "user_email", "notes", "status",
	"created_at", "cancelled_at",
}

// ExportCSV writes the booking history as CSV, optionally including
// cancelled bookings.
func (s *Service) ExportCSV(ctx context.Context, includeCancelled bool, w io.Writer) error {
	all, err := s.bookings.GetAll(ctx, includeCancelled)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, b := range all {
		cancelledAt := ""
		if b.CancelledAt != nil {
			cancelledAt = b.CancelledAt.Format(time.RFC3339)
		}
		row := []string{
			b.ID, b.EquipmentID, b.EquipmentName, b.Date, b.StartTime, b.EndTime,
			strconv.FormatFloat(b.DurationHours, 'f', -1, 64),
			b.UserName, b.UserEmail, b.Notes, string(b.Status),
			b.CreatedAt.Format(time.RFC3339), cancelledAt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// bookableHours is the number of hours one machine can be booked between
// from and to, honoring operating days and hours.
func (s *Service) bookableHours(from, to time.Time) float64 {
	hoursPerDay := float64(s.policy.ClosingHour - s.policy.OpeningHour)
	var total float64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		open, err := s.policy.IsOperatingDay(d.Format("2006-01-02"))
		if err == nil && open {
			total += hoursPerDay
		}
	}
	return total
}
