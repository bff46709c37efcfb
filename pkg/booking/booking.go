package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

const minutesPerDay = 24 * 60

// Booking is the sole persistent entity. The JSON tags are the durable
// storage contract, shared by the file store and the HTTP API.
type Booking struct {
	ID            string     `json:"id"`
	EquipmentID   string     `json:"equipment_id"`
	EquipmentName string     `json:"equipment_name"`
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	DurationHours float64    `json:"duration_hours"`
	UserName      string     `json:"user_name"`
	UserEmail     string     `json:"user_email"`
	Notes         string     `json:"notes"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

func (b Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// StartMinute returns the booking's start as minutes since midnight.
func (b Booking) StartMinute() (int, error) {
	return ParseClock(b.StartTime)
}

// EndMinute returns the booking's stored end as minutes since midnight.
func (b Booking) EndMinute() (int, error) {
	return ParseClock(b.EndTime)
}

// ParseClock converts a 24-hour "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return hour*60 + minute, nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationMinutes converts a duration in hours to whole minutes.
// Durations are multiples of 0.5h, so the conversion is exact.
func DurationMinutes(durationHours float64) int {
	return int(durationHours * 60)
}

// EndTime computes start + duration with minute precision. Bookings may not
// reach midnight: an end at or past 24:00 has no valid HH:MM representation.
func EndTime(startTime string, durationHours float64) (string, error) {
	startMin, err := ParseClock(startTime)
	if err != nil {
		return "", err
	}
	endMin := startMin + DurationMinutes(durationHours)
	if endMin >= minutesPerDay {
		return "", fmt.Errorf("booking from %s for %.1fh would cross midnight", startTime, durationHours)
	}
	return FormatClock(endMin), nil
}

// Overlaps reports whether the half-open minute intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
