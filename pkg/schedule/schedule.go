package schedule

import (
	"fmt"
	"time"

	"github.com/creativespark/fablab-booking/internal/config"
	"github.com/creativespark/fablab-booking/pkg/booking"
)

// Policy is the operating-hours and booking-duration policy. It belongs to
// the calling layer: time-slot choices are generated and validated here
// before the booking engine is ever invoked.
type Policy struct {
	OpeningHour        int
	ClosingHour        int
	operatingDays      map[string]bool
	MinDurationHours   float64
	MaxDurationHours   float64
	SlotIncrementHours float64
}

func NewPolicy(cfg config.Rules) *Policy {
	days := make(map[string]bool, len(cfg.OperatingDays))
	for _, d := range cfg.OperatingDays {
		days[d] = true
	}
	return &Policy{
		OpeningHour:        cfg.OpeningHour,
		ClosingHour:        cfg.ClosingHour,
		operatingDays:      days,
		MinDurationHours:   cfg.MinDurationHours,
		MaxDurationHours:   cfg.MaxDurationHours,
		SlotIncrementHours: cfg.SlotIncrementHours,
	}
}

// Slots generates the bookable start times between opening and closing, at
// the slot increment (e.g. 09:00, 09:30, ..., 16:30 for 9-17).
func (p *Policy) Slots() []string {
	increment := booking.DurationMinutes(p.SlotIncrementHours)
	if increment <= 0 {
		increment = 30
	}
	slots := make([]string, 0)
	for minute := p.OpeningHour * 60; minute < p.ClosingHour*60; minute += increment {
		slots = append(slots, booking.FormatClock(minute))
	}
	return slots
}

// IsOperatingDay reports whether the given calendar date falls on a weekday
// the facility is open.
func (p *Policy) IsOperatingDay(date string) (bool, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return p.operatingDays[d.Weekday().String()], nil
}

// ValidateBookable is the caller-side bounds check: the requested window must
// fall on an operating day, start on a slot boundary within opening hours,
// stay within the duration limits, and end by closing time.
func (p *Policy) ValidateBookable(date, startTime string, durationHours float64) error {
	open, err := p.IsOperatingDay(date)
	if err != nil {
		return err
	}
	if !open {
		return fmt.Errorf("%s is not an operating day", date)
	}

	startMin, err := booking.ParseClock(startTime)
	if err != nil {
		return err
	}
	if startMin < p.OpeningHour*60 || startMin >= p.ClosingHour*60 {
		return fmt.Errorf("start time %s is outside operating hours (%02d:00-%02d:00)",
			startTime, p.OpeningHour, p.ClosingHour)
	}
	if durationHours < p.MinDurationHours {
		return fmt.Errorf("duration must be at least %.1f hours", p.MinDurationHours)
	}
	if durationHours > p.MaxDurationHours {
		return fmt.Errorf("duration must be at most %.1f hours", p.MaxDurationHours)
	}
	if endMin := startMin + booking.DurationMinutes(durationHours); endMin > p.ClosingHour*60 {
		return fmt.Errorf("booking would end at %s, after closing time %02d:00",
			booking.FormatClock(endMin), p.ClosingHour)
	}
	return nil
}
