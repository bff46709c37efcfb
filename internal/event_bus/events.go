package event_bus

import "time"

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingCancelled EventType = "booking.cancelled"
)

// BookingCreated carries enough of the booking record for notification and
// audit subscribers without reaching back into the store.
type BookingCreated struct {
	BookingID     string
	EquipmentID   string
	EquipmentName string
	Date          string
	StartTime     string
	EndTime       string
	DurationHours float64
	UserName      string
	UserEmail     string
	Notes         string
}

type BookingCancelled struct {
	BookingID     string
	EquipmentID   string
	EquipmentName string
	Date          string
	StartTime     string
	UserEmail     string
	CancelledAt   time.Time
}
