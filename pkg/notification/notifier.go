package notification

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/config"
	"github.com/creativespark/fablab-booking/internal/event_bus"
)

// Notifier reacts to booking lifecycle events by emailing the user and the
// facilities manager.
type Notifier struct {
	sender  EmailSender
	manager config.Email
}

func NewNotifier(sender EmailSender, cfg config.Email) *Notifier {
	return &Notifier{sender: sender, manager: cfg}
}

// Register subscribes the notifier to the booking events on the bus.
func (n *Notifier) Register(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.EventBookingCreated, n.onBookingCreated)
	event_bus.SubscribeTyped(bus, event_bus.EventBookingCancelled, n.onBookingCancelled)
}

func (n *Notifier) onBookingCreated(e event_bus.EventT[event_bus.BookingCreated]) error {
	ctx := e.Context()
	payload := e.Data
	// The staff email is a schedule heads-up; the user's notes ride the
	// confirmation email only.
	staff := EmailRequest{
		EquipmentName: payload.EquipmentName,
		BookingDate:   payload.Date,
		BookingTime:   payload.StartTime,
		Duration:      payload.DurationHours,
		Recipient:     n.manager.FacilitiesManagerEmail,
		ProjectName:   "FabLab Staff Notification",
		ProjectID:     payload.BookingID,
		ClientName:    payload.UserName,
		IsStaffEmail:  true,
	}
	if err := n.sender.Send(ctx, staff); err != nil {
		return fmt.Errorf("staff notification: %w", err)
	}

	user := EmailRequest{
		EquipmentName: payload.EquipmentName,
		BookingDate:   payload.Date,
		BookingTime:   payload.StartTime,
		Duration:      payload.DurationHours,
		Recipient:     payload.UserEmail,
		ProjectName:   "FabLab User Confirmation",
		ProjectID:     payload.BookingID,
		ClientName:    payload.UserName,
		IsStaffEmail:  false,
		UserNotes:     payload.Notes,
	}
	if err := n.sender.Send(ctx, user); err != nil {
		return fmt.Errorf("user confirmation: %w", err)
	}

	log.WithFields(log.Fields{
		"bookingId": payload.BookingID,
		"recipient": payload.UserEmail,
	}).Info("Booking confirmation emails sent")
	return nil
}

func (n *Notifier) onBookingCancelled(e event_bus.EventT[event_bus.BookingCancelled]) error {
	ctx := e.Context()
	payload := e.Data
	req := EmailRequest{
		EquipmentName: payload.EquipmentName,
		BookingDate:   payload.Date,
		BookingTime:   payload.StartTime,
		Recipient:     n.manager.FacilitiesManagerEmail,
		ProjectName:   "FabLab Staff Notification",
		ProjectID:     payload.BookingID,
		ClientName:    payload.UserEmail,
		IsStaffEmail:  true,
		UserNotes:     "Booking cancelled",
	}
	if err := n.sender.Send(ctx, req); err != nil {
		return fmt.Errorf("cancellation notification: %w", err)
	}

	log.WithField("bookingId", payload.BookingID).Info("Cancellation email sent")
	return nil
}
