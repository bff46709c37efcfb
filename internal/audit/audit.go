// Package audit records booking lifecycle events to the structured log so
// operators have a trail independent of the database.
package audit

import (
	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/event_bus"
)

// Register attaches the audit log handlers to the bus.
func Register(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.EventBookingCreated, onCreated)
	event_bus.SubscribeTyped(bus, event_bus.EventBookingCancelled, onCancelled)
}

func onCreated(e event_bus.EventT[event_bus.BookingCreated]) error {
	p := e.Data
	log.WithFields(log.Fields{
		"event":     string(e.Type),
		"bookingId": p.BookingID,
		"equipment": p.EquipmentID,
		"date":      p.Date,
		"start":     p.StartTime,
		"end":       p.EndTime,
		"user":      p.UserEmail,
	}).Info("Booking created")
	return nil
}

func onCancelled(e event_bus.EventT[event_bus.BookingCancelled]) error {
	p := e.Data
	log.WithFields(log.Fields{
		"event":       string(e.Type),
		"bookingId":   p.BookingID,
		"equipment":   p.EquipmentID,
		"date":        p.Date,
		"user":        p.UserEmail,
		"cancelledAt": p.CancelledAt,
	}).Info("Booking cancelled")
	return nil
}
