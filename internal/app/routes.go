package app

import (
	"github.com/gorilla/mux"

	"github.com/creativespark/fablab-booking/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Bookings
	r.HandleFunc("/api/booking", deps.BookingHandler.Create).Methods("POST")
	r.HandleFunc("/api/booking/mine", deps.BookingHandler.GetMine).Methods("GET")
	r.HandleFunc("/api/booking/conflict", deps.BookingHandler.CheckConflict).Methods("GET")
	r.HandleFunc("/api/booking", deps.BookingHandler.GetForDate).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/booking", deps.BookingHandler.GetForWeek).Queries("week", "{week}").Methods("GET")
	r.HandleFunc("/api/booking/{bookingId}", deps.BookingHandler.GetByID).Methods("GET")
	r.HandleFunc("/api/booking/{bookingId}", deps.BookingHandler.Cancel).Methods("DELETE")

	// Equipment catalog
	r.HandleFunc("/api/equipment", deps.EquipmentHandler.List).Methods("GET")

	// Schedule
	r.HandleFunc("/api/schedule/slots", deps.ScheduleHandler.Slots).Methods("GET")
	r.HandleFunc("/api/schedule", deps.ScheduleHandler.Grid).Methods("GET")

	// Reporting (facilities manager only)
	r.HandleFunc("/api/stats/users", deps.StatsHandler.Users).Methods("GET")
	r.HandleFunc("/api/stats/equipment", deps.StatsHandler.Equipment).Methods("GET")
	r.HandleFunc("/api/stats/week", deps.StatsHandler.Week).Methods("GET")
	r.HandleFunc("/api/export/bookings", deps.StatsHandler.Export).Methods("GET")
}
