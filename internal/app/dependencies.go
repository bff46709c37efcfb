package app

import (
	"database/sql"

	"github.com/creativespark/fablab-booking/internal/audit"
	"github.com/creativespark/fablab-booking/internal/config"
	"github.com/creativespark/fablab-booking/internal/event_bus"
	"github.com/creativespark/fablab-booking/pkg/booking"
	"github.com/creativespark/fablab-booking/pkg/equipment"
	"github.com/creativespark/fablab-booking/pkg/notification"
	"github.com/creativespark/fablab-booking/pkg/schedule"
	"github.com/creativespark/fablab-booking/pkg/stats"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	Catalog          *equipment.Catalog
	EquipmentHandler *equipment.Handler

	Policy          *schedule.Policy
	ScheduleService *schedule.Service
	ScheduleHandler *schedule.Handler

	BookingRepo    booking.Repository
	BookingService booking.Service
	BookingHandler *booking.Handler

	EmailSender notification.EmailSender
	Notifier    *notification.Notifier

	StatsService *stats.Service
	StatsHandler *stats.Handler
}

// BuildDependencies initializes and wires all application services and
// handlers. db is nil when the file storage driver is active.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()

	deps.Catalog = equipment.NewCatalog(cfg.Equipment)
	deps.EquipmentHandler = equipment.NewHandler(deps.Catalog)

	deps.Policy = schedule.NewPolicy(cfg.Rules)

	if cfg.Storage.Driver == "file" {
		repo, err := booking.NewFileRepository(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		deps.BookingRepo = repo
	} else {
		deps.BookingRepo = booking.NewSQLRepository(db)
	}
	deps.BookingService = booking.NewService(deps.BookingRepo, deps.Catalog.MaxDurationFor, cfg.Rules.MaxDurationHours)
	deps.BookingHandler = booking.NewHandler(deps.BookingService, deps.Bus, deps.Catalog.NameFor, deps.Policy.ValidateBookable)

	deps.ScheduleService = schedule.NewService(deps.Policy, deps.BookingService)
	deps.ScheduleHandler = schedule.NewHandler(deps.Policy, deps.ScheduleService)

	if cfg.Email.Enabled {
		deps.EmailSender = notification.NewHTTPSender(cfg.Email)
	} else {
		deps.EmailSender = notification.NoopSender{}
	}
	deps.Notifier = notification.NewNotifier(deps.EmailSender, cfg.Email)
	deps.Notifier.Register(deps.Bus)
	audit.Register(deps.Bus)

	deps.StatsService = stats.NewService(deps.BookingService, deps.Catalog, deps.Policy)
	deps.StatsHandler = stats.NewHandler(deps.StatsService, cfg.Email.FacilitiesManagerEmail)

	return deps, nil
}
