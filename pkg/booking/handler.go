package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/event_bus"
	"github.com/creativespark/fablab-booking/internal/rest"
	"github.com/creativespark/fablab-booking/pkg/user"
)

// BookingDTO mirrors the persisted record field-for-field on the API surface.
type BookingDTO struct {
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
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

type CreateBookingDTO struct {
	EquipmentID   string  `json:"equipment_id"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	DurationHours float64 `json:"duration_hours"`
	UserName      string  `json:"user_name"`
	UserEmail     string  `json:"user_email"`
	Notes         string  `json:"notes"`
}

type CreateBookingResponse struct {
	Booking  BookingDTO `json:"booking"`
	Warnings []string   `json:"warnings,omitempty"`
}

type ConflictDTO struct {
	Conflict bool `json:"conflict"`
}

// EquipmentResolver maps an equipment id to its display name. The engine
// denormalizes the name into the record at booking time.
type EquipmentResolver func(equipmentID string) (string, bool)

// SlotValidator is the caller-side operating-hours check performed before
// the engine is invoked.
type SlotValidator func(date, startTime string, durationHours float64) error

type Handler struct {
	service      Service
	bus          *event_bus.EventBus
	resolveName  EquipmentResolver
	validateSlot SlotValidator
}

func NewHandler(service Service, bus *event_bus.EventBus, resolveName EquipmentResolver, validateSlot SlotValidator) *Handler {
	return &Handler{service: service, bus: bus, resolveName: resolveName, validateSlot: validateSlot}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto CreateBookingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	// Fall back to the request identity when the body carries none.
	if dto.UserName == "" || dto.UserEmail == "" {
		if u, err := user.CurrentUser(r.Context()); err == nil {
			if dto.UserName == "" {
				dto.UserName = u.Name
			}
			if dto.UserEmail == "" {
				dto.UserEmail = u.Email
			}
		}
	}

	equipmentName, ok := h.resolveName(dto.EquipmentID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown equipment", dto.EquipmentID)
		return
	}
	if h.validateSlot != nil {
		if err := h.validateSlot(dto.Date, dto.StartTime, dto.DurationHours); err != nil {
			writeError(w, http.StatusBadRequest, "Slot not bookable", err.Error())
			return
		}
	}

	created, err := h.service.Create(r.Context(), CreateRequest{
		EquipmentID:   dto.EquipmentID,
		EquipmentName: equipmentName,
		Date:          dto.Date,
		StartTime:     dto.StartTime,
		DurationHours: dto.DurationHours,
		UserName:      dto.UserName,
		UserEmail:     dto.UserEmail,
		Notes:         dto.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := CreateBookingResponse{Booking: toDTO(created)}
	// Notification failures are non-fatal: the booking stands, the caller
	// just gets a warning.
	if err := h.bus.Publish(event_bus.NewEvent(r.Context(), event_bus.EventBookingCreated, event_bus.BookingCreated{
		BookingID:     created.ID,
		EquipmentID:   created.EquipmentID,
		EquipmentName: created.EquipmentName,
		Date:          created.Date,
		StartTime:     created.StartTime,
		EndTime:       created.EndTime,
		DurationHours: created.DurationHours,
		UserName:      created.UserName,
		UserEmail:     created.UserEmail,
		Notes:         created.Notes,
	})); err != nil {
		log.Warnf("booking %s created but notification failed: %v", created.ID, err)
		response.Warnings = append(response.Warnings, "email notification failed")
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID := mux.Vars(r)["bookingId"]

	cancelled, err := h.service.Cancel(r.Context(), bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if cancelled == nil {
		writeError(w, http.StatusNotFound, "Booking not found", bookingID)
		return
	}

	var cancelledAt time.Time
	if cancelled.CancelledAt != nil {
		cancelledAt = *cancelled.CancelledAt
	}
	if err := h.bus.Publish(event_bus.NewEvent(r.Context(), event_bus.EventBookingCancelled, event_bus.BookingCancelled{
		BookingID:     cancelled.ID,
		EquipmentID:   cancelled.EquipmentID,
		EquipmentName: cancelled.EquipmentName,
		Date:          cancelled.Date,
		StartTime:     cancelled.StartTime,
		UserEmail:     cancelled.UserEmail,
		CancelledAt:   cancelledAt,
	})); err != nil {
		log.Warnf("booking %s cancelled but event delivery failed: %v", cancelled.ID, err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	bookingID := mux.Vars(r)["bookingId"]

	b, err := h.service.GetByID(r.Context(), bookingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "Booking not found", bookingID)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(*b))
}

func (h *Handler) GetForDate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	date := r.URL.Query().Get("date")

	bookings, err := h.service.GetForDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(bookings))
}

func (h *Handler) GetForWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	startDate := r.URL.Query().Get("week")

	bookings, err := h.service.GetForWeek(r.Context(), startDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(bookings))
}

// GetMine lists the caller's own non-cancelled bookings, matched on the
// request identity rather than a query parameter.
func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	u, err := user.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusForbidden, "No user identity", "set the X-User-Name and X-User-Email headers")
		return
	}

	bookings, err := h.service.GetUserBookings(r.Context(), u.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(bookings))
}

func (h *Handler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()

	duration, err := strconv.ParseFloat(q.Get("duration"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid duration", "duration must be a number of hours")
		return
	}

	conflict, err := h.service.CheckConflict(r.Context(),
		q.Get("equipmentId"), q.Get("date"), q.Get("start"), duration, q.Get("exclude"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConflictDTO{Conflict: conflict})
}

func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "Validation failed", validationErr.Error())
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "Time slot already booked", "choose a different time")
	case errors.Is(err, ErrStorage):
		writeError(w, http.StatusInternalServerError, "Booking store unavailable", "")
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(b Booking) BookingDTO {
	return BookingDTO{
		ID:            b.ID,
		EquipmentID:   b.EquipmentID,
		EquipmentName: b.EquipmentName,
		Date:          b.Date,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		DurationHours: b.DurationHours,
		UserName:      b.UserName,
		UserEmail:     b.UserEmail,
		Notes:         b.Notes,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		CancelledAt:   b.CancelledAt,
	}
}

func toDTOs(bookings []Booking) []BookingDTO {
	dtos := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, toDTO(b))
	}
	return dtos
}
