package stats

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/rest"
	"github.com/creativespark/fablab-booking/internal/utils"
	"github.com/creativespark/fablab-booking/pkg/booking"
	"github.com/creativespark/fablab-booking/pkg/user"
)

// Handler serves the admin reporting endpoints. Every route is gated on the
// caller being the facilities manager.
type Handler struct {
	service    *Service
	adminEmail string
	clock      utils.Clock
}

func NewHandler(service *Service, adminEmail string) *Handler {
	return &Handler{service: service, adminEmail: adminEmail, clock: utils.SystemClock{}}
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	u, err := user.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusForbidden, "identity required")
		return false
	}
	if u.Email != h.adminEmail {
		log.WithField("email", u.Email).Warn("Non-admin attempted to access reporting")
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

// Users returns booking activity per user.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	result, err := h.service.AllUserStats(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to compute user stats")
		writeError(w, http.StatusInternalServerError, "failed to compute user stats")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Equipment returns totals and 30-day utilization per machine.
func (h *Handler) Equipment(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	result, err := h.service.EquipmentStats(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to compute equipment stats")
		writeError(w, http.StatusInternalServerError, "failed to compute equipment stats")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Week returns the weekly overview starting at ?date= (default today).
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.clock.Now().Format("2006-01-02")
	}
	result, err := h.service.WeeklyOverview(r.Context(), date)
	if err != nil {
		var vErr *booking.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.WithError(err).Error("Failed to compute weekly overview")
		writeError(w, http.StatusInternalServerError, "failed to compute weekly overview")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Export streams the booking history as a CSV download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	includeCancelled := r.URL.Query().Get("includeCancelled") == "true"

	w.Header().Set("Content-Type", "text/csv")
	filename := "bookings-" + h.clock.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.service.ExportCSV(r.Context(), includeCancelled, w); err != nil {
		log.WithError(err).Error("Failed to export bookings")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message})
}
