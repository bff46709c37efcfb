package schedule

import (
	"encoding/json"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/creativespark/fablab-booking/internal/rest"
)

type SlotsDTO struct {
	OpeningHour int      `json:"opening_hour"`
	ClosingHour int      `json:"closing_hour"`
	Slots       []string `json:"slots"`
}

type DayScheduleDTO struct {
	Date  string               `json:"date"`
	Open  bool                 `json:"open"`
	Slots map[string]SlotState `json:"slots"`
}

type GridDTO struct {
	EquipmentID string           `json:"equipment_id"`
	From        string           `json:"from"`
	Days        int              `json:"days"`
	Schedule    []DayScheduleDTO `json:"schedule"`
}

type Handler struct {
	policy  *Policy
	service *Service
}

func NewHandler(policy *Policy, service *Service) *Handler {
	return &Handler{policy: policy, service: service}
}

// Slots returns the bookable time grid defined by the operating rules.
func (h *Handler) Slots(w http.ResponseWriter, _ *http.Request) {
	dto := SlotsDTO{
		OpeningHour: h.policy.OpeningHour,
		ClosingHour: h.policy.ClosingHour,
		Slots:       h.policy.Slots(),
	}
	writeJSON(w, http.StatusOK, dto)
}

// Grid returns per-slot availability for one equipment over a date range.
func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	equipmentID := r.URL.Query().Get("equipmentId")
	if equipmentID == "" {
		writeError(w, http.StatusBadRequest, "equipmentId is required")
		return
	}

	from, days := h.service.DefaultWindow()
	if v := r.URL.Query().Get("from"); v != "" {
		from = v
	}
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 90 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
			return
		}
		days = n
	}

	grid, err := h.service.Grid(r.Context(), equipmentID, from, days)
	if err != nil {
		log.WithError(err).Error("Failed to compute schedule grid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dto := GridDTO{EquipmentID: equipmentID, From: from, Days: days, Schedule: make([]DayScheduleDTO, 0, len(grid))}
	for _, day := range grid {
		open, _ := h.policy.IsOperatingDay(day.Date)
		dto.Schedule = append(dto.Schedule, DayScheduleDTO{Date: day.Date, Open: open, Slots: day.Slots})
	}
	writeJSON(w, http.StatusOK, dto)
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
