package equipment

import (
	"encoding/json"
	"net/http"
)

type EquipmentDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Color            string  `json:"color"`
	MaxDurationHours float64 `json:"max_duration_hours"`
	Icon             string  `json:"icon"`
}

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	items := h.catalog.List()
	dtos := make([]EquipmentDTO, 0, len(items))
	for _, e := range items {
		dtos = append(dtos, EquipmentDTO{
			ID:               e.ID,
			Name:             e.Name,
			Description:      e.Description,
			Color:            e.Color,
			MaxDurationHours: e.MaxDurationHours,
			Icon:             e.Icon,
		})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
