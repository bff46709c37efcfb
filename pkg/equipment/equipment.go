package equipment

import "github.com/creativespark/fablab-booking/internal/config"

// Equipment is one machine from the static catalog.
type Equipment struct {
	ID               string
	Name             string
	Description      string
	Color            string
	MaxDurationHours float64
	Icon             string
}

// Catalog is the ordered, config-loaded equipment list. It never changes at
// runtime; bookings denormalize the display name at creation time.
type Catalog struct {
	items []Equipment
	byID  map[string]Equipment
}

func NewCatalog(cfg []config.Equipment) *Catalog {
	items := make([]Equipment, 0, len(cfg))
	byID := make(map[string]Equipment, len(cfg))
	for _, e := range cfg {
		item := Equipment{
			ID:               e.ID,
			Name:             e.Name,
			Description:      e.Description,
			Color:            e.Color,
			MaxDurationHours: e.MaxDurationHours,
			Icon:             e.Icon,
		}
		items = append(items, item)
		byID[item.ID] = item
	}
	return &Catalog{items: items, byID: byID}
}

// List returns the catalog in configuration order.
func (c *Catalog) List() []Equipment {
	return append([]Equipment{}, c.items...)
}

func (c *Catalog) Get(id string) (Equipment, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// NameFor resolves an equipment id to its display name.
func (c *Catalog) NameFor(id string) (string, bool) {
	e, ok := c.byID[id]
	return e.Name, ok
}

// MaxDurationFor resolves an equipment id to its maximum booking duration.
func (c *Catalog) MaxDurationFor(id string) (float64, bool) {
	e, ok := c.byID[id]
	return e.MaxDurationHours, ok
}
