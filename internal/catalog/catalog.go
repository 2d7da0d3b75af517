// Package catalog holds the static list of trackable maintenance task
// types. The catalog is immutable configuration, injected where needed
// so tests can substitute their own item lists.
package catalog

import (
	"fmt"
	"strings"
)

// Item is one trackable maintenance task type. At least one of
// IntervalKm / IntervalMonths must be set.
type Item struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	IntervalKm     float64  `json:"interval_km,omitempty"`
	IntervalMonths int      `json:"interval_months,omitempty"`
	Keywords       []string `json:"keywords"`
	TemplateID     string   `json:"template_id"`
}

// HasKm reports whether the item has a distance interval.
func (i Item) HasKm() bool { return i.IntervalKm > 0 }

// HasMonths reports whether the item has a time interval.
func (i Item) HasMonths() bool { return i.IntervalMonths > 0 }

// MatchesTitle reports whether a free-text maintenance title refers to
// this task type, by case-insensitive substring match on the keywords.
func (i Item) MatchesTitle(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range i.Keywords {
		if kw != "" && strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Catalog is an immutable set of items, in display order.
type Catalog struct {
	items []Item
	byID  map[string]Item
}

// New builds a catalog, rejecting malformed items.
func New(items []Item) (Catalog, error) {
	byID := make(map[string]Item, len(items))
	for _, it := range items {
		if it.ID == "" {
			return Catalog{}, fmt.Errorf("catalog item %q: missing id", it.Title)
		}
		if !it.HasKm() && !it.HasMonths() {
			return Catalog{}, fmt.Errorf("catalog item %q: interval has neither km nor months", it.ID)
		}
		if _, dup := byID[it.ID]; dup {
			return Catalog{}, fmt.Errorf("catalog item %q: duplicate id", it.ID)
		}
		byID[it.ID] = it
	}
	out := make([]Item, len(items))
	copy(out, items)
	return Catalog{items: out, byID: byID}, nil
}

// Items returns the catalog items in display order.
func (c Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Find looks up an item by id.
func (c Catalog) Find(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// MatchTitle classifies a free-text maintenance title against the
// catalog. The first item in catalog order whose keywords match wins.
func (c Catalog) MatchTitle(title string) (Item, bool) {
	for _, it := range c.items {
		if it.MatchesTitle(title) {
			return it, true
		}
	}
	return Item{}, false
}

// Default returns the built-in maintenance catalog.
func Default() Catalog {
	c, err := New([]Item{
		{
			ID:             "oil_change",
			Title:          "Oil change",
			IntervalKm:     10000,
			IntervalMonths: 12,
			Keywords:       []string{"oil", "öl", "olaj"},
			TemplateID:     "tpl_oil",
		},
		{
			ID:             "tire_rotation",
			Title:          "Tire rotation",
			IntervalKm:     10000,
			IntervalMonths: 6,
			Keywords:       []string{"tire rotation", "rotate tires", "tyre rotation"},
			TemplateID:     "tpl_tires",
		},
		{
			ID:             "brake_service",
			Title:          "Brake service",
			IntervalKm:     30000,
			IntervalMonths: 24,
			Keywords:       []string{"brake", "pad", "disc"},
			TemplateID:     "tpl_brakes",
		},
		{
			ID:             "battery_service",
			Title:          "Battery check",
			IntervalMonths: 24,
			Keywords:       []string{"battery", "akku"},
			TemplateID:     "tpl_battery",
		},
		{
			ID:             "coolant_flush",
			Title:          "Coolant flush",
			IntervalKm:     60000,
			IntervalMonths: 36,
			Keywords:       []string{"coolant", "antifreeze", "radiator"},
			TemplateID:     "tpl_coolant",
		},
		{
			ID:             "air_filter",
			Title:          "Air filter replacement",
			IntervalKm:     20000,
			IntervalMonths: 12,
			Keywords:       []string{"air filter", "cabin filter", "pollen filter"},
			TemplateID:     "tpl_filter",
		},
		{
			ID:             "transmission_service",
			Title:          "Transmission service",
			IntervalKm:     60000,
			IntervalMonths: 48,
			Keywords:       []string{"transmission", "gearbox", "atf"},
			TemplateID:     "tpl_transmission",
		},
		{
			ID:             "inspection",
			Title:          "General inspection",
			IntervalKm:     15000,
			IntervalMonths: 12,
			Keywords:       []string{"inspection", "service", "checkup"},
			TemplateID:     "tpl_inspection",
		},
		{
			ID:             "spark_plugs",
			Title:          "Spark plug replacement",
			IntervalKm:     40000,
			IntervalMonths: 48,
			Keywords:       []string{"spark plug", "ignition"},
			TemplateID:     "tpl_spark",
		},
		{
			ID:             "wiper_blades",
			Title:          "Wiper blade replacement",
			IntervalMonths: 12,
			Keywords:       []string{"wiper", "blade"},
			TemplateID:     "tpl_wiper",
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}
