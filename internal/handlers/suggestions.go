package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ukydev/vehicle-upkeep/internal/catalog"
	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/upkeep"
)

// SuggestionHandler serves the on-demand suggested-task list for a
// vehicle. Suggestions are computed fresh on every request and never
// persisted.
type SuggestionHandler struct {
	catalog     catalog.Catalog
	vehicles    db.VehicleCollection
	maintenance db.MaintenanceCollection
	now         func() time.Time
}

// NewSuggestionHandler creates a suggestion handler.
func NewSuggestionHandler(cat catalog.Catalog, vehicles db.VehicleCollection, maintenance db.MaintenanceCollection) *SuggestionHandler {
	return &SuggestionHandler{
		catalog:     cat,
		vehicles:    vehicles,
		maintenance: maintenance,
		now:         time.Now,
	}
}

// List handles GET /api/vehicles/{id}/suggestions.
func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")
	if vehicleID == "" {
		http.Error(w, "vehicle id is required", http.StatusBadRequest)
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	history, err := h.maintenance.FindMaintenanceByVehicle(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	suggestions := upkeep.Suggest(h.catalog, vehicle.Snapshot(), history, h.now())
	writeJSON(w, http.StatusOK, suggestions)
}

// Get handles GET /api/vehicles/{id}/suggestions/{item}: the estimate
// for one catalog item. The most recent matching service is looked up
// in the gateway by keyword instead of loading the whole history.
func (h *SuggestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")
	item, ok := h.catalog.Find(r.PathValue("item"))
	if !ok {
		http.Error(w, "unknown catalog item", http.StatusNotFound)
		return
	}

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "vehicle not found", http.StatusNotFound)
			return
		}
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	last, err := h.maintenance.FindLatestMatching(r.Context(), vehicleID, item.Keywords)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, upkeep.SuggestItem(item, vehicle.Snapshot(), last, h.now()))
}
