package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/models"
	"github.com/ukydev/vehicle-upkeep/internal/reminders"
)

// ReminderHandler exposes the reminder lifecycle over HTTP.
type ReminderHandler struct {
	manager *reminders.Manager
}

// NewReminderHandler creates a reminder handler.
func NewReminderHandler(manager *reminders.Manager) *ReminderHandler {
	return &ReminderHandler{manager: manager}
}

// createReminderRequest is the manual-creation payload. Dates travel as
// RFC 3339 strings.
type createReminderRequest struct {
	VehicleID       string   `json:"vehicle_id"`
	Kind            string   `json:"kind"`
	Title           string   `json:"title"`
	DueDate         string   `json:"due_date,omitempty"`
	DueKm           *float64 `json:"due_km,omitempty"`
	ThresholdMonths int      `json:"threshold_months,omitempty"`
	ThresholdKm     float64  `json:"threshold_km,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	TaskType        string   `json:"task_type,omitempty"`
}

// Create handles POST /api/reminders.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var req createReminderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	in := reminders.CreateInput{
		VehicleID:       req.VehicleID,
		Kind:            models.ReminderKind(req.Kind),
		Title:           req.Title,
		DueKm:           req.DueKm,
		ThresholdMonths: req.ThresholdMonths,
		ThresholdKm:     req.ThresholdKm,
		Notes:           req.Notes,
		TaskType:        req.TaskType,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			http.Error(w, "due_date must be RFC 3339", http.StatusBadRequest)
			return
		}
		in.DueDate = &due
	}

	created, err := h.manager.Create(r.Context(), in)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListByVehicle handles GET /api/vehicles/{id}/reminders: the vehicle's
// active reminders ranked by priority, optionally truncated by ?limit=N.
func (h *ReminderHandler) ListByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("id")
	if vehicleID == "" {
		http.Error(w, "vehicle id is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	list, err := h.manager.UpcomingByPriority(r.Context(), vehicleID, limit)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkDone handles POST /api/reminders/{id}/done. The optional body can
// carry completion details used as the regeneration basis.
func (h *ReminderHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var completion *reminders.Completion
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		var req struct {
			Date       string   `json:"date,omitempty"`
			OdometerKm *float64 `json:"odometer_km,omitempty"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		completion = &reminders.Completion{OdometerKm: req.OdometerKm}
		if req.Date != "" {
			date, err := time.Parse(time.RFC3339, req.Date)
			if err != nil {
				http.Error(w, "date must be RFC 3339", http.StatusBadRequest)
				return
			}
			completion.Date = date
		}
	}

	next, err := h.manager.MarkDone(r.Context(), id, completion)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "done",
		"next":   next,
	})
}

// Snooze handles POST /api/reminders/{id}/snooze.
func (h *ReminderHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	days := 0
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		var req struct {
			Days int `json:"days"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		days = req.Days
	}

	updated, err := h.manager.Snooze(r.Context(), id, days)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Dismiss handles POST /api/reminders/{id}/dismiss.
func (h *ReminderHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.manager.Dismiss(r.Context(), id); err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// Delete handles DELETE /api/reminders/{id}.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.manager.Delete(r.Context(), id); err != nil {
		writeManagerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Due handles GET /api/reminders/due, the query the external
// notification dispatcher polls. Delivery is the dispatcher's problem.
func (h *ReminderHandler) Due(w http.ResponseWriter, r *http.Request) {
	due, err := h.manager.DueReminders(r.Context())
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

// writeManagerError maps manager failure classes to HTTP status codes.
func writeManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reminders.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reminders.ErrNotFound), errors.Is(err, db.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reminders.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, reminders.ErrGatewayUnavailable), errors.Is(err, db.ErrUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		log.WithError(err).Error("unclassified handler error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encoding response failed")
	}
}
