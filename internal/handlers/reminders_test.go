package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/vehicle-upkeep/internal/catalog"
	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/models"
	"github.com/ukydev/vehicle-upkeep/internal/reminders"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newMux(rem *MockReminderCollection, maint *MockMaintenanceCollection, veh *MockVehicleCollection) *http.ServeMux {
	manager := reminders.NewManager(rem, maint, veh, catalog.Default())
	h := NewReminderHandler(manager)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vehicles/{id}/reminders", h.ListByVehicle)
	mux.HandleFunc("POST /api/reminders", h.Create)
	mux.HandleFunc("POST /api/reminders/{id}/done", h.MarkDone)
	mux.HandleFunc("POST /api/reminders/{id}/snooze", h.Snooze)
	mux.HandleFunc("POST /api/reminders/{id}/dismiss", h.Dismiss)
	mux.HandleFunc("DELETE /api/reminders/{id}", h.Delete)
	mux.HandleFunc("GET /api/reminders/due", h.Due)
	return mux
}

func TestCreateReminder_InvalidJSON(t *testing.T) {
	mux := newMux(new(MockReminderCollection), new(MockMaintenanceCollection), new(MockVehicleCollection))

	req := httptest.NewRequest(http.MethodPost, "/api/reminders", bytes.NewBufferString("{bad json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReminder_MissingDueFieldIs400(t *testing.T) {
	rem := new(MockReminderCollection)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	body, _ := json.Marshal(map[string]interface{}{
		"vehicle_id": "v1",
		"kind":       "time",
		"title":      "Oil change",
		// no due_date
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reminders", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "due_date")
	rem.AssertNotCalled(t, "InsertReminder", mock.Anything, mock.Anything)
}

func TestCreateReminder_Valid(t *testing.T) {
	rem := new(MockReminderCollection)
	rem.On("InsertReminder", mock.Anything, mock.MatchedBy(func(r models.Reminder) bool {
		return r.Status == models.ReminderActive && r.Kind == models.KindTime
	})).Return(&models.Reminder{
		ID:     primitive.NewObjectID(),
		Kind:   models.KindTime,
		Status: models.ReminderActive,
	}, nil)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	body, _ := json.Marshal(map[string]interface{}{
		"vehicle_id": "v1",
		"kind":       "time",
		"title":      "Oil change",
		"due_date":   "2025-01-15T00:00:00Z",
		"task_type":  "oil_change",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reminders", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Reminder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.ReminderActive, created.Status)
	assert.Equal(t, models.KindTime, created.Kind)
	rem.AssertExpectations(t)
}

func TestMarkDone_UnknownReminderIs404(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	rem := new(MockReminderCollection)
	rem.On("FindReminderByID", mock.Anything, id).Return(nil, db.ErrNotFound)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	req := httptest.NewRequest(http.MethodPost, "/api/reminders/"+id+"/done", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkDone_TerminalStateIs409(t *testing.T) {
	id := primitive.NewObjectID()
	rem := new(MockReminderCollection)
	rem.On("FindReminderByID", mock.Anything, id.Hex()).
		Return(&models.Reminder{ID: id, Status: models.ReminderDismissed}, nil)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	req := httptest.NewRequest(http.MethodPost, "/api/reminders/"+id.Hex()+"/done", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	rem.AssertNotCalled(t, "UpdateReminderStatusIfActive", mock.Anything, mock.Anything, mock.Anything)
}

func TestSnooze_ReturnsShiftedReminder(t *testing.T) {
	id := primitive.NewObjectID()
	due := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	rem := new(MockReminderCollection)
	rem.On("FindReminderByID", mock.Anything, id.Hex()).
		Return(&models.Reminder{ID: id, Status: models.ReminderActive, DueDate: &due, Kind: models.KindTime}, nil)
	rem.On("UpdateReminderFields", mock.Anything, id.Hex(), mock.Anything).Return(nil)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	body := bytes.NewBufferString(`{"days": 10}`)
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/"+id.Hex()+"/snooze", body)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Reminder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due.AddDate(0, 0, 10)))
	assert.Equal(t, models.ReminderActive, updated.Status)
	rem.AssertExpectations(t)
}

func TestDelete_NoContent(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	rem := new(MockReminderCollection)
	rem.On("DeleteReminder", mock.Anything, id).Return(nil)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	req := httptest.NewRequest(http.MethodDelete, "/api/reminders/"+id, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	rem.AssertExpectations(t)
}

func TestDue_ListsDueReminders(t *testing.T) {
	past := time.Now().AddDate(0, 0, -3)
	rem := new(MockReminderCollection)
	rem.On("FindDueReminders", mock.Anything, mock.Anything).Return([]models.Reminder{
		{Title: "Oil change", VehicleID: "v1", DueDate: &past, Status: models.ReminderActive},
	}, nil)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	req := httptest.NewRequest(http.MethodGet, "/api/reminders/due", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var due []models.Reminder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &due))
	require.Len(t, due, 1)
	assert.Equal(t, "Oil change", due[0].Title)
}

func TestListByVehicle_RankedByPriority(t *testing.T) {
	overdue := time.Now().AddDate(0, 0, -2)
	later := time.Now().AddDate(0, 2, 0)
	rem := new(MockReminderCollection)
	rem.On("FindActiveReminders", mock.Anything, "v1").Return([]models.Reminder{
		{Title: "later", VehicleID: "v1", DueDate: &later, Status: models.ReminderActive},
		{Title: "overdue", VehicleID: "v1", DueDate: &overdue, Status: models.ReminderActive},
	}, nil)
	mux := newMux(rem, new(MockMaintenanceCollection), new(MockVehicleCollection))

	req := httptest.NewRequest(http.MethodGet, "/api/vehicles/v1/reminders?limit=1", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Reminder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "overdue", list[0].Title)
}
