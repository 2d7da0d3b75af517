// Package reminders implements the reminder lifecycle: creation from
// user input or recorded maintenance events, the status state machine,
// auto-regeneration on completion, cascade deletion, and the read-only
// due-query helpers.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-upkeep/internal/catalog"
	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/models"
	"github.com/ukydev/vehicle-upkeep/internal/upkeep"
	"go.mongodb.org/mongo-driver/bson"
)

// Manager owns reminder records and their transitions. It is the only
// stateful component of the engine; all of its state lives behind the
// persistence gateway, so a Manager value itself is safe for
// concurrent use.
type Manager struct {
	reminders   db.ReminderCollection
	maintenance db.MaintenanceCollection
	vehicles    db.VehicleCollection
	catalog     catalog.Catalog
	now         func() time.Time
}

// NewManager creates a lifecycle manager over the given collections.
func NewManager(rem db.ReminderCollection, maint db.MaintenanceCollection, veh db.VehicleCollection, cat catalog.Catalog) *Manager {
	return &Manager{
		reminders:   rem,
		maintenance: maint,
		vehicles:    veh,
		catalog:     cat,
		now:         time.Now,
	}
}

// WithClock substitutes the time source. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// DefaultSnoozeDays is applied when Snooze is called without a span.
const DefaultSnoozeDays = 7

// CreateInput is the payload for a manually created reminder.
type CreateInput struct {
	VehicleID       string
	Kind            models.ReminderKind
	Title           string
	DueDate         *time.Time
	DueKm           *float64
	ThresholdMonths int
	ThresholdKm     float64
	Notes           string
	TaskType        string
}

// Create validates and stores a manual reminder. The chosen kind
// dictates which due fields are required; a missing one rejects the
// call before any write.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*models.Reminder, error) {
	if in.VehicleID == "" {
		return nil, validationErr("vehicle_id", "is required")
	}
	if in.Title == "" {
		return nil, validationErr("title", "is required")
	}
	if !models.IsValidKind(in.Kind) {
		return nil, validationErr("kind", "must be time, distance or both")
	}
	if in.Kind.RequiresDate() && in.DueDate == nil {
		return nil, validationErr("due_date", fmt.Sprintf("is required for kind %q", in.Kind))
	}
	if in.Kind.RequiresKm() && in.DueKm == nil {
		return nil, validationErr("due_km", fmt.Sprintf("is required for kind %q", in.Kind))
	}
	if in.TaskType != "" {
		if _, ok := m.catalog.Find(in.TaskType); !ok {
			return nil, validationErr("task_type", fmt.Sprintf("%q is not a known task type", in.TaskType))
		}
	}

	created, err := m.reminders.InsertReminder(ctx, models.Reminder{
		VehicleID:       in.VehicleID,
		Kind:            in.Kind,
		Title:           in.Title,
		DueDate:         in.DueDate,
		DueKm:           in.DueKm,
		ThresholdMonths: in.ThresholdMonths,
		ThresholdKm:     in.ThresholdKm,
		Status:          models.ReminderActive,
		Notes:           in.Notes,
		TaskType:        in.TaskType,
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return created, nil
}

// ExtractTaskType classifies a free-text maintenance title against the
// catalog, the same keyword rule the suggestion aggregator uses.
func (m *Manager) ExtractTaskType(title string) (catalog.Item, bool) {
	return m.catalog.MatchTitle(title)
}

// CreateFromMaintenance derives a reminder from a recorded maintenance
// event. Titles that match no catalog item produce no reminder (and no
// error). The operation is idempotent per source record id: replays and
// concurrent retries resolve to the one existing reminder.
func (m *Manager) CreateFromMaintenance(ctx context.Context, vehicleID, title string, date time.Time, odometerKm *float64, recordID string) (*models.Reminder, error) {
	if vehicleID == "" {
		return nil, validationErr("vehicle_id", "is required")
	}
	if recordID == "" {
		return nil, validationErr("record_id", "is required")
	}

	item, ok := m.catalog.MatchTitle(title)
	if !ok {
		log.WithFields(log.Fields{"vehicle_id": vehicleID, "title": title}).
			Debug("maintenance title matches no catalog item, skipping reminder")
		return nil, nil
	}

	existing, err := m.reminders.FindReminderByBaseEntry(ctx, vehicleID, recordID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, mapStorageErr(err)
	}

	reminder := models.Reminder{
		VehicleID:       vehicleID,
		Title:           item.Title,
		BaseEntryID:     recordID,
		ThresholdMonths: item.IntervalMonths,
		ThresholdKm:     item.IntervalKm,
		Status:          models.ReminderActive,
		TaskType:        item.ID,
		LastPerformedAt: &date,
	}
	if item.HasMonths() {
		due := date.AddDate(0, item.IntervalMonths, 0)
		reminder.DueDate = &due
	}
	if item.HasKm() && odometerKm != nil {
		due := *odometerKm + item.IntervalKm
		reminder.DueKm = &due
	}
	reminder.Kind = kindFor(reminder.DueDate, reminder.DueKm)
	if reminder.Kind == "" {
		log.WithFields(log.Fields{"vehicle_id": vehicleID, "task_type": item.ID}).
			Warn("no due horizon computable for maintenance event, skipping reminder")
		return nil, nil
	}

	created, err := m.reminders.InsertReminder(ctx, reminder)
	if errors.Is(err, db.ErrDuplicate) {
		// Lost a race with a concurrent retry of the same event; the
		// winner's document is the one reminder for this record.
		existing, ferr := m.reminders.FindReminderByBaseEntry(ctx, vehicleID, recordID)
		if ferr != nil {
			return nil, mapStorageErr(ferr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, mapStorageErr(err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicleID,
		"task_type":  item.ID,
		"record_id":  recordID,
	}).Info("created reminder from maintenance event")
	return created, nil
}

// Completion carries optional completion details for MarkDone. When the
// date is zero or the odometer unknown, "now" and the previous due
// distance baseline are used instead.
type Completion struct {
	Date       time.Time
	OdometerKm *float64
}

// MarkDone transitions a reminder to done. For type-tagged reminders
// derived from maintenance events it then regenerates the next active
// reminder of the same type, so the user always has exactly one
// forward-looking reminder per tracked type. The returned reminder is
// the regenerated one, or nil when no regeneration applies.
func (m *Manager) MarkDone(ctx context.Context, id string, completion *Completion) (*models.Reminder, error) {
	reminder, err := m.reminders.FindReminderByID(ctx, id)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if !canTransition(reminder.Status, models.ReminderDone) {
		return nil, fmt.Errorf("%w: reminder %s is already %s", ErrConflict, id, reminder.Status)
	}
	if err := m.reminders.UpdateReminderStatusIfActive(ctx, id, models.ReminderDone); err != nil {
		return nil, mapStorageErr(err)
	}
	if reminder.TaskType == "" || reminder.BaseEntryID == "" {
		return nil, nil
	}
	return m.generateNextReminderOnComplete(ctx, reminder, completion)
}

// generateNextReminderOnComplete creates the follow-up reminder after a
// completion, adding the captured thresholds to the completion basis.
// The live catalog is deliberately not consulted: edits to it must not
// change the cadence a reminder was created with.
func (m *Manager) generateNextReminderOnComplete(ctx context.Context, prev *models.Reminder, completion *Completion) (*models.Reminder, error) {
	basisDate := m.now()
	var basisKm *float64
	if completion != nil {
		if !completion.Date.IsZero() {
			basisDate = completion.Date
		}
		basisKm = completion.OdometerKm
	}

	next := models.Reminder{
		VehicleID:       prev.VehicleID,
		Title:           prev.Title,
		BaseEntryID:     prev.BaseEntryID,
		ThresholdMonths: prev.ThresholdMonths,
		ThresholdKm:     prev.ThresholdKm,
		Status:          models.ReminderActive,
		TaskType:        prev.TaskType,
		LastPerformedAt: &basisDate,
	}
	if prev.ThresholdMonths > 0 {
		due := basisDate.AddDate(0, prev.ThresholdMonths, 0)
		next.DueDate = &due
	}
	if prev.ThresholdKm > 0 {
		switch {
		case basisKm != nil:
			due := *basisKm + prev.ThresholdKm
			next.DueKm = &due
		case prev.DueKm != nil:
			due := *prev.DueKm + prev.ThresholdKm
			next.DueKm = &due
		}
	}
	next.Kind = kindFor(next.DueDate, next.DueKm)
	if next.Kind == "" {
		return nil, fmt.Errorf("%w: no due horizon computable for regeneration", ErrValidation)
	}

	created, err := m.reminders.InsertReminder(ctx, next)
	if errors.Is(err, db.ErrDuplicate) {
		return nil, fmt.Errorf("%w: next reminder already regenerated", ErrConflict)
	}
	if err != nil {
		return nil, mapStorageErr(err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": prev.VehicleID,
		"task_type":  prev.TaskType,
	}).Info("regenerated next reminder on completion")
	return created, nil
}

// Snooze shifts the due date forward by the given number of days
// (DefaultSnoozeDays when days <= 0). The reminder stays active, so it
// remains eligible to reappear in due queries as the new date
// approaches. Reminders without a due date are snoozed relative to now.
func (m *Manager) Snooze(ctx context.Context, id string, days int) (*models.Reminder, error) {
	if days <= 0 {
		days = DefaultSnoozeDays
	}
	reminder, err := m.reminders.FindReminderByID(ctx, id)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if reminder.Status != models.ReminderActive && reminder.Status != models.ReminderSnoozed {
		return nil, fmt.Errorf("%w: cannot snooze a %s reminder", ErrConflict, reminder.Status)
	}

	base := m.now()
	if reminder.DueDate != nil {
		base = *reminder.DueDate
	}
	newDue := base.AddDate(0, 0, days)

	err = m.reminders.UpdateReminderFields(ctx, id, bson.M{
		"due_date": newDue,
		"status":   models.ReminderActive,
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	reminder.DueDate = &newDue
	reminder.Status = models.ReminderActive
	return reminder, nil
}

// Dismiss transitions a reminder to dismissed. No regeneration.
func (m *Manager) Dismiss(ctx context.Context, id string) error {
	reminder, err := m.reminders.FindReminderByID(ctx, id)
	if err != nil {
		return mapStorageErr(err)
	}
	if !canTransition(reminder.Status, models.ReminderDismissed) {
		return fmt.Errorf("%w: reminder %s is already %s", ErrConflict, id, reminder.Status)
	}
	if err := m.reminders.UpdateReminderStatusIfActive(ctx, id, models.ReminderDismissed); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

// Delete removes a reminder outright.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.reminders.DeleteReminder(ctx, id); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

// DeleteByMaintenanceRecord cascades the deletion of a maintenance
// record to every reminder derived from it, and drops the record's
// mirror from the local history, so dangling references never surface
// in due queries.
func (m *Manager) DeleteByMaintenanceRecord(ctx context.Context, recordID string) (int64, error) {
	if recordID == "" {
		return 0, validationErr("record_id", "is required")
	}
	deleted, err := m.reminders.DeleteRemindersByBaseEntry(ctx, recordID)
	if err != nil {
		return 0, mapStorageErr(err)
	}
	if err := m.maintenance.DeleteMaintenanceByRecordID(ctx, recordID); err != nil {
		return deleted, mapStorageErr(err)
	}
	if deleted > 0 {
		log.WithFields(log.Fields{"record_id": recordID, "deleted": deleted}).
			Info("cascaded maintenance record deletion to reminders")
	}
	return deleted, nil
}

// RecordMaintenance mirrors a saved maintenance event into the local
// history read model and derives a reminder from it.
func (m *Manager) RecordMaintenance(ctx context.Context, vehicleID, title string, date time.Time, odometerKm *float64, recordID, notes string) (*models.Reminder, error) {
	err := m.maintenance.UpsertMaintenance(ctx, models.MaintenanceRecord{
		RecordID:   recordID,
		VehicleID:  vehicleID,
		Title:      title,
		Date:       date,
		OdometerKm: odometerKm,
		Notes:      notes,
	})
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return m.CreateFromMaintenance(ctx, vehicleID, title, date, odometerKm, recordID)
}

// DaysUntilDue returns the signed days until a reminder's stored due
// date, or +Inf when it tracks no date.
func (m *Manager) DaysUntilDue(r *models.Reminder) float64 {
	if r.DueDate == nil {
		return math.Inf(1)
	}
	return r.DueDate.Sub(m.now()).Hours() / 24
}

// KmUntilDue returns the signed distance until a reminder's stored due
// odometer, or +Inf when either side is unknown.
func (m *Manager) KmUntilDue(r *models.Reminder, currentKm *float64) float64 {
	if r.DueKm == nil || currentKm == nil {
		return math.Inf(1)
	}
	return *r.DueKm - *currentKm
}

// CheckDue reports whether a reminder's due date or due distance has
// passed.
func (m *Manager) CheckDue(r *models.Reminder, currentKm *float64) bool {
	return m.DaysUntilDue(r) <= 0 || m.KmUntilDue(r, currentKm) <= 0
}

// Priority ranks a reminder for the compact "what's next" view:
// 3 when past due, 2 when due within a week, 1 otherwise.
func (m *Manager) Priority(r *models.Reminder) int {
	days := m.DaysUntilDue(r)
	switch {
	case days < 0:
		return 3
	case days <= 7:
		return 2
	default:
		return 1
	}
}

// ReminderScore computes a reminder's urgency from its own stored due
// values and captured thresholds, never from the live catalog.
func (m *Manager) ReminderScore(r *models.Reminder, currentKm, avgKmPerMonth *float64) int {
	est := upkeep.EstimateFromDue(r.DueDate, r.DueKm, currentKm, avgKmPerMonth, m.now())
	return upkeep.Score(est, r.ThresholdKm, r.ThresholdMonths)
}

// UpcomingByPriority returns a vehicle's active reminders sorted by
// priority descending, then by nearest due date, truncated to limit
// (limit <= 0 means all).
func (m *Manager) UpcomingByPriority(ctx context.Context, vehicleID string, limit int) ([]models.Reminder, error) {
	active, err := m.reminders.FindActiveReminders(ctx, vehicleID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	sort.SliceStable(active, func(i, j int) bool {
		pi, pj := m.Priority(&active[i]), m.Priority(&active[j])
		if pi != pj {
			return pi > pj
		}
		return m.DaysUntilDue(&active[i]) < m.DaysUntilDue(&active[j])
	})
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

// DueReminders returns every active reminder whose due date has passed
// or whose due distance has been reached by its vehicle's odometer.
// This is the query the external notification dispatcher polls.
func (m *Manager) DueReminders(ctx context.Context) ([]models.Reminder, error) {
	candidates, err := m.reminders.FindDueReminders(ctx, m.now())
	if err != nil {
		return nil, mapStorageErr(err)
	}

	odometers := map[string]*float64{}
	var due []models.Reminder
	for i := range candidates {
		r := candidates[i]
		if m.DaysUntilDue(&r) <= 0 {
			due = append(due, r)
			continue
		}
		if r.DueKm == nil {
			continue
		}
		currentKm, seen := odometers[r.VehicleID]
		if !seen {
			vehicle, verr := m.vehicles.FindVehicleByID(ctx, r.VehicleID)
			if verr == nil {
				currentKm = vehicle.OdometerKm
			}
			odometers[r.VehicleID] = currentKm
		}
		if m.KmUntilDue(&r, currentKm) <= 0 {
			due = append(due, r)
		}
	}
	return due, nil
}

// WatchActive subscribes to live updates of a vehicle's active reminder
// list. The returned function cancels the subscription.
func (m *Manager) WatchActive(ctx context.Context, vehicleID string, onChange func([]models.Reminder)) (func(), error) {
	unsubscribe, err := m.reminders.WatchReminders(ctx, vehicleID, onChange)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return unsubscribe, nil
}

// kindFor derives the reminder kind from which due fields are present.
func kindFor(dueDate *time.Time, dueKm *float64) models.ReminderKind {
	switch {
	case dueDate != nil && dueKm != nil:
		return models.KindBoth
	case dueDate != nil:
		return models.KindTime
	case dueKm != nil:
		return models.KindDistance
	default:
		return ""
	}
}
