package db

import (
	"context"
	"time"

	"github.com/ukydev/vehicle-upkeep/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// ReminderCollection defines the interface for reminder storage
// operations consumed by the lifecycle manager.
type ReminderCollection interface {
	InsertReminder(ctx context.Context, reminder models.Reminder) (*models.Reminder, error)
	FindReminderByID(ctx context.Context, id string) (*models.Reminder, error)
	FindRemindersByVehicle(ctx context.Context, vehicleID string) ([]models.Reminder, error)
	FindActiveReminders(ctx context.Context, vehicleID string) ([]models.Reminder, error)
	FindReminderByBaseEntry(ctx context.Context, vehicleID, baseEntryID string) (*models.Reminder, error)
	UpdateReminderStatusIfActive(ctx context.Context, id string, status models.ReminderStatus) error
	UpdateReminderFields(ctx context.Context, id string, fields bson.M) error
	DeleteReminder(ctx context.Context, id string) error
	DeleteRemindersByBaseEntry(ctx context.Context, baseEntryID string) (int64, error)
	FindDueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error)
	WatchReminders(ctx context.Context, vehicleID string, onChange func([]models.Reminder)) (func(), error)
}

// MaintenanceCollection defines the read-model operations over
// maintenance records mirrored from the recording subsystem.
type MaintenanceCollection interface {
	UpsertMaintenance(ctx context.Context, record models.MaintenanceRecord) error
	FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error)
	FindLatestMatching(ctx context.Context, vehicleID string, keywords []string) (*models.MaintenanceRecord, error)
	DeleteMaintenanceByRecordID(ctx context.Context, recordID string) error
}

// VehicleCollection defines vehicle state lookups.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
}
