package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/vehicle-upkeep/internal/db"
	"github.com/ukydev/vehicle-upkeep/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// MockReminderCollection is a mock implementation of db.ReminderCollection.
type MockReminderCollection struct {
	mock.Mock
}

func (m *MockReminderCollection) InsertReminder(ctx context.Context, reminder models.Reminder) (*models.Reminder, error) {
	args := m.Called(ctx, reminder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderCollection) FindReminderByID(ctx context.Context, id string) (*models.Reminder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderCollection) FindRemindersByVehicle(ctx context.Context, vehicleID string) ([]models.Reminder, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reminder), args.Error(1)
}

func (m *MockReminderCollection) FindActiveReminders(ctx context.Context, vehicleID string) ([]models.Reminder, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reminder), args.Error(1)
}

func (m *MockReminderCollection) FindReminderByBaseEntry(ctx context.Context, vehicleID, baseEntryID string) (*models.Reminder, error) {
	args := m.Called(ctx, vehicleID, baseEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reminder), args.Error(1)
}

func (m *MockReminderCollection) UpdateReminderStatusIfActive(ctx context.Context, id string, status models.ReminderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockReminderCollection) UpdateReminderFields(ctx context.Context, id string, fields bson.M) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockReminderCollection) DeleteReminder(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReminderCollection) DeleteRemindersByBaseEntry(ctx context.Context, baseEntryID string) (int64, error) {
	args := m.Called(ctx, baseEntryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReminderCollection) FindDueReminders(ctx context.Context, now time.Time) ([]models.Reminder, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reminder), args.Error(1)
}

func (m *MockReminderCollection) WatchReminders(ctx context.Context, vehicleID string, onChange func([]models.Reminder)) (func(), error) {
	args := m.Called(ctx, vehicleID, onChange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// MockMaintenanceCollection is a mock implementation of db.MaintenanceCollection.
type MockMaintenanceCollection struct {
	mock.Mock
}

func (m *MockMaintenanceCollection) UpsertMaintenance(ctx context.Context, record models.MaintenanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMaintenanceCollection) FindMaintenanceByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) FindLatestMatching(ctx context.Context, vehicleID string, keywords []string) (*models.MaintenanceRecord, error) {
	args := m.Called(ctx, vehicleID, keywords)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRecord), args.Error(1)
}

func (m *MockMaintenanceCollection) DeleteMaintenanceByRecordID(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection.
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	args := m.Called(ctx, vehicle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

var (
	_ db.ReminderCollection    = (*MockReminderCollection)(nil)
	_ db.MaintenanceCollection = (*MockMaintenanceCollection)(nil)
	_ db.VehicleCollection     = (*MockVehicleCollection)(nil)
)
