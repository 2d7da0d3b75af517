package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceRecord is one logged maintenance event. Records are owned
// by the external recording subsystem and are read-only here.
type MaintenanceRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordID   string             `bson:"record_id" json:"record_id"` // id assigned by the recording subsystem
	VehicleID  string             `bson:"vehicle_id" json:"vehicle_id"`
	Title      string             `bson:"title" json:"title"`
	Date       time.Time          `bson:"date" json:"date"`
	OdometerKm *float64           `bson:"odometer_km,omitempty" json:"odometer_km,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
