package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a tracked vehicle.
type Vehicle struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Make              string             `bson:"make" json:"make"`
	Model             string             `bson:"model" json:"model"`
	Year              int                `bson:"year" json:"year"` // model year
	RegistrationYear  int                `bson:"registration_year,omitempty" json:"registration_year,omitempty"`
	RegistrationMonth int                `bson:"registration_month,omitempty" json:"registration_month,omitempty"`
	OdometerKm        *float64           `bson:"odometer_km,omitempty" json:"odometer_km,omitempty"`
	AvgKmPerMonth     *float64           `bson:"avg_km_per_month,omitempty" json:"avg_km_per_month,omitempty"`
	Status            string             `bson:"status" json:"status"` // "active" or "inactive"
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

// VehicleSnapshot is the read-only view of vehicle state that the upkeep
// engine works from. Odometer and average distance may be unknown.
type VehicleSnapshot struct {
	VehicleID      string
	CurrentKm      *float64
	AvgKmPerMonth  *float64
	OwnershipStart time.Time
}

// OwnershipStart resolves how long the vehicle has been owned:
// registration year/month, then model year, then record creation time.
func (v *Vehicle) OwnershipStart() time.Time {
	if v.RegistrationYear > 0 {
		month := time.January
		if v.RegistrationMonth >= 1 && v.RegistrationMonth <= 12 {
			month = time.Month(v.RegistrationMonth)
		}
		return time.Date(v.RegistrationYear, month, 1, 0, 0, 0, 0, time.UTC)
	}
	if v.Year > 0 {
		return time.Date(v.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return v.CreatedAt
}

// Snapshot builds the snapshot consumed by the suggestion pipeline.
func (v *Vehicle) Snapshot() VehicleSnapshot {
	return VehicleSnapshot{
		VehicleID:      v.ID.Hex(),
		CurrentKm:      v.OdometerKm,
		AvgKmPerMonth:  v.AvgKmPerMonth,
		OwnershipStart: v.OwnershipStart(),
	}
}
