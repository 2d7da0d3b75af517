package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReminderKind says which horizons a reminder tracks.
type ReminderKind string

const (
	KindTime     ReminderKind = "time"
	KindDistance ReminderKind = "distance"
	KindBoth     ReminderKind = "both"
)

// ReminderStatus is the reminder lifecycle state.
type ReminderStatus string

const (
	ReminderActive    ReminderStatus = "active"
	ReminderDone      ReminderStatus = "done"
	ReminderSnoozed   ReminderStatus = "snoozed"
	ReminderDismissed ReminderStatus = "dismissed"
)

// Reminder is one upcoming or past maintenance obligation shown to the
// user. The threshold fields are copied from the catalog at creation
// time so later catalog edits never change an existing reminder.
type Reminder struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID       string             `bson:"vehicle_id" json:"vehicle_id"`
	Kind            ReminderKind       `bson:"kind" json:"kind"`
	Title           string             `bson:"title" json:"title"`
	DueDate         *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`
	DueKm           *float64           `bson:"due_km,omitempty" json:"due_km,omitempty"`
	BaseEntryID     string             `bson:"base_entry_id,omitempty" json:"base_entry_id,omitempty"`
	ThresholdMonths int                `bson:"threshold_months,omitempty" json:"threshold_months,omitempty"`
	ThresholdKm     float64            `bson:"threshold_km,omitempty" json:"threshold_km,omitempty"`
	Status          ReminderStatus     `bson:"status" json:"status"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	TaskType        string             `bson:"task_type,omitempty" json:"task_type,omitempty"`
	LastPerformedAt *time.Time         `bson:"last_performed_at,omitempty" json:"last_performed_at,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsValidKind reports whether k is a known reminder kind.
func IsValidKind(k ReminderKind) bool {
	switch k {
	case KindTime, KindDistance, KindBoth:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known reminder status.
func IsValidStatus(s ReminderStatus) bool {
	switch s {
	case ReminderActive, ReminderDone, ReminderSnoozed, ReminderDismissed:
		return true
	}
	return false
}

// RequiresDate reports whether the kind needs a due date.
func (k ReminderKind) RequiresDate() bool {
	return k == KindTime || k == KindBoth
}

// RequiresKm reports whether the kind needs a due distance.
func (k ReminderKind) RequiresKm() bool {
	return k == KindDistance || k == KindBoth
}
