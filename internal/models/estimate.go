package models

import (
	"encoding/json"
	"math"
	"time"
)

// TaskStatus is the urgency tier reported for a suggested task.
type TaskStatus string

const (
	StatusCritical TaskStatus = "critical"
	StatusSoon     TaskStatus = "soon"
	StatusUpcoming TaskStatus = "upcoming"
	StatusOK       TaskStatus = "ok"
)

// Confidence labels how much real data backed an estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DueEstimate is the computed remaining distance/time until a task is
// next due. RemainingKm and DueKm are +Inf when no distance horizon can
// be computed. RemainingDays and DaysToDue keep their sign; negative
// values mean the task is past due.
type DueEstimate struct {
	RemainingKm   float64
	RemainingDays float64
	DaysToDue     float64
	Overdue       bool
	DueDate       time.Time
	DueKm         float64
}

// dueEstimateJSON is the wire form: unbounded distances travel as null
// because JSON has no infinity.
type dueEstimateJSON struct {
	RemainingKm   *float64  `json:"remaining_km"`
	RemainingDays float64   `json:"remaining_days"`
	DaysToDue     float64   `json:"days_to_due"`
	Overdue       bool      `json:"overdue"`
	DueDate       time.Time `json:"due_date"`
	DueKm         *float64  `json:"due_km"`
}

// MarshalJSON encodes unbounded distance horizons as null.
func (e DueEstimate) MarshalJSON() ([]byte, error) {
	out := dueEstimateJSON{
		RemainingDays: e.RemainingDays,
		DaysToDue:     e.DaysToDue,
		Overdue:       e.Overdue,
		DueDate:       e.DueDate,
	}
	if !math.IsInf(e.RemainingKm, 0) {
		v := e.RemainingKm
		out.RemainingKm = &v
	}
	if !math.IsInf(e.DueKm, 0) {
		v := e.DueKm
		out.DueKm = &v
	}
	if math.IsInf(e.DaysToDue, 1) {
		out.DaysToDue = e.RemainingDays
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores null distance horizons to unbounded.
func (e *DueEstimate) UnmarshalJSON(data []byte) error {
	var in dueEstimateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.RemainingKm = math.Inf(1)
	if in.RemainingKm != nil {
		e.RemainingKm = *in.RemainingKm
	}
	e.DueKm = math.Inf(1)
	if in.DueKm != nil {
		e.DueKm = *in.DueKm
	}
	e.RemainingDays = in.RemainingDays
	e.DaysToDue = in.DaysToDue
	e.Overdue = in.Overdue
	e.DueDate = in.DueDate
	return nil
}

// KmBounded reports whether a distance horizon could be computed.
func (e DueEstimate) KmBounded() bool {
	return !math.IsInf(e.RemainingKm, 1)
}

// ClampedDays returns the remaining days floored at zero, for display.
func (e DueEstimate) ClampedDays() float64 {
	if e.RemainingDays < 0 {
		return 0
	}
	return e.RemainingDays
}

// Suggestion is one ranked entry of the upcoming-task list. Computed on
// demand; never persisted.
type Suggestion struct {
	ItemID     string      `json:"item_id"`
	Title      string      `json:"title"`
	TemplateID string      `json:"template_id"`
	Estimate   DueEstimate `json:"estimate"`
	Score      int         `json:"score"`
	Status     TaskStatus  `json:"status"`
	Confidence Confidence  `json:"confidence"`
	Message    string      `json:"message"`
}
