// Package upkeep contains the pure due-estimation pipeline: the due
// estimator, the urgency scorer, the status/confidence classifiers and
// the suggestion aggregator. Everything here is deterministic given its
// inputs and a caller-supplied "now", with no side effects, so it is
// safe to call from any number of goroutines.
package upkeep

import (
	"math"
	"time"

	"github.com/ukydev/vehicle-upkeep/internal/models"
)

// farFuture is the sentinel due date for items without a time interval.
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// daysPerMonth is the flat month length used for horizon conversion.
const daysPerMonth = 30.0

// EstimateInput carries the partial knowledge the estimator works from.
// Any pointer field may be nil when the value is unknown.
type EstimateInput struct {
	LastKm         *float64   // odometer at last performance
	LastDate       *time.Time // date of last performance
	OwnershipStart time.Time  // fallback when LastDate is unknown
	IntervalKm     float64    // 0 when the item has no distance interval
	IntervalMonths int        // 0 when the item has no time interval
	CurrentKm      *float64   // vehicle's current odometer
	AvgKmPerMonth  *float64   // vehicle's average monthly distance
	Now            time.Time
}

// Estimate computes the remaining distance and remaining days until a
// task is next due, and whether it is already overdue. Missing inputs
// widen the horizons instead of failing: with no usable odometer data
// the distance horizon is unbounded (+Inf) and only time applies.
func Estimate(in EstimateInput) models.DueEstimate {
	remainingKm := math.Inf(1)
	dueKm := math.Inf(1)

	if in.IntervalKm > 0 {
		switch {
		case in.LastKm != nil && in.CurrentKm != nil && *in.CurrentKm >= *in.LastKm:
			dueKm = *in.LastKm + in.IntervalKm
			remainingKm = dueKm - *in.CurrentKm
		case in.LastKm == nil && in.CurrentKm != nil:
			// No history: assume the vehicle just crossed into its
			// current interval cycle and aim at the next boundary
			// strictly above the current reading.
			dueKm = math.Ceil(*in.CurrentKm/in.IntervalKm) * in.IntervalKm
			if dueKm <= *in.CurrentKm {
				dueKm += in.IntervalKm
			}
			remainingKm = dueKm - *in.CurrentKm
		}
	}

	lastAt := in.OwnershipStart
	if in.LastDate != nil {
		lastAt = *in.LastDate
	}
	dueDate := farFuture
	if in.IntervalMonths > 0 {
		dueDate = lastAt.AddDate(0, in.IntervalMonths, 0)
	}
	remainingDays := dueDate.Sub(in.Now).Hours() / 24

	distanceDays := math.Inf(1)
	if !math.IsInf(remainingKm, 1) && in.AvgKmPerMonth != nil && *in.AvgKmPerMonth > 0 {
		distanceDays = remainingKm / *in.AvgKmPerMonth * daysPerMonth
	}

	daysToDue := math.Min(remainingDays, distanceDays)

	return models.DueEstimate{
		RemainingKm:   remainingKm,
		RemainingDays: remainingDays,
		DaysToDue:     daysToDue,
		Overdue:       daysToDue < 0 || remainingKm < 0,
		DueDate:       dueDate,
		DueKm:         dueKm,
	}
}

// EstimateFromDue computes an estimate from an already-known due date
// and/or due distance, as stored on a reminder. The reminder's captured
// values govern here; the live catalog is never consulted.
func EstimateFromDue(dueDate *time.Time, dueKm, currentKm, avgKmPerMonth *float64, now time.Time) models.DueEstimate {
	remainingKm := math.Inf(1)
	boundKm := math.Inf(1)
	if dueKm != nil {
		boundKm = *dueKm
		if currentKm != nil {
			remainingKm = *dueKm - *currentKm
		}
	}

	boundDate := farFuture
	if dueDate != nil {
		boundDate = *dueDate
	}
	remainingDays := boundDate.Sub(now).Hours() / 24

	distanceDays := math.Inf(1)
	if !math.IsInf(remainingKm, 1) && avgKmPerMonth != nil && *avgKmPerMonth > 0 {
		distanceDays = remainingKm / *avgKmPerMonth * daysPerMonth
	}

	daysToDue := math.Min(remainingDays, distanceDays)

	return models.DueEstimate{
		RemainingKm:   remainingKm,
		RemainingDays: remainingDays,
		DaysToDue:     daysToDue,
		Overdue:       daysToDue < 0 || remainingKm < 0,
		DueDate:       boundDate,
		DueKm:         boundKm,
	}
}
