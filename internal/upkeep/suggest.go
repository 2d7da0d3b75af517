package upkeep

import (
	"fmt"
	"sort"
	"time"

	"github.com/ukydev/vehicle-upkeep/internal/catalog"
	"github.com/ukydev/vehicle-upkeep/internal/models"
)

// Suggest runs the whole catalog through the estimation pipeline for
// one vehicle and returns the prioritized task list, sorted by score
// descending. Items with no matching history are kept only while their
// status is not "ok", so unverified tasks disappear once they would be
// reported fine.
func Suggest(cat catalog.Catalog, snap models.VehicleSnapshot, history []models.MaintenanceRecord, now time.Time) []models.Suggestion {
	var out []models.Suggestion

	for _, item := range cat.Items() {
		last := latestMatch(item, history)
		s := SuggestItem(item, snap, last, now)

		if last == nil && s.Status == models.StatusOK {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Estimate.DaysToDue < out[j].Estimate.DaysToDue
	})
	return out
}

// SuggestItem runs the estimation pipeline for a single catalog item.
// last is the most recent maintenance record matching the item, or nil
// when the vehicle has no matching history.
func SuggestItem(item catalog.Item, snap models.VehicleSnapshot, last *models.MaintenanceRecord, now time.Time) models.Suggestion {
	in := EstimateInput{
		OwnershipStart: snap.OwnershipStart,
		IntervalKm:     item.IntervalKm,
		IntervalMonths: item.IntervalMonths,
		CurrentKm:      snap.CurrentKm,
		AvgKmPerMonth:  snap.AvgKmPerMonth,
		Now:            now,
	}
	if last != nil {
		in.LastKm = last.OdometerKm
		d := last.Date
		in.LastDate = &d
	}

	est := Estimate(in)
	score := Score(est, item.IntervalKm, item.IntervalMonths)
	confidence := ClassifyConfidence(last != nil, snap.CurrentKm != nil)

	return models.Suggestion{
		ItemID:     item.ID,
		Title:      item.Title,
		TemplateID: item.TemplateID,
		Estimate:   est,
		Score:      score,
		Status:     ClassifyStatus(est, score),
		Confidence: confidence,
		Message:    buildMessage(item.Title, est, confidence),
	}
}

// latestMatch finds the most recent maintenance record whose title
// matches the item's keywords, or nil when none does.
func latestMatch(item catalog.Item, history []models.MaintenanceRecord) *models.MaintenanceRecord {
	var best *models.MaintenanceRecord
	for i := range history {
		rec := &history[i]
		if !item.MatchesTitle(rec.Title) {
			continue
		}
		if best == nil || rec.Date.After(best.Date) {
			best = rec
		}
	}
	return best
}

func buildMessage(title string, est models.DueEstimate, confidence models.Confidence) string {
	var msg string
	switch {
	case est.Overdue && est.KmBounded() && est.RemainingKm < 0:
		msg = fmt.Sprintf("%s is overdue by %.0f km", title, -est.RemainingKm)
	case est.Overdue:
		msg = fmt.Sprintf("%s is overdue by %.0f days", title, -est.RemainingDays)
	case est.KmBounded() && est.RemainingDays < farHorizonDays:
		msg = fmt.Sprintf("%s due in about %.0f km or %.0f days", title, est.RemainingKm, est.ClampedDays())
	case est.KmBounded():
		msg = fmt.Sprintf("%s due in about %.0f km", title, est.RemainingKm)
	default:
		msg = fmt.Sprintf("%s due in about %.0f days", title, est.ClampedDays())
	}

	switch confidence {
	case models.ConfidenceMedium:
		msg += " (odometer unknown, time-based estimate)"
	case models.ConfidenceLow:
		msg += " (no service history on file)"
	}
	return msg
}

// farHorizonDays keeps the far-future sentinel out of messages.
const farHorizonDays = 365 * 50
