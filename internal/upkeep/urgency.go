package upkeep

import (
	"math"

	"github.com/ukydev/vehicle-upkeep/internal/models"
)

const overdueBonus = 0.25

// Score converts a due estimate into a 0-100 urgency score. Progress is
// the larger of the distance and time progress ratios; overdue tasks
// get a flat bonus before the final clamp.
func Score(est models.DueEstimate, intervalKm float64, intervalMonths int) int {
	var distRatio, timeRatio float64

	if intervalKm > 0 && est.KmBounded() {
		distRatio = clamp01(1 - est.RemainingKm/intervalKm)
	}
	if intervalMonths > 0 {
		timeRatio = clamp01(1 - est.RemainingDays/(float64(intervalMonths)*daysPerMonth))
	}

	progress := math.Max(distRatio, timeRatio)
	if est.Overdue {
		progress += overdueBonus
	}

	score := int(math.Round(progress * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ClassifyStatus maps an estimate and its score to a status tier.
func ClassifyStatus(est models.DueEstimate, score int) models.TaskStatus {
	switch {
	case est.Overdue,
		est.KmBounded() && est.RemainingKm <= 500,
		est.RemainingDays <= 30:
		return models.StatusCritical
	case score >= 85:
		return models.StatusSoon
	case score >= 70:
		return models.StatusUpcoming
	default:
		return models.StatusOK
	}
}

// ClassifyConfidence labels how much real data backed an estimate.
// History plus a known odometer is high; history alone is medium; no
// matching history is low regardless of odometer.
func ClassifyConfidence(hasHistory, hasOdometer bool) models.Confidence {
	switch {
	case hasHistory && hasOdometer:
		return models.ConfidenceHigh
	case hasHistory:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
