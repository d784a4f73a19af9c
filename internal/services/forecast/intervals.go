package forecast

import (
	"math"

	"KPIPulse/internal/domain/models"
)

// confidenceInterval derives the symmetric band around a point forecast. The
// spread widens as confidence decays: predicted * (1 - confidence) * 0.5.
func confidenceInterval(predicted, confidence float64) *models.Interval {
	variance := predicted * (1 - confidence) * 0.5
	return &models.Interval{
		Lower: math.Max(0, predicted-variance),
		Upper: predicted + variance,
	}
}
