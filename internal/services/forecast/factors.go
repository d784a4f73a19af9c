package forecast

import (
	"math"

	"KPIPulse/internal/domain/models"
)

// buildFactors annotates a forecast point with its named contributors. The
// historical-trend factor needs at least two points and is omitted otherwise;
// the seasonal and model-uncertainty factors always attach.
func buildFactors(values []float64, modelName string, offset int) []models.PredictionFactor {
	factors := make([]models.PredictionFactor, 0, 3)

	if n := len(values); n >= 2 {
		// Direction over the last three values (or the whole series when
		// shorter).
		start := n - 3
		if start < 0 {
			start = 0
		}
		impact, desc := 0.15, "Recent values are trending upward"
		if values[n-1] <= values[start] {
			impact, desc = -0.15, "Recent values are trending downward"
		}
		factors = append(factors, models.PredictionFactor{
			Name:        "Historical Trend",
			Impact:      impact,
			Confidence:  0.8,
			Description: desc,
		})
	}

	factors = append(factors, models.PredictionFactor{
		Name:        "Seasonal Pattern",
		Impact:      math.Sin(float64(offset)*math.Pi/6) * 0.1,
		Confidence:  0.6,
		Description: "Cyclical variation expected at this horizon",
	})

	uncertainty := 0.7
	switch modelName {
	case "ml":
		uncertainty = 0.9
	case "seasonal":
		uncertainty = 0.8
	}
	factors = append(factors, models.PredictionFactor{
		Name:        "Model Uncertainty",
		Impact:      0,
		Confidence:  uncertainty,
		Description: "Inherent uncertainty of the " + modelName + " model",
	})

	return factors
}
