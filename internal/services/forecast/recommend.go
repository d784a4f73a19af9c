package forecast

import (
	"KPIPulse/internal/domain/models"
)

// buildRecommendations evaluates rule-based recommendations against the
// assembled result. Multiple rules may fire; matches are returned in
// evaluation order with no de-duplication.
func buildRecommendations(res *models.ForecastResult) []string {
	recs := make([]string, 0, 4)

	for _, cat := range res.Categories {
		switch cat.Bucket.Kind {
		case models.BucketRevenue:
			if growth, ok := projectedGrowthPct(cat.Predictions); ok {
				if growth > 20 {
					recs = append(recs, "Strong revenue growth projected. Consider scaling operations and investing in expansion.")
				} else if growth < 5 {
					recs = append(recs, "Projected revenue growth is weak. Explore new revenue streams or improve operational efficiency.")
				}
			}
		case models.BucketGrowth:
			if avgConfidence(cat.Predictions) < 0.7 {
				recs = append(recs, "Growth forecasts carry low confidence. Collect more historical data to improve projection quality.")
			}
		}
	}

	if res.Scenarios != nil {
		recs = append(recs,
			"Review the pessimistic scenario and prepare contingency plans for downside outcomes.",
			"Use the scenario spread to size risk buffers and stress-test targets.",
		)
	}

	if len(recs) == 0 {
		recs = append(recs, "Forecasts look stable. Continue monitoring KPIs and refresh projections as new data arrives.")
	}
	return recs
}

// projectedGrowthPct is the percentage change from the first to the last
// forecast point. Undefined when the sequence is empty or starts at zero.
func projectedGrowthPct(preds []models.Prediction) (float64, bool) {
	if len(preds) == 0 || preds[0].Predicted == 0 {
		return 0, false
	}
	first := preds[0].Predicted
	last := preds[len(preds)-1].Predicted
	return (last/first - 1) * 100, true
}

func avgConfidence(preds []models.Prediction) float64 {
	if len(preds) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range preds {
		sum += p.Confidence
	}
	return sum / float64(len(preds))
}
