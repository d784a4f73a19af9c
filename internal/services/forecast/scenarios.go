package forecast

import (
	"KPIPulse/internal/domain/models"
)

// Fixed scenario multipliers applied to the realistic base.
const (
	optimisticMultiplier  = 1.2
	pessimisticMultiplier = 0.8
)

// buildScenarios derives the optimistic and pessimistic variants from the
// already-computed realistic sequence. Pure post-processing: no new data
// requirements, probabilities fixed at 0.25/0.50/0.25.
func buildScenarios(realistic []models.Prediction) *models.ScenarioSet {
	return &models.ScenarioSet{
		Optimistic:  scalePredictions(realistic, optimisticMultiplier),
		Realistic:   realistic,
		Pessimistic: scalePredictions(realistic, pessimisticMultiplier),
		Probability: models.ScenarioProbability{
			Optimistic:  0.25,
			Realistic:   0.50,
			Pessimistic: 0.25,
		},
	}
}

// scalePredictions copies the sequence with predicted values and interval
// bounds scaled by m. Confidence and factors carry over unchanged.
func scalePredictions(preds []models.Prediction, m float64) []models.Prediction {
	out := make([]models.Prediction, len(preds))
	for i, p := range preds {
		s := p
		s.Predicted = p.Predicted * m
		if p.Interval != nil {
			s.Interval = &models.Interval{
				Lower: p.Interval.Lower * m,
				Upper: p.Interval.Upper * m,
			}
		}
		if p.Factors != nil {
			s.Factors = append([]models.PredictionFactor(nil), p.Factors...)
		}
		out[i] = s
	}
	return out
}
