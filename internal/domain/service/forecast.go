package service

import (
	"KPIPulse/internal/domain/models"
)

// ForecastEngine turns historical observations into forecasts, scenarios and
// recommendations. Implementations are pure and deterministic: no I/O, no
// hidden state, hence no context parameter. Callers bound latency externally.
type ForecastEngine interface {
	Generate(req models.ForecastRequest, obs []models.Observation) (*models.ForecastResult, error)
}
