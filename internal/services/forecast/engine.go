package forecast

import (
	"sync"
	"time"

	"KPIPulse/internal/domain/models"
	domrepo "KPIPulse/internal/domain/repository"
	domsvc "KPIPulse/internal/domain/service"
)

// maxHorizon is the largest number of future periods a request may ask for.
const maxHorizon = 12

// Engine is the forecast orchestrator: it validates the request, groups
// observations into buckets, runs each bucket's pipeline and assembles the
// final result. Stateless and free of shared mutable state, so buckets are
// computed concurrently without coordination.
type Engine struct {
	policy SufficiencyPolicy
	now    func() time.Time
}

// Option configures Engine.
type Option func(*Engine)

// WithSufficiencyPolicy selects where the minimum-history gate applies.
func WithSufficiencyPolicy(p SufficiencyPolicy) Option {
	return func(e *Engine) {
		if p == SufficiencyAggregate || p == SufficiencyPerCategory {
			e.policy = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a forecast engine with the aggregate sufficiency policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{policy: SufficiencyAggregate, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs the full pipeline over the given observations, which must be
// sorted ascending by period and already filtered to the requested scope.
func (e *Engine) Generate(req models.ForecastRequest, obs []models.Observation) (*models.ForecastResult, error) {
	if req.Horizon < 1 || req.Horizon > maxHorizon {
		return nil, validationErrorf("horizon must be between 1 and %d, got %d", maxHorizon, req.Horizon)
	}
	if req.ScopeID() == "" {
		return nil, validationErrorf("a portfolio or organization scope is required")
	}

	if len(obs) < minObservations {
		return nil, insufficientHistoryErrorf("at least %d historical observations are required, got %d", minObservations, len(obs))
	}

	groups := groupObservations(obs)
	if e.policy == SufficiencyPerCategory {
		for _, g := range groups {
			if len(g.values) < minObservations {
				return nil, insufficientHistoryErrorf("bucket %s has %d observations, need %d", g.bucket.Label(), len(g.values), minObservations)
			}
		}
	}

	tf := domrepo.NormalizeTimeframe(req.Timeframe)
	model := ModelFor(req.Model, tf)

	// Each bucket's pipeline is an independent pure computation over its own
	// slice; run them concurrently and keep the deterministic group order.
	categories := make(models.CategoryForecasts, len(groups))
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g bucketGroup) {
			defer wg.Done()
			categories[i] = models.CategoryForecast{
				Bucket:      g.bucket,
				Predictions: e.forecastBucket(model, tf, g, req),
			}
		}(i, g)
	}
	wg.Wait()

	res := &models.ForecastResult{
		Categories: categories,
		Metadata: models.ForecastMetadata{
			Model:             model.Name(),
			ObservationCount:  len(obs),
			EstimatedAccuracy: model.Accuracy(),
			GeneratedAt:       e.now().UTC(),
			Horizon:           req.Horizon,
			Timeframe:         string(tf),
		},
	}

	if req.IncludeScenarios && len(categories) > 0 {
		// The first bucket in deterministic order is the realistic base.
		res.Scenarios = buildScenarios(categories[0].Predictions)
	}

	res.Recommendations = buildRecommendations(res)
	return res, nil
}

// forecastBucket produces the ordered per-horizon predictions for one bucket.
func (e *Engine) forecastBucket(model Model, tf domrepo.Timeframe, g bucketGroup, req models.ForecastRequest) []models.Prediction {
	anchor := g.last.Period
	if anchor.IsZero() {
		anchor = e.now()
	}

	preds := make([]models.Prediction, 0, req.Horizon)
	for i := 1; i <= req.Horizon; i++ {
		predicted, confidence := model.Predict(g.values, i)
		p := models.Prediction{
			Period:     tf.PeriodLabel(anchor, i),
			Predicted:  predicted,
			Confidence: confidence,
			Factors:    buildFactors(g.values, model.Name(), i),
		}
		if req.IncludeIntervals {
			p.Interval = confidenceInterval(predicted, confidence)
		}
		preds = append(preds, p)
	}
	return preds
}

// EngineCapabilities reports the supported models, timeframes and feature
// flags of the forecast endpoint. Descriptive metadata only.
func EngineCapabilities() models.Capabilities {
	return models.Capabilities{
		Models:     []string{"linear", "exponential", "seasonal", "ml"},
		Timeframes: []string{string(domrepo.TFMonth), string(domrepo.TFQuarter), string(domrepo.TFYear)},
		MaxHorizon: maxHorizon,
		Features:   []string{"confidence_intervals", "scenario_analysis", "prediction_factors"},
	}
}

var _ domsvc.ForecastEngine = (*Engine)(nil)
