package usecase

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/models"
	domrepo "KPIPulse/internal/domain/repository"
	domsvc "KPIPulse/internal/domain/service"
	"KPIPulse/internal/services/forecast"
)

// defaultHistoryLimit bounds how many historical observations are fetched per
// request when config does not override it.
const defaultHistoryLimit = 600

// ForecastService fetches historical observations, runs the pure forecast
// engine over them, and announces completed runs. The store fetch is the only
// I/O-bound step; everything after it is deterministic computation.
type ForecastService struct {
	store        domrepo.ObservationStore
	engine       domsvc.ForecastEngine
	metrics      domrepo.Metrics
	events       domrepo.ForecastEventPublisher
	historyLimit int
}

func NewForecastService(store domrepo.ObservationStore, engine domsvc.ForecastEngine, metrics domrepo.Metrics) *ForecastService {
	return &ForecastService{
		store:        store,
		engine:       engine,
		metrics:      metrics,
		historyLimit: defaultHistoryLimit,
	}
}

// SetEventPublisher enables forecast.generated event publishing.
func (s *ForecastService) SetEventPublisher(p domrepo.ForecastEventPublisher) { s.events = p }

// SetHistoryLimit overrides the per-request observation fetch limit.
func (s *ForecastService) SetHistoryLimit(n int) {
	if n > 0 {
		s.historyLimit = n
	}
}

// Generate produces a forecast for the requested scope. Engine errors pass
// through untouched so the handler can map their kind to a transport code.
func (s *ForecastService) Generate(ctx context.Context, req models.ForecastRequest) (*models.ForecastResult, error) {
	start := time.Now()

	obs, err := s.store.GetObservations(ctx, req.ScopeID(), req.Category, s.historyLimit)
	if err != nil {
		s.metrics.RecordError("observation_fetch")
		return nil, fmt.Errorf("fetch observations: %w", err)
	}

	res, err := s.engine.Generate(req, obs)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLatency("forecast_generate", time.Since(start).Seconds())

	if s.events != nil {
		// Best-effort: a failed event publish never fails the forecast.
		evt := models.ForecastEvent{
			ScopeID:          req.ScopeID(),
			Category:         req.Category,
			Model:            res.Metadata.Model,
			Timeframe:        res.Metadata.Timeframe,
			Horizon:          res.Metadata.Horizon,
			ObservationCount: res.Metadata.ObservationCount,
			GeneratedAt:      res.Metadata.GeneratedAt,
		}
		if err := s.events.PublishGenerated(ctx, evt); err != nil {
			s.metrics.RecordError("event_publish")
		}
	}

	return res, nil
}

// Capabilities reports the static capabilities of the forecast endpoint.
func (s *ForecastService) Capabilities() models.Capabilities {
	return forecast.EngineCapabilities()
}
