package repository

import (
	"context"
	"time"

	"KPIPulse/internal/domain/models"
)

// ObservationStream is a live feed of KPI observations (WebSocket or similar).
type ObservationStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Observation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes observations to a message broker.
type Publisher interface {
	Publish(ctx context.Context, o *models.Observation) error
	PublishBatch(ctx context.Context, obs []*models.Observation) error
	Close() error
}

// Storage persists observations.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, o *models.Observation) error
	StoreBatch(ctx context.Context, obs []*models.Observation) error
	Query(ctx context.Context, scopeID, category string, from, to time.Time, limit int) ([]*models.Observation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// ObservationStore provides read-only access to historical observations for
// forecasting. Results are sorted ascending by period.
type ObservationStore interface {
	GetObservations(ctx context.Context, scopeID, category string, limit int) ([]models.Observation, error)
}

// ForecastEventPublisher announces completed forecast runs.
type ForecastEventPublisher interface {
	PublishGenerated(ctx context.Context, e models.ForecastEvent) error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordObservation(backend, scope string)
	RecordError(kind string)
	RecordLastValue(scope, category string, value float64)
	RecordLatency(op string, seconds float64)
}
