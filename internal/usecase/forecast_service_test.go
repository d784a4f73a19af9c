package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/services/forecast"
)

type fakeStore struct {
	obs []models.Observation
	err error

	gotScope    string
	gotCategory string
	gotLimit    int
}

func (f *fakeStore) GetObservations(_ context.Context, scopeID, category string, limit int) ([]models.Observation, error) {
	f.gotScope = scopeID
	f.gotCategory = category
	f.gotLimit = limit
	return f.obs, f.err
}

type fakeMetrics struct {
	errors    []string
	latencies []string
}

func (f *fakeMetrics) RecordObservation(string, string)        {}
func (f *fakeMetrics) RecordError(kind string)                 { f.errors = append(f.errors, kind) }
func (f *fakeMetrics) RecordLastValue(string, string, float64) {}
func (f *fakeMetrics) RecordLatency(op string, _ float64)      { f.latencies = append(f.latencies, op) }

type fakeEvents struct {
	published []models.ForecastEvent
	err       error
}

func (f *fakeEvents) PublishGenerated(_ context.Context, e models.ForecastEvent) error {
	f.published = append(f.published, e)
	return f.err
}

func serviceObservations(n int) []models.Observation {
	obs := make([]models.Observation, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range obs {
		obs[i] = models.Observation{
			ScopeID:  "p1",
			Category: "revenue",
			Value:    100 + float64(i)*10,
			Period:   base.AddDate(0, i, 0),
		}
	}
	return obs
}

func TestGenerateFetchesAndForecasts(t *testing.T) {
	store := &fakeStore{obs: serviceObservations(6)}
	m := &fakeMetrics{}
	svc := NewForecastService(store, forecast.NewEngine(), m)
	svc.SetHistoryLimit(120)

	res, err := svc.Generate(context.Background(), models.ForecastRequest{
		PortfolioID: "p1", Category: "revenue", Timeframe: "month", Horizon: 3, Model: "linear",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gotScope != "p1" || store.gotCategory != "revenue" || store.gotLimit != 120 {
		t.Fatalf("store called with scope=%q category=%q limit=%d", store.gotScope, store.gotCategory, store.gotLimit)
	}
	if res.Metadata.ObservationCount != 6 {
		t.Fatalf("expected 6 observations in metadata, got %d", res.Metadata.ObservationCount)
	}
	if len(m.latencies) == 0 || m.latencies[0] != "forecast_generate" {
		t.Fatalf("expected forecast_generate latency, got %v", m.latencies)
	}
}

func TestGenerateStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("ch down")}
	m := &fakeMetrics{}
	svc := NewForecastService(store, forecast.NewEngine(), m)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{
		PortfolioID: "p1", Timeframe: "month", Horizon: 3, Model: "linear",
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(m.errors) != 1 || m.errors[0] != "observation_fetch" {
		t.Fatalf("expected observation_fetch error metric, got %v", m.errors)
	}
}

func TestGenerateEngineErrorPassesThrough(t *testing.T) {
	store := &fakeStore{obs: serviceObservations(2)} // below sufficiency gate
	svc := NewForecastService(store, forecast.NewEngine(), &fakeMetrics{})

	_, err := svc.Generate(context.Background(), models.ForecastRequest{
		PortfolioID: "p1", Timeframe: "month", Horizon: 3, Model: "linear",
	})
	var fe *forecast.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if fe.Kind != forecast.KindInsufficientHistory {
		t.Fatalf("expected insufficient history, got kind %v", fe.Kind)
	}
}

func TestGenerateEventPublished(t *testing.T) {
	store := &fakeStore{obs: serviceObservations(6)}
	events := &fakeEvents{}
	svc := NewForecastService(store, forecast.NewEngine(), &fakeMetrics{})
	svc.SetEventPublisher(events)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{
		PortfolioID: "p1", Category: "revenue", Timeframe: "quarter", Horizon: 2, Model: "exponential",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.published) != 1 {
		t.Fatalf("expected one event, got %d", len(events.published))
	}
	e := events.published[0]
	if e.ScopeID != "p1" || e.Model != "exponential" || e.Timeframe != "quarter" || e.Horizon != 2 {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestGenerateEventPublishFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{obs: serviceObservations(6)}
	events := &fakeEvents{err: errors.New("broker down")}
	m := &fakeMetrics{}
	svc := NewForecastService(store, forecast.NewEngine(), m)
	svc.SetEventPublisher(events)

	res, err := svc.Generate(context.Background(), models.ForecastRequest{
		PortfolioID: "p1", Timeframe: "month", Horizon: 3, Model: "linear",
	})
	if err != nil || res == nil {
		t.Fatalf("publish failure must not fail the forecast: %v", err)
	}
	found := false
	for _, k := range m.errors {
		if k == "event_publish" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected event_publish error metric, got %v", m.errors)
	}
}
