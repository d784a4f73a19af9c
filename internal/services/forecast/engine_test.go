package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
)

func monthlyObservations(category string, values ...float64) []models.Observation {
	obs := make([]models.Observation, 0, len(values))
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		obs = append(obs, models.Observation{
			ScopeID:  "portfolio-1",
			Category: category,
			Value:    v,
			Period:   start.AddDate(0, i, 0),
		})
	}
	return obs
}

func baseRequest() models.ForecastRequest {
	return models.ForecastRequest{
		PortfolioID: "portfolio-1",
		Timeframe:   "month",
		Horizon:     3,
		Model:       "linear",
	}
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected forecast error, got %v", err)
	}
	return fe.Kind
}

func TestHorizonBoundary(t *testing.T) {
	eng := NewEngine()
	obs := monthlyObservations("revenue", 100, 200, 300)

	req := baseRequest()
	req.Horizon = 13
	if _, err := eng.Generate(req, obs); err == nil || kindOf(t, err) != KindValidation {
		t.Fatalf("expected validation error for horizon 13, got %v", err)
	}

	req.Horizon = 12
	res, err := eng.Generate(req, obs)
	if err != nil {
		t.Fatalf("horizon 12 should succeed: %v", err)
	}
	if len(res.Categories[0].Predictions) != 12 {
		t.Fatalf("expected 12 predictions, got %d", len(res.Categories[0].Predictions))
	}
}

func TestScopeRequired(t *testing.T) {
	eng := NewEngine()
	req := baseRequest()
	req.PortfolioID = ""
	req.OrganizationID = ""
	_, err := eng.Generate(req, monthlyObservations("revenue", 100, 200, 300))
	if err == nil || kindOf(t, err) != KindValidation {
		t.Fatalf("expected validation error without scope, got %v", err)
	}
}

func TestSufficiencyGate(t *testing.T) {
	eng := NewEngine()

	_, err := eng.Generate(baseRequest(), monthlyObservations("revenue", 100, 200))
	if err == nil || kindOf(t, err) != KindInsufficientHistory {
		t.Fatalf("expected insufficient history for 2 points, got %v", err)
	}

	if _, err := eng.Generate(baseRequest(), monthlyObservations("revenue", 100, 200, 300)); err != nil {
		t.Fatalf("exactly 3 points should succeed: %v", err)
	}
}

func TestAggregateSufficiencyAcrossBuckets(t *testing.T) {
	// Aggregate policy: one bucket with a single point passes as long as the
	// combined count does. Per-category rejects the same input.
	obs := append(monthlyObservations("revenue", 100, 200, 300),
		monthlyObservations("growth", 5)...)

	if _, err := NewEngine().Generate(baseRequest(), obs); err != nil {
		t.Fatalf("aggregate policy should accept: %v", err)
	}

	strict := NewEngine(WithSufficiencyPolicy(SufficiencyPerCategory))
	_, err := strict.Generate(baseRequest(), obs)
	if err == nil || kindOf(t, err) != KindInsufficientHistory {
		t.Fatalf("per_category policy should reject sparse bucket, got %v", err)
	}
}

func TestScenarioScalingLaw(t *testing.T) {
	eng := NewEngine()
	req := baseRequest()
	req.Horizon = 6
	req.IncludeIntervals = true
	req.IncludeScenarios = true

	res, err := eng.Generate(req, monthlyObservations("revenue", 100, 110, 121, 133))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Scenarios == nil {
		t.Fatalf("expected scenarios")
	}
	sc := res.Scenarios

	if len(sc.Optimistic) != req.Horizon || len(sc.Pessimistic) != req.Horizon {
		t.Fatalf("scenario length mismatch")
	}
	for i := range sc.Realistic {
		r := sc.Realistic[i]
		if !almostEqual(sc.Optimistic[i].Predicted, r.Predicted*1.2) {
			t.Fatalf("optimistic[%d]: %v != %v*1.2", i, sc.Optimistic[i].Predicted, r.Predicted)
		}
		if !almostEqual(sc.Pessimistic[i].Predicted, r.Predicted*0.8) {
			t.Fatalf("pessimistic[%d]: %v != %v*0.8", i, sc.Pessimistic[i].Predicted, r.Predicted)
		}
		if r.Interval == nil || sc.Optimistic[i].Interval == nil {
			t.Fatalf("expected intervals on scenario predictions")
		}
		if !almostEqual(sc.Optimistic[i].Interval.Upper, r.Interval.Upper*1.2) {
			t.Fatalf("optimistic interval not scaled at %d", i)
		}
		if !almostEqual(sc.Pessimistic[i].Interval.Lower, r.Interval.Lower*0.8) {
			t.Fatalf("pessimistic interval not scaled at %d", i)
		}
	}

	sum := sc.Probability.Optimistic + sc.Probability.Realistic + sc.Probability.Pessimistic
	if sum != 1.0 {
		t.Fatalf("probabilities must sum to exactly 1.0, got %v", sum)
	}
}

func TestIntervalShape(t *testing.T) {
	eng := NewEngine()
	req := baseRequest()
	req.IncludeIntervals = true

	res, err := eng.Generate(req, monthlyObservations("revenue", 100, 200, 300))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, p := range res.Categories[0].Predictions {
		if p.Interval == nil {
			t.Fatalf("expected interval on every prediction")
		}
		variance := p.Predicted * (1 - p.Confidence) * 0.5
		if !almostEqual(p.Interval.Upper, p.Predicted+variance) {
			t.Fatalf("upper bound mismatch: %v vs %v", p.Interval.Upper, p.Predicted+variance)
		}
		if !almostEqual(p.Interval.Lower, math.Max(0, p.Predicted-variance)) {
			t.Fatalf("lower bound mismatch")
		}
	}

	// Intervals are strictly opt-in.
	req.IncludeIntervals = false
	res, err = eng.Generate(req, monthlyObservations("revenue", 100, 200, 300))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Categories[0].Predictions[0].Interval != nil {
		t.Fatalf("interval present without include_intervals")
	}
}

func TestMetadata(t *testing.T) {
	fixed := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	eng := NewEngine(WithClock(func() time.Time { return fixed }))

	req := baseRequest()
	req.Model = "ml"
	obs := monthlyObservations("revenue", 100, 200, 300, 400)

	res, err := eng.Generate(req, obs)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	md := res.Metadata
	if md.Model != "ml" || md.ObservationCount != 4 || md.Horizon != 3 || md.Timeframe != "month" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
	if !almostEqual(md.EstimatedAccuracy, 0.85) {
		t.Fatalf("expected accuracy 0.85, got %v", md.EstimatedAccuracy)
	}
	if !md.GeneratedAt.Equal(fixed) {
		t.Fatalf("expected generated_at %v, got %v", fixed, md.GeneratedAt)
	}
}

func TestPeriodLabels(t *testing.T) {
	eng := NewEngine()
	req := baseRequest()
	req.Timeframe = "quarter"
	req.Horizon = 2

	obs := []models.Observation{
		{ScopeID: "portfolio-1", Category: "revenue", Value: 100, Period: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ScopeID: "portfolio-1", Category: "revenue", Value: 110, Period: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{ScopeID: "portfolio-1", Category: "revenue", Value: 121, Period: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
	}
	res, err := eng.Generate(req, obs)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	preds := res.Categories[0].Predictions
	if preds[0].Period != "Q1 2026" || preds[1].Period != "Q2 2026" {
		t.Fatalf("unexpected labels: %q %q", preds[0].Period, preds[1].Period)
	}
}

func TestFactorsAttached(t *testing.T) {
	eng := NewEngine()
	res, err := eng.Generate(baseRequest(), monthlyObservations("revenue", 100, 200, 300))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	p := res.Categories[0].Predictions[0]
	names := make(map[string]models.PredictionFactor, len(p.Factors))
	for _, f := range p.Factors {
		names[f.Name] = f
	}
	trend, ok := names["Historical Trend"]
	if !ok {
		t.Fatalf("missing trend factor")
	}
	if !almostEqual(trend.Impact, 0.15) {
		t.Fatalf("rising series should have +0.15 trend impact, got %v", trend.Impact)
	}
	if _, ok := names["Seasonal Pattern"]; !ok {
		t.Fatalf("missing seasonal factor")
	}
	unc, ok := names["Model Uncertainty"]
	if !ok {
		t.Fatalf("missing uncertainty factor")
	}
	if unc.Impact != 0 || !almostEqual(unc.Confidence, 0.7) {
		t.Fatalf("unexpected uncertainty factor: %+v", unc)
	}
}

func TestCapabilities(t *testing.T) {
	caps := EngineCapabilities()
	if caps.MaxHorizon != 12 {
		t.Fatalf("expected max horizon 12, got %d", caps.MaxHorizon)
	}
	if len(caps.Models) != 4 || len(caps.Timeframes) != 3 {
		t.Fatalf("unexpected capabilities: %+v", caps)
	}
}
