package middleware

import (
	"context"
	"math"
	"testing"
	"time"

	"KPIPulse/internal/domain/models"
)

type countingProc struct {
	n   int
	err error
}

func (p *countingProc) Process(_ context.Context, _ *models.Observation) error {
	p.n++
	return p.err
}

type nopMetrics struct{}

func (nopMetrics) RecordObservation(string, string)        {}
func (nopMetrics) RecordError(string)                      {}
func (nopMetrics) RecordLastValue(string, string, float64) {}
func (nopMetrics) RecordLatency(string, float64)           {}

func validObservation() *models.Observation {
	return &models.Observation{
		ScopeID:  "p1",
		Category: "revenue",
		Value:    100,
		Period:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	cases := []*models.Observation{
		nil,
		{Category: "revenue", Value: 1, Period: time.Now()},
		{ScopeID: "p1", Value: 1, Period: time.Now()},
		{ScopeID: "p1", Category: "revenue", Value: math.NaN(), Period: time.Now()},
		{ScopeID: "p1", Category: "revenue", Value: math.Inf(1), Period: time.Now()},
		{ScopeID: "p1", Category: "revenue", Value: 1},
	}
	for i, o := range cases {
		if err := p.Process(context.Background(), o); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.n != 0 {
		t.Fatalf("invalid observations must not reach downstream, got %d", proc.n)
	}
}

func TestPipelineForwardsValid(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), validObservation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.n != 1 {
		t.Fatalf("expected one downstream call, got %d", proc.n)
	}
}

func TestPipelineThrottlesPerScope(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithMaxRPS(1))

	// First passes, immediate second for the same scope is throttled (nil error, dropped).
	if err := p.Process(context.Background(), validObservation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Process(context.Background(), validObservation()); err != nil {
		t.Fatalf("throttled observation should drop silently: %v", err)
	}
	if proc.n != 1 {
		t.Fatalf("expected throttle to drop second observation, got %d calls", proc.n)
	}

	// A different scope is not affected.
	other := validObservation()
	other.ScopeID = "p2"
	if err := p.Process(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.n != 2 {
		t.Fatalf("expected other scope to pass, got %d calls", proc.n)
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &countingProc{err: context.DeadlineExceeded}
	p := NewIngestPipeline(proc, nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validObservation()); err == nil {
		t.Fatalf("expected downstream error to propagate")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected observation buffered for retry, got %d", len(p.bufCh))
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithTransform(func(o *models.Observation) *models.Observation {
		o.Category = "Revenue"
		return o
	}))

	o := validObservation()
	if err := p.Process(context.Background(), o); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Category != "Revenue" {
		t.Fatalf("transform not applied, got %q", o.Category)
	}
}
