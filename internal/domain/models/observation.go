package models

import "time"

// Observation is a single historical KPI data point. Immutable, externally
// sourced; the forecast engine never mutates or persists it.
type Observation struct {
	ScopeID  string
	Category string
	Value    float64
	Period   time.Time
}

// ForecastEvent describes a completed forecast run for downstream consumers.
type ForecastEvent struct {
	ScopeID          string    `json:"scope_id"`
	Category         string    `json:"category,omitempty"`
	Model            string    `json:"model"`
	Timeframe        string    `json:"timeframe"`
	Horizon          int       `json:"horizon"`
	ObservationCount int       `json:"observation_count"`
	GeneratedAt      time.Time `json:"generated_at"`
}
