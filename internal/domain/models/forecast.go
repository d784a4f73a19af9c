package models

import (
	"encoding/json"
	"time"
)

// BucketKind enumerates the canonical KPI category buckets.
type BucketKind int

const (
	BucketRevenue BucketKind = iota
	BucketGrowth
	BucketProfitability
	BucketCustom
)

// Bucket tags a group of observations sharing a KPI category. Custom buckets
// carry the literal category name.
type Bucket struct {
	Kind BucketKind
	Name string // set for BucketCustom only
}

// Label returns the display name used as the response map key.
func (b Bucket) Label() string {
	switch b.Kind {
	case BucketRevenue:
		return "Revenue"
	case BucketGrowth:
		return "Growth"
	case BucketProfitability:
		return "Profitability"
	default:
		return b.Name
	}
}

// PredictionFactor names a contributor to a forecast point.
type PredictionFactor struct {
	Name        string  `json:"name"`
	Impact      float64 `json:"impact"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// Interval is a symmetric confidence band around a point forecast.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Prediction is a single per-horizon forecast point.
type Prediction struct {
	Period     string             `json:"period"`
	Predicted  float64            `json:"predicted"`
	Confidence float64            `json:"confidence"`
	Interval   *Interval          `json:"interval,omitempty"`
	Factors    []PredictionFactor `json:"factors,omitempty"`
}

// CategoryForecast maps a bucket to its ordered prediction sequence.
type CategoryForecast struct {
	Bucket      Bucket
	Predictions []Prediction
}

// CategoryForecasts preserves bucket ordering in memory while serializing to
// the wire shape {bucketName: [predictions]}.
type CategoryForecasts []CategoryForecast

func (cs CategoryForecasts) MarshalJSON() ([]byte, error) {
	m := make(map[string][]Prediction, len(cs))
	for _, c := range cs {
		m[c.Bucket.Label()] = c.Predictions
	}
	return json.Marshal(m)
}

// ScenarioProbability holds the fixed scenario weights; they sum to 1.0.
type ScenarioProbability struct {
	Optimistic  float64 `json:"optimistic"`
	Realistic   float64 `json:"realistic"`
	Pessimistic float64 `json:"pessimistic"`
}

// ScenarioSet bounds the realistic forecast with fixed-multiplier variants.
type ScenarioSet struct {
	Optimistic  []Prediction        `json:"optimistic"`
	Realistic   []Prediction        `json:"realistic"`
	Pessimistic []Prediction        `json:"pessimistic"`
	Probability ScenarioProbability `json:"probability"`
}

// ForecastMetadata describes how a result was produced.
type ForecastMetadata struct {
	Model             string    `json:"model"`
	ObservationCount  int       `json:"observation_count"`
	EstimatedAccuracy float64   `json:"estimated_accuracy"`
	GeneratedAt       time.Time `json:"generated_at"`
	Horizon           int       `json:"horizon"`
	Timeframe         string    `json:"timeframe"`
}

// ForecastResult is the assembled engine output. Request-scoped; computed
// fresh on every call.
type ForecastResult struct {
	Categories      CategoryForecasts `json:"categories"`
	Scenarios       *ScenarioSet      `json:"scenarios,omitempty"`
	Recommendations []string          `json:"recommendations"`
	Metadata        ForecastMetadata  `json:"metadata"`
}
