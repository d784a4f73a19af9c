package forecast

import (
	"strings"
	"testing"

	"KPIPulse/internal/domain/models"
)

func flatPredictions(values ...float64) []models.Prediction {
	preds := make([]models.Prediction, len(values))
	for i, v := range values {
		preds[i] = models.Prediction{Predicted: v, Confidence: 0.9}
	}
	return preds
}

func containsSubstring(recs []string, sub string) bool {
	for _, r := range recs {
		if strings.Contains(r, sub) {
			return true
		}
	}
	return false
}

func TestRevenueScalingRecommendation(t *testing.T) {
	res := &models.ForecastResult{
		Categories: models.CategoryForecasts{{
			Bucket:      models.Bucket{Kind: models.BucketRevenue},
			Predictions: flatPredictions(100, 110, 130), // +30%
		}},
	}
	recs := buildRecommendations(res)
	if !containsSubstring(recs, "scaling") {
		t.Fatalf("expected scaling recommendation, got %v", recs)
	}
}

func TestRevenueEfficiencyRecommendation(t *testing.T) {
	res := &models.ForecastResult{
		Categories: models.CategoryForecasts{{
			Bucket:      models.Bucket{Kind: models.BucketRevenue},
			Predictions: flatPredictions(100, 101, 102), // +2%
		}},
	}
	recs := buildRecommendations(res)
	if !containsSubstring(recs, "efficiency") {
		t.Fatalf("expected efficiency recommendation, got %v", recs)
	}
}

func TestLowConfidenceGrowthRecommendation(t *testing.T) {
	preds := flatPredictions(10, 11, 12)
	for i := range preds {
		preds[i].Confidence = 0.5
	}
	res := &models.ForecastResult{
		Categories: models.CategoryForecasts{{
			Bucket:      models.Bucket{Kind: models.BucketGrowth},
			Predictions: preds,
		}},
	}
	recs := buildRecommendations(res)
	if !containsSubstring(recs, "historical data") {
		t.Fatalf("expected data-collection recommendation, got %v", recs)
	}
}

func TestScenarioRecommendations(t *testing.T) {
	res := &models.ForecastResult{
		Categories: models.CategoryForecasts{{
			Bucket:      models.Bucket{Kind: models.BucketRevenue},
			Predictions: flatPredictions(100, 105, 110), // +10%, no revenue rule fires
		}},
		Scenarios: &models.ScenarioSet{},
	}
	recs := buildRecommendations(res)
	if !containsSubstring(recs, "contingency") || !containsSubstring(recs, "risk") {
		t.Fatalf("expected contingency and risk recommendations, got %v", recs)
	}
}

func TestFallbackRecommendation(t *testing.T) {
	res := &models.ForecastResult{
		Categories: models.CategoryForecasts{{
			Bucket:      models.Bucket{Kind: models.BucketRevenue},
			Predictions: flatPredictions(100, 105, 110),
		}},
	}
	recs := buildRecommendations(res)
	if len(recs) != 1 || !strings.Contains(recs[0], "monitoring") {
		t.Fatalf("expected single fallback recommendation, got %v", recs)
	}
}

func TestMultipleRulesFireInOrder(t *testing.T) {
	lowConf := flatPredictions(10, 11, 12)
	for i := range lowConf {
		lowConf[i].Confidence = 0.4
	}
	res := &models.ForecastResult{
		Categories: models.CategoryForecasts{
			{Bucket: models.Bucket{Kind: models.BucketRevenue}, Predictions: flatPredictions(100, 120, 150)},
			{Bucket: models.Bucket{Kind: models.BucketGrowth}, Predictions: lowConf},
		},
		Scenarios: &models.ScenarioSet{},
	}
	recs := buildRecommendations(res)
	if len(recs) != 4 {
		t.Fatalf("expected 4 recommendations, got %d: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "scaling") {
		t.Fatalf("revenue rule should fire first, got %v", recs)
	}
}
