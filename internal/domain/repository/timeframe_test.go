package repository

import (
	"testing"
	"time"
)

func TestNormalizeTimeframe(t *testing.T) {
	if NormalizeTimeframe("") != TFMonth {
		t.Fatalf("expected month default")
	}
	if NormalizeTimeframe("quarter") != TFQuarter {
		t.Fatalf("expected quarter")
	}
	if NormalizeTimeframe("weekly") != TFMonth {
		t.Fatalf("invalid timeframe should fall back to default")
	}
}

func TestSeasonalPeriod(t *testing.T) {
	if TFMonth.SeasonalPeriod() != 12 {
		t.Fatalf("month period should be 12")
	}
	if TFQuarter.SeasonalPeriod() != 4 {
		t.Fatalf("quarter period should be 4")
	}
	if TFYear.SeasonalPeriod() != 1 {
		t.Fatalf("year period should be 1")
	}
}

func TestPeriodLabel(t *testing.T) {
	anchor := time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

	if got := TFMonth.PeriodLabel(anchor, 2); got != "Jan 2026" {
		t.Fatalf("unexpected month label %q", got)
	}
	if got := TFQuarter.PeriodLabel(anchor, 1); got != "Q1 2026" {
		t.Fatalf("unexpected quarter label %q", got)
	}
	if got := TFYear.PeriodLabel(anchor, 3); got != "2028" {
		t.Fatalf("unexpected year label %q", got)
	}
}
