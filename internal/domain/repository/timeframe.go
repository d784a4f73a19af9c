package repository

import (
	"fmt"
	"time"
)

// Timeframe represents the forecast period granularity.
type Timeframe string

const (
	TFMonth   Timeframe = "month"
	TFQuarter Timeframe = "quarter"
	TFYear    Timeframe = "year"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TFMonth, TFQuarter, TFYear:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TFMonth }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// SeasonalPeriod returns the number of phases in one seasonal cycle.
func (tf Timeframe) SeasonalPeriod() int {
	switch tf {
	case TFQuarter:
		return 4
	case TFYear:
		return 1
	default:
		return 12
	}
}

// PeriodLabel formats the period `offset` steps after anchor.
func (tf Timeframe) PeriodLabel(anchor time.Time, offset int) string {
	switch tf {
	case TFQuarter:
		t := anchor.AddDate(0, 3*offset, 0)
		q := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("Q%d %d", q, t.Year())
	case TFYear:
		return fmt.Sprintf("%d", anchor.Year()+offset)
	default:
		return anchor.AddDate(0, offset, 0).Format("Jan 2006")
	}
}
