package forecast

import (
	"math"

	domrepo "KPIPulse/internal/domain/repository"
)

// Model is the common contract of the forecast library: given the sorted
// historical values and a future offset i >= 1, return the point forecast and
// its confidence. All models are pure functions of their inputs.
type Model interface {
	Name() string
	Predict(values []float64, offset int) (predicted, confidence float64)
	Accuracy() float64
}

// ModelFor resolves a model by name. Unknown or empty names fall back to the
// linear model. The timeframe determines the seasonal cycle length.
func ModelFor(name string, tf domrepo.Timeframe) Model {
	switch name {
	case "exponential":
		return exponentialModel{}
	case "seasonal":
		return seasonalModel{period: tf.SeasonalPeriod()}
	case "ml":
		return mlModel{}
	default:
		return linearModel{}
	}
}

type linearModel struct{}

func (linearModel) Name() string      { return "linear" }
func (linearModel) Accuracy() float64 { return 0.70 }

func (linearModel) Predict(values []float64, offset int) (float64, float64) {
	n := len(values)
	predicted := olsExtrapolate(values, n+offset)
	return floorNonNegative(predicted), clampConfidence(1-0.1*float64(offset), 0.5, 0.95)
}

type exponentialModel struct{}

func (exponentialModel) Name() string      { return "exponential" }
func (exponentialModel) Accuracy() float64 { return 0.75 }

func (exponentialModel) Predict(values []float64, offset int) (float64, float64) {
	conf := clampConfidence(1-0.15*float64(offset), 0.4, 0.9)
	n := len(values)
	if n == 0 {
		return 0, conf
	}

	// Simple exponential smoothing, alpha fixed at 0.3.
	const alpha = 0.3
	s := values[0]
	for k := 1; k < n; k++ {
		s = alpha*values[k] + (1-alpha)*s
	}

	// Geometric growth between first and last value; an undefined rate
	// (single point, zero or sign-flipping series) degrades to 0 rather than
	// propagating NaN.
	g := 0.0
	if n > 1 && values[0] != 0 {
		ratio := values[n-1] / values[0]
		if ratio > 0 {
			g = math.Pow(ratio, 1/float64(n-1)) - 1
		}
	}

	predicted := s * math.Pow(1+g, float64(offset))
	return floorNonNegative(predicted), conf
}

type seasonalModel struct {
	period int
}

func (seasonalModel) Name() string      { return "seasonal" }
func (seasonalModel) Accuracy() float64 { return 0.80 }

func (m seasonalModel) Predict(values []float64, offset int) (float64, float64) {
	n := len(values)
	if n < m.period {
		// Not enough history for one full cycle; behave exactly like the
		// linear model.
		return linearModel{}.Predict(values, offset)
	}

	total := 0.0
	for _, v := range values {
		total += v
	}
	overall := total / float64(n)

	// Per-phase seasonal factor: phase mean over overall mean.
	factors := make([]float64, m.period)
	for p := 0; p < m.period; p++ {
		sum, count := 0.0, 0
		for k := p; k < n; k += m.period {
			sum += values[k]
			count++
		}
		factors[p] = 1
		if count > 0 && overall != 0 {
			factors[p] = (sum / float64(count)) / overall
		}
	}

	base := olsExtrapolate(values, n+offset)
	predicted := base * factors[(offset-1)%m.period]
	return floorNonNegative(predicted), clampConfidence(1-0.08*float64(offset), 0.6, 0.85)
}

type mlModel struct{}

func (mlModel) Name() string      { return "ml" }
func (mlModel) Accuracy() float64 { return 0.85 }

// mlModel is a heuristic polynomial correction on top of the linear base:
// the latest first difference scaled by 0.1 per step out.
func (mlModel) Predict(values []float64, offset int) (float64, float64) {
	n := len(values)
	base := olsExtrapolate(values, n+offset)
	term := 0.0
	if n > 3 {
		term = (values[n-1] - values[n-2]) * 0.1 * float64(offset)
	}
	return floorNonNegative(base + term), clampConfidence(1-0.06*float64(offset), 0.7, 0.92)
}

// olsExtrapolate fits ordinary least squares over index x=1..n and evaluates
// the fitted line at x. A degenerate fit (n < 2 or zero denominator) falls
// back to the series mean.
func olsExtrapolate(values []float64, x int) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for k, v := range values {
		xi := float64(k + 1)
		sumX += xi
		sumY += v
		sumXY += xi * v
		sumXX += xi * xi
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / fn
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn
	return slope*float64(x) + intercept
}

// floorNonNegative clamps predictions at zero and scrubs NaN/Inf produced by
// degenerate arithmetic so they never reach a Prediction.
func floorNonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, v)
}

func clampConfidence(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
