package forecast

import (
	"math"
	"testing"

	domrepo "KPIPulse/internal/domain/repository"
)

const tol = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) <= tol }

func TestLinearClosedForm(t *testing.T) {
	// OLS over [100,200,300]: slope=100, intercept=0, so x=4 gives 400.
	got, conf := linearModel{}.Predict([]float64{100, 200, 300}, 1)
	if !almostEqual(got, 400) {
		t.Fatalf("expected 400, got %v", got)
	}
	if !almostEqual(conf, 0.9) {
		t.Fatalf("expected confidence 0.9, got %v", conf)
	}
}

func TestLinearFlatSeries(t *testing.T) {
	got, _ := linearModel{}.Predict([]float64{50, 50, 50}, 3)
	if !almostEqual(got, 50) {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestExponentialCompounding(t *testing.T) {
	// Exact 10% compounding: g = (133.1/100)^(1/3) - 1 = 0.10.
	// Smoothing with alpha=0.3: 100 -> 103 -> 108.4 -> 115.81.
	values := []float64{100, 110, 121, 133.1}
	got, conf := exponentialModel{}.Predict(values, 1)
	if !almostEqual(got, 115.81*1.10) {
		t.Fatalf("expected %v, got %v", 115.81*1.10, got)
	}
	if !almostEqual(conf, 0.85) {
		t.Fatalf("expected confidence 0.85, got %v", conf)
	}
}

func TestExponentialUndefinedGrowth(t *testing.T) {
	// First value zero makes the geometric rate undefined; it must degrade
	// to 0 growth instead of producing NaN.
	got, _ := exponentialModel{}.Predict([]float64{0, 10, 20}, 2)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("expected finite prediction, got %v", got)
	}
	if got < 0 {
		t.Fatalf("expected non-negative prediction, got %v", got)
	}
}

func TestSeasonalFallbackMatchesLinear(t *testing.T) {
	// Series shorter than the seasonal period must be indistinguishable
	// from the linear model.
	values := []float64{100, 120, 140}
	m := seasonalModel{period: domrepo.TFQuarter.SeasonalPeriod()}
	for i := 1; i <= 4; i++ {
		sp, sc := m.Predict(values, i)
		lp, lc := linearModel{}.Predict(values, i)
		if !almostEqual(sp, lp) || !almostEqual(sc, lc) {
			t.Fatalf("offset %d: seasonal (%v,%v) != linear (%v,%v)", i, sp, sc, lp, lc)
		}
	}
}

func TestSeasonalFactors(t *testing.T) {
	// Quarterly alternating series [10,20,10,20]: overall mean 15, phase
	// factors 2/3 and 4/3. OLS base at x=5 is 20, so offset 1 gives 40/3.
	values := []float64{10, 20, 10, 20}
	m := seasonalModel{period: 4}
	got, conf := m.Predict(values, 1)
	if !almostEqual(got, 40.0/3.0) {
		t.Fatalf("expected %v, got %v", 40.0/3.0, got)
	}
	if !almostEqual(conf, 0.85) {
		t.Fatalf("expected confidence capped at 0.85, got %v", conf)
	}
}

func TestMLPolynomialCorrection(t *testing.T) {
	// n>3: base + (last delta)*0.1*i.
	values := []float64{10, 20, 30, 40}
	got, _ := mlModel{}.Predict(values, 1)
	if !almostEqual(got, 51) {
		t.Fatalf("expected 51, got %v", got)
	}
	got, _ = mlModel{}.Predict(values, 2)
	if !almostEqual(got, 62) {
		t.Fatalf("expected 62, got %v", got)
	}

	// n<=3: no correction, pure linear.
	got, _ = mlModel{}.Predict([]float64{10, 20, 30}, 1)
	if !almostEqual(got, 40) {
		t.Fatalf("expected 40, got %v", got)
	}
}

func TestConfidenceMonotoneDecay(t *testing.T) {
	values := []float64{100, 110, 121, 133, 146, 161, 177, 195, 214, 236, 259, 285}
	floors := map[string]float64{"linear": 0.5, "exponential": 0.4, "seasonal": 0.6, "ml": 0.7}
	for _, m := range []Model{
		linearModel{},
		exponentialModel{},
		seasonalModel{period: 12},
		mlModel{},
	} {
		prev := math.Inf(1)
		for i := 1; i <= maxHorizon; i++ {
			_, conf := m.Predict(values, i)
			if conf > prev+tol {
				t.Fatalf("%s: confidence increased at offset %d: %v > %v", m.Name(), i, conf, prev)
			}
			if conf < floors[m.Name()]-tol {
				t.Fatalf("%s: confidence %v below floor %v", m.Name(), conf, floors[m.Name()])
			}
			prev = conf
		}
	}
}

func TestNonNegativityFloor(t *testing.T) {
	// Steeply declining series extrapolates below zero and must be floored.
	values := []float64{100, 60, 20}
	for _, m := range []Model{linearModel{}, exponentialModel{}, seasonalModel{period: 12}, mlModel{}} {
		for i := 1; i <= maxHorizon; i++ {
			got, _ := m.Predict(values, i)
			if got < 0 {
				t.Fatalf("%s: negative prediction %v at offset %d", m.Name(), got, i)
			}
		}
	}
}

func TestModelForResolution(t *testing.T) {
	cases := []struct {
		in       string
		name     string
		accuracy float64
	}{
		{"linear", "linear", 0.70},
		{"exponential", "exponential", 0.75},
		{"seasonal", "seasonal", 0.80},
		{"ml", "ml", 0.85},
		{"", "linear", 0.70},
		{"bogus", "linear", 0.70},
	}
	for _, c := range cases {
		m := ModelFor(c.in, domrepo.TFMonth)
		if m.Name() != c.name {
			t.Fatalf("ModelFor(%q): expected %s, got %s", c.in, c.name, m.Name())
		}
		if !almostEqual(m.Accuracy(), c.accuracy) {
			t.Fatalf("ModelFor(%q): expected accuracy %v, got %v", c.in, c.accuracy, m.Accuracy())
		}
	}
}
