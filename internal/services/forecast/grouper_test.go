package forecast

import (
	"testing"

	"KPIPulse/internal/domain/models"
)

func TestBucketMatching(t *testing.T) {
	cases := []struct {
		category string
		kind     models.BucketKind
		label    string
	}{
		{"revenue", models.BucketRevenue, "Revenue"},
		{"Monthly Revenue", models.BucketRevenue, "Revenue"},
		{"customer_growth", models.BucketGrowth, "Growth"},
		{"GROWTH", models.BucketGrowth, "Growth"},
		{"profit", models.BucketProfitability, "Profitability"},
		{"Net Margin", models.BucketProfitability, "Profitability"},
		{"nps", models.BucketCustom, "nps"},
		{"churn_rate", models.BucketCustom, "churn_rate"},
	}
	for _, c := range cases {
		b := bucketFor(c.category)
		if b.Kind != c.kind {
			t.Fatalf("bucketFor(%q): expected kind %v, got %v", c.category, c.kind, b.Kind)
		}
		if b.Label() != c.label {
			t.Fatalf("bucketFor(%q): expected label %q, got %q", c.category, c.label, b.Label())
		}
	}
}

func TestGroupOrdering(t *testing.T) {
	obs := []models.Observation{
		{Category: "zeta_custom", Value: 1},
		{Category: "profit", Value: 2},
		{Category: "alpha_custom", Value: 3},
		{Category: "revenue", Value: 4},
		{Category: "growth", Value: 5},
		{Category: "revenue", Value: 6},
	}
	groups := groupObservations(obs)

	want := []string{"Revenue", "Growth", "Profitability", "alpha_custom", "zeta_custom"}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, g := range groups {
		if g.bucket.Label() != want[i] {
			t.Fatalf("group %d: expected %q, got %q", i, want[i], g.bucket.Label())
		}
	}
	if len(groups[0].values) != 2 || groups[0].values[0] != 4 || groups[0].values[1] != 6 {
		t.Fatalf("revenue bucket should keep input order, got %v", groups[0].values)
	}
}
