package forecast

import (
	"sort"
	"strings"

	"KPIPulse/internal/domain/models"
)

// SufficiencyPolicy controls where the minimum-history gate applies.
//
// The aggregate policy checks the combined observation count once, before any
// per-bucket work: a bucket with a single point can still be forecast when
// other buckets supply enough points to pass. per_category gates every bucket
// individually.
type SufficiencyPolicy string

const (
	SufficiencyAggregate   SufficiencyPolicy = "aggregate"
	SufficiencyPerCategory SufficiencyPolicy = "per_category"
)

// minObservations is the sufficiency gate: fewer total points than this and
// the whole request is rejected.
const minObservations = 3

// bucketGroup holds one bucket's observation slice, ordered ascending by
// period as delivered by the store.
type bucketGroup struct {
	bucket models.Bucket
	values []float64
	last   models.Observation
}

// bucketFor matches a category label against the canonical buckets using
// case-insensitive substring matching. Unmatched labels become custom buckets
// keyed by the literal category string.
func bucketFor(category string) models.Bucket {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "revenue"):
		return models.Bucket{Kind: models.BucketRevenue}
	case strings.Contains(c, "growth"):
		return models.Bucket{Kind: models.BucketGrowth}
	case strings.Contains(c, "profit"), strings.Contains(c, "margin"):
		return models.Bucket{Kind: models.BucketProfitability}
	default:
		return models.Bucket{Kind: models.BucketCustom, Name: category}
	}
}

// groupObservations partitions observations into buckets. Fixed buckets come
// first (Revenue, Growth, Profitability), then custom buckets sorted by name,
// so results are deterministic regardless of input interleaving.
func groupObservations(obs []models.Observation) []bucketGroup {
	byLabel := make(map[string]*bucketGroup)
	for _, o := range obs {
		b := bucketFor(o.Category)
		g, ok := byLabel[b.Label()]
		if !ok {
			g = &bucketGroup{bucket: b}
			byLabel[b.Label()] = g
		}
		g.values = append(g.values, o.Value)
		g.last = o
	}

	fixed := []string{"Revenue", "Growth", "Profitability"}
	out := make([]bucketGroup, 0, len(byLabel))
	for _, label := range fixed {
		if g, ok := byLabel[label]; ok {
			out = append(out, *g)
			delete(byLabel, label)
		}
	}
	customs := make([]string, 0, len(byLabel))
	for label := range byLabel {
		customs = append(customs, label)
	}
	sort.Strings(customs)
	for _, label := range customs {
		out = append(out, *byLabel[label])
	}
	return out
}
