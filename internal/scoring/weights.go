package scoring

import (
	"fmt"
	"math"

	"reportgate/internal/report"
)

// Weights maps metric categories to their share of a node's confidence.
// Shares must sum to 1 across the five categories.
type Weights map[report.Category]float64

// DefaultWeights is the fixed default aggregation weighting.
func DefaultWeights() Weights {
	return Weights{
		report.CategoryAccuracy:    0.30,
		report.CategoryBias:        0.25,
		report.CategoryClarity:     0.20,
		report.CategoryConsistency: 0.15,
		report.CategoryCompliance:  0.10,
	}
}

func (w Weights) Validate() error {
	sum := 0.0
	for cat, v := range w {
		if v < 0 || v > 1 {
			return fmt.Errorf("weights: %s out of range [0,1]: %v", cat, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights: sum %.6f, want 1", sum)
	}
	return nil
}

// Renormalized returns the weights restricted to the given categories,
// rescaled to sum to 1. Node profiles that skip checks still aggregate to a
// 0..100 confidence this way.
func (w Weights) Renormalized(cats []report.Category) Weights {
	total := 0.0
	for _, c := range cats {
		total += w[c]
	}
	out := make(Weights, len(cats))
	if total <= 0 {
		share := 1.0 / float64(len(cats))
		for _, c := range cats {
			out[c] = share
		}
		return out
	}
	for _, c := range cats {
		out[c] = w[c] / total
	}
	return out
}

// Aggregate computes the weighted mean confidence over the metric scores.
func Aggregate(metrics []report.MetricScore) int {
	sum := 0.0
	for _, m := range metrics {
		sum += float64(m.Score) * m.Weight
	}
	n := int(math.Round(sum))
	if n < 0 {
		n = 0
	}
	if n > 100 {
		n = 100
	}
	return n
}
