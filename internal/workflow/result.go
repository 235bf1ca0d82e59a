package workflow

import (
	"github.com/montanaflynn/stats"

	"reportgate/internal/cache"
	"reportgate/internal/feedback"
	"reportgate/internal/reeval"
	"reportgate/internal/report"
)

// IterationRecord keeps one iteration's outcome for trend and regression
// analysis.
type IterationRecord struct {
	Iteration         int                                `json:"iteration"`
	Status            reeval.Status                      `json:"status"`
	OverallConfidence int                                `json:"overall_confidence"`
	Results           map[string]report.ValidationResult `json:"results"`
	Plan              *feedback.Plan                     `json:"plan,omitempty"`
	Revalidation      *reeval.RevalidationResult         `json:"revalidation,omitempty"`
}

// ConfidenceStats summarizes the final per-node confidence distribution.
type ConfidenceStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
}

// Result is the workflow-level outbound object: everything a reporting UI or
// an automated publish gate needs to explain why the report was or wasn't
// approved.
type Result struct {
	WorkflowID string        `json:"workflow_id"`
	Kind       string        `json:"kind,omitempty"`
	Status     reeval.Status `json:"status"`
	Iterations int           `json:"iterations"`

	// ManualReview is set when the iteration budget ran out before approval.
	ManualReview bool   `json:"manual_review,omitempty"`
	Reason       string `json:"reason,omitempty"`

	OverallConfidence int                                `json:"overall_confidence"`
	Results           map[string]report.ValidationResult `json:"results"`
	Plan              *feedback.Plan                     `json:"plan,omitempty"`
	BlockingNodes     []string                           `json:"blocking_nodes,omitempty"`
	BlockingIssues    []reeval.NodeIssue                 `json:"blocking_issues,omitempty"`

	History []IterationRecord `json:"history,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
	Degraded bool     `json:"degraded,omitempty"`

	Stats        ConfidenceStats       `json:"stats"`
	JudgeCalls   int64                 `json:"judge_calls"`
	CacheMetrics cache.MetricsSnapshot `json:"cache_metrics"`
}

func confidenceStats(results map[string]report.ValidationResult) ConfidenceStats {
	if len(results) == 0 {
		return ConfidenceStats{}
	}
	vals := make([]float64, 0, len(results))
	for _, r := range results {
		vals = append(vals, float64(r.Confidence))
	}
	mean, _ := stats.Mean(vals)
	median, _ := stats.Median(vals)
	sd, _ := stats.StandardDeviation(vals)
	min, _ := stats.Min(vals)
	return ConfidenceStats{Mean: mean, Median: median, StdDev: sd, Min: min}
}
