package feedback

import (
	"fmt"

	"reportgate/internal/report"
)

// Context carries the workflow state the priority formula needs.
type Context struct {
	// ConfidenceThreshold the node must reach.
	ConfidenceThreshold int
	// IterationsRemaining before the workflow budget is exhausted.
	IterationsRemaining int
}

func severityMultiplier(s report.Severity) float64 {
	switch s {
	case report.SeverityCritical:
		return 1.5
	case report.SeverityHigh:
		return 1.2
	case report.SeverityLow:
		return 0.8
	default:
		return 1.0
	}
}

// urgencyMultiplier rises when the workflow is about to run out of
// iterations: whatever remains must land now.
func urgencyMultiplier(cctx Context) float64 {
	if cctx.IterationsRemaining <= 1 {
		return 1.25
	}
	return 1.0
}

func clampPriority(p float64) float64 {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

// Synthesize generates one feedback item per issue on the node's validation
// result. It is purely derivative: no external calls, and it only fails on
// malformed input.
func Synthesize(res report.ValidationResult, node report.Node, cctx Context) ([]Item, error) {
	if res.NodeID != "" && node.ID != "" && res.NodeID != node.ID {
		return nil, fmt.Errorf("feedback: result for node %q paired with node %q", res.NodeID, node.ID)
	}
	if node.ID == "" {
		return nil, fmt.Errorf("feedback: node has no id")
	}

	confidenceGap := cctx.ConfidenceThreshold - res.Confidence
	gapBoost := 1.0
	if confidenceGap > 20 {
		gapBoost = 1.5
	}
	urgency := urgencyMultiplier(cctx)
	importance := float64(node.Meta.Importance) / 10.0

	items := make([]Item, 0, len(res.Issues))
	for i, issue := range res.Issues {
		t := templateFor(issue, node.Type)
		steps := make([]string, len(t.steps))
		for j, s := range t.steps {
			steps[j] = fillEvidence(s, issue)
		}
		priority := clampPriority(
			float64(issue.Priority) * severityMultiplier(issue.Severity) * gapBoost * importance * urgency,
		)
		items = append(items, Item{
			ID:                      itemID(node.ID, issue, i),
			NodeID:                  node.ID,
			NodeType:                node.Type,
			Issue:                   issue,
			SpecificAction:          fillEvidence(t.action, issue),
			ImplementationSteps:     steps,
			ExampleBefore:           t.before,
			ExampleAfter:            t.after,
			EstimatedConfidenceGain: t.gain,
			EstimatedEffort:         t.effort,
			Priority:                priority,
		})
	}
	return items, nil
}
