// Package feedback turns per-node validation issues into a prioritized,
// dependency-ordered remediation plan for the content generator.
package feedback

import (
	"fmt"

	"reportgate/internal/report"
)

type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Item is one actionable remediation tied to one issue on one node.
type Item struct {
	ID       string          `json:"id"`
	NodeID   string          `json:"node_id"`
	NodeType report.NodeType `json:"node_type"`
	Issue    report.Issue    `json:"issue"`

	SpecificAction      string   `json:"specific_action"`
	ImplementationSteps []string `json:"implementation_steps"`
	ExampleBefore       string   `json:"example_before,omitempty"`
	ExampleAfter        string   `json:"example_after,omitempty"`

	// EstimatedConfidenceGain is in confidence points.
	EstimatedConfidenceGain int     `json:"estimated_confidence_gain"`
	EstimatedEffort         Effort  `json:"estimated_effort"`
	Priority                float64 `json:"priority"`
}

type DependencyKind string

const (
	DepBlocking  DependencyKind = "blocking"
	DepEnhancing DependencyKind = "enhancing"
	DepRelated   DependencyKind = "related"
)

// Dependency is an ordering edge between two feedback items.
type Dependency struct {
	DependentID string         `json:"dependent_id"`
	DependsOnID string         `json:"depends_on_id"`
	Reason      string         `json:"reason"`
	Kind        DependencyKind `json:"kind"`
}

// Plan is the ordered remediation plan handed back to the generator.
type Plan struct {
	RecommendedSequence []Item       `json:"recommended_sequence"`
	Parallelizable      []Item       `json:"parallelizable"`
	Dependencies        []Dependency `json:"dependencies,omitempty"`
	Timeline            Timeline     `json:"timeline"`
}

// Timeline partitions items into remediation horizons.
type Timeline struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// Empty reports whether the plan carries no work.
func (p Plan) Empty() bool { return len(p.RecommendedSequence) == 0 }

// ItemsForNode returns the planned items targeting a node.
func (p Plan) ItemsForNode(nodeID string) []Item {
	var out []Item
	for _, it := range p.RecommendedSequence {
		if it.NodeID == nodeID {
			out = append(out, it)
		}
	}
	return out
}

func itemID(nodeID string, issue report.Issue, n int) string {
	return fmt.Sprintf("fb/%s/%s/%d", nodeID, issue.Category, n)
}
