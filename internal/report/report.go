package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

type NodeType string

const (
	NodeScoring        NodeType = "scoring"
	NodeInsight        NodeType = "insight"
	NodeRecommendation NodeType = "recommendation"
	NodeSummary        NodeType = "summary"
	NodeContext        NodeType = "context"
)

type Category string

const (
	CategoryAccuracy    Category = "accuracy"
	CategoryBias        Category = "bias"
	CategoryClarity     Category = "clarity"
	CategoryConsistency Category = "consistency"
	CategoryCompliance  Category = "compliance"
)

// Categories lists all metric categories in canonical order.
var Categories = []Category{
	CategoryAccuracy, CategoryBias, CategoryClarity, CategoryConsistency, CategoryCompliance,
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities for sorting and multipliers. Unknown severities
// rank as medium.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityLow:
		return 1
	default:
		return 2
	}
}

// Issue is one concrete defect found in a node, tagged with the metric
// category that surfaced it.
type Issue struct {
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"`
	Priority    int      `json:"priority"`
}

// MetricScore is one of the five per-node quality dimensions.
type MetricScore struct {
	Category Category `json:"category"`
	Score    int      `json:"score"`
	Weight   float64  `json:"weight"`
	Evidence []string `json:"evidence,omitempty"`
	Issues   []Issue  `json:"issues,omitempty"`
	// SelfConfidence is the judge's confidence in this metric itself.
	SelfConfidence int `json:"self_confidence"`
	// Degraded marks a metric whose judge call failed after retries and was
	// assigned a conservative score instead.
	Degraded bool `json:"degraded,omitempty"`
}

// ValidationResult is the current verdict for one node in one iteration.
type ValidationResult struct {
	NodeID     string        `json:"node_id"`
	Confidence int           `json:"confidence"`
	Metrics    []MetricScore `json:"metrics"`
	Issues     []Issue       `json:"issues,omitempty"`
	// Degraded is true when any metric took the JudgeUnavailable path.
	Degraded     bool      `json:"degraded,omitempty"`
	JudgeVersion string    `json:"judge_version"`
	Timestamp    time.Time `json:"timestamp"`
	// FromCache marks results carried forward without a fresh oracle call.
	FromCache bool `json:"from_cache,omitempty"`
}

// HasCritical reports whether any issue is critical.
func (r ValidationResult) HasCritical() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// NodeMeta is the structural metadata attached at extraction time.
type NodeMeta struct {
	ParentContext string   `json:"parent_context,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty"`
	// Importance and ValidationComplexity are 1..10, derived from node type.
	Importance           int    `json:"importance"`
	ValidationComplexity int    `json:"validation_complexity"`
	DataSource           string `json:"data_source,omitempty"`
}

// Node is a discrete, independently validatable unit of a report.
// A node is immutable within an iteration; (ID, ContentHash) is its cache
// identity.
type Node struct {
	ID          string          `json:"id"`
	Type        NodeType        `json:"type"`
	Content     json.RawMessage `json:"content"`
	ContentHash string          `json:"content_hash"`
	Meta        NodeMeta        `json:"meta"`
}

// Text renders the node content for judge consumption.
func (n Node) Text() string {
	var s string
	if err := json.Unmarshal(n.Content, &s); err == nil {
		return s
	}
	return string(n.Content)
}

// HashContent returns the canonical content hash for cache identity.
// Content is raw JSON already, so the hash is over the serialized bytes.
func HashContent(content json.RawMessage) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Report is the artifact under validation for one workflow iteration.
type Report struct {
	WorkflowID string `json:"workflow_id"`
	Kind       string `json:"kind"`
	Iteration  int    `json:"iteration"`
	Nodes      []Node `json:"nodes"`
	// Warnings accumulated during extraction; non-fatal per contract.
	Warnings []string `json:"warnings,omitempty"`
}

// NodeByID returns the node with the given id.
func (r *Report) NodeByID(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Dependents returns ids of nodes that list id among their dependencies,
// sorted for determinism.
func (r *Report) Dependents(id string) []string {
	var out []string
	for _, n := range r.Nodes {
		for _, dep := range n.Meta.Dependencies {
			if dep == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}
