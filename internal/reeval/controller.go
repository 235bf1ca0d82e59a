package reeval

import (
	"context"
	"log"
	"math"
	"sort"

	"reportgate/internal/feedback"
	"reportgate/internal/report"
	"reportgate/internal/scoring"
)

type Status string

const (
	StatusApproved         Status = "approved"
	StatusRequiresRevision Status = "requires_further_revision"
	StatusFailed           Status = "failed"
)

type Phase string

const (
	PhaseAnalyzing        Phase = "analyzing"
	PhaseSelectiveScoring Phase = "selective_scoring"
	PhaseConsistencyCheck Phase = "consistency_check"
	PhaseDeciding         Phase = "deciding"
)

// Snapshot is one iteration's validation state, used as the baseline for the
// next re-evaluation. Results are superseded, never mutated.
type Snapshot struct {
	Report      *report.Report
	Results     map[string]report.ValidationResult
	Consistency ConsistencyReport
}

// NodeIssue attributes an issue to its node.
type NodeIssue struct {
	NodeID string       `json:"node_id"`
	Issue  report.Issue `json:"issue"`
}

// RegressionIssue is a new issue plausibly introduced by a specific applied
// feedback item (same node, same category).
type RegressionIssue struct {
	NodeID         string       `json:"node_id"`
	Issue          report.Issue `json:"issue"`
	FeedbackID     string       `json:"feedback_id"`
	Recommendation string       `json:"recommendation"` // abandon | modify
}

// FeedbackOutcome is the improvement-effectiveness verdict for one applied
// feedback item.
type FeedbackOutcome struct {
	FeedbackID     string `json:"feedback_id"`
	NodeID         string `json:"node_id"`
	Verdict        string `json:"verdict"` // effective | ineffective | regressive
	Recommendation string `json:"recommendation"`
	ConfidenceDiff int    `json:"confidence_diff"`
}

// RevalidationResult is the outcome of one re-evaluation iteration.
type RevalidationResult struct {
	Status  Status           `json:"status"`
	Changes []ChangeAnalysis `json:"changes,omitempty"`

	Revalidated []string `json:"revalidated_nodes,omitempty"`
	Unchanged   []string `json:"unchanged_nodes,omitempty"`

	NewIssues        []NodeIssue       `json:"new_issues,omitempty"`
	ResolvedIssues   []NodeIssue       `json:"resolved_issues,omitempty"`
	RegressionIssues []RegressionIssue `json:"regression_issues,omitempty"`
	FeedbackOutcomes []FeedbackOutcome `json:"feedback_outcomes,omitempty"`

	// IntegrityViolations records issues that disappeared without a content
	// change in the node they referenced.
	IntegrityViolations []string `json:"integrity_violations,omitempty"`

	Consistency ConsistencyReport `json:"consistency"`

	Results           map[string]report.ValidationResult `json:"results"`
	OverallConfidence int                                `json:"overall_confidence"`
	BlockingNodes     []string                           `json:"blocking_nodes,omitempty"`
	BlockingIssues    []NodeIssue                        `json:"blocking_issues,omitempty"`
}

// Controller runs the per-iteration state machine:
// Analyzing → SelectiveScoring → ConsistencyCheck → Deciding.
type Controller struct {
	Scorer   *scoring.Scorer
	Registry *report.Registry

	ConfidenceThreshold  int
	ConsistencyThreshold int
	Strict               bool

	// ValidateUnmodified opts unchanged nodes into re-scoring too, trading
	// cost for a fresh look at everything.
	ValidateUnmodified bool
	Depth              ConsistencyDepth
}

// Reevaluate re-validates a modified report against its prior snapshot,
// re-scoring only what changed. Cost scales with the size of the change, not
// the size of the report.
func (c *Controller) Reevaluate(ctx context.Context, prev Snapshot, next *report.Report, applied []feedback.Item) RevalidationResult {
	out := RevalidationResult{Results: map[string]report.ValidationResult{}}

	// ---- Analyzing ----
	log.Printf("reeval: workflow=%s phase=%s", next.WorkflowID, PhaseAnalyzing)
	out.Changes = AnalyzeChanges(prev.Report, next, c.Registry)

	changed := map[string]ChangeAnalysis{}
	consistencyScope := map[string]bool{}
	for _, ch := range out.Changes {
		changed[ch.NodeID] = ch
		if ch.RevalidationRequired {
			consistencyScope[ch.NodeID] = true
		}
		if ch.ConsistencyCheckRequired {
			for _, id := range ch.AffectedNodes {
				consistencyScope[id] = true
			}
		}
	}

	// ---- SelectiveScoring ----
	log.Printf("reeval: workflow=%s phase=%s", next.WorkflowID, PhaseSelectiveScoring)
	var toScore []report.Node
	contentChanged := map[string]bool{}
	for _, n := range next.Nodes {
		ch, isChanged := changed[n.ID]
		needs := isChanged && ch.RevalidationRequired
		if needs {
			contentChanged[n.ID] = true
		}
		if needs || c.ValidateUnmodified {
			toScore = append(toScore, n)
			out.Revalidated = append(out.Revalidated, n.ID)
		} else {
			out.Unchanged = append(out.Unchanged, n.ID)
		}
	}

	scored := c.Scorer.ScoreBatch(ctx, toScore)
	for _, n := range next.Nodes {
		if res, ok := scored[n.ID]; ok {
			out.Results[n.ID] = res
		} else if res, ok := prev.Results[n.ID]; ok {
			res.FromCache = true
			out.Results[n.ID] = res
		} else {
			// A node the analyzer did not mark and the snapshot does not
			// know; score it rather than release it unvalidated.
			out.Results[n.ID] = c.Scorer.ScoreNode(ctx, n)
			out.Revalidated = append(out.Revalidated, n.ID)
		}
	}

	c.diffIssues(&out, prev, contentChanged, applied)

	// ---- ConsistencyCheck ----
	log.Printf("reeval: workflow=%s phase=%s", next.WorkflowID, PhaseConsistencyCheck)
	var scopeIDs []string
	for id := range consistencyScope {
		scopeIDs = append(scopeIDs, id)
	}
	out.Consistency = CheckConsistency(next, scopeIDs, c.Depth, prev.Consistency)

	// ---- Deciding ----
	log.Printf("reeval: workflow=%s phase=%s", next.WorkflowID, PhaseDeciding)
	d := Decide(next, out.Results, out.Consistency, Thresholds{
		Confidence:  c.ConfidenceThreshold,
		Consistency: c.ConsistencyThreshold,
		Strict:      c.Strict,
	})
	out.Status = d.Status
	out.OverallConfidence = d.OverallConfidence
	out.BlockingNodes = d.BlockingNodes
	out.BlockingIssues = d.BlockingIssues
	return out
}

// diffIssues computes new/resolved issues, regression attribution, feedback
// effectiveness, and the issue-continuity audit.
func (c *Controller) diffIssues(out *RevalidationResult, prev Snapshot, contentChanged map[string]bool, applied []feedback.Item) {
	appliedByNode := map[string][]feedback.Item{}
	for _, it := range applied {
		appliedByNode[it.NodeID] = append(appliedByNode[it.NodeID], it)
	}

	issueKey := func(is report.Issue) string {
		return string(is.Category) + "|" + string(is.Severity) + "|" + is.Description
	}

	// Stable iteration so diff output and result JSON do not reorder
	// between runs.
	nodeIDs := make([]string, 0, len(out.Results))
	for nodeID := range out.Results {
		nodeIDs = append(nodeIDs, nodeID)
	}
	sort.Strings(nodeIDs)

	for _, nodeID := range nodeIDs {
		newRes := out.Results[nodeID]
		prevRes, had := prev.Results[nodeID]
		if !had || newRes.FromCache {
			continue
		}
		prevSet := map[string]report.Issue{}
		for _, is := range prevRes.Issues {
			prevSet[issueKey(is)] = is
		}
		newSet := map[string]bool{}

		for _, is := range newRes.Issues {
			k := issueKey(is)
			newSet[k] = true
			if _, existed := prevSet[k]; existed {
				continue
			}
			out.NewIssues = append(out.NewIssues, NodeIssue{NodeID: nodeID, Issue: is})
			// Same category as an applied fix on the same node: plausible
			// side effect of that fix.
			for _, it := range appliedByNode[nodeID] {
				if it.Issue.Category == is.Category {
					rec := "modify"
					if is.Severity.Rank() >= report.SeverityHigh.Rank() {
						rec = "abandon"
					}
					out.RegressionIssues = append(out.RegressionIssues, RegressionIssue{
						NodeID:         nodeID,
						Issue:          is,
						FeedbackID:     it.ID,
						Recommendation: rec,
					})
					break
				}
			}
		}

		for k, is := range prevSet {
			if newSet[k] {
				continue
			}
			out.ResolvedIssues = append(out.ResolvedIssues, NodeIssue{NodeID: nodeID, Issue: is})
			if !contentChanged[nodeID] {
				out.IntegrityViolations = append(out.IntegrityViolations,
					"issue disappeared without a content change in node "+nodeID+": "+is.Description)
			}
		}

		for _, it := range appliedByNode[nodeID] {
			out.FeedbackOutcomes = append(out.FeedbackOutcomes,
				scoreFeedback(it, prevRes, newRes, out.RegressionIssues))
		}
	}
}

func scoreFeedback(it feedback.Item, prevRes, newRes report.ValidationResult, regressions []RegressionIssue) FeedbackOutcome {
	diff := newRes.Confidence - prevRes.Confidence
	o := FeedbackOutcome{FeedbackID: it.ID, NodeID: it.NodeID, ConfidenceDiff: diff}
	for _, r := range regressions {
		if r.FeedbackID == it.ID {
			o.Verdict = "regressive"
			o.Recommendation = r.Recommendation
			return o
		}
	}
	if diff > 0 {
		o.Verdict = "effective"
		o.Recommendation = "continue"
	} else {
		o.Verdict = "ineffective"
		o.Recommendation = "modify"
	}
	return o
}

// Thresholds bundles the approval bars for Decide.
type Thresholds struct {
	Confidence  int
	Consistency int
	// Strict raises the bar: high-severity issues also block approval.
	Strict bool
}

// Decision is the report-level verdict for one iteration.
type Decision struct {
	Status            Status
	OverallConfidence int
	BlockingNodes     []string
	BlockingIssues    []NodeIssue
}

// Decide aggregates per-node confidences, critical-issue presence, and the
// consistency score into one terminal-per-iteration status. Approval requires
// every node at threshold, zero critical issues, and consistency at
// threshold — a critical issue fails the iteration outright regardless of
// averages.
func Decide(rep *report.Report, results map[string]report.ValidationResult, cons ConsistencyReport, th Thresholds) Decision {
	d := Decision{OverallConfidence: OverallConfidence(rep, results)}

	critical := false
	belowThreshold := false
	seenBlocking := map[string]bool{}
	block := func(nodeID string) {
		if !seenBlocking[nodeID] {
			seenBlocking[nodeID] = true
			d.BlockingNodes = append(d.BlockingNodes, nodeID)
		}
	}

	for _, n := range rep.Nodes {
		res, ok := results[n.ID]
		if !ok {
			belowThreshold = true
			block(n.ID)
			continue
		}
		for _, is := range res.Issues {
			blocking := is.Severity == report.SeverityCritical ||
				(th.Strict && is.Severity == report.SeverityHigh)
			if blocking {
				critical = true
				block(n.ID)
				d.BlockingIssues = append(d.BlockingIssues, NodeIssue{NodeID: n.ID, Issue: is})
			}
		}
		if res.Confidence < th.Confidence {
			belowThreshold = true
			block(n.ID)
		}
	}

	switch {
	case critical:
		d.Status = StatusFailed
	case belowThreshold || cons.Score < th.Consistency:
		d.Status = StatusRequiresRevision
	default:
		d.Status = StatusApproved
	}
	return d
}

// OverallConfidence is the importance-weighted mean of current node
// confidences.
func OverallConfidence(rep *report.Report, results map[string]report.ValidationResult) int {
	num, den := 0.0, 0.0
	for _, n := range rep.Nodes {
		res, ok := results[n.ID]
		if !ok {
			continue
		}
		w := float64(n.Meta.Importance)
		if w <= 0 {
			w = 1
		}
		num += float64(res.Confidence) * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den))
}
