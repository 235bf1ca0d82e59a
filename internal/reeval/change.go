package reeval

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"reportgate/internal/report"
)

type ChangeType string

const (
	ChangeContent   ChangeType = "content"
	ChangeStructure ChangeType = "structure"
	ChangeMetadata  ChangeType = "metadata"
)

type ChangeScope string

const (
	ScopeMinor    ChangeScope = "minor"
	ScopeModerate ChangeScope = "moderate"
	ScopeMajor    ChangeScope = "major"
)

// ChangeAnalysis describes how one node differs from its prior snapshot and
// what re-validation work that implies.
type ChangeAnalysis struct {
	NodeID                   string      `json:"node_id"`
	New                      bool        `json:"new,omitempty"`
	Type                     ChangeType  `json:"type"`
	Scope                    ChangeScope `json:"scope"`
	Similarity               float64     `json:"similarity"`
	RevalidationRequired     bool        `json:"revalidation_required"`
	ConsistencyCheckRequired bool        `json:"consistency_check_required"`
	// AffectedNodes lists dependents that consistency checking must cover.
	AffectedNodes []string `json:"affected_nodes,omitempty"`
}

// similarity is the ratio of unchanged text between two fragments (1 means
// identical).
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	common := 0
	total := 0
	for _, d := range diffs {
		n := len(d.Text)
		total += n
		if d.Type == diffmatchpatch.DiffEqual {
			common += 2 * n
			total += n
		}
	}
	if total == 0 {
		return 1
	}
	return float64(common) / float64(total)
}

func scopeFor(sim float64) ChangeScope {
	switch {
	case sim >= 0.9:
		return ScopeMinor
	case sim >= 0.6:
		return ScopeModerate
	default:
		return ScopeMajor
	}
}

// AnalyzeChanges diffs every node of the modified report against the prior
// snapshot. New nodes are always fully revalidated; unchanged nodes carry no
// work. Changed fanout-type nodes (recommendations) additionally require a
// cross-node consistency pass over their dependents.
func AnalyzeChanges(prev, next *report.Report, reg *report.Registry) []ChangeAnalysis {
	var out []ChangeAnalysis
	for _, n := range next.Nodes {
		old, existed := prev.NodeByID(n.ID)
		if !existed {
			out = append(out, ChangeAnalysis{
				NodeID:                   n.ID,
				New:                      true,
				Type:                     ChangeStructure,
				Scope:                    ScopeMajor,
				RevalidationRequired:     true,
				ConsistencyCheckRequired: reg.ProfileFor(n.Type).ConsistencyFanout,
				AffectedNodes:            next.Dependents(n.ID),
			})
			continue
		}

		if old.ContentHash == n.ContentHash {
			// Content identical; a metadata-only delta does not require
			// re-scoring.
			if !metaEqual(old.Meta, n.Meta) {
				out = append(out, ChangeAnalysis{
					NodeID:     n.ID,
					Type:       ChangeMetadata,
					Scope:      ScopeMinor,
					Similarity: 1,
				})
			}
			continue
		}

		ct := ChangeContent
		if old.Type != n.Type {
			ct = ChangeStructure
		}
		sim := similarity(old.Text(), n.Text())
		out = append(out, ChangeAnalysis{
			NodeID:                   n.ID,
			Type:                     ct,
			Scope:                    scopeFor(sim),
			Similarity:               sim,
			RevalidationRequired:     true,
			ConsistencyCheckRequired: reg.ProfileFor(n.Type).ConsistencyFanout,
			AffectedNodes:            next.Dependents(n.ID),
		})
	}
	return out
}

func metaEqual(a, b report.NodeMeta) bool {
	if a.ParentContext != b.ParentContext ||
		a.Importance != b.Importance ||
		a.ValidationComplexity != b.ValidationComplexity ||
		a.DataSource != b.DataSource ||
		len(a.Dependencies) != len(b.Dependencies) {
		return false
	}
	for i := range a.Dependencies {
		if a.Dependencies[i] != b.Dependencies[i] {
			return false
		}
	}
	return true
}
