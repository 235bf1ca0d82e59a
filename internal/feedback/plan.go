package feedback

import (
	"sort"

	"reportgate/internal/report"
)

// categoryUpstream names, per category, the categories whose fixes must land
// first on the same node. A consistency re-check is meaningless until the
// facts it checks are corrected.
var categoryUpstream = map[report.Category][]report.Category{
	report.CategoryConsistency: {report.CategoryAccuracy},
	report.CategoryClarity:     {report.CategoryAccuracy},
}

// BuildPlan sequences feedback items into a remediation plan. Ordering is by
// descending priority with critical-severity items scheduled before any
// non-critical item system-wide, subject to dependency edges.
func BuildPlan(items []Item, rep *report.Report) Plan {
	deps := dependencies(items, rep)

	blockedBy := map[string][]string{}
	hasEdge := map[string]bool{}
	for _, d := range deps {
		hasEdge[d.DependentID] = true
		if d.Kind == DepBlocking {
			blockedBy[d.DependentID] = append(blockedBy[d.DependentID], d.DependsOnID)
		}
	}

	ordered := make([]Item, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci := ordered[i].Issue.Severity == report.SeverityCritical
		cj := ordered[j].Issue.Severity == report.SeverityCritical
		if ci != cj {
			return ci
		}
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	// Emit in priority order, deferring items whose blocking dependencies
	// have not been emitted yet. Any leftover (cycle) is appended as-is.
	emitted := map[string]bool{}
	var sequence []Item
	remaining := ordered
	for len(remaining) > 0 {
		progressed := false
		var deferred []Item
		for _, it := range remaining {
			ready := true
			for _, dep := range blockedBy[it.ID] {
				if !emitted[dep] {
					ready = false
					break
				}
			}
			if ready {
				sequence = append(sequence, it)
				emitted[it.ID] = true
				progressed = true
			} else {
				deferred = append(deferred, it)
			}
		}
		if !progressed {
			sequence = append(sequence, deferred...)
			break
		}
		remaining = deferred
	}

	var parallel []Item
	for _, it := range sequence {
		if !hasEdge[it.ID] {
			parallel = append(parallel, it)
		}
	}

	return Plan{
		RecommendedSequence: sequence,
		Parallelizable:      parallel,
		Dependencies:        deps,
		Timeline:            buildTimeline(sequence),
	}
}

func dependencies(items []Item, rep *report.Report) []Dependency {
	// Index items by node and category for edge construction.
	byNodeCat := map[string]map[report.Category][]Item{}
	for _, it := range items {
		if byNodeCat[it.NodeID] == nil {
			byNodeCat[it.NodeID] = map[report.Category][]Item{}
		}
		byNodeCat[it.NodeID][it.Issue.Category] = append(byNodeCat[it.NodeID][it.Issue.Category], it)
	}

	var deps []Dependency
	for _, it := range items {
		// Same-node category ordering.
		for _, up := range categoryUpstream[it.Issue.Category] {
			for _, upstream := range byNodeCat[it.NodeID][up] {
				deps = append(deps, Dependency{
					DependentID: it.ID,
					DependsOnID: upstream.ID,
					Reason:      string(up) + " fix on the same node must land first",
					Kind:        DepBlocking,
				})
			}
		}
		// Summary items wait for fixes to the nodes they restate.
		if rep != nil && it.NodeType == report.NodeSummary {
			if node, ok := rep.NodeByID(it.NodeID); ok {
				for _, srcID := range node.Meta.Dependencies {
					for _, srcItems := range byNodeCat[srcID] {
						for _, src := range srcItems {
							deps = append(deps, Dependency{
								DependentID: it.ID,
								DependsOnID: src.ID,
								Reason:      "summary restates content of " + srcID,
								Kind:        DepEnhancing,
							})
						}
					}
				}
			}
		}
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].DependentID != deps[j].DependentID {
			return deps[i].DependentID < deps[j].DependentID
		}
		return deps[i].DependsOnID < deps[j].DependsOnID
	})
	return deps
}

func buildTimeline(items []Item) Timeline {
	var tl Timeline
	for _, it := range items {
		switch {
		case it.Issue.Severity == report.SeverityCritical || it.Priority >= 9:
			tl.Immediate = append(tl.Immediate, it.ID)
		case it.Issue.Severity == report.SeverityHigh || it.Priority >= 6:
			tl.ShortTerm = append(tl.ShortTerm, it.ID)
		default:
			tl.LongTerm = append(tl.LongTerm, it.ID)
		}
	}
	return tl
}
