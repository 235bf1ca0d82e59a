package report

import (
	"encoding/json"
	"fmt"
)

// Extract decomposes a generator document into typed, addressable nodes.
// It never fails the workflow: malformed entries are skipped and recorded
// as warnings on the returned report, downgrading coverage only.
func Extract(doc Document, kind string) *Report {
	r := &Report{
		WorkflowID: doc.WorkflowID,
		Kind:       kind,
	}
	if r.Kind == "" {
		r.Kind = doc.Kind
	}

	for _, region := range doc.UnknownRegions {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: unrecognized region skipped", region))
	}

	var scoringIDs, insightIDs []string

	for i, s := range doc.Scores {
		if s.Dimension == "" && s.Narrative == "" {
			r.Warnings = append(r.Warnings, fmt.Sprintf("scores[%d]: empty entry skipped", i))
			continue
		}
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("scoring/%d", i)
		}
		n := newNode(id, NodeScoring, s, NodeMeta{
			ParentContext: "scores",
			DataSource:    s.Source,
		})
		r.Nodes = append(r.Nodes, n)
		scoringIDs = append(scoringIDs, id)
	}

	extractSections := func(entries []SectionEntry, region string, typ NodeType, deps func(e SectionEntry) []string) {
		for i, e := range entries {
			if e.Body == "" {
				r.Warnings = append(r.Warnings, fmt.Sprintf("%s[%d]: empty body skipped", region, i))
				continue
			}
			id := e.ID
			if id == "" {
				id = fmt.Sprintf("%s/%d", region, i)
			}
			n := newNode(id, typ, e, NodeMeta{
				ParentContext: region,
				DataSource:    e.Source,
				Dependencies:  deps(e),
			})
			r.Nodes = append(r.Nodes, n)
			if typ == NodeInsight {
				insightIDs = append(insightIDs, id)
			}
		}
	}

	extractSections(doc.Insights, "insights", NodeInsight, func(e SectionEntry) []string {
		// Insights read the scores they interpret.
		return mergeDeps(e.RelatedTo, scoringIDs)
	})
	extractSections(doc.Recommendations, "recommendations", NodeRecommendation, func(e SectionEntry) []string {
		// Recommendations fan in from scoring and insight nodes.
		return mergeDeps(e.RelatedTo, scoringIDs, insightIDs)
	})
	extractSections(doc.Context, "context", NodeContext, func(SectionEntry) []string { return nil })

	if doc.Summary != nil {
		if doc.Summary.Body == "" {
			r.Warnings = append(r.Warnings, "summary: empty body skipped")
		} else {
			id := doc.Summary.ID
			if id == "" {
				id = "summary"
			}
			// The summary restates everything emitted before it.
			var all []string
			for _, n := range r.Nodes {
				all = append(all, n.ID)
			}
			n := newNode(id, NodeSummary, *doc.Summary, NodeMeta{
				ParentContext: "summary",
				DataSource:    doc.Summary.Source,
				Dependencies:  all,
			})
			r.Nodes = append(r.Nodes, n)
		}
	}

	if len(r.Nodes) == 0 {
		r.Warnings = append(r.Warnings, "document contained no extractable regions")
	}
	return r
}

func newNode(id string, typ NodeType, payload any, meta NodeMeta) Node {
	raw, _ := json.Marshal(payload)
	meta.Importance = importanceOf(typ)
	meta.ValidationComplexity = complexityOf(typ)
	return Node{
		ID:          id,
		Type:        typ,
		Content:     raw,
		ContentHash: HashContent(raw),
		Meta:        meta,
	}
}

// Scoring and recommendation nodes carry the report's decisions and weigh
// highest; context is background material.
func importanceOf(typ NodeType) int {
	switch typ {
	case NodeScoring:
		return 9
	case NodeRecommendation:
		return 9
	case NodeInsight:
		return 7
	case NodeSummary:
		return 6
	default:
		return 3
	}
}

func complexityOf(typ NodeType) int {
	switch typ {
	case NodeRecommendation:
		return 8
	case NodeInsight:
		return 7
	case NodeSummary:
		return 6
	case NodeScoring:
		return 5
	default:
		return 2
	}
}

func mergeDeps(explicit []string, inferred ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	add(explicit)
	for _, ids := range inferred {
		add(ids)
	}
	return out
}
