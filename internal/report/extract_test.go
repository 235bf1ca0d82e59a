package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDoc() Document {
	return Document{
		WorkflowID: "wf-1",
		Kind:       "leadership",
		Scores: []ScoreEntry{
			{ID: "s1", Dimension: "Decisiveness", Value: 62, Scale: "percentile"},
			{ID: "s2", Dimension: "Empathy", Value: 78, Scale: "percentile"},
		},
		Insights: []SectionEntry{
			{ID: "i1", Title: "Decision style", Body: "Scores in the 62nd percentile indicate deliberate decision-making."},
		},
		Recommendations: []SectionEntry{
			{ID: "r1", Body: "Schedule a weekly 1:1 with each direct report.", RelatedTo: []string{"s2"}},
		},
		Summary: &SectionEntry{ID: "sum", Body: "Overall a deliberate, empathetic profile."},
	}
}

func TestExtract_RegionsAndDependencies(t *testing.T) {
	rep := Extract(sampleDoc(), "")
	require.Equal(t, "leadership", rep.Kind)
	require.Empty(t, rep.Warnings)
	require.Len(t, rep.Nodes, 5)

	byID := map[string]Node{}
	for _, n := range rep.Nodes {
		byID[n.ID] = n
	}

	require.Equal(t, NodeScoring, byID["s1"].Type)
	require.Equal(t, NodeInsight, byID["i1"].Type)
	require.Equal(t, NodeRecommendation, byID["r1"].Type)
	require.Equal(t, NodeSummary, byID["sum"].Type)

	// Insights depend on the scores they interpret.
	require.ElementsMatch(t, []string{"s1", "s2"}, byID["i1"].Meta.Dependencies)
	// Recommendations fan in from scoring and insight nodes; explicit
	// related_to ids come first.
	require.Equal(t, "s2", byID["r1"].Meta.Dependencies[0])
	require.Contains(t, byID["r1"].Meta.Dependencies, "i1")
	// The summary depends on everything before it.
	require.Len(t, byID["sum"].Meta.Dependencies, 4)

	// Scoring and recommendation nodes weigh highest.
	require.Equal(t, 9, byID["s1"].Meta.Importance)
	require.Equal(t, 9, byID["r1"].Meta.Importance)
	require.Greater(t, byID["i1"].Meta.Importance, byID["sum"].Meta.Importance)
}

func TestExtract_MalformedEntriesBecomeWarnings(t *testing.T) {
	doc := Document{
		Scores:   []ScoreEntry{{ID: "s1"}}, // no dimension, no narrative
		Insights: []SectionEntry{{ID: "i1"}},
		Summary:  &SectionEntry{ID: "sum"},
	}
	rep := Extract(doc, "k")
	require.Empty(t, rep.Nodes)
	require.Len(t, rep.Warnings, 4) // 3 skips + no extractable regions
}

func TestParseDocument_UnknownRegionsBecomeWarnings(t *testing.T) {
	raw := []byte(`{
		"workflow_id": "wf-1",
		"insights": [{"id": "i1", "body": "text"}],
		"charts": [{"type": "radar"}],
		"appendix": "raw notes"
	}`)
	doc, err := ParseDocument(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"appendix", "charts"}, doc.UnknownRegions)

	rep := Extract(doc, "k")
	require.Len(t, rep.Nodes, 1)
	require.Contains(t, rep.Warnings, "appendix: unrecognized region skipped")
	require.Contains(t, rep.Warnings, "charts: unrecognized region skipped")
}

func TestExtract_StableHashAndIDs(t *testing.T) {
	a := Extract(sampleDoc(), "")
	b := Extract(sampleDoc(), "")
	require.Equal(t, len(a.Nodes), len(b.Nodes))
	for i := range a.Nodes {
		require.Equal(t, a.Nodes[i].ID, b.Nodes[i].ID)
		require.Equal(t, a.Nodes[i].ContentHash, b.Nodes[i].ContentHash)
	}
}

func TestExtract_PositionalIDsWhenMissing(t *testing.T) {
	doc := Document{Insights: []SectionEntry{{Body: "text"}}}
	rep := Extract(doc, "k")
	require.Len(t, rep.Nodes, 1)
	require.Equal(t, "insights/0", rep.Nodes[0].ID)
}

func TestDependents(t *testing.T) {
	rep := Extract(sampleDoc(), "")
	deps := rep.Dependents("s1")
	require.Contains(t, deps, "i1")
	require.Contains(t, deps, "sum")
	require.NotContains(t, deps, "s2")
}
