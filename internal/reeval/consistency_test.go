package reeval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"reportgate/internal/report"
)

func scoreNode(id, dimension string, value float64) report.Node {
	raw, _ := json.Marshal(report.ScoreEntry{ID: id, Dimension: dimension, Value: value})
	return report.Node{
		ID:          id,
		Type:        report.NodeScoring,
		Content:     json.RawMessage(raw),
		ContentHash: report.HashContent(raw),
		Meta:        report.NodeMeta{Importance: 9},
	}
}

func TestCheckConsistency_DataValueMismatch(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		scoreNode("s1", "Decisiveness", 62),
		textNode("i1", report.NodeInsight, "Scores in the 95th percentile indicate strong decisiveness.", "s1"),
	}}
	out := CheckConsistency(rep, []string{"i1"}, DepthShallow, ConsistencyReport{})
	require.Len(t, out.Inconsistencies, 1)
	require.Equal(t, "data-value", out.Inconsistencies[0].Kind)
	require.Equal(t, 90, out.Score)
	require.Equal(t, 1, out.Introduced)
}

func TestCheckConsistency_MatchingValueClean(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		scoreNode("s1", "Decisiveness", 62),
		textNode("i1", report.NodeInsight, "Scores in the 62nd percentile indicate a deliberate style.", "s1"),
	}}
	out := CheckConsistency(rep, []string{"i1"}, DepthShallow, ConsistencyReport{})
	require.Empty(t, out.Inconsistencies)
	require.Equal(t, 100, out.Score)
}

func TestCheckConsistency_MixedAddressStyle(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		textNode("i1", report.NodeInsight, "You tend to decide quickly under pressure."),
		textNode("i2", report.NodeInsight, "She prefers consensus before committing."),
	}}
	out := CheckConsistency(rep, []string{"i1", "i2"}, DepthShallow, ConsistencyReport{})
	require.Len(t, out.Inconsistencies, 1)
	require.Equal(t, "stylistic", out.Inconsistencies[0].Kind)
}

func TestCheckConsistency_TerminologyCasingDrift(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		textNode("i1", report.NodeInsight, "They show strong Self-Awareness in reviews."),
		textNode("i2", report.NodeInsight, "They overall lack self-awareness under stress."),
	}}
	out := CheckConsistency(rep, []string{"i1", "i2"}, DepthShallow, ConsistencyReport{})
	require.Len(t, out.Inconsistencies, 1)
	require.Equal(t, "terminology", out.Inconsistencies[0].Kind)
}

func TestCheckConsistency_DeepWidensToDependents(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		textNode("a", report.NodeInsight, "base"),
		textNode("b", report.NodeSummary, "depends", "a"),
	}}
	shallow := CheckConsistency(rep, []string{"a"}, DepthShallow, ConsistencyReport{})
	require.Equal(t, []string{"a"}, shallow.Checked)

	deep := CheckConsistency(rep, []string{"a"}, DepthDeep, ConsistencyReport{})
	require.ElementsMatch(t, []string{"a", "b"}, deep.Checked)
}

func TestCheckConsistency_CarriesUnexaminedPriorFindings(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		textNode("a", report.NodeInsight, "You tend to decide quickly."),
		textNode("b", report.NodeInsight, "She prefers consensus."),
		textNode("c", report.NodeContext, "Assessment completed online."),
	}}
	prior := CheckConsistency(rep, []string{"a", "b", "c"}, DepthShallow, ConsistencyReport{})
	require.Len(t, prior.Inconsistencies, 1)
	require.Equal(t, 90, prior.Score)

	// Re-checking only c must not make the a/b clash disappear.
	out := CheckConsistency(rep, []string{"c"}, DepthShallow, prior)
	require.Len(t, out.Inconsistencies, 1)
	require.Equal(t, "stylistic", out.Inconsistencies[0].Kind)
	require.Equal(t, 90, out.Score)
	require.Equal(t, 0, out.Resolved)
	require.Equal(t, 0, out.Introduced)
}

func TestCheckConsistency_ReexaminesPriorFindingsInFull(t *testing.T) {
	prior := ConsistencyReport{Inconsistencies: []Inconsistency{{
		Kind:        "stylistic",
		NodeIDs:     []string{"a", "b"},
		Description: "mixed address: some sections speak to the reader, others about them",
	}}}
	// Node a was rewritten into third person; b is unchanged but must be
	// pulled into the check so the pair is judged together.
	rep := &report.Report{Nodes: []report.Node{
		textNode("a", report.NodeInsight, "They decide quickly under pressure."),
		textNode("b", report.NodeInsight, "She prefers consensus."),
	}}
	out := CheckConsistency(rep, []string{"a"}, DepthShallow, prior)
	require.ElementsMatch(t, []string{"a", "b"}, out.Checked)
	require.Empty(t, out.Inconsistencies)
	require.Equal(t, 1, out.Resolved)
	require.Equal(t, 100, out.Score)
}

func TestCheckConsistency_ResolvedDelta(t *testing.T) {
	rep := &report.Report{Nodes: []report.Node{
		textNode("i1", report.NodeInsight, "All consistent now."),
	}}
	prior := ConsistencyReport{Inconsistencies: []Inconsistency{
		{Kind: "stylistic", NodeIDs: []string{"i1", "i2"}, Description: "mixed address"},
	}}
	out := CheckConsistency(rep, []string{"i1"}, DepthShallow, prior)
	require.Equal(t, 0, out.Introduced)
	require.Equal(t, 1, out.Resolved)
}
