package feedback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"reportgate/internal/report"
)

func node(id string, typ report.NodeType, importance int) report.Node {
	return report.Node{ID: id, Type: typ, Meta: report.NodeMeta{Importance: importance}}
}

func issue(cat report.Category, sev report.Severity, prio int) report.Issue {
	return report.Issue{Category: cat, Severity: sev, Description: "desc " + string(cat), Priority: prio}
}

func TestSynthesize_OneItemPerIssue(t *testing.T) {
	res := report.ValidationResult{
		NodeID:     "n1",
		Confidence: 70,
		Issues: []report.Issue{
			issue(report.CategoryAccuracy, report.SeverityHigh, 7),
			issue(report.CategoryClarity, report.SeverityMedium, 5),
		},
	}
	items, err := Synthesize(res, node("n1", report.NodeInsight, 7), Context{ConfidenceThreshold: 85, IterationsRemaining: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		require.Equal(t, "n1", it.NodeID)
		require.NotEmpty(t, it.SpecificAction)
		require.NotEmpty(t, it.ImplementationSteps)
		require.GreaterOrEqual(t, it.Priority, 1.0)
		require.LessOrEqual(t, it.Priority, 10.0)
	}
}

func TestSynthesize_MalformedInputRejected(t *testing.T) {
	_, err := Synthesize(report.ValidationResult{NodeID: "a"}, node("b", report.NodeInsight, 5), Context{})
	require.Error(t, err)
	_, err = Synthesize(report.ValidationResult{}, report.Node{}, Context{})
	require.Error(t, err)
}

func TestSynthesize_PriorityFormula(t *testing.T) {
	// gap > 20 boosts 1.5x; last iteration boosts 1.25x.
	res := report.ValidationResult{NodeID: "n1", Confidence: 50, Issues: []report.Issue{
		issue(report.CategoryAccuracy, report.SeverityCritical, 8),
	}}
	items, err := Synthesize(res, node("n1", report.NodeScoring, 9), Context{ConfidenceThreshold: 85, IterationsRemaining: 1})
	require.NoError(t, err)
	// 8 * 1.5 * 1.5 * 0.9 * 1.25 = 20.25, clamped to 10.
	require.Equal(t, 10.0, items[0].Priority)

	// Low severity, small gap, low importance stays low.
	res2 := report.ValidationResult{NodeID: "n2", Confidence: 80, Issues: []report.Issue{
		issue(report.CategoryClarity, report.SeverityLow, 2),
	}}
	items2, err := Synthesize(res2, node("n2", report.NodeContext, 3), Context{ConfidenceThreshold: 85, IterationsRemaining: 3})
	require.NoError(t, err)
	// 2 * 0.8 * 1 * 0.3 * 1 = 0.48, clamped to 1.
	require.Equal(t, 1.0, items2[0].Priority)
}

func TestTemplateFallback(t *testing.T) {
	// Specific (clarity, high, recommendation) template exists.
	spec := templateFor(issue(report.CategoryClarity, report.SeverityHigh, 5), report.NodeRecommendation)
	require.Contains(t, spec.action, "recommendation")

	// Falls back to (category, severity).
	gen := templateFor(issue(report.CategoryClarity, report.SeverityMedium, 5), report.NodeRecommendation)
	require.Contains(t, gen.action, "Simplify")

	// Falls back to the generic default.
	def := templateFor(issue(report.CategoryBias, report.SeverityLow, 5), report.NodeSummary)
	require.Equal(t, genericTemplate.action, def.action)
}

func TestBuildPlan_CriticalFirstAndDependencyOrder(t *testing.T) {
	n := node("n1", report.NodeInsight, 7)
	res := report.ValidationResult{NodeID: "n1", Confidence: 60, Issues: []report.Issue{
		issue(report.CategoryConsistency, report.SeverityHigh, 9),
		issue(report.CategoryAccuracy, report.SeverityMedium, 4),
		issue(report.CategoryCompliance, report.SeverityCritical, 10),
	}}
	items, err := Synthesize(res, n, Context{ConfidenceThreshold: 85, IterationsRemaining: 2})
	require.NoError(t, err)

	rep := &report.Report{Nodes: []report.Node{n}}
	plan := BuildPlan(items, rep)
	require.Len(t, plan.RecommendedSequence, 3)

	// Critical compliance item leads regardless of priority.
	require.Equal(t, report.CategoryCompliance, plan.RecommendedSequence[0].Issue.Category)

	// The consistency fix is sequenced after the accuracy fix it depends on,
	// despite its higher raw priority.
	posAcc, posCons := -1, -1
	for i, it := range plan.RecommendedSequence {
		switch it.Issue.Category {
		case report.CategoryAccuracy:
			posAcc = i
		case report.CategoryConsistency:
			posCons = i
		}
	}
	require.Less(t, posAcc, posCons)

	// The blocked consistency item is not parallelizable.
	for _, it := range plan.Parallelizable {
		require.NotEqual(t, report.CategoryConsistency, it.Issue.Category)
	}

	require.NotEmpty(t, plan.Dependencies)
	require.Equal(t, DepBlocking, plan.Dependencies[0].Kind)
}

func TestBuildPlan_Timeline(t *testing.T) {
	n := node("n1", report.NodeInsight, 7)
	res := report.ValidationResult{NodeID: "n1", Confidence: 60, Issues: []report.Issue{
		issue(report.CategoryCompliance, report.SeverityCritical, 10),
		issue(report.CategoryBias, report.SeverityHigh, 7),
		issue(report.CategoryClarity, report.SeverityLow, 2),
	}}
	items, err := Synthesize(res, n, Context{ConfidenceThreshold: 85, IterationsRemaining: 2})
	require.NoError(t, err)
	plan := BuildPlan(items, &report.Report{Nodes: []report.Node{n}})

	require.Len(t, plan.Timeline.Immediate, 1)
	require.NotEmpty(t, plan.Timeline.ShortTerm)
	require.NotEmpty(t, plan.Timeline.LongTerm)
}
