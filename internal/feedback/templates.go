package feedback

import (
	"strings"

	"reportgate/internal/report"
)

// template supplies the remediation scaffolding for one (category, severity,
// nodeType) combination. Lookup falls back from the full key to
// (category, severity), then to a generic default.
type template struct {
	action string // %EVIDENCE% is replaced with the issue's first evidence quote
	steps  []string
	before string
	after  string
	gain   int
	effort Effort
}

type templateKey struct {
	category report.Category
	severity report.Severity
	nodeType report.NodeType // empty for category/severity-level templates
}

var templates = map[templateKey]template{
	// -------- accuracy --------
	{report.CategoryAccuracy, report.SeverityCritical, ""}: {
		action: "Correct the factual claim flagged at %EVIDENCE% so it matches the underlying assessment data.",
		steps: []string{
			"Locate the source data value for the flagged claim.",
			"Rewrite the sentence to state the sourced value exactly.",
			"Re-read the paragraph for knock-on statements built on the wrong value.",
		},
		before: "Scores in the 95th percentile indicate...",
		after:  "Scores in the 62nd percentile indicate...",
		gain:   18,
		effort: EffortMedium,
	},
	{report.CategoryAccuracy, report.SeverityHigh, ""}: {
		action: "Support or soften the unsupported claim near %EVIDENCE%.",
		steps: []string{
			"Cite the data point that supports the claim, or",
			"Reword certainty into observation (\"the data suggests\").",
		},
		gain:   12,
		effort: EffortMedium,
	},
	{report.CategoryAccuracy, report.SeverityMedium, ""}: {
		action: "Tighten the imprecise statement near %EVIDENCE%.",
		steps:  []string{"Replace approximations with the measured value and scale."},
		gain:   7,
		effort: EffortLow,
	},
	// -------- bias --------
	{report.CategoryBias, report.SeverityCritical, ""}: {
		action: "Remove the biased framing flagged at %EVIDENCE%; it is not grounded in assessment data.",
		steps: []string{
			"Delete or rewrite the flagged passage using behavior-based language.",
			"Check sibling sentences for the same framing applied elsewhere.",
		},
		before: "As is typical for someone of her background...",
		after:  "The assessment responses indicate...",
		gain:   20,
		effort: EffortMedium,
	},
	{report.CategoryBias, report.SeverityHigh, ""}: {
		action: "Neutralize the loaded wording near %EVIDENCE%.",
		steps:  []string{"Swap evaluative adjectives for observed behaviors."},
		gain:   12,
		effort: EffortLow,
	},
	// -------- clarity --------
	{report.CategoryClarity, report.SeverityHigh, report.NodeRecommendation}: {
		action: "Make the recommendation near %EVIDENCE% concretely actionable.",
		steps: []string{
			"Name the specific behavior to start, stop, or change.",
			"Add a measurable signal of completion.",
		},
		before: "Consider improving communication.",
		after:  "Schedule a weekly 1:1 with each direct report; revisit after one quarter.",
		gain:   10,
		effort: EffortMedium,
	},
	{report.CategoryClarity, report.SeverityMedium, ""}: {
		action: "Simplify the passage near %EVIDENCE% for a non-specialist reader.",
		steps: []string{
			"Split sentences over forty words.",
			"Define or remove jargon on first use.",
		},
		gain:   6,
		effort: EffortLow,
	},
	// -------- consistency --------
	{report.CategoryConsistency, report.SeverityHigh, ""}: {
		action: "Reconcile the contradiction flagged at %EVIDENCE%.",
		steps: []string{
			"Decide which statement reflects the data.",
			"Update the other statement and any dependent summary text.",
		},
		gain:   10,
		effort: EffortMedium,
	},
	// -------- compliance --------
	{report.CategoryCompliance, report.SeverityCritical, ""}: {
		action: "Remove the policy-violating content flagged at %EVIDENCE% before release.",
		steps: []string{
			"Delete the flagged content entirely.",
			"Verify no paraphrase of it remains elsewhere in the report.",
		},
		gain:   25,
		effort: EffortLow,
	},
	{report.CategoryCompliance, report.SeverityMedium, ""}: {
		action: "Replace the unprofessional wording flagged at %EVIDENCE%.",
		steps:  []string{"Use neutral behavioral language."},
		gain:   8,
		effort: EffortLow,
	},
}

var genericTemplate = template{
	action: "Address the reported issue near %EVIDENCE%.",
	steps: []string{
		"Review the flagged passage against the issue description.",
		"Revise the content and keep surrounding statements consistent.",
	},
	gain:   5,
	effort: EffortMedium,
}

// templateFor resolves the most specific template available.
func templateFor(issue report.Issue, nodeType report.NodeType) template {
	if t, ok := templates[templateKey{issue.Category, issue.Severity, nodeType}]; ok {
		return t
	}
	if t, ok := templates[templateKey{issue.Category, issue.Severity, ""}]; ok {
		return t
	}
	return genericTemplate
}

func fillEvidence(s string, issue report.Issue) string {
	ev := "the flagged passage"
	if len(issue.Evidence) > 0 && issue.Evidence[0] != "" {
		ev = "\"" + issue.Evidence[0] + "\""
	}
	return strings.ReplaceAll(s, "%EVIDENCE%", ev)
}
