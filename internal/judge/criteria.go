package judge

import "strings"

// Criterion names a quality dimension and the instructions the judge should
// apply when scoring a fragment against it.
type Criterion struct {
	Category     string
	Instructions []string
}

// Criteria for the judged metric categories. Compliance is deliberately
// absent: it is a deterministic rule check, not a judgment call, and never
// reaches the oracle.
var (
	CriterionAccuracy = Criterion{
		Category: "accuracy",
		Instructions: []string{
			"Verify every factual claim against the data values present in the fragment itself.",
			"Flag scores or percentiles that contradict each other or the stated scale.",
			"Flag conclusions that do not follow from the cited evidence.",
			"Do not penalize hedged language; penalize unsupported certainty.",
		},
	}
	CriterionBias = Criterion{
		Category: "bias",
		Instructions: []string{
			"Check for gendered, cultural, age-related, or ability-related framing that is not grounded in the assessment data.",
			"Flag trait descriptions that apply a double standard across groups.",
			"Flag loaded or stigmatizing vocabulary.",
		},
	}
	CriterionClarity = Criterion{
		Category: "clarity",
		Instructions: []string{
			"Judge whether a non-specialist reader could act on this fragment.",
			"Flag jargon that is never defined, sentences over roughly forty words, and ambiguous referents.",
			"Flag recommendations with no concrete action.",
		},
	}
	CriterionConsistency = Criterion{
		Category: "consistency",
		Instructions: []string{
			"Check internal agreement: terminology, tense, person, and the numeric values this fragment restates.",
			"Flag statements that contradict the fragment's own summary sentences.",
		},
	}
)

// JudgedCriteria lists the criteria routed through the oracle, in scoring order.
var JudgedCriteria = []Criterion{
	CriterionAccuracy,
	CriterionBias,
	CriterionClarity,
	CriterionConsistency,
}

const verdictSchema = `Return ONLY a JSON object:
{
  "score": <int 0-100, 100 = flawless on this criterion>,
  "self_confidence": <int 0-100, your confidence in this verdict>,
  "evidence": [<short quotes or observations supporting the score>],
  "issues": [
    {
      "severity": "low" | "medium" | "high" | "critical",
      "description": <what is wrong and where>,
      "evidence": [<supporting quotes>],
      "priority": <int 1-10>
    }
  ]
}`

// Prompt renders the evaluation prompt for a request. The fragment itself is
// passed separately as the input payload.
func Prompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a strict quality reviewer for machine-generated assessment reports.\n")
	b.WriteString("Evaluate the fragment in [INPUT] against ONE criterion: ")
	b.WriteString(req.Criterion.Category)
	b.WriteString(".\n\nCriterion instructions:\n")
	for _, ins := range req.Criterion.Instructions {
		b.WriteString("- ")
		b.WriteString(ins)
		b.WriteString("\n")
	}
	if req.Context != "" {
		b.WriteString("\nSurrounding context (do not score it, use it only to interpret the fragment):\n")
		b.WriteString(req.Context)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(verdictSchema)
	return b.String()
}
