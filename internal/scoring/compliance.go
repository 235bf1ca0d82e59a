package scoring

import (
	"fmt"
	"regexp"

	"reportgate/internal/report"
)

// Compliance is policy, not judgment: forbidden-content pattern checks that
// run locally and never reach the oracle.

type complianceRule struct {
	class    string
	severity report.Severity
	pattern  *regexp.Regexp
	advice   string
}

var complianceRules = []complianceRule{
	{
		class:    "privacy",
		severity: report.SeverityCritical,
		pattern:  regexp.MustCompile(`(?i)\b(social security|ssn|passport number|medical record|diagnos(is|ed)|therapy|medication)\b`),
		advice:   "remove personal health or identity data from assessment narrative",
	},
	{
		class:    "ethics",
		severity: report.SeverityHigh,
		pattern:  regexp.MustCompile(`(?i)\b(fire|terminate|demote|dismiss)\s+(him|her|them|this (person|employee|candidate))\b`),
		advice:   "assessments must not prescribe employment actions against an individual",
	},
	{
		class:    "legality",
		severity: report.SeverityCritical,
		pattern:  regexp.MustCompile(`(?i)\b(race|religion|ethnicity|sexual orientation|pregnan(t|cy)|disability)\b.{0,40}\b(unsuitable|unfit|not recommended|risk)\b`),
		advice:   "remove protected-class reasoning from suitability statements",
	},
	{
		class:    "professionalism",
		severity: report.SeverityMedium,
		pattern:  regexp.MustCompile(`(?i)\b(stupid|lazy|useless|pathetic|idiot|incompetent)\b`),
		advice:   "replace derogatory wording with neutral behavioral language",
	},
}

// checkCompliance scores a node against the forbidden-content rules.
// Score starts at 100 and drops per violation class hit.
func checkCompliance(n report.Node, weight float64) report.MetricScore {
	text := n.Text()
	m := report.MetricScore{
		Category:       report.CategoryCompliance,
		Score:          100,
		Weight:         weight,
		SelfConfidence: 100, // rule checks are deterministic
	}
	for _, rule := range complianceRules {
		loc := rule.pattern.FindString(text)
		if loc == "" {
			continue
		}
		penalty := 15
		if rule.severity == report.SeverityCritical {
			penalty = 40
		} else if rule.severity == report.SeverityHigh {
			penalty = 25
		}
		m.Score -= penalty
		m.Evidence = append(m.Evidence, fmt.Sprintf("%s rule matched: %q", rule.class, loc))
		m.Issues = append(m.Issues, report.Issue{
			Category:    report.CategoryCompliance,
			Severity:    rule.severity,
			Description: fmt.Sprintf("%s violation: %s", rule.class, rule.advice),
			Evidence:    []string{loc},
			Priority:    priorityForSeverity(rule.severity),
		})
	}
	if m.Score < 0 {
		m.Score = 0
	}
	return m
}

func priorityForSeverity(s report.Severity) int {
	switch s {
	case report.SeverityCritical:
		return 10
	case report.SeverityHigh:
		return 8
	case report.SeverityLow:
		return 3
	default:
		return 5
	}
}
