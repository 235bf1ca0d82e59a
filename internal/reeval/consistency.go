package reeval

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"reportgate/internal/report"
)

type ConsistencyDepth string

const (
	DepthShallow ConsistencyDepth = "shallow"
	DepthDeep    ConsistencyDepth = "deep"
)

// Inconsistency is one cross-node disagreement.
type Inconsistency struct {
	Kind        string   `json:"kind"` // terminology | data-value | stylistic
	NodeIDs     []string `json:"node_ids"`
	Description string   `json:"description"`
}

// fingerprint identifies an inconsistency across iterations for the
// introduced/resolved delta.
func (i Inconsistency) fingerprint() string {
	return i.Kind + "|" + strings.Join(i.NodeIDs, ",") + "|" + i.Description
}

// ConsistencyReport is the outcome of one cross-node consistency pass.
type ConsistencyReport struct {
	Score           int             `json:"score"`
	Checked         []string        `json:"checked_nodes"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
	Introduced      int             `json:"introduced"`
	Resolved        int             `json:"resolved"`
}

var (
	percentileRe = regexp.MustCompile(`(\d{1,3})(?:st|nd|rd|th)\s+percentile`)
	secondPerson = regexp.MustCompile(`(?i)\byou(r|rself)?\b`)
	thirdPerson  = regexp.MustCompile(`(?i)\b(he|she|they|his|her|their)\b`)
)

// CheckConsistency runs terminology, data-value, and stylistic agreement
// checks over the changed nodes and, at deep depth, everything depending on
// them. prior is the previous pass (zero value on the first iteration); its
// open inconsistencies are re-examined when this pass touches any of their
// member nodes and carried forward unresolved when it touches none, so a
// revision of unrelated nodes can never make a known clash disappear.
func CheckConsistency(rep *report.Report, changed []string, depth ConsistencyDepth, prior ConsistencyReport) ConsistencyReport {
	scope := scopeNodes(rep, changed, depth)
	inScope := map[string]bool{}
	for _, id := range scope {
		inScope[id] = true
	}

	// A prior inconsistency touching a checked node is re-examined in full:
	// its other member nodes join the scope so the check sees both sides.
	reexamined := map[string]bool{}
	for _, inc := range prior.Inconsistencies {
		touches := false
		for _, id := range inc.NodeIDs {
			if inScope[id] {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		reexamined[inc.fingerprint()] = true
		for _, id := range inc.NodeIDs {
			if _, ok := rep.NodeByID(id); ok && !inScope[id] {
				inScope[id] = true
				scope = append(scope, id)
			}
		}
	}

	out := ConsistencyReport{Checked: scope}

	nodes := make([]report.Node, 0, len(scope))
	for _, id := range scope {
		if n, ok := rep.NodeByID(id); ok {
			nodes = append(nodes, n)
		}
	}

	out.Inconsistencies = append(out.Inconsistencies, checkTerminology(nodes)...)
	out.Inconsistencies = append(out.Inconsistencies, checkDataValues(rep, nodes)...)
	out.Inconsistencies = append(out.Inconsistencies, checkStyle(nodes)...)

	priorSet := map[string]bool{}
	for _, inc := range prior.Inconsistencies {
		priorSet[inc.fingerprint()] = true
	}
	currentSet := map[string]bool{}
	for _, inc := range out.Inconsistencies {
		fp := inc.fingerprint()
		currentSet[fp] = true
		if !priorSet[fp] {
			out.Introduced++
		}
	}

	// Prior inconsistencies confined to nodes outside this pass stay open:
	// they were not looked at, so they keep suppressing the score. Only a
	// re-examined inconsistency that no longer reproduces counts resolved.
	for _, inc := range prior.Inconsistencies {
		fp := inc.fingerprint()
		if currentSet[fp] {
			continue
		}
		if reexamined[fp] {
			out.Resolved++
			continue
		}
		currentSet[fp] = true
		out.Inconsistencies = append(out.Inconsistencies, inc)
	}

	out.Score = 100 - 10*len(out.Inconsistencies)
	if out.Score < 0 {
		out.Score = 0
	}
	return out
}

// scopeNodes widens the changed set with dependents when depth is deep.
func scopeNodes(rep *report.Report, changed []string, depth ConsistencyDepth) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range changed {
		add(id)
	}
	if depth == DepthDeep {
		for _, id := range changed {
			for _, dep := range rep.Dependents(id) {
				add(dep)
			}
		}
	}
	return out
}

// checkTerminology flags the same term spelled with different casing across
// nodes ("Self-Awareness" vs "self-awareness").
func checkTerminology(nodes []report.Node) []Inconsistency {
	type usage struct {
		variant string
		nodeID  string
	}
	wordRe := regexp.MustCompile(`[A-Za-z][A-Za-z-]{3,}`)
	firstUse := map[string]usage{}
	var out []Inconsistency
	flagged := map[string]bool{}
	for _, n := range nodes {
		for _, w := range wordRe.FindAllString(n.Text(), -1) {
			lower := strings.ToLower(w)
			if !strings.Contains(w, "-") {
				continue // only compound trait terms are checked for casing drift
			}
			prev, ok := firstUse[lower]
			if !ok {
				firstUse[lower] = usage{variant: w, nodeID: n.ID}
				continue
			}
			if prev.variant != w && !flagged[lower] && prev.nodeID != n.ID {
				flagged[lower] = true
				out = append(out, Inconsistency{
					Kind:        "terminology",
					NodeIDs:     []string{prev.nodeID, n.ID},
					Description: fmt.Sprintf("term %q also written %q", prev.variant, w),
				})
			}
		}
	}
	return out
}

// checkDataValues verifies that percentile figures restated in narrative
// nodes exist among the report's scoring values.
func checkDataValues(rep *report.Report, nodes []report.Node) []Inconsistency {
	valid := map[int]bool{}
	for _, n := range rep.Nodes {
		if n.Type != report.NodeScoring {
			continue
		}
		var entry report.ScoreEntry
		if err := json.Unmarshal(n.Content, &entry); err == nil {
			valid[int(entry.Value)] = true
		}
	}
	if len(valid) == 0 {
		return nil
	}
	var out []Inconsistency
	for _, n := range nodes {
		if n.Type == report.NodeScoring {
			continue
		}
		for _, m := range percentileRe.FindAllStringSubmatch(n.Text(), -1) {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if !valid[v] {
				out = append(out, Inconsistency{
					Kind:        "data-value",
					NodeIDs:     []string{n.ID},
					Description: fmt.Sprintf("percentile %d does not match any reported score", v),
				})
			}
		}
	}
	return out
}

// checkStyle flags mixed address register: some nodes speaking to "you"
// while others describe the subject in third person.
func checkStyle(nodes []report.Node) []Inconsistency {
	var second, third []string
	for _, n := range nodes {
		text := n.Text()
		if secondPerson.MatchString(text) {
			second = append(second, n.ID)
		} else if thirdPerson.MatchString(text) {
			third = append(third, n.ID)
		}
	}
	if len(second) > 0 && len(third) > 0 {
		return []Inconsistency{{
			Kind:        "stylistic",
			NodeIDs:     append(append([]string{}, second...), third...),
			Description: "mixed address: some sections speak to the reader, others about them",
		}}
	}
	return nil
}
