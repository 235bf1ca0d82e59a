package report

import (
	"encoding/json"
	"sort"
)

// Document is the inbound report shape supplied by the content generator.
// Regions the extractor does not recognize are skipped with a warning, so
// generators can carry extra payload without breaking validation.
type Document struct {
	WorkflowID string `json:"workflow_id,omitempty"`
	Kind       string `json:"kind,omitempty"`

	Scores          []ScoreEntry   `json:"scores,omitempty"`
	Insights        []SectionEntry `json:"insights,omitempty"`
	Recommendations []SectionEntry `json:"recommendations,omitempty"`
	Summary         *SectionEntry  `json:"summary,omitempty"`
	Context         []SectionEntry `json:"context,omitempty"`

	// UnknownRegions lists top-level keys the decoder did not recognize.
	// The extractor turns each into a warning so dropped coverage is visible.
	UnknownRegions []string `json:"-"`
}

var knownRegions = map[string]bool{
	"workflow_id":     true,
	"kind":            true,
	"scores":          true,
	"insights":        true,
	"recommendations": true,
	"summary":         true,
	"context":         true,
}

// ScoreEntry is one scored dimension in the report's scores region.
type ScoreEntry struct {
	ID        string  `json:"id"`
	Dimension string  `json:"dimension"`
	Value     float64 `json:"value"`
	Scale     string  `json:"scale,omitempty"`
	Narrative string  `json:"narrative,omitempty"`
	Source    string  `json:"source,omitempty"`
}

// SectionEntry is one narrative unit (insight, recommendation, summary,
// or context block).
type SectionEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body"`
	Source string `json:"source,omitempty"`
	// RelatedTo optionally names score/insight ids this entry builds on;
	// the extractor merges these into inferred dependencies.
	RelatedTo []string `json:"related_to,omitempty"`
}

// ParseDocument decodes a generator payload and records any top-level
// regions the document schema does not cover.
func ParseDocument(raw []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return d, err
	}
	for k := range fields {
		if !knownRegions[k] {
			d.UnknownRegions = append(d.UnknownRegions, k)
		}
	}
	sort.Strings(d.UnknownRegions)
	return d, nil
}
