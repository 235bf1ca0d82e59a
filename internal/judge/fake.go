package judge

import (
	"context"
	"sync"
	"sync/atomic"
)

// Fake returns deterministic verdicts for offline runs and tests.
// Scores come from a programmable table keyed by (nodeID, category) with a
// package of fallbacks, and every call is counted so tests can assert how
// many oracle invocations a pipeline pass actually made.
type Fake struct {
	mu sync.Mutex

	// Scores maps "nodeID/category" or just "nodeID" or just "category"
	// to a fixed score, checked in that order.
	Scores map[string]int
	// IssuesFor maps the same keys to canned issues.
	IssuesFor map[string][]VerdictIssue
	// Errs maps the same keys to a scripted error returned instead.
	Errs map[string]error
	// Default is used when no table entry matches (0 means 90).
	Default int

	calls      atomic.Int64
	byCategory map[string]int
	byNode     map[string]int
}

func NewFake() *Fake {
	return &Fake{
		Scores:     map[string]int{},
		IssuesFor:  map[string][]VerdictIssue{},
		Errs:       map[string]error{},
		byCategory: map[string]int{},
		byNode:     map[string]int{},
	}
}

func (f *Fake) Name() string    { return "FakeJudge" }
func (f *Fake) Version() string { return "fake/1" }
func (f *Fake) Close() error    { return nil }

// Calls reports the total number of Evaluate invocations.
func (f *Fake) Calls() int64 { return f.calls.Load() }

// CallsForNode reports how many times a node was evaluated (across categories).
func (f *Fake) CallsForNode(nodeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byNode[nodeID]
}

// CallsForCategory reports how many times a category was evaluated.
func (f *Fake) CallsForCategory(category string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byCategory[category]
}

func (f *Fake) lookup(req Request) (int, []VerdictIssue, error) {
	keys := []string{
		req.NodeID + "/" + req.Criterion.Category,
		req.NodeID,
		req.Criterion.Category,
	}
	for _, k := range keys {
		if err, ok := f.Errs[k]; ok {
			return 0, nil, err
		}
	}
	score := f.Default
	if score == 0 {
		score = 90
	}
	for _, k := range keys {
		if s, ok := f.Scores[k]; ok {
			score = s
			break
		}
	}
	var issues []VerdictIssue
	for _, k := range keys {
		if is, ok := f.IssuesFor[k]; ok {
			issues = is
			break
		}
	}
	return score, issues, nil
}

func (f *Fake) Evaluate(_ context.Context, req Request) (Verdict, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.byNode[req.NodeID]++
	f.byCategory[req.Criterion.Category]++
	score, issues, err := f.lookup(req)
	f.mu.Unlock()
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{
		Score:          score,
		SelfConfidence: 95,
		Evidence:       []string{"fake verdict"},
		Issues:         issues,
	}, nil
}
