package scoring

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"reportgate/internal/cache"
	"reportgate/internal/judge"
	"reportgate/internal/report"
)

// degradedScore is the conservative metric score assigned when the judge is
// unavailable after retries. Only the degraded/error path may use it.
const degradedScore = 30

// Scorer computes per-node confidence by fanning the judged categories out
// to the oracle and combining them with the local compliance check.
type Scorer struct {
	Judge    judge.Client
	Cache    *cache.Validation
	Registry *report.Registry
	Weights  Weights

	// Concurrency caps the node-scoring worker pool (<=0 means 4).
	Concurrency int
}

func criterionFor(cat report.Category) (judge.Criterion, bool) {
	for _, c := range judge.JudgedCriteria {
		if c.Category == string(cat) {
			return c, true
		}
	}
	return judge.Criterion{}, false
}

// ScoreNode scores one node. A cached verdict for (id, contentHash,
// judgeVersion) short-circuits all oracle calls.
func (s *Scorer) ScoreNode(ctx context.Context, n report.Node) report.ValidationResult {
	key := cache.Key{NodeID: n.ID, ContentHash: n.ContentHash, JudgeVersion: s.Judge.Version()}
	if cached, ok := s.Cache.Get(key); ok {
		cached.FromCache = true
		return cached
	}

	profile := s.Registry.ProfileFor(n.Type)
	weights := s.Weights.Renormalized(profile.Checks)

	res := report.ValidationResult{
		NodeID:       n.ID,
		JudgeVersion: s.Judge.Version(),
		Timestamp:    time.Now().UTC(),
	}

	for _, cat := range profile.Checks {
		var m report.MetricScore
		if cat == report.CategoryCompliance {
			m = checkCompliance(n, weights[cat])
		} else {
			m = s.judgeMetric(ctx, n, cat, weights[cat])
		}
		if m.Degraded {
			res.Degraded = true
		}
		res.Metrics = append(res.Metrics, m)
		res.Issues = append(res.Issues, m.Issues...)
	}

	res.Confidence = Aggregate(res.Metrics)
	sortIssues(res.Issues)
	s.Cache.Put(key, res)
	return res
}

func (s *Scorer) judgeMetric(ctx context.Context, n report.Node, cat report.Category, weight float64) report.MetricScore {
	crit, ok := criterionFor(cat)
	if !ok {
		// No judged criterion for this category; treat as unavailable.
		return degradedMetric(cat, weight, fmt.Errorf("no criterion registered for %s", cat))
	}
	v, err := s.Judge.Evaluate(ctx, judge.Request{
		NodeID:    n.ID,
		Content:   n.Text(),
		Criterion: crit,
		Context:   n.Meta.ParentContext,
	})
	if err != nil {
		log.Printf("scoring: judge unavailable node=%s category=%s: %v", n.ID, cat, err)
		return degradedMetric(cat, weight, err)
	}

	m := report.MetricScore{
		Category:       cat,
		Score:          v.Score,
		Weight:         weight,
		Evidence:       v.Evidence,
		SelfConfidence: v.SelfConfidence,
	}
	for _, vi := range v.Issues {
		m.Issues = append(m.Issues, report.Issue{
			Category:    cat,
			Severity:    report.Severity(vi.Severity),
			Description: vi.Description,
			Evidence:    vi.Evidence,
			Priority:    vi.Priority,
		})
	}
	return m
}

// degradedMetric is the JudgeUnavailable path: a conservative low score,
// flagged, never an error that blocks sibling nodes.
func degradedMetric(cat report.Category, weight float64, err error) report.MetricScore {
	return report.MetricScore{
		Category:       cat,
		Score:          degradedScore,
		Weight:         weight,
		SelfConfidence: 0,
		Degraded:       true,
		Evidence:       []string{fmt.Sprintf("JudgeUnavailable: %v", err)},
	}
}

// ScoreBatch scores nodes on a bounded worker pool. Per-node results are
// independent; the batch always runs to completion so the caller decides
// against a consistent snapshot. Node-level failures never surface as
// errors: every node gets a (possibly degraded) result.
func (s *Scorer) ScoreBatch(ctx context.Context, nodes []report.Node) map[string]report.ValidationResult {
	limit := s.Concurrency
	if limit <= 0 {
		limit = 4
	}

	var mu sync.Mutex
	out := make(map[string]report.ValidationResult, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, n := range nodes {
		n := n
		g.Go(func() error {
			res := s.ScoreNode(gctx, n)
			mu.Lock()
			out[n.ID] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	return out
}

func sortIssues(issues []report.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity.Rank() != issues[j].Severity.Rank() {
			return issues[i].Severity.Rank() > issues[j].Severity.Rank()
		}
		return issues[i].Priority > issues[j].Priority
	})
}
