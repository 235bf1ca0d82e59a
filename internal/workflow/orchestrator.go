package workflow

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"reportgate/internal/cache"
	"reportgate/internal/feedback"
	"reportgate/internal/judge"
	"reportgate/internal/reeval"
	"reportgate/internal/report"
	"reportgate/internal/scoring"
)

// Reviser is the external content generator's hook: it applies a feedback
// plan to the current document and returns the revised document. The
// pipeline places no constraint on how feedback is interpreted.
type Reviser func(ctx context.Context, doc report.Document, plan feedback.Plan) (report.Document, error)

// Orchestrator sequences extraction, scoring, feedback, and re-evaluation
// into a bounded iterate-until-approved loop.
type Orchestrator struct {
	cfg      Config
	judge    judge.Client
	counter  *judge.Counter
	cache    *cache.Validation
	registry *report.Registry

	// Revise is optional. When nil the workflow ends after producing its
	// first feedback plan and the generator applies it out of band.
	Revise Reviser
}

// New wires the orchestrator. The judge is wrapped with per-call timeout and
// bounded retry; calls that reach the oracle are counted for the result's
// judge ledger.
func New(j judge.Client, vc *cache.Validation, cfg Config) *Orchestrator {
	counter := judge.NewCounter(j)
	wrapped := judge.Wrap(counter,
		judge.Retry(3, 300*time.Millisecond),
		judge.Timeout(cfg.JudgeTimeout()),
	)
	if vc == nil {
		vc = cache.NewValidation(cache.Config{MaxEntries: cfg.CacheEntries, TTL: cfg.CacheTTL()})
	}
	return &Orchestrator{
		cfg:      cfg,
		judge:    wrapped,
		counter:  counter,
		cache:    vc,
		registry: report.NewRegistry(),
	}
}

// Registry exposes the node-type profile registry so deployments can add
// node types.
func (o *Orchestrator) Registry() *report.Registry { return o.registry }

// Run validates a generator document until it clears the confidence bar, the
// iteration budget runs out, or a critical issue fails it.
func (o *Orchestrator) Run(ctx context.Context, doc report.Document, kind string) (*Result, error) {
	workflowID := doc.WorkflowID
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	confTh, consTh := o.cfg.EffectiveThresholds()
	scorer := &scoring.Scorer{
		Judge:       o.judge,
		Cache:       o.cache,
		Registry:    o.registry,
		Weights:     o.cfg.MetricWeights(),
		Concurrency: o.cfg.Concurrency,
	}
	ctrl := &reeval.Controller{
		Scorer:               scorer,
		Registry:             o.registry,
		ConfidenceThreshold:  confTh,
		ConsistencyThreshold: consTh,
		Strict:               o.cfg.StrictMode,
		ValidateUnmodified:   o.cfg.ValidateUnmodified,
		Depth:                reeval.ConsistencyDepth(o.cfg.ConsistencyDepth),
	}

	res := &Result{WorkflowID: workflowID, Kind: kind, Results: map[string]report.ValidationResult{}}

	rep := report.Extract(doc, kind)
	rep.WorkflowID = workflowID
	rep.Iteration = 1
	res.Warnings = rep.Warnings
	if len(rep.Nodes) == 0 {
		res.Status = reeval.StatusFailed
		res.ManualReview = true
		res.Reason = "no validatable content could be extracted"
		return res, nil
	}

	log.Printf("workflow: %s iteration=1 nodes=%d", workflowID, len(rep.Nodes))
	results := scorer.ScoreBatch(ctx, rep.Nodes)

	allIDs := make([]string, 0, len(rep.Nodes))
	for _, n := range rep.Nodes {
		allIDs = append(allIDs, n.ID)
	}
	cons := reeval.CheckConsistency(rep, allIDs, reeval.ConsistencyDepth(o.cfg.ConsistencyDepth), reeval.ConsistencyReport{})

	decision := reeval.Decide(rep, results, cons, reeval.Thresholds{
		Confidence:  confTh,
		Consistency: consTh,
		Strict:      o.cfg.StrictMode,
	})
	snapshot := reeval.Snapshot{Report: rep, Results: results, Consistency: cons}
	res.History = append(res.History, IterationRecord{
		Iteration:         1,
		Status:            decision.Status,
		OverallConfidence: decision.OverallConfidence,
		Results:           results,
	})

	iter := 1
	for {
		if err := ctx.Err(); err != nil {
			return o.finish(res, rep, results, decision, iter), err
		}

		switch decision.Status {
		case reeval.StatusApproved:
			return o.finish(res, rep, results, decision, iter), nil
		case reeval.StatusFailed:
			res.Reason = "critical issue present"
			return o.finish(res, rep, results, decision, iter), nil
		}

		plan := o.buildPlan(rep, results, confTh, iter)
		res.Plan = &plan
		res.History[len(res.History)-1].Plan = &plan

		if iter >= o.cfg.MaxIterations {
			res.ManualReview = true
			res.Reason = "iteration budget exhausted"
			decision.Status = reeval.StatusFailed
			return o.finish(res, rep, results, decision, iter), nil
		}
		if o.Revise == nil {
			res.Reason = "awaiting external revision"
			return o.finish(res, rep, results, decision, iter), nil
		}

		revised, err := o.Revise(ctx, doc, plan)
		if err != nil {
			res.Reason = "revision failed"
			return o.finish(res, rep, results, decision, iter), err
		}

		iter++
		doc = revised
		next := report.Extract(doc, kind)
		next.WorkflowID = workflowID
		next.Iteration = iter
		res.Warnings = append(res.Warnings, next.Warnings...)

		log.Printf("workflow: %s iteration=%d nodes=%d", workflowID, iter, len(next.Nodes))
		reval := ctrl.Reevaluate(ctx, snapshot, next, plan.RecommendedSequence)

		rep = next
		results = reval.Results
		decision = reeval.Decision{
			Status:            reval.Status,
			OverallConfidence: reval.OverallConfidence,
			BlockingNodes:     reval.BlockingNodes,
			BlockingIssues:    reval.BlockingIssues,
		}
		snapshot = reeval.Snapshot{Report: rep, Results: results, Consistency: reval.Consistency}
		rv := reval
		res.History = append(res.History, IterationRecord{
			Iteration:         iter,
			Status:            reval.Status,
			OverallConfidence: reval.OverallConfidence,
			Results:           results,
			Revalidation:      &rv,
		})
	}
}

// buildPlan synthesizes feedback for every node that misses the bar or
// carries issues. A node below threshold with no reported issues (the
// degraded path) still gets one actionable item so the plan is never empty
// for a non-approvable report.
func (o *Orchestrator) buildPlan(rep *report.Report, results map[string]report.ValidationResult, confTh, iter int) feedback.Plan {
	fctx := feedback.Context{
		ConfidenceThreshold: confTh,
		IterationsRemaining: o.cfg.MaxIterations - iter,
	}
	var items []feedback.Item
	for _, n := range rep.Nodes {
		r, ok := results[n.ID]
		if !ok {
			continue
		}
		if r.Confidence >= confTh && len(r.Issues) == 0 {
			continue
		}
		if len(r.Issues) == 0 {
			r.Issues = []report.Issue{syntheticIssue(r)}
		}
		nodeItems, err := feedback.Synthesize(r, n, fctx)
		if err != nil {
			log.Printf("workflow: feedback synthesis for node %s: %v", n.ID, err)
			continue
		}
		items = append(items, nodeItems...)
	}
	return feedback.BuildPlan(items, rep)
}

// syntheticIssue targets the weakest metric when a node is below threshold
// without any issue attached.
func syntheticIssue(r report.ValidationResult) report.Issue {
	worst := report.CategoryClarity
	worstScore := 101
	for _, m := range r.Metrics {
		if m.Score < worstScore {
			worstScore = m.Score
			worst = m.Category
		}
	}
	return report.Issue{
		Category:    worst,
		Severity:    report.SeverityMedium,
		Description: "confidence below threshold; weakest dimension needs rework",
		Priority:    6,
	}
}

func (o *Orchestrator) finish(res *Result, rep *report.Report, results map[string]report.ValidationResult, d reeval.Decision, iter int) *Result {
	res.Status = d.Status
	res.Iterations = iter
	res.OverallConfidence = d.OverallConfidence
	res.Results = results
	res.BlockingNodes = d.BlockingNodes
	res.BlockingIssues = d.BlockingIssues
	for _, r := range results {
		if r.Degraded {
			res.Degraded = true
			break
		}
	}
	res.Stats = confidenceStats(results)
	res.JudgeCalls = o.counter.Total()
	res.CacheMetrics = o.cache.Metrics()
	log.Printf("workflow: %s done status=%s confidence=%d iterations=%d judge_calls=%d",
		res.WorkflowID, res.Status, res.OverallConfidence, iter, res.JudgeCalls)
	return res
}
