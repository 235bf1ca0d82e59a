package judge

import (
	"context"
	"sync"
	"sync/atomic"
)

// Counter counts oracle invocations by category. Wrapped innermost it sees
// only calls that actually reached the oracle (cache hits never get here),
// which is what the selective re-scoring cost contract is asserted against.
type Counter struct {
	next Client

	total      atomic.Int64
	mu         sync.Mutex
	byCategory map[string]int64
}

func NewCounter(next Client) *Counter {
	return &Counter{next: next, byCategory: map[string]int64{}}
}

func (c *Counter) Name() string    { return c.next.Name() }
func (c *Counter) Version() string { return c.next.Version() }
func (c *Counter) Close() error    { return c.next.Close() }

func (c *Counter) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	c.total.Add(1)
	c.mu.Lock()
	c.byCategory[req.Criterion.Category]++
	c.mu.Unlock()
	return c.next.Evaluate(ctx, req)
}

// Total reports all oracle invocations so far.
func (c *Counter) Total() int64 { return c.total.Load() }

// ByCategory returns a copy of per-category invocation counts.
func (c *Counter) ByCategory() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.byCategory))
	for k, v := range c.byCategory {
		out[k] = v
	}
	return out
}
