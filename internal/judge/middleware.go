package judge

import (
	"context"
	"log"
	"sync"
	"time"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, retries, logging, etc.).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate limiting --------

// RateLimit caps sustained throughput at rps evaluations per second while
// letting up to burst calls through back to back. rps <= 0 disables the cap.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		interval := time.Duration(float64(time.Second) / rps)
		return &rateLimited{
			next:     next,
			interval: interval,
			credit:   time.Duration(burst-1) * interval,
		}
	}
}

// rateLimited spaces calls by tracking when the next one is earned rather
// than running a refill goroutine. credit is how far behind schedule the
// limiter may fall before callers start waiting, which is what allows the
// initial burst.
type rateLimited struct {
	next     Client
	interval time.Duration
	credit   time.Duration

	mu    sync.Mutex
	ready time.Time
}

func (c *rateLimited) Name() string    { return c.next.Name() }
func (c *rateLimited) Version() string { return c.next.Version() }
func (c *rateLimited) Close() error    { return c.next.Close() }

func (c *rateLimited) reserve() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if floor := now.Add(-c.credit); c.ready.Before(floor) {
		c.ready = floor
	}
	wait := c.ready.Sub(now)
	c.ready = c.ready.Add(c.interval)
	return wait
}

func (c *rateLimited) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	if wait := c.reserve(); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		case <-t.C:
		}
	}
	return c.next.Evaluate(ctx, req)
}

// -------- Logging --------

// Logging logs each evaluation with latency and outcome under the given prefix.
func Logging(prefix string) Middleware {
	return func(next Client) Client {
		return &logged{next: next, prefix: prefix}
	}
}

type logged struct {
	next   Client
	prefix string
}

func (c *logged) Name() string    { return c.next.Name() }
func (c *logged) Version() string { return c.next.Version() }
func (c *logged) Close() error    { return c.next.Close() }

func (c *logged) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	start := time.Now()
	v, err := c.next.Evaluate(ctx, req)
	if err != nil {
		log.Printf("%s: %s node=%s criterion=%s err=%v (%.0fms)",
			c.prefix, c.next.Name(), req.NodeID, req.Criterion.Category, err,
			float64(time.Since(start).Milliseconds()))
		return Verdict{}, err
	}
	log.Printf("%s: %s node=%s criterion=%s score=%d issues=%d (%.0fms)",
		c.prefix, c.next.Name(), req.NodeID, req.Criterion.Category, v.Score, len(v.Issues),
		float64(time.Since(start).Milliseconds()))
	return v, nil
}

// -------- Timeout --------

// Timeout bounds each evaluation with its own deadline.
func Timeout(d time.Duration) Middleware {
	return func(next Client) Client {
		if d <= 0 {
			return next
		}
		return &timed{next: next, d: d}
	}
}

type timed struct {
	next Client
	d    time.Duration
}

func (c *timed) Name() string    { return c.next.Name() }
func (c *timed) Version() string { return c.next.Version() }
func (c *timed) Close() error    { return c.next.Close() }

func (c *timed) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, c.d)
	defer cancel()
	return c.next.Evaluate(ctx, req)
}
