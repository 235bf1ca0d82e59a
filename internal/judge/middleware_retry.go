package judge

import (
	"context"
	"errors"
	"time"
)

// Retry retries Evaluate up to maxAttempts with exponential backoff
// starting at baseDelay. If context is canceled, it stops immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string    { return r.next.Name() }
func (r *retrying) Version() string { return r.next.Version() }
func (r *retrying) Close() error    { return r.next.Close() }

func (r *retrying) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	var last error
	for i := 0; i < r.max; i++ {
		v, err := r.next.Evaluate(ctx, req)
		if err == nil {
			return v, nil
		}
		// If it's a permanent error, do not retry.
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return Verdict{}, err
		}
		last = err
		// Stop immediately if the context is canceled.
		select {
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		default:
		}
		time.Sleep(r.base * time.Duration(1<<i))
	}
	return Verdict{}, last
}
