package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// flaky fails n times before succeeding.
type flaky struct {
	failures int
	calls    int
	err      error
}

func (f *flaky) Name() string    { return "flaky" }
func (f *flaky) Version() string { return "flaky/1" }
func (f *flaky) Close() error    { return nil }
func (f *flaky) Evaluate(_ context.Context, _ Request) (Verdict, error) {
	f.calls++
	if f.calls <= f.failures {
		return Verdict{}, f.err
	}
	return Verdict{Score: 80}, nil
}

func TestRetry_TransientErrorEventuallySucceeds(t *testing.T) {
	inner := &flaky{failures: 2, err: errors.New("transient")}
	cli := Wrap(inner, Retry(3, time.Millisecond))

	v, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.NoError(t, err)
	require.Equal(t, 80, v.Score)
	require.Equal(t, 3, inner.calls)
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	inner := &flaky{failures: 10, err: NewPermanentError(errors.New("bad request"))}
	cli := Wrap(inner, Retry(3, time.Millisecond))

	_, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.Error(t, err)
	require.Equal(t, 1, inner.calls)
}

func TestRetry_ExhaustedReturnsLastError(t *testing.T) {
	inner := &flaky{failures: 10, err: errors.New("still down")}
	cli := Wrap(inner, Retry(2, time.Millisecond))

	_, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.EqualError(t, err, "still down")
	require.Equal(t, 2, inner.calls)
}

func TestWrap_Order(t *testing.T) {
	inner := &flaky{failures: 0}
	counter := NewCounter(inner)
	cli := Wrap(counter, Retry(3, time.Millisecond), Timeout(time.Second))

	_, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionBias})
	require.NoError(t, err)
	require.EqualValues(t, 1, counter.Total())
	require.EqualValues(t, 1, counter.ByCategory()["bias"])
}

func TestRateLimit_BurstThenThrottle(t *testing.T) {
	inner := &flaky{failures: 0}
	cli := Wrap(inner, RateLimit(20, 2)) // 50ms interval, 2 free

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
		require.NoError(t, err)
	}
	require.Less(t, time.Since(start), 40*time.Millisecond, "burst calls should not wait")

	_, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "third call should be spaced out")
	require.Equal(t, 3, inner.calls)
}

func TestRateLimit_ContextCancelWhileWaiting(t *testing.T) {
	inner := &flaky{failures: 0}
	cli := Wrap(inner, RateLimit(0.1, 1)) // 10s interval

	_, err := cli.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cli.Evaluate(ctx, Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, inner.calls, "canceled call must not reach the client")
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	inner := &flaky{failures: 0}
	cli := Wrap(inner, RateLimit(0, 5))
	require.Same(t, inner, cli)
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict([]byte(`{"score": 140, "issues": [{"severity":"weird","description":"d","priority":0}]}`))
	require.NoError(t, err)
	require.Equal(t, 100, v.Score)
	require.Equal(t, 50, v.SelfConfidence)
	require.Equal(t, "medium", v.Issues[0].Severity)
	require.Equal(t, 5, v.Issues[0].Priority)

	_, err = ParseVerdict([]byte(`not json`))
	require.Error(t, err)
	var pErr *PermanentError
	require.ErrorAs(t, err, &pErr)
}

func TestFake_CallAccounting(t *testing.T) {
	f := NewFake()
	f.Scores["n1/accuracy"] = 42
	f.Scores["bias"] = 60

	v, err := f.Evaluate(context.Background(), Request{NodeID: "n1", Criterion: CriterionAccuracy})
	require.NoError(t, err)
	require.Equal(t, 42, v.Score)

	v, err = f.Evaluate(context.Background(), Request{NodeID: "n2", Criterion: CriterionBias})
	require.NoError(t, err)
	require.Equal(t, 60, v.Score)

	v, err = f.Evaluate(context.Background(), Request{NodeID: "n3", Criterion: CriterionClarity})
	require.NoError(t, err)
	require.Equal(t, 90, v.Score) // default

	require.EqualValues(t, 3, f.Calls())
	require.Equal(t, 1, f.CallsForNode("n1"))
	require.Equal(t, 1, f.CallsForCategory("bias"))
}
