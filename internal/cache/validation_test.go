package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reportgate/internal/report"
)

func TestValidation_HitMissAndMetrics(t *testing.T) {
	c := NewValidation(Config{MaxEntries: 8, TTL: time.Minute})
	k := Key{NodeID: "n1", ContentHash: "h1", JudgeVersion: "fake/1"}

	_, ok := c.Get(k)
	require.False(t, ok)

	c.Put(k, report.ValidationResult{NodeID: "n1", Confidence: 90})
	got, ok := c.Get(k)
	require.True(t, ok)
	require.Equal(t, 90, got.Confidence)

	m := c.Metrics()
	require.EqualValues(t, 1, m.Hits)
	require.EqualValues(t, 1, m.Misses)
	require.EqualValues(t, 1, m.Writes)
}

func TestValidation_KeyDimensionsAreIndependent(t *testing.T) {
	c := NewValidation(Config{MaxEntries: 8, TTL: time.Minute})
	c.Put(Key{NodeID: "n1", ContentHash: "h1", JudgeVersion: "v1"}, report.ValidationResult{Confidence: 90})

	// Different content hash or judge version must miss.
	_, ok := c.Get(Key{NodeID: "n1", ContentHash: "h2", JudgeVersion: "v1"})
	require.False(t, ok)
	_, ok = c.Get(Key{NodeID: "n1", ContentHash: "h1", JudgeVersion: "v2"})
	require.False(t, ok)
}

func TestValidation_NilSafe(t *testing.T) {
	var c *Validation
	_, ok := c.Get(Key{NodeID: "n"})
	require.False(t, ok)
	c.Put(Key{NodeID: "n"}, report.ValidationResult{})
	require.Equal(t, 0, c.Len())
	require.Equal(t, MetricsSnapshot{}, c.Metrics())
}

func TestValidation_Eviction(t *testing.T) {
	c := NewValidation(Config{MaxEntries: 2, TTL: time.Minute})
	c.Put(Key{NodeID: "a"}, report.ValidationResult{})
	c.Put(Key{NodeID: "b"}, report.ValidationResult{})
	c.Put(Key{NodeID: "c"}, report.ValidationResult{})
	require.Equal(t, 2, c.Len())
	_, ok := c.Get(Key{NodeID: "a"})
	require.False(t, ok)
}
