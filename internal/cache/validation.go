// Package cache holds the shared validation cache. Verdicts are memoized by
// (nodeID, contentHash, judgeVersion); a hit short-circuits the judge oracle
// entirely, which is what makes re-evaluation cost scale with the size of the
// change rather than the size of the report.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"reportgate/internal/report"
)

// Key is the cache identity of one scored node. Writes are idempotent: the
// same key always maps to the same verdict within a judge version, so
// concurrent writers racing on a key are harmless.
type Key struct {
	NodeID       string
	ContentHash  string
	JudgeVersion string
}

func (k Key) String() string {
	return k.NodeID + "\x00" + k.ContentHash + "\x00" + k.JudgeVersion
}

type Config struct {
	MaxEntries int
	TTL        time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxEntries: 4096,
		TTL:        30 * time.Minute,
	}
}

type MetricsSnapshot struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Writes uint64 `json:"writes"`
}

type metrics struct {
	hits   atomic.Uint64
	misses atomic.Uint64
	writes atomic.Uint64
}

// Validation is a bounded, TTL'd, thread-safe cache of node validation
// results, shared read-mostly across concurrent workflows.
type Validation struct {
	lru     *expirable.LRU[string, report.ValidationResult]
	metrics metrics
}

func NewValidation(cfg Config) *Validation {
	def := DefaultConfig()
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &Validation{
		lru: expirable.NewLRU[string, report.ValidationResult](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (c *Validation) Get(k Key) (report.ValidationResult, bool) {
	if c == nil {
		return report.ValidationResult{}, false
	}
	v, ok := c.lru.Get(k.String())
	if ok {
		c.metrics.hits.Add(1)
	} else {
		c.metrics.misses.Add(1)
	}
	return v, ok
}

func (c *Validation) Put(k Key, v report.ValidationResult) {
	if c == nil {
		return
	}
	c.metrics.writes.Add(1)
	c.lru.Add(k.String(), v)
}

func (c *Validation) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *Validation) Metrics() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:   c.metrics.hits.Load(),
		Misses: c.metrics.misses.Load(),
		Writes: c.metrics.writes.Load(),
	}
}
