package workflow

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"reportgate/internal/reeval"
	"reportgate/internal/report"
	"reportgate/internal/scoring"
)

// Config is the workflow tuning surface. Defaults come from DefaultConfig,
// optionally overlaid by a YAML file, then by REPORTGATE_* environment
// variables.
type Config struct {
	ConfidenceThreshold  int `yaml:"confidence_threshold"`
	ConsistencyThreshold int `yaml:"consistency_threshold"`

	// Weights overrides the default metric weighting; must sum to 1.
	Weights map[string]float64 `yaml:"weights,omitempty"`

	// StrictMode raises both thresholds by 5 and makes high-severity issues
	// block approval.
	StrictMode bool `yaml:"strict_mode"`

	MaxIterations      int    `yaml:"max_iterations"`
	ValidateUnmodified bool   `yaml:"validate_unmodified"`
	ConsistencyDepth   string `yaml:"consistency_depth"` // shallow | deep

	Concurrency int `yaml:"concurrency"`

	// Durations are configured in seconds in YAML/env; yaml.v3 does not
	// decode Go duration strings.
	JudgeTimeoutSec int `yaml:"judge_timeout_sec"`
	CacheTTLSec     int `yaml:"cache_ttl_sec"`
	CacheEntries    int `yaml:"cache_entries"`
}

// JudgeTimeout is the per-call oracle deadline.
func (c Config) JudgeTimeout() time.Duration { return time.Duration(c.JudgeTimeoutSec) * time.Second }

// CacheTTL is the validation-cache entry lifetime.
func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSec) * time.Second }

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold:  85,
		ConsistencyThreshold: 80,
		MaxIterations:        3,
		ConsistencyDepth:     string(reeval.DepthShallow),
		Concurrency:          4,
		JudgeTimeoutSec:      45,
		CacheTTLSec:          1800,
		CacheEntries:         4096,
	}
}

// LoadConfig layers file and environment overrides onto the defaults.
// path may be empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for key, dst := range map[string]*int{
		"REPORTGATE_CONFIDENCE_THRESHOLD":  &c.ConfidenceThreshold,
		"REPORTGATE_CONSISTENCY_THRESHOLD": &c.ConsistencyThreshold,
		"REPORTGATE_MAX_ITERATIONS":        &c.MaxIterations,
		"REPORTGATE_CONCURRENCY":           &c.Concurrency,
		"REPORTGATE_JUDGE_TIMEOUT_SEC":     &c.JudgeTimeoutSec,
	} {
		if err := envInt(key, dst); err != nil {
			return err
		}
	}
	if v := strings.TrimSpace(os.Getenv("REPORTGATE_STRICT")); v != "" {
		c.StrictMode = v == "1" || strings.EqualFold(v, "true")
	}
	if v := strings.TrimSpace(os.Getenv("REPORTGATE_VALIDATE_UNMODIFIED")); v != "" {
		c.ValidateUnmodified = v == "1" || strings.EqualFold(v, "true")
	}
	if v := strings.TrimSpace(os.Getenv("REPORTGATE_CONSISTENCY_DEPTH")); v != "" {
		c.ConsistencyDepth = v
	}
	return nil
}

// envInt overrides dst when the variable is set. An unset or blank variable
// leaves the current value; a set-but-unparsable one is an error, never a
// silent zero.
func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100 {
		return fmt.Errorf("config: confidence_threshold out of range: %d", c.ConfidenceThreshold)
	}
	if c.ConsistencyThreshold < 0 || c.ConsistencyThreshold > 100 {
		return fmt.Errorf("config: consistency_threshold out of range: %d", c.ConsistencyThreshold)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("config: max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	switch reeval.ConsistencyDepth(c.ConsistencyDepth) {
	case reeval.DepthShallow, reeval.DepthDeep:
	default:
		return fmt.Errorf("config: consistency_depth must be shallow or deep, got %q", c.ConsistencyDepth)
	}
	if len(c.Weights) > 0 {
		if err := c.MetricWeights().Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MetricWeights resolves the configured weights, falling back to defaults.
func (c Config) MetricWeights() scoring.Weights {
	if len(c.Weights) == 0 {
		return scoring.DefaultWeights()
	}
	w := make(scoring.Weights, len(c.Weights))
	for k, v := range c.Weights {
		w[report.Category(k)] = v
	}
	return w
}

// EffectiveThresholds applies strict mode to the configured bars.
func (c Config) EffectiveThresholds() (confidence, consistency int) {
	confidence, consistency = c.ConfidenceThreshold, c.ConsistencyThreshold
	if c.StrictMode {
		confidence += 5
		consistency += 5
		if confidence > 100 {
			confidence = 100
		}
		if consistency > 100 {
			consistency = 100
		}
	}
	return confidence, consistency
}
