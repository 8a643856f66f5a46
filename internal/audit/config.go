// Package audit compares deterministically derived codes against the
// secondary classifier's predictions and reports the disagreements.
package audit

import (
	"fmt"
	"os"
	"strconv"
)

// Source selects where the audited side of the comparison comes from.
type Source string

const (
	// SourceRawML audits against the raw-text classifier.
	SourceRawML Source = "raw_ml"

	// SourceDisabled produces an empty audited side with a warning.
	SourceDisabled Source = "disabled"
)

// ParseSource validates an audit source mode. An unrecognized mode is the
// one fatal configuration error in the subsystem: auditing against the
// wrong semantics must fail the request before any work begins.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceRawML, SourceDisabled:
		return Source(s), nil
	default:
		return "", fmt.Errorf("unrecognized audit source mode %q (want %q or %q)", s, SourceRawML, SourceDisabled)
	}
}

// Config is the audit threshold configuration, snapshotted into every
// report. Immutable once a request starts.
type Config struct {
	Source Source `yaml:"source"`

	// UseBuckets selects bucket mode (high confidence + gray zone) over
	// top-K selection for the audit set.
	UseBuckets bool `yaml:"use_buckets"`

	// TopK and MinProbability apply in top-K mode only.
	TopK           int     `yaml:"top_k"`
	MinProbability float64 `yaml:"min_probability"`

	// SelfCorrectMinProbability is the stricter bar an omission must
	// clear to become a correction trigger. Always at least as strict as
	// audit-set inclusion.
	SelfCorrectMinProbability float64 `yaml:"self_correct_min_probability"`
}

// DefaultConfig returns bucket-mode auditing with a 0.90 correction bar.
func DefaultConfig() Config {
	return Config{
		Source:                    SourceRawML,
		UseBuckets:                true,
		TopK:                      5,
		MinProbability:            0.50,
		SelfCorrectMinProbability: 0.90,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. The source string is not validated here;
// ParseSource runs at request time so a bad value fails loudly.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CHARTAUDIT_AUDIT_SOURCE"); v != "" {
		cfg.Source = Source(v)
	}
	if v := os.Getenv("CHARTAUDIT_AUDIT_BUCKETS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UseBuckets = b
		}
	}
	if v := os.Getenv("CHARTAUDIT_AUDIT_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopK = n
		}
	}
	if v := os.Getenv("CHARTAUDIT_AUDIT_MIN_PROBABILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinProbability = f
		}
	}
	if v := os.Getenv("CHARTAUDIT_SELF_CORRECT_MIN_PROBABILITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SelfCorrectMinProbability = f
		}
	}

	return cfg
}
