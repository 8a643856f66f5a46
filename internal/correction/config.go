// Package correction runs the bounded self-correction loop: for each
// high-confidence audit omission it asks a judge for a minimal record
// edit, validates the proposal against hard limits, applies it, and
// accepts the new record only if re-derivation now attributes the
// missing code. Every judge consultation consumes an attempt; the loop
// can never run longer than the configured attempt budget.
package correction

import (
	"os"
	"strconv"
)

// Config bounds the self-correction loop.
type Config struct {
	// Enabled turns the loop on. When off, audit omissions surface as
	// warnings only.
	Enabled bool `yaml:"enabled"`

	// MaxAttempts is the total judge-consultation budget per request.
	MaxAttempts int `yaml:"max_attempts"`

	// MaxOperations caps the field edits a single proposal may carry.
	MaxOperations int `yaml:"max_operations"`

	// AllowList overrides the default editable-path allow-list when
	// non-empty. Entries are exact paths or block prefixes; an override
	// replaces the default list entirely.
	AllowList []string `yaml:"allow_list"`
}

// DefaultConfig returns the stock loop bounds.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		MaxAttempts:   2,
		MaxOperations: 5,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling
// back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CHARTAUDIT_SELF_CORRECT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("CHARTAUDIT_SELF_CORRECT_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("CHARTAUDIT_SELF_CORRECT_MAX_OPERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxOperations = n
		}
	}

	return cfg
}

// maxOperations resolves the effective per-proposal operation cap.
func (c Config) maxOperations() int {
	if c.MaxOperations > 0 {
		return c.MaxOperations
	}
	return DefaultConfig().MaxOperations
}
