package classify

import (
	"os"
	"strconv"
)

// Config controls backend loading and threshold resolution.
type Config struct {
	// ModelPath is the path to the linear model artifact (JSON). Empty
	// means no trained model; the keyword scorer is used instead.
	ModelPath string

	// KeywordFallback enables the built-in keyword scorer when no trained
	// model loads. Disabling it with no model present leaves the
	// classifier unavailable, which downstream treats as "audit skipped".
	KeywordFallback bool

	// GlobalUpper is the default high-confidence threshold.
	GlobalUpper float64

	// GlobalLower is the gray-zone floor. There is no per-code override
	// for the lower bound.
	GlobalLower float64

	// PerCodeUpper overrides the upper threshold for individual codes.
	PerCodeUpper map[string]float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		KeywordFallback: true,
		GlobalUpper:     0.80,
		GlobalLower:     0.50,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("CHARTAUDIT_MODEL_PATH"); p != "" {
		cfg.ModelPath = p
	}
	if v := os.Getenv("CHARTAUDIT_KEYWORD_FALLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.KeywordFallback = b
		}
	}
	if v := os.Getenv("CHARTAUDIT_UPPER_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GlobalUpper = f
		}
	}
	if v := os.Getenv("CHARTAUDIT_LOWER_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GlobalLower = f
		}
	}

	return cfg
}

// UpperFor resolves the high-confidence threshold for a code: the
// per-code override when present, else the global upper bound.
func (c Config) UpperFor(code string) float64 {
	if v, ok := c.PerCodeUpper[code]; ok {
		return v
	}
	return c.GlobalUpper
}

// LowerFor resolves the gray-zone floor for a code. Always the global
// lower bound.
func (c Config) LowerFor(string) float64 {
	return c.GlobalLower
}
