// Package config assembles the runtime configuration: package defaults,
// then environment variables, then an optional YAML file on top. The
// file wins so a checked-in config stays authoritative over whatever
// happens to be in the shell environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/chartaudit/internal/audit"
	"github.com/abhisek/chartaudit/internal/classify"
	"github.com/abhisek/chartaudit/internal/correction"
)

// Config is the assembled subsystem configuration.
type Config struct {
	Audit      audit.Config
	Correction correction.Config
	Classify   classify.Config
}

// classifierFile is the YAML shape for classifier settings. Pointer
// fields distinguish "absent" from zero values.
type classifierFile struct {
	ModelPath       *string            `yaml:"model_path"`
	KeywordFallback *bool              `yaml:"keyword_fallback"`
	UpperThreshold  *float64           `yaml:"upper_threshold"`
	LowerThreshold  *float64           `yaml:"lower_threshold"`
	PerCodeUpper    map[string]float64 `yaml:"per_code_upper"`
}

// Load builds the configuration. path may be empty, in which case the
// default location is probed and a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Audit:      audit.ConfigFromEnv(),
		Correction: correction.ConfigFromEnv(),
		Classify:   classify.ConfigFromEnv(),
	}

	explicit := path != ""
	if path == "" {
		path = defaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Decoding into the live structs merges: keys absent from the file
	// keep their env/default values.
	file := struct {
		Audit      *audit.Config      `yaml:"audit"`
		Correction *correction.Config `yaml:"correction"`
		Classifier *classifierFile    `yaml:"classifier"`
	}{
		Audit:      &cfg.Audit,
		Correction: &cfg.Correction,
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if c := file.Classifier; c != nil {
		if c.ModelPath != nil {
			cfg.Classify.ModelPath = *c.ModelPath
		}
		if c.KeywordFallback != nil {
			cfg.Classify.KeywordFallback = *c.KeywordFallback
		}
		if c.UpperThreshold != nil {
			cfg.Classify.GlobalUpper = *c.UpperThreshold
		}
		if c.LowerThreshold != nil {
			cfg.Classify.GlobalLower = *c.LowerThreshold
		}
		if len(c.PerCodeUpper) > 0 {
			cfg.Classify.PerCodeUpper = c.PerCodeUpper
		}
	}

	return cfg, nil
}

// defaultPath returns CHARTAUDIT_CONFIG or the XDG config location.
func defaultPath() string {
	if p := os.Getenv("CHARTAUDIT_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chartaudit", "config.yaml")
}
