package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/chartaudit/internal/audit"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audit.Source != audit.SourceRawML {
		t.Errorf("audit source = %q", cfg.Audit.Source)
	}
	if cfg.Correction.MaxAttempts != 2 {
		t.Errorf("max attempts = %d", cfg.Correction.MaxAttempts)
	}
	if !cfg.Classify.KeywordFallback {
		t.Error("keyword fallback should default on")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit missing config file must error")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
audit:
  source: disabled
  self_correct_min_probability: 0.95
correction:
  max_attempts: 4
  allow_list: [pleural, ebus]
classifier:
  keyword_fallback: false
  upper_threshold: 0.85
  per_code_upper:
    "32550": 0.7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Audit.Source != audit.SourceDisabled {
		t.Errorf("source = %q", cfg.Audit.Source)
	}
	if cfg.Audit.SelfCorrectMinProbability != 0.95 {
		t.Errorf("self-correct bar = %v", cfg.Audit.SelfCorrectMinProbability)
	}
	// Keys absent from the file keep their defaults.
	if !cfg.Audit.UseBuckets {
		t.Error("use_buckets should keep its default")
	}
	if cfg.Correction.MaxAttempts != 4 {
		t.Errorf("max attempts = %d", cfg.Correction.MaxAttempts)
	}
	if len(cfg.Correction.AllowList) != 2 {
		t.Errorf("allow list = %v", cfg.Correction.AllowList)
	}
	if !cfg.Correction.Enabled {
		t.Error("enabled should keep its default")
	}
	if cfg.Classify.KeywordFallback {
		t.Error("keyword_fallback should be off")
	}
	if cfg.Classify.GlobalUpper != 0.85 {
		t.Errorf("upper = %v", cfg.Classify.GlobalUpper)
	}
	if cfg.Classify.GlobalLower != 0.50 {
		t.Errorf("lower should keep its default, got %v", cfg.Classify.GlobalLower)
	}
	if cfg.Classify.PerCodeUpper["32550"] != 0.7 {
		t.Errorf("per-code upper = %v", cfg.Classify.PerCodeUpper)
	}
}
