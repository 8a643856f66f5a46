package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProviderFIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"n":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"n":2}`)},
	)

	ctx := context.Background()
	first, err := mock.Generate(ctx, Request{System: "sys"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(first.Content) != `{"n":1}` {
		t.Errorf("first content = %s", first.Content)
	}
	if first.Usage.InputTokens != 10 {
		t.Errorf("input tokens = %d", first.Usage.InputTokens)
	}

	second, err := mock.Generate(ctx, Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(second.Content) != `{"n":2}` {
		t.Errorf("second content = %s", second.Content)
	}

	// Queue exhausted.
	_, err = mock.Generate(ctx, Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}

	if len(mock.Calls) != 3 {
		t.Errorf("recorded calls = %d, want 3", len(mock.Calls))
	}
	if mock.Calls[0].System != "sys" {
		t.Errorf("first call system = %q", mock.Calls[0].System)
	}
}

func TestNewProviderMock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"

	p, err := NewProvider(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("model ID = %q", p.ModelID())
	}
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "carrier-pigeon"

	if _, err := NewProvider(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "anthropic with key",
			mutate: func(c *Config) { c.Anthropic.APIKey = "sk-test" },
		},
		{
			name:    "anthropic without key",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name:   "mock needs no key",
			mutate: func(c *Config) { c.Provider = "mock" },
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "nope" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := WithPurpose(context.Background(), "correction-proposal")
	if got := PurposeFrom(ctx); got != "correction-proposal" {
		t.Errorf("PurposeFrom = %q", got)
	}
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", got)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	got := c.Cost(1_000_000, 1_000_000)
	if got != 0.15+0.6 {
		t.Errorf("cost = %v", got)
	}

	if LookupCost("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}
}
