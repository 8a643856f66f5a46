package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func proposalSchema() *Schema {
	return &Schema{
		Name:        "test-proposal",
		Description: "test schema",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_code": map[string]any{"type": "string"},
				"operations": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"path": map[string]any{"type": "string"},
							"verb": map[string]any{"type": "string", "enum": []any{"set", "replace"}},
						},
						"required": []any{"path", "verb"},
					},
				},
			},
			"required":             []any{"target_code", "operations"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"target_code":"32550","operations":[{"path":"pleural.tunneled_catheter","verb":"set"}]}`,
		},
		{
			name: "empty operations is valid",
			raw:  `{"target_code":"32550","operations":[]}`,
		},
		{
			name:    "missing required field",
			raw:     `{"operations":[]}`,
			wantErr: true,
		},
		{
			name:    "bad verb enum",
			raw:     `{"target_code":"32550","operations":[{"path":"a.b","verb":"delete"}]}`,
			wantErr: true,
		},
		{
			name:    "extra property",
			raw:     `{"target_code":"32550","operations":[],"extra":1}`,
			wantErr: true,
		},
		{
			name:    "not JSON",
			raw:     `target_code=32550`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(proposalSchema(), json.RawMessage(tt.raw))
			if tt.wantErr {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("err = %v, want ErrInvalidResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validateResponse: %v", err)
			}
		})
	}
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("nil schema should skip validation, got %v", err)
	}
}
