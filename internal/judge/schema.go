package judge

import "github.com/abhisek/chartaudit/internal/llm"

// proposalSchema constrains the LLM judge's output to the proposal
// shape. The operations cap here matches the validator's default so an
// over-eager model fails fast at the provider instead of downstream.
func proposalSchema() *llm.Schema {
	return &llm.Schema{
		Name:        "correction-proposal",
		Description: "A minimal record correction for a single missing procedure code, or a decline.",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target_code": map[string]any{
					"type":        "string",
					"description": "The procedure code this proposal addresses.",
				},
				"operations": map[string]any{
					"type":        "array",
					"maxItems":    5,
					"description": "Field edits. Empty to decline.",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"path": map[string]any{"type": "string"},
							"verb": map[string]any{
								"type": "string",
								"enum": []any{"set", "replace"},
							},
							"value": map[string]any{},
						},
						"required":             []any{"path", "verb", "value"},
						"additionalProperties": false,
					},
				},
				"evidence_quote": map[string]any{
					"type":        "string",
					"description": "Verbatim excerpt from the note supporting the edit. Empty when declining.",
				},
				"rationale": map[string]any{
					"type":        "string",
					"description": "One sentence explaining the proposal or the decline.",
				},
			},
			"required":             []any{"target_code", "operations", "evidence_quote", "rationale"},
			"additionalProperties": false,
		},
	}
}
