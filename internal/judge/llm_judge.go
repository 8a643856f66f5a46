package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/chartaudit/internal/llm"
	"github.com/abhisek/chartaudit/internal/notetext"
)

// LLMJudge asks an external reasoning service to propose corrections.
// The model's output is schema-constrained at the provider and re-checked
// here: a proposal whose quote sits in a negation window is downgraded to
// a decline rather than passed along.
type LLMJudge struct {
	provider llm.Provider
}

// NewLLMJudge returns a judge backed by the given provider.
func NewLLMJudge(p llm.Provider) *LLMJudge {
	return &LLMJudge{provider: p}
}

// Propose implements Judge. Provider errors (including unavailability)
// are returned as-is so the orchestrator can charge the attempt and
// record the reason.
func (j *LLMJudge) Propose(ctx context.Context, req Request) (*Proposal, error) {
	ctx = llm.WithPurpose(ctx, "correction-proposal")

	text, used := req.preferredText()

	resp, err := j.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserPrompt(req, text)},
		},
		Schema:      proposalSchema(),
		MaxTokens:   1024,
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	var p Proposal
	if err := json.Unmarshal(resp.Content, &p); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}

	// The model must answer for the code it was asked about.
	if p.TargetCode != req.TargetCode {
		return &Proposal{
			TargetCode: req.TargetCode,
			Rationale:  fmt.Sprintf("model answered for code %s instead of %s", p.TargetCode, req.TargetCode),
		}, nil
	}

	if !p.Declined() && quoteNegated(text, p.EvidenceQuote) {
		return &Proposal{
			TargetCode: req.TargetCode,
			Rationale:  "evidence quote appears in a negated statement",
		}, nil
	}

	// The model only saw one text; record which one the quote came from.
	p.TextUsed = used
	return &p, nil
}

// quoteNegated reports whether the quote's occurrence in the note is
// preceded by a negation term within the lookback window.
func quoteNegated(note, quote string) bool {
	if quote == "" {
		return false
	}
	if _, found := notetext.FindEvidence(note, []string{quote}); found {
		return false
	}
	// Not findable as clean evidence. If the quote is present at all, the
	// only explanation is negation; if it is absent entirely, the
	// validator's verbatim check will reject it downstream.
	return strings.Contains(strings.ToLower(note), strings.ToLower(quote))
}
