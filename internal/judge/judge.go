// Package judge proposes minimal record edits for audit-flagged omissions.
// A judge receives the note text, the current record, and the code the
// audit believes is missing; it answers with a small set of field edits
// plus a verbatim quote from the note as evidence, or declines by
// returning no operations at all. Judges only propose; the proposal
// validator and patch applier decide what actually lands.
package judge

import (
	"context"

	"github.com/abhisek/chartaudit/internal/record"
)

// Text markers recording which note text a proposal's evidence was
// drawn from.
const (
	TextRaw        = "raw"
	TextExtraction = "extraction"
)

// Request carries everything a judge may consider for one omission.
type Request struct {
	// RawNote is the full verbatim note text.
	RawNote string

	// Extraction is the narrowed procedure-section text. Empty when the
	// note had no recognizable procedure section; judges prefer it when
	// present and fall back to the raw note.
	Extraction string

	// Record is the current structured record.
	Record *record.Record

	// TargetCode is the code the audit flagged as missing.
	TargetCode string

	// Probability is the audit classifier's confidence for the target.
	Probability float64
}

// preferredText returns the text a judge should search first and the
// marker recording that choice.
func (req Request) preferredText() (string, string) {
	if req.Extraction != "" {
		return req.Extraction, TextExtraction
	}
	return req.RawNote, TextRaw
}

// Proposal is a judge's answer. An empty Operations slice means the
// judge declined: it could not find trustworthy supporting language.
type Proposal struct {
	TargetCode    string             `json:"target_code"`
	Operations    []record.FieldEdit `json:"operations"`
	EvidenceQuote string             `json:"evidence_quote"`
	Rationale     string             `json:"rationale"`

	// TextUsed is TextExtraction or TextRaw, naming the text the
	// evidence quote came from. The quote is validated against that
	// same text downstream.
	TextUsed string `json:"text_used,omitempty"`
}

// Declined reports whether the judge chose not to propose an edit.
func (p *Proposal) Declined() bool {
	return len(p.Operations) == 0
}

// Judge produces correction proposals.
type Judge interface {
	Propose(ctx context.Context, req Request) (*Proposal, error)
}
