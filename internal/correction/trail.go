package correction

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/chartaudit/internal/audit"
	"github.com/abhisek/chartaudit/internal/record"
)

// ConfigSnapshot pins the configuration a correction ran under, so a
// trail entry stays interpretable after thresholds or bounds change.
type ConfigSnapshot struct {
	Audit      audit.Config `json:"audit"`
	Correction Config       `json:"correction"`
}

// CorrectionRecord is the audit-trail entry for one accepted
// correction. The trail is append-only: a later correction never
// rewrites an earlier entry.
type CorrectionRecord struct {
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Attempt       int                `json:"attempt"`
	TargetCode    string             `json:"target_code"`
	Probability   float64            `json:"probability"`
	Operations    []record.FieldEdit `json:"operations"`
	EvidenceQuote string             `json:"evidence_quote"`
	Rationale     string             `json:"rationale"`

	// TextUsed names the text the evidence quote was drawn from,
	// "extraction" or "raw".
	TextUsed string `json:"text_used"`

	PreviousCodes []string       `json:"previous_codes"`
	NewCodes      []string       `json:"new_codes"`
	Config        ConfigSnapshot `json:"config_snapshot"`
}

func newCorrectionRecord(attempt int, target string, probability float64,
	ops []record.FieldEdit, quote, rationale, textUsed string,
	snap ConfigSnapshot, prev, next []string) CorrectionRecord {
	return CorrectionRecord{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Attempt:       attempt,
		TargetCode:    target,
		Probability:   probability,
		Operations:    ops,
		EvidenceQuote: quote,
		Rationale:     rationale,
		TextUsed:      textUsed,
		PreviousCodes: append([]string(nil), prev...),
		NewCodes:      append([]string(nil), next...),
		Config:        snap,
	}
}
