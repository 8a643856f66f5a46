package correction

import (
	"context"
	"fmt"

	"github.com/abhisek/chartaudit/internal/audit"
	"github.com/abhisek/chartaudit/internal/classify"
	"github.com/abhisek/chartaudit/internal/codes"
	"github.com/abhisek/chartaudit/internal/derive"
	"github.com/abhisek/chartaudit/internal/judge"
	"github.com/abhisek/chartaudit/internal/record"
)

// Orchestrator drives the correction loop for one request.
type Orchestrator struct {
	judge   judge.Judge
	deriver derive.Deriver
	cfg     Config
}

// NewOrchestrator wires a judge and deriver under the given bounds.
func NewOrchestrator(j judge.Judge, d derive.Deriver, cfg Config) *Orchestrator {
	return &Orchestrator{judge: j, deriver: d, cfg: cfg}
}

// Outcome is the final state after the loop finishes. Record, Derived
// and Report reflect all accepted corrections; a rejected proposal
// leaves no trace beyond its warning.
type Outcome struct {
	Record      *record.Record
	Derived     derive.Result
	Report      *audit.Report
	Corrections []CorrectionRecord
	Warnings    []string
	Attempts    int
}

// Run executes the bounded correction loop. note is the full raw text;
// extraction is the narrowed procedure section, empty when the note had
// none. Evidence quotes are checked against whichever text the judge
// reports using. rec, derived and report are the pre-correction state.
// Run never errors: every failure mode inside the loop degrades to a
// warning and the loop moves on or stops.
func (o *Orchestrator) Run(ctx context.Context, note, extraction string, rec *record.Record,
	derived derive.Result, report *audit.Report) Outcome {

	out := Outcome{Record: rec, Derived: derived, Report: report}
	if !o.cfg.Enabled || o.judge == nil {
		return out
	}

	snap := ConfigSnapshot{Audit: report.Config, Correction: o.cfg}
	attempted := make(map[string]bool)

	for out.Attempts < o.cfg.MaxAttempts {
		target, ok := nextOmission(out.Report, attempted)
		if !ok {
			break
		}
		attempted[target.Code] = true

		// Consulting the judge consumes an attempt no matter how the
		// proposal fares; the budget bounds work, not successes.
		out.Attempts++

		proposal, err := o.judge.Propose(ctx, judge.Request{
			RawNote:     note,
			Extraction:  extraction,
			Record:      out.Record,
			TargetCode:  target.Code,
			Probability: target.Probability,
		})
		if err != nil {
			out.warnf("self-correction skipped: judge error for %s: %v", target.Code, err)
			continue
		}
		if proposal.Declined() {
			out.warnf("self-correction skipped: judge declined for %s: %s", target.Code, proposal.Rationale)
			continue
		}

		// Validate the quote against the text the judge says it quoted.
		sourceText := note
		if proposal.TextUsed == judge.TextExtraction && extraction != "" {
			sourceText = extraction
		}
		ops, err := ValidateProposal(proposal, sourceText, o.cfg)
		if err != nil {
			out.warnf("self-correction skipped: invalid proposal for %s: %v", target.Code, err)
			continue
		}

		corrected, err := ApplyEdits(out.Record, ops)
		if err != nil {
			out.warnf("self-correction skipped: patch failed for %s: %v", target.Code, err)
			continue
		}
		if corrected.Equal(out.Record) {
			out.warnf("self-correction skipped: proposal for %s does not change the record", target.Code)
			continue
		}

		rederived := o.deriver.Derive(corrected)
		if !hasCodeOrSibling(rederived, target.Code) {
			out.warnf("self-correction skipped: re-derived codes still missing %s after applying the proposal", target.Code)
			continue
		}

		// Accepted: swap the record, log the trail entry, and replace the
		// report wholesale against the unchanged audit set.
		textUsed := proposal.TextUsed
		if textUsed == "" {
			textUsed = judge.TextRaw
		}
		trail := newCorrectionRecord(out.Attempts, target.Code, target.Probability,
			ops, proposal.EvidenceQuote, proposal.Rationale, textUsed,
			snap, out.Derived.Codes, rederived.Codes)

		out.Record = corrected
		out.Derived = rederived
		out.Report = audit.Compare(rederived.Codes, out.Report.AuditedCodes, out.Report.Config)
		out.Corrections = append(out.Corrections, trail)
		out.warnf("self-correction applied: code %s attributed after record correction (p=%.2f)",
			target.Code, target.Probability)
	}

	return out
}

func (out *Outcome) warnf(format string, args ...any) {
	out.Warnings = append(out.Warnings, fmt.Sprintf(format, args...))
}

// nextOmission returns the first high-confidence omission that has not
// consumed an attempt yet.
func nextOmission(r *audit.Report, attempted map[string]bool) (classify.Prediction, bool) {
	for _, p := range r.HighConfidenceOmissions {
		if !attempted[p.Code] {
			return p, true
		}
	}
	return classify.Prediction{}, false
}

// hasCodeOrSibling reports whether the derivation contains the target
// or an equivalent sibling variant.
func hasCodeOrSibling(res derive.Result, target string) bool {
	if res.Has(target) {
		return true
	}
	for _, sib := range codes.Siblings(target) {
		if res.Has(sib) {
			return true
		}
	}
	return false
}
