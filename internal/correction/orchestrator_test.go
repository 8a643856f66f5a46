package correction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/chartaudit/internal/audit"
	"github.com/abhisek/chartaudit/internal/classify"
	"github.com/abhisek/chartaudit/internal/derive"
	"github.com/abhisek/chartaudit/internal/judge"
	"github.com/abhisek/chartaudit/internal/record"
)

// scriptedJudge returns canned proposals per target code.
type scriptedJudge struct {
	proposals map[string]*judge.Proposal
	err       error
	calls     int
}

func (s *scriptedJudge) Propose(_ context.Context, req judge.Request) (*judge.Proposal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.proposals[req.TargetCode]; ok {
		return p, nil
	}
	return &judge.Proposal{TargetCode: req.TargetCode, Rationale: "no script"}, nil
}

func setupState(t *testing.T, auditSet []classify.Prediction) (*record.Record, derive.Result, *audit.Report) {
	t.Helper()
	r, err := record.New().Set("lavage.performed", true)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	derived := derive.New().Derive(r)
	report := audit.Compare(derived.Codes, auditSet, audit.DefaultConfig())
	return r, derived, report
}

const catheterNote = "Bronchoscopy with BAL was performed. A tunneled pleural catheter was placed on the right."

func TestOrchestratorAppliesCorrection(t *testing.T) {
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "31624", Probability: 0.95},
		{Code: "32550", Probability: 0.97},
	})
	if len(report.HighConfidenceOmissions) != 1 {
		t.Fatalf("precondition: omissions = %v", report.HighConfidenceOmissions)
	}

	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	o := NewOrchestrator(judge.NewRecipeJudge(), derive.New(), cfg)

	out := o.Run(context.Background(), catheterNote, "", r, derived, report)

	if out.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", out.Attempts)
	}
	if len(out.Corrections) != 1 {
		t.Fatalf("corrections = %v", out.Corrections)
	}
	c := out.Corrections[0]
	if c.TargetCode != "32550" {
		t.Errorf("target = %q", c.TargetCode)
	}
	if c.ID == "" || c.EvidenceQuote == "" {
		t.Error("trail entry missing ID or evidence quote")
	}
	if !out.Derived.Has("32550") || !out.Derived.Has("31624") {
		t.Errorf("final codes = %v", out.Derived.Codes)
	}
	if len(out.Report.HighConfidenceOmissions) != 0 {
		t.Errorf("report still has omissions: %v", out.Report.HighConfidenceOmissions)
	}
	if out.Record.Equal(r) {
		t.Error("record should have changed")
	}
	if r.Bool("pleural.tunneled_catheter") {
		t.Error("input record was mutated")
	}

	var applied bool
	for _, w := range out.Warnings {
		if strings.HasPrefix(w, "self-correction applied:") {
			applied = true
		}
	}
	if !applied {
		t.Errorf("no applied warning in %v", out.Warnings)
	}
}

func TestOrchestratorBoundedByMaxAttempts(t *testing.T) {
	// Three omissions but only two attempts: the loop must stop at two
	// judge consultations even though every proposal is a decline.
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
		{Code: "32551", Probability: 0.96},
		{Code: "31625", Probability: 0.95},
	})

	j := &scriptedJudge{}
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	o := NewOrchestrator(j, derive.New(), cfg)

	out := o.Run(context.Background(), "Nothing relevant documented.", "", r, derived, report)

	if j.calls != 2 {
		t.Errorf("judge calls = %d, want 2", j.calls)
	}
	if out.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", out.Attempts)
	}
	if len(out.Corrections) != 0 {
		t.Errorf("corrections = %v", out.Corrections)
	}
}

func TestOrchestratorDeclineConsumesAttempt(t *testing.T) {
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	o := NewOrchestrator(judge.NewRecipeJudge(), derive.New(), cfg)

	// Note has no catheter language: the recipe judge declines. The same
	// omission must not be retried on the remaining budget.
	out := o.Run(context.Background(), "Diagnostic bronchoscopy with BAL.", "", r, derived, report)

	if out.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry of a declined target)", out.Attempts)
	}
	var skipped bool
	for _, w := range out.Warnings {
		if strings.HasPrefix(w, "self-correction skipped:") {
			skipped = true
		}
	}
	if !skipped {
		t.Errorf("no skip warning in %v", out.Warnings)
	}
}

func TestOrchestratorJudgeErrorDegradesToWarning(t *testing.T) {
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	j := &scriptedJudge{err: errors.New("provider exploded")}
	o := NewOrchestrator(j, derive.New(), DefaultConfig())

	out := o.Run(context.Background(), catheterNote, "", r, derived, report)

	if len(out.Corrections) != 0 {
		t.Errorf("corrections = %v", out.Corrections)
	}
	if !out.Record.Equal(r) {
		t.Error("record must be unchanged after a judge error")
	}
	if len(out.Warnings) == 0 || !strings.Contains(out.Warnings[0], "judge error") {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestOrchestratorNoOpProposalSkipped(t *testing.T) {
	// The record already marks lavage performed; an edit that sets it
	// again is byte-identical and must be skipped, not recorded.
	r, err := record.New().Set("lavage.performed", true)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	derived := derive.New().Derive(r)
	report := audit.Compare(derived.Codes, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	}, audit.DefaultConfig())

	j := &scriptedJudge{proposals: map[string]*judge.Proposal{
		"32550": {
			TargetCode: "32550",
			Operations: []record.FieldEdit{
				{Path: "lavage.performed", Verb: record.VerbSet, Value: true},
			},
			EvidenceQuote: "BAL was performed.",
		},
	}}
	o := NewOrchestrator(j, derive.New(), DefaultConfig())

	out := o.Run(context.Background(), "BAL was performed.", "", r, derived, report)

	if len(out.Corrections) != 0 {
		t.Errorf("corrections = %v", out.Corrections)
	}
	var noop bool
	for _, w := range out.Warnings {
		if strings.Contains(w, "does not change the record") {
			noop = true
		}
	}
	if !noop {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestOrchestratorRejectsWhenTargetStillMissing(t *testing.T) {
	// A proposal that edits an allowed field without making the deriver
	// attribute the target code must be rolled back.
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	j := &scriptedJudge{proposals: map[string]*judge.Proposal{
		"32550": {
			TargetCode: "32550",
			Operations: []record.FieldEdit{
				{Path: "brushings.performed", Verb: record.VerbSet, Value: true},
			},
			EvidenceQuote: "A tunneled pleural catheter was placed on the right.",
		},
	}}
	o := NewOrchestrator(j, derive.New(), DefaultConfig())

	out := o.Run(context.Background(), catheterNote, "", r, derived, report)

	if len(out.Corrections) != 0 {
		t.Errorf("corrections = %v", out.Corrections)
	}
	if !out.Record.Equal(r) {
		t.Error("rejected proposal must not change the record")
	}
	var missing bool
	for _, w := range out.Warnings {
		if strings.Contains(w, "still missing 32550") {
			missing = true
		}
	}
	if !missing {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestOrchestratorEquivalentSiblingSatisfiesTarget(t *testing.T) {
	// Target 32554 but the note documents ultrasound guidance: the
	// proposal sets imaging guidance too and derivation lands on 32555.
	// The sibling satisfies the target via the equivalence class.
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32554", Probability: 0.95},
	})

	j := &scriptedJudge{proposals: map[string]*judge.Proposal{
		"32554": {
			TargetCode: "32554",
			Operations: []record.FieldEdit{
				{Path: "pleural.thoracentesis", Verb: record.VerbSet, Value: true},
				{Path: "pleural.imaging_guidance", Verb: record.VerbSet, Value: true},
			},
			EvidenceQuote: "Ultrasound-guided thoracentesis was performed.",
		},
	}}
	o := NewOrchestrator(j, derive.New(), DefaultConfig())

	note := "Bronchoscopy with BAL. Ultrasound-guided thoracentesis was performed."
	out := o.Run(context.Background(), note, "", r, derived, report)

	if len(out.Corrections) != 1 {
		t.Fatalf("corrections = %v, warnings = %v", out.Corrections, out.Warnings)
	}
	if !out.Derived.Has("32555") {
		t.Errorf("final codes = %v", out.Derived.Codes)
	}
}

func TestOrchestratorExtractionEvidenceRecorded(t *testing.T) {
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	raw := "HISTORY:\nRecurrent right effusion.\n\nPROCEDURE IN DETAIL:\nA tunneled pleural catheter was placed on the right."
	extraction := "PROCEDURE IN DETAIL:\nA tunneled pleural catheter was placed on the right."

	o := NewOrchestrator(judge.NewRecipeJudge(), derive.New(), DefaultConfig())
	out := o.Run(context.Background(), raw, extraction, r, derived, report)

	if len(out.Corrections) != 1 {
		t.Fatalf("corrections = %v, warnings = %v", out.Corrections, out.Warnings)
	}
	if got := out.Corrections[0].TextUsed; got != judge.TextExtraction {
		t.Errorf("text used = %q, want %q", got, judge.TextExtraction)
	}
}

func TestOrchestratorRawFallbackWhenSectionSilent(t *testing.T) {
	// The catheter is documented outside the procedure section. The
	// judge falls back to the raw note; the quote must then be validated
	// against the raw note, and the trail must record the fallback.
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	raw := "A tunneled pleural catheter was placed on the right earlier today.\n\nPROCEDURE IN DETAIL:\nBronchoscopy with BAL was performed."
	extraction := "PROCEDURE IN DETAIL:\nBronchoscopy with BAL was performed."

	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	o := NewOrchestrator(judge.NewRecipeJudge(), derive.New(), cfg)
	out := o.Run(context.Background(), raw, extraction, r, derived, report)

	if len(out.Corrections) != 1 {
		t.Fatalf("corrections = %v, warnings = %v", out.Corrections, out.Warnings)
	}
	c := out.Corrections[0]
	if c.TextUsed != judge.TextRaw {
		t.Errorf("text used = %q, want %q", c.TextUsed, judge.TextRaw)
	}
	if !out.Derived.Has("32550") {
		t.Errorf("final codes = %v", out.Derived.Codes)
	}
}

func TestOrchestratorTrailSnapshotsConfig(t *testing.T) {
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	cfg := DefaultConfig()
	cfg.MaxAttempts = 1
	o := NewOrchestrator(judge.NewRecipeJudge(), derive.New(), cfg)
	out := o.Run(context.Background(), catheterNote, "", r, derived, report)

	if len(out.Corrections) != 1 {
		t.Fatalf("corrections = %v, warnings = %v", out.Corrections, out.Warnings)
	}
	snap := out.Corrections[0].Config
	if snap.Correction.MaxAttempts != 1 {
		t.Errorf("snapshot max attempts = %d, want 1", snap.Correction.MaxAttempts)
	}
	if snap.Audit.SelfCorrectMinProbability != report.Config.SelfCorrectMinProbability {
		t.Errorf("snapshot audit config = %+v, want the report's", snap.Audit)
	}
}

func TestOrchestratorDisabled(t *testing.T) {
	r, derived, report := setupState(t, []classify.Prediction{
		{Code: "32550", Probability: 0.97},
	})

	j := &scriptedJudge{}
	cfg := DefaultConfig()
	cfg.Enabled = false
	o := NewOrchestrator(j, derive.New(), cfg)

	out := o.Run(context.Background(), catheterNote, "", r, derived, report)

	if j.calls != 0 {
		t.Errorf("judge calls = %d, want 0", j.calls)
	}
	if out.Attempts != 0 || len(out.Corrections) != 0 || len(out.Warnings) != 0 {
		t.Errorf("outcome = %+v", out)
	}
}
