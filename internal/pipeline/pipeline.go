// Package pipeline wires the full request path: narrow the note,
// extract a record, derive codes, classify the raw text, audit the
// disagreement, and run the bounded self-correction loop. The result
// bundle carries everything a caller needs to render or persist a run.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/chartaudit/internal/audit"
	"github.com/abhisek/chartaudit/internal/classify"
	"github.com/abhisek/chartaudit/internal/correction"
	"github.com/abhisek/chartaudit/internal/derive"
	"github.com/abhisek/chartaudit/internal/extract"
	"github.com/abhisek/chartaudit/internal/judge"
	"github.com/abhisek/chartaudit/internal/notetext"
	"github.com/abhisek/chartaudit/internal/record"
	"github.com/abhisek/chartaudit/internal/store"
)

// Pipeline processes procedure notes end to end.
type Pipeline struct {
	extractor  extract.Extractor
	deriver    derive.Deriver
	classifier *classify.Handle
	judge      judge.Judge
	auditCfg   audit.Config
	corrCfg    correction.Config

	// runs is optional; when set, completed runs are persisted.
	runs store.RunRepo
}

// New assembles a pipeline. The judge may be nil, which disables the
// correction loop regardless of its config.
func New(ex extract.Extractor, d derive.Deriver, cls *classify.Handle,
	j judge.Judge, auditCfg audit.Config, corrCfg correction.Config) *Pipeline {
	return &Pipeline{
		extractor:  ex,
		deriver:    d,
		classifier: cls,
		judge:      j,
		auditCfg:   auditCfg,
		corrCfg:    corrCfg,
	}
}

// WithRunStore enables run persistence. A store failure degrades to a
// warning on the result, never an error.
func (p *Pipeline) WithRunStore(runs store.RunRepo) *Pipeline {
	p.runs = runs
	return p
}

// Result is the complete outcome of one note.
type Result struct {
	RunID      string    `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
	NoteSHA256 string    `json:"note_sha256"`

	Record       *record.Record `json:"record"`
	DerivedCodes []string       `json:"derived_codes"`

	// Classification is nil when auditing was disabled or the classifier
	// capability was unavailable.
	Classification *classify.Classification `json:"classification,omitempty"`

	Report      *audit.Report                 `json:"report"`
	Corrections []correction.CorrectionRecord `json:"corrections,omitempty"`

	// SourceLabel names the audit source and, when one ran, the backend,
	// e.g. "raw_ml:keyword".
	SourceLabel string `json:"source_label"`

	// Difficulty is the classification tier, empty when no classification
	// ran.
	Difficulty classify.Difficulty `json:"difficulty,omitempty"`

	NeedsManualReview bool     `json:"needs_manual_review"`
	Warnings          []string `json:"warnings,omitempty"`
	Attempts          int      `json:"attempts"`
}

// Run processes one note. The only fatal error ahead of extraction is
// an unrecognized audit source mode; everything downstream degrades to
// warnings on the result.
func (p *Pipeline) Run(ctx context.Context, note string) (*Result, error) {
	source, err := audit.ParseSource(string(p.auditCfg.Source))
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		NoteSHA256: hashNote(note),
	}

	narrowed := notetext.Narrow(note)

	rec, err := p.extractor.Extract(ctx, narrowed)
	if err != nil {
		return nil, fmt.Errorf("extract record: %w", err)
	}

	derived := p.deriver.Derive(rec)
	res.Warnings = append(res.Warnings, derived.Warnings...)

	var report *audit.Report
	switch source {
	case audit.SourceDisabled:
		report = audit.Disabled(derived.Codes, p.auditCfg)
	case audit.SourceRawML:
		// The classifier sees the verbatim raw note, never the narrowed
		// text or the extraction output.
		if p.classifier != nil {
			res.Classification = p.classifier.Classify(note)
		}
		if res.Classification == nil {
			report = audit.Unavailable(derived.Codes, p.auditCfg)
		} else {
			res.Difficulty = res.Classification.Difficulty
			auditSet := audit.Select(res.Classification, p.auditCfg)
			report = audit.Compare(derived.Codes, auditSet, p.auditCfg)
		}
	}
	res.Warnings = append(res.Warnings, report.Warnings...)

	// The judges see both texts; extraction is empty when narrowing
	// found no procedure section.
	extraction := narrowed
	if extraction == note {
		extraction = ""
	}
	out := correction.NewOrchestrator(p.judge, p.deriver, p.corrCfg).
		Run(ctx, note, extraction, rec, derived, report)

	res.Record = out.Record
	res.DerivedCodes = out.Derived.Codes
	res.Report = out.Report
	res.Corrections = out.Corrections
	res.Attempts = out.Attempts
	res.Warnings = append(res.Warnings, out.Warnings...)
	res.Warnings = append(res.Warnings, out.Report.OmissionWarnings(source, res.Classification)...)

	res.SourceLabel = string(source)
	if res.Classification != nil {
		res.SourceLabel = fmt.Sprintf("%s:%s", source, res.Classification.Backend)
	}

	res.NeedsManualReview = needsManualReview(res)

	p.persist(ctx, res)

	return res, nil
}

// needsManualReview flags runs a coder should look at: an unresolved
// high-confidence omission, a case the classifier was not confident
// about, or a substantive warning (an applied correction is itself a
// reason for a human to glance at the trail). The notices explaining
// that auditing was disabled or skipped describe configuration, not a
// finding, and do not flag the run on their own.
func needsManualReview(res *Result) bool {
	if len(res.Report.HighConfidenceOmissions) > 0 {
		return true
	}
	if res.Difficulty != "" && res.Difficulty != classify.DifficultyHighConf {
		return true
	}
	for _, w := range res.Warnings {
		if !informationalWarning(w) {
			return true
		}
	}
	return false
}

// informationalWarning reports whether w is a status notice rather than
// a finding about the note or the record.
func informationalWarning(w string) bool {
	return strings.HasPrefix(w, "audit disabled:") || strings.HasPrefix(w, "audit skipped:")
}

func (p *Pipeline) persist(ctx context.Context, res *Result) {
	if p.runs == nil {
		return
	}
	err := p.runs.AppendRun(ctx, &store.Run{
		ID:                res.RunID,
		Timestamp:         res.Timestamp,
		NoteSHA256:        res.NoteSHA256,
		SourceLabel:       res.SourceLabel,
		Difficulty:        string(res.Difficulty),
		DerivedCodes:      res.DerivedCodes,
		NeedsManualReview: res.NeedsManualReview,
		Corrections:       len(res.Corrections),
		Warnings:          res.Warnings,
	})
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("run not persisted: %v", err))
	}
}

func hashNote(note string) string {
	sum := sha256.Sum256([]byte(note))
	return hex.EncodeToString(sum[:])
}
