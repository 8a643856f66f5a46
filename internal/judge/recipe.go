package judge

import (
	"context"
	"fmt"

	"github.com/abhisek/chartaudit/internal/notetext"
	"github.com/abhisek/chartaudit/internal/record"
)

// editRecipe describes how a missing code maps back onto the record:
// which note phrases count as evidence, which field edits make the
// deriver attribute the code, and an optional guard that declines when
// the record already says something incompatible.
type editRecipe struct {
	phrases []string
	ops     func(r *record.Record) []record.FieldEdit
	// guard returns a non-empty reason to decline.
	guard func(r *record.Record) string
}

func setTrue(path string) func(r *record.Record) []record.FieldEdit {
	return func(*record.Record) []record.FieldEdit {
		return []record.FieldEdit{{Path: path, Verb: record.VerbSet, Value: true}}
	}
}

// recipes maps each attributable code to its correction recipe. The
// edits mirror the derivation rules: applying a recipe and re-deriving
// must yield the target code unless a guard caught a conflict first.
var recipes = map[string]editRecipe{
	"31622": {
		phrases: []string{"diagnostic bronchoscopy", "airways were inspected", "airway inspection"},
		ops: func(*record.Record) []record.FieldEdit {
			return []record.FieldEdit{{Path: "procedure_type", Verb: record.VerbSet, Value: "bronchoscopy"}}
		},
		guard: func(r *record.Record) string {
			if anyBronchAction(r) {
				return "record shows other airway procedures; base diagnostic code would not be attributed"
			}
			return ""
		},
	},
	"31623": {
		phrases: []string{"bronchial brushing", "brushings were obtained", "cytology brush"},
		ops:     setTrue("brushings.performed"),
	},
	"31624": {
		phrases: []string{"bronchoalveolar lavage", "bal was performed", "lavage was performed", "lavage returned"},
		ops:     setTrue("lavage.performed"),
	},
	"31625": {
		phrases: []string{"endobronchial biopsy", "endobronchial biopsies"},
		ops:     setTrue("biopsy.endobronchial"),
	},
	"31627": {
		phrases: []string{"electromagnetic navigation", "navigational bronchoscopy", "navigation system"},
		ops:     setTrue("navigation.used"),
		guard: func(r *record.Record) string {
			if !anyBronchAction(r) {
				return "navigation is an add-on and the record has no primary bronchoscopy procedure"
			}
			return ""
		},
	},
	"31628": {
		phrases: []string{"transbronchial biopsy", "transbronchial biopsies", "transbronchial lung biopsy"},
		ops:     setTrue("biopsy.transbronchial"),
	},
	"31629": {
		phrases: []string{"transbronchial needle aspiration", "tbna"},
		ops:     setTrue("needle_aspiration.performed"),
	},
	"31645": {
		phrases: []string{"therapeutic aspiration", "secretions were aspirated", "mucus plug removal"},
		ops:     setTrue("therapeutic_aspiration.performed"),
		guard: func(r *record.Record) string {
			if r.String("therapeutic_aspiration.episode") == "subsequent" {
				return "record marks the aspiration episode as subsequent; the initial-episode code does not apply"
			}
			return ""
		},
	},
	"31646": {
		phrases: []string{"repeat therapeutic aspiration", "subsequent aspiration"},
		ops: func(*record.Record) []record.FieldEdit {
			return []record.FieldEdit{
				{Path: "therapeutic_aspiration.performed", Verb: record.VerbSet, Value: true},
				{Path: "therapeutic_aspiration.episode", Verb: record.VerbReplace, Value: "subsequent"},
			}
		},
	},
	"31652": {
		phrases: []string{"endobronchial ultrasound", "linear ebus", "ebus"},
		ops: func(r *record.Record) []record.FieldEdit {
			edits := []record.FieldEdit{{Path: "ebus.performed", Verb: record.VerbSet, Value: true}}
			if r.Int("ebus.stations_sampled") == 0 {
				edits = append(edits, record.FieldEdit{Path: "ebus.stations_sampled", Verb: record.VerbSet, Value: 1})
			}
			return edits
		},
		guard: func(r *record.Record) string {
			if r.Int("ebus.stations_sampled") >= 3 {
				return "record already reports 3 or more sampled stations; the 1-2 station code conflicts"
			}
			return ""
		},
	},
	"31653": {
		phrases: []string{"three stations", "3 or more stations", "stations 4r, 7 and"},
		ops: func(r *record.Record) []record.FieldEdit {
			edits := []record.FieldEdit{{Path: "ebus.performed", Verb: record.VerbSet, Value: true}}
			if r.Int("ebus.stations_sampled") < 3 {
				edits = append(edits, record.FieldEdit{Path: "ebus.stations_sampled", Verb: record.VerbSet, Value: 3})
			}
			return edits
		},
	},
	"32550": {
		phrases: []string{"tunneled pleural catheter", "indwelling pleural catheter", "pleurx"},
		ops:     setTrue("pleural.tunneled_catheter"),
	},
	"32551": {
		phrases: []string{"chest tube", "tube thoracostomy", "thoracostomy tube"},
		ops:     setTrue("pleural.chest_tube"),
	},
	"32554": {
		phrases: []string{"thoracentesis"},
		ops:     setTrue("pleural.thoracentesis"),
		guard: func(r *record.Record) string {
			if r.Bool("pleural.imaging_guidance") {
				return "record reports imaging guidance; the without-imaging code conflicts"
			}
			return ""
		},
	},
	"32555": {
		phrases: []string{"ultrasound-guided thoracentesis", "thoracentesis under ultrasound", "image-guided thoracentesis"},
		ops: func(*record.Record) []record.FieldEdit {
			return []record.FieldEdit{
				{Path: "pleural.thoracentesis", Verb: record.VerbSet, Value: true},
				{Path: "pleural.imaging_guidance", Verb: record.VerbSet, Value: true},
			}
		},
	},
}

func anyBronchAction(r *record.Record) bool {
	return r.Bool("brushings.performed") ||
		r.Bool("lavage.performed") ||
		r.Bool("biopsy.endobronchial") ||
		r.Bool("biopsy.transbronchial") ||
		r.Bool("needle_aspiration.performed") ||
		r.Bool("therapeutic_aspiration.performed") ||
		r.Bool("ebus.performed")
}

// RecipeJudge is the deterministic, offline judge. It needs no external
// service and is the default when no LLM provider is configured.
type RecipeJudge struct{}

// NewRecipeJudge returns the built-in recipe judge.
func NewRecipeJudge() *RecipeJudge {
	return &RecipeJudge{}
}

// Propose implements Judge. It never errors: an omission it cannot
// support becomes a declined proposal with the reason in the rationale.
func (j *RecipeJudge) Propose(_ context.Context, req Request) (*Proposal, error) {
	decline := func(reason string) *Proposal {
		return &Proposal{TargetCode: req.TargetCode, Rationale: reason}
	}

	rec, ok := recipes[req.TargetCode]
	if !ok {
		return decline(fmt.Sprintf("no edit recipe for code %s", req.TargetCode)), nil
	}

	text, used := req.preferredText()
	quote, found := notetext.FindEvidence(text, rec.phrases)
	if !found && used == TextExtraction {
		// The procedure section had nothing; the evidence may sit
		// elsewhere in the full note.
		quote, found = notetext.FindEvidence(req.RawNote, rec.phrases)
		used = TextRaw
	}
	if !found {
		return decline("no unnegated supporting language found in the note"), nil
	}

	if rec.guard != nil {
		if reason := rec.guard(req.Record); reason != "" {
			return decline(reason), nil
		}
	}

	return &Proposal{
		TargetCode:    req.TargetCode,
		Operations:    rec.ops(req.Record),
		EvidenceQuote: quote,
		Rationale:     fmt.Sprintf("note documents the procedure for %s", req.TargetCode),
		TextUsed:      used,
	}, nil
}
