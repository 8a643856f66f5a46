package audit

import (
	"strings"
	"testing"

	"github.com/abhisek/chartaudit/internal/classify"
)

func preds(pairs ...any) []classify.Prediction {
	var out []classify.Prediction
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, classify.Prediction{
			Code:        pairs[i].(string),
			Probability: pairs[i+1].(float64),
		})
	}
	return out
}

func TestCompareReportsOmission(t *testing.T) {
	cfg := DefaultConfig()
	r := Compare([]string{"31624"}, preds("32550", 0.97), cfg)

	if len(r.MissingInDerived) != 1 || r.MissingInDerived[0].Code != "32550" {
		t.Fatalf("missing_in_derived = %v, want [32550]", r.MissingInDerived)
	}
	if len(r.HighConfidenceOmissions) != 1 || r.HighConfidenceOmissions[0].Code != "32550" {
		t.Fatalf("high_confidence_omissions = %v, want [32550]", r.HighConfidenceOmissions)
	}
	if len(r.MissingInAudit) != 1 || r.MissingInAudit[0] != "31624" {
		t.Fatalf("missing_in_audit = %v, want [31624]", r.MissingInAudit)
	}
}

func TestCompareEquivalenceSuppressesSiblings(t *testing.T) {
	// Derived has the 3+-station EBUS variant; the audit set suggests the
	// 1-2-station sibling. No discrepancy may be reported either way.
	cfg := DefaultConfig()
	r := Compare([]string{"31653"}, preds("31652", 0.92), cfg)

	if len(r.MissingInDerived) != 0 {
		t.Errorf("missing_in_derived = %v, want empty for sibling codes", r.MissingInDerived)
	}
	if len(r.HighConfidenceOmissions) != 0 {
		t.Errorf("high_confidence_omissions = %v, want empty", r.HighConfidenceOmissions)
	}
	if len(r.MissingInAudit) != 0 {
		t.Errorf("missing_in_audit = %v, want empty (31653 corroborated by sibling)", r.MissingInAudit)
	}
}

func TestCompareHighConfidenceSubsetInvariant(t *testing.T) {
	cfg := DefaultConfig() // self-correct bar 0.90
	r := Compare([]string{}, preds("32550", 0.97, "31624", 0.85, "31629", 0.91), cfg)

	inMissing := make(map[string]bool)
	for _, p := range r.MissingInDerived {
		inMissing[p.Code] = true
	}
	for _, p := range r.HighConfidenceOmissions {
		if !inMissing[p.Code] {
			t.Errorf("%s in high_confidence_omissions but not in missing_in_derived", p.Code)
		}
		if p.Probability < cfg.SelfCorrectMinProbability {
			t.Errorf("%s (p=%v) below the self-correct bar", p.Code, p.Probability)
		}
	}
	if len(r.HighConfidenceOmissions) != 2 {
		t.Errorf("high_confidence_omissions = %v, want 32550 and 31629", r.HighConfidenceOmissions)
	}
}

func TestCompareOrdersTriggersByProbability(t *testing.T) {
	// The audit set arrives in bucket order, which is not probability
	// order once per-code threshold overrides are in play. Triggers must
	// still pop most-probable first.
	cfg := DefaultConfig()
	r := Compare(nil, preds("31624", 0.91, "32550", 0.97, "31629", 0.93), cfg)

	want := []string{"32550", "31629", "31624"}
	if len(r.HighConfidenceOmissions) != len(want) {
		t.Fatalf("high_confidence_omissions = %v", r.HighConfidenceOmissions)
	}
	for i, code := range want {
		if r.HighConfidenceOmissions[i].Code != code {
			t.Errorf("trigger[%d] = %s, want %s", i, r.HighConfidenceOmissions[i].Code, code)
		}
	}

	// MissingInDerived keeps the audit set's order.
	if r.MissingInDerived[0].Code != "31624" {
		t.Errorf("missing_in_derived = %v, want audit-set order", r.MissingInDerived)
	}
}

func TestDisabledReport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceDisabled
	r := Disabled([]string{"31624"}, cfg)

	if len(r.AuditedCodes) != 0 || len(r.MissingInDerived) != 0 || len(r.HighConfidenceOmissions) != 0 {
		t.Errorf("disabled report should have an empty audited side: %+v", r)
	}
	found := false
	for _, w := range r.Warnings {
		if strings.Contains(w, "disabled") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want one mentioning \"disabled\"", r.Warnings)
	}
}

func TestParseSource(t *testing.T) {
	if _, err := ParseSource("raw_ml"); err != nil {
		t.Errorf("raw_ml should parse: %v", err)
	}
	if _, err := ParseSource("disabled"); err != nil {
		t.Errorf("disabled should parse: %v", err)
	}
	if _, err := ParseSource("vibes"); err == nil {
		t.Error("unknown source mode must be a fatal configuration error")
	}
}

func TestSelectBucketMode(t *testing.T) {
	c := &classify.Classification{
		HighConfidence: preds("32550", 0.97),
		GrayZone:       preds("31624", 0.6, "31629", 0.55),
	}
	got := Select(c, Config{UseBuckets: true})
	want := []string{"32550", "31624", "31629"}
	if len(got) != len(want) {
		t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Code != want[i] {
			t.Errorf("selected[%d] = %s, want %s (high confidence first)", i, got[i].Code, want[i])
		}
	}
}

func TestSelectTopKMode(t *testing.T) {
	c := &classify.Classification{
		AllPredictions: preds("a", 0.9, "b", 0.8, "c", 0.45, "d", 0.7, "e", 0.6),
	}
	got := Select(c, Config{UseBuckets: false, TopK: 3, MinProbability: 0.5})

	want := []string{"a", "b", "d"}
	if len(got) != 3 {
		t.Fatalf("selected %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Code != want[i] {
			t.Errorf("selected[%d] = %s, want %s", i, got[i].Code, want[i])
		}
	}
}

func TestSelectNilClassification(t *testing.T) {
	if got := Select(nil, DefaultConfig()); got != nil {
		t.Errorf("Select(nil) = %v, want nil", got)
	}
}

func TestOmissionWarningsNameBucketAndProbability(t *testing.T) {
	c := &classify.Classification{HighConfidence: preds("32550", 0.97)}
	r := Compare([]string{"31624"}, preds("32550", 0.97), DefaultConfig())

	ws := r.OmissionWarnings(SourceRawML, c)
	if len(ws) != 1 {
		t.Fatalf("warnings = %v, want exactly one", ws)
	}
	for _, frag := range []string{"32550", "raw_ml", "high_confidence", "0.97"} {
		if !strings.Contains(ws[0], frag) {
			t.Errorf("warning %q missing %q", ws[0], frag)
		}
	}
}
