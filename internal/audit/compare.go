package audit

import (
	"fmt"
	"sort"

	"github.com/abhisek/chartaudit/internal/classify"
	"github.com/abhisek/chartaudit/internal/codes"
)

// Report is the reconciliation of derived codes against the audit set.
// A report is never patched in place: whenever the derived codes change,
// a fresh report replaces it wholesale.
type Report struct {
	// DerivedCodes is the deriver's output, set semantics.
	DerivedCodes []string `json:"derived_codes"`

	// AuditedCodes is the selected audit set, ordered.
	AuditedCodes []classify.Prediction `json:"audited_codes"`

	// MissingInDerived are audited codes absent from the derived set,
	// after equivalence filtering. Ordered like the audit set.
	MissingInDerived []classify.Prediction `json:"missing_in_derived"`

	// MissingInAudit are derived codes the audit set does not
	// corroborate, directly or via an equivalent sibling.
	MissingInAudit []string `json:"missing_in_audit"`

	// HighConfidenceOmissions is the subset of MissingInDerived whose
	// probability clears the stricter self-correction bar, ordered by
	// descending probability. Only these ever trigger a correction.
	HighConfidenceOmissions []classify.Prediction `json:"high_confidence_omissions"`

	// Config is the threshold snapshot the report was computed under.
	Config Config `json:"config"`

	// Warnings are human-readable notes (e.g. audit source disabled).
	Warnings []string `json:"warnings,omitempty"`
}

// Compare reconciles derived codes with the audit set under cfg.
//
// An audited code counts as present when it is in the derived set or when
// any derived code is a sibling from the same equivalence class: variant
// buckets of one clinical action must not be reported against each other.
// The same rule applies symmetrically on the derived side.
func Compare(derived []string, auditSet []classify.Prediction, cfg Config) *Report {
	r := &Report{
		DerivedCodes: append([]string(nil), derived...),
		AuditedCodes: append([]classify.Prediction(nil), auditSet...),
		Config:       cfg,
	}

	derivedSet := make(map[string]bool, len(derived))
	for _, c := range derived {
		derivedSet[c] = true
	}

	for _, p := range auditSet {
		if derivedSet[p.Code] || hasEquivalentIn(p.Code, derivedSet) {
			continue
		}
		r.MissingInDerived = append(r.MissingInDerived, p)
		if p.Probability >= cfg.SelfCorrectMinProbability {
			r.HighConfidenceOmissions = append(r.HighConfidenceOmissions, p)
		}
	}

	// Correction triggers pop most-probable first regardless of the
	// audit set's bucket order.
	sort.SliceStable(r.HighConfidenceOmissions, func(i, j int) bool {
		return r.HighConfidenceOmissions[i].Probability > r.HighConfidenceOmissions[j].Probability
	})

	auditedSet := make(map[string]bool, len(auditSet))
	for _, p := range auditSet {
		auditedSet[p.Code] = true
	}
	for _, c := range derived {
		if auditedSet[c] || hasEquivalentIn(c, auditedSet) {
			continue
		}
		r.MissingInAudit = append(r.MissingInAudit, c)
	}

	return r
}

// Disabled returns the report used when the audit source is off: empty
// audited side, an explanatory warning, never an error.
func Disabled(derived []string, cfg Config) *Report {
	return &Report{
		DerivedCodes: append([]string(nil), derived...),
		Config:       cfg,
		Warnings:     []string{"audit disabled: no secondary classification was performed"},
	}
}

// Unavailable returns the report used when the classifier capability
// failed to load. Like Disabled, auditing is skipped, not failed.
func Unavailable(derived []string, cfg Config) *Report {
	return &Report{
		DerivedCodes: append([]string(nil), derived...),
		Config:       cfg,
		Warnings:     []string{"audit skipped: classifier capability unavailable"},
	}
}

// OmissionWarnings renders one warning per unresolved omission, naming
// the source, bucket and probability.
func (r *Report) OmissionWarnings(source Source, c *classify.Classification) []string {
	var out []string
	for _, p := range r.MissingInDerived {
		bucket := "top_k"
		if c != nil {
			if b := c.BucketOf(p.Code); b != "" {
				bucket = string(b)
			}
		}
		out = append(out, fmt.Sprintf(
			"audit: code %s suggested by %s (bucket=%s, p=%.2f) is not in the derived codes",
			p.Code, source, bucket, p.Probability))
	}
	return out
}

func hasEquivalentIn(code string, set map[string]bool) bool {
	for _, sib := range codes.Siblings(code) {
		if set[sib] {
			return true
		}
	}
	return false
}
