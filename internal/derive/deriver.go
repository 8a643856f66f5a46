// Package derive attributes procedure codes to an extracted record using
// deterministic, table-driven rules. The rules read only the structured
// record, never the note text; disagreement with the note is the audit
// subsystem's job to detect.
package derive

import (
	"github.com/abhisek/chartaudit/internal/record"
)

// Deriver turns a structured record into the list of attributed codes.
type Deriver interface {
	// Derive returns the attributed codes and any derivation warnings.
	// The code list is in rule order and contains no duplicates.
	Derive(r *record.Record) Result
}

// Result is the outcome of a derivation pass.
type Result struct {
	Codes    []string
	Warnings []string
}

// Has reports whether code is in the derived list.
func (res Result) Has(code string) bool {
	for _, c := range res.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// rule maps a record predicate to a code.
type rule struct {
	code  string
	match func(r *record.Record) bool
}

// bronchRules are the bronchoscopy sampling/therapy rules. The base
// diagnostic code 31622 is handled separately: it is bundled into any
// other bronchoscopy code and only reported on its own.
var bronchRules = []rule{
	{"31623", func(r *record.Record) bool { return r.Bool("brushings.performed") }},
	{"31624", func(r *record.Record) bool { return r.Bool("lavage.performed") }},
	{"31625", func(r *record.Record) bool { return r.Bool("biopsy.endobronchial") }},
	{"31628", func(r *record.Record) bool { return r.Bool("biopsy.transbronchial") }},
	{"31629", func(r *record.Record) bool { return r.Bool("needle_aspiration.performed") }},
	{"31645", func(r *record.Record) bool {
		return r.Bool("therapeutic_aspiration.performed") && r.String("therapeutic_aspiration.episode") != "subsequent"
	}},
	{"31646", func(r *record.Record) bool {
		return r.Bool("therapeutic_aspiration.performed") && r.String("therapeutic_aspiration.episode") == "subsequent"
	}},
}

// pleuralRules cover chest procedures outside the airway.
var pleuralRules = []rule{
	{"32550", func(r *record.Record) bool { return r.Bool("pleural.tunneled_catheter") }},
	{"32551", func(r *record.Record) bool { return r.Bool("pleural.chest_tube") }},
	{"32554", func(r *record.Record) bool {
		return r.Bool("pleural.thoracentesis") && !r.Bool("pleural.imaging_guidance")
	}},
	{"32555", func(r *record.Record) bool {
		return r.Bool("pleural.thoracentesis") && r.Bool("pleural.imaging_guidance")
	}},
}

// RuleDeriver is the built-in deterministic deriver.
type RuleDeriver struct{}

// New returns the built-in rule deriver.
func New() *RuleDeriver {
	return &RuleDeriver{}
}

// Derive implements Deriver.
func (d *RuleDeriver) Derive(r *record.Record) Result {
	var res Result

	for _, rl := range bronchRules {
		if rl.match(r) {
			res.Codes = append(res.Codes, rl.code)
		}
	}

	// EBUS: the station count picks the variant.
	if r.Bool("ebus.performed") {
		switch stations := r.Int("ebus.stations_sampled"); {
		case stations >= 3:
			res.Codes = append(res.Codes, "31653")
		case stations >= 1:
			res.Codes = append(res.Codes, "31652")
		default:
			res.Warnings = append(res.Warnings,
				"derive: ebus.performed is true but ebus.stations_sampled is 0; no EBUS code attributed")
		}
	}

	bronchCount := len(res.Codes)

	// Navigation is an add-on; it needs a primary bronchoscopy code.
	if r.Bool("navigation.used") {
		if bronchCount > 0 {
			res.Codes = append(res.Codes, "31627")
		} else {
			res.Warnings = append(res.Warnings,
				"derive: navigation.used is true without a primary bronchoscopy procedure; 31627 not attributed")
		}
	}

	// Base diagnostic bronchoscopy, only when nothing else was done in the
	// airway but a bronchoscopy took place.
	if bronchCount == 0 && r.String("procedure_type") == "bronchoscopy" {
		res.Codes = append(res.Codes, "31622")
	}

	for _, rl := range pleuralRules {
		if rl.match(r) {
			res.Codes = append(res.Codes, rl.code)
		}
	}

	if r.Bool("pleural.imaging_guidance") && !r.Bool("pleural.thoracentesis") {
		res.Warnings = append(res.Warnings,
			"derive: pleural.imaging_guidance set without pleural.thoracentesis")
	}

	return res
}
