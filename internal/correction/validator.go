package correction

import (
	"fmt"
	"strings"

	"github.com/abhisek/chartaudit/internal/judge"
	"github.com/abhisek/chartaudit/internal/record"
)

// defaultAllowList is the set of paths a proposal may touch. A bare
// entry matches itself exactly and every path under it.
var defaultAllowList = []string{
	"procedure_type",
	"lavage",
	"brushings",
	"biopsy",
	"ebus",
	"needle_aspiration",
	"therapeutic_aspiration",
	"pleural",
	"navigation",
}

// pathAliases maps field names judges have been observed to invent onto
// the record's canonical paths. Canonicalization runs before the
// allow-list check, so an alias of a permitted path is permitted.
var pathAliases = map[string]string{
	"bal.performed":          "lavage.performed",
	"lavage.done":            "lavage.performed",
	"ebus.stations":          "ebus.stations_sampled",
	"ebus.station_count":     "ebus.stations_sampled",
	"pleural.ipc":            "pleural.tunneled_catheter",
	"pleural.pleurx":         "pleural.tunneled_catheter",
	"pleural.thoracostomy":   "pleural.chest_tube",
	"navigation.performed":   "navigation.used",
	"biopsy.tbbx":            "biopsy.transbronchial",
	"needle_aspiration.tbna": "needle_aspiration.performed",
}

// ValidateProposal checks a judge proposal against the hard limits and
// returns the canonicalized operations. The proposal must not be a
// decline; callers branch on Declined first.
//
// Checks, in order: evidence quote present and verbatim in the note
// (whitespace differences tolerated), operation count within the cap,
// every verb known, every path canonicalizable onto the allow-list.
func ValidateProposal(p *judge.Proposal, note string, cfg Config) ([]record.FieldEdit, error) {
	if p.EvidenceQuote == "" {
		return nil, fmt.Errorf("proposal has no evidence quote")
	}
	if !quoteInNote(note, p.EvidenceQuote) {
		return nil, fmt.Errorf("evidence quote is not a verbatim excerpt of the note")
	}

	maxOps := cfg.maxOperations()
	if len(p.Operations) > maxOps {
		return nil, fmt.Errorf("proposal has %d operations, limit is %d", len(p.Operations), maxOps)
	}

	allow := cfg.AllowList
	if len(allow) == 0 {
		allow = defaultAllowList
	}

	ops := make([]record.FieldEdit, 0, len(p.Operations))
	for _, op := range p.Operations {
		if !record.KnownVerb(op.Verb) {
			return nil, fmt.Errorf("operation %q: unknown verb %q", op.Path, op.Verb)
		}

		path := canonicalPath(op.Path)
		if !pathAllowed(path, allow) {
			return nil, fmt.Errorf("operation path %q is not on the allow-list", op.Path)
		}

		op.Path = path
		ops = append(ops, op)
	}

	return ops, nil
}

// canonicalPath resolves judge-invented aliases to record paths.
func canonicalPath(path string) string {
	if canon, ok := pathAliases[path]; ok {
		return canon
	}
	return path
}

// pathAllowed reports whether path matches an allow-list entry exactly
// or falls under one as a block prefix.
func pathAllowed(path string, allow []string) bool {
	for _, entry := range allow {
		if path == entry || strings.HasPrefix(path, entry+".") {
			return true
		}
	}
	return false
}

// quoteInNote reports whether quote occurs verbatim in note, comparing
// with runs of whitespace collapsed so line wrapping in either side
// does not defeat the check.
func quoteInNote(note, quote string) bool {
	return strings.Contains(normalizeSpace(note), normalizeSpace(quote))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
