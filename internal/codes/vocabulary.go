// Package codes holds the procedure-code vocabulary used across the
// pipeline: code descriptors with evidence keywords, and the equivalence
// table that groups mutually-exclusive sibling variants of the same
// clinical action.
package codes

// Descriptor describes a single procedure code.
type Descriptor struct {
	// Code is the procedure code, e.g. "31624".
	Code string

	// Label is a short human-readable description of the clinical action.
	Label string

	// Keywords are lowercase phrases whose presence in a note suggests the
	// action was performed. Used by the keyword classifier backend and by
	// the judge's evidence search.
	Keywords []string

	// KeywordWeight is the probability assigned when a keyword matches.
	// Range (0, 1]. Stronger, more specific phrases carry higher weight.
	KeywordWeight float64

	// AddOn marks add-on codes that are only reported alongside a primary
	// procedure (e.g. navigation guidance).
	AddOn bool
}

// registry is the package-level descriptor registry, keyed by code.
var registry map[string]*Descriptor

func init() {
	registry = make(map[string]*Descriptor, len(seedDescriptors))
	for i := range seedDescriptors {
		d := &seedDescriptors[i]
		registry[d.Code] = d
	}
}

// Get returns the descriptor for a code, or nil if the code is unknown.
func Get(code string) *Descriptor {
	return registry[code]
}

// Known reports whether the code is part of the vocabulary.
func Known(code string) bool {
	_, ok := registry[code]
	return ok
}

// All returns every descriptor in the vocabulary, in seed order.
func All() []*Descriptor {
	result := make([]*Descriptor, 0, len(seedDescriptors))
	for i := range seedDescriptors {
		result = append(result, &seedDescriptors[i])
	}
	return result
}
