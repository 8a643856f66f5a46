package codes

import (
	"fmt"
	"strings"
)

// Class is a set of sibling codes representing mutually-exclusive variants
// of the same clinical action.
type Class []string

// Table is the versioned equivalence table. The table is symmetric by
// construction: membership in a class is undirected.
type Table struct {
	Version string
	Classes []Class
}

// classIndex maps each code to the index of its class in the seed table.
var classIndex map[string]int

func init() {
	classIndex = make(map[string]int)
	for i, class := range seedEquivalence.Classes {
		for _, code := range class {
			classIndex[code] = i
		}
	}
}

// Equivalence returns the built-in equivalence table.
func Equivalence() Table {
	return seedEquivalence
}

// Equivalent reports whether a and b are sibling variants of the same
// clinical action. A code is not considered equivalent to itself.
func Equivalent(a, b string) bool {
	if a == b {
		return false
	}
	ia, ok := classIndex[a]
	if !ok {
		return false
	}
	ib, ok := classIndex[b]
	return ok && ia == ib
}

// Siblings returns the other members of the code's equivalence class,
// or nil if the code belongs to no class.
func Siblings(code string) []string {
	i, ok := classIndex[code]
	if !ok {
		return nil
	}
	var out []string
	for _, c := range seedEquivalence.Classes[i] {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks structural invariants of the vocabulary and equivalence
// table. It is run once at startup; a failure indicates a programming or
// configuration error, not bad input.
func Validate() error {
	var errs []string

	seen := make(map[string]bool, len(seedDescriptors))
	for _, d := range seedDescriptors {
		if d.Code == "" {
			errs = append(errs, "descriptor with empty code")
			continue
		}
		if seen[d.Code] {
			errs = append(errs, fmt.Sprintf("duplicate descriptor for code %q", d.Code))
		}
		seen[d.Code] = true
		if d.KeywordWeight <= 0 || d.KeywordWeight > 1 {
			errs = append(errs, fmt.Sprintf("code %q: keyword weight %v out of range (0, 1]", d.Code, d.KeywordWeight))
		}
	}

	memberOf := make(map[string]int)
	for i, class := range seedEquivalence.Classes {
		if len(class) < 2 {
			errs = append(errs, fmt.Sprintf("equivalence class %d has fewer than two members", i))
		}
		for _, code := range class {
			if !seen[code] {
				errs = append(errs, fmt.Sprintf("equivalence class %d references unknown code %q", i, code))
			}
			if prev, ok := memberOf[code]; ok && prev != i {
				errs = append(errs, fmt.Sprintf("code %q appears in equivalence classes %d and %d", code, prev, i))
			}
			memberOf[code] = i
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("code tables invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
