package record

import "fmt"

// Verb is the kind of a field edit. Only value-setting verbs exist;
// deleting or moving structure is not expressible.
type Verb string

const (
	// VerbSet writes a value at a path. The parent block must exist.
	VerbSet Verb = "set"

	// VerbReplace overwrites an existing value. The full path must exist.
	VerbReplace Verb = "replace"
)

// KnownVerb reports whether v is a permitted edit verb.
func KnownVerb(v Verb) bool {
	return v == VerbSet || v == VerbReplace
}

// FieldEdit is a single path-level operation against a record.
type FieldEdit struct {
	Path  string `json:"path"`
	Verb  Verb   `json:"verb"`
	Value any    `json:"value"`
}

func (e FieldEdit) String() string {
	return fmt.Sprintf("%s %s = %v", e.Verb, e.Path, e.Value)
}

// Apply returns a new record with the edit applied. It dispatches on the
// verb and fails with *ErrNoSuchPath when the operation targets a path
// outside the record's shape. Unknown verbs are rejected here as a last
// line of defense; the proposal validator checks them first.
func (e FieldEdit) Apply(r *Record) (*Record, error) {
	switch e.Verb {
	case VerbSet:
		return r.Set(e.Path, e.Value)
	case VerbReplace:
		return r.Replace(e.Path, e.Value)
	default:
		return nil, fmt.Errorf("unsupported edit verb %q", e.Verb)
	}
}
