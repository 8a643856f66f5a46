// Package record models the structured procedure record produced by the
// extractor. The record is held as a JSON document and addressed with
// dotted field paths, so edits can be expressed as small path-level
// operations and validated against an allow-list.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrNoSuchPath reports an operation that targeted a path outside the
// record's shape. It is a distinct type so callers can branch on it.
type ErrNoSuchPath struct {
	Path string
}

func (e *ErrNoSuchPath) Error() string {
	return fmt.Sprintf("record has no field at path %q", e.Path)
}

// Record is a structured procedure record. A Record value is logically
// immutable: mutating operations return a new Record and leave the
// receiver untouched.
type Record struct {
	doc []byte
}

// FromJSON creates a Record from a JSON document.
func FromJSON(data []byte) (*Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("record is not valid JSON")
	}
	doc := make([]byte, len(data))
	copy(doc, data)
	return &Record{doc: doc}, nil
}

// New returns a record with the default skeleton: every block present,
// every action marked not performed. The extractor fills it in.
func New() *Record {
	r, err := FromJSON([]byte(defaultSkeleton))
	if err != nil {
		panic(fmt.Sprintf("default record skeleton invalid: %v", err))
	}
	return r
}

// defaultSkeleton is the baseline shape of an extracted procedure record.
const defaultSkeleton = `{
  "procedure_type": "",
  "lavage": {"performed": false, "sites": []},
  "brushings": {"performed": false},
  "biopsy": {"endobronchial": false, "transbronchial": false, "lobes": 0},
  "ebus": {"performed": false, "stations_sampled": 0},
  "needle_aspiration": {"performed": false},
  "therapeutic_aspiration": {"performed": false, "episode": "initial"},
  "pleural": {"thoracentesis": false, "imaging_guidance": false, "chest_tube": false, "tunneled_catheter": false},
  "navigation": {"used": false}
}`

// JSON returns the underlying document. Callers must not modify it.
func (r *Record) JSON() []byte {
	return r.doc
}

// Clone returns a structural copy of the record.
func (r *Record) Clone() *Record {
	doc := make([]byte, len(r.doc))
	copy(doc, r.doc)
	return &Record{doc: doc}
}

// Equal reports byte-for-byte equality of the two documents. Records
// produced by applying edits to a common base are byte-comparable, which
// is what the no-op detection in the correction loop relies on.
func (r *Record) Equal(other *Record) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(r.doc, other.doc)
}

// Exists reports whether a field exists at the given path.
func (r *Record) Exists(path string) bool {
	return gjson.GetBytes(r.doc, path).Exists()
}

// Get returns the raw value at path and whether it exists.
func (r *Record) Get(path string) (any, bool) {
	res := gjson.GetBytes(r.doc, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Bool returns the boolean at path, or false if absent or not a boolean.
func (r *Record) Bool(path string) bool {
	return gjson.GetBytes(r.doc, path).Bool()
}

// Int returns the integer at path, or 0 if absent.
func (r *Record) Int(path string) int {
	return int(gjson.GetBytes(r.doc, path).Int())
}

// String returns the string at path, or "" if absent.
func (r *Record) String(path string) string {
	return gjson.GetBytes(r.doc, path).String()
}

// Set returns a new record with value written at path. The path's parent
// must already exist in the record's shape; writes outside the shape fail
// with *ErrNoSuchPath. An existing value at the path is overwritten.
func (r *Record) Set(path string, value any) (*Record, error) {
	if parent := parentPath(path); parent != "" && !r.Exists(parent) {
		return nil, &ErrNoSuchPath{Path: path}
	}
	return r.write(path, value)
}

// Replace returns a new record with the existing value at path replaced.
// Unlike Set, the full path must already exist.
func (r *Record) Replace(path string, value any) (*Record, error) {
	if !r.Exists(path) {
		return nil, &ErrNoSuchPath{Path: path}
	}
	return r.write(path, value)
}

func (r *Record) write(path string, value any) (*Record, error) {
	doc, err := sjson.SetBytes(r.doc, path, value)
	if err != nil {
		return nil, fmt.Errorf("write %q: %w", path, err)
	}
	return &Record{doc: doc}, nil
}

// parentPath returns the dotted path one level up, or "" for a top-level
// field.
func parentPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return ""
}

// MarshalJSON implements json.Marshaler so a Record embeds cleanly in
// result bundles.
func (r *Record) MarshalJSON() ([]byte, error) {
	return r.doc, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.doc = append(r.doc[:0], raw...)
	return nil
}
