package correction

import (
	"fmt"

	"github.com/abhisek/chartaudit/internal/record"
)

// ApplyEdits applies validated operations to a structural copy of the
// record and returns the result. The input record is never modified; a
// failed edit leaves no partial state behind. Edits that target a path
// outside the record's shape fail with *record.ErrNoSuchPath wrapped in
// the returned error.
func ApplyEdits(r *record.Record, ops []record.FieldEdit) (*record.Record, error) {
	out := r.Clone()
	for _, op := range ops {
		var err error
		out, err = op.Apply(out)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", op, err)
		}
	}
	return out, nil
}
