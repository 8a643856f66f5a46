// Package extract turns procedure note text into a structured record.
// The built-in extractor is a keyword slot-filler: deliberately simple,
// deterministic, and wrong in exactly the ways the audit subsystem
// exists to catch.
package extract

import (
	"context"

	"github.com/abhisek/chartaudit/internal/record"
)

// Extractor produces a structured record from note text.
type Extractor interface {
	// Extract fills a record from the note. The note passed in is the
	// narrowed procedure section when one was found.
	Extract(ctx context.Context, note string) (*record.Record, error)
}
