package classify

// Backend scores raw note text against the candidate code vocabulary.
// Implementations must be safe for concurrent use: a single backend
// instance is shared read-only across requests.
type Backend interface {
	// Name returns a short identifier for logging and provenance,
	// e.g. "linear", "keyword".
	Name() string

	// Score returns a probability in [0, 1] per candidate code. Codes
	// with zero signal may be omitted from the map.
	Score(text string) map[string]float64
}

// loader probes for one backend. A (nil, false) return means "not
// available here", which is an expected outcome, not an error.
type loader func(cfg Config) (Backend, bool)

// loadChain is the backend probe order: the trained linear model when its
// artifact is on disk, otherwise the built-in keyword scorer. The chain is
// evaluated once per process by the Handle.
var loadChain = []loader{
	tryLoadLinear,
	tryLoadKeyword,
}
