package classify

import "sync"

// Handle is the process-wide classifier capability. The backend chain is
// probed exactly once, on first use, under a sync.Once; afterwards the
// chosen backend is shared read-only across requests. An empty chain
// result leaves the handle unavailable, which is a status, not an error.
type Handle struct {
	cfg Config

	once    sync.Once
	backend Backend
}

// NewHandle creates an unprobed handle. Probing is deferred to the first
// Classify or Available call so construction never blocks.
func NewHandle(cfg Config) *Handle {
	return &Handle{cfg: cfg}
}

func (h *Handle) load() {
	h.once.Do(func() {
		for _, try := range loadChain {
			if b, ok := try(h.cfg); ok {
				h.backend = b
				return
			}
		}
	})
}

// Available reports whether any backend loaded. Safe for concurrent use.
func (h *Handle) Available() bool {
	h.load()
	return h.backend != nil
}

// BackendName returns the loaded backend's name, or "" when unavailable.
func (h *Handle) BackendName() string {
	h.load()
	if h.backend == nil {
		return ""
	}
	return h.backend.Name()
}

// Classify scores the raw note text and partitions the candidates by the
// configured thresholds. Returns nil when no backend is available; the
// caller then skips auditing for the request.
//
// The input must be the verbatim raw note text. Extraction output and
// derived codes are deliberately kept away from this path so the
// secondary classification stays independent.
func (h *Handle) Classify(rawText string) *Classification {
	h.load()
	if h.backend == nil {
		return nil
	}
	scores := h.backend.Score(rawText)
	c := partition(scores, h.cfg)
	c.Backend = h.backend.Name()
	return c
}
