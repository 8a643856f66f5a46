package classify

import (
	"strings"

	"github.com/abhisek/chartaudit/internal/codes"
)

// KeywordBackend scores text by matching each code's descriptor keywords.
// It is the zero-dependency fallback when no trained model is available:
// coarse, but biased toward the same phrases the judge later uses as
// evidence, so its high-probability hits are actionable.
type KeywordBackend struct{}

// tryLoadKeyword returns the keyword scorer when the fallback is enabled.
func tryLoadKeyword(cfg Config) (Backend, bool) {
	if !cfg.KeywordFallback {
		return nil, false
	}
	return &KeywordBackend{}, true
}

func (b *KeywordBackend) Name() string { return "keyword" }

// Score implements Backend. A code's probability is its descriptor weight
// when any keyword matches, boosted slightly for additional distinct
// matches, capped below 1.
func (b *KeywordBackend) Score(text string) map[string]float64 {
	lower := strings.ToLower(text)

	out := make(map[string]float64)
	for _, d := range codes.All() {
		hits := 0
		for _, kw := range d.Keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		p := d.KeywordWeight + 0.05*float64(hits-1)
		if p > 0.99 {
			p = 0.99
		}
		out[d.Code] = p
	}
	return out
}
