package audit

import "github.com/abhisek/chartaudit/internal/classify"

// Select picks the audit set from a classification. Bucket mode takes the
// high-confidence bucket followed by the gray zone; top-K mode takes the
// first K predictions that also clear the minimum probability floor.
//
// The audit set is deliberately more permissive than the self-correction
// trigger set: it exists to surface disagreement, not to act on it.
func Select(c *classify.Classification, cfg Config) []classify.Prediction {
	if c == nil {
		return nil
	}

	if cfg.UseBuckets {
		out := make([]classify.Prediction, 0, len(c.HighConfidence)+len(c.GrayZone))
		out = append(out, c.HighConfidence...)
		out = append(out, c.GrayZone...)
		return out
	}

	var out []classify.Prediction
	for _, p := range c.AllPredictions {
		if len(out) == cfg.TopK {
			break
		}
		if p.Probability >= cfg.MinProbability {
			out = append(out, p)
		}
	}
	return out
}
