// Package classify implements the secondary raw-text classifier: a
// pluggable scoring backend plus ternary confidence thresholds that
// partition candidate codes into high-confidence, gray-zone and
// below-threshold buckets.
package classify

// Prediction is a single candidate code with its probability.
// Predictions are produced fresh per classification and never mutated.
type Prediction struct {
	Code        string  `json:"code"`
	Probability float64 `json:"probability"`
}

// Difficulty is the overall confidence tier of a case.
type Difficulty string

const (
	// DifficultyHighConf means at least one candidate cleared the upper
	// threshold.
	DifficultyHighConf Difficulty = "high_confidence"

	// DifficultyGrayZone means no candidate cleared the upper threshold
	// but at least one landed between the bounds.
	DifficultyGrayZone Difficulty = "gray_zone"

	// DifficultyLowConf means every candidate fell below the lower bound.
	DifficultyLowConf Difficulty = "low_confidence"
)

// Classification is the result of classifying one note.
type Classification struct {
	// AllPredictions holds every scored candidate, descending by
	// probability (ties broken by code for determinism).
	AllPredictions []Prediction `json:"all_predictions"`

	// HighConfidence are predictions at or above the per-code (else
	// global) upper threshold.
	HighConfidence []Prediction `json:"high_confidence"`

	// GrayZone are predictions in [lower, upper). Disjoint from
	// HighConfidence by construction.
	GrayZone []Prediction `json:"gray_zone"`

	// Difficulty is derived from the buckets: high-confidence wins over
	// gray-zone wins over low-confidence.
	Difficulty Difficulty `json:"difficulty"`

	// Backend names the scoring backend that produced the predictions.
	Backend string `json:"backend"`
}

// Bucket names the bucket a prediction landed in. Used in audit warnings
// and correction triggers.
type Bucket string

const (
	BucketHighConfidence Bucket = "high_confidence"
	BucketGrayZone       Bucket = "gray_zone"
)

// BucketOf returns the bucket the given prediction landed in, or "" if it
// fell below the lower bound.
func (c *Classification) BucketOf(code string) Bucket {
	for _, p := range c.HighConfidence {
		if p.Code == code {
			return BucketHighConfidence
		}
	}
	for _, p := range c.GrayZone {
		if p.Code == code {
			return BucketGrayZone
		}
	}
	return ""
}
