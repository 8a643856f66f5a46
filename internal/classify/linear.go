package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

// linearArtifact is the on-disk format of an exported linear model:
// a shared token vocabulary and one weight vector plus bias per code.
type linearArtifact struct {
	Version  int      `json:"version"`
	Features []string `json:"features"`
	Classes  []struct {
		Code    string    `json:"code"`
		Weights []float64 `json:"weights"`
		Bias    float64   `json:"bias"`
	} `json:"classes"`
}

// LinearBackend scores text with per-code logistic models over binary
// token-presence features.
type LinearBackend struct {
	features map[string]int
	classes  []linearClass
}

type linearClass struct {
	code    string
	weights []float64
	bias    float64
}

// tryLoadLinear loads the linear model artifact if configured and
// readable. Any problem (missing file, malformed JSON, dimension
// mismatch) makes this loader unavailable; it never errors.
func tryLoadLinear(cfg Config) (Backend, bool) {
	if cfg.ModelPath == "" {
		return nil, false
	}
	data, err := os.ReadFile(cfg.ModelPath)
	if err != nil {
		return nil, false
	}
	b, err := parseLinearArtifact(data)
	if err != nil {
		return nil, false
	}
	return b, true
}

func parseLinearArtifact(data []byte) (*LinearBackend, error) {
	var art linearArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if len(art.Features) == 0 || len(art.Classes) == 0 {
		return nil, fmt.Errorf("model artifact has no features or classes")
	}

	b := &LinearBackend{features: make(map[string]int, len(art.Features))}
	for i, f := range art.Features {
		b.features[strings.ToLower(f)] = i
	}
	for _, c := range art.Classes {
		if len(c.Weights) != len(art.Features) {
			return nil, fmt.Errorf("class %s: %d weights for %d features", c.Code, len(c.Weights), len(art.Features))
		}
		b.classes = append(b.classes, linearClass{code: c.Code, weights: c.Weights, bias: c.Bias})
	}
	return b, nil
}

func (b *LinearBackend) Name() string { return "linear" }

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Score implements Backend.
func (b *LinearBackend) Score(text string) map[string]float64 {
	present := make(map[int]bool)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if i, ok := b.features[tok]; ok {
			present[i] = true
		}
	}

	out := make(map[string]float64, len(b.classes))
	for _, c := range b.classes {
		z := c.bias
		for i := range present {
			z += c.weights[i]
		}
		out[c.code] = sigmoid(z)
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
