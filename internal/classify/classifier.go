package classify

import "sort"

// partition applies the ternary thresholds to raw backend scores.
func partition(scores map[string]float64, cfg Config) *Classification {
	c := &Classification{}

	for code, p := range scores {
		c.AllPredictions = append(c.AllPredictions, Prediction{Code: code, Probability: p})
	}
	sort.Slice(c.AllPredictions, func(i, j int) bool {
		a, b := c.AllPredictions[i], c.AllPredictions[j]
		if a.Probability != b.Probability {
			return a.Probability > b.Probability
		}
		return a.Code < b.Code
	})

	for _, p := range c.AllPredictions {
		switch {
		case p.Probability >= cfg.UpperFor(p.Code):
			c.HighConfidence = append(c.HighConfidence, p)
		case p.Probability >= cfg.LowerFor(p.Code):
			c.GrayZone = append(c.GrayZone, p)
		}
	}

	switch {
	case len(c.HighConfidence) > 0:
		c.Difficulty = DifficultyHighConf
	case len(c.GrayZone) > 0:
		c.Difficulty = DifficultyGrayZone
	default:
		c.Difficulty = DifficultyLowConf
	}

	return c
}
