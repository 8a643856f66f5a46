package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/chartaudit/internal/notetext"
	"github.com/abhisek/chartaudit/internal/record"
)

// slotRule fills one record field when any of its phrases appears in
// the note outside a negation window.
type slotRule struct {
	phrases []string
	path    string
	value   any
}

var slotRules = []slotRule{
	{[]string{"bronchoscope was advanced", "flexible bronchoscopy", "bronchoscopy"},
		"procedure_type", "bronchoscopy"},
	{[]string{"bronchoalveolar lavage", "bal was performed", "lavage was performed", "lavage returned"},
		"lavage.performed", true},
	{[]string{"bronchial brushing", "brushings were obtained", "cytology brush"},
		"brushings.performed", true},
	{[]string{"endobronchial biopsy", "endobronchial biopsies"},
		"biopsy.endobronchial", true},
	{[]string{"transbronchial biopsy", "transbronchial biopsies", "transbronchial lung biopsy"},
		"biopsy.transbronchial", true},
	{[]string{"transbronchial needle aspiration", "tbna"},
		"needle_aspiration.performed", true},
	{[]string{"therapeutic aspiration", "secretions were aspirated", "mucus plug removal"},
		"therapeutic_aspiration.performed", true},
	{[]string{"repeat therapeutic aspiration", "subsequent aspiration"},
		"therapeutic_aspiration.episode", "subsequent"},
	{[]string{"endobronchial ultrasound", "linear ebus", "ebus"},
		"ebus.performed", true},
	{[]string{"thoracentesis"},
		"pleural.thoracentesis", true},
	{[]string{"ultrasound guidance", "ultrasound-guided", "under ultrasound"},
		"pleural.imaging_guidance", true},
	{[]string{"chest tube", "tube thoracostomy", "thoracostomy tube"},
		"pleural.chest_tube", true},
	{[]string{"tunneled pleural catheter", "indwelling pleural catheter", "pleurx"},
		"pleural.tunneled_catheter", true},
	{[]string{"electromagnetic navigation", "navigational bronchoscopy", "navigation system"},
		"navigation.used", true},
}

// stationPattern matches mediastinal station designators like "4R",
// "7" or "11L" after the word "station"/"stations".
var stationPattern = regexp.MustCompile(`(?i)\bstations?\b([^.]*)`)

var stationDesignator = regexp.MustCompile(`\b\d{1,2}[RLrl]?\b`)

// stationWords maps spelled-out counts that appear in dictated notes.
var stationWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
}

// KeywordExtractor is the built-in deterministic extractor.
type KeywordExtractor struct{}

// New returns the keyword slot-filler.
func New() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract implements Extractor.
func (e *KeywordExtractor) Extract(_ context.Context, note string) (*record.Record, error) {
	r := record.New()

	for _, rule := range slotRules {
		if !notetext.Mentions(note, rule.phrases...) {
			continue
		}
		var err error
		r, err = r.Set(rule.path, rule.value)
		if err != nil {
			return nil, fmt.Errorf("fill %s: %w", rule.path, err)
		}
	}

	if r.Bool("ebus.performed") {
		if n := countStations(note); n > 0 {
			var err error
			r, err = r.Set("ebus.stations_sampled", n)
			if err != nil {
				return nil, fmt.Errorf("fill ebus.stations_sampled: %w", err)
			}
		}
	}

	return r, nil
}

// countStations estimates how many distinct mediastinal stations the
// note says were sampled.
func countStations(note string) int {
	best := 0

	for _, m := range stationPattern.FindAllStringSubmatch(note, -1) {
		tail := m[1]

		seen := map[string]bool{}
		for _, d := range stationDesignator.FindAllString(tail, -1) {
			seen[strings.ToUpper(d)] = true
		}
		if len(seen) > best {
			best = len(seen)
		}
	}

	lower := strings.ToLower(note)
	for w, n := range stationWords {
		if strings.Contains(lower, w+" stations") && n > best {
			best = n
		}
	}
	if strings.Contains(lower, "3 or more stations") && best < 3 {
		best = 3
	}

	return best
}
