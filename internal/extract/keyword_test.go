package extract

import (
	"context"
	"testing"

	"github.com/abhisek/chartaudit/internal/derive"
)

func TestKeywordExtractorFillsSlots(t *testing.T) {
	note := "The flexible bronchoscope was advanced. Bronchoalveolar lavage was performed in the RML. " +
		"Bronchial brushings were obtained. No endobronchial biopsy was taken."

	r, err := New().Extract(context.Background(), note)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := r.String("procedure_type"); got != "bronchoscopy" {
		t.Errorf("procedure_type = %q", got)
	}
	if !r.Bool("lavage.performed") {
		t.Error("lavage.performed should be set")
	}
	if !r.Bool("brushings.performed") {
		t.Error("brushings.performed should be set")
	}
	if r.Bool("biopsy.endobronchial") {
		t.Error("negated endobronchial biopsy must not be set")
	}
}

func TestKeywordExtractorStationCount(t *testing.T) {
	tests := []struct {
		name string
		note string
		want int
	}{
		{
			name: "designator list",
			note: "Linear EBUS was used. Stations 4R, 7 and 11L were sampled.",
			want: 3,
		},
		{
			name: "single station",
			note: "EBUS-guided sampling of station 7 was performed.",
			want: 1,
		},
		{
			name: "spelled out count",
			note: "Endobronchial ultrasound sampling of three stations.",
			want: 3,
		},
		{
			name: "no count mentioned",
			note: "Linear EBUS was performed.",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New().Extract(context.Background(), tt.note)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !r.Bool("ebus.performed") {
				t.Fatal("ebus.performed should be set")
			}
			if got := r.Int("ebus.stations_sampled"); got != tt.want {
				t.Errorf("stations_sampled = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeywordExtractorPleuralAndDerive(t *testing.T) {
	note := "Ultrasound-guided thoracentesis was performed on the left. A chest tube was then placed."

	r, err := New().Extract(context.Background(), note)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	res := derive.New().Derive(r)
	if !res.Has("32555") {
		t.Errorf("codes = %v, want 32555", res.Codes)
	}
	if !res.Has("32551") {
		t.Errorf("codes = %v, want 32551", res.Codes)
	}
	if res.Has("32554") {
		t.Error("imaging-guided thoracentesis must not also derive 32554")
	}
}

func TestKeywordExtractorSubsequentAspiration(t *testing.T) {
	note := "Repeat therapeutic aspiration of retained secretions was performed."

	r, err := New().Extract(context.Background(), note)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	res := derive.New().Derive(r)
	if !res.Has("31646") {
		t.Errorf("codes = %v, want 31646", res.Codes)
	}
}
