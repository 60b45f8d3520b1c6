package quality

import (
	"strings"
	"testing"

	"github.com/verte-zerg/polygrade/internal/thresholds"
)

func testStore(t *testing.T, text string) *thresholds.Store {
	t.Helper()
	store, err := thresholds.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse thresholds: %v", err)
	}
	return store
}

const l2Config = `[l2_norm_thresholds]
dim_3 = 0.01
default = 0.1
`

func TestClassifyL2Bands(t *testing.T) {
	ts := testStore(t, l2Config)
	tests := []struct {
		l2   float64
		dim  int
		want L2Band
	}{
		// dim_3 threshold 0.01
		{0.004, 3, BandExcellent},
		{0.0049999, 3, BandExcellent},
		{0.005, 3, BandGood},
		{0.0099, 3, BandGood},
		{0.01, 3, BandFair},
		{0.0199, 3, BandFair},
		{0.02, 3, BandPoor},
		{1, 3, BandPoor},
		// dim 7 falls back to default threshold 0.1
		{0.04, 7, BandExcellent},
		{0.09, 7, BandGood},
		{0.15, 7, BandFair},
		{0.2, 7, BandPoor},
	}
	for _, tt := range tests {
		got, err := ClassifyL2(tt.l2, tt.dim, ts)
		if err != nil {
			t.Fatalf("ClassifyL2(%g, dim=%d): %v", tt.l2, tt.dim, err)
		}
		if got != tt.want {
			t.Errorf("ClassifyL2(%g, dim=%d) = %s, want %s", tt.l2, tt.dim, got, tt.want)
		}
	}
}

func TestClassifyL2Monotonic(t *testing.T) {
	ts := testStore(t, l2Config)
	values := []float64{0, 0.001, 0.004, 0.005, 0.0075, 0.01, 0.015, 0.02, 0.5, 10}
	prev := BandExcellent
	for _, v := range values {
		band, err := ClassifyL2(v, 3, ts)
		if err != nil {
			t.Fatalf("ClassifyL2(%g): %v", v, err)
		}
		if band < prev {
			t.Fatalf("band improved as error grew: %s after %s at %g", band, prev, v)
		}
		prev = band
	}
}

func TestClassifyL2MissingCategory(t *testing.T) {
	ts := testStore(t, "[convergence]\nmin_improvement_factor = 0.9\n")
	if _, err := ClassifyL2(0.1, 2, ts); err == nil {
		t.Fatalf("expected error when l2_norm_thresholds is missing")
	}
}

func TestL2BandLabels(t *testing.T) {
	labels := map[L2Band]string{
		BandExcellent: "excellent",
		BandGood:      "good",
		BandFair:      "fair",
		BandPoor:      "poor",
	}
	for band, want := range labels {
		if band.String() != want {
			t.Errorf("band %d label = %q, want %q", int(band), band.String(), want)
		}
	}
}
