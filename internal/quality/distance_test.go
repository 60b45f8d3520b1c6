package quality

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceIdentity(t *testing.T) {
	vectors := [][]float64{
		{},
		{0},
		{1.5, -2.25, 3},
		{1e-9, 1e9},
	}
	for _, v := range vectors {
		d, err := Distance(v, v)
		if err != nil {
			t.Fatalf("Distance(%v, same): %v", v, err)
		}
		if d != 0 {
			t.Fatalf("Distance(%v, same) = %g, want 0", v, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-4, 0.5, 7}
	ab, err := Distance(a, b)
	if err != nil {
		t.Fatalf("Distance(a, b): %v", err)
	}
	ba, err := Distance(b, a)
	if err != nil {
		t.Fatalf("Distance(b, a): %v", err)
	}
	if ab != ba {
		t.Fatalf("asymmetric distance: %g vs %g", ab, ba)
	}
}

func TestDistanceValue(t *testing.T) {
	d, err := Distance([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	if math.Abs(d-5) > 1e-12 {
		t.Fatalf("expected 5, got %g", d)
	}
}

func TestDistanceDimensionMismatch(t *testing.T) {
	pairs := [][2][]float64{
		{{1}, {}},
		{{1, 2}, {1}},
		{{1, 2, 3}, {1, 2, 3, 4}},
	}
	for _, pair := range pairs {
		_, err := Distance(pair[0], pair[1])
		var dimErr *DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("Distance(%v, %v): expected DimensionError, got %v", pair[0], pair[1], err)
		}
		if dimErr.Found != len(pair[0]) || dimErr.Truth != len(pair[1]) {
			t.Fatalf("unexpected error fields: %+v", dimErr)
		}
	}
}
