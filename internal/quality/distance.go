// Package quality grades experiment results against configured thresholds.
package quality

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DimensionError reports a vector length mismatch in a distance computation.
type DimensionError struct {
	Found int
	Truth int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: found vector has %d entries, truth has %d", e.Found, e.Truth)
}

// Distance computes the Euclidean distance between a found parameter
// vector and the ground-truth vector.
func Distance(found, truth []float64) (float64, error) {
	if len(found) != len(truth) {
		return 0, &DimensionError{Found: len(found), Truth: len(truth)}
	}
	return floats.Distance(found, truth, 2), nil
}
