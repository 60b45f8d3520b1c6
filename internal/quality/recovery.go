package quality

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoPoints is returned when recovery statistics are requested for an
// empty set of critical points.
var ErrNoPoints = errors.New("no critical points supplied")

// RecoveryStats summarizes how well a set of critical points recovers the
// ground-truth parameter vector.
type RecoveryStats struct {
	MinDistance   float64
	MeanDistance  float64
	NumRecoveries int
	AllDistances  []float64
}

// Recovery computes per-point distances to the truth vector and counts
// points strictly closer than the recovery threshold.
func Recovery(points [][]float64, truth []float64, threshold float64) (RecoveryStats, error) {
	if len(points) == 0 {
		return RecoveryStats{}, ErrNoPoints
	}
	distances := make([]float64, len(points))
	recoveries := 0
	for i, point := range points {
		d, err := Distance(point, truth)
		if err != nil {
			return RecoveryStats{}, err
		}
		distances[i] = d
		if d < threshold {
			recoveries++
		}
	}
	return RecoveryStats{
		MinDistance:   floats.Min(distances),
		MeanDistance:  stat.Mean(distances, nil),
		NumRecoveries: recoveries,
		AllDistances:  distances,
	}, nil
}
