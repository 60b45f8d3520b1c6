package quality

import (
	"math"
	"sort"

	"github.com/verte-zerg/polygrade/internal/thresholds"
)

// StagnationResult describes whether an increasing-degree refinement
// series has stopped improving.
type StagnationResult struct {
	IsStagnant            bool
	StagnationStartDegree *int
	StagnantCount         int
	ImprovementFactors    []float64
}

// DetectStagnation walks the degree->error series in ascending degree
// order and reports whether the trailing run of steps failed to improve
// by the configured factor. Errors already below the absolute improvement
// threshold count as converged and reset the run.
func DetectStagnation(errorsByDegree map[int]float64, ts *thresholds.Store) (StagnationResult, error) {
	minFactor, err := ts.Float("convergence", "min_improvement_factor")
	if err != nil {
		return StagnationResult{}, err
	}
	tolerance, err := ts.Int("convergence", "stagnation_tolerance")
	if err != nil {
		return StagnationResult{}, err
	}
	absThreshold, err := ts.Float("convergence", "absolute_improvement_threshold")
	if err != nil {
		return StagnationResult{}, err
	}

	if len(errorsByDegree) < 2 {
		return StagnationResult{}, nil
	}

	// Map iteration order is not deterministic; the walk must be.
	degrees := make([]int, 0, len(errorsByDegree))
	for d := range errorsByDegree {
		degrees = append(degrees, d)
	}
	sort.Ints(degrees)

	factors := make([]float64, 0, len(degrees)-1)
	stagnantCount := 0
	var stagnationStart *int

	for i := 1; i < len(degrees); i++ {
		prev := errorsByDegree[degrees[i-1]]
		curr := errorsByDegree[degrees[i]]

		if curr < absThreshold {
			// Already converged; never counts toward stagnation.
			factors = append(factors, 0)
			stagnantCount = 0
			stagnationStart = nil
			continue
		}

		factor := math.Inf(1)
		if prev != 0 {
			factor = curr / prev
		}
		factors = append(factors, factor)

		if factor >= minFactor {
			stagnantCount++
			if stagnationStart == nil {
				degree := degrees[i]
				stagnationStart = &degree
			}
		} else {
			stagnantCount = 0
			stagnationStart = nil
		}
	}

	return StagnationResult{
		IsStagnant:            stagnantCount >= tolerance,
		StagnationStartDegree: stagnationStart,
		StagnantCount:         stagnantCount,
		ImprovementFactors:    factors,
	}, nil
}
