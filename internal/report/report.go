// Package report assembles and renders experiment quality reports.
package report

import (
	"fmt"

	"github.com/verte-zerg/polygrade/internal/artifact"
	"github.com/verte-zerg/polygrade/internal/quality"
	"github.com/verte-zerg/polygrade/internal/thresholds"
)

// DegreeRow holds the grades for a single polynomial degree.
type DegreeRow struct {
	Degree       int
	L2Error      float64
	Band         quality.L2Band
	Points       int
	Recovery     *quality.RecoveryStats
	Distribution quality.DistributionResult
}

// Report contains the full quality assessment of one experiment.
type Report struct {
	Experiment     string
	Truth          []float64
	Rows           []DegreeRow
	ErrorsByDegree map[int]float64
	Stagnation     quality.StagnationResult
	Overall        quality.DistributionResult
}

// Build loads the experiment artifacts and grades them: parameter
// recovery and L2 band per degree, stagnation across degrees, and
// objective-distribution checks per degree and overall.
func Build(dir string, ts *thresholds.Store) (Report, error) {
	exp, err := artifact.Discover(dir)
	if err != nil {
		return Report{}, err
	}
	errsByDegree, err := artifact.LoadErrors(dir)
	if err != nil {
		return Report{}, err
	}

	var truth []float64
	var recoveryThreshold float64
	if artifact.HasTruth(dir) {
		truth, err = artifact.LoadTruth(dir)
		if err != nil {
			return Report{}, err
		}
		recoveryThreshold, err = ts.Float("parameter_recovery", "recovery_threshold")
		if err != nil {
			return Report{}, err
		}
	}

	rows := make([]DegreeRow, 0, len(exp.Degrees))
	var allObjectives []float64
	for _, degree := range exp.Degrees {
		points, objectives, err := artifact.LoadCriticalPoints(dir, degree)
		if err != nil {
			return Report{}, err
		}
		l2, ok := errsByDegree[degree]
		if !ok {
			return Report{}, fmt.Errorf("%s has no entry for degree %d", artifact.ErrorsFile, degree)
		}

		band, err := quality.ClassifyL2(l2, dimensionOf(points, truth), ts)
		if err != nil {
			return Report{}, err
		}

		var recovery *quality.RecoveryStats
		if truth != nil && len(points) > 0 {
			stats, err := quality.Recovery(points, truth, recoveryThreshold)
			if err != nil {
				return Report{}, fmt.Errorf("degree %d: %w", degree, err)
			}
			recovery = &stats
		}

		distribution, err := quality.CheckDistribution(objectives, ts)
		if err != nil {
			return Report{}, err
		}
		allObjectives = append(allObjectives, objectives...)

		rows = append(rows, DegreeRow{
			Degree:       degree,
			L2Error:      l2,
			Band:         band,
			Points:       len(points),
			Recovery:     recovery,
			Distribution: distribution,
		})
	}

	stagnation, err := quality.DetectStagnation(errsByDegree, ts)
	if err != nil {
		return Report{}, err
	}
	overall, err := quality.CheckDistribution(allObjectives, ts)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Experiment:     dir,
		Truth:          truth,
		Rows:           rows,
		ErrorsByDegree: errsByDegree,
		Stagnation:     stagnation,
		Overall:        overall,
	}, nil
}

func dimensionOf(points [][]float64, truth []float64) int {
	if len(truth) > 0 {
		return len(truth)
	}
	if len(points) > 0 {
		return len(points[0])
	}
	return 0
}
