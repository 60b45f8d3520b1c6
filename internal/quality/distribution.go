package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/polygrade/internal/thresholds"
)

// DistQuality is a graded label for an objective-value distribution.
type DistQuality int

// Distribution labels. The set is closed; persist via String only.
const (
	DistGood DistQuality = iota
	DistPoor
	DistInsufficientData
)

// String returns the report label for the distribution quality.
func (q DistQuality) String() string {
	switch q {
	case DistGood:
		return "good"
	case DistPoor:
		return "poor"
	case DistInsufficientData:
		return "insufficient_data"
	default:
		return fmt.Sprintf("DistQuality(%d)", int(q))
	}
}

// DistributionResult describes the outlier burden of a set of objective values.
type DistributionResult struct {
	HasOutliers     bool
	NumOutliers     int
	OutlierFraction float64
	Quality         DistQuality
	Q1              float64
	Q3              float64
	IQR             float64
}

// CheckDistribution computes quartile-based outlier bounds for the
// objective values and classifies the distribution. Too few samples yield
// an insufficient-data result, not an error.
func CheckDistribution(objectives []float64, ts *thresholds.Store) (DistributionResult, error) {
	minPoints, err := ts.Int("objective_distribution", "min_points_for_distribution_check")
	if err != nil {
		return DistributionResult{}, err
	}
	maxFraction, err := ts.Float("objective_distribution", "max_outlier_fraction")
	if err != nil {
		return DistributionResult{}, err
	}
	multiplier, err := ts.Float("objective_distribution", "outlier_iqr_multiplier")
	if err != nil {
		return DistributionResult{}, err
	}

	if len(objectives) < minPoints {
		return DistributionResult{Quality: DistInsufficientData}, nil
	}

	sorted := append([]float64(nil), objectives...)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	outliers := 0
	for _, v := range objectives {
		if v < lower || v > upper {
			outliers++
		}
	}
	fraction := float64(outliers) / float64(len(objectives))

	result := DistributionResult{
		HasOutliers:     outliers > 0,
		NumOutliers:     outliers,
		OutlierFraction: fraction,
		Quality:         DistGood,
		Q1:              q1,
		Q3:              q3,
		IQR:             iqr,
	}
	if fraction > maxFraction {
		result.Quality = DistPoor
	}
	return result, nil
}

// quantile estimates the p-quantile of sorted values by linear
// interpolation between order statistics.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	idx := int(math.Floor(pos))
	if idx >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(idx)
	return sorted[idx]*(1-frac) + sorted[idx+1]*frac
}
