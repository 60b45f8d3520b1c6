package quality

import (
	"fmt"

	"github.com/verte-zerg/polygrade/internal/thresholds"
)

// L2Band is a graded quality label for a single L2 error value.
type L2Band int

// Bands from best to worst. The set is closed; persist via String only.
const (
	BandExcellent L2Band = iota
	BandGood
	BandFair
	BandPoor
)

// String returns the report label for the band.
func (b L2Band) String() string {
	switch b {
	case BandExcellent:
		return "excellent"
	case BandGood:
		return "good"
	case BandFair:
		return "fair"
	case BandPoor:
		return "poor"
	default:
		return fmt.Sprintf("L2Band(%d)", int(b))
	}
}

// ClassifyL2 maps an L2 error to a quality band using the threshold for
// the problem dimension, falling back to the configured default.
func ClassifyL2(l2Norm float64, dimension int, ts *thresholds.Store) (L2Band, error) {
	threshold, err := dimThreshold(ts, dimension)
	if err != nil {
		return BandPoor, err
	}
	switch {
	case l2Norm < 0.5*threshold:
		return BandExcellent, nil
	case l2Norm < threshold:
		return BandGood, nil
	case l2Norm < 2*threshold:
		return BandFair, nil
	default:
		return BandPoor, nil
	}
}

func dimThreshold(ts *thresholds.Store, dimension int) (float64, error) {
	key := fmt.Sprintf("dim_%d", dimension)
	if v, ok := ts.Lookup("l2_norm_thresholds", key); ok {
		f, ok := v.Float64()
		if !ok {
			return 0, fmt.Errorf("threshold l2_norm_thresholds.%s is not numeric", key)
		}
		return f, nil
	}
	return ts.Float("l2_norm_thresholds", "default")
}
