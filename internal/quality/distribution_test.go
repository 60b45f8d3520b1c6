package quality

import (
	"math"
	"testing"
)

const distributionConfig = `[objective_distribution]
min_points_for_distribution_check = 5
max_outlier_fraction = 0.2
outlier_iqr_multiplier = 1.5
`

func TestCheckDistributionInsufficientData(t *testing.T) {
	ts := testStore(t, distributionConfig)
	samples := [][]float64{
		nil,
		{},
		{1.0},
		{1, 2, 3, 4},
	}
	for _, s := range samples {
		result, err := CheckDistribution(s, ts)
		if err != nil {
			t.Fatalf("CheckDistribution(%v): %v", s, err)
		}
		if result.Quality != DistInsufficientData {
			t.Fatalf("expected insufficient_data for %d points, got %s", len(s), result.Quality)
		}
		if result.HasOutliers || result.NumOutliers != 0 {
			t.Fatalf("insufficient data must report no outliers, got %+v", result)
		}
		if result.Q1 != 0 || result.Q3 != 0 || result.IQR != 0 {
			t.Fatalf("insufficient data must zero the quartiles, got %+v", result)
		}
	}
}

func TestCheckDistributionCleanSample(t *testing.T) {
	ts := testStore(t, distributionConfig)
	// Symmetric, tight sample: no value can escape the IQR fences.
	objectives := []float64{1, 2, 3, 4, 5, 6, 7}
	result, err := CheckDistribution(objectives, ts)
	if err != nil {
		t.Fatalf("CheckDistribution: %v", err)
	}
	if result.NumOutliers != 0 || result.HasOutliers {
		t.Fatalf("expected no outliers, got %+v", result)
	}
	if result.Quality != DistGood {
		t.Fatalf("expected good quality, got %s", result.Quality)
	}
	if math.Abs(result.Q1-2.5) > 1e-12 || math.Abs(result.Q3-5.5) > 1e-12 {
		t.Fatalf("unexpected quartiles: q1=%g q3=%g", result.Q1, result.Q3)
	}
	if math.Abs(result.IQR-3) > 1e-12 {
		t.Fatalf("unexpected IQR: %g", result.IQR)
	}
}

func TestCheckDistributionFlagsOutliers(t *testing.T) {
	ts := testStore(t, distributionConfig)
	// Nine tight values and one far spike: fraction 0.1 <= 0.2 stays good.
	objectives := []float64{10, 10.1, 9.9, 10.2, 9.8, 10.05, 9.95, 10.15, 9.85, 500}
	result, err := CheckDistribution(objectives, ts)
	if err != nil {
		t.Fatalf("CheckDistribution: %v", err)
	}
	if result.NumOutliers != 1 || !result.HasOutliers {
		t.Fatalf("expected exactly one outlier, got %+v", result)
	}
	if math.Abs(result.OutlierFraction-0.1) > 1e-12 {
		t.Fatalf("outlier fraction = %g, want 0.1", result.OutlierFraction)
	}
	if result.Quality != DistGood {
		t.Fatalf("fraction within budget should stay good, got %s", result.Quality)
	}
}

func TestCheckDistributionPoorQuality(t *testing.T) {
	ts := testStore(t, distributionConfig)
	// Two spikes out of six push the fraction past max_outlier_fraction.
	objectives := []float64{10, 10.1, 9.9, 10.05, -500, 500}
	result, err := CheckDistribution(objectives, ts)
	if err != nil {
		t.Fatalf("CheckDistribution: %v", err)
	}
	if result.NumOutliers != 2 {
		t.Fatalf("expected 2 outliers, got %+v", result)
	}
	if result.Quality != DistPoor {
		t.Fatalf("expected poor quality, got %s", result.Quality)
	}
}

func TestCheckDistributionMissingThresholds(t *testing.T) {
	ts := testStore(t, "[objective_distribution]\nmin_points_for_distribution_check = 5\n")
	if _, err := CheckDistribution([]float64{1, 2, 3, 4, 5, 6}, ts); err == nil {
		t.Fatalf("expected error for incomplete distribution config")
	}
}

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	if q := quantile(sorted, 0.25); math.Abs(q-1.75) > 1e-12 {
		t.Fatalf("q1 = %g, want 1.75", q)
	}
	if q := quantile(sorted, 0.75); math.Abs(q-3.25) > 1e-12 {
		t.Fatalf("q3 = %g, want 3.25", q)
	}
	if q := quantile([]float64{7}, 0.5); q != 7 {
		t.Fatalf("single-element quantile = %g, want 7", q)
	}
	if q := quantile(sorted, 1); q != 4 {
		t.Fatalf("p=1 quantile = %g, want 4", q)
	}
}

func TestDistQualityLabels(t *testing.T) {
	labels := map[DistQuality]string{
		DistGood:             "good",
		DistPoor:             "poor",
		DistInsufficientData: "insufficient_data",
	}
	for q, want := range labels {
		if q.String() != want {
			t.Errorf("quality %d label = %q, want %q", int(q), q.String(), want)
		}
	}
}
