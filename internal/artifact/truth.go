package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadTruth reads the ground-truth parameter vector (p_true.json). A
// missing or malformed file is an error; synthetic experiments without a
// known truth simply omit the file.
func LoadTruth(dir string) ([]float64, error) {
	path := filepath.Join(dir, TruthFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth: %w", err)
	}
	var truth []float64
	if err := json.Unmarshal(data, &truth); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(truth) == 0 {
		return nil, fmt.Errorf("%s holds an empty vector", path)
	}
	return truth, nil
}

// HasTruth probes for a usable ground-truth vector. Any failure reads as
// "no ground truth"; this is an existence check, never used for statistics.
func HasTruth(dir string) bool {
	_, err := LoadTruth(dir)
	return err == nil
}
