// Package artifact loads per-degree experiment artifacts from disk.
package artifact

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Well-known file names inside an experiment directory.
const (
	TruthFile  = "p_true.json"
	ErrorsFile = "errors.csv"
	PointsFile = "critical_points.csv"
)

const degreeDirPrefix = "degree_"

// Experiment describes a discovered experiment directory.
type Experiment struct {
	Dir     string
	Degrees []int
}

// Discover scans an experiment directory for degree_<N> subdirectories.
// All loading is eager and happens before any analysis starts.
func Discover(dir string) (Experiment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Experiment{}, fmt.Errorf("failed to read experiment directory: %w", err)
	}
	var degrees []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, degreeDirPrefix) {
			continue
		}
		degree, err := strconv.Atoi(strings.TrimPrefix(name, degreeDirPrefix))
		if err != nil || degree <= 0 {
			continue
		}
		degrees = append(degrees, degree)
	}
	if len(degrees) == 0 {
		return Experiment{}, fmt.Errorf("no degree artifacts found in %s", dir)
	}
	sort.Ints(degrees)
	return Experiment{Dir: dir, Degrees: degrees}, nil
}

// DegreeDir returns the artifact directory for a degree.
func (e Experiment) DegreeDir(degree int) string {
	return fmt.Sprintf("%s/%s%d", e.Dir, degreeDirPrefix, degree)
}
