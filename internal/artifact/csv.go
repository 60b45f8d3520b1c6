package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadErrors reads the per-degree aggregate error table (errors.csv with
// a "degree,l2_error" header) into a degree->error mapping.
func LoadErrors(dir string) (map[int]float64, error) {
	path := filepath.Join(dir, ErrorsFile)
	records, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: expected degree and l2_error columns", path)
	}
	errors := make(map[int]float64, len(records)-1)
	for i, row := range records[1:] {
		degree, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid degree %q", path, i+2, row[0])
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid error %q", path, i+2, row[1])
		}
		errors[degree] = value
	}
	return errors, nil
}

// LoadCriticalPoints reads the critical points found at one degree. The
// header names the parameter columns; an "objective" column, when
// present, is split out of the parameter vectors.
func LoadCriticalPoints(dir string, degree int) (points [][]float64, objectives []float64, err error) {
	exp := Experiment{Dir: dir}
	path := filepath.Join(exp.DegreeDir(degree), PointsFile)
	records, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", path)
	}

	header := records[0]
	objectiveCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "objective") {
			objectiveCol = i
			break
		}
	}

	for i, row := range records[1:] {
		point := make([]float64, 0, len(row))
		for col, cell := range row {
			value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d: invalid value %q", path, i+2, cell)
			}
			if col == objectiveCol {
				objectives = append(objectives, value)
				continue
			}
			point = append(point, value)
		}
		points = append(points, point)
	}
	return points, objectives, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only artifact.
			_ = cerr
		}
	}()
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
