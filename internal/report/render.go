// Package report assembles and renders experiment quality reports.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Render writes the full text report: summary, per-degree table, and
// convergence charts.
func Render(w io.Writer, r Report, plotHeight int) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if err := RenderDegreeTable(w, r); err != nil {
		return err
	}
	return RenderConvergence(w, r, plotHeight)
}

// RenderSummary prints the run-level verdicts.
func RenderSummary(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Experiment: %s\n", r.Experiment); err != nil {
		return err
	}
	truthNote := "absent (recovery stats skipped)"
	if r.Truth != nil {
		truthNote = fmt.Sprintf("present (dimension %d)", len(r.Truth))
	}
	if _, err := fmt.Fprintf(w, "Ground truth: %s\n", truthNote); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Degrees analyzed: %d\n", len(r.Rows)); err != nil {
		return err
	}

	verdict := "no"
	if r.Stagnation.IsStagnant {
		verdict = fmt.Sprintf("yes (%d stalled steps", r.Stagnation.StagnantCount)
		if r.Stagnation.StagnationStartDegree != nil {
			verdict += fmt.Sprintf(" since degree %d", *r.Stagnation.StagnationStartDegree)
		}
		verdict += ")"
	}
	if _, err := fmt.Fprintf(w, "Stagnation: %s\n", verdict); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Objective distribution: %s (%.1f%% outliers)\n\n",
		r.Overall.Quality, r.Overall.OutlierFraction*100); err != nil {
		return err
	}
	return nil
}

// RenderDegreeTable prints the per-degree grade table.
func RenderDegreeTable(w io.Writer, r Report) error {
	if len(r.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No degree artifacts found.")
		return err
	}
	headers := []string{"Degree", "L2 Error", "Band", "Points", "Min Dist", "Mean Dist", "Recovered", "Outliers", "Quality"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		minDist, meanDist, recovered := "-", "-", "-"
		if row.Recovery != nil {
			minDist = fmt.Sprintf("%.3g", row.Recovery.MinDistance)
			meanDist = fmt.Sprintf("%.3g", row.Recovery.MeanDistance)
			recovered = fmt.Sprintf("%d/%d", row.Recovery.NumRecoveries, len(row.Recovery.AllDistances))
		}
		rows = append(rows, []string{
			strconv.Itoa(row.Degree),
			fmt.Sprintf("%.3g", row.L2Error),
			row.Band.String(),
			strconv.Itoa(row.Points),
			minDist,
			meanDist,
			recovered,
			strconv.Itoa(row.Distribution.NumOutliers),
			row.Distribution.Quality.String(),
		})
	}
	rightAlign := map[int]bool{0: true, 1: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	if _, err := fmt.Fprintln(w, "Per-Degree Grades"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderConvergence prints the error-vs-degree chart and the improvement
// factor sparkline.
func RenderConvergence(w io.Writer, r Report, plotHeight int) error {
	degrees, errors := errorSeries(r.ErrorsByDegree)
	if len(degrees) < 2 {
		_, err := fmt.Fprintln(w, "Not enough degrees for convergence analysis.")
		return err
	}
	if plotWidth(degrees) > TerminalWidth() {
		if _, err := fmt.Fprintf(w, "L2 error trend: %s\n", Sparkline(errors)); err != nil {
			return err
		}
	} else if err := PlotDegreeSeries(w, "L2 Error vs Degree", degrees, errors, plotHeight); err != nil {
		return err
	}
	if len(r.Stagnation.ImprovementFactors) > 0 {
		if _, err := fmt.Fprintf(w, "\nImprovement factors: %s\n",
			Sparkline(r.Stagnation.ImprovementFactors)); err != nil {
			return err
		}
	}
	return nil
}

func errorSeries(errsByDegree map[int]float64) ([]int, []float64) {
	degrees := make([]int, 0, len(errsByDegree))
	for d := range errsByDegree {
		degrees = append(degrees, d)
	}
	sort.Ints(degrees)
	values := make([]float64, len(degrees))
	for i, d := range degrees {
		values[i] = errsByDegree[d]
	}
	return degrees, values
}
