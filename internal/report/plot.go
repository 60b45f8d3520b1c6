package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	terminalWidthBackup = 80
	sparkChars          = " .:-=+*#%@"
)

// TerminalWidth reports the current terminal width with a fixed fallback.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// plotWidth reports the rendered width of a degree chart, axis included.
func plotWidth(degrees []int) int {
	colWidth := 1
	for _, d := range degrees {
		if l := len(strconv.Itoa(d)); l > colWidth {
			colWidth = l
		}
	}
	return (colWidth+1)*len(degrees) + 1
}

// PlotDegreeSeries renders a labeled point chart of one value per degree.
// Each degree gets a fixed-width column; values scale to the chart height.
func PlotDegreeSeries(w io.Writer, title string, degrees []int, values []float64, height int) error {
	if len(degrees) == 0 || len(degrees) != len(values) {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}

	labels := make([]string, len(degrees))
	colWidth := 1
	for i, d := range degrees {
		labels[i] = strconv.Itoa(d)
		if len(labels[i]) > colWidth {
			colWidth = len(labels[i])
		}
	}
	colWidth++

	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-12 {
		minVal--
		maxVal++
	}

	grid := make([][]byte, height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(" ", colWidth*len(values)))
	}
	for i, v := range values {
		row := valueToRow(v, minVal, maxVal, height)
		grid[row][i*colWidth+colWidth/2] = '*'
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "min=%.3g max=%.3g\n", minVal, maxVal); err != nil {
		return err
	}
	for _, line := range grid {
		if _, err := fmt.Fprintf(w, "│%s\n", strings.TrimRight(string(line), " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "└%s\n", strings.Repeat("─", colWidth*len(values))); err != nil {
		return err
	}
	var axis strings.Builder
	axis.WriteByte(' ')
	for _, label := range labels {
		axis.WriteString(centerLabel(label, colWidth))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(axis.String(), " ")); err != nil {
		return err
	}
	return nil
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func centerLabel(label string, width int) string {
	if len(label) >= width {
		return label
	}
	left := (width - len(label)) / 2
	right := width - len(label) - left
	return strings.Repeat(" ", left) + label + strings.Repeat(" ", right)
}
