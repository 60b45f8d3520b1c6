package reportui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/polygrade/internal/quality"
	"github.com/verte-zerg/polygrade/internal/report"
)

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb", 4, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line) != 4 {
			t.Fatalf("line %d not padded to width: %q", i, line)
		}
	}
	if got := fitLines("a\nb\nc\nd", 1, 2); strings.Count(got, "\n") != 1 {
		t.Fatalf("expected truncation to 2 lines, got %q", got)
	}
}

func TestTruncateLine(t *testing.T) {
	if got := truncateLine("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncateLine("0123456789", 7); got != "0123..." {
		t.Fatalf("expected ellipsis truncation, got %q", got)
	}
}

func TestBuildDegreeTableRows(t *testing.T) {
	stats := &quality.RecoveryStats{
		MinDistance:   0.01,
		MeanDistance:  0.5,
		NumRecoveries: 2,
		AllDistances:  []float64{0.01, 0.99, 1.2},
	}
	r := report.Report{
		Rows: []report.DegreeRow{
			{Degree: 2, L2Error: 0.1, Band: quality.BandPoor, Points: 3, Recovery: stats},
			{Degree: 3, L2Error: 0.05, Band: quality.BandFair, Points: 3},
		},
	}
	tbl := buildDegreeTable(r)
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][6] != "2/3" {
		t.Fatalf("expected recovered cell 2/3, got %q", rows[0][6])
	}
	if rows[1][4] != "-" || rows[1][6] != "-" {
		t.Fatalf("expected placeholders without recovery stats: %v", rows[1])
	}
}
