package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/polygrade/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "polygrade.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func sampleRun(experiment string, createdAt time.Time) (model.RunSummary, []model.RunDegree) {
	start := 3
	minDist := 0.01
	meanDist := 0.5
	recoveries := 3
	run := model.RunSummary{
		CreatedAt:             createdAt,
		Experiment:            experiment,
		HasTruth:              true,
		DegreeCount:           2,
		IsStagnant:            true,
		StagnationStartDegree: &start,
		StagnantCount:         2,
		DistQuality:           "poor",
		OutlierFraction:       0.25,
	}
	degrees := []model.RunDegree{
		{Degree: 2, L2Error: 0.1, Band: "poor", Points: 4, MinDistance: &minDist, MeanDistance: &meanDist, Recoveries: &recoveries, NumOutliers: 1, DistQuality: "poor"},
		{Degree: 3, L2Error: 0.099, Band: "poor", Points: 4, NumOutliers: 0, DistQuality: "good"},
	}
	return run, degrees
}

func TestInsertAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, degrees := sampleRun("poly5", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	id, err := s.InsertRun(ctx, run, degrees)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive run id, got %d", id)
	}

	runs, err := s.ListRuns(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.RunID != id || got.Experiment != "poly5" || !got.HasTruth || !got.IsStagnant {
		t.Fatalf("unexpected run summary: %+v", got)
	}
	if got.StagnationStartDegree == nil || *got.StagnationStartDegree != 3 {
		t.Fatalf("unexpected stagnation start: %v", got.StagnationStartDegree)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("created_at round trip: got %v want %v", got.CreatedAt, run.CreatedAt)
	}
}

func TestListRunDegrees(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, degrees := sampleRun("poly5", time.Now().UTC())
	id, err := s.InsertRun(ctx, run, degrees)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}

	got, err := s.ListRunDegrees(ctx, id)
	if err != nil {
		t.Fatalf("list run degrees: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 degree rows, got %d", len(got))
	}
	if got[0].Degree != 2 || got[1].Degree != 3 {
		t.Fatalf("degrees must be ordered: %+v", got)
	}
	first := got[0]
	if first.MinDistance == nil || *first.MinDistance != 0.01 {
		t.Fatalf("min distance round trip: %v", first.MinDistance)
	}
	if first.Recoveries == nil || *first.Recoveries != 3 {
		t.Fatalf("recoveries round trip: %v", first.Recoveries)
	}
	second := got[1]
	if second.MinDistance != nil || second.MeanDistance != nil || second.Recoveries != nil {
		t.Fatalf("expected nulls for truth-less degree: %+v", second)
	}
}

func TestListRunsFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"alpha", "alpha", "beta"} {
		run, degrees := sampleRun(name, base.Add(time.Duration(i)*time.Hour))
		if _, err := s.InsertRun(ctx, run, degrees); err != nil {
			t.Fatalf("insert run %d: %v", i, err)
		}
	}

	runs, err := s.ListRuns(ctx, model.HistoryConfig{Experiment: "alpha"})
	if err != nil {
		t.Fatalf("list by experiment: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 alpha runs, got %d", len(runs))
	}

	since := base.Add(90 * time.Minute)
	runs, err = s.ListRuns(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(runs) != 1 || runs[0].Experiment != "beta" {
		t.Fatalf("unexpected since filter result: %+v", runs)
	}

	runs, err = s.ListRuns(ctx, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 most recent runs, got %d", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Fatalf("runs must be newest first: %v then %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}
}
