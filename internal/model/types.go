// Package model defines shared data structures.
package model

import "time"

// AnalyzeConfig defines settings for a single analysis run.
type AnalyzeConfig struct {
	ExperimentDir  string
	ThresholdsPath string
	PlotHeight     int
	Interactive    bool
	NoStore        bool
}

// HistoryConfig defines filters for listing recorded runs.
type HistoryConfig struct {
	Experiment string
	Since      *time.Time
	Last       int
}

// RunSummary records the outcome of one analysis run.
type RunSummary struct {
	RunID                 int64
	CreatedAt             time.Time
	Experiment            string
	HasTruth              bool
	DegreeCount           int
	IsStagnant            bool
	StagnationStartDegree *int
	StagnantCount         int
	DistQuality           string
	OutlierFraction       float64
}

// RunDegree records the per-degree grades of one analysis run.
type RunDegree struct {
	RunID        int64
	Degree       int
	L2Error      float64
	Band         string
	Points       int
	MinDistance  *float64
	MeanDistance *float64
	Recoveries   *int
	NumOutliers  int
	DistQuality  string
}
