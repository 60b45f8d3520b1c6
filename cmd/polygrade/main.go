// Package main provides the CLI entrypoint for polygrade.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/polygrade/internal/config"
	"github.com/verte-zerg/polygrade/internal/model"
	"github.com/verte-zerg/polygrade/internal/report"
	"github.com/verte-zerg/polygrade/internal/reportui"
	"github.com/verte-zerg/polygrade/internal/store"
	"github.com/verte-zerg/polygrade/internal/thresholds"
)

const defaultPlotHeight = 8

var (
	analyzeThresholds  string
	analyzePlotHeight  int
	analyzeInteractive bool
	analyzeNoStore     bool

	historyExperiment string
	historySince      string
	historyLast       int
	historyRun        int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "polygrade <experiment-dir>",
		Short:         "Grade polynomial fitting experiments",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAnalyzeCmd,
	}

	rootCmd.Flags().StringVar(&analyzeThresholds, "thresholds", "", "path to quality thresholds file")
	rootCmd.Flags().IntVar(&analyzePlotHeight, "plot-height", defaultPlotHeight, "height of convergence plots")
	rootCmd.Flags().BoolVar(&analyzeInteractive, "interactive", false, "browse the report in a TUI")
	rootCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "skip recording the run in the history database")

	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "thresholds", &analyzeThresholds, fileCfg.Analysis.Thresholds)
	applyIntConfig(cmd, "plot-height", &analyzePlotHeight, fileCfg.Analysis.PlotHeight)
	applyBoolConfig(cmd, "interactive", &analyzeInteractive, fileCfg.Analysis.Interactive)

	cfg := model.AnalyzeConfig{
		ExperimentDir:  args[0],
		ThresholdsPath: analyzeThresholds,
		PlotHeight:     analyzePlotHeight,
		Interactive:    analyzeInteractive,
		NoStore:        analyzeNoStore,
	}
	if cfg.ThresholdsPath == "" {
		cfg.ThresholdsPath = config.DefaultThresholdsPath()
	}
	if cfg.PlotHeight <= 0 {
		return fmt.Errorf("--plot-height must be > 0")
	}

	ts, err := thresholds.Load(cfg.ThresholdsPath)
	if err != nil {
		return thresholdsLoadError(cfg.ThresholdsPath, err)
	}

	r, err := report.Build(cfg.ExperimentDir, ts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if !cfg.NoStore {
		if err := recordRun(r); err != nil {
			logErrf("failed to record run: %v\n", err)
		}
	}

	if cfg.Interactive {
		program := tea.NewProgram(reportui.NewModel(r, cfg.PlotHeight), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run report TUI: %w", err)
		}
		return nil
	}
	return report.Render(cmd.OutOrStdout(), r, cfg.PlotHeight)
}

func recordRun(r report.Report) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	run, degrees := runRecords(r, time.Now().UTC())
	if _, err := st.InsertRun(context.Background(), run, degrees); err != nil {
		return err
	}
	return nil
}

// runRecords flattens a report into its persisted form.
func runRecords(r report.Report, createdAt time.Time) (model.RunSummary, []model.RunDegree) {
	run := model.RunSummary{
		CreatedAt:             createdAt,
		Experiment:            r.Experiment,
		HasTruth:              r.Truth != nil,
		DegreeCount:           len(r.Rows),
		IsStagnant:            r.Stagnation.IsStagnant,
		StagnationStartDegree: r.Stagnation.StagnationStartDegree,
		StagnantCount:         r.Stagnation.StagnantCount,
		DistQuality:           r.Overall.Quality.String(),
		OutlierFraction:       r.Overall.OutlierFraction,
	}
	degrees := make([]model.RunDegree, 0, len(r.Rows))
	for _, row := range r.Rows {
		d := model.RunDegree{
			Degree:      row.Degree,
			L2Error:     row.L2Error,
			Band:        row.Band.String(),
			Points:      row.Points,
			NumOutliers: row.Distribution.NumOutliers,
			DistQuality: row.Distribution.Quality.String(),
		}
		if row.Recovery != nil {
			minDist := row.Recovery.MinDistance
			meanDist := row.Recovery.MeanDistance
			recoveries := row.Recovery.NumRecoveries
			d.MinDistance = &minDist
			d.MeanDistance = &meanDist
			d.Recoveries = &recoveries
		}
		degrees = append(degrees, d)
	}
	return run, degrees
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyExperiment, "experiment", "", "experiment name filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().Int64Var(&historyRun, "run", 0, "show per-degree grades for one run")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "last", &historyLast, fileCfg.History.Last)

	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	if historyRun > 0 {
		degrees, err := st.ListRunDegrees(context.Background(), historyRun)
		if err != nil {
			return fmt.Errorf("failed to list run degrees: %w", err)
		}
		if len(degrees) == 0 {
			return fmt.Errorf("no degrees recorded for run %d", historyRun)
		}
		if _, err := fmt.Fprintf(out, "%6s  %10s  %-10s  %6s  %9s  %8s  %-17s\n",
			"Degree", "L2 Error", "Band", "Points", "Recovered", "Outliers", "Quality"); err != nil {
			return err
		}
		for _, d := range degrees {
			recovered := "-"
			if d.Recoveries != nil {
				recovered = fmt.Sprintf("%d/%d", *d.Recoveries, d.Points)
			}
			if _, err := fmt.Fprintf(out, "%6d  %10.3g  %-10s  %6d  %9s  %8d  %-17s\n",
				d.Degree, d.L2Error, d.Band, d.Points, recovered, d.NumOutliers, d.DistQuality); err != nil {
				return err
			}
		}
		return nil
	}

	runs, err := st.ListRuns(context.Background(), model.HistoryConfig{
		Experiment: historyExperiment,
		Since:      sinceTime,
		Last:       historyLast,
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return fmt.Errorf("no recorded runs found")
	}
	if _, err := fmt.Fprintf(out, "%5s  %-20s  %-20s  %7s  %9s  %-17s\n",
		"Run", "Created", "Experiment", "Degrees", "Stagnant", "Quality"); err != nil {
		return err
	}
	for _, run := range runs {
		stagnant := "no"
		if run.IsStagnant {
			stagnant = fmt.Sprintf("yes (%d)", run.StagnantCount)
		}
		if _, err := fmt.Fprintf(out, "%5d  %-20s  %-20s  %7d  %9s  %-17s\n",
			run.RunID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Experiment, run.DegreeCount, stagnant, run.DistQuality); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	thresholdsPath := config.DefaultThresholdsPath()
	if _, err := os.Stat(thresholdsPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat thresholds: %w", err)
		}
		if err := os.WriteFile(thresholdsPath, []byte(defaultThresholdsTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write thresholds: %w", err)
		}
		logErrf("Wrote default thresholds to %s\n", thresholdsPath)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# polygrade configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# thresholds = %q  # Path to quality thresholds file
# plot-height = %d  # Height of convergence plots
# interactive = false  # Browse reports in a TUI

[history]
# last = 20  # Default number of runs to list
`,
		config.DefaultThresholdsPath(),
		defaultPlotHeight,
	)
}

func defaultThresholdsTemplate() string {
	return `# polygrade quality thresholds

[l2_norm_thresholds]
# Per-dimension L2 error thresholds. dim_<N> keys override the default.
dim_2 = 0.01
dim_3 = 0.01
default = 0.1

[parameter_recovery]
# A critical point counts as recovered when its distance to the
# ground truth is strictly below this value.
recovery_threshold = 0.05

[convergence]
# A degree step is stagnant when new_error / previous_error is at or
# above min_improvement_factor. Runs with at least stagnation_tolerance
# consecutive stagnant steps are flagged.
min_improvement_factor = 0.95
stagnation_tolerance = 2
absolute_improvement_threshold = 1e-10

[objective_distribution]
min_points_for_distribution_check = 5
max_outlier_fraction = 0.2
outlier_iqr_multiplier = 1.5
`
}

func thresholdsLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load thresholds: %v", err),
		fmt.Sprintf("expected thresholds at: %s", path),
		"Create a default file with: polygrade config",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
