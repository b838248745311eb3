package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trustscan-dev/trustscan/internal/batch"
	"github.com/trustscan-dev/trustscan/internal/config"
	"github.com/trustscan-dev/trustscan/internal/database"
	"github.com/trustscan-dev/trustscan/internal/log"
	"github.com/trustscan-dev/trustscan/internal/model"
	"github.com/trustscan-dev/trustscan/internal/pipeline"
	"github.com/trustscan-dev/trustscan/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file|frame-dir]...",
		Short: "Analyze media files for authenticity",
		Long: `Analyze fuses per-signal authenticity scores into one calibrated
trust score per input.

Accepted inputs are image files (JPEG, PNG), WAV audio files, and
directories of extracted video frames (optionally containing a WAV
track). Each input gets:
- A trust score in [0, 1] dampened by input quality
- A decision (Real, Likely Real, Ambiguous, Likely Fake, Fake)
- A per-signal breakdown and the reasoning behind the verdict

Examples:
  # Analyze a single image
  trustscan analyze photo.jpg

  # Analyze a frame directory with adversarial robustness testing
  trustscan analyze --robustness ./frames/

  # Analyze multiple inputs concurrently
  trustscan analyze a.jpg b.png ./frames/ --workers 3

  # Output JSON report to a file
  trustscan analyze --json -o report.json photo.jpg

  # Use a named profile from the config file
  trustscan analyze --profile thorough photo.jpg

Configuration file (.trustscan) example:
  defaults:
    workers: 3
    timeout_seconds: 60
  profiles:
    thorough:
      robustness: true
      timeout_seconds: 300`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Analysis behavior flags
	cmd.Flags().BoolP("robustness", "r", false,
		"Run the adversarial robustness catalog against each input")
	cmd.Flags().IntP("workers", "w", config.DefaultMaxWorkers,
		"Number of concurrent analyses in batch mode")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFileTimeout,
		"Per-file analysis timeout (0 disables the bound)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .trustscan in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Named profile from the configuration file")

	// Persistence flags
	cmd.Flags().Bool("no-save", false,
		"Do not persist reports to the history database")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Robustness, err = cmd.Flags().GetBool("robustness")
	if err != nil {
		return nil, err
	}

	cfg.MaxWorkers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.FileTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Profile, err = cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	// Positional arguments are the inputs to analyze.
	cfg.Targets = args

	return cfg, nil
}

// applyConfigFile loads the configuration file (if any) and overlays the
// defaults profile plus the selected named profile onto cfg.
//
// If the user explicitly specified a config file path, a missing file is
// an error. Without an explicit path, a missing file is simply skipped.
func applyConfigFile(cfg *config.Config) error {
	explicitPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		if cfg.Profile != "" {
			return fmt.Errorf("profile %q requested but no configuration file found", cfg.Profile)
		}
		return nil
	}

	file, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	cfg.ApplyProfile(&file.Defaults)

	profile, err := file.ProfileByName(cfg.Profile)
	if err != nil {
		return err
	}
	cfg.ApplyProfile(profile)

	return nil
}

// runAnalyze executes the analysis.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"targets", cfg.Targets,
		"robustness", cfg.Robustness,
		"maxWorkers", cfg.MaxWorkers,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ResultDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	if len(cfg.Targets) > 1 {
		return runBatchAnalyze(ctx, cfg, db, logger)
	}
	return runSequentialAnalyze(ctx, cfg, db, logger)
}

// runSequentialAnalyze analyzes targets one at a time.
func runSequentialAnalyze(ctx context.Context, cfg *config.Config, db *database.ResultDB, logger *slog.Logger) error {
	pipelineCfg := pipeline.Config{
		Robustness: cfg.Robustness,
		Provenance: true,
		Logger:     logger,
	}

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Analyzing %s...\n", target)
		startTime := time.Now()

		trustReport, err := pipeline.Analyze(ctx, target, pipelineCfg)
		if err != nil {
			logger.Error("analysis failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Analysis completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, trustReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		if err := saveReport(ctx, db, trustReport, logger); err != nil {
			logger.Error("failed to save report", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchAnalyze analyzes multiple targets concurrently through the
// batch orchestrator and prints a per-file summary table.
func runBatchAnalyze(ctx context.Context, cfg *config.Config, db *database.ResultDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch analysis of %d inputs (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.MaxWorkers)

	startTime := time.Now()

	orchestrator := batch.NewOrchestrator(
		batch.WithMaxWorkers(cfg.MaxWorkers),
		batch.WithFileTimeout(cfg.FileTimeout),
		batch.WithLogger(logger),
	)

	files := make([]model.FileRef, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		files = append(files, model.FileRef{Path: target})
	}

	jobID, err := orchestrator.CreateJob(files)
	if err != nil {
		return fmt.Errorf("failed to create batch job: %w", err)
	}

	pipelineCfg := pipeline.Config{
		Robustness: cfg.Robustness,
		Provenance: true,
		Logger:     logger,
	}
	analyze := func(ctx context.Context, file model.FileRef) (*model.TrustReport, error) {
		return pipeline.Analyze(ctx, file.Path, pipelineCfg)
	}

	if err := orchestrator.Submit(ctx, jobID, analyze); err != nil {
		return fmt.Errorf("failed to submit batch job: %w", err)
	}

	job, err := orchestrator.Wait(ctx, jobID)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Println(renderJobTable(job))
	fmt.Printf("\nBatch analysis completed in %s (%d ok, %d failed)\n",
		elapsed.Round(time.Millisecond), len(job.Results), len(job.Errors))

	if err := outputJob(cfg, job); err != nil {
		logger.Error("job report failed", "jobID", job.ID, "error", err)
	}

	return saveJob(ctx, db, job, logger)
}

// renderJobTable formats per-file outcomes as a terminal table.
func renderJobTable(job *model.BatchJob) string {
	rows := make([][]string, 0, len(job.Results)+len(job.Errors))
	for _, r := range job.Results {
		rows = append(rows, []string{
			r.File,
			fmt.Sprintf("%.2f", r.Report.Score),
			r.Report.Decision.String(),
			r.Report.Confidence.String(),
		})
	}
	for _, e := range job.Errors {
		rows = append(rows, []string{e.File, "-", "Error", e.Error})
	}

	return renderTable(
		[]string{"File", "Score", "Decision", "Confidence"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

// outputReport outputs a single analysis report in the requested format.
func outputReport(cfg *config.Config, trustReport *model.TrustReport) error {
	output, closeFn, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	_, err = newReportWriter(cfg, output).Write(trustReport)
	return err
}

// outputJob outputs a batch job summary in the requested format.
func outputJob(cfg *config.Config, job *model.BatchJob) error {
	output, closeFn, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	_, err = newReportWriter(cfg, output).WriteJob(job)
	return err
}

// reportDestination resolves the report output stream: the --output file
// when given, stdout otherwise.
func reportDestination(cfg *config.Config) (*os.File, func(), error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports identify the files a user analyzed; keep them owner-readable.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter selects the report writer matching the config flags.
func newReportWriter(cfg *config.Config, output *os.File) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// saveReport saves an analysis report to the database if enabled.
// If db is nil, this function is a no-op.
func saveReport(ctx context.Context, db *database.ResultDB, trustReport *model.TrustReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	if err := db.SaveReport(ctx, trustReport); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info("report saved to database", "file", trustReport.File)
	return nil
}

// saveJob saves a completed batch job and its per-file reports.
// If db is nil, this function is a no-op.
func saveJob(ctx context.Context, db *database.ResultDB, job *model.BatchJob, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	var firstErr error
	for _, r := range job.Results {
		if err := saveReport(ctx, db, r.Report, logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := db.SaveJob(ctx, job); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("failed to save job: %w", err)
		}
	} else {
		logger.Info("batch job saved to database", "jobID", job.ID)
	}
	return firstErr
}
