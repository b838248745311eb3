package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trustscan-dev/trustscan/internal/config"
	"github.com/trustscan-dev/trustscan/internal/database"
	"github.com/trustscan-dev/trustscan/internal/model"
	"github.com/trustscan-dev/trustscan/internal/report"
)

// NewHistoryCmd creates the history command.
// This command inspects analysis results stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Inspect stored analysis results",
		Long: `History lists past analysis results from the local database.

Without flags it shows all stored reports for the given file, newest
first. Re-analyzing the same file over time makes the score trend
visible: a file whose trust score drifts between runs deserves a
closer look.

Examples:
  # Show analysis history for a file
  trustscan history video.mp4

  # List all analyzed files in the database
  trustscan history --list-files

  # Show the score change between the two most recent analyses
  trustscan history --diff video.mp4

  # Show one stored report in full by its ID
  trustscan history --id 12

  # List completed batch jobs
  trustscan history --jobs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list-files", "L", false,
		"List all analyzed files in the database")
	cmd.Flags().Bool("jobs", false,
		"List stored batch jobs")

	// Detail flags
	cmd.Flags().Int64P("id", "i", 0,
		"Show the full report with this ID (use the history listing to find IDs)")
	cmd.Flags().BoolP("diff", "d", false,
		"Compare the two most recent reports for the file")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory for the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listFiles, err := cmd.Flags().GetBool("list-files")
	if err != nil {
		return err
	}
	listJobs, err := cmd.Flags().GetBool("jobs")
	if err != nil {
		return err
	}
	reportID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Validate arguments before opening the database.
	needsFile := !listFiles && !listJobs && reportID == 0
	if needsFile && len(args) == 0 {
		return errors.New("file argument is required (use --list-files to see analyzed files)")
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database (run 'trustscan analyze' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case listFiles:
		return listAnalyzedFiles(ctx, db)
	case listJobs:
		return listBatchJobs(ctx, db, jsonOutput)
	case reportID > 0:
		return showReportByID(ctx, db, reportID, jsonOutput)
	case diff:
		return diffLatestReports(ctx, db, args[0])
	default:
		return listReportHistory(ctx, db, args[0], jsonOutput)
	}
}

// listAnalyzedFiles lists all files that have analysis records.
func listAnalyzedFiles(ctx context.Context, db *database.ResultDB) error {
	files, err := db.ListAnalyzedFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		fmt.Println("No analyzed files found in the database.")
		fmt.Println("\nUse 'trustscan analyze <file>' to analyze an input.")
		return nil
	}

	fmt.Printf("Analyzed files (%d):\n\n", len(files))
	for _, file := range files {
		fmt.Printf("  • %s\n", file)
	}
	fmt.Println("\nUse 'trustscan history <file>' to see the analysis history of a file.")

	return nil
}

// listReportHistory lists all stored reports for a specific file.
func listReportHistory(ctx context.Context, db *database.ResultDB, file string, jsonOutput bool) error {
	history, err := db.GetReportHistory(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("No analysis history found for %s\n", file)
		fmt.Println("\nUse 'trustscan analyze' to analyze this file.")
		return nil
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(history)
	}

	rows := make([][]string, 0, len(history))
	for _, meta := range history {
		rows = append(rows, []string{
			fmt.Sprintf("%d", meta.ID),
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.2f", meta.Score),
			string(meta.Decision),
			string(meta.Confidence),
		})
	}

	fmt.Printf("Analysis history for %s (%d reports):\n\n", file, len(history))
	fmt.Println(renderTable(
		[]string{"ID", "Date", "Score", "Decision", "Confidence"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	fmt.Println("\nUse 'trustscan history --id <id>' to see a full report.")

	return nil
}

// showReportByID prints one stored report in full.
func showReportByID(ctx context.Context, db *database.ResultDB, id int64, jsonOutput bool) error {
	trustReport, err := db.GetReportByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get report %d: %w", id, err)
	}
	if trustReport == nil {
		return fmt.Errorf("report with ID %d not found", id)
	}

	var w report.Writer
	if jsonOutput {
		w = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	} else {
		w = report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	}
	_, err = w.Write(trustReport)
	return err
}

// diffLatestReports compares the two most recent reports for a file.
func diffLatestReports(ctx context.Context, db *database.ResultDB, file string) error {
	history, err := db.GetReportHistory(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}
	if len(history) < 2 {
		return fmt.Errorf("at least 2 reports are required for comparison (found %d)", len(history))
	}

	// History is ordered newest first.
	current, previous := history[0], history[1]
	delta := current.Score - previous.Score

	fmt.Printf("Score change for %s:\n\n", file)
	fmt.Printf("  Previous: %.2f  %s (%s)  at %s\n",
		previous.Score, previous.Decision, previous.Confidence,
		previous.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Current:  %.2f  %s (%s)  at %s\n",
		current.Score, current.Decision, current.Confidence,
		current.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("\n  Delta:    %+.2f", delta)

	switch {
	case previous.Decision != current.Decision:
		fmt.Printf("  (decision changed: %s → %s)\n", previous.Decision, current.Decision)
	case delta == 0:
		fmt.Println("  (unchanged)")
	default:
		fmt.Println()
	}

	return nil
}

// listBatchJobs lists stored batch jobs.
func listBatchJobs(ctx context.Context, db *database.ResultDB, jsonOutput bool) error {
	jobs, err := db.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No batch jobs found in the database.")
		fmt.Println("\nUse 'trustscan analyze <file> <file> ...' to run a batch analysis.")
		return nil
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(jobs)
	}

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.ID.String(),
			job.StartTime.Format("2006-01-02 15:04:05"),
			job.Status.String(),
			fmt.Sprintf("%d/%d", job.Completed, job.Total),
			fmt.Sprintf("%d", len(job.Errors)),
			jobDuration(job),
		})
	}

	fmt.Printf("Batch jobs (%d):\n\n", len(jobs))
	fmt.Println(renderTable(
		[]string{"Job ID", "Started", "Status", "Progress", "Errors", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))

	return nil
}

// jobDuration formats a job's wall-clock duration, or "-" while running.
func jobDuration(job *model.BatchJob) string {
	if job.EndTime == nil {
		return "-"
	}
	return job.EndTime.Sub(job.StartTime).Round(time.Millisecond).String()
}
