package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/trustscan-dev/trustscan/internal/model"
)

// ResultDB provides SQLite-based storage for trust reports and batch job
// summaries. It manages connection pooling and provides methods for
// saving and querying analysis history.
//
// Design decision: we use one database file for all analyses rather than
// a file per input. History queries (same file over time, latest report)
// are the common access pattern and need a single table to scan.
type ResultDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ResultDB at the specified directory.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, "trustscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ResultDB) createTables() error {
	schema := `
	-- Trust reports store complete analysis results as JSON with
	-- queryable summary columns alongside.
	CREATE TABLE IF NOT EXISTS trust_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		trust_score REAL NOT NULL,
		decision TEXT NOT NULL,
		confidence TEXT NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_file ON trust_reports(file);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON trust_reports(timestamp);
	CREATE INDEX IF NOT EXISTS idx_reports_decision ON trust_reports(decision);

	-- Batch jobs store final job snapshots for later inspection.
	CREATE TABLE IF NOT EXISTS batch_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		total INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		job_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_timestamp ON batch_jobs(timestamp);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport persists a trust report.
func (rdb *ResultDB) SaveReport(ctx context.Context, report *model.TrustReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO trust_reports (file, trust_score, decision, confidence, report_json)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err = rdb.db.ExecContext(ctx, query,
		report.File,
		report.Score,
		report.Decision.String(),
		report.Confidence.String(),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetLatestReport retrieves the most recent report for a file, or nil
// when the file was never analyzed.
func (rdb *ResultDB) GetLatestReport(ctx context.Context, file string) (*model.TrustReport, error) {
	query := `
	SELECT report_json FROM trust_reports
	WHERE file = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, file).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.TrustReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ReportMetadata is the summary row shown in history listings without
// loading the full report JSON.
type ReportMetadata struct {
	// ID is the report's database id.
	ID int64

	// File is the analyzed input path.
	File string

	// Timestamp is when the analysis was stored.
	Timestamp time.Time

	// Score is the fused trust score.
	Score float64

	// Decision is the categorical verdict.
	Decision model.Decision

	// Confidence is the reported confidence label.
	Confidence model.ConfidenceLevel
}

// GetReportHistory retrieves metadata for all reports, newest first.
// A non-empty file filters to that input.
func (rdb *ResultDB) GetReportHistory(ctx context.Context, file string) ([]ReportMetadata, error) {
	query := `
	SELECT id, file, timestamp, trust_score, decision, confidence
	FROM trust_reports
	`
	args := make([]any, 0, 1)
	if file != "" {
		query += " WHERE file = ?"
		args = append(args, file)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp, decision, confidence string

		if err := rows.Scan(&meta.ID, &meta.File, &timestamp, &meta.Score, &decision, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Decision = model.Decision(decision)
		meta.Confidence = model.ConfidenceLevel(confidence)
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetReportByID retrieves a full report by its database id, or nil when
// the id is unknown.
func (rdb *ResultDB) GetReportByID(ctx context.Context, id int64) (*model.TrustReport, error) {
	query := `
	SELECT report_json FROM trust_reports
	WHERE id = ?
	`

	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.TrustReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListAnalyzedFiles returns the distinct input paths with stored reports.
func (rdb *ResultDB) ListAnalyzedFiles(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT file FROM trust_reports
	ORDER BY file
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var file string
		if err := rows.Scan(&file); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// SaveJob persists a final batch job snapshot. Saving the same job id
// again replaces the stored snapshot.
func (rdb *ResultDB) SaveJob(ctx context.Context, job *model.BatchJob) error {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to serialize job: %w", err)
	}

	query := `
	INSERT INTO batch_jobs (job_id, status, total, completed, error_count, job_json)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(job_id) DO UPDATE SET
		status = excluded.status,
		completed = excluded.completed,
		error_count = excluded.error_count,
		job_json = excluded.job_json,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err = rdb.db.ExecContext(ctx, query,
		job.ID.String(),
		job.Status.String(),
		job.Total,
		job.Completed,
		len(job.Errors),
		string(jobJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// GetJob retrieves a stored batch job snapshot by job id, or nil when
// unknown.
func (rdb *ResultDB) GetJob(ctx context.Context, jobID string) (*model.BatchJob, error) {
	query := `
	SELECT job_json FROM batch_jobs
	WHERE job_id = ?
	`

	var jobJSON string
	err := rdb.db.QueryRowContext(ctx, query, jobID).Scan(&jobJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job model.BatchJob
	if err := json.Unmarshal([]byte(jobJSON), &job); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	return &job, nil
}

// ListJobs returns stored job snapshots, newest first.
func (rdb *ResultDB) ListJobs(ctx context.Context) ([]*model.BatchJob, error) {
	query := `
	SELECT job_json FROM batch_jobs
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.BatchJob
	for rows.Next() {
		var jobJSON string
		if err := rows.Scan(&jobJSON); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		var job model.BatchJob
		if err := json.Unmarshal([]byte(jobJSON), &job); err != nil {
			continue // skip malformed snapshots
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats, returning zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
