package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no input file or directory is given.
	ErrNoTarget = errors.New("no target specified: provide a media file or frame directory")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no concurrent analyses, stopping batch
	// processing entirely.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when the per-file timeout is negative.
	// Use 0 to disable the timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrProfileNotFound is returned when a requested profile is missing
	// from the config file.
	ErrProfileNotFound = errors.New("profile not found in configuration file")
)
