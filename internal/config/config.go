package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxWorkers of 3 concurrent analyses balances throughput with
	// memory usage; decoded frame sequences are large, so higher values
	// mainly trade memory for little wall-clock gain on typical machines.
	DefaultMaxWorkers = 3

	// DefaultFileTimeout bounds one per-file analysis. Signal math over a
	// sampled clip finishes well inside a minute; anything longer usually
	// means a pathological input, which should surface as a per-file
	// error instead of stalling the batch.
	DefaultFileTimeout = 60 * time.Second

	// DefaultServeAddr is the default listen address for the HTTP API.
	DefaultServeAddr = ":8095"

	// AppName is the application name used for XDG directory paths.
	AppName = "trustscan"
)

// Config holds all configuration options for trustscan.
// This struct is designed to be populated from CLI flags and the optional
// config file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Targets is the list of input files or frame directories to analyze.
	Targets []string

	// MaxWorkers is the number of concurrent analyses in batch mode.
	MaxWorkers int

	// FileTimeout bounds one per-file analysis. Zero disables the bound.
	FileTimeout time.Duration

	// Robustness enables adversarial robustness testing per input.
	Robustness bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .trustscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profile selects a named profile from the config file.
	Profile string

	// DBDir is the directory for the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB controls whether reports are persisted for history
	// queries.
	SaveToDB bool

	// ServeAddr is the listen address for the HTTP API server.
	ServeAddr string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxWorkers:  DefaultMaxWorkers,
		FileTimeout: DefaultFileTimeout,
		ServeAddr:   DefaultServeAddr,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for trustscan.
// On Linux: ~/.local/share/trustscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for trustscan.
// On Linux: ~/.config/trustscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for trustscan.
// On Linux: ~/.cache/trustscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast with clear messages, and return the first
// error found because fixing one often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.MaxWorkers <= 0 {
		return ErrInvalidWorkers
	}
	if c.FileTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ApplyProfile overlays values from a config-file profile onto c.
// Fields the profile leaves unset keep their current value.
func (c *Config) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	if p.MaxWorkers > 0 {
		c.MaxWorkers = p.MaxWorkers
	}
	if p.FileTimeout > 0 {
		c.FileTimeout = time.Duration(p.FileTimeout) * time.Second
	}
	if p.Robustness != nil {
		c.Robustness = *p.Robustness
	}
	if p.SaveToDB != nil {
		c.SaveToDB = *p.SaveToDB
	}
	if p.DBDir != "" {
		c.DBDir = p.DBDir
	}
	if p.ServeAddr != "" {
		c.ServeAddr = p.ServeAddr
	}
}
