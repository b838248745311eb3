package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".trustscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Profile is a reusable set of analysis options. The file-level defaults
// and every named profile share this shape.
type Profile struct {
	// MaxWorkers overrides the batch concurrency cap when positive.
	MaxWorkers int `yaml:"workers,omitempty"`

	// FileTimeout overrides the per-file timeout in seconds when positive.
	FileTimeout int `yaml:"timeout_seconds,omitempty"`

	// Robustness toggles adversarial testing. Nil leaves the CLI value.
	Robustness *bool `yaml:"robustness,omitempty"`

	// SaveToDB toggles report persistence. Nil leaves the CLI value.
	SaveToDB *bool `yaml:"save,omitempty"`

	// DBDir overrides the history database directory when set.
	DBDir string `yaml:"db_dir,omitempty"`

	// ServeAddr overrides the HTTP listen address when set.
	ServeAddr string `yaml:"serve_addr,omitempty"`
}

// File is the parsed configuration file: global defaults plus named
// profiles selectable with --profile.
type File struct {
	// Defaults applies to every run.
	Defaults Profile `yaml:"defaults"`

	// Profiles holds named option sets, e.g. a "thorough" profile with
	// robustness enabled and a longer timeout.
	Profiles map[string]Profile `yaml:"profiles"`
}

// ProfileByName returns the named profile, or an error when it does not
// exist. An empty name returns nil so callers can pass the flag value
// through unchecked.
func (f *File) ProfileByName(name string) (*Profile, error) {
	if name == "" {
		return nil, nil
	}
	p, ok := f.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return &p, nil
}

// LoadConfigFile loads a configuration file from path.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this based on whether the path was explicitly given.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	if cf.Profiles == nil {
		cf.Profiles = make(map[string]Profile)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in order:
// 1. If configPath is specified, use it directly
// 2. Look for .trustscan in the current directory
// 3. Look for .trustscan in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
