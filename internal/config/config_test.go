package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("MaxWorkers = %d, want %d", c.MaxWorkers, DefaultMaxWorkers)
	}
	if c.FileTimeout != DefaultFileTimeout {
		t.Errorf("FileTimeout = %v, want %v", c.FileTimeout, DefaultFileTimeout)
	}
	if c.ServeAddr != DefaultServeAddr {
		t.Errorf("ServeAddr = %q, want %q", c.ServeAddr, DefaultServeAddr)
	}
	if !c.SaveToDB {
		t.Error("SaveToDB = false, want true")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.Targets = []string{"clip.mp4"}
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.MaxWorkers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.FileTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "conflicting formats",
			mutate:  func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigApplyProfile(t *testing.T) {
	t.Parallel()

	robustness := true
	noSave := false
	c := NewConfig()
	c.ApplyProfile(&Profile{
		MaxWorkers:  8,
		FileTimeout: 120,
		Robustness:  &robustness,
		SaveToDB:    &noSave,
		DBDir:       "/tmp/ts",
	})

	if c.MaxWorkers != 8 {
		t.Errorf("MaxWorkers = %d, want 8", c.MaxWorkers)
	}
	if c.FileTimeout != 120*time.Second {
		t.Errorf("FileTimeout = %v, want 2m", c.FileTimeout)
	}
	if !c.Robustness || c.SaveToDB {
		t.Errorf("Robustness/SaveToDB = %v/%v, want true/false", c.Robustness, c.SaveToDB)
	}
	if c.DBDir != "/tmp/ts" {
		t.Errorf("DBDir = %q, want /tmp/ts", c.DBDir)
	}

	// A nil profile leaves everything untouched.
	before := *c
	c.ApplyProfile(nil)
	if c.MaxWorkers != before.MaxWorkers || c.FileTimeout != before.FileTimeout ||
		c.Robustness != before.Robustness || c.DBDir != before.DBDir {
		t.Error("ApplyProfile(nil) modified the config")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	content := `
defaults:
  workers: 4
  save: true
profiles:
  thorough:
    workers: 2
    timeout_seconds: 300
    robustness: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cf.Defaults.MaxWorkers != 4 {
		t.Errorf("defaults workers = %d, want 4", cf.Defaults.MaxWorkers)
	}

	p, err := cf.ProfileByName("thorough")
	if err != nil {
		t.Fatalf("ProfileByName() error = %v", err)
	}
	if p.FileTimeout != 300 || p.Robustness == nil || !*p.Robustness {
		t.Errorf("thorough profile = %+v", p)
	}

	if _, err := cf.ProfileByName("missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("ProfileByName(missing) error = %v, want %v", err, ErrProfileNotFound)
	}
	if p, err := cf.ProfileByName(""); p != nil || err != nil {
		t.Errorf("ProfileByName(\"\") = %v, %v, want nil, nil", p, err)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadConfigFile() error = %v, want %v", err, ErrConfigNotFound)
	}
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte("defaults: ["), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("LoadConfigFile() = nil error for invalid YAML, want error")
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}
