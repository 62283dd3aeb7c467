package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape.
type FileConfig struct {
	APIURL       *string `yaml:"api_url"`
	Timeout      *string `yaml:"timeout"`
	NoColor      *bool   `yaml:"no_color"`
	Language     *string `yaml:"language"`
	FailOn       *string `yaml:"fail_on"`
	ExportFormat *string `yaml:"export_format"`
	ExportDir    *string `yaml:"export_dir"`
	LogLevel     *string `yaml:"log_level"`
}

// LocalNames are the repo-local file names searched, in order.
var LocalNames = []string{".codeguardian.yml", ".codeguardian.yaml", "codeguardian.yml", "codeguardian.yaml"}

// LoadFile reads a YAML config file from the provided path. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in dir.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, fmt.Errorf("no local config in %s: %w", dir, os.ErrNotExist)
}

// GlobalPath returns $XDG_CONFIG_HOME/codeguardian/config.yml, falling back
// to ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "codeguardian", "config.yml"), nil
}

// LoadGlobal loads the user-wide config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, fmt.Errorf("no global config at %s: %w", p, os.ErrNotExist)
}

// Validate checks values that can be checked without other packages.
func (fc FileConfig) Validate() error {
	if fc.Timeout != nil {
		if _, err := time.ParseDuration(*fc.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	if fc.APIURL != nil {
		u := strings.TrimSpace(*fc.APIURL)
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("api_url must be an http(s) URL, got %q", u)
		}
	}
	return nil
}

// TimeoutDuration returns the parsed timeout or zero when unset.
func (fc FileConfig) TimeoutDuration() time.Duration {
	if fc.Timeout == nil {
		return 0
	}
	d, _ := time.ParseDuration(*fc.Timeout)
	return d
}

// Merge returns fc with every unset field taken from lower.
func (fc FileConfig) Merge(lower FileConfig) FileConfig {
	out := fc
	if out.APIURL == nil {
		out.APIURL = lower.APIURL
	}
	if out.Timeout == nil {
		out.Timeout = lower.Timeout
	}
	if out.NoColor == nil {
		out.NoColor = lower.NoColor
	}
	if out.Language == nil {
		out.Language = lower.Language
	}
	if out.FailOn == nil {
		out.FailOn = lower.FailOn
	}
	if out.ExportFormat == nil {
		out.ExportFormat = lower.ExportFormat
	}
	if out.ExportDir == nil {
		out.ExportDir = lower.ExportDir
	}
	if out.LogLevel == nil {
		out.LogLevel = lower.LogLevel
	}
	return out
}

// Template is written by "config init".
const Template = `# Code Guardian configuration
api_url: http://localhost:8085/api
timeout: 30s
# language: python
# fail_on: high
export_format: json
# export_dir: ./reports
log_level: warn
no_color: false
`
