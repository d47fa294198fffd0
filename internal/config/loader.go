package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// working directory and the home directory.
const DefaultConfigFile = ".revigodl"

// XDGConfigFile is the configuration file name inside XDGConfigDir().
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the revigodl configuration file.
//
// Example:
//
//	serviceURL: http://revigo.irb.hr/
//	rCommand: Rscript --vanilla
//	timeout: 5m
//	history: true
type File struct {
	// ServiceURL overrides the REVIGO root URL.
	ServiceURL string `yaml:"serviceURL,omitempty"`

	// RCommand overrides the R invocation.
	RCommand string `yaml:"rCommand,omitempty"`

	// UserAgent overrides the HTTP User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// OutputDir overrides the artifact directory.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// History enables the run history database.
	History bool `yaml:"history,omitempty"`

	// HistoryDir overrides the history database directory.
	HistoryDir string `yaml:"historyDir,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
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
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .revigodl in the current directory
// 3. config.yaml in the XDG config directory
// 4. .revigodl in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
