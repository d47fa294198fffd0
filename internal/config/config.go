package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/revigodl/internal/model"
)

// Default configuration values.
const (
	// DefaultServiceURL is the REVIGO web service root.
	DefaultServiceURL = "http://revigo.irb.hr/"

	// DefaultRCommand runs a script non-interactively and writes <script>.Rout.
	DefaultRCommand = "R CMD BATCH"

	// DefaultOutputDir is the directory artifacts are written to.
	DefaultOutputDir = "."

	// DefaultTimeout of zero leaves HTTP requests unbounded.
	DefaultTimeout time.Duration = 0

	// DefaultUserAgent identifies revigodl in HTTP requests.
	DefaultUserAgent = "revigodl/1.0 (+https://github.com/nao1215/revigodl)"

	// DefaultSummaryFormat is the format of the run summary and history.
	DefaultSummaryFormat = "markdown"

	// DefaultHistoryLimit is the number of runs listed by "revigodl history".
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "revigodl"
)

// Config holds all configuration options for a revigodl run.
// It is populated from the config file and CLI flags and passed down
// explicitly rather than kept in globals.
type Config struct {
	// InputPath is the GO term list to submit.
	InputPath string

	// Prefix is the raw output prefix as given by the user.
	// Use OutputPrefix() to get the normalized form.
	Prefix string

	// Suppress lists the artifacts that must not be written.
	Suppress map[model.ArtifactKind]bool

	// OutputDir is the directory artifacts are written into.
	OutputDir string

	// ServiceURL is the REVIGO root URL the GO list is posted to.
	ServiceURL string

	// RCommand is the command line used to run R scripts.
	// The script file name is appended as the last argument.
	RCommand string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// HistoryDir is the directory holding the history database.
	HistoryDir string

	// Summary prints a summary of the run to stdout.
	Summary bool

	// SummaryFormat is the summary format: text, markdown or json.
	SummaryFormat string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Suppress:   make(map[model.ArtifactKind]bool),
		OutputDir:  DefaultOutputDir,
		ServiceURL: DefaultServiceURL,
		RCommand:   DefaultRCommand,
		UserAgent:  DefaultUserAgent,
		Timeout:    DefaultTimeout,
		HistoryDir: XDGDataDir(),

		SummaryFormat: DefaultSummaryFormat,
	}
}

// OutputPrefix returns the prefix prepended to artifact file names.
// A non-empty prefix gets a trailing underscore: "run1" becomes "run1_".
func (c *Config) OutputPrefix() string {
	return NormalizePrefix(c.Prefix)
}

// NormalizePrefix applies the prefix rule used for artifact file names.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + "_"
}

// IsSuppressed reports whether the artifact kind must not be written.
func (c *Config) IsSuppressed(kind model.ArtifactKind) bool {
	return c.Suppress[kind]
}

// SetSuppressed marks an artifact kind as suppressed or enabled.
func (c *Config) SetSuppressed(kind model.ArtifactKind, suppressed bool) {
	if c.Suppress == nil {
		c.Suppress = make(map[model.ArtifactKind]bool)
	}
	c.Suppress[kind] = suppressed
}

// ApplyFile overlays values from a configuration file.
// Only non-zero file values replace the current ones.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.ServiceURL != "" {
		c.ServiceURL = f.ServiceURL
	}
	if f.RCommand != "" {
		c.RCommand = f.RCommand
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.History {
		c.SaveHistory = true
	}
	if f.HistoryDir != "" {
		c.HistoryDir = f.HistoryDir
	}
}

// XDGDataDir returns the XDG data directory for revigodl.
// On Linux: ~/.local/share/revigodl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for revigodl.
// On Linux: ~/.config/revigodl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return ErrNoInput
	}

	u, err := url.Parse(c.ServiceURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServiceURL
	}

	if strings.TrimSpace(c.RCommand) == "" {
		return ErrEmptyRCommand
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	return nil
}
