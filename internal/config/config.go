// Package config provides configuration types, defaults, and validation for
// wheelhouse.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rcastell/wheelhouse/internal/log"
)

// Config holds all configuration options for wheelhouse.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	State   StateConfig   `mapstructure:"state"`
	Docs    DocsConfig    `mapstructure:"docs"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds the backend endpoints.
type ServerConfig struct {
	// BaseURL is the HTTP base for backend API calls.
	// Default: http://127.0.0.1:4664
	BaseURL string `mapstructure:"base_url"`

	// TransportURL is the websocket endpoint for push notices.
	// Default: ws://127.0.0.1:4664/api/events
	TransportURL string `mapstructure:"transport_url"`
}

// StateConfig controls where shell state is persisted.
type StateConfig struct {
	// Path is the SQLite file holding selection and panel state.
	// Default: ~/.local/share/wheelhouse/state.db
	Path string `mapstructure:"path"`
}

// DocsConfig controls how project docs are located.
type DocsConfig struct {
	// Dir is the docs directory name under the active project root.
	// Default: "docs"
	Dir string `mapstructure:"dir"`
}

// ThemeConfig overrides individual UI colors.
// Empty fields keep the built-in palette.
type ThemeConfig struct {
	// Highlight is the accent for selected and focused elements.
	Highlight string `mapstructure:"highlight"`

	// Subtle is used for secondary text such as help lines.
	Subtle string `mapstructure:"subtle"`

	// Error colors failure states.
	Error string `mapstructure:"error"`

	// Success colors healthy states.
	Success string `mapstructure:"success"`
}

// LogConfig controls the category log file.
type LogConfig struct {
	// File is the log destination.
	// Default: ~/.local/share/wheelhouse/wheelhouse.log
	File string `mapstructure:"file"`
}

// TracingConfig holds tracing configuration for backend calls and the push
// channel.
type TracingConfig struct {
	// Enabled turns span export on. Spans still record in-process when off.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter is one of "none", "file", "stdout", "otlp".
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is where the "file" exporter writes its JSONL stream.
	// Default: ~/.config/wheelhouse/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the gRPC collector address for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of traces kept, 0.0 through 1.0.
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:      "http://127.0.0.1:4664",
			TransportURL: "ws://127.0.0.1:4664/api/events",
		},
		State: StateConfig{
			Path: DefaultStatePath(),
		},
		Docs: DocsConfig{
			Dir: "docs",
		},
		Log: LogConfig{
			File: DefaultLogFilePath(),
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// underHome joins parts below the user home directory. Returns "" when the
// home directory cannot be resolved; callers treat that as "unset".
func underHome(parts ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home}, parts...)...)
}

// DefaultStatePath is ~/.local/share/wheelhouse/state.db.
func DefaultStatePath() string {
	return underHome(".local", "share", "wheelhouse", "state.db")
}

// DefaultLogFilePath is ~/.local/share/wheelhouse/wheelhouse.log.
func DefaultLogFilePath() string {
	return underHome(".local", "share", "wheelhouse", "wheelhouse.log")
}

// DefaultTracesFilePath is ~/.config/wheelhouse/traces/traces.jsonl.
func DefaultTracesFilePath() string {
	return underHome(".config", "wheelhouse", "traces", "traces.jsonl")
}

// hexColorRe matches six-digit hex colors like #7D56F4.
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate checks the full configuration and returns the first problem found.
func Validate(cfg Config) error {
	if err := ValidateServer(cfg.Server); err != nil {
		return err
	}
	if err := ValidateState(cfg.State); err != nil {
		return err
	}
	if err := ValidateDocs(cfg.Docs); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateServer checks the backend endpoint configuration. Empty URLs are
// valid and fall back to the defaults.
func ValidateServer(server ServerConfig) error {
	if server.BaseURL != "" {
		u, err := url.Parse(server.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("server.base_url must be an http or https URL, got %q", server.BaseURL)
		}
	}

	if server.TransportURL != "" {
		u, err := url.Parse(server.TransportURL)
		if err != nil || u.Host == "" || (u.Scheme != "ws" && u.Scheme != "wss") {
			return fmt.Errorf("server.transport_url must be a ws or wss URL, got %q", server.TransportURL)
		}
	}

	return nil
}

// ValidateState checks the state database configuration.
func ValidateState(state StateConfig) error {
	if state.Path != "" && !filepath.IsAbs(state.Path) {
		return fmt.Errorf("state.path must be an absolute path, got %q", state.Path)
	}

	return nil
}

// ValidateDocs checks the docs configuration.
func ValidateDocs(docs DocsConfig) error {
	// Dir is a single directory name under the project root, not a path
	if docs.Dir != "" && (strings.ContainsAny(docs.Dir, `/\`) || docs.Dir == "." || docs.Dir == "..") {
		return fmt.Errorf("docs.dir must be a plain directory name, got %q", docs.Dir)
	}

	return nil
}

// ValidateTheme checks color overrides. Empty values keep the built-in
// palette.
func ValidateTheme(theme ThemeConfig) error {
	colors := []struct {
		key   string
		value string
	}{
		{"theme.highlight", theme.Highlight},
		{"theme.subtle", theme.Subtle},
		{"theme.error", theme.Error},
		{"theme.success", theme.Success},
	}

	for _, c := range colors {
		if c.value == "" {
			continue
		}
		if !hexColorRe.MatchString(c.value) {
			return fmt.Errorf("%s must be a hex color like \"#7D56F4\", got %q", c.key, c.value)
		}
	}

	return nil
}

// ValidateTracing checks the tracing section. Exporter destinations are
// only required while tracing is enabled, so a disabled section may stay
// half filled in.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	switch tracing.Exporter {
	case "", "none", "stdout":
	case "file":
		if tracing.Enabled && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
	case "otlp":
		if tracing.Enabled && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
	}

	return nil
}

// DefaultConfigTemplate is the commented YAML written on first run.
func DefaultConfigTemplate() string {
	return `# Wheelhouse Configuration

# Backend endpoints
server:
  base_url: http://127.0.0.1:4664
  transport_url: ws://127.0.0.1:4664/api/events

# Shell state database (selection, panel visibility)
# state:
#   path: /home/you/.local/share/wheelhouse/state.db

# Docs directory name under the active project root
# docs:
#   dir: docs

# Color overrides (hex values; unset keys keep the built-in palette)
# theme:
#   highlight: "#7D56F4"
#   subtle: "#6C6C6C"
#   error: "#FF5555"
#   success: "#73F59F"

# Log file location
# log:
#   file: /home/you/.local/share/wheelhouse/wheelhouse.log

# Tracing for backend calls and the push channel
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/wheelhouse/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig writes the commented template to configPath, creating
// parent directories as needed.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
