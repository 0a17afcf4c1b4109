package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/phprefactor/pkg/observability"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Sentinel errors for configuration validation.
var (
	ErrInvalidLogLevel    = errors.New("invalid logging level")
	ErrInvalidLogFormat   = errors.New("invalid logging format")
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
	ErrInvalidColor       = errors.New("invalid color mode")
	ErrInvalidFormat      = errors.New("invalid output format")
)

var (
	logLevels     = map[string]slog.Level{"debug": slog.LevelDebug, "info": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError}
	logFormats    = []string{FormatText, FormatJSON}
	colorModes    = []string{ColorAuto, ColorAlways, ColorNever}
	outputFormats = []string{FormatText, FormatJSON, FormatYAML}
)

// Config is the top-level configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Logging       LoggingConfig       `mapstructure:"logging"`
	Limits        LimitsConfig        `mapstructure:"limits"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Output        OutputConfig        `mapstructure:"output"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LimitsConfig bounds accepted input.
type LimitsConfig struct {
	// MaxFileSize is a human-readable size such as "8 MiB"; "0" disables the limit.
	MaxFileSize string `mapstructure:"max_file_size"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
}

// MetricsConfig holds the Prometheus endpoint settings of the server modes.
type MetricsConfig struct {
	// Addr is the listen address of /metrics and /healthz; empty disables them.
	Addr string `mapstructure:"addr"`
}

// OutputConfig holds CLI presentation settings.
type OutputConfig struct {
	Color  string `mapstructure:"color"`
	Format string `mapstructure:"format"`
}

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.Logging.Level)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if !slices.Contains(logFormats, c.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Observability.SampleRatio)
	}

	if !slices.Contains(colorModes, c.Output.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Output.Color)
	}

	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	return nil
}

// MaxFileSizeBytes parses Limits.MaxFileSize.
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	size, err := humanize.ParseBytes(c.Limits.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, c.Limits.MaxFileSize, err)
	}

	return size, nil
}

// LogLevel returns the slog level named by Logging.Level.
func (c *Config) LogLevel() slog.Level {
	return logLevels[strings.ToLower(c.Logging.Level)]
}

// ObservabilityConfig builds the observability settings for the given mode.
// Prometheus is enabled when a metrics address is configured.
func (c *Config) ObservabilityConfig(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.Environment = c.Observability.Environment
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.SampleRatio = c.Observability.SampleRatio
	cfg.DebugTrace = c.Observability.DebugTrace
	cfg.LogLevel = c.LogLevel()
	cfg.LogJSON = c.Logging.Format == FormatJSON
	cfg.Prometheus = c.Metrics.Addr != ""

	return cfg
}
