// Package config loads phprefactor settings from .phprefactor.yaml,
// PHPREFACTOR_* environment variables, and built-in defaults.
package config

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = FormatText
)

// Limit defaults.
const (
	DefaultMaxFileSize = "8 MiB"
)

// Observability defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 0.0
	DefaultMetricsAddr  = ""
)

// Output defaults.
const (
	DefaultOutputColor  = ColorAuto
	DefaultOutputFormat = FormatText
)
