package runner

import (
	"fmt"
	"strings"

	"ciutils/pkg/colors"
)

// Re-export color constants from colors package for the usage printer.
const (
	Bold    = colors.Bold
	Dim     = colors.Dim
	Green   = colors.Green
	Yellow  = colors.Yellow
	Magenta = colors.Magenta
	Cyan    = colors.Cyan
	Reset   = colors.Reset
)

// Exit codes returned by the tools
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the options common to every tool
type Config struct {
	LogLevel    string   // Explicit --log-level value
	Verbose     bool     // Force debug logging
	StatsJSON   bool     // Print the result envelope as JSON at completion
	Args        []string // Positional arguments left after flag parsing
	OriginalCmd string   // Original command string for the envelope
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{}
}

// EffectiveLogLevel resolves the level the logger should run at.
func (c *Config) EffectiveLogLevel(fallback string) string {
	if c.Verbose {
		return "debug"
	}
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return fallback
}

// ValidateLogLevel checks a level string against the accepted set.
func ValidateLogLevel(level string) error {
	for _, valid := range validLogLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level '%s'. Valid options: %s", level, strings.Join(validLogLevels, ", "))
}
