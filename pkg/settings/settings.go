// Package settings resolves the defaults shared by the ciutils tools from a
// local .env file and CIUTILS_* environment variables. CLI flags override
// everything loaded here.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ai8future/chassis-go/v5/config"
	"github.com/joho/godotenv"
)

const (
	ConfigDirName = ".ciutils"
	DotEnvFile    = ".env"

	DefaultLogLevel     = "info"
	DefaultRetries      = 2
	DefaultTelnetBinary = "/usr/bin/telnet"
	DefaultScanLevel    = "ERROR"
)

// Settings holds the defaults every tool starts from
type Settings struct {
	LogLevel     string // debug, info, warn or error
	Retries      int    // download retries on chunked-transfer failures
	TelnetBinary string // telnet client launched by fix-telnet
	ScanLevel    string // default minimum level for find-log-messages
	LockDir      string // where download-log-files keeps its lock files
}

// EnvOverrides allows environment variables to override the built-in defaults.
// All fields are optional (required:"false"); only non-empty values apply.
// Merge order: defaults < .env < env vars < CLI flags.
type EnvOverrides struct {
	LogLevel     string `env:"CIUTILS_LOG_LEVEL" required:"false"`
	Retries      string `env:"CIUTILS_RETRIES" required:"false"`
	TelnetBinary string `env:"CIUTILS_TELNET_BINARY" required:"false"`
	ScanLevel    string `env:"CIUTILS_SCAN_LEVEL" required:"false"`
	LockDir      string `env:"CIUTILS_LOCK_DIR" required:"false"`
}

// GetConfigDir returns the path to the per-user directory (~/.ciutils)
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME") // fallback for legacy systems
	}
	return filepath.Join(home, ConfigDirName)
}

// GetDefaultSettings returns settings with the built-in defaults
func GetDefaultSettings() *Settings {
	return &Settings{
		LogLevel:     DefaultLogLevel,
		Retries:      DefaultRetries,
		TelnetBinary: DefaultTelnetBinary,
		ScanLevel:    DefaultScanLevel,
		LockDir:      filepath.Join(GetConfigDir(), "locks"),
	}
}

// Load returns the defaults with .env and environment overrides applied.
// A missing .env file is not an error.
func Load() (*Settings, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	s := GetDefaultSettings()
	if err := applyEnvOverrides(s); err != nil {
		return nil, err
	}
	return s, nil
}

// loadDotEnv populates unset environment variables from path.
// godotenv.Load never overrides variables that are already set.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// applyEnvOverrides loads environment variable overrides and merges them into settings.
func applyEnvOverrides(s *Settings) error {
	env := config.MustLoad[EnvOverrides]()

	if env.LogLevel != "" {
		s.LogLevel = strings.ToLower(env.LogLevel)
	}
	if env.Retries != "" {
		n, err := strconv.Atoi(env.Retries)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid CIUTILS_RETRIES %q: must be a non-negative integer", env.Retries)
		}
		s.Retries = n
	}
	if env.TelnetBinary != "" {
		s.TelnetBinary = expandTilde(env.TelnetBinary)
	}
	if env.ScanLevel != "" {
		s.ScanLevel = env.ScanLevel
	}
	if env.LockDir != "" {
		s.LockDir = expandTilde(env.LockDir)
	}
	return nil
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
			if home == "" {
				return path
			}
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
