package settings

import (
	"os"
	"path/filepath"
	"testing"

	chassis "github.com/ai8future/chassis-go/v5"
	"github.com/ai8future/chassis-go/v5/testkit"
)

func TestMain(m *testing.M) {
	chassis.RequireMajor(5)
	os.Exit(m.Run())
}

func clearEnv(t *testing.T) {
	t.Helper()
	testkit.SetEnv(t, map[string]string{
		"CIUTILS_LOG_LEVEL":     "",
		"CIUTILS_RETRIES":       "",
		"CIUTILS_TELNET_BINARY": "",
		"CIUTILS_SCAN_LEVEL":    "",
		"CIUTILS_LOCK_DIR":      "",
	})
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde prefix", "~/foo/bar", filepath.Join(home, "foo/bar")},
		{"just tilde", "~", home},
		{"no tilde", "/absolute/path", "/absolute/path"},
		{"tilde in middle", "/foo/~/bar", "/foo/~/bar"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandTilde(tt.input)
			if result != tt.expected {
				t.Errorf("expandTilde(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetDefaultSettings(t *testing.T) {
	s := GetDefaultSettings()

	if s.Retries != 2 {
		t.Errorf("Retries = %d, want 2", s.Retries)
	}
	if s.TelnetBinary != "/usr/bin/telnet" {
		t.Errorf("TelnetBinary = %q, want /usr/bin/telnet", s.TelnetBinary)
	}
	if s.ScanLevel != "ERROR" {
		t.Errorf("ScanLevel = %q, want ERROR", s.ScanLevel)
	}
	if filepath.Base(s.LockDir) != "locks" {
		t.Errorf("LockDir = %q, want a locks directory", s.LockDir)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	testkit.SetEnv(t, map[string]string{
		"CIUTILS_LOG_LEVEL":     "DEBUG",
		"CIUTILS_RETRIES":       "5",
		"CIUTILS_TELNET_BINARY": "/opt/bin/telnet",
		"CIUTILS_SCAN_LEVEL":    "warning",
		"CIUTILS_LOCK_DIR":      "/tmp/ciutils-locks",
	})

	s := GetDefaultSettings()
	if err := applyEnvOverrides(s); err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}

	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", s.LogLevel)
	}
	if s.Retries != 5 {
		t.Errorf("Retries = %d, want 5", s.Retries)
	}
	if s.TelnetBinary != "/opt/bin/telnet" {
		t.Errorf("TelnetBinary = %q", s.TelnetBinary)
	}
	if s.ScanLevel != "warning" {
		t.Errorf("ScanLevel = %q, want warning", s.ScanLevel)
	}
	if s.LockDir != "/tmp/ciutils-locks" {
		t.Errorf("LockDir = %q", s.LockDir)
	}
}

func TestApplyEnvOverrides_InvalidRetries(t *testing.T) {
	clearEnv(t)
	testkit.SetEnv(t, map[string]string{"CIUTILS_RETRIES": "-1"})

	if err := applyEnvOverrides(GetDefaultSettings()); err == nil {
		t.Error("expected error for negative retries")
	}
}

func TestApplyEnvOverrides_NoEnvVarsSet(t *testing.T) {
	clearEnv(t)

	s := GetDefaultSettings()
	if err := applyEnvOverrides(s); err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}

	if *s != *GetDefaultSettings() {
		t.Errorf("settings changed without env vars: %+v", s)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even when empty
	t.Setenv("CIUTILS_RETRIES", "")
	os.Unsetenv("CIUTILS_RETRIES")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CIUTILS_RETRIES=7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	s := GetDefaultSettings()
	if err := applyEnvOverrides(s); err != nil {
		t.Fatalf("applyEnvOverrides: %v", err)
	}
	if s.Retries != 7 {
		t.Errorf("Retries = %d, want 7 from .env", s.Retries)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}
