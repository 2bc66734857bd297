package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"testing"
	"time"

	"ciutils/pkg/envelope"
	"ciutils/pkg/settings"
)

// fakeTool records what the runner hands it.
type fakeTool struct {
	name      string
	output    string
	args      []string
	configErr error
	execErr   error
	executed  bool
	logLevel  string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "Does fake things." }
func (f *fakeTool) Synopsis() string    { return "INPUT" }

func (f *fakeTool) ToolSpecificFlags() []FlagDef {
	return []FlagDef{{Short: "-o", Long: "--output", Description: "Where to write", TakesArg: true, ArgName: "<dir>"}}
}

func (f *fakeTool) DefineFlags(fs *flag.FlagSet, s *settings.Settings) {
	fs.StringVar(&f.output, "o", "", "")
	fs.StringVar(&f.output, "output", "", "")
}

func (f *fakeTool) Configure(args []string) error {
	f.args = args
	return f.configErr
}

func (f *fakeTool) Execute(ctx context.Context, env *Env) error {
	f.executed = true
	switch {
	case env.Logger.Enabled(ctx, -4):
		f.logLevel = "debug"
	case env.Logger.Enabled(ctx, 0):
		f.logLevel = "info"
	default:
		f.logLevel = "quiet"
	}
	fmt.Fprintln(env.Stdout, "working")
	return f.execErr
}

func (f *fakeTool) StatsJSONFields() map[string]interface{} {
	return map[string]interface{}{"output": f.output}
}

func newTestRunner(tool Tool) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Runner{
		Tool:     tool,
		Settings: settings.GetDefaultSettings(),
		Stdout:   &stdout,
		Stderr:   &stderr,
	}, &stdout, &stderr
}

func TestRunError(t *testing.T) {
	result := runError(1, fmt.Errorf("test error"))

	if result.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", result.ExitCode)
	}
	if result.Error == nil {
		t.Fatal("expected error to be set")
	}
	if result.Error.Error() != "test error" {
		t.Errorf("expected error message 'test error', got %q", result.Error.Error())
	}
}

func TestExitError(t *testing.T) {
	base := errors.New("bad level")

	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{"message wins", &ExitError{Code: 1, Message: "custom", Err: base}, "custom"},
		{"wrapped error", &ExitError{Code: 2, Err: base}, "bad level"},
		{"bare code", &ExitError{Code: 3}, "exit status 3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("Error() = %q, want %q", got, tc.want)
			}
		})
	}

	if !errors.Is(UsageError(base), base) {
		t.Error("UsageError should unwrap to its cause")
	}
	if code := exitCodeFor(fmt.Errorf("wrapped: %w", UsageError(base)), ExitFailure); code != ExitUsage {
		t.Errorf("exitCodeFor wrapped usage error = %d, want %d", code, ExitUsage)
	}
	if code := exitCodeFor(base, ExitFailure); code != ExitFailure {
		t.Errorf("exitCodeFor plain error = %d, want %d", code, ExitFailure)
	}
}

func TestRun_Success(t *testing.T) {
	tool := &fakeTool{name: "fake"}
	r, stdout, _ := newTestRunner(tool)

	result := r.Run(context.Background(), []string{"input.txt", "-o", "out"})

	if result.ExitCode != ExitOK || result.Error != nil {
		t.Fatalf("Run() = %d, %v; want 0, nil", result.ExitCode, result.Error)
	}
	if !tool.executed {
		t.Error("expected Execute to be called")
	}
	if tool.output != "out" {
		t.Errorf("output flag = %q, want 'out'", tool.output)
	}
	if len(tool.args) != 1 || tool.args[0] != "input.txt" {
		t.Errorf("positional args = %v, want [input.txt]", tool.args)
	}
	if stdout.String() != "working\n" {
		t.Errorf("stdout = %q, want only tool output", stdout.String())
	}
	if result.Envelope == nil || result.Envelope.Status != envelope.StatusSuccess {
		t.Errorf("expected success envelope, got %+v", result.Envelope)
	}
}

func TestRun_ExecuteFailure(t *testing.T) {
	tool := &fakeTool{name: "fake", execErr: errors.New("server said 500")}
	r, _, _ := newTestRunner(tool)

	result := r.Run(context.Background(), []string{"input"})

	if result.ExitCode != ExitFailure {
		t.Errorf("exit code = %d, want %d", result.ExitCode, ExitFailure)
	}
	if result.Envelope.Status != envelope.StatusFailure {
		t.Errorf("envelope status = %q, want failure", result.Envelope.Status)
	}
	if result.Envelope.Error == nil || result.Envelope.Error.Message != "server said 500" {
		t.Errorf("envelope error = %+v", result.Envelope.Error)
	}
}

func TestRun_ExecuteExitError(t *testing.T) {
	tool := &fakeTool{name: "fake", execErr: &ExitError{Code: 7, Message: "seven"}}
	r, _, _ := newTestRunner(tool)

	result := r.Run(context.Background(), []string{"input"})
	if result.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", result.ExitCode)
	}
}

func TestRun_ConfigureErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"plain error is usage", errors.New("missing input"), ExitUsage},
		{"exit error keeps its code", &ExitError{Code: ExitFailure, Err: errors.New("malformed")}, ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := &fakeTool{name: "fake", configErr: tc.err}
			r, _, _ := newTestRunner(tool)

			result := r.Run(context.Background(), nil)
			if result.ExitCode != tc.wantCode {
				t.Errorf("exit code = %d, want %d", result.ExitCode, tc.wantCode)
			}
			if tool.executed {
				t.Error("Execute must not run after a Configure error")
			}
		})
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope", "input"}},
		{"missing flag value", []string{"-o"}},
		{"bad log level", []string{"--log-level", "loud", "input"}},
		{"conflicting duplicates", []string{"-o", "a", "--output", "b", "input"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := &fakeTool{name: "fake"}
			r, _, _ := newTestRunner(tool)

			result := r.Run(context.Background(), tc.args)
			if result.ExitCode != ExitUsage {
				t.Errorf("exit code = %d, want %d (err: %v)", result.ExitCode, ExitUsage, result.Error)
			}
			if result.Error == nil {
				t.Error("expected an error")
			}
			if tool.executed {
				t.Error("Execute must not run on a usage error")
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		t.Run(arg, func(t *testing.T) {
			tool := &fakeTool{name: "fake"}
			r, stdout, _ := newTestRunner(tool)

			result := r.Run(context.Background(), []string{arg})
			if result.ExitCode != ExitOK || result.Error != nil {
				t.Fatalf("Run(%s) = %d, %v", arg, result.ExitCode, result.Error)
			}
			if tool.executed {
				t.Error("Execute must not run when help is shown")
			}
			out := stdout.String()
			for _, want := range []string{"Usage:", "fake", "INPUT", "--output", "Common Options", "--stats-json", "CIUTILS_"} {
				if !strings.Contains(out, want) {
					t.Errorf("help output missing %q", want)
				}
			}
		})
	}
}

func TestRun_LogLevels(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		settings string
		want     string
	}{
		{"settings default", []string{"in"}, "info", "info"},
		{"settings quiet", []string{"in"}, "error", "quiet"},
		{"flag overrides settings", []string{"--log-level", "DEBUG", "in"}, "error", "debug"},
		{"verbose wins", []string{"-v", "--log-level=error", "in"}, "info", "debug"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := &fakeTool{name: "fake"}
			r, _, _ := newTestRunner(tool)
			r.Settings.LogLevel = tc.settings

			result := r.Run(context.Background(), tc.args)
			if result.Error != nil {
				t.Fatalf("unexpected error: %v", result.Error)
			}
			if tool.logLevel != tc.want {
				t.Errorf("log level = %q, want %q", tool.logLevel, tc.want)
			}
		})
	}
}

func TestRun_StatsJSON(t *testing.T) {
	tool := &fakeTool{name: "fake"}
	r, stdout, _ := newTestRunner(tool)

	result := r.Run(context.Background(), []string{"-J", "-o", "dest", "input"})
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}

	out := strings.TrimPrefix(stdout.String(), "working\n")
	var env envelope.Envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("stats output is not JSON: %v\n%s", err, out)
	}
	if env.Status != envelope.StatusSuccess {
		t.Errorf("status = %q, want success", env.Status)
	}
	if env.Result["output"] != "dest" {
		t.Errorf("result.output = %v, want dest", env.Result["output"])
	}
	if cmd, _ := env.Result["command"].(string); !strings.HasPrefix(cmd, "fake ") {
		t.Errorf("result.command = %q", cmd)
	}
	if env.Metrics == nil || env.Metrics.Tool != "fake" {
		t.Errorf("metrics = %+v", env.Metrics)
	}
}

func TestRun_NoStatsWithoutFlag(t *testing.T) {
	tool := &fakeTool{name: "fake"}
	r, stdout, _ := newTestRunner(tool)

	r.Run(context.Background(), []string{"input"})
	if strings.Contains(stdout.String(), "{") {
		t.Errorf("unexpected JSON on stdout: %q", stdout.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{75 * time.Second, "1m 15s"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, ok := range []string{"debug", "info", "warn", "error"} {
		if err := ValidateLogLevel(ok); err != nil {
			t.Errorf("ValidateLogLevel(%q) = %v", ok, err)
		}
	}
	if err := ValidateLogLevel("trace"); err == nil {
		t.Error("expected error for 'trace'")
	}
}
