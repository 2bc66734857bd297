package runner

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ciutils/pkg/envelope"
	"ciutils/pkg/settings"
)

// Runner drives a Tool through flag parsing, configuration and execution
type Runner struct {
	Tool     Tool
	Settings *settings.Settings
	Stdout   io.Writer
	Stderr   io.Writer
}

// RunResult holds the result of a Run() invocation
type RunResult struct {
	ExitCode int
	Error    error
	Envelope *envelope.Envelope
}

// ExitError is an error that carries the process exit code to use.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// UsageError wraps err as an ExitError with the usage exit code.
func UsageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Err: err}
}

// runError creates a RunResult for an error condition
func runError(code int, err error) *RunResult {
	return &RunResult{ExitCode: code, Error: err}
}

// exitCodeFor picks the exit code for err, honoring an embedded ExitError.
func exitCodeFor(err error, fallback int) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return fallback
}

// NewRunner creates a new Runner for the given tool writing to the process streams
func NewRunner(tool Tool) *Runner {
	return &Runner{
		Tool:   tool,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// RunAndExit runs the tool and exits with the appropriate code
// This is the entry point for CLI binaries
func (r *Runner) RunAndExit() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	result := r.Run(ctx, os.Args[1:])
	stop()
	if result.Error != nil {
		fmt.Fprintln(os.Stderr, result.Error)
	}
	os.Exit(result.ExitCode)
}

// Run loads settings, parses args, and executes the tool
func (r *Runner) Run(ctx context.Context, args []string) *RunResult {
	if r.Settings == nil {
		s, err := settings.Load()
		if err != nil {
			return runError(ExitUsage, err)
		}
		r.Settings = s
	}

	cfg, err := r.parseArgs(args)
	if err != nil {
		return runError(exitCodeFor(err, ExitUsage), err)
	}
	if cfg == nil {
		// Help was shown, exit cleanly
		return &RunResult{ExitCode: ExitOK}
	}

	if err := r.Tool.Configure(cfg.Args); err != nil {
		return runError(exitCodeFor(err, ExitUsage), err)
	}

	logger := NewLogger(cfg.EffectiveLogLevel(r.Settings.LogLevel), r.Stderr)
	env := &Env{
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		Logger:   logger,
		Settings: r.Settings,
	}

	logger.Debug("Starting run", "tool", r.Tool.Name(), "args", cfg.OriginalCmd)
	startTime := time.Now()
	execErr := r.Tool.Execute(ctx, env)
	endTime := time.Now()

	exitCode := ExitOK
	if execErr != nil {
		exitCode = exitCodeFor(execErr, ExitFailure)
	}
	logger.Debug("Run finished", "tool", r.Tool.Name(), "duration", FormatDuration(endTime.Sub(startTime)), "exit_code", exitCode)

	result := &RunResult{
		ExitCode: exitCode,
		Error:    execErr,
		Envelope: r.buildEnvelope(cfg, startTime, endTime, execErr),
	}

	if cfg.StatsJSON {
		if err := OutputStatsJSON(r.Stdout, result.Envelope); err != nil {
			logger.Warn("Could not write stats JSON", "error", err)
		}
	}

	return result
}

// parseArgs parses command line arguments
// Returns (*Config, nil) on success
// Returns (nil, nil) when help was shown (exit 0)
// Returns (nil, error) on error (exit 2)
func (r *Runner) parseArgs(args []string) (*Config, error) {
	cfg := NewConfig()

	// Build flag groups for duplicate checking
	flagGroups := CommonFlagGroups()
	for _, fd := range r.Tool.ToolSpecificFlags() {
		if fd.Short != "" || fd.Long != "" {
			flagGroups = append(flagGroups, fd.Aliases())
		}
	}

	// Check for conflicting duplicate flags before parsing
	if err := CheckDuplicateFlags(args, flagGroups); err != nil {
		return nil, UsageError(err)
	}

	fs := flag.NewFlagSet(r.Tool.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var showHelp bool
	fs.BoolVar(&showHelp, "h", false, "Show help message")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&cfg.Verbose, "v", false, "Enable debug logging")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Diagnostics log level")
	fs.BoolVar(&cfg.StatsJSON, "J", false, "Output run statistics as JSON")
	fs.BoolVar(&cfg.StatsJSON, "stats-json", false, "Output run statistics as JSON")

	// Define tool-specific flags
	r.Tool.DefineFlags(fs, r.Settings)

	if err := fs.Parse(reorderArgsForFlagParsing(args, flagGroups)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			r.printUsage()
			return nil, nil
		}
		return nil, UsageError(err)
	}

	if showHelp {
		r.printUsage()
		return nil, nil
	}

	if cfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(cfg.LogLevel)
		if err := ValidateLogLevel(cfg.LogLevel); err != nil {
			return nil, UsageError(err)
		}
	}

	cfg.Args = fs.Args()
	cfg.OriginalCmd = strings.Join(args, " ")
	return cfg, nil
}

// buildEnvelope summarizes the run for -J output
func (r *Runner) buildEnvelope(cfg *Config, startTime, endTime time.Time, execErr error) *envelope.Envelope {
	b := envelope.New().
		WithTool(r.Tool.Name()).
		WithTiming(startTime, endTime).
		WithResult("command", strings.TrimSpace(r.Tool.Name()+" "+cfg.OriginalCmd))

	if sr, ok := r.Tool.(StatsReporter); ok {
		for k, v := range sr.StatsJSONFields() {
			b.WithResult(k, v)
		}
	}

	if execErr != nil {
		b.FailureFromError(execErr)
	} else {
		b.Success()
	}
	return b.Build()
}
