package telnet

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
)

// DefaultBinary is where the telnet client is usually installed.
const DefaultBinary = "/usr/bin/telnet"

// ExecFunc replaces the current process with binary. It only returns on
// failure.
type ExecFunc func(binary string, argv []string, env []string) error

// Launcher prints the telnet command and then hands the process over to it.
type Launcher struct {
	Binary string
	Out    io.Writer
	Log    *slog.Logger
	DryRun bool
	Exec   ExecFunc

	stat     func(string) (fs.FileInfo, error)
	lookPath func(string) (string, error)
}

// NewLauncher returns a Launcher for binary, writing the command line to out.
func NewLauncher(binary string, out io.Writer, log *slog.Logger) *Launcher {
	if binary == "" {
		binary = DefaultBinary
	}
	if log == nil {
		log = slog.Default()
	}
	return &Launcher{
		Binary:   binary,
		Out:      out,
		Log:      log,
		Exec:     execProcess,
		stat:     os.Stat,
		lookPath: exec.LookPath,
	}
}

// ResolveBinary returns the configured binary if it exists, otherwise the
// first telnet found on PATH.
func (l *Launcher) ResolveBinary() (string, error) {
	if _, err := l.stat(l.Binary); err == nil {
		return l.Binary, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", l.Binary, err)
	}

	path, err := l.lookPath("telnet")
	if err != nil {
		return "", fmt.Errorf("telnet client not found at %s or on PATH: %w", l.Binary, err)
	}
	return path, nil
}

// Launch prints "telnet HOST PORT" and runs the client in place of this
// process. On success it does not return unless DryRun is set.
func (l *Launcher) Launch(target Target) error {
	fmt.Fprintln(l.Out, target.String())
	if l.DryRun {
		return nil
	}

	binary, err := l.ResolveBinary()
	if err != nil {
		return err
	}
	l.Log.Debug("Launching telnet client", "binary", binary, "host", target.Host, "port", target.Port)

	argv := append([]string{"telnet"}, target.Args()...)
	if err := l.Exec(binary, argv, os.Environ()); err != nil {
		return fmt.Errorf("failed to exec %s: %w", binary, err)
	}
	return nil
}
