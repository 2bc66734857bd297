// Package downloadlogs implements download-log-files, which mirrors a web
// server directory listing of CI logs to local disk.
package downloadlogs

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"ciutils/pkg/lock"
	"ciutils/pkg/mirror"
	"ciutils/pkg/runner"
	"ciutils/pkg/settings"
)

// Tool implements runner.Tool for download-log-files.
type Tool struct {
	output  string
	retries int
	useLock bool

	root   *url.URL
	result *mirror.Result

	mirrorOpts []mirror.Option
	getwd      func() (string, error)
}

// New creates the download-log-files tool
func New() *Tool {
	return &Tool{getwd: os.Getwd}
}

func (t *Tool) Name() string {
	return "download-log-files"
}

func (t *Tool) Description() string {
	return "Recursively download every file below an HTTP directory listing, " +
		"recreating the directory tree locally. Files ending in .gz are saved without the suffix."
}

func (t *Tool) Synopsis() string {
	return "LOGDIR_URL"
}

// ToolSpecificFlags returns the mirror flag definitions
func (t *Tool) ToolSpecificFlags() []runner.FlagDef {
	return []runner.FlagDef{
		{
			Short:       "-o",
			Long:        "--output",
			Description: "Destination directory",
			TakesArg:    true,
			ArgName:     "<dir>",
			Default:     "./<last URL segment>",
		},
		{
			Short:       "-r",
			Long:        "--retries",
			Description: "Retries for a broken chunked transfer",
			TakesArg:    true,
			ArgName:     "<n>",
			Default:     strconv.Itoa(mirror.DefaultRetries),
		},
		{
			Short:       "-l",
			Long:        "--lock",
			Description: "Wait for other runs writing to the same destination",
		},
	}
}

// DefineFlags registers the mirror flags, defaults taken from settings
func (t *Tool) DefineFlags(fs *flag.FlagSet, s *settings.Settings) {
	fs.StringVar(&t.output, "o", "", "Destination directory")
	fs.StringVar(&t.output, "output", "", "Destination directory")
	fs.IntVar(&t.retries, "r", s.Retries, "Chunked transfer retries")
	fs.IntVar(&t.retries, "retries", s.Retries, "Chunked transfer retries")
	fs.BoolVar(&t.useLock, "l", false, "Lock the destination")
	fs.BoolVar(&t.useLock, "lock", false, "Lock the destination")
}

// Configure validates the URL before anything touches the network
func (t *Tool) Configure(args []string) error {
	if len(args) != 1 {
		return runner.UsageError(errors.New("expected exactly one LOGDIR_URL argument"))
	}
	if t.retries < 0 {
		return runner.UsageError(fmt.Errorf("invalid retries %d: must be >= 0", t.retries))
	}
	root, err := mirror.ValidateURL(args[0])
	if err != nil {
		return runner.UsageError(err)
	}
	t.root = root
	return nil
}

// Destination resolves where the listing is written.
func (t *Tool) Destination() (string, error) {
	if t.output != "" {
		return t.output, nil
	}
	cwd, err := t.getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return mirror.DefaultDestination(cwd, t.root), nil
}

// Execute mirrors the listing
func (t *Tool) Execute(ctx context.Context, env *runner.Env) error {
	dest, err := t.Destination()
	if err != nil {
		return err
	}

	if t.useLock {
		l, err := lock.Acquire(ctx, dest, lock.Options{
			Dir:    env.Settings.LockDir,
			Logger: env.Logger,
		})
		if err != nil {
			return err
		}
		defer l.Release()
	}

	opts := []mirror.Option{
		mirror.WithRetries(t.retries),
		mirror.WithLogger(env.Logger),
	}
	m := mirror.New(append(opts, t.mirrorOpts...)...)

	res, err := m.Run(ctx, t.root, dest)
	t.result = res
	if err != nil {
		return err
	}

	env.Logger.Info("Mirror complete",
		"destination", res.Destination,
		"directories", res.Directories,
		"files", res.Files,
		"bytes", res.Bytes)
	return nil
}

// StatsJSONFields adds the mirror counters to the -J envelope
func (t *Tool) StatsJSONFields() map[string]interface{} {
	fields := map[string]interface{}{
		"retries": t.retries,
	}
	if t.root != nil {
		fields["url"] = t.root.String()
	}
	if t.result != nil {
		fields["destination"] = t.result.Destination
		fields["directories"] = t.result.Directories
		fields["files"] = t.result.Files
		fields["bytes"] = t.result.Bytes
	}
	return fields
}
