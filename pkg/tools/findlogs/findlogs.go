// Package findlogs implements find-log-messages, which prints log lines at
// or above a severity level from every file below a directory.
package findlogs

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/spf13/afero"

	"ciutils/pkg/logscan"
	"ciutils/pkg/runner"
	"ciutils/pkg/settings"
	"ciutils/pkg/severity"
)

// Tool implements runner.Tool for find-log-messages.
type Tool struct {
	levelName string
	all       bool

	dir   string
	level *severity.Level
	stats logscan.Stats

	fs afero.Fs
}

// New creates the find-log-messages tool reading the OS filesystem
func New() *Tool {
	return &Tool{fs: afero.NewOsFs()}
}

func (t *Tool) Name() string {
	return "find-log-messages"
}

func (t *Tool) Description() string {
	return "Print log lines at or above a severity level from every file below DIR " +
		"(default: current directory), colored by level."
}

func (t *Tool) Synopsis() string {
	return "[DIR]"
}

func (t *Tool) ToolSpecificFlags() []runner.FlagDef {
	return []runner.FlagDef{
		{
			Short:       "-l",
			Long:        "--level",
			Description: "Minimum severity to print",
			TakesArg:    true,
			ArgName:     "<level>",
			Default:     severity.Error.String(),
		},
		{
			Short:       "-a",
			Long:        "--all",
			Description: "Print every line, highlighting log records",
		},
	}
}

func (t *Tool) DefineFlags(fs *flag.FlagSet, s *settings.Settings) {
	fs.StringVar(&t.levelName, "l", s.ScanLevel, "Minimum severity")
	fs.StringVar(&t.levelName, "level", s.ScanLevel, "Minimum severity")
	fs.BoolVar(&t.all, "a", false, "No level filter")
	fs.BoolVar(&t.all, "all", false, "No level filter")
}

// Configure resolves the level so a typo fails before any file is read
func (t *Tool) Configure(args []string) error {
	switch len(args) {
	case 0:
		t.dir = "."
	case 1:
		t.dir = args[0]
	default:
		return runner.UsageError(errors.New("expected at most one DIR argument"))
	}

	if t.all {
		t.level = nil
		return nil
	}
	lvl, err := severity.Parse(t.levelName)
	if err != nil {
		return runner.UsageError(err)
	}
	t.level = &lvl
	return nil
}

func (t *Tool) Execute(ctx context.Context, env *runner.Env) error {
	filter := logscan.NewFilter(t.level)
	env.Logger.Debug("Scanning", "dir", t.dir, "pattern", filter.String())

	scanner := logscan.NewScannerWithFS(t.fs, env.Stdout, filter, env.Logger)
	err := scanner.ScanDir(ctx, t.dir)
	t.stats = scanner.Stats()
	if err != nil {
		return err
	}
	if t.stats.Skipped > 0 {
		env.Logger.Warn("Some entries could not be read", "skipped", t.stats.Skipped)
	}
	return nil
}

// HelpSections lists the levels in severity order with their colors
func (t *Tool) HelpSections() []runner.HelpSection {
	var lines []string
	for _, l := range severity.All() {
		lines = append(lines, fmt.Sprintf("  %s%s%s", l.Color(), l.String(), runner.Reset))
	}
	return []runner.HelpSection{{Title: "Levels (least to most severe)", Lines: lines}}
}

func (t *Tool) StatsJSONFields() map[string]interface{} {
	level := "all"
	if t.level != nil {
		level = t.level.String()
	}
	return map[string]interface{}{
		"dir":           t.dir,
		"level":         level,
		"files":         t.stats.Files,
		"matched_files": t.stats.MatchedFiles,
		"lines":         t.stats.Lines,
		"matched_lines": t.stats.MatchedLines,
		"skipped":       t.stats.Skipped,
	}
}
