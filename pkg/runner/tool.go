// Package runner provides the shared command-line framework for the ciutils tools.
package runner

import (
	"context"
	"flag"
	"io"
	"log/slog"

	"ciutils/pkg/settings"
)

// Tool defines the interface that each ciutils command must implement.
type Tool interface {
	// Name returns the binary name (e.g., "download-log-files")
	Name() string

	// Description returns the one-paragraph summary shown in usage
	Description() string

	// Synopsis returns the positional argument part of the usage line
	Synopsis() string

	// ToolSpecificFlags returns flag definitions for help output and
	// duplicate detection
	ToolSpecificFlags() []FlagDef

	// DefineFlags registers the tool's flags on fs, seeding defaults from s
	DefineFlags(fs *flag.FlagSet, s *settings.Settings)

	// Configure validates flag values and positional arguments before any I/O
	Configure(args []string) error

	// Execute performs the tool's single pass of work
	Execute(ctx context.Context, env *Env) error
}

// StatsReporter is an optional interface tools implement to contribute
// fields to the -J result envelope.
type StatsReporter interface {
	StatsJSONFields() map[string]interface{}
}

// HelpProvider is an optional interface for tools with extra help sections.
type HelpProvider interface {
	HelpSections() []HelpSection
}

// Env is what a tool gets to work with during Execute.
type Env struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Settings *settings.Settings
}

// FlagDef defines a command-line flag
type FlagDef struct {
	Short       string // Short flag (e.g., "-l")
	Long        string // Long flag (e.g., "--level")
	Description string // Help description
	TakesArg    bool   // Whether the flag takes an argument
	ArgName     string // Placeholder shown in help (e.g., "<level>")
	Default     string // Default value (for display)
}

// Aliases converts the definition into a FlagAliases group.
func (fd FlagDef) Aliases() FlagAliases {
	var names []string
	if fd.Short != "" {
		names = append(names, fd.Short)
	}
	if fd.Long != "" {
		names = append(names, fd.Long)
	}
	return FlagAliases{Names: names, TakesArg: fd.TakesArg}
}

// HelpSection defines a section of help text
type HelpSection struct {
	Title string   // Section title
	Lines []string // Lines of help text
}
