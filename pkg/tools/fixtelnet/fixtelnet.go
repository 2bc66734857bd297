// Package fixtelnet implements fix-telnet, which turns a telnet:// URL into
// a telnet client session.
package fixtelnet

import (
	"context"
	"flag"

	"ciutils/pkg/runner"
	"ciutils/pkg/settings"
	"ciutils/pkg/telnet"
)

// Tool implements runner.Tool for fix-telnet.
type Tool struct {
	binary string
	dryRun bool

	target telnet.Target

	exec telnet.ExecFunc
}

// New creates the fix-telnet tool
func New() *Tool {
	return &Tool{}
}

func (t *Tool) Name() string {
	return "fix-telnet"
}

func (t *Tool) Description() string {
	return "Open a telnet://HOST_IP_ADDRESS:PORT URL with the system telnet client. " +
		"IPv6 hosts are written in brackets."
}

func (t *Tool) Synopsis() string {
	return "TELNET_URL"
}

func (t *Tool) ToolSpecificFlags() []runner.FlagDef {
	return []runner.FlagDef{
		{
			Short:       "-b",
			Long:        "--binary",
			Description: "Telnet client to run",
			TakesArg:    true,
			ArgName:     "<path>",
			Default:     telnet.DefaultBinary,
		},
		{
			Short:       "-n",
			Long:        "--dry-run",
			Description: "Print the command without running it",
		},
	}
}

func (t *Tool) DefineFlags(fs *flag.FlagSet, s *settings.Settings) {
	fs.StringVar(&t.binary, "b", s.TelnetBinary, "Telnet client")
	fs.StringVar(&t.binary, "binary", s.TelnetBinary, "Telnet client")
	fs.BoolVar(&t.dryRun, "n", false, "Dry run")
	fs.BoolVar(&t.dryRun, "dry-run", false, "Dry run")
}

// Configure parses the URL. A wrong scheme is a usage error; a telnet URL
// that does not parse is a runtime failure.
func (t *Tool) Configure(args []string) error {
	if len(args) != 1 {
		return runner.UsageError(telnet.ErrUsage)
	}
	if err := telnet.ValidateScheme(args[0]); err != nil {
		return runner.UsageError(err)
	}
	target, err := telnet.Parse(args[0])
	if err != nil {
		return &runner.ExitError{Code: runner.ExitFailure, Err: err}
	}
	t.target = target
	return nil
}

func (t *Tool) Execute(ctx context.Context, env *runner.Env) error {
	l := telnet.NewLauncher(t.binary, env.Stdout, env.Logger)
	l.DryRun = t.dryRun
	if t.exec != nil {
		l.Exec = t.exec
	}
	return l.Launch(t.target)
}

func (t *Tool) StatsJSONFields() map[string]interface{} {
	return map[string]interface{}{
		"host":    t.target.Host,
		"port":    t.target.Port,
		"binary":  t.binary,
		"dry_run": t.dryRun,
	}
}
