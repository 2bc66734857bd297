package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ciutils/pkg/envelope"
)

// OutputStatsJSON writes the run envelope as indented JSON
func OutputStatsJSON(w io.Writer, env *envelope.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// FormatDuration formats a duration as a human-readable string
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatFlag renders "-l, --level <arg>" with colors
func formatFlag(fd FlagDef) string {
	s := ""
	if fd.Short != "" {
		s = Green + fd.Short + Reset
	}
	if fd.Long != "" {
		if s != "" {
			s += ", "
		}
		s += Green + fd.Long + Reset
	}
	if fd.TakesArg && fd.ArgName != "" {
		s += " " + Yellow + fd.ArgName + Reset
	}
	return s
}

// printFlag prints one aligned option line. Padding is computed on the
// uncolored text so escape codes don't skew the columns.
func printFlag(w io.Writer, fd FlagDef) {
	plain := fd.Short
	if fd.Long != "" {
		if plain != "" {
			plain += ", "
		}
		plain += fd.Long
	}
	if fd.TakesArg && fd.ArgName != "" {
		plain += " " + fd.ArgName
	}
	pad := 26 - len(plain)
	if pad < 2 {
		pad = 2
	}
	fmt.Fprintf(w, "  %s%*s%s", formatFlag(fd), pad, "", fd.Description)
	if fd.Default != "" {
		fmt.Fprintf(w, " %s(default: %s)%s", Dim, fd.Default, Reset)
	}
	fmt.Fprintln(w)
}

// printUsage prints the help message
func (r *Runner) printUsage() {
	w := r.Stdout
	toolName := r.Tool.Name()

	fmt.Fprintf(w, "%s%sUsage:%s %s %s[OPTIONS]%s %s%s%s\n\n", Bold, Cyan, Reset, toolName, Dim, Reset, Yellow, r.Tool.Synopsis(), Reset)
	fmt.Fprintf(w, "%s\n\n", r.Tool.Description())

	if defs := r.Tool.ToolSpecificFlags(); len(defs) > 0 {
		fmt.Fprintf(w, "%s%sOptions:%s\n", Bold, Cyan, Reset)
		for _, fd := range defs {
			printFlag(w, fd)
		}
		fmt.Fprintln(w)
	}

	if hp, ok := r.Tool.(HelpProvider); ok {
		for _, section := range hp.HelpSections() {
			fmt.Fprintf(w, "%s%s%s:%s\n", Bold, Cyan, section.Title, Reset)
			for _, line := range section.Lines {
				fmt.Fprintln(w, line)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "%s%sCommon Options:%s\n", Bold, Cyan, Reset)
	printFlag(w, FlagDef{Short: "-v", Long: "--verbose", Description: "Enable debug logging"})
	printFlag(w, FlagDef{Long: "--log-level", TakesArg: true, ArgName: "<level>", Description: "Diagnostics level: debug, info, warn, error"})
	printFlag(w, FlagDef{Short: "-J", Long: "--stats-json", Description: "Output run statistics as JSON at completion"})
	printFlag(w, FlagDef{Short: "-h", Long: "--help", Description: "Show this help message"})
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s%sEnvironment:%s\n", Bold, Cyan, Reset)
	fmt.Fprintf(w, "  Defaults can be set with %sCIUTILS_*%s variables or a %s.env%s file.\n", Magenta, Reset, Magenta, Reset)
}
