package runner

import (
	"fmt"
	"strings"
)

// FlagAliases defines a group of flag names that are aliases for the same option
type FlagAliases struct {
	Names    []string // e.g., ["-l", "--level"]
	TakesArg bool     // true if the flag takes an argument
}

// CheckDuplicateFlags scans args for duplicate flags with conflicting values
// Returns an error describing the conflict, or nil if no conflicts found
func CheckDuplicateFlags(args []string, flagGroups []FlagAliases) error {
	for _, group := range flagGroups {
		var values []string
		var flagsUsed []string

		for i := 0; i < len(args); i++ {
			arg := args[i]
			if arg == "--" {
				break
			}

			for _, flagName := range group.Names {
				if group.TakesArg {
					// Check for "-l value" or "--level value" format
					if arg == flagName && i+1 < len(args) {
						values = append(values, args[i+1])
						flagsUsed = append(flagsUsed, flagName)
						i++ // skip the value
						break
					}
					// Check for "-l=value" or "--level=value" format
					if strings.HasPrefix(arg, flagName+"=") {
						values = append(values, arg[len(flagName)+1:])
						flagsUsed = append(flagsUsed, flagName)
						break
					}
				} else {
					// Boolean flag
					if arg == flagName {
						values = append(values, "true")
						flagsUsed = append(flagsUsed, flagName)
						break
					}
				}
			}
		}

		if len(values) > 1 {
			allSame := true
			for _, v := range values[1:] {
				if !strings.EqualFold(v, values[0]) {
					allSame = false
					break
				}
			}
			if !allSame {
				return fmt.Errorf("conflicting flags: %s specified multiple times with different values (%s)",
					strings.Join(flagsUsed, ", "), strings.Join(values, " vs "))
			}
		}
	}
	return nil
}

// CommonFlagGroups returns the flag groups common to all tools
func CommonFlagGroups() []FlagAliases {
	return []FlagAliases{
		{Names: []string{"-h", "--help"}, TakesArg: false},
		{Names: []string{"-v", "--verbose"}, TakesArg: false},
		{Names: []string{"--log-level"}, TakesArg: true},
		{Names: []string{"-J", "--stats-json"}, TakesArg: false},
	}
}

// reorderArgsForFlagParsing moves all flags to the front so Go's flag package
// can parse them correctly (it stops at the first non-flag argument).
// Everything after a "--" terminator stays positional.
func reorderArgsForFlagParsing(args []string, flagGroups []FlagAliases) []string {
	flagTakesArg := make(map[string]bool)
	for _, group := range flagGroups {
		for _, name := range group.Names {
			flagTakesArg[name] = group.TakesArg
		}
	}

	var flagArgs []string
	var positionalArgs []string

	i := 0
	for i < len(args) {
		arg := args[i]

		if arg == "--" {
			positionalArgs = append(positionalArgs, args[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			flagArgs = append(flagArgs, arg)
			// --flag=value carries its own value
			if !strings.Contains(arg, "=") && flagTakesArg[arg] && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
			i++
			continue
		}

		positionalArgs = append(positionalArgs, arg)
		i++
	}

	if len(positionalArgs) == 0 {
		return flagArgs
	}
	// Keep the terminator so positionals that look like flags survive Parse
	return append(append(flagArgs, "--"), positionalArgs...)
}
