// Package colors provides shared ANSI color codes for terminal output.
package colors

// ANSI color codes for terminal output
const (
	Reset    = "\033[0m"
	Bold     = "\033[1m"
	Dim      = "\033[2m"
	Red      = "\033[31m"
	Green    = "\033[32m"
	Yellow   = "\033[33m"
	Blue     = "\033[34m"
	Magenta  = "\033[35m"
	Cyan     = "\033[36m"
	White    = "\033[37m"
	LightRed = "\033[91m"
)

// Wrap surrounds s with the given color code and a trailing reset.
func Wrap(color, s string) string {
	return color + s + Reset
}
