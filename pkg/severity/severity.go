// Package severity defines the ordered set of log levels understood by the
// log scanner and the color each one is displayed in.
package severity

import (
	"errors"
	"fmt"
	"strings"

	"ciutils/pkg/colors"
)

// Level is a log line severity. Declaration order is severity order.
type Level int

const (
	Debug Level = iota
	Info
	Audit
	Trace
	Warning
	Error
)

// ErrUnknownLevel is returned by Parse for names outside the fixed set.
var ErrUnknownLevel = errors.New("unknown log level")

var levels = []Level{Debug, Info, Audit, Trace, Warning, Error}

var names = [...]string{"DEBUG", "INFO", "AUDIT", "TRACE", "WARNING", "ERROR"}

var levelColors = [...]string{
	colors.Reset,
	colors.Magenta,
	colors.Cyan,
	colors.Blue,
	colors.Yellow,
	colors.LightRed,
}

// All returns every level from least to most severe.
func All() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// Names returns the upper-case level names in severity order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names[:])
	return out
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Debug && l <= Error
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return names[l]
}

// Color returns the ANSI code used when printing lines of this level.
func (l Level) Color() string {
	if !l.Valid() {
		return colors.Reset
	}
	return levelColors[l]
}

// AndAbove returns l followed by every more severe level.
func (l Level) AndAbove() []Level {
	if !l.Valid() {
		return nil
	}
	return All()[l:]
}

// Parse resolves a level name case-insensitively.
func Parse(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == upper {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q. Valid options: %s", ErrUnknownLevel, name, strings.Join(names[:], ", "))
}

// Lookup maps an upper-case token as it appears in a log line to its level.
// Tokens outside the fixed set report false.
func Lookup(token string) (Level, bool) {
	for i, n := range names {
		if n == token {
			return Level(i), true
		}
	}
	return 0, false
}

// ColorFor returns the display color for a raw level token, falling back to
// reset for tokens that are not known levels.
func ColorFor(token string) string {
	if l, ok := Lookup(token); ok {
		return l.Color()
	}
	return colors.Reset
}
