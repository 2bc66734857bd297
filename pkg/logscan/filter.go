// Package logscan finds log lines at or above a severity level in a
// directory tree and prints them colorized.
package logscan

import (
	"regexp"
	"strings"

	"ciutils/pkg/severity"
)

// anyLevel matches any upper-case token when no level filter is set.
const anyLevel = `[A-Z]+`

// Match is one log line split into its parts.
type Match struct {
	DateTime  string // timestamp and pid, e.g. "2017-02-21 18:44:45.605 17469"
	Level     string // severity token as written in the line
	Remaining string // message text up to end of line
}

// Filter recognizes log lines of the form
//
//	2017-02-21 18:44:45.605 17469 ERROR nova.compute.manager ...
//
// optionally restricted to a minimum severity.
type Filter struct {
	level *severity.Level
	re    *regexp.Regexp
}

// LevelPattern returns the alternation for level and every more severe
// level, or a generic token pattern when level is nil.
func LevelPattern(level *severity.Level) string {
	if level == nil {
		return anyLevel
	}
	var names []string
	for _, l := range level.AndAbove() {
		names = append(names, regexp.QuoteMeta(l.String()))
	}
	return strings.Join(names, "|")
}

// NewFilter builds the line pattern for level; nil matches every level.
func NewFilter(level *severity.Level) *Filter {
	pattern := `(?P<date_time>\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3} \d{1,5}) ` +
		`(?P<level>` + LevelPattern(level) + `) ` +
		`(?P<remaining>.*$)`
	return &Filter{level: level, re: regexp.MustCompile(pattern)}
}

// Restricted reports whether the filter has a minimum level. Unrestricted
// filters echo non-matching lines.
func (f *Filter) Restricted() bool {
	return f.level != nil
}

// Level returns the minimum level, or nil.
func (f *Filter) Level() *severity.Level {
	return f.level
}

// String returns the compiled pattern.
func (f *Filter) String() string {
	return f.re.String()
}

// Match reports whether line holds a log record the filter accepts.
func (f *Filter) Match(line string) (Match, bool) {
	m := f.re.FindStringSubmatch(line)
	if m == nil {
		return Match{}, false
	}
	return Match{
		DateTime:  m[f.re.SubexpIndex("date_time")],
		Level:     m[f.re.SubexpIndex("level")],
		Remaining: m[f.re.SubexpIndex("remaining")],
	}, true
}
