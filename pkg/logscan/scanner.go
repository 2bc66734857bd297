package logscan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/afero"

	"ciutils/pkg/colors"
	"ciutils/pkg/severity"
)

// Stats counts what a scan looked at.
type Stats struct {
	Files        int `json:"files"`
	MatchedFiles int `json:"matched_files"`
	Lines        int `json:"lines"`
	MatchedLines int `json:"matched_lines"`
	Skipped      int `json:"skipped"`
}

// Scanner walks a directory tree and prints matching lines to out.
type Scanner struct {
	fs     afero.Fs
	out    io.Writer
	filter *Filter
	log    *slog.Logger
	stats  Stats
}

// NewScanner scans the OS filesystem.
func NewScanner(out io.Writer, filter *Filter, log *slog.Logger) *Scanner {
	return NewScannerWithFS(afero.NewOsFs(), out, filter, log)
}

// NewScannerWithFS scans fs.
func NewScannerWithFS(fs afero.Fs, out io.Writer, filter *Filter, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{fs: fs, out: out, filter: filter, log: log}
}

// Stats returns the counters accumulated so far.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// ScanDir visits every regular file below dir, entries in name order at
// each level, descending into subdirectories as they come.
func (s *Scanner) ScanDir(ctx context.Context, dir string) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := joinPath(dir, entry.Name())

		// Stat follows symlinks the way a shell listing would
		info, err := s.fs.Stat(path)
		if err != nil {
			s.log.Debug("Skipping unreadable entry", "path", path, "error", err)
			s.stats.Skipped++
			continue
		}

		switch {
		case info.Mode().IsRegular():
			if err := s.ScanFile(path); err != nil {
				var pathErr *os.PathError
				if !errors.As(err, &pathErr) {
					return err
				}
				s.log.Warn("Skipping file", "path", path, "error", err)
				s.stats.Skipped++
			}
		case info.IsDir():
			if err := s.ScanDir(ctx, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// ScanFile prints the file name before its first matching line, then each
// matching line wrapped in its level's color. Without a level restriction
// every other line is echoed unchanged.
func (s *Scanner) ScanFile(path string) error {
	f, err := s.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s.log.Debug("Scanning file", "path", path)
	s.stats.Files++

	found := false
	reader := bufio.NewReader(f)
	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		if raw == "" && readErr == io.EOF {
			break
		}

		line := strings.TrimRightFunc(raw, unicode.IsSpace)
		s.stats.Lines++

		if m, ok := s.filter.Match(line); ok {
			if !found {
				fmt.Fprintln(s.out, path)
				found = true
				s.stats.MatchedFiles++
			}
			s.stats.MatchedLines++
			fmt.Fprintln(s.out, colors.Wrap(severity.ColorFor(m.Level), line))
		} else if !s.filter.Restricted() {
			fmt.Fprintln(s.out, line)
		}

		if readErr == io.EOF {
			break
		}
	}
	return nil
}

// joinPath keeps a leading "./" so printed names read like a shell listing.
func joinPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
