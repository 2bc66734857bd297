// Package lock provides file-based locking so two download-log-files runs
// never write into the same destination directory at once.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Lock timing defaults
const (
	DefaultTimeout      = 5 * time.Minute // Maximum time to wait for lock
	DefaultPollInterval = 5 * time.Second // How often to check if lock is available
	maxIdentifierLen    = 100             // Maximum length for lock identifier
)

// ErrUnsupported is returned by Acquire where the platform has no flock.
var ErrUnsupported = errors.New("file locking is not supported on this platform")

// Options controls where lock files live and how long Acquire waits.
type Options struct {
	Dir          string
	Timeout      time.Duration
	PollInterval time.Duration
	Logger       *slog.Logger
}

// sanitizeIdentifier cleans the identifier for safe use as a file name
func sanitizeIdentifier(id string) string {
	if id == "" {
		return "unknown"
	}
	// Remove path separators and control characters
	result := strings.Map(func(r rune) rune {
		if r < 32 || r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, id)
	result = strings.TrimLeft(result, "_.")
	if result == "" {
		return "root"
	}
	if len(result) > maxIdentifierLen {
		result = result[len(result)-maxIdentifierLen:]
	}
	return result
}

// FileLock represents a held file-based lock
type FileLock struct {
	file     *os.File
	path     string
	infoPath string
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire takes the lock for identifier, polling until it is free, the
// timeout expires or ctx is done.
func Acquire(ctx context.Context, identifier string, opts Options) (*FileLock, error) {
	if !Supported {
		return nil, ErrUnsupported
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	// Create lock directory with secure permissions (owner only)
	if err := os.MkdirAll(opts.Dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create lock directory %s: %w", opts.Dir, err)
	}

	name := sanitizeIdentifier(identifier)
	lockPath := filepath.Join(opts.Dir, name+".lock")
	infoPath := lockPath + ".info"

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("could not open lock file %s: %w", lockPath, err)
	}

	// Try non-blocking lock first
	if err := tryLock(lockFile); err != nil {
		holder := readHolder(infoPath)
		startWait := time.Now()
		log.Info("Waiting for lock", "identifier", identifier, "holder", holder)

		ticker := time.NewTicker(opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				lockFile.Close()
				return nil, ctx.Err()
			case <-ticker.C:
			}
			if time.Since(startWait) > opts.Timeout {
				lockFile.Close()
				return nil, fmt.Errorf("timed out waiting for lock on %s after %v (held by %s)", identifier, opts.Timeout, readHolder(infoPath))
			}
			if err := tryLock(lockFile); err == nil {
				break
			}
			log.Debug("Still waiting for lock", "identifier", identifier, "elapsed", time.Since(startWait).Round(time.Second))
		}
		log.Info("Lock acquired", "identifier", identifier, "waited", time.Since(startWait).Round(time.Second))
	} else {
		log.Debug("Lock acquired", "identifier", identifier, "path", lockPath)
	}

	// Write our info so others know who has the lock
	info := fmt.Sprintf("pid %d: %s", os.Getpid(), identifier)
	if err := os.WriteFile(infoPath, []byte(info), 0600); err != nil {
		log.Warn("Could not write lock info", "path", infoPath, "error", err)
	}

	return &FileLock{file: lockFile, path: lockPath, infoPath: infoPath}, nil
}

func readHolder(infoPath string) string {
	data, err := os.ReadFile(infoPath)
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}

// Release releases the file lock
func (l *FileLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	os.Remove(l.infoPath)
	unlockErr := unlock(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return fmt.Errorf("failed to unlock: %w", unlockErr)
	}
	return closeErr
}
