// Package mirror reproduces a web server's directory listing on local disk.
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/spf13/afero"
)

// DefaultRetries is how often a chunked-transfer failure is retried.
const DefaultRetries = 2

// Result counts what a run wrote.
type Result struct {
	Root        string `json:"root"`
	Destination string `json:"destination"`
	Directories int    `json:"directories"`
	Files       int    `json:"files"`
	Bytes       int64  `json:"bytes"`
}

// Mirror walks listings depth-first and downloads files sequentially.
type Mirror struct {
	fetcher *Fetcher
	fs      afero.Fs
	log     *slog.Logger
	retries int
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithFS writes into fs instead of the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(m *Mirror) { m.fs = fs }
}

// WithHTTPClient uses client for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(m *Mirror) { m.fetcher = NewFetcher(client) }
}

// WithRetries sets how many times a chunked-transfer failure is retried.
func WithRetries(n int) Option {
	return func(m *Mirror) {
		if n >= 0 {
			m.retries = n
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mirror) { m.log = log }
}

// New creates a Mirror with the OS filesystem and a fresh http.Client.
func New(opts ...Option) *Mirror {
	m := &Mirror{
		fetcher: NewFetcher(&http.Client{}),
		fs:      afero.NewOsFs(),
		log:     slog.Default(),
		retries: DefaultRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run mirrors the listing at root into dest. Any HTTP failure that is not a
// retried chunked transfer, and any inconsistent listing entry, aborts the
// whole run; files already written stay on disk.
func (m *Mirror) Run(ctx context.Context, root *url.URL, dest string) (*Result, error) {
	root = AsDirectory(root)
	res := &Result{Root: root.String(), Destination: dest}
	if err := m.mirrorDir(ctx, root, dest, res); err != nil {
		return res, err
	}
	return res, nil
}

func (m *Mirror) mirrorDir(ctx context.Context, page *url.URL, dest string, res *Result) error {
	m.log.Info("Processing directory", "url", page.String())

	if err := m.fs.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dest, err)
	}
	res.Directories++

	body, err := m.fetcher.Get(ctx, page)
	if err != nil {
		return err
	}

	links, err := ParseListing(page, bytes.NewReader(body))
	if err != nil {
		return err
	}
	m.log.Debug("Listing parsed", "url", page.String(), "entries", len(links))

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return err
		}
		if link.IsDir() {
			if err := m.mirrorDir(ctx, link.URL, filepath.Join(dest, link.Name()), res); err != nil {
				return err
			}
			continue
		}
		if err := m.downloadFile(ctx, link.URL, dest, res); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mirror) downloadFile(ctx context.Context, u *url.URL, dir string, res *Result) error {
	m.log.Info("Downloading", "url", u.String())

	name, err := LocalName(u)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, name)

	var data []byte
	for attempt := 0; ; attempt++ {
		data, err = m.fetcher.Get(ctx, u)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrChunkedTransfer) {
			return err
		}
		if attempt >= m.retries {
			m.log.Error("Giving up on download", "url", u.String(), "attempts", attempt+1, "error", err)
			return err
		}
		m.log.Warn("Failure trying to download", "url", u.String(), "error", err)
		m.log.Warn("Download attempt", "attempt", attempt+2, "of", m.retries+1)
	}

	if err := afero.WriteFile(m.fs, target, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	res.Files++
	res.Bytes += int64(len(data))
	m.log.Debug("Saved", "path", target, "bytes", len(data))
	return nil
}
