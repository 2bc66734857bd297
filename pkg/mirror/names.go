package mirror

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// CompressedSuffix is stripped from downloaded file names. CI log servers
// name plain-text logs *.gz and serve them decompressed.
const CompressedSuffix = ".gz"

// ValidateURL checks the scheme prefix and parses raw into an absolute URL.
func ValidateURL(raw string) (*url.URL, error) {
	if !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "http://") {
		return nil, ErrUnsupportedScheme
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return u, nil
}

// AsDirectory returns u with a trailing slash on its path, so relative
// listing entries resolve beneath it.
func AsDirectory(u *url.URL) *url.URL {
	out := *u
	if !strings.HasSuffix(out.Path, "/") {
		out.Path += "/"
		if out.RawPath != "" {
			out.RawPath += "/"
		}
	}
	return &out
}

// DirName returns the last path segment of u, used to name the local
// directory a listing is mirrored into.
func DirName(u *url.URL) string {
	name, err := segmentName(u)
	if err != nil {
		return ""
	}
	return name
}

// DefaultDestination is <cwd>/<last path segment of u>.
func DefaultDestination(cwd string, u *url.URL) string {
	return filepath.Join(cwd, DirName(u))
}

// LocalName maps a file URL to the name it is saved under: the final path
// segment without a trailing compressed suffix.
func LocalName(u *url.URL) (string, error) {
	name, err := segmentName(u)
	if err != nil {
		return "", err
	}
	name = strings.TrimSuffix(name, CompressedSuffix)
	if !safeName(name) {
		return "", fmt.Errorf("cannot derive a local file name from %s", u)
	}
	return name, nil
}

// segmentName unescapes the final segment of the escaped path, so an
// encoded separator or dot segment cannot hide inside a single entry.
func segmentName(u *url.URL) (string, error) {
	seg := lastSegment(u.EscapedPath())
	name, err := url.PathUnescape(seg)
	if err != nil || !safeName(name) {
		return "", fmt.Errorf("cannot derive a local name from %s", u)
	}
	return name, nil
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
