package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxDrain bounds how much of an error body is read so the connection can be
// reused.
const maxDrain = 64 << 10

// Fetcher performs GET requests over one shared http.Client so sequential
// requests reuse connections.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wraps client; nil means http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Get returns the full body of u. Non-2xx responses yield *StatusError and
// a failed read of a chunked body yields *TransferError.
func (f *Fetcher) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		return nil, &StatusError{URL: u.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == nil && isChunked(resp) {
			return nil, &TransferError{URL: u.String(), Err: err}
		}
		return nil, fmt.Errorf("failed to read response body from %s: %w", u, err)
	}
	return body, nil
}

func isChunked(resp *http.Response) bool {
	for _, te := range resp.TransferEncoding {
		if te == "chunked" {
			return true
		}
	}
	return false
}
