package mirror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrChunkedTransfer marks a response body that was truncated or
	// malformed mid-way through a chunked transfer. Only these are retried.
	ErrChunkedTransfer = errors.New("chunked transfer failed")

	// ErrUnsupportedScheme is returned for URLs that are not http(s).
	ErrUnsupportedScheme = errors.New("the provided URL does not start with 'https://' or 'http://'")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s for url: %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

func (e *StatusError) ErrorCode() string {
	return "http_status"
}

// TransferError wraps a body read failure on a chunked response.
type TransferError struct {
	URL string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrChunkedTransfer, e.URL, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func (e *TransferError) Is(target error) bool {
	return target == ErrChunkedTransfer
}

func (e *TransferError) ErrorCode() string {
	return "chunked_transfer"
}

// ListingError reports a listing entry that cannot be trusted: it fails to
// resolve to an absolute URL or escapes the directory being mirrored.
type ListingError struct {
	Page   string
	Href   string
	Reason string
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("inconsistent listing at %s: link %q %s", e.Page, e.Href, e.Reason)
}

func (e *ListingError) ErrorCode() string {
	return "listing_inconsistent"
}
