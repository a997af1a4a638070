package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrUpstreamUnavailable covers transport failures and non-200 responses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedResponse covers bodies that do not decode to the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError carries the status of a non-200 response and the error text the
// server sent, if any.
type StatusError struct {
	StatusCode int
	URL        string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("HTTP Status Error: %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP Status Error: %d for %s: %s", e.StatusCode, e.URL, e.Detail)
}

func (e *StatusError) Unwrap() error { return ErrUpstreamUnavailable }

// Fetcher retrieves a resource body in a single attempt.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches resources over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher. A zero timeout means no client timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

const maxBodyBytes = 8 << 20

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch url %s: %w", ErrUpstreamUnavailable, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstreamUnavailable, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url, Detail: errorDetail(body)}
	}
	return body, nil
}

// errorDetail pulls the "error" field out of a JSON error body, falling back to
// the trimmed body text.
func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	text := string(bytes.TrimSpace(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
