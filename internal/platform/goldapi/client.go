package goldapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultBaseURL is the spot quote for gold in US dollars per troy ounce.
	DefaultBaseURL = "https://www.goldapi.io/api/XAU/USD"
	// DefaultMockPrice is the per-ounce quote returned in mock mode.
	DefaultMockPrice = 2906.50
)

var (
	// ErrMissingAPIKey signals the access token was not configured.
	ErrMissingAPIKey = errors.New("API key not set")
	// ErrCircuitOpen signals the breaker is open after repeated 402/429 responses.
	ErrCircuitOpen = errors.New("gold api circuit open due to repeated rate/limit errors")
)

// StatusError is returned when the quote service answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gold api status %d: %s", e.StatusCode, e.Body)
}

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches the per-ounce gold quote with circuit breaker support.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
	mock       bool
	mockPrice  float64

	breakerThreshold int

	mu               sync.Mutex
	consecutiveLimit int
}

// Config defines settings for the gold quote client.
type Config struct {
	APIKey     string
	BaseURL    string
	Mock       bool
	MockPrice  float64
	BreakerMax int
	Timeout    time.Duration
}

// New creates a gold quote client.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	breaker := cfg.BreakerMax
	if breaker <= 0 {
		breaker = 5
	}
	mockPrice := cfg.MockPrice
	if mockPrice <= 0 {
		mockPrice = DefaultMockPrice
	}

	return &Client{
		apiKey:           cfg.APIKey,
		baseURL:          base,
		httpClient:       httpClient,
		mock:             cfg.Mock,
		mockPrice:        mockPrice,
		breakerThreshold: breaker,
	}
}

// PricePerOunce calls the quote service (or mock) once and returns the price per troy ounce.
func (c *Client) PricePerOunce(ctx context.Context) (float64, error) {
	if c.mock {
		return c.mockPrice, nil
	}
	if c.apiKey == "" {
		return 0, ErrMissingAPIKey
	}
	if c.breakerOpen() {
		return 0, ErrCircuitOpen
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-access-token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		c.recordLimit(false)
		return decodeQuote(resp.Body)
	}

	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests {
		c.recordLimit(true)
	}

	// For other errors, read body for context.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return 0, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}

func (c *Client) breakerOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.consecutiveLimit >= c.breakerThreshold
}

func (c *Client) recordLimit(limited bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if limited {
		c.consecutiveLimit++
		return
	}
	c.consecutiveLimit = 0
}

func decodeQuote(body io.Reader) (float64, error) {
	buf, err := io.ReadAll(body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	var q quote
	if err := json.Unmarshal(bytes.TrimSpace(buf), &q); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if q.Price == nil {
		return 0, errors.New("gold api: response has no price")
	}
	if math.IsNaN(*q.Price) || math.IsInf(*q.Price, 0) || *q.Price < 0 {
		return 0, fmt.Errorf("gold api: invalid price %v", *q.Price)
	}
	return *q.Price, nil
}

type quote struct {
	Price    *float64 `json:"price"`
	Metal    string   `json:"metal"`
	Currency string   `json:"currency"`
}
