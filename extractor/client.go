package extractor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"engagement-pipeline/config"
	"engagement-pipeline/utils"
)

// Client issues authenticated calls against the messaging platform API.
// Every call is paced by a fixed inter-call delay; transient outcomes are
// retried with exponential back-off, permanent ones are surfaced as-is.
//
// A Client paces only itself. Extractors running concurrently each own an
// independent Client so one channel's rate budget never serializes another.
type Client struct {
	baseURL   string
	serverKey string
	http      *http.Client
	delay     time.Duration
	retry     *utils.RetryConfig
	logger    *utils.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a paced API client from configuration.
func NewClient(cfg *config.Config, logger *utils.Logger) *Client {
	return &Client{
		baseURL:   cfg.APIBaseURL,
		serverKey: cfg.APIServerKey,
		http: &http.Client{
			Timeout: time.Duration(cfg.APITimeoutSeconds) * time.Second,
		},
		delay: time.Duration(cfg.APIDelayMs) * time.Millisecond,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Duration(cfg.RetryBackoffMs) * time.Millisecond,
			Logger:      logger,
			ShouldRetry: IsTransient,
		},
		logger: logger,
	}
}

// Get fetches one endpoint and returns the raw JSON body. Transient
// failures are retried up to the configured attempt count; the final error
// remains classifiable via IsTransient / IsPermanent.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	var body json.RawMessage
	err := c.retry.Do("GET "+path, func() error {
		var callErr error
		body, callErr = c.get(ctx, path, params)
		return callErr
	})
	return body, err
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	c.pace()

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &PermanentError{Endpoint: path, Body: err.Error()}
	}
	req.Header.Set("Authorization", "ServerKey "+c.serverKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransientError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Endpoint: path, Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return json.RawMessage(data), nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{Endpoint: path, Status: resp.StatusCode}
	default:
		return nil, &PermanentError{Endpoint: path, Status: resp.StatusCode, Body: truncateBody(data)}
	}
}

// pace blocks until the configured inter-call delay has elapsed since the
// previous call on this client.
func (c *Client) pace() {
	if c.delay <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastCall)
	if elapsed < c.delay {
		time.Sleep(c.delay - elapsed)
	}
	c.lastCall = time.Now()
}

func truncateBody(data []byte) string {
	const max = 150
	if len(data) > max {
		data = data[:max]
	}
	return string(data)
}
