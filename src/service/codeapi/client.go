package codeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"smell-bot/src/config"
	"smell-bot/src/util"
)

const (
	unitsPath = "/codeapi/v1/units"

	// error bodies are kept for diagnostics only
	maxErrorBody = 4 << 10
)

// Client fetches parsed source-unit metrics from a CodeAPI server
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      config.RetryConfig
}

// NewClient creates a new CodeAPI client
func NewClient(cfg config.CodeAPIConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      cfg.Retry,
	}
}

// GetSourceUnits retrieves the parsed metrics of a project. An empty paths
// slice asks for every unit of the project.
func (c *Client) GetSourceUnits(ctx context.Context, project string, paths []string) (*UnitsResponse, error) {
	util.Debug("Fetching source units for project %q (%d paths)", project, len(paths))

	body, err := json.Marshal(UnitsRequest{Project: project, Paths: paths})
	if err != nil {
		return nil, fmt.Errorf("encoding units request: %w", err)
	}

	var resp UnitsResponse
	if err := c.withRetry(ctx, unitsPath, func() error {
		return c.postJSON(ctx, unitsPath, body, &resp)
	}); err != nil {
		util.Error("Source unit request for %q failed: %v", project, err)
		return nil, err
	}

	util.Debug("CodeAPI returned %d source units for %q", len(resp.Units), project)
	return &resp, nil
}

// withRetry runs call once plus up to MaxAttempts retries, sleeping with
// exponential backoff between attempts. Only APIErrors with a configured
// status are retried.
func (c *Client) withRetry(ctx context.Context, path string, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = call(); err == nil || attempt >= c.retry.MaxAttempts || !c.retryable(err) {
			return err
		}

		delay := c.backoff(attempt + 1)
		util.Warn("CodeAPI %s failed (%v), retry %d/%d in %v", path, err, attempt+1, c.retry.MaxAttempts, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// backoff is InitialDelay * BackoffFactor^attempt, capped at MaxDelay
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.retry.InitialDelay)
	for range attempt {
		delay *= c.retry.BackoffFactor
		if c.retry.MaxDelay > 0 && delay >= float64(c.retry.MaxDelay) {
			return c.retry.MaxDelay
		}
	}
	return time.Duration(delay)
}

func (c *Client) retryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && slices.Contains(c.retry.RetryOnStatus, apiErr.StatusCode)
}

// APIError is a non-2xx CodeAPI response
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CodeAPI error (status %d): %s", e.StatusCode, e.Body)
}
