package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

// FieldError is one per-field problem in a 422 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errorBody mirrors the service's JSON error response.
type errorBody struct {
	Code        int          `json:"code"`
	Message     string       `json:"message"`
	Description string       `json:"description"`
	Errors      []FieldError `json:"errors"`
}

// APIError represents a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Message     string
	Description string
	Fields      []FieldError
	Body        []byte
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("render-bench api error %d: %s: %s", e.StatusCode, e.Message, e.Description)
	}
	return fmt.Sprintf("render-bench api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// response is a successful reply with its round-trip time.
type response struct {
	body    []byte
	elapsed time.Duration
}

// doRequest performs one HTTP request. A non-nil payload is sent as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload []byte) (*response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       data,
		}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Description = eb.Description
			apiErr.Fields = eb.Errors
		}
		return nil, apiErr
	}

	return &response{body: data, elapsed: elapsed}, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values, payload []byte) (*response, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			var jitter time.Duration
			if backoff > 0 {
				jitter = backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			}
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		resp, err := c.doRequest(ctx, method, path, query, payload)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get performs a GET request with retries and decodes the JSON reply.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) (time.Duration, error) {
	resp, err := c.doWithRetry(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return resp.elapsed, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.elapsed, nil
}

// post sends body as JSON with retries and decodes the JSON reply.
func (c *Client) post(ctx context.Context, path string, body, result any) (time.Duration, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.doWithRetry(ctx, http.MethodPost, path, nil, payload)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(resp.body, result); err != nil {
		return resp.elapsed, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp.elapsed, nil
}
