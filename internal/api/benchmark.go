package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// BenchmarkResult is a bulk payload as received. Records stay raw because
// their shape depends on the complexity tier.
type BenchmarkResult struct {
	Framework   string                 `json:"framework"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Config      model.BenchmarkRequest `json:"config"`
	Payload     []json.RawMessage      `json:"payload"`

	// NetworkTime is the round trip including reading the body.
	NetworkTime time.Duration `json:"-"`
}

// StartBenchmark requests a bulk payload.
func (c *Client) StartBenchmark(ctx context.Context, req model.BenchmarkRequest) (*BenchmarkResult, error) {
	var result BenchmarkResult
	elapsed, err := c.post(ctx, "/benchmark/start", req, &result)
	if err != nil {
		return nil, err
	}
	result.NetworkTime = elapsed
	return &result, nil
}

// SubmitReport stores a measurement and returns it with its assigned id.
func (c *Client) SubmitReport(ctx context.Context, r model.Report) (*model.Report, error) {
	var saved model.Report
	if _, err := c.post(ctx, "/benchmark/results", r, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListReports returns stored measurements, newest first.
func (c *Client) ListReports(ctx context.Context, f model.ReportFilter) ([]model.Report, error) {
	query := url.Values{}
	if f.Framework != "" {
		query.Set("framework", f.Framework)
	}
	if f.Mode != "" {
		query.Set("mode", string(f.Mode))
	}
	if f.Limit > 0 {
		query.Set("limit", strconv.Itoa(f.Limit))
	}

	var resp struct {
		Count   int            `json:"count"`
		Results []model.Report `json:"results"`
	}
	if _, err := c.get(ctx, "/benchmark/results", query, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// HealthStatus is the reply of GET /health.
type HealthStatus struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"activeSessions"`
	Build          struct {
		Version string `json:"version"`
		Commit  string `json:"commit"`
	} `json:"build"`
	Results struct {
		Driver string `json:"driver"`
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"results"`
}

// Health fetches the service health. A degraded service returns an *APIError
// with status 503.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if _, err := c.get(ctx, "/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
