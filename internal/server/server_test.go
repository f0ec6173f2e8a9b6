package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/render-bench/internal/config"
	"github.com/rickgao/render-bench/internal/model"
	"github.com/rickgao/render-bench/internal/report"
	"github.com/rickgao/render-bench/internal/stream"
)

type testEnv struct {
	server  *Server
	manager *stream.Manager
	store   report.Store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, store report.Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Stream.Population = 5
	cfg.Stream.TickInterval = 20 * time.Millisecond
	cfg.Stream.MaxPopulation = 50
	cfg.Stream.MinTickInterval = 5 * time.Millisecond

	if store == nil {
		store = report.NewMemoryStore(10)
	}
	manager := stream.NewManager(
		stream.Config{Population: cfg.Stream.Population, TickInterval: cfg.Stream.TickInterval},
		stream.Limits{MaxPopulation: cfg.Stream.MaxPopulation, MinTickInterval: cfg.Stream.MinTickInterval},
		discardLogger(),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		manager.Shutdown(ctx)
	})

	srv := New(cfg, Deps{Manager: manager, Store: store, Logger: discardLogger()})
	return &testEnv{server: srv, manager: manager, store: store}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Heavy Render Benchmark API is running"}`, w.Body.String())
}

type failingStore struct {
	report.Store
}

func (failingStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 0, resp.ActiveSessions)
		assert.Equal(t, "memory", resp.Results.Driver)
		assert.NotEmpty(t, resp.Build.GoVersion)
	})

	t.Run("store down", func(t *testing.T) {
		env := newTestEnv(t, failingStore{Store: report.NewMemoryStore(1)})

		w := env.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unavailable", resp.Results.Status)
		assert.Contains(t, resp.Results.Error, "connection refused")
	})
}

func TestNoRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, decodeError(t, w).Code)
}

func TestCorrelationID(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/", "")
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/benchmark/start", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)

		assert.Less(t, w.Code, 300)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("allowed origin simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5175")
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:5175", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		env.server.Handler().ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(http.MethodGet, "/", "")

	w := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "renderbench_http_requests_total")
}

func TestResults(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/benchmark/results",
		`{"framework":"react","mode":"bulk","payloadSize":1000,"complexity":"high","networkTimeMs":12.5,"renderTimeMs":40,"totalTimeMs":52.5}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved model.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID.String())
	assert.False(t, saved.CreatedAt.IsZero())

	w = env.do(http.MethodPost, "/benchmark/results", `{"framework":"vue","mode":"stream","fps":58.2,"eventsReceived":300}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/benchmark/results", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "vue", list.Results[0].Framework)

	w = env.do(http.MethodGet, "/benchmark/results?framework=react&mode=bulk&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, saved.ID, list.Results[0].ID)
}

func TestResultsValidation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		wantField string
	}{
		{"missing framework", http.MethodPost, "/benchmark/results", `{"mode":"bulk"}`, "framework"},
		{"bad mode", http.MethodPost, "/benchmark/results", `{"framework":"react","mode":"batch"}`, "mode"},
		{"negative fps", http.MethodPost, "/benchmark/results", `{"framework":"react","mode":"stream","fps":-1}`, "fps"},
		{"empty body", http.MethodPost, "/benchmark/results", "", "body"},
		{"list bad limit", http.MethodGet, "/benchmark/results?limit=abc", "", "limit"},
		{"list bad mode", http.MethodGet, "/benchmark/results?mode=other", "", "mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			resp := decodeError(t, w)
			require.NotEmpty(t, resp.Errors)
			assert.Equal(t, tt.wantField, resp.Errors[0].Field)
		})
	}
}

// readSSEFrame reads one "data: ..." frame and decodes its batch.
func readSSEFrame(t *testing.T, r *bufio.Reader) model.Batch {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	payload, ok := strings.CutPrefix(strings.TrimSuffix(line, "\n"), "data: ")
	require.True(t, ok, "line %q", line)

	blank, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "\n", blank)

	var b model.Batch
	require.NoError(t, json.Unmarshal([]byte(payload), &b))
	return b
}
