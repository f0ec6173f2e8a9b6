package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/render-bench/internal/report"
	"github.com/rickgao/render-bench/internal/stream"
	"github.com/rickgao/render-bench/internal/version"
)

// RootMessage is the fixed body of GET /.
const RootMessage = "Heavy Render Benchmark API is running"

// HealthHandler serves the liveness and health endpoints.
type HealthHandler struct {
	manager *stream.Manager
	store   report.Store
	driver  string
	logger  *slog.Logger
}

func NewHealthHandler(manager *stream.Manager, store report.Store, driver string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{manager: manager, store: store, driver: driver, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string            `json:"status"`
	Build          version.BuildInfo `json:"build"`
	ActiveSessions int               `json:"activeSessions"`
	Results        ComponentHealth   `json:"results"`
}

// ComponentHealth reports one dependency.
type ComponentHealth struct {
	Driver string `json:"driver"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Root handles GET /.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": RootMessage})
}

// Health handles GET /health. It returns 503 when the results store is down.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:         "ok",
		Build:          version.Info(),
		ActiveSessions: h.manager.Active(),
		Results:        ComponentHealth{Driver: h.driver, Status: "ok"},
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		GetLogger(c, h.logger).Warn("results store unhealthy", "error", err)
		resp.Status = "degraded"
		resp.Results.Status = "unavailable"
		resp.Results.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}
