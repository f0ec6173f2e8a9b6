package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/rickgao/render-bench/internal/bulk"
	"github.com/rickgao/render-bench/internal/metrics"
	"github.com/rickgao/render-bench/internal/model"
)

// BenchmarkHandler serves the bulk payload endpoint.
type BenchmarkHandler struct {
	generator *bulk.Generator
	logger    *slog.Logger
}

func NewBenchmarkHandler(generator *bulk.Generator, logger *slog.Logger) *BenchmarkHandler {
	return &BenchmarkHandler{generator: generator, logger: logger}
}

func (h *BenchmarkHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/benchmark/start", h.Start)
	r.POST("/api/benchmark/start", h.Start)
}

// Start handles POST /benchmark/start. Omitted fields take their defaults and
// an empty body is the all-defaults request.
func (h *BenchmarkHandler) Start(c *gin.Context) {
	req, err := h.bindRequest(c)
	if err != nil {
		metrics.BulkRequestsTotal.WithLabelValues("invalid", "422").Inc()
		abortWithError(c, "benchmark_start", err)
		return
	}

	resp, err := h.generator.Generate(req)
	if err != nil {
		status := http.StatusInternalServerError
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		metrics.BulkRequestsTotal.WithLabelValues(complexityLabel(req.Complexity), strconv.Itoa(status)).Inc()
		GetLogger(c, h.logger).Debug("bulk request rejected", "error", err)
		abortWithError(c, "benchmark_start", err)
		return
	}

	complexity := string(req.Complexity)
	metrics.BulkRequestsTotal.WithLabelValues(complexity, "200").Inc()
	metrics.BulkRecordsGeneratedTotal.WithLabelValues(complexity).Add(float64(len(resp.Payload)))

	c.JSON(http.StatusOK, resp)
}

// bindRequest decodes the body on top of the defaults. An explicit null is
// rejected rather than treated as omitted.
func (h *BenchmarkHandler) bindRequest(c *gin.Context) (model.BenchmarkRequest, error) {
	req := model.DefaultBenchmarkRequest()
	if c.Request.Body == nil {
		return req, nil
	}

	body, err := c.GetRawData()
	if err != nil {
		return req, model.NewValidationError("body", "could not be read")
	}
	if field, ok := nullField(body, "framework", "payloadSize", "complexity"); ok {
		return req, model.NewValidationError(field, "must not be null")
	}
	if err := binding.JSON.BindBody(body, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, bindError(err)
	}
	return req, nil
}

// nullField returns the first of fields that body sets to JSON null.
func nullField(body []byte, fields ...string) (string, bool) {
	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil {
		return "", false
	}
	for _, f := range fields {
		if raw, ok := obj[f]; ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return f, true
		}
	}
	return "", false
}

// complexityLabel keeps arbitrary client strings out of metric labels.
func complexityLabel(c model.Complexity) string {
	if c.Valid() {
		return string(c)
	}
	return "invalid"
}
