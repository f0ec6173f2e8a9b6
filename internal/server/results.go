package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rickgao/render-bench/internal/model"
	"github.com/rickgao/render-bench/internal/report"
)

const storeTimeout = 5 * time.Second

// ResultsHandler accepts and lists benchmark measurements.
type ResultsHandler struct {
	store  report.Store
	logger *slog.Logger
}

func NewResultsHandler(store report.Store, logger *slog.Logger) *ResultsHandler {
	return &ResultsHandler{store: store, logger: logger}
}

func (h *ResultsHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/benchmark/results", h.Submit)
	r.GET("/benchmark/results", h.List)
}

// ListResponse wraps a page of reports.
type ListResponse struct {
	Count   int            `json:"count"`
	Results []model.Report `json:"results"`
}

// Submit handles POST /benchmark/results.
func (h *ResultsHandler) Submit(c *gin.Context) {
	var r model.Report
	if err := c.ShouldBindJSON(&r); err != nil {
		if errors.Is(err, io.EOF) {
			abortWithError(c, "results", model.NewValidationError("body", "is required"))
			return
		}
		abortWithError(c, "results", bindError(err))
		return
	}
	if err := model.Validate(r); err != nil {
		abortWithError(c, "results", err)
		return
	}

	// Identity and time are assigned by the store.
	r.ID = uuid.Nil
	r.CreatedAt = time.Time{}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()
	if err := h.store.Save(ctx, &r); err != nil {
		GetLogger(c, h.logger).Error("failed to save report", "error", err)
		abortWithError(c, "results", err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// List handles GET /benchmark/results?framework=&mode=&limit=.
func (h *ResultsHandler) List(c *gin.Context) {
	f := model.ReportFilter{
		Framework: c.Query("framework"),
		Mode:      model.ReportMode(c.Query("mode")),
	}

	if f.Mode != "" && f.Mode != model.ReportModeBulk && f.Mode != model.ReportModeStream {
		abortWithError(c, "results", model.NewValidationError("mode", "must be one of: bulk, stream"))
		return
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			abortWithError(c, "results", model.NewValidationError("limit", "must be a positive integer"))
			return
		}
		f.Limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()
	reports, err := h.store.List(ctx, f)
	if err != nil {
		GetLogger(c, h.logger).Error("failed to list reports", "error", err)
		abortWithError(c, "results", err)
		return
	}

	c.JSON(http.StatusOK, ListResponse{Count: len(reports), Results: reports})
}
