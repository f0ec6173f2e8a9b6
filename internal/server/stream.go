package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/rickgao/render-bench/internal/model"
	"github.com/rickgao/render-bench/internal/stream"
)

// SessionIDHeader carries the stream session id on /stream and /ws responses.
const SessionIDHeader = "X-Session-ID"

// StreamHandler serves the live update stream over SSE and WebSocket.
type StreamHandler struct {
	manager      *stream.Manager
	upgrader     *websocket.Upgrader
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewStreamHandler(manager *stream.Manager, allowOrigins []string, writeTimeout time.Duration, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		manager:      manager,
		upgrader:     stream.NewUpgrader(allowOrigins),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (h *StreamHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/stream", h.SSE)
	r.GET("/ws", h.WebSocket)
}

// SSE handles GET /stream. The handler blocks until the session ends.
func (h *StreamHandler) SSE(c *gin.Context) {
	cfg, err := h.manager.ResolveConfig(c.Query("population"), c.Query("interval_ms"))
	if err != nil {
		abortWithError(c, "stream", err)
		return
	}

	sink, err := stream.NewSSESink(c.Writer)
	if err != nil {
		GetLogger(c, h.logger).Error("cannot stream", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			NewErrorResponse(http.StatusInternalServerError, "streaming unsupported"))
		return
	}

	sess := h.manager.NewSession(cfg, stream.TransportSSE, sink)

	stream.SetSSEHeaders(c.Writer.Header())
	c.Header(SessionIDHeader, sess.ID().String())
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	h.manager.Serve(c.Request.Context(), sess)
}

// WebSocket handles GET /ws. Overrides are validated before the upgrade so
// a bad request still gets a JSON 422.
func (h *StreamHandler) WebSocket(c *gin.Context) {
	logger := GetLogger(c, h.logger)

	cfg, err := h.manager.ResolveConfig(c.Query("population"), c.Query("interval_ms"))
	if err != nil {
		abortWithError(c, "ws", err)
		return
	}

	// The connection only exists after the upgrade, which needs the session id.
	var sink *stream.WebSocketSink
	sess := h.manager.NewSession(cfg, stream.TransportWebSocket, stream.SinkFunc(func(b model.Batch) error {
		return sink.Send(b)
	}))

	header := http.Header{}
	header.Set(SessionIDHeader, sess.ID().String())
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sink = stream.NewWebSocketSink(conn, h.writeTimeout, logger)
	ctx, cancel := sink.Watch(c.Request.Context())
	defer cancel()

	reason := h.manager.Serve(ctx, sess)
	if err := sink.Close(stream.CloseCode(reason), string(reason)); err != nil {
		logger.Debug("websocket close", "error", err)
	}
}
