package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConsumer reads GET /ws.
type WebSocketConsumer struct {
	cfg    ConsumerConfig
	logger *slog.Logger

	mu        sync.RWMutex
	sessionID string
}

// NewWebSocketConsumer creates a WebSocket consumer.
func NewWebSocketConsumer(cfg ConsumerConfig, logger *slog.Logger) *WebSocketConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketConsumer{cfg: cfg, logger: logger}
}

// SessionID implements Consumer.
func (c *WebSocketConsumer) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Run implements Consumer.
func (c *WebSocketConsumer) Run(ctx context.Context, fn Handler) error {
	target, err := streamURL(c.cfg, "/ws", true)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if resp != nil {
			return fmt.Errorf("dial: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.sessionID = resp.Header.Get("X-Session-ID")
	c.mu.Unlock()

	c.logger.Debug("websocket stream connected", "url", target, "session_id", c.SessionID())

	// Unblock ReadMessage when ctx ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrStreamClosed
			}
			return fmt.Errorf("read: %w", err)
		}

		msg := Message{Size: len(data), ReceivedAt: receivedAt}
		if err := json.Unmarshal(data, &msg.Batch); err != nil {
			return fmt.Errorf("decode batch: %w", err)
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}
