package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/render-bench/internal/model"
)

// DefaultWriteTimeout bounds a single WebSocket write.
const DefaultWriteTimeout = 5 * time.Second

// NewUpgrader returns an upgrader that accepts the given origins. An empty
// list accepts every origin.
func NewUpgrader(allowOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, o := range allowOrigins {
		allowed[o] = struct{}{}
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// WebSocketSink sends each batch as one JSON text message.
type WebSocketSink struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *slog.Logger

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// NewWebSocketSink wraps an upgraded connection.
func NewWebSocketSink(conn *websocket.Conn, writeTimeout time.Duration, logger *slog.Logger) *WebSocketSink {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketSink{
		conn:         conn,
		writeTimeout: writeTimeout,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Send implements Sink.
func (s *WebSocketSink) Send(batch model.Batch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteJSON(batch)
}

// Watch reads from the connection until the peer goes away and returns a
// context that is cancelled at that point. Inbound messages are discarded.
func (s *WebSocketSink) Watch(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		defer cancel()
		for {
			select {
			case <-s.done:
				return
			default:
			}
			if _, _, err := s.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return ctx, cancel
}

// Close sends a close frame with the given code and closes the connection.
// A peer that already reset the connection cannot receive the frame; that is
// logged at debug and not returned.
func (s *WebSocketSink) Close(code int, text string) error {
	var err error
	s.once.Do(func() {
		close(s.done)

		s.writeMu.Lock()
		werr := s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()
		if werr != nil {
			s.logger.Debug("websocket close frame failed", "code", code, "error", werr)
		}

		err = s.conn.Close()
	})
	return err
}

// CloseCode maps an end reason to the close frame sent to the peer.
func CloseCode(reason EndReason) int {
	switch reason {
	case EndServerShutdown:
		return websocket.CloseGoingAway
	case EndFault:
		return websocket.CloseInternalServerErr
	default:
		return websocket.CloseNormalClosure
	}
}
