package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// Errors
var (
	ErrStreamClosed     = errors.New("stream closed by server")
	ErrUnknownTransport = errors.New("unknown transport")
)

// Transport names.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "ws"
)

// Message is one decoded batch.
type Message struct {
	Batch      model.Batch
	Size       int       // encoded size in bytes
	ReceivedAt time.Time // local time the frame was fully read
}

// Handler processes one message. Returning an error stops the consumer.
type Handler func(Message) error

// Consumer reads one stream session.
type Consumer interface {
	// Run connects and delivers every batch to fn until ctx is done, the
	// server ends the stream, or fn fails. Cancellation via ctx returns nil.
	Run(ctx context.Context, fn Handler) error

	// SessionID returns the server-assigned session id once connected.
	SessionID() string
}

// ConsumerConfig holds consumer settings.
type ConsumerConfig struct {
	BaseURL          string        // service root, e.g. http://localhost:8000
	Population       int           // 0 = server default
	Interval         time.Duration // 0 = server default
	HandshakeTimeout time.Duration // default 10s
	HTTPClient       *http.Client  // SSE only, default has no timeout
}

// New returns a consumer for the named transport.
func New(transport string, cfg ConsumerConfig, logger *slog.Logger) (Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}

	switch transport {
	case TransportSSE:
		return NewSSEConsumer(cfg, logger), nil
	case TransportWebSocket:
		return NewWebSocketConsumer(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

// streamURL builds the endpoint URL with the optional overrides. For
// WebSocket the http(s) scheme becomes ws(s).
func streamURL(cfg ConsumerConfig, path string, websocket bool) (string, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if websocket {
		switch u.Scheme {
		case "http":
			u.Scheme = "ws"
		case "https":
			u.Scheme = "wss"
		}
	}
	u.Path = path

	q := url.Values{}
	if cfg.Population > 0 {
		q.Set("population", strconv.Itoa(cfg.Population))
	}
	if cfg.Interval > 0 {
		q.Set("interval_ms", strconv.FormatInt(cfg.Interval.Milliseconds(), 10))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
