package connection

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// maxFrameSize bounds one SSE line. A 5000-entity batch is well under 1 MiB.
const maxFrameSize = 8 << 20

// SSEConsumer reads GET /stream.
type SSEConsumer struct {
	cfg    ConsumerConfig
	logger *slog.Logger

	mu        sync.RWMutex
	sessionID string
}

// NewSSEConsumer creates an SSE consumer.
func NewSSEConsumer(cfg ConsumerConfig, logger *slog.Logger) *SSEConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	return &SSEConsumer{cfg: cfg, logger: logger}
}

// SessionID implements Consumer.
func (c *SSEConsumer) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Run implements Consumer.
func (c *SSEConsumer) Run(ctx context.Context, fn Handler) error {
	target, err := streamURL(c.cfg, "/stream", false)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connect: unexpected status %d", resp.StatusCode)
	}

	c.mu.Lock()
	c.sessionID = resp.Header.Get("X-Session-ID")
	c.mu.Unlock()

	c.logger.Debug("sse stream connected", "url", target, "session_id", c.SessionID())

	err = readEvents(resp.Body, func(data []byte) error {
		msg := Message{Size: len(data), ReceivedAt: time.Now()}
		if err := json.Unmarshal(data, &msg.Batch); err != nil {
			return fmt.Errorf("decode batch: %w", err)
		}
		return fn(msg)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// readEvents scans an event stream and calls fn with the data of each event.
// Multiple data lines in one event are joined with "\n"; comments and other
// fields are ignored. It returns ErrStreamClosed at EOF.
func readEvents(r io.Reader, fn func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	var data bytes.Buffer
	for scanner.Scan() {
		line := scanner.Bytes()

		if len(line) == 0 {
			if data.Len() == 0 {
				continue
			}
			if err := fn(data.Bytes()); err != nil {
				return err
			}
			data.Reset()
			continue
		}

		value, ok := bytes.CutPrefix(line, []byte("data:"))
		if !ok {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		if data.Len() > 0 {
			data.WriteByte('\n')
		}
		data.Write(value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return ErrStreamClosed
}
