package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rickgao/render-bench/internal/model"
)

// ErrStreamingUnsupported is returned when the response writer cannot flush.
var ErrStreamingUnsupported = errors.New("response writer does not support flushing")

// SetSSEHeaders sets the event-stream headers. Proxy buffering is disabled so
// each frame reaches the consumer as soon as it is flushed.
func SetSSEHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// SSESink writes each batch as one "data: <json>\n\n" frame and flushes it.
type SSESink struct {
	w     io.Writer
	flush func()
	buf   bytes.Buffer
}

// NewSSESink wraps w. w must implement http.Flusher.
func NewSSESink(w io.Writer) (*SSESink, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &SSESink{w: w, flush: f.Flush}, nil
}

// Send implements Sink.
func (s *SSESink) Send(batch model.Batch) error {
	s.buf.Reset()
	s.buf.WriteString("data: ")
	if err := json.NewEncoder(&s.buf).Encode(batch); err != nil {
		return err
	}
	// Encode terminates with one newline; the frame needs a blank line.
	s.buf.WriteByte('\n')

	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		return err
	}
	s.flush()
	return nil
}
