package stream

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/render-bench/internal/metrics"
	"github.com/rickgao/render-bench/internal/model"
	"github.com/rickgao/render-bench/internal/sim"
)

// Transport names the wire protocol a session is delivered over.
type Transport string

const (
	TransportSSE       Transport = "sse"
	TransportWebSocket Transport = "ws"
)

// EndReason records why a session stopped. None of them is a failure of
// the service except EndFault.
type EndReason string

const (
	EndClientDisconnected EndReason = "client_disconnected"
	EndServerShutdown     EndReason = "server_shutdown"
	EndWriteFailed        EndReason = "write_failed"
	EndFault              EndReason = "fault"
)

// ErrServerShutdown is the cancellation cause used when the Manager shuts down.
var ErrServerShutdown = errors.New("server shutting down")

// Sink delivers one batch to the consumer.
type Sink interface {
	Send(batch model.Batch) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(model.Batch) error

func (f SinkFunc) Send(b model.Batch) error {
	return f(b)
}

// SessionInfo is a point-in-time view of a session.
type SessionInfo struct {
	ID           uuid.UUID     `json:"id"`
	Transport    Transport     `json:"transport"`
	Population   int           `json:"population"`
	TickInterval time.Duration `json:"tickInterval"`
	StartedAt    time.Time     `json:"startedAt"`
	Batches      uint64        `json:"batches"`
}

// Session is one consumer's simulation and its delivery loop.
type Session struct {
	id        uuid.UUID
	transport Transport
	cfg       Config
	sim       *sim.Simulation
	sink      Sink
	logger    *slog.Logger

	startedAt time.Time
	batches   atomic.Uint64
}

// NewSession initializes the session's entity population. Nothing is emitted
// until Run is called.
func NewSession(cfg Config, transport Transport, sink Sink, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}

	id := uuid.New()
	return &Session{
		id:        id,
		transport: transport,
		cfg:       cfg,
		sim:       sim.New(sim.Config{Population: cfg.Population, Seed: cfg.Seed}),
		sink:      sink,
		startedAt: time.Now(),
		logger:    logger.With("session_id", id.String(), "transport", string(transport)),
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Info returns a snapshot of the session for health and debug output.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:           s.id,
		Transport:    s.transport,
		Population:   s.sim.Population(),
		TickInterval: s.cfg.TickInterval,
		StartedAt:    s.startedAt,
		Batches:      s.batches.Load(),
	}
}

// Run emits one batch immediately and then one per tick interval until ctx is
// cancelled or the sink fails. Cancellation is checked only between ticks, so
// a tick in progress always completes.
func (s *Session) Run(ctx context.Context) (reason EndReason) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("stream session fault",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			reason = EndFault
		}
	}()

	s.logger.Debug("stream session started",
		"population", s.sim.Population(),
		"tick_interval", s.cfg.TickInterval,
		"seed", s.sim.Seed(),
	)

	for {
		if ctx.Err() != nil {
			return cancelReason(ctx)
		}

		if err := s.tick(); err != nil {
			s.logger.Debug("stream write failed", "error", err)
			return EndWriteFailed
		}

		select {
		case <-ctx.Done():
			return cancelReason(ctx)
		case <-ticker.C:
		}
	}
}

// tick advances every entity, builds the batch and emits it.
func (s *Session) tick() error {
	start := time.Now()

	batch := s.sim.Advance()
	if err := s.sink.Send(batch); err != nil {
		return err
	}

	s.batches.Add(1)
	metrics.StreamBatchesTotal.WithLabelValues(string(s.transport)).Inc()
	metrics.StreamTickDurationSeconds.Observe(time.Since(start).Seconds())
	return nil
}

func cancelReason(ctx context.Context) EndReason {
	if errors.Is(context.Cause(ctx), ErrServerShutdown) {
		return EndServerShutdown
	}
	return EndClientDisconnected
}
