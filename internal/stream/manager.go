package stream

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/render-bench/internal/metrics"
)

// Manager owns the set of open sessions.
type Manager struct {
	cfg    Config
	limits Limits
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	closed   bool
}

// NewManager creates a Manager whose sessions default to cfg.
func NewManager(cfg Config, limits Limits, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.MaxPopulation <= 0 {
		limits.MaxPopulation = 5000
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	return &Manager{
		cfg:      cfg,
		limits:   limits,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Config returns the default session settings.
func (m *Manager) Config() Config {
	return m.cfg
}

// Limits returns the bounds applied to per-request overrides.
func (m *Manager) Limits() Limits {
	return m.limits
}

// ResolveConfig applies the optional "population" and "interval_ms" query
// values to the manager's defaults.
func (m *Manager) ResolveConfig(population, intervalMs string) (Config, error) {
	return m.cfg.WithOverrides(population, intervalMs, m.limits)
}

// NewSession builds a session that logs through the manager's logger. The
// session is not started.
func (m *Manager) NewSession(cfg Config, transport Transport, sink Sink) *Session {
	return NewSession(cfg, transport, sink, m.logger)
}

// Serve runs s until ctx is done, the sink fails, or the manager shuts down.
// It blocks for the lifetime of the session.
func (m *Manager) Serve(ctx context.Context, s *Session) EndReason {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return EndServerShutdown
	}
	m.sessions[s.id] = s
	m.wg.Add(1)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.sessions, s.id)
		m.mu.Unlock()
		m.wg.Done()
	}()

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(m.ctx, func() {
		cancel(context.Cause(m.ctx))
	})
	defer stop()

	transport := string(s.transport)
	metrics.StreamSessionsActive.WithLabelValues(transport).Inc()
	metrics.StreamSessionsTotal.WithLabelValues(transport).Inc()
	defer metrics.StreamSessionsActive.WithLabelValues(transport).Dec()

	m.logger.Info("stream session opened",
		"session_id", s.id.String(),
		"transport", transport,
		"population", s.sim.Population(),
		"tick_interval", s.cfg.TickInterval,
	)

	reason := s.Run(runCtx)

	elapsed := time.Since(s.startedAt)
	metrics.StreamSessionEndsTotal.WithLabelValues(string(reason)).Inc()
	metrics.StreamSessionDurationSeconds.Observe(elapsed.Seconds())

	m.logger.Info("stream session closed",
		"session_id", s.id.String(),
		"transport", transport,
		"reason", string(reason),
		"batches", s.batches.Load(),
		"duration", elapsed,
	)

	return reason
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sessions returns a snapshot of open sessions, oldest first.
func (m *Manager) Sessions() []SessionInfo {
	m.mu.RLock()
	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		infos = append(infos, s.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// Shutdown cancels every open session and waits for them to finish or for
// ctx to expire. New sessions are refused afterwards.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	open := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("stopping stream sessions", "open", open)
	m.cancel(ErrServerShutdown)

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("stream sessions stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, sessions still open", "open", m.Active())
		return ctx.Err()
	}
}
