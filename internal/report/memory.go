package report

import (
	"context"
	"sync"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// MemoryStore keeps the newest reports in a ring. Once full, each Save
// overwrites the oldest report.
type MemoryStore struct {
	mu    sync.RWMutex
	ring  []model.Report
	next  int
	count int
	now   func() time.Time
}

// NewMemoryStore creates a store holding up to capacity reports.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryStore{
		ring: make([]model.Report, capacity),
		now:  time.Now,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, r *model.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(r, s.now())
	s.ring[s.next] = *r
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, f model.ReportFilter) ([]model.Report, error) {
	limit := ClampLimit(f.Limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Report, 0, min(limit, s.count))
	for i := 1; i <= s.count && len(out) < limit; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		if r := s.ring[idx]; matches(r, f) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() {}
