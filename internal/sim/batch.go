package sim

import (
	"math"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// ValueDigits is the number of decimal digits kept in transmitted values.
const ValueDigits = 4

var roundScale = math.Pow10(ValueDigits)

// RoundValue rounds v to ValueDigits decimal digits, halves away from zero.
func RoundValue(v float64) float64 {
	return math.Round(v*roundScale) / roundScale
}

// Batcher turns the state of a store into one outbound Batch.
type Batcher struct {
	now func() time.Time
}

// NewBatcher creates a batcher. A nil clock uses time.Now.
func NewBatcher(now func() time.Time) *Batcher {
	if now == nil {
		now = time.Now
	}
	return &Batcher{now: now}
}

// Build returns one update per entity in id order. Each update's timestamp is
// read when that update is built, so timestamps within a batch may differ
// slightly. The store itself is not modified.
func (b *Batcher) Build(s *Store) model.Batch {
	updates := make([]model.Update, 0, s.Len())
	s.ForEach(func(e *Entity) {
		updates = append(updates, model.Update{
			ID:        e.ID,
			Value:     RoundValue(e.Value),
			Timestamp: b.now().UTC(),
		})
	})
	return model.Batch{Batch: true, Updates: updates}
}
