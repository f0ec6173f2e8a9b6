package main

import (
	"fmt"
	"math"
	"time"

	"github.com/rickgao/render-bench/internal/connection"
	"github.com/rickgao/render-bench/internal/sim"
)

// maxDelta bounds the change of a transmitted value between consecutive
// batches. Rounding on the wire can add one unit in the last kept digit.
var maxDelta = sim.MaxStep + math.Pow10(-sim.ValueDigits) + 1e-9

// checker validates the batches of a single session and accumulates stats.
type checker struct {
	population int // expected count, 0 = take from first batch

	prev       []float64
	batches    int64
	bytes      int64
	latencySum time.Duration
	latencyN   int64
	first      time.Time
	last       time.Time
	violations []string
}

func newChecker(population int) *checker {
	return &checker{population: population}
}

// observe checks msg against the previous batch.
func (c *checker) observe(msg connection.Message) {
	updates := msg.Batch.Updates
	if c.batches == 0 {
		c.first = msg.ReceivedAt
		if c.population == 0 {
			c.population = len(updates)
		}
	}
	c.batches++
	c.bytes += int64(msg.Size)
	c.last = msg.ReceivedAt

	if !msg.Batch.Batch {
		c.violate("batch %d: batch flag is false", c.batches)
	}
	if len(updates) != c.population {
		c.violate("batch %d: %d updates, want %d", c.batches, len(updates), c.population)
	}

	values := make([]float64, len(updates))
	for i, u := range updates {
		if u.ID != i {
			c.violate("batch %d: updates[%d].id = %d", c.batches, i, u.ID)
		}
		if u.Value < sim.MinValue {
			c.violate("batch %d: id %d value %.2f below floor", c.batches, u.ID, u.Value)
		}
		if i < len(c.prev) {
			if d := math.Abs(u.Value - c.prev[i]); d > maxDelta {
				c.violate("batch %d: id %d moved %.2f", c.batches, u.ID, d)
			}
		}
		if !u.Timestamp.IsZero() && !msg.ReceivedAt.IsZero() {
			c.latencySum += msg.ReceivedAt.Sub(u.Timestamp)
			c.latencyN++
		}
		values[i] = u.Value
	}
	c.prev = values
}

// violate records a failed check. Only the first few are kept verbatim.
func (c *checker) violate(format string, args ...any) {
	if len(c.violations) < 20 {
		c.violations = append(c.violations, fmt.Sprintf(format, args...))
		return
	}
	c.violations[len(c.violations)-1] = "further violations omitted"
}

// averageLatency is the mean of receive time minus update timestamp.
func (c *checker) averageLatency() time.Duration {
	if c.latencyN == 0 {
		return 0
	}
	return c.latencySum / time.Duration(c.latencyN)
}

// rate is batches per second between the first and last batch.
func (c *checker) rate() float64 {
	span := c.last.Sub(c.first).Seconds()
	if c.batches < 2 || span <= 0 {
		return 0
	}
	return float64(c.batches-1) / span
}
