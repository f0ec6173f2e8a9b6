package bulk

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// Description is the fixed description of every generated record.
const Description = "This is a test description for benchmarking purposes."

// Generator produces bulk benchmark payloads.
type Generator struct {
	now  func() time.Time
	seed uint64
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used for record and response timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithSeed makes every Generate call draw from the same seeded sequence.
// Zero keeps the default of a fresh random seed per call.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate validates req and builds its payload. A *model.ValidationError is
// returned for invalid input, in which case no records are generated.
func (g *Generator) Generate(req model.BenchmarkRequest) (*model.BenchmarkResponse, error) {
	if err := model.Validate(req); err != nil {
		return nil, err
	}

	rng := g.newRand()
	payload := make([]model.Record, req.PayloadSize)
	for i := range payload {
		payload[i] = g.record(rng, i, req.Complexity)
	}

	return &model.BenchmarkResponse{
		Framework:   req.Framework,
		GeneratedAt: g.now().UTC(),
		Config:      req,
		Payload:     payload,
	}, nil
}

func (g *Generator) newRand() *rand.Rand {
	seed := g.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// record builds one record of the requested tier.
func (g *Generator) record(rng *rand.Rand, id int, c model.Complexity) model.Record {
	base := model.BaseRecord{
		ID:          id,
		Name:        fmt.Sprintf("Item-%d", id),
		Value:       intRange(rng, 1, 1000),
		Active:      rng.IntN(2) == 1,
		Timestamp:   g.now().UTC(),
		Description: Description,
	}

	switch c {
	case model.ComplexityMedium:
		return model.MediumRecord{
			BaseRecord: base,
			Tags:       tags(intRange(rng, 1, 5)),
			Nested: model.MediumNested{
				Level: 1,
				Score: rng.Float64(),
			},
		}
	case model.ComplexityHigh:
		history := make([]model.HistoryEntry, intRange(rng, 2, 5))
		for j := range history {
			history[j] = model.HistoryEntry{
				Event: fmt.Sprintf("event_%d", j),
				Count: intRange(rng, 1, 10),
			}
		}
		return model.HighRecord{
			BaseRecord: base,
			Tags:       tags(intRange(rng, 3, 7)),
			Nested: model.HighNested{
				Level: intRange(rng, 1, 3),
				Score: rng.Float64(),
				Metadata: model.RecordMetadata{
					CreatedBy: fmt.Sprintf("user-%d", intRange(rng, 1, 100)),
					Priority:  model.Priorities[rng.IntN(len(model.Priorities))],
				},
			},
			History: history,
		}
	default:
		return model.LowRecord{BaseRecord: base}
	}
}

// intRange returns a uniform integer in [lo, hi].
func intRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func tags(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("tag-%d", i)
	}
	return out
}
