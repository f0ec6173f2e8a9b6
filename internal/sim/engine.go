package sim

import "math/rand/v2"

// Walk parameters.
const (
	MinValue        = 0.1  // floor applied to the stored value
	MaxStep         = 2.5  // step is drawn from Uniform(-MaxStep, MaxStep)
	FlipProbability = 0.05 // per entity, per tick
)

// Engine advances entities by one simulation step.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine drawing from rng.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Step advances a single entity: a trend-biased uniform step, the floor on
// the stored value, then an independent chance to flip the trend.
func (e *Engine) Step(ent *Entity) {
	step := e.rng.Float64()*2*MaxStep - MaxStep
	value := ent.Value + step*ent.Trend.Sign()
	if value < MinValue {
		value = MinValue
	}
	ent.Value = value

	if e.rng.Float64() < FlipProbability {
		ent.Trend = ent.Trend.Flip()
	}
}

// Tick runs Step over every entity of the store exactly once.
func (e *Engine) Tick(s *Store) {
	s.ForEach(e.Step)
}
