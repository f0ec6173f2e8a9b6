package sim

import (
	"math/rand/v2"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// DefaultPopulation is the number of entities in a session unless configured.
const DefaultPopulation = 100

// Config configures a Simulation.
type Config struct {
	Population int              // entities, default DefaultPopulation
	Seed       uint64           // 0 draws a random seed
	Now        func() time.Time // clock for update timestamps, default time.Now
}

// Simulation bundles the store, engine and batcher of one session.
type Simulation struct {
	store   *Store
	engine  *Engine
	batcher *Batcher
	seed    uint64
	ticks   uint64
}

// New initializes a simulation with its own random source.
func New(cfg Config) *Simulation {
	if cfg.Population <= 0 {
		cfg.Population = DefaultPopulation
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	return &Simulation{
		store:   NewStore(cfg.Population, rng),
		engine:  NewEngine(rng),
		batcher: NewBatcher(cfg.Now),
		seed:    seed,
	}
}

// Advance runs one full tick over every entity and returns its batch.
func (s *Simulation) Advance() model.Batch {
	s.engine.Tick(s.store)
	s.ticks++
	return s.batcher.Build(s.store)
}

// Population returns the fixed number of entities.
func (s *Simulation) Population() int {
	return s.store.Len()
}

// Seed returns the seed the random source was created with.
func (s *Simulation) Seed() uint64 {
	return s.seed
}

// Ticks returns how many times Advance has run.
func (s *Simulation) Ticks() uint64 {
	return s.ticks
}

// Entity returns a copy of the entity with the given id.
func (s *Simulation) Entity(id int) (Entity, bool) {
	return s.store.Get(id)
}
