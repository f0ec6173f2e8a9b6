package sim

import "math/rand/v2"

// Trend is the direction bias applied to an entity's random step.
type Trend int8

const (
	Rising  Trend = 1
	Falling Trend = -1
)

// Sign returns +1 for Rising and -1 for Falling.
func (t Trend) Sign() float64 {
	if t == Falling {
		return -1
	}
	return 1
}

// Flip returns the opposite trend.
func (t Trend) Flip() Trend {
	if t == Falling {
		return Rising
	}
	return Falling
}

func (t Trend) String() string {
	if t == Falling {
		return "falling"
	}
	return "rising"
}

// Initial value range (inclusive integers).
const (
	InitialValueMin = 1
	InitialValueMax = 100
)

// Entity is one simulated value.
type Entity struct {
	ID    int
	Value float64 // never below MinValue
	Trend Trend
}

// Store holds the fixed population of one session. Entities live in a slice
// indexed by id; none are added or removed after NewStore.
type Store struct {
	entities []Entity
}

// NewStore creates count entities with ids 0..count-1, an independent random
// integer value in [InitialValueMin, InitialValueMax] and a random trend.
func NewStore(count int, rng *rand.Rand) *Store {
	if count < 0 {
		count = 0
	}
	entities := make([]Entity, count)
	for i := range entities {
		trend := Rising
		if rng.IntN(2) == 0 {
			trend = Falling
		}
		entities[i] = Entity{
			ID:    i,
			Value: float64(InitialValueMin + rng.IntN(InitialValueMax-InitialValueMin+1)),
			Trend: trend,
		}
	}
	return &Store{entities: entities}
}

// Len returns the population size.
func (s *Store) Len() int {
	return len(s.entities)
}

// ForEach calls fn exactly once per entity in id order. The pointer is only
// valid for the duration of the call.
func (s *Store) ForEach(fn func(e *Entity)) {
	for i := range s.entities {
		fn(&s.entities[i])
	}
}

// Get returns a copy of the entity with the given id.
func (s *Store) Get(id int) (Entity, bool) {
	if id < 0 || id >= len(s.entities) {
		return Entity{}, false
	}
	return s.entities[id], true
}
