package stream

import (
	"strconv"
	"time"

	"github.com/rickgao/render-bench/internal/model"
)

// Config holds per-session simulation settings.
type Config struct {
	Population   int
	TickInterval time.Duration
	Seed         uint64 // 0 = random per session
}

// DefaultConfig returns the default session settings.
func DefaultConfig() Config {
	return Config{
		Population:   100,
		TickInterval: 100 * time.Millisecond,
	}
}

// Limits bound the per-request overrides a consumer may ask for.
type Limits struct {
	MaxPopulation   int
	MinTickInterval time.Duration
}

// WithOverrides applies the optional "population" and "interval_ms" query
// values. Empty strings keep the configured value. Out-of-range or malformed
// values produce a *model.ValidationError.
func (c Config) WithOverrides(population, intervalMs string, limits Limits) (Config, error) {
	if population != "" {
		n, err := strconv.Atoi(population)
		if err != nil {
			return c, model.NewValidationError("population", "must be an integer")
		}
		if n < 1 || n > limits.MaxPopulation {
			return c, model.NewValidationError("population",
				"must be between 1 and "+strconv.Itoa(limits.MaxPopulation))
		}
		c.Population = n
	}

	if intervalMs != "" {
		ms, err := strconv.Atoi(intervalMs)
		if err != nil {
			return c, model.NewValidationError("interval_ms", "must be an integer")
		}
		interval := time.Duration(ms) * time.Millisecond
		if interval < limits.MinTickInterval {
			return c, model.NewValidationError("interval_ms",
				"must be at least "+strconv.FormatInt(limits.MinTickInterval.Milliseconds(), 10))
		}
		c.TickInterval = interval
	}

	return c, nil
}
