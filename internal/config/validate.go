package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *ServerConfig) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	for _, origin := range c.CORS.AllowOrigins {
		if origin == "*" {
			return errors.New("cors.allow_origins cannot contain \"*\" when credentials are allowed")
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("cors.allow_origins entry %q must start with http:// or https://", origin)
		}
	}

	if c.Stream.Population < 1 {
		return errors.New("stream.population must be >= 1")
	}
	if c.Stream.MaxPopulation < c.Stream.Population {
		return fmt.Errorf("stream.max_population (%d) cannot be less than stream.population (%d)",
			c.Stream.MaxPopulation, c.Stream.Population)
	}
	if c.Stream.MinTickInterval <= 0 {
		return errors.New("stream.min_tick_interval must be > 0")
	}
	if c.Stream.TickInterval < c.Stream.MinTickInterval {
		return fmt.Errorf("stream.tick_interval (%s) cannot be less than stream.min_tick_interval (%s)",
			c.Stream.TickInterval, c.Stream.MinTickInterval)
	}

	switch c.Results.Driver {
	case "memory":
		if c.Results.Capacity < 1 {
			return errors.New("results.capacity must be >= 1")
		}
	case "postgres":
		if err := c.Results.Postgres.validate("results.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("results.driver must be memory or postgres, got %q", c.Results.Driver)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
