package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr              = ":8000"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultPopulation        = 100
	DefaultTickInterval      = 100 * time.Millisecond
	DefaultMaxPopulation     = 5000
	DefaultMinTickInterval   = 10 * time.Millisecond
	DefaultWriteTimeout      = 5 * time.Second
	DefaultResultsDriver     = "memory"
	DefaultResultsCapacity   = 1000
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// DefaultAllowOrigins are the local dev servers of the benchmark frontends.
var DefaultAllowOrigins = []string{
	"http://localhost:5173", // React / Vite
	"http://localhost:5174", // Vue or Svelte
	"http://localhost:5175",
}

func (c *ServerConfig) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// CORS defaults
	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = append([]string(nil), DefaultAllowOrigins...)
	}

	// Stream defaults
	if c.Stream.Population == 0 {
		c.Stream.Population = DefaultPopulation
	}
	if c.Stream.TickInterval == 0 {
		c.Stream.TickInterval = DefaultTickInterval
	}
	if c.Stream.MaxPopulation == 0 {
		c.Stream.MaxPopulation = DefaultMaxPopulation
	}
	if c.Stream.MinTickInterval == 0 {
		c.Stream.MinTickInterval = DefaultMinTickInterval
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}

	// Results defaults
	if c.Results.Driver == "" {
		c.Results.Driver = DefaultResultsDriver
	}
	if c.Results.Capacity == 0 {
		c.Results.Capacity = DefaultResultsCapacity
	}
	applyDBDefaults(&c.Results.Postgres)

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
