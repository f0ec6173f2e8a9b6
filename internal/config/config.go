package config

import "time"

// ServerConfig is the root configuration for the benchmark server.
type ServerConfig struct {
	Server  HTTPConfig    `yaml:"server"`
	CORS    CORSConfig    `yaml:"cors"`
	Stream  StreamConfig  `yaml:"stream"`
	Results ResultsConfig `yaml:"results"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// CORSConfig holds the cross-origin allow-list. Methods and headers are
// always unrestricted and credentials are always allowed.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

// StreamConfig holds live update stream settings.
type StreamConfig struct {
	Population      int           `yaml:"population"`        // entities per session
	TickInterval    time.Duration `yaml:"tick_interval"`     // period between batches
	MaxPopulation   int           `yaml:"max_population"`    // upper bound for ?population=
	MinTickInterval time.Duration `yaml:"min_tick_interval"` // lower bound for ?interval_ms=
	Seed            uint64        `yaml:"seed"`              // 0 = random per session
	WriteTimeout    time.Duration `yaml:"write_timeout"`     // WebSocket write deadline
}

// ResultsConfig selects where benchmark reports are stored.
type ResultsConfig struct {
	Driver   string   `yaml:"driver"`   // "memory" or "postgres"
	Capacity int      `yaml:"capacity"` // memory driver ring size
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
