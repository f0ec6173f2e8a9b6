package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: ":9000"
cors:
  allow_origins:
    - http://localhost:3000
stream:
  population: 250
  tick_interval: 50ms
  seed: 99
results:
  driver: postgres
  postgres:
    host: localhost
    port: 5433
    name: bench
    user: bench
    password: benchpass
log:
  level: debug
  format: json
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if len(cfg.CORS.AllowOrigins) != 1 || cfg.CORS.AllowOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORS.AllowOrigins = %v, want [http://localhost:3000]", cfg.CORS.AllowOrigins)
	}
	if cfg.Stream.Population != 250 {
		t.Errorf("Stream.Population = %d, want 250", cfg.Stream.Population)
	}
	if cfg.Stream.TickInterval != 50*time.Millisecond {
		t.Errorf("Stream.TickInterval = %v, want 50ms", cfg.Stream.TickInterval)
	}
	if cfg.Stream.Seed != 99 {
		t.Errorf("Stream.Seed = %d, want 99", cfg.Stream.Seed)
	}
	if cfg.Results.Postgres.Port != 5433 {
		t.Errorf("Results.Postgres.Port = %d, want 5433", cfg.Results.Postgres.Port)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true when omitted")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_RESULTS_PASSWORD", "secret123")

	yaml := `
results:
  driver: postgres
  postgres:
    host: localhost
    name: bench
    user: bench
    password: ${TEST_RESULTS_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Results.Postgres.Password != "secret123" {
		t.Errorf("Results.Postgres.Password = %q, want %q", cfg.Results.Postgres.Password, "secret123")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "read config file") {
		t.Errorf("error = %q, want it to mention read config file", err.Error())
	}
}

func TestLoadMetricsDisabled(t *testing.T) {
	path := writeTempFile(t, "metrics:\n  enabled: false\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "log:\n  level: warn\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Stream.Population != DefaultPopulation {
		t.Errorf("Stream.Population = %d, want default %d", cfg.Stream.Population, DefaultPopulation)
	}
	if cfg.Stream.TickInterval != DefaultTickInterval {
		t.Errorf("Stream.TickInterval = %v, want default %v", cfg.Stream.TickInterval, DefaultTickInterval)
	}
	if len(cfg.CORS.AllowOrigins) != len(DefaultAllowOrigins) {
		t.Errorf("CORS.AllowOrigins = %v, want default %v", cfg.CORS.AllowOrigins, DefaultAllowOrigins)
	}
	if cfg.Results.Driver != DefaultResultsDriver {
		t.Errorf("Results.Driver = %q, want default %q", cfg.Results.Driver, DefaultResultsDriver)
	}
	if cfg.Results.Postgres.Port != DefaultDBPort {
		t.Errorf("Results.Postgres.Port = %d, want default %d", cfg.Results.Postgres.Port, DefaultDBPort)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, DefaultLogFormat)
	}
}

func TestLoadAndValidateEmptyPath(t *testing.T) {
	cfg, err := LoadAndValidate("")
	if err != nil {
		t.Fatalf("LoadAndValidate(\"\") failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestLoadAndValidateInvalid(t *testing.T) {
	path := writeTempFile(t, "results:\n  driver: redis\n")

	_, err := LoadAndValidate(path)
	if err == nil {
		t.Fatal("LoadAndValidate() expected error")
	}
	if !strings.HasPrefix(err.Error(), "validate config: ") {
		t.Errorf("error = %q, want validate config prefix", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ServerConfig)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *ServerConfig) {},
			wantErr: "",
		},
		{
			name:    "missing addr",
			mutate:  func(c *ServerConfig) { c.Server.Addr = "" },
			wantErr: "server.addr is required",
		},
		{
			name:    "wildcard origin",
			mutate:  func(c *ServerConfig) { c.CORS.AllowOrigins = []string{"*"} },
			wantErr: `cors.allow_origins cannot contain "*" when credentials are allowed`,
		},
		{
			name:    "origin without scheme",
			mutate:  func(c *ServerConfig) { c.CORS.AllowOrigins = []string{"localhost:5173"} },
			wantErr: `cors.allow_origins entry "localhost:5173" must start with http:// or https://`,
		},
		{
			name:    "population below one",
			mutate:  func(c *ServerConfig) { c.Stream.Population = -1 },
			wantErr: "stream.population must be >= 1",
		},
		{
			name:    "max population below population",
			mutate:  func(c *ServerConfig) { c.Stream.MaxPopulation = 50 },
			wantErr: "stream.max_population (50) cannot be less than stream.population (100)",
		},
		{
			name:    "tick below minimum",
			mutate:  func(c *ServerConfig) { c.Stream.TickInterval = time.Millisecond },
			wantErr: "stream.tick_interval (1ms) cannot be less than stream.min_tick_interval (10ms)",
		},
		{
			name:    "unknown results driver",
			mutate:  func(c *ServerConfig) { c.Results.Driver = "redis" },
			wantErr: `results.driver must be memory or postgres, got "redis"`,
		},
		{
			name:    "postgres without host",
			mutate:  func(c *ServerConfig) { c.Results.Driver = "postgres" },
			wantErr: "results.postgres.host is required",
		},
		{
			name: "postgres min_conns exceeds max_conns",
			mutate: func(c *ServerConfig) {
				c.Results.Driver = "postgres"
				c.Results.Postgres = DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "results.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name:    "metrics path without slash",
			mutate:  func(c *ServerConfig) { c.Metrics.Path = "metrics" },
			wantErr: `metrics.path must start with /, got "metrics"`,
		},
		{
			name:    "bad log level",
			mutate:  func(c *ServerConfig) { c.Log.Level = "verbose" },
			wantErr: `log.level must be debug, info, warn or error, got "verbose"`,
		},
		{
			name:    "bad log format",
			mutate:  func(c *ServerConfig) { c.Log.Format = "xml" },
			wantErr: `log.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
