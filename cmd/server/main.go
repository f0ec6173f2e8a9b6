// server runs the heavy-render benchmark API.
// Usage: go run ./cmd/server --config configs/server.example.yaml
//
// Without --config every default applies (listen on :8000, in-memory results).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rickgao/render-bench/internal/bulk"
	"github.com/rickgao/render-bench/internal/config"
	"github.com/rickgao/render-bench/internal/database"
	"github.com/rickgao/render-bench/internal/report"
	"github.com/rickgao/render-bench/internal/server"
	"github.com/rickgao/render-bench/internal/stream"
	"github.com/rickgao/render-bench/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty uses defaults)")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting render-bench server",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	store, err := openStore(ctx, cfg.Results, logger)
	if err != nil {
		logger.Error("failed to open results store", "driver", cfg.Results.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	manager := stream.NewManager(
		stream.Config{
			Population:   cfg.Stream.Population,
			TickInterval: cfg.Stream.TickInterval,
			Seed:         cfg.Stream.Seed,
		},
		stream.Limits{
			MaxPopulation:   cfg.Stream.MaxPopulation,
			MinTickInterval: cfg.Stream.MinTickInterval,
		},
		logger,
	)

	srv := server.New(cfg, server.Deps{
		Manager:   manager,
		Store:     store,
		Generator: bulk.NewGenerator(),
		Logger:    logger,
	})

	logger.Info("server configured",
		"addr", cfg.Server.Addr,
		"population", cfg.Stream.Population,
		"tick_interval", cfg.Stream.TickInterval,
		"results_driver", cfg.Results.Driver,
		"metrics", cfg.Metrics.Enabled,
		"allow_origins", cfg.CORS.AllowOrigins,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("render-bench server stopped")
}

// openStore returns the configured results store.
func openStore(ctx context.Context, cfg config.ResultsConfig, logger *slog.Logger) (report.Store, error) {
	switch cfg.Driver {
	case "postgres":
		logger.Info("connecting to database",
			"host", cfg.Postgres.Host,
			"port", cfg.Postgres.Port,
			"database", cfg.Postgres.Name,
		)
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		store, err := report.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	default:
		logger.Info("results store ready", "driver", "memory", "capacity", cfg.Capacity)
		return report.NewMemoryStore(cfg.Capacity), nil
	}
}
