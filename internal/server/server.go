package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/render-bench/internal/bulk"
	"github.com/rickgao/render-bench/internal/config"
	"github.com/rickgao/render-bench/internal/metrics"
	"github.com/rickgao/render-bench/internal/report"
	"github.com/rickgao/render-bench/internal/stream"
)

// Deps are the components the server routes requests to.
type Deps struct {
	Manager   *stream.Manager
	Store     report.Store
	Generator *bulk.Generator
	Logger    *slog.Logger
}

// Server is the benchmark HTTP server.
type Server struct {
	cfg     *config.ServerConfig
	engine  *gin.Engine
	http    *http.Server
	manager *stream.Manager
	logger  *slog.Logger
}

// New builds the gin engine and registers every route.
func New(cfg *config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	generator := deps.Generator
	if generator == nil {
		generator = bulk.NewGenerator()
	}

	router := gin.New()

	// Correlation ID first so later middleware and handlers can log with it.
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(LoggingMiddleware(logger))
	router.Use(MetricsMiddleware())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORS.AllowOrigins)))

	NewHealthHandler(deps.Manager, deps.Store, cfg.Results.Driver, logger).RegisterRoutes(router)
	NewBenchmarkHandler(generator, logger).RegisterRoutes(router)
	NewStreamHandler(deps.Manager, cfg.CORS.AllowOrigins, cfg.Stream.WriteTimeout, logger).RegisterRoutes(router)
	NewResultsHandler(deps.Store, logger).RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, NewErrorResponse(http.StatusNotFound, "no route for "+c.Request.URL.Path))
	})

	return &Server{
		cfg:    cfg,
		engine: router,
		http: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		},
		manager: deps.Manager,
		logger:  logger,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down within the configured
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown ends every stream session, then stops the HTTP server. Open
// streams would otherwise keep http.Server.Shutdown waiting.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	start := time.Now()

	if err := s.manager.Shutdown(ctx); err != nil {
		s.logger.Warn("stream sessions did not stop in time", "error", err)
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	s.logger.Info("http server stopped", "duration", time.Since(start))
	return nil
}

// corsConfig allows the configured origins with credentials, every method and
// the headers the frontends send.
func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = origins
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	c.AllowHeaders = []string{
		"Origin", "Content-Length", "Content-Type", "Accept", "Authorization",
		"Cache-Control", "Last-Event-ID", "X-Requested-With", CorrelationIDHeader,
	}
	c.ExposeHeaders = []string{CorrelationIDHeader, SessionIDHeader}
	c.AllowCredentials = true
	c.AllowWebSockets = true
	c.MaxAge = 12 * time.Hour
	return c
}
