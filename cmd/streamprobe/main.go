// streamprobe drives a running render-bench server the way a frontend does:
// it opens live update streams, checks every batch, and optionally fetches a
// bulk payload and records both measurements in the results store.
// Usage: go run ./cmd/streamprobe --url http://localhost:8000 --transport ws --consumers 4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/render-bench/internal/api"
	"github.com/rickgao/render-bench/internal/config"
	"github.com/rickgao/render-bench/internal/connection"
	"github.com/rickgao/render-bench/internal/model"
)

type options struct {
	url         string
	transport   string
	consumers   int
	duration    time.Duration
	population  int
	interval    time.Duration
	framework   string
	payloadSize int
	complexity  string
	report      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.url, "url", "http://localhost:8000", "service base URL")
	flag.StringVar(&opts.transport, "transport", connection.TransportSSE, "stream transport: sse or ws")
	flag.IntVar(&opts.consumers, "consumers", 1, "concurrent stream sessions")
	flag.DurationVar(&opts.duration, "duration", 10*time.Second, "how long to consume each stream")
	flag.IntVar(&opts.population, "population", 0, "entities per session (0 = server default)")
	flag.DurationVar(&opts.interval, "interval", 0, "tick interval (0 = server default)")
	flag.StringVar(&opts.framework, "framework", "probe", "framework label for the bulk request and reports")
	flag.IntVar(&opts.payloadSize, "payload-size", 0, "fetch a bulk payload of this many records first (0 = skip)")
	flag.StringVar(&opts.complexity, "complexity", string(model.ComplexityLow), "bulk payload complexity")
	flag.BoolVar(&opts.report, "report", false, "submit measurements to /benchmark/results")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := config.LogConfig{Level: *logLevel, Format: "text"}.NewLogger(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	client := api.NewClient(opts.url, api.WithLogger(logger))

	health, err := client.Health(ctx)
	if err != nil {
		logger.Error("service not healthy", "url", opts.url, "error", err)
		os.Exit(1)
	}
	logger.Info("connected to service",
		"version", health.Build.Version,
		"results_driver", health.Results.Driver,
		"active_sessions", health.ActiveSessions,
	)

	failed := false

	if opts.payloadSize > 0 {
		if err := runBulk(ctx, client, opts, logger); err != nil {
			logger.Error("bulk benchmark failed", "error", err)
			failed = true
		}
	}

	if opts.consumers > 0 {
		ok, err := runStreams(ctx, client, opts, logger)
		if err != nil {
			logger.Error("stream benchmark failed", "error", err)
			failed = true
		}
		if !ok {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// runBulk fetches one bulk payload and optionally reports its timing.
func runBulk(ctx context.Context, client *api.Client, opts options, logger *slog.Logger) error {
	req := model.BenchmarkRequest{
		Framework:   opts.framework,
		PayloadSize: opts.payloadSize,
		Complexity:  model.Complexity(opts.complexity),
	}

	start := time.Now()
	result, err := client.StartBenchmark(ctx, req)
	if err != nil {
		return err
	}
	decode := time.Since(start)

	if len(result.Payload) != req.PayloadSize {
		return fmt.Errorf("payload has %d records, want %d", len(result.Payload), req.PayloadSize)
	}

	fmt.Printf("bulk      framework=%s size=%d complexity=%s network=%v total=%v\n",
		result.Framework, len(result.Payload), result.Config.Complexity,
		result.NetworkTime.Round(time.Microsecond), decode.Round(time.Microsecond))

	if !opts.report {
		return nil
	}
	saved, err := client.SubmitReport(ctx, model.Report{
		Framework:     opts.framework,
		Mode:          model.ReportModeBulk,
		PayloadSize:   req.PayloadSize,
		Complexity:    req.Complexity,
		NetworkTimeMs: millis(result.NetworkTime),
		TotalTimeMs:   millis(decode),
	})
	if err != nil {
		return fmt.Errorf("submit bulk report: %w", err)
	}
	logger.Info("bulk report stored", "id", saved.ID)
	return nil
}

// runStreams consumes opts.consumers sessions concurrently. It returns false
// when any session broke an invariant.
func runStreams(ctx context.Context, client *api.Client, opts options, logger *slog.Logger) (bool, error) {
	runCtx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	var mu sync.Mutex
	checkers := make([]*checker, opts.consumers)
	sessions := make([]string, opts.consumers)

	g, gctx := errgroup.WithContext(runCtx)
	for i := range opts.consumers {
		consumer, err := connection.New(opts.transport, connection.ConsumerConfig{
			BaseURL:    opts.url,
			Population: opts.population,
			Interval:   opts.interval,
		}, logger)
		if err != nil {
			return false, err
		}

		chk := newChecker(opts.population)
		checkers[i] = chk

		g.Go(func() error {
			err := consumer.Run(gctx, func(msg connection.Message) error {
				mu.Lock()
				chk.observe(msg)
				mu.Unlock()
				return nil
			})
			sessions[i] = consumer.SessionID()
			if err != nil && !errors.Is(err, connection.ErrStreamClosed) {
				return fmt.Errorf("consumer %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	ok := true
	for i, chk := range checkers {
		fmt.Printf("stream[%d] session=%s transport=%s batches=%d bytes=%d rate=%.1f/s latency=%v violations=%d\n",
			i, sessions[i], opts.transport, chk.batches, chk.bytes, chk.rate(),
			chk.averageLatency().Round(time.Microsecond), len(chk.violations))
		for _, v := range chk.violations {
			fmt.Printf("  violation: %s\n", v)
		}
		if len(chk.violations) > 0 || chk.batches == 0 {
			ok = false
		}

		if opts.report && chk.batches > 0 {
			saved, err := client.SubmitReport(ctx, model.Report{
				Framework:        opts.framework,
				Mode:             model.ReportModeStream,
				FPS:              chk.rate(),
				AverageLatencyMs: millis(chk.averageLatency()),
				EventsReceived:   chk.batches,
			})
			if err != nil {
				return ok, fmt.Errorf("submit stream report: %w", err)
			}
			logger.Debug("stream report stored", "id", saved.ID, "session", sessions[i])
		}
	}
	return ok, nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
