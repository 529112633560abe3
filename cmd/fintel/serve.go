package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fintel/internal/advisor"
	"fintel/internal/config"
	"fintel/internal/intel"
	"fintel/internal/location"
	"fintel/internal/search"
	"fintel/internal/server"
	"fintel/internal/store"
	"fintel/internal/targetare"
	"fintel/internal/upstream"
)

var (
	transportFlag string
	addrFlag      string
)

// serveCmd runs the MCP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the financial intelligence tools over MCP",
	Long: `Starts the MCP server and blocks until the transport ends or a
shutdown signal arrives.

Transports:
  - stdio: speak MCP over stdin/stdout (the default; logs go to stderr)
  - http:  streamable HTTP on the configured address

Example:
  fintel serve --transport http --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&transportFlag, "transport", "", "MCP transport: stdio or http (overrides config)")
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "HTTP listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("transport") {
		cfg.Server.Transport = transportFlag
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addrFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, bench, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Benchmarks.WatchReload {
		if err := bench.Start(ctx); err != nil {
			logger.Warn("Benchmark watcher failed to start", zap.Error(err))
		}
	}

	srv := server.New(svc, cfg)
	logger.Info("Starting MCP server",
		zap.String("transport", cfg.Server.Transport),
		zap.Int("tools", srv.ToolCount()))

	errCh := make(chan error, 1)
	go func() {
		switch cfg.Server.Transport {
		case "http":
			errCh <- srv.ListenHTTP(cfg.Server.Addr)
		default:
			errCh <- srv.ServeStdio()
		}
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-sigCh:
		logger.Info("Received shutdown signal")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Shutdown did not complete cleanly", zap.Error(err))
		}
		return nil
	}
}

// buildService wires the full client stack from the configuration. The
// search, maps, and advisor clients are constructed even when their
// credentials are absent; each one refuses its own calls with a
// not-configured error, so the tool surface stays uniform.
func buildService(ctx context.Context, cfg *config.Config) (*intel.Service, *intel.Benchmarks, func(), error) {
	pool := upstream.NewManager(upstream.PoolSettings{
		MaxSessions:  cfg.Pool.MaxSessions,
		MaxPerHost:   cfg.Pool.MaxPerHost,
		IdleTTL:      cfg.GetPoolIdleTTL(),
		Timeout:      cfg.GetPoolTimeout(),
		ReleaseGrace: cfg.GetReleaseGrace(),
	})
	exec := upstream.NewExecutor(pool, upstream.ExecutorSettings{
		MaxRetries:    cfg.Targetare.MaxRetries,
		BackoffFactor: cfg.Targetare.BackoffFactor,
	})

	releasePool := func() {
		relCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		if err := pool.Release(relCtx); err != nil {
			logger.Warn("Session pool release incomplete", zap.Error(err))
		}
	}

	var cache *store.Cache
	if cfg.Cache.Enabled {
		var err error
		cache, err = store.Open(cfg.CachePath(), cfg.GetCacheTTL())
		if err != nil {
			releasePool()
			return nil, nil, nil, fmt.Errorf("open response cache: %w", err)
		}
	}

	adv, err := advisor.New(ctx, cfg.GenAI)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		releasePool()
		return nil, nil, nil, fmt.Errorf("initialize advisor: %w", err)
	}

	bench := intel.NewBenchmarks(cfg.Benchmarks.Path)

	svc := intel.New(intel.Deps{
		Registry: targetare.NewClient(exec, cache, cfg.Targetare),
		Finder:   search.NewClient(exec, pool, cfg.Search),
		Maps:     location.NewClient(exec, cfg.Maps),
		Advisor:  adv,
		Bench:    bench,
	})

	cleanup := func() {
		bench.Stop()
		if cache != nil {
			cache.Close()
		}
		releasePool()
	}
	return svc, bench, cleanup, nil
}
