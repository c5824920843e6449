package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/domhash/api"
	"github.com/use-agent/domhash/api/handler"
	"github.com/use-agent/domhash/cache"
	"github.com/use-agent/domhash/config"
	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/fetch"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("domhash starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"strategy", cfg.Digest.Strategy,
	)

	// ── 3. Validate digest defaults ─────────────────────────────────
	defaults := cfg.Digest.Options()
	if _, err := domhash.New(defaults); err != nil {
		slog.Error("invalid digest configuration", "error", err)
		os.Exit(1)
	}

	// ── 4. Initialise cache ─────────────────────────────────────────
	var cc *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		cc, err = cache.New(cfg.Cache.MaxEntries)
		if err != nil {
			slog.Error("failed to initialise cache", "error", err)
			os.Exit(1)
		}
	}

	// ── 5. Initialise fetcher ───────────────────────────────────────
	fetcher := fetch.NewHTTPFetcher(cfg.Fetch)

	dg := &handler.Digester{
		Defaults: defaults,
		Cache:    cc,
		Fetcher:  fetcher,
	}
	batchCtx, stopBatches := context.WithCancel(context.Background())
	defer stopBatches()
	batches := handler.NewBatches(batchCtx, dg, cfg.Batch)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(cfg, dg, batches, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	stopBatches()
	<-batches.Done()
	slog.Info("domhash stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
