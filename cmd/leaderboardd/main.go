package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-leaderboard-cache/cache"
	"github.com/goliatone/go-leaderboard-cache/config"
	"github.com/goliatone/go-leaderboard-cache/pkg/di"
	"github.com/goliatone/go-leaderboard-cache/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	configDir := flag.String("config", "", "directory holding config.yaml (defaults to . and ./config)")
	statsEvery := flag.Duration("stats-interval", time.Minute, "how often to log cache statistics, 0 disables")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		logger := config.NewLogger("info")
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := config.NewLogger(cfg.LogLevel)

	if err := run(cfg, logger, *statsEvery); err != nil {
		logger.Fatal().Err(err).Msg("leaderboardd stopped")
	}
}

func run(cfg config.AppConfig, logger zerolog.Logger, statsEvery time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.CreateSchema(ctx, db); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	container, err := di.NewContainer(db, cfg.Cache,
		cache.WithLogger(logger.With().Str("component", "cache").Logger()),
		cache.WithRegisterer(registry),
	)
	if err != nil {
		return err
	}
	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("backend", cfg.Cache.Backend).
		Dur("ttl", cfg.Cache.TTL).
		Msg("cache container ready")

	// Warm the first page so the ranking query is checked at startup.
	page, err := container.Leaderboard().GetLeaderboardPage(ctx, 20, nil)
	if err != nil {
		return err
	}
	logger.Info().Int("rows", len(page)).Msg("leaderboard warmed")

	var srv *http.Server
	if cfg.Metrics.Enabled {
		srv = newMetricsServer(cfg.Metrics, registry)
		go func() {
			logger.Info().Str("address", srv.Addr).Str("path", cfg.Metrics.Path).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
				stop()
			}
		}()
	}

	if statsEvery > 0 {
		go logStats(ctx, logger, container.Manager(), statsEvery)
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
	return nil
}

func newMetricsServer(cfg config.Metrics, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func logStats(ctx context.Context, logger zerolog.Logger, manager *cache.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range manager.Stats() {
				logger.Debug().
					Str("partition", s.Name).
					Int("len", s.Len).
					Int("capacity", s.Capacity).
					Int64("hits", s.Hits).
					Int64("misses", s.Misses).
					Int64("evictions", s.Evictions).
					Msg("cache stats")
			}
		}
	}
}
