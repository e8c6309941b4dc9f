// Command astrochart-server serves radix, transit and aspect endpoints over
// HTTP. Rendered SVGs are cached in Redis when enabled, in memory otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/satindergrewal/astrochart/internal/cache"
	"github.com/satindergrewal/astrochart/internal/config"
	"github.com/satindergrewal/astrochart/internal/logger"
	"github.com/satindergrewal/astrochart/internal/metrics"
	"github.com/satindergrewal/astrochart/internal/server"
)

const memoryCacheSize = 256

func main() {
	configPath := flag.String("config", "", "Config YAML file (defaults when empty)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(log, cfg); err != nil {
		log.Error().Err(err).Msg("server failed")
		closer.Close()
		os.Exit(1)
	}
}

func run(log zerolog.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chartCfg, err := cfg.Chart.ChartConfig()
	if err != nil {
		return err
	}

	var c cache.Cache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(ctx,
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return err
		}
		defer rc.Close()
		c = rc
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache connected")
	} else {
		c = cache.NewMemoryCache(memoryCacheSize)
	}

	rec := metrics.New()
	h := server.NewHandler(chartCfg,
		server.WithCache(c, cfg.Redis.TTL),
		server.WithMetrics(rec),
		server.WithLogger(log),
	)

	opts := []server.ServerOption{
		server.WithHost(cfg.Server.Host),
		server.WithPort(cfg.Server.Port),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		server.WithBodyLimit(cfg.Server.BodyLimit),
		server.WithServerLogger(log),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, server.WithMetricsHandler(cfg.Metrics.Path, rec.Handler()))
	}
	srv := server.NewServer(h, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	return srv.Stop(context.Background())
}
