package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/webcache/pkg/cache"
	"github.com/Sternrassler/webcache/pkg/config"
	"github.com/Sternrassler/webcache/pkg/httpcache"
	"github.com/Sternrassler/webcache/pkg/logging"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func run(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("server")

	logger.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr).
		Str("backend", cfg.Cache.Backend).
		Msg("Starting webcache-demo")

	store, ready, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	mw, err := httpcache.New(ctx, store, cacheOptions(cfg))
	if err != nil {
		return err
	}
	logger.Info().
		Str("prefix", mw.Engine().Prefix()).
		Dur("ttl", mw.Engine().TTL()).
		Msg("Response cache enabled")

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: newRouter(Deps{
			Cache:      mw,
			ReadyCheck: ready,
			Logger:     logger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("Server ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("Server stopped")
	return nil
}

// openStore builds the configured backend and a readiness check for it.
func openStore(ctx context.Context, cfg *config.Config) (cache.Store, ReadyChecker, func(), error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		store, err := cache.NewMemoryStore(cfg.Cache.MemoryMaxSize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("memory store: %w", err)
		}
		return store, nil, func() {}, nil

	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := cache.NewRedisStore(redisClient)
		if err := store.Ping(ctx); err != nil {
			redisClient.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return store, store.Ping, func() { redisClient.Close() }, nil
	}
}

// cacheOptions maps the cache section onto middleware options.
func cacheOptions(cfg *config.Config) httpcache.Options {
	return httpcache.Options{
		Path:                cfg.Cache.Path,
		Exclude:             cfg.Cache.Exclude,
		Methods:             cfg.Cache.Methods,
		Prefix:              cfg.Cache.Prefix,
		Expire:              cfg.Cache.TTL(),
		Clean:               cfg.Cache.Clean,
		StoreTimeout:        cfg.Cache.StoreTimeout,
		MaxBodySize:         cfg.Cache.MaxBodySize,
		DisableSingleFlight: !cfg.Cache.SingleFlightEnabled(),
	}
}
