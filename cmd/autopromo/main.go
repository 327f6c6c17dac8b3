// Command autopromo runs the video generation worker: it consumes the job
// queue and renders promo videos until stopped.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Ansarii/autopromo-video/internal/config"
	"github.com/Ansarii/autopromo-video/internal/jobs"
	"github.com/Ansarii/autopromo-video/internal/logs"
	"github.com/Ansarii/autopromo-video/internal/pipeline"
	"github.com/Ansarii/autopromo-video/internal/storage"
	"github.com/Ansarii/autopromo-video/internal/system"
)

func main() {
	_ = godotenv.Load()
	logs.Setup(logs.FromEnv("worker"))
	system.InitResourceLimits()

	cfg := config.FromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := selectJobStore(ctx, cfg)
	artifacts := selectArtifactStore(cfg)

	worker := &jobs.Worker{
		Store:  store,
		Runner: pipeline.New(cfg, artifacts),
		Log:    log.Logger,
	}

	log.Info().
		Str("dataDir", cfg.DataDir).
		Dur("captureBudget", cfg.CaptureBudget).
		Msg("worker started")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
	log.Info().Msg("worker shut down")
}

// selectJobStore prefers Redis and degrades to the in-process store when
// Redis is unconfigured or unreachable. Degraded mode loses durability but
// keeps local development working without infrastructure.
func selectJobStore(ctx context.Context, cfg config.Config) jobs.Store {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, using in-memory job store")
		return jobs.NewMemoryStore(cfg.PollTimeout)
	}

	store := jobs.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.QueueKey, cfg.PollTimeout)
	if err := store.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using in-memory job store")
		return jobs.NewMemoryStore(cfg.PollTimeout)
	}

	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	return store
}

func selectArtifactStore(cfg config.Config) storage.Store {
	if cfg.StorageURL != "" {
		log.Info().Str("bucket", cfg.StorageBucket).Msg("using bucket storage")
		return storage.NewBucketStore(cfg.StorageURL, cfg.StorageBucket, cfg.StorageKey)
	}
	return &storage.LocalStore{Dir: cfg.PublicDir, BaseURL: "/videos"}
}
