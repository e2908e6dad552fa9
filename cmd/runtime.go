package cmd

import (
	"context"
	"fmt"
	"io"

	"reconciler/core/config"
	"reconciler/core/lock"
	"reconciler/core/logger"
	"reconciler/core/reconcile"
	"reconciler/core/records"
	"reconciler/core/storage"
	"reconciler/feature/jobs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadRuntime loads and validates configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// newJobService wires the job service over db and the record bucket.
// The returned locker must be closed by the caller.
func newJobService(ctx context.Context, cfg *config.Config, logg *zap.Logger, db *gorm.DB, client storage.Client, engine *reconcile.Engine) (*jobs.Service, lock.Locker, error) {
	repo := jobs.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return nil, nil, err
	}

	locker, err := lock.New(ctx, cfg.Lock)
	if err != nil {
		return nil, nil, err
	}

	store := records.NewStorageSource(client, cfg.Storage.Bucket, cfg.Storage.RecordsPrefix)
	return jobs.NewService(repo, store, cfg.Cache.TTL(), locker, engine, logg), locker, nil
}

func closeLocker(locker lock.Locker, logg *zap.Logger) {
	if c, ok := locker.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logg.Warn("Failed to close lock backend", zap.Error(err))
		}
	}
}
