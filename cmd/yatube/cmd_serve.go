package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/logging"
	"yatube/internal/observability"
	"yatube/internal/router"
	"yatube/internal/services"
	"yatube/internal/storage"
	"yatube/internal/views"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openRepository returns the configured store. The memory driver keeps
// nothing across restarts.
func openRepository(cfg *config.Config, logger *zap.Logger) (services.Repository, error) {
	if cfg.DatabaseDriver == db.DriverMemory {
		logger.Warn("using in-memory sqlite, data is lost on restart")
	}

	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	return db.NewStore(conn), nil
}

func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, string, error) {
	if cfg.StorageBackend == "s3" {
		st, err := storage.NewS3Storage(ctx, storage.S3Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.AWSBucket,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		})
		return st, "", err
	}
	return storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), cfg.MediaRoot, nil
}

func openCache(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (cache.PageCache, error) {
	if cfg.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// 不致命，RedisCache 在 Redis 不可用时直接渲染
			logger.Warn("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		return cache.NewRedisCache(client, cfg.IndexCacheTTL, logger).WithObserver(metrics.CacheLookup), nil
	}
	return cache.NewMemoryCache(cfg.IndexCacheTTL, cache.WithObserver(metrics.CacheLookup))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	st, mediaRoot, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()
	pageCache, err := openCache(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}
	set, err := views.New(st)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	gin.SetMode(cfg.GinMode)
	engine := router.New(router.Deps{
		Repo:          repo,
		Storage:       st,
		Cache:         pageCache,
		Views:         set,
		Metrics:       metrics,
		Logger:        logger,
		SessionSecret: cfg.SessionSecret,
		MediaURL:      cfg.MediaURL,
		MediaRoot:     mediaRoot,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.DatabaseDriver == "memory" {
		return errors.New("migrate needs DATABASE_DRIVER postgres or mysql")
	}
	conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	logger.Info("migration finished")
	return nil
}
