package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/MR-Munggaran/belajar-sertif/internal/config"
	"github.com/MR-Munggaran/belajar-sertif/internal/database"
	"github.com/MR-Munggaran/belajar-sertif/internal/export"
	"github.com/MR-Munggaran/belajar-sertif/internal/fonts"
	"github.com/MR-Munggaran/belajar-sertif/internal/metrics"
	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/storage"
	"github.com/MR-Munggaran/belajar-sertif/internal/tasks"
	"github.com/MR-Munggaran/belajar-sertif/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	fontSource := fonts.Source(nil)
	if cfg.Fonts.BaseURL != "" {
		fontSource = fonts.HTTPSource{
			BaseURL: cfg.Fonts.BaseURL,
			Client:  &http.Client{Timeout: time.Duration(cfg.Fonts.TimeoutSeconds) * time.Second},
		}
	}
	fontLibrary := fonts.NewLibrary(fontSource, logger,
		fonts.WithTimeout(time.Duration(cfg.Fonts.TimeoutSeconds)*time.Second))
	backgrounds := render.NewBackgrounds(worker.NewStorageImageLoader(storageClient), logger)
	engine := render.NewEngine(fontLibrary, backgrounds, logger)
	exporter := export.NewExporter(engine)

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr()},
		asynq.Config{Concurrency: cfg.Worker.Concurrency},
	)

	certificateHandler := worker.NewCertificateTaskHandler(db, storageClient, redisClient, exporter, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeCertificateGenerate, certificateHandler)

	logger.Info("worker service started", slog.String("redis_addr", cfg.Redis.Addr()))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
