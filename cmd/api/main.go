package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/MR-Munggaran/belajar-sertif/internal/api"
	"github.com/MR-Munggaran/belajar-sertif/internal/auth"
	"github.com/MR-Munggaran/belajar-sertif/internal/config"
	"github.com/MR-Munggaran/belajar-sertif/internal/database"
	"github.com/MR-Munggaran/belajar-sertif/internal/export"
	"github.com/MR-Munggaran/belajar-sertif/internal/fonts"
	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/storage"
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
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	logger.Info("database ready",
		slog.String("host", cfg.Database.Host),
		slog.String("name", cfg.Database.Name),
	)

	authService, err := auth.NewAuthService(
		[]byte(cfg.Auth.PrivateKeyPEM),
		[]byte(cfg.Auth.PublicKeyPEM),
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLMinutes)*time.Minute,
	)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	// The API renders template previews with the same engine the worker uses
	// for final certificates.
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

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, db, asynqClient, authService, redisClient, logger, storageClient, exporter, cfg.ClamAV.Address, cfg.API.AllowedOrigins)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
