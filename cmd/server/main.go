package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/sir_venger/flatstore/internal/app/storagehttp"
	"github.com/sir_venger/flatstore/internal/config"
	"github.com/sir_venger/flatstore/internal/logging"
	"go.uber.org/zap"
)

// main поднимает HTTP-сервис файлового хранилища и корректно завершает его по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(cfg.StoragePath, 0o755); err != nil {
		logger.Fatal("create storage root", zap.String("path", cfg.StoragePath), zap.Error(err))
	}

	handler, _, err := storagehttp.NewServer(cfg)
	if err != nil {
		logger.Fatal("storage root is not usable", zap.String("path", cfg.StoragePath), zap.Error(err))
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("storage_path", cfg.StoragePath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout(),
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("shutting down")
				return server.Shutdown(ctx)
			},
		},
	)

	code := <-wait
	_ = logging.Sync()
	os.Exit(code)
}
