package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignatzorin/escrow-marketplace/internal/app"
	"github.com/ignatzorin/escrow-marketplace/internal/config"
	"github.com/ignatzorin/escrow-marketplace/internal/goroutine"
	"github.com/ignatzorin/escrow-marketplace/internal/infrastructure/identity"
	"github.com/ignatzorin/escrow-marketplace/internal/interface/http/router"
	"github.com/ignatzorin/escrow-marketplace/internal/logger"
	"github.com/ignatzorin/escrow-marketplace/internal/observability"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка загрузки конфигурации")
	}

	level := cfg.LogLevel
	if cfg.IsDevelopment() {
		level = "debug"
	}
	logger.Init(level, cfg.IsDevelopment())

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка подключения к хранилищу")
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Log.WithError(err).Error("main: ошибка закрытия хранилища")
		}
	}()

	tokens := identity.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	handlers := app.NewHandlers(cfg, storage, observability.NewEventRecorder(), tokens)
	engine := router.SetupRouter(cfg, handlers, tokens)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	shutdownDone := goroutine.Go("http-shutdown", func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithFields(map[string]interface{}{
		"port":    cfg.HTTPPort,
		"storage": storage.Driver,
		"env":     cfg.Env,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Error("main: сервер завершился с ошибкой")
		stop()
	}
	<-shutdownDone
}
