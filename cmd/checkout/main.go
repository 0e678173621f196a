package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/fastygo/checkout/internal/config"
	"github.com/fastygo/checkout/internal/services/lifecycle"
	"github.com/fastygo/checkout/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	a, err := build(appCtx, cfg, zapLogger, manager)
	if err != nil {
		zapLogger.Error("startup failed", zap.Error(err))
		_ = manager.Shutdown(context.Background())
		return
	}
	zapLogger.Info("checkout started", zap.String("storage", cfg.Storage.Driver))

	if err := runScenario(appCtx, a.bus, seedSteps(), zapLogger); err != nil {
		zapLogger.Error("seed scenario failed", zap.Error(err))
	} else {
		status := a.monitor.GetStatus()
		zapLogger.Info("seed scenario completed",
			zap.Int("pending_writes", a.processor.Size()),
			zap.Any("components", status.Components),
			zap.Any("advisory", status.Advisory),
		)
	}

	if !cfg.RunOnce {
		<-appCtx.Done()
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
