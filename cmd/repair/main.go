// Package main runs the event collection repair pass offline, for use when
// the server is stopped or from a cron job.
package main

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agendaly/backend/config"
	"github.com/agendaly/backend/internal/events"
	"github.com/agendaly/backend/internal/store"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	fileStore, err := store.Open(cfg.Storage.DataDir, logger, store.Users, store.Events)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	service := events.NewService(fileStore, logger)
	repaired, total, err := service.RepairAll(context.Background())
	if err != nil {
		logger.Fatal("repair", zap.Error(err))
	}
	logger.Info("repair complete", zap.Int("repaired", repaired), zap.Int("total", total))
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
