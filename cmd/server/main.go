// Package main runs the event calendar HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agendaly/backend/config"
	"github.com/agendaly/backend/internal/auth"
	"github.com/agendaly/backend/internal/events"
	"github.com/agendaly/backend/internal/middleware"
	"github.com/agendaly/backend/internal/store"
	"github.com/agendaly/backend/pkg/response"
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

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	authService := auth.NewService(fileStore, logger, cfg.Auth.BcryptCost)
	authHandler := auth.NewHandler(authService, jwtService, logger)

	eventService := events.NewService(fileStore, logger)
	eventHandler := events.NewHandler(eventService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "OK"}) })

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", middleware.JWT(jwtService), authHandler.Me)
		}

		api.GET("/events", eventHandler.List)
		api.POST("/events", eventHandler.Create)
		api.GET("/events/:id", eventHandler.Get)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.POST("/events/:id/vote", eventHandler.Vote)
		api.POST("/events/:id/register", eventHandler.Register)
		api.POST("/events/:id/unregister", eventHandler.Unregister)

		api.POST("/admin/repair", eventHandler.Repair)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
