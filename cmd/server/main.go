package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/api"
	"github.com/wuwenbin0122/applytrackr/internal/applications"
	"github.com/wuwenbin0122/applytrackr/internal/auth"
	"github.com/wuwenbin0122/applytrackr/internal/db"
	"github.com/wuwenbin0122/applytrackr/internal/utils"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to initialise: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	ctx := context.Background()

	store, err := db.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store: failed to open", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer store.Close()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("auth: failed to create password hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("auth: failed to create token service", zap.Error(err))
	}
	authService := auth.NewService(store.Users, hasher, tokens, logger)

	validate, err := api.BindingValidator()
	if err != nil {
		logger.Fatal("api: failed to prepare validator", zap.Error(err))
	}
	appService, err := applications.NewService(store.Applications, logger, applications.WithValidator(validate))
	if err != nil {
		logger.Fatal("applications: failed to create service", zap.Error(err))
	}

	handler := api.NewHandler(authService, tokens, appService, logger)
	router, err := api.NewRouter(handler, logger, api.NewMetrics())
	if err != nil {
		logger.Fatal("api: failed to create router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
