package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/scopedev/scopepad/internal/api"
	"github.com/scopedev/scopepad/internal/auth"
	"github.com/scopedev/scopepad/internal/config"
	"github.com/scopedev/scopepad/internal/core"
	"github.com/scopedev/scopepad/internal/runner"
	"github.com/scopedev/scopepad/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	level, err := zerolog.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer dbStore.Close()

	// Initialize services
	tokenService := auth.NewService(config.AppConfig.JWTSecret, config.AppConfig.TokenTTL, config.AppConfig.RefreshWindow)
	identityService := core.NewIdentityService(dbStore)
	fileService := core.NewFileService(dbStore)
	targetService := core.NewTargetService(dbStore)

	var codeRunner runner.Runner
	if config.AppConfig.RunnerURL != "" {
		codeRunner = runner.NewHTTPRunner(config.AppConfig.RunnerURL)
	} else {
		logger.Warn().Msg("RUNNER_URL not set, /interp endpoint disabled")
	}

	// Initialize API handler and router
	apiHandler := api.NewAPIHandler(identityService, fileService, targetService, tokenService, codeRunner, logger)
	router := api.NewRouter(apiHandler, logger, config.AppConfig.StaticDir)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info().Str("addr", serverAddr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Str("addr", serverAddr).Msg("server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited gracefully")
}
