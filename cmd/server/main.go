// Package main is the entry point for the prodtrack API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prodtrack/internal/config"
	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/domain/auth"
	v1 "prodtrack/internal/infrastructure/http/v1"
	"prodtrack/internal/infrastructure/numerator"
	"prodtrack/internal/infrastructure/storage/postgres"
	"prodtrack/internal/infrastructure/storage/postgres/auth_repo"
	"prodtrack/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting prodtrack server", "version", version)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres.PoolConfig)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool, cfg.Postgres.TxOptions())
	counters := postgres.NewCounterStore()

	// Counters are provisioned by cmd/migrate. A missing counter is reported
	// here and by /health/ready; it is never created on the fly.
	missing, err := counters.Missing(ctx, txManager.GetQuerier(ctx), corenumerator.Kinds()...)
	switch {
	case err != nil:
		log.Warnw("failed to check sequence counters", "error", err)
	case len(missing) > 0:
		log.Errorw("sequence counters are not provisioned, run migrate", "kinds", missing, "alert", true)
	}

	// --- Services ---
	jwtConfig := auth.DefaultJWTConfig(cfg.Auth.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.Auth.AccessTokenTTL
	jwtService := auth.NewJWTService(jwtConfig)

	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		TxManager:      txManager,
		Counters:       counters,
		Allocator:      numerator.New(counters, log),
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		RequestTimeout: cfg.Server.RequestTimeout,
		Version:        version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful shutdown ---
	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatalw("server failed", "error", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	postgres.LogPoolStats(context.Background(), pool.Unwrap())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
