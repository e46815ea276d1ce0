package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hongminglow/afriglobal-be/internal/auth"
	"github.com/hongminglow/afriglobal-be/internal/config"
	"github.com/hongminglow/afriglobal-be/internal/identity"
	"github.com/hongminglow/afriglobal-be/internal/identity/gotrue"
	"github.com/hongminglow/afriglobal-be/internal/identity/local"
	"github.com/hongminglow/afriglobal-be/internal/server"
	postgres "github.com/hongminglow/afriglobal-be/internal/storage/postgres"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			// Not fatal: signup degrades without the database.
			logger.Error("database migration failed", "error", err)
		} else {
			logger.Info("database migrations applied")
		}
	}

	ctx := context.Background()
	userStore, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	defer userStore.Close()

	provider, verifier := newIdentity(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := server.New(cfg, server.Deps{
		Provider: provider,
		Store:    userStore,
		Verifier: verifier,
		Logger:   logger,
		Registry: registry,
	})

	go func() {
		logger.Info("AfriGlobal backend listening",
			"addr", cfg.HTTPAddress(),
			"identity_mode", cfg.IdentityMode,
			"version", cfg.Version,
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}

// newIdentity builds the identity provider for cfg.IdentityMode. The returned
// verifier is nil when tokens must be checked by the provider itself.
func newIdentity(cfg *config.Config) (identity.Provider, *auth.TokenManager) {
	if cfg.IdentityMode == config.IdentityModeLocal {
		tokens := auth.NewTokenManager(cfg.LocalJWTSecret, cfg.LocalJWTIssuer, cfg.LocalJWTTTL())
		// The local provider tracks signed-out tokens, so it must see every lookup.
		return local.NewProvider(tokens, cfg.BcryptCost), nil
	}

	var verifier *auth.TokenManager
	if cfg.SupabaseJWTSecret != "" {
		verifier = auth.NewTokenManager(cfg.SupabaseJWTSecret, "", 0)
	}
	return gotrue.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey), verifier
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
