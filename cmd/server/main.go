// Command vj-server serves the journal HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/vibe-journal/internal/config"
	"github.com/and161185/vibe-journal/internal/limiter"
	"github.com/and161185/vibe-journal/internal/migrate"
	"github.com/and161185/vibe-journal/internal/repository/postgres"
	httpserver "github.com/and161185/vibe-journal/internal/server/http"
	"github.com/and161185/vibe-journal/internal/service"
	"github.com/and161185/vibe-journal/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

// main loads configuration, runs migrations and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.Bool("tls", cfg.TLS()),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer db.Close()

	rdb, err := session.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	profileRepo := postgres.NewProfileRepo(db)
	entryRepo := postgres.NewEntryRepo(db)

	lim := limiter.NewPG(db.Pool, cfg.Limiter)
	sessions := session.NewRedisStore(rdb)

	// Services
	authSvc := service.NewAuthService(userRepo, sessions, lim, []byte(cfg.JWTKey), cfg.AccessTTL)
	profileSvc := service.NewProfileService(profileRepo)
	entrySvc := service.NewEntryService(entryRepo)

	srv := httpserver.New(authSvc, profileSvc, entrySvc, logger, cfg.CORSOrigins).HTTPServer(cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if cfg.TLS() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
