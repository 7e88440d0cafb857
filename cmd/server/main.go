package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/api"
	"github.com/powdermilkjuno/habit-tracker/internal/auth"
	"github.com/powdermilkjuno/habit-tracker/internal/config"
	"github.com/powdermilkjuno/habit-tracker/internal/ratelimit"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
	"github.com/powdermilkjuno/habit-tracker/internal/syncer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote, err := storage.NewRemoteStore(ctx, storage.RemoteOptions{
		Backend:     cfg.RemoteBackend,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		LogQueries:  cfg.LogQueries,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to init remote store: %v", err)
	}
	defer func() { _ = remote.Close() }()

	snapshots, err := storage.NewSnapshotStore(ctx, storage.SnapshotOptions{
		Backend:       cfg.SnapshotBackend,
		Dir:           cfg.SnapshotDir,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Fatalf("failed to init snapshot store: %v", err)
	}
	if c, ok := snapshots.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	loc, _ := cfg.Location()
	worker := syncer.NewWorker(remote, logger.With("component", "syncer"))

	var provider auth.Provider
	switch cfg.AuthProvider {
	case "remote":
		provider = auth.NewRemoteProvider(cfg.AuthServiceURL, cfg.AuthAPIKey, logger)
	default:
		provider = auth.NewLocalProvider(remote, cfg.Secret(), cfg.JWTTTL, logger)
	}

	sessions := api.NewSessions(store.Options{
		Snapshots:    snapshots,
		Remote:       remote,
		Pusher:       worker,
		Strategy:     cfg.Strategy(),
		HatchDelay:   cfg.HatchDelay,
		SyncOnToggle: cfg.SyncOnToggle,
		Location:     loc,
	}, remote, logger)

	app := api.NewApp(api.Deps{
		Logger:   logger,
		Remote:   remote,
		Auth:     provider,
		Sessions: sessions,
		Limiter:  ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("server listening on %s (remote=%s snapshots=%s auth=%s)",
			cfg.HTTPAddr, cfg.RemoteBackend, cfg.SnapshotBackend, cfg.AuthProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	worker.Close(shutdownCtx)
	sessions.CloseAll()
}
