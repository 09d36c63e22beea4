package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/magheya/lds-backend/internal/app"
	"github.com/magheya/lds-backend/internal/auth"
	"github.com/magheya/lds-backend/internal/config"
	"github.com/magheya/lds-backend/internal/logging"
	"github.com/magheya/lds-backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Database + tokens ────────────────────────────────────
	backends, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error("open backends", "error", err)
		os.Exit(1)
	}
	defer backends.Close()

	if err := app.EnsureDefaultAdmin(ctx, backends, cfg, log); err != nil {
		log.Error("bootstrap admin", "error", err)
		os.Exit(1)
	}

	// ── Uploads ──────────────────────────────────────────────
	uploads, err := app.OpenUploads(ctx, cfg)
	if err != nil {
		log.Error("open uploads", "backend", cfg.UploadBackend, "error", err)
		os.Exit(1)
	}

	// ── Token sweeper ────────────────────────────────────────
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		auth.NewSweeper(backends.Auth, cfg.TokenSweepInterval, log).Run(ctx)
	}()

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Store:          backends.Store,
			Auth:           backends.Auth,
			Uploads:        uploads,
			MaxUploadBytes: cfg.UploadMaxBytes,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
	}

	go func() {
		log.Info("backend listening", "port", cfg.Port, "db_driver", cfg.DBDriver, "token_backend", cfg.TokenBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	<-sweepDone
}
