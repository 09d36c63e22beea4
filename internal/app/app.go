// Package app wires the configured backends shared by the server and the
// admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/magheya/lds-backend/internal/auth"
	"github.com/magheya/lds-backend/internal/config"
	"github.com/magheya/lds-backend/internal/store"
	"github.com/magheya/lds-backend/internal/upload"
)

// Backends holds the opened database, the optional Redis client and the
// authenticator built on them.
type Backends struct {
	Store *store.Store
	Redis *redis.Client
	Auth  *auth.Authenticator
}

// Open connects to the database (running migrations) and to Redis when
// tokens live there.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Backends, error) {
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	b := &Backends{Store: s}

	var tokens auth.TokenStore = s
	if cfg.TokenBackend == "redis" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		b.Redis = rdb
		tokens = auth.NewRedisTokenStore(rdb)
	}

	b.Auth = auth.New(s, tokens, auth.WithTTL(cfg.TokenTTL), auth.WithLogger(log))
	return b, nil
}

func (b *Backends) Close() error {
	var errs []error
	if b.Redis != nil {
		errs = append(errs, b.Redis.Close())
	}
	errs = append(errs, b.Store.Close())
	return errors.Join(errs...)
}

// OpenUploads returns the configured upload backend.
func OpenUploads(ctx context.Context, cfg *config.Config) (upload.Uploader, error) {
	if cfg.UploadBackend == "minio" {
		return upload.NewMinio(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	}
	return upload.NewLocal(cfg.UploadDir)
}

// EnsureDefaultAdmin creates the configured admin account when missing.
func EnsureDefaultAdmin(ctx context.Context, b *Backends, cfg *config.Config, log *slog.Logger) error {
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	created, err := b.Store.EnsureAdmin(ctx, cfg.AdminUsername, hash, "admin")
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		log.Info("default admin account created", "username", cfg.AdminUsername)
		if cfg.AdminPassword == config.DefaultAdminPassword {
			log.Warn("default admin password in use, change ADMIN_PASSWORD")
		}
	}
	return nil
}
