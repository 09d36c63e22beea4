package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/magheya/lds-backend/internal/app"
	"github.com/magheya/lds-backend/internal/auth"
	"github.com/magheya/lds-backend/internal/config"
	"github.com/magheya/lds-backend/internal/logging"
)

const usage = "expected 'add-admin', 'cleanup-tokens' or 'revoke-tokens' subcommand"

func main() {
	addAdminCmd := flag.NewFlagSet("add-admin", flag.ExitOnError)
	username := addAdminCmd.String("username", "", "Username for the new admin")
	password := addAdminCmd.String("password", "", "Password for the new admin")
	role := addAdminCmd.String("role", "admin", "Role for the new admin")

	cleanupCmd := flag.NewFlagSet("cleanup-tokens", flag.ExitOnError)

	revokeCmd := flag.NewFlagSet("revoke-tokens", flag.ExitOnError)
	revokeUser := revokeCmd.String("username", "", "Admin whose tokens are revoked")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx := context.Background()
	var run func(context.Context, *app.Backends) error

	switch os.Args[1] {
	case "add-admin":
		_ = addAdminCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addAdminCmd.PrintDefaults()
			os.Exit(1)
		}
		run = func(ctx context.Context, b *app.Backends) error {
			return addAdmin(ctx, b, *username, *password, *role)
		}
	case "cleanup-tokens":
		_ = cleanupCmd.Parse(os.Args[2:])
		run = cleanupTokens
	case "revoke-tokens":
		_ = revokeCmd.Parse(os.Args[2:])
		if *revokeUser == "" {
			fmt.Println("username is required")
			revokeCmd.PrintDefaults()
			os.Exit(1)
		}
		run = func(ctx context.Context, b *app.Backends) error {
			return revokeTokens(ctx, b, *revokeUser)
		}
	default:
		fmt.Println(usage)
		os.Exit(1)
	}

	backends, err := app.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open backends: %v\n", err)
		os.Exit(1)
	}
	err = run(ctx, backends)
	_ = backends.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func addAdmin(ctx context.Context, b *app.Backends, username, password, role string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	a, err := b.Store.CreateAdmin(ctx, username, hash, role)
	if err != nil {
		return err
	}
	fmt.Printf("Admin '%s' created with id %d.\n", a.Username, a.ID)
	return nil
}

func cleanupTokens(ctx context.Context, b *app.Backends) error {
	n, err := b.Auth.CleanupExpiredTokens(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%d expired token(s) removed.\n", n)
	return nil
}

func revokeTokens(ctx context.Context, b *app.Backends, username string) error {
	a, err := b.Store.GetAdminByUsername(ctx, username)
	if err != nil {
		return err
	}
	revoked, err := b.Auth.InvalidateAllTokensForUser(ctx, a.ID)
	if err != nil {
		return err
	}
	if !revoked {
		fmt.Printf("Admin '%s' had no active tokens.\n", username)
		return nil
	}
	fmt.Printf("All tokens of '%s' revoked.\n", username)
	return nil
}
