// Command resetpw sets the password of an existing account, or creates the
// admin account if it does not exist yet.
//
//	resetpw -user admin -password s3cret
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/futsalmap/webgis/internal/config"
	"github.com/futsalmap/webgis/internal/database"
	"github.com/futsalmap/webgis/internal/migrations"
	"github.com/futsalmap/webgis/internal/server"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fs := flag.NewFlagSet("resetpw", flag.ContinueOnError)
	fs.SetOutput(stdout)
	username := fs.String("user", cfg.Admin.Username, "account to update")
	password := fs.String("password", cfg.Admin.Password, "new password")
	email := fs.String("email", cfg.Admin.Email, "email used when the admin account has to be created")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(*password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()
	if _, err := migrations.Run(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	store := server.NewSQLiteStore(db)
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	err = store.SetPassword(ctx, *username, string(hash))
	if errors.Is(err, server.ErrNotFound) {
		created, err := store.EnsureAdmin(ctx, *username, *email, string(hash))
		if err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		if !created {
			return fmt.Errorf("email %s is already used by another account", *email)
		}
		logger.Info("admin account created", "username", *username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	logger.Info("password updated", "username", *username)
	return nil
}
