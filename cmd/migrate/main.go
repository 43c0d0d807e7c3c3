// Command migrate runs database migrations embedded in the binary.
//
// Usage:
//
//	migrate -command up
//	migrate -command down
//	migrate -command status
//
// The database DSN comes from the application config (DATABASE_DSN or
// config.yaml). Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/termpipe/termpipe/internal/adapter/postgres"
	"github.com/termpipe/termpipe/internal/config"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.Database.DSN, *command, flag.Args()...); err != nil {
		logger.Error("migration failed", slog.String("command", *command), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("migration complete", slog.String("command", *command))
}
