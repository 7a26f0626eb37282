package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/signon/signon-go/internal/config"
	"github.com/signon/signon-go/internal/repository"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := goose.SetDialect("mysql"); err != nil {
		slog.Error("failed to configure goose", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *command {
	case "up":
		err = goose.UpContext(ctx, db, cfg.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, cfg.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, cfg.MigrationsDir)
	default:
		slog.Error("unsupported command", "command", *command)
		os.Exit(1)
	}
	if err != nil {
		slog.Error("migration command failed", "command", *command, "error", err)
		os.Exit(1)
	}

	slog.Info("migration command completed", "command", *command)
}
