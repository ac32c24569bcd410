package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"warimas-storefront/internal/db"
	"warimas-storefront/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var errNoDBURL = errors.New("DB_URL not set in environment")

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Getenv); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}
}

func run(ctx context.Context, args []string, getenv func(string) string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	mode := fs.String("mode", "up", "migration mode: up or down")
	dir := fs.String("dir", "./migrations", "directory holding *.sql migrations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mode != "up" && *mode != "down" {
		return db.ErrUnknownMode
	}

	dbURL := getenv("DB_URL")
	if dbURL == "" {
		return errNoDBURL
	}

	conn, err := db.Open(ctx, dbURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn, *mode, *dir); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("migrations done", zap.String("mode", *mode))
	return nil
}
