package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"warimas-storefront/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Open connects to Postgres with a DB_URL style DSN and pings it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	return openWithDriver(ctx, "postgres", dsn)
}

func openWithDriver(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.FromCtx(ctx).Info("database connection established", zap.String("driver", driver))
	return db, nil
}
