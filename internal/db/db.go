package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dare_webapp/internal/logger"
)

// Connect opens the pool and runs the schema bootstrap.
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("db connect failed", "error", err)
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("db ping failed", "error", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Fatal("schema bootstrap failed", "error", err)
	}

	logger.Info("database connected")
	return pool
}
