package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finospark/backend/internal/config"
)

const (
	connectAttempts = 5
	pingTimeout     = 5 * time.Second
)

// Open открывает пул подключений к PostgreSQL с ретраями и экспоненциальной паузой.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	return withRetry(ctx, logger, connectAttempts, time.Second, func(ctx context.Context) (*pgxpool.Pool, error) {
		return connect(ctx, poolConfig)
	})
}

// withRetry повторяет fn до attempts раз, удваивая паузу; после последней попытки не ждет.
func withRetry[T any](ctx context.Context, logger *slog.Logger, attempts int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero T
		err  error
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		result, attemptErr := fn(ctx)
		if attemptErr == nil {
			return result, nil
		}
		err = attemptErr

		if attempt == attempts {
			break
		}

		logger.Warn("database connection failed",
			slog.Int("attempt", attempt),
			slog.Int("attempts", attempts),
			slog.Duration("retry_in", backoff),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return zero, fmt.Errorf("connect to database after %d attempts: %w", attempts, err)
}

func connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
