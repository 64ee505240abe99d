package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// dbStartupAttempts bounds the connectivity retries in NewDBPool.
const dbStartupAttempts = 5

// NewDBPool builds a pgxpool and waits for the database to answer, retrying
// with exponential backoff so the service tolerates a database that starts
// alongside it. The users table is created by the store, not here.
func NewDBPool(ctx context.Context, cfg Config, log Logger) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: parse url: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBMinConns >= 0 {
		pcfg.MinConns = cfg.DBMinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("db: open pool: %w", err)
	}

	backoff := retry.WithMaxRetries(dbStartupAttempts-1, retry.NewExponential(200*time.Millisecond))
	if err := waitForDB(ctx, pool, backoff, log); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitForDB(ctx context.Context, db Pinger, backoff retry.Backoff, log Logger) error {
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := PingDB(ctx, db, 3*time.Second); err != nil {
			log.Warn("db.ping.retry", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("db: unreachable after %d attempts: %w", attempt, err)
	}
	return nil
}

// PingDB checks connectivity within timeout.
func PingDB(parent context.Context, db Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return db.Ping(ctx)
}
