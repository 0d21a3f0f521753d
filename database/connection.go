package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// ErrStoreUnavailable is returned when the store cannot be reached even after a reconnect
var ErrStoreUnavailable = errors.New("store unavailable")

const defaultTxTimeout = 10 * time.Second

// DB guards the shared connection pool. Every transaction goes through Begin, which
// pings the connection first and rebuilds the pool once if the ping fails.
type DB struct {
	mu        sync.RWMutex
	pool      *pgxpool.Pool
	config    *pgxpool.Config
	txTimeout time.Duration

	// checkMu serializes liveness checks and reconnects
	checkMu sync.Mutex
}

// Option configures a DB
type Option func(*DB)

// WithTxTimeout bounds how long a single transaction may run
func WithTxTimeout(timeout time.Duration) Option {
	return func(db *DB) {
		if timeout > 0 {
			db.txTimeout = timeout
		}
	}
}

// NewConnection creates a new guarded connection pool
func NewConnection(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	// Parse config to set timezone
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set timezone to UTC for all connections
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := openPool(ctx, config)
	if err != nil {
		return nil, err
	}

	db := &DB{
		pool:      pool,
		config:    config,
		txTimeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		opt(db)
	}

	return db, nil
}

func openPool(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, config.Copy())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Pool returns the current connection pool
func (db *DB) Pool() *pgxpool.Pool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.pool
}

// TxTimeout returns the configured transaction timeout
func (db *DB) TxTimeout() time.Duration {
	return db.txTimeout
}

// Ensure pings the connection and re-establishes the pool once if the ping fails
func (db *DB) Ensure(ctx context.Context) error {
	db.checkMu.Lock()
	defer db.checkMu.Unlock()

	pingErr := db.Pool().Ping(ctx)
	if pingErr == nil {
		return nil
	}
	log.WithError(pingErr).Warn("Database liveness check failed, reconnecting")

	newPool, err := openPool(ctx, db.config)
	if err != nil {
		log.WithError(err).Error("Database reconnect failed")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	db.mu.Lock()
	old := db.pool
	db.pool = newPool
	db.mu.Unlock()

	// Close waits for acquired connections to be released
	go old.Close()

	log.Info("Database connection re-established")
	return nil
}

// Begin checks the connection and starts a transaction on the current pool
func (db *DB) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := db.Ensure(ctx); err != nil {
		return nil, err
	}

	tx, err := db.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tx, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool().Close()
}
