// Package database persists generated reading plans in SQLite.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// =============================================================================
// Plan Store
// =============================================================================

// DB is the plan store.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds database configuration options.
type Config struct {
	Path            string // SQLite file, or ":memory:"
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a single-connection config for path. Plans are
// written in one transaction each, so a second writer only buys lock errors.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}
}

func (c Config) inMemory() bool {
	return c.Path == ":memory:"
}

// dsn enables WAL, foreign keys (plan_days cascade on plan delete) and a
// 5s busy timeout.
func (c Config) dsn() string {
	return c.Path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
}

// Open connects to the plan store, creating the file's directory if needed.
// Call Migrate before use.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !cfg.inMemory() {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create plan store directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open plan store: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping plan store %s: %w", cfg.Path, err)
	}

	logger.Info("plan store opened", slog.String("path", cfg.Path))
	return &DB{DB: sqlDB, logger: logger}, nil
}

// Close closes the plan store.
func (db *DB) Close() error {
	db.logger.Debug("closing plan store")
	return db.DB.Close()
}

// Health verifies the connection and that the plans table is readable.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans`).Scan(&n); err != nil {
		return fmt.Errorf("plan store unhealthy: %w", err)
	}
	return nil
}

// =============================================================================
// Migrations
// =============================================================================

// SchemaVersion returns the highest applied migration, 0 for a fresh store.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return schemaVersion(ctx, db.DB)
}

func schemaVersion(ctx context.Context, q queryer) (int, error) {
	var exists int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check schema_migrations: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var v int
	if err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Migrate brings the schema up to the latest version in one transaction and
// returns how many migrations it applied.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	applied := 0
	var from int

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				applied_at TEXT NOT NULL DEFAULT (datetime('now'))
			)
		`)
		if err != nil {
			return fmt.Errorf("create schema_migrations: %w", err)
		}

		if from, err = schemaVersion(ctx, tx.Tx); err != nil {
			return err
		}

		for _, m := range migrations {
			if m.version <= from {
				continue
			}
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
				m.version, m.name,
			); err != nil {
				return fmt.Errorf("record migration %d: %w", m.version, err)
			}
			db.logger.Info("migration applied",
				slog.Int("version", m.version),
				slog.String("name", m.name),
			)
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if applied > 0 {
		db.logger.Info("plan store schema updated",
			slog.Int("from", from),
			slog.Int("to", from+applied),
		)
	}
	return applied, nil
}

// =============================================================================
// Transactions
// =============================================================================

// Tx is a plan store transaction.
type Tx struct {
	*sql.Tx
}

// WithTx runs fn in a transaction, committing when it returns nil and
// rolling back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	tx := &Tx{sqlTx}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNotFound means the plan or plan day does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means a plan ID or a (plan, day index) pair is already stored.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalid means a row broke a schema constraint: a day for a missing
	// plan, a non-positive day count, a negative day index.
	ErrInvalid = errors.New("invalid plan data")
)

// IsNotFound reports whether err means a missing plan or day.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// writeError maps SQLite constraint failures on insert to the store's
// sentinel errors, prefixed with what.
func writeError(err error, what string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", what, ErrDuplicate)
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%s: %w: %v", what, ErrInvalid, err)
		}
	}
	return fmt.Errorf("insert %s: %w", what, err)
}
