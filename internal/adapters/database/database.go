// Package database opens the backing SQL store and exposes its health probe.
//
// Two SQLite drivers are registered: "sqlite" (modernc.org/sqlite, pure Go)
// and "sqlite3" (mattn/go-sqlite3, cgo). The driver is chosen by
// configuration.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"github.com/jsamuelsen11/health-aggregator/internal/platform/config"
	"github.com/jsamuelsen11/health-aggregator/internal/platform/health"
)

// ComponentName is the name the database reports under in health output.
const ComponentName = "database"

// ErrConnectTimeout is returned by Open when the first connection is not
// established within the configured connect timeout.
var ErrConnectTimeout = errors.New("database connect timed out")

// Open creates a connection pool for cfg and verifies it with a ping bounded
// by cfg.ConnectTimeout. The pool is closed again when verification fails.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		if errors.Is(pingCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s: %w", ErrConnectTimeout, cfg.ConnectTimeout, err)
		}
		return nil, fmt.Errorf("connecting to %s database: %w", cfg.Driver, err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database connected",
			slog.String("driver", cfg.Driver),
			slog.String("location", dsnLocation(cfg.DSN)),
		)
	}

	return db, nil
}

// Ping performs a read-only round trip against db.
func Ping(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database round trip: %w", err)
	}
	return nil
}

// NewChecker returns the "database" component for db. It is healthy with the
// round-trip latency when SELECT 1 succeeds and unhealthy with the driver
// error otherwise.
func NewChecker(db *sql.DB) *health.ProbeChecker {
	return health.NewProbeChecker(ComponentName, func(ctx context.Context) error {
		return Ping(ctx, db)
	})
}

// dsnLocation reduces a DSN to where the database lives, dropping query
// parameters and URL credentials so it is safe to log.
func dsnLocation(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.User != nil {
		u.User = nil
		u.RawQuery = ""
		return u.String()
	}
	location, _, _ := strings.Cut(dsn, "?")
	return location
}
