package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/db/mssql"
	"github.com/bgunnarsson/xpstat/internal/db/mysql"
	"github.com/bgunnarsson/xpstat/internal/db/postgres"
	"github.com/bgunnarsson/xpstat/internal/db/sqlite"
)

// Connect is the central factory: it validates cfg and opens exactly one
// session with the matching backend. No retries.
func Connect(ctx context.Context, cfg db.ConnectionConfig) (db.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Each branch checks err itself so a nil *XxxDB never becomes a
	// non-nil db.DB.
	switch cfg.Driver {
	case db.DriverSqlite:
		conn, err := sqlite.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case db.DriverPostgres:
		conn, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case db.DriverMssql:
		conn, err := mssql.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case db.DriverMysql, db.DriverMariadb:
		conn, err := mysql.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, db.Wrap(db.ErrInvalidConfig, fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
}

// WithConnection connects, hands the session to fn and closes it on every
// exit path, including a panic in fn. A close failure is joined onto fn's error.
func WithConnection(ctx context.Context, cfg db.ConnectionConfig, logger *slog.Logger, fn func(db.DB) error) (err error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("connected", slog.Any("target", cfg))

	defer func() {
		if cerr := conn.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close: %w", cerr))
		}
		logger.Debug("disconnected")
	}()

	return fn(conn)
}
