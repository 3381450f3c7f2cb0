package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/xpstat/internal/db"
)

type SqliteDB struct {
	*db.Session
}

// Open opens an existing database file. A missing file is reported as
// db.ErrDatabaseNotFound instead of being silently created.
func Open(ctx context.Context, path string) (*SqliteDB, error) {
	if path == "" {
		return nil, db.Wrap(db.ErrInvalidConfig, fmt.Errorf("empty sqlite path"))
	}

	if !inMemory(path) {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, db.Wrap(db.ErrDatabaseNotFound, err)
			}
			return nil, db.Wrap(db.ErrConnectivity, err)
		}
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, db.Wrap(db.ErrConnectivity, err)
	}

	s, err := db.OpenSession(ctx, sqldb, db.DefaultConnectTimeout, nil, nil)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys.
	if _, err := s.SQL().ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = s.Close()
		return nil, db.Wrap(db.ErrConnectivity, err)
	}

	return &SqliteDB{Session: s}, nil
}

func inMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file:")
}

func (s *SqliteDB) ListTables(ctx context.Context) ([]string, error) {
	// Use sqlite_master (works everywhere), include tables + views,
	// hide internal sqlite_% objects.
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY lower(name);
	`
	return s.QueryStrings(ctx, q)
}

func (s *SqliteDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	const q = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid;`
	return s.QueryColumns(ctx, q, table)
}

func (s *SqliteDB) Dialect() db.Dialect {
	return Dialect{}
}

type Dialect struct{}

func (Dialect) Placeholder(int) string { return "?" }

// very basic identifier quoting – enough for sqlite
func (Dialect) QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
