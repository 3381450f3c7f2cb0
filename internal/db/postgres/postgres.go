package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bgunnarsson/xpstat/internal/db"
)

const DefaultPort = 5432

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeInvalidAuthorization = "28000"
	codeInvalidPassword      = "28P01"
	codeInvalidCatalogName   = "3D000"
)

type PostgresDB struct {
	*db.Session
}

func Open(ctx context.Context, cfg db.ConnectionConfig) (*PostgresDB, error) {
	if cfg.Host == "" {
		return nil, db.Wrap(db.ErrInvalidConfig, fmt.Errorf("empty postgres host"))
	}

	pcfg, err := pgx.ParseConfig(connString(cfg))
	if err != nil {
		return nil, db.Wrap(db.ErrInvalidConfig, err)
	}

	s, err := db.OpenSession(ctx, stdlib.OpenDB(*pcfg), cfg.Timeout(), Classify, db.NormalizeText)
	if err != nil {
		return nil, err
	}
	return &PostgresDB{Session: s}, nil
}

func connString(cfg db.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}

	q := url.Values{}
	// connect_timeout is whole seconds; never round a short timeout down to "no timeout".
	secs := int(cfg.Timeout().Seconds())
	if secs < 1 {
		secs = 1
	}
	q.Set("connect_timeout", strconv.Itoa(secs))
	u.RawQuery = q.Encode()

	return u.String()
}

func Classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeInvalidPassword, codeInvalidAuthorization:
			return db.Wrap(db.ErrAuthentication, err)
		case codeInvalidCatalogName:
			return db.Wrap(db.ErrDatabaseNotFound, err)
		}
	}
	return db.Wrap(db.ErrConnectivity, err)
}

func (p *PostgresDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_schema || '.' || table_name AS name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name;
`
	return p.QueryStrings(ctx, q)
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (p *PostgresDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema := "public"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
  AND table_name = $2
ORDER BY ordinal_position;
`
	return p.QueryColumns(ctx, q, schema, name)
}

func (p *PostgresDB) Dialect() db.Dialect {
	return Dialect{}
}

// Dialect uses $n markers and double-quoted identifiers.
type Dialect struct{}

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
