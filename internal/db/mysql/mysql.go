package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/xpstat/internal/db"
)

const DefaultPort = 3306

// Server error numbers (mysqld_error.h).
const (
	erDBAccessDenied uint16 = 1044
	erAccessDenied   uint16 = 1045
	erBadDB          uint16 = 1049
)

type MysqlDB struct {
	*db.Session
}

// Open connects to a MySQL or MariaDB server. The session is pinged once;
// a failed ping is classified and the handle closed.
func Open(ctx context.Context, cfg db.ConnectionConfig) (*MysqlDB, error) {
	if cfg.Host == "" {
		return nil, db.Wrap(db.ErrInvalidConfig, fmt.Errorf("empty mysql host"))
	}

	connector, err := mysql.NewConnector(driverConfig(cfg))
	if err != nil {
		return nil, db.Wrap(db.ErrInvalidConfig, err)
	}

	s, err := db.OpenSession(ctx, sql.OpenDB(connector), cfg.Timeout(), Classify, db.NormalizeText)
	if err != nil {
		return nil, err
	}
	return &MysqlDB{Session: s}, nil
}

func driverConfig(cfg db.ConnectionConfig) *mysql.Config {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.Timeout()
	return mc
}

// Classify maps a connect-time error onto the db error categories.
func Classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erAccessDenied, erDBAccessDenied:
			return db.Wrap(db.ErrAuthentication, err)
		case erBadDB:
			return db.Wrap(db.ErrDatabaseNotFound, err)
		}
	}
	return db.Wrap(db.ErrConnectivity, err)
}

// SetLogger routes the driver's own diagnostics (e.g. bad connection
// notices) through slog instead of the default stderr logger.
func SetLogger(l *slog.Logger) {
	_ = mysql.SetLogger(driverLogger{l})
}

type driverLogger struct {
	l *slog.Logger
}

func (d driverLogger) Print(v ...any) {
	d.l.Debug(strings.TrimSpace(fmt.Sprint(v...)), slog.String("driver", "mysql"))
}

// --- db.DB implementation ---

func (m *MysqlDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema = DATABASE()
ORDER BY table_name;
`
	return m.QueryStrings(ctx, q)
}

func (m *MysqlDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = DATABASE()
  AND table_name = ?
ORDER BY ordinal_position;
`
	return m.QueryColumns(ctx, q, table)
}

func (m *MysqlDB) Dialect() db.Dialect {
	return Dialect{}
}

// Dialect uses ? markers and backtick identifiers.
type Dialect struct{}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
