package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/bgunnarsson/xpstat/internal/db"
)

const DefaultPort = 1433

// Server error numbers.
const (
	errLoginFailed  int32 = 18456
	errCannotOpenDB int32 = 4060
)

type MssqlDB struct {
	*db.Session
}

// Open opens a MSSQL connection.
// If FedAuth is set we use the Azure AD driver (azuresql)
// so things like ActiveDirectoryInteractive / AzCli work.
func Open(ctx context.Context, cfg db.ConnectionConfig) (*MssqlDB, error) {
	if cfg.Host == "" {
		return nil, db.Wrap(db.ErrInvalidConfig, fmt.Errorf("empty mssql host"))
	}

	driverName := "sqlserver"
	if cfg.FedAuth != "" {
		driverName = azuread.DriverName // "azuresql"
	}

	sqldb, err := sql.Open(driverName, dsn(cfg))
	if err != nil {
		return nil, db.Wrap(db.ErrInvalidConfig, err)
	}

	s, err := db.OpenSession(ctx, sqldb, cfg.Timeout(), Classify, normalize)
	if err != nil {
		return nil, err
	}
	return &MssqlDB{Session: s}, nil
}

func dsn(cfg db.ConnectionConfig) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	u := url.URL{
		Scheme: "sqlserver",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}

	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("dial timeout", strconv.Itoa(seconds(cfg.Timeout())))
	q.Set("connection timeout", strconv.Itoa(seconds(cfg.Timeout())))
	if cfg.FedAuth != "" {
		q.Set("fedauth", cfg.FedAuth)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func seconds(d time.Duration) int {
	if s := int(d.Seconds()); s > 0 {
		return s
	}
	return 1
}

// Classify maps a connect-time error onto the db error categories.
// SQL Server reports a missing database as 4060 followed by 18456, so
// 4060 wins when both are present.
func Classify(err error) error {
	var me mssql.Error
	if errors.As(err, &me) {
		numbers := []int32{me.Number}
		for _, e := range me.All {
			numbers = append(numbers, e.Number)
		}
		switch {
		case containsNumber(numbers, errCannotOpenDB):
			return db.Wrap(db.ErrDatabaseNotFound, err)
		case containsNumber(numbers, errLoginFailed):
			return db.Wrap(db.ErrAuthentication, err)
		}
	}

	// login errors are not always surfaced as mssql.Error
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "cannot open database"):
		return db.Wrap(db.ErrDatabaseNotFound, err)
	case strings.Contains(msg, "login failed"):
		return db.Wrap(db.ErrAuthentication, err)
	}
	return db.Wrap(db.ErrConnectivity, err)
}

func containsNumber(ns []int32, n int32) bool {
	for _, x := range ns {
		if x == n {
			return true
		}
	}
	return false
}

// --- db.DB implementation ---

func (m *MssqlDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT TABLE_SCHEMA + '.' + TABLE_NAME AS name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME;
`
	return m.QueryStrings(ctx, q)
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (m *MssqlDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema := "dbo"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const q = `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION;
`
	return m.QueryColumns(ctx, q, schema, name)
}

func (m *MssqlDB) Dialect() db.Dialect {
	return Dialect{}
}

// Dialect uses @pN markers and bracketed identifiers.
type Dialect struct{}

func (Dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (Dialect) QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func normalize(dbType string, v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	// NEVER string() binary; it wrecks the table.
	switch dbType {
	case "uniqueidentifier":
		return formatUniqueIdentifier(b)
	case "decimal", "numeric", "money", "smallmoney":
		// the driver hands these back as their text form
		return string(b)
	default:
		return fmt.Sprintf("0x%x", b)
	}
}

// formatUniqueIdentifier reorders SQL Server's mixed-endian GUID bytes
// into RFC 4122 order.
func formatUniqueIdentifier(b []byte) string {
	if len(b) != 16 {
		return fmt.Sprintf("%x", b)
	}

	var u uuid.UUID
	copy(u[:], b)
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	return u.String()
}
