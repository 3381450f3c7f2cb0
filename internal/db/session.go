package db

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"
	"time"
)

// Normalizer converts a scanned value for a column of dbType
// (lower-cased DatabaseTypeName) into what ends up in a Row.
type Normalizer func(dbType string, v any) any

// Classifier maps a driver error raised while connecting to one of
// ErrAuthentication, ErrDatabaseNotFound or ErrConnectivity.
type Classifier func(err error) error

// Session is the single short-lived connection shared by every backend.
// Backends embed it and add their catalog queries and dialect.
type Session struct {
	db        *sql.DB
	normalize Normalizer
	closed    atomic.Bool
}

// OpenSession pings sqldb once within timeout. On failure sqldb is closed
// and the classified error is returned; there is no retry.
func OpenSession(ctx context.Context, sqldb *sql.DB, timeout time.Duration, classify Classifier, normalize Normalizer) (*Session, error) {
	// one session, one connection
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		if classify == nil {
			return nil, Wrap(ErrConnectivity, err)
		}
		return nil, classify(err)
	}

	return &Session{db: sqldb, normalize: normalize}, nil
}

// Close releases the session. Closing twice returns ErrClosed.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return s.db.Close()
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Query runs sqlQuery and materializes the whole result set before returning.
func (s *Session) Query(ctx context.Context, sqlQuery string, args ...any) (*Rows, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, Wrap(ErrQuery, err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, Wrap(ErrQuery, err)
	}

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, Wrap(ErrQuery, err)
	}

	header := make([]Column, len(colNames))
	for i, name := range colNames {
		typ := ""
		if i < len(colTypes) && colTypes[i] != nil {
			typ = strings.ToLower(colTypes[i].DatabaseTypeName())
		}
		header[i] = Column{
			Name: name,
			Type: typ,
		}
	}

	var data []Row
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, Wrap(ErrQuery, err)
		}

		if s.normalize != nil {
			for i, v := range values {
				values[i] = s.normalize(header[i].Type, v)
			}
		}

		data = append(data, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrQuery, err)
	}

	return &Rows{
		Columns: header,
		Data:    data,
	}, nil
}

// QueryStrings runs a single-column query, e.g. a table listing.
func (s *Session) QueryStrings(ctx context.Context, q string, args ...any) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, Wrap(ErrQuery, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, Wrap(ErrQuery, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrQuery, err)
	}
	return out, nil
}

// QueryColumns runs a (name, type) catalog query.
func (s *Session) QueryColumns(ctx context.Context, q string, args ...any) ([]Column, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, Wrap(ErrQuery, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return nil, Wrap(ErrQuery, err)
		}
		cols = append(cols, Column{
			Name: colName,
			Type: dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrQuery, err)
	}
	return cols, nil
}

// SQL exposes the underlying handle for backend-specific statements.
func (s *Session) SQL() *sql.DB {
	return s.db
}

// NormalizeText turns []byte into string and leaves everything else alone.
// MySQL and Postgres hand TEXT/VARCHAR back as []byte through database/sql.
func NormalizeText(_ string, v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
