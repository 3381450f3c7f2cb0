package db

import (
	"context"
)

type Column struct {
	Name string
	Type string
}

// Row holds one result row; values keep the driver's Go types
// (int64, float64, string, time.Time, nil, ...).
type Row []any

type Rows struct {
	Columns []Column
	Data    []Row
}

// Dialect covers the SQL text differences between backends.
type Dialect interface {
	// Placeholder returns the bind marker for the n-th (1-based) parameter.
	Placeholder(n int) string
	QuoteIdent(id string) string
}

type DB interface {
	Close() error
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]Column, error)
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)
	Dialect() Dialect
}
