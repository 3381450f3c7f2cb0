package report

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/bgunnarsson/xpstat/internal/db"
)

// Querier is the slice of db.DB the reporter needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (*db.Rows, error)
}

type State int

const (
	StateIdle State = iota
	StateExecuting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reporter runs one read query per Run and hands every row to a sink.
// It is not safe for concurrent use.
type Reporter struct {
	logger       *slog.Logger
	queryTimeout time.Duration
	state        State
}

type Option func(*Reporter)

// WithQueryTimeout bounds the query step; 0 means no bound beyond ctx.
func WithQueryTimeout(d time.Duration) Option {
	return func(r *Reporter) { r.queryTimeout = d }
}

func New(logger *slog.Logger, opts ...Option) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reporter{logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) State() State {
	return r.state
}

// Run executes spec against q, fetches the complete result set and only
// then emits the rows to sink in database order. A query failure emits
// nothing. It returns the number of rows delivered.
func (r *Reporter) Run(ctx context.Context, q Querier, spec QuerySpec, sink RowSink) (int, error) {
	if err := spec.Validate(); err != nil {
		r.state = StateFailed
		return 0, err
	}

	r.state = StateExecuting
	start := time.Now()

	rows, err := r.fetch(ctx, q, spec)
	if err != nil {
		r.state = StateFailed
		r.logger.Debug("report query failed", slog.String("error", err.Error()))
		return 0, err
	}

	n, err := emit(rows, sink)
	if err != nil {
		r.state = StateFailed
		return n, err
	}

	r.state = StateIdle
	r.logger.Debug("report done",
		slog.Int("rows", n),
		slog.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
	return n, nil
}

func (r *Reporter) fetch(ctx context.Context, q Querier, spec QuerySpec) (*db.Rows, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	rows, err := q.Query(ctx, spec.Statement, spec.Params...)
	if err != nil {
		if errors.Is(err, db.ErrQuery) || errors.Is(err, db.ErrClosed) {
			return nil, err
		}
		return nil, db.Wrap(db.ErrQuery, err)
	}
	if rows == nil {
		rows = &db.Rows{}
	}
	return rows, nil
}

func emit(rows *db.Rows, sink RowSink) (int, error) {
	if hs, ok := sink.(HeaderSink); ok {
		if err := hs.Header(rows.Columns); err != nil {
			return 0, fmt.Errorf("emit header: %w", err)
		}
	}

	n := 0
	for row := range Seq(rows.Data) {
		if err := sink.Emit(row); err != nil {
			return n, fmt.Errorf("emit row %d: %w", n+1, err)
		}
		n++
	}

	if f, ok := sink.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return n, fmt.Errorf("flush: %w", err)
		}
	}
	return n, nil
}

// Seq yields rows once, in order. Ranging over it a second time yields nothing.
func Seq(rows []db.Row) iter.Seq[db.Row] {
	used := false
	return func(yield func(db.Row) bool) {
		if used {
			return
		}
		used = true
		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}
