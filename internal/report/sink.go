package report

import (
	"context"
	"io"
	"log/slog"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/print"
)

// RowSink accepts one row at a time.
type RowSink interface {
	Emit(row db.Row) error
}

// HeaderSink is told the result columns before the first row.
type HeaderSink interface {
	RowSink
	Header(cols []db.Column) error
}

// Flusher is called once after the last row.
type Flusher interface {
	Flush() error
}

// LineSink prints every row on its own line as soon as it is emitted.
type LineSink struct {
	W io.Writer
}

func (s LineSink) Emit(row db.Row) error {
	return print.RenderTuple(s.W, row)
}

// TableSink buffers rows and renders them as one table on Flush.
type TableSink struct {
	W      io.Writer
	Opts   print.Options
	Styled bool
	buf    db.Rows
}

func NewTableSink(w io.Writer, opts print.Options, styled bool) *TableSink {
	return &TableSink{W: w, Opts: opts, Styled: styled}
}

func (s *TableSink) Header(cols []db.Column) error {
	s.buf.Columns = cols
	return nil
}

func (s *TableSink) Emit(row db.Row) error {
	s.buf.Data = append(s.buf.Data, row)
	return nil
}

func (s *TableSink) Flush() error {
	if s.Styled {
		print.RenderStyled(s.W, &s.buf, s.Opts)
	} else {
		print.RenderTable(s.W, &s.buf, s.Opts)
	}
	s.buf = db.Rows{}
	return nil
}

// LogSink writes one structured record per row, keyed by column name.
type LogSink struct {
	Logger *slog.Logger
	Level  slog.Level
	cols   []db.Column
}

func NewLogSink(l *slog.Logger) *LogSink {
	return &LogSink{Logger: l, Level: slog.LevelInfo}
}

func (s *LogSink) Header(cols []db.Column) error {
	s.cols = cols
	return nil
}

func (s *LogSink) Emit(row db.Row) error {
	attrs := make([]slog.Attr, 0, len(row))
	for i, v := range row {
		key := "col"
		if i < len(s.cols) {
			key = s.cols[i].Name
		}
		attrs = append(attrs, slog.String(key, print.FormatCell(v)))
	}
	s.Logger.LogAttrs(context.Background(), s.Level, "row", attrs...)
	return nil
}

// CollectSink keeps everything in memory.
type CollectSink struct {
	Columns []db.Column
	Rows    []db.Row
}

func (s *CollectSink) Header(cols []db.Column) error {
	s.Columns = cols
	return nil
}

func (s *CollectSink) Emit(row db.Row) error {
	s.Rows = append(s.Rows, row)
	return nil
}

// Result returns the collected rows in db.Rows form.
func (s *CollectSink) Result() *db.Rows {
	return &db.Rows{Columns: s.Columns, Data: s.Rows}
}
