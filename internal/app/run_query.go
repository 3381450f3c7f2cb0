package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bgunnarsson/xpstat/internal/config"
	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/print"
	"github.com/bgunnarsson/xpstat/internal/report"
	"github.com/bgunnarsson/xpstat/internal/ui"
)

// Options carry the process-level pieces main decides on.
type Options struct {
	Out    io.Writer
	Logger *slog.Logger
	// TTY is true when Out is a terminal; it picks the styled table.
	TTY bool
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// RunNonInteractive connects, runs the username report once, prints it and
// disconnects. It returns the number of rows printed.
func RunNonInteractive(ctx context.Context, cfg *config.Config, opts Options) (int, error) {
	opts = opts.withDefaults()
	if err := cfg.RequireUsername(); err != nil {
		return 0, db.Wrap(db.ErrInvalidConfig, err)
	}

	var count int
	err := WithConnection(ctx, cfg.Connection(), opts.Logger, func(conn db.DB) error {
		spec, err := report.UserFilter(conn.Dialect(), cfg.Report.TableName(), cfg.Report.Username)
		if err != nil {
			return err
		}

		r := report.New(opts.Logger, report.WithQueryTimeout(cfg.Report.QueryTimeout))
		count, err = r.Run(ctx, conn, spec, newSink(cfg.Report, opts))
		if err != nil {
			return err
		}
		opts.Logger.Info("report complete",
			slog.String("table", cfg.Report.TableName()),
			slog.Int("rows", count),
		)
		return nil
	})
	return count, err
}

func newSink(rc config.ReportConfig, opts Options) report.RowSink {
	popts := print.Options{MaxWidth: rc.MaxWidth}
	switch rc.Format {
	case config.FormatTable:
		return report.NewTableSink(opts.Out, popts, opts.TTY)
	case config.FormatLines:
		return report.LineSink{W: opts.Out}
	case config.FormatLog:
		return report.NewLogSink(opts.Logger)
	default:
		// auto: a table for people, tuple lines for pipes
		if opts.TTY {
			return report.NewTableSink(opts.Out, popts, true)
		}
		return report.LineSink{W: opts.Out}
	}
}

// ListTables prints every table the target database exposes.
func ListTables(ctx context.Context, cfg *config.Config, opts Options) error {
	opts = opts.withDefaults()
	return WithConnection(ctx, cfg.Connection(), opts.Logger, func(conn db.DB) error {
		tables, err := conn.ListTables(ctx)
		if err != nil {
			return err
		}
		rows := &db.Rows{Columns: []db.Column{{Name: "table"}}}
		for _, t := range tables {
			rows.Data = append(rows.Data, db.Row{t})
		}
		render(opts, rows, cfg.Report.MaxWidth)
		return nil
	})
}

// DescribeTable prints the report table's columns.
func DescribeTable(ctx context.Context, cfg *config.Config, opts Options) error {
	opts = opts.withDefaults()
	return WithConnection(ctx, cfg.Connection(), opts.Logger, func(conn db.DB) error {
		cols, err := conn.DescribeTable(ctx, cfg.Report.TableName())
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			return db.Wrap(db.ErrQuery, fmt.Errorf("table %q not found", cfg.Report.TableName()))
		}
		rows := &db.Rows{Columns: []db.Column{{Name: "column"}, {Name: "type"}}}
		for _, c := range cols {
			rows.Data = append(rows.Data, db.Row{c.Name, c.Type})
		}
		render(opts, rows, cfg.Report.MaxWidth)
		return nil
	})
}

func render(opts Options, rows *db.Rows, maxWidth int) {
	if opts.TTY {
		print.RenderStyled(opts.Out, rows, print.Options{MaxWidth: maxWidth})
		return
	}
	print.RenderTable(opts.Out, rows, print.Options{MaxWidth: maxWidth})
}

// RunInteractive keeps one session open and lets the user re-run the
// report for any username.
func RunInteractive(ctx context.Context, cfg *config.Config, opts Options) error {
	opts = opts.withDefaults()
	return WithConnection(ctx, cfg.Connection(), opts.Logger, func(conn db.DB) error {
		r := report.New(opts.Logger, report.WithQueryTimeout(cfg.Report.QueryTimeout))
		table := cfg.Report.TableName()

		return ui.Run(ctx, ui.Options{
			Label:    string(cfg.Connection().Driver),
			Table:    table,
			Username: cfg.Report.Username,
			MaxWidth: cfg.Report.MaxWidth,
			Run: func(ctx context.Context, username string) (*db.Rows, error) {
				spec, err := report.UserFilter(conn.Dialect(), table, username)
				if err != nil {
					return nil, err
				}
				sink := &report.CollectSink{}
				if _, err := r.Run(ctx, conn, spec, sink); err != nil {
					return nil, err
				}
				return sink.Result(), nil
			},
		})
	})
}
