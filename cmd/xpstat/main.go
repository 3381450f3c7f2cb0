package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/bgunnarsson/xpstat/internal/app"
	"github.com/bgunnarsson/xpstat/internal/config"
	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/db/mysql"
	"github.com/bgunnarsson/xpstat/internal/density"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return app.ExitUsage
	}

	var (
		askPassword bool
		interactive bool
		listTables  bool
		describe    bool
		verbose     bool
		heatmap     string
		heatmapUser string
		heatmapOut  string
	)

	// Flags default to the environment, so a set flag always wins.
	flag.StringVar(&cfg.Database.Driver, "driver", cfg.Database.Driver, "database driver: mysql, mariadb, postgres, mssql or sqlite")
	flag.StringVar(&cfg.Database.Host, "host", cfg.Database.Host, "database host")
	flag.IntVar(&cfg.Database.Port, "port", cfg.Database.Port, "database port (0 = driver default)")
	flag.StringVar(&cfg.Database.Name, "db", cfg.Database.Name, "database name, or file path for sqlite")
	flag.StringVar(&cfg.Database.User, "user", cfg.Database.User, "database user")
	flag.BoolVar(&askPassword, "p", false, "prompt for the database password when DB_PASSWORD is unset")
	flag.StringVar(&cfg.Report.Table, "table", cfg.Report.Table, "table to report on")
	flag.StringVar(&cfg.Report.Username, "username", cfg.Report.Username, "username to filter the report by")
	flag.StringVar(&cfg.Report.Format, "format", cfg.Report.Format, "output format: auto, table, lines or log")
	flag.BoolVar(&interactive, "i", false, "open the interactive viewer")
	flag.BoolVar(&listTables, "tables", false, "list tables and exit")
	flag.BoolVar(&describe, "describe", false, "describe the report table and exit")
	flag.StringVar(&heatmap, "heatmap", "", "render a density heatmap from an x y z sample file")
	flag.StringVar(&heatmapUser, "heatmap-user", "", "render the xp-per-tile heatmap for a username from the database")
	flag.StringVar(&heatmapOut, "o", "heatmap.png", "heatmap output file")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: xpstat [flags]")
		fmt.Fprintln(os.Stderr, "       xpstat -heatmap samples.txt [-o out.png]")
		fmt.Fprintln(os.Stderr, "       xpstat -heatmap-user <name> [-o out.png]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 0 {
		flag.Usage()
		return app.ExitUsage
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return app.ExitUsage
	}
	slog.SetDefault(logger)
	mysql.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if heatmap != "" {
		name := filepath.Base(heatmap)
		if err := app.RenderHeatmap(heatmap, heatmapOut, density.Options{Title: name}); err != nil {
			return fail(err)
		}
		logger.Info("heatmap written", slog.String("input", heatmap), slog.String("output", heatmapOut))
		return app.ExitOK
	}

	if err := resolvePassword(&cfg.Database, askPassword, readPassword); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return app.ExitUsage
	}

	if err := cfg.Validate(); err != nil {
		return fail(db.Wrap(db.ErrInvalidConfig, err))
	}

	opts := app.Options{
		Out:    os.Stdout,
		Logger: logger,
		TTY:    term.IsTerminal(int(os.Stdout.Fd())),
	}

	if heatmapUser != "" {
		cfg.Report.Username = heatmapUser
	}

	switch {
	case heatmapUser != "":
		dopts := density.Options{Title: "xp by tile: " + heatmapUser}
		err = app.RenderUserHeatmap(ctx, cfg, heatmapOut, dopts, opts)
		if err == nil {
			logger.Info("heatmap written", slog.String("username", heatmapUser), slog.String("output", heatmapOut))
		}
	case listTables:
		err = app.ListTables(ctx, cfg, opts)
	case describe:
		err = app.DescribeTable(ctx, cfg, opts)
	case interactive:
		if !opts.TTY {
			return fail(db.Wrap(db.ErrInvalidConfig, errors.New("-i needs a terminal")))
		}
		err = app.RunInteractive(ctx, cfg, opts)
	default:
		_, err = app.RunNonInteractive(ctx, cfg, opts)
	}
	if err != nil {
		return fail(err)
	}
	return app.ExitOK
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", app.Describe(err))
	return app.ExitCode(err)
}

func newLogger(lc config.LogConfig) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

// resolvePassword prompts only when asked to and no password came from
// the environment.
func resolvePassword(dc *config.DatabaseConfig, ask bool, read func() (string, error)) error {
	if !ask || dc.Password != "" {
		return nil
	}
	pw, err := read()
	if err != nil {
		return err
	}
	dc.Password = pw
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-p needs a terminal on stdin")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
