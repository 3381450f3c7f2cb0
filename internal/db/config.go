package db

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMssql    Driver = "mssql"
	DriverMysql    Driver = "mysql"
	DriverMariadb  Driver = "mariadb"
)

// Networked reports whether the driver talks to a server (as opposed to a file).
func (d Driver) Networked() bool {
	return d != DriverSqlite
}

// ConnectionConfig is the connection target. It is passed by value and
// never modified after construction.
type ConnectionConfig struct {
	Driver   Driver
	Host     string
	Port     int // 0 = driver default
	Database string
	User     string
	Password string

	// FedAuth selects Azure AD authentication for mssql (e.g. "ActiveDirectoryDefault").
	FedAuth string

	ConnectTimeout time.Duration
}

const DefaultConnectTimeout = 5 * time.Second

// Timeout returns ConnectTimeout or the default when unset.
func (c ConnectionConfig) Timeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return c.ConnectTimeout
}

// Validate checks the fields every connect needs.
func (c ConnectionConfig) Validate() error {
	var errs []error

	switch c.Driver {
	case DriverMysql, DriverMariadb, DriverPostgres, DriverMssql, DriverSqlite:
	default:
		errs = append(errs, fmt.Errorf("unsupported driver %q", c.Driver))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	if c.Driver.Networked() {
		if c.Host == "" {
			errs = append(errs, errors.New("host is required"))
		}
		if c.User == "" && c.FedAuth == "" {
			errs = append(errs, errors.New("username is required"))
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	if len(errs) > 0 {
		return Wrap(ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c ConnectionConfig) String() string {
	pw := ""
	if c.Password != "" {
		pw = ":***"
	}
	if !c.Driver.Networked() {
		return fmt.Sprintf("%s:%s", c.Driver, c.Database)
	}
	return fmt.Sprintf("%s://%s%s@%s:%d/%s", c.Driver, c.User, pw, c.Host, c.Port, c.Database)
}

// LogValue keeps the password out of structured logs.
func (c ConnectionConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("driver", string(c.Driver)),
		slog.String("host", c.Host),
		slog.Int("port", c.Port),
		slog.String("database", c.Database),
		slog.String("user", c.User),
		slog.Bool("password_set", c.Password != ""),
	)
}
