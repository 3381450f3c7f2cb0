// Package config loads xpstat settings from the environment.
//
// Every value has an environment variable; command-line flags in
// cmd/xpstat override them afterwards. Nothing secret has a default.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/report"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Report   ReportConfig
	Log      LogConfig
}

// DatabaseConfig holds the connection target
type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	FedAuth        string
	ConnectTimeout time.Duration
}

// ReportConfig holds what to query and how to print it
type ReportConfig struct {
	Table        string
	TablePrefix  string
	Username     string
	Format       string
	QueryTimeout time.Duration
	MaxWidth     int
}

// LogConfig holds slog settings
type LogConfig struct {
	Level  string
	Format string
}

// Report output formats.
const (
	FormatAuto  = "auto"
	FormatTable = "table"
	FormatLines = "lines"
	FormatLog   = "log"
)

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Database: DatabaseConfig{
			Driver:         getEnv("DB_DRIVER", string(db.DriverMysql)),
			Host:           getEnv("DB_HOST", ""),
			Port:           getIntEnv("DB_PORT", 0),
			Name:           getEnv("DB_NAME", ""),
			User:           getEnv("DB_USER", ""),
			Password:       getEnv("DB_PASSWORD", ""),
			FedAuth:        getEnv("DB_FEDAUTH", ""),
			ConnectTimeout: getDurationEnv("DB_CONNECT_TIMEOUT", db.DefaultConnectTimeout),
		},
		Report: ReportConfig{
			Table:        getEnv("REPORT_TABLE", "xp_statistics"),
			TablePrefix:  getEnv("REPORT_TABLE_PREFIX", ""),
			Username:     getEnv("REPORT_USERNAME", ""),
			Format:       getEnv("REPORT_FORMAT", FormatAuto),
			QueryTimeout: getDurationEnv("REPORT_QUERY_TIMEOUT", 30*time.Second),
			MaxWidth:     getIntEnv("REPORT_MAX_WIDTH", 60),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}, nil
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
// The report username is checked separately by RequireUsername, since
// table listing and heatmap rendering do not need one.
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	if err := c.Connection().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("DB_*: %w", err))
	}
	if c.Database.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("DB_CONNECT_TIMEOUT must be positive"))
	}

	// Report validation
	if !report.ValidIdent(c.Report.TableName()) {
		errs = append(errs, fmt.Errorf("REPORT_TABLE_PREFIX + REPORT_TABLE must be a plain identifier, got %q", c.Report.TableName()))
	}
	switch c.Report.Format {
	case FormatAuto, FormatTable, FormatLines, FormatLog:
	default:
		errs = append(errs, fmt.Errorf("REPORT_FORMAT must be 'auto', 'table', 'lines' or 'log', got '%s'", c.Report.Format))
	}
	if c.Report.QueryTimeout <= 0 {
		errs = append(errs, errors.New("REPORT_QUERY_TIMEOUT must be positive"))
	}
	if c.Report.MaxWidth < 4 {
		errs = append(errs, errors.New("REPORT_MAX_WIDTH must be at least 4"))
	}

	// Log validation
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got '%s'", c.Log.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RequireUsername reports a missing report filter.
func (c *Config) RequireUsername() error {
	if strings.TrimSpace(c.Report.Username) == "" {
		return errors.New("REPORT_USERNAME is required")
	}
	return nil
}

// Connection maps the database settings onto a db.ConnectionConfig.
func (c *Config) Connection() db.ConnectionConfig {
	return db.ConnectionConfig{
		Driver:         db.Driver(strings.ToLower(c.Database.Driver)),
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		Database:       c.Database.Name,
		User:           c.Database.User,
		Password:       c.Database.Password,
		FedAuth:        c.Database.FedAuth,
		ConnectTimeout: c.Database.ConnectTimeout,
	}
}

// TableName is the prefixed table the report reads.
func (r ReportConfig) TableName() string {
	return r.TablePrefix + r.Table
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got '%s'", l.Level)
	}
	return lvl, nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
