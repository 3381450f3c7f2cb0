package db

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ConnectionConfig
		wantErr string
	}{
		{"valid mysql", ConnectionConfig{Driver: DriverMysql, Host: "h", Database: "d", User: "u"}, ""},
		{"valid sqlite without host", ConnectionConfig{Driver: DriverSqlite, Database: "/tmp/x.db"}, ""},
		{"valid mssql fedauth", ConnectionConfig{Driver: DriverMssql, Host: "h", Database: "d", FedAuth: "ActiveDirectoryDefault"}, ""},
		{"missing host", ConnectionConfig{Driver: DriverPostgres, Database: "d", User: "u"}, "host is required"},
		{"missing db", ConnectionConfig{Driver: DriverMysql, Host: "h", User: "u"}, "database is required"},
		{"missing user", ConnectionConfig{Driver: DriverMariadb, Host: "h", Database: "d"}, "username is required"},
		{"bad driver", ConnectionConfig{Driver: "oracle", Host: "h", Database: "d", User: "u"}, `unsupported driver "oracle"`},
		{"bad port", ConnectionConfig{Driver: DriverMysql, Host: "h", Database: "d", User: "u", Port: 70000}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConnectionConfig_Timeout(t *testing.T) {
	assert.Equal(t, DefaultConnectTimeout, ConnectionConfig{}.Timeout())
	assert.Equal(t, time.Second, ConnectionConfig{ConnectTimeout: time.Second}.Timeout())
}

func TestConnectionConfig_RedactsPassword(t *testing.T) {
	cfg := ConnectionConfig{Driver: DriverMysql, Host: "h", Port: 3306, Database: "d", User: "u", Password: "hunter2"}

	assert.NotContains(t, cfg.String(), "hunter2")
	assert.Contains(t, cfg.String(), "u:***@h:3306/d")

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("connecting", slog.Any("target", cfg))
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), "target.password_set=true")
}

func TestKind(t *testing.T) {
	cause := errors.New("boom")
	assert.Equal(t, ErrAuthentication, Kind(Wrap(ErrAuthentication, cause)))
	assert.Equal(t, ErrQuery, Kind(Wrap(ErrQuery, cause)))
	assert.Nil(t, Kind(cause))
	assert.Equal(t, ErrClosed, Wrap(ErrClosed, nil))
}
