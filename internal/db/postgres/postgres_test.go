package postgres

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/xpstat/internal/db"
)

var _ db.DB = (*PostgresDB)(nil)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"bad password", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, db.ErrAuthentication},
		{"no such role", &pgconn.PgError{Code: "28000", Message: "role does not exist"}, db.ErrAuthentication},
		{"no database", &pgconn.PgError{Code: "3D000", Message: `database "nope" does not exist`}, db.ErrDatabaseNotFound},
		{"other", &pgconn.PgError{Code: "53300", Message: "too many connections"}, db.ErrConnectivity},
		{"network", errors.New("connection refused"), db.ErrConnectivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestConnString(t *testing.T) {
	s := connString(db.ConnectionConfig{
		Host:           "pg.local",
		Database:       "stats",
		User:           "reporter",
		Password:       "p@ss word",
		ConnectTimeout: 1500 * time.Millisecond,
	})

	u, err := url.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "pg.local:5432", u.Host)
	assert.Equal(t, "/stats", u.Path)
	assert.Equal(t, "reporter", u.User.Username())
	pw, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "1", u.Query().Get("connect_timeout"))
}

func TestConnString_NoPassword(t *testing.T) {
	u, err := url.Parse(connString(db.ConnectionConfig{Host: "h", Port: 6543, Database: "d", User: "u"}))
	require.NoError(t, err)
	_, ok := u.User.Password()
	assert.False(t, ok)
	assert.Equal(t, "h:6543", u.Host)
	assert.Equal(t, "5", u.Query().Get("connect_timeout"))
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "$1", d.Placeholder(1))
	assert.Equal(t, "$12", d.Placeholder(12))
	assert.Equal(t, `"xp_statistics"`, d.QuoteIdent("xp_statistics"))
}
