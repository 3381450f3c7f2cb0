package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/db/sqlite"
	"github.com/bgunnarsson/xpstat/internal/testing/testdb"
)

// Verify that *sqlite.SqliteDB implements db.DB at compile time.
var _ db.DB = (*sqlite.SqliteDB)(nil)

func TestOpen_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.db")

	conn, err := sqlite.Open(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, db.ErrDatabaseNotFound)
	assert.NoFileExists(t, path)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	assert.ErrorIs(t, err, db.ErrInvalidConfig)
}

func TestListAndDescribe(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, testdb.New(t))
	require.NoError(t, err)
	defer conn.Close()

	tables, err := conn.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testdb.Table}, tables)

	cols, err := conn.DescribeTable(ctx, testdb.Table)
	require.NoError(t, err)
	require.Len(t, cols, 4)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "username", cols[1].Name)
	assert.Equal(t, "TEXT", cols[1].Type)
}

func TestQuery_BoundParameter(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, testdb.New(t, testdb.Example...))
	require.NoError(t, err)
	defer conn.Close()

	rows, err := conn.Query(ctx, `SELECT username, xp FROM xp_statistics WHERE username = ?`, "LordOfWoeHC")
	require.NoError(t, err)
	require.Len(t, rows.Data, 2)
	assert.Equal(t, "username", rows.Columns[0].Name)
	assert.Equal(t, db.Row{"LordOfWoeHC", int64(100)}, rows.Data[0])
	assert.Equal(t, db.Row{"LordOfWoeHC", int64(150)}, rows.Data[1])
}

func TestQuery_MissingTable(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, testdb.New(t))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Query(ctx, `SELECT * FROM nowhere`)
	assert.ErrorIs(t, err, db.ErrQuery)
}

func TestClose_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, testdb.New(t))
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.True(t, conn.Closed())
	assert.ErrorIs(t, conn.Close(), db.ErrClosed)

	_, err = conn.Query(ctx, `SELECT 1`)
	assert.ErrorIs(t, err, db.ErrClosed)
	_, err = conn.ListTables(ctx)
	assert.ErrorIs(t, err, db.ErrClosed)
}

func TestDialect(t *testing.T) {
	d := sqlite.Dialect{}
	assert.Equal(t, "?", d.Placeholder(3))
	assert.Equal(t, `"xp_statistics"`, d.QuoteIdent("xp_statistics"))
	assert.Equal(t, `"a""b"`, d.QuoteIdent(`a"b`))
}
