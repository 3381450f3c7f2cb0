package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/db/mssql"
	"github.com/bgunnarsson/xpstat/internal/db/mysql"
	"github.com/bgunnarsson/xpstat/internal/db/postgres"
)

func TestUserFilter(t *testing.T) {
	tests := []struct {
		name    string
		dialect db.Dialect
		want    string
	}{
		{"mysql", mysql.Dialect{}, "SELECT * FROM `xp_statistics` WHERE `username` = ?"},
		{"postgres", postgres.Dialect{}, `SELECT * FROM "xp_statistics" WHERE "username" = $1`},
		{"mssql", mssql.Dialect{}, "SELECT * FROM [xp_statistics] WHERE [username] = @p1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := UserFilter(tt.dialect, "xp_statistics", "LordOfWoeHC")
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Statement)
			assert.Equal(t, []any{"LordOfWoeHC"}, spec.Params)
			assert.NotContains(t, spec.Statement, "LordOfWoeHC")
			assert.NoError(t, spec.Validate())
		})
	}
}

func TestUserFilter_Rejects(t *testing.T) {
	_, err := UserFilter(mysql.Dialect{}, "xp; DROP TABLE x", "u")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = UserFilter(mysql.Dialect{}, "xp_statistics", "")
	assert.ErrorIs(t, err, ErrInvalidSpec)
}

func TestQuerySpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    QuerySpec
		wantErr bool
	}{
		{"empty", QuerySpec{}, true},
		{"blank", QuerySpec{Statement: "   "}, true},
		{"no params", QuerySpec{Statement: "SELECT 1"}, false},
		{"question marks", QuerySpec{Statement: "SELECT * FROM t WHERE a = ? AND b = ?", Params: []any{1, 2}}, false},
		{"missing param", QuerySpec{Statement: "SELECT * FROM t WHERE a = ?"}, true},
		{"repeated numbered", QuerySpec{Statement: "SELECT * FROM t WHERE a = $1 OR b = $1", Params: []any{1}}, false},
		{"mssql", QuerySpec{Statement: "SELECT * FROM t WHERE a = @p1 AND b = @p2", Params: []any{1, 2}}, false},
		{"extra param", QuerySpec{Statement: "SELECT * FROM t WHERE a = 'x'", Params: []any{"x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSpec)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidIdent(t *testing.T) {
	assert.True(t, ValidIdent("xp_statistics"))
	assert.True(t, ValidIdent("_t1"))
	assert.False(t, ValidIdent("1t"))
	assert.False(t, ValidIdent("a.b"))
	assert.False(t, ValidIdent(""))
}
