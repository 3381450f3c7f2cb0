package print

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/xpstat/internal/db"
)

func sampleRows() *db.Rows {
	return &db.Rows{
		Columns: []db.Column{{Name: "id"}, {Name: "username"}, {Name: "xp"}},
		Data: []db.Row{
			{int64(1), "LordOfWoeHC", int64(100)},
			{int64(2), "LordOfWoeHC", nil},
		},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, sampleRows(), Options{})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "+----+-------------+------+", lines[0])
	assert.Equal(t, "| id | username    | xp   |", lines[1])
	assert.Equal(t, "+====+=============+======+", lines[2])
	assert.Equal(t, "| 1  | LordOfWoeHC | 100  |", lines[3])
	assert.Equal(t, "| 2  | LordOfWoeHC | NULL |", lines[4])
}

func TestRenderTable_Truncates(t *testing.T) {
	rows := &db.Rows{
		Columns: []db.Column{{Name: "v"}},
		Data:    []db.Row{{strings.Repeat("x", 20)}},
	}
	var buf bytes.Buffer
	RenderTable(&buf, rows, Options{MaxWidth: 8})
	assert.Contains(t, buf.String(), "| xxxxx... |")
}

func TestRenderTable_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, &db.Rows{}, Options{})
	assert.Equal(t, "(no columns)\n", buf.String())
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2020, 5, 17, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, "NULL", FormatCell(nil))
	assert.Equal(t, "42", FormatCell(int64(42)))
	assert.Equal(t, "1.5", FormatCell(1.5))
	assert.Equal(t, "true", FormatCell(true))
	assert.Equal(t, "2020-05-17T12:30:00Z", FormatCell(ts))
	assert.Equal(t, "abc", FormatCell([]byte("abc")))
	assert.Equal(t, "<blob 2 bytes>", FormatCell([]byte{0x00, 0x01}))
}

func TestRenderTuple(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTuple(&buf, db.Row{int64(1), "LordOfWoeHC", int64(100)}))
	assert.Equal(t, "(1, LordOfWoeHC, 100)\n", buf.String())
}

func TestRenderStyled(t *testing.T) {
	var buf bytes.Buffer
	RenderStyled(&buf, sampleRows(), Options{})

	out := buf.String()
	assert.Contains(t, out, "username")
	assert.Contains(t, out, "LordOfWoeHC")
	assert.Contains(t, out, "NULL")
}
