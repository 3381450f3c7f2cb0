package report

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/print"
)

var (
	_ RowSink    = LineSink{}
	_ HeaderSink = (*TableSink)(nil)
	_ Flusher    = (*TableSink)(nil)
	_ HeaderSink = (*LogSink)(nil)
	_ HeaderSink = (*CollectSink)(nil)
)

var cols = []db.Column{{Name: "username"}, {Name: "xp"}}

func TestLineSink(t *testing.T) {
	var buf bytes.Buffer
	s := LineSink{W: &buf}

	require.NoError(t, s.Emit(db.Row{"LordOfWoeHC", int64(100)}))
	require.NoError(t, s.Emit(db.Row{"LordOfWoeHC", int64(150)}))
	assert.Equal(t, "(LordOfWoeHC, 100)\n(LordOfWoeHC, 150)\n", buf.String())
}

func TestTableSink_RendersOnFlush(t *testing.T) {
	var buf bytes.Buffer
	s := NewTableSink(&buf, print.Options{}, false)

	require.NoError(t, s.Header(cols))
	require.NoError(t, s.Emit(db.Row{"LordOfWoeHC", int64(100)}))
	assert.Empty(t, buf.String())

	require.NoError(t, s.Flush())
	assert.Contains(t, buf.String(), "| username    | xp  |")
	assert.Contains(t, buf.String(), "| LordOfWoeHC | 100 |")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.Header(cols))
	require.NoError(t, s.Emit(db.Row{"LordOfWoeHC", int64(100)}))
	assert.Contains(t, buf.String(), "msg=row username=LordOfWoeHC xp=100")
}

func TestCollectSink(t *testing.T) {
	s := &CollectSink{}
	require.NoError(t, s.Header(cols))
	require.NoError(t, s.Emit(db.Row{"a", int64(1)}))

	res := s.Result()
	assert.Equal(t, cols, res.Columns)
	assert.Len(t, res.Data, 1)
}
