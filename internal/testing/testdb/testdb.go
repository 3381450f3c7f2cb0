// Package testdb builds throwaway SQLite databases for tests.
//
// Each call writes a fresh file under t.TempDir() holding an
// xp_statistics table, so tests exercise real SQL without a server.
//
// Usage:
//
//	path := testdb.New(t, testdb.Example...)
//	conn, err := sqlite.Open(ctx, path)
package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Table is the fixture table name.
const Table = "xp_statistics"

// XP is one fixture row.
type XP struct {
	Username string
	XP       int64
	TS       int64
}

// Example is the canonical fixture: two rows for LordOfWoeHC and one
// for somebody else, in insertion order.
var Example = []XP{
	{Username: "LordOfWoeHC", XP: 100, TS: 1},
	{Username: "LordOfWoeHC", XP: 150, TS: 2},
	{Username: "Other", XP: 5, TS: 3},
}

const schema = `
CREATE TABLE xp_statistics (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT    NOT NULL,
	xp       INTEGER NOT NULL,
	ts       INTEGER NOT NULL
)`

// New creates a database file with the fixture table and the given rows,
// and returns its path.
func New(t testing.TB, rows ...XP) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "xp.db")
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer sqldb.Close()

	ctx := context.Background()
	if _, err := sqldb.ExecContext(ctx, schema); err != nil {
		t.Fatalf("create fixture table: %v", err)
	}
	for _, r := range rows {
		if _, err := sqldb.ExecContext(ctx,
			"INSERT INTO xp_statistics (username, xp, ts) VALUES (?, ?, ?)",
			r.Username, r.XP, r.TS,
		); err != nil {
			t.Fatalf("insert fixture row: %v", err)
		}
	}
	return path
}

// Position is one fixture row of the positional statistics table: skill
// xp gained at a map tile.
type Position struct {
	Username string
	Attack   int64
	Strength int64
	X, Y     int64
}

// Positions is a small walk for LordOfWoeHC over three tiles plus one row
// for somebody else on a shared tile.
var Positions = []Position{
	{Username: "LordOfWoeHC", Attack: 5, Strength: 5, X: 3200, Y: 3200},
	{Username: "LordOfWoeHC", Attack: 1, Strength: 0, X: 3200, Y: 3200},
	{Username: "LordOfWoeHC", Attack: 3, Strength: 0, X: 3202, Y: 3200},
	{Username: "LordOfWoeHC", Attack: 0, Strength: 2, X: 3201, Y: 3201},
	{Username: "Other", Attack: 100, Strength: 100, X: 3200, Y: 3200},
}

const positionSchema = `
CREATE TABLE xp_statistics (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	username    TEXT    NOT NULL,
	xp_datetime TEXT    NOT NULL,
	attack      INTEGER NOT NULL,
	strength    INTEGER NOT NULL,
	x_coord     INTEGER,
	y_coord     INTEGER,
	plane       INTEGER NOT NULL DEFAULT 0,
	world       INTEGER NOT NULL DEFAULT 301
)`

// NewPositions creates a database file whose xp_statistics table carries
// per-skill xp and tile coordinates, and returns its path.
func NewPositions(t testing.TB, rows ...Position) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "positions.db")
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer sqldb.Close()

	ctx := context.Background()
	if _, err := sqldb.ExecContext(ctx, positionSchema); err != nil {
		t.Fatalf("create fixture table: %v", err)
	}
	for _, r := range rows {
		if _, err := sqldb.ExecContext(ctx,
			"INSERT INTO xp_statistics (username, xp_datetime, attack, strength, x_coord, y_coord) VALUES (?, '2020-01-01 12:00:00', ?, ?, ?, ?)",
			r.Username, r.Attack, r.Strength, r.X, r.Y,
		); err != nil {
			t.Fatalf("insert fixture row: %v", err)
		}
	}
	return path
}
