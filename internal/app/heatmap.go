package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bgunnarsson/xpstat/internal/config"
	"github.com/bgunnarsson/xpstat/internal/db"
	"github.com/bgunnarsson/xpstat/internal/density"
	"github.com/bgunnarsson/xpstat/internal/report"
)

const (
	xColumn = "x_coord"
	yColumn = "y_coord"

	// maxHeatmapSide bounds the tile grid; a larger span means the walk
	// crossed the map and the picture would be mostly empty anyway.
	maxHeatmapSide = 2048
)

// Columns of the statistics table that are not skill xp.
var nonSkillColumns = map[string]bool{
	"id":          true,
	"username":    true,
	"xp_datetime": true,
	"ts":          true,
	xColumn:       true,
	yColumn:       true,
	"plane":       true,
	"world":       true,
}

// RenderHeatmap reads x y z samples from inPath and writes a density PNG
// to outPath. It never touches the database.
func RenderHeatmap(inPath, outPath string, opts density.Options) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	x, y, z, err := density.Load(in)
	if err != nil {
		return err
	}
	return writeHeatmap(outPath, x, y, z, opts)
}

// RenderUserHeatmap runs the username report and draws the xp gained on
// every map tile as a density PNG.
func RenderUserHeatmap(ctx context.Context, cfg *config.Config, outPath string, dopts density.Options, opts Options) error {
	opts = opts.withDefaults()
	if err := cfg.RequireUsername(); err != nil {
		return db.Wrap(db.ErrInvalidConfig, err)
	}

	var rows *db.Rows
	err := WithConnection(ctx, cfg.Connection(), opts.Logger, func(conn db.DB) error {
		spec, err := report.UserFilter(conn.Dialect(), cfg.Report.TableName(), cfg.Report.Username)
		if err != nil {
			return err
		}
		sink := &report.CollectSink{}
		r := report.New(opts.Logger, report.WithQueryTimeout(cfg.Report.QueryTimeout))
		if _, err := r.Run(ctx, conn, spec, sink); err != nil {
			return err
		}
		rows = sink.Result()
		return nil
	})
	if err != nil {
		return err
	}

	x, y, z, err := HeatmapSamples(rows)
	if err != nil {
		return err
	}
	opts.Logger.Debug("heatmap samples", slog.Int("rows", len(rows.Data)), slog.Int("cells", len(z)))
	return writeHeatmap(outPath, x, y, z, dopts)
}

// HeatmapSamples sums the skill columns of every row per (x_coord, y_coord)
// tile and lays the sums out as an N×N grid over the visited span, highest
// y first. Tiles nobody stood on are NaN so they render transparent. Rows
// without a position are skipped.
func HeatmapSamples(rows *db.Rows) (x, y, z []float64, err error) {
	xi, yi := -1, -1
	for i, c := range rows.Columns {
		switch strings.ToLower(c.Name) {
		case xColumn:
			xi = i
		case yColumn:
			yi = i
		}
	}
	if xi < 0 || yi < 0 {
		return nil, nil, nil, fmt.Errorf("%w: result has no %s/%s columns", density.ErrShape, xColumn, yColumn)
	}

	type tile struct{ x, y int64 }
	sums := make(map[tile]float64)
	var minX, maxX, minY, maxY int64

	for _, row := range rows.Data {
		if xi >= len(row) || yi >= len(row) {
			continue
		}
		tx, okX := toTile(row[xi])
		ty, okY := toTile(row[yi])
		if !okX || !okY {
			continue
		}

		var xp float64
		for i, v := range row {
			if i >= len(rows.Columns) || nonSkillColumns[strings.ToLower(rows.Columns[i].Name)] {
				continue
			}
			if f, ok := toFloat(v); ok {
				xp += f
			}
		}

		if len(sums) == 0 {
			minX, maxX, minY, maxY = tx, tx, ty, ty
		}
		minX, maxX = min(minX, tx), max(maxX, tx)
		minY, maxY = min(minY, ty), max(maxY, ty)
		sums[tile{tx, ty}] += xp
	}
	if len(sums) == 0 {
		return nil, nil, nil, density.ErrNoData
	}

	n := max(maxX-minX, maxY-minY) + 1
	if n > maxHeatmapSide {
		return nil, nil, nil, fmt.Errorf("%w: tile span %d exceeds %d", density.ErrShape, n, maxHeatmapSide)
	}

	size := int(n * n)
	x, y, z = make([]float64, 0, size), make([]float64, 0, size), make([]float64, 0, size)
	for r := int64(0); r < n; r++ {
		ty := minY + n - 1 - r
		for c := int64(0); c < n; c++ {
			tx := minX + c
			v, ok := sums[tile{tx, ty}]
			if !ok {
				v = math.NaN()
			}
			x = append(x, float64(tx))
			y = append(y, float64(ty))
			z = append(z, v)
		}
	}
	return x, y, z, nil
}

func writeHeatmap(outPath string, x, y, z []float64, opts density.Options) error {
	grid, err := density.NewGrid(x, y, z)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := density.Render(out, grid, opts); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func toTile(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// toFloat accepts the numeric shapes the drivers hand back, including
// DECIMAL columns delivered as text.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case int16:
		f = float64(t)
	case int8:
		f = float64(t)
	case int:
		f = float64(t)
	case uint64:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint8:
		f = float64(t)
	case float64:
		f = t
	case float32:
		f = float64(t)
	case []byte:
		p, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
