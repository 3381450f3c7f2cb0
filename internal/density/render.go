package density

import (
	"errors"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoData is returned when no cell survives log normalization.
var ErrNoData = errors.New("no positive values to plot")

type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length

	// Offset is added to every z before taking log10; cells that are
	// still <= 0 are left transparent.
	Offset float64

	// Colors is the palette size.
	Colors int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 16 * vg.Centimeter
	}
	if o.Height <= 0 {
		o.Height = 12 * vg.Centimeter
	}
	if o.Offset == 0 {
		o.Offset = 10
	}
	if o.Colors <= 0 {
		o.Colors = 256
	}
	return o
}

// Render draws g as a heatmap with a colour bar and writes it to w as PNG.
func Render(w io.Writer, g *Grid, opts Options) error {
	opts = opts.withDefaults()

	lg := newLogGrid(g, opts.Offset)
	if math.IsInf(lg.min, 0) {
		return ErrNoData
	}

	cmap := moreland.BlackBody()
	cmap.SetMin(lg.min)
	cmap.SetMax(lg.max)

	hm := plotter.NewHeatMap(lg, cmap.Palette(opts.Colors))
	hm.Min, hm.Max = lg.min, lg.max
	hm.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(hm)

	bar := plot.New()
	bar.HideX()
	bar.Y.Padding = 0
	bar.Y.Label.Text = "log10(z)"
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true, Colors: opts.Colors})

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	barWidth := opts.Width / 6

	p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	bar.Draw(draw.Crop(dc, opts.Width-barWidth, 0, 0, 0))

	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}

// logGrid adapts Grid to plotter.GridXYZ, flipping rows so row 0 lands
// at the top and mapping z to log10(z+offset).
type logGrid struct {
	g        *Grid
	offset   float64
	dx, dy   float64
	min, max float64
}

func newLogGrid(g *Grid, offset float64) *logGrid {
	lg := &logGrid{
		g:      g,
		offset: offset,
		dx:     cellSize(g.MinX, g.MaxX, g.N),
		dy:     cellSize(g.MinY, g.MaxY, g.N),
		min:    math.Inf(1),
		max:    math.Inf(-1),
	}
	for c := 0; c < g.N; c++ {
		for r := 0; r < g.N; r++ {
			v := lg.Z(c, r)
			if math.IsNaN(v) {
				continue
			}
			lg.min = math.Min(lg.min, v)
			lg.max = math.Max(lg.max, v)
		}
	}
	if lg.min == lg.max {
		lg.max = lg.min + 1
	}
	return lg
}

func cellSize(lo, hi float64, n int) float64 {
	if d := (hi - lo) / float64(n); d > 0 {
		return d
	}
	return 1
}

func (lg *logGrid) Dims() (c, r int) { return lg.g.N, lg.g.N }

func (lg *logGrid) Z(c, r int) float64 {
	v := lg.g.Values[lg.g.N-1-r][c] + lg.offset
	if !(v > 0) || math.IsInf(v, 1) {
		return math.NaN()
	}
	return math.Log10(v)
}

func (lg *logGrid) X(c int) float64 { return lg.g.MinX + (float64(c)+0.5)*lg.dx }

func (lg *logGrid) Y(r int) float64 { return lg.g.MinY + (float64(r)+0.5)*lg.dy }

func (lg *logGrid) Min() float64 { return lg.min }

func (lg *logGrid) Max() float64 { return lg.max }
