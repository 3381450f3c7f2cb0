// Package density turns sampled (x, y, z) data into a square grid and
// renders it as a log-scaled heatmap. It has no knowledge of where the
// samples came from.
package density

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned when the samples cannot form an N×N grid.
var ErrShape = errors.New("shape error")

// Grid is z reshaped row-major into N×N. Row 0 is the top of the image.
type Grid struct {
	N      int
	Values [][]float64 // [row][col]

	MinX, MaxX float64
	MinY, MaxY float64
}

// NewGrid checks that x, y and z have equal length and that len(z) is a
// non-zero perfect square, then reshapes z. The x and y samples only
// contribute their extent.
func NewGrid(x, y, z []float64) (*Grid, error) {
	if len(x) != len(y) || len(y) != len(z) {
		return nil, fmt.Errorf("%w: x, y, z lengths differ (%d, %d, %d)", ErrShape, len(x), len(y), len(z))
	}
	if len(z) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrShape)
	}

	n := isqrt(len(z))
	if n*n != len(z) {
		return nil, fmt.Errorf("%w: %d samples is not a perfect square", ErrShape, len(z))
	}

	values := make([][]float64, n)
	for r := range values {
		values[r] = append([]float64(nil), z[r*n:(r+1)*n]...)
	}

	g := &Grid{N: n, Values: values}
	g.MinX, g.MaxX = extent(x)
	g.MinY, g.MaxY = extent(y)
	return g, nil
}

// isqrt is floor(sqrt(v)) without float rounding surprises.
func isqrt(v int) int {
	n := int(math.Sqrt(float64(v)))
	for n*n > v {
		n--
	}
	for (n+1)*(n+1) <= v {
		n++
	}
	return n
}

func extent(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
