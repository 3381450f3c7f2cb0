package density

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(n int) (x, y, z []float64) {
	for i := 0; i < n; i++ {
		x = append(x, float64(i%10))
		y = append(y, float64(i/10))
		z = append(z, float64(i))
	}
	return x, y, z
}

func TestNewGrid_Square(t *testing.T) {
	x, y, z := samples(100)

	g, err := NewGrid(x, y, z)
	require.NoError(t, err)
	assert.Equal(t, 10, g.N)
	require.Len(t, g.Values, 10)
	for _, row := range g.Values {
		assert.Len(t, row, 10)
	}
	assert.Equal(t, 0.0, g.Values[0][0])
	assert.Equal(t, 19.0, g.Values[1][9], "row-major reshape")
	assert.Equal(t, 99.0, g.Values[9][9])
	assert.Equal(t, 0.0, g.MinX)
	assert.Equal(t, 9.0, g.MaxX)
	assert.Equal(t, 9.0, g.MaxY)
}

func TestNewGrid_CopiesInput(t *testing.T) {
	x, y, z := samples(4)
	g, err := NewGrid(x, y, z)
	require.NoError(t, err)

	z[0] = 42
	assert.Equal(t, 0.0, g.Values[0][0])
}

func TestNewGrid_ShapeErrors(t *testing.T) {
	x99, y99, z99 := samples(99)
	x, y, z := samples(100)

	tests := []struct {
		name    string
		x, y, z []float64
	}{
		{"not a square", x99, y99, z99},
		{"empty", nil, nil, nil},
		{"x shorter", x[:99], y, z},
		{"z longer", x, y, append(z, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.x, tt.y, tt.z)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrShape)
		})
	}
}

func TestIsqrt(t *testing.T) {
	for _, v := range []int{0, 1, 2, 3, 4, 99, 100, 101, 1 << 40, (1<<26 + 1) * (1<<26 + 1)} {
		n := isqrt(v)
		assert.LessOrEqual(t, n*n, v)
		assert.Greater(t, (n+1)*(n+1), v)
	}
}

func TestLoad(t *testing.T) {
	in := `# x y z
0 0 1.5
1 0   2

0 1 3 # trailing comment
1	1	4e0
`
	x, y, z, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, x)
	assert.Equal(t, []float64{0, 0, 1, 1}, y)
	assert.Equal(t, []float64{1.5, 2, 3, 4}, z)
}

func TestLoad_Errors(t *testing.T) {
	_, _, _, err := Load(strings.NewReader("1 2\n"))
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorContains(t, err, "line 1")

	_, _, _, err = Load(strings.NewReader("1 2 3\n1 two 3\n"))
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorContains(t, err, "line 2")
}

func TestLogGrid(t *testing.T) {
	g, err := NewGrid([]float64{0, 1, 0, 1}, []float64{0, 0, 1, 1}, []float64{0, 90, -10, -20})
	require.NoError(t, err)

	lg := newLogGrid(g, 10)
	c, r := lg.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)

	// r=1 is the top row of the image, i.e. Values[0]
	assert.InDelta(t, 1.0, lg.Z(0, 1), 1e-12)
	assert.InDelta(t, 2.0, lg.Z(1, 1), 1e-12)
	assert.True(t, math.IsNaN(lg.Z(0, 0)), "z+offset == 0 is masked")
	assert.True(t, math.IsNaN(lg.Z(1, 0)), "z+offset < 0 is masked")
	assert.Equal(t, 1.0, lg.Min())
	assert.Equal(t, 2.0, lg.Max())

	assert.InDelta(t, 0.25, lg.X(0), 1e-12)
	assert.InDelta(t, 0.75, lg.Y(1), 1e-12)
}

func TestRender_PNG(t *testing.T) {
	x, y, z := samples(100)
	g, err := NewGrid(x, y, z)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, g, Options{Title: "xp density"}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestRender_ConstantField(t *testing.T) {
	g, err := NewGrid([]float64{0, 1, 0, 1}, []float64{0, 0, 1, 1}, []float64{5, 5, 5, 5})
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, Render(&buf, g, Options{}))
}

func TestRender_AllMasked(t *testing.T) {
	g, err := NewGrid([]float64{0}, []float64{0}, []float64{-50})
	require.NoError(t, err)

	err = Render(&bytes.Buffer{}, g, Options{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRender_InfiniteSamplesMasked(t *testing.T) {
	x, y, z, err := Load(strings.NewReader("0 0 1\n1 0 inf\n0 1 -Inf\n+Inf 1 4\n"))
	require.NoError(t, err)

	g, err := NewGrid(x, y, z)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.MaxX, "infinite coordinates do not stretch the extent")

	lg := newLogGrid(g, 10)
	assert.True(t, math.IsNaN(lg.Z(1, 1)), "+Inf is masked")
	assert.True(t, math.IsNaN(lg.Z(0, 0)), "-Inf is masked")
	assert.False(t, math.IsInf(lg.Max(), 0))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, g, Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestRender_NaNCellsMasked(t *testing.T) {
	nan := math.NaN()
	g, err := NewGrid([]float64{0, 1, 0, 1}, []float64{0, 0, 1, 1}, []float64{nan, 3, nan, nan})
	require.NoError(t, err)

	lg := newLogGrid(g, 10)
	assert.True(t, math.IsNaN(lg.Z(0, 1)))
	assert.InDelta(t, math.Log10(13), lg.Z(1, 1), 1e-12)
	assert.NoError(t, Render(&bytes.Buffer{}, g, Options{}))
}
