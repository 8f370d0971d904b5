package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/heightfield/internal/grid"
)

// NewGrid allocates a grid and fills it with v.
func NewGrid(t *testing.T, width, length int, v float64) *grid.HeightGrid {
	t.Helper()
	g, err := grid.New(width, length)
	require.NoError(t, err)
	g.Fill(v)
	return g
}

// NewGridFunc allocates a grid whose cells are set from fn(x, y).
func NewGridFunc(t *testing.T, width, length int, fn func(x, y int) float64) *grid.HeightGrid {
	t.Helper()
	g, err := grid.New(width, length)
	require.NoError(t, err)
	for y := 0; y < length; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, fn(x, y))
		}
	}
	return g
}

// AssertGridsEqual fails unless both grids have the same dimensions and
// bit-identical cells.
func AssertGridsEqual(t *testing.T, expected, actual *grid.HeightGrid) {
	t.Helper()
	require.Equal(t, expected.Width(), actual.Width(), "width")
	require.Equal(t, expected.Length(), actual.Length(), "length")
	for i, v := range expected.Cells() {
		if actual.Cells()[i] != v {
			x, y := i%expected.Width(), i/expected.Width()
			require.Failf(t, "cell mismatch", "(%d,%d): expected %v, got %v", x, y, v, actual.Cells()[i])
		}
	}
}

// AssertInUnitRange fails if any cell lies outside [0,1].
func AssertInUnitRange(t *testing.T, g *grid.HeightGrid) {
	t.Helper()
	for i, v := range g.Cells() {
		if v < 0 || v > 1 {
			require.Failf(t, "cell out of range", "cell %d = %v", i, v)
		}
	}
}
