// Package grid holds the height field shared by every generation stage and
// the row-parallel iteration helper the per-cell stages use.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions is returned when a grid is requested with a
// non-positive width or length.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// HeightGrid stores normalized elevations in row-major order. Dimensions are
// fixed at construction.
type HeightGrid struct {
	width  int
	length int
	cells  []float64
}

// Stats summarizes the heights of a grid.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Sum  float64 `json:"sum"`
}

// New allocates a zero-filled grid.
func New(width, length int) (*HeightGrid, error) {
	if width <= 0 || length <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, length)
	}
	return &HeightGrid{
		width:  width,
		length: length,
		cells:  make([]float64, width*length),
	}, nil
}

// Width returns the number of columns (x axis).
func (g *HeightGrid) Width() int { return g.width }

// Length returns the number of rows (y axis).
func (g *HeightGrid) Length() int { return g.length }

// Cells exposes the backing slice so stages can read/write values directly.
func (g *HeightGrid) Cells() []float64 { return g.cells }

// Index returns the linear slice index for coordinates (x, y).
func (g *HeightGrid) Index(x, y int) int { return y*g.width + x }

// At returns the height at (x, y).
func (g *HeightGrid) At(x, y int) float64 { return g.cells[y*g.width+x] }

// Set replaces the height at (x, y).
func (g *HeightGrid) Set(x, y int, v float64) { g.cells[y*g.width+x] = v }

// Add adds v to the height at (x, y).
func (g *HeightGrid) Add(x, y int, v float64) { g.cells[y*g.width+x] += v }

// MaxDimension returns max(width, length).
func (g *HeightGrid) MaxDimension() int {
	if g.width > g.length {
		return g.width
	}
	return g.length
}

// Clone returns a deep copy.
func (g *HeightGrid) Clone() *HeightGrid {
	cells := make([]float64, len(g.cells))
	copy(cells, g.cells)
	return &HeightGrid{width: g.width, length: g.length, cells: cells}
}

// Fill sets every cell to v.
func (g *HeightGrid) Fill(v float64) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Clamp limits every cell to [lo, hi].
func (g *HeightGrid) Clamp(lo, hi float64) {
	for i, v := range g.cells {
		g.cells[i] = math.Max(lo, math.Min(hi, v))
	}
}

// Stats computes min, max, mean and sum of all cells.
func (g *HeightGrid) Stats() Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range g.cells {
		s.Sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = s.Sum / float64(len(g.cells))
	return s
}

// Rows returns the grid as a slice of rows, each a fresh copy. Used by
// serializers that want a 2D shape.
func (g *HeightGrid) Rows() [][]float64 {
	rows := make([][]float64, g.length)
	for y := range rows {
		row := make([]float64, g.width)
		copy(row, g.cells[y*g.width:(y+1)*g.width])
		rows[y] = row
	}
	return rows
}
