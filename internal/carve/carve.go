// Package carve implements the feature carvers: lakes, rivers and trails.
// Every carver works on a path in cell coordinates and only touches cells
// strictly inside its radius of that path.
package carve

import (
	"context"
	"math"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/curve"
	"github.com/VoidMesh/heightfield/internal/grid"
)

// Path is a polyline in cell coordinates.
type Path []config.Vec2

// Distance returns the shortest distance from (x, y) to the path. A single
// vertex path is a point.
func (p Path) Distance(x, y float64) float64 {
	switch len(p) {
	case 0:
		return math.Inf(1)
	case 1:
		return math.Hypot(x-p[0].X, y-p[0].Y)
	}
	best := math.Inf(1)
	for i := 1; i < len(p); i++ {
		best = math.Min(best, segmentDistance(p[i-1], p[i], x, y))
	}
	return best
}

// Bounds returns the path's bounding box grown by pad.
func (p Path) Bounds(pad float64) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, v := range p {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	return minX - pad, minY - pad, maxX + pad, maxY + pad
}

func segmentDistance(a, b config.Vec2, x, y float64) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	t := curve.Clamp01(((x-a.X)*dx + (y-a.Y)*dy) / lenSq)
	return math.Hypot(x-(a.X+t*dx), y-(a.Y+t*dy))
}

// toCells maps a normalized point onto the grid.
func toCells(p config.Vec2, g *grid.HeightGrid) config.Vec2 {
	return config.Vec2{X: p.X * float64(g.Width()), Y: p.Y * float64(g.Length())}
}

// blend returns (1-w)*h + w*target, exact at w = 0 and w = 1.
func blend(h, target, w float64) float64 {
	return h*(1-w) + target*w
}

// along calls fn for every cell of g closer than radius to path, passing the
// cell height and the falloff weight 1 - smoothstep(d/radius). Rows are
// processed in parallel; fn must not touch other cells.
func along(ctx context.Context, g *grid.HeightGrid, path Path, radius float64, fn func(h, w float64) float64) (int, error) {
	if len(path) == 0 || radius <= 0 {
		return 0, nil
	}
	minX, minY, maxX, maxY := path.Bounds(radius)
	x0 := max(0, int(math.Floor(minX)))
	y0 := max(0, int(math.Floor(minY)))
	x1 := min(g.Width()-1, int(math.Ceil(maxX)))
	y1 := min(g.Length()-1, int(math.Ceil(maxY)))
	if x0 > x1 || y0 > y1 {
		return 0, nil
	}

	touched := make([]int, y1-y0+1)
	err := grid.ForRows(ctx, y1-y0+1, func(row int) error {
		y := y0 + row
		for x := x0; x <= x1; x++ {
			d := path.Distance(float64(x), float64(y))
			if d >= radius {
				continue
			}
			w := 1 - curve.SmoothStep(d/radius)
			g.Set(x, y, fn(g.At(x, y), w))
			touched[row]++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var total int
	for _, n := range touched {
		total += n
	}
	return total, nil
}
