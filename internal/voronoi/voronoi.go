// Package voronoi partitions the grid into nearest-point cells and blends a
// height range by distance to the owning point.
package voronoi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/curve"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/random"
)

const (
	StageName  = "voronoi"
	StreamName = "voronoi"
)

var (
	// ErrNoPoints is returned when the custom distribution has no points and
	// random fallback is not allowed.
	ErrNoPoints = errors.New("voronoi: custom distribution without points")
	// ErrDegenerateGrid is returned when distances cannot be normalized.
	ErrDegenerateGrid = errors.New("voronoi: grid has zero extent")
)

// Stage replaces each cell with a height interpolated by the blend curve
// evaluated at 1 - distance/max(width, length).
type Stage struct {
	cfg    config.VoronoiConfig
	source *random.Source
	logger logging.Interface
}

func NewStage(cfg config.VoronoiConfig, source *random.Source, logger logging.Interface) *Stage {
	return &Stage{
		cfg:    cfg,
		source: source,
		logger: logger.With("component", "voronoi"),
	}
}

func (s *Stage) Name() string { return StageName }

// GridCandidates returns the n*n lattice centres, n = ceil(sqrt(k)), in
// row-major order.
func GridCandidates(k, width, length int) []config.Vec2 {
	if k <= 0 {
		return nil
	}
	n := int(math.Ceil(math.Sqrt(float64(k))))
	cw := float64(width) / float64(n)
	cl := float64(length) / float64(n)

	points := make([]config.Vec2, 0, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			points = append(points, config.Vec2{
				X: (float64(i) + 0.5) * cw,
				Y: (float64(j) + 0.5) * cl,
			})
		}
	}
	return points
}

// GridPoints returns the first k lattice candidates.
func GridPoints(k, width, length int) []config.Vec2 {
	candidates := GridCandidates(k, width, length)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// RandomPoints draws k points uniformly in [0,width) x [0,length).
func RandomPoints(k, width, length int, source *random.Source) []config.Vec2 {
	rng := source.Stream(StreamName)
	points := make([]config.Vec2, k)
	for i := range points {
		points[i] = config.Vec2{
			X: rng.Float64() * float64(width),
			Y: rng.Float64() * float64(length),
		}
	}
	return points
}

// Points returns the generator points for a width x length grid according
// to the configured distribution.
func (s *Stage) Points(width, length int) ([]config.Vec2, error) {
	switch s.cfg.Distribution {
	case config.DistributionGrid:
		return GridPoints(s.cfg.CellCount, width, length), nil
	case config.DistributionRandom:
		return RandomPoints(s.cfg.CellCount, width, length, s.source), nil
	case config.DistributionCustom:
		if len(s.cfg.Points) > 0 {
			out := make([]config.Vec2, len(s.cfg.Points))
			copy(out, s.cfg.Points)
			return out, nil
		}
		if !s.cfg.AllowRandomFallback {
			return nil, ErrNoPoints
		}
		s.logger.Warn("Custom distribution has no points, falling back to random",
			"cell_count", s.cfg.CellCount)
		return RandomPoints(s.cfg.CellCount, width, length, s.source), nil
	default:
		return nil, fmt.Errorf("voronoi: unknown distribution %q", s.cfg.Distribution)
	}
}

// Nearest returns the index of the point closest to (x, y) and its
// distance. Ties go to the lower index. The search is linear in the number
// of points; a spatial index would pay off only well beyond
// config.DefaultMaxVoronoiCells.
func Nearest(points []config.Vec2, x, y float64) (int, float64) {
	best, bestSq := -1, math.Inf(1)
	for i, p := range points {
		dx, dy := p.X-x, p.Y-y
		if d := dx*dx + dy*dy; d < bestSq {
			best, bestSq = i, d
		}
	}
	return best, math.Sqrt(bestSq)
}

// Partition returns, for every cell in row-major order, the index of its
// owning point.
func (s *Stage) Partition(ctx context.Context, width, length int) ([]int, []config.Vec2, error) {
	points, err := s.Points(width, length)
	if err != nil {
		return nil, nil, err
	}
	owners := make([]int, width*length)
	err = grid.ForRows(ctx, length, func(y int) error {
		for x := 0; x < width; x++ {
			owners[y*width+x], _ = Nearest(points, float64(x), float64(y))
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return owners, points, nil
}

// Apply writes the blended height into every cell of g.
func (s *Stage) Apply(ctx context.Context, g *grid.HeightGrid) error {
	start := time.Now()
	width, length := g.Width(), g.Length()
	extent := float64(g.MaxDimension())
	if extent == 0 {
		return ErrDegenerateGrid
	}

	points, err := s.Points(width, length)
	if err != nil {
		return fmt.Errorf("voronoi stage: %w", err)
	}
	if len(points) == 0 {
		return fmt.Errorf("voronoi stage: %w", ErrNoPoints)
	}
	s.logger.Debug("Partitioning grid",
		"distribution", s.cfg.Distribution,
		"points", len(points))

	lo, hi := s.cfg.HeightRange.X, s.cfg.HeightRange.Y
	err = grid.ForRows(ctx, length, func(y int) error {
		for x := 0; x < width; x++ {
			_, d := Nearest(points, float64(x), float64(y))
			t := s.cfg.BlendCurve.Evaluate(1 - d/extent)
			g.Set(x, y, curve.Lerp(lo, hi, t))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("voronoi stage: %w", err)
	}

	s.logger.Debug("Voronoi partition applied", "duration", time.Since(start))
	return nil
}
