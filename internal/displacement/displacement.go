// Package displacement implements diamond-square midpoint displacement.
package displacement

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/curve"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/random"
)

const (
	// StageName identifies the stage in logs, metrics and results.
	StageName = "displacement"
	// StreamName is the random stream consumed by the stage.
	StreamName = "displacement"
)

// Stage replaces the grid with a diamond-square height field.
type Stage struct {
	cfg    config.DisplacementConfig
	source *random.Source
	logger logging.Interface
}

func NewStage(cfg config.DisplacementConfig, source *random.Source, logger logging.Interface) *Stage {
	return &Stage{
		cfg:    cfg,
		source: source,
		logger: logger.With("component", "displacement"),
	}
}

func (s *Stage) Name() string { return StageName }

// BufferSize returns the side of the square work buffer used for a grid
// whose larger dimension is maxDim: the smallest 2^k+1 not below maxDim.
func BufferSize(maxDim int) int {
	n := 1
	for n+1 < maxDim {
		n *= 2
	}
	return n + 1
}

// Apply overwrites every cell of g. The buffer is generated at BufferSize
// and its top-left width x length window is copied into g.
func (s *Stage) Apply(ctx context.Context, g *grid.HeightGrid) error {
	start := time.Now()
	size := BufferSize(g.MaxDimension())
	rng := s.source.Stream(StreamName)

	s.logger.Debug("Running midpoint displacement",
		"buffer", size,
		"factor", s.cfg.Factor,
		"decay", s.cfg.DecayRate)

	buf, err := generate(ctx, size, s.cfg.Factor, s.cfg.DecayRate, rng)
	if err != nil {
		return fmt.Errorf("displacement stage: %w", err)
	}

	width := g.Width()
	for y := 0; y < g.Length(); y++ {
		row := buf[y*size : y*size+width]
		for x, v := range row {
			g.Set(x, y, curve.Clamp01(v))
		}
	}

	s.logger.Debug("Midpoint displacement complete", "duration", time.Since(start))
	return nil
}

// generate runs diamond-square on a size x size buffer, size = 2^k+1.
// Random draws happen in a fixed traversal order so the result depends only
// on the stream state.
func generate(ctx context.Context, size int, factor, decay float64, rng *rand.Rand) ([]float64, error) {
	buf := make([]float64, size*size)
	n := size - 1
	at := func(x, y int) float64 { return buf[y*size+x] }
	set := func(x, y int, v float64) { buf[y*size+x] = v }
	offset := func(amp float64) float64 { return (rng.Float64()*2 - 1) * amp }

	set(0, 0, rng.Float64())
	set(n, 0, rng.Float64())
	set(0, n, rng.Float64())
	set(n, n, rng.Float64())

	for step, depth := n, 0; step > 1; step, depth = step/2, depth+1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		half := step / 2
		amp := factor * math.Pow(decay, float64(depth))

		// Diamond step: square centres.
		for y := half; y < n; y += step {
			for x := half; x < n; x += step {
				avg := (at(x-half, y-half) + at(x+half, y-half) + at(x-half, y+half) + at(x+half, y+half)) / 4
				set(x, y, avg+offset(amp))
			}
		}

		// Square step: edge midpoints, averaging only in-bounds neighbours.
		for y := 0; y <= n; y += half {
			for x := (y + half) % step; x <= n; x += step {
				var sum float64
				var count int
				if x-half >= 0 {
					sum += at(x-half, y)
					count++
				}
				if x+half <= n {
					sum += at(x+half, y)
					count++
				}
				if y-half >= 0 {
					sum += at(x, y-half)
					count++
				}
				if y+half <= n {
					sum += at(x, y+half)
					count++
				}
				set(x, y, sum/float64(count)+offset(amp))
			}
		}
	}

	return buf, nil
}
