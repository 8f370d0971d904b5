// Package erosion implements snapshot-based thermal erosion.
package erosion

import (
	"context"
	"fmt"
	"time"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
)

const StageName = "erosion"

// Orthogonal neighbour offsets. opposite[d] is the direction pointing back.
var (
	dirX     = [4]int{1, -1, 0, 0}
	dirY     = [4]int{0, 0, 1, -1}
	opposite = [4]int{1, 0, 3, 2}
)

// Stage runs a fixed number of thermal erosion passes over the grid. Each
// pass reads a snapshot, so the result does not depend on traversal order.
// Cells on the border simply have fewer neighbours; no mass leaves the grid.
type Stage struct {
	cfg    config.ErosionConfig
	logger logging.Interface
}

func NewStage(cfg config.ErosionConfig, logger logging.Interface) *Stage {
	return &Stage{cfg: cfg, logger: logger.With("component", "erosion")}
}

func (s *Stage) Name() string { return StageName }

func (s *Stage) Apply(ctx context.Context, g *grid.HeightGrid) error {
	if s.cfg.Iterations <= 0 {
		return nil
	}

	start := time.Now()
	width, length := g.Width(), g.Length()
	cells := g.Cells()
	snapshot := make([]float64, len(cells))
	// flow[i*4+d] is the mass cell i sends towards direction d.
	flow := make([]float64, len(cells)*4)

	s.logger.Debug("Running thermal erosion",
		"iterations", s.cfg.Iterations,
		"talus", s.cfg.TalusAngle,
		"rate", s.cfg.Rate)

	for iter := 0; iter < s.cfg.Iterations; iter++ {
		copy(snapshot, cells)

		err := grid.ForRows(ctx, length, func(y int) error {
			for x := 0; x < width; x++ {
				s.outflow(snapshot, flow, width, length, x, y)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("erosion stage, iteration %d: %w", iter, err)
		}

		err = grid.ForRows(ctx, length, func(y int) error {
			for x := 0; x < width; x++ {
				i := y*width + x
				h := snapshot[i]
				for d := 0; d < 4; d++ {
					h -= flow[i*4+d]
					nx, ny := x+dirX[d], y+dirY[d]
					if nx < 0 || ny < 0 || nx >= width || ny >= length {
						continue
					}
					h += flow[(ny*width+nx)*4+opposite[d]]
				}
				cells[i] = h
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("erosion stage, iteration %d: %w", iter, err)
		}
	}

	s.logger.Debug("Thermal erosion complete", "duration", time.Since(start))
	return nil
}

// outflow fills the four flow slots of (x, y) from the snapshot. A cell
// sheds Rate*(dmax-T)/2 split across neighbours lower than it by more than
// T, proportionally to each drop.
func (s *Stage) outflow(snapshot, flow []float64, width, length, x, y int) {
	i := y*width + x
	h := snapshot[i]
	talus := s.cfg.TalusAngle

	var drops [4]float64
	var sum, dmax float64
	for d := 0; d < 4; d++ {
		nx, ny := x+dirX[d], y+dirY[d]
		if nx < 0 || ny < 0 || nx >= width || ny >= length {
			continue
		}
		if diff := h - snapshot[ny*width+nx]; diff > talus {
			drops[d] = diff
			sum += diff
			dmax = max(dmax, diff)
		}
	}

	slots := flow[i*4 : i*4+4]
	if sum == 0 {
		clear(slots)
		return
	}
	moved := s.cfg.Rate * (dmax - talus) / 2
	for d := 0; d < 4; d++ {
		slots[d] = moved * drops[d] / sum
	}
}
