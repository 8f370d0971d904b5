// Package pipeline sequences the generation stages over one grid and
// classifies the result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/VoidMesh/heightfield/internal/carve"
	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/displacement"
	"github.com/VoidMesh/heightfield/internal/erosion"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/metrics"
	"github.com/VoidMesh/heightfield/internal/noise"
	"github.com/VoidMesh/heightfield/internal/random"
	"github.com/VoidMesh/heightfield/internal/voronoi"
)

//go:generate mockgen -source=stage.go -destination=mock_stage_test.go -package=pipeline

// Stage is one height modifier. Apply owns g for the duration of the call
// and must not keep a reference to it afterwards or change its dimensions.
type Stage interface {
	Name() string
	Apply(ctx context.Context, g *grid.HeightGrid) error
}

// Order lists every stage name in execution order.
var Order = []string{
	noise.BaseStageName,
	noise.FractalStageName,
	displacement.StageName,
	voronoi.StageName,
	erosion.StageName,
	carve.RiverStageName,
	carve.LakeStageName,
	carve.TrailStageName,
}

// Build returns the enabled stages of cfg in execution order. cfg must
// already be valid.
func Build(cfg config.GenerationConfig, src *random.Source, logger logging.Interface) ([]Stage, error) {
	var stages []Stage

	if cfg.Noise.Enabled {
		s, err := noise.NewStage(noise.BaseStageName, cfg.Noise, src.DerivedSeed(noise.BaseStageName), logger)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	if cfg.FractalNoise.Enabled {
		s, err := noise.NewStage(noise.FractalStageName, cfg.FractalNoise, src.DerivedSeed(noise.FractalStageName), logger)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	if cfg.Displacement.Enabled {
		stages = append(stages, displacement.NewStage(cfg.Displacement, src, logger))
	}
	if cfg.Voronoi.Enabled {
		stages = append(stages, voronoi.NewStage(cfg.Voronoi, src, logger))
	}
	if cfg.Erosion.Enabled {
		stages = append(stages, erosion.NewStage(cfg.Erosion, logger))
	}
	if cfg.River.Enabled {
		stages = append(stages, carve.NewRiver(cfg.River, logger))
	}
	if cfg.Lake.Enabled {
		stages = append(stages, carve.NewLake(cfg.Lake, logger))
	}
	if cfg.Trail.Enabled {
		stages = append(stages, carve.NewTrail(cfg.Trail, src, logger))
	}

	return stages, nil
}

// Execute applies stages to g one at a time and clamps g to [0,1] after
// each, so additive stages never hand an out of range grid to the next stage
// or to classification. The first failure stops the run; a cancelled context
// is checked between stages.
func Execute(ctx context.Context, stages []Stage, g *grid.HeightGrid, logger logging.Interface, recorder *metrics.Recorder) error {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := s.Apply(ctx, g); err != nil {
			return fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		g.Clamp(0, 1)
		elapsed := time.Since(start)
		recorder.ObserveStage(s.Name(), elapsed)

		logger.Debug("Stage applied", "stage", s.Name(), "duration", elapsed)
	}
	return nil
}
