package carve

import (
	"context"
	"fmt"
	"math"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/random"
)

const (
	TrailStageName  = "trail"
	TrailStreamName = "trail"

	// trailSegment is the target segment length in cells.
	trailSegment = 8
	// trailDamping pulls the random walk back towards the straight line.
	trailDamping = 0.5
)

// Trail digs a shallow channel along a randomly perturbed path. The
// perturbation comes from the run's "trail" stream, so a fixed seed always
// gives the same trail.
type Trail struct {
	cfg    config.TrailConfig
	source *random.Source
	logger logging.Interface
}

func NewTrail(cfg config.TrailConfig, source *random.Source, logger logging.Interface) *Trail {
	return &Trail{
		cfg:    cfg,
		source: source,
		logger: logger.With("component", "carve", "stage", TrailStageName),
	}
}

func (t *Trail) Name() string { return TrailStageName }

// Path returns the trail polyline for g. The end points are fixed; interior
// vertices are offset perpendicular to the line by a damped random walk
// whose step is Randomness times the segment length.
func (t *Trail) Path(g *grid.HeightGrid) Path {
	start, end := toCells(t.cfg.Start, g), toCells(t.cfg.End, g)
	dx, dy := end.X-start.X, end.Y-start.Y
	span := math.Hypot(dx, dy)
	if span == 0 {
		return Path{start}
	}

	segments := max(2, int(span/trailSegment))
	step := t.cfg.Randomness * span / float64(segments)
	px, py := -dy/span, dx/span
	rng := t.source.Stream(TrailStreamName)

	path := make(Path, segments+1)
	path[0], path[segments] = start, end
	var walk float64
	for i := 1; i < segments; i++ {
		walk = walk*trailDamping + (rng.Float64()*2-1)*step
		f := float64(i) / float64(segments)
		path[i] = config.Vec2{
			X: start.X + dx*f + px*walk,
			Y: start.Y + dy*f + py*walk,
		}
	}
	return path
}

func (t *Trail) Apply(ctx context.Context, g *grid.HeightGrid) error {
	path := t.Path(g)
	depth := t.cfg.Depth
	n, err := along(ctx, g, path, t.cfg.Width/2, func(h, w float64) float64 {
		return math.Max(0, h-depth*w)
	})
	if err != nil {
		return fmt.Errorf("trail stage: %w", err)
	}
	t.logger.Debug("Trail carved", "vertices", len(path), "width", t.cfg.Width, "cells", n)
	return nil
}
