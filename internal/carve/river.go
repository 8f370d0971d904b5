package carve

import (
	"context"
	"fmt"
	"math"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
)

const RiverStageName = "river"

// River lowers a meandering channel towards the river level. The path is
// the straight line Start to End with a sine offset perpendicular to it;
// cells already below the level are left alone.
type River struct {
	cfg    config.RiverConfig
	logger logging.Interface
}

func NewRiver(cfg config.RiverConfig, logger logging.Interface) *River {
	return &River{cfg: cfg, logger: logger.With("component", "carve", "stage", RiverStageName)}
}

func (r *River) Name() string { return RiverStageName }

// Path returns the river polyline for g, one vertex per cell of length.
func (r *River) Path(g *grid.HeightGrid) Path {
	start, end := toCells(r.cfg.Start, g), toCells(r.cfg.End, g)
	dx, dy := end.X-start.X, end.Y-start.Y
	span := math.Hypot(dx, dy)
	if span == 0 {
		return Path{start}
	}

	amplitude := r.cfg.MeanderAmplitude * float64(g.MaxDimension())
	px, py := -dy/span, dx/span
	count := max(2, int(math.Ceil(span))+1)

	path := make(Path, count)
	for i := range path {
		t := float64(i) / float64(count-1)
		off := amplitude * math.Sin(2*math.Pi*r.cfg.MeanderFrequency*t)
		path[i] = config.Vec2{
			X: start.X + dx*t + px*off,
			Y: start.Y + dy*t + py*off,
		}
	}
	return path
}

func (r *River) Apply(ctx context.Context, g *grid.HeightGrid) error {
	path := r.Path(g)
	level := r.cfg.Level
	n, err := along(ctx, g, path, r.cfg.Width/2, func(h, w float64) float64 {
		if h <= level {
			return h
		}
		return blend(h, level, w)
	})
	if err != nil {
		return fmt.Errorf("river stage: %w", err)
	}
	r.logger.Debug("River carved", "vertices", len(path), "width", r.cfg.Width, "cells", n)
	return nil
}
