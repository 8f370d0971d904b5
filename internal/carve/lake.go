package carve

import (
	"context"
	"fmt"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
)

const LakeStageName = "lake"

// Lake flattens a radial basin towards the water level. The centre cell
// lands exactly on the water level and the weight falls smoothly to zero at
// the radius.
type Lake struct {
	cfg    config.LakeConfig
	logger logging.Interface
}

func NewLake(cfg config.LakeConfig, logger logging.Interface) *Lake {
	return &Lake{cfg: cfg, logger: logger.With("component", "carve", "stage", LakeStageName)}
}

func (l *Lake) Name() string { return LakeStageName }

// Center returns the lake centre in cell coordinates.
func (l *Lake) Center(g *grid.HeightGrid) config.Vec2 {
	return toCells(l.cfg.Center, g)
}

func (l *Lake) Apply(ctx context.Context, g *grid.HeightGrid) error {
	center := l.Center(g)
	level := l.cfg.WaterLevel
	n, err := along(ctx, g, Path{center}, l.cfg.Radius, func(h, w float64) float64 {
		return blend(h, level, w)
	})
	if err != nil {
		return fmt.Errorf("lake stage: %w", err)
	}
	l.logger.Debug("Lake carved", "center_x", center.X, "center_y", center.Y, "radius", l.cfg.Radius, "cells", n)
	return nil
}
