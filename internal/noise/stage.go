// Package noise implements the layered coherent noise stages.
package noise

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/curve"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
)

// Stage names used for the two configured noise layers.
const (
	BaseStageName    = "noise"
	FractalStageName = "fractal-noise"
)

// Stage adds layered noise to every cell of a grid.
type Stage struct {
	name   string
	cfg    config.NoiseConfig
	source Source
	logger logging.Interface
}

// NewStage validates cfg and builds the stage. seed feeds the noise
// permutation tables.
func NewStage(name string, cfg config.NoiseConfig, seed int64, logger logging.Interface) (*Stage, error) {
	// Field names follow the config keys, e.g. fractal_noise.layers.
	field := strings.ReplaceAll(name, "-", "_")
	if cfg.Layers < 1 {
		return nil, &config.FieldError{Field: field + ".layers", Reason: fmt.Sprintf("must be at least 1, got %d", cfg.Layers)}
	}
	if cfg.BaseScale <= 0 {
		return nil, &config.FieldError{Field: field + ".base_scale", Reason: fmt.Sprintf("must be positive, got %v", cfg.BaseScale)}
	}
	if cfg.FrequencyGrowth <= 0 {
		return nil, &config.FieldError{Field: field + ".frequency_growth", Reason: fmt.Sprintf("must be positive, got %v", cfg.FrequencyGrowth)}
	}

	source, err := NewSource(cfg.Basis, seed)
	if err != nil {
		return nil, &config.FieldError{Field: field + ".basis", Reason: err.Error()}
	}

	return NewStageWithSource(name, cfg, source, logger), nil
}

// NewStageWithSource builds a stage around an existing noise function. cfg
// is assumed valid.
func NewStageWithSource(name string, cfg config.NoiseConfig, source Source, logger logging.Interface) *Stage {
	return &Stage{
		name:   name,
		cfg:    cfg,
		source: source,
		logger: logger.With("component", "noise", "stage", name),
	}
}

// Name implements the pipeline stage contract.
func (s *Stage) Name() string { return s.name }

// Sample returns the layered value for normalized coordinates, clamped to
// [0,1] and shaped by the configured curve.
func (s *Stage) Sample(nx, ny float64) float64 {
	var (
		sum       float64
		frequency = 1.0
		amplitude = 1.0
	)
	for l := 0; l < s.cfg.Layers; l++ {
		sx := nx*s.cfg.BaseScale*frequency + s.cfg.Offset.X
		sy := ny*s.cfg.BaseScale*frequency + s.cfg.Offset.Y
		sum += s.source.Eval(sx, sy) * amplitude
		frequency *= s.cfg.FrequencyGrowth
		amplitude *= s.cfg.AmplitudeDecay
	}
	return s.cfg.Curve.Evaluate(curve.Clamp01(sum))
}

// Apply adds the layered noise into g. Rows are evaluated in parallel.
func (s *Stage) Apply(ctx context.Context, g *grid.HeightGrid) error {
	start := time.Now()
	width, length := g.Width(), g.Length()
	s.logger.Debug("Applying layered noise", "layers", s.cfg.Layers, "scale", s.cfg.BaseScale, "seed", s.source.Seed())

	err := grid.ForRows(ctx, length, func(y int) error {
		ny := float64(y) / float64(length)
		for x := 0; x < width; x++ {
			g.Add(x, y, s.Sample(float64(x)/float64(width), ny))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("noise stage %s: %w", s.name, err)
	}

	s.logger.Debug("Layered noise applied", "duration", time.Since(start))
	return nil
}
