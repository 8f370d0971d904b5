package config

import (
	"math"

	"github.com/hashicorp/go-multierror"
)

// WithDefaults fills zero limits with the built-in values.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDimension <= 0 {
		l.MaxDimension = d.MaxDimension
	}
	if l.MaxErosionIterations <= 0 {
		l.MaxErosionIterations = d.MaxErosionIterations
	}
	if l.MaxVoronoiCells <= 0 {
		l.MaxVoronoiCells = d.MaxVoronoiCells
	}
	return l
}

// Validate checks every enabled stage group and the texture rules. All
// problems are reported together; each is a *FieldError.
func (c GenerationConfig) Validate() error {
	var result *multierror.Error
	add := func(err *FieldError) {
		result = multierror.Append(result, err)
	}

	limits := c.Limits.WithDefaults()

	if c.Width <= 0 {
		add(fieldErr("width", "must be positive, got %d", c.Width))
	} else if c.Width > limits.MaxDimension {
		add(fieldErr("width", "exceeds limit %d, got %d", limits.MaxDimension, c.Width))
	}
	if c.Length <= 0 {
		add(fieldErr("length", "must be positive, got %d", c.Length))
	} else if c.Length > limits.MaxDimension {
		add(fieldErr("length", "exceeds limit %d, got %d", limits.MaxDimension, c.Length))
	}

	if c.Noise.Enabled {
		validateNoise("noise", c.Noise, add)
	}
	if c.FractalNoise.Enabled {
		validateNoise("fractal_noise", c.FractalNoise, add)
	}
	if c.Displacement.Enabled {
		d := c.Displacement
		if !finite(d.Factor) || d.Factor < 0 {
			add(fieldErr("displacement.factor", "must be a non-negative number, got %v", d.Factor))
		}
		if !finite(d.DecayRate) || d.DecayRate < 0 || d.DecayRate > 1 {
			add(fieldErr("displacement.decay_rate", "must be in [0,1], got %v", d.DecayRate))
		}
	}
	if c.Voronoi.Enabled {
		validateVoronoi(c.Voronoi, limits, add)
	}
	if c.Erosion.Enabled {
		e := c.Erosion
		if !finite(e.TalusAngle) || e.TalusAngle < 0 {
			add(fieldErr("erosion.talus_angle", "must be a non-negative number, got %v", e.TalusAngle))
		}
		if e.Iterations < 0 {
			add(fieldErr("erosion.iterations", "must not be negative, got %d", e.Iterations))
		} else if e.Iterations > limits.MaxErosionIterations {
			add(fieldErr("erosion.iterations", "exceeds limit %d, got %d", limits.MaxErosionIterations, e.Iterations))
		}
		if !finite(e.Rate) || e.Rate <= 0 || e.Rate > 1 {
			add(fieldErr("erosion.rate", "must be in (0,1], got %v", e.Rate))
		}
	}
	if c.River.Enabled {
		r := c.River
		validateNormalized("river.start", r.Start, add)
		validateNormalized("river.end", r.End, add)
		if !finite(r.Width) || r.Width <= 0 {
			add(fieldErr("river.width", "must be positive, got %v", r.Width))
		}
		if !finite(r.Level) {
			add(fieldErr("river.level", "must be a finite number"))
		}
		if !finite(r.MeanderAmplitude) || r.MeanderAmplitude < 0 {
			add(fieldErr("river.meander_amplitude", "must be a non-negative number, got %v", r.MeanderAmplitude))
		}
		if !finite(r.MeanderFrequency) || r.MeanderFrequency < 0 {
			add(fieldErr("river.meander_frequency", "must be a non-negative number, got %v", r.MeanderFrequency))
		}
	}
	if c.Lake.Enabled {
		l := c.Lake
		validateNormalized("lake.center", l.Center, add)
		if !finite(l.Radius) || l.Radius <= 0 {
			add(fieldErr("lake.radius", "must be positive, got %v", l.Radius))
		}
		if !finite(l.WaterLevel) {
			add(fieldErr("lake.water_level", "must be a finite number"))
		}
	}
	if c.Trail.Enabled {
		t := c.Trail
		validateNormalized("trail.start", t.Start, add)
		validateNormalized("trail.end", t.End, add)
		if !finite(t.Width) || t.Width <= 0 {
			add(fieldErr("trail.width", "must be positive, got %v", t.Width))
		}
		if !finite(t.Depth) || t.Depth < 0 {
			add(fieldErr("trail.depth", "must be a non-negative number, got %v", t.Depth))
		}
		if !finite(t.Randomness) || t.Randomness < 0 || t.Randomness > 1 {
			add(fieldErr("trail.randomness", "must be in [0,1], got %v", t.Randomness))
		}
	}

	validateTextures(c.Textures, add)

	return result.ErrorOrNil()
}

func validateNoise(prefix string, n NoiseConfig, add func(*FieldError)) {
	if n.Layers < 1 {
		add(fieldErr(prefix+".layers", "must be at least 1, got %d", n.Layers))
	}
	if !finite(n.BaseScale) || n.BaseScale <= 0 {
		add(fieldErr(prefix+".base_scale", "must be positive, got %v", n.BaseScale))
	}
	if !finite(n.AmplitudeDecay) || n.AmplitudeDecay < 0 || n.AmplitudeDecay > 1 {
		add(fieldErr(prefix+".amplitude_decay", "must be in [0,1], got %v", n.AmplitudeDecay))
	}
	if !finite(n.FrequencyGrowth) || n.FrequencyGrowth <= 0 {
		add(fieldErr(prefix+".frequency_growth", "must be positive, got %v", n.FrequencyGrowth))
	}
	if !finite(n.Offset.X) || !finite(n.Offset.Y) {
		add(fieldErr(prefix+".offset", "must be finite"))
	}
	switch n.Basis {
	case "", BasisPerlin, BasisSimplex:
	default:
		add(fieldErr(prefix+".basis", "unknown basis %q", n.Basis))
	}
	if err := n.Curve.Validate(); err != nil {
		add(fieldErr(prefix+".curve", "%v", err))
	}
}

func validateVoronoi(v VoronoiConfig, limits Limits, add func(*FieldError)) {
	switch v.Distribution {
	case DistributionGrid, DistributionRandom:
		if v.CellCount < 1 {
			add(fieldErr("voronoi.cell_count", "must be at least 1, got %d", v.CellCount))
		}
	case DistributionCustom:
		if len(v.Points) == 0 && !v.AllowRandomFallback {
			add(fieldErr("voronoi.points", "custom distribution needs points or allow_random_fallback"))
		}
		if len(v.Points) == 0 && v.AllowRandomFallback && v.CellCount < 1 {
			add(fieldErr("voronoi.cell_count", "random fallback needs at least 1 cell, got %d", v.CellCount))
		}
		for _, p := range v.Points {
			if !finite(p.X) || !finite(p.Y) {
				add(fieldErr("voronoi.points", "points must be finite"))
				break
			}
		}
	default:
		add(fieldErr("voronoi.distribution", "unknown distribution %q", v.Distribution))
	}
	if v.CellCount > limits.MaxVoronoiCells || len(v.Points) > limits.MaxVoronoiCells {
		add(fieldErr("voronoi.cell_count", "exceeds limit %d", limits.MaxVoronoiCells))
	}
	if v.BlendCurve.IsEmpty() {
		add(fieldErr("voronoi.blend_curve", "is required"))
	} else if err := v.BlendCurve.Validate(); err != nil {
		add(fieldErr("voronoi.blend_curve", "%v", err))
	}
	if !finite(v.HeightRange.X) || !finite(v.HeightRange.Y) {
		add(fieldErr("voronoi.height_range", "must be finite"))
	}
}

func validateTextures(t TextureConfig, add func(*FieldError)) {
	check := func(field string, m TextureMapping) {
		if m.Layer == "" {
			add(fieldErr(field+".layer", "must not be empty"))
		}
		if !finite(m.MinHeight) || !finite(m.MaxHeight) || m.MinHeight >= m.MaxHeight {
			add(fieldErr(field, "min_height must be below max_height, got [%v, %v)", m.MinHeight, m.MaxHeight))
		}
	}
	for i, m := range t.Mappings {
		check(indexed("textures.mappings", i), m)
	}
	for i, b := range t.Biomes {
		field := indexed("textures.biomes", i)
		if b.Name == "" {
			add(fieldErr(field+".name", "must not be empty"))
		}
		if len(b.Layers) > MaxBiomeLayers {
			add(fieldErr(field+".layers", "at most %d layers, got %d", MaxBiomeLayers, len(b.Layers)))
		}
		for j, m := range b.Layers {
			check(indexed(field+".layers", j), m)
		}
	}
}

func validateNormalized(field string, v Vec2, add func(*FieldError)) {
	if !finite(v.X) || !finite(v.Y) || v.X < 0 || v.X > 1 || v.Y < 0 || v.Y > 1 {
		add(fieldErr(field, "must be within [0,1]x[0,1], got (%v, %v)", v.X, v.Y))
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
