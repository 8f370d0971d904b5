package config

import (
	"slices"

	"github.com/VoidMesh/heightfield/internal/curve"
)

const (
	DefaultMaxDimension         = 4097
	DefaultMaxErosionIterations = 5000
	DefaultMaxVoronoiCells      = 4096
)

// Vec2 is a 2D vector. Depending on the field it holds either normalized
// [0,1] coordinates or cell coordinates.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NoiseBasis selects the coherent noise function sampled by a noise layer.
type NoiseBasis string

const (
	BasisPerlin  NoiseBasis = "perlin"
	BasisSimplex NoiseBasis = "simplex"
)

// Distribution selects how Voronoi generator points are placed.
type Distribution string

const (
	DistributionGrid   Distribution = "grid"
	DistributionRandom Distribution = "random"
	DistributionCustom Distribution = "custom"
)

// GenerationConfig is the complete, read-only input of one generation run.
type GenerationConfig struct {
	Width  int   `json:"width" yaml:"width"`
	Length int   `json:"length" yaml:"length"`
	Seed   int64 `json:"seed" yaml:"seed"`

	Noise        NoiseConfig        `json:"noise" yaml:"noise"`
	FractalNoise NoiseConfig        `json:"fractal_noise" yaml:"fractal_noise"`
	Displacement DisplacementConfig `json:"displacement" yaml:"displacement"`
	Voronoi      VoronoiConfig      `json:"voronoi" yaml:"voronoi"`
	Erosion      ErosionConfig      `json:"erosion" yaml:"erosion"`
	River        RiverConfig        `json:"river" yaml:"river"`
	Lake         LakeConfig         `json:"lake" yaml:"lake"`
	Trail        TrailConfig        `json:"trail" yaml:"trail"`
	Textures     TextureConfig      `json:"textures" yaml:"textures"`

	Limits Limits `json:"-" yaml:"-"`
}

// NoiseConfig configures one layered noise stage.
type NoiseConfig struct {
	Enabled         bool        `json:"enabled" yaml:"enabled"`
	Layers          int         `json:"layers" yaml:"layers"`
	BaseScale       float64     `json:"base_scale" yaml:"base_scale"`
	AmplitudeDecay  float64     `json:"amplitude_decay" yaml:"amplitude_decay"`
	FrequencyGrowth float64     `json:"frequency_growth" yaml:"frequency_growth"`
	Offset          Vec2        `json:"offset" yaml:"offset"`
	Basis           NoiseBasis  `json:"basis,omitempty" yaml:"basis,omitempty"`
	Curve           curve.Curve `json:"curve" yaml:"curve"`
}

// DisplacementConfig configures midpoint displacement.
type DisplacementConfig struct {
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	Factor    float64 `json:"factor" yaml:"factor"`
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`
}

// VoronoiConfig configures the biome partitioner.
type VoronoiConfig struct {
	Enabled             bool         `json:"enabled" yaml:"enabled"`
	CellCount           int          `json:"cell_count" yaml:"cell_count"`
	Distribution        Distribution `json:"distribution" yaml:"distribution"`
	Points              []Vec2       `json:"points,omitempty" yaml:"points,omitempty"`
	AllowRandomFallback bool         `json:"allow_random_fallback" yaml:"allow_random_fallback"`
	BlendCurve          curve.Curve  `json:"blend_curve" yaml:"blend_curve"`
	HeightRange         Vec2         `json:"height_range" yaml:"height_range"`
}

// ErosionConfig configures thermal erosion. TalusAngle is the largest stable
// height difference between orthogonal neighbours, in normalized height units.
type ErosionConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	TalusAngle float64 `json:"talus_angle" yaml:"talus_angle"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	Rate       float64 `json:"rate" yaml:"rate"`
}

// RiverConfig configures the river carver. Start and End are normalized;
// Width is in cells; MeanderAmplitude is relative to max(width, length).
type RiverConfig struct {
	Enabled          bool    `json:"enabled" yaml:"enabled"`
	Start            Vec2    `json:"start" yaml:"start"`
	End              Vec2    `json:"end" yaml:"end"`
	Width            float64 `json:"width" yaml:"width"`
	Level            float64 `json:"level" yaml:"level"`
	MeanderAmplitude float64 `json:"meander_amplitude" yaml:"meander_amplitude"`
	MeanderFrequency float64 `json:"meander_frequency" yaml:"meander_frequency"`
}

// LakeConfig configures the lake carver. Center is normalized, Radius in cells.
type LakeConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Center     Vec2    `json:"center" yaml:"center"`
	Radius     float64 `json:"radius" yaml:"radius"`
	WaterLevel float64 `json:"water_level" yaml:"water_level"`
}

// TrailConfig configures the trail carver. Start and End are normalized;
// Width is in cells.
type TrailConfig struct {
	Enabled    bool    `json:"enabled" yaml:"enabled"`
	Start      Vec2    `json:"start" yaml:"start"`
	End        Vec2    `json:"end" yaml:"end"`
	Width      float64 `json:"width" yaml:"width"`
	Depth      float64 `json:"depth" yaml:"depth"`
	Randomness float64 `json:"randomness" yaml:"randomness"`
}

// TextureMapping assigns Layer to heights in [MinHeight, MaxHeight).
type TextureMapping struct {
	Layer     string  `json:"layer" yaml:"layer"`
	MinHeight float64 `json:"min_height" yaml:"min_height"`
	MaxHeight float64 `json:"max_height" yaml:"max_height"`
}

// MaxBiomeLayers is the number of texture thresholds a biome may carry.
const MaxBiomeLayers = 3

// Biome is a named group of texture thresholds.
type Biome struct {
	Name   string           `json:"name" yaml:"name"`
	Layers []TextureMapping `json:"layers" yaml:"layers"`
}

// TextureConfig lists the classification rules. Mappings are checked first,
// then every biome's layers, each in declaration order.
type TextureConfig struct {
	Mappings []TextureMapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Biomes   []Biome          `json:"biomes,omitempty" yaml:"biomes,omitempty"`
}

// Limits bound the work a single run may request.
type Limits struct {
	MaxDimension         int
	MaxErosionIterations int
	MaxVoronoiCells      int
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDimension:         DefaultMaxDimension,
		MaxErosionIterations: DefaultMaxErosionIterations,
		MaxVoronoiCells:      DefaultMaxVoronoiCells,
	}
}

// EffectiveMappings returns Mappings followed by each biome's layers.
func (t TextureConfig) EffectiveMappings() []TextureMapping {
	out := make([]TextureMapping, 0, len(t.Mappings)+len(t.Biomes)*MaxBiomeLayers)
	out = append(out, t.Mappings...)
	for _, b := range t.Biomes {
		out = append(out, b.Layers...)
	}
	return out
}

// DefaultNoise returns the base noise preset.
func DefaultNoise() NoiseConfig {
	return NoiseConfig{
		Enabled:         true,
		Layers:          4,
		BaseScale:       4,
		AmplitudeDecay:  0.5,
		FrequencyGrowth: 2,
		Basis:           BasisPerlin,
		Curve:           curve.Identity(),
	}
}

// DefaultFractalNoise returns the fractal noise preset: more layers and an
// ease-in curve so it mostly adds detail to high ground.
func DefaultFractalNoise() NoiseConfig {
	return NoiseConfig{
		Enabled:         false,
		Layers:          6,
		BaseScale:       12,
		AmplitudeDecay:  0.5,
		FrequencyGrowth: 2,
		Offset:          Vec2{X: 100, Y: 100},
		Basis:           BasisSimplex,
		Curve:           curve.EaseIn(),
	}
}

// DefaultGenerationConfig returns a preset with base noise, erosion and
// classification enabled and every other stage configured but disabled.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Width:        257,
		Length:       257,
		Seed:         1337,
		Noise:        DefaultNoise(),
		FractalNoise: DefaultFractalNoise(),
		Displacement: DisplacementConfig{
			Factor:    0.5,
			DecayRate: 0.55,
		},
		Voronoi: VoronoiConfig{
			CellCount:           16,
			Distribution:        DistributionRandom,
			AllowRandomFallback: true,
			BlendCurve:          curve.SmoothRamp(),
			HeightRange:         Vec2{X: 0, Y: 1},
		},
		Erosion: ErosionConfig{
			Enabled:    true,
			TalusAngle: 0.01,
			Iterations: 20,
			Rate:       0.5,
		},
		River: RiverConfig{
			Start:            Vec2{X: 0, Y: 0.5},
			End:              Vec2{X: 1, Y: 0.5},
			Width:            6,
			Level:            0.2,
			MeanderAmplitude: 0.05,
			MeanderFrequency: 2,
		},
		Lake: LakeConfig{
			Center:     Vec2{X: 0.5, Y: 0.5},
			Radius:     24,
			WaterLevel: 0.25,
		},
		Trail: TrailConfig{
			Start:      Vec2{X: 0.1, Y: 0.1},
			End:        Vec2{X: 0.9, Y: 0.9},
			Width:      3,
			Depth:      0.03,
			Randomness: 0.3,
		},
		Textures: TextureConfig{
			Mappings: []TextureMapping{
				{Layer: "water", MinHeight: 0, MaxHeight: 0.3},
				{Layer: "sand", MinHeight: 0.3, MaxHeight: 0.35},
				{Layer: "grass", MinHeight: 0.35, MaxHeight: 0.6},
				{Layer: "rock", MinHeight: 0.6, MaxHeight: 0.85},
				{Layer: "snow", MinHeight: 0.85, MaxHeight: 1.0001},
			},
		},
		Limits: DefaultLimits(),
	}
}

// EnabledStages reports whether any height stage is turned on.
func (c GenerationConfig) EnabledStages() bool {
	return c.Noise.Enabled || c.FractalNoise.Enabled || c.Displacement.Enabled ||
		c.Voronoi.Enabled || c.Erosion.Enabled || c.River.Enabled ||
		c.Lake.Enabled || c.Trail.Enabled
}

// Clone returns a deep copy of c. Decoding into the copy leaves c untouched.
func (c GenerationConfig) Clone() GenerationConfig {
	out := c
	out.Noise.Curve = cloneCurve(c.Noise.Curve)
	out.FractalNoise.Curve = cloneCurve(c.FractalNoise.Curve)
	out.Voronoi.BlendCurve = cloneCurve(c.Voronoi.BlendCurve)
	out.Voronoi.Points = slices.Clone(c.Voronoi.Points)
	out.Textures.Mappings = slices.Clone(c.Textures.Mappings)
	if c.Textures.Biomes != nil {
		out.Textures.Biomes = make([]Biome, len(c.Textures.Biomes))
		for i, b := range c.Textures.Biomes {
			out.Textures.Biomes[i] = Biome{Name: b.Name, Layers: slices.Clone(b.Layers)}
		}
	}
	return out
}

func cloneCurve(c curve.Curve) curve.Curve {
	c.Keys = slices.Clone(c.Keys)
	return c
}
