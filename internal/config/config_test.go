package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/heightfield/internal/curve"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "./heightfield.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, DefaultMaxDimension, cfg.Generation.MaxDimension)
	assert.Equal(t, 4, cfg.Generation.MaxConcurrent)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("READ_TIMEOUT", "3s")
	t.Setenv("LOG_STRUCTURED", "false")
	t.Setenv("MAX_DIMENSION", "513")
	t.Setenv("MAX_EROSION_ITERATIONS", "not-a-number")
	t.Setenv("MAX_CONCURRENT_GENERATIONS", "2")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Logging.Structured)
	assert.Equal(t, 513, cfg.Generation.MaxDimension)
	assert.Equal(t, DefaultMaxErosionIterations, cfg.Generation.MaxErosionIterations)
	assert.Equal(t, 513, cfg.Generation.Limits().MaxDimension)
	assert.Equal(t, 2, cfg.Generation.MaxConcurrent)
}

func TestDefaultGenerationConfig_IsValid(t *testing.T) {
	cfg := DefaultGenerationConfig()
	require.NoError(t, cfg.Validate())

	// Every stage group must also validate on its own when switched on.
	cfg.FractalNoise.Enabled = true
	cfg.Displacement.Enabled = true
	cfg.Voronoi.Enabled = true
	cfg.River.Enabled = true
	cfg.Lake.Enabled = true
	cfg.Trail.Enabled = true
	assert.NoError(t, cfg.Validate())
}

func TestGenerationConfig_Validate(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(c *GenerationConfig)
		expectedFields []string
	}{
		{
			name:           "negative dimensions",
			mutate:         func(c *GenerationConfig) { c.Width = -1; c.Length = 0 },
			expectedFields: []string{"width", "length"},
		},
		{
			name:           "dimension above limit",
			mutate:         func(c *GenerationConfig) { c.Width = DefaultMaxDimension + 1 },
			expectedFields: []string{"width"},
		},
		{
			name:           "zero noise layers",
			mutate:         func(c *GenerationConfig) { c.Noise.Layers = 0 },
			expectedFields: []string{"noise.layers"},
		},
		{
			name: "bad noise scale and growth",
			mutate: func(c *GenerationConfig) {
				c.Noise.BaseScale = 0
				c.Noise.FrequencyGrowth = -2
			},
			expectedFields: []string{"noise.base_scale", "noise.frequency_growth"},
		},
		{
			name: "fractal decay out of range",
			mutate: func(c *GenerationConfig) {
				c.FractalNoise.Enabled = true
				c.FractalNoise.AmplitudeDecay = 1.5
			},
			expectedFields: []string{"fractal_noise.amplitude_decay"},
		},
		{
			name:   "disabled group is not validated",
			mutate: func(c *GenerationConfig) { c.FractalNoise.Layers = 0 },
		},
		{
			name: "custom voronoi without points or fallback",
			mutate: func(c *GenerationConfig) {
				c.Voronoi.Enabled = true
				c.Voronoi.Distribution = DistributionCustom
				c.Voronoi.AllowRandomFallback = false
			},
			expectedFields: []string{"voronoi.points"},
		},
		{
			name: "voronoi without blend curve",
			mutate: func(c *GenerationConfig) {
				c.Voronoi.Enabled = true
				c.Voronoi.BlendCurve = curve.Identity()
			},
			expectedFields: []string{"voronoi.blend_curve"},
		},
		{
			name: "unknown distribution",
			mutate: func(c *GenerationConfig) {
				c.Voronoi.Enabled = true
				c.Voronoi.Distribution = "hex"
			},
			expectedFields: []string{"voronoi.distribution"},
		},
		{
			name:           "erosion iterations above limit",
			mutate:         func(c *GenerationConfig) { c.Erosion.Iterations = DefaultMaxErosionIterations + 1 },
			expectedFields: []string{"erosion.iterations"},
		},
		{
			name: "lake center outside unit square",
			mutate: func(c *GenerationConfig) {
				c.Lake.Enabled = true
				c.Lake.Center = Vec2{X: 1.2, Y: 0.5}
			},
			expectedFields: []string{"lake.center"},
		},
		{
			name: "trail randomness out of range",
			mutate: func(c *GenerationConfig) {
				c.Trail.Enabled = true
				c.Trail.Randomness = 2
			},
			expectedFields: []string{"trail.randomness"},
		},
		{
			name: "inverted texture mapping",
			mutate: func(c *GenerationConfig) {
				c.Textures.Mappings = []TextureMapping{{Layer: "grass", MinHeight: 0.5, MaxHeight: 0.2}}
			},
			expectedFields: []string{"textures.mappings[0]"},
		},
		{
			name: "biome with too many layers",
			mutate: func(c *GenerationConfig) {
				c.Textures.Biomes = []Biome{{
					Name: "tundra",
					Layers: []TextureMapping{
						{Layer: "a", MinHeight: 0, MaxHeight: 0.1},
						{Layer: "b", MinHeight: 0.1, MaxHeight: 0.2},
						{Layer: "c", MinHeight: 0.2, MaxHeight: 0.3},
						{Layer: "d", MinHeight: 0.3, MaxHeight: 0.4},
					},
				}}
			},
			expectedFields: []string{"textures.biomes[0].layers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGenerationConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.expectedFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error should match ErrInvalidConfig")
			assert.ElementsMatch(t, tt.expectedFields, Fields(err))

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Contains(t, err.Error(), fe.Field)
		})
	}
}

func TestLimits_WithDefaults(t *testing.T) {
	l := Limits{MaxDimension: 64}.WithDefaults()
	assert.Equal(t, 64, l.MaxDimension)
	assert.Equal(t, DefaultMaxErosionIterations, l.MaxErosionIterations)
	assert.Equal(t, DefaultMaxVoronoiCells, l.MaxVoronoiCells)
}

func TestTextureConfig_EffectiveMappings(t *testing.T) {
	tc := TextureConfig{
		Mappings: []TextureMapping{{Layer: "water", MinHeight: 0, MaxHeight: 0.2}},
		Biomes: []Biome{
			{Name: "desert", Layers: []TextureMapping{{Layer: "sand", MinHeight: 0.2, MaxHeight: 0.6}}},
			{Name: "alpine", Layers: []TextureMapping{{Layer: "snow", MinHeight: 0.6, MaxHeight: 1}}},
		},
	}

	layers := []string{}
	for _, m := range tc.EffectiveMappings() {
		layers = append(layers, m.Layer)
	}
	assert.Equal(t, []string{"water", "sand", "snow"}, layers)
}

func TestGenerationConfig_Clone(t *testing.T) {
	orig := DefaultGenerationConfig()
	orig.Voronoi.Points = []Vec2{{X: 0.5, Y: 0.5}}
	orig.Textures.Biomes = []Biome{{Name: "alpine", Layers: []TextureMapping{{Layer: "snow", MinHeight: 0.8, MaxHeight: 1}}}}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Voronoi.Points[0].X = 0.1
	clone.Textures.Mappings[0].Layer = "lava"
	clone.Textures.Biomes[0].Layers[0].Layer = "ice"
	clone.Voronoi.BlendCurve.Keys[0].Value = 42

	assert.Equal(t, 0.5, orig.Voronoi.Points[0].X)
	assert.Equal(t, "water", orig.Textures.Mappings[0].Layer)
	assert.Equal(t, "snow", orig.Textures.Biomes[0].Layers[0].Layer)
	assert.NotEqual(t, 42.0, orig.Voronoi.BlendCurve.Keys[0].Value)
}

func TestGenerationConfig_UnmarshalJSONOverPreset(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, cfg GenerationConfig)
	}{
		{
			name: "present mappings replace preset elements",
			body: `{"textures":{"mappings":[{"layer":"high","min_height":0.5,"max_height":2},{"layer":"low","max_height":0.5}]}}`,
			check: func(t *testing.T, cfg GenerationConfig) {
				assert.Equal(t, []TextureMapping{
					{Layer: "high", MinHeight: 0.5, MaxHeight: 2},
					{Layer: "low", MinHeight: 0, MaxHeight: 0.5},
				}, cfg.Textures.Mappings)
			},
		},
		{
			name: "absent mappings keep preset",
			body: `{"textures":{"biomes":[{"name":"alpine","layers":[{"layer":"ice","max_height":1}]}]}}`,
			check: func(t *testing.T, cfg GenerationConfig) {
				assert.Equal(t, DefaultGenerationConfig().Textures.Mappings, cfg.Textures.Mappings)
				require.Len(t, cfg.Textures.Biomes, 1)
				assert.Equal(t, TextureMapping{Layer: "ice", MaxHeight: 1}, cfg.Textures.Biomes[0].Layers[0])
			},
		},
		{
			name: "present points replace preset elements",
			body: `{"voronoi":{"points":[{"y":0.25}]}}`,
			check: func(t *testing.T, cfg GenerationConfig) {
				assert.Equal(t, []Vec2{{X: 0, Y: 0.25}}, cfg.Voronoi.Points)
				assert.Equal(t, DefaultGenerationConfig().Voronoi.CellCount, cfg.Voronoi.CellCount)
			},
		},
		{
			name: "present curve keys replace preset keys",
			body: `{"voronoi":{"blend_curve":{"keys":[{"value":0.5}]}},"fractal_noise":{"curve":{"keys":[]}}}`,
			check: func(t *testing.T, cfg GenerationConfig) {
				preset := DefaultGenerationConfig()
				assert.Equal(t, []curve.Key{{Time: 0, Value: 0.5}}, cfg.Voronoi.BlendCurve.Keys)
				assert.Equal(t, preset.Voronoi.BlendCurve.Interpolation, cfg.Voronoi.BlendCurve.Interpolation)
				assert.Empty(t, cfg.FractalNoise.Curve.Keys)
				assert.Equal(t, preset.FractalNoise.Curve.Interpolation, cfg.FractalNoise.Curve.Interpolation)
			},
		},
		{
			name: "scalars merge over preset",
			body: `{"width":40,"voronoi":{"enabled":true}}`,
			check: func(t *testing.T, cfg GenerationConfig) {
				preset := DefaultGenerationConfig()
				assert.Equal(t, 40, cfg.Width)
				assert.True(t, cfg.Voronoi.Enabled)
				assert.Equal(t, preset.Voronoi.BlendCurve, cfg.Voronoi.BlendCurve)
				assert.Equal(t, preset.Textures, cfg.Textures)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGenerationConfig()
			cfg.Voronoi.Points = []Vec2{{X: 0.9, Y: 0.9}, {X: 0.1, Y: 0.1}}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &cfg))
			tt.check(t, cfg)
		})
	}
}

func TestGenerationConfig_UnmarshalJSONRejectsUnknownNestedFields(t *testing.T) {
	for _, body := range []string{
		`{"textures":{"mapings":[]}}`,
		`{"voronoi":{"pionts":[]}}`,
		`{"voronoi":{"blend_curve":{"kyes":[]}}}`,
	} {
		t.Run(body, func(t *testing.T) {
			cfg := DefaultGenerationConfig().Clone()
			assert.Error(t, json.Unmarshal([]byte(body), &cfg))
		})
	}
}

func TestDecodeGeneration(t *testing.T) {
	t.Run("overlays defaults", func(t *testing.T) {
		doc := `
width: 64
length: 32
seed: 99
noise:
  enabled: true
  layers: 1
  base_scale: 10
erosion:
  enabled: false
textures:
  mappings:
    - layer: all
      min_height: 0
      max_height: 1
`
		cfg, err := DecodeGeneration(strings.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, 64, cfg.Width)
		assert.Equal(t, 32, cfg.Length)
		assert.Equal(t, int64(99), cfg.Seed)
		assert.Equal(t, 1, cfg.Noise.Layers)
		assert.Equal(t, 10.0, cfg.Noise.BaseScale)
		assert.Equal(t, 2.0, cfg.Noise.FrequencyGrowth, "unset fields keep defaults")
		assert.False(t, cfg.Erosion.Enabled)
		require.Len(t, cfg.Textures.Mappings, 1)
		assert.Equal(t, "all", cfg.Textures.Mappings[0].Layer)
		assert.Equal(t, DefaultLimits(), cfg.Limits)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := DecodeGeneration(strings.NewReader("widht: 3\n"))
		assert.Error(t, err)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		cfg, err := DecodeGeneration(strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultGenerationConfig(), cfg)
	})
}

func TestLoadGeneration_RoundTripThroughFile(t *testing.T) {
	cfg := DefaultGenerationConfig()
	cfg.Width = 33
	cfg.Voronoi.Points = []Vec2{{X: 1, Y: 2}}

	var buf bytes.Buffer
	require.NoError(t, EncodeGeneration(&buf, cfg))

	path := filepath.Join(t.TempDir(), "preset.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := LoadGeneration(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadGeneration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	defaults, err := LoadGeneration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultGenerationConfig(), defaults)
}
