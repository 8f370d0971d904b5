package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/random"
	"github.com/VoidMesh/heightfield/internal/testutil"
)

// allStages returns a small config with every stage enabled.
func allStages() config.GenerationConfig {
	cfg := config.DefaultGenerationConfig()
	cfg.Width, cfg.Length = 48, 40
	cfg.Noise.Enabled = true
	cfg.FractalNoise.Enabled = true
	cfg.Displacement.Enabled = true
	cfg.Voronoi.Enabled = true
	cfg.Erosion.Enabled = true
	cfg.Erosion.Iterations = 5
	cfg.River.Enabled = true
	cfg.Lake.Enabled = true
	cfg.Lake.Radius = 8
	cfg.Trail.Enabled = true
	return cfg
}

// noStages returns a valid config with every stage disabled and no
// texture rules.
func noStages() config.GenerationConfig {
	cfg := config.DefaultGenerationConfig()
	cfg.Width, cfg.Length = 16, 12
	cfg.Noise.Enabled = false
	cfg.FractalNoise.Enabled = false
	cfg.Erosion.Enabled = false
	cfg.Textures = config.TextureConfig{}
	return cfg
}

func stageNames(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return names
}

func TestBuild_Order(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	stages, err := Build(allStages(), random.NewSource(1), testutil.NewMockLogger())
	require.NoError(t, err)
	assert.Equal(t, Order, stageNames(stages))
}

func TestBuild_OnlyEnabled(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	tests := []struct {
		name     string
		mutate   func(c *config.GenerationConfig)
		expected []string
	}{
		{
			name:     "nothing enabled",
			mutate:   func(c *config.GenerationConfig) {},
			expected: []string{},
		},
		{
			name: "carvers keep their relative order",
			mutate: func(c *config.GenerationConfig) {
				c.Trail.Enabled = true
				c.River.Enabled = true
			},
			expected: []string{"river", "trail"},
		},
		{
			name: "fractal without base noise",
			mutate: func(c *config.GenerationConfig) {
				c.FractalNoise.Enabled = true
				c.Erosion.Enabled = true
			},
			expected: []string{"fractal-noise", "erosion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := noStages()
			tt.mutate(&cfg)
			stages, err := Build(cfg, random.NewSource(1), testutil.NewMockLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stageNames(stages))
		})
	}
}

func TestExecute_RunsStagesInOrder(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := NewMockStage(ctrl)
	second := NewMockStage(ctrl)
	first.EXPECT().Name().Return("first").AnyTimes()
	second.EXPECT().Name().Return("second").AnyTimes()

	g := testutil.NewGrid(t, 4, 4, 0)
	gomock.InOrder(
		first.EXPECT().Apply(gomock.Any(), g).DoAndReturn(func(_ context.Context, g *grid.HeightGrid) error {
			g.Fill(0.25)
			return nil
		}),
		second.EXPECT().Apply(gomock.Any(), g).DoAndReturn(func(_ context.Context, g *grid.HeightGrid) error {
			assert.Equal(t, 0.25, g.At(0, 0), "second stage sees the first stage's output")
			g.Add(0, 0, 0.5)
			return nil
		}),
	)

	err := Execute(context.Background(), []Stage{first, second}, g, testutil.NewMockLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.75, g.At(0, 0))
}

func TestExecute_ClampsAfterEachStage(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := NewMockStage(ctrl)
	second := NewMockStage(ctrl)
	first.EXPECT().Name().Return("first").AnyTimes()
	second.EXPECT().Name().Return("second").AnyTimes()

	g := testutil.NewGrid(t, 2, 2, 0.5)
	gomock.InOrder(
		first.EXPECT().Apply(gomock.Any(), g).DoAndReturn(func(_ context.Context, g *grid.HeightGrid) error {
			g.Add(0, 0, 0.9)
			g.Add(1, 1, -0.8)
			return nil
		}),
		second.EXPECT().Apply(gomock.Any(), g).DoAndReturn(func(_ context.Context, g *grid.HeightGrid) error {
			assert.Equal(t, []float64{1, 0.5, 0.5, 0}, g.Cells())
			g.Add(0, 1, 0.75)
			return nil
		}),
	)

	require.NoError(t, Execute(context.Background(), []Stage{first, second}, g, testutil.NewMockLogger(), nil))
	assert.Equal(t, []float64{1, 0.5, 1, 0}, g.Cells())
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("boom")
	failing := NewMockStage(ctrl)
	never := NewMockStage(ctrl)
	failing.EXPECT().Name().Return("failing").AnyTimes()
	never.EXPECT().Name().Return("never").AnyTimes()
	failing.EXPECT().Apply(gomock.Any(), gomock.Any()).Return(boom)
	never.EXPECT().Apply(gomock.Any(), gomock.Any()).Times(0)

	err := Execute(context.Background(), []Stage{failing, never}, testutil.NewGrid(t, 2, 2, 0), testutil.NewMockLogger(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage failing")
}

func TestExecute_CancelledBeforeStage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stage := NewMockStage(ctrl)
	stage.EXPECT().Apply(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Execute(ctx, []Stage{stage}, testutil.NewGrid(t, 2, 2, 0), testutil.NewMockLogger(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestState(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "classifying", StateClassifying.String())
	assert.Equal(t, "unknown", State(42).String())

	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateGenerating.Terminal())

	tests := []struct {
		from, to State
		allowed  bool
	}{
		{StateIdle, StateConfiguring, true},
		{StateDone, StateConfiguring, true},
		{StateFailed, StateConfiguring, true},
		{StateConfiguring, StateGenerating, true},
		{StateGenerating, StateClassifying, true},
		{StateClassifying, StateDone, true},
		{StateConfiguring, StateFailed, true},
		{StateGenerating, StateFailed, true},
		{StateIdle, StateGenerating, false},
		{StateGenerating, StateDone, false},
		{StateDone, StateFailed, false},
		{StateIdle, StateFailed, false},
		{StateClassifying, StateIdle, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, canTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
