package displacement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/random"
	"github.com/VoidMesh/heightfield/internal/testutil"
)

func defaultCfg() config.DisplacementConfig {
	return config.DisplacementConfig{Enabled: true, Factor: 0.5, DecayRate: 0.55}
}

func run(t *testing.T, seed int64, width, length int, cfg config.DisplacementConfig) *grid.HeightGrid {
	t.Helper()
	g := testutil.NewGrid(t, width, length, 0)
	stage := NewStage(cfg, random.NewSource(seed), testutil.NewMockLogger())
	require.NoError(t, stage.Apply(context.Background(), g))
	return g
}

func TestBufferSize(t *testing.T) {
	tests := []struct {
		maxDim   int
		expected int
	}{
		{1, 2},
		{2, 2},
		{3, 3},
		{4, 5},
		{5, 5},
		{6, 9},
		{64, 65},
		{65, 65},
		{66, 129},
		{257, 257},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, BufferSize(tt.maxDim), "maxDim %d", tt.maxDim)
	}
}

func TestStage_Deterministic(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	a := run(t, 42, 33, 33, defaultCfg())
	b := run(t, 42, 33, 33, defaultCfg())
	testutil.AssertGridsEqual(t, a, b)
}

func TestStage_DifferentSeedsDiffer(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	a := run(t, 1, 33, 33, defaultCfg())
	b := run(t, 2, 33, 33, defaultCfg())
	assert.NotEqual(t, a.Cells(), b.Cells())
}

func TestStage_PreservesDimensionsAndRange(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	tests := []struct {
		name          string
		width, length int
	}{
		{"power of two plus one", 17, 17},
		{"power of two", 64, 64},
		{"wide", 50, 7},
		{"tall", 3, 40},
		{"single cell", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultCfg()
			cfg.Factor = 1
			cfg.DecayRate = 1
			g := run(t, 7, tt.width, tt.length, cfg)
			assert.Equal(t, tt.width, g.Width())
			assert.Equal(t, tt.length, g.Length())
			testutil.AssertInUnitRange(t, g)
		})
	}
}

func TestStage_ReplacesExistingHeights(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	fresh := run(t, 9, 20, 20, defaultCfg())

	g := testutil.NewGrid(t, 20, 20, 5)
	stage := NewStage(defaultCfg(), random.NewSource(9), testutil.NewMockLogger())
	require.NoError(t, stage.Apply(context.Background(), g))

	testutil.AssertGridsEqual(t, fresh, g)
}

func TestStage_ZeroFactorInterpolatesCorners(t *testing.T) {
	buf, err := generate(context.Background(), 9, 0, 0.5, random.NewSource(3).Stream(StreamName))
	require.NoError(t, err)

	corners := []float64{buf[0], buf[8], buf[8*9], buf[8*9+8]}
	lo, hi := corners[0], corners[0]
	for _, c := range corners {
		lo = min(lo, c)
		hi = max(hi, c)
	}

	for i, v := range buf {
		assert.GreaterOrEqual(t, v, lo-1e-12, "cell %d", i)
		assert.LessOrEqual(t, v, hi+1e-12, "cell %d", i)
	}
	assert.InDelta(t, (corners[0]+corners[1]+corners[2]+corners[3])/4, buf[4*9+4], 1e-12)
}

func TestStage_Cancelled(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := testutil.NewGrid(t, 16, 16, 0.25)
	stage := NewStage(defaultCfg(), random.NewSource(1), testutil.NewMockLogger())
	err := stage.Apply(ctx, g)
	assert.ErrorIs(t, err, context.Canceled)

	for _, v := range g.Cells() {
		assert.Equal(t, 0.25, v)
	}
}
