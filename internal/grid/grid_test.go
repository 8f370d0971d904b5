package grid

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		width, length int
		expectErr     bool
	}{
		{name: "square grid", width: 16, length: 16},
		{name: "rectangular grid", width: 7, length: 3},
		{name: "single cell", width: 1, length: 1},
		{name: "zero width", width: 0, length: 4, expectErr: true},
		{name: "negative length", width: 4, length: -1, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.width, tt.length)
			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDimensions)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.width, g.Width())
			assert.Equal(t, tt.length, g.Length())
			assert.Len(t, g.Cells(), tt.width*tt.length)
			for _, v := range g.Cells() {
				assert.Zero(t, v)
			}
		})
	}
}

func TestHeightGrid_Accessors(t *testing.T) {
	g, err := New(4, 3)
	require.NoError(t, err)

	g.Set(3, 2, 0.5)
	g.Add(3, 2, 0.25)

	assert.Equal(t, 0.75, g.At(3, 2))
	assert.Equal(t, 11, g.Index(3, 2))
	assert.Equal(t, 0.75, g.Cells()[11])
	assert.Equal(t, 4, g.MaxDimension())
}

func TestHeightGrid_CloneIsIndependent(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)
	g.Fill(0.3)

	clone := g.Clone()
	clone.Set(0, 0, 1)

	assert.Equal(t, 0.3, g.At(0, 0))
	assert.Equal(t, 1.0, clone.At(0, 0))
}

func TestHeightGrid_StatsAndClamp(t *testing.T) {
	g, err := New(2, 2)
	require.NoError(t, err)
	copy(g.Cells(), []float64{-0.5, 0.5, 1.5, 0.5})

	s := g.Stats()
	assert.Equal(t, -0.5, s.Min)
	assert.Equal(t, 1.5, s.Max)
	assert.InDelta(t, 2.0, s.Sum, 1e-12)
	assert.InDelta(t, 0.5, s.Mean, 1e-12)

	g.Clamp(0, 1)
	assert.Equal(t, []float64{0, 0.5, 1, 0.5}, g.Cells())
}

func TestHeightGrid_Rows(t *testing.T) {
	g, _ := New(3, 2)
	copy(g.Cells(), []float64{1, 2, 3, 4, 5, 6})

	rows := g.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []float64{1, 2, 3}, rows[0])
	assert.Equal(t, []float64{4, 5, 6}, rows[1])

	rows[0][0] = 99
	assert.Equal(t, 1.0, g.At(0, 0))
}

func TestForRows(t *testing.T) {
	t.Run("visits every row once", func(t *testing.T) {
		g, _ := New(8, 37)
		err := ForRows(context.Background(), g.Length(), func(y int) error {
			for x := 0; x < g.Width(); x++ {
				g.Add(x, y, 1)
			}
			return nil
		})
		require.NoError(t, err)
		for _, v := range g.Cells() {
			assert.Equal(t, 1.0, v)
		}
	})

	t.Run("zero rows is a no-op", func(t *testing.T) {
		called := false
		require.NoError(t, ForRows(context.Background(), 0, func(int) error {
			called = true
			return nil
		}))
		assert.False(t, called)
	})

	t.Run("propagates row error", func(t *testing.T) {
		boom := errors.New("boom")
		err := ForRows(context.Background(), 100, func(y int) error {
			if y == 10 {
				return boom
			}
			return nil
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var visited atomic.Int32
		err := ForRows(ctx, 50, func(int) error {
			visited.Add(1)
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, visited.Load())
	})
}
