// Package texture classifies finished heights into named surface layers.
package texture

import (
	"context"
	"fmt"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
)

// Unclassified marks a cell that no mapping covers.
const Unclassified = -1

// LayerMap holds one layer index per cell, row-major, into Layers.
type LayerMap struct {
	Width  int      `json:"width"`
	Length int      `json:"length"`
	Layers []string `json:"layers"`
	Cells  []int    `json:"cells"`
}

// LayerAt returns the layer name of a cell and whether it was classified.
func (m *LayerMap) LayerAt(x, y int) (string, bool) {
	idx := m.Cells[y*m.Width+x]
	if idx == Unclassified {
		return "", false
	}
	return m.Layers[idx], true
}

// Counts returns how many cells each layer received. Unclassified cells are
// counted under the empty name.
func (m *LayerMap) Counts() map[string]int {
	counts := make(map[string]int, len(m.Layers)+1)
	for _, idx := range m.Cells {
		if idx == Unclassified {
			counts[""]++
			continue
		}
		counts[m.Layers[idx]]++
	}
	return counts
}

// Classifier assigns each height to the first mapping, in declaration order,
// whose [MinHeight, MaxHeight) range contains it.
type Classifier struct {
	mappings []config.TextureMapping
	layers   []string
	// layerIndex[i] is the position of mappings[i].Layer in layers.
	layerIndex []int
}

// NewClassifier builds a classifier from t.Mappings followed by every
// biome's layers. Layer names are deduplicated in first-seen order.
func NewClassifier(t config.TextureConfig) *Classifier {
	mappings := t.EffectiveMappings()
	c := &Classifier{mappings: mappings, layerIndex: make([]int, len(mappings))}
	seen := make(map[string]int)
	for i, m := range mappings {
		idx, ok := seen[m.Layer]
		if !ok {
			idx = len(c.layers)
			seen[m.Layer] = idx
			c.layers = append(c.layers, m.Layer)
		}
		c.layerIndex[i] = idx
	}
	return c
}

// Layers returns the distinct layer names in index order.
func (c *Classifier) Layers() []string {
	out := make([]string, len(c.layers))
	copy(out, c.layers)
	return out
}

// Classify returns the layer index for h, or Unclassified.
func (c *Classifier) Classify(h float64) int {
	for i, m := range c.mappings {
		if h >= m.MinHeight && h < m.MaxHeight {
			return c.layerIndex[i]
		}
	}
	return Unclassified
}

// ClassifyGrid classifies every cell of g, one row per worker.
func (c *Classifier) ClassifyGrid(ctx context.Context, g *grid.HeightGrid) (*LayerMap, error) {
	width, length := g.Width(), g.Length()
	out := &LayerMap{
		Width:  width,
		Length: length,
		Layers: c.Layers(),
		Cells:  make([]int, width*length),
	}

	err := grid.ForRows(ctx, length, func(y int) error {
		for x := 0; x < width; x++ {
			out.Cells[y*width+x] = c.Classify(g.At(x, y))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return out, nil
}
