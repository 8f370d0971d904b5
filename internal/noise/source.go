package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"

	"github.com/VoidMesh/heightfield/internal/config"
)

// Perlin parameters: alpha=2, beta=2 as in the terrain service; a single
// iteration because layering is done by the stage itself.
const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = int32(1)
)

// Source is a deterministic 2D coherent noise function returning values in
// [0,1]. Implementations must be safe for concurrent reads.
type Source interface {
	Eval(x, y float64) float64
	Seed() int64
}

// NewSource builds the noise function for basis. An empty basis means perlin.
func NewSource(basis config.NoiseBasis, seed int64) (Source, error) {
	switch basis {
	case "", config.BasisPerlin:
		return &perlinSource{noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed), seed: seed}, nil
	case config.BasisSimplex:
		return &simplexSource{noise: opensimplex.NewNormalized(seed), seed: seed}, nil
	default:
		return nil, fmt.Errorf("unknown noise basis %q", basis)
	}
}

type perlinSource struct {
	noise *perlin.Perlin
	seed  int64
}

// Eval maps Noise2D from [-1,1] to [0,1].
func (p *perlinSource) Eval(x, y float64) float64 {
	return (p.noise.Noise2D(x, y) + 1.0) / 2.0
}

func (p *perlinSource) Seed() int64 { return p.seed }

type simplexSource struct {
	noise opensimplex.Noise
	seed  int64
}

func (s *simplexSource) Eval(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}

func (s *simplexSource) Seed() int64 { return s.seed }
