package api

import (
	"context"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/history"
	"github.com/VoidMesh/heightfield/internal/pipeline"
)

// Generator runs one configuration synchronously.
type Generator interface {
	Generate(ctx context.Context, cfg config.GenerationConfig) (*pipeline.Result, error)
}

// Previewer accepts superseding preview requests.
type Previewer interface {
	Submit(cfg config.GenerationConfig) uint64
	Latest() (pipeline.Outcome, bool)
	Generation() uint64
}

// RunStore is the run history. A nil RunStore disables the history routes.
type RunStore interface {
	Record(ctx context.Context, res *pipeline.Result) error
	List(ctx context.Context, limit int) ([]history.Run, error)
	Get(ctx context.Context, runID string) (history.Run, error)
	Count(ctx context.Context) (int64, error)
}
