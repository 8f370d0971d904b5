package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/grid"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/metrics"
	"github.com/VoidMesh/heightfield/internal/random"
	"github.com/VoidMesh/heightfield/internal/texture"
)

// BuildFunc turns a validated config into its ordered stage list.
type BuildFunc func(cfg config.GenerationConfig, src *random.Source, logger logging.Interface) ([]Stage, error)

// StateObserver is told about every state transition of every run.
type StateObserver func(runID string, state State)

// Result is the complete output of one successful run.
type Result struct {
	RunID     string            `json:"run_id"`
	Seed      int64             `json:"seed"`
	Width     int               `json:"width"`
	Length    int               `json:"length"`
	Grid      *grid.HeightGrid  `json:"-"`
	Layers    *texture.LayerMap `json:"-"`
	Stages    []string          `json:"stages"`
	Stats     grid.Stats        `json:"stats"`
	Duration  time.Duration     `json:"duration"`
	CreatedAt time.Time         `json:"created_at"`
}

// Generator runs configurations through the pipeline. It holds no per-run
// state, so concurrent Generate calls are safe and each owns its grid.
type Generator struct {
	logger   logging.Interface
	recorder *metrics.Recorder
	limits   config.Limits
	build    BuildFunc
	observer StateObserver
	last     atomic.Int32
}

// NewGenerator creates a generator. limits replace whatever limits an
// incoming config carries; recorder may be nil.
func NewGenerator(logger logging.Interface, recorder *metrics.Recorder, limits config.Limits) *Generator {
	return &Generator{
		logger:   logger.With("component", "pipeline"),
		recorder: recorder,
		limits:   limits.WithDefaults(),
		build:    Build,
	}
}

// SetObserver installs fn as the state observer. Must be called before the
// first Generate.
func (g *Generator) SetObserver(fn StateObserver) { g.observer = fn }

// State returns the most recent state any run of this generator entered.
func (g *Generator) State() State { return State(g.last.Load()) }

// Limits returns the limits applied to incoming configs.
func (g *Generator) Limits() config.Limits { return g.limits }

type run struct {
	id     string
	state  State
	gen    *Generator
	logger logging.Interface
}

// enter moves the run to state to. A move canTransition forbids is logged
// and leaves the run where it is.
func (r *run) enter(to State) {
	if !canTransition(r.state, to) {
		r.logger.Error("Invalid state transition", "from", r.state, "to", to)
		return
	}
	r.state = to
	r.gen.last.Store(int32(to))
	if r.gen.observer != nil {
		r.gen.observer(r.id, to)
	}
}

// Generate validates cfg, runs every enabled stage in order on a fresh grid
// and classifies the result. Invalid configs fail before any stage runs and
// the returned error names the offending fields (see config.Fields). Partial
// results are never returned.
func (g *Generator) Generate(ctx context.Context, cfg config.GenerationConfig) (*Result, error) {
	start := time.Now()
	r := &run{id: uuid.NewString(), state: StateIdle, gen: g}
	r.logger = g.logger.With("run_id", r.id)

	r.enter(StateConfiguring)
	cfg.Limits = g.limits
	if err := cfg.Validate(); err != nil {
		return nil, g.fail(r, fmt.Errorf("configure: %w", err))
	}
	src := random.NewSource(cfg.Seed)
	stages, err := g.build(cfg, src, r.logger)
	if err != nil {
		return nil, g.fail(r, fmt.Errorf("configure: %w", err))
	}

	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	r.logger.Info("Generation started",
		"width", cfg.Width,
		"length", cfg.Length,
		"seed", cfg.Seed,
		"stages", names)

	r.enter(StateGenerating)
	hg, err := grid.New(cfg.Width, cfg.Length)
	if err != nil {
		return nil, g.fail(r, err)
	}
	if err := Execute(ctx, stages, hg, r.logger, g.recorder); err != nil {
		return nil, g.fail(r, err)
	}

	r.enter(StateClassifying)
	layers, err := texture.NewClassifier(cfg.Textures).ClassifyGrid(ctx, hg)
	if err != nil {
		return nil, g.fail(r, err)
	}

	result := &Result{
		RunID:     r.id,
		Seed:      cfg.Seed,
		Width:     cfg.Width,
		Length:    cfg.Length,
		Grid:      hg,
		Layers:    layers,
		Stages:    names,
		Stats:     hg.Stats(),
		Duration:  time.Since(start),
		CreatedAt: start.UTC(),
	}
	r.enter(StateDone)
	g.recorder.RunFinished(metrics.OutcomeDone)

	r.logger.Info("Generation complete",
		"duration", result.Duration,
		"min", result.Stats.Min,
		"max", result.Stats.Max,
		"mean", result.Stats.Mean)
	return result, nil
}

func (g *Generator) fail(r *run, err error) error {
	r.enter(StateFailed)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		g.recorder.RunFinished(metrics.OutcomeCancelled)
		r.logger.Debug("Generation cancelled", "error", err)
		return err
	}
	g.recorder.RunFinished(metrics.OutcomeFailed)
	r.logger.Error("Generation failed", "error", err)
	return err
}
