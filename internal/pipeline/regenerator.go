package pipeline

import (
	"context"
	"sync"

	"github.com/VoidMesh/heightfield/internal/config"
	"github.com/VoidMesh/heightfield/internal/logging"
	"github.com/VoidMesh/heightfield/internal/metrics"
)

// Outcome is the published result of one submission.
type Outcome struct {
	Generation uint64
	Result     *Result
	Err        error
}

// Regenerator serializes regeneration requests with supersession: each
// Submit cancels the run in flight, and only the newest submission's
// outcome is ever published. Older outcomes are dropped even if they
// finish after the newer one started.
type Regenerator struct {
	gen      *Generator
	logger   logging.Interface
	recorder *metrics.Recorder
	onResult func(Outcome)

	base       context.Context
	stop       context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *Outcome

	// notifyMu orders onResult calls; mu is never held while one runs.
	notifyMu sync.Mutex
	notified uint64
}

// NewRegenerator creates a regenerator whose runs derive from ctx.
// onResult, if not nil, is called for published outcomes in increasing
// generation order, outside the lock Submit takes. An outcome overtaken by a
// newer one before its callback starts is not delivered.
func NewRegenerator(ctx context.Context, gen *Generator, logger logging.Interface, recorder *metrics.Recorder, onResult func(Outcome)) *Regenerator {
	base, stop := context.WithCancel(ctx)
	return &Regenerator{
		gen:      gen,
		logger:   logger.With("component", "regenerator"),
		recorder: recorder,
		onResult: onResult,
		base:     base,
		stop:     stop,
	}
}

// Submit starts a run for cfg, superseding any earlier submission, and
// returns its generation number.
func (r *Regenerator) Submit(cfg config.GenerationConfig) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	generation := r.generation
	ctx, cancel := context.WithCancel(r.base)
	r.cancel = cancel

	r.logger.Debug("Regeneration submitted", "generation", generation)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()
		result, err := r.gen.Generate(ctx, cfg)
		r.publish(Outcome{Generation: generation, Result: result, Err: err})
	}()
	return generation
}

func (r *Regenerator) publish(out Outcome) {
	r.mu.Lock()
	if out.Generation != r.generation {
		current := r.generation
		r.mu.Unlock()
		r.recorder.RunSuperseded()
		r.logger.Debug("Discarding superseded result", "generation", out.Generation, "current", current)
		return
	}
	r.latest = &out
	r.mu.Unlock()

	if r.onResult == nil {
		return
	}
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if out.Generation <= r.notified {
		r.logger.Debug("Skipping overtaken result callback", "generation", out.Generation, "notified", r.notified)
		return
	}
	r.notified = out.Generation
	r.onResult(out)
}

// Latest returns the newest published outcome, if any.
func (r *Regenerator) Latest() (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return Outcome{}, false
	}
	return *r.latest, true
}

// Generation returns the number of the most recent submission.
func (r *Regenerator) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// Wait blocks until every submitted run has finished.
func (r *Regenerator) Wait() {
	r.wg.Wait()
}

// Close cancels any run in flight and waits for it to return.
func (r *Regenerator) Close() {
	r.stop()
	r.wg.Wait()
}
