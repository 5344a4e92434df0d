// Package batch decodes many result archives concurrently.
//
// Archives are independent, so the runner is a bounded worker pool: up to
// Concurrency decodes in flight, one Result per input path, input order
// preserved. A failed archive never affects its siblings; cancelling the
// context stops dispatching archives that have not started, while in-flight
// decodes run to completion and report normally.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chromago/unicorn"
	"github.com/chromago/unicorn/curve"
	"github.com/chromago/unicorn/internal/options"
)

// State is the terminal state of one archive in a batch run.
type State uint8

const (
	// StateSucceeded means the archive decoded without warnings.
	StateSucceeded State = iota + 1
	// StatePartial means the archive decoded but the run carries warnings.
	StatePartial
	// StateFailed means the decode returned an error.
	StateFailed
	// StateSkipped means the archive was never dispatched because the context
	// was cancelled first.
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StatePartial:
		return "partial"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event is delivered to the progress sink as each archive reaches a terminal
// state.
type Event struct {
	Path     string
	State    State
	Warnings int
	Err      error
}

// Result is the outcome of one archive.
type Result struct {
	Path  string
	State State
	// Run is the decoded run for succeeded and partial archives, nil otherwise.
	Run *curve.DecodedRun
	Err error
}

// Runner decodes batches of archives with bounded concurrency.
type Runner struct {
	concurrency int
	logger      *zap.Logger
	sink        func(Event)
	decodeOpts  []unicorn.Option

	mu sync.Mutex
}

// Option is a functional option for configuring a Runner.
type Option = options.Option[*Runner]

// WithConcurrency bounds the number of decodes in flight. The default is
// GOMAXPROCS.
func WithConcurrency(n int) Option {
	return options.New(func(r *Runner) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		r.concurrency = n

		return nil
	})
}

// WithLogger sets the structured logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(r *Runner) {
		r.logger = logger
	})
}

// WithProgress sets the progress sink. Calls are serialized; the callback
// never runs concurrently with itself.
func WithProgress(sink func(Event)) Option {
	return options.NoError(func(r *Runner) {
		r.sink = sink
	})
}

// WithDecodeOptions passes options through to every per-archive decode.
func WithDecodeOptions(opts ...unicorn.Option) Option {
	return options.NoError(func(r *Runner) {
		r.decodeOpts = opts
	})
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		concurrency: runtime.GOMAXPROCS(0),
		logger:      zap.NewNop(),
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Run decodes every archive in paths and returns one Result per path, in
// input order.
//
// Returns:
//   - []Result: Always len(paths) results; skipped entries carry the context
//     error
//   - error: The context error when cancelled, nil otherwise. Per-archive
//     decode failures are reported in their Result, not here.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)

	dispatched := 0
	for i, path := range paths {
		if groupCtx.Err() != nil {
			break
		}
		dispatched++

		group.Go(func() error {
			results[i] = r.decodeOne(path)
			return nil
		})
	}

	// Workers never return errors, so Wait only flushes the pool.
	_ = group.Wait()

	for i := dispatched; i < len(paths); i++ {
		results[i] = Result{Path: paths[i], State: StateSkipped, Err: ctx.Err()}
		r.emit(Event{Path: paths[i], State: StateSkipped, Err: ctx.Err()})
	}

	return results, ctx.Err()
}

func (r *Runner) decodeOne(path string) Result {
	result := Result{Path: path}

	run, err := unicorn.DecodeFile(path, r.decodeOpts...)
	switch {
	case err != nil:
		result.State = StateFailed
		result.Err = err
		r.logger.Warn("archive decode failed",
			zap.String("path", path),
			zap.Error(err),
		)
	case len(run.Warnings) > 0:
		result.State = StatePartial
		result.Run = run
		r.logger.Info("archive decoded with warnings",
			zap.String("path", path),
			zap.Int("curves", len(run.Curves)),
			zap.Int("warnings", len(run.Warnings)),
		)
	default:
		result.State = StateSucceeded
		result.Run = run
		r.logger.Info("archive decoded",
			zap.String("path", path),
			zap.Int("curves", len(run.Curves)),
			zap.Int("fractions", len(run.Fractions)),
		)
	}

	event := Event{Path: path, State: result.State, Err: result.Err}
	if result.Run != nil {
		event.Warnings = len(result.Run.Warnings)
	}
	r.emit(event)

	return result
}

func (r *Runner) emit(event Event) {
	if r.sink == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink(event)
}
