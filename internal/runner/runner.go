package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wppops/asat-validator/internal/logging"
	"github.com/wppops/asat-validator/pkg/types"
)

// Pool sizing
const (
	DefaultWorkers = 10
	MaxWorkers     = 128
)

// Pipeline is the per-order evaluation the runner fans out
type Pipeline interface {
	Run(ctx context.Context, orderID string) (types.Verdict, error)
}

// Runner drives one validation run: a bounded worker pool over the input
// ids, with results emitted in input order regardless of completion order
type Runner struct {
	pipeline Pipeline
	workers  int
	log      *logging.RunLog
}

// New creates a Runner. Worker counts outside [1, MaxWorkers] are clamped.
func New(pipeline Pipeline, workers int, log *logging.RunLog) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{pipeline: pipeline, workers: workers, log: log}
}

// RunAll evaluates every order id through the pipeline. The returned slice
// is always len(orderIDs), addressed by input position. On a run-fatal error
// scheduling stops, in-flight orders finish against the parent context, and
// slots that never ran stay zero (recognizable by an empty Step); the error
// reports why the run ended early.
func (r *Runner) RunAll(ctx context.Context, orderIDs []string) ([]types.Verdict, error) {
	// Pre-sized buffer addressed by input position: each worker writes its
	// own slot, so collection needs no lock and no sorting
	verdicts := make([]types.Verdict, len(orderIDs))

	semaphore := make(chan struct{}, r.workers)
	g, gctx := errgroup.WithContext(ctx)

scheduling:
	for i, orderID := range orderIDs {
		select {
		case semaphore <- struct{}{}:
		case <-gctx.Done():
			// Fatal pipeline error or run cancellation: stop handing out
			// new work, let in-flight orders finish
			break scheduling
		}

		g.Go(func() error {
			defer func() { <-semaphore }()

			// Parent context on purpose: an abort stops scheduling without
			// killing calls already on the wire
			verdict, err := r.pipeline.Run(ctx, orderID)
			if err != nil {
				r.log.Errorf("order %s: %v", orderID, err)
				return fmt.Errorf("order %s: %w", orderID, err)
			}

			verdicts[i] = verdict
			r.log.Debugf("order %s: %s (%s)", orderID, verdict.Outcome.Kind, verdict.ReasonText)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// Cancellation can end scheduling without any pipeline erroring
		err = ctx.Err()
	}

	return verdicts, err
}
