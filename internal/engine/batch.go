package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchOptions bounds a multi-file extraction run.
type BatchOptions struct {
	// Workers is the file-level concurrency ceiling. Defaults to the
	// configured ingest worker count.
	Workers int

	// Timeout is the pool-wide budget for the whole batch. Zero means
	// no budget beyond the caller's context.
	Timeout time.Duration
}

// FileResult is the outcome for one path in a batch. Exactly one of
// Result and Err is set.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// BatchResult aggregates a batch run. Files appear in input order
// regardless of completion order.
type BatchResult struct {
	RunID     string
	Files     []FileResult
	Aggregate Stats
}

// ExtractBatch processes inputs concurrently with a fixed concurrency
// ceiling and no shared mutable state between files. When the pool-wide
// budget expires, files already completed keep their results; unfinished
// files carry ErrBatchTimeout, and the same error is returned at the
// batch level so callers can tell a cut-short run from a complete one.
func (e *Engine) ExtractBatch(ctx context.Context, inputs []Input, opts BatchOptions) (*BatchResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = e.cfg.Ingest.FileWorkers
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	batch := &BatchResult{
		RunID: uuid.NewString(),
		Files: make([]FileResult, len(inputs)),
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, in := range inputs {
		g.Go(func() error {
			fr := FileResult{Path: in.Path}
			if err := ctx.Err(); err != nil {
				fr.Err = fmt.Errorf("%s: %w", in.Path, ErrBatchTimeout)
			} else if res, err := e.Extract(ctx, in); err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					fr.Err = fmt.Errorf("%s: %w", in.Path, ErrBatchTimeout)
				} else {
					fr.Err = err
				}
			} else {
				fr.Result = res
			}
			batch.Files[i] = fr
			return nil
		})
	}

	// Workers only write their own slot; Wait never returns an error
	// here because per-file failures are recorded, not propagated.
	_ = g.Wait()

	var batchErr error
	for _, fr := range batch.Files {
		if fr.Result != nil {
			batch.Aggregate.ASTParsed += fr.Result.Stats.ASTParsed
			batch.Aggregate.FallbackExtracted += fr.Result.Stats.FallbackExtracted
			batch.Aggregate.TotalExtracted += fr.Result.Stats.TotalExtracted
		} else if errors.Is(fr.Err, ErrBatchTimeout) && batchErr == nil {
			batchErr = ErrBatchTimeout
		}
	}

	return batch, batchErr
}
