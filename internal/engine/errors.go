package engine

import "errors"

// Error taxonomy. Per-region problems (parse failures, timeouts,
// unsupported languages) are recovered internally and never surface as
// errors: the coverage invariant forbids aborting a run for a single bad
// region. Only batch-level exhaustion and total decode failure are fatal,
// so callers can tell "no code found" from "could not read input".
var (
	// ErrBatchTimeout reports that the pool-wide budget expired before a
	// file was processed. Files completed before the deadline keep their
	// results.
	ErrBatchTimeout = errors.New("batch budget exhausted")
)
