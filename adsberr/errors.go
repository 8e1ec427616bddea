// Package adsberr defines the error kinds shared by the snapshot loader and
// the interception core, mirroring the four-variant error enum of the
// original Rust implementation (InputReadError, DecodeError,
// MissingAircraftField, ParallelPipelineFailure).
package adsberr

import "errors"

// Sentinel kinds. Wrap with fmt.Errorf("...: %w", ErrX) to attach context.
var (
	// ErrInputRead covers filesystem or decompression failure on a snapshot file.
	ErrInputRead = errors.New("adsbxintercept: input read error")

	// ErrDecode covers a structurally invalid JSON response.
	ErrDecode = errors.New("adsbxintercept: decode error")

	// ErrAircraftMissingField marks a per-tick record missing a required
	// field. It is never fatal: the caller skips that aircraft for the
	// tick and continues. Exported so callers can test for it with
	// errors.Is if they want to distinguish it from a real decode error.
	ErrAircraftMissingField = errors.New("adsbxintercept: aircraft missing required field")

	// ErrParallelPipeline marks an internal worker failure in the loader's
	// pool, distinct from a per-file decode error. It is always fatal.
	ErrParallelPipeline = errors.New("adsbxintercept: parallel pipeline failure")
)
