package render

import "errors"

// Sentinel errors a Renderer can return (§7). Callers should use
// errors.Is against these rather than comparing strings.
var (
	// ErrAllocationFailure means the requested raster (including gutter
	// and supersample) could not be allocated.
	ErrAllocationFailure = errors.New("render: allocation failure")
	// ErrFilterCreationFailure means the spatial/temporal/DE filter
	// parameters could not produce a usable kernel — e.g. the gutter
	// (spatial-filter half-width plus density-estimation padding) is more
	// than four times the larger dimension of the supersampled core raster.
	ErrFilterCreationFailure = errors.New("render: filter creation failure")
	// ErrIteratorSetupFailure means a flame's xforms could not be built
	// into a dispatch table (e.g. an unknown variation name).
	ErrIteratorSetupFailure = errors.New("render: iterator setup failure")
	// ErrZeroIterations means a render completed its iteration phase
	// without landing a single sample inside the camera window.
	ErrZeroIterations = errors.New("render: zero iterations landed in frame")
	// ErrUserAbort means the progress callback requested early
	// termination.
	ErrUserAbort = errors.New("render: aborted by caller")
	// ErrBorderRoundoff flags a camera whose cartesian window, after
	// floating rounding, has zero or negative extent on either axis (an
	// extreme pixels_per_unit/zoom combination), so no sample could be
	// mapped into the raster.
	ErrBorderRoundoff = errors.New("render: border roundoff detected")
)
