package render

import (
	"context"
	"fmt"

	"github.com/flamecore/ember/histogram"
	"github.com/flamecore/ember/palette"
	"github.com/flamecore/ember/stats"
)

// RerenderAction picks which stage a Rerun re-enters at (§4.8). A caller
// that changes a single Flame field between renders (e.g. previewing a
// brightness slider) maps that field to the cheapest action that is still
// correct for it, rather than always paying for a full re-iterate.
type RerenderAction int

const (
	// RerenderNothing returns the previous Run/Rerun's output unchanged.
	RerenderNothing RerenderAction = iota
	// RerenderFull resets the histogram and trajectory and re-derives the
	// camera and filter cache before iterating from scratch. Required for
	// any change to the camera, an xform, a filter width, supersample, or
	// the output size.
	RerenderFull
	// RerenderFilterAndAccum reuses the accumulated histogram but reruns
	// density estimation, the spatial filter, and color correction.
	// Required for a brightness change in either clip mode: brightness
	// enters the log-scale constant applied during density estimation.
	RerenderFilterAndAccum
	// RerenderAccumOnly reuses the DE-filtered accumulator from the last
	// Run/Rerun and reruns only the spatial filter and color correction.
	// Correct for gamma, gamma-threshold, vibrancy, highlight-power,
	// background, and clip-mode changes, which only color correction reads.
	// A brightness change is not picked up: the cached accumulator was
	// scaled with the old brightness.
	RerenderAccumOnly
	// RerenderKeepIterating adds more samples to the existing trajectory
	// (raising quality) and then reruns filter + accum. Only valid when
	// the prior render reached StateDone with TemporalSamples == 1: a
	// strip or a multi-sample temporal render has no single trajectory to
	// resume.
	RerenderKeepIterating
)

func (a RerenderAction) String() string {
	switch a {
	case RerenderNothing:
		return "nothing"
	case RerenderFull:
		return "full_render"
	case RerenderFilterAndAccum:
		return "filter_and_accum"
	case RerenderAccumOnly:
		return "accum_only"
	case RerenderKeepIterating:
		return "keep_iterating"
	default:
		return "unknown"
	}
}

// Rerun re-enters the pipeline at the stage action names, reusing whatever
// of the trajectory/histogram/filtered-accumulator is still valid for the
// Flame field the caller just changed (§4.8). It must be called after a
// prior Run or Rerun has reached StateDone; r.f may be mutated in place
// between calls (a UI-driven parameter tweak), but RerenderFull is the
// only action that notices a camera/xform/filter/size change — picking any
// cheaper action for one of those leaves the Renderer out of sync with f.
func (r *Renderer) Rerun(ctx context.Context, action RerenderAction, progress ProgressFunc) ([]palette.Color, error) {
	if r.state != StateDone {
		return nil, fmt.Errorf("render: Rerun called from state %s, want %s", r.state, StateDone)
	}

	switch action {
	case RerenderNothing:
		return r.lastOutput, nil

	case RerenderAccumOnly:
		if r.deFiltered == nil {
			return nil, fmt.Errorf("render: RerenderAccumOnly has no cached DE-filtered accumulator to reuse")
		}
		r.lastOutput = finishCorrect(r.f, r.cam, r.deFiltered, &r.cache, r.cfg)
		return r.lastOutput, nil

	case RerenderFilterAndAccum:
		if r.hist == nil {
			return nil, fmt.Errorf("render: RerenderFilterAndAccum has no accumulated histogram to reuse")
		}
		return r.correct(), nil

	case RerenderKeepIterating:
		if r.f.TemporalSamples > 1 {
			return nil, fmt.Errorf("render: RerenderKeepIterating incompatible with temporal_samples > 1 (got %d)", r.f.TemporalSamples)
		}
		// Quality is the only field KeepIterating exists to raise, and it
		// feeds ScaledQuality without affecting raster geometry, so refresh
		// just that rather than rebuildGeometry (which would also reset
		// the trajectory this action exists to keep).
		r.cam.ScaledQuality = r.f.Quality * r.cam.Scale * r.cam.Scale
		more := r.targetIterations() - r.iteratedTotal
		if more <= 0 {
			return r.correct(), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUserAbort, ctx.Err())
		default:
		}
		if err := r.iterateMore(ctx, more); err != nil {
			r.state = StateFailed
			return nil, err
		}
		return r.correct(), nil

	case RerenderFull:
		if err := r.rebuildGeometry(); err != nil {
			r.state = StateFailed
			return nil, err
		}
		r.hist = histogram.New(r.cam.CarToRas)
		r.it = nil
		r.iteratedTotal = 0
		r.deFiltered = nil
		r.stats = stats.EmberStats{}
		r.state = StatePending
		return r.Run(ctx, progress)

	default:
		return nil, fmt.Errorf("render: unknown rerender action %d", int(action))
	}
}
