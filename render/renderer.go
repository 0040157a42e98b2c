// Package render drives the end-to-end pipeline from a built flame.Flame
// to a final corrected pixel buffer (§4.7, §4.8): allocate the
// supersampled histogram, run the chaos game into it, apply the density
// estimation and spatial filters, then gamma/vibrancy/highlight correct
// every output pixel. The state machine mirrors console.Bus.Run's
// ctx.Done()-checked loop restated as an explicit advance(state) step so a
// caller can interleave progress reporting and cooperative cancellation
// between states instead of only between whole renders.
package render

import (
	"context"
	"fmt"

	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/flame"
	"github.com/flamecore/ember/histogram"
	"github.com/flamecore/ember/iterator"
	"github.com/flamecore/ember/palette"
	"github.com/flamecore/ember/raster"
	"github.com/flamecore/ember/rng"
	"github.com/flamecore/ember/stats"
)

// ProgressFunc is called after every state transition (§6/§4.8). Returning
// ActionAbort stops the render at the next checkpoint.
type ProgressFunc func(State, stats.EmberStats) Action

// Renderer owns everything the pipeline accumulates across its lifetime:
// the histogram, the filter cache, and the running stats. A Renderer
// renders exactly one Flame; build a new one to render another.
type Renderer struct {
	f     *flame.Flame
	cam   flame.Camera
	cache filter.Cache
	hist  *histogram.Histogram
	stats stats.EmberStats
	state State
	seed  uint64
	cfg   Config

	it            *iterator.Iterator
	iteratedTotal int

	// deFiltered and lastOutput cache the two most expensive intermediate
	// results so Rerun can re-enter the pipeline at whichever stage an
	// action says is still valid (§4.8) instead of redoing everything.
	deFiltered []histogram.Bucket
	lastOutput []palette.Color
}

// NewRenderer validates f, derives its camera, and checks that the
// resulting filter/gutter configuration is usable, returning
// ErrFilterCreationFailure if not (§7). It is equivalent to
// NewRendererWithConfig(f, seed, Config{}).
func NewRenderer(f *flame.Flame, seed uint64) (*Renderer, error) {
	return NewRendererWithConfig(f, seed, Config{})
}

// NewRendererWithConfig is NewRenderer with explicit §6 Config options
// (early_clip, sub_batch_size, output channels, ...). cfg.ThreadCount is
// not read: a Renderer always iterates on a single goroutine.
func NewRendererWithConfig(f *flame.Flame, seed uint64, cfg Config) (*Renderer, error) {
	r := &Renderer{f: f, seed: seed, state: StatePending, cfg: cfg}
	if err := r.rebuildGeometry(); err != nil {
		return nil, err
	}
	r.hist = histogram.New(r.cam.CarToRas)
	return r, nil
}

// rebuildGeometry (re)validates f, rederives its camera, and rebuilds the
// filter cache from f's current filter parameters. NewRendererWithConfig
// calls it once to set a Renderer up; Rerun's RerenderFull calls it again
// after the caller has mutated any camera/xform/filter-width/supersample/
// size parameter on f (§4.8: those always invalidate the whole pipeline,
// not just the histogram).
func (r *Renderer) rebuildGeometry() error {
	f := r.f
	if err := f.Validate(); err != nil {
		return err
	}
	if err := f.BuildAll(); err != nil {
		return fmt.Errorf("%w: %v", ErrIteratorSetupFailure, err)
	}

	cam := f.Camera()
	if cam.URX <= cam.LLX || cam.URY <= cam.LLY {
		return fmt.Errorf("%w: camera window [%v,%v]x[%v,%v] collapsed to zero or negative extent", ErrBorderRoundoff, cam.LLX, cam.URX, cam.LLY, cam.URY)
	}
	coreW, coreH := f.FinalRasW*f.Supersample, f.FinalRasH*f.Supersample
	coreMax := coreW
	if coreH > coreMax {
		coreMax = coreH
	}
	if cam.GutterWidth > 4*coreMax {
		return fmt.Errorf("%w: gutter %d swamps the %dx%d core raster — reduce spatial_filter_radius or max_rad_de", ErrFilterCreationFailure, cam.GutterWidth, coreW, coreH)
	}
	if int64(cam.SuperW)*int64(cam.SuperH) > maxSuperPixels {
		return fmt.Errorf("%w: %dx%d supersampled raster exceeds the %d pixel budget", ErrAllocationFailure, cam.SuperW, cam.SuperH, maxSuperPixels)
	}

	r.cam = cam
	r.cache.Ensure(filter.NewKey(
		f.SpatialFilterType, f.SpatialFilterRadius,
		f.TemporalFilterType, f.TemporalFilterWidth, f.TemporalFilterExp,
		f.MinRadDE, f.MaxRadDE, f.CurveDE,
		f.Supersample, f.TemporalSamples,
	), maxFilterIndex)
	return nil
}

// maxFilterIndex bounds the DE kernel pyramid's resolution (§4.7 bullet
// 2); flam3 implementations commonly cap it in the low hundreds.
const maxFilterIndex = 256

// maxSuperPixels bounds the supersampled raster a single Renderer will
// allocate, guarding against a runaway gutter/supersample combination
// exhausting memory before a single sample is iterated.
const maxSuperPixels = 1 << 28 // 256Mi buckets, 10GiB at 40 bytes/Bucket

// State returns the renderer's current position in the state machine.
func (r *Renderer) State() State { return r.state }

// Stats returns a snapshot of the renderer's running counters.
func (r *Renderer) Stats() stats.EmberStats { return r.stats }

// Run advances the renderer through StateIterating and StateFiltering to
// StateDone, calling progress after each transition. It returns the final
// corrected RGBA pixel buffer (row-major, top-to-bottom, matching §6's
// output orientation) once StateDone is reached.
func (r *Renderer) Run(ctx context.Context, progress ProgressFunc) ([]palette.Color, error) {
	for r.state != StateDone {
		select {
		case <-ctx.Done():
			r.state = StateAborted
			return nil, fmt.Errorf("%w: %v", ErrUserAbort, ctx.Err())
		default:
		}

		next, err := r.advance(ctx)
		if err != nil {
			r.state = StateFailed
			return nil, err
		}
		r.state = next

		if progress != nil && progress(r.state, r.stats) == ActionAbort {
			reached := r.state
			r.state = StateAborted
			return nil, fmt.Errorf("%w: stopped at state %s", ErrUserAbort, reached)
		}
	}
	return r.correct(), nil
}

// advance runs exactly one state's work and returns the state reached.
func (r *Renderer) advance(ctx context.Context) (State, error) {
	switch r.state {
	case StatePending:
		return StateIterating, nil
	case StateIterating:
		if err := r.iterate(ctx); err != nil {
			return StateFailed, err
		}
		if r.hist.TotalHits() == 0 {
			return StateFailed, ErrZeroIterations
		}
		return StateFiltering, nil
	case StateFiltering:
		return StateDone, nil
	default:
		return r.state, fmt.Errorf("render: advance called from terminal state %s", r.state)
	}
}

// targetIterations returns the total sample count a full run accumulates
// (§4.7 bullet 1: quality * output pixel count, scaled to the supersampled
// raster).
func (r *Renderer) targetIterations() int {
	total := int(r.cam.ScaledQuality * float64(r.cam.CarToRas.Size()))
	if total < 1 {
		total = 1
	}
	return total
}

// iterate runs the chaos-game pass into r.hist up to the full quality
// target, on one goroutine. Parallel, multi-worker iteration is the
// scheduler package's responsibility: it drives several Iterators into
// separate Histograms, merges them into one, and that histogram is then
// corrected with CorrectHistogram; no Renderer is involved.
func (r *Renderer) iterate(ctx context.Context) error {
	return r.iterateMore(ctx, r.targetIterations())
}

// iterateMore runs n further samples into r.hist, reusing r.it (and so its
// chaos-game trajectory and RNG stream position) across calls — the basis
// for §4.8's KeepIterating, which extends a finished render with more
// samples instead of restarting the trajectory.
func (r *Renderer) iterateMore(ctx context.Context, n int) error {
	if r.it == nil {
		src := rng.New(r.seed, 0)
		it, err := iterator.New(r.f, src)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIteratorSetupFailure, err)
		}
		r.it = it
	}

	fuse := 20
	batch := r.cfg.SubBatchSize
	if batch <= 0 {
		batch = 10240
	}
	remaining := n
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b := batch
		if b > remaining {
			b = remaining
		}
		r.it.Run(fuse, b, func(s iterator.Sample) bool {
			r.hist.Accumulate(raster.Point{X: s.X, Y: s.Y}, s.ColorX, s.Opacity, r.f.Palette, r.f.PaletteMode)
			return true
		})
		fuse = 0
		remaining -= b
		r.stats.TotalIterations += int64(b)
	}
	r.stats.BadValues = int64(r.it.BadValues())
	r.iteratedTotal += n
	return nil
}

// logScaleConstants derives k1 and k2, the two constants the §4.7
// log_scale formula needs (`k1 = brightness*268/256`, `k2 = supersample²
// / (area * quality_used * temporal_sum_filter)`), from a flame/camera
// pair and the filter cache's built temporal kernel. area is the output
// raster's area in cartesian units; quality_used is the camera's
// zoom-scaled quality (ScaledQuality = quality * 4^zoom).
func logScaleConstants(f *flame.Flame, cam flame.Camera, cache *filter.Cache) (k1, k2 float64) {
	k1 = f.Brightness * 268 / 256

	area := float64(f.FinalRasW*f.FinalRasH) / (cam.PixelsPerUnitX * cam.PixelsPerUnitY)
	temporalSum := 0.0
	for _, c := range cache.Temporal().Coefs {
		temporalSum += c
	}
	if temporalSum == 0 {
		temporalSum = 1
	}
	denom := area * cam.ScaledQuality * temporalSum
	if denom == 0 {
		return k1, 0
	}
	superSample := f.Supersample
	if superSample < 1 {
		superSample = 1
	}
	k2 = float64(superSample*superSample) / denom
	return k1, k2
}

// correct applies the DE filter, downsamples, and color-corrects every
// output pixel (§4.7 bullet 2-6, §4.7.1), caching the DE-filtered
// accumulator so a later RerenderAccumOnly can skip density estimation.
func (r *Renderer) correct() []palette.Color {
	k1, k2 := logScaleConstants(r.f, r.cam, &r.cache)
	r.deFiltered = r.hist.ApplyDE(r.cache.DE(), k1, k2)
	r.lastOutput = finishCorrect(r.f, r.cam, r.deFiltered, &r.cache, r.cfg)
	return r.lastOutput
}

// CorrectHistogram runs the same DE-filter/downsample/color-correct
// pipeline as Renderer.Run's final step, for callers that fill a
// histogram themselves — e.g. the scheduler package's parallel iteration
// path, which merges several workers' histograms before any correction
// happens. f must already be built (flame.Flame.BuildAll) and cam must be
// the Camera f.Camera() derived hist's raster from. It is equivalent to
// CorrectHistogramWithConfig(f, cam, hist, Config{}).
func CorrectHistogram(f *flame.Flame, cam flame.Camera, hist *histogram.Histogram) []palette.Color {
	return CorrectHistogramWithConfig(f, cam, hist, Config{})
}

// CorrectHistogramWithConfig is CorrectHistogram honoring cfg.EarlyClip
// (§4.7.1/§6: whether the alpha-scaled color is clamped to 1 before the
// highlight compression curve sees an over-unity sample). In both modes the
// color correction runs after the spatial filter.
func CorrectHistogramWithConfig(f *flame.Flame, cam flame.Camera, hist *histogram.Histogram, cfg Config) []palette.Color {
	var cache filter.Cache
	cache.Ensure(filter.NewKey(
		f.SpatialFilterType, f.SpatialFilterRadius,
		f.TemporalFilterType, f.TemporalFilterWidth, f.TemporalFilterExp,
		f.MinRadDE, f.MaxRadDE, f.CurveDE,
		f.Supersample, f.TemporalSamples,
	), maxFilterIndex)
	return correctWithCache(f, cam, hist, &cache, cfg)
}

func correctWithCache(f *flame.Flame, cam flame.Camera, hist *histogram.Histogram, cache *filter.Cache, cfg Config) []palette.Color {
	k1, k2 := logScaleConstants(f, cam, cache)
	deFiltered := hist.ApplyDE(cache.DE(), k1, k2)
	return finishCorrect(f, cam, deFiltered, cache, cfg)
}

// finishCorrect runs the downsample and color-correction stages only,
// starting from an already DE-filtered accumulator — the step
// RerenderAccumOnly reruns without repeating density estimation.
func finishCorrect(f *flame.Flame, cam flame.Camera, deFiltered []histogram.Bucket, cache *filter.Cache, cfg Config) []palette.Color {
	downsampled := histogram.Downsample(deFiltered, cam.SuperW, cam.SuperH, f.Supersample, cam.GutterWidth, f.FinalRasW, f.FinalRasH, cache.Spatial())

	channels, _ := cfg.channels()
	params := histogram.CorrectionParams{
		Gamma:          f.Gamma,
		GammaThreshold: f.GammaThreshold,
		Vibrancy:       f.Vibrancy,
		HighlightPower: f.HighlightPower,
		Background:     f.Background,
		Clip:           cfg.clipMode(),
		Unpremultiply:  cfg.Transparency && channels == 4,
	}

	out := make([]palette.Color, len(downsampled))
	for i, b := range downsampled {
		out[i] = histogram.Correct(b, params)
	}
	return out
}
