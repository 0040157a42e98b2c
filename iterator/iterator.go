// Package iterator runs the chaos-game loop (§4.6): pick a transform by
// weight (optionally xaos-biased by the previous pick), apply it, fuse a
// handful of leading iterations without emitting, then emit a (point,
// color) pair per iteration thereafter. The transform picker is a
// precomputed cumulative-weight table searched with sort.Search rather
// than a per-iteration fresh sum, the same "build the dispatch shape once,
// walk it many times" discipline the variation and affine packages follow.
package iterator

import (
	"fmt"
	"math"
	"sort"

	"github.com/flamecore/ember/affine"
	"github.com/flamecore/ember/flame"
	"github.com/flamecore/ember/rng"
)

// Sample is one emitted chaos-game point: its final post-xform coordinate,
// its color_x coordinate, and its opacity.
type Sample struct {
	X, Y    float64
	ColorX  float64
	Opacity float64
}

// picker holds a transform's cumulative-weight table: cumulative[i] is the
// upper bound of xform i's selection interval in [0, cumulative[last]).
type picker struct {
	cumulative []float64
	total      float64
}

func buildPicker(weights []float64) picker {
	cum := make([]float64, len(weights))
	var running float64
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		running += w
		cum[i] = running
	}
	return picker{cumulative: cum, total: running}
}

// pick returns the index selected by u, a uniform draw in [0,1).
func (p picker) pick(u float64) int {
	if p.total <= 0 {
		return 0
	}
	target := u * p.total
	i := sort.Search(len(p.cumulative), func(i int) bool { return p.cumulative[i] > target })
	if i >= len(p.cumulative) {
		i = len(p.cumulative) - 1
	}
	return i
}

// Iterator runs the chaos-game trajectory for one Flame. Not safe for
// concurrent use; the scheduler package gives each worker its own.
type Iterator struct {
	f   *flame.Flame
	src *rng.RNG

	uniform picker
	xaos    []picker // per-xform, built only when that xform declares Xaos

	badValues int

	// started and x/y/colorX/lastIdx carry the chaos-game trajectory
	// across separate Run calls on the same Iterator (§4.8's
	// KeepIterating: adding more samples to an existing histogram
	// without restarting the trajectory from a fresh random point).
	started      bool
	x, y, colorX float64
	lastIdx      int
}

// New builds an Iterator from a built (flame.Flame.BuildAll already
// called) flame and a dedicated RNG stream.
func New(f *flame.Flame, src *rng.RNG) (*Iterator, error) {
	if len(f.Xforms) == 0 {
		return nil, fmt.Errorf("iterator: flame has no xforms")
	}
	it := &Iterator{f: f, src: src}

	weights := make([]float64, len(f.Xforms))
	for i, x := range f.Xforms {
		weights[i] = x.Weight
	}
	it.uniform = buildPicker(weights)

	it.xaos = make([]picker, len(f.Xforms))
	for i, x := range f.Xforms {
		if x.Xaos == nil {
			continue
		}
		biased := make([]float64, len(f.Xforms))
		for j := range biased {
			w := f.Xforms[j].Weight
			if j < len(x.Xaos) {
				w *= x.Xaos[j]
			}
			biased[j] = w
		}
		it.xaos[i] = buildPicker(biased)
	}
	return it, nil
}

// BadValues returns the count of non-finite iterates discarded so far
// (§4.6 edge case: a variation producing NaN/Inf resets the trajectory
// instead of poisoning the histogram).
func (it *Iterator) BadValues() int { return it.badValues }

// badValueMagnitude is the threshold past which a finite coordinate still
// counts as a bad sample (§4.6 edge case / glossary "bad value"): a
// trajectory that diverges without ever producing NaN/Inf (common with
// variations like julia under a fractional inv_power) must not silently
// pollute the histogram.
const badValueMagnitude = 1e10

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= badValueMagnitude
}

// Run executes fuse iterations without emitting, then calls emit once per
// iteration for count further iterations; an iteration that produces a bad
// value is counted and reseeded instead of emitted, so emit may be called
// fewer than count times. emit returning false stops the
// run early (used by the scheduler to respect a sub-batch size or a
// cancelled context).
//
// A second call to Run on the same Iterator resumes the trajectory where
// the previous call left off instead of reseeding from a fresh random
// point, ignoring fuse (already warmed up) — this is what lets a caller
// split one logical run into sub-batches, or extend a finished run with
// more samples (§4.8 KeepIterating), without biasing the histogram with
// repeated unfused startup transients.
func (it *Iterator) Run(fuse, count int, emit func(Sample) bool) {
	var x, y, colorX float64
	lastIdx := -1
	if it.started {
		x, y, colorX, lastIdx = it.x, it.y, it.colorX, it.lastIdx
		fuse = 0
	} else {
		x = it.src.Uniform11()
		y = it.src.Uniform11()
		colorX = it.src.Float64()
		it.started = true
	}

	for i := 0; i < fuse+count; i++ {
		idx := it.selectXform(lastIdx)
		lastIdx = idx
		x, y, colorX = it.step(idx, x, y, colorX)

		if !finite(x) || !finite(y) {
			it.badValues++
			x = it.src.Uniform11()
			y = it.src.Uniform11()
			colorX = it.src.Float64()
			lastIdx = -1
			continue
		}
		if i < fuse {
			continue
		}

		fx, fy, fColorX, opacity := x, y, colorX, it.f.Xforms[idx].Opacity
		if it.f.HasFinal {
			fxf := it.f.FinalXform
			out := fxf.Apply(affine.Vec[float64]{X: x, Y: y}, 0, it.src)
			fx, fy = out.X, out.Y
			if fxf.DirectColor > 0 {
				fColorX = fxf.ColorX
			}
		}
		if !emit(Sample{X: fx, Y: fy, ColorX: fColorX, Opacity: opacity}) {
			it.x, it.y, it.colorX, it.lastIdx = x, y, colorX, lastIdx
			return
		}
	}
	it.x, it.y, it.colorX, it.lastIdx = x, y, colorX, lastIdx
}

func (it *Iterator) selectXform(lastIdx int) int {
	u := it.src.Float64()
	if lastIdx >= 0 && it.f.Xforms[lastIdx].Xaos != nil {
		return it.xaos[lastIdx].pick(u)
	}
	return it.uniform.pick(u)
}

// step applies xform idx and blends the color index per §4.4's color
// speed rule: color_x moves toward the xform's own color_x by
// (1 - color_speed) / 2 each iteration, not by color_speed directly.
func (it *Iterator) step(idx int, x, y, colorX float64) (nx, ny, nColorX float64) {
	xf := &it.f.Xforms[idx]
	out := xf.Apply(affine.Vec[float64]{X: x, Y: y}, 0, it.src)
	step := (1 - xf.ColorSpeed) / 2
	nColorX = colorX*(1-step) + xf.ColorX*step
	return out.X, out.Y, nColorX
}
