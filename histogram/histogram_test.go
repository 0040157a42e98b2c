package histogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/palette"
	"github.com/flamecore/ember/raster"
)

func smallC2R() raster.CarToRas {
	return raster.New(0, 0, 10, 10, 10, 10, 1)
}

func TestAccumulateRejectsOutOfBoundsPoint(t *testing.T) {
	h := New(smallC2R())
	pal := palette.Grayscale256("p")
	ok := h.Accumulate(raster.Point{X: 100, Y: 100}, 0, 1, pal, palette.ModeStep)
	assert.False(t, ok)
	assert.Equal(t, 0.0, h.TotalHits())
}

func TestAccumulateAddsWeightedColorIntoBucket(t *testing.T) {
	h := New(smallC2R())
	pal := palette.New("p", palette.Color{R: 1, G: 0, B: 0, A: 1})
	ok := h.Accumulate(raster.Point{X: 5, Y: 5}, 0, 0.5, pal, palette.ModeStep)
	assert.True(t, ok)
	assert.Equal(t, 1.0, h.TotalHits())

	idx := h.c2r.Convert(raster.Point{X: 5, Y: 5})
	assert.InDelta(t, 0.5, h.Buckets[idx].R, 1e-9)
}

func TestApplyDEPreservesMassOnUniformField(t *testing.T) {
	c2r := smallC2R()
	h := New(c2r)
	for i := range h.Buckets {
		h.Buckets[i] = Bucket{R: 1, G: 1, B: 1, A: 1, Count: 200}
	}
	de := filter.BuildDE(0.2, 3, 0.5, 1, 16)
	const k1, k2 = 1.0, 1.0
	out := h.ApplyDE(de, k1, k2)

	// Every source pixel's log_scale is identical on a uniform field, and
	// each kernel's octant coefficients are normalized to sum to 1 across
	// their mirrored positions, so an interior bucket (away from the
	// unmirrored edge) should recover exactly that per-pixel log_scale.
	want := k1 * math.Log1p(1*k2) / 1
	mid := 5*h.W + 5
	assert.InDelta(t, want, out[mid].R, 0.05)
}

func TestApplyDELogScaleFallbackHasNoNeighborMixing(t *testing.T) {
	c2r := smallC2R()
	h := New(c2r)
	idx := 5*h.W + 5
	h.Buckets[idx] = Bucket{R: 2, G: 2, B: 2, A: 2}

	de := filter.DE{MaxRad: 0} // no Gaussian kernel: log-scale fallback
	const k1, k2 = 1.0, 1.0
	out := h.ApplyDE(de, k1, k2)

	want := k1 * math.Log1p(2*k2) / 2
	assert.InDelta(t, want*2, out[idx].R, 1e-9)
	// A neighbor with no hits must stay untouched: the fallback never
	// mixes mass between pixels.
	assert.Equal(t, Bucket{}, out[idx-1])
}

func TestDownsampleReducesSupersampleBlockToOnePixel(t *testing.T) {
	const w, h, ss, gutter, finalW, finalH = 8, 8, 2, 2, 2, 2
	buckets := make([]Bucket, w*h)
	for i := range buckets {
		buckets[i] = Bucket{R: 1, Count: 1}
	}
	sf := filter.BuildSpatial(filter.SpatialBox, 0.5, ss)
	out := Downsample(buckets, w, h, ss, gutter, finalW, finalH, sf)
	assert.Len(t, out, finalW*finalH)
	for _, b := range out {
		assert.Greater(t, b.R, 0.0)
	}
}

func TestCorrectReturnsBackgroundForEmptyBucket(t *testing.T) {
	bg := palette.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}
	c := Correct(Bucket{}, CorrectionParams{Background: bg, Gamma: 2.2})
	assert.Equal(t, bg, c)
}

func TestCorrectIsMonotonicInDensity(t *testing.T) {
	p := CorrectionParams{Gamma: 2.2, Vibrancy: 1, GammaThreshold: 0.01}
	low := Correct(Bucket{R: 0.05, G: 0.05, B: 0.05, A: 0.05}, p)
	high := Correct(Bucket{R: 0.5, G: 0.5, B: 0.5, A: 0.5}, p)
	assert.Greater(t, high.A, low.A)
}

func TestCorrectUsesAlphaNotRawHitCount(t *testing.T) {
	// Opacity-weighted alpha (A), not the unweighted hit counter (Count),
	// must drive brightness: two buckets with identical A but wildly
	// different Count must correct identically.
	p := CorrectionParams{Gamma: 2.2, Vibrancy: 1, GammaThreshold: 0.01}
	low := Correct(Bucket{R: 1, G: 1, B: 1, A: 1, Count: 1}, p)
	high := Correct(Bucket{R: 1, G: 1, B: 1, A: 1, Count: 1000}, p)
	assert.Equal(t, low, high)
}

func TestCorrectClampsHighlightsToUnitRange(t *testing.T) {
	p := CorrectionParams{Gamma: 1, Vibrancy: 1, GammaThreshold: 0.01, HighlightPower: 0.5}
	c := Correct(Bucket{R: 50, G: 50, B: 50, A: 50}, p)
	assert.LessOrEqual(t, c.R, 1.0)
	assert.LessOrEqual(t, c.G, 1.0)
	assert.LessOrEqual(t, c.B, 1.0)
}

func TestClipEarlyDisablesHighlightCompression(t *testing.T) {
	bucket := Bucket{R: 50, G: 50, B: 50, A: 50}
	late := CorrectionParams{Gamma: 1, Vibrancy: 1, GammaThreshold: 0.01, HighlightPower: 0.5, Clip: ClipLate}
	early := CorrectionParams{Gamma: 1, Vibrancy: 1, GammaThreshold: 0.01, HighlightPower: 0.5, Clip: ClipEarly}

	lateColor := Correct(bucket, late)
	earlyColor := Correct(bucket, early)

	// ClipEarly clamps the raw sample to 1 before HighlightPower ever sees
	// an over-unity value, so the compression curve has nothing left to
	// pull down; ClipLate lets it compress the true over-bright value,
	// landing strictly lower.
	assert.Equal(t, 1.0, earlyColor.R)
	assert.Less(t, lateColor.R, earlyColor.R)
}

func TestCorrectUnpremultiplyDiffersFromBackgroundComposite(t *testing.T) {
	bucket := Bucket{R: 0.3, G: 0.3, B: 0.3, A: 0.5}
	bg := palette.Color{R: 1, G: 1, B: 1, A: 1}
	composited := Correct(bucket, CorrectionParams{Gamma: 2.2, Vibrancy: 1, GammaThreshold: 0.01, Background: bg})
	unpremult := Correct(bucket, CorrectionParams{Gamma: 2.2, Vibrancy: 1, GammaThreshold: 0.01, Background: bg, Unpremultiply: true})
	assert.NotEqual(t, composited, unpremult)
}
