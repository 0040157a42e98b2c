// Package histogram implements the accumulation buffer, density-estimation
// and spatial downsample filters, and the final gamma/vibrancy/highlight
// color correction that turns iterated samples into output pixels (§4.7,
// §4.7.1). It generalizes ppu.PPU's flat indexed pixel buffer (written by a
// per-cycle tick loop, read back by a frame assembler) from []color (byte
// RGBA) to []Bucket (float RGBA, accumulated rather than overwritten).
package histogram

import (
	"math"

	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/palette"
	"github.com/flamecore/ember/raster"
)

// Bucket is one supersampled accumulation cell: summed color channels and
// a hit count, both needed before any density correction can be applied.
type Bucket struct {
	R, G, B, A float64
	Count      float64
}

// Histogram is the supersampled accumulation buffer, W x H buckets flat
// indexed row-major matching the CarToRas convention it is built from.
type Histogram struct {
	W, H    int
	Buckets []Bucket
	c2r     raster.CarToRas
}

// New allocates a zeroed histogram sized to c2r's raster dimensions.
func New(c2r raster.CarToRas) *Histogram {
	w, h := c2r.Dimensions()
	return &Histogram{W: w, H: h, Buckets: make([]Bucket, w*h), c2r: c2r}
}

// CarToRas returns the projection this histogram was built from, so a
// caller (the scheduler package) can allocate sibling histograms sharing
// the same raster.
func (h *Histogram) CarToRas() raster.CarToRas { return h.c2r }

// Accumulate adds one sample's contribution (§4.7 bullet 2-4): project to
// raster, look up the palette color scaled by opacity, and add it into the
// target bucket. The point is projected as given; it is not rotated around
// the flame's center, and no caller in this module rotates it either, so a
// flame's Rotate field has no effect on the image. Returns false if the sample
// fell outside the histogram's bounds (caller should not count it as
// dropped work — points legitimately escape the camera window).
func (h *Histogram) Accumulate(p raster.Point, colorX, opacity float64, pal *palette.Palette, mode palette.Mode) bool {
	if !h.c2r.InBounds(p) {
		return false
	}
	idx := h.c2r.Convert(p)
	if idx < 0 || idx >= len(h.Buckets) {
		return false
	}
	c := pal.Sample(colorX, mode)
	b := &h.Buckets[idx]
	b.R += c.R * opacity
	b.G += c.G * opacity
	b.B += c.B * opacity
	b.A += c.A * opacity
	b.Count++
	return true
}

// Merge adds another histogram's buckets into h, used to combine the
// partial histograms several parallel workers accumulated independently.
// Both histograms must share the same dimensions.
func (h *Histogram) Merge(other *Histogram) {
	for i := range h.Buckets {
		o := other.Buckets[i]
		b := &h.Buckets[i]
		b.R += o.R
		b.G += o.G
		b.B += o.B
		b.A += o.A
		b.Count += o.Count
	}
}

// TotalHits sums every bucket's hit count, the renderer's "total
// iterations landed in frame" statistic.
func (h *Histogram) TotalHits() float64 {
	var total float64
	for _, b := range h.Buckets {
		total += b.Count
	}
	return total
}

func (h *Histogram) at(col, row int) Bucket {
	if col < 0 || col >= h.W || row < 0 || row >= h.H {
		return Bucket{}
	}
	return h.Buckets[row*h.W+col]
}

// ApplyDE returns a new W x H buffer where each source bucket's
// opacity-weighted contribution has been scaled by its per-pixel
// log_scale density correction and, when de carries a Gaussian kernel
// (de.MaxRad > 0), scattered across a local footprint: buckets with few
// local hits spread across a wider, blurrier kernel than buckets in
// dense regions (§4.7 bullets 2-4). When de has no Gaussian kernel
// (de.MaxRad <= 0) this is the log-scale fallback, a trivially parallel
// per-pixel scale with no neighbor mixing. k1 and k2 are the two
// constants the caller derives once per render from brightness,
// supersample, render area, quality, and the temporal filter sum.
func (h *Histogram) ApplyDE(de filter.DE, k1, k2 float64) []Bucket {
	out := make([]Bucket, len(h.Buckets))

	logScale := func(a float64) float64 {
		if a <= 0 {
			return 0
		}
		return k1 * math.Log1p(a*k2) / a
	}

	if de.MaxRad <= 0 {
		for i, b := range h.Buckets {
			ls := logScale(b.A)
			out[i] = Bucket{R: b.R * ls, G: b.G * ls, B: b.B * ls, A: b.A * ls, Count: b.Count}
		}
		return out
	}

	ss := de.Supersample
	if ss < 1 {
		ss = 1
	}
	evenCorrection := 1.0
	if ss%2 == 0 {
		r := float64(ss) / float64(ss+1)
		evenCorrection = r * r
	}

	for row := 0; row < h.H; row++ {
		for col := 0; col < h.W; col++ {
			src := h.at(col, row)
			if src.A <= 0 {
				continue
			}

			var filterSelect float64
			for dy := -ss; dy <= ss; dy++ {
				for dx := -ss; dx <= ss; dx++ {
					filterSelect += h.at(col+dx, row+dy).A
				}
			}
			filterSelect *= evenCorrection

			k := de.KernelIndexForHitCount(filterSelect)
			w := de.Width(k)
			ls := logScale(src.A)
			scaled := Bucket{R: src.R * ls, G: src.G * ls, B: src.B * ls, A: src.A * ls, Count: src.Count * ls}

			contribute := func(dx, dy int, coef float64) {
				dc, dr := col+dx, row+dy
				if dc < 0 || dc >= h.W || dr < 0 || dr >= h.H {
					return
				}
				dst := &out[dr*h.W+dc]
				dst.R += scaled.R * coef
				dst.G += scaled.G * coef
				dst.B += scaled.B * coef
				dst.A += scaled.A * coef
				dst.Count += scaled.Count * coef
			}

			// Walk one octant (ii >= jj >= 0) and mirror each coefficient
			// into the up-to-8 symmetric positions it covers: the center
			// tile once, an axis or diagonal tile 4 times, otherwise 8.
			for ii := 0; ii <= w; ii++ {
				for jj := 0; jj <= ii; jj++ {
					coef, _ := de.Coefficient(k, ii, jj)
					if coef == 0 {
						continue
					}
					switch {
					case ii == 0 && jj == 0:
						contribute(0, 0, coef)
					case jj == 0:
						contribute(ii, 0, coef)
						contribute(-ii, 0, coef)
						contribute(0, ii, coef)
						contribute(0, -ii, coef)
					case ii == jj:
						contribute(ii, jj, coef)
						contribute(-ii, jj, coef)
						contribute(ii, -jj, coef)
						contribute(-ii, -jj, coef)
					default:
						contribute(ii, jj, coef)
						contribute(-ii, jj, coef)
						contribute(ii, -jj, coef)
						contribute(-ii, -jj, coef)
						contribute(jj, ii, coef)
						contribute(-jj, ii, coef)
						contribute(jj, -ii, coef)
						contribute(-jj, -ii, coef)
					}
				}
			}
		}
	}
	return out
}

// Downsample applies the spatial (anti-alias) filter and reduces a
// supersample x supersample block of buckets to one output pixel per
// final raster cell (§4.7 bullet 5). buckets must be W x H (the
// histogram's own buffer, or ApplyDE's output); gutter is the padding
// half-width added on every side beyond the core final_ras_w*supersample
// region.
func Downsample(buckets []Bucket, w, h, supersample, gutter, finalW, finalH int, sf filter.Spatial) []Bucket {
	out := make([]Bucket, finalW*finalH)
	half := sf.Width / 2
	at := func(col, row int) Bucket {
		if col < 0 || col >= w || row < 0 || row >= h {
			return Bucket{}
		}
		return buckets[row*w+col]
	}
	for oy := 0; oy < finalH; oy++ {
		for ox := 0; ox < finalW; ox++ {
			var acc Bucket
			baseCol := gutter + ox*supersample
			baseRow := gutter + oy*supersample
			for sy := 0; sy < supersample; sy++ {
				for sx := 0; sx < supersample; sx++ {
					cx, cy := baseCol+sx, baseRow+sy
					for fj := -half; fj <= half; fj++ {
						for fi := -half; fi <= half; fi++ {
							coef := sf.At(fi+half, fj+half)
							if coef == 0 {
								continue
							}
							b := at(cx+fi, cy+fj)
							acc.R += b.R * coef
							acc.G += b.G * coef
							acc.B += b.B * coef
							acc.A += b.A * coef
							acc.Count += b.Count * coef
						}
					}
				}
			}
			out[oy*finalW+ox] = acc
		}
	}
	return out
}

// ClipMode selects when an over-unity linear sample is clamped to [0,1]
// relative to gamma/vibrancy/highlight correction (§4.7.1). ClipLate (the
// default) lets highlight compression see the true over-bright value before
// anything is clamped; ClipEarly clamps the raw log-scaled sample first, so
// highlight compression never engages.
type ClipMode int

const (
	ClipLate ClipMode = iota
	ClipEarly
)

// CorrectionParams bundles the §4.7.1 color-correction inputs.
type CorrectionParams struct {
	Gamma          float64
	GammaThreshold float64
	Vibrancy       float64
	HighlightPower float64
	Background     palette.Color
	Clip           ClipMode
	// Unpremultiply is set when the output has 4 channels and
	// transparency is enabled: the background is not composited into
	// RGB (§4.7.1's "if not using transparency... add background"
	// branch is skipped) and the result is un-premultiplied by alpha
	// instead, matching the original's 4-channel transparent path.
	Unpremultiply bool
}

// paletteCalcAlpha is palette_calc_alpha (§4.7.1): a, raised to 1/gamma,
// below linrange is a smooth ramp from 0 to linrange^g (blending the
// linear tangent at 0 with the full power curve by a/linrange) rather
// than the power curve itself, which would have unbounded slope at 0;
// at and above linrange it is the plain power curve.
func paletteCalcAlpha(a, g, linrange float64) float64 {
	if a <= 0 {
		return 0
	}
	if linrange <= 0 || a >= linrange {
		return math.Pow(a, g)
	}
	frac := a / linrange
	tangent := a * math.Pow(linrange, g-1)
	return (1-frac)*tangent + frac*math.Pow(a, g)
}

// Correct converts one downsampled bucket into a final display color
// (§4.7.1): palette_calc_alpha for the bucket's opacity-weighted alpha,
// a vibrancy blend between that alpha-scaled color and the raw
// gamma-corrected channel, highlight compression for over-bright
// pixels, and (unless the caller wants a 4-channel transparent,
// un-premultiplied result) composited over Background.
func Correct(b Bucket, p CorrectionParams) palette.Color {
	if b.A <= 0 {
		return p.Background
	}

	gEff := 1.0
	if p.Gamma != 0 {
		gEff = 1 / p.Gamma
	}

	// alphaRaw feeds ls unclamped — it can run well past 1 for a dense
	// bucket, which is what lets the highlight-power curve below see and
	// compress the true over-bright value. Only the alpha this function
	// returns is clamped to [0,1].
	alphaRaw := paletteCalcAlpha(b.A, gEff, p.GammaThreshold)
	alpha := alphaRaw
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	ls := p.Vibrancy * alphaRaw / b.A
	newR, newG, newB := ls*b.R, ls*b.G, ls*b.B

	if p.Clip == ClipEarly {
		newR, newG, newB = math.Min(newR, 1), math.Min(newG, 1), math.Min(newB, 1)
	}

	if p.HighlightPower > 0 {
		maxc := math.Max(newR, math.Max(newG, newB))
		if maxc > 1 {
			hscale := math.Pow(maxc, p.HighlightPower-1) / maxc
			newR *= hscale
			newG *= hscale
			newB *= hscale
		}
	}

	rawGamma := func(raw float64) float64 {
		if raw <= 0 {
			return 0
		}
		return math.Pow(raw, gEff)
	}

	channel := func(newc, raw, bg float64) float64 {
		v := newc + (1-p.Vibrancy)*rawGamma(raw)
		if p.Unpremultiply {
			if alpha > 0 {
				v /= alpha
			} else {
				v = 0
			}
		} else {
			v += (1 - alpha) * bg
		}
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}

	return palette.Color{
		R: channel(newR, b.R, p.Background.R),
		G: channel(newG, b.G, p.Background.G),
		B: channel(newB, b.B, p.Background.B),
		A: alpha,
	}
}
