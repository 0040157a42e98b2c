// Package filter precomputes the three kernel tables the renderer applies
// downstream of iteration (§2.7, §4.7): the spatial (final anti-alias)
// filter, the temporal (sub-frame blend) filter, and the density-estimation
// (DE) pyramid. All three are pure functions of the flame's filter
// parameters and are cached by an exact-bits key (Design Notes §9:
// "compare with an exact-bits cache key after canonicalizing NaNs"),
// mirroring ppu.loopy's bitfield-packed small-table addressing.
package filter

import "math"

// SpatialType selects the kernel shape for the final downsample filter.
type SpatialType int

const (
	SpatialGaussian SpatialType = iota
	SpatialHermite
	SpatialBox
	SpatialTriangle
	SpatialMitchell
)

// Spatial is a precomputed square fw x fw coefficient grid, normalized to
// sum to 1, keyed by (type, radius, supersample).
type Spatial struct {
	Width int // fw
	Coefs []float64 // row-major, Width*Width
}

// At returns the coefficient at grid offset (i,j), 0 <= i,j < Width.
func (s Spatial) At(i, j int) float64 {
	return s.Coefs[j*s.Width+i]
}

func kernelShape(t SpatialType, d float64) float64 {
	switch t {
	case SpatialBox:
		if math.Abs(d) <= 1 {
			return 1
		}
		return 0
	case SpatialTriangle:
		v := 1 - math.Abs(d)
		if v < 0 {
			return 0
		}
		return v
	case SpatialHermite:
		ad := math.Abs(d)
		if ad > 1 {
			return 0
		}
		return 2*ad*ad*ad - 3*ad*ad + 1
	case SpatialMitchell:
		return mitchell(d)
	default: // SpatialGaussian
		return math.Exp(-2 * d * d)
	}
}

func mitchell(x float64) float64 {
	const b, c = 1.0 / 3, 1.0 / 3
	x = math.Abs(x)
	if x < 1 {
		return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
	}
	if x < 2 {
		return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	}
	return 0
}

// SpatialWidth returns the fw (full kernel width) derived from radius and
// supersample (§4.5: filter width feeds directly into the gutter
// computation).
func SpatialWidth(radius float64, supersample int) int {
	hw := int(math.Ceil(radius * float64(supersample)))
	if hw < 1 {
		hw = 1
	}
	return hw*2 + 1
}

// BuildSpatial constructs and normalizes the fw x fw coefficient grid for
// the given type/radius/supersample.
func BuildSpatial(t SpatialType, radius float64, supersample int) Spatial {
	fw := SpatialWidth(radius, supersample)
	half := float64(fw-1) / 2
	scale := radius
	if scale == 0 {
		scale = 1
	}
	coefs := make([]float64, fw*fw)
	sum := 0.0
	for j := 0; j < fw; j++ {
		for i := 0; i < fw; i++ {
			dx := (float64(i) - half) / (scale * float64(supersample))
			dy := (float64(j) - half) / (scale * float64(supersample))
			v := kernelShape(t, dx) * kernelShape(t, dy)
			coefs[j*fw+i] = v
			sum += v
		}
	}
	if sum != 0 {
		for i := range coefs {
			coefs[i] /= sum
		}
	}
	return Spatial{Width: fw, Coefs: coefs}
}
