package filter

import "math"

const deThreshold = 100.0

// DE is the density-estimation pyramid (§3.1, §4.7): a set of precomputed
// radial kernels keyed by local hit count, each stored as one octant only
// (ii >= jj >= 0) — the eightfold symmetry is exploited at apply time by
// the histogram package, which mirrors each coefficient into up to 8
// positions with the multiplicity Coefficient returns.
type DE struct {
	MinRad, MaxRad, Curve float64
	Supersample           int
	MaxFilterIndex        int
	Widths                []int       // per kernel index: half-width hw
	Coefs                 [][]float64 // per kernel index: flat octant array
}

func octantIndex(ii, jj int) int { return ii*(ii+1)/2 + jj }

// octantMultiplicity returns how many of the 8 symmetric positions a given
// octant offset actually occupies: 1 at the center, 4 on an axis or the
// diagonal, 8 elsewhere (§4.7 bullet 3).
func octantMultiplicity(ii, jj int) int {
	switch {
	case ii == 0 && jj == 0:
		return 1
	case ii == jj || jj == 0:
		return 4
	default:
		return 8
	}
}

// DEMaxPadding returns the largest half-width the pyramid can produce,
// i.e. the gutter contribution from §4.5's
// "gutter width = ... + de_filter_max_padding".
func DEMaxPadding(minRad, maxRad float64, supersample int) int {
	radius := math.Max(minRad, maxRad)
	hw := int(math.Ceil(radius * float64(supersample)))
	if hw < 1 {
		hw = 1
	}
	return hw
}

// BuildDE constructs the kernel pyramid. Kernel 0 (lowest local hit count)
// gets the widest, blurriest kernel; kernel MaxFilterIndex (highest local
// hit count, least noise) gets the narrowest, matching DE's purpose of
// blurring more where fewer samples landed.
func BuildDE(minRad, maxRad, curve float64, supersample, maxFilterIndex int) DE {
	if maxFilterIndex < 1 {
		maxFilterIndex = 1
	}
	d := DE{
		MinRad: minRad, MaxRad: maxRad, Curve: curve, Supersample: supersample,
		MaxFilterIndex: maxFilterIndex,
		Widths:         make([]int, maxFilterIndex+1),
		Coefs:          make([][]float64, maxFilterIndex+1),
	}
	for k := 0; k <= maxFilterIndex; k++ {
		frac := float64(k) / float64(maxFilterIndex)
		radius := maxRad*(1-frac) + minRad*frac
		if radius < 0.2 {
			radius = 0.2
		}
		hw := int(math.Ceil(radius * float64(supersample)))
		if hw < 1 {
			hw = 1
		}
		d.Widths[k] = hw

		n := (hw + 1) * (hw + 2) / 2
		c := make([]float64, n)
		sigma := radius * float64(supersample)
		var total float64
		for ii := 0; ii <= hw; ii++ {
			for jj := 0; jj <= ii; jj++ {
				dist2 := float64(ii*ii + jj*jj)
				v := math.Exp(-2 * dist2 / (sigma*sigma + 1e-9))
				c[octantIndex(ii, jj)] = v
				total += v * float64(octantMultiplicity(ii, jj))
			}
		}
		if total != 0 {
			for i := range c {
				c[i] /= total
			}
		}
		d.Coefs[k] = c
	}
	return d
}

// KernelIndexForHitCount maps a local hit mass to a kernel index (§4.7
// bullet 2): linear below DE_THRESH, curved above it, clamped to
// MaxFilterIndex.
func (d DE) KernelIndexForHitCount(filterSelect float64) int {
	var idx float64
	if filterSelect < deThreshold {
		idx = filterSelect
	} else {
		idx = deThreshold + math.Floor(math.Pow(filterSelect-deThreshold, d.Curve))
	}
	if idx > float64(d.MaxFilterIndex) {
		idx = float64(d.MaxFilterIndex)
	}
	if idx < 0 {
		idx = 0
	}
	return int(idx)
}

// Width returns kernel k's half-width (its octant spans [0,Width(k)]^2).
func (d DE) Width(k int) int {
	return d.Widths[k]
}

// Coefficient returns kernel k's coefficient at offset (ii,jj) — either
// sign, either order — along with the mirror multiplicity callers must
// apply when distributing it to the up-to-8 symmetric neighbor positions.
func (d DE) Coefficient(k, ii, jj int) (v float64, mult int) {
	if ii < 0 {
		ii = -ii
	}
	if jj < 0 {
		jj = -jj
	}
	if ii < jj {
		ii, jj = jj, ii
	}
	w := d.Widths[k]
	if ii > w {
		return 0, 0
	}
	return d.Coefs[k][octantIndex(ii, jj)], octantMultiplicity(ii, jj)
}
