package filter

import "math"

// TemporalType selects the sub-frame blend shape across temporal_samples.
type TemporalType int

const (
	TemporalBox TemporalType = iota
	TemporalGaussian
	TemporalExp
)

// Temporal is the precomputed per-sub-frame coefficient and delta vectors
// (§3.1 "Filter kernels"): Deltas[k] is sub-frame k's time offset in
// [-width/2, width/2] (0 for a single sample), Coefs[k] its blend weight,
// normalized to sum to 1.
type Temporal struct {
	Coefs  []float64
	Deltas []float64
}

// BuildTemporal constructs the temporal filter for the given sample count,
// width, and exponent (used only by TemporalExp).
func BuildTemporal(t TemporalType, samples int, width, exp float64) Temporal {
	if samples < 1 {
		samples = 1
	}
	coefs := make([]float64, samples)
	deltas := make([]float64, samples)
	sum := 0.0
	for k := 0; k < samples; k++ {
		var delta float64
		if samples == 1 {
			delta = 0
		} else {
			delta = (float64(k)/float64(samples-1) - 0.5) * width
		}
		deltas[k] = delta
		var c float64
		switch t {
		case TemporalGaussian:
			c = math.Exp(-2 * delta * delta / (width*width + 1e-12))
		case TemporalExp:
			e := exp
			if e == 0 {
				e = 1
			}
			c = math.Exp(-math.Abs(delta) * e)
		default: // TemporalBox
			c = 1
		}
		coefs[k] = c
		sum += c
	}
	if sum != 0 {
		for i := range coefs {
			coefs[i] /= sum
		}
	}
	return Temporal{Coefs: coefs, Deltas: deltas}
}
