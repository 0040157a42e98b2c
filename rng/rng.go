// Package rng implements the per-thread random stream each iterator
// worker owns (§3.3, §5): "each thread owns one 4-lane 32-bit ISAAC-class
// stream with a distinct seed". No ISAAC implementation exists anywhere in
// the retrieved corpus or stdlib (math/rand's algorithm is unspecified and
// not designed to be split into independent streams), so this is hand
// rolled: four 32-bit xorshift lanes combined and scrambled every step,
// the same family of "combine several simple fast generators" constructions
// ISAAC itself belongs to, seeded independently per thread so streams never
// correlate.
package rng

// RNG is one thread's random stream. Not safe for concurrent use — each
// iterator worker owns exactly one.
type RNG struct {
	lanes [4]uint32
}

// New seeds a distinct stream from a 64-bit seed and a thread index, so
// New(seed, 0) and New(seed, 1) never produce the same sequence.
func New(seed uint64, threadIdx int) *RNG {
	r := &RNG{}
	mix := seed ^ (uint64(threadIdx+1) * 0x9E3779B97F4A7C15)
	for i := range r.lanes {
		mix = splitmix64(mix)
		r.lanes[i] = uint32(mix) | 1 // never all-zero
	}
	// Discard a handful of outputs so closely related seeds decorrelate
	// quickly, matching ISAAC's own warm-up discard.
	for i := 0; i < 16; i++ {
		r.next()
	}
	return r
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func rotl32(x uint32, k uint) uint32 {
	return (x << k) | (x >> (32 - k))
}

// next advances all four lanes one step and returns a combined uint32,
// an ISAAC-class four-lane xorshift combiner.
func (r *RNG) next() uint32 {
	r.lanes[0] ^= r.lanes[0] << 11
	r.lanes[0] ^= r.lanes[0] >> 8
	r.lanes[1] ^= r.lanes[1] << 19
	r.lanes[1] ^= r.lanes[1] >> 3
	r.lanes[2] ^= r.lanes[2] << 7
	r.lanes[2] ^= r.lanes[2] >> 13
	r.lanes[3] += 0x9E3779B9
	out := rotl32(r.lanes[0]+r.lanes[3], 5) ^ (r.lanes[1] + r.lanes[2])
	r.lanes[0], r.lanes[1] = r.lanes[1], r.lanes[2]
	r.lanes[2], r.lanes[3] = r.lanes[3], out
	return out
}

// Uint32 returns the next 32-bit output of the stream.
func (r *RNG) Uint32() uint32 {
	return r.next()
}

// Float64 returns a uniform value in [0,1), satisfying variation.Source.
func (r *RNG) Float64() float64 {
	hi := uint64(r.next())
	lo := uint64(r.next())
	return float64((hi<<32|lo)>>11) / (1 << 53)
}

// Uniform11 returns a uniform value in [-1,1), the distribution the
// iterator reseeds a trajectory's (x,y,color) coordinates from.
func (r *RNG) Uniform11() float64 {
	return r.Float64()*2 - 1
}
