// Package variation implements the named parametric warp functions an
// Xform sums together (§4.4). Variations self-register by name at init
// time and are looked up into a function-pointer table when an Xform is
// built, so the per-iteration hot path never does an interface type
// assertion or a name lookup — exactly the shape of mappers.RegisterMapper/
// mappers.Get, generalized from "mapper id -> Mapper" to "variation name ->
// Func", and of mos6502/opcodes.go's table-driven instruction dispatch.
package variation

import "fmt"

// Point is a 2D coordinate. It intentionally does not import the affine
// package's generic Vec: variations are a float64-only hot path (Design
// Notes §9 reserves genericity for the camera/affine math, not the
// per-sample warp functions).
type Point struct {
	X, Y float64
}

// Params are a variation's named parameters, e.g. "power" for julia.
// Nil or missing keys fall back to the variation's declared defaults.
type Params map[string]float64

// Source is a uniform random source, satisfied by *rng.RNG. Variations
// that need randomness (e.g. julia's branch selection) draw from the
// calling iterator's per-thread stream instead of a package-global
// generator, so a fixed seed reproduces bit-identical output end to end.
type Source interface {
	Float64() float64
}

// Func applies a variation to a pre-affine-transformed point. z is the
// current iterate's z coordinate, threaded through for 3D-capable
// variations in the original flam3 set; this module only implements 2D
// warps, so z is accepted but unused by every registered Func, matching
// how fractorium keeps the 3D hook even in 2D-only builds.
type Func func(in Point, z float64, p Params, src Source) Point

// Precalc derives cached fields from raw parameters, recomputed whenever a
// parameter changes (§4.4). Variations without derived fields pass nil.
type Precalc func(p Params) Params

// Variation is a registered warp: its apply function, optional precalc,
// and default parameters.
type Variation struct {
	Name     string
	Apply    Func
	Precalc  Precalc
	Defaults Params
}

var registry = map[string]Variation{}

// Register adds a variation to the global registry. Called from each
// variation file's init(), mirroring mappers.RegisterMapper.
func Register(v Variation) {
	if _, ok := registry[v.Name]; ok {
		panic(fmt.Sprintf("variation %q already registered", v.Name))
	}
	registry[v.Name] = v
}

// Get looks up a registered variation by name.
func Get(name string) (Variation, bool) {
	v, ok := registry[name]
	return v, ok
}

// Names returns every registered variation name, for validation and UIs.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

// ResolveParams merges user-supplied params over a variation's defaults,
// then runs Precalc if present. Call once at Xform-build time, never per
// iteration.
func ResolveParams(v Variation, user Params) Params {
	out := make(Params, len(v.Defaults)+len(user))
	for k, val := range v.Defaults {
		out[k] = val
	}
	for k, val := range user {
		out[k] = val
	}
	if v.Precalc != nil {
		derived := v.Precalc(out)
		for k, val := range derived {
			out[k] = val
		}
	}
	return out
}
