// Package flame implements the Ember/Flame scene graph (§3.1, §4.4, §4.5):
// Xform, FinalXform, Flame, and the per-render camera derivation. Flame
// exclusively owns its Xforms, FinalXform, and Palette; everything else in
// this module borrows by value or by index, never by back-pointer (Design
// Notes §9: "reshape as indices into the Flame's xform vector").
package flame

import (
	"fmt"

	"github.com/flamecore/ember/affine"
	"github.com/flamecore/ember/variation"
)

// WeightedVariation is one named, weighted variation contribution to an
// Xform's warp sum (§4.4).
type WeightedVariation struct {
	Name   string
	Weight float64
	Params variation.Params
}

// resolved is the function-pointer-table entry built once at Xform.Build
// time (Design Notes §9: "reserve dynamic dispatch for rarely-used
// variations... function-pointer table populated at Xform build time").
type resolved struct {
	fn     variation.Func
	weight float64
	params variation.Params
}

// Xform is one transform of the IFS (§3.1).
type Xform struct {
	Weight      float64
	ColorX      float64 // palette-index coordinate, not a color (§3.1 invariant)
	ColorSpeed  float64 // in [-1,1]
	Opacity     float64 // in [0,1]
	DirectColor float64 // in [0,1]
	Pre         affine.Affine2D[float64]
	Post        affine.Affine2D[float64]
	Variations  []WeightedVariation

	// Xaos[j] biases the probability of selecting xform j immediately
	// after this one (§4.4). Nil or all-ones means uniform selection.
	Xaos []float64

	dispatch []resolved
}

// Build resolves every variation name into its function pointer and
// precalculated parameters. Must be called once after construction and
// again whenever Variations changes; never call per iteration.
func (x *Xform) Build() error {
	x.dispatch = x.dispatch[:0]
	for _, wv := range x.Variations {
		v, ok := variation.Get(wv.Name)
		if !ok {
			return fmt.Errorf("flame: unknown variation %q", wv.Name)
		}
		x.dispatch = append(x.dispatch, resolved{
			fn:     v.Apply,
			weight: wv.Weight,
			params: variation.ResolveParams(v, wv.Params),
		})
	}
	return nil
}

// Apply runs pre-affine -> weighted variation sum -> post-affine, the
// per-iteration Xform transform (§4.4).
func (x *Xform) Apply(p affine.Vec[float64], z float64, src variation.Source) affine.Vec[float64] {
	pre := x.Pre.TransformVector(p)
	in := variation.Point{X: pre.X, Y: pre.Y}
	var sum variation.Point
	for _, r := range x.dispatch {
		out := r.fn(in, z, r.params, src)
		sum.X += r.weight * out.X
		sum.Y += r.weight * out.Y
	}
	return x.Post.TransformVector(affine.Vec[float64]{X: sum.X, Y: sum.Y})
}

// FinalXform is applied after every iteration but never selected by the
// transform picker (§3.1).
type FinalXform struct {
	Xform
}
