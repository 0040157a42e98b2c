// Package affine implements the 2x3 affine transform used by every Xform
// in the iterated-function-system: value semantics, column accessors, and
// the rotate/scale-axis helpers the camera and the GUI drag gestures need.
package affine

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Scalar is the numeric type an Affine2D is instantiated over. The core
// renders in float64 throughout; the type parameter exists so a single
// definition serves both that and any lower-precision instantiation a
// future caller needs, per Design Notes §9, without duplicating the type.
type Scalar interface {
	constraints.Float
}

// Vec is a 2D point or direction.
type Vec[S Scalar] struct {
	X, Y S
}

// Affine2D is x' = A*x + B*y + C; y' = D*x + E*y + F, stored column-wise as
// flam3/ember do: (A,D) is the transformed X axis, (B,E) the transformed Y
// axis, (C,F) the translation.
type Affine2D[S Scalar] struct {
	A, B, C S
	D, E, F S
}

// Identity returns the identity affine.
func Identity[S Scalar]() Affine2D[S] {
	return Affine2D[S]{A: 1, E: 1}
}

const closeTol = 1e-6

func closeS[S Scalar](a, b S) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return float64(d) <= closeTol
}

// IsClose reports whether every coefficient of the two affines differs by
// at most closeTol (an absolute tolerance, not a ULP count).
func (a Affine2D[S]) IsClose(b Affine2D[S]) bool {
	return closeS(a.A, b.A) && closeS(a.B, b.B) && closeS(a.C, b.C) &&
		closeS(a.D, b.D) && closeS(a.E, b.E) && closeS(a.F, b.F)
}

// IsIdentity reports whether a is the identity affine within tolerance.
func (a Affine2D[S]) IsIdentity() bool {
	return a.IsClose(Identity[S]())
}

// IsZero reports whether every coefficient of a is zero within tolerance.
func (a Affine2D[S]) IsZero() bool {
	var zero Affine2D[S]
	return a.IsClose(zero)
}

// XAxis returns the transformed X basis vector (A, D).
func (a Affine2D[S]) XAxis() Vec[S] { return Vec[S]{a.A, a.D} }

// YAxis returns the transformed Y basis vector (B, E).
func (a Affine2D[S]) YAxis() Vec[S] { return Vec[S]{a.B, a.E} }

// Translation returns the translation column (C, F).
func (a Affine2D[S]) Translation() Vec[S] { return Vec[S]{a.C, a.F} }

// TransformVector applies the full affine, including translation.
func (a Affine2D[S]) TransformVector(v Vec[S]) Vec[S] {
	return Vec[S]{
		X: a.A*v.X + a.B*v.Y + a.C,
		Y: a.D*v.X + a.E*v.Y + a.F,
	}
}

// TransformNormal applies only the rotation/scale part, dropping translation.
func (a Affine2D[S]) TransformNormal(v Vec[S]) Vec[S] {
	return Vec[S]{
		X: a.A*v.X + a.B*v.Y,
		Y: a.D*v.X + a.E*v.Y,
	}
}

// Translate returns a affine translated by v (translation is additive, the
// linear part is unchanged).
func (a Affine2D[S]) Translate(v Vec[S]) Affine2D[S] {
	a.C += v.X
	a.F += v.Y
	return a
}

// Determinant returns A*E - D*B.
func (a Affine2D[S]) Determinant() S {
	return a.A*a.E - a.D*a.B
}

// Inverse returns the inverse affine. ok is false when the determinant
// underflows to zero; callers must check it, per spec.
func (a Affine2D[S]) Inverse() (inv Affine2D[S], ok bool) {
	det := a.Determinant()
	if det == 0 || math.IsNaN(float64(det)) {
		return Affine2D[S]{}, false
	}
	invDet := 1 / det
	inv.A = a.E * invDet
	inv.B = -a.B * invDet
	inv.D = -a.D * invDet
	inv.E = a.A * invDet
	inv.C = -(inv.A*a.C + inv.B*a.F)
	inv.F = -(inv.D*a.C + inv.E*a.F)
	return inv, true
}

// Rotate right-multiplies a by a Z-axis rotation of degrees, preserving the
// translation column.
func (a Affine2D[S]) Rotate(degrees S) Affine2D[S] {
	rad := float64(degrees) * math.Pi / 180
	cs, sn := S(math.Cos(rad)), S(math.Sin(rad))
	return Affine2D[S]{
		A: a.A*cs + a.B*sn,
		B: -a.A*sn + a.B*cs,
		C: a.C,
		D: a.D*cs + a.E*sn,
		E: -a.D*sn + a.E*cs,
		F: a.F,
	}
}

// rotateScaleAxisTo computes the 2x2 that takes `from` to `target` via the
// helper scalars a=(from.to)/|from|^2, c=(from x to)/|from|^2, then composes
// it with the existing linear part (applied after it, so both axis columns
// are mapped by the same rotation/scale). Shared by
// RotateScaleXTo/RotateScaleYTo.
func rotateScaleAxisTo[S Scalar](lin Affine2D[S], from, target Vec[S]) Affine2D[S] {
	lenSq := from.X*from.X + from.Y*from.Y
	if lenSq == 0 {
		return lin
	}
	a := (from.X*target.X + from.Y*target.Y) / lenSq
	c := (from.X*target.Y - from.Y*target.X) / lenSq

	return Affine2D[S]{
		A: a*lin.A - c*lin.D,
		B: a*lin.B - c*lin.E,
		D: c*lin.A + a*lin.D,
		E: c*lin.B + a*lin.E,
		C: lin.C,
		F: lin.F,
	}
}

// RotateScaleXTo computes the affine taking the current X axis to target,
// applying the same 2x2 to the Y axis so the basis stays orthogonal under
// uniform scale/rotate drag gestures.
func (a Affine2D[S]) RotateScaleXTo(target Vec[S]) Affine2D[S] {
	return rotateScaleAxisTo(a, a.XAxis(), target)
}

// RotateScaleYTo is the Y-axis analog of RotateScaleXTo.
func (a Affine2D[S]) RotateScaleYTo(target Vec[S]) Affine2D[S] {
	return rotateScaleAxisTo(a, a.YAxis(), target)
}

// Compose returns b-then-a: applying the result to a point equals
// a.TransformVector(b.TransformVector(p)).
func Compose[S Scalar](a, b Affine2D[S]) Affine2D[S] {
	return Affine2D[S]{
		A: a.A*b.A + a.B*b.D,
		B: a.A*b.B + a.B*b.E,
		C: a.A*b.C + a.B*b.F + a.C,
		D: a.D*b.A + a.E*b.D,
		E: a.D*b.B + a.E*b.E,
		F: a.D*b.C + a.E*b.F + a.F,
	}
}
