package affine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityTransformIsNoOp(t *testing.T) {
	id := Identity[float64]()
	p := Vec[float64]{X: 3.25, Y: -7.5}
	got := id.TransformVector(p)
	assert.InDelta(t, p.X, got.X, 1e-12)
	assert.InDelta(t, p.Y, got.Y, 1e-12)
	assert.True(t, id.IsIdentity())
}

func TestInverseRoundTrip(t *testing.T) {
	a := Affine2D[float64]{A: 1.5, B: 0.25, C: 3, D: -0.5, E: 2, F: -1}
	inv, ok := a.Inverse()
	require.True(t, ok)
	back, ok := inv.Inverse()
	require.True(t, ok)
	assert.True(t, a.IsClose(back), "round-tripped inverse should match original")
}

func TestInverseFailsOnSingular(t *testing.T) {
	a := Affine2D[float64]{A: 1, B: 2, D: 2, E: 4} // det == 0
	_, ok := a.Inverse()
	assert.False(t, ok)
}

func TestRotateThenNegativeRotateIsIdentity(t *testing.T) {
	a := Affine2D[float64]{A: 1, B: 0, C: 5, D: 0, E: 1, F: -2}
	got := a.Rotate(37).Rotate(-37)
	assert.True(t, a.IsClose(got))
}

func TestTransformNormalDropsTranslation(t *testing.T) {
	a := Affine2D[float64]{A: 2, E: 2, C: 100, F: 100}
	v := a.TransformNormal(Vec[float64]{X: 1, Y: 1})
	assert.InDelta(t, 2.0, v.X, 1e-12)
	assert.InDelta(t, 2.0, v.Y, 1e-12)
}

func TestComposeMatchesSequentialApplication(t *testing.T) {
	a := Affine2D[float64]{A: 1, B: 0, C: 1, D: 0, E: 1, F: 0}
	b := Affine2D[float64]{A: 2, B: 0, C: 0, D: 0, E: 2, F: 0}
	c := Compose(a, b)
	p := Vec[float64]{X: 3, Y: 4}
	want := a.TransformVector(b.TransformVector(p))
	got := c.TransformVector(p)
	assert.InDelta(t, want.X, got.X, 1e-12)
	assert.InDelta(t, want.Y, got.Y, 1e-12)
}

func TestRotateScaleXToPreservesOrthogonality(t *testing.T) {
	a := Identity[float64]()
	target := Vec[float64]{X: 0, Y: 3}
	got := a.RotateScaleXTo(target)
	x, y := got.XAxis(), got.YAxis()
	dot := x.X*y.X + x.Y*y.Y
	assert.InDelta(t, 0.0, dot, 1e-9)
}

func TestFloat32Instantiation(t *testing.T) {
	a := Affine2D[float32]{A: 1, E: 1}
	assert.True(t, a.IsIdentity())
}
