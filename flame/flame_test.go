package flame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamecore/ember/affine"
	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/palette"
	_ "github.com/flamecore/ember/variation" // registers linear, sinusoidal, ...
)

func linearXform(weight float64) Xform {
	return Xform{
		Weight: weight,
		Pre:    affine.Identity[float64](),
		Post:   affine.Identity[float64](),
		Variations: []WeightedVariation{
			{Name: "linear", Weight: 1},
		},
	}
}

func sierpinski(t *testing.T) *Flame {
	t.Helper()
	f := &Flame{
		Xforms: []Xform{
			{Weight: 1, Pre: affine.Affine2D[float64]{A: 0.5, E: 0.5}, Post: affine.Identity[float64](), Variations: []WeightedVariation{{Name: "linear", Weight: 1}}},
			{Weight: 1, Pre: affine.Affine2D[float64]{A: 0.5, E: 0.5, C: 0.5}, Post: affine.Identity[float64](), Variations: []WeightedVariation{{Name: "linear", Weight: 1}}},
			{Weight: 1, Pre: affine.Affine2D[float64]{A: 0.5, E: 0.5, F: 0.5}, Post: affine.Identity[float64](), Variations: []WeightedVariation{{Name: "linear", Weight: 1}}},
		},
		FinalRasW: 64, FinalRasH: 64,
		Supersample:     1,
		Quality:         10,
		TemporalSamples: 1,
		PixelsPerUnit:   32,
		Zoom:            0,
		Palette:         palette.Grayscale256("sierpinski"),
		SpatialFilterType:   filter.SpatialGaussian,
		SpatialFilterRadius: 0.5,
		MinRadDE:            0.2,
		MaxRadDE:            3,
	}
	require.NoError(t, f.Validate())
	require.NoError(t, f.BuildAll())
	return f
}

func TestXformBuildResolvesRegisteredVariation(t *testing.T) {
	x := linearXform(1)
	require.NoError(t, x.Build())
	out := x.Apply(affine.Vec[float64]{X: 2, Y: 3}, 0, fixedSrc{})
	assert.InDelta(t, 2.0, out.X, 1e-12)
	assert.InDelta(t, 3.0, out.Y, 1e-12)
}

func TestXformBuildRejectsUnknownVariation(t *testing.T) {
	x := linearXform(1)
	x.Variations = append(x.Variations, WeightedVariation{Name: "not-a-real-variation"})
	assert.Error(t, x.Build())
}

func TestFlameValidateRequiresXforms(t *testing.T) {
	f := &Flame{FinalRasW: 10, FinalRasH: 10, Palette: palette.Grayscale256("x"), PixelsPerUnit: 1}
	assert.Error(t, f.Validate())
}

func TestFlameValidateRequiresPalette(t *testing.T) {
	f := &Flame{Xforms: []Xform{linearXform(1)}, FinalRasW: 10, FinalRasH: 10, PixelsPerUnit: 1}
	assert.Error(t, f.Validate())
}

func TestFlameValidateNormalizesSupersampleAndTemporalSamples(t *testing.T) {
	f := &Flame{Xforms: []Xform{linearXform(1)}, FinalRasW: 10, FinalRasH: 10, Palette: palette.Grayscale256("x"), PixelsPerUnit: 1}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Supersample)
	assert.Equal(t, 1, f.TemporalSamples)
}

func TestTotalWeightSumsXforms(t *testing.T) {
	f := &Flame{Xforms: []Xform{linearXform(2), linearXform(3)}}
	assert.InDelta(t, 5.0, f.TotalWeight(), 1e-12)
}

func TestCameraGutterGrowsWithFilterRadius(t *testing.T) {
	f := sierpinski(t)
	narrow := f.Camera()

	f.SpatialFilterRadius = 4
	wide := f.Camera()

	assert.Greater(t, wide.GutterWidth, narrow.GutterWidth)
	assert.Greater(t, wide.SuperW, narrow.SuperW)
}

func TestCameraSuperDimensionsIncludeSupersample(t *testing.T) {
	f := sierpinski(t)
	f.Supersample = 2
	cam := f.Camera()
	assert.Equal(t, f.FinalRasW*2+2*cam.GutterWidth, cam.SuperW)
	assert.Equal(t, f.FinalRasH*2+2*cam.GutterWidth, cam.SuperH)
}

func TestCameraCarToRasCoversCoreWindow(t *testing.T) {
	f := sierpinski(t)
	cam := f.Camera()
	w, h := cam.CarToRas.Dimensions()
	assert.Equal(t, cam.SuperW, w)
	assert.Equal(t, cam.SuperH, h)
}

type fixedSrc struct{}

func (fixedSrc) Float64() float64 { return 0.5 }
