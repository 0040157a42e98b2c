package flame

import (
	"math"

	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/raster"
)

// Camera is the set of quantities derived once per render from a Flame's
// output geometry and camera fields (§4.5): the supersampled raster size
// including gutter, and the CarToRas projection that maps iterated points
// into that raster.
type Camera struct {
	Scale          float64 // 2^zoom
	ScaledQuality  float64
	PixelsPerUnitX float64
	PixelsPerUnitY float64

	LLX, LLY, URX, URY float64 // cartesian window, post-gutter

	GutterWidth      int
	SuperW, SuperH   int // supersampled raster dimensions including gutter
	CarToRas         raster.CarToRas
}

// Camera computes the derived render-time quantities from f's camera and
// filter fields (§4.5). f.Supersample must already be normalized to >=1
// (Flame.Validate does this).
func (f *Flame) Camera() Camera {
	var cam Camera
	cam.Scale = math.Exp2(f.Zoom)
	cam.ScaledQuality = f.Quality * cam.Scale * cam.Scale

	cam.PixelsPerUnitX = f.PixelsPerUnit * cam.Scale
	cam.PixelsPerUnitY = cam.PixelsPerUnitX
	if f.PixelAspectRatio != 0 {
		cam.PixelsPerUnitX /= f.PixelAspectRatio
	}

	superSample := f.Supersample
	if superSample < 1 {
		superSample = 1
	}

	spatialHalf := (filter.SpatialWidth(f.SpatialFilterRadius, superSample) - 1) / 2
	dePad := filter.DEMaxPadding(f.MinRadDE, f.MaxRadDE, superSample)
	cam.GutterWidth = spatialHalf + dePad

	coreW := f.FinalRasW * superSample
	coreH := f.FinalRasH * superSample
	cam.SuperW = coreW + 2*cam.GutterWidth
	cam.SuperH = coreH + 2*cam.GutterWidth

	// Half-extent of the core window in cartesian units, then expand by
	// the gutter in raster cells converted back to cartesian units.
	halfW := float64(f.FinalRasW) / (2 * f.PixelsPerUnit * cam.Scale)
	halfH := float64(f.FinalRasH) / (2 * f.PixelsPerUnit * cam.Scale)
	gutterUnitsX := float64(cam.GutterWidth) / (cam.PixelsPerUnitX * float64(superSample))
	gutterUnitsY := float64(cam.GutterWidth) / (cam.PixelsPerUnitY * float64(superSample))

	cam.LLX = f.CenterX - halfW - gutterUnitsX
	cam.URX = f.CenterX + halfW + gutterUnitsX
	cam.LLY = f.CenterY - halfH - gutterUnitsY
	cam.URY = f.CenterY + halfH + gutterUnitsY

	cam.CarToRas = raster.New(cam.LLX, cam.LLY, cam.URX, cam.URY, cam.SuperW, cam.SuperH, f.PixelAspectRatio)

	return cam
}
