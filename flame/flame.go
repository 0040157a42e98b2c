package flame

import (
	"fmt"

	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/palette"
)

// Flame is the complete scene description of one IFS (§3.1). It owns its
// Xforms, optional FinalXform, and Palette; everything else is a value.
type Flame struct {
	Name string

	Xforms     []Xform
	HasFinal   bool
	FinalXform FinalXform

	// Output geometry.
	FinalRasW, FinalRasH int
	Supersample          int // oversample factor applied before spatial filtering
	Quality              float64
	TemporalSamples      int

	// Camera.
	CenterX, CenterY float64
	Rotate           float64 // degrees
	Zoom             float64
	PixelsPerUnit    float64
	PixelAspectRatio float64

	// Color correction (§4.7.1).
	Brightness     float64
	Gamma          float64
	GammaThreshold float64
	Vibrancy       float64
	HighlightPower float64
	Background     palette.Color

	Palette     *palette.Palette
	PaletteMode palette.Mode
	Hue         float64 // palette-wide hue rotation applied at render time

	// Filters.
	SpatialFilterType   filter.SpatialType
	SpatialFilterRadius float64
	TemporalFilterType  filter.TemporalType
	TemporalFilterWidth float64
	TemporalFilterExp   float64

	MinRadDE, MaxRadDE, CurveDE float64

	InterpType       int // reserved for future keyframe interpolation
	AffineInterpType int // reserved for future keyframe interpolation

	// Passes is accepted for file-format compatibility and otherwise
	// ignored (Open Question decision, DESIGN.md): no multi-pass temporal
	// accumulation is implemented.
	Passes int
}

// Validate checks the invariants rendering relies on (§3.1, §7): at least
// one xform, positive output dimensions, a non-nil palette, and a positive
// pixels_per_unit; it raises Supersample and TemporalSamples to at least 1.
// Variation names are not checked here: BuildAll reports unknown ones.
func (f *Flame) Validate() error {
	if len(f.Xforms) == 0 {
		return fmt.Errorf("flame: at least one xform is required")
	}
	if f.FinalRasW <= 0 || f.FinalRasH <= 0 {
		return fmt.Errorf("flame: final raster dimensions must be positive, got %dx%d", f.FinalRasW, f.FinalRasH)
	}
	if f.Palette == nil {
		return fmt.Errorf("flame: palette is required")
	}
	if f.Supersample < 1 {
		f.Supersample = 1
	}
	if f.TemporalSamples < 1 {
		f.TemporalSamples = 1
	}
	if f.PixelsPerUnit <= 0 {
		return fmt.Errorf("flame: pixels_per_unit must be positive, got %v", f.PixelsPerUnit)
	}
	return nil
}

// BuildAll resolves the variation dispatch table of every xform and the
// final xform, if present. Call once after mutating Xforms/FinalXform and
// before rendering.
func (f *Flame) BuildAll() error {
	for i := range f.Xforms {
		if err := f.Xforms[i].Build(); err != nil {
			return fmt.Errorf("flame: xform %d: %w", i, err)
		}
	}
	if f.HasFinal {
		if err := f.FinalXform.Build(); err != nil {
			return fmt.Errorf("flame: final xform: %w", err)
		}
	}
	return nil
}

// TotalWeight sums every xform's selection weight, the denominator for
// uniform Markov-chain selection (§4.6).
func (f *Flame) TotalWeight() float64 {
	var total float64
	for _, x := range f.Xforms {
		total += x.Weight
	}
	return total
}
