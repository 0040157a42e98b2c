package render

import (
	"context"
	"fmt"
	"math"

	"github.com/flamecore/ember/flame"
	"github.com/flamecore/ember/palette"
)

// RenderStrips splits a render into `strips` horizontal bands (§4.9),
// rendering each with its own Renderer over a vertically re-centered
// camera so no single supersampled histogram has to cover the whole
// output at once. Strips are incompatible with TemporalSamples > 1: a
// strip has no way to agree with its neighbors on which sub-frame delta
// it is contributing to.
func RenderStrips(ctx context.Context, f *flame.Flame, seed uint64, strips int) ([]palette.Color, error) {
	return RenderStripsWithConfig(ctx, f, seed, strips, Config{})
}

// RenderStripsWithConfig is RenderStrips honoring the §6 Config options
// (e.g. EarlyClip) for every strip's correction pass.
func RenderStripsWithConfig(ctx context.Context, f *flame.Flame, seed uint64, strips int, cfg Config) ([]palette.Color, error) {
	if strips < 1 {
		strips = 1
	}
	if strips == 1 {
		r, err := NewRendererWithConfig(f, seed, cfg)
		if err != nil {
			return nil, err
		}
		return r.Run(ctx, nil)
	}
	if f.TemporalSamples > 1 {
		return nil, fmt.Errorf("render: strips incompatible with temporal_samples > 1 (got %d)", f.TemporalSamples)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	fullH := f.FinalRasH
	pixelsPerUnitY := f.PixelsPerUnit * math.Exp2(f.Zoom)
	halfH := float64(fullH) / (2 * pixelsPerUnitY)
	top := f.CenterY + halfH

	out := make([]palette.Color, f.FinalRasW*fullH)
	rowStart := 0
	for s := 0; s < strips; s++ {
		rowEnd := (s + 1) * fullH / strips
		stripRows := rowEnd - rowStart
		if stripRows <= 0 {
			rowStart = rowEnd
			continue
		}

		mid := float64(rowStart+rowEnd) / 2
		stripCenterY := top - mid/float64(fullH)*(2*halfH)

		stripFlame := *f
		stripFlame.FinalRasH = stripRows
		stripFlame.CenterY = stripCenterY

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUserAbort, ctx.Err())
		default:
		}

		r, err := NewRendererWithConfig(&stripFlame, seed+uint64(s), cfg)
		if err != nil {
			return nil, fmt.Errorf("render: strip %d of %d: %w", s, strips, err)
		}
		pixels, err := r.Run(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("render: strip %d of %d: %w", s, strips, err)
		}
		copy(out[rowStart*f.FinalRasW:rowEnd*f.FinalRasW], pixels)
		rowStart = rowEnd
	}
	return out, nil
}
