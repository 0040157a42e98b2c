package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeutralAdjustmentsAreIdempotent(t *testing.T) {
	src := Grayscale256("gray")
	got := src.HueRotate(0).Saturate(1).Brighten(0).Contrast(0).Blur(0).Frequency(1)
	for i := range src.Entries {
		assert.InDelta(t, src.Entries[i].R, got.Entries[i].R, 1e-9, "index %d", i)
		assert.InDelta(t, src.Entries[i].G, got.Entries[i].G, 1e-9, "index %d", i)
		assert.InDelta(t, src.Entries[i].B, got.Entries[i].B, 1e-9, "index %d", i)
	}
}

func TestAdjustmentsAreSourcePreserving(t *testing.T) {
	src := Grayscale256("gray")
	before := src.Entries[128]
	_ = src.HueRotate(90)
	assert.Equal(t, before, src.Entries[128])
}

func TestStepSamplingPicksNearestIndex(t *testing.T) {
	p := Grayscale256("gray")
	c := p.Sample(0.5, ModeStep)
	assert.InDelta(t, p.Entries[128].R, c.R, 1e-9)
}

func TestLinearSamplingInterpolates(t *testing.T) {
	p := &Palette{}
	p.Entries[0] = Color{R: 0}
	p.Entries[1] = Color{R: 1}
	c := p.Sample(1.0/256.0/2, ModeLinear)
	assert.InDelta(t, 0.5, c.R, 1e-6)
}

func TestLinearSamplingClampsTopEdge(t *testing.T) {
	p := Grayscale256("gray")
	c := p.Sample(1.0, ModeLinear)
	assert.InDelta(t, p.Entries[255].R, c.R, 1e-9)
}

func TestBrightenClamps(t *testing.T) {
	p := New("white", Color{R: 1, G: 1, B: 1, A: 1})
	got := p.Brighten(0.5)
	assert.Equal(t, 1.0, got.Entries[0].R)
}

func TestFrequencyRepeatsShape(t *testing.T) {
	p := &Palette{}
	for i := 0; i < Size; i++ {
		p.Entries[i] = Color{R: float64(i % 2)}
	}
	got := p.Frequency(2)
	assert.Equal(t, p.Entries[0].R, got.Entries[0].R)
}
