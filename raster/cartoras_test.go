package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertInverseRoundTrip(t *testing.T) {
	c := New(-1, -1, 1, 1, 100, 100, 1)
	for j := 0; j < 100; j++ {
		for i := 0; i < 100; i++ {
			p := c.InversePixelCenter(i, j)
			idx := c.Convert(p)
			wantIdx := i + 100*j
			assert.Equal(t, wantIdx, idx, "pixel (%d,%d)", i, j)
		}
	}
}

func TestTopLeftIsCartesianTopLeft(t *testing.T) {
	c := New(-1, -1, 1, 1, 10, 10, 1)
	idx := c.Convert(Point{X: -0.99, Y: 0.99})
	assert.Equal(t, 0, idx)
}

func TestInBoundsRespectsHalfOpenRange(t *testing.T) {
	c := New(0, 0, 10, 10, 10, 10, 1)
	assert.True(t, c.InBounds(Point{X: 0, Y: 0}))
	assert.False(t, c.InBounds(Point{X: 10, Y: 0}))
	assert.False(t, c.InBounds(Point{X: -0.01, Y: 0}))
}

func TestPaddedBoundsAreInset(t *testing.T) {
	c := New(0, 0, 10, 10, 10, 10, 1)
	assert.False(t, c.InPaddedBounds(Point{X: 0.5, Y: 0.5}))
	assert.True(t, c.InPaddedBounds(Point{X: 5, Y: 5}))
}

func TestSizeAndDimensions(t *testing.T) {
	c := New(0, 0, 4, 8, 40, 80, 1)
	w, h := c.Dimensions()
	assert.Equal(t, 40, w)
	assert.Equal(t, 80, h)
	assert.Equal(t, 3200, c.Size())
}
