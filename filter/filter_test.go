package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpatialKernelSumsToOne(t *testing.T) {
	s := BuildSpatial(SpatialGaussian, 0.5, 2)
	sum := 0.0
	for _, c := range s.Coefs {
		sum += c
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTemporalSingleSampleIsUnitBox(t *testing.T) {
	tf := BuildTemporal(TemporalBox, 1, 1, 1)
	assert.Len(t, tf.Coefs, 1)
	assert.InDelta(t, 1.0, tf.Coefs[0], 1e-12)
}

func TestTemporalWeightsSumToOne(t *testing.T) {
	tf := BuildTemporal(TemporalGaussian, 8, 1, 1)
	sum := 0.0
	for _, c := range tf.Coefs {
		sum += c
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDEKernelZeroSumsToOneAcrossMirror(t *testing.T) {
	d := BuildDE(0.2, 3, 0.5, 2, 16)
	k := 0
	w := d.Width(k)
	sum := 0.0
	for ii := -w; ii <= w; ii++ {
		for jj := -w; jj <= w; jj++ {
			v, _ := d.Coefficient(k, ii, jj)
			sum += v
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestKernelIndexForHitCountClampsToMax(t *testing.T) {
	d := BuildDE(0.2, 3, 0.5, 2, 10)
	idx := d.KernelIndexForHitCount(1e9)
	assert.Equal(t, 10, idx)
}

func TestKernelIndexForHitCountLinearBelowThreshold(t *testing.T) {
	d := BuildDE(0.2, 3, 0.5, 2, 1000)
	idx := d.KernelIndexForHitCount(50)
	assert.Equal(t, 50, idx)
}

func TestCacheRebuildsOnlyWhenKeyChanges(t *testing.T) {
	var c Cache
	k1 := NewKey(SpatialGaussian, 0.5, TemporalBox, 1, 1, 0.2, 3, 0.5, 1, 1)
	c.Ensure(k1, 16)
	first := c.Spatial()
	c.Ensure(k1, 16)
	assert.Equal(t, first.Width, c.Spatial().Width)

	k2 := NewKey(SpatialGaussian, 1.5, TemporalBox, 1, 1, 0.2, 3, 0.5, 1, 1)
	c.Ensure(k2, 16)
	assert.NotEqual(t, first.Width, c.Spatial().Width)
}
