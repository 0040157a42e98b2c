package filter

import "math"

// Key is an exact-bits cache key for the three filter caches (Design
// Notes §9: "Filter caches keyed by floating-point parameters: compare
// with an exact-bits cache key after canonicalizing NaNs; rebuild when any
// key field differs").
type Key struct {
	SpatialType              SpatialType
	SpatialRadius            uint64
	TemporalType              TemporalType
	TemporalWidth, TemporalExp uint64
	MinRadDE, MaxRadDE, CurveDE uint64
	Supersample, TemporalSamples int
}

// canonicalBits returns the IEEE-754 bit pattern of f, canonicalizing NaN
// to a single representative so two differently-payloaded NaNs compare
// equal (a NaN filter parameter should never cause a spurious cache miss
// loop).
func canonicalBits(f float64) uint64 {
	if math.IsNaN(f) {
		return math.Float64bits(math.NaN())
	}
	return math.Float64bits(f)
}

// NewKey builds a Key from the flame filter parameters a renderer's cache
// is keyed by.
func NewKey(st SpatialType, spatialRadius float64, tt TemporalType, temporalWidth, temporalExp float64, minRadDE, maxRadDE, curveDE float64, supersample, temporalSamples int) Key {
	return Key{
		SpatialType:      st,
		SpatialRadius:    canonicalBits(spatialRadius),
		TemporalType:     tt,
		TemporalWidth:    canonicalBits(temporalWidth),
		TemporalExp:      canonicalBits(temporalExp),
		MinRadDE:         canonicalBits(minRadDE),
		MaxRadDE:         canonicalBits(maxRadDE),
		CurveDE:          canonicalBits(curveDE),
		Supersample:      supersample,
		TemporalSamples:  temporalSamples,
	}
}

// Cache lazily builds and memoizes Spatial/Temporal/DE kernels by Key.
type Cache struct {
	key      Key
	hasKey   bool
	spatial  Spatial
	temporal Temporal
	de       DE
}

// Ensure rebuilds any kernel whose Key differs from the cached one.
func (c *Cache) Ensure(key Key, maxFilterIndex int) {
	if c.hasKey && c.key == key {
		return
	}
	c.spatial = BuildSpatial(key.SpatialType, math.Float64frombits(key.SpatialRadius), key.Supersample)
	c.temporal = BuildTemporal(key.TemporalType, key.TemporalSamples, math.Float64frombits(key.TemporalWidth), math.Float64frombits(key.TemporalExp))
	c.de = BuildDE(math.Float64frombits(key.MinRadDE), math.Float64frombits(key.MaxRadDE), math.Float64frombits(key.CurveDE), key.Supersample, maxFilterIndex)
	c.key = key
	c.hasKey = true
}

func (c *Cache) Spatial() Spatial   { return c.spatial }
func (c *Cache) Temporal() Temporal { return c.temporal }
func (c *Cache) DE() DE             { return c.de }
