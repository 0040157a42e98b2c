package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeSumsCounters(t *testing.T) {
	var s EmberStats
	s.Merge(EmberStats{TotalIterations: 10, BadValues: 1, IterMS: 5})
	s.Merge(EmberStats{TotalIterations: 20, BadValues: 0, IterMS: 7})
	assert.EqualValues(t, 30, s.TotalIterations)
	assert.EqualValues(t, 1, s.BadValues)
	assert.EqualValues(t, 12, s.IterMS)
}

func TestBadValueRateZeroWhenNoIterations(t *testing.T) {
	var s EmberStats
	assert.Equal(t, 0.0, s.BadValueRate())
}

func TestAddIterDurationAccumulatesMilliseconds(t *testing.T) {
	var s EmberStats
	s.AddIterDuration(250 * time.Millisecond)
	s.AddIterDuration(10 * time.Millisecond)
	assert.EqualValues(t, 260, s.IterMS)
}
