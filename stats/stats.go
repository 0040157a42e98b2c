// Package stats holds the render-progress counters a Renderer reports
// through its progress callback (§4.8, §6).
package stats

import "time"

// EmberStats accumulates counters across one render. Callers read it
// between iteration batches; it is not safe for concurrent mutation —
// partial counts from separate workers are combined with Merge from a
// single goroutine.
type EmberStats struct {
	TotalIterations int64
	BadValues       int64
	IterMS          int64
	TotalRenderMS   int64
}

// Merge folds another worker's partial counts into s.
func (s *EmberStats) Merge(other EmberStats) {
	s.TotalIterations += other.TotalIterations
	s.BadValues += other.BadValues
	s.IterMS += other.IterMS
}

// AddIterDuration records the wall-clock cost of one iteration batch.
func (s *EmberStats) AddIterDuration(d time.Duration) {
	s.IterMS += d.Milliseconds()
}

// BadValueRate returns the fraction of iterations that produced a bad
// point (non-finite, or a coordinate beyond 1e10), a quality signal (a
// high rate usually means the flame itself is pathological, not that the
// renderer is broken).
func (s EmberStats) BadValueRate() float64 {
	if s.TotalIterations == 0 {
		return 0
	}
	return float64(s.BadValues) / float64(s.TotalIterations)
}
