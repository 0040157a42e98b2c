// Package scheduler fans a render's iteration workload out across a
// bounded worker pool (§4.9): each worker owns its own rng.RNG stream and
// iterator.Iterator and accumulates into its own histogram.Histogram, and
// the partial histograms are merged once every worker finishes. This
// generalizes psteitz-ifs/fractals.juliaMulti's channel-fed worker pool
// (push N job numbers into a channel, start nworkers goroutines, wait for
// all to signal done) into a typed, cancellable pool built on
// golang.org/x/sync/errgroup and golang.org/x/sync/semaphore instead of a
// hand-rolled jobs/done channel pair, so a worker's error or a cancelled
// context actually stops its siblings instead of leaking goroutines.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/flamecore/ember/flame"
	"github.com/flamecore/ember/histogram"
	"github.com/flamecore/ember/iterator"
	"github.com/flamecore/ember/raster"
	"github.com/flamecore/ember/rng"
)

// ErrNilHistogram means RunIterations was asked to accumulate into a nil
// destination histogram.
var ErrNilHistogram = errors.New("scheduler: destination histogram is nil")

// Config controls how a render's iteration workload is split (§4.9).
type Config struct {
	ThreadCount  int // number of concurrent workers; <1 means 1
	SubBatchSize int // iterations each worker runs before checking ctx
	Seed         uint64
	FuseLength   int // leading iterations discarded per worker before it starts emitting
}

func (c Config) normalized() Config {
	if c.ThreadCount < 1 {
		c.ThreadCount = 1
	}
	if c.SubBatchSize < 1 {
		c.SubBatchSize = 4096
	}
	if c.FuseLength < 1 {
		c.FuseLength = 20
	}
	return c
}

// RunIterations distributes totalIterations across cfg.ThreadCount workers,
// each iterating f into its own histogram sharing dst's CarToRas, then
// merges every worker's histogram into dst. It returns the combined
// bad-value count.
//
// Strip-splitting (vertically re-centered cameras per worker, §4.9) is the
// caller's responsibility: it requires one Flame (with a re-centered
// CenterY) and one Renderer per strip, since a single Histogram only has
// one CarToRas. §4.9 also forbids combining strip-splitting, or this
// function's own per-worker split, with temporal_samples > 1: every worker
// would need to agree on which sub-frame delta it is contributing to, so
// RunIterations falls back to a single worker whenever TemporalSamples > 1.
func RunIterations(ctx context.Context, f *flame.Flame, dst *histogram.Histogram, totalIterations int64, cfg Config) (badValues int64, err error) {
	cfg = cfg.normalized()
	if totalIterations <= 0 {
		return 0, nil
	}
	if f.TemporalSamples > 1 {
		cfg.ThreadCount = 1
	}
	if totalIterations < int64(cfg.ThreadCount) {
		cfg.ThreadCount = 1
	}
	if dst == nil {
		return 0, ErrNilHistogram
	}

	c2r := dst.CarToRas()
	perWorker := make([]*histogram.Histogram, cfg.ThreadCount)
	perWorkerBad := make([]int64, cfg.ThreadCount)
	shares := splitEvenly(totalIterations, cfg.ThreadCount)

	sem := semaphore.NewWeighted(int64(cfg.ThreadCount))
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < cfg.ThreadCount; w++ {
		w := w
		share := shares[w]
		if share == 0 {
			continue
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			h := histogram.New(c2r)
			perWorker[w] = h

			src := rng.New(cfg.Seed, w)
			it, err := iterator.New(f, src)
			if err != nil {
				return fmt.Errorf("scheduler: worker %d: %w", w, err)
			}

			fuse := cfg.FuseLength
			remaining := share
			for remaining > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				n := cfg.SubBatchSize
				if int64(n) > remaining {
					n = int(remaining)
				}
				it.Run(fuse, n, func(s iterator.Sample) bool {
					h.Accumulate(raster.Point{X: s.X, Y: s.Y}, s.ColorX, s.Opacity, f.Palette, f.PaletteMode)
					return true
				})
				fuse = 0
				remaining -= int64(n)
			}
			perWorkerBad[w] = int64(it.BadValues())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	for _, h := range perWorker {
		if h == nil {
			continue
		}
		dst.Merge(h)
	}
	for _, b := range perWorkerBad {
		badValues += b
	}
	return badValues, nil
}

func splitEvenly(total int64, n int) []int64 {
	out := make([]int64, n)
	base := total / int64(n)
	rem := total % int64(n)
	for i := range out {
		out[i] = base
		if int64(i) < rem {
			out[i]++
		}
	}
	return out
}
