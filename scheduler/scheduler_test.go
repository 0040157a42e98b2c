package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flamecore/ember/affine"
	"github.com/flamecore/ember/flame"
	"github.com/flamecore/ember/histogram"
	"github.com/flamecore/ember/palette"
	"github.com/flamecore/ember/raster"
	_ "github.com/flamecore/ember/variation"
)

func sierpinski(t *testing.T) *flame.Flame {
	t.Helper()
	f := &flame.Flame{
		Xforms: []flame.Xform{
			{Weight: 1, Pre: affine.Affine2D[float64]{A: 0.5, E: 0.5}, Post: affine.Identity[float64](), Variations: []flame.WeightedVariation{{Name: "linear", Weight: 1}}},
			{Weight: 1, Pre: affine.Affine2D[float64]{A: 0.5, E: 0.5, C: 0.5}, Post: affine.Identity[float64](), ColorX: 0.5, Variations: []flame.WeightedVariation{{Name: "linear", Weight: 1}}},
			{Weight: 1, Pre: affine.Affine2D[float64]{A: 0.5, E: 0.5, F: 0.5}, Post: affine.Identity[float64](), ColorX: 1, Variations: []flame.WeightedVariation{{Name: "linear", Weight: 1}}},
		},
		FinalRasW: 32, FinalRasH: 32,
		Supersample: 1, Quality: 5, TemporalSamples: 1,
		PixelsPerUnit: 16,
		Palette:       palette.Grayscale256("sierpinski"),
	}
	require.NoError(t, f.Validate())
	require.NoError(t, f.BuildAll())
	return f
}

func TestRunIterationsMergesAllWorkersIntoDestination(t *testing.T) {
	f := sierpinski(t)
	c2r := raster.New(-0.1, -0.1, 1.1, 1.1, 40, 40, 1)
	dst := histogram.New(c2r)

	bad, err := RunIterations(context.Background(), f, dst, 5000, Config{ThreadCount: 4, Seed: 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, bad, int64(0))
	assert.Greater(t, dst.TotalHits(), 0.0)
}

func TestRunIterationsSingleVsMultiWorkerLandSimilarMass(t *testing.T) {
	f := sierpinski(t)
	c2r := raster.New(-0.1, -0.1, 1.1, 1.1, 40, 40, 1)

	single := histogram.New(c2r)
	_, err := RunIterations(context.Background(), f, single, 4000, Config{ThreadCount: 1, Seed: 9})
	require.NoError(t, err)

	multi := histogram.New(c2r)
	_, err = RunIterations(context.Background(), f, multi, 4000, Config{ThreadCount: 4, Seed: 9})
	require.NoError(t, err)

	// Different worker counts land the same total iteration budget, not
	// bit-identical trajectories (each worker seeds its own stream).
	assert.InDelta(t, single.TotalHits(), multi.TotalHits(), single.TotalHits()*0.2+1)
}

func TestRunIterationsForcesSingleWorkerWithTemporalSamples(t *testing.T) {
	f := sierpinski(t)
	f.TemporalSamples = 3
	c2r := raster.New(-0.1, -0.1, 1.1, 1.1, 40, 40, 1)
	dst := histogram.New(c2r)

	_, err := RunIterations(context.Background(), f, dst, 1000, Config{ThreadCount: 8, Seed: 2})
	require.NoError(t, err)
	assert.Greater(t, dst.TotalHits(), 0.0)
}

func TestRunIterationsRejectsNilHistogram(t *testing.T) {
	f := sierpinski(t)
	_, err := RunIterations(context.Background(), f, nil, 100, Config{})
	assert.ErrorIs(t, err, ErrNilHistogram)
}

func TestRunIterationsZeroBudgetIsNoOp(t *testing.T) {
	f := sierpinski(t)
	c2r := raster.New(-0.1, -0.1, 1.1, 1.1, 10, 10, 1)
	dst := histogram.New(c2r)
	bad, err := RunIterations(context.Background(), f, dst, 0, Config{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), bad)
	assert.Equal(t, 0.0, dst.TotalHits())
}

func TestRunIterationsPropagatesIteratorSetupFailure(t *testing.T) {
	f := sierpinski(t)
	f.Xforms = nil
	c2r := raster.New(-0.1, -0.1, 1.1, 1.1, 10, 10, 1)
	dst := histogram.New(c2r)
	_, err := RunIterations(context.Background(), f, dst, 100, Config{ThreadCount: 2})
	assert.Error(t, err)
}
