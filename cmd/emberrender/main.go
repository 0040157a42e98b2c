// Command emberrender renders one flame to a PNG file, wiring
// flame.Flame -> scheduler.RunIterations -> render.CorrectHistogram ->
// image/png.
package main

import (
	"context"
	"flag"
	"image"
	"image/png"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flamecore/ember/affine"
	"github.com/flamecore/ember/filter"
	"github.com/flamecore/ember/flame"
	"github.com/flamecore/ember/histogram"
	"github.com/flamecore/ember/palette"
	"github.com/flamecore/ember/render"
	"github.com/flamecore/ember/scheduler"
	_ "github.com/flamecore/ember/variation"
)

var (
	outFile     = flag.String("out", "flame.png", "Path to write the rendered PNG to.")
	width       = flag.Int("width", 800, "Output image width in pixels.")
	height      = flag.Int("height", 600, "Output image height in pixels.")
	quality     = flag.Float64("quality", 50, "Iterations per output pixel before filtering.")
	supersample = flag.Int("supersample", 2, "Oversample factor applied before the spatial filter.")
	threads     = flag.Int("threads", 4, "Number of concurrent iteration workers.")
	seed        = flag.Uint64("seed", 1, "RNG seed; the same seed and thread count reproduce the same image.")
	earlyClip   = flag.Bool("early_clip", false, "Clamp over-unity samples before highlight compression instead of after.")
)

func demoFlame() *flame.Flame {
	// A Sierpinski gasket: three half-scale linear copies of the unit
	// square. Stands in for a loaded .flame/.ember parameter file, which
	// is out of this module's scope (SPEC_FULL.md Non-goals).
	mk := func(colorX float64, pre affine.Affine2D[float64]) flame.Xform {
		return flame.Xform{
			Weight: 1, ColorX: colorX, ColorSpeed: 1, Opacity: 1,
			Pre:  pre,
			Post: affine.Identity[float64](),
			Variations: []flame.WeightedVariation{
				{Name: "linear", Weight: 1},
			},
		}
	}
	return &flame.Flame{
		Name: "sierpinski",
		Xforms: []flame.Xform{
			mk(0.0, affine.Affine2D[float64]{A: 0.5, E: 0.5}),
			mk(0.5, affine.Affine2D[float64]{A: 0.5, E: 0.5, C: 0.5}),
			mk(1.0, affine.Affine2D[float64]{A: 0.5, E: 0.5, F: 0.5}),
		},
		FinalRasW:           *width,
		FinalRasH:           *height,
		Supersample:         *supersample,
		Quality:             *quality,
		TemporalSamples:     1,
		CenterX:             0.5,
		CenterY:             0.5,
		Zoom:                0,
		PixelsPerUnit:       float64(*width),
		PixelAspectRatio:    1,
		Brightness:          3,
		Gamma:               2.2,
		GammaThreshold:      0.01,
		Vibrancy:            1,
		Background:          palette.Color{A: 1},
		Palette:             palette.Grayscale256("sierpinski"),
		SpatialFilterType:   filter.SpatialGaussian,
		SpatialFilterRadius: 0.5,
		TemporalFilterType:  filter.TemporalBox,
		TemporalFilterWidth: 1,
		MinRadDE:            0.2,
		MaxRadDE:            3,
		CurveDE:             0.6,
	}
}

func main() {
	flag.Parse()

	f := demoFlame()
	if err := f.Validate(); err != nil {
		log.Fatalf("emberrender: invalid flame: %v", err)
	}
	if err := f.BuildAll(); err != nil {
		log.Fatalf("emberrender: %v: %v", render.ErrIteratorSetupFailure, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigQuit
		cancel()
	}()

	cam := f.Camera()
	total := int64(cam.ScaledQuality * float64(cam.CarToRas.Size()))
	hist := histogram.New(cam.CarToRas)
	badValues, err := scheduler.RunIterations(ctx, f, hist, total, scheduler.Config{
		ThreadCount: *threads,
		Seed:        *seed,
	})
	if err != nil {
		log.Fatalf("emberrender: iteration failed: %v", err)
	}
	if badValues > 0 {
		log.Printf("emberrender: %d bad values discarded during iteration", badValues)
	}
	if hist.TotalHits() == 0 {
		log.Fatalf("emberrender: %v", render.ErrZeroIterations)
	}

	pixels := render.CorrectHistogramWithConfig(f, cam, hist, render.Config{EarlyClip: *earlyClip})

	img := image.NewRGBA(image.Rect(0, 0, f.FinalRasW, f.FinalRasH))
	for i, c := range pixels {
		rgba := c.RGBA64()
		img.Set(i%f.FinalRasW, i/f.FinalRasW, rgba)
	}

	out, err := os.Create(*outFile)
	if err != nil {
		log.Fatalf("emberrender: couldn't create %q: %v", *outFile, err)
	}
	defer out.Close()
	if err := png.Encode(out, img); err != nil {
		log.Fatalf("emberrender: couldn't encode PNG: %v", err)
	}
	log.Printf("emberrender: wrote %s (%dx%d)", *outFile, f.FinalRasW, f.FinalRasH)
}
