// Command emberpreview is a live preview window for iterative rendering:
// it kicks off a background render and repaints the in-progress frame
// buffer as samples accumulate, instead of only writing a finished PNG.
// The Game methods (Layout/Draw/Update, fixed window size announced up
// front) and the ctx-cancel-on-close shape follow console.Bus's ebiten.Game
// implementation; here the "PPU" being displayed is a renderer's
// corrected pixel buffer instead of a pixel-perfect NES frame. Kept out of
// the core render/scheduler/histogram packages: the live-preview GUI is
// explicitly out of scope for the renderer itself (SPEC_FULL.md
// Non-goals), so ebiten is wired only in this external consumer.
package main

import (
	"context"
	"flag"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

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
	width       = flag.Int("width", 640, "Preview window width in pixels.")
	height      = flag.Int("height", 480, "Preview window height in pixels.")
	refreshStep = flag.Int64("refresh_every", 50_000, "Iterations between preview repaints.")
	seed        = flag.Uint64("seed", 1, "RNG seed.")
)

func previewFlame() *flame.Flame {
	mk := func(colorX float64, pre affine.Affine2D[float64]) flame.Xform {
		return flame.Xform{
			Weight: 1, ColorX: colorX, ColorSpeed: 1, Opacity: 1,
			Pre:  pre,
			Post: affine.Identity[float64](),
			Variations: []flame.WeightedVariation{
				{Name: "swirl", Weight: 1},
				{Name: "linear", Weight: 0.3},
			},
		}
	}
	return &flame.Flame{
		Name: "preview",
		Xforms: []flame.Xform{
			mk(0.0, affine.Affine2D[float64]{A: 0.5, E: 0.5}),
			mk(0.5, affine.Affine2D[float64]{A: 0.5, E: 0.5, C: 0.5}),
			mk(1.0, affine.Affine2D[float64]{A: 0.5, E: 0.5, F: 0.5}),
		},
		FinalRasW: *width, FinalRasH: *height,
		Supersample: 1, Quality: 50, TemporalSamples: 1,
		CenterX: 0.5, CenterY: 0.5,
		PixelsPerUnit:       float64(*width),
		PixelAspectRatio:    1,
		Brightness:          3,
		Gamma:               2.2,
		GammaThreshold:      0.01,
		Vibrancy:            1,
		Background:          palette.Color{A: 1},
		Palette:             palette.Grayscale256("preview").HueRotate(40),
		SpatialFilterType:   filter.SpatialGaussian,
		SpatialFilterRadius: 0.5,
		MinRadDE:            0.2,
		MaxRadDE:            3,
	}
}

// game is the ebiten.Game adapter over a running render. Update/Draw run
// on ebiten's render goroutine; the iteration workers run in a separate
// goroutine started from main, so frame snapshots are taken under mu the
// same way console.Bus separates its Run(ctx) tick loop from Update/Draw.
type game struct {
	mu    sync.Mutex
	frame []palette.Color
	w, h  int
}

func (g *game) setFrame(pixels []palette.Color) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.frame = pixels
}

func (g *game) Update() error { return nil }

func (g *game) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	frame := g.frame
	g.mu.Unlock()
	if frame == nil {
		screen.Fill(color.Black)
		return
	}
	for i, c := range frame {
		screen.Set(i%g.w, i/g.w, c.RGBA64())
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}

func main() {
	flag.Parse()

	f := previewFlame()
	if err := f.Validate(); err != nil {
		log.Fatalf("emberpreview: invalid flame: %v", err)
	}
	if err := f.BuildAll(); err != nil {
		log.Fatalf("emberpreview: %v: %v", render.ErrIteratorSetupFailure, err)
	}
	cam := f.Camera()

	g := &game{w: f.FinalRasW, h: f.FinalRasH}

	ctx, cancel := context.WithCancel(context.Background())
	go func(ctx context.Context) {
		hist := histogram.New(cam.CarToRas)
		total := int64(cam.ScaledQuality * float64(cam.CarToRas.Size()))
		var done int64
		for done < total {
			select {
			case <-ctx.Done():
				return
			default:
			}
			step := *refreshStep
			if total-done < step {
				step = total - done
			}
			if _, err := scheduler.RunIterations(ctx, f, hist, step, scheduler.Config{ThreadCount: 4, Seed: *seed}); err != nil {
				log.Printf("emberpreview: iteration error: %v", err)
				return
			}
			done += step
			g.setFrame(render.CorrectHistogram(f, cam, hist))
		}
	}(ctx)

	ebiten.SetWindowSize(f.FinalRasW, f.FinalRasH)
	ebiten.SetWindowTitle("ember preview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
	cancel()
}
