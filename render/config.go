package render

import (
	"encoding/binary"

	"github.com/flamecore/ember/histogram"
	"github.com/flamecore/ember/palette"
)

// InteractiveFilter selects which filter a forced mid-render snapshot uses
// (§6). This module always runs a render to completion before returning a
// buffer — there is no forced-snapshot path yet — so the field is accepted
// for external-interface compatibility and otherwise unread.
type InteractiveFilter int

const (
	InteractiveFilterLog InteractiveFilter = iota
	InteractiveFilterDE
)

// Config bundles the §6 external-interface options that are orthogonal to
// any single Flame: output buffer encoding, clip timing, and worker-pool
// sizing. The zero value is every option at its spec-documented default.
type Config struct {
	EarlyClip    bool // clamp the alpha-scaled color to 1 before highlight compression; correction still runs after the spatial filter
	YAxisUp      bool // false (default): row 0 of EncodeBuffer's output is the top of the image
	Transparency bool // include an alpha channel in EncodeBuffer's output

	NumChannels     int // 3 or 4; 0 defaults to 4 when Transparency, else 3
	BytesPerChannel int // 1 or 2; 0 defaults to 1

	ThreadCount  int
	SubBatchSize int

	InteractiveFilter InteractiveFilter

	// LockAccum and ReclaimOnResize describe a live, resizable, pausable
	// render session (§5, §6) that this module's single-shot Renderer
	// does not implement. Accepted for interface compatibility, never
	// read: wiring them needs an incremental-resize API this module
	// doesn't have.
	LockAccum       bool
	ReclaimOnResize bool
}

func (c Config) clipMode() histogram.ClipMode {
	if c.EarlyClip {
		return histogram.ClipEarly
	}
	return histogram.ClipLate
}

func (c Config) channels() (n, bytesPerChannel int) {
	n = c.NumChannels
	if n == 0 {
		if c.Transparency {
			n = 4
		} else {
			n = 3
		}
	}
	bytesPerChannel = c.BytesPerChannel
	if bytesPerChannel == 0 {
		bytesPerChannel = 1
	}
	return n, bytesPerChannel
}

// EncodeBuffer packs a corrected pixel slice into the §6 output contract:
// row order per cfg.YAxisUp, NumChannels/BytesPerChannel per pixel, native
// endianness for the 16-bit case. pixels must be w*h long, row-major
// top-to-bottom (CorrectHistogram's and Renderer.Run's native order).
func EncodeBuffer(pixels []palette.Color, w, h int, cfg Config) []byte {
	channels, bpc := cfg.channels()
	out := make([]byte, w*h*channels*bpc)

	putChannel := func(off int, v uint16) {
		if bpc == 1 {
			out[off] = byte(v >> 8)
			return
		}
		binary.NativeEndian.PutUint16(out[off:], v)
	}

	for row := 0; row < h; row++ {
		srcRow := row
		if cfg.YAxisUp {
			srcRow = h - 1 - row
		}
		for col := 0; col < w; col++ {
			c := pixels[srcRow*w+col].RGBA64()
			base := (row*w + col) * channels * bpc
			putChannel(base, c.R)
			putChannel(base+bpc, c.G)
			putChannel(base+2*bpc, c.B)
			if channels == 4 {
				a := c.A
				if !cfg.Transparency {
					// §6: 4 channels with transparency disabled still
					// writes an opaque alpha channel, not the real value.
					a = 0xffff
				}
				putChannel(base+3*bpc, a)
			}
		}
	}
	return out
}
