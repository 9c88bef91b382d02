package render

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"time"

	"github.com/rook-computer/binaryrain/internal/assets"
	"github.com/rook-computer/binaryrain/internal/page"
)

// DefaultFrameStep is the synthetic time between headless frames.
const DefaultFrameStep = time.Second / 60

// HeadlessRenderer steps a fixed number of frames at synthetic timestamps
// and writes the final composed frame as PNG.
type HeadlessRenderer struct {
	software

	Width, Height float64
	PixelRatio    float64
	FrameCount    int
	FrameStep     time.Duration
	// ScrollY is applied once before the first frame.
	ScrollY float64
	Out     io.Writer
	Logger  interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
}

func (r *HeadlessRenderer) Start(ctx context.Context) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("headless: invalid size %.0fx%.0f", r.Width, r.Height)
	}
	ratio := r.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	fonts := NewFonts(assets.FontTTF)
	if r.Logger != nil {
		fonts.Logger = r.Logger
	}
	r.setup(r.Width, r.Height, ratio, fonts)
	return nil
}

func (r *HeadlessRenderer) Stop() error { return nil }

func (r *HeadlessRenderer) RunLoop(ctx context.Context, pg *page.Page) error {
	step := r.FrameStep
	if step <= 0 {
		step = DefaultFrameStep
	}
	if r.ScrollY != 0 {
		pg.Dispatch(page.Event{Kind: page.Scroll, Y: r.ScrollY})
	}
	for i := 0; i < r.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.queue.Flush(time.Duration(i) * step)
	}
	img := r.present(pg)
	if r.Logger != nil {
		r.Logger.Infof("app", "headless: %d frames, %d draw calls", r.FrameCount, r.canvas.DrawCalls)
	}
	if r.Out == nil {
		return nil
	}
	if err := png.Encode(r.Out, img); err != nil {
		return fmt.Errorf("headless: encode png: %w", err)
	}
	return nil
}
