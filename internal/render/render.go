package render

import (
	"context"
	"errors"
	"image/color"

	"github.com/rook-computer/binaryrain/internal/frame"
	"github.com/rook-computer/binaryrain/internal/page"
)

// ErrNoContext is returned by Surface.Context when no drawing context can be made.
var ErrNoContext = errors.New("render: drawing context unavailable")

// Renderer is a host: it owns the output device, the drawable surface and
// the frame scheduler, and feeds input events into the page.
type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	// Surface returns nil when the host has nothing to draw the rain on.
	Surface() Surface
	Frames() frame.Scheduler
	// RunLoop drives frames and input until ctx is done or the user quits.
	RunLoop(ctx context.Context, pg *page.Page) error
}

// NoopRenderer has no surface; frames are never flushed.
type NoopRenderer struct {
	queue frame.Queue
}

func (n *NoopRenderer) Start(ctx context.Context) error { return nil }
func (n *NoopRenderer) Stop() error                     { return nil }
func (n *NoopRenderer) Surface() Surface                { return nil }
func (n *NoopRenderer) Frames() frame.Scheduler         { return &n.queue }
func (n *NoopRenderer) RunLoop(ctx context.Context, pg *page.Page) error {
	<-ctx.Done()
	return nil
}

// Surface is the drawable element: logical (client) size, backing store and
// element-level styling.
type Surface interface {
	ClientSize() (width, height float64)
	DevicePixelRatio() float64
	// SetBackingSize reallocates the backing store. Like a canvas element it
	// also resets the context state.
	SetBackingSize(width, height int)
	BackingSize() (width, height int)
	Context() (Context, error)
	SetOpacity(opacity float64)
	SetHidden(hidden bool)
}

type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota
	BaselineTop
)

// Context is a 2D drawing context. Coordinates pass through the current
// transform; only scale and translation are honoured.
type Context interface {
	SetTransform(a, b, c, d, e, f float64)
	Scale(x, y float64)
	Save()
	Restore()
	SetTextBaseline(baseline TextBaseline)
	SetFontSize(px float64)
	SetFillColor(c color.Color)
	FillRect(x, y, width, height float64)
	ClearRect(x, y, width, height float64)
	FillText(text string, x, y float64)
}
