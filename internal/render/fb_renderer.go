package render

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"

	"github.com/rook-computer/binaryrain/internal/assets"
	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/system"
)

const DefaultFBDevice = "/dev/fb0"

// FBRenderer renders to the Linux framebuffer using an offscreen logical
// canvas. Keys come from evdev; the console is put in graphics mode while
// it runs.
type FBRenderer struct {
	software

	// Device defaults to DefaultFBDevice.
	Device string
	// Width and Height fix the logical size; zero uses the framebuffer size.
	Width, Height int
	Logger        interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
	Debug bool

	fbDev   *fb.Device
	console system.Console
	keys    chan system.KeyEvent
	running atomic.Bool
	cancel  context.CancelFunc
}

func NewFBRenderer() *FBRenderer { return &FBRenderer{} }

func (r *FBRenderer) Start(ctx context.Context) error {
	path := r.Device
	if path == "" {
		path = DefaultFBDevice
	}
	dev, err := fb.Open(path)
	if err != nil {
		return fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	r.infof("framebuffer %s open, bounds=%dx%d", path, bounds.Dx(), bounds.Dy())

	w, h := r.Width, r.Height
	if w <= 0 || h <= 0 {
		w, h = bounds.Dx(), bounds.Dy()
	}
	fonts := NewFonts(assets.FontTTF)
	if r.Logger != nil {
		fonts.Logger = r.Logger
	}
	r.setup(float64(w), float64(h), 1, fonts)

	r.console = system.Console{Logger: r.Logger}
	r.console.Enter()

	keyCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.keys = make(chan system.KeyEvent, 32)
	send := func(ev system.KeyEvent) {
		select {
		case r.keys <- ev:
		default:
		}
	}
	system.WatchKeys(keyCtx, r.Logger, map[uint16]func(system.KeyEvent){
		system.KeyUp:       send,
		system.KeyDown:     send,
		system.KeyPageUp:   send,
		system.KeyPageDown: send,
		system.KeyEsc:      send,
		system.KeyF4:       send,
	})

	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	if !r.running.CompareAndSwap(true, false) {
		return nil
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.console.Leave()
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// RunLoop flushes frames at 60 Hz and applies key presses until ctx is
// done or Esc/F4 is pressed.
func (r *FBRenderer) RunLoop(ctx context.Context, pg *page.Page) error {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	start := time.Now()
	lastLog := start
	frames := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.keys:
			if quit := r.handleKey(pg, ev); quit {
				r.infof("quit key %d pressed", ev.Code)
				return nil
			}
		case <-ticker.C:
			r.queue.Flush(time.Since(start))
			r.blit(r.present(pg))
			frames++
			if r.Debug && time.Since(lastLog) > time.Second {
				r.infof("heartbeat: %d frames, scroll=%.0f", frames, pg.Store.Snapshot().Viewport.ScrollY)
				lastLog = time.Now()
				frames = 0
			}
		}
	}
}

func (r *FBRenderer) handleKey(pg *page.Page, ev system.KeyEvent) bool {
	vh := pg.Store.Snapshot().Viewport.Height
	switch ev.Code {
	case system.KeyUp:
		pg.ScrollBy(-ScrollStep)
	case system.KeyDown:
		pg.ScrollBy(ScrollStep)
	case system.KeyPageUp:
		pg.ScrollBy(-vh * PageScrollRatio)
	case system.KeyPageDown:
		pg.ScrollBy(vh * PageScrollRatio)
	case system.KeyEsc, system.KeyF4:
		return !ev.Repeat
	}
	return false
}

// blit scales the logical frame onto the framebuffer with nearest-neighbour sampling.
func (r *FBRenderer) blit(img *image.RGBA) {
	if r.fbDev == nil {
		return
	}
	xdraw.NearestNeighbor.Scale(r.fbDev, r.fbDev.Bounds(), img, img.Bounds(), xdraw.Src, nil)
}

func (r *FBRenderer) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("fb", format, args...)
	}
}
