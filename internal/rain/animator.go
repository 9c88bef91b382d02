// Package rain implements the binary rain animator: surface sizing, the
// drop field, the frame loop and the scroll-driven show/hide logic.
package rain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/frame"
	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/render"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Options struct {
	Profile config.Profile
	// Rand defaults to a time-seeded source.
	Rand   *rand.Rand
	Logger Logger
}

// Geometry is the surface layout computed on every resize.
type Geometry struct {
	Width      float64
	Height     float64
	PixelRatio float64
	FontSize   float64
	LineHeight float64
}

// Animator owns the drop field and the frame loop for one surface. All
// methods must be called from the goroutine that flushes frames and
// dispatches page events.
type Animator struct {
	surface render.Surface
	ctx     render.Context
	page    *page.Page
	frames  frame.Scheduler
	profile config.Profile
	logger  Logger

	field *Field
	geom  Geometry

	handle        frame.Handle
	paused        bool
	ticked        bool
	lastTick      time.Duration
	frameInterval time.Duration
	opacity       float64

	headline *page.Element
	logo     *page.Element
	typeLine *page.Element

	removeListener func()
	inert          bool
	tornDown       bool
	ticks          int
}

// New wires an animator to surface and starts it. A nil surface or an
// active reduced-motion preference yields an inert animator and no error;
// failing to get a drawing context is the only hard error.
func New(surface render.Surface, pg *page.Page, frames frame.Scheduler, opts Options) (*Animator, error) {
	a := &Animator{
		surface:       surface,
		page:          pg,
		frames:        frames,
		profile:       opts.Profile,
		logger:        opts.Logger,
		frameInterval: opts.Profile.FrameInterval(),
		opacity:       1,
	}
	if a.logger == nil {
		a.logger = nopLogger{}
	}
	if surface == nil || pg == nil || frames == nil {
		a.inert = true
		a.logger.Infof("rain", "no surface, animator inert")
		return a, nil
	}
	if pg.ReducedMotion() {
		a.inert = true
		surface.SetHidden(true)
		a.logger.Infof("rain", "reduced motion preferred, surface hidden")
		return a, nil
	}

	ctx, err := surface.Context()
	if err != nil {
		return nil, fmt.Errorf("rain: acquire drawing context: %w", err)
	}
	a.ctx = ctx

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	a.field = NewField(opts.Profile, rng)

	a.headline = pg.ElementByID(page.IDHeadline)
	a.logo = pg.ElementByID(page.IDLogo)
	a.typeLine = pg.ElementByID(page.IDTypeLine)

	a.configureSurface()
	a.field.Build(a.geom.Width, a.geom.Height)
	a.removeListener = pg.AddListener(a.HandleEvent)
	a.UpdateRainGate()
	a.Start()
	a.UpdateTextFade()

	a.logger.Infof("rain", "started: %.0fx%.0f @%.2gx, %d drops, line %.0fpx, interval %s",
		a.geom.Width, a.geom.Height, a.geom.PixelRatio, len(a.field.Drops), a.geom.LineHeight, a.frameInterval)
	return a, nil
}

// HandleEvent reacts to page events. Pointer moves are already in the store.
func (a *Animator) HandleEvent(ev page.Event) {
	if a.inert || a.tornDown {
		return
	}
	switch ev.Kind {
	case page.Resize:
		a.configureSurface()
		a.field.Build(a.geom.Width, a.geom.Height)
		a.UpdateRainGate()
		a.UpdateTextFade()
	case page.Scroll:
		a.UpdateRainGate()
		a.UpdateTextFade()
	}
}

// Teardown stops the loop and detaches from the page. It is safe to call twice.
func (a *Animator) Teardown() {
	if a.tornDown {
		return
	}
	a.Stop()
	if a.removeListener != nil {
		a.removeListener()
		a.removeListener = nil
	}
	a.tornDown = true
	a.logger.Infof("rain", "torn down after %d ticks", a.ticks)
}

func (a *Animator) Inert() bool        { return a.inert }
func (a *Animator) Paused() bool       { return a.paused }
func (a *Animator) Running() bool      { return a.handle != 0 }
func (a *Animator) Opacity() float64   { return a.opacity }
func (a *Animator) Geometry() Geometry { return a.geom }
func (a *Animator) Ticks() int         { return a.ticks }

func (a *Animator) Profile() config.Profile { return a.profile }

// Drops exposes the live field; callers must not retain it across frames.
func (a *Animator) Drops() []Drop {
	if a.field == nil {
		return nil
	}
	return a.field.Drops
}

type nopLogger struct{}

func (nopLogger) Infof(string, string, ...interface{})  {}
func (nopLogger) Errorf(string, string, ...interface{}) {}
