// Package app wires a host renderer, the page model, the rain animator and
// the typewriter reveal into one run.
package app

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/rain"
	"github.com/rook-computer/binaryrain/internal/render"
	"github.com/rook-computer/binaryrain/internal/reveal"
	"github.com/rook-computer/binaryrain/internal/state"
)

type App struct {
	Config config.Config
	// Mode is one of config.ModeAuto, ModeDesktop or ModeConstrained.
	Mode          string
	Render        render.Renderer
	Logger        Logger
	Clock         reveal.Clock
	Rand          *rand.Rand
	ReducedMotion bool
	Debug         bool

	store      *state.Store
	page       *page.Page
	animator   *rain.Animator
	typewriter *reveal.Typewriter

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(cfg config.Config, renderer render.Renderer) *App {
	return &App{Config: cfg, Mode: config.ModeAuto, Render: renderer, Logger: NoopLogger{}, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running. Only the first call counts.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs until the host loop ends, ctx is done or Exit is called. The
// host loop runs on the calling goroutine, which for the window host must
// be the main one.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Render == nil {
		app.Render = &render.NoopRenderer{}
	}

	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	app.store = state.NewStore()
	app.store.SetReducedMotion(app.ReducedMotion)
	app.page = page.FromLayout(app.Config.Page, app.store)

	surface := app.Render.Surface()
	var width float64
	if surface != nil {
		w, h := surface.ClientSize()
		width = w
		app.store.SetPixelRatio(surface.DevicePixelRatio())
		app.page.Dispatch(page.Event{Kind: page.Resize, X: w, Y: h})
	}

	profile, constrained, err := app.Config.Select(app.Mode, width)
	if err != nil {
		return err
	}
	app.Logger.Infof("app", "profile %s (constrained=%t) for width %.0f", app.Mode, constrained, width)

	rng := app.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	anim, err := rain.New(surface, app.page, app.Render.Frames(), rain.Options{Profile: profile, Rand: rng, Logger: app.Logger})
	if err != nil {
		app.Logger.Errorf("app", "rain start failed: %v", err)
		return err
	}
	app.animator = anim
	defer anim.Teardown()

	app.typewriter = reveal.New(app.Clock, app.Logger)
	defer app.typewriter.Stop()
	r := app.Config.Reveal
	app.typewriter.RevealHighlighted(app.page.ElementByID(page.IDTypeLine), r.Prefix, r.Highlight,
		reveal.OptionsFromConfig(r, app.page.ReducedMotion()))

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var exitErr atomic.Pointer[error]
	go func() {
		select {
		case err := <-app.exitCh:
			exitErr.Store(&err)
			cancel()
		case <-loopCtx.Done():
		}
	}()

	loopErr := app.Render.RunLoop(loopCtx, app.page)
	cancel()
	switch {
	case loopErr != nil && !errors.Is(loopErr, context.Canceled):
		app.Logger.Errorf("app", "run loop error: %v", loopErr)
		return loopErr
	case exitErr.Load() != nil:
		return *exitErr.Load()
	case ctx.Err() != nil:
		return ctx.Err()
	}
	app.Logger.Infof("app", "host loop finished")
	return nil
}

// Page returns the page model of the current or last run.
func (app *App) Page() *page.Page { return app.page }

func (app *App) Animator() *rain.Animator { return app.animator }

func (app *App) Typewriter() *reveal.Typewriter { return app.typewriter }
