package rain

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/binaryrain/internal/assets"
	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/frame"
	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/render"
)

type harness struct {
	anim   *Animator
	canvas *render.Canvas
	page   *page.Page
	queue  *frame.Queue
}

func newHarness(t *testing.T, w, h float64, profile config.Profile, layout config.Page) *harness {
	t.Helper()
	pg := page.FromLayout(layout, nil)
	pg.Dispatch(page.Event{Kind: page.Resize, X: w, Y: h})
	canvas := render.NewCanvas(w, h, 1, render.NewFonts(assets.FontTTF))
	q := frame.NewQueue()
	a, err := New(canvas, pg, q, Options{Profile: profile, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	t.Cleanup(a.Teardown)
	return &harness{anim: a, canvas: canvas, page: pg, queue: q}
}

func desktop() config.Profile { return config.Default().Desktop }
func layout() config.Page     { return config.Default().Page }

func TestNew_SeedsFieldFromWidth(t *testing.T) {
	h := newHarness(t, 1000, 600, desktop(), layout())
	assert.Len(t, h.anim.Drops(), 40)
	assert.True(t, h.anim.Running())
	assert.Equal(t, 1, h.queue.Pending())
	assert.Equal(t, 1.0, h.canvas.Opacity())
}

func TestNew_NilSurfaceIsInert(t *testing.T) {
	q := frame.NewQueue()
	a, err := New(nil, page.New(nil), q, Options{Profile: desktop()})
	require.NoError(t, err)
	assert.True(t, a.Inert())

	a.Start()
	a.Tick()
	a.HandleEvent(page.Event{Kind: page.Scroll, Y: 10})
	a.Teardown()
	assert.Zero(t, q.Pending())
	assert.Nil(t, a.Drops())
}

type lostContext struct{ *render.Canvas }

func (lostContext) Context() (render.Context, error) { return nil, render.ErrNoContext }

func TestNew_ContextFailureIsAnError(t *testing.T) {
	canvas := render.NewCanvas(100, 100, 1, render.NewFonts(assets.FontTTF))
	_, err := New(lostContext{canvas}, page.New(nil), frame.NewQueue(), Options{Profile: desktop()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, render.ErrNoContext))
}

func TestNew_ReducedMotionDrawsNothing(t *testing.T) {
	pg := page.FromLayout(layout(), nil)
	pg.Store.SetReducedMotion(true)
	pg.Dispatch(page.Event{Kind: page.Resize, X: 800, Y: 600})
	canvas := render.NewCanvas(800, 600, 1, render.NewFonts(assets.FontTTF))
	q := frame.NewQueue()

	a, err := New(canvas, pg, q, Options{Profile: desktop()})
	require.NoError(t, err)
	assert.True(t, a.Inert())
	assert.True(t, canvas.Hidden())

	for i := 0; i < 10; i++ {
		q.Flush(time.Duration(i) * 16 * time.Millisecond)
		pg.Dispatch(page.Event{Kind: page.Scroll, Y: float64(i * 100)})
		pg.Dispatch(page.Event{Kind: page.Resize, X: 900, Y: 600})
	}
	assert.Zero(t, canvas.DrawCalls)
	assert.True(t, canvas.Hidden())
	assert.Zero(t, pg.ListenerCount())
}

func TestConfigureSurface_ClampsRatioAndDoesNotAccumulate(t *testing.T) {
	pg := page.FromLayout(layout(), nil)
	canvas := render.NewCanvas(500, 300, 3, render.NewFonts(assets.FontTTF))
	a, err := New(canvas, pg, frame.NewQueue(), Options{Profile: desktop(), Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	defer a.Teardown()

	for i := 0; i < 3; i++ {
		pg.Dispatch(page.Event{Kind: page.Resize, X: 500, Y: 300})
	}
	bw, bh := canvas.BackingSize()
	assert.Equal(t, 1000, bw)
	assert.Equal(t, 600, bh)
	sx, _, _, sy, _, _ := canvas.Transform()
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 2.0, sy)

	g := a.Geometry()
	assert.Equal(t, 2.0, g.PixelRatio)
	assert.Equal(t, 14.0, g.FontSize, "500/90 rounds below the minimum")
	assert.Equal(t, 19.0, g.LineHeight)
}

func TestConfigureSurface_MissingRatioDefaultsToOne(t *testing.T) {
	canvas := render.NewCanvas(1800, 900, 0, render.NewFonts(assets.FontTTF))
	pg := page.FromLayout(layout(), nil)
	a, err := New(canvas, pg, frame.NewQueue(), Options{Profile: desktop(), Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	defer a.Teardown()

	g := a.Geometry()
	assert.Equal(t, 1.0, g.PixelRatio)
	assert.Equal(t, 20.0, g.FontSize)
	assert.Equal(t, 27.0, g.LineHeight)
}

func TestResize_RebuildsField(t *testing.T) {
	h := newHarness(t, 500, 600, desktop(), layout())
	require.Len(t, h.anim.Drops(), 20)

	h.canvas.Resize(1000, 600)
	h.page.Dispatch(page.Event{Kind: page.Resize, X: 1000, Y: 600})
	assert.Len(t, h.anim.Drops(), 40)
	assert.Equal(t, 1000.0, h.anim.Geometry().Width)
}

func TestStartStop_AtMostOneHandle(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	h.anim.Start()
	h.anim.Start()
	assert.Equal(t, 1, h.queue.Pending())

	for i := 1; i <= 5; i++ {
		h.queue.Flush(time.Duration(i) * 16 * time.Millisecond)
		assert.Equal(t, 1, h.queue.Pending())
	}

	h.anim.Stop()
	h.anim.Stop()
	assert.Zero(t, h.queue.Pending())
	assert.False(t, h.anim.Running())

	h.anim.Start()
	assert.Equal(t, 1, h.queue.Pending())
}

func TestLoop_UncappedTicksEveryFrame(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	for i := 0; i < 10; i++ {
		h.queue.Flush(time.Duration(i) * time.Millisecond)
	}
	assert.Equal(t, 10, h.anim.Ticks())
}

func TestLoop_CappedSkipsEarlyFrames(t *testing.T) {
	h := newHarness(t, 400, 600, config.Default().Constrained, layout())
	h.queue.Flush(0)
	h.queue.Flush(10 * time.Millisecond)
	h.queue.Flush(20 * time.Millisecond)
	h.queue.Flush(21 * time.Millisecond)
	h.queue.Flush(30 * time.Millisecond)
	h.queue.Flush(42 * time.Millisecond)
	assert.Equal(t, 3, h.anim.Ticks())
	assert.Equal(t, 1, h.queue.Pending())
}

func TestTick_AdvancesAndRefreshes(t *testing.T) {
	p := desktop()
	p.Glyphs = "x"
	h := newHarness(t, 800, 600, p, layout())
	drops := h.anim.Drops()
	drops[0] = Drop{X: 100, Y: 50, Speed: 2, Glyphs: []rune("0000"), RefreshEvery: 2}

	h.anim.Tick()
	h.anim.Tick()
	assert.Equal(t, 54.0, drops[0].Y)
	assert.Equal(t, 2, drops[0].SinceRefresh)
	assert.Equal(t, "0000", string(drops[0].Glyphs))

	h.anim.Tick()
	assert.Zero(t, drops[0].SinceRefresh, "counter resets once it exceeds the cadence")
	assert.Equal(t, "x000", string(drops[0].Glyphs), "head glyph is replaced on refresh")
	assert.Equal(t, 100.0, drops[0].X)
}

func TestTick_RespawnBoundary(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	spacing := h.anim.Geometry().LineHeight
	drops := h.anim.Drops()

	// after this tick the trailing edge sits exactly on the bottom edge
	drops[0] = Drop{X: 123, Y: 600 + 4*spacing - 1, Speed: 1, Glyphs: []rune("0101"), RefreshEvery: 99}
	h.anim.Tick()
	assert.Equal(t, 123.0, drops[0].X)
	assert.Equal(t, 600.0, drops[0].TrailEnd(spacing))

	// one more pixel and it is past
	h.anim.Tick()
	assert.Less(t, drops[0].Y, 0.0, "expired drop is replaced by one above the surface")
}

func TestTick_DrawsOnlyVisibleGlyphs(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	h.anim.field.Drops = []Drop{{X: 10, Y: 10, Speed: 1, Glyphs: []rune("01010"), RefreshEvery: 99}}
	before := h.canvas.DrawCalls
	h.anim.Tick()
	// one trail fill plus the head glyph; the rest sit above y=0
	assert.Equal(t, 2, h.canvas.DrawCalls-before)
}

func TestRainGate_PausesOnceAndResumes(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	// headline top 1100, half of a 600px viewport: trigger at 800
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 799})
	assert.False(t, h.anim.Paused())

	before := h.canvas.DrawCalls
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 800})
	assert.True(t, h.anim.Paused())
	assert.False(t, h.anim.Running())
	assert.Zero(t, h.queue.Pending())
	assert.Zero(t, h.canvas.Opacity())
	assert.Equal(t, 1, h.canvas.DrawCalls-before, "surface cleared once")

	h.anim.UpdateRainGate()
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 800})
	assert.Equal(t, 1, h.canvas.DrawCalls-before)
	assert.Zero(t, h.queue.Pending())

	// paused loop does no work
	h.queue.Flush(time.Second)
	ticks := h.anim.Ticks()
	assert.Zero(t, ticks)

	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 100})
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 100})
	assert.False(t, h.anim.Paused())
	assert.Equal(t, 1, h.queue.Pending())
	assert.Equal(t, 1.0, h.canvas.Opacity())
}

func TestRainGate_ClearsWholeBackingStore(t *testing.T) {
	pg := page.FromLayout(layout(), nil)
	pg.Dispatch(page.Event{Kind: page.Resize, X: 400, Y: 300})
	canvas := render.NewCanvas(400, 300, 2, render.NewFonts(assets.FontTTF))
	a, err := New(canvas, pg, frame.NewQueue(), Options{Profile: desktop(), Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	defer a.Teardown()

	for i := 0; i < 30; i++ {
		a.Tick()
	}
	pg.Dispatch(page.Event{Kind: page.Scroll, Y: 2000})
	img := canvas.Image()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			require.Zero(t, img.RGBAAt(x, y).A)
		}
	}
	sx, _, _, _, _, _ := canvas.Transform()
	assert.Equal(t, 2.0, sx, "transform restored after clearing")
}

func TestRainGate_NoHeadlineFallsBackToViewport(t *testing.T) {
	l := layout()
	l.Headline = config.Element{}
	h := newHarness(t, 800, 600, desktop(), l)

	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 599})
	assert.False(t, h.anim.Paused())
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 600})
	assert.True(t, h.anim.Paused())
}

func TestRainGate_StartsPausedBelowHeadline(t *testing.T) {
	pg := page.FromLayout(layout(), nil)
	pg.Dispatch(page.Event{Kind: page.Resize, X: 800, Y: 600})
	pg.Dispatch(page.Event{Kind: page.Scroll, Y: 1500})
	canvas := render.NewCanvas(800, 600, 1, render.NewFonts(assets.FontTTF))
	q := frame.NewQueue()
	a, err := New(canvas, pg, q, Options{Profile: desktop(), Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)
	defer a.Teardown()

	assert.True(t, a.Paused())
	assert.Zero(t, q.Pending())
	assert.Zero(t, canvas.Opacity())
}

func TestTextFade(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	wrapper := h.page.ElementByID(page.IDTypeHeader)
	require.NotNil(t, wrapper)

	// logo 1900 - 0.75*600 - 80
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 1369})
	assert.Equal(t, 1.0, wrapper.Opacity())
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 1370})
	assert.Equal(t, 0.0, wrapper.Opacity())
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 10})
	assert.Equal(t, 1.0, wrapper.Opacity())
}

func TestTextFade_MissingLogoIsNoop(t *testing.T) {
	l := layout()
	l.Logo = config.Element{}
	h := newHarness(t, 800, 600, desktop(), l)
	wrapper := h.page.ElementByID(page.IDTypeHeader)
	wrapper.SetOpacity(0.3)
	h.page.Dispatch(page.Event{Kind: page.Scroll, Y: 5000})
	assert.Equal(t, 0.3, wrapper.Opacity())
}

func TestTriggers(t *testing.T) {
	assert.Equal(t, 800.0, RainTrigger(1100, true, 600, 0.5))
	assert.Equal(t, 600.0, RainTrigger(0, false, 600, 0.5))
	assert.Equal(t, 1370.0, TextFadeTrigger(1900, 600, 0.75, 80))
}

func TestTeardown(t *testing.T) {
	h := newHarness(t, 800, 600, desktop(), layout())
	require.Equal(t, 1, h.page.ListenerCount())

	h.anim.Teardown()
	h.anim.Teardown()
	assert.Zero(t, h.page.ListenerCount())
	assert.Zero(t, h.queue.Pending())

	h.anim.Start()
	assert.Zero(t, h.queue.Pending())
	h.anim.HandleEvent(page.Event{Kind: page.Scroll, Y: 5000})
	assert.False(t, h.anim.Paused())
}
