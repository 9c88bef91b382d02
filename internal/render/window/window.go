// Package window hosts the rain in a desktop window using ebiten. The rain
// is drawn on a software canvas and uploaded once per frame; page text is
// drawn with ebiten's text renderer.
package window

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/rook-computer/binaryrain/internal/assets"
	"github.com/rook-computer/binaryrain/internal/frame"
	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/render"
	"github.com/rook-computer/binaryrain/internal/render/layout"
)

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Renderer opens one resizable window. RunLoop must be called from the
// main goroutine.
type Renderer struct {
	Width, Height int
	Title         string
	Logger        Logger
	Debug         bool

	canvas *render.Canvas
	queue  frame.Queue
	source *text.GoTextFaceSource
	faces  map[int]*text.GoTextFace
}

func New(width, height int, title string) *Renderer {
	return &Renderer{Width: width, Height: height, Title: title}
}

func (r *Renderer) Start(ctx context.Context) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("window: invalid size %dx%d", r.Width, r.Height)
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(assets.FontTTF))
	if err != nil {
		return fmt.Errorf("window: load font: %w", err)
	}
	r.source = src
	r.faces = make(map[int]*text.GoTextFace)

	fonts := render.NewFonts(assets.FontTTF)
	if r.Logger != nil {
		fonts.Logger = r.Logger
	}
	// The device scale factor is only known once the loop runs; the first
	// Update dispatches a resize if it differs.
	r.canvas = render.NewCanvas(float64(r.Width), float64(r.Height), 1, fonts)

	ebiten.SetWindowSize(r.Width, r.Height)
	ebiten.SetWindowTitle(r.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)
	r.infof("window %dx%d %q", r.Width, r.Height, r.Title)
	return nil
}

func (r *Renderer) Stop() error { return nil }

func (r *Renderer) Surface() render.Surface {
	if r.canvas == nil {
		return nil
	}
	return r.canvas
}

func (r *Renderer) Frames() frame.Scheduler { return &r.queue }

// RunLoop runs the ebiten game loop until the window closes, Esc is
// pressed or ctx is done.
func (r *Renderer) RunLoop(ctx context.Context, pg *page.Page) error {
	g := &game{r: r, ctx: ctx, page: pg, start: time.Now()}
	g.lastW, g.lastH = r.canvas.ClientSize()
	g.lastRatio = r.canvas.DevicePixelRatio()
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	r.infof("window closed after %d frames", g.frames)
	return nil
}

func (r *Renderer) face(px float64) *text.GoTextFace {
	size := int(px + 0.5)
	if size < 1 {
		size = 1
	}
	if f, ok := r.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: r.source, Size: float64(size), Direction: text.DirectionLeftToRight}
	r.faces[size] = f
	return f
}

func (r *Renderer) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("window", format, args...)
	}
}

// game adapts the renderer to ebiten.Game. Events are dispatched from
// Update so that frames and page listeners share one goroutine.
type game struct {
	r    *Renderer
	ctx  context.Context
	page *page.Page

	start     time.Time
	frames    int
	outsideW  int
	outsideH  int
	lastW     float64
	lastH     float64
	lastRatio float64
	lastX     int
	lastY     int
	rainImg   *ebiten.Image
	textOpts  text.DrawOptions
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.syncSize()

	if x, y := ebiten.CursorPosition(); x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		g.page.Dispatch(page.Event{Kind: page.PointerMove, X: float64(x), Y: float64(y)})
	}

	vh := g.page.Store.Snapshot().Viewport.Height
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.page.ScrollBy(-dy * render.ScrollStep)
	}
	switch {
	case repeating(ebiten.KeyArrowDown):
		g.page.ScrollBy(render.ScrollStep)
	case repeating(ebiten.KeyArrowUp):
		g.page.ScrollBy(-render.ScrollStep)
	case repeating(ebiten.KeyPageDown), repeating(ebiten.KeySpace):
		g.page.ScrollBy(vh * render.PageScrollRatio)
	case repeating(ebiten.KeyPageUp):
		g.page.ScrollBy(-vh * render.PageScrollRatio)
	}

	g.r.queue.Flush(time.Since(g.start))
	g.frames++
	return nil
}

// repeating reports a fresh press or a held key past the repeat delay.
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d > 20 && d%3 == 0)
}

func (g *game) syncSize() {
	if g.outsideW == 0 || g.outsideH == 0 {
		return
	}
	ratio := 1.0
	if m := ebiten.Monitor(); m != nil {
		ratio = m.DeviceScaleFactor()
	}
	w, h := float64(g.outsideW), float64(g.outsideH)
	if w == g.lastW && h == g.lastH && ratio == g.lastRatio {
		return
	}
	g.lastW, g.lastH, g.lastRatio = w, h, ratio
	g.r.canvas.Resize(w, h)
	g.r.canvas.SetPixelRatio(ratio)
	g.page.Dispatch(page.Event{Kind: page.Resize, X: w, Y: h})
	if g.r.Debug {
		g.r.infof("resize %.0fx%.0f @%.2gx", w, h, ratio)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(render.Background)
	g.drawRain(screen)
	g.drawPage(screen)
}

func (g *game) drawRain(screen *ebiten.Image) {
	c := g.r.canvas
	if c.Hidden() || c.Opacity() <= 0 {
		return
	}
	src := c.Image()
	b := src.Bounds()
	if b.Empty() {
		return
	}
	if g.rainImg == nil || g.rainImg.Bounds().Size() != b.Size() {
		if g.rainImg != nil {
			g.rainImg.Deallocate()
		}
		g.rainImg = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.rainImg.WritePixels(src.Pix)

	op := &ebiten.DrawImageOptions{}
	w, _ := c.ClientSize()
	if w > 0 {
		s := w / float64(b.Dx())
		op.GeoM.Scale(s, s)
	}
	op.ColorScale.ScaleAlpha(float32(c.Opacity()))
	screen.DrawImage(g.rainImg, op)
}

func (g *game) drawPage(screen *ebiten.Image) {
	viewport := screen.Bounds()
	scrollY := g.page.Store.Snapshot().Viewport.ScrollY
	for _, el := range g.page.Roots() {
		band := layout.Band(viewport, el.Top, el.Height, scrollY)
		if !layout.Visible(band, viewport) {
			continue
		}
		opacity := el.EffectiveOpacity()
		if opacity <= 0 {
			continue
		}
		g.drawElement(screen, el, band, opacity)
	}
}

func (g *game) drawElement(screen *ebiten.Image, el *page.Element, band image.Rectangle, opacity float64) {
	segments := el.Segments()
	typing := render.HasClassInTree(el, page.ClassTyping)
	if len(segments) == 0 && !typing {
		return
	}
	face := g.r.face(float64(band.Dy()) * render.TextScale)

	width := 0.0
	for _, seg := range segments {
		width += text.Advance(seg.Text, face)
	}
	if typing {
		width += text.Advance("_", face)
	}
	m := face.Metrics()
	lineH := m.HAscent + m.HDescent
	x := float64(layout.CenterX(band, int(width+0.5)))
	y := float64(layout.CenterY(band, int(lineH+0.5)))

	for _, seg := range segments {
		col := render.Foreground
		if seg.HasClass(page.ClassEdgeGlow) {
			col = render.Glow
			for _, off := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				g.drawText(screen, seg.Text, face, x+off[0], y+off[1], col, opacity*0.35)
			}
		}
		g.drawText(screen, seg.Text, face, x, y, col, opacity)
		x += text.Advance(seg.Text, face)
	}
	if typing {
		g.drawText(screen, "_", face, x, y, render.Foreground, opacity*0.8)
	}
}

func (g *game) drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y float64, col color.RGBA, opacity float64) {
	g.textOpts.GeoM.Reset()
	g.textOpts.GeoM.Translate(x, y)
	g.textOpts.ColorScale.Reset()
	g.textOpts.ColorScale.ScaleWithColor(col)
	g.textOpts.ColorScale.ScaleAlpha(float32(opacity))
	text.Draw(screen, s, face, &g.textOpts)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outsideW, g.outsideH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
