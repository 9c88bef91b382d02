package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type affine struct{ a, b, c, d, e, f float64 }

var identity = affine{a: 1, d: 1}

func (m affine) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

type contextState struct {
	transform affine
	fill      color.Color
	baseline  TextBaseline
	fontSize  float64
}

func defaultContextState() contextState {
	return contextState{transform: identity, fill: color.Black, fontSize: 10}
}

// Canvas is an in-memory surface backed by an *image.RGBA. It is both the
// Surface and its Context.
type Canvas struct {
	fonts *Fonts

	clientW, clientH float64
	ratio            float64
	img              *image.RGBA
	opacity          float64
	hidden           bool

	state contextState
	stack []contextState

	// DrawCalls counts fill and clear operations since creation.
	DrawCalls int
}

// NewCanvas creates a canvas with the given logical size and device pixel
// ratio. The backing store starts at the logical size, like an unsized canvas.
func NewCanvas(width, height, ratio float64, fonts *Fonts) *Canvas {
	c := &Canvas{fonts: fonts, clientW: width, clientH: height, ratio: ratio, opacity: 1, state: defaultContextState()}
	c.img = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	return c
}

// Resize changes the logical size. The backing store is untouched until the
// owner calls SetBackingSize.
func (c *Canvas) Resize(width, height float64) {
	c.clientW, c.clientH = width, height
}

func (c *Canvas) SetPixelRatio(ratio float64) { c.ratio = ratio }

func (c *Canvas) Image() *image.RGBA { return c.img }
func (c *Canvas) Opacity() float64   { return c.opacity }
func (c *Canvas) Hidden() bool       { return c.hidden }

func (c *Canvas) ClientSize() (float64, float64) { return c.clientW, c.clientH }
func (c *Canvas) DevicePixelRatio() float64      { return c.ratio }

func (c *Canvas) SetBackingSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.state = defaultContextState()
	c.stack = nil
}

func (c *Canvas) BackingSize() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Context() (Context, error) {
	if c.fonts == nil {
		return nil, ErrNoContext
	}
	return c, nil
}

func (c *Canvas) SetOpacity(opacity float64) { c.opacity = opacity }
func (c *Canvas) SetHidden(hidden bool)      { c.hidden = hidden }

func (c *Canvas) SetTransform(a, b, cc, d, e, f float64) {
	c.state.transform = affine{a: a, b: b, c: cc, d: d, e: e, f: f}
}

func (c *Canvas) Scale(x, y float64) {
	t := c.state.transform
	c.state.transform = affine{a: t.a * x, b: t.b * x, c: t.c * y, d: t.d * y, e: t.e, f: t.f}
}

func (c *Canvas) Save() { c.stack = append(c.stack, c.state) }

func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) SetTextBaseline(baseline TextBaseline) { c.state.baseline = baseline }
func (c *Canvas) SetFontSize(px float64)                { c.state.fontSize = px }
func (c *Canvas) SetFillColor(col color.Color)          { c.state.fill = col }

// Transform returns the current matrix as (a, b, c, d, e, f).
func (c *Canvas) Transform() (float64, float64, float64, float64, float64, float64) {
	t := c.state.transform
	return t.a, t.b, t.c, t.d, t.e, t.f
}

func (c *Canvas) deviceRect(x, y, w, h float64) image.Rectangle {
	x0, y0 := c.state.transform.apply(x, y)
	x1, y1 := c.state.transform.apply(x+w, y+h)
	r := image.Rect(int(math.Floor(x0)), int(math.Floor(y0)), int(math.Ceil(x1)), int(math.Ceil(y1)))
	return r.Canon().Intersect(c.img.Bounds())
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.DrawCalls++
	r := c.deviceRect(x, y, w, h)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(c.state.fill), image.Point{}, draw.Over)
}

func (c *Canvas) ClearRect(x, y, w, h float64) {
	c.DrawCalls++
	r := c.deviceRect(x, y, w, h)
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) FillText(text string, x, y float64) {
	c.DrawCalls++
	if c.fonts == nil || text == "" {
		return
	}
	t := c.state.transform
	px, py := t.apply(x, y)
	face := c.fonts.Face(c.state.fontSize * math.Abs(t.d))
	if c.state.baseline == BaselineTop {
		py += float64(face.Metrics().Ascent.Ceil())
	}
	drawer := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(c.state.fill),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(py * 64)},
	}
	drawer.DrawString(text)
}
