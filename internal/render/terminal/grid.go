package terminal

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/rook-computer/binaryrain/internal/render"
)

// fadedOut is the brightest channel below which a cell is dropped.
const fadedOut = 0.03

type cell struct {
	r rune
	c colorful.Color
}

type gridState struct {
	a, d, e, f float64
	fill       colorful.Color
	fillAlpha  float64
}

func defaultGridState() gridState { return gridState{a: 1, d: 1, fillAlpha: 1} }

// Grid is a surface whose pixels are terminal cells. Logical coordinates
// map onto cells of CellWidth x CellHeight; glyphs land in the cell that
// contains their top-left corner and fills blend cell colors.
type Grid struct {
	CellWidth, CellHeight float64

	cols, rows int
	backW      int
	backH      int
	cells      []cell
	opacity    float64
	hidden     bool

	state gridState
	stack []gridState

	DrawCalls int
}

func NewGrid(cols, rows int, cellW, cellH float64) *Grid {
	g := &Grid{CellWidth: cellW, CellHeight: cellH, opacity: 1, state: defaultGridState()}
	g.Resize(cols, rows)
	return g
}

// Resize changes the terminal size and drops the cell contents. Like a
// canvas element, the backing size is kept until SetBackingSize.
func (g *Grid) Resize(cols, rows int) {
	g.cols, g.rows = max(cols, 0), max(rows, 0)
	if g.backW == 0 && g.backH == 0 {
		w, h := g.ClientSize()
		g.backW, g.backH = int(w), int(h)
	}
	g.cells = make([]cell, g.cols*g.rows)
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

func (g *Grid) ClientSize() (float64, float64) {
	return float64(g.cols) * g.CellWidth, float64(g.rows) * g.CellHeight
}

// DevicePixelRatio is always 1; a cell has no sub-pixels.
func (g *Grid) DevicePixelRatio() float64 { return 1 }

func (g *Grid) SetBackingSize(width, height int) {
	g.backW, g.backH = max(width, 0), max(height, 0)
	g.cells = make([]cell, g.cols*g.rows)
	g.state = defaultGridState()
	g.stack = nil
}

func (g *Grid) BackingSize() (int, int) { return g.backW, g.backH }

func (g *Grid) Context() (render.Context, error) { return g, nil }

func (g *Grid) SetOpacity(opacity float64) { g.opacity = opacity }
func (g *Grid) SetHidden(hidden bool)      { g.hidden = hidden }
func (g *Grid) Opacity() float64           { return g.opacity }
func (g *Grid) Hidden() bool               { return g.hidden }

// SetTransform keeps scale and translation only.
func (g *Grid) SetTransform(a, b, c, d, e, f float64) {
	g.state.a, g.state.d, g.state.e, g.state.f = a, d, e, f
}

func (g *Grid) Scale(x, y float64) {
	g.state.a *= x
	g.state.d *= y
}

func (g *Grid) Save() { g.stack = append(g.stack, g.state) }

func (g *Grid) Restore() {
	if len(g.stack) == 0 {
		return
	}
	g.state = g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
}

// Text is always placed by its top-left corner; font size is the cell.
func (g *Grid) SetTextBaseline(render.TextBaseline) {}
func (g *Grid) SetFontSize(float64)                 {}

func (g *Grid) SetFillColor(c color.Color) {
	_, _, _, a := c.RGBA()
	g.state.fillAlpha = float64(a) / 0xffff
	if cc, ok := colorful.MakeColor(c); ok {
		g.state.fill = cc
	} else {
		g.state.fill = colorful.Color{}
	}
}

// cellSize is the device size of one cell for the current backing store.
func (g *Grid) cellSize() (float64, float64) {
	if g.cols == 0 || g.rows == 0 {
		return 1, 1
	}
	return float64(g.backW) / float64(g.cols), float64(g.backH) / float64(g.rows)
}

func (g *Grid) device(x, y float64) (float64, float64) {
	return g.state.a*x + g.state.e, g.state.d*y + g.state.f
}

// span converts a device rectangle to the cells it touches.
func (g *Grid) span(x0, y0, x1, y1 float64) (c0, r0, c1, r1 int) {
	cw, ch := g.cellSize()
	c0 = max(int(math.Floor(math.Min(x0, x1)/cw)), 0)
	r0 = max(int(math.Floor(math.Min(y0, y1)/ch)), 0)
	c1 = min(int(math.Ceil(math.Max(x0, x1)/cw)), g.cols)
	r1 = min(int(math.Ceil(math.Max(y0, y1)/ch)), g.rows)
	return
}

func (g *Grid) FillRect(x, y, w, h float64) {
	g.DrawCalls++
	x0, y0 := g.device(x, y)
	x1, y1 := g.device(x+w, y+h)
	c0, r0, c1, r1 := g.span(x0, y0, x1, y1)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			cl := &g.cells[row*g.cols+col]
			if cl.r == 0 {
				continue
			}
			cl.c = cl.c.BlendRgb(g.state.fill, g.state.fillAlpha).Clamped()
			if math.Max(cl.c.R, math.Max(cl.c.G, cl.c.B)) < fadedOut {
				*cl = cell{}
			}
		}
	}
}

func (g *Grid) ClearRect(x, y, w, h float64) {
	g.DrawCalls++
	x0, y0 := g.device(x, y)
	x1, y1 := g.device(x+w, y+h)
	c0, r0, c1, r1 := g.span(x0, y0, x1, y1)
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			g.cells[row*g.cols+col] = cell{}
		}
	}
}

func (g *Grid) FillText(text string, x, y float64) {
	g.DrawCalls++
	if text == "" || g.cols == 0 || g.rows == 0 {
		return
	}
	dx, dy := g.device(x, y)
	cw, ch := g.cellSize()
	col, row := int(math.Floor(dx/cw)), int(math.Floor(dy/ch))
	for _, r := range text {
		if col >= 0 && col < g.cols && row >= 0 && row < g.rows {
			cl := &g.cells[row*g.cols+col]
			base := cl.c
			if cl.r == 0 {
				base = colorful.Color{}
			}
			cl.r = r
			cl.c = base.BlendRgb(g.state.fill, g.state.fillAlpha).Clamped()
		}
		col++
	}
}

// At returns the rune and color of a cell; the rune is zero for an empty cell.
func (g *Grid) At(col, row int) (rune, colorful.Color) {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows || len(g.cells) == 0 {
		return 0, colorful.Color{}
	}
	cl := g.cells[row*g.cols+col]
	return cl.r, cl.c
}
