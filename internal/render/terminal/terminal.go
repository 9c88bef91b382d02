// Package terminal hosts the rain in a terminal using tcell. Every cell is
// a CellWidth x CellHeight block of logical pixels.
package terminal

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/rook-computer/binaryrain/internal/frame"
	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/render"
)

const (
	DefaultCellWidth  = 10.0
	DefaultCellHeight = 20.0
)

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

type Renderer struct {
	// Screen defaults to the controlling terminal.
	Screen                tcell.Screen
	CellWidth, CellHeight float64
	Logger                Logger
	Debug                 bool

	grid   *Grid
	queue  frame.Queue
	events chan tcell.Event
	done   chan struct{}
}

func New() *Renderer {
	return &Renderer{CellWidth: DefaultCellWidth, CellHeight: DefaultCellHeight}
}

func (r *Renderer) Start(ctx context.Context) error {
	if r.CellWidth <= 0 {
		r.CellWidth = DefaultCellWidth
	}
	if r.CellHeight <= 0 {
		r.CellHeight = DefaultCellHeight
	}
	if r.Screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		r.Screen = s
	}
	if err := r.Screen.Init(); err != nil {
		return fmt.Errorf("terminal: init screen: %w", err)
	}
	r.Screen.HideCursor()
	r.Screen.EnableMouse(tcell.MouseMotionEvents)
	r.Screen.SetStyle(tcell.StyleDefault.Background(tcellColor(render.Background)))

	cols, rows := r.Screen.Size()
	r.grid = NewGrid(cols, rows, r.CellWidth, r.CellHeight)
	r.infof("terminal %dx%d cells", cols, rows)

	r.events = make(chan tcell.Event, 100)
	r.done = make(chan struct{})
	go func(s tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}(r.Screen, r.events, r.done)
	return nil
}

func (r *Renderer) Stop() error {
	if r.done == nil {
		return nil
	}
	close(r.done)
	r.done = nil
	r.Screen.Fini()
	return nil
}

func (r *Renderer) Surface() render.Surface {
	if r.grid == nil {
		return nil
	}
	return r.grid
}

func (r *Renderer) Frames() frame.Scheduler { return &r.queue }

// Grid exposes the cell surface for inspection.
func (r *Renderer) Grid() *Grid { return r.grid }

// RunLoop flushes frames at ~60 FPS and handles terminal events until ctx
// is done or a quit key is pressed.
func (r *Renderer) RunLoop(ctx context.Context, pg *page.Page) error {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.events:
			if !r.handleEvent(pg, ev) {
				return nil
			}
		case <-ticker.C:
			r.queue.Flush(time.Since(start))
			r.paint(pg)
			r.Screen.Show()
		}
	}
}

// handleEvent returns false when the user asked to quit.
func (r *Renderer) handleEvent(pg *page.Page, ev tcell.Event) bool {
	vh := pg.Store.Snapshot().Viewport.Height
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			pg.ScrollBy(-render.ScrollStep)
		case tcell.KeyDown:
			pg.ScrollBy(render.ScrollStep)
		case tcell.KeyPgUp:
			pg.ScrollBy(-vh * render.PageScrollRatio)
		case tcell.KeyPgDn:
			pg.ScrollBy(vh * render.PageScrollRatio)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				pg.ScrollBy(vh * render.PageScrollRatio)
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		buttons := ev.Buttons()
		switch {
		case buttons&tcell.WheelUp != 0:
			pg.ScrollBy(-render.ScrollStep)
		case buttons&tcell.WheelDown != 0:
			pg.ScrollBy(render.ScrollStep)
		default:
			pg.Dispatch(page.Event{
				Kind: page.PointerMove,
				X:    (float64(x) + 0.5) * r.CellWidth,
				Y:    (float64(y) + 0.5) * r.CellHeight,
			})
		}
	case *tcell.EventResize:
		cols, rows := ev.Size()
		if cols == r.grid.Cols() && rows == r.grid.Rows() {
			return true
		}
		r.grid.Resize(cols, rows)
		r.Screen.Clear()
		w, h := r.grid.ClientSize()
		pg.Dispatch(page.Event{Kind: page.Resize, X: w, Y: h})
		if r.Debug {
			r.infof("resize %dx%d cells", cols, rows)
		}
	}
	return true
}

// paint writes the rain cells and the page text to the screen buffer.
func (r *Renderer) paint(pg *page.Page) {
	bg, _ := colorful.MakeColor(render.Background)
	bgStyle := tcell.StyleDefault.Background(tcellColor(render.Background))
	g := r.grid
	showRain := !g.Hidden() && g.Opacity() > 0
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			ch, c := g.At(col, row)
			if ch == 0 || !showRain {
				r.Screen.SetContent(col, row, ' ', nil, bgStyle)
				continue
			}
			fg := bg.BlendRgb(c, g.Opacity()).Clamped()
			r.Screen.SetContent(col, row, ch, nil, bgStyle.Foreground(fromColorful(fg)))
		}
	}
	if pg != nil {
		r.paintPage(pg, bg, bgStyle)
	}
}

func (r *Renderer) paintPage(pg *page.Page, bg colorful.Color, bgStyle tcell.Style) {
	scrollY := pg.Store.Snapshot().Viewport.ScrollY
	fg, _ := colorful.MakeColor(render.Foreground)
	glow, _ := colorful.MakeColor(render.Glow)
	for _, el := range pg.Roots() {
		opacity := el.EffectiveOpacity()
		if opacity <= 0 {
			continue
		}
		row := int((el.Top - scrollY + el.Height/2) / r.CellHeight)
		if row < 0 || row >= r.grid.Rows() {
			continue
		}
		segments := el.Segments()
		typing := render.HasClassInTree(el, page.ClassTyping)
		n := 0
		for _, seg := range segments {
			n += len([]rune(seg.Text))
		}
		if typing {
			n++
		}
		if n == 0 {
			continue
		}
		col := max((r.grid.Cols()-n)/2, 0)
		put := func(s string, c colorful.Color) {
			style := bgStyle.Foreground(fromColorful(bg.BlendRgb(c, opacity).Clamped()))
			for _, ch := range s {
				if col < r.grid.Cols() {
					r.Screen.SetContent(col, row, ch, nil, style)
				}
				col++
			}
		}
		for _, seg := range segments {
			if seg.HasClass(page.ClassEdgeGlow) {
				put(seg.Text, glow)
			} else {
				put(seg.Text, fg)
			}
		}
		if typing {
			put("_", fg)
		}
	}
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func fromColorful(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func (r *Renderer) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("term", format, args...)
	}
}
