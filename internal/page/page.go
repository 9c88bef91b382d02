// Package page models the host document the rain runs behind: a handful of
// positioned elements, the viewport, and the input events hosts deliver.
package page

import (
	"sync"

	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/state"
)

// Well-known element ids.
const (
	IDHeadline   = "heroHeadline"
	IDLogo       = "logo"
	IDTypeHeader = "type-header"
	IDTypeLine   = "edge-line"
	IDEdgeWord   = "edge-word"
)

// Class names set by the reveal effect and read when drawing page text.
const (
	ClassTyping   = "typing"
	ClassEdgeGlow = "edge-glow"
)

type EventKind int

const (
	Resize EventKind = iota
	PointerMove
	Scroll
)

func (k EventKind) String() string {
	switch k {
	case Resize:
		return "resize"
	case PointerMove:
		return "pointermove"
	case Scroll:
		return "scroll"
	}
	return "unknown"
}

// Event is a host signal. Resize carries the viewport size in X/Y,
// PointerMove the pointer position, Scroll the new offset in Y.
type Event struct {
	Kind EventKind
	X    float64
	Y    float64
}

type Listener func(Event)

type Page struct {
	Store *state.Store
	// DocumentHeight bounds scrolling; zero means unbounded.
	DocumentHeight float64

	mu        sync.RWMutex
	elements  map[string]*Element
	roots     []*Element
	listeners map[int]Listener
	order     []int
	nextID    int
}

func New(store *state.Store) *Page {
	if store == nil {
		store = state.NewStore()
	}
	return &Page{
		Store:     store,
		elements:  make(map[string]*Element),
		listeners: make(map[int]Listener),
	}
}

// FromLayout builds the hero document: a type-header wrapper holding the
// type line, plus the headline and logo when they have a height.
func FromLayout(layout config.Page, store *state.Store) *Page {
	p := New(store)
	p.DocumentHeight = layout.DocumentHeight

	line := layout.TypeLine
	if line.Height > 0 {
		wrapper := NewElement(IDTypeHeader, line.Top, line.Height)
		typeLine := NewElement(IDTypeLine, line.Top, line.Height)
		typeLine.SetText(line.Text)
		wrapper.AppendChild(typeLine)
		p.Add(wrapper)
	}
	if layout.Headline.Height > 0 {
		headline := NewElement(IDHeadline, layout.Headline.Top, layout.Headline.Height)
		headline.SetText(layout.Headline.Text)
		p.Add(headline)
	}
	if layout.Logo.Height > 0 {
		logo := NewElement(IDLogo, layout.Logo.Top, layout.Logo.Height)
		logo.SetText(layout.Logo.Text)
		p.Add(logo)
	}
	return p
}

// Add registers a top-level element and every descendant that has an id.
func (p *Page) Add(el *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roots = append(p.roots, el)
	p.index(el)
}

func (p *Page) index(el *Element) {
	if el.ID != "" {
		p.elements[el.ID] = el
	}
	for _, child := range el.Children() {
		p.index(child)
	}
}

// ElementByID returns nil when no element has the id.
func (p *Page) ElementByID(id string) *Element {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.elements[id]
}

// Roots returns the top-level elements in insertion order.
func (p *Page) Roots() []*Element {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*Element, len(p.roots))
	copy(out, p.roots)
	return out
}

// AddListener registers fn for every dispatched event and returns a func
// that removes it again.
func (p *Page) AddListener(fn Listener) (remove func()) {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	p.order = append(p.order, id)
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			for i, v := range p.order {
				if v == id {
					p.order = append(p.order[:i], p.order[i+1:]...)
					break
				}
			}
			p.mu.Unlock()
		})
	}
}

func (p *Page) ListenerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.listeners)
}

// Dispatch records ev in the store and then notifies listeners in
// registration order. Scroll offsets are clamped to the document.
func (p *Page) Dispatch(ev Event) {
	switch ev.Kind {
	case Resize:
		p.Store.SetViewportSize(ev.X, ev.Y)
		p.Store.SetScroll(p.ClampScroll(p.Store.Snapshot().Viewport.ScrollY))
	case PointerMove:
		p.Store.SetPointer(ev.X, ev.Y)
	case Scroll:
		ev.Y = p.ClampScroll(ev.Y)
		p.Store.SetScroll(ev.Y)
	}

	p.mu.RLock()
	fns := make([]Listener, 0, len(p.order))
	for _, id := range p.order {
		fns = append(fns, p.listeners[id])
	}
	p.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// ScrollBy dispatches a Scroll event relative to the current offset.
func (p *Page) ScrollBy(dy float64) {
	p.Dispatch(Event{Kind: Scroll, Y: p.Store.Snapshot().Viewport.ScrollY + dy})
}

// ClampScroll limits y to [0, DocumentHeight - viewport height].
func (p *Page) ClampScroll(y float64) float64 {
	if y < 0 {
		return 0
	}
	if p.DocumentHeight <= 0 {
		return y
	}
	limit := p.DocumentHeight - p.Store.Snapshot().Viewport.Height
	if limit < 0 {
		limit = 0
	}
	if y > limit {
		return limit
	}
	return y
}

func (p *Page) ReducedMotion() bool {
	return p.Store.Snapshot().ReducedMotion
}
