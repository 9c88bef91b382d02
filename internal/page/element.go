package page

import (
	"strings"
	"sync"
)

// Element is a node of the page document. Top and Height are in document
// coordinates (pixels from the top of the page, independent of scroll).
type Element struct {
	ID     string
	Top    float64
	Height float64

	mu       sync.RWMutex
	parent   *Element
	children []*Element
	text     string
	classes  map[string]struct{}
	opacity  float64
}

func NewElement(id string, top, height float64) *Element {
	return &Element{ID: id, Top: top, Height: height, opacity: 1}
}

// Segment is a run of text together with the classes of the element it belongs to.
type Segment struct {
	Text    string
	Classes []string
}

func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parent
}

func (e *Element) AppendChild(child *Element) {
	child.mu.Lock()
	child.parent = e
	child.mu.Unlock()
	e.mu.Lock()
	e.children = append(e.children, child)
	e.mu.Unlock()
}

func (e *Element) Children() []*Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Clear removes all children and own text.
func (e *Element) Clear() {
	e.mu.Lock()
	old := e.children
	e.children = nil
	e.text = ""
	e.mu.Unlock()
	for _, child := range old {
		child.mu.Lock()
		child.parent = nil
		child.mu.Unlock()
	}
}

func (e *Element) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

func (e *Element) AppendText(text string) {
	e.mu.Lock()
	e.text += text
	e.mu.Unlock()
}

// Text is the concatenated text content of the element and its descendants.
func (e *Element) Text() string {
	var b strings.Builder
	for _, seg := range e.Segments() {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Segments flattens the subtree in document order, skipping empty runs.
func (e *Element) Segments() []Segment {
	e.mu.RLock()
	own := e.text
	classes := e.classList()
	children := make([]*Element, len(e.children))
	copy(children, e.children)
	e.mu.RUnlock()

	var out []Segment
	if own != "" {
		out = append(out, Segment{Text: own, Classes: classes})
	}
	for _, child := range children {
		out = append(out, child.Segments()...)
	}
	return out
}

func (e *Element) AddClass(name string) {
	e.mu.Lock()
	if e.classes == nil {
		e.classes = make(map[string]struct{})
	}
	e.classes[name] = struct{}{}
	e.mu.Unlock()
}

func (e *Element) RemoveClass(name string) {
	e.mu.Lock()
	delete(e.classes, name)
	e.mu.Unlock()
}

func (e *Element) HasClass(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.classes[name]
	return ok
}

func (e *Element) classList() []string {
	if len(e.classes) == 0 {
		return nil
	}
	out := make([]string, 0, len(e.classes))
	for name := range e.classes {
		out = append(out, name)
	}
	return out
}

func (e *Element) SetOpacity(opacity float64) {
	e.mu.Lock()
	e.opacity = opacity
	e.mu.Unlock()
}

func (e *Element) Opacity() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opacity
}

// EffectiveOpacity multiplies the opacity of the element and its ancestors.
func (e *Element) EffectiveOpacity() float64 {
	opacity := 1.0
	for el := e; el != nil; el = el.Parent() {
		opacity *= el.Opacity()
	}
	return opacity
}

// HasClass reports whether the segment carries class name.
func (s Segment) HasClass(name string) bool {
	for _, c := range s.Classes {
		if c == name {
			return true
		}
	}
	return false
}
