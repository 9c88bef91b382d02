package state

import "sync"

// Pointer is the last known pointer position in logical surface coordinates.
type Pointer struct {
	X float64
	Y float64
}

// Viewport describes the visible part of the page.
type Viewport struct {
	Width   float64
	Height  float64
	ScrollY float64
}

// State is the set of host signals consumed by the animator.
// A render tick reads it once through Store.Snapshot.
type State struct {
	Pointer       Pointer
	Viewport      Viewport
	PixelRatio    float64
	ReducedMotion bool
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{PixelRatio: 1}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPointer(x, y float64) {
	store.mu.Lock()
	store.state.Pointer = Pointer{X: x, Y: y}
	store.mu.Unlock()
}

func (store *Store) SetViewportSize(width, height float64) {
	store.mu.Lock()
	store.state.Viewport.Width = width
	store.state.Viewport.Height = height
	store.mu.Unlock()
}

func (store *Store) SetScroll(y float64) {
	store.mu.Lock()
	store.state.Viewport.ScrollY = y
	store.mu.Unlock()
}

func (store *Store) SetPixelRatio(ratio float64) {
	store.mu.Lock()
	store.state.PixelRatio = ratio
	store.mu.Unlock()
}

func (store *Store) SetReducedMotion(reduced bool) {
	store.mu.Lock()
	store.state.ReducedMotion = reduced
	store.mu.Unlock()
}
