// Package reveal types text into page elements one rune at a time on a
// timer, independently of the rain frame loop.
package reveal

import (
	"sync"
	"time"

	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/page"
)

// DefaultCursorLinger is how long the typing class stays after the last rune.
const DefaultCursorLinger = 300 * time.Millisecond

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Options struct {
	CharDelay    time.Duration
	StartDelay   time.Duration
	Cursor       bool
	CursorLinger time.Duration
	// Instant sets the full text at once, for reduced motion.
	Instant bool
}

// OptionsFromConfig maps the configured reveal timing onto Options.
func OptionsFromConfig(r config.Reveal, instant bool) Options {
	return Options{
		CharDelay:    r.CharDelay(),
		StartDelay:   r.StartDelay(),
		Cursor:       r.Cursor,
		CursorLinger: r.Linger(),
		Instant:      instant,
	}
}

// Typewriter runs a single reveal per page load.
type Typewriter struct {
	Clock  Clock
	Logger Logger

	mu      sync.Mutex
	started bool
	stopped bool
	done    bool
	pending Timer
}

func New(clock Clock, logger Logger) *Typewriter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Typewriter{Clock: clock, Logger: logger}
}

// Reveal clears target and types text into it. It reports whether the
// reveal was started; a nil target or a second call does nothing.
func (tw *Typewriter) Reveal(target *page.Element, text string, opts Options) bool {
	if target == nil || !tw.claim() {
		return false
	}
	target.Clear()
	target.SetOpacity(1)
	tw.run(target, []sink{{el: target, runes: []rune(text)}}, nil, opts)
	return true
}

// RevealHighlighted types prefix as plain text followed by word inside an
// edge-word span, which glows once its last rune has landed.
func (tw *Typewriter) RevealHighlighted(target *page.Element, prefix, word string, opts Options) bool {
	if target == nil || !tw.claim() {
		return false
	}
	target.Clear()
	target.SetOpacity(1)

	plain := page.NewElement("", target.Top, target.Height)
	span := page.NewElement(page.IDEdgeWord, target.Top, target.Height)
	target.AppendChild(plain)
	target.AppendChild(span)

	glow := func() {
		if word != "" {
			span.AddClass(page.ClassEdgeGlow)
		}
	}
	tw.run(target, []sink{{el: plain, runes: []rune(prefix)}, {el: span, runes: []rune(word)}}, glow, opts)
	return true
}

// Stop cancels any pending timers. Elements keep whatever text they have.
func (tw *Typewriter) Stop() {
	tw.mu.Lock()
	tw.stopped = true
	pending := tw.pending
	tw.pending = nil
	tw.mu.Unlock()
	if pending != nil {
		pending.Stop()
	}
}

// Done reports whether the last rune has been revealed.
func (tw *Typewriter) Done() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.done
}

func (tw *Typewriter) claim() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.started {
		tw.infof("reveal already started, ignoring")
		return false
	}
	tw.started = true
	return true
}

type sink struct {
	el    *page.Element
	runes []rune
}

func (tw *Typewriter) run(target *page.Element, sinks []sink, finished func(), opts Options) {
	total := 0
	for _, s := range sinks {
		total += len(s.runes)
	}

	origin := tw.Clock.Now()
	// rune n is due at StartDelay + (n+1)*CharDelay after origin
	due := func(n int) time.Duration {
		return opts.StartDelay + time.Duration(n+1)*opts.CharDelay
	}

	complete := func(at time.Duration) {
		tw.mu.Lock()
		tw.done = true
		tw.mu.Unlock()
		if finished != nil {
			finished()
		}
		if opts.Cursor && !opts.Instant {
			linger := opts.CursorLinger
			if linger <= 0 {
				linger = DefaultCursorLinger
			}
			tw.at(origin, at+linger, func() { target.RemoveClass(page.ClassTyping) })
		}
		tw.infof("revealed %d runes", total)
	}

	if opts.Instant {
		for _, s := range sinks {
			s.el.SetText(string(s.runes))
		}
		complete(0)
		return
	}
	if opts.Cursor {
		target.AddClass(page.ClassTyping)
	}
	if total == 0 {
		tw.at(origin, opts.StartDelay, func() { complete(opts.StartDelay) })
		return
	}

	si, ri, n := 0, 0, 0
	var step func()
	step = func() {
		for si < len(sinks) && ri >= len(sinks[si].runes) {
			si, ri = si+1, 0
		}
		sinks[si].el.AppendText(string(sinks[si].runes[ri]))
		ri++
		n++
		if n == total {
			complete(due(n - 1))
			return
		}
		tw.at(origin, due(n), step)
	}
	tw.at(origin, due(0), step)
}

// at schedules fn for offset after origin, firing at once when that moment
// has already passed. Steps are chained, so at most one timer is pending.
func (tw *Typewriter) at(origin time.Time, offset time.Duration, fn func()) {
	d := offset - tw.Clock.Now().Sub(origin)
	if d < 0 {
		d = 0
	}
	tw.after(d, fn)
}

// after schedules fn unless the typewriter has been stopped.
func (tw *Typewriter) after(d time.Duration, fn func()) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.stopped {
		return
	}
	tw.pending = tw.Clock.AfterFunc(d, func() {
		tw.mu.Lock()
		stopped := tw.stopped
		tw.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

func (tw *Typewriter) infof(format string, args ...interface{}) {
	if tw.Logger != nil {
		tw.Logger.Infof("reveal", format, args...)
	}
}
