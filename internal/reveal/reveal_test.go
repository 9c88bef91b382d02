package reveal

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/page"
)

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualClock fires callbacks in time order when advanced. Every timer
// fires lag after its requested deadline.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	lag    time.Duration
	seq    int
	timers []*manualTimer
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(0, 0).Add(c.now)
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{at: c.now + d + c.lag, seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) AdvanceTo(target time.Duration) {
	for {
		c.mu.Lock()
		sort.Slice(c.timers, func(i, j int) bool {
			if c.timers[i].at == c.timers[j].at {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].at < c.timers[j].at
		})
		var next *manualTimer
		for len(c.timers) > 0 {
			t := c.timers[0]
			if t.stopped {
				c.timers = c.timers[1:]
				continue
			}
			if t.at <= target {
				next = t
				c.timers = c.timers[1:]
			}
			break
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

func edgeOptions() Options {
	return Options{CharDelay: 90 * time.Millisecond, Cursor: true, CursorLinger: 300 * time.Millisecond}
}

func TestReveal_EdgeAt90ms(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)
	target.SetText("stale")

	require.True(t, tw.Reveal(target, "edge", edgeOptions()))
	assert.Equal(t, "", target.Text())
	assert.True(t, target.HasClass(page.ClassTyping))

	clock.AdvanceTo(89 * time.Millisecond)
	assert.Equal(t, "", target.Text())
	clock.AdvanceTo(90 * time.Millisecond)
	assert.Equal(t, "e", target.Text())
	clock.AdvanceTo(359 * time.Millisecond)
	assert.Equal(t, "edg", target.Text())
	assert.False(t, tw.Done())

	clock.AdvanceTo(360 * time.Millisecond)
	assert.Equal(t, "edge", target.Text())
	assert.True(t, tw.Done())
	assert.True(t, target.HasClass(page.ClassTyping))

	clock.AdvanceTo(659 * time.Millisecond)
	assert.True(t, target.HasClass(page.ClassTyping))
	clock.AdvanceTo(660 * time.Millisecond)
	assert.False(t, target.HasClass(page.ClassTyping))
	assert.Equal(t, "edge", target.Text())
}

func TestReveal_LateTimersDoNotAccumulate(t *testing.T) {
	clock := &manualClock{lag: 30 * time.Millisecond}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)

	tw.Reveal(target, "edge", edgeOptions())
	clock.AdvanceTo(119 * time.Millisecond)
	assert.Equal(t, "", target.Text())
	clock.AdvanceTo(120 * time.Millisecond)
	assert.Equal(t, "e", target.Text())

	// each rune stays on the 90ms grid plus one timer's lag
	clock.AdvanceTo(210 * time.Millisecond)
	assert.Equal(t, "ed", target.Text())
	clock.AdvanceTo(389 * time.Millisecond)
	assert.Equal(t, "edg", target.Text())
	clock.AdvanceTo(390 * time.Millisecond)
	assert.Equal(t, "edge", target.Text())
	assert.True(t, tw.Done())

	clock.AdvanceTo(689 * time.Millisecond)
	assert.True(t, target.HasClass(page.ClassTyping))
	clock.AdvanceTo(690 * time.Millisecond)
	assert.False(t, target.HasClass(page.ClassTyping))
}

func TestReveal_StartDelay(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)
	opts := edgeOptions()
	opts.StartDelay = 100 * time.Millisecond

	tw.Reveal(target, "ab", opts)
	clock.AdvanceTo(189 * time.Millisecond)
	assert.Equal(t, "", target.Text())
	clock.AdvanceTo(190 * time.Millisecond)
	assert.Equal(t, "a", target.Text())
	clock.AdvanceTo(280 * time.Millisecond)
	assert.Equal(t, "ab", target.Text())
}

func TestReveal_WithoutCursor(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)
	opts := edgeOptions()
	opts.Cursor = false

	tw.Reveal(target, "hi", opts)
	assert.False(t, target.HasClass(page.ClassTyping))
	clock.AdvanceTo(time.Second)
	assert.Equal(t, "hi", target.Text())
	assert.False(t, target.HasClass(page.ClassTyping))
}

func TestReveal_RunsOnce(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)

	require.True(t, tw.Reveal(target, "one", edgeOptions()))
	clock.AdvanceTo(time.Second)
	assert.False(t, tw.Reveal(target, "two", edgeOptions()))
	assert.False(t, tw.RevealHighlighted(target, "t", "wo", edgeOptions()))
	clock.AdvanceTo(2 * time.Second)
	assert.Equal(t, "one", target.Text())
}

func TestReveal_NilTargetIsNoop(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	assert.False(t, tw.Reveal(nil, "edge", edgeOptions()))
	assert.False(t, tw.RevealHighlighted(nil, "a", "b", edgeOptions()))
	assert.Empty(t, clock.timers)

	target := page.NewElement("t", 0, 10)
	assert.True(t, tw.Reveal(target, "x", edgeOptions()))
}

func TestRevealHighlighted(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement(page.IDTypeLine, 320, 48)

	require.True(t, tw.RevealHighlighted(target, "at the ", "edge", edgeOptions()))
	children := target.Children()
	require.Len(t, children, 2)
	span := children[1]
	assert.Equal(t, page.IDEdgeWord, span.ID)

	// 7 prefix runes then 4 word runes
	clock.AdvanceTo(7 * 90 * time.Millisecond)
	assert.Equal(t, "at the ", target.Text())
	assert.Equal(t, "", span.Text())

	clock.AdvanceTo(10 * 90 * time.Millisecond)
	assert.Equal(t, "at the edg", target.Text())
	assert.False(t, span.HasClass(page.ClassEdgeGlow))

	clock.AdvanceTo(11 * 90 * time.Millisecond)
	assert.Equal(t, "at the edge", target.Text())
	assert.Equal(t, "edge", span.Text())
	assert.True(t, span.HasClass(page.ClassEdgeGlow))
	assert.True(t, target.HasClass(page.ClassTyping))

	clock.AdvanceTo(11*90*time.Millisecond + 300*time.Millisecond)
	assert.False(t, target.HasClass(page.ClassTyping))

	segs := target.Segments()
	require.Len(t, segs, 2)
	assert.False(t, segs[0].HasClass(page.ClassEdgeGlow))
	assert.True(t, segs[1].HasClass(page.ClassEdgeGlow))
}

func TestRevealHighlighted_EmptyPrefix(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)

	tw.RevealHighlighted(target, "", "go", edgeOptions())
	clock.AdvanceTo(90 * time.Millisecond)
	assert.Equal(t, "g", target.Text())
	clock.AdvanceTo(180 * time.Millisecond)
	assert.Equal(t, "go", target.Text())
	assert.True(t, target.Children()[1].HasClass(page.ClassEdgeGlow))
}

func TestReveal_Instant(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)
	opts := edgeOptions()
	opts.Instant = true

	tw.RevealHighlighted(target, "AI isnt your enemy; its your ", "edge", opts)
	assert.Equal(t, "AI isnt your enemy; its your edge", target.Text())
	assert.True(t, target.Children()[1].HasClass(page.ClassEdgeGlow))
	assert.False(t, target.HasClass(page.ClassTyping))
	assert.True(t, tw.Done())
	assert.Empty(t, clock.timers)
}

func TestReveal_Stop(t *testing.T) {
	clock := &manualClock{}
	tw := New(clock, nil)
	target := page.NewElement("t", 0, 10)

	tw.Reveal(target, "edge", edgeOptions())
	clock.AdvanceTo(180 * time.Millisecond)
	tw.Stop()
	clock.AdvanceTo(time.Second)
	assert.Equal(t, "ed", target.Text())
	assert.False(t, tw.Done())
	tw.Stop()
}

func TestReveal_SystemClock(t *testing.T) {
	tw := New(nil, nil)
	target := page.NewElement("t", 0, 10)
	opts := Options{CharDelay: time.Millisecond, Cursor: true, CursorLinger: time.Millisecond}

	tw.Reveal(target, "01", opts)
	require.Eventually(t, func() bool {
		return target.Text() == "01" && !target.HasClass(page.ClassTyping)
	}, 2*time.Second, 5*time.Millisecond)
	tw.Stop()
}

func TestOptionsFromConfig(t *testing.T) {
	r := config.Default().Reveal
	opts := OptionsFromConfig(r, false)
	assert.Equal(t, time.Duration(r.CharDelayMs)*time.Millisecond, opts.CharDelay)
	assert.Equal(t, r.Cursor, opts.Cursor)
	assert.Equal(t, 300*time.Millisecond, opts.CursorLinger)
	assert.False(t, opts.Instant)
	assert.True(t, OptionsFromConfig(r, true).Instant)
}
