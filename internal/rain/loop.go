package rain

import (
	"math"
	"time"
)

// Start requests a frame unless one is already outstanding or the rain is
// paused by the scroll gate.
func (a *Animator) Start() {
	if a.inert || a.tornDown || a.paused || a.handle != 0 {
		return
	}
	a.handle = a.frames.RequestFrame(a.frame)
}

// Stop cancels the outstanding frame request, if any.
func (a *Animator) Stop() {
	if a.handle == 0 {
		return
	}
	a.frames.CancelFrame(a.handle)
	a.handle = 0
}

func (a *Animator) frame(ts time.Duration) {
	a.handle = 0
	if !a.paused && (!a.ticked || ts-a.lastTick >= a.frameInterval) {
		a.ticked = true
		a.lastTick = ts
		a.Tick()
	}
	a.handle = a.frames.RequestFrame(a.frame)
}

// Tick fades the previous frame, draws every visible glyph and advances the field.
func (a *Animator) Tick() {
	if a.inert {
		return
	}
	a.ticks++
	snap := a.page.Store.Snapshot()
	w, h := a.geom.Width, a.geom.Height
	spacing := a.geom.LineHeight

	a.ctx.SetFillColor(a.profile.TrailColor.WithAlpha(a.profile.TrailAlpha))
	a.ctx.FillRect(0, 0, w, h)

	drops := a.field.Drops
	for i := range drops {
		d := &drops[i]
		distance := math.Hypot(snap.Pointer.X-d.X, snap.Pointer.Y-d.Y)
		for j, g := range d.Glyphs {
			y := d.Y - float64(j)*spacing
			if y < 0 || y > h {
				continue
			}
			a.ctx.SetFillColor(GlyphColor(a.profile, distance, j, len(d.Glyphs)))
			a.ctx.FillText(string(g), d.X, y)
		}

		d.Y += d.Speed

		d.SinceRefresh++
		if d.SinceRefresh > d.RefreshEvery {
			d.SinceRefresh = 0
			d.Glyphs[0] = a.field.RandomGlyph()
		}

		if d.Expired(h, spacing) {
			drops[i] = a.field.Spawn(w, h)
		}
	}
}
