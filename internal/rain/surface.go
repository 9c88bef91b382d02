package rain

import (
	"math"

	"github.com/rook-computer/binaryrain/internal/render"
)

// configureSurface sizes the backing store for the current client size and
// pixel ratio and resets the context so drawing uses logical coordinates.
// The caller rebuilds the field afterwards.
func (a *Animator) configureSurface() {
	ratio := a.surface.DevicePixelRatio()
	if ratio <= 0 || math.IsNaN(ratio) {
		ratio = 1
	}
	ratio = math.Min(ratio, a.profile.PixelRatioCap)

	w, h := a.surface.ClientSize()

	a.ctx.SetTransform(1, 0, 0, 1, 0, 0)
	a.surface.SetBackingSize(int(math.Floor(w*ratio)), int(math.Floor(h*ratio)))
	a.ctx.Scale(ratio, ratio)
	a.ctx.SetTextBaseline(render.BaselineTop)

	fontSize := math.Max(a.profile.MinFontSize, math.Round(w/a.profile.FontDivisor))
	lineHeight := math.Round(fontSize * a.profile.LineHeightRatio)
	a.ctx.SetFontSize(fontSize)

	a.geom = Geometry{Width: w, Height: h, PixelRatio: ratio, FontSize: fontSize, LineHeight: lineHeight}
}
