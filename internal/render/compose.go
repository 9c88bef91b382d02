package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/binaryrain/internal/page"
	"github.com/rook-computer/binaryrain/internal/render/layout"
)

// Composer assembles a presented frame: background, the rain surface at
// its element opacity, then the page text on top.
type Composer struct {
	Fonts *Fonts

	scratch *image.RGBA
}

func (cp *Composer) Compose(dst *image.RGBA, rain *Canvas, pg *page.Page) {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, &image.Uniform{C: Background}, image.Point{}, draw.Src)
	if rain != nil {
		cp.drawRain(dst, rain)
	}
	if pg != nil {
		cp.drawPage(dst, pg)
	}
}

func (cp *Composer) drawRain(dst *image.RGBA, rain *Canvas) {
	if rain.Hidden() || rain.Opacity() <= 0 {
		return
	}
	src := rain.Image()
	bounds := dst.Bounds()
	if src.Bounds().Dx() == 0 || src.Bounds().Dy() == 0 {
		return
	}
	// The backing store is pixel-ratio scaled; present it at the frame size.
	if src.Bounds().Size() != bounds.Size() {
		if cp.scratch == nil || cp.scratch.Bounds() != bounds {
			cp.scratch = image.NewRGBA(bounds)
		}
		xdraw.NearestNeighbor.Scale(cp.scratch, bounds, src, src.Bounds(), xdraw.Src, nil)
		src = cp.scratch
	}
	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(rain.Opacity())*255 + 0.5)})
	draw.DrawMask(dst, bounds, src, src.Bounds().Min, mask, image.Point{}, draw.Over)
}

func (cp *Composer) drawPage(dst *image.RGBA, pg *page.Page) {
	if cp.Fonts == nil {
		return
	}
	viewport := dst.Bounds()
	scrollY := pg.Store.Snapshot().Viewport.ScrollY
	for _, el := range pg.Roots() {
		band := layout.Band(viewport, el.Top, el.Height, scrollY)
		if !layout.Visible(band, viewport) {
			continue
		}
		opacity := el.EffectiveOpacity()
		if opacity <= 0 {
			continue
		}
		cp.drawElementText(dst, el, band, opacity)
	}
}

func (cp *Composer) drawElementText(dst *image.RGBA, el *page.Element, band image.Rectangle, opacity float64) {
	segments := el.Segments()
	typing := HasClassInTree(el, page.ClassTyping)
	if len(segments) == 0 && !typing {
		return
	}
	face := cp.Fonts.Face(float64(band.Dy()) * TextScale)
	drawer := &font.Drawer{Dst: dst, Face: face}

	width := fixed.Int26_6(0)
	for _, seg := range segments {
		width += drawer.MeasureString(seg.Text)
	}
	if typing {
		width += drawer.MeasureString("_")
	}
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	x := layout.CenterX(band, width.Ceil())
	baseline := layout.CenterY(band, textHeight) + metrics.Ascent.Ceil()
	drawer.Dot = fixed.P(x, baseline)

	for _, seg := range segments {
		if seg.HasClass(page.ClassEdgeGlow) {
			start := drawer.Dot
			// soft halo under the highlighted run
			for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				drawer.Src = image.NewUniform(withOpacity(Glow, opacity*0.35))
				drawer.Dot = start.Add(fixed.P(off[0], off[1]))
				drawer.DrawString(seg.Text)
			}
			drawer.Dot = start
			drawer.Src = image.NewUniform(withOpacity(Glow, opacity))
		} else {
			drawer.Src = image.NewUniform(withOpacity(Foreground, opacity))
		}
		drawer.DrawString(seg.Text)
	}
	if typing {
		drawer.Src = image.NewUniform(withOpacity(Foreground, opacity*0.8))
		drawer.DrawString("_")
	}
}

// HasClassInTree reports whether el or any descendant carries class name.
func HasClassInTree(el *page.Element, name string) bool {
	if el.HasClass(name) {
		return true
	}
	for _, child := range el.Children() {
		if HasClassInTree(child, name) {
			return true
		}
	}
	return false
}

func withOpacity(c color.RGBA, opacity float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(clamp01(opacity)*float64(c.A) + 0.5)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
