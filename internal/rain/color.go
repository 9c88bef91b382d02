package rain

import (
	"image/color"
	"math"

	"github.com/rook-computer/binaryrain/internal/config"
)

// Intensity is the pointer highlight strength for a drop at distance from
// the pointer. ok is false outside the influence radius.
func Intensity(distance, radius float64) (intensity float64, ok bool) {
	if radius <= 0 || distance >= radius {
		return 0, false
	}
	return 1 - distance/radius, true
}

// GlyphColor picks the fill for glyph index of a stream of length glyphs
// whose head is distance away from the pointer.
func GlyphColor(p config.Profile, distance float64, index, length int) color.Color {
	if intensity, ok := Intensity(distance, p.InfluenceRadius); ok {
		h := p.HighlightColor
		return color.RGBA{
			R: uint8(math.Floor(float64(h.R) * intensity)),
			G: uint8(math.Floor(float64(h.G) * intensity)),
			B: uint8(math.Floor(float64(h.B) * intensity)),
			A: 0xFF,
		}
	}
	return p.GlyphColor.WithAlpha(TrailAlpha(index, length))
}

// TrailAlpha fades linearly from 1 at the head towards 0 at the tail.
func TrailAlpha(index, length int) float64 {
	if index == 0 || length <= 0 {
		return 1
	}
	return 1 - float64(index)/float64(length)
}
