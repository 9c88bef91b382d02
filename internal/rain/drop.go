package rain

import (
	"math"
	"math/rand"

	"github.com/rook-computer/binaryrain/internal/config"
)

// Drop is one falling stream. Glyphs[0] is the leading glyph.
type Drop struct {
	X            float64
	Y            float64
	Speed        float64
	Glyphs       []rune
	RefreshEvery int
	SinceRefresh int
}

// TrailEnd is the y of the trailing edge of the stream.
func (d *Drop) TrailEnd(spacing float64) float64 {
	return d.Y - float64(len(d.Glyphs))*spacing
}

// Expired reports whether the whole trail has passed below height.
func (d *Drop) Expired(height, spacing float64) bool {
	return d.TrailEnd(spacing) > height
}

// Field is the ordered set of drops covering the surface.
type Field struct {
	Drops []Drop

	profile config.Profile
	glyphs  []rune
	rng     *rand.Rand
}

func NewField(profile config.Profile, rng *rand.Rand) *Field {
	glyphs := []rune(profile.Glyphs)
	if len(glyphs) == 0 {
		glyphs = []rune("01")
	}
	return &Field{profile: profile, glyphs: glyphs, rng: rng}
}

// DropCount is max(minDrops, floor(width/divisor)).
func DropCount(width, divisor float64, minDrops int) int {
	n := 0
	if divisor > 0 && width > 0 {
		n = int(math.Floor(width / divisor))
	}
	if n < minDrops {
		return minDrops
	}
	return n
}

// Build replaces every drop with a freshly spawned one.
func (f *Field) Build(width, height float64) {
	n := DropCount(width, f.profile.DensityDivisor, f.profile.MinDrops)
	f.Drops = make([]Drop, n)
	for i := range f.Drops {
		f.Drops[i] = f.Spawn(width, height)
	}
}

// Spawn returns a new drop placed above the surface, strictly inside
// (-height, 0) vertically so initial drops are staggered.
func (f *Field) Spawn(width, height float64) Drop {
	p := f.profile
	count := p.GlyphsMin + f.rng.Intn(p.GlyphsMax-p.GlyphsMin+1)
	glyphs := make([]rune, count)
	for i := range glyphs {
		glyphs[i] = f.RandomGlyph()
	}
	return Drop{
		X:            f.rng.Float64() * width,
		Y:            -f.openUnit() * height,
		Speed:        p.SpeedMin + f.rng.Float64()*(p.SpeedMax-p.SpeedMin),
		Glyphs:       glyphs,
		RefreshEvery: p.RefreshMin + f.rng.Intn(p.RefreshMax-p.RefreshMin+1),
	}
}

func (f *Field) RandomGlyph() rune {
	return f.glyphs[f.rng.Intn(len(f.glyphs))]
}

// openUnit is uniform in (0, 1).
func (f *Field) openUnit() float64 {
	for {
		if u := f.rng.Float64(); u > 0 {
			return u
		}
	}
}
