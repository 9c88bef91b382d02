package render

import (
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Fonts builds and caches pixel-sized faces from one font file. Faces come
// from opentype first, then freetype, then basicfont.
type Fonts struct {
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	otFont *opentype.Font
	ttFont *truetype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

func NewFonts(data []byte) *Fonts {
	f := &Fonts{faces: make(map[int]font.Face)}
	if ot, err := opentype.Parse(data); err == nil {
		f.otFont = ot
	}
	if tt, err := truetype.Parse(data); err == nil {
		f.ttFont = tt
	}
	return f
}

// Face returns a face whose em size is px pixels.
func (f *Fonts) Face(px float64) font.Face {
	size := int(math.Round(px))
	if size < 1 {
		size = 1
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.faces == nil {
		f.faces = make(map[int]font.Face)
	}
	if face, ok := f.faces[size]; ok {
		return face
	}
	face := f.build(size)
	f.faces[size] = face
	return face
}

func (f *Fonts) build(size int) font.Face {
	// DPI 72 makes one point one pixel.
	if f.otFont != nil {
		face, err := opentype.NewFace(f.otFont, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
		f.errorf("opentype face %dpx failed: %v", size, err)
	}
	if f.ttFont != nil {
		return truetype.NewFace(f.ttFont, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	}
	f.errorf("no scalable font, using basicfont for %dpx", size)
	return basicfont.Face7x13
}

func (f *Fonts) errorf(format string, args ...interface{}) {
	if f.Logger != nil {
		f.Logger.Errorf("font", format, args...)
	}
}
