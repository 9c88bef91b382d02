package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rook-computer/binaryrain/internal/assets"
	"github.com/rook-computer/binaryrain/internal/config"
	"github.com/rook-computer/binaryrain/internal/page"
)

func TestCompose_BackgroundOnly(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	(&Composer{}).Compose(dst, nil, nil)
	assert.Equal(t, Background, dst.RGBAAt(5, 5))
}

func TestCompose_RainOpacity(t *testing.T) {
	fonts := NewFonts(assets.FontTTF)
	rain := NewCanvas(10, 10, 2, fonts)
	rain.SetBackingSize(20, 20)
	rain.SetFillColor(color.RGBA{R: 255, A: 255})
	rain.FillRect(0, 0, 20, 20)

	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	cp := &Composer{Fonts: fonts}
	cp.Compose(dst, rain, nil)
	assert.Equal(t, uint8(255), dst.RGBAAt(3, 3).R)

	rain.SetOpacity(0)
	cp.Compose(dst, rain, nil)
	assert.Equal(t, Background, dst.RGBAAt(3, 3))

	rain.SetOpacity(1)
	rain.SetHidden(true)
	cp.Compose(dst, rain, nil)
	assert.Equal(t, Background, dst.RGBAAt(3, 3))
}

func inkIn(img *image.RGBA, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) != Background {
				n++
			}
		}
	}
	return n
}

func TestCompose_PageTextFollowsScrollAndOpacity(t *testing.T) {
	l := config.Default().Page
	pg := page.FromLayout(l, nil)
	pg.Dispatch(page.Event{Kind: page.Resize, X: 400, Y: 600})
	pg.ElementByID(page.IDTypeLine).SetText("edge")

	dst := image.NewRGBA(image.Rect(0, 0, 400, 600))
	cp := &Composer{Fonts: NewFonts(assets.FontTTF)}
	band := image.Rect(0, 320, 400, 368)

	cp.Compose(dst, nil, pg)
	assert.Positive(t, inkIn(dst, band))

	pg.ElementByID(page.IDTypeHeader).SetOpacity(0)
	cp.Compose(dst, nil, pg)
	assert.Zero(t, inkIn(dst, band))

	pg.ElementByID(page.IDTypeHeader).SetOpacity(1)
	pg.Dispatch(page.Event{Kind: page.Scroll, Y: 1000})
	cp.Compose(dst, nil, pg)
	assert.Zero(t, inkIn(dst, band))
}

func TestHasClassInTree(t *testing.T) {
	root := page.NewElement("r", 0, 1)
	child := page.NewElement("c", 0, 1)
	root.AppendChild(child)
	assert.False(t, HasClassInTree(root, page.ClassTyping))
	child.AddClass(page.ClassTyping)
	assert.True(t, HasClassInTree(root, page.ClassTyping))
}
