package render

import "image/color"

// Page colors shared by every host.
var (
	Background = color.RGBA{R: 0x05, G: 0x07, B: 0x0A, A: 0xFF}
	Foreground = color.RGBA{R: 0xE8, G: 0xEC, B: 0xF1, A: 0xFF}
	Glow       = color.RGBA{R: 0x78, G: 0xDC, B: 0xFF, A: 0xFF}

	// TextScale is the share of an element's height used as its font size.
	TextScale = 0.6
)

// Keyboard scrolling shared by the hosts that have no wheel.
const (
	// ScrollStep is one arrow-key press in logical pixels.
	ScrollStep = 40.0
	// PageScrollRatio is the share of the viewport a page key scrolls.
	PageScrollRatio = 0.9
)
