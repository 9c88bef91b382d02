package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Band returns the full-width strip of viewport that a document element
// occupying [top, top+height) covers at the given scroll offset. The strip
// is not clipped; callers test it against the viewport.
func Band(viewport image.Rectangle, top, height, scrollY float64) image.Rectangle {
	viewport = Normalize(viewport)
	y0 := viewport.Min.Y + int(top-scrollY)
	return image.Rect(viewport.Min.X, y0, viewport.Max.X, y0+int(height))
}

// Visible reports whether any part of band lies inside viewport.
func Visible(band, viewport image.Rectangle) bool {
	return !band.Intersect(Normalize(viewport)).Empty()
}

// CenterX returns the x at which content of widthPx is horizontally centred
// in rect. Content wider than rect starts at rect.Min.X.
func CenterX(rect image.Rectangle, widthPx int) int {
	rect = Normalize(rect)
	if widthPx >= rect.Dx() {
		return rect.Min.X
	}
	return rect.Min.X + (rect.Dx()-widthPx)/2
}

// CenterY returns the y at which content of heightPx is vertically centred in rect.
func CenterY(rect image.Rectangle, heightPx int) int {
	rect = Normalize(rect)
	return rect.Min.Y + (rect.Dy()-heightPx)/2
}
