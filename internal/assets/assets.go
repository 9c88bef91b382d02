package assets

import "golang.org/x/image/font/gofont/gomono"

// FontTTF is the monospace face used for rain glyphs and page text.
var FontTTF = gomono.TTF
