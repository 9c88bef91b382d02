package config

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// HexColor is an opaque RGB color written as "#rrggbb" in YAML.
type HexColor struct {
	color.RGBA
}

func MustHex(s string) HexColor {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func ParseHex(s string) (HexColor, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return HexColor{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return HexColor{color.RGBA{R: r, G: g, B: b, A: 0xFF}}, nil
}

func (c HexColor) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// WithAlpha returns the color as non-premultiplied RGBA with alpha in [0,1].
func (c HexColor) WithAlpha(alpha float64) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha*255 + 0.5)}
}

func (c *HexColor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: color must be a hex string", node.Line)
	}
	parsed, err := ParseHex(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

func (c HexColor) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}
