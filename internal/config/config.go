// Package config holds the tuning profiles and page layout for the rain
// animation. Files are YAML; fields left out keep their built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is the full set of device-keyed tuning values.
type Profile struct {
	DensityDivisor  float64 `yaml:"density_divisor"`
	MinDrops        int     `yaml:"min_drops"`
	SpeedMin        float64 `yaml:"speed_min"`
	SpeedMax        float64 `yaml:"speed_max"`
	GlyphsMin       int     `yaml:"glyphs_min"`
	GlyphsMax       int     `yaml:"glyphs_max"`
	RefreshMin      int     `yaml:"refresh_min"`
	RefreshMax      int     `yaml:"refresh_max"`
	Glyphs          string  `yaml:"glyphs"`
	FontDivisor     float64 `yaml:"font_divisor"`
	MinFontSize     float64 `yaml:"min_font_size"`
	LineHeightRatio float64 `yaml:"line_height_ratio"`
	PixelRatioCap   float64 `yaml:"pixel_ratio_cap"`
	// TargetFPS caps the update rate; 0 updates on every host frame.
	TargetFPS       int      `yaml:"target_fps"`
	InfluenceRadius float64  `yaml:"influence_radius"`
	TrailAlpha      float64  `yaml:"trail_alpha"`
	TrailColor      HexColor `yaml:"trail_color"`
	GlyphColor      HexColor `yaml:"glyph_color"`
	HighlightColor  HexColor `yaml:"highlight_color"`

	RainStopFraction float64 `yaml:"rain_stop_fraction"`
	TextFadeFraction float64 `yaml:"text_fade_fraction"`
	TextFadeMargin   float64 `yaml:"text_fade_margin"`
}

// FrameInterval is the minimum time between executed ticks, zero when uncapped.
func (p Profile) FrameInterval() time.Duration {
	if p.TargetFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(p.TargetFPS)
}

type Reveal struct {
	Prefix       string `yaml:"prefix"`
	Highlight    string `yaml:"highlight"`
	CharDelayMs  int    `yaml:"char_delay_ms"`
	StartDelayMs int    `yaml:"start_delay_ms"`
	Cursor       bool   `yaml:"cursor"`
	LingerMs     int    `yaml:"linger_ms"`
}

func (r Reveal) CharDelay() time.Duration  { return time.Duration(r.CharDelayMs) * time.Millisecond }
func (r Reveal) StartDelay() time.Duration { return time.Duration(r.StartDelayMs) * time.Millisecond }
func (r Reveal) Linger() time.Duration     { return time.Duration(r.LingerMs) * time.Millisecond }

// Element places one page element. A zero Height omits the element.
type Element struct {
	Top    float64 `yaml:"top"`
	Height float64 `yaml:"height"`
	Text   string  `yaml:"text"`
}

type Page struct {
	DocumentHeight float64 `yaml:"document_height"`
	Headline       Element `yaml:"headline"`
	Logo           Element `yaml:"logo"`
	TypeLine       Element `yaml:"type_line"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Config struct {
	Desktop     Profile `yaml:"desktop"`
	Constrained Profile `yaml:"constrained"`
	// ConstrainedBelowWidth selects the constrained profile in auto mode
	// when the initial surface is narrower than this many logical pixels.
	ConstrainedBelowWidth float64 `yaml:"constrained_below_width"`
	Reveal                Reveal  `yaml:"reveal"`
	Page                  Page    `yaml:"page"`
	Window                Window  `yaml:"window"`
}

// Profile modes accepted by Select.
const (
	ModeAuto        = "auto"
	ModeDesktop     = "desktop"
	ModeConstrained = "constrained"
)

// Select picks a profile for mode. In auto mode the surface width decides.
func (c *Config) Select(mode string, surfaceWidth float64) (Profile, bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDesktop:
		return c.Desktop, false, nil
	case ModeConstrained:
		return c.Constrained, true, nil
	case ModeAuto, "":
		if surfaceWidth > 0 && surfaceWidth < c.ConstrainedBelowWidth {
			return c.Constrained, true, nil
		}
		return c.Desktop, false, nil
	default:
		return Profile{}, false, fmt.Errorf("unknown profile %q (want auto, desktop or constrained)", mode)
	}
}

func Default() *Config {
	return &Config{
		Desktop: Profile{
			DensityDivisor:   25,
			MinDrops:         10,
			SpeedMin:         1,
			SpeedMax:         3,
			GlyphsMin:        5,
			GlyphsMax:        20,
			RefreshMin:       5,
			RefreshMax:       14,
			Glyphs:           "01",
			FontDivisor:      90,
			MinFontSize:      14,
			LineHeightRatio:  1.33,
			PixelRatioCap:    2,
			TargetFPS:        0,
			InfluenceRadius:  180,
			TrailAlpha:       0.18,
			TrailColor:       MustHex("#000000"),
			GlyphColor:       MustHex("#b4b4b4"),
			HighlightColor:   MustHex("#78dcff"),
			RainStopFraction: 0.50,
			TextFadeFraction: 0.75,
			TextFadeMargin:   80,
		},
		Constrained: Profile{
			DensityDivisor:   42,
			MinDrops:         10,
			SpeedMin:         0.8,
			SpeedMax:         2.4,
			GlyphsMin:        5,
			GlyphsMax:        12,
			RefreshMin:       5,
			RefreshMax:       14,
			Glyphs:           "01",
			FontDivisor:      110,
			MinFontSize:      14,
			LineHeightRatio:  1.33,
			PixelRatioCap:    1.5,
			TargetFPS:        48,
			InfluenceRadius:  120,
			TrailAlpha:       0.12,
			TrailColor:       MustHex("#000000"),
			GlyphColor:       MustHex("#b4b4b4"),
			HighlightColor:   MustHex("#78dcff"),
			RainStopFraction: 0.50,
			TextFadeFraction: 0.85,
			TextFadeMargin:   80,
		},
		ConstrainedBelowWidth: 768,
		Reveal: Reveal{
			Prefix:      "AI isnt your enemy; its your ",
			Highlight:   "edge",
			CharDelayMs: 95,
			Cursor:      true,
			LingerMs:    300,
		},
		Page: Page{
			DocumentHeight: 3200,
			TypeLine:       Element{Top: 320, Height: 48},
			Headline:       Element{Top: 1100, Height: 96, Text: "Build at the edge"},
			Logo:           Element{Top: 1900, Height: 64, Text: "[ logo ]"},
		},
		Window: Window{Width: 1280, Height: 720, Title: "binary rain"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Desktop.validate(); err != nil {
		errs = append(errs, fmt.Errorf("desktop: %w", err))
	}
	if err := c.Constrained.validate(); err != nil {
		errs = append(errs, fmt.Errorf("constrained: %w", err))
	}
	if c.Reveal.CharDelayMs <= 0 {
		errs = append(errs, errors.New("reveal: char_delay_ms must be positive"))
	}
	if c.Reveal.StartDelayMs < 0 || c.Reveal.LingerMs < 0 {
		errs = append(errs, errors.New("reveal: delays must not be negative"))
	}
	if c.Page.DocumentHeight < 0 {
		errs = append(errs, errors.New("page: document_height must not be negative"))
	}
	return errors.Join(errs...)
}

func (p Profile) validate() error {
	switch {
	case p.DensityDivisor <= 0:
		return errors.New("density_divisor must be positive")
	case p.MinDrops < 0:
		return errors.New("min_drops must not be negative")
	case p.SpeedMin <= 0 || p.SpeedMax < p.SpeedMin:
		return fmt.Errorf("speed range [%g, %g] is invalid", p.SpeedMin, p.SpeedMax)
	case p.GlyphsMin < 1 || p.GlyphsMax < p.GlyphsMin:
		return fmt.Errorf("glyph range [%d, %d] is invalid", p.GlyphsMin, p.GlyphsMax)
	case p.RefreshMin < 0 || p.RefreshMax < p.RefreshMin:
		return fmt.Errorf("refresh range [%d, %d] is invalid", p.RefreshMin, p.RefreshMax)
	case len([]rune(p.Glyphs)) == 0:
		return errors.New("glyphs must not be empty")
	case p.FontDivisor <= 0 || p.MinFontSize <= 0 || p.LineHeightRatio <= 0:
		return errors.New("font sizing values must be positive")
	case p.PixelRatioCap <= 0:
		return errors.New("pixel_ratio_cap must be positive")
	case p.TargetFPS < 0:
		return errors.New("target_fps must not be negative")
	case p.InfluenceRadius <= 0:
		return errors.New("influence_radius must be positive")
	case p.TrailAlpha < 0.1 || p.TrailAlpha > 0.2:
		return fmt.Errorf("trail_alpha %g outside [0.1, 0.2]", p.TrailAlpha)
	case p.RainStopFraction < 0 || p.TextFadeFraction < 0:
		return errors.New("trigger fractions must not be negative")
	}
	return nil
}
