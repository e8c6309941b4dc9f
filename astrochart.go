// Package astrochart computes and renders astrological charts.
//
// Planets and house cusps are angles on a 360° wheel. The package lays
// planet glyphs out so they never overlap, finds aspects between point
// sets, and draws radix and transit wheels as SVG.
package astrochart

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a named angle on the wheel, usually a planet.
type Point struct {
	Name       string  `yaml:"name" json:"name" validate:"required"`
	Angle      float64 `yaml:"angle" json:"angle"`
	Retrograde bool    `yaml:"retrograde" json:"retrograde"`
}

// Data is the raw input of a chart: planet positions and 12 house cusps.
// Cusp 0 is the Ascendant, 3 the IC, 6 the Descendant and 9 the MC.
type Data struct {
	Planets []Point   `yaml:"planets" json:"planets" validate:"required,min=1,dive"`
	Cusps   []float64 `yaml:"cusps" json:"cusps" validate:"len=12"`
}

// AspectDefinition is a target separation between two points and the
// maximum deviation still counted as that aspect.
type AspectDefinition struct {
	Name  string  `yaml:"name" json:"name" validate:"required"`
	Angle float64 `yaml:"angle" json:"angle" validate:"gte=0,lte=180"`
	Orb   float64 `yaml:"orb" json:"orb" validate:"gte=0"`
}

// AspectMatch is one aspect found between two points. Precision is the
// signed deviation from the exact aspect angle, see Orb.
type AspectMatch struct {
	Aspect    AspectDefinition `json:"aspect"`
	From      Point            `json:"from"`
	To        Point            `json:"to"`
	Precision float64          `json:"precision"`
}

// Placement maps a point name to its display angle in [0, 360).
type Placement map[string]float64

// DefaultAspects returns the major aspects with a 2° orb.
func DefaultAspects() []AspectDefinition {
	return []AspectDefinition{
		{Name: "Conjunction", Angle: 0, Orb: 2},
		{Name: "Opposition", Angle: 180, Orb: 2},
		{Name: "Trine", Angle: 120, Orb: 2},
		{Name: "Square", Angle: 90, Orb: 2},
	}
}

// Color represents an RGB color value.
type Color struct {
	R, G, B uint8
}

// Hex returns the color as a CSS hex string.
func (c Color) Hex() string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(b uint8) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0x0f]})
}

// ParseColor parses "#rrggbb" or "#rgb".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("astrochart: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("astrochart: invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Config controls chart geometry and drawing.
type Config struct {
	// Width and Height of the SVG canvas in pixels.
	Width  float64
	Height float64

	// Margin between the outer circle and the canvas edge.
	Margin float64

	// PointCollisionRadius is the glyph radius in pixels. Two glyphs are
	// kept at least twice this apart.
	PointCollisionRadius float64

	// CuspCollisionDegrees is how close (in degrees) a point may sit to a
	// cusp before the cusp line is shortened.
	CuspCollisionDegrees float64

	// MaxLayoutPasses bounds the overlap resolver.
	MaxLayoutPasses int

	Aspects []AspectDefinition

	StrokeWidth float64
	Background  Color
	Stroke      Color
	PointColor  Color
	SignColor   Color

	// AspectColors colours aspect lines by aspect name. Aspects without
	// an entry are computed but not drawn.
	AspectColors map[string]Color
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Width:                800,
		Height:               800,
		Margin:               50,
		PointCollisionRadius: 12,
		CuspCollisionDegrees: DefaultCollisionDegrees,
		MaxLayoutPasses:      DefaultMaxLayoutPasses,
		Aspects:              DefaultAspects(),
		StrokeWidth:          1,
		Background:           Color{R: 0xff, G: 0xff, B: 0xff},
		Stroke:               Color{R: 0x33, G: 0x33, B: 0x33},
		PointColor:           Color{R: 0x00, G: 0x00, B: 0x00},
		SignColor:            Color{R: 0x44, G: 0x44, B: 0x44},
		AspectColors: map[string]Color{
			"Opposition": {R: 0x27, G: 0xae, B: 0x60},
			"Trine":      {R: 0x27, G: 0xae, B: 0x60},
			"Square":     {R: 0xff, G: 0x45, B: 0x00},
		},
	}
}

// Radius returns the outer wheel radius for this canvas.
func (c Config) Radius() float64 {
	r := c.Width
	if c.Height < r {
		r = c.Height
	}
	return r/2 - c.Margin
}

// Ring radii as fractions of the outer radius.
const (
	signRingRatio    = 0.85 // inner edge of the zodiac band
	pointRingRatio   = 0.70
	aspectRingRatio  = 0.40
	transitRingRatio = 1.12 // transit glyphs sit outside a radix wheel
	transitScale     = 0.80 // radix shrinks to make room for transits
)

// PointRadius is where radix glyphs are laid out.
func (c Config) PointRadius() float64 {
	return c.Radius() * pointRingRatio
}
