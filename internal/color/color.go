// Package color converts between hex, RGB and HSL notations and derives the
// palette a guide's theme color is rendered with.
package color

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an sRGB color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// HSL is a color in hue/saturation/lightness form. H is in [0, 360) and S and
// L are in [0, 1].
type HSL struct {
	H, S, L float64
}

// ParseHex accepts "#rrggbb", "rrggbb" and "#rgb".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 3 && len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// Hex formats c as lower-case "#rrggbb".
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// RGBToHSL converts c to HSL.
func RGBToHSL(c RGB) HSL {
	h, s, l := c.colorful().Hsl()
	if h >= 360 {
		h -= 360
	}
	return HSL{H: h, S: s, L: l}
}

// HSLToRGB converts c to RGB, rounding each channel to the nearest value.
func HSLToRGB(c HSL) RGB {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return fromColorful(colorful.Hsl(h, clamp01(c.S), clamp01(c.L)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// HexToHSL parses a hex color and converts it to HSL.
func HexToHSL(s string) (HSL, error) {
	c, err := ParseHex(s)
	if err != nil {
		return HSL{}, err
	}
	return RGBToHSL(c), nil
}

// HSLToHex converts c to "#rrggbb".
func HSLToHex(c HSL) string {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return colorful.Hsl(h, clamp01(c.S), clamp01(c.L)).Clamped().Hex()
}

// Lighten raises the lightness of a hex color by amount (0..1).
func Lighten(hex string, amount float64) (string, error) {
	return shift(hex, amount)
}

// Darken lowers the lightness of a hex color by amount (0..1).
func Darken(hex string, amount float64) (string, error) {
	return shift(hex, -amount)
}

func shift(hex string, amount float64) (string, error) {
	c, err := HexToHSL(hex)
	if err != nil {
		return "", err
	}
	c.L = clamp01(c.L + amount)
	return HSLToHex(c), nil
}

// Luminance returns the WCAG relative luminance of c.
func Luminance(c RGB) float64 {
	r, g, b := c.colorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Palette is the set of colors a themed page is drawn with.
type Palette struct {
	Primary  string
	Light    string
	Dark     string
	Contrast string
}

// Light and dark variants are this far from the primary in lightness.
const paletteShift = 0.15

// NewPalette derives a palette from a theme color. Contrast is black or white,
// whichever reads better on the primary color.
func NewPalette(hex string) (Palette, error) {
	c, err := ParseHex(hex)
	if err != nil {
		return Palette{}, err
	}
	light, _ := Lighten(c.Hex(), paletteShift)
	dark, _ := Darken(c.Hex(), paletteShift)
	contrast := "#ffffff"
	if Luminance(c) > 0.179 {
		contrast = "#000000"
	}
	return Palette{Primary: c.Hex(), Light: light, Dark: dark, Contrast: contrast}, nil
}

// CSSVars renders the palette as CSS custom properties for a style attribute.
func (p Palette) CSSVars() string {
	return fmt.Sprintf("--theme:%s;--theme-light:%s;--theme-dark:%s;--theme-contrast:%s",
		p.Primary, p.Light, p.Dark, p.Contrast)
}
