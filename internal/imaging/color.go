package imaging

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// LabColor represents a color in CIE L*a*b* (D65).
type LabColor struct {
	L float64 `json:"l"` // Lightness: 0-100
	A float64 `json:"a"` // Green-red axis
	B float64 `json:"b"` // Blue-yellow axis
}

// LinearColor holds the unclipped linear-light samples of a pixel.
type LinearColor struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
}

// ColorResult describes one pixel of a rendered buffer.
//
// Hex, RGB, HSL and Lab describe the displayed color, i.e. after clipping and
// sRGB encoding. Linear holds the raw values that went into the encoder, which
// may lie outside [0,1] and show how far a pixel is clipped.
type ColorResult struct {
	Hex     string      `json:"hex"`     // Hex format "#RRGGBB"
	RGB     RGBColor    `json:"rgb"`     // 8-bit display components
	HSL     HSLColor    `json:"hsl"`     // HSL of the display color
	Lab     LabColor    `json:"lab"`     // CIE Lab of the display color
	Linear  LinearColor `json:"linear"`  // Linear samples before encoding
	Clipped bool        `json:"clipped"` // True if any channel is outside [0,1]
}

// SampleColor reports the color of b at (x, y).
//
// Coordinates are 0-based with the origin at the top-left corner. An error is
// returned if (x, y) lies outside the buffer.
func SampleColor(b *ColorBuffer, x, y int) (*ColorResult, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, bl := b.At(x, y)
	// colorful.LinearRgb applies the same sRGB curve as the encoder.
	c := colorful.LinearRgb(
		float64(clampf(r, 0, 1)),
		float64(clampf(g, 0, 1)),
		float64(clampf(bl, 0, 1)),
	).Clamped()

	r8, g8, b8 := c.RGB255()
	// HSL follows the 8-bit display values so 1.0 reads as 100%, not 99%.
	h, s, l := colorful.Color{
		R: float64(r8) / 255,
		G: float64(g8) / 255,
		B: float64(b8) / 255,
	}.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	labL, labA, labB := c.Lab()

	return &ColorResult{
		Hex: fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB: RGBColor{R: r8, G: g8, B: b8},
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		Lab: LabColor{
			L: round2(labL * 100),
			A: round2(labA * 100),
			B: round2(labB * 100),
		},
		Linear:  LinearColor{R: r, G: g, B: bl},
		Clipped: outsideUnit(r) || outsideUnit(g) || outsideUnit(bl),
	}, nil
}

func outsideUnit(v float32) bool {
	return v < 0 || v > 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
