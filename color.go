package pix

import (
	stdcolor "image/color"
)

// Color represents a color with red, green, blue, and alpha components.
// Each component is a normalized float64 in the range [0, 1]. RGB
// components are sRGB-companded unless stated otherwise; alpha is always
// linear.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Transparent = Color{}
)

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color from RGBA components.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromBytes creates a color from byte-packed 8-bit RGBA components.
func FromBytes(r, g, b, a uint8) Color {
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// Bytes returns the byte-packed 8-bit representation of the color.
// Components are clamped to [0, 1] and rounded to the nearest step.
func (c Color) Bytes() (r, g, b, a uint8) {
	return byteChan(c.R), byteChan(c.G), byteChan(c.B), byteChan(c.A)
}

// StdColor converts the color to the standard library color.Color interface.
func (c Color) StdColor() stdcolor.Color {
	r, g, b, a := c.Bytes()
	return stdcolor.NRGBA{R: r, G: g, B: b, A: a}
}

// FromStdColor converts a standard library color.Color to a Color.
func FromStdColor(c stdcolor.Color) Color {
	if n, ok := c.(stdcolor.NRGBA); ok {
		return FromBytes(n.R, n.G, n.B, n.A)
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	// RGBA() is alpha-premultiplied; undo it so pix stores straight alpha.
	af := float64(a) / 65535
	return Color{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: af,
	}
}

// Premultiply returns the color with RGB multiplied by alpha.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Unpremultiply reverses Premultiply. A fully transparent color maps to
// the zero Color.
func (c Color) Unpremultiply() Color {
	if c.A == 0 {
		return Color{}
	}
	return Color{R: c.R / c.A, G: c.G / c.A, B: c.B / c.A, A: c.A}
}

// Lerp performs linear interpolation between two colors.
func (c Color) Lerp(other Color, t float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Clamp restricts every component to [0, 1].
func (c Color) Clamp() Color {
	return Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B), A: clamp01(c.A)}
}

// byteChan clamps a [0,1] channel and converts it to uint8 with rounding.
func byteChan(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// clamp01 restricts a value to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
