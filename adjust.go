package pix

import "image"

// pointProcessor applies a pure per-pixel color function. It carries no
// cross-row state, so rows parallelize trivially.
type pointProcessor struct {
	fn func(Color) Color
}

// ApplyRows implements Processor.
func (p pointProcessor) ApplyRows(dst, src *Buffer, dstRect, srcRect image.Rectangle, startRow, endRow int) {
	for y := startRow; y < endRow; y++ {
		srcRow := src.Row(y)
		dstRow := dst.Row(y)
		for x, c := range srcRow {
			dstRow[x] = p.fn(c)
		}
	}
}

// Brightness returns a processor that shifts all channels by
// amount/100, with amount in [-100, 100]: -100 forces black, 100 forces
// white, 0 is the identity.
func Brightness(amount float64) Processor {
	shift := amount / 100
	return pointProcessor{fn: func(c Color) Color {
		return Color{R: c.R + shift, G: c.G + shift, B: c.B + shift, A: c.A}.Clamp()
	}}
}

// Contrast returns a processor that scales channel distance from
// mid-gray by (100+amount)/100, with amount in [-100, 100]: -100 forces
// uniform gray, 0 is the identity.
func Contrast(amount float64) Processor {
	factor := (100 + amount) / 100
	return pointProcessor{fn: func(c Color) Color {
		return Color{
			R: (c.R-0.5)*factor + 0.5,
			G: (c.G-0.5)*factor + 0.5,
			B: (c.B-0.5)*factor + 0.5,
			A: c.A,
		}.Clamp()
	}}
}

// Saturation returns a processor that scales HSL saturation by
// (100+amount)/100, with amount in [-100, 100]: -100 is grayscale.
func Saturation(amount float64) Processor {
	factor := (100 + amount) / 100
	return pointProcessor{fn: func(c Color) Color {
		h, s, l := c.ToHSL()
		out := FromHSL(h, s*factor, l)
		out.A = c.A
		return out
	}}
}

// Hue returns a processor that rotates the hue angle by shift degrees.
func Hue(shift float64) Processor {
	return pointProcessor{fn: func(c Color) Color {
		h, s, l := c.ToHSL()
		out := FromHSL(h+shift, s, l)
		out.A = c.A
		return out
	}}
}

// Grayscale returns a processor that replaces each pixel with its BT.601
// luminance.
func Grayscale() Processor {
	return pointProcessor{fn: func(c Color) Color {
		y := c.Luminance()
		return Color{R: y, G: y, B: y, A: c.A}
	}}
}

// Invert returns a processor that inverts the color channels, leaving
// alpha unchanged.
func Invert() Processor {
	return pointProcessor{fn: func(c Color) Color {
		return Color{R: 1 - clamp01(c.R), G: 1 - clamp01(c.G), B: 1 - clamp01(c.B), A: c.A}
	}}
}
