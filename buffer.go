package pix

import (
	"image"
)

// Buffer represents a rectangular pixel buffer: a flat, row-major slice
// of Colors with fixed dimensions. Its length is always width*height.
type Buffer struct {
	width  int
	height int
	pix    []Color
}

// NewBuffer creates a new transparent buffer with the given dimensions.
// Non-positive dimensions are treated as zero.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]Color, width*height),
	}
}

// Width returns the width of the buffer.
func (b *Buffer) Width() int { return b.width }

// Height returns the height of the buffer.
func (b *Buffer) Height() int { return b.height }

// Pix returns the raw pixel slice in row-major order.
func (b *Buffer) Pix() []Color { return b.pix }

// Rect returns the bounds of the buffer as an image.Rectangle anchored
// at the origin.
func (b *Buffer) Rect() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// At returns the color at (x, y). Out-of-range coordinates fail with an
// *IndexError.
func (b *Buffer) At(x, y int) (Color, error) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Color{}, &IndexError{X: x, Y: y, W: b.width, H: b.height}
	}
	return b.pix[y*b.width+x], nil
}

// Set writes the color at (x, y). Out-of-range coordinates fail with an
// *IndexError.
func (b *Buffer) Set(x, y int, c Color) error {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return &IndexError{X: x, Y: y, W: b.width, H: b.height}
	}
	b.pix[y*b.width+x] = c
	return nil
}

// Row returns the pixels of row y as a slice aliasing the buffer.
// Row panics if y is out of range; it exists for row-parallel code that
// has already validated its range.
func (b *Buffer) Row(y int) []Color {
	return b.pix[y*b.width : (y+1)*b.width]
}

// Clear fills the entire buffer with a color.
func (b *Buffer) Clear(c Color) {
	for i := range b.pix {
		b.pix[i] = c
	}
}

// ClearRect fills the intersection of r with the buffer bounds.
func (b *Buffer) ClearRect(r image.Rectangle, c Color) {
	r = r.Intersect(b.Rect())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Row(y)
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = c
		}
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		width:  b.width,
		height: b.height,
		pix:    make([]Color, len(b.pix)),
	}
	copy(out.pix, b.pix)
	return out
}

// ToStdImage converts the buffer to a standard library *image.NRGBA.
func (b *Buffer) ToStdImage() *image.NRGBA {
	img := image.NewNRGBA(b.Rect())
	for y := 0; y < b.height; y++ {
		row := b.Row(y)
		for x, c := range row {
			r, g, bl, a := c.Bytes()
			i := y*img.Stride + x*4
			img.Pix[i+0] = r
			img.Pix[i+1] = g
			img.Pix[i+2] = bl
			img.Pix[i+3] = a
		}
	}
	return img
}

// BufferFromStdImage creates a buffer from a standard library image.
func BufferFromStdImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := NewBuffer(bounds.Dx(), bounds.Dy())
	for y := 0; y < b.height; y++ {
		row := b.Row(y)
		for x := range row {
			row[x] = FromStdColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return b
}
