package pix

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

// stdFormat adapts a standard-library-style codec (decode to
// image.Image, encode from image.Image) to the pix Decoder and Encoder
// contracts. Still-image codecs produce single-frame Images.
type stdFormat struct {
	name       string
	headerSize int
	magic      func(header []byte) bool
	decode     func(io.Reader) (image.Image, error)
	encode     func(io.Writer, image.Image) error
}

// HeaderSize implements Decoder.
func (f *stdFormat) HeaderSize() int { return f.headerSize }

// Match implements Decoder.
func (f *stdFormat) Match(header []byte) bool { return f.magic(header) }

// Decode implements Decoder.
func (f *stdFormat) Decode(r io.Reader) (*Image, error) {
	img, err := f.decode(r)
	if err != nil {
		return nil, &FormatError{Format: f.name, Reason: err.Error()}
	}
	return FromBuffer(BufferFromStdImage(img)), nil
}

// Encode implements Encoder. Only the primary frame is written; these
// containers carry a single image.
func (f *stdFormat) Encode(w io.Writer, img *Image) error {
	return f.encode(w, img.Buffer().ToStdImage())
}

// register wires the adapter into the default registry, leaving the
// Encoder nil for decode-only codecs.
func (f *stdFormat) register() {
	format := Format{Name: f.name, Decoder: f}
	if f.encode != nil {
		format.Encoder = f
	}
	RegisterFormat(format)
}

func init() {
	(&stdFormat{
		name:       "png",
		headerSize: 8,
		magic: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("\x89PNG\r\n\x1a\n"))
		},
		decode: png.Decode,
		encode: png.Encode,
	}).register()

	(&stdFormat{
		name:       "jpeg",
		headerSize: 3,
		magic: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("\xff\xd8\xff"))
		},
		decode: jpeg.Decode,
		encode: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
		},
	}).register()
}
