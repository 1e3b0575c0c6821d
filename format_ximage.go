package pix

import (
	"bytes"
	"image"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// The golang.org/x/image codecs plug in through the same adapter as the
// standard library ones. WebP is decode-only; x/image ships no encoder.

func init() {
	(&stdFormat{
		name:       "bmp",
		headerSize: 2,
		magic: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("BM"))
		},
		decode: bmp.Decode,
		encode: bmp.Encode,
	}).register()

	(&stdFormat{
		name:       "tiff",
		headerSize: 4,
		magic: func(h []byte) bool {
			return bytes.HasPrefix(h, []byte("II*\x00")) || bytes.HasPrefix(h, []byte("MM\x00*"))
		},
		decode: tiff.Decode,
		encode: func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, nil)
		},
	}).register()

	(&stdFormat{
		name:       "webp",
		headerSize: 12,
		magic: func(h []byte) bool {
			return len(h) >= 12 && bytes.Equal(h[0:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WEBP"))
		},
		decode: webp.Decode,
	}).register()
}
