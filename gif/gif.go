// Package gif implements a decoder and encoder for the GIF container:
// the block grammar, LZW-compressed index streams, and multi-frame
// compositing with disposal semantics and interlacing.
//
// The GIF specification is at https://www.w3.org/Graphics/GIF/spec-gif89a.txt.
//
// Importing the package registers the format with pix:
//
//	import _ "github.com/gopix/pix/gif"
package gif

import (
	"io"

	"github.com/gopix/pix"
)

// Block labels and extension sub-labels.
const (
	blockExtension       = 0x21
	blockImageDescriptor = 0x2C
	blockTrailer         = 0x3B

	extPlainText      = 0x01
	extGraphicControl = 0xF9
	extComment        = 0xFE
	extApplication    = 0xFF
)

// Packed-field masks.
const (
	// Logical screen descriptor fields.
	fGlobalColorTable     = 1 << 7
	fGlobalColorTableSize = 7

	// Image descriptor fields.
	fLocalColorTable     = 1 << 7
	fInterlace           = 1 << 6
	fLocalColorTableSize = 7

	// Graphic control fields.
	fTransparentSet = 1 << 0
	fDisposalMethod = 7 << 2
)

// GIF disposal method values on the wire.
const (
	disposalNone       = 0
	disposalKeep       = 1
	disposalBackground = 2
	disposalPrevious   = 3
)

// Structural limits. Exceeding either is a grammar violation, not a
// resource hint: decoding fails with a typed format error.
const (
	// MaxCanvasDim caps the logical screen's width and height.
	MaxCanvasDim = 16384

	// MaxCommentLen caps the total concatenated length of a comment
	// extension's sub-blocks.
	MaxCommentLen = 4096
)

// CommentProperty is the property name under which decoded comment
// extensions are recorded on the image.
const CommentProperty = "comment"

// logicalScreen is the decoded logical screen descriptor. It lives only
// for the duration of one decode call.
type logicalScreen struct {
	width, height int
	hasGlobal     bool
	globalSize    int // palette entry count
	background    uint8
	aspectRatio   uint8
}

// graphicControl is the decoded graphic control extension applying to
// the next frame.
type graphicControl struct {
	disposal      uint8
	delay         int // hundredths of a second, little-endian on the wire
	transparent   bool
	transparentIx uint8
}

// imageDescriptor is the decoded per-frame descriptor.
type imageDescriptor struct {
	left, top     int
	width, height int
	hasLocal      bool
	localSize     int
	interlaced    bool
}

// interlacePass describes one pass of the four-pass interlace order:
// rows start at offset and advance by stride.
type interlacePass struct {
	offset, stride int
}

// interlacing is the pass order mandated by the specification.
var interlacing = [4]interlacePass{
	{0, 8},
	{4, 8},
	{2, 4},
	{1, 2},
}

// format adapts the codec to the pix format contracts.
type format struct{}

// HeaderSize implements pix.Decoder.
func (format) HeaderSize() int { return 6 }

// Match implements pix.Decoder.
func (format) Match(header []byte) bool {
	s := string(header)
	return s == "GIF87a" || s == "GIF89a"
}

// Decode implements pix.Decoder.
func (format) Decode(r io.Reader) (*pix.Image, error) {
	return Decode(r)
}

// Encode implements pix.Encoder.
func (format) Encode(w io.Writer, img *pix.Image) error {
	return Encode(w, img)
}

func init() {
	pix.RegisterFormat(pix.Format{
		Name:    "gif",
		Decoder: format{},
		Encoder: format{},
	})
}

// disposalFromWire maps a wire disposal value to the pix model.
func disposalFromWire(d uint8) pix.DisposalMethod {
	switch d {
	case disposalKeep:
		return pix.DisposalKeep
	case disposalBackground:
		return pix.DisposalBackground
	case disposalPrevious:
		return pix.DisposalPrevious
	default:
		return pix.DisposalNone
	}
}

// disposalToWire maps a pix disposal method to its wire value.
func disposalToWire(d pix.DisposalMethod) uint8 {
	switch d {
	case pix.DisposalKeep:
		return disposalKeep
	case pix.DisposalBackground:
		return disposalBackground
	case pix.DisposalPrevious:
		return disposalPrevious
	default:
		return disposalNone
	}
}
