package gif

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"

	"github.com/gopix/pix"
)

// encoder writes one GIF stream. Frame palettes are emitted as local
// color tables, so frames quantize independently.
type encoder struct {
	w   io.Writer
	buf [1024]byte
}

// frameSource is one buffer to encode with its animation parameters.
type frameSource struct {
	buf      *pix.Buffer
	delay    int
	disposal pix.DisposalMethod
}

// Encode writes img to w as a GIF89a stream: the primary buffer first,
// then every animation frame, each with its own palette, delay and
// disposal method. Comment properties become comment extensions, and a
// non-negative loop count on a multi-frame image becomes a NETSCAPE2.0
// looping block.
func Encode(w io.Writer, img *pix.Image) error {
	if w == nil {
		return &pix.ArgumentError{Arg: "w", Reason: "nil writer"}
	}
	if img == nil {
		return &pix.ArgumentError{Arg: "img", Reason: "nil image"}
	}
	if img.Width() < 1 || img.Height() < 1 {
		return &pix.FormatError{
			Format: "gif",
			Reason: fmt.Sprintf("canvas %dx%d has no pixels",
				img.Width(), img.Height()),
		}
	}
	if img.Width() > MaxCanvasDim || img.Height() > MaxCanvasDim {
		return &pix.FormatError{
			Format: "gif",
			Reason: fmt.Sprintf("canvas %dx%d exceeds %d pixel limit",
				img.Width(), img.Height(), MaxCanvasDim),
		}
	}

	frames := []frameSource{{img.Buffer(), img.Delay, img.Disposal}}
	for _, f := range img.Frames() {
		frames = append(frames, frameSource{f.Buffer, f.Delay, f.Disposal})
	}

	e := &encoder{w: w}
	if err := e.writeHeader(img.Width(), img.Height()); err != nil {
		return err
	}
	for _, p := range img.Properties() {
		if p.Name == CommentProperty {
			if err := e.writeComment(p.Value); err != nil {
				return err
			}
		}
	}
	if len(frames) > 1 && img.LoopCount >= 0 {
		if err := e.writeLoopCount(img.LoopCount); err != nil {
			return err
		}
	}
	for _, f := range frames {
		if err := e.writeFrame(f, len(frames) > 1); err != nil {
			return err
		}
	}
	return e.writeByte(blockTrailer)
}

func (e *encoder) write(p []byte) error {
	_, err := e.w.Write(p)
	return err
}

func (e *encoder) writeByte(c byte) error {
	e.buf[0] = c
	return e.write(e.buf[:1])
}

// writeHeader emits the signature and a logical screen descriptor with
// no global color table.
func (e *encoder) writeHeader(width, height int) error {
	b := e.buf[:13]
	copy(b, "GIF89a")
	putLE16(b[6:], width)
	putLE16(b[8:], height)
	b[10] = 0x70 // 8 bits of color resolution, no global table
	b[11] = 0    // background index
	b[12] = 0    // aspect ratio
	return e.write(b)
}

// writeComment emits one comment extension, transcoded to Latin-1 and
// chopped into sub-blocks.
func (e *encoder) writeComment(text string) error {
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	if err != nil {
		raw = []byte(text)
	}
	if len(raw) > MaxCommentLen {
		return &pix.FormatError{
			Format: "gif",
			Reason: fmt.Sprintf("comment exceeds %d bytes", MaxCommentLen),
		}
	}

	if err := e.write([]byte{blockExtension, extComment}); err != nil {
		return err
	}
	for len(raw) > 0 {
		n := min(len(raw), 255)
		if err := e.writeByte(byte(n)); err != nil {
			return err
		}
		if err := e.write(raw[:n]); err != nil {
			return err
		}
		raw = raw[n:]
	}
	return e.writeByte(0)
}

// writeLoopCount emits the NETSCAPE2.0 application extension. A loop
// count of zero means repeat forever.
func (e *encoder) writeLoopCount(count int) error {
	b := e.buf[:19]
	b[0] = blockExtension
	b[1] = extApplication
	b[2] = 11
	copy(b[3:], "NETSCAPE2.0")
	b[14] = 3
	b[15] = 1
	putLE16(b[16:], count)
	b[18] = 0
	return e.write(b)
}

// writeFrame quantizes one buffer and emits its graphic control,
// descriptor, local color table and compressed index stream.
func (e *encoder) writeFrame(f frameSource, animated bool) error {
	palette, indexes, transparentIx := palettize(f.buf)

	// Palette sizes on the wire are powers of two with at least two
	// entries; codes need at least two bits.
	bits := 1
	for 1<<bits < len(palette) {
		bits++
	}
	litWidth := max(2, bits)

	if animated || transparentIx >= 0 || f.delay != 0 || f.disposal != pix.DisposalNone {
		b := e.buf[:8]
		b[0] = blockExtension
		b[1] = extGraphicControl
		b[2] = 4
		b[3] = disposalToWire(f.disposal) << 2
		if transparentIx >= 0 {
			b[3] |= fTransparentSet
			b[6] = byte(transparentIx)
		}
		putLE16(b[4:], f.delay)
		b[7] = 0
		if err := e.write(b); err != nil {
			return err
		}
	}

	b := e.buf[:10]
	b[0] = blockImageDescriptor
	putLE16(b[1:], 0)
	putLE16(b[3:], 0)
	putLE16(b[5:], f.buf.Width())
	putLE16(b[7:], f.buf.Height())
	b[9] = fLocalColorTable | byte(bits-1)
	if err := e.write(b); err != nil {
		return err
	}

	table := e.buf[:3<<bits]
	for i := range table {
		table[i] = 0
	}
	for i, c := range palette {
		r, g, bl, _ := c.Bytes()
		table[3*i], table[3*i+1], table[3*i+2] = r, g, bl
	}
	if err := e.write(table); err != nil {
		return err
	}

	if err := e.writeByte(byte(litWidth)); err != nil {
		return err
	}
	if err := lzwEncode(&blockWriter{w: e.w}, litWidth, indexes); err != nil {
		return err
	}
	return e.writeByte(0)
}

func putLE16(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
