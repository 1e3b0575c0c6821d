package gif

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"golang.org/x/text/encoding/charmap"

	"github.com/gopix/pix"
)

// reader is the stream contract the decoder needs: block sizes and types
// determine every next read, so decoding is strictly sequential.
type reader interface {
	io.Reader
	io.ByteReader
}

// decoder holds the state of one decode call. Nothing here outlives the
// call: the compositing canvas, palettes and pending graphic control are
// threaded through the block loop as owned values.
type decoder struct {
	r reader

	screen logicalScreen
	global []pix.Color

	img        *pix.Image
	canvas     *pix.Buffer
	pending    *graphicControl
	frameCount int

	// tmp must hold the largest fixed structure read at once: a
	// 256-entry palette of 3 bytes per entry.
	tmp [768]byte
}

// Decode reads a GIF image from r, composites every frame against the
// logical-screen canvas, and returns the result: the first frame as the
// primary buffer, later frames appended with their delays and disposal
// methods, and comment extensions as properties.
//
// A structural violation fails with a *pix.FormatError. Frames already
// composited remain valid: the partial image is returned alongside the
// error, with no rollback.
func Decode(r io.Reader) (*pix.Image, error) {
	if r == nil {
		return nil, &pix.ArgumentError{Arg: "r", Reason: "nil reader"}
	}
	d := &decoder{}
	if rr, ok := r.(reader); ok {
		d.r = rr
	} else {
		d.r = bufio.NewReader(r)
	}
	err := d.decode()
	return d.img, err
}

// decode runs the block-loop state machine over the whole stream.
func (d *decoder) decode() error {
	if err := d.readHeader(); err != nil {
		return err
	}

	for {
		flag, err := d.r.ReadByte()
		if err == io.EOF {
			// Missing trailer; tolerated, the stream simply ends.
			break
		}
		if err != nil {
			return d.readErr(err)
		}

		switch flag {
		case blockImageDescriptor:
			if err := d.readFrame(); err != nil {
				return err
			}
		case blockExtension:
			if err := d.readExtension(); err != nil {
				return err
			}
		case blockTrailer:
			if d.frameCount == 0 {
				return d.formatErr("missing image data")
			}
			return nil
		default:
			// Any other top-level flag ends the stream.
			pix.Logger().Warn("gif: unknown block flag ends stream",
				"flag", fmt.Sprintf("0x%02X", flag))
			return nil
		}
	}

	if d.frameCount == 0 {
		return d.formatErr("missing image data")
	}
	return nil
}

// readHeader consumes the 6-byte signature, the 7-byte logical screen
// descriptor and the optional global color table, and sets up the
// decode-scoped canvas.
func (d *decoder) readHeader() error {
	if _, err := io.ReadFull(d.r, d.tmp[:13]); err != nil {
		return d.readErr(err)
	}
	if !(format{}).Match(d.tmp[:6]) {
		return d.formatErr(fmt.Sprintf("unrecognized signature %q", d.tmp[:6]))
	}

	d.screen = logicalScreen{
		width:       int(d.tmp[6]) | int(d.tmp[7])<<8,
		height:      int(d.tmp[8]) | int(d.tmp[9])<<8,
		hasGlobal:   d.tmp[10]&fGlobalColorTable != 0,
		globalSize:  1 << ((d.tmp[10] & fGlobalColorTableSize) + 1),
		background:  d.tmp[11],
		aspectRatio: d.tmp[12],
	}
	if d.screen.width > MaxCanvasDim || d.screen.height > MaxCanvasDim {
		return d.formatErr(fmt.Sprintf("canvas %dx%d exceeds %d pixel limit",
			d.screen.width, d.screen.height, MaxCanvasDim))
	}
	if d.screen.hasGlobal {
		palette, err := d.readPalette(d.screen.globalSize)
		if err != nil {
			return err
		}
		d.global = palette
	}

	d.canvas = pix.NewBuffer(d.screen.width, d.screen.height)
	d.img = pix.New(d.screen.width, d.screen.height)

	pix.Logger().Debug("gif: logical screen",
		"width", d.screen.width, "height", d.screen.height,
		"globalColors", len(d.global))
	return nil
}

// readPalette reads size palette entries of 3 bytes each.
func (d *decoder) readPalette(size int) ([]pix.Color, error) {
	if _, err := io.ReadFull(d.r, d.tmp[:3*size]); err != nil {
		return nil, d.readErr(err)
	}
	palette := make([]pix.Color, size)
	for i := range palette {
		palette[i] = pix.FromBytes(d.tmp[3*i], d.tmp[3*i+1], d.tmp[3*i+2], 0xFF)
	}
	return palette, nil
}

// readExtension dispatches on the extension sub-label.
func (d *decoder) readExtension() error {
	label, err := d.r.ReadByte()
	if err != nil {
		return d.readErr(err)
	}
	switch label {
	case extGraphicControl:
		return d.readGraphicControl()
	case extComment:
		return d.readComment()
	case extApplication:
		return d.readApplication()
	case extPlainText:
		// Fixed 13-byte header (including its size byte), then data
		// sub-blocks; nothing in it affects compositing.
		if _, err := io.ReadFull(d.r, d.tmp[:13]); err != nil {
			return d.readErr(err)
		}
		return d.skipSubBlocks()
	default:
		return d.formatErr(fmt.Sprintf("unknown extension 0x%02X", label))
	}
}

// readGraphicControl parses the 6-byte graphic control extension, which
// governs the next frame's disposal, delay and transparency.
func (d *decoder) readGraphicControl() error {
	if _, err := io.ReadFull(d.r, d.tmp[:6]); err != nil {
		return d.readErr(err)
	}
	if d.tmp[0] != 4 {
		return d.formatErr(fmt.Sprintf("graphic control block size %d, want 4", d.tmp[0]))
	}
	d.pending = &graphicControl{
		disposal:      (d.tmp[1] & fDisposalMethod) >> 2,
		delay:         int(d.tmp[2]) | int(d.tmp[3])<<8,
		transparent:   d.tmp[1]&fTransparentSet != 0,
		transparentIx: d.tmp[4],
	}
	return nil
}

// readComment concatenates the comment's sub-blocks into one property.
// The total length is capped; exceeding MaxCommentLen is a grammar
// violation. Comment bytes are Latin-1 per long-standing practice.
func (d *decoder) readComment() error {
	var raw []byte
	for {
		n, err := d.r.ReadByte()
		if err != nil {
			return d.readErr(err)
		}
		if n == 0 {
			break
		}
		if len(raw)+int(n) > MaxCommentLen {
			return d.formatErr(fmt.Sprintf("comment exceeds %d bytes", MaxCommentLen))
		}
		if _, err := io.ReadFull(d.r, d.tmp[:n]); err != nil {
			return d.readErr(err)
		}
		raw = append(raw, d.tmp[:n]...)
	}

	text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		text = raw
	}
	d.img.AddProperty(CommentProperty, string(text))
	return nil
}

// readApplication skips an application extension, capturing the
// NETSCAPE2.0 loop count when present.
func (d *decoder) readApplication() error {
	n, err := d.r.ReadByte()
	if err != nil {
		return d.readErr(err)
	}
	// The spec says the header is 11 bytes, but some writers use 10.
	if _, err := io.ReadFull(d.r, d.tmp[:n]); err != nil {
		return d.readErr(err)
	}
	ident := string(d.tmp[:n])

	if ident == "NETSCAPE2.0" {
		size, err := d.r.ReadByte()
		if err != nil {
			return d.readErr(err)
		}
		if size == 3 {
			if _, err := io.ReadFull(d.r, d.tmp[:3]); err != nil {
				return d.readErr(err)
			}
			if d.tmp[0] == 1 {
				d.img.LoopCount = int(d.tmp[1]) | int(d.tmp[2])<<8
			}
			return d.skipSubBlocks()
		}
		if size > 0 {
			if _, err := io.ReadFull(d.r, d.tmp[:size]); err != nil {
				return d.readErr(err)
			}
		}
	}
	return d.skipSubBlocks()
}

// skipSubBlocks consumes length-prefixed sub-blocks through the zero
// terminator.
func (d *decoder) skipSubBlocks() error {
	for {
		n, err := d.r.ReadByte()
		if err != nil {
			return d.readErr(err)
		}
		if n == 0 {
			return nil
		}
		if _, err := io.ReadFull(d.r, d.tmp[:n]); err != nil {
			return d.readErr(err)
		}
	}
}

// readFrame parses one image descriptor, decompresses its index stream,
// and composites it onto the canvas per the pending graphic control.
func (d *decoder) readFrame() error {
	desc, err := d.readImageDescriptor()
	if err != nil {
		return err
	}
	if desc.left+desc.width > d.screen.width || desc.top+desc.height > d.screen.height {
		return d.formatErr("frame bounds exceed logical screen")
	}

	palette := d.global
	if desc.hasLocal {
		palette, err = d.readPalette(desc.localSize)
		if err != nil {
			return err
		}
	}
	if len(palette) == 0 {
		return d.formatErr("frame has neither local nor global color table")
	}

	litWidth, err := d.r.ReadByte()
	if err != nil {
		return d.readErr(err)
	}
	if litWidth < 2 || litWidth > 8 {
		return d.formatErr(fmt.Sprintf("LZW data size %d out of range", litWidth))
	}

	indexes, err := lzwDecode(&blockReader{r: d.r}, int(litWidth), desc.width*desc.height)
	if err != nil {
		return err
	}

	gc := d.pending
	d.pending = nil
	if gc == nil {
		gc = &graphicControl{}
	}

	// RestoreToPrevious needs the pre-draw canvas back afterwards.
	var snapshot *pix.Buffer
	if gc.disposal == disposalPrevious {
		snapshot = d.canvas.Clone()
	}

	if err := d.composite(desc, palette, gc, indexes); err != nil {
		return err
	}

	frame := d.canvas.Clone()
	if d.frameCount == 0 {
		copy(d.img.Buffer().Pix(), frame.Pix())
		d.img.Delay = gc.delay
		d.img.Disposal = disposalFromWire(gc.disposal)
	} else {
		if err := d.img.AddFrame(&pix.Frame{
			Buffer:   frame,
			Delay:    gc.delay,
			Disposal: disposalFromWire(gc.disposal),
		}); err != nil {
			return err
		}
	}
	d.frameCount++

	switch gc.disposal {
	case disposalBackground:
		d.canvas.ClearRect(frameRect(desc), pix.Transparent)
	case disposalPrevious:
		d.canvas = snapshot
	}
	return nil
}

// readImageDescriptor parses the 9-byte image descriptor.
func (d *decoder) readImageDescriptor() (imageDescriptor, error) {
	if _, err := io.ReadFull(d.r, d.tmp[:9]); err != nil {
		return imageDescriptor{}, d.readErr(err)
	}
	return imageDescriptor{
		left:       int(d.tmp[0]) | int(d.tmp[1])<<8,
		top:        int(d.tmp[2]) | int(d.tmp[3])<<8,
		width:      int(d.tmp[4]) | int(d.tmp[5])<<8,
		height:     int(d.tmp[6]) | int(d.tmp[7])<<8,
		hasLocal:   d.tmp[8]&fLocalColorTable != 0,
		localSize:  1 << ((d.tmp[8] & fLocalColorTableSize) + 1),
		interlaced: d.tmp[8]&fInterlace != 0,
	}, nil
}

// composite draws the decompressed index rows onto the canvas.
// Destination rows are visited top to bottom, or in four-pass interlace
// order; the Nth decompressed row lands on the Nth visited row. Pixels
// matching the transparency index leave the canvas unchanged.
func (d *decoder) composite(desc imageDescriptor, palette []pix.Color, gc *graphicControl, indexes []byte) error {
	for n, y := range visitOrder(desc.height, desc.interlaced) {
		row := indexes[n*desc.width : (n+1)*desc.width]
		canvasRow := d.canvas.Row(desc.top + y)
		for x, idx := range row {
			if gc.transparent && idx == gc.transparentIx {
				continue
			}
			if int(idx) >= len(palette) {
				return d.formatErr(fmt.Sprintf("pixel index %d outside %d-entry palette", idx, len(palette)))
			}
			canvasRow[desc.left+x] = palette[idx]
		}
	}
	return nil
}

// visitOrder returns the destination row for each decompressed row, in
// decompression order.
func visitOrder(height int, interlaced bool) []int {
	order := make([]int, 0, height)
	if !interlaced {
		for y := 0; y < height; y++ {
			order = append(order, y)
		}
		return order
	}
	for _, pass := range interlacing {
		for y := pass.offset; y < height; y += pass.stride {
			order = append(order, y)
		}
	}
	return order
}

// frameRect returns the canvas rectangle covered by a frame.
func frameRect(desc imageDescriptor) image.Rectangle {
	return image.Rect(desc.left, desc.top, desc.left+desc.width, desc.top+desc.height)
}

// formatErr builds a typed grammar-violation error.
func (d *decoder) formatErr(reason string) error {
	return &pix.FormatError{Format: "gif", Reason: reason}
}

// readErr maps a mid-structure read failure to the right error kind:
// truncation is a grammar violation, anything else is a stream failure.
func (d *decoder) readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return d.formatErr("unexpected end of stream")
	}
	return &pix.DecodeError{Err: err}
}
