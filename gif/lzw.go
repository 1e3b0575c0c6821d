package gif

import (
	"fmt"
	"io"

	"github.com/gopix/pix"
)

// maxCodeWidth caps LZW code width; the dictionary never exceeds 4096
// entries.
const maxCodeWidth = 12

// blockReader flattens a length-prefixed sub-block stream into a plain
// byte stream. Reading past the zero-length terminator yields io.EOF.
type blockReader struct {
	r    reader
	left int
	done bool
}

func (b *blockReader) ReadByte() (byte, error) {
	if b.done {
		return 0, io.EOF
	}
	if b.left == 0 {
		n, err := b.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			b.done = true
			return 0, io.EOF
		}
		b.left = int(n)
	}
	c, err := b.r.ReadByte()
	if err == nil {
		b.left--
	}
	return c, err
}

// drain consumes the remainder of the sub-block stream through its
// terminator, so the outer block loop resumes at a block boundary.
func (b *blockReader) drain() error {
	for {
		if _, err := b.ReadByte(); err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// lzwDecode decompresses a GIF-flavored LZW stream into exactly want
// palette indexes. Codes are read least-significant-bit first, starting
// at litWidth+1 bits and growing as the dictionary fills; the clear code
// resets the dictionary and the end code terminates the stream. A
// stream yielding more or fewer than want indexes is malformed.
func lzwDecode(br *blockReader, litWidth, want int) ([]byte, error) {
	var (
		clear = 1 << litWidth
		end   = clear + 1
		width = litWidth + 1
		next  = end + 1
		prev  = -1

		prefix [1 << maxCodeWidth]int
		suffix [1 << maxCodeWidth]byte
		seq    [1<<maxCodeWidth + 1]byte

		bits  uint32
		nbits int
	)

	malformed := func(reason string) ([]byte, error) {
		if err := br.drain(); err != nil && err != io.EOF {
			return nil, &pix.DecodeError{Err: err}
		}
		return nil, &pix.FormatError{Format: "gif", Reason: reason}
	}

	// expand writes the byte sequence for code into seq, walking the
	// prefix chain backwards, and returns it.
	expand := func(code int) []byte {
		i := len(seq)
		for code >= clear {
			i--
			seq[i] = suffix[code]
			code = prefix[code]
		}
		i--
		seq[i] = byte(code)
		return seq[i:]
	}

	out := make([]byte, 0, want)
decode:
	for {
		for nbits < width {
			c, err := br.ReadByte()
			if err == io.EOF {
				// Missing end code; the length check below governs.
				break decode
			}
			if err != nil {
				return nil, &pix.DecodeError{Err: err}
			}
			bits |= uint32(c) << nbits
			nbits += 8
		}
		code := int(bits) & (1<<width - 1)
		bits >>= width
		nbits -= width

		var emitted []byte
		switch {
		case code == clear:
			width = litWidth + 1
			next = end + 1
			prev = -1
			continue
		case code == end:
			break decode
		case code < clear:
			emitted = expand(code)
		case code < next:
			emitted = expand(code)
		case code == next && prev >= 0:
			// The just-defined code: previous sequence plus its own
			// first byte.
			head := expand(prev)
			first := head[0]
			copy(seq[len(seq)-1-len(head):len(seq)-1], head)
			seq[len(seq)-1] = first
			emitted = seq[len(seq)-1-len(head):]
		default:
			return malformed(fmt.Sprintf("invalid LZW code %d", code))
		}

		if len(out)+len(emitted) > want {
			return malformed("LZW stream yields too many pixels")
		}
		out = append(out, emitted...)

		if prev >= 0 && next < 1<<maxCodeWidth {
			prefix[next] = prev
			suffix[next] = emitted[0]
			next++
			if next == 1<<width && width < maxCodeWidth {
				width++
			}
		}
		prev = code
	}

	if err := br.drain(); err != nil {
		return nil, &pix.DecodeError{Err: err}
	}
	if len(out) != want {
		return nil, &pix.FormatError{
			Format: "gif",
			Reason: fmt.Sprintf("LZW stream yields %d pixels, want %d", len(out), want),
		}
	}
	return out, nil
}

// blockWriter chops a plain byte stream into 255-byte sub-blocks. The
// caller writes the zero-length terminator after flush.
type blockWriter struct {
	w   io.Writer
	buf [256]byte
	n   int
}

func (b *blockWriter) WriteByte(c byte) error {
	b.buf[1+b.n] = c
	b.n++
	if b.n == 255 {
		return b.flush()
	}
	return nil
}

func (b *blockWriter) flush() error {
	if b.n == 0 {
		return nil
	}
	b.buf[0] = byte(b.n)
	_, err := b.w.Write(b.buf[:1+b.n])
	b.n = 0
	return err
}

// lzwEncode compresses palette indexes into a GIF-flavored LZW stream:
// an initial clear code, dictionary-driven codes growing from litWidth+1
// bits, a clear-and-reset whenever the dictionary fills, and a final end
// code.
func lzwEncode(bw *blockWriter, litWidth int, data []byte) error {
	var (
		clear = 1 << litWidth
		end   = clear + 1
		width = litWidth + 1
		next  = end + 1
		table = make(map[uint32]int)

		bits  uint32
		nbits int
	)

	emit := func(code int) error {
		bits |= uint32(code) << nbits
		nbits += width
		for nbits >= 8 {
			if err := bw.WriteByte(byte(bits)); err != nil {
				return err
			}
			bits >>= 8
			nbits -= 8
		}
		return nil
	}

	if err := emit(clear); err != nil {
		return err
	}
	cur := int(data[0])
	for _, c := range data[1:] {
		key := uint32(cur)<<8 | uint32(c)
		if code, ok := table[key]; ok {
			cur = code
			continue
		}
		if err := emit(cur); err != nil {
			return err
		}
		if next < 1<<maxCodeWidth {
			// The width grows before the first slot needing it is
			// assigned, mirroring the decoder's schedule.
			if next == 1<<width {
				width++
			}
			table[key] = next
			next++
		} else {
			if err := emit(clear); err != nil {
				return err
			}
			table = make(map[uint32]int)
			width = litWidth + 1
			next = end + 1
		}
		cur = int(c)
	}
	if err := emit(cur); err != nil {
		return err
	}
	if err := emit(end); err != nil {
		return err
	}
	if nbits > 0 {
		if err := bw.WriteByte(byte(bits)); err != nil {
			return err
		}
	}
	return bw.flush()
}
