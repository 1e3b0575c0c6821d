package pix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Decode reads an image from r, sniffing the format against the
// registered formats. The stream is read exactly once; a bufio layer
// provides the look-ahead needed for header sniffing.
//
// Decode fails with *ArgumentError for a nil reader, *DecodeError when
// the stream cannot be read at all, and *FormatError when no registered
// format matches the header (the message enumerates the formats tried)
// or the matched format finds a structural violation.
func Decode(r io.Reader, opts ...Option) (*Image, error) {
	if r == nil {
		return nil, &ArgumentError{Arg: "r", Reason: "nil reader"}
	}
	cfg := apply(opts)

	reg := cfg.registry
	if len(cfg.formats) > 0 {
		reg = subRegistry(cfg.registry, cfg.formats)
	}

	br := bufio.NewReader(r)
	header, err := peekHeader(br, reg.HeaderSize())
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	f, ok := reg.Detect(header)
	if !ok {
		return nil, &FormatError{Tried: reg.Names(), Reason: "no matching format"}
	}

	Logger().Debug("pix: decoding", "format", f.Name)

	img, err := f.Decoder.Decode(br)
	if img != nil {
		img.SetFormat(f.Name)
	}
	if err != nil {
		// Frames composited before a mid-stream violation remain valid;
		// the partial image is returned alongside the error.
		return img, err
	}
	return img, nil
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string, opts ...Option) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer func() { _ = f.Close() }()
	return Decode(f, opts...)
}

// Encode writes the image to w. The format defaults to the image's
// detected format; use WithFormat to override, and WithRegistry to
// resolve the name against a private registry, as Decode does.
//
// Encode fails with *ArgumentError for nil arguments or an unknown
// format name, and *FormatError when the format is decode-only.
func Encode(img *Image, w io.Writer, opts ...Option) error {
	if img == nil {
		return &ArgumentError{Arg: "img", Reason: "nil image"}
	}
	if w == nil {
		return &ArgumentError{Arg: "w", Reason: "nil writer"}
	}
	cfg := apply(opts)

	name := cfg.format
	if name == "" {
		name = img.Format()
	}
	if name == "" {
		return &ArgumentError{Arg: "format", Reason: "image has no detected format and none was supplied"}
	}

	reg := cfg.registry
	if len(cfg.formats) > 0 {
		reg = subRegistry(cfg.registry, cfg.formats)
	}
	f, ok := reg.Lookup(name)
	if !ok {
		return &ArgumentError{Arg: "format", Reason: fmt.Sprintf("unknown format %q", name)}
	}
	if f.Encoder == nil {
		return &FormatError{Format: name, Reason: "encoding not supported"}
	}
	return f.Encoder.Encode(w, img)
}

// EncodeFile encodes the image into the file at path. The format is
// taken from the file extension unless WithFormat supplies one, falling
// back to the image's detected format.
func EncodeFile(img *Image, path string, opts ...Option) error {
	if apply(opts).format == "" {
		switch filepath.Ext(path) {
		case ".png":
			opts = append(opts, WithFormat("png"))
		case ".jpg", ".jpeg":
			opts = append(opts, WithFormat("jpeg"))
		case ".gif":
			opts = append(opts, WithFormat("gif"))
		case ".bmp":
			opts = append(opts, WithFormat("bmp"))
		case ".tif", ".tiff":
			opts = append(opts, WithFormat("tiff"))
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("pix: create file: %w", err)
	}
	if err := Encode(img, f, opts...); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// peekHeader returns up to n leading bytes without consuming the stream.
// A stream shorter than n is not an error here; detection sees what
// exists. Real read failures are.
func peekHeader(br *bufio.Reader, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	header, err := br.Peek(n)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull && len(header) == 0 {
		return nil, err
	}
	return header, nil
}

// subRegistry builds a registry view restricted to the named formats,
// keeping registration order.
func subRegistry(r *Registry, names []string) *Registry {
	sub := &Registry{}
	for _, name := range names {
		if f, ok := r.Lookup(name); ok {
			sub.Register(f)
		}
	}
	return sub
}
