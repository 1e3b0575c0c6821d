package pix

import (
	"io"
	"sync"
)

// Decoder turns an encoded byte stream into an Image. A Decoder declares
// a fixed header window used for format sniffing; Match is called with at
// most HeaderSize bytes and must not consume the stream.
type Decoder interface {
	// HeaderSize is the number of leading bytes Match needs to inspect.
	HeaderSize() int

	// Match reports whether the header bytes belong to this format.
	// header may be shorter than HeaderSize if the stream is short.
	Match(header []byte) bool

	// Decode reads a full image, including any animation frames, from r.
	Decode(r io.Reader) (*Image, error)
}

// Encoder writes an Image to an encoded byte stream.
type Encoder interface {
	Encode(w io.Writer, img *Image) error
}

// Format pairs a Decoder with an optional Encoder under a name.
// A Format with a nil Encoder is decode-only.
type Format struct {
	Name    string
	Decoder Decoder
	Encoder Encoder
}

// Registry is an ordered collection of formats. Detection returns the
// first format whose decoder accepts the header, so registration order
// matters when sniff windows overlap. The zero Registry is empty and
// always fails detection.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	formats []Format
}

// Register appends a format to the registry.
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = append(r.formats, f)
}

// HeaderSize returns the number of bytes detection needs: the maximum of
// all registered decoders' declared header sizes.
func (r *Registry) HeaderSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, f := range r.formats {
		if n := f.Decoder.HeaderSize(); n > max {
			max = n
		}
	}
	return max
}

// Detect returns the first registered format whose decoder accepts the
// header bytes. An empty registry never matches.
func (r *Registry) Detect(header []byte) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		h := header
		if n := f.Decoder.HeaderSize(); len(h) > n {
			h = h[:n]
		}
		if f.Decoder.Match(h) {
			return f, true
		}
	}
	return Format{}, false
}

// Lookup returns the format registered under the given name.
func (r *Registry) Lookup(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// Names returns the registered format names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name
	}
	return names
}

// defaultRegistry serves package-level Decode and Encode calls.
var defaultRegistry Registry

// RegisterFormat adds a format to the default registry. Format packages
// call it from init, so decoding a new format only requires importing
// its package; call sites never change.
func RegisterFormat(f Format) {
	defaultRegistry.Register(f)
}

// Formats returns the names registered with the default registry.
func Formats() []string {
	return defaultRegistry.Names()
}
