package pix

// DefaultDPI is the resolution assumed when a format carries none.
const DefaultDPI = 96

// DisposalMethod instructs how the canvas is treated after displaying an
// animation frame, before the next frame is drawn.
type DisposalMethod uint8

const (
	// DisposalNone leaves the canvas as drawn; the decoder treats it
	// like DisposalKeep.
	DisposalNone DisposalMethod = iota

	// DisposalKeep keeps the frame in place for the next frame to draw
	// over (the GIF "do not dispose" method).
	DisposalKeep

	// DisposalBackground clears the frame's rectangle to transparent
	// before the next frame is drawn.
	DisposalBackground

	// DisposalPrevious restores the canvas to its state before the
	// frame was drawn.
	DisposalPrevious
)

// String returns a string representation of the disposal method.
func (d DisposalMethod) String() string {
	switch d {
	case DisposalNone:
		return "None"
	case DisposalKeep:
		return "Keep"
	case DisposalBackground:
		return "Background"
	case DisposalPrevious:
		return "Previous"
	default:
		return "Unknown"
	}
}

// Frame is one additional animation frame: a full-canvas pixel buffer
// with its display delay and disposal method.
type Frame struct {
	// Buffer holds the composited frame at canvas size.
	Buffer *Buffer

	// Delay is the display time in hundredths of a second.
	Delay int

	// Disposal says how to treat the canvas after this frame.
	Disposal DisposalMethod
}

// Property is a named metadata record attached to an image, such as a
// comment read from the container.
type Property struct {
	Name  string
	Value string
}

// Image is the in-memory pixel representation of a decoded image: a
// primary pixel buffer, additional animation frames, resolution metadata
// and an ordered list of properties. All frames share the primary
// frame's dimensions.
type Image struct {
	buf    *Buffer
	frames []*Frame

	// Delay is the primary frame's display time in hundredths of a
	// second. Zero for still images.
	Delay int

	// Disposal is the primary frame's disposal method.
	Disposal DisposalMethod

	// LoopCount is the animation loop count: 0 loops forever, -1 means
	// no loop information was present.
	LoopCount int

	// DPIX and DPIY are the horizontal and vertical resolution in dots
	// per inch. They default to DefaultDPI.
	DPIX, DPIY float64

	format string
	props  []Property
}

// New creates an empty image with the given dimensions.
func New(width, height int) *Image {
	return &Image{
		buf:       NewBuffer(width, height),
		LoopCount: -1,
		DPIX:      DefaultDPI,
		DPIY:      DefaultDPI,
	}
}

// FromBuffer creates an image that takes ownership of buf as its primary
// frame.
func FromBuffer(buf *Buffer) *Image {
	return &Image{
		buf:       buf,
		LoopCount: -1,
		DPIX:      DefaultDPI,
		DPIY:      DefaultDPI,
	}
}

// Width returns the pixel width shared by all frames.
func (m *Image) Width() int { return m.buf.Width() }

// Height returns the pixel height shared by all frames.
func (m *Image) Height() int { return m.buf.Height() }

// Buffer returns the primary pixel buffer.
func (m *Image) Buffer() *Buffer { return m.buf }

// Frames returns the additional animation frames, excluding the primary
// frame. The slice aliases the image's internal state.
func (m *Image) Frames() []*Frame { return m.frames }

// AddFrame appends an animation frame. The frame must match the primary
// frame's dimensions, else AddFrame fails with an *ArgumentError.
func (m *Image) AddFrame(f *Frame) error {
	if f == nil || f.Buffer == nil {
		return &ArgumentError{Arg: "frame", Reason: "nil frame"}
	}
	if f.Buffer.Width() != m.buf.Width() || f.Buffer.Height() != m.buf.Height() {
		return &ArgumentError{Arg: "frame", Reason: "frame dimensions differ from primary frame"}
	}
	m.frames = append(m.frames, f)
	return nil
}

// At returns the color at (x, y) of the primary frame. Out-of-range
// coordinates fail with an *IndexError.
func (m *Image) At(x, y int) (Color, error) { return m.buf.At(x, y) }

// Set writes the color at (x, y) of the primary frame. Out-of-range
// coordinates fail with an *IndexError.
func (m *Image) Set(x, y int, c Color) error { return m.buf.Set(x, y, c) }

// Format returns the name of the format the image was decoded from, or
// the empty string for directly constructed images.
func (m *Image) Format() string { return m.format }

// SetFormat records the image's source format name. Encode without an
// explicit format uses it to pick an encoder.
func (m *Image) SetFormat(name string) { m.format = name }

// AddProperty appends a name/value metadata record. Properties keep
// their insertion order and names may repeat.
func (m *Image) AddProperty(name, value string) {
	m.props = append(m.props, Property{Name: name, Value: value})
}

// Property returns the first property with the given name.
func (m *Image) Property(name string) (string, bool) {
	for _, p := range m.props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Properties returns all metadata records in insertion order.
func (m *Image) Properties() []Property { return m.props }

// Clone returns a deep copy of the image, including every frame and all
// properties.
func (m *Image) Clone() *Image {
	out := &Image{
		buf:       m.buf.Clone(),
		Delay:     m.Delay,
		Disposal:  m.Disposal,
		LoopCount: m.LoopCount,
		DPIX:      m.DPIX,
		DPIY:      m.DPIY,
		format:    m.format,
	}
	if len(m.frames) > 0 {
		out.frames = make([]*Frame, len(m.frames))
		for i, f := range m.frames {
			out.frames[i] = &Frame{
				Buffer:   f.Buffer.Clone(),
				Delay:    f.Delay,
				Disposal: f.Disposal,
			}
		}
	}
	if len(m.props) > 0 {
		out.props = make([]Property, len(m.props))
		copy(out.props, m.props)
	}
	return out
}

// swapBuffer replaces the primary buffer. Used by processors after a
// row-parallel pass completes; the old buffer is discarded.
func (m *Image) swapBuffer(buf *Buffer) { m.buf = buf }
