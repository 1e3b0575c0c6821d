package gif

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdgif "image/gif"
	"strings"
	"testing"

	"github.com/gopix/pix"
)

func le16(v int) (byte, byte) { return byte(v), byte(v >> 8) }

// approx compares colors with byte-level tolerance.
func approx(a, b pix.Color) bool {
	ar, ag, ab, aa := a.Bytes()
	br, bg, bb, ba := b.Bytes()
	diff := func(x, y uint8) int {
		d := int(x) - int(y)
		if d < 0 {
			d = -d
		}
		return d
	}
	return diff(ar, br) <= 1 && diff(ag, bg) <= 1 && diff(ab, bb) <= 1 && diff(aa, ba) <= 1
}

// ====== Decoding ======

func TestDecode_StdlibEncoded(t *testing.T) {
	palette := color.Palette{
		color.RGBA{A: 255},
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
		color.RGBA{B: 255, A: 255},
	}
	src := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetColorIndex(x, y, uint8((x+y)%4))
		}
	}

	var buf bytes.Buffer
	if err := stdgif.Encode(&buf, src, nil); err != nil {
		t.Fatalf("stdlib encode: %v", err)
	}

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width() != 4 || img.Height() != 4 {
		t.Fatalf("dimensions = %dx%d, want 4x4", img.Width(), img.Height())
	}
	if len(img.Frames()) != 0 {
		t.Fatalf("still image decoded with %d extra frames", len(img.Frames()))
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got, _ := img.At(x, y)
			want := pix.FromStdColor(palette[(x+y)%4])
			if !approx(got, want) {
				t.Fatalf("(%d, %d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestDecode_DisposalBackground(t *testing.T) {
	// Frame 1 covers the canvas and asks for restore-to-background, so
	// frame 2 composites onto a cleared canvas.
	palette := color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{B: 255, A: 255},
	}
	full := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	sub := image.NewPaletted(image.Rect(1, 1, 3, 3), palette)
	for y := 1; y < 3; y++ {
		for x := 1; x < 3; x++ {
			sub.SetColorIndex(x, y, 1)
		}
	}

	var buf bytes.Buffer
	err := stdgif.EncodeAll(&buf, &stdgif.GIF{
		Image:    []*image.Paletted{full, sub},
		Delay:    []int{10, 20},
		Disposal: []byte{stdgif.DisposalBackground, stdgif.DisposalNone},
	})
	if err != nil {
		t.Fatalf("stdlib encode: %v", err)
	}

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Frames()) != 1 {
		t.Fatalf("decoded %d extra frames, want 1", len(img.Frames()))
	}
	if img.Delay != 10 || img.Disposal != pix.DisposalBackground {
		t.Errorf("primary frame metadata = (%d, %v)", img.Delay, img.Disposal)
	}

	second := img.Frames()[0]
	if second.Delay != 20 {
		t.Errorf("second frame delay = %d, want 20", second.Delay)
	}
	blue := pix.FromBytes(0, 0, 255, 255)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got, _ := second.Buffer.At(x, y)
			inside := x >= 1 && x < 3 && y >= 1 && y < 3
			if inside && !approx(got, blue) {
				t.Errorf("(%d, %d) = %+v, want blue", x, y, got)
			}
			if !inside && got.A != 0 {
				t.Errorf("(%d, %d) = %+v, want cleared", x, y, got)
			}
		}
	}
}

func TestDecode_DisposalPrevious(t *testing.T) {
	palette := color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{B: 255, A: 255},
		color.RGBA{G: 255, A: 255},
	}
	base := image.NewPaletted(image.Rect(0, 0, 3, 3), palette)
	overlay := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			overlay.SetColorIndex(x, y, 1)
		}
	}
	dot := image.NewPaletted(image.Rect(2, 2, 3, 3), palette)
	dot.SetColorIndex(2, 2, 2)

	var buf bytes.Buffer
	err := stdgif.EncodeAll(&buf, &stdgif.GIF{
		Image:    []*image.Paletted{base, overlay, dot},
		Delay:    []int{5, 5, 5},
		Disposal: []byte{stdgif.DisposalNone, stdgif.DisposalPrevious, stdgif.DisposalNone},
	})
	if err != nil {
		t.Fatalf("stdlib encode: %v", err)
	}

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Frames()) != 2 {
		t.Fatalf("decoded %d extra frames, want 2", len(img.Frames()))
	}

	// The overlay is undone before the third frame composites, so the
	// third canvas is the red base plus one green pixel.
	third := img.Frames()[1].Buffer
	red := pix.FromBytes(255, 0, 0, 255)
	green := pix.FromBytes(0, 255, 0, 255)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			got, _ := third.At(x, y)
			want := red
			if x == 2 && y == 2 {
				want = green
			}
			if !approx(got, want) {
				t.Errorf("(%d, %d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestDecode_Interlaced(t *testing.T) {
	// Rows are stored in four-pass order; for height 4 that order is
	// 0, 2, 1, 3.
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	w0, w1 := le16(4)
	h0, h1 := le16(4)
	buf.Write([]byte{w0, w1, h0, h1, 0x81, 0, 0})
	buf.Write([]byte{
		0, 0, 0,
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
	})
	buf.Write([]byte{blockImageDescriptor, 0, 0, 0, 0, w0, w1, h0, h1, fInterlace})
	buf.WriteByte(2)
	indexes := []byte{
		0, 0, 0, 0,
		2, 2, 2, 2,
		1, 1, 1, 1,
		3, 3, 3, 3,
	}
	if err := lzwEncode(&blockWriter{w: &buf}, 2, indexes); err != nil {
		t.Fatalf("lzwEncode: %v", err)
	}
	buf.WriteByte(0)
	buf.WriteByte(blockTrailer)

	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []pix.Color{
		pix.FromBytes(0, 0, 0, 255),
		pix.FromBytes(255, 0, 0, 255),
		pix.FromBytes(0, 255, 0, 255),
		pix.FromBytes(0, 0, 255, 255),
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got, _ := img.At(x, y)
			if got != want[y] {
				t.Fatalf("(%d, %d) = %+v, want %+v", x, y, got, want[y])
			}
		}
	}
}

// ====== Decoding errors ======

func TestDecode_BadSignature(t *testing.T) {
	var fe *pix.FormatError
	_, err := Decode(strings.NewReader("GIF88a\x00\x00\x00\x00\x00\x00\x00"))
	if !errors.As(err, &fe) {
		t.Errorf("error = %v, want *pix.FormatError", err)
	}
}

func TestDecode_OversizedCanvas(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	w0, w1 := le16(MaxCanvasDim + 1)
	buf.Write([]byte{w0, w1, 1, 0, 0, 0, 0})
	buf.WriteByte(blockTrailer)

	var fe *pix.FormatError
	if _, err := Decode(&buf); !errors.As(err, &fe) {
		t.Errorf("error = %v, want *pix.FormatError", err)
	}
}

func TestDecode_MissingColorTable(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	buf.Write([]byte{2, 0, 2, 0, 0, 0, 0})
	buf.Write([]byte{blockImageDescriptor, 0, 0, 0, 0, 2, 0, 2, 0, 0})

	_, err := Decode(&buf)
	var fe *pix.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *pix.FormatError", err)
	}
	if !strings.Contains(fe.Reason, "color table") {
		t.Errorf("Reason = %q", fe.Reason)
	}
}

func TestDecode_CommentTooLong(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	buf.Write([]byte{1, 0, 1, 0, 0, 0, 0})
	buf.Write([]byte{blockExtension, extComment})
	for i := 0; i < 17; i++ {
		buf.WriteByte(255)
		buf.Write(bytes.Repeat([]byte("x"), 255))
	}
	buf.WriteByte(0)

	_, err := Decode(&buf)
	var fe *pix.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *pix.FormatError", err)
	}
	if !strings.Contains(fe.Reason, "comment") {
		t.Errorf("Reason = %q", fe.Reason)
	}
}

func TestDecode_Truncated(t *testing.T) {
	var full bytes.Buffer
	if err := Encode(&full, pix.New(3, 3)); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var fe *pix.FormatError
	if _, err := Decode(bytes.NewReader(full.Bytes()[:9])); !errors.As(err, &fe) {
		t.Errorf("error = %v, want *pix.FormatError", err)
	}
}

func TestDecode_PartialImageOnMidStreamError(t *testing.T) {
	img := pix.New(2, 2)
	img.Buffer().Clear(pix.White)
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Replace the trailer with the start of a graphic control extension
	// that ends mid-structure.
	data := append(buf.Bytes()[:buf.Len()-1], blockExtension, extGraphicControl)

	got, err := Decode(bytes.NewReader(data))
	var fe *pix.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *pix.FormatError", err)
	}
	if got == nil {
		t.Fatal("partial image not returned alongside the error")
	}
	if c, _ := got.At(0, 0); !approx(c, pix.White) {
		t.Errorf("decoded frame lost: %+v", c)
	}
}

func TestDecode_UnknownBlockEndsStream(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, pix.New(2, 2)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := append(buf.Bytes()[:buf.Len()-1], 0x99, 0xAB, 0xCD)

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img == nil || len(img.Frames()) != 0 {
		t.Errorf("unexpected result: %+v", img)
	}
}

// ====== Encoding ======

func TestEncode_StdlibDecodes(t *testing.T) {
	img := pix.New(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, pix.FromBytes(uint8(x*60), uint8(y*80), 128, 255))
		}
	}
	second := pix.NewBuffer(4, 3)
	second.Clear(pix.RGB(0, 1, 0))
	img.AddFrame(&pix.Frame{Buffer: second, Delay: 25, Disposal: pix.DisposalBackground})
	img.Delay = 10
	img.LoopCount = 4

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	g, err := stdgif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("stdlib decode: %v", err)
	}
	if len(g.Image) != 2 {
		t.Fatalf("stdlib sees %d frames, want 2", len(g.Image))
	}
	if g.LoopCount != 4 {
		t.Errorf("LoopCount = %d, want 4", g.LoopCount)
	}
	if g.Delay[0] != 10 || g.Delay[1] != 25 {
		t.Errorf("Delay = %v, want [10 25]", g.Delay)
	}
	if g.Disposal[1] != stdgif.DisposalBackground {
		t.Errorf("Disposal[1] = %d, want background", g.Disposal[1])
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want, _ := img.At(x, y)
			if got := pix.FromStdColor(g.Image[0].At(x, y)); !approx(got, want) {
				t.Fatalf("frame 0 (%d, %d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	img := pix.New(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, pix.FromBytes(uint8(x*50), uint8(y*50), uint8((x*y)*10), 255))
		}
	}
	img.AddProperty(CommentProperty, "röund trip")

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// Few enough colors for an exact palette, so pixels survive intact.
	for i := range img.Buffer().Pix() {
		if got.Buffer().Pix()[i] != img.Buffer().Pix()[i] {
			t.Fatalf("pixel %d = %+v, want %+v",
				i, got.Buffer().Pix()[i], img.Buffer().Pix()[i])
		}
	}
	if v, ok := got.Property(CommentProperty); !ok || v != "röund trip" {
		t.Errorf("comment = (%q, %v)", v, ok)
	}
	if got.LoopCount != -1 {
		t.Errorf("LoopCount = %d, want -1 for still image", got.LoopCount)
	}
}

func TestEncodeDecode_AnimationRoundTrip(t *testing.T) {
	img := pix.New(4, 4)
	img.Buffer().Clear(pix.RGB(1, 0, 0))
	img.Delay = 8

	f2 := pix.NewBuffer(4, 4)
	f2.Clear(pix.RGB(0, 0, 1))
	img.AddFrame(&pix.Frame{Buffer: f2, Delay: 12, Disposal: pix.DisposalKeep})
	img.LoopCount = 0

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(got.Frames()) != 1 {
		t.Fatalf("decoded %d extra frames, want 1", len(got.Frames()))
	}
	if got.Delay != 8 || got.Frames()[0].Delay != 12 {
		t.Errorf("delays = (%d, %d), want (8, 12)", got.Delay, got.Frames()[0].Delay)
	}
	if got.Frames()[0].Disposal != pix.DisposalKeep {
		t.Errorf("disposal = %v, want Keep", got.Frames()[0].Disposal)
	}
	if got.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (loop forever)", got.LoopCount)
	}
	if c, _ := got.Frames()[0].Buffer.At(2, 2); !approx(c, pix.RGB(0, 0, 1)) {
		t.Errorf("second frame pixel = %+v, want blue", c)
	}
}

func TestEncodeDecode_Transparency(t *testing.T) {
	img := pix.New(3, 1)
	img.Set(0, 0, pix.RGB(1, 0, 0))
	img.Set(1, 0, pix.Transparent)
	img.Set(2, 0, pix.RGB(0, 0, 1))

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if c, _ := got.At(0, 0); !approx(c, pix.RGB(1, 0, 0)) {
		t.Errorf("(0, 0) = %+v, want red", c)
	}
	if c, _ := got.At(1, 0); c.A != 0 {
		t.Errorf("(1, 0) = %+v, want transparent", c)
	}
	if c, _ := got.At(2, 0); !approx(c, pix.RGB(0, 0, 1)) {
		t.Errorf("(2, 0) = %+v, want blue", c)
	}
}

func TestEncode_ManyColorsQuantized(t *testing.T) {
	// More distinct colors than a palette can hold forces median-cut;
	// the result must stay within a coarse tolerance of the original.
	img := pix.New(32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, pix.FromBytes(uint8(x*8), uint8(y*8), uint8(x*y/4), 255))
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var worst float64
	for i, c := range img.Buffer().Pix() {
		g := got.Buffer().Pix()[i]
		for _, d := range []float64{c.R - g.R, c.G - g.G, c.B - g.B} {
			if d < 0 {
				d = -d
			}
			if d > worst {
				worst = d
			}
		}
	}
	if worst > 0.15 {
		t.Errorf("worst channel error after quantization = %v", worst)
	}
}

func TestEncode_NilArguments(t *testing.T) {
	var ae *pix.ArgumentError
	if err := Encode(nil, pix.New(1, 1)); !errors.As(err, &ae) {
		t.Errorf("nil writer error = %v, want *pix.ArgumentError", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, nil); !errors.As(err, &ae) {
		t.Errorf("nil image error = %v, want *pix.ArgumentError", err)
	}
}

func TestEncode_EmptyCanvas(t *testing.T) {
	var fe *pix.FormatError
	var buf bytes.Buffer
	if err := Encode(&buf, pix.New(0, 0)); !errors.As(err, &fe) {
		t.Errorf("empty canvas error = %v, want *pix.FormatError", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes before rejecting the canvas", buf.Len())
	}
}

// ====== Registration ======

func TestFormat_RegisteredWithPix(t *testing.T) {
	found := false
	for _, name := range pix.Formats() {
		if name == "gif" {
			found = true
		}
	}
	if !found {
		t.Fatalf("gif not in registered formats %v", pix.Formats())
	}

	img := pix.New(2, 2)
	img.Buffer().Clear(pix.White)
	var buf bytes.Buffer
	if err := pix.Encode(img, &buf, pix.WithFormat("gif")); err != nil {
		t.Fatalf("pix.Encode: %v", err)
	}
	got, err := pix.Decode(&buf)
	if err != nil {
		t.Fatalf("pix.Decode: %v", err)
	}
	if got.Format() != "gif" {
		t.Errorf("Format() = %q, want gif", got.Format())
	}
}

// ====== Quantization ======

func TestPalettize_ExactWhenFewColors(t *testing.T) {
	buf := pix.NewBuffer(4, 1)
	buf.Set(0, 0, pix.RGB(1, 0, 0))
	buf.Set(1, 0, pix.RGB(0, 1, 0))
	buf.Set(2, 0, pix.RGB(1, 0, 0))
	buf.Set(3, 0, pix.RGB(0, 0, 1))

	palette, indexes, transparentIx := palettize(buf)
	if transparentIx != -1 {
		t.Errorf("transparentIx = %d, want -1 for opaque buffer", transparentIx)
	}
	if len(palette) != 3 {
		t.Fatalf("palette has %d entries, want 3", len(palette))
	}
	if indexes[0] != indexes[2] {
		t.Errorf("identical pixels got distinct indexes %d, %d", indexes[0], indexes[2])
	}
	for i, idx := range indexes {
		c, _ := buf.At(i, 0)
		if palette[idx] != c {
			t.Errorf("pixel %d maps to %+v, want %+v", i, palette[idx], c)
		}
	}
}

func TestPalettize_TransparencySlot(t *testing.T) {
	buf := pix.NewBuffer(3, 1)
	buf.Set(0, 0, pix.RGB(1, 1, 0))
	buf.Set(1, 0, pix.RGBA(0.5, 0.5, 0.5, 0.2))
	buf.Set(2, 0, pix.RGB(1, 1, 0))

	palette, indexes, transparentIx := palettize(buf)
	if transparentIx < 0 {
		t.Fatal("no transparency slot allocated")
	}
	if int(indexes[1]) != transparentIx {
		t.Errorf("low-alpha pixel index = %d, want %d", indexes[1], transparentIx)
	}
	if palette[transparentIx] != pix.Transparent {
		t.Errorf("transparent slot holds %+v", palette[transparentIx])
	}
}

func TestPalettize_MedianCutBudget(t *testing.T) {
	buf := pix.NewBuffer(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			buf.Set(x, y, pix.FromBytes(uint8(x*13), uint8(y*11), uint8(x+y), 255))
		}
	}

	palette, indexes, _ := palettize(buf)
	if len(palette) > maxPaletteSize {
		t.Fatalf("palette has %d entries", len(palette))
	}
	for i, idx := range indexes {
		if int(idx) >= len(palette) {
			t.Fatalf("pixel %d index %d outside palette", i, idx)
		}
	}
}
