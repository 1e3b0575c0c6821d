package pix

import (
	"errors"
	"strings"
	"testing"
)

func TestProcess_UnknownName(t *testing.T) {
	var ae *ArgumentError
	_, err := Process(testImage(2, 2), "emboss", nil)
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *ArgumentError", err)
	}
	if ae.Arg != "name" {
		t.Errorf("Arg = %q, want name", ae.Arg)
	}
}

func TestProcess_NilImage(t *testing.T) {
	var ae *ArgumentError
	if _, err := Process(nil, "invert", nil); !errors.As(err, &ae) {
		t.Errorf("error = %v, want *ArgumentError", err)
	}
}

func TestProcess_ParameterValidation(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		params  Params
		wantArg string
	}{
		{"resize missing width", "resize", Params{"height": 10}, "width"},
		{"resize missing height", "resize", Params{"width": 10}, "height"},
		{"resize non-integer width", "resize", Params{"width": 1.5, "height": 10}, "width"},
		{"resize zero width", "resize", Params{"width": 0, "height": 10}, "width"},
		{"resize unknown kernel", "resize", Params{"width": 4, "height": 4, "kernel": "box"}, "kernel"},
		{"resize kernel wrong type", "resize", Params{"width": 4, "height": 4, "kernel": 7}, "kernel"},
		{"brightness out of range", "brightness", Params{"value": 101}, "value"},
		{"brightness wrong type", "brightness", Params{"value": "dim"}, "value"},
		{"contrast out of range", "contrast", Params{"value": -150}, "value"},
		{"hue out of range", "hue", Params{"degrees": 400}, "degrees"},
		{"blur zero radius", "blur", Params{"radius": 0}, "radius"},
		{"blur out of range", "blur", Params{"radius": 200}, "radius"},
		{"sharpen out of range", "sharpen", Params{"amount": 11}, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testImage(4, 4)
			want := img.Clone()

			_, err := Process(img, tt.op, tt.params)
			var ae *ArgumentError
			if !errors.As(err, &ae) {
				t.Fatalf("error = %v, want *ArgumentError", err)
			}
			if ae.Arg != tt.wantArg {
				t.Errorf("Arg = %q, want %q", ae.Arg, tt.wantArg)
			}
			// Validation failures never touch pixels.
			for i := range img.Buffer().Pix() {
				if img.Buffer().Pix()[i] != want.Buffer().Pix()[i] {
					t.Fatal("rejected call mutated the image")
				}
			}
		})
	}
}

func TestProcess_MissingRequiredParam(t *testing.T) {
	// Absence reads as "missing", not as a range violation of the
	// zero value.
	_, err := Process(testImage(2, 2), "resize", Params{"height": 10})
	var ae *ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *ArgumentError", err)
	}
	if ae.Arg != "width" || !strings.Contains(ae.Reason, "required") {
		t.Errorf("error = %v, want width reported as required", ae)
	}
}

func TestProcess_MatchesDirectApply(t *testing.T) {
	a := testImage(6, 6)
	if _, err := Process(a, "brightness", Params{"value": 25}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	b := testImage(6, 6)
	if _, err := Apply(b, Brightness(25)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range a.Buffer().Pix() {
		if a.Buffer().Pix()[i] != b.Buffer().Pix()[i] {
			t.Fatalf("Process and Apply diverge at pixel %d", i)
		}
	}
}

func TestProcess_IntAndFloatParams(t *testing.T) {
	for _, v := range []any{50, 50.0, float32(50)} {
		img := testImage(3, 3)
		if _, err := Process(img, "brightness", Params{"value": v}); err != nil {
			t.Errorf("value %T: %v", v, err)
		}
	}
}

func TestProcess_Resize(t *testing.T) {
	img := testImage(10, 8)
	out, err := Process(img, "resize", Params{"width": 5, "height": 4, "kernel": "mitchell"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Width() != 5 || out.Height() != 4 {
		t.Errorf("dimensions = %dx%d, want 5x4", out.Width(), out.Height())
	}
}

func TestProcess_ResizeRespectsMaxDimensions(t *testing.T) {
	var ae *ArgumentError
	_, err := Process(testImage(4, 4), "resize",
		Params{"width": 50, "height": 4}, WithMaxDimensions(10, 10))
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *ArgumentError", err)
	}
	if ae.Arg != "width" {
		t.Errorf("Arg = %q, want width", ae.Arg)
	}
}

func TestProcess_NoParamProcessors(t *testing.T) {
	for _, name := range []string{"grayscale", "invert"} {
		if _, err := Process(testImage(3, 3), name, nil); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestProcessors_Listing(t *testing.T) {
	names := Processors()
	want := []string{
		"blur", "brightness", "contrast", "grayscale", "hue",
		"invert", "resize", "saturation", "sharpen",
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, n := range want {
		if !have[n] {
			t.Errorf("processor %q not registered (have %v)", n, names)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Processors() not sorted: %v", names)
		}
	}
}
