package pix

import (
	"fmt"
	"sort"
	"sync"
)

// Params carries the parameters of a Process call. Numeric values may be
// supplied as int or float64; names and ranges are fixed per processor
// and violations fail with *ArgumentError before any pixel is touched.
type Params map[string]any

// float reads a numeric parameter, falling back to def when absent.
func (p Params) float(name string, def float64) (float64, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, &ArgumentError{Arg: name, Reason: fmt.Sprintf("expected number, got %T", v)}
	}
}

// floatIn reads a numeric parameter and enforces an inclusive range.
func (p Params) floatIn(name string, def, lo, hi float64) (float64, error) {
	v, err := p.float(name, def)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, &ArgumentError{Arg: name, Reason: fmt.Sprintf("%v out of range [%v, %v]", v, lo, hi)}
	}
	return v, nil
}

// intIn reads an integer parameter and enforces an inclusive range.
func (p Params) intIn(name string, def, lo, hi int) (int, error) {
	v, err := p.float(name, float64(def))
	if err != nil {
		return 0, err
	}
	n := int(v)
	if float64(n) != v {
		return 0, &ArgumentError{Arg: name, Reason: "expected integer"}
	}
	if n < lo || n > hi {
		return 0, &ArgumentError{Arg: name, Reason: fmt.Sprintf("%d out of range [%d, %d]", n, lo, hi)}
	}
	return n, nil
}

// requiredIntIn reads a mandatory integer parameter and enforces an
// inclusive range. Absence is reported as such, not as a range
// violation of the missing value.
func (p Params) requiredIntIn(name string, lo, hi int) (int, error) {
	if _, ok := p[name]; !ok {
		return 0, &ArgumentError{Arg: name, Reason: "required parameter missing"}
	}
	return p.intIn(name, 0, lo, hi)
}

// str reads a string parameter, falling back to def when absent.
func (p Params) str(name, def string) (string, error) {
	v, ok := p[name]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgumentError{Arg: name, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// ProcessorBuilder validates parameters and constructs a Processor.
// The config carries call-level limits such as the maximum resize
// dimensions.
type ProcessorBuilder func(p Params, cfg *config) (Processor, error)

var (
	processorsMu sync.RWMutex
	processors   = map[string]ProcessorBuilder{}
)

// RegisterProcessor adds a named processor to the Process dispatch
// table. Like RegisterFormat, call sites never change when processors
// are added.
func RegisterProcessor(name string, build ProcessorBuilder) {
	processorsMu.Lock()
	defer processorsMu.Unlock()
	processors[name] = build
}

// Processors returns the registered processor names, sorted.
func Processors() []string {
	processorsMu.RLock()
	defer processorsMu.RUnlock()
	names := make([]string, 0, len(processors))
	for name := range processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Process applies the named processor to the image with the given
// parameters, mutating it in place and returning it. Parameters are
// validated against the processor's fixed schema; violations fail with
// *ArgumentError.
//
// Built-in processors and their parameters:
//
//	resize      width, height (>= 1, bounded by WithMaxDimensions),
//	            kernel ("lanczos", "lanczos2", "bspline", "catmullrom",
//	            "mitchell")
//	brightness  value in [-100, 100]
//	contrast    value in [-100, 100]
//	saturation  value in [-100, 100]
//	hue         degrees in [-360, 360]
//	grayscale   -
//	invert      -
//	blur        radius in (0, 100]
//	sharpen     amount in [0, 10]
func Process(img *Image, name string, params Params, opts ...Option) (*Image, error) {
	if img == nil {
		return nil, &ArgumentError{Arg: "img", Reason: "nil image"}
	}
	processorsMu.RLock()
	build, ok := processors[name]
	processorsMu.RUnlock()
	if !ok {
		return nil, &ArgumentError{Arg: "name", Reason: fmt.Sprintf("unknown processor %q", name)}
	}
	if params == nil {
		params = Params{}
	}

	cfg := apply(opts)
	p, err := build(params, &cfg)
	if err != nil {
		return nil, err
	}
	return applyProcessor(img, p, cfg)
}

func init() {
	RegisterProcessor("resize", func(p Params, cfg *config) (Processor, error) {
		width, err := p.requiredIntIn("width", 1, cfg.maxWidth)
		if err != nil {
			return nil, err
		}
		height, err := p.requiredIntIn("height", 1, cfg.maxHeight)
		if err != nil {
			return nil, err
		}
		name, err := p.str("kernel", "")
		if err != nil {
			return nil, err
		}
		k, ok := kernelByName(name)
		if !ok {
			return nil, &ArgumentError{Arg: "kernel", Reason: fmt.Sprintf("unknown kernel %q", name)}
		}
		return &Resize{Width: width, Height: height, Kernel: k}, nil
	})

	RegisterProcessor("brightness", func(p Params, cfg *config) (Processor, error) {
		v, err := p.floatIn("value", 0, -100, 100)
		if err != nil {
			return nil, err
		}
		return Brightness(v), nil
	})

	RegisterProcessor("contrast", func(p Params, cfg *config) (Processor, error) {
		v, err := p.floatIn("value", 0, -100, 100)
		if err != nil {
			return nil, err
		}
		return Contrast(v), nil
	})

	RegisterProcessor("saturation", func(p Params, cfg *config) (Processor, error) {
		v, err := p.floatIn("value", 0, -100, 100)
		if err != nil {
			return nil, err
		}
		return Saturation(v), nil
	})

	RegisterProcessor("hue", func(p Params, cfg *config) (Processor, error) {
		v, err := p.floatIn("degrees", 0, -360, 360)
		if err != nil {
			return nil, err
		}
		return Hue(v), nil
	})

	RegisterProcessor("grayscale", func(p Params, cfg *config) (Processor, error) {
		return Grayscale(), nil
	})

	RegisterProcessor("invert", func(p Params, cfg *config) (Processor, error) {
		return Invert(), nil
	})

	RegisterProcessor("blur", func(p Params, cfg *config) (Processor, error) {
		radius, err := p.floatIn("radius", 1, 0, 100)
		if err != nil {
			return nil, err
		}
		if radius == 0 {
			return nil, &ArgumentError{Arg: "radius", Reason: "must be greater than 0"}
		}
		return GaussianBlur(radius), nil
	})

	RegisterProcessor("sharpen", func(p Params, cfg *config) (Processor, error) {
		amount, err := p.floatIn("amount", 1, 0, 10)
		if err != nil {
			return nil, err
		}
		return Sharpen(amount), nil
	})
}
