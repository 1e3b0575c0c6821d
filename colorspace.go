package pix

import "math"

// Color space conversions. All conversions clamp their inputs silently;
// out-of-range values are never rejected. Where a target space has lower
// precision than RGB the round trip is lossy by convention: hue is
// reported as 0 when saturation is 0.
//
// References:
//   - sRGB specification: https://www.w3.org/Graphics/Color/sRGB
//   - ITU-R BT.601 (YCbCr coefficients)

// srgbToLinear converts an sRGB-companded component to linear light.
// Input and output are in [0, 1].
func srgbToLinear(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// linearToSRGB converts a linear component to its sRGB-companded form.
// Input and output are in [0, 1].
func linearToSRGB(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

// srgbToLinearLUT provides O(1) companding removal for byte-packed
// channels on the decode path. 256 entries, one per 8-bit level.
var srgbToLinearLUT [256]float64

func init() {
	for i := range srgbToLinearLUT {
		srgbToLinearLUT[i] = srgbToLinear(float64(i) / 255)
	}
}

// LinearFromByte converts an 8-bit sRGB channel straight to linear light
// using the precomputed table.
func LinearFromByte(b uint8) float64 {
	return srgbToLinearLUT[b]
}

// ToLinear converts the color from sRGB-companded to linear RGB.
// Alpha is unchanged; it is never gamma-encoded.
func (c Color) ToLinear() Color {
	return Color{
		R: srgbToLinear(clamp01(c.R)),
		G: srgbToLinear(clamp01(c.G)),
		B: srgbToLinear(clamp01(c.B)),
		A: c.A,
	}
}

// ToCompanded converts the color from linear RGB to sRGB-companded form.
// ToCompanded is the exact inverse of ToLinear within 1e-4 per channel.
func (c Color) ToCompanded() Color {
	return Color{
		R: linearToSRGB(clamp01(c.R)),
		G: linearToSRGB(clamp01(c.G)),
		B: linearToSRGB(clamp01(c.B)),
		A: c.A,
	}
}

// Luminance returns the BT.601 luma of the color in [0, 1].
func (c Color) Luminance() float64 {
	return 0.299*clamp01(c.R) + 0.587*clamp01(c.G) + 0.114*clamp01(c.B)
}

// ToHSV converts the color to HSV. Hue is in degrees [0, 360); saturation
// and value are in [0, 1]. Hue is 0 when saturation is 0.
func (c Color) ToHSV() (h, s, v float64) {
	r, g, b := clamp01(c.R), clamp01(c.G), clamp01(c.B)
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	if max > 0 {
		s = (max - min) / max
	}
	h = hueOf(r, g, b, max, min)
	return h, s, v
}

// FromHSV creates a color from HSV components. Hue is in degrees and
// wraps modulo 360; saturation and value clamp to [0, 1].
func FromHSV(h, s, v float64) Color {
	s, v = clamp01(s), clamp01(v)
	h = wrapHue(h) / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return RGB(r, g, b)
}

// ToHSL converts the color to HSL. Hue is in degrees [0, 360); saturation
// and lightness are in [0, 1]. Hue is 0 when saturation is 0.
func (c Color) ToHSL() (h, s, l float64) {
	r, g, b := clamp01(c.R), clamp01(c.G), clamp01(c.B)
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}
	if l < 0.5 {
		s = (max - min) / (max + min)
	} else {
		s = (max - min) / (2 - max - min)
	}
	h = hueOf(r, g, b, max, min)
	return h, s, l
}

// FromHSL creates a color from HSL components. Hue is in degrees and
// wraps modulo 360; saturation and lightness clamp to [0, 1].
func FromHSL(h, s, l float64) Color {
	s, l = clamp01(s), clamp01(l)
	h = wrapHue(h) / 360

	ch := (1 - math.Abs(2*l-1)) * s
	x := ch * (1 - math.Abs(math.Mod(h*6, 2)-1))
	m := l - ch/2

	var r, g, b float64
	switch {
	case h < 1.0/6:
		r, g, b = ch, x, 0
	case h < 2.0/6:
		r, g, b = x, ch, 0
	case h < 3.0/6:
		r, g, b = 0, ch, x
	case h < 4.0/6:
		r, g, b = 0, x, ch
	case h < 5.0/6:
		r, g, b = x, 0, ch
	default:
		r, g, b = ch, 0, x
	}
	return RGB(r+m, g+m, b+m)
}

// ToCMYK converts the color to CMYK. All components are in [0, 1].
// Pure black maps to (0, 0, 0, 1).
func (c Color) ToCMYK() (cy, m, y, k float64) {
	r, g, b := clamp01(c.R), clamp01(c.G), clamp01(c.B)
	k = 1 - math.Max(r, math.Max(g, b))
	if k >= 1 {
		return 0, 0, 0, 1
	}
	cy = (1 - r - k) / (1 - k)
	m = (1 - g - k) / (1 - k)
	y = (1 - b - k) / (1 - k)
	return cy, m, y, k
}

// FromCMYK creates a color from CMYK components, each clamped to [0, 1].
func FromCMYK(cy, m, y, k float64) Color {
	cy, m, y, k = clamp01(cy), clamp01(m), clamp01(y), clamp01(k)
	return RGB((1-cy)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
}

// ToXYZ converts the color to CIE XYZ (D65 white point, 2° observer).
// Components are in the nominal [0, 1] range with Y as luminance.
// The conversion linearizes the sRGB channels first.
func (c Color) ToXYZ() (x, y, z float64) {
	r := srgbToLinear(clamp01(c.R))
	g := srgbToLinear(clamp01(c.G))
	b := srgbToLinear(clamp01(c.B))
	// Matrix derived from the D65 white point chromaticities, so a
	// white input lands exactly on the reference white.
	x = 0.4123907993*r + 0.3575843394*g + 0.1804807884*b
	y = 0.2126390059*r + 0.7151686788*g + 0.0721923154*b
	z = 0.0193308187*r + 0.1191947798*g + 0.9505321522*b
	return x, y, z
}

// FromXYZ creates a color from CIE XYZ components (D65, 2° observer).
// The result is companded back to sRGB and clamped to gamut.
func FromXYZ(x, y, z float64) Color {
	r := 3.2409699419*x - 1.5373831776*y - 0.4986107603*z
	g := -0.9692436363*x + 1.8759675015*y + 0.0415550574*z
	b := 0.0556300797*x - 0.2039769589*y + 1.0569715142*z
	return RGB(
		linearToSRGB(clamp01(r)),
		linearToSRGB(clamp01(g)),
		linearToSRGB(clamp01(b)),
	)
}

// ToYCbCr converts the color to BT.601 luminance-chroma form. All three
// components are in the byte-scaled [0, 255] range, chroma centered on
// 128: white is (255, 128, 128), black is (0, 128, 128).
func (c Color) ToYCbCr() (y, cb, cr float64) {
	r := clamp01(c.R) * 255
	g := clamp01(c.G) * 255
	b := clamp01(c.B) * 255
	y = 0.299*r + 0.587*g + 0.114*b
	cb = 128 - 0.168736*r - 0.331264*g + 0.5*b
	cr = 128 + 0.5*r - 0.418688*g - 0.081312*b
	return y, cb, cr
}

// FromYCbCr creates a color from BT.601 luminance-chroma components in
// the byte-scaled [0, 255] range.
func FromYCbCr(y, cb, cr float64) Color {
	r := y + 1.402*(cr-128)
	g := y - 0.344136*(cb-128) - 0.714136*(cr-128)
	b := y + 1.772*(cb-128)
	return RGB(clamp01(r/255), clamp01(g/255), clamp01(b/255))
}

// hueOf computes the shared hue angle for HSV and HSL in degrees [0, 360).
// Returns 0 for achromatic colors.
func hueOf(r, g, b, max, min float64) float64 {
	if max == min {
		return 0
	}
	var h float64
	d := max - min
	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = 2 + (b-r)/d
	default:
		h = 4 + (r-g)/d
	}
	return h * 60
}

// wrapHue normalizes a hue angle into [0, 360).
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
