package pix

import "math"

// Kernel is a resampling filter: a finite support radius and a weight
// function over distance from the destination sample's center. Kernels
// expose nothing else; the resampling engine owns windowing,
// normalization and color-space policy.
type Kernel interface {
	// Radius is the kernel support: Weight(x) is 0 for |x| >= Radius.
	Radius() float64

	// Weight returns the kernel value at distance x from the center.
	Weight(x float64) float64
}

// CubicKernel is the two-parameter cubic family of Mitchell and
// Netravali. B=1,C=0 is the cubic B-spline; B=0,C=0.5 is Catmull-Rom;
// B=C=1/3 is the Mitchell filter.
type CubicKernel struct {
	B, C float64
}

// Radius returns the cubic support of 2.
func (CubicKernel) Radius() float64 { return 2 }

// Weight evaluates the BC-cubic at distance x.
func (k CubicKernel) Weight(x float64) float64 {
	x = math.Abs(x)
	if x >= 2 {
		return 0
	}
	if x < 1 {
		return ((12-9*k.B-6*k.C)*x*x*x + (-18+12*k.B+6*k.C)*x*x + (6 - 2*k.B)) / 6
	}
	return ((-k.B-6*k.C)*x*x*x + (6*k.B+30*k.C)*x*x + (-12*k.B-48*k.C)*x + (8*k.B + 24*k.C)) / 6
}

// LanczosKernel is the windowed-sinc filter with the given number of
// lobes. Three lobes is the common default.
type LanczosKernel struct {
	Lobes int
}

// Radius returns the lobe count as the support.
func (k LanczosKernel) Radius() float64 { return float64(k.lobes()) }

// Weight evaluates the Lanczos window at distance x.
func (k LanczosKernel) Weight(x float64) float64 {
	l := float64(k.lobes())
	x = math.Abs(x)
	if x >= l {
		return 0
	}
	if x == 0 {
		return 1
	}
	return sinc(x) * sinc(x/l)
}

func (k LanczosKernel) lobes() int {
	if k.Lobes <= 0 {
		return 3
	}
	return k.Lobes
}

// sinc is the normalized sinc function sin(πx)/(πx).
func sinc(x float64) float64 {
	x *= math.Pi
	return math.Sin(x) / x
}

// Built-in kernels.
var (
	BSpline    = CubicKernel{B: 1, C: 0}
	CatmullRom = CubicKernel{B: 0, C: 0.5}
	Mitchell   = CubicKernel{B: 1.0 / 3, C: 1.0 / 3}
	Lanczos    = LanczosKernel{Lobes: 3}
	Lanczos2   = LanczosKernel{Lobes: 2}
)

// kernelByName resolves the kernel names accepted by the resize
// processor's parameters.
func kernelByName(name string) (Kernel, bool) {
	switch name {
	case "", "lanczos", "lanczos3":
		return Lanczos, true
	case "lanczos2":
		return Lanczos2, true
	case "bspline":
		return BSpline, true
	case "catmullrom", "catmull-rom":
		return CatmullRom, true
	case "mitchell":
		return Mitchell, true
	default:
		return nil, false
	}
}
