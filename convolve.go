package pix

import (
	"image"
	"math"
)

// Convolution is a processor that convolves the image with a 2D kernel.
// Source coordinates outside the buffer clamp to the nearest edge pixel.
// Accumulation happens in linear light on alpha-premultiplied channels,
// the same numeric policy as the resampling engine.
type Convolution struct {
	// Kernel is the convolution matrix in row-major order. Both
	// dimensions must be odd; the center element aligns with the
	// destination pixel.
	Kernel [][]float64
}

// ApplyRows implements Processor.
func (cv *Convolution) ApplyRows(dst, src *Buffer, dstRect, srcRect image.Rectangle, startRow, endRow int) {
	kh := len(cv.Kernel)
	kw := 0
	if kh > 0 {
		kw = len(cv.Kernel[0])
	}
	if kw == 0 {
		for y := startRow; y < endRow; y++ {
			copy(dst.Row(y), src.Row(y))
		}
		return
	}
	ry, rx := kh/2, kw/2
	w, h := src.Width(), src.Height()

	for y := startRow; y < endRow; y++ {
		dstRow := dst.Row(y)
		for x := range dstRow {
			var rSum, gSum, bSum, aSum float64
			for j, krow := range cv.Kernel {
				sy := clampInt(y+j-ry, 0, h-1)
				srcRow := src.Row(sy)
				for i, kv := range krow {
					if kv == 0 {
						continue
					}
					sx := clampInt(x+i-rx, 0, w-1)
					c := srcRow[sx]
					aSum += kv * c.A
					rSum += kv * c.A * srgbToLinear(clamp01(c.R))
					gSum += kv * c.A * srgbToLinear(clamp01(c.G))
					bSum += kv * c.A * srgbToLinear(clamp01(c.B))
				}
			}

			if aSum <= 0 {
				dstRow[x] = Color{}
				continue
			}
			dstRow[x] = Color{
				R: linearToSRGB(clamp01(rSum / aSum)),
				G: linearToSRGB(clamp01(gSum / aSum)),
				B: linearToSRGB(clamp01(bSum / aSum)),
				A: clamp01(aSum),
			}
		}
	}
}

// GaussianBlur returns a convolution processor with a normalized 2D
// Gaussian kernel for the given radius, built as the outer product of
// the 1D kernel. Radius is the standard deviation; the kernel extends
// three deviations, covering 99.7% of the distribution.
func GaussianBlur(radius float64) *Convolution {
	k := gaussianKernel(radius)
	out := make([][]float64, len(k))
	for j, kv := range k {
		row := make([]float64, len(k))
		for i, kh := range k {
			row[i] = kv * kh
		}
		out[j] = row
	}
	return &Convolution{Kernel: out}
}

// Sharpen returns a 3x3 unsharp kernel: identity plus amount times the
// Laplacian. amount 0 is the identity; 1 is the classic sharpen matrix.
func Sharpen(amount float64) *Convolution {
	return &Convolution{Kernel: [][]float64{
		{0, -amount, 0},
		{-amount, 1 + 4*amount, -amount},
		{0, -amount, 0},
	}}
}

// gaussianKernel generates a normalized 1D Gaussian kernel of size
// 2*ceil(3*sigma)+1. Radius <= 0 yields the identity kernel.
func gaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float64, half*2+1)

	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// clampInt restricts v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
