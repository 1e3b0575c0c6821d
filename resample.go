package pix

import (
	"image"
	"math"
)

// Per-axis thresholds below which precomputed kernel weights are
// discarded. The vertical axis tolerates a coarser cut because its
// weight lists are walked once per destination row rather than once per
// pixel.
const (
	weightEpsilonH = 1e-4
	weightEpsilonV = 1e-2
)

// alphaEpsilon is the alpha below which a source sample is treated as
// fully transparent and skipped, so its (usually meaningless) RGB
// cannot bleed into opaque neighbors.
const alphaEpsilon = 1e-3

// weight pairs a source index with its kernel weight.
type weight struct {
	index int
	value float64
}

// weightSet is the retained weight list for one destination coordinate
// along one axis, plus the sum of the retained weights. WeightSets are
// owned by a single resize call and discarded after use.
type weightSet struct {
	weights []weight
	sum     float64
}

// computeWeights precomputes a weightSet per destination coordinate for
// one axis. du is the source/destination scale with a floor of 1 so
// upscaling keeps the kernel at its natural width; the source window is
// [floor(center-ru), ceil(center+ru)] clamped to the valid range, and
// only weights whose magnitude exceeds epsilon are retained.
func computeWeights(dstSize, srcSize int, k Kernel, epsilon float64) []weightSet {
	du := float64(srcSize) / float64(dstSize)
	scale := du
	if scale < 1 {
		scale = 1
	}
	ru := math.Ceil(scale * k.Radius())

	sets := make([]weightSet, dstSize)
	for v := range sets {
		center := (float64(v)+0.5)*du - 0.5

		begin := int(math.Floor(center - ru))
		if begin < 0 {
			begin = 0
		}
		end := int(math.Ceil(center + ru))
		if end > srcSize-1 {
			end = srcSize - 1
		}

		set := weightSet{weights: make([]weight, 0, end-begin+1)}
		for u := begin; u <= end; u++ {
			w := k.Weight((float64(u) - center) / scale)
			if math.Abs(w) <= epsilon {
				continue
			}
			set.weights = append(set.weights, weight{index: u, value: w})
			set.sum += w
		}
		sets[v] = set
	}
	return sets
}

// Resize is the resampling processor: it maps the source buffer onto a
// target of the given dimensions with the given kernel. The weighted
// sums run in linear light with premultiplied alpha; see ApplyRows.
type Resize struct {
	// Width and Height are the target dimensions, both at least 1.
	Width, Height int

	// Kernel is the resampling filter. Nil selects Lanczos.
	Kernel Kernel

	horizontal []weightSet
	vertical   []weightSet
	identity   bool
}

// TargetSize implements Sizer.
func (r *Resize) TargetSize(srcWidth, srcHeight int) (int, int) {
	return r.Width, r.Height
}

// Prepare implements Preparer: it precomputes the per-axis weight lists.
// Resizing to the source's own dimensions short-circuits to a plain
// copy, which keeps the identity property exact for every kernel.
func (r *Resize) Prepare(srcRect, dstRect image.Rectangle) error {
	if r.identity = srcRect.Dx() == dstRect.Dx() && srcRect.Dy() == dstRect.Dy(); r.identity {
		return nil
	}
	k := r.Kernel
	if k == nil {
		k = Lanczos
	}
	r.horizontal = computeWeights(dstRect.Dx(), srcRect.Dx(), k, weightEpsilonH)
	r.vertical = computeWeights(dstRect.Dy(), srcRect.Dy(), k, weightEpsilonV)

	Logger().Debug("pix: resample weights ready",
		"src", srcRect.Max, "dst", dstRect.Max)
	return nil
}

// ApplyRows implements Processor. Each destination pixel is the sum of
// sourceColor x (verticalWeight/verticalSum) x (horizontalWeight/
// horizontalSum) over the retained pairs, computed on linearized,
// alpha-premultiplied channels. Samples with near-zero alpha are
// skipped; the kept weight mass renormalizes the result. The result
// alpha is rounded to two decimals before the channels are companded
// back.
func (r *Resize) ApplyRows(dst, src *Buffer, dstRect, srcRect image.Rectangle, startRow, endRow int) {
	if r.identity {
		for y := startRow; y < endRow; y++ {
			copy(dst.Row(y), src.Row(y))
		}
		return
	}

	for y := startRow; y < endRow; y++ {
		vs := r.vertical[y]
		row := dst.Row(y)
		for x := range row {
			hs := r.horizontal[x]

			var rSum, gSum, bSum, aSum, wSum float64
			for _, vw := range vs.weights {
				srcRow := src.Row(vw.index)
				wv := vw.value / vs.sum
				for _, hw := range hs.weights {
					w := wv * hw.value / hs.sum
					c := srcRow[hw.index]
					if c.A <= alphaEpsilon {
						continue
					}
					wSum += w
					aSum += w * c.A
					rSum += w * c.A * srgbToLinear(clamp01(c.R))
					gSum += w * c.A * srgbToLinear(clamp01(c.G))
					bSum += w * c.A * srgbToLinear(clamp01(c.B))
				}
			}

			if wSum <= 0 || aSum <= 0 {
				row[x] = Color{}
				continue
			}
			alpha := math.Round(aSum/wSum*100) / 100
			row[x] = Color{
				R: linearToSRGB(clamp01(rSum / aSum)),
				G: linearToSRGB(clamp01(gSum / aSum)),
				B: linearToSRGB(clamp01(bSum / aSum)),
				A: clamp01(alpha),
			}
		}
	}
}
