package pix

import (
	"errors"
	"image"

	"github.com/gopix/pix/internal/parallel"
)

// ErrCancelled is returned when a caller-supplied cancellation flag
// stopped a processor before all rows ran. The source image is left
// untouched.
var ErrCancelled = errors.New("pix: processing cancelled")

// Processor transforms pixels row by row. ApplyRows is invoked once per
// assigned row range [startRow, endRow) of the target buffer and must be
// safe to call concurrently for disjoint ranges: implementations read
// from src and write only rows of dst inside their range.
type Processor interface {
	ApplyRows(dst, src *Buffer, dstRect, srcRect image.Rectangle, startRow, endRow int)
}

// Preparer is implemented by processors that need a one-time setup pass
// before any row is dispatched, such as precomputing resampling weights.
// The driver discovers it by interface assertion.
type Preparer interface {
	Prepare(srcRect, dstRect image.Rectangle) error
}

// Sizer is implemented by processors whose target dimensions differ from
// the source, such as resize. Processors without it keep the source size.
type Sizer interface {
	TargetSize(srcWidth, srcHeight int) (width, height int)
}

// Apply runs a processor over the image's primary buffer and every
// animation frame, mutating the image in place: each pass writes a
// freshly allocated target buffer which is swapped in after all rows
// complete, so no locking is needed in row code.
//
// Progress observers registered with WithProgress see a completed-row
// count over all frames. With WithCancel, a flag observed mid-run
// abandons the work and returns ErrCancelled without mutating img.
func Apply(img *Image, p Processor, opts ...Option) (*Image, error) {
	if img == nil {
		return nil, &ArgumentError{Arg: "img", Reason: "nil image"}
	}
	if p == nil {
		return nil, &ArgumentError{Arg: "p", Reason: "nil processor"}
	}
	cfg := apply(opts)
	return applyProcessor(img, p, cfg)
}

// applyProcessor is the shared driver used by Apply and Process.
func applyProcessor(img *Image, p Processor, cfg config) (*Image, error) {
	srcW, srcH := img.Width(), img.Height()
	dstW, dstH := srcW, srcH
	if s, ok := p.(Sizer); ok {
		dstW, dstH = s.TargetSize(srcW, srcH)
	}
	if dstW < 1 || dstH < 1 {
		return nil, &ArgumentError{Arg: "size", Reason: "target dimensions must be at least 1x1"}
	}

	srcRect := image.Rect(0, 0, srcW, srcH)
	dstRect := image.Rect(0, 0, dstW, dstH)

	if prep, ok := p.(Preparer); ok {
		if err := prep.Prepare(srcRect, dstRect); err != nil {
			return nil, err
		}
	}

	sources := make([]*Buffer, 0, 1+len(img.Frames()))
	sources = append(sources, img.Buffer())
	for _, f := range img.Frames() {
		sources = append(sources, f.Buffer)
	}

	total := dstH * len(sources)
	progress := parallel.NewProgress(total, cfg.progress...)

	pool := parallel.NewPool(cfg.workers)
	defer pool.Close()

	Logger().Debug("pix: applying processor",
		"workers", pool.Workers(), "frames", len(sources), "rows", total)

	targets := make([]*Buffer, len(sources))
	for i, src := range sources {
		dst := NewBuffer(dstW, dstH)
		src := src
		done := parallel.ForEachRow(pool, dstH, cfg.cancelled, func(start, end int) {
			p.ApplyRows(dst, src, dstRect, srcRect, start, end)
		}, progress)
		if !done {
			return nil, ErrCancelled
		}
		targets[i] = dst
	}

	// All passes finished; swap every buffer in together so the
	// all-frames-share-dimensions invariant never breaks mid-flight.
	img.swapBuffer(targets[0])
	for i, f := range img.Frames() {
		f.Buffer = targets[i+1]
	}
	return img, nil
}
