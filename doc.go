// Package pix provides an image manipulation library for Go.
//
// # Overview
//
// pix decodes raster images from multiple container formats into an
// in-memory floating-point pixel representation, applies a pipeline of
// pixel transformations (resizing, color adjustment, convolution,
// color-space conversion), and re-encodes the result. It ships its own
// decoder and encoder for animated GIF, including multi-frame compositing
// with disposal semantics, and wraps the standard library and
// golang.org/x/image codecs for PNG, JPEG, BMP, TIFF and WebP.
//
// # Quick Start
//
//	import (
//	    "github.com/gopix/pix"
//	    _ "github.com/gopix/pix/gif" // register the GIF format
//	)
//
//	f, _ := os.Open("in.gif")
//	img, err := pix.Decode(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := pix.Process(img, "resize", pix.Params{
//	    "width":  800,
//	    "height": 600,
//	    "kernel": "lanczos",
//	})
//
// # Architecture
//
// The library is organized into:
//   - Public API: Image, Buffer, Color, Decode/Encode, Process
//   - Format registry: pluggable Decoder/Encoder pairs with header sniffing
//   - Processors: a row-parallel framework every transform builds on
//   - gif/: the animated GIF codec (block grammar, LZW, compositing)
//   - internal/parallel: the shared worker pool and row scheduler
//
// # Concurrency
//
// Pixel transforms split target rows across a worker pool; each row's
// output is independent, so no locking is needed in row code. Decoding is
// strictly sequential because block structure determines the next read.
//
// # Color
//
// Colors are four normalized float64 channels. Arithmetic that mixes
// pixels (resampling, blurring) happens in linear light; storage and
// display use the sRGB companded form. See Color.ToLinear and
// Color.ToCompanded.
package pix

// Version is the current version of the library.
const Version = "0.1.0"
