package gif

import (
	"sort"

	"github.com/gopix/pix"
)

// maxPaletteSize is the hard GIF palette limit.
const maxPaletteSize = 256

// palettize reduces a buffer to at most maxPaletteSize colors and maps
// every pixel to a palette index. Pixels with alpha below one half
// become fully transparent and share a dedicated index, returned as
// transparentIx, or -1 when the buffer is fully opaque.
//
// When the buffer's distinct opaque colors already fit the palette they
// are kept exactly; otherwise the color set is reduced by median-cut.
func palettize(buf *pix.Buffer) (palette []pix.Color, indexes []byte, transparentIx int) {
	w, h := buf.Width(), buf.Height()
	pixels := buf.Pix()

	// Pass 1: quantize to bytes, count distinct opaque colors.
	packed := make([]int32, w*h) // RGB packed, or -1 for transparent
	counts := make(map[int32]int)
	transparent := false
	for i, c := range pixels {
		r, g, b, a := c.Bytes()
		if a < 128 {
			packed[i] = -1
			transparent = true
			continue
		}
		key := int32(r)<<16 | int32(g)<<8 | int32(b)
		packed[i] = key
		counts[key]++
	}

	budget := maxPaletteSize
	if transparent {
		budget--
	}

	var lookup map[int32]byte
	if len(counts) <= budget {
		palette, lookup = exactPalette(counts)
	} else {
		palette, lookup = medianCut(counts, budget)
	}

	transparentIx = -1
	if transparent {
		transparentIx = len(palette)
		palette = append(palette, pix.Transparent)
	}

	indexes = make([]byte, w*h)
	for i, key := range packed {
		if key < 0 {
			indexes[i] = byte(transparentIx)
			continue
		}
		indexes[i] = lookup[key]
	}
	return palette, indexes, transparentIx
}

// exactPalette builds a palette holding every distinct color, in a
// deterministic order.
func exactPalette(counts map[int32]int) ([]pix.Color, map[int32]byte) {
	keys := make([]int32, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	palette := make([]pix.Color, len(keys))
	lookup := make(map[int32]byte, len(keys))
	for i, key := range keys {
		palette[i] = unpack(key)
		lookup[key] = byte(i)
	}
	return palette, lookup
}

// colorBox is one region of the RGB cube being split by median-cut.
type colorBox struct {
	keys []int32
}

// channelRanges returns the spread of each channel across the box.
func (b *colorBox) channelRanges() (rr, rg, rb int) {
	minR, minG, minB := 256, 256, 256
	maxR, maxG, maxB := -1, -1, -1
	for _, key := range b.keys {
		r, g, bl := int(key>>16&0xFF), int(key>>8&0xFF), int(key&0xFF)
		minR, maxR = min(minR, r), max(maxR, r)
		minG, maxG = min(minG, g), max(maxG, g)
		minB, maxB = min(minB, bl), max(maxB, bl)
	}
	return maxR - minR, maxG - minG, maxB - minB
}

// medianCut reduces the color set to at most budget representatives by
// recursively splitting the box with the widest channel range at its
// median, then averages each box weighted by pixel count.
func medianCut(counts map[int32]int, budget int) ([]pix.Color, map[int32]byte) {
	all := make([]int32, 0, len(counts))
	for key := range counts {
		all = append(all, key)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	boxes := []*colorBox{{keys: all}}
	for len(boxes) < budget {
		// Widest box first; boxes of one color cannot split.
		widest, spread := -1, 0
		for i, b := range boxes {
			rr, rg, rb := b.channelRanges()
			if s := max(rr, max(rg, rb)); s > spread {
				widest, spread = i, s
			}
		}
		if widest < 0 {
			break
		}

		b := boxes[widest]
		rr, rg, rb := b.channelRanges()
		var shift int32
		switch {
		case rr >= rg && rr >= rb:
			shift = 16
		case rg >= rb:
			shift = 8
		default:
			shift = 0
		}
		sort.Slice(b.keys, func(i, j int) bool {
			return b.keys[i]>>shift&0xFF < b.keys[j]>>shift&0xFF
		})
		mid := len(b.keys) / 2
		boxes[widest] = &colorBox{keys: b.keys[:mid]}
		boxes = append(boxes, &colorBox{keys: b.keys[mid:]})
	}

	palette := make([]pix.Color, len(boxes))
	lookup := make(map[int32]byte, len(counts))
	for i, b := range boxes {
		var sr, sg, sb, total int
		for _, key := range b.keys {
			n := counts[key]
			sr += int(key>>16&0xFF) * n
			sg += int(key>>8&0xFF) * n
			sb += int(key&0xFF) * n
			total += n
			lookup[key] = byte(i)
		}
		palette[i] = pix.FromBytes(
			byte(sr/total), byte(sg/total), byte(sb/total), 0xFF)
	}
	return palette, lookup
}

func unpack(key int32) pix.Color {
	return pix.FromBytes(byte(key>>16), byte(key>>8), byte(key), 0xFF)
}
