// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

// A code block is the boundary tag carried at both ends of every block
// in a page: a 1..K byte encoding of a payload size together with a
// single free/used bit. The same bit layout is written at a block's
// left edge (first byte at data_start-tagSize, walked outward from the
// payload) and again at its right edge (first byte at data_end, walked
// inward from the payload) — two ordinary forward-encoded tags at two
// positions, not a byte-reversed mirror of one another.
//
// Byte layout, first byte to last (bit 7 is the most significant bit):
//
//	single-byte tag:  1 f dddddd             (free bit + 6 size bits)
//	multi-byte first: 0 f dddddd             (free bit + 6 high size bits)
//	multi-byte middle: 1 ddddddd             (7 more-significant size bits)
//	multi-byte last:   0 ddddddd             (7 least-significant size bits)
//
// Only the first byte of a tag ever carries the free bit; middle and
// last bytes carry size bits only. Readers that only hold a pointer
// into the middle or end of a tag (readRight) recover the first byte's
// offset as a side effect so callers can test or flip the free bit
// afterward.
const (
	sizeBit          = 0x80 // 1 => single-byte tag, or (on later bytes) "more bytes follow"
	freeBit          = 0x40
	firstDataMask    = 0x3F // 6 data bits carried by the first byte
	continueDataMask = 0x7F // 7 data bits carried by every later byte
)

// neededTagSize returns the number of bytes a tag must occupy to encode
// the payload size v. Corrects the off-by-one loop bug named in
// spec.md's design notes: the loop runs while the remaining magnitude is
// nonzero, not while it is merely representable.
func neededTagSize(v int64) int {
	if v < freeBit {
		return 1
	}
	n := 1
	v >>= 6
	for v != 0 {
		n++
		v >>= 7
	}
	return n
}

// encodeForPayload returns the tag size required to encode a block whose
// payload (the bytes available to the caller or, for a free block, to
// the next pointer) is size bytes long.
func encodeForPayload(size int64) int { return neededTagSize(size) }

// encodeForInternal returns the tag size required so that a block whose
// total internal size (both tags plus payload) is internalSize bytes
// encodes a payload size that itself only needs that many tag bytes.
// Tag size and payload size are mutually dependent — a larger tag at
// both ends leaves a smaller payload, which may need a smaller tag — so
// this iterates to a fixed point.
func encodeForInternal(internalSize int64) int {
	tagSize := 1
	for neededTagSize(internalSize-2*int64(tagSize)) > tagSize {
		tagSize++
	}
	return tagSize
}

// writeTag writes a tagSize-byte tag encoding (size, free) starting at
// buf[first], first byte at the lowest address. Bytes are produced last
// to first, peeling size's low 7 bits off into each byte in turn, which
// is what makes the single-byte case a genuinely distinct path rather
// than a loop of one.
func writeTag(buf []byte, first int64, size int64, free bool, tagSize int) {
	if tagSize == 1 {
		b := sizeBit | byte(size&firstDataMask)
		if free {
			b |= freeBit
		}
		buf[first] = b
		return
	}
	for i := tagSize - 1; i >= 1; i-- {
		b := byte(size & continueDataMask)
		if i != tagSize-1 {
			b |= sizeBit
		}
		buf[first+int64(i)] = b
		size >>= 7
	}
	b := byte(size & firstDataMask)
	if free {
		b |= freeBit
	}
	buf[first] = b
}

// readLeft decodes the tag whose first byte is buf[first], reading
// toward increasing addresses. It returns the encoded payload size and
// the number of bytes the tag occupies; the free bit is available at
// buf[first] via isFree.
func readLeft(buf []byte, first int64) (size int64, tagSize int) {
	b0 := buf[first]
	if b0&sizeBit != 0 {
		return int64(b0 & firstDataMask), 1
	}
	size = int64(b0 & firstDataMask)
	n := int64(1)
	for {
		b := buf[first+n]
		size = size<<7 | int64(b&continueDataMask)
		n++
		if b&sizeBit == 0 {
			break
		}
	}
	return size, int(n)
}

// readRight decodes the tag whose last byte is buf[last], reading
// toward decreasing addresses. It returns the encoded payload size and
// the offset of the tag's first byte, so the caller can test its free
// bit (via isFree) or compute the tag size as last-first+1.
func readRight(buf []byte, last int64) (size int64, first int64) {
	b0 := buf[last]
	if b0&sizeBit != 0 {
		return int64(b0 & firstDataMask), last
	}
	size = int64(b0 & continueDataMask)
	cur := last - 1
	m := int64(1)
	for buf[cur]&sizeBit != 0 {
		size |= int64(buf[cur]&continueDataMask) << (7 * m)
		cur--
		m++
	}
	size |= int64(buf[cur]&firstDataMask) << (7 * m)
	return size, cur
}

// isFree reports the free bit of the tag whose first byte is buf[first].
// Uses the corrected mask test named in spec.md's design notes (equality
// against freeBit, not a truthiness check against the raw AND).
func isFree(buf []byte, first int64) bool {
	return buf[first]&freeBit == freeBit
}

// setFree rewrites only the free bit of the tag whose first byte is
// buf[first], leaving its size bits untouched.
func setFree(buf []byte, first int64, free bool) {
	if free {
		buf[first] |= freeBit
	} else {
		buf[first] &^= freeBit
	}
}
