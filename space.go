// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import "encoding/binary"

// readPointer decodes a w-byte little-endian offset starting at data[0].
func readPointer(data []byte, w NextPointerWidth) uint32 {
	switch w {
	case W1:
		return uint32(data[0])
	case W2:
		return uint32(binary.LittleEndian.Uint16(data))
	case W4:
		return binary.LittleEndian.Uint32(data)
	default:
		panic("mara: invalid next-pointer width")
	}
}

// writePointer encodes v as a w-byte little-endian offset into data[0].
func writePointer(data []byte, w NextPointerWidth, v uint32) {
	switch w {
	case W1:
		data[0] = byte(v)
	case W2:
		binary.LittleEndian.PutUint16(data, uint16(v))
	case W4:
		binary.LittleEndian.PutUint32(data, v)
	default:
		panic("mara: invalid next-pointer width")
	}
}

// space is a view of one free block's payload: the page-relative range
// that holds its in-band next pointer. It does not cache the pointer
// value itself — readNext/writeNext always go to the backing buffer —
// so a space is safe to keep around across calls that rewrite
// neighboring tags.
type space struct {
	dataStart int64 // offset of the first payload byte within the page
	dataEnd   int64 // offset one past the last payload byte within the page
	w         NextPointerWidth
}

// size returns the payload length in bytes.
func (s space) size() int64 { return s.dataEnd - s.dataStart }

// readNext decodes the next-pointer stored at the start of the payload.
// The second return value is false for the "no successor" sentinel.
func (s space) readNext(page []byte) (int64, bool) {
	v := readPointer(page[s.dataStart:], s.w)
	if v == noSuccessor(s.w) {
		return -1, false
	}
	return int64(v), true
}

// writeNext stores next (or the sentinel, for next < 0) at the start of
// the payload and, when the payload is wide enough to hold a second,
// non-overlapping copy, mirrors it at the end. The mirror lets a
// neighbor being coalesced from either side recover the pointer without
// knowing which end it is approaching from.
func (s space) writeNext(page []byte, next int64) {
	var v uint32
	if next < 0 {
		v = noSuccessor(s.w)
	} else {
		v = uint32(next)
	}
	writePointer(page[s.dataStart:], s.w, v)
	if s.size() >= 2*int64(s.w) {
		writePointer(page[s.dataEnd-int64(s.w):], s.w, v)
	}
}
