// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

// page is one fixed-size region of the backing buffer, managed as an
// independent coalescing arena: its own tiling of blocks, its own
// bucket list, and no knowledge of any other page beyond its ring
// neighbor.
type page struct {
	view    pageView
	buckets *bucketList
	w       NextPointerWidth
	next    *page // ring successor; set by ring.go
}

// newPage carves a page out of buf's [start, end) region, initializes it
// as one free block spanning the whole region, and links its bucket
// list entry for that block.
func newPage(buf []byte, start, end int64, w NextPointerWidth) *page {
	p := &page{view: pageView{buf: buf, start: start, end: end}, w: w, buckets: newBucketList(w)}
	body := p.view.bytes()
	rec := writeCodeBlocks(p, body, 0, p.view.size(), true)
	rec.spaceView(w).writeNext(body, -1)
	p.buckets.insert(body, rec)
	return p
}

// contains reports whether the absolute backing-buffer offset abs falls
// inside this page.
func (p *page) contains(abs int64) bool { return p.view.contains(abs) }

// allocate tries to satisfy a requestedSize-byte request from this
// page's bucket list. ok is false if no free block in this page is
// large enough.
func (p *page) allocate(requestedSize int64) (payloadStart int64, ok bool) {
	buf := p.view.bytes()
	rec := p.buckets.getFreeSpace(buf, p, requestedSize)
	if rec == nil {
		return 0, false
	}
	p.buckets.remove(buf, rec.payloadSize(), rec.dataStart)
	used := p.split(buf, rec, requestedSize)
	// split's arithmetic must leave the returned payload entirely inside
	// this page; slice is what actually enforces that, not just the
	// offset math above, so a split bug surfaces here rather than as a
	// silent out-of-page write by the caller.
	if _, err := p.view.slice(used.dataStart, requestedSize); err != nil {
		panic(err)
	}
	return p.view.byteAt(used.dataStart), true
}

// split partitions free block f into a used left block of exactly
// requestedSize payload bytes (raised to smallestFreeSpace, so the block
// can later be freed into a valid free block) and, when the remainder
// is large enough to be meaningful and would hold a payload of at least
// smallestFreeSpace, a free right block re-inserted into the bucket
// list; otherwise f is handed out whole. Implements spec.md §4.5.3,
// including the tag-size monotonicity caveat: the left block's chosen
// tag size is a function of requestedSize alone and may be smaller than
// f's original tag size, with the freed bytes folding into the right
// remainder.
func (p *page) split(buf []byte, f *allocRecord, requestedSize int64) *allocRecord {
	if floor := smallestFreeSpace(p.w); requestedSize < floor {
		requestedSize = floor
	}
	reqTagSize := neededTagSize(requestedSize)
	leftInternal := requestedSize + 2*int64(reqTagSize)
	rightInternal := f.internalSize() - leftInternal
	if f.payloadSize()-requestedSize < int64(reqTagSize)+2 ||
		rightInternal-2*int64(encodeForInternal(rightInternal)) < smallestFreeSpace(p.w) {
		setFree(buf, f.blockStart(), false)
		setFree(buf, f.dataEnd, false)
		f.free = false
		return f
	}
	left := writeCodeBlocks(p, buf, f.blockStart(), leftInternal, false)
	right := writeCodeBlocks(p, buf, left.blockEnd(), rightInternal, true)
	right.spaceView(p.w).writeNext(buf, -1)
	p.buckets.insert(buf, right)
	return left
}

// free reclaims the used block whose payload starts at the page-
// relative offset payloadStart, coalescing with either immediate
// neighbor that is itself free, and re-inserts the result into the
// bucket list. Implements spec.md §4.5.2.
func (p *page) free(payloadStart int64) {
	buf := p.view.bytes()
	rec := cacheFromPayloadStart(p, buf, payloadStart)
	blockStart := rec.blockStart()
	blockEnd := rec.blockEnd()

	if left, ok := rec.leftNeighbor(buf); ok && left.free {
		p.buckets.remove(buf, left.payloadSize(), left.dataStart)
		blockStart = left.blockStart()
	}
	if right, ok := rec.rightNeighbor(buf, p.view.size()); ok && right.free {
		p.buckets.remove(buf, right.payloadSize(), right.dataStart)
		blockEnd = right.blockEnd()
	}

	merged := writeCodeBlocks(p, buf, blockStart, blockEnd-blockStart, true)
	merged.spaceView(p.w).writeNext(buf, -1)
	p.buckets.insert(buf, merged)
}
