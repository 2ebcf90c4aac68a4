// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import "github.com/cznic/mathutil"

// ring is the cyclic list of pages carved from one backing buffer. It
// grows on demand — one page at a time, bump-allocated from the tail of
// the buffer already in use — and never shrinks; pages, once created,
// live for the arena's lifetime.
type ring struct {
	buf       []byte
	pageSize  int64
	w         NextPointerWidth
	head      *page
	tail      *page
	pageCount int
	capacity  int // maximum number of pages buf can hold
}

func newRing(buf []byte, pageSize int64, w NextPointerWidth) *ring {
	capacity := mathutil.MaxInt64(int64(len(buf))/pageSize, 1)
	r := &ring{buf: buf, pageSize: pageSize, w: w, capacity: int(capacity)}
	r.growPage()
	return r
}

// growPage bump-allocates the next page-sized region from buf and links
// it into the ring just behind the head, becoming the new tail.
func (r *ring) growPage() *page {
	start := int64(r.pageCount) * r.pageSize
	end := start + r.pageSize
	p := newPage(r.buf, start, end, r.w)
	if r.head == nil {
		r.head = p
		r.tail = p
		p.next = p
	} else {
		p.next = r.head
		r.tail.next = p
		r.tail = p
	}
	r.pageCount++
	return p
}

// alloc walks the ring starting at head until some page can satisfy
// size, growing the ring by one page and retrying once if the walk
// comes all the way back around empty-handed. Returns an absolute
// offset into buf and true, or (0, false) if the buffer is exhausted.
func (r *ring) alloc(size int64) (int64, bool) {
	if r.head == nil {
		return 0, false
	}
	start := r.head
	for p := start; ; {
		if ptr, ok := p.allocate(size); ok {
			return ptr, true
		}
		p = p.next
		if p == start {
			break
		}
	}
	if r.pageCount >= r.capacity {
		return 0, false
	}
	return r.growPage().allocate(size)
}

// free walks the ring until it finds the page whose region contains the
// absolute offset ptr, and delegates to it. Reports false if ptr belongs
// to no page in this ring — a programming error (spec.md §6: free of an
// unknown pointer is undefined behavior; callers that want this
// surfaced as a reportable error should go through Arena.Free, which
// turns a false return into an ErrILSEQ).
func (r *ring) free(ptr int64) bool {
	if r.head == nil {
		return false
	}
	start := r.head
	for p := start; ; {
		if p.contains(ptr) {
			p.free(p.view.offsetOf(ptr))
			return true
		}
		p = p.next
		if p == start {
			return false
		}
	}
}
