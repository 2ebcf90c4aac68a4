// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import "fmt"

// ErrINVAL reports an invalid argument passed to one of the package's
// exported functions or methods.
type ErrINVAL struct {
	Msg string
	Arg interface{}
}

func (e *ErrINVAL) Error() string { return fmt.Sprintf("%s: %v", e.Msg, e.Arg) }

// ErrILSEQType enumerates the kinds of structural corruption ErrILSEQ can
// report. The name follows the teacher's convention (ILSEQ as in
// "illegal sequence") for any disagreement between a block's boundary
// tags, its bucket membership, or its position relative to its page.
type ErrILSEQType int

const (
	ErrOther ErrILSEQType = iota
	ErrTagMismatch          // left and right tag of one block disagree
	ErrExpFreeTag           // expected a free tag, found a used one
	ErrExpUsedTag           // expected a used tag, found a free one
	ErrPointerOutOfPage     // pointer does not fall inside any page
	ErrUnknownPointer       // Free called with a pointer never returned by Alloc
	ErrNotInBucket          // a block claimed free is not linked into any bucket
	ErrWrongBucket          // a block is linked into a bucket lower than lookupBucket(size)
	ErrAdjacentFree         // two adjacent blocks are both free (coalescing failed)
	ErrOverlap              // two blocks overlap, or a gap exists between them
	ErrNextOutOfRange       // a next pointer decodes outside [0, page size)
	ErrTooSmallFree         // a free block's payload is smaller than W
	ErrBufferTooSmall       // the supplied buffer cannot hold one page
	ErrBufferTooLarge       // the configured page size exceeds 2^(8W)-1 bytes
	ErrZeroSize             // Alloc(0) was requested
)

// ErrILSEQ reports a structural inconsistency in the heap: a corrupt or
// mismatched boundary tag, a pointer that does not belong to any page, a
// free-list/tag disagreement, or a malformed buffer passed to New. Every
// occurrence is either a caller precondition violation or heap
// corruption; per spec, the only recoverable failure this package
// surfaces is Alloc returning nil for out-of-memory.
type ErrILSEQ struct {
	Type ErrILSEQType
	Off  int64 // offset within the buffer or page, as applicable
	Arg  int64
	Arg2 int64
	More error
}

func (e *ErrILSEQ) Error() string {
	if e.More != nil {
		return fmt.Sprintf("mara: illegal heap state %d at offset %#x (arg %d, arg2 %d): %v", e.Type, e.Off, e.Arg, e.Arg2, e.More)
	}
	return fmt.Sprintf("mara: illegal heap state %d at offset %#x (arg %d, arg2 %d)", e.Type, e.Off, e.Arg, e.Arg2)
}
