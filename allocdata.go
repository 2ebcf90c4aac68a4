// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

// allocRecord is a transient, cached view of one block: its payload
// bounds, tag size and free bit, all relative to the owning page's
// buffer. It exists so that the several page operations that inspect or
// rewrite a block (split, coalesce, free) share one set of derived
// fields instead of recomputing them from the tags on every access.
//
// A record becomes stale the moment the tags it was built from are
// rewritten; callers must re-derive one (via cacheFromPayloadStart,
// leftNeighbor/rightNeighbor, or writeCodeBlocks, which returns a freshly
// derived record) rather than reuse it across a mutation.
type allocRecord struct {
	owner     *page
	dataStart int64 // offset of the first payload byte within the page
	dataEnd   int64 // offset one past the last payload byte within the page
	tagSize   int   // size, in bytes, of the boundary tag at each end
	free      bool
}

// blockStart is the offset of the block's left tag within the page.
func (a *allocRecord) blockStart() int64 { return a.dataStart - int64(a.tagSize) }

// blockEnd is the offset one past the block's right tag within the page.
func (a *allocRecord) blockEnd() int64 { return a.dataEnd + int64(a.tagSize) }

// payloadSize is the number of bytes between the two tags.
func (a *allocRecord) payloadSize() int64 { return a.dataEnd - a.dataStart }

// internalSize is the block's total footprint, tags included.
func (a *allocRecord) internalSize() int64 { return a.blockEnd() - a.blockStart() }

// spaceView returns the space abstraction over this block's payload, for
// next-pointer access. Only meaningful while a.free is true.
func (a *allocRecord) spaceView(w NextPointerWidth) space {
	return space{dataStart: a.dataStart, dataEnd: a.dataEnd, w: w}
}

// cacheFromPayloadStart derives a full allocRecord for a free block
// given only its payload start (the value threaded through bucket
// chains as a next pointer). Its left tag's first byte is not known in
// advance — only the byte just before the payload is — so this decodes
// backward via readRight rather than forward via readLeft.
func cacheFromPayloadStart(owner *page, buf []byte, dataStart int64) *allocRecord {
	size, blockStart := readRight(buf, dataStart-1)
	return &allocRecord{
		owner:     owner,
		dataStart: dataStart,
		dataEnd:   dataStart + size,
		tagSize:   int(dataStart - blockStart),
		free:      isFree(buf, blockStart),
	}
}

// leftNeighbor decodes the block immediately to the left of a: its own
// right tag ends exactly where a's left tag begins, so it is read
// backward from a.blockStart()-1. ok is false if a.blockStart() == 0 (a
// is the first block on its page).
func (a *allocRecord) leftNeighbor(buf []byte) (rec *allocRecord, ok bool) {
	bs := a.blockStart()
	if bs == 0 {
		return nil, false
	}
	size, firstByte := readRight(buf, bs-1)
	tagSize := int(bs - firstByte)
	dataEnd := bs - int64(tagSize)
	return &allocRecord{
		owner:     a.owner,
		dataStart: dataEnd - size,
		dataEnd:   dataEnd,
		tagSize:   tagSize,
		free:      isFree(buf, firstByte),
	}, true
}

// rightNeighbor decodes the block immediately to the right of a: its own
// left tag begins exactly where a's right tag ends, so it is read
// forward from a.blockEnd(). ok is false if a.blockEnd() is already the
// end of its page.
func (a *allocRecord) rightNeighbor(buf []byte, pageSize int64) (rec *allocRecord, ok bool) {
	be := a.blockEnd()
	if be >= pageSize {
		return nil, false
	}
	size, tagSize := readLeft(buf, be)
	dataStart := be + int64(tagSize)
	return &allocRecord{
		owner:     a.owner,
		dataStart: dataStart,
		dataEnd:   dataStart + size,
		tagSize:   tagSize,
		free:      isFree(buf, be),
	}, true
}

// writeCodeBlocks picks the minimal tag size for a block whose total
// internal footprint is fixed at internalSize, writes both tags at
// blockStart and blockStart+internalSize-tagSize, and returns the
// refreshed record. This is the one computation both of the teacher's
// write paths reduce to: the tag size that makes a payload of
// internalSize-2*tagSize self-consistent, whether the block in question
// is the allocated side of a split (whose footprint was fixed by the
// request) or a free remainder (whose footprint was fixed by its
// neighbors).
func writeCodeBlocks(owner *page, buf []byte, blockStart, internalSize int64, free bool) *allocRecord {
	tagSize := encodeForInternal(internalSize)
	payload := internalSize - 2*int64(tagSize)
	dataStart := blockStart + int64(tagSize)
	dataEnd := dataStart + payload
	writeTag(buf, blockStart, payload, free, tagSize)
	writeTag(buf, dataEnd, payload, free, tagSize)
	return &allocRecord{owner: owner, dataStart: dataStart, dataEnd: dataEnd, tagSize: tagSize, free: free}
}
