// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import "testing"

func TestNeededTagSize(t *testing.T) {
	table := []struct {
		size    int64
		tagSize int
	}{
		{0, 1},
		{1, 1},
		{freeBit - 1, 1},
		{freeBit, 2},
		{1 << 12, 2},
		{1 << 13, 3},
		{1 << 20, 4},
		{1 << 21, 4},
	}
	for _, e := range table {
		if g := neededTagSize(e.size); g != e.tagSize {
			t.Errorf("neededTagSize(%d) = %d, want %d", e.size, g, e.tagSize)
		}
	}
}

func TestWriteReadTagSingleByte(t *testing.T) {
	buf := make([]byte, 8)
	writeTag(buf, 2, 17, true, 1)
	size, tagSize := readLeft(buf, 2)
	if size != 17 || tagSize != 1 {
		t.Fatalf("got size=%d tagSize=%d, want 17,1", size, tagSize)
	}
	if !isFree(buf, 2) {
		t.Fatal("expected free bit set")
	}
	setFree(buf, 2, false)
	if isFree(buf, 2) {
		t.Fatal("expected free bit cleared")
	}
	// size bits must survive clearing the free bit.
	size, tagSize = readLeft(buf, 2)
	if size != 17 || tagSize != 1 {
		t.Fatalf("after setFree, got size=%d tagSize=%d, want 17,1", size, tagSize)
	}
}

func TestWriteReadTagMultiByte(t *testing.T) {
	sizes := []int64{freeBit, 1000, 1 << 13, 1 << 20, 1<<21 + 12345}
	for _, size := range sizes {
		tagSize := neededTagSize(size)
		buf := make([]byte, tagSize+4)
		writeTag(buf, 1, size, true, tagSize)
		gotSize, gotTagSize := readLeft(buf, 1)
		if gotSize != size || gotTagSize != tagSize {
			t.Errorf("size=%d: readLeft = (%d, %d), want (%d, %d)", size, gotSize, gotTagSize, size, tagSize)
		}
		if !isFree(buf, 1) {
			t.Errorf("size=%d: expected free bit set", size)
		}
	}
}

func TestReadRightMatchesReadLeft(t *testing.T) {
	sizes := []int64{1, 63, 64, 1000, 1 << 13, 1 << 20}
	for _, size := range sizes {
		tagSize := neededTagSize(size)
		buf := make([]byte, tagSize+4)
		writeTag(buf, 1, size, false, tagSize)
		last := int64(1) + int64(tagSize) - 1
		gotSize, gotFirst := readRight(buf, last)
		if gotSize != size || gotFirst != 1 {
			t.Errorf("size=%d: readRight = (%d, %d), want (%d, 1)", size, gotSize, gotFirst, size)
		}
	}
}

func TestEncodeForInternalRoundTrips(t *testing.T) {
	for _, internalSize := range []int64{4, 16, 100, 1000, 1 << 14, 1 << 22} {
		tagSize := encodeForInternal(internalSize)
		payload := internalSize - 2*int64(tagSize)
		if payload < 0 {
			t.Fatalf("internalSize=%d: negative payload with tagSize=%d", internalSize, tagSize)
		}
		if neededTagSize(payload) > tagSize {
			t.Errorf("internalSize=%d: tagSize=%d insufficient for payload=%d (needs %d)",
				internalSize, tagSize, payload, neededTagSize(payload))
		}
	}
}

func TestWriteCodeBlocksBothTagsAgree(t *testing.T) {
	buf := make([]byte, 256)
	rec := writeCodeBlocks(nil, buf, 10, 200, true)
	leftSize, leftTagSize := readLeft(buf, 10)
	if leftSize != rec.payloadSize() || leftTagSize != rec.tagSize {
		t.Fatalf("left tag disagrees with record: size=%d tagSize=%d, want %d,%d",
			leftSize, leftTagSize, rec.payloadSize(), rec.tagSize)
	}
	rightSize, rightFirst := readRight(buf, rec.dataEnd+int64(rec.tagSize)-1)
	if rightSize != rec.payloadSize() || rightFirst != rec.dataEnd {
		t.Fatalf("right tag disagrees with record: size=%d first=%d, want %d,%d",
			rightSize, rightFirst, rec.payloadSize(), rec.dataEnd)
	}
	if !isFree(buf, 10) || !isFree(buf, rec.dataEnd) {
		t.Fatal("expected both tags free")
	}
}
