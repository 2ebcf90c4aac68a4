// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingGrowsOnDemand(t *testing.T) {
	buf := make([]byte, 4*256)
	r := newRing(buf, 256, W2)
	assert.Equal(t, 1, r.pageCount)

	var offs []int64
	for i := 0; i < 4; i++ {
		off, ok := r.alloc(200)
		require.True(t, ok, "alloc %d should succeed", i)
		offs = append(offs, off)
	}
	assert.GreaterOrEqual(t, r.pageCount, 2, "ring should have grown beyond its first page")
}

func TestRingAllocFailsWhenExhausted(t *testing.T) {
	buf := make([]byte, 256)
	r := newRing(buf, 256, W2)
	_, ok := r.alloc(200)
	require.True(t, ok)
	_, ok = r.alloc(200)
	assert.False(t, ok, "second large alloc should fail: buffer holds only one page")
}

func TestRingFreeRoutesToOwningPage(t *testing.T) {
	buf := make([]byte, 2*256)
	r := newRing(buf, 256, W2)
	_, ok := r.alloc(200)
	require.True(t, ok)
	off, ok := r.alloc(200)
	require.True(t, ok)

	assert.True(t, r.free(off))
	assert.False(t, r.free(999999), "freeing an offset outside every page should fail")
}
