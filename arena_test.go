// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mara

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUndersizedBuffer(t *testing.T) {
	_, err := New(make([]byte, 4), Config{PageSize: 1 << 12})
	require.Error(t, err)
}

func TestNewRejectsBadWidth(t *testing.T) {
	_, err := New(make([]byte, 1<<16), Config{NextPointerWidth: 3})
	require.Error(t, err)
}

func TestNewAppliesDefaults(t *testing.T) {
	a, err := New(make([]byte, 1<<16), Config{})
	require.NoError(t, err)
	assert.Equal(t, W2, a.cfg.NextPointerWidth)
	assert.Equal(t, int64(defaultPageSize), a.cfg.PageSize)
}

func TestArenaAllocFreeRoundTrip(t *testing.T) {
	a, err := New(make([]byte, 1<<16), Config{PageSize: 1 << 12, ConsistencyChecks: true})
	require.NoError(t, err)

	p, err := a.Alloc(64)
	require.NoError(t, err)
	require.NotNil(t, p)

	b := unsafe.Slice((*byte)(p), 64)
	for i := range b {
		b[i] = byte(i)
	}

	require.NoError(t, a.Free(p))
}

func TestArenaFreeNilIsNoop(t *testing.T) {
	a, err := New(make([]byte, 1<<16), Config{})
	require.NoError(t, err)
	assert.NoError(t, a.Free(nil))
}

func TestArenaFreeUnknownPointerErrors(t *testing.T) {
	a, err := New(make([]byte, 1<<16), Config{})
	require.NoError(t, err)
	other := make([]byte, 16)
	err = a.Free(unsafe.Pointer(&other[0]))
	assert.Error(t, err)
}

func TestArenaAllocReturnsNilOnOOM(t *testing.T) {
	a, err := New(make([]byte, 1<<12), Config{PageSize: 1 << 12})
	require.NoError(t, err)

	var last unsafe.Pointer
	for i := 0; i < 1000; i++ {
		p, err := a.Alloc(64)
		require.NoError(t, err)
		if p == nil {
			break
		}
		last = p
	}
	assert.NotNil(t, last, "at least one allocation should have succeeded before exhaustion")

	p, err := a.Alloc(1 << 20)
	require.NoError(t, err)
	assert.Nil(t, p, "an allocation larger than the whole arena must report OOM, not error")
}

func TestArenaVerifyCleanAfterMixedUse(t *testing.T) {
	a, err := New(make([]byte, 4*(1<<12)), Config{PageSize: 1 << 12})
	require.NoError(t, err)

	var ptrs []unsafe.Pointer
	for i := 0; i < 20; i++ {
		p, err := a.Alloc(32 + i)
		require.NoError(t, err)
		if p != nil {
			ptrs = append(ptrs, p)
		}
	}
	for i, p := range ptrs {
		if i%2 == 0 {
			require.NoError(t, a.Free(p))
		}
	}

	assert.NoError(t, a.Verify(nil))
}

func TestLayoutDigestStableAcrossEquivalentInit(t *testing.T) {
	a1, err := New(make([]byte, 1<<16), Config{PageSize: 1 << 12})
	require.NoError(t, err)
	a2, err := New(make([]byte, 1<<16), Config{PageSize: 1 << 12})
	require.NoError(t, err)

	assert.Equal(t, a1.LayoutDigest(), a2.LayoutDigest())
}

func TestLayoutDigestReturnsToInitialShapeAfterFreeingEverything(t *testing.T) {
	a, err := New(make([]byte, 1<<16), Config{PageSize: 1 << 12})
	require.NoError(t, err)
	before := a.LayoutDigest()

	var ptrs []unsafe.Pointer
	for i := 0; i < 5; i++ {
		p, err := a.Alloc(40)
		require.NoError(t, err)
		require.NotNil(t, p)
		ptrs = append(ptrs, p)
	}
	for _, p := range ptrs {
		require.NoError(t, a.Free(p))
	}

	assert.Equal(t, before, a.LayoutDigest())
}
