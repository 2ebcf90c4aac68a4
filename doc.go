// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*

Package mara implements a coalescing, segregated-fit allocator over a
single, contiguous, caller-supplied byte buffer. It targets freestanding
environments: there is no OS heap anywhere in this package, no thread
safety and no reliance on a language runtime beyond the Go one needed to
compile it.

Buffer

A buffer is the []byte passed to New. Its ownership is exclusive to the
returned *Arena for the Arena's lifetime; the Arena never grows, shrinks
or copies it.

Pages

The buffer is carved, on demand, into pages: fixed-size regions each
managed as an independent coalescing arena with its own segregated free
list (see bucketList). Pages are linked in a ring (see ring) and are
never destroyed once created.

Blocks and code blocks

Every page is tiled, with no gaps, by a sequence of blocks. A block is
either free (linked into exactly one bucket of its page's bucket list) or
used (caller-owned, unreachable from any bucket). Every block carries an
identical boundary tag ("code block") at each end, a 1..K byte encoding
of (payload size, free bit) — see codeblock.go for the bit layout. A free
block's payload additionally carries, in its first W bytes, a
page-relative offset to the next free block in its bucket, or the
all-ones sentinel for "no successor".

Allocation and free

Alloc walks the page ring until a page's bucket list can serve the
request; if none can and the backing buffer is exhausted, Alloc returns
nil. Free locates the owning page by address, merges the freed block
with any free immediate neighbor, and re-links the result into its
page's bucket list. Neither operation can block; the package is strictly
single-threaded and must not be entered from more than one goroutine
without external mutual exclusion.

*/
package mara
