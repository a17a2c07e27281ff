// Package arena implements a bump-pointer memory pool: allocations are
// carved off the current chunk's cursor and everything is released in
// one shot, by Reset or Destroy. Individual allocations cannot be
// freed; use FreeLarge only for the dedicated oversize list.
//
// Grounded on ngx_alloc.c and the pool data model of spec.md §3/§4.1
// (ngx_palloc.c itself was not available in the retrieved original
// source; the chunk/oversize layout below follows the specification's
// data model directly).
package arena

import (
	"errors"
	"sync/atomic"
	"unsafe"

	"github.com/nginxcore/corert/corelog"
)

// ErrArenaExhausted is returned when the backing allocator fails, the
// Go-idiomatic stand-in for the C convention of returning a null
// pointer that callers must check.
var ErrArenaExhausted = errors.New("arena: allocation failed")

// skipThreshold is the minimum remaining capacity a chunk must have to
// still be considered for allocation by the "current" hint scan; chunks
// below this are skipped on subsequent calls, avoiding an O(n) rescan
// of chunks that are effectively spent. Mirrors the small-remnant skip
// nginx performs implicitly via pool->current.
const skipThreshold = 16

// align is the pointer alignment used by Alloc (as opposed to
// AllocUnaligned).
const align = unsafe.Alignof(uintptr(0))

type chunk struct {
	buf  []byte
	last int // write cursor
	next *chunk
}

func (c *chunk) remaining() int { return len(c.buf) - c.last }

func newChunk(size int) *chunk {
	if size < 1 {
		size = 1
	}
	return &chunk{buf: make([]byte, size)}
}

// large is one oversize allocation, tracked on its own list for bulk
// free, per spec.md's "dedicated list for later bulk free".
type large struct {
	buf  []byte
	next *large
}

// Allocator is the seam container.Array/List depend on,
// rather than a concrete *Arena, per the Design Notes section of
// spec.md ("expose this as an explicit API... rather than pointer
// comparison").
type Allocator interface {
	Alloc(n int) (unsafe.Pointer, error)
	AllocUnaligned(n int) (unsafe.Pointer, error)
	// Tail reports whether p is the most recent allocation handed out by
	// the current chunk, and the chunk's remaining capacity if so. It is
	// the explicit substitute for the original's pointer-identity check
	// against pool->d.last.
	Tail(p unsafe.Pointer, size int) (remaining int, ok bool)
	// GrowTail advances the current chunk's cursor in place by extra
	// bytes, assuming a prior, successful Tail check. Returns false if
	// the chunk no longer has room (e.g. a concurrent allocation raced
	// ahead of the caller outside of expected single-threaded use).
	GrowTail(extra int) bool
	// Rewind retracts the current chunk's cursor by size bytes, the
	// inverse of GrowTail, used for best-effort reclamation when a
	// container is destroyed while still at the pool's tail.
	Rewind(size int) bool
}

// Arena is a chunked bump allocator. The zero value is not usable; use
// New.
type Arena struct {
	log       corelog.Logger
	name      string
	chunkSize int
	first     *chunk
	current   *chunk // first chunk with room, updated monotonically
	largeHead *large

	chunksUsed atomic.Int64
	bytesUsed  atomic.Int64
	largeBytes atomic.Int64
}

// New creates an arena whose first chunk is size bytes. log may be nil,
// in which case corelog.NoOp() is used.
func New(name string, size int, log corelog.Logger) *Arena {
	if log == nil {
		log = corelog.NoOp()
	}
	a := &Arena{
		log:       log,
		name:      name,
		chunkSize: size,
		first:     newChunk(size),
	}
	a.current = a.first
	a.chunksUsed.Store(1)
	return a
}

// Stats is a point-in-time snapshot of arena usage, the ambient
// metrics surface described in SPEC_FULL.md.
type Stats struct {
	Chunks     int64
	BytesUsed  int64
	LargeBytes int64
}

// Stats returns a snapshot of current allocator usage.
func (a *Arena) Stats() Stats {
	return Stats{
		Chunks:     a.chunksUsed.Load(),
		BytesUsed:  a.bytesUsed.Load(),
		LargeBytes: a.largeBytes.Load(),
	}
}

func alignUp(n int) int {
	return (n + int(align) - 1) &^ (int(align) - 1)
}

// Alloc returns n aligned bytes from the current chunk, falling back to
// a new chunk, or the oversize list if n exceeds a full chunk.
func (a *Arena) Alloc(n int) (unsafe.Pointer, error) {
	return a.alloc(n, true)
}

// AllocUnaligned is Alloc without the alignment padding.
func (a *Arena) AllocUnaligned(n int) (unsafe.Pointer, error) {
	return a.alloc(n, false)
}

func (a *Arena) alloc(n int, aligned bool) (unsafe.Pointer, error) {
	if n < 0 {
		n = 0
	}
	if n > len(a.first.buf) {
		return a.allocLarge(n)
	}

	for c := a.current; c != nil; c = c.next {
		last := c.last
		if aligned {
			last = alignUp(last)
		}
		if last+n <= len(c.buf) {
			c.last = last + n
			a.bytesUsed.Add(int64(n))
			if c == a.current && c.remaining() < skipThreshold {
				a.advanceCurrent()
			}
			return unsafe.Pointer(unsafe.SliceData(c.buf[last:])), nil
		}
		if c.next == nil {
			nc := newChunk(a.chunkSize)
			c.next = nc
			a.chunksUsed.Add(1)
			if c == a.current {
				a.advanceCurrent()
			}
			start := 0
			if aligned {
				start = alignUp(0)
			}
			nc.last = start + n
			a.bytesUsed.Add(int64(n))
			return unsafe.Pointer(unsafe.SliceData(nc.buf[start:])), nil
		}
	}

	a.log.Log(corelog.Entry{Level: corelog.LevelError, Pool: a.name, Message: "arena exhausted"})
	return nil, ErrArenaExhausted
}

// advanceCurrent moves the current hint past chunks that have fallen
// below skipThreshold remaining capacity, so future allocations don't
// rescan them.
func (a *Arena) advanceCurrent() {
	c := a.current
	for c.next != nil && c.remaining() < skipThreshold {
		c = c.next
	}
	a.current = c
}

func (a *Arena) allocLarge(n int) (unsafe.Pointer, error) {
	buf := make([]byte, n)
	l := &large{buf: buf, next: a.largeHead}
	a.largeHead = l
	a.largeBytes.Add(int64(n))
	return unsafe.Pointer(unsafe.SliceData(buf)), nil
}

// FreeLarge releases an oversize allocation returned by Alloc. It is
// the one explicit individual free this allocator supports; p must be
// a pointer Alloc returned for an allocation larger than a chunk, and
// must not be used afterward. Any other pointer yields an error.
func (a *Arena) FreeLarge(p unsafe.Pointer) error {
	var prev *large
	for l := a.largeHead; l != nil; l = l.next {
		if unsafe.Pointer(unsafe.SliceData(l.buf)) == p {
			if prev == nil {
				a.largeHead = l.next
			} else {
				prev.next = l.next
			}
			a.largeBytes.Add(-int64(len(l.buf)))
			return nil
		}
		prev = l
	}
	return errors.New("arena: FreeLarge: unknown pointer")
}

// Tail implements Allocator.
func (a *Arena) Tail(p unsafe.Pointer, size int) (int, bool) {
	c := a.current
	if c == nil || size <= 0 || size > len(c.buf) {
		return 0, false
	}
	if c.last < size {
		return 0, false
	}
	if unsafe.Pointer(&c.buf[c.last-size]) != p {
		return 0, false
	}
	return c.remaining(), true
}

// GrowTail implements Allocator.
func (a *Arena) GrowTail(extra int) bool {
	c := a.current
	if c == nil || extra < 0 || c.last+extra > len(c.buf) {
		return false
	}
	c.last += extra
	a.bytesUsed.Add(int64(extra))
	return true
}

// Rewind implements Allocator.
func (a *Arena) Rewind(size int) bool {
	c := a.current
	if c == nil || size < 0 || size > c.last {
		return false
	}
	c.last -= size
	a.bytesUsed.Add(-int64(size))
	return true
}

// Reset releases all chunks after the first and rewinds the first
// chunk's cursor, mirroring ngx_reset_pool.
func (a *Arena) Reset() {
	a.first.next = nil
	a.first.last = 0
	a.current = a.first
	a.largeHead = nil
	a.chunksUsed.Store(1)
	a.bytesUsed.Store(0)
	a.largeBytes.Store(0)
}

// Destroy releases everything. After Destroy, the Arena must not be
// used; every pointer it handed out is invalid.
func (a *Arena) Destroy() {
	a.first = nil
	a.current = nil
	a.largeHead = nil
	a.chunksUsed.Store(0)
	a.bytesUsed.Store(0)
	a.largeBytes.Store(0)
}
