// Package container provides arena-backed sequence containers: Array,
// a growable contiguous buffer with a tail-growth fast path, and List,
// an append-only chunked sequence with stable element addresses.
//
// Grounded on ngx_array.c/ngx_array.h and ngx_list.c/ngx_list.h; the
// void*/element_size pattern is replaced with generics per the Design
// Notes section of spec.md.
package container

import (
	"errors"
	"unsafe"

	"github.com/nginxcore/corert/arena"
)

// ErrPushFailed mirrors the null-sentinel failure of ngx_array_push
// when the backing arena cannot satisfy a growth request.
var ErrPushFailed = errors.New("container: push failed: arena exhausted")

// Array is a growable, arena-backed sequence of T.
//
// Growth invariant: when the array's storage is still the most recent
// allocation in the arena's current chunk, growth extends in place by
// advancing the chunk cursor; otherwise a new block of at least twice
// the current capacity is allocated and existing elements are copied.
// Element addresses are invalidated by any push that doesn't take the
// in-place path; callers must not hold pointers across a Push call.
type Array[T any] struct {
	alloc    arena.Allocator
	elements []T
	count    int
}

// NewArray creates an Array with initial capacity n.
func NewArray[T any](alloc arena.Allocator, n int) (*Array[T], error) {
	a := &Array[T]{alloc: alloc}
	if err := a.init(n); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Array[T]) init(n int) error {
	if n < 0 {
		n = 0
	}
	if n == 0 {
		a.elements = nil
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	p, err := a.alloc.Alloc(size)
	if err != nil {
		return err
	}
	a.elements = unsafe.Slice((*T)(p), n)[:0:n]
	return nil
}

// Len returns the number of initialized elements.
func (a *Array[T]) Len() int { return a.count }

// Cap returns the current capacity.
func (a *Array[T]) Cap() int { return cap(a.elements) }

// At returns a pointer to the i'th element. The pointer is invalidated
// by any subsequent Push/PushN that reallocates.
func (a *Array[T]) At(i int) *T {
	if i < 0 || i >= a.count {
		panic("container: Array.At: index out of range")
	}
	return &a.elements[i]
}

// Push returns a pointer to one new, uninitialized slot, growing the
// array if needed. Returns nil, ErrPushFailed if the arena cannot
// satisfy a growth request.
func (a *Array[T]) Push() (*T, error) {
	s, err := a.PushN(1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// PushN returns a slice of k new, uninitialized, contiguous slots.
func (a *Array[T]) PushN(k int) ([]T, error) {
	if k < 0 {
		k = 0
	}
	need := a.count + k
	if need > cap(a.elements) {
		if err := a.grow(k); err != nil {
			return nil, err
		}
	}
	s := a.elements[a.count:need:cap(a.elements)]
	a.elements = a.elements[:need]
	a.count = need
	return s, nil
}

func (a *Array[T]) grow(k int) error {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	curCap := cap(a.elements)

	newCap := 2 * k
	if 2*curCap > newCap {
		newCap = 2 * curCap
	}
	if newCap < 1 {
		newCap = 1
	}

	if curCap > 0 {
		if remaining, ok := a.alloc.Tail(unsafe.Pointer(unsafe.SliceData(a.elements)), elemSize*curCap); ok {
			needBytes := elemSize * (newCap - curCap)
			if needBytes <= remaining && a.alloc.GrowTail(needBytes) {
				a.elements = unsafe.Slice(unsafe.SliceData(a.elements), newCap)[:a.count:newCap]
				return nil
			}
		}
	}

	size := elemSize * newCap
	p, err := a.alloc.Alloc(size)
	if err != nil {
		return ErrPushFailed
	}
	newElements := unsafe.Slice((*T)(p), newCap)
	copy(newElements, a.elements)
	a.elements = newElements[:a.count:newCap]
	return nil
}

// Destroy best-effort reclaims the array's backing storage from the
// arena, if it is still the most recent allocation in the current
// chunk. Go's struct header for Array itself isn't arena-allocated (it
// is a normal heap object collected by the GC), so only the element
// block participates in the rollback ngx_array_destroy performs for
// both the block and the header.
func (a *Array[T]) Destroy() {
	if cap(a.elements) == 0 {
		return
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if _, ok := a.alloc.Tail(unsafe.Pointer(unsafe.SliceData(a.elements)), elemSize*cap(a.elements)); ok {
		a.alloc.Rewind(elemSize * cap(a.elements))
	}
	a.elements = nil
	a.count = 0
}
