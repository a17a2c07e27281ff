package container

import (
	"unsafe"

	"github.com/nginxcore/corert/arena"
)

// listPart is a fixed-capacity slab of T, analogous to ngx_list_part_t.
type listPart[T any] struct {
	elements []T // len tracks the initialized count, cap is the part's capacity
	next     *listPart[T]
}

// List is an append-only sequence of fixed-capacity parts. Unlike
// Array, List never relocates an element once pushed: addresses
// returned by Push remain valid for the lifetime of the backing arena.
// There is no random access; iterate by walking Parts(), then elements
// within each part, as ngx_list.h documents.
//
// Grounded on ngx_list.c/ngx_list.h.
type List[T any] struct {
	alloc    arena.Allocator
	head     listPart[T]
	last     *listPart[T]
	capacity int
}

// NewList creates a List whose parts each hold n elements.
func NewList[T any](alloc arena.Allocator, n int) (*List[T], error) {
	if n < 1 {
		n = 1
	}
	l := &List[T]{alloc: alloc, capacity: n}
	if err := l.initPart(&l.head); err != nil {
		return nil, err
	}
	l.last = &l.head
	return l, nil
}

func (l *List[T]) initPart(p *listPart[T]) error {
	var zero T
	size := int(unsafe.Sizeof(zero)) * l.capacity
	ptr, err := l.alloc.Alloc(size)
	if err != nil {
		return err
	}
	p.elements = unsafe.Slice((*T)(ptr), l.capacity)[:0:l.capacity]
	p.next = nil
	return nil
}

// Push appends one element and returns a stable pointer to it,
// allocating a new part from the arena when the current one is full.
func (l *List[T]) Push() (*T, error) {
	last := l.last
	if len(last.elements) == cap(last.elements) {
		np := new(listPart[T])
		if err := l.initPart(np); err != nil {
			return nil, err
		}
		last.next = np
		l.last = np
		last = np
	}
	last.elements = last.elements[:len(last.elements)+1]
	return &last.elements[len(last.elements)-1], nil
}

// Parts returns the head part, for iteration: walk Next() and each
// part's Elements() in order.
func (l *List[T]) Parts() *ListPart[T] {
	return (*ListPart[T])(&l.head)
}

// ListPart is the exported iteration handle for a list chunk.
type ListPart[T any] listPart[T]

// Elements returns the initialized elements of this part.
func (p *ListPart[T]) Elements() []T { return p.elements }

// Next returns the following part, or nil at the end of the list.
func (p *ListPart[T]) Next() *ListPart[T] { return (*ListPart[T])(p.next) }
