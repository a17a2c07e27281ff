// Package rbtree implements an intrusive-style red-black tree keyed by
// a uint32, with a pluggable insertion comparator so the same rotation
// and fixup machinery serves both general ordered lookups and the
// wrap-safe deadline ordering the timer package needs.
//
// Grounded on ngx_rbtree.c: sentinel-based NIL, CLRS insert/delete
// fixups, and ngx_rbtree_insert_value / ngx_rbtree_insert_timer_value
// as the two InsertFunc implementations.
package rbtree

type color bool

const (
	red   color = false
	black color = true
)

// Node is one tree element. The zero value is not linked into any
// tree. Value is the caller's payload; the original's field-offset
// container_of recovery is replaced by carrying Value directly, per
// spec.md's Design Notes on generics.
type Node[T any] struct {
	Key    uint32
	Value  T
	color  color
	left   *Node[T]
	right  *Node[T]
	parent *Node[T]
}

// InsertFunc places n into the subtree rooted at root, walking down
// from root and linking n as a child of the leaf it finds, without
// touching colors or doing any rotation -- that is Insert's job after
// this returns.
type InsertFunc[T any] func(root, n, sentinel *Node[T])

// Tree is a red-black tree of Node[T], using a dedicated per-tree
// sentinel in place of a single process-global NIL.
type Tree[T any] struct {
	root     *Node[T]
	sentinel Node[T]
	insert   InsertFunc[T]
}

// New returns an empty Tree using insert as its insertion-point
// comparator.
func New[T any](insert InsertFunc[T]) *Tree[T] {
	t := &Tree[T]{insert: insert}
	t.sentinel.color = black
	t.root = &t.sentinel
	return t
}

// InsertValue is the general-purpose comparator: Key order, ties
// broken by the caller-supplied less function over Value so that
// distinct nodes with equal keys still get a deterministic, stable
// relative order matching insertion when less reports neither way.
//
// Grounded on ngx_rbtree_insert_value.
func InsertValue[T any](less func(a, b T) bool) InsertFunc[T] {
	return func(root, n, sentinel *Node[T]) {
		for {
			var next **Node[T]
			if n.Key < root.Key {
				next = &root.left
			} else if n.Key > root.Key {
				next = &root.right
			} else if less != nil && less(n.Value, root.Value) {
				next = &root.left
			} else {
				next = &root.right
			}
			if *next == sentinel {
				*next = n
				n.parent = root
				return
			}
			root = *next
		}
	}
}

// InsertTimerValue orders strictly by Key using wrap-safe signed
// comparison, so deadlines that wrap modulo 2^32 still sort correctly
// as long as no two live timers are more than 2^31 apart.
//
// Grounded on ngx_rbtree_insert_timer_value.
func InsertTimerValue[T any]() InsertFunc[T] {
	return func(root, n, sentinel *Node[T]) {
		for {
			var next **Node[T]
			if keyLess(n.Key, root.Key) {
				next = &root.left
			} else {
				next = &root.right
			}
			if *next == sentinel {
				*next = n
				n.parent = root
				return
			}
			root = *next
		}
	}
}

// keyLess reports a < b using wrap-safe signed 32-bit difference, so
// the comparison stays correct across a uint32 rollover.
func keyLess(a, b uint32) bool {
	return int32(a-b) < 0
}

// Empty reports whether the tree has no nodes.
func (t *Tree[T]) Empty() bool {
	return t.root == &t.sentinel
}

// Insert links n into the tree and restores the red-black properties.
func (t *Tree[T]) Insert(n *Node[T]) {
	n.left = &t.sentinel
	n.right = &t.sentinel
	n.color = red

	if t.root == &t.sentinel {
		n.parent = nil
		t.root = n
		n.color = black
		return
	}

	t.insert(t.root, n, &t.sentinel)
	t.insertFixup(n)
}

func (t *Tree[T]) insertFixup(z *Node[T]) {
	for z.parent != nil && z.parent.color == red {
		gp := z.parent.parent
		if gp == nil {
			break
		}
		if z.parent == gp.left {
			y := gp.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				gp.color = red
				z = gp
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.color = black
				gp = z.parent.parent
				gp.color = red
				t.rotateRight(gp)
			}
		} else {
			y := gp.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				gp.color = red
				z = gp
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = black
				gp = z.parent.parent
				gp.color = red
				t.rotateLeft(gp)
			}
		}
	}
	t.root.color = black
}

func (t *Tree[T]) rotateLeft(x *Node[T]) {
	y := x.right
	x.right = y.left
	if y.left != &t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *Tree[T]) rotateRight(x *Node[T]) {
	y := x.left
	x.left = y.right
	if y.right != &t.sentinel {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == nil {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *Tree[T]) transplant(u, v *Node[T]) {
	if u.parent == nil {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

// Min returns the leftmost node of the subtree rooted at n, or nil if
// n is the sentinel.
func (t *Tree[T]) Min(n *Node[T]) *Node[T] {
	if n == &t.sentinel {
		return nil
	}
	for n.left != &t.sentinel {
		n = n.left
	}
	return n
}

// TreeMin returns the minimum-key node in the whole tree, or nil if
// empty.
func (t *Tree[T]) TreeMin() *Node[T] {
	return t.Min(t.root)
}

// Next returns the in-order successor of n, or nil if n is the last
// node.
func (t *Tree[T]) Next(n *Node[T]) *Node[T] {
	if n.right != &t.sentinel {
		return t.Min(n.right)
	}
	p := n.parent
	for p != nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

// Delete removes n from the tree.
//
// Grounded on ngx_rbtree_delete's transplant-based CLRS delete.
func (t *Tree[T]) Delete(z *Node[T]) {
	y := z
	yOriginalColor := y.color
	var x *Node[T]
	var xParent *Node[T]

	if z.left == &t.sentinel {
		x = z.right
		xParent = z.parent
		t.transplant(z, z.right)
	} else if z.right == &t.sentinel {
		x = z.left
		xParent = z.parent
		t.transplant(z, z.left)
	} else {
		y = t.Min(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOriginalColor == black {
		t.deleteFixup(x, xParent)
	}

	z.left = nil
	z.right = nil
	z.parent = nil
}

func (t *Tree[T]) deleteFixup(x, parent *Node[T]) {
	for x != t.root && x.color == black {
		if parent == nil {
			break
		}
		if x == parent.left {
			w := parent.right
			if w.color == red {
				w.color = black
				parent.color = red
				t.rotateLeft(parent)
				w = parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = parent
				parent = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rotateRight(w)
					w = parent.right
				}
				w.color = parent.color
				parent.color = black
				w.right.color = black
				t.rotateLeft(parent)
				x = t.root
				parent = nil
			}
		} else {
			w := parent.left
			if w.color == red {
				w.color = black
				parent.color = red
				t.rotateRight(parent)
				w = parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = parent
				parent = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.rotateLeft(w)
					w = parent.left
				}
				w.color = parent.color
				parent.color = black
				w.left.color = black
				t.rotateRight(parent)
				x = t.root
				parent = nil
			}
		}
	}
	x.color = black
}
