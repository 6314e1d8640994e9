// Package treeindex is a byte-keyed prefix tree whose nodes are guarded by
// plock.Lock instead of a single tree-wide mutex, reproducing the exact
// motivating scenario plock's own package doc describes: a caller
// descending a tree must hold each node it owns without serializing
// unrelated subtrees behind one global lock.
//
// Descent takes R (or S, for a mutating call) at the root, then takes the
// same state on the child before dropping the parent's hold ("lock
// coupling" / "crabbing"): the parent is never released before the child
// is safely held. Gets never contend with one another; a mutating call
// holds each ancestor's S only until it holds the child's, so two mutating
// calls meet only at the ancestors they share (always including the
// root). A Put only stows its final node from S to W; ancestors are only
// ever held at S, matching treelock.c's mode 2/3 ("read: S; lookup: S;
// write: W", "typical of insert_unique").
//
// S admits at most one seeker but never excludes a concurrent R holder
// (only Stow does), so the child-link table itself is a sync.Map rather
// than a plain map: a Put creating a new child races a concurrent Get's
// read of the same table, and plock's guards only ever protect against
// that for the stowed W-only value field.
package treeindex

import (
	"sync"

	"github.com/dijkstracula/plock/plock"
)

type node[V any] struct {
	lock     plock.Lock[uint64]
	children sync.Map // byte -> *node[V]
	value    V
	has      bool
}

func newNode[V any]() *node[V] {
	return &node[V]{}
}

func (n *node[V]) child(b byte) (*node[V], bool) {
	v, ok := n.children.Load(b)
	if !ok {
		return nil, false
	}
	return v.(*node[V]), true
}

func (n *node[V]) childOrCreate(b byte) *node[V] {
	fresh := newNode[V]()
	actual, _ := n.children.LoadOrStore(b, fresh)
	return actual.(*node[V])
}

// Index is a concurrent prefix tree mapping string keys to values of type
// V. The zero Index is not usable; use New.
type Index[V any] struct {
	root *node[V]
}

// New returns an empty Index.
func New[V any]() *Index[V] {
	return &Index[V]{root: newNode[V]()}
}

// Get looks up key, descending the tree under R holds only. It never
// blocks a concurrent Get or Put on an unrelated prefix.
func (idx *Index[V]) Get(key string) (V, bool) {
	var zero V

	parent := idx.root
	pg := parent.lock.TakeR()

	for i := 0; i < len(key); i++ {
		child, ok := parent.child(key[i])
		if !ok {
			pg.Drop()
			return zero, false
		}
		cg := child.lock.TakeR()
		pg.Drop()
		parent, pg = child, cg
	}

	v, ok := parent.value, parent.has
	pg.Drop()
	return v, ok
}

// Put inserts or overwrites the value at key, descending under S and
// stowing to W only at the final node: the rest of the path never blocks
// an unrelated concurrent descent.
func (idx *Index[V]) Put(key string, v V) {
	parent := idx.root
	pg := parent.lock.TakeS()

	for i := 0; i < len(key); i++ {
		child := parent.childOrCreate(key[i])
		cg := child.lock.TakeS()
		pg.Drop()
		parent, pg = child, cg
	}

	wg := pg.Stow()
	parent.value = v
	parent.has = true
	wg.Drop()
}

// Delete removes key if present, reporting whether it was.
func (idx *Index[V]) Delete(key string) bool {
	parent := idx.root
	pg := parent.lock.TakeS()

	for i := 0; i < len(key); i++ {
		child, ok := parent.child(key[i])
		if !ok {
			pg.Drop()
			return false
		}
		cg := child.lock.TakeS()
		pg.Drop()
		parent, pg = child, cg
	}

	wg := pg.Stow()
	had := parent.has
	parent.has = false
	var zero V
	parent.value = zero
	wg.Drop()
	return had
}
