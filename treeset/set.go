// Package treeset provides an immutable, ordered set backed by the
// btree package's persistent B+ tree engine.
package treeset

import (
	"iter"

	"github.com/go-ordered/btree"
)

// Set is a persistent ordered set of unique elements of type T.
type Set[T any] struct {
	impl *btree.BTree[T]
}

// Empty constructs an empty set ordered by cmp.
func Empty[T any](cmp func(a, b T) int) *Set[T] {
	return &Set[T]{
		impl: btree.Empty[T](cmp, func(a, b T) bool {
			return cmp(a, b) == 0
		}),
	}
}

// FromSlice builds a set from an arbitrary, possibly unsorted slice of
// elements. Of several elements equivalent under cmp, the first one is
// kept, as with repeated Add calls.
func FromSlice[T any](items []T, cmp func(a, b T) int) *Set[T] {
	return &Set[T]{
		impl: btree.FromSlice(items, cmp, func(a, b T) bool {
			return cmp(a, b) == 0
		}),
	}
}

// FromSortedSlice builds a set from a slice already sorted ascending
// by cmp with no duplicates, in a single linear pass.
func FromSortedSlice[T any](items []T, cmp func(a, b T) int) *Set[T] {
	return &Set[T]{
		impl: btree.FromSortedSlice(items, cmp, func(a, b T) bool {
			return cmp(a, b) == 0
		}),
	}
}

func (s *Set[T]) Contains(elem T) bool {
	return s.impl.Contains(elem)
}

// Find returns the stored element equivalent to elem, if present.
func (s *Set[T]) Find(elem T) (T, bool) {
	return s.impl.Find(elem)
}

func (s *Set[T]) Add(elem T) *Set[T] {
	nimpl := s.impl.Add(elem)
	if nimpl == s.impl {
		return s
	}
	return &Set[T]{impl: nimpl}
}

func (s *Set[T]) Remove(elem T) *Set[T] {
	nimpl := s.impl.Delete(elem)
	if nimpl == s.impl {
		return s
	}
	return &Set[T]{impl: nimpl}
}

func (s *Set[T]) Len() int {
	return s.impl.Length()
}

// Equal reports whether s and other hold the same elements.
func (s *Set[T]) Equal(other *Set[T]) bool {
	return s.impl.Equal(other.impl)
}

func (s *Set[T]) String() string {
	return s.impl.String()
}

func (s *Set[T]) All() iter.Seq[T] {
	i := s.Begin()
	return i.Seq
}

// Reverse allows ranging over the set from largest to smallest.
func (s *Set[T]) Reverse() iter.Seq[T] {
	i := s.End()
	return i.SeqReverse
}

func (s *Set[T]) From(elem T) iter.Seq[T] {
	i := s.LowerBound(elem)
	return i.Seq
}

// Begin returns an iterator positioned before the smallest element.
func (s *Set[T]) Begin() Iterator[T] {
	return Iterator[T]{impl: s.impl.Iterator()}
}

// End returns an iterator positioned after the largest element,
// intended for backward traversal via HasPrev/Prev.
func (s *Set[T]) End() Iterator[T] {
	return Iterator[T]{impl: s.impl.ReverseIterator()}
}

// LowerBound positions an iterator at the first element >= elem.
func (s *Set[T]) LowerBound(elem T) Iterator[T] {
	return Iterator[T]{impl: s.impl.LowerBound(elem)}
}

// UpperBound positions an iterator at the first element > elem.
func (s *Set[T]) UpperBound(elem T) Iterator[T] {
	return Iterator[T]{impl: s.impl.UpperBound(elem)}
}

// EqualRange returns the span of elements equivalent to elem (at most
// one, since elements are unique).
func (s *Set[T]) EqualRange(elem T) (Iterator[T], Iterator[T]) {
	lo, hi := s.impl.EqualRange(elem)
	return Iterator[T]{impl: lo}, Iterator[T]{impl: hi}
}

func (s *Set[T]) AsTransient() *TSet[T] {
	return &TSet[T]{
		orig: s,
		impl: s.impl.AsTransient(),
	}
}

// TSet is a transient, single-owner view over a Set for a bounded run
// of in-place edits.
type TSet[T any] struct {
	orig *Set[T]
	impl *btree.TBTree[T]
}

func (s *TSet[T]) Contains(elem T) bool {
	return s.impl.Contains(elem)
}

func (s *TSet[T]) Find(elem T) (T, bool) {
	return s.impl.Find(elem)
}

func (s *TSet[T]) Add(elem T) *TSet[T] {
	s.impl.Add(elem)
	return s
}

func (s *TSet[T]) Remove(elem T) *TSet[T] {
	s.impl.Delete(elem)
	return s
}

func (s *TSet[T]) Len() int {
	return s.impl.Length()
}

func (s *TSet[T]) All() iter.Seq[T] {
	i := s.Iterator()
	return i.Seq
}

func (s *TSet[T]) From(elem T) iter.Seq[T] {
	i := s.LowerBound(elem)
	return i.Seq
}

func (s *TSet[T]) Iterator() Iterator[T] {
	return Iterator[T]{impl: s.impl.Iterator()}
}

func (s *TSet[T]) LowerBound(elem T) Iterator[T] {
	return Iterator[T]{impl: s.impl.LowerBound(elem)}
}

func (s *TSet[T]) AsPersistent() *Set[T] {
	nimpl := s.impl.AsPersistent()
	if nimpl == s.orig.impl {
		return s.orig
	}
	return &Set[T]{impl: nimpl}
}

// Iterator is a cursor over a Set's elements in ascending order,
// supporting both forward and backward traversal.
type Iterator[T any] struct {
	impl btree.Iterator[T]
}

func (i *Iterator[T]) Seq(yield func(elem T) bool) {
	for i.HasNext() {
		if !yield(i.Next()) {
			break
		}
	}
}

func (i *Iterator[T]) SeqReverse(yield func(elem T) bool) {
	for i.HasPrev() {
		if !yield(i.Prev()) {
			break
		}
	}
}

func (i *Iterator[T]) Next() T {
	return i.impl.Next()
}

func (i *Iterator[T]) HasNext() bool {
	return i.impl.HasNext()
}

func (i *Iterator[T]) Prev() T {
	return i.impl.Prev()
}

func (i *Iterator[T]) HasPrev() bool {
	return i.impl.HasPrev()
}
