// Package treemap provides an immutable, ordered map backed by the
// btree package's persistent B+ tree engine.
package treemap

import (
	"iter"

	"github.com/go-ordered/btree"
)

// Error is the sentinel error type used throughout this package.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrKeyNotFound is returned by At when the requested key is absent.
const ErrKeyNotFound = Error("treemap: key not found")

type entry[K, V any] struct {
	key   K
	value V
}

// Map is a persistent ordered map from K to V.
type Map[K, V any] struct {
	impl *btree.BTree[entry[K, V]]
}

// Empty constructs an empty map ordered by cmp over keys, using eq to
// compare values (so that re-assigning a key to an equal value is a
// no-op rather than a fresh version).
func Empty[K, V any](cmp func(a, b K) int, eq func(a, b V) bool) *Map[K, V] {
	return &Map[K, V]{
		impl: btree.Empty[entry[K, V]](
			func(a, b entry[K, V]) int {
				return cmp(a.key, b.key)
			},
			func(a, b entry[K, V]) bool {
				return cmp(a.key, b.key) == 0 && eq(a.value, b.value)
			},
		),
	}
}

// FromSlice builds a map from an arbitrary, possibly unsorted slice of
// key/value pairs; later duplicates of a key win.
func FromSlice[K, V any](keys []K, values []V, cmp func(a, b K) int, eq func(a, b V) bool) *Map[K, V] {
	m := Empty[K, V](cmp, eq).AsTransient()
	for i := range keys {
		m.Assoc(keys[i], values[i])
	}
	return m.AsPersistent()
}

func (m *Map[K, V]) Contains(key K) bool {
	return m.impl.Contains(entry[K, V]{key: key})
}

// Get returns the value associated with key, or the zero value of V
// if key is absent.
func (m *Map[K, V]) Get(key K) V {
	e := m.impl.At(entry[K, V]{key: key})
	return e.value
}

// At returns the value associated with key, or ErrKeyNotFound if key
// is absent.
func (m *Map[K, V]) At(key K) (V, error) {
	e, ok := m.impl.Find(entry[K, V]{key: key})
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	return e.value, nil
}

func (m *Map[K, V]) Find(key K) (V, bool) {
	e, ok := m.impl.Find(entry[K, V]{key: key})
	return e.value, ok
}

// Assoc returns a map with key bound to value, replacing any existing
// binding for key.
func (m *Map[K, V]) Assoc(key K, value V) *Map[K, V] {
	nimpl := m.impl.Add(entry[K, V]{key: key, value: value})
	if nimpl == m.impl {
		return m
	}
	return &Map[K, V]{impl: nimpl}
}

// Update calls fn with the value bound to key (or the zero value of V
// and found=false, if key is absent). If fn reports ok, its result is
// bound to key; if fn reports !ok, the map is returned unchanged.
func (m *Map[K, V]) Update(key K, fn func(cur V, found bool) (V, bool)) *Map[K, V] {
	cur, found := m.Find(key)
	newVal, ok := fn(cur, found)
	if !ok {
		return m
	}
	return m.Assoc(key, newVal)
}

// UpdateIfExists applies fn to key's current value and rebinds it only
// if key is already present.
func (m *Map[K, V]) UpdateIfExists(key K, fn func(V) V) (*Map[K, V], bool) {
	cur, err := m.At(key)
	if err != nil {
		return m, false
	}
	return m.Assoc(key, fn(cur)), true
}

func (m *Map[K, V]) Delete(key K) *Map[K, V] {
	nimpl := m.impl.Delete(entry[K, V]{key: key})
	if nimpl == m.impl {
		return m
	}
	return &Map[K, V]{impl: nimpl}
}

func (m *Map[K, V]) Len() int {
	return m.impl.Length()
}

// Equal reports whether m and other bind the same keys to equal
// values.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	return m.impl.Equal(other.impl)
}

func (m *Map[K, V]) All() iter.Seq2[K, V] {
	i := m.Iterator()
	return i.Seq2
}

// Reverse allows ranging over the map from largest key to smallest.
func (m *Map[K, V]) Reverse() iter.Seq2[K, V] {
	i := m.ReverseIterator()
	return i.Seq2Reverse
}

func (m *Map[K, V]) From(key K) iter.Seq2[K, V] {
	i := m.LowerBound(key)
	return i.Seq2
}

func (m *Map[K, V]) Iterator() Iterator[K, V] {
	return Iterator[K, V]{impl: m.impl.Iterator()}
}

func (m *Map[K, V]) ReverseIterator() Iterator[K, V] {
	return Iterator[K, V]{impl: m.impl.ReverseIterator()}
}

// LowerBound positions an iterator at the first entry whose key is >=
// key.
func (m *Map[K, V]) LowerBound(key K) Iterator[K, V] {
	return Iterator[K, V]{impl: m.impl.LowerBound(entry[K, V]{key: key})}
}

// UpperBound positions an iterator at the first entry whose key is >
// key.
func (m *Map[K, V]) UpperBound(key K) Iterator[K, V] {
	return Iterator[K, V]{impl: m.impl.UpperBound(entry[K, V]{key: key})}
}

// EqualRange returns the span of entries keyed by key (at most one).
func (m *Map[K, V]) EqualRange(key K) (Iterator[K, V], Iterator[K, V]) {
	lo, hi := m.impl.EqualRange(entry[K, V]{key: key})
	return Iterator[K, V]{impl: lo}, Iterator[K, V]{impl: hi}
}

func (m *Map[K, V]) AsTransient() *TMap[K, V] {
	return &TMap[K, V]{
		orig: m,
		impl: m.impl.AsTransient(),
	}
}

// TMap is a transient, single-owner view over a Map for a bounded run
// of in-place edits.
type TMap[K, V any] struct {
	orig *Map[K, V]
	impl *btree.TBTree[entry[K, V]]
}

func (m *TMap[K, V]) Contains(key K) bool {
	return m.impl.Contains(entry[K, V]{key: key})
}

// Get returns the value associated with key, or the zero value of V
// if key is absent. Per the base spec's note that a transient's
// non-const accessor remains read-only, this never mutates m.
func (m *TMap[K, V]) Get(key K) V {
	e := m.impl.At(entry[K, V]{key: key})
	return e.value
}

func (m *TMap[K, V]) At(key K) (V, error) {
	e, ok := m.impl.Find(entry[K, V]{key: key})
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	return e.value, nil
}

func (m *TMap[K, V]) Find(key K) (V, bool) {
	e, ok := m.impl.Find(entry[K, V]{key: key})
	return e.value, ok
}

func (m *TMap[K, V]) Assoc(key K, value V) *TMap[K, V] {
	m.impl.Add(entry[K, V]{key: key, value: value})
	return m
}

func (m *TMap[K, V]) Delete(key K) *TMap[K, V] {
	m.impl.Delete(entry[K, V]{key: key})
	return m
}

func (m *TMap[K, V]) Len() int {
	return m.impl.Length()
}

func (m *TMap[K, V]) All() iter.Seq2[K, V] {
	i := m.Iterator()
	return i.Seq2
}

func (m *TMap[K, V]) From(key K) iter.Seq2[K, V] {
	i := m.LowerBound(key)
	return i.Seq2
}

func (m *TMap[K, V]) Iterator() Iterator[K, V] {
	return Iterator[K, V]{impl: m.impl.Iterator()}
}

func (m *TMap[K, V]) LowerBound(key K) Iterator[K, V] {
	return Iterator[K, V]{impl: m.impl.LowerBound(entry[K, V]{key: key})}
}

func (m *TMap[K, V]) AsPersistent() *Map[K, V] {
	nimpl := m.impl.AsPersistent()
	if nimpl == m.orig.impl {
		return m.orig
	}
	return &Map[K, V]{impl: nimpl}
}

// Iterator is a cursor over a Map's entries in ascending key order,
// supporting both forward and backward traversal.
type Iterator[K, V any] struct {
	impl btree.Iterator[entry[K, V]]
}

func (i *Iterator[K, V]) Seq2(yield func(key K, value V) bool) {
	for i.HasNext() {
		k, v := i.Next()
		if !yield(k, v) {
			break
		}
	}
}

func (i *Iterator[K, V]) Seq2Reverse(yield func(key K, value V) bool) {
	for i.HasPrev() {
		k, v := i.Prev()
		if !yield(k, v) {
			break
		}
	}
}

func (i *Iterator[K, V]) Next() (K, V) {
	e := i.impl.Next()
	return e.key, e.value
}

func (i *Iterator[K, V]) HasNext() bool {
	return i.impl.HasNext()
}

func (i *Iterator[K, V]) Prev() (K, V) {
	e := i.impl.Prev()
	return e.key, e.value
}

func (i *Iterator[K, V]) HasPrev() bool {
	return i.impl.HasPrev()
}
