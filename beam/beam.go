/*
Package beam implements a bounded top-k container of scored items, used by
the parser both as the main search beam and — with capacity 1 — as the
best_valid side-beam that tracks the highest-scoring oracle-approved state
during training.

Modeled on gorgo's lr/tables.go, which keeps its set of LR states in a
github.com/emirpasic/gods/sets/treeset ordered by a comparator rather than
in an ad-hoc slice. Beam does the same: items are ordered by (Score, Seq),
so two distinct items can never compare equal (ties only happen for the
exact same item), which gives Contains an exact identity test and keeps
retention deterministic for equal-score items via insertion order.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package beam

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'beamdep.beam'.
func tracer() tracing.Trace {
	return tracing.Select("beamdep.beam")
}

// Scored is the contract an item must satisfy to live in a Beam. Seq must
// be a strictly monotonic, globally unique insertion sequence number — it
// both breaks score ties deterministically and gives Contains an identity
// semantics (no two distinct items ever share a Seq).
type Scored interface {
	Score() float64
	Seq() uint64
}

// Beam is a bounded top-k container, capacity k >= 1.
type Beam[T Scored] struct {
	capacity int
	set      *treeset.Set
}

func comparator(a, b interface{}) int {
	x, y := a.(Scored), b.(Scored)
	if x.Score() < y.Score() {
		return -1
	}
	if x.Score() > y.Score() {
		return 1
	}
	if x.Seq() < y.Seq() {
		return -1
	}
	if x.Seq() > y.Seq() {
		return 1
	}
	return 0
}

// New creates a Beam with the given capacity (k >= 1).
func New[T Scored](capacity int) *Beam[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Beam[T]{
		capacity: capacity,
		set:      treeset.NewWith(comparator),
	}
}

// Add offers item to the beam. The beam accepts every item but retains only
// the capacity highest-scoring ones (worst items, by (Score, Seq), are
// evicted first).
func (b *Beam[T]) Add(item T) {
	b.set.Add(item)
	for b.set.Size() > b.capacity {
		vals := b.set.Values() // ascending by comparator: worst first
		worst := vals[0]
		b.set.Remove(worst)
		tracer().Debugf("beam evicted %v", worst)
	}
}

// Top returns the single highest-scoring retained item. Panics if the beam
// is empty — callers must check Size first (an empty beam after expansion
// is a bug per the parser's error-handling contract, not a normal case).
func (b *Beam[T]) Top() T {
	vals := b.set.Values()
	return vals[len(vals)-1].(T)
}

// Iterate returns every retained item; order is unspecified (ascending by
// the internal comparator, in practice).
func (b *Beam[T]) Iterate() []T {
	vals := b.set.Values()
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i] = v.(T)
	}
	return out
}

// Contains reports whether item (by identity — i.e. by its unique Seq) is
// currently retained in the beam.
func (b *Beam[T]) Contains(item T) bool {
	return b.set.Contains(item)
}

// Size returns the number of retained items.
func (b *Beam[T]) Size() int {
	return b.set.Size()
}

// Empty reports whether the beam holds no items.
func (b *Beam[T]) Empty() bool {
	return b.set.Empty()
}
