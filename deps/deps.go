/*
Package deps implements the dependency set: an append-only set of head→child
arcs supporting membership, difference, intersection and equality by arc set.

A DependencySet is copy-on-write from the caller's perspective: Copy returns
an independent set that can be mutated without affecting the original.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package deps

import (
	"sort"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/binhuit/beamdep"
)

// tracer traces with key 'beamdep.deps'.
func tracer() tracing.Trace {
	return tracing.Select("beamdep.deps")
}

// DependencySet is a set of beamdep.Arc values.
type DependencySet struct {
	arcs *hashset.Set
}

// New creates an empty dependency set.
func New() *DependencySet {
	return &DependencySet{arcs: hashset.New()}
}

// Add inserts (head, child) into the set. Idempotent.
func (d *DependencySet) Add(head, child int) {
	d.arcs.Add(beamdep.Arc{Head: head, Child: child})
}

// AddArc inserts an arc directly.
func (d *DependencySet) AddArc(a beamdep.Arc) {
	d.arcs.Add(a)
}

// Contains reports whether (head, child) is in the set.
func (d *DependencySet) Contains(head, child int) bool {
	return d.arcs.Contains(beamdep.Arc{Head: head, Child: child})
}

// Len returns the number of arcs.
func (d *DependencySet) Len() int {
	return d.arcs.Size()
}

// Arcs returns the arcs in the set, order unspecified.
func (d *DependencySet) Arcs() []beamdep.Arc {
	vals := d.arcs.Values()
	out := make([]beamdep.Arc, len(vals))
	for i, v := range vals {
		out[i] = v.(beamdep.Arc)
	}
	return out
}

// Copy returns an independent copy; mutating it never affects d.
func (d *DependencySet) Copy() *DependencySet {
	cp := New()
	for _, a := range d.Arcs() {
		cp.AddArc(a)
	}
	return cp
}

// Difference returns the arcs in d that are not in other (d - other).
func (d *DependencySet) Difference(other *DependencySet) *DependencySet {
	out := New()
	for _, a := range d.Arcs() {
		if !other.Contains(a.Head, a.Child) {
			out.AddArc(a)
		}
	}
	return out
}

// Intersection returns the arcs present in both d and other.
func (d *DependencySet) Intersection(other *DependencySet) *DependencySet {
	out := New()
	for _, a := range d.Arcs() {
		if other.Contains(a.Head, a.Child) {
			out.AddArc(a)
		}
	}
	return out
}

// Equal reports arc-set equality, independent of insertion order.
func (d *DependencySet) Equal(other *DependencySet) bool {
	if d.Len() != other.Len() {
		return false
	}
	return d.Difference(other).Len() == 0
}

// Empty reports whether the set has no arcs.
func (d *DependencySet) Empty() bool {
	return d.arcs.Empty()
}

// sortedArcs returns a deterministic ordering of the arc set, used only for
// Fingerprint so that two sets with the same arcs hash identically
// regardless of insertion order.
func (d *DependencySet) sortedArcs() []beamdep.Arc {
	out := d.Arcs()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Head != out[j].Head {
			return out[i].Head < out[j].Head
		}
		return out[i].Child < out[j].Child
	})
	return out
}

// Fingerprint returns a canonical hash of the arc set, order-independent.
// Two dependency sets with the same arcs always produce the same
// fingerprint. Equal does not use it; it compares the arc sets directly.
func (d *DependencySet) Fingerprint() string {
	h, err := structhash.Hash(d.sortedArcs(), 1)
	if err != nil {
		// structhash.Hash only fails on unsupported reflect kinds; a slice
		// of plain structs never triggers that path.
		tracer().Errorf("fingerprint hash failed: %v", err)
		return ""
	}
	return h
}
