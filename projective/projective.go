/*
Package projective implements the projectivity checker: a filter applied to
training sentences only (spec.md §6, §7). A dependency tree is projective
when it can be drawn above the sentence with no two arcs crossing — i.e.
no arc (h, c) has another token k strictly between h and c (in either
order) whose own gold ancestor chain never passes through either h or c
within that span.

spec.md §6 scopes this component out as an external collaborator with only
its contract specified; it is a direct arithmetic test over gold parent
ids, with no data-structure or parsing library in the reference corpus
addressing graph planarity-style checks, so it is implemented with the
standard library only.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package projective

import "github.com/binhuit/beamdep"

// IsProjective reports whether sent's gold annotation is a projective
// tree: for every pair of distinct gold arcs (h1,c1) and (h2,c2), their
// spans [min,max] either nest or are disjoint, never partially overlap.
func IsProjective(sent beamdep.Sentence) bool {
	arcs := goldArcs(sent)
	for i := range arcs {
		for j := range arcs {
			if i == j {
				continue
			}
			if crosses(arcs[i], arcs[j]) {
				return false
			}
		}
	}
	return true
}

type span struct {
	lo, hi int
}

func goldArcs(sent beamdep.Sentence) []span {
	arcs := make([]span, 0, len(sent.Tokens))
	for _, tok := range sent.Tokens {
		if tok.IsRoot() {
			continue
		}
		lo, hi := tok.ID, tok.ParentID
		if lo > hi {
			lo, hi = hi, lo
		}
		arcs = append(arcs, span{lo: lo, hi: hi})
	}
	return arcs
}

// crosses reports whether spans a and b cross: they overlap but neither
// contains the other, i.e. exactly one endpoint of b lies strictly inside
// (a.lo, a.hi).
func crosses(a, b span) bool {
	bLoIn := a.lo < b.lo && b.lo < a.hi
	bHiIn := a.lo < b.hi && b.hi < a.hi
	if bLoIn == bHiIn {
		return false // both endpoints in, or both out: nested or disjoint
	}
	// one endpoint inside, the other outside: a genuine crossing, unless
	// b shares an endpoint with a (adjacent arcs sharing a head/child are
	// not considered crossing).
	if b.lo == a.lo || b.lo == a.hi || b.hi == a.lo || b.hi == a.hi {
		return false
	}
	return true
}
