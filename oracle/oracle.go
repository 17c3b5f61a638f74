/*
Package oracle implements the easy-first training oracle: a read-only view
of a gold dependency tree that decides whether a candidate arc is still
compatible with completing that tree.

An arc (head, child) is allowed exactly when child's gold parent is head,
and every gold arc where child is itself the head is already present in the
current dependency set — otherwise child's own dependents would become
unreachable once child is consumed.

Construction fails fatally (returns an error) if the gold annotation does
not form a tree, mirroring gorgo's lr.NewGrammarBuilder, which validates a
grammar at construction time rather than failing later during use.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package oracle

import (
	"fmt"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/binhuit/beamdep"
	"github.com/binhuit/beamdep/deps"
)

// tracer traces with key 'beamdep.oracle'.
func tracer() tracing.Trace {
	return tracing.Select("beamdep.oracle")
}

// Oracle exposes Allow, the single predicate driving easy-first training.
type Oracle struct {
	goldParent  map[int]int          // child id -> gold parent id
	goldChildOf map[int]*hashset.Set // head id -> set of beamdep.Arc it is the gold head of
}

// New builds an Oracle from a sentence's gold annotations. It returns an
// error if the gold tree is not a valid rooted tree: a token whose gold head
// is itself, a cycle, or a gold head id that names no token of the sentence
// (so every gold-parent chain must end at ROOT). Any number of tokens may be
// attached directly to ROOT; ROOT's own ParentID is never consulted.
func New(sent beamdep.Sentence) (*Oracle, error) {
	o := &Oracle{
		goldParent:  make(map[int]int, len(sent.Tokens)),
		goldChildOf: make(map[int]*hashset.Set, len(sent.Tokens)),
	}
	for _, tok := range sent.Tokens {
		if tok.IsRoot() {
			continue
		}
		if tok.ParentID == tok.ID {
			return nil, fmt.Errorf("oracle: token %d (%q) has itself as gold parent", tok.ID, tok.Form)
		}
		o.goldParent[tok.ID] = tok.ParentID
		if _, ok := o.goldChildOf[tok.ParentID]; !ok {
			o.goldChildOf[tok.ParentID] = hashset.New()
		}
		o.goldChildOf[tok.ParentID].Add(beamdep.Arc{Head: tok.ParentID, Child: tok.ID})
	}
	if err := o.checkAcyclic(sent); err != nil {
		return nil, err
	}
	return o, nil
}

// checkAcyclic walks each token's gold-parent chain up to ROOT; a chain
// that revisits a token before reaching ROOT indicates a cycle, meaning the
// gold annotation is not a tree.
func (o *Oracle) checkAcyclic(sent beamdep.Sentence) error {
	for _, tok := range sent.Tokens {
		if tok.IsRoot() {
			continue
		}
		seen := map[int]bool{tok.ID: true}
		cur := tok.ParentID
		for cur != 0 {
			if seen[cur] {
				return fmt.Errorf("oracle: gold annotation is not a tree, cycle detected at token %d", cur)
			}
			seen[cur] = true
			parent, ok := o.goldParent[cur]
			if !ok {
				return fmt.Errorf("oracle: token %d has no gold parent but is referenced as one", cur)
			}
			cur = parent
		}
	}
	return nil
}

// Allow reports whether the arc (head, child) is currently safe to add to
// deps: child's gold parent must be head, and every gold arc where child is
// the head must already be present in deps.
func (o *Oracle) Allow(d *deps.DependencySet, head, child int) bool {
	if gp, ok := o.goldParent[child]; !ok || gp != head {
		return false
	}
	childrenOfChild, ok := o.goldChildOf[child]
	if !ok {
		return true // child has no gold dependents of its own
	}
	for _, v := range childrenOfChild.Values() {
		arc := v.(beamdep.Arc)
		if !d.Contains(arc.Head, arc.Child) {
			tracer().Debugf("oracle: arc (%d,%d) blocked, %v not yet attached", head, child, arc)
			return false
		}
	}
	return true
}
