package parser

import (
	"github.com/binhuit/beamdep"
	"github.com/binhuit/beamdep/deps"
)

// Features is a persistent, prefix-shared bag of feature strings: each
// state extends its parent's global feature bag with the local features
// chosen for the action that created it, without copying the parent's
// bag. This realizes spec.md §9's requirement that
// "child.features ≡ parent.features ++ local_features" without an
// O(history length) copy at every step.
type Features struct {
	local  []string
	parent *Features
}

// extendFeatures builds the child's global feature bag from its parent's
// and the local features chosen at this step.
func extendFeatures(parent *Features, local []string) *Features {
	if len(local) == 0 {
		return parent
	}
	return &Features{local: local, parent: parent}
}

// All flattens the feature chain into a single ordered slice, oldest
// action first.
func (f *Features) All() []string {
	var depth int
	for p := f; p != nil; p = p.parent {
		depth++
	}
	chain := make([]*Features, depth)
	i := depth
	for p := f; p != nil; p = p.parent {
		i--
		chain[i] = p
	}
	var out []string
	for _, p := range chain {
		out = append(out, p.local...)
	}
	return out
}

// State is one partial parse: the tuple spec.md §3 describes (pending
// list, global features, cumulative score, last action's class, current
// dependency set, and the on_gold_prefix training flag), plus a unique
// seq used by beam.Beam for deterministic tie-breaking and identity
// membership tests.
type State struct {
	Pending      []beamdep.Token
	Feats        *Features
	ScoreVal     float64
	LastClass    int // 0 = left-attach, 1 = right-attach; -1 for the initial state
	Deps         *deps.DependencySet
	OnGoldPrefix bool
	seq          uint64
}

// Score implements beam.Scored.
func (s *State) Score() float64 { return s.ScoreVal }

// Seq implements beam.Scored.
func (s *State) Seq() uint64 { return s.seq }

// removePending returns a new pending slice with the token of the given id
// removed; the head token is never removed, only the consumed child.
func removePending(pending []beamdep.Token, childID int) []beamdep.Token {
	out := make([]beamdep.Token, 0, len(pending)-1)
	for _, t := range pending {
		if t.ID != childID {
			out = append(out, t)
		}
	}
	return out
}
