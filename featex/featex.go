/*
Package featex defines the feature-extractor contract the parser engine
depends on, plus two implementations: ToyExtractor, the minimal extractor
spec.md §8 uses throughout its worked examples, and DefaultExtractor, a
slightly richer adjacency+POS feature set for end-to-end exercise.

spec.md §6 scopes the feature extractor out as an external collaborator
with only its contract specified — the concrete feature engineering is
deliberately out of scope for the parser engine itself. Both extractors
here are intentionally small: the contract is what beamdep's parser
package actually depends on (an Extractor interface), not any one feature
set.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package featex

import (
	"strconv"
	"strings"

	"github.com/binhuit/beamdep"
	"github.com/binhuit/beamdep/deps"
)

// Extractor turns a (pending, deps, focus index) triple into an ordered
// multiset of opaque feature strings describing the context of the
// adjacent pair (pending[i], pending[i+1]). Implementations must be
// deterministic and referentially transparent in their three arguments.
type Extractor interface {
	Extract(pending []beamdep.Token, d *deps.DependencySet, i int) []string
}

// ToyExtractor reproduces the toy vocabulary spec.md §8 uses in its worked
// examples: a single feature describing the two adjacent surface forms.
type ToyExtractor struct{}

// Extract returns {"L:"+pending[i].Form+"|R:"+pending[i+1].Form}.
func (ToyExtractor) Extract(pending []beamdep.Token, _ *deps.DependencySet, i int) []string {
	return []string{"L:" + pending[i].Form + "|R:" + pending[i+1].Form}
}

// DefaultExtractor emits a richer, still-cheap feature set: the word forms
// and POS tags of the two pending tokens under the focus, plus the
// distance between their ids (a rough proxy for how many tokens already
// separate them after prior attachments) and whether either already has an
// attached child recorded in deps.
type DefaultExtractor struct{}

// Extract implements Extractor.
func (DefaultExtractor) Extract(pending []beamdep.Token, d *deps.DependencySet, i int) []string {
	left, right := pending[i], pending[i+1]
	var b strings.Builder
	feats := make([]string, 0, 6)

	feats = append(feats, "w-1:"+left.Form+"|w0:"+right.Form)
	feats = append(feats, "t-1:"+left.Tag+"|t0:"+right.Tag)
	feats = append(feats, "w-1:"+left.Form+"|t0:"+right.Tag)
	feats = append(feats, "t-1:"+left.Tag+"|w0:"+right.Form)

	b.Reset()
	b.WriteString("dist:")
	b.WriteString(strconv.Itoa(distance(left, right)))
	feats = append(feats, b.String())

	if hasChild(d, left.ID) {
		feats = append(feats, "has-child:"+left.Form)
	}
	if hasChild(d, right.ID) {
		feats = append(feats, "has-child:"+right.Form)
	}
	return feats
}

func distance(left, right beamdep.Token) int {
	d := right.ID - left.ID
	if d < 0 {
		d = -d
	}
	return d
}

func hasChild(d *deps.DependencySet, head int) bool {
	for _, a := range d.Arcs() {
		if a.Head == head {
			return true
		}
	}
	return false
}
