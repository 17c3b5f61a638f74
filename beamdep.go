/*
Package beamdep implements a transition-based dependency parser following the
easy-first paradigm: at every step the parser attaches the highest-scoring
adjacent pair of tokens in a pending list, shrinking the list by one, until
only the synthetic ROOT token remains.

The package tree is organized around the five cooperating components of the
parser:

■ deps: an append-only set of head→child arcs.

■ beam: a bounded top-k container of partial-parse states.

■ oracle: decides, given a gold tree, whether an arc is currently safe.

■ perceptron: an online averaged linear classifier over sparse string features.

■ parser: drives beam expansion for decoding and early-update training.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>
*/
package beamdep

// Token is a single word of a sentence, carrying both its surface form and
// its gold annotation. Tokens are immutable after a Sentence is built.
//
// ID is 1-based; ID 0 is reserved for the synthetic ROOT token, which every
// Sentence is prefixed with.
type Token struct {
	ID       int    // 1-based; 0 denotes ROOT
	Form     string // surface form
	Tag      string // part-of-speech tag
	ParentID int    // gold head id; meaningless for ROOT
	Rel      string // gold relation label; carried but never predicted
}

// IsRoot reports whether t is the synthetic root token.
func (t Token) IsRoot() bool {
	return t.ID == 0
}

// Root returns the synthetic ROOT token every sentence is prefixed with.
func Root() Token {
	return Token{ID: 0, Form: "ROOT", Tag: "ROOT", ParentID: -1}
}

// Sentence is an ordered sequence of tokens, always starting with Root().
type Sentence struct {
	Tokens []Token
}

// NewSentence prefixes toks with the synthetic ROOT token.
func NewSentence(toks []Token) Sentence {
	all := make([]Token, 0, len(toks)+1)
	all = append(all, Root())
	all = append(all, toks...)
	return Sentence{Tokens: all}
}

// Len returns the number of tokens including ROOT.
func (s Sentence) Len() int {
	return len(s.Tokens)
}

// Arc is a directed head→child dependency relation between two token ids.
type Arc struct {
	Head  int
	Child int
}
