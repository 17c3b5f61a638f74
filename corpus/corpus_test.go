package corpus

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func setup(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelDebug)
	return gotestingadapter.RedirectTracing(t)
}

const twoSentences = `1	a	_	_	NN	_	0	root
2	b	_	_	VB	_	1	obj

1	c	_	_	NN	_	0	root
`

func TestReadsTwoSentences(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sents, err := NewReader().Read(strings.NewReader(twoSentences))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sents) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sents))
	}
	if sents[0].Len() != 3 { // ROOT + 2 tokens
		t.Errorf("expected 3 tokens incl. ROOT, got %d", sents[0].Len())
	}
	if sents[0].Tokens[1].Form != "a" || sents[0].Tokens[1].Tag != "NN" {
		t.Errorf("unexpected first token: %+v", sents[0].Tokens[1])
	}
	if sents[0].Tokens[2].ParentID != 1 {
		t.Errorf("expected second token's parent to be 1, got %d", sents[0].Tokens[2].ParentID)
	}
}

func TestMalformedLineSkipsOnlyItsSentence(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	const data = `1	a	_	_	NN	_	x	root

1	b	_	_	NN	_	0	root
`
	var diagnostics int
	rd := NewReader()
	rd.Error = func(lineno int, line string, err error) { diagnostics++ }
	sents, err := rd.Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diagnostics != 1 {
		t.Errorf("expected exactly 1 diagnostic, got %d", diagnostics)
	}
	if len(sents) != 1 {
		t.Fatalf("expected only the well-formed sentence to survive, got %d sentences", len(sents))
	}
	if sents[0].Tokens[1].Form != "b" {
		t.Errorf("expected surviving sentence to be 'b', got %+v", sents[0].Tokens[1])
	}
}

func TestEOFWithoutTrailingBlankLine(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	const data = "1\ta\t_\t_\tNN\t_\t0\troot"
	sents, err := NewReader().Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sents) != 1 {
		t.Fatalf("expected EOF to implicitly end the last sentence, got %d sentences", len(sents))
	}
}
