package parser

import (
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/binhuit/beamdep"
	"github.com/binhuit/beamdep/featex"
	"github.com/binhuit/beamdep/perceptron"
)

func setup(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelDebug)
	return gotestingadapter.RedirectTracing(t)
}

func newToyEngine() *Engine {
	return New(perceptron.New(), WithExtractor(featex.ToyExtractor{}))
}

// --- scenario 1: two-token sentence --------------------------------------

func TestTwoTokenSentenceTrainsAndDecodes(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{{ID: 1, Form: "a", ParentID: 0}})
	e := newToyEngine()
	if _, err := e.TrainOne(sent, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := e.Decode(sent, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Contains(0, 1) {
		t.Errorf("expected arc (ROOT,a) after training, got %v", got.Arcs())
	}
}

// --- scenario 2: three-token chain -----------------------------------------

func TestThreeTokenChainOracleOrder(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{
		{ID: 1, Form: "a", ParentID: 0},
		{ID: 2, Form: "b", ParentID: 1},
	})
	e := newToyEngine()
	for i := 0; i < 50; i++ {
		if _, err := e.TrainOne(sent, 1); err != nil {
			t.Fatalf("unexpected error at iter %d: %v", i, err)
		}
	}
	got, err := e.Decode(sent, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Contains(0, 1) || !got.Contains(1, 2) {
		t.Errorf("expected gold arcs {(0,1),(1,2)} after training, got %v", got.Arcs())
	}
}

// --- scenario 3: right-branching triple ------------------------------------

func TestRightBranchingTriple(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{
		{ID: 1, Form: "x", ParentID: 0},
		{ID: 2, Form: "y", ParentID: 1},
		{ID: 3, Form: "z", ParentID: 2},
	})
	e := newToyEngine()
	for i := 0; i < 80; i++ {
		if _, err := e.TrainOne(sent, 2); err != nil {
			t.Fatalf("unexpected error at iter %d: %v", i, err)
		}
	}
	got, err := e.Decode(sent, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][2]int{{0, 1}, {1, 2}, {2, 3}}
	for _, w := range want {
		if !got.Contains(w[0], w[1]) {
			t.Errorf("expected arc (%d,%d) after training, got %v", w[0], w[1], got.Arcs())
		}
	}
}

// --- scenario 4: ambiguous, both attach to ROOT ----------------------------

func TestAmbiguousBothChildrenOfRoot(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{
		{ID: 1, Form: "a", ParentID: 0},
		{ID: 2, Form: "b", ParentID: 0},
	})
	e := newToyEngine()
	for i := 0; i < 50; i++ {
		if _, err := e.TrainOne(sent, 2); err != nil {
			t.Fatalf("unexpected error at iter %d: %v", i, err)
		}
	}
	got, err := e.Decode(sent, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Contains(0, 1) || !got.Contains(0, 2) {
		t.Errorf("expected {(0,1),(0,2)} after training, got %v", got.Arcs())
	}
}

// --- scenario 5: early update fires exactly once ---------------------------

func TestEarlyUpdateFiresAndAdvancesTOnce(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{
		{ID: 1, Form: "a", ParentID: 0},
		{ID: 2, Form: "b", ParentID: 1},
	})
	m := perceptron.New()
	// Force a wrong step-1 action: the only gold-legal first step is the
	// right-attach (a,b), whose feature is "L:a|R:b". Bias that feature
	// toward class 0 (left-attach) so the wrong action wins the main beam
	// with beam_size=1.
	m.Update([]string{"L:a|R:b"}, 0, []string{"L:a|R:b"}, 1)
	e := New(m, WithExtractor(featex.ToyExtractor{}))
	before := m.Steps()
	s0Before, s1Before := m.Score([]string{"L:a|R:b"})
	result, err := e.TrainOne(sent, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusEarlyMiss {
		t.Fatalf("expected an early miss given the biased weights, got %v", result.Status)
	}
	if m.Steps() != before+1 {
		t.Errorf("expected t to advance exactly once, got %d -> %d", before, m.Steps())
	}
	s0After, s1After := m.Score([]string{"L:a|R:b"})
	if s1After-s0After <= s1Before-s0Before {
		t.Errorf("expected the early update to shift weight toward the correct action: before s0=%v s1=%v, after s0=%v s1=%v",
			s0Before, s1Before, s0After, s1After)
	}
}

// --- degenerate beam_size=1 still trains and decodes -----------------------

func TestBeamSizeOneTrainsAndDecodesRightBranching(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{
		{ID: 1, Form: "x", ParentID: 0},
		{ID: 2, Form: "y", ParentID: 1},
		{ID: 3, Form: "z", ParentID: 2},
	})
	e := newToyEngine()
	for i := 0; i < 100; i++ {
		if _, err := e.TrainOne(sent, 1); err != nil {
			t.Fatalf("unexpected error at iter %d: %v", i, err)
		}
	}
	got, err := e.Decode(sent, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range [][2]int{{0, 1}, {1, 2}, {2, 3}} {
		if !got.Contains(w[0], w[1]) {
			t.Errorf("expected arc (%d,%d), got %v", w[0], w[1], got.Arcs())
		}
	}
}

// --- once correctly parsed, further training only ticks --------------------

func TestConvergedSentenceOnlyTicks(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{{ID: 1, Form: "a", ParentID: 0}})
	e := newToyEngine()
	for i := 0; i < 10; i++ {
		if _, err := e.TrainOne(sent, 1); err != nil {
			t.Fatalf("unexpected error at iter %d: %v", i, err)
		}
	}
	before := e.Model.Average()
	result, err := e.TrainOne(sent, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != StatusCompleteAgree {
		t.Fatalf("expected the model to have converged, got status %v", result.Status)
	}
	after := e.Model.Average()
	if len(before) != len(after) {
		t.Fatalf("tick must not add or remove features")
	}
	for f, v := range before {
		if after[f] != v {
			t.Errorf("tick must not change weights: feature %q changed from %v to %v", f, v, after[f])
		}
	}
}

func TestDeterministicDecodeRepeatable(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	sent := beamdep.NewSentence([]beamdep.Token{
		{ID: 1, Form: "x", ParentID: 0},
		{ID: 2, Form: "y", ParentID: 1},
	})
	e := newToyEngine()
	for i := 0; i < 20; i++ {
		_, _ = e.TrainOne(sent, 2)
	}
	a, err := e.Decode(sent, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := e.Decode(sent, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Equal(b) {
		t.Errorf("expected repeated decoding with fixed weights to be deterministic")
	}
}
