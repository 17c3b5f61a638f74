/*
Package parser implements the parser engine: the beam-search decoder and
the early-update structured-perceptron training loop that together make up
the hard engineering of spec.md (§4.5). It is modeled on gorgo's
lr/earley.Parser: a struct holding an Error callback field, a functional
Option constructor, a private tracer(), and a per-step debug dump, the same
shape applied here to beam expansion instead of Earley-set construction.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package parser

import (
	"errors"
	"fmt"
	"math"

	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"

	"github.com/binhuit/beamdep"
	"github.com/binhuit/beamdep/beam"
	"github.com/binhuit/beamdep/deps"
	"github.com/binhuit/beamdep/featex"
	"github.com/binhuit/beamdep/oracle"
	"github.com/binhuit/beamdep/perceptron"
)

// tracer traces with key 'beamdep.parser'.
func tracer() tracing.Trace {
	return tracing.Select("beamdep.parser")
}

// ErrEmptyBeam is returned when beam expansion produces no successor
// states even though beam_size >= 1 and the pending list had >= 2
// elements — spec.md §7 calls this a bug, never a normal outcome.
var ErrEmptyBeam = errors.New("parser: beam empty after expansion")

// Status reports which branch of the state machine (spec.md §4.5)
// TrainOne took.
type Status int

const (
	// StatusCompleteAgree: the loop ran to completion and the top state's
	// dependency set matched gold; only Tick() was called.
	StatusCompleteAgree Status = iota
	// StatusCompleteDisagree: the loop ran to completion but the top
	// state's dependency set did not match gold; an update fired.
	StatusCompleteDisagree
	// StatusEarlyMiss: best_valid fell off the beam before completion;
	// an update fired and training on this sentence stopped early.
	StatusEarlyMiss
)

func (s Status) String() string {
	switch s {
	case StatusCompleteAgree:
		return "COMPLETE_AGREE"
	case StatusCompleteDisagree:
		return "COMPLETE_DISAGREE"
	case StatusEarlyMiss:
		return "EARLY_MISS"
	default:
		return "UNKNOWN"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtractor overrides the feature extractor. Defaults to
// featex.DefaultExtractor.
func WithExtractor(ex featex.Extractor) Option {
	return func(e *Engine) { e.extractor = ex }
}

// Engine drives beam expansion for both decoding and early-update
// training against a shared perceptron.Model.
type Engine struct {
	Model     *perceptron.Model
	extractor featex.Extractor
	// Error is called for recoverable per-sentence problems (currently
	// unused by the engine itself, reserved for callers that want a
	// uniform error-reporting hook across corpus/oracle/engine, mirroring
	// earley.Parser.Error).
	Error func(e *Engine, msg string)
	seq   uint64
}

// New creates an Engine around model, ready to decode or train.
func New(model *perceptron.Model, opts ...Option) *Engine {
	e := &Engine{
		Model:     model,
		extractor: featex.DefaultExtractor{},
		Error:     func(*Engine, string) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) nextSeq() uint64 {
	e.seq++
	return e.seq
}

func (e *Engine) initialState(sent beamdep.Sentence) *State {
	return &State{
		Pending:      append([]beamdep.Token(nil), sent.Tokens...),
		Feats:        nil,
		ScoreVal:     math.Inf(-1),
		LastClass:    -1,
		Deps:         deps.New(),
		OnGoldPrefix: true,
		seq:          e.nextSeq(),
	}
}

// Decode parses sent with the current (frozen) model weights and returns
// the resulting dependency set. beamSize must be >= 1.
func (e *Engine) Decode(sent beamdep.Sentence, beamSize int) (*deps.DependencySet, error) {
	b := beam.New[*State](beamSize)
	b.Add(e.initialState(sent))
	steps := sent.Len() - 1
	for step := 0; step < steps; step++ {
		next, _ := e.expand(b, nil, beamSize)
		if next.Empty() {
			return nil, e.emptyBeamErr(step)
		}
		b = next
		dumpBeam(fmt.Sprintf("decode step %d", step), b)
	}
	return b.Top().Deps, nil
}

// TrainResult reports the outcome of one TrainOne call.
type TrainResult struct {
	Status Status
	Steps  int // number of beam-expansion steps actually performed
}

// TrainOne runs one early-update training step over sent, updating the
// model in place at most once.
func (e *Engine) TrainOne(sent beamdep.Sentence, beamSize int) (TrainResult, error) {
	oc, err := oracle.New(sent)
	if err != nil {
		return TrainResult{}, fmt.Errorf("parser: gold tree invalid: %w", err)
	}
	gold := buildGold(sent)

	mainBeam := beam.New[*State](beamSize)
	mainBeam.Add(e.initialState(sent))

	var bestValid *State
	steps := sent.Len() - 1
	performed := 0
	for step := 0; step < steps; step++ {
		next, bestValidBeam := e.expand(mainBeam, oc, beamSize)
		performed++
		if next.Empty() {
			return TrainResult{Steps: performed}, e.emptyBeamErr(step)
		}
		if bestValidBeam.Empty() {
			return TrainResult{Steps: performed}, fmt.Errorf(
				"parser: no oracle-valid successor at step %d (gold tree may be inconsistent with the action space)", step)
		}
		bestValid = bestValidBeam.Top()
		mainBeam = next
		dumpBeam(fmt.Sprintf("train step %d", step), mainBeam)

		if !mainBeam.Contains(bestValid) {
			top := mainBeam.Top()
			e.Model.Update(bestValid.Feats.All(), bestValid.LastClass, top.Feats.All(), top.LastClass)
			tracer().Infof("early update at step %d", step)
			return TrainResult{Status: StatusEarlyMiss, Steps: performed}, nil
		}
	}

	top := mainBeam.Top()
	if !top.Deps.Equal(gold) {
		e.Model.Update(bestValid.Feats.All(), bestValid.LastClass, top.Feats.All(), top.LastClass)
		return TrainResult{Status: StatusCompleteDisagree, Steps: performed}, nil
	}
	e.Model.Tick()
	return TrainResult{Status: StatusCompleteAgree, Steps: performed}, nil
}

func buildGold(sent beamdep.Sentence) *deps.DependencySet {
	d := deps.New()
	for _, tok := range sent.Tokens {
		if tok.IsRoot() {
			continue
		}
		d.Add(tok.ParentID, tok.ID)
	}
	return d
}

func (e *Engine) emptyBeamErr(step int) error {
	if gconf.GetBool("beamdep.panic-on-empty-beam") {
		panic(fmt.Sprintf("%v at step %d", ErrEmptyBeam, step))
	}
	return fmt.Errorf("%w at step %d", ErrEmptyBeam, step)
}

// expand performs one beam-expansion step: every state in the incoming
// beam is extended by every adjacent pair and both action classes. When oc
// is non-nil, a second, capacity-1 beam collects the highest-scoring
// oracle-valid successor (spec.md §4.5's best_valid).
func (e *Engine) expand(in *beam.Beam[*State], oc *oracle.Oracle, beamSize int) (*beam.Beam[*State], *beam.Beam[*State]) {
	next := beam.New[*State](beamSize)
	var bestValid *beam.Beam[*State]
	if oc != nil {
		bestValid = beam.New[*State](1)
	}
	for _, st := range in.Iterate() {
		pending := st.Pending
		n := len(pending)
		for i := 0; i < n-1; i++ {
			tok1, tok2 := pending[i], pending[i+1]
			local := e.extractor.Extract(pending, st.Deps, i)
			s0, s1 := e.Model.Score(local)
			for class := 0; class < 2; class++ {
				var head, child beamdep.Token
				var delta float64
				if class == 0 {
					head, child, delta = tok2, tok1, s0
				} else {
					head, child, delta = tok1, tok2, s1
				}
				childState := e.applyAction(st, head, child, class, delta, local)
				if oc != nil {
					childState.OnGoldPrefix = st.OnGoldPrefix && oc.Allow(st.Deps, head.ID, child.ID)
					if childState.OnGoldPrefix {
						bestValid.Add(childState)
					}
				}
				next.Add(childState)
			}
		}
	}
	return next, bestValid
}

func (e *Engine) applyAction(parent *State, head, child beamdep.Token, class int, delta float64, local []string) *State {
	newPending := removePending(parent.Pending, child.ID)
	newDeps := parent.Deps.Copy()
	newDeps.Add(head.ID, child.ID)
	var newScore float64
	if math.IsInf(parent.ScoreVal, -1) {
		newScore = delta
	} else {
		newScore = parent.ScoreVal + delta
	}
	return &State{
		Pending:   newPending,
		Feats:     extendFeatures(parent.Feats, local),
		ScoreVal:  newScore,
		LastClass: class,
		Deps:      newDeps,
		seq:       e.nextSeq(),
	}
}

