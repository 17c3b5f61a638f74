/*
Package perceptron implements a sparse, two-class, averaged online linear
classifier trained with the structured-perceptron update rule.

Weights are accumulated lazily: each weight record tracks (last_update_t,
current_value, running_sum). Every time a weight actually changes, the
elapsed ticks since its last change are folded into running_sum before the
change is applied; Average() (used by Save) replays that same flush
read-only and divides by the total number of ticks, yielding the parameter
averaged over the whole run rather than its last value — the standard
"lazy averaging" trick for structured perceptrons (Collins 2002), named
explicitly in spec.md §4.4.

There is no repo in the reference corpus implementing an online linear
classifier; this package follows spec.md §4.4 and the method contract of
original_source/BEParser.py's MultitronParameters (update/tick/get_score)
directly. Persistence uses encoding/gob — see DESIGN.md for why no
third-party serialization library was available to follow instead.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package perceptron

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'beamdep.perceptron'.
func tracer() tracing.Trace {
	return tracing.Select("beamdep.perceptron")
}

// NumClasses is fixed at two: class 0 is left-attach, class 1 is
// right-attach (spec.md §4.5). beamdep never predicts labels, only the
// attachment direction.
const NumClasses = 2

type record struct {
	value  [NumClasses]float64
	total  [NumClasses]float64
	tstamp [NumClasses]uint64
}

// Model is an online averaged two-class linear classifier over opaque
// sparse string features. The zero value is not usable; create one with
// New or Load.
type Model struct {
	weights map[string]*record
	t       uint64
}

// New creates an empty model, ready for training.
func New() *Model {
	return &Model{weights: make(map[string]*record)}
}

// Score returns the sum of weights of present features per class.
func (m *Model) Score(features []string) (s0, s1 float64) {
	for _, f := range features {
		rec, ok := m.weights[f]
		if !ok {
			continue
		}
		s0 += rec.value[0]
		s1 += rec.value[1]
	}
	return s0, s1
}

// Update rewards featuresPos × {classPos} with +1 and penalizes
// featuresNeg × {classNeg} with -1, then advances the step counter t once.
func (m *Model) Update(featuresPos []string, classPos int, featuresNeg []string, classNeg int) {
	for _, f := range featuresPos {
		m.addDelta(f, classPos, 1)
	}
	for _, f := range featuresNeg {
		m.addDelta(f, classNeg, -1)
	}
	m.t++
	tracer().Debugf("update: +1 class %d on %d features, -1 class %d on %d features, t=%d",
		classPos, len(featuresPos), classNeg, len(featuresNeg), m.t)
}

// Tick advances t without updating any weight — used when a sentence
// required no correction.
func (m *Model) Tick() {
	m.t++
}

// Steps returns the number of ticks (updates + plain ticks) so far.
func (m *Model) Steps() uint64 {
	return m.t
}

func (m *Model) addDelta(feature string, class int, delta float64) {
	rec, ok := m.weights[feature]
	if !ok {
		rec = &record{}
		m.weights[feature] = rec
	}
	elapsed := float64(m.t - rec.tstamp[class])
	rec.total[class] += elapsed * rec.value[class]
	rec.tstamp[class] = m.t
	rec.value[class] += delta
}

// Average computes, for every feature seen so far, the weight vector
// averaged over all t ticks (not the last value) — the form persisted by
// Save. It does not mutate the model, so it may be called repeatedly
// (e.g. at checkpoint boundaries) while training continues.
func (m *Model) Average() map[string][2]float64 {
	out := make(map[string][2]float64, len(m.weights))
	for f, rec := range m.weights {
		var avg [2]float64
		for c := 0; c < NumClasses; c++ {
			elapsed := float64(m.t - rec.tstamp[c])
			total := rec.total[c] + elapsed*rec.value[c]
			if m.t > 0 {
				avg[c] = total / float64(m.t)
			}
		}
		out[f] = avg
	}
	return out
}

// Save persists the averaged weight vector to path, creating parent
// directories as needed.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("perceptron: creating model dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("perceptron: creating weight file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(m.Average()); err != nil {
		return fmt.Errorf("perceptron: encoding weights: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("perceptron: flushing weight file: %w", err)
	}
	tracer().Infof("saved %d feature weights to %s", len(m.weights), path)
	return nil
}

// Load reads a previously Saved averaged weight vector. The returned model
// is frozen at the averaged values: further Update calls are legal but
// start a fresh averaging window from t=1.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("perceptron: opening weight file: %w", err)
	}
	defer f.Close()
	var avg map[string][2]float64
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&avg); err != nil {
		return nil, fmt.Errorf("perceptron: decoding weight file: %w", err)
	}
	m := &Model{weights: make(map[string]*record, len(avg)), t: 1}
	for feature, w := range avg {
		m.weights[feature] = &record{value: w}
	}
	tracer().Infof("loaded %d feature weights from %s", len(m.weights), path)
	return m, nil
}
