/*
Package corpus reads treebank files in the format described by spec.md §6:
tab- or whitespace-separated columns, one token per line, blank lines
separating sentences, end-of-file implicitly ending the last sentence.
Columns used: 0 = id, 1 = form, 4 = tag, 6 = head id, 7 = relation label.

A malformed line aborts only the sentence it occurs in (reported through
the Error callback); reading continues with the next sentence. This
mirrors gorgo's lr/scanner.DefaultTokenizer, which carries an
Error func(error) field rather than panicking on the first bad token.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/binhuit/beamdep"
)

// tracer traces with key 'beamdep.corpus'.
func tracer() tracing.Trace {
	return tracing.Select("beamdep.corpus")
}

const (
	colID     = 0
	colForm   = 1
	colTag    = 4
	colHead   = 6
	colRel    = 7
	minCols   = 8
)

// Reader reads a treebank file sentence by sentence.
type Reader struct {
	// Error is called for every malformed line; the sentence containing it
	// is discarded. Defaults to logging through tracer().Errorf.
	Error func(lineno int, line string, err error)
}

// NewReader creates a Reader with the default diagnostic Error handler.
func NewReader() *Reader {
	return &Reader{
		Error: func(lineno int, line string, err error) {
			tracer().Errorf("corpus: line %d malformed (%v), skipping sentence: %q", lineno, err, line)
		},
	}
}

// ReadFile reads and parses every sentence in a treebank file at path.
func ReadFile(path string) ([]beamdep.Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: opening %s: %w", path, err)
	}
	defer f.Close()
	return NewReader().Read(f)
}

// Read parses every sentence from r.
func (rd *Reader) Read(r io.Reader) ([]beamdep.Sentence, error) {
	scan := bufio.NewScanner(r)
	var sentences []beamdep.Sentence
	var toks []beamdep.Token
	broken := false
	lineno := 0
	flush := func() {
		if len(toks) > 0 && !broken {
			sentences = append(sentences, beamdep.NewSentence(toks))
		}
		toks = nil
		broken = false
	}
	for scan.Scan() {
		lineno++
		line := scan.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		tok, err := parseLine(trimmed)
		if err != nil {
			rd.Error(lineno, line, err)
			broken = true
			continue
		}
		toks = append(toks, tok)
	}
	flush()
	if err := scan.Err(); err != nil {
		return sentences, fmt.Errorf("corpus: reading: %w", err)
	}
	return sentences, nil
}

func parseLine(line string) (beamdep.Token, error) {
	cols := strings.Fields(line)
	if len(cols) < minCols {
		return beamdep.Token{}, fmt.Errorf("expected at least %d columns, got %d", minCols, len(cols))
	}
	id, err := strconv.Atoi(cols[colID])
	if err != nil {
		return beamdep.Token{}, fmt.Errorf("non-integer id %q: %w", cols[colID], err)
	}
	head, err := strconv.Atoi(cols[colHead])
	if err != nil {
		return beamdep.Token{}, fmt.Errorf("non-integer head id %q: %w", cols[colHead], err)
	}
	return beamdep.Token{
		ID:       id,
		Form:     cols[colForm],
		Tag:      cols[colTag],
		ParentID: head,
		Rel:      cols[colRel],
	}, nil
}
