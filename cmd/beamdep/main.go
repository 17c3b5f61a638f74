/*
Command beamdep is the command-line front end for the easy-first beam-search
dependency parser: it trains a perceptron model against a treebank, reports
unlabeled attachment accuracy against a held-out file, and offers an
interactive REPL for parsing one sentence at a time.

Modeled on gorgo's terex/terexlang/trepl REPL command: flag-based
configuration, gologadapter logging, pterm banners for status, and a
chzyer/readline loop for interactive use, the same shape applied here to
training/testing/parsing instead of s-expression evaluation.

License

Governed by a 3-Clause BSD license, as the rest of this module.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/binhuit/beamdep"
	"github.com/binhuit/beamdep/corpus"
	"github.com/binhuit/beamdep/deps"
	"github.com/binhuit/beamdep/featex"
	"github.com/binhuit/beamdep/parser"
	"github.com/binhuit/beamdep/perceptron"
	"github.com/binhuit/beamdep/projective"
)

func tracer() tracing.Trace {
	return tracing.Select("beamdep.cmd")
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelInfo)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	mode := os.Args[1]
	args := os.Args[2:]

	switch mode {
	case "train":
		runTrain(args)
	case "test":
		runTest(args)
	case "repl":
		runRepl(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: beamdep <train|test|repl> [flags]")
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// runTrain trains a fresh model over a treebank, checkpointing the averaged
// weight vector every --checkpoint_every iterations plus a final save.
func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	trainPath := fs.String("train", "", "path to the training treebank")
	modelDir := fs.String("model_dir", "models", "directory to write weight checkpoints into")
	beamSize := fs.Int("beam_size", 8, "beam size used during training")
	iterations := fs.Int("iterations", 10, "number of passes over the training set")
	checkpointEvery := fs.Int("checkpoint_every", 10, "save a checkpoint every N iterations, plus a final one")
	trace := fs.String("trace", "Info", "trace level [Debug|Info|Error]")
	fs.Parse(args)

	tracer().SetTraceLevel(tracing.TraceLevelFromString(*trace))

	if *trainPath == "" {
		pterm.Error.Println("train: --train is required")
		os.Exit(2)
	}
	all, err := corpus.ReadFile(*trainPath)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	sentences := make([]beamdep.Sentence, 0, len(all))
	skipped := 0
	for _, sent := range all {
		if !projective.IsProjective(sent) {
			skipped++
			continue
		}
		sentences = append(sentences, sent)
	}
	pterm.Info.Printfln("loaded %d training sentences from %s (%d non-projective, skipped)",
		len(sentences), *trainPath, skipped)

	model := perceptron.New()
	engine := parser.New(model, parser.WithExtractor(featex.DefaultExtractor{}))

	bar, _ := pterm.DefaultProgressbar.WithTotal(*iterations).WithTitle("training").Start()
	for it := 1; it <= *iterations; it++ {
		agree, disagree, early := 0, 0, 0
		for _, sent := range sentences {
			if sent.Len() < 2 {
				continue
			}
			result, err := engine.TrainOne(sent, *beamSize)
			if err != nil {
				tracer().Errorf("iteration %d: %v", it, err)
				continue
			}
			switch result.Status {
			case parser.StatusCompleteAgree:
				agree++
			case parser.StatusCompleteDisagree:
				disagree++
			case parser.StatusEarlyMiss:
				early++
			}
		}
		tracer().Infof("iteration %d: agree=%d disagree=%d early=%d", it, agree, disagree, early)
		bar.Increment()

		if it%*checkpointEvery == 0 {
			checkpointPath := fmt.Sprintf("%s/weight.%d", *modelDir, it)
			if err := model.Save(checkpointPath); err != nil {
				pterm.Error.Println(err.Error())
			} else {
				pterm.Info.Printfln("checkpoint saved: %s", checkpointPath)
			}
		}
	}
	finalPath := *modelDir + "/weight.FINAL"
	if err := model.Save(finalPath); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	pterm.Info.Printfln("training complete, final model at %s", finalPath)
}

// runTest decodes every sentence in --test against a loaded model and
// reports unlabeled attachment accuracy: the sum over sentences of
// |predicted ∩ gold| divided by the sum of gold arc counts.
func runTest(args []string) {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	testPath := fs.String("test", "", "path to the held-out treebank")
	modelPath := fs.String("model", "", "path to a saved weight file")
	beamSize := fs.Int("beam_size", 8, "beam size used during decoding")
	trace := fs.String("trace", "Info", "trace level [Debug|Info|Error]")
	fs.Parse(args)

	tracer().SetTraceLevel(tracing.TraceLevelFromString(*trace))

	if *testPath == "" || *modelPath == "" {
		pterm.Error.Println("test: --test and --model are required")
		os.Exit(2)
	}
	model, err := perceptron.Load(*modelPath)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	sentences, err := corpus.ReadFile(*testPath)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	engine := parser.New(model, parser.WithExtractor(featex.DefaultExtractor{}))

	var correct, total int
	for _, sent := range sentences {
		if sent.Len() < 2 {
			continue
		}
		gold := goldOf(sent)
		total += gold.Len()
		predicted, err := engine.Decode(sent, *beamSize)
		if err != nil {
			tracer().Errorf("decode failed: %v", err)
			continue
		}
		correct += predicted.Intersection(gold).Len()
	}
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	} else {
		pterm.Info.Println("empty test set: no gold arcs to score")
	}
	pterm.Info.Printfln("correct=%d total=%d accuracy=%.4f", correct, total, accuracy)
}

func goldOf(sent beamdep.Sentence) *deps.DependencySet {
	d := deps.New()
	for _, tok := range sent.Tokens {
		if tok.IsRoot() {
			continue
		}
		d.Add(tok.ParentID, tok.ID)
	}
	return d
}

// runRepl loads a model and parses one whitespace-tokenized sentence per
// interactive line, printing the resulting arcs.
func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	modelPath := fs.String("model", "", "path to a saved weight file")
	beamSize := fs.Int("beam_size", 8, "beam size used during decoding")
	fs.Parse(args)

	if *modelPath == "" {
		pterm.Error.Println("repl: --model is required")
		os.Exit(2)
	}
	model, err := perceptron.Load(*modelPath)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	engine := parser.New(model, parser.WithExtractor(featex.DefaultExtractor{}))

	rl, err := readline.New("beamdep> ")
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(3)
	}
	defer rl.Close()

	pterm.Info.Println("Welcome to beamdep. Enter a whitespace-tokenized sentence; quit with <ctrl>D.")
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sent := sentenceFromLine(line)
		arcs, err := engine.Decode(sent, *beamSize)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		printArcs(sent, arcs)
	}
	pterm.Info.Println("Good bye!")
}

func sentenceFromLine(line string) beamdep.Sentence {
	words := strings.Fields(line)
	toks := make([]beamdep.Token, len(words))
	for i, w := range words {
		toks[i] = beamdep.Token{ID: i + 1, Form: w, Tag: "_", ParentID: -1}
	}
	return beamdep.NewSentence(toks)
}

func printArcs(sent beamdep.Sentence, d *deps.DependencySet) {
	formOf := make(map[int]string, sent.Len())
	for _, tok := range sent.Tokens {
		formOf[tok.ID] = tok.Form
	}
	for _, a := range d.Arcs() {
		pterm.Println(formOf[a.Head] + " -> " + formOf[a.Child])
	}
}
