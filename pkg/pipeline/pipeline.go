/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline.go
Description: Generation pipeline. Parses one input file, resolves its columns against the
knowledge base, persists what was learned and synthesizes records. All run state travels in
the Options passed in and the Result returned; nothing is kept between runs but the knowledge
base file.
*/

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kleascm/mimicry/pkg/generator"
	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/labeler"
	"github.com/kleascm/mimicry/pkg/resolver"
	"github.com/kleascm/mimicry/pkg/tokenizer"
	"github.com/sirupsen/logrus"
)

// InputKind classifies why an input file could not be used
type InputKind string

const (
	InputMissing     InputKind = "missing"
	InputUnreadable  InputKind = "unreadable"
	InputEmpty       InputKind = "empty"
	InputNoDelimiter InputKind = "no_delimiter"
)

// InputError reports an input file the pipeline cannot parse. A run that fails with an
// InputError has not touched the knowledge base.
type InputError struct {
	Kind InputKind
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Options is the explicit context of one run
type Options struct {
	KBPath    string
	Knowledge knowledge.Options
	Resolver  resolver.Options
	Generator generator.Options
	Labeler   labeler.Labeler // nil runs offline
	Logger    *logrus.Logger
}

// Result is everything a run produced, handed to the caller for export
type Result struct {
	Input       string
	Columns     []string // Canonical names in input column order
	Records     []generator.Record
	Delimiter   tokenizer.Delimiter
	HasHeader   bool
	Resolutions []resolver.Resolution
	Warnings    []string // Recovered problems: knowledge base reset, labeler failure, save failure
	KBReset     bool
	LabelerErr  error
	Seed        uint64
	Knowledge   *knowledge.KnowledgeBase // State after learning this input
}

// Parse reads and tokenizes an input file
func Parse(path string) (*tokenizer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InputError{Kind: InputMissing, Path: path, Err: err}
		}
		return nil, &InputError{Kind: InputUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	lines, err := tokenizer.ReadLines(f)
	if err != nil {
		return nil, &InputError{Kind: InputUnreadable, Path: path, Err: err}
	}

	parsed, err := tokenizer.DetectAndSplit(lines)
	switch {
	case errors.Is(err, tokenizer.ErrEmptyInput):
		return nil, &InputError{Kind: InputEmpty, Path: path, Err: err}
	case errors.Is(err, tokenizer.ErrNoDelimiter):
		return nil, &InputError{Kind: InputNoDelimiter, Path: path, Err: err}
	case err != nil:
		return nil, &InputError{Kind: InputUnreadable, Path: path, Err: err}
	}
	return parsed, nil
}

// Run executes one pipeline run over input, producing count records. Only an InputError
// aborts a run; every other problem is recovered and reported in Result.Warnings.
func Run(ctx context.Context, opts Options, input string, count int) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.Knowledge.Logger = logger
	opts.Resolver.Logger = logger
	opts.Generator.Logger = logger

	parsed, err := Parse(input)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"input":     input,
		"delimiter": parsed.Delimiter.String(),
		"header":    parsed.HasHeader,
		"rows":      len(parsed.Rows),
		"columns":   parsed.Columns(),
	}).Debug("Input parsed")

	res := &Result{
		Input:     input,
		Delimiter: parsed.Delimiter,
		HasHeader: parsed.HasHeader,
	}

	kb, reset := knowledge.Load(opts.KBPath, opts.Knowledge)
	res.Knowledge = kb
	if reset {
		res.KBReset = true
		res.Warnings = append(res.Warnings, fmt.Sprintf("knowledge base %s was unreadable and has been reset", opts.KBPath))
	}

	r := resolver.New(kb, opts.Labeler, opts.Resolver)
	var outcome *resolver.Outcome
	if parsed.HasHeader {
		outcome = r.ResolveHeader(parsed.Header, parsed.Rows)
	} else {
		outcome = r.ResolveHeaderless(ctx, parsed.Rows)
	}
	res.Columns = outcome.Columns()
	res.Resolutions = outcome.Resolutions
	if outcome.LabelerErr != nil {
		res.LabelerErr = outcome.LabelerErr
		res.Warnings = append(res.Warnings, fmt.Sprintf("labeler failed: %v", outcome.LabelerErr))
	}

	if err := kb.Save(); err != nil {
		logger.WithFields(logrus.Fields{"path": opts.KBPath, "error": err}).Error("Knowledge base save failed")
		res.Warnings = append(res.Warnings, fmt.Sprintf("knowledge base not saved: %v", err))
	}

	gen := generator.New(kb, opts.Generator)
	res.Seed = gen.Seed()
	res.Records = gen.Generate(res.Columns, count)

	return res, nil
}
