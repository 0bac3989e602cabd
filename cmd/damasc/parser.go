package main

import (
	"errors"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/join"
	"github.com/laszlokorte/damasc/internal/repl"
)

// ErrParserNotImplemented is returned by the stub Parser below. The
// surface grammar (spec.md §1 "deliberately OUT of scope": "the parser
// grammar surface ... the core consumes an AST and is grammar-agnostic")
// is not part of this module; a real front-end wires in one of the two
// parser implementations the spec describes (combinator or PEG) behind
// this same Parser seam.
var ErrParserNotImplemented = errors.New("damasc: no parser collaborator wired into this build; construct Commands/Expressions/Joins as ASTs directly")

// Parser turns REPL source text into the AST types the engine consumes.
// It is the seam the CLI/HTTP/WASM front-ends use to hand off to an
// external grammar; this module ships only the stub below.
type Parser interface {
	ParseCommand(line string) (repl.Command, error)
	ParseExpressions(source string) ([]ast.Expression, error)
	ParseJoin(source string) (join.Join, error)
}

// stubParser implements Parser by always reporting
// ErrParserNotImplemented, so the CLI commands below are complete and
// runnable end to end except for the grammar itself.
type stubParser struct{}

func (stubParser) ParseCommand(string) (repl.Command, error) {
	return nil, ErrParserNotImplemented
}

func (stubParser) ParseExpressions(string) ([]ast.Expression, error) {
	return nil, ErrParserNotImplemented
}

func (stubParser) ParseJoin(string) (join.Join, error) {
	return join.Join{}, ErrParserNotImplemented
}

func newParser() Parser { return stubParser{} }
