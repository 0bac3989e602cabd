// Package repl implements the REPL Kernel (spec §4.7, component C11):
// command dispatch over the matcher, evaluator, assignment solver and
// query primitives (C4-C8). It holds the session's mutable state (the
// current environment and bag bundle) and exposes one method per command
// kind, following the teacher's Evaluator struct shape (grouped mutable
// fields plus a constructor, funvibe-funxy/internal/evaluator/evaluator.go)
// adapted from the teacher's tree-walking interpreter loop to the spec's
// explicit command set instead of a statement-by-statement REPL loop.
//
// The parser/front-end collaborators (CLI, HTTP, WASM) build a Command
// value and call Session.Dispatch; this package never reads stdin or a
// socket itself (spec §1, front-ends are thin and out of scope).
package repl

import (
	"sync"

	"github.com/laszlokorte/damasc/internal/assign"
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/evaluator"
	"github.com/laszlokorte/damasc/internal/observability"
	"github.com/laszlokorte/damasc/internal/query"
	"github.com/laszlokorte/damasc/internal/topology"
	"github.com/laszlokorte/damasc/internal/value"
)

// Command is the common interface for every REPL input (spec §4.7: Help,
// Cancel, Exit, ShowEnv, ClearEnv, Transform, Assign, Match, Eval).
type Command interface{ commandNode() }

// HelpCommand requests the front-end print its own help text; the
// kernel has nothing to compute and returns an empty Outcome.
type HelpCommand struct{}

func (HelpCommand) commandNode() {}

// CancelCommand aborts whatever multi-line input the front-end was
// accumulating; the kernel has no state to roll back since it only ever
// sees a command once it is complete.
type CancelCommand struct{}

func (CancelCommand) commandNode() {}

// ExitCommand requests session termination (spec §6 "REPL exit codes").
type ExitCommand struct{}

func (ExitCommand) commandNode() {}

// ShowEnvCommand requests a snapshot of the session environment.
type ShowEnvCommand struct{}

func (ShowEnvCommand) commandNode() {}

// ClearEnvCommand discards every session binding.
type ClearEnvCommand struct{}

func (ClearEnvCommand) commandNode() {}

// TransformCommand runs a bag's values through a MultiProjection and
// returns the flattened survivors (spec §4.7 "Transform").
type TransformCommand struct {
	Bag        string
	Projection query.MultiProjection
}

func (TransformCommand) commandNode() {}

// AssignCommand solves Assignments (optionally preceded by Locals, solved
// first into a scratch environment used only for Assignments' right-hand
// sides) and commits the result into the session environment.
type AssignCommand struct {
	Assignments []topology.Statement
	Locals      []topology.Statement
}

func (AssignCommand) commandNode() {}

// MatchCommand solves Assignments like AssignCommand but never mutates
// the session environment (spec §4.7 "Match").
type MatchCommand struct {
	Assignments []topology.Statement
}

func (MatchCommand) commandNode() {}

// EvalCommand solves Assignments against the current session environment
// and evaluates each of Expressions in the extended (but not committed)
// environment (spec §4.7 "Eval").
type EvalCommand struct {
	Assignments []topology.Statement
	Expressions []ast.Expression
}

func (EvalCommand) commandNode() {}

// Outcome is the kernel's reply to a dispatched Command. Only the fields
// relevant to the command kind that produced it are populated.
type Outcome struct {
	Exit     bool
	Help     bool
	Env      map[string]value.Value
	Bindings map[string]value.Value
	Values   []value.Value
}

// Session holds one REPL's mutable state: the environment built up by
// Assign/ClearEnv, and the bag bundle Transform reads from. It is safe
// for concurrent use (spec §5: "the HTTP front-end wraps the session
// state in a mutex"); Session's own lock additionally protects the
// session env from racing Assign/ClearEnv calls issued by the CLI's own
// goroutines, if any.
type Session struct {
	mu      sync.Mutex
	env     *environment.Env
	bundle  *bag.Bundle
	eval    *evaluator.Evaluator
	metrics *observability.Metrics
}

// NewSession returns a Session with an empty environment backed by
// bundle (never nil: callers share one *bag.Bundle across sessions that
// should observe each other's joins), instrumented against a private
// registry nobody scrapes. Front-ends that expose a Prometheus endpoint
// (the HTTP front-end) should use NewSessionWithMetrics with their own
// registry instead, so the counters this session increments are the ones
// actually served.
func NewSession(bundle *bag.Bundle) *Session {
	return NewSessionWithMetrics(bundle, observability.NewMetrics(observability.NewRegistry()))
}

// NewSessionWithMetrics is like NewSession but records every
// assignment-solver run against the caller-supplied metrics (spec
// SPEC_FULL.md §4.10: "incremented by a decorator wrapped around ... the
// assignment solver").
func NewSessionWithMetrics(bundle *bag.Bundle, metrics *observability.Metrics) *Session {
	return &Session{
		env:     environment.New(),
		bundle:  bundle,
		eval:    evaluator.New(),
		metrics: metrics,
	}
}

// solveAssignments runs assign.Solve through observability.InstrumentedSolve
// when metrics are configured, so every Assign/Match/Eval/locals path
// increments damasc_assignment_solves_total (spec SPEC_FULL.md §4.10).
func (s *Session) solveAssignments(outer *environment.Env, stmts []topology.Statement) (*environment.Env, error) {
	if s.metrics == nil {
		return assign.Solve(s.eval, outer, stmts)
	}
	return observability.InstrumentedSolve(s.metrics, func() (*environment.Env, error) {
		return assign.Solve(s.eval, outer, stmts)
	})
}

// Env returns a snapshot of the current session environment.
func (s *Session) Env() map[string]value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.ToMap()
}

// Dispatch executes cmd against the session and returns its Outcome
// (spec §4.7).
func (s *Session) Dispatch(cmd Command) (Outcome, error) {
	switch c := cmd.(type) {
	case HelpCommand:
		return Outcome{Help: true}, nil

	case CancelCommand:
		return Outcome{}, nil

	case ExitCommand:
		return Outcome{Exit: true}, nil

	case ShowEnvCommand:
		return Outcome{Env: s.Env()}, nil

	case ClearEnvCommand:
		s.mu.Lock()
		s.env = environment.New()
		s.mu.Unlock()
		return Outcome{}, nil

	case TransformCommand:
		return s.transform(c)

	case AssignCommand:
		return s.assign(c)

	case MatchCommand:
		return s.match(c)

	case EvalCommand:
		return s.eval_(c)
	}
	return Outcome{}, &damascerr.EvalError{Reason: damascerr.ReasonKind, Message: "unknown REPL command"}
}

func (s *Session) transform(c TransformCommand) (Outcome, error) {
	s.mu.Lock()
	outer := s.env
	s.mu.Unlock()

	items := s.bundle.Bag(c.Bag).Items()
	values := make([]value.Value, len(items))
	for i, it := range items {
		values[i] = it.Value
	}
	out, err := c.Projection.Map(s.eval, outer, values)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Values: out}, nil
}

// locals solves Locals (if any) into a scratch environment combined with
// the session env, for use as the outer environment of Assignments' own
// solve (spec §4.7 "If locals is present, solve it first in a scratch
// env used only for assignments's RHS").
func (s *Session) locals(outer *environment.Env, localStmts []topology.Statement) (*environment.Env, error) {
	if len(localStmts) == 0 {
		return outer, nil
	}
	bindings, err := s.solveAssignments(outer, localStmts)
	if err != nil {
		return nil, err
	}
	scope, _, ok := environment.Combine(outer, bindings)
	if !ok {
		return nil, &damascerr.AssignmentError{Inner: &damascerr.PatternFail{Reason: damascerr.FailIdentifierConflict}}
	}
	return scope, nil
}

func (s *Session) assign(c AssignCommand) (Outcome, error) {
	s.mu.Lock()
	outer := s.env
	s.mu.Unlock()

	scope, err := s.locals(outer, c.Locals)
	if err != nil {
		return Outcome{}, err
	}
	bindings, err := s.solveAssignments(scope, c.Assignments)
	if err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Committing into the session environment is a rebind, not a merge: an
	// Assign for an identifier the session already holds simply replaces
	// its value (spec §6; damasc-repl/src/state.rs's
	// `bindings.append(&mut new_bindings.bindings)` overwrites on a
	// shared key rather than erroring).
	s.env = environment.Overlay(s.env, bindings)
	return Outcome{Bindings: bindings.ToMap()}, nil
}

func (s *Session) match(c MatchCommand) (Outcome, error) {
	s.mu.Lock()
	outer := s.env
	s.mu.Unlock()

	bindings, err := s.solveAssignments(outer, c.Assignments)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Bindings: bindings.ToMap()}, nil
}

func (s *Session) eval_(c EvalCommand) (Outcome, error) {
	s.mu.Lock()
	outer := s.env
	s.mu.Unlock()

	bindings, err := s.solveAssignments(outer, c.Assignments)
	if err != nil {
		return Outcome{}, err
	}
	scope, _, ok := environment.Combine(outer, bindings)
	if !ok {
		return Outcome{}, &damascerr.AssignmentError{Inner: &damascerr.PatternFail{Reason: damascerr.FailIdentifierConflict}}
	}

	values := make([]value.Value, 0, len(c.Expressions))
	for _, expr := range c.Expressions {
		v, err := s.eval.Eval(scope, expr)
		if err != nil {
			return Outcome{}, err
		}
		values = append(values, v)
	}
	return Outcome{Values: values}, nil
}
