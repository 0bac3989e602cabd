// Package query implements the capture/predicate/projection primitives
// (spec §4.5, component C8) that the REPL (internal/repl) builds on (the
// join engine, internal/join, does its own matching and does not use this
// package): matching a single pattern against a value
// (Capture), testing a pattern-plus-guard against a value (Predicate),
// and producing a transformed value from a pattern-plus-guard match
// (Projection). Each has a Multi variant that zips several patterns
// against a k-tuple of values instead of one pattern against one value
// (spec §4.5 "zipped against a sequence of values of equal length");
// MultiPredicate/MultiProjection additionally enumerate every ordered
// k-permutation of an Array's elements (spec §8 scenario 4), so a single
// bag can be self-joined against itself via a multi-pattern transform.
// Grounded on the teacher's filter/map builtins
// (funvibe-funxy/internal/evaluator/builtins_fp.go apply a function
// across a collection the same element-at-a-time way), generalized here
// to use structural pattern matching plus a boolean guard instead of an
// arbitrary callback.
package query

import (
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/matcher"
	"github.com/laszlokorte/damasc/internal/value"
)

// Evaluator is the subset of the expression evaluator these primitives
// need.
type Evaluator = matcher.Evaluator

// Capture matches Pattern against a single value and returns the
// bindings it produces, or the raw *damascerr.PatternFail on mismatch.
type Capture struct {
	Pattern ast.Pattern
}

func (c Capture) Apply(ev Evaluator, outer *environment.Env, v value.Value) (*environment.Env, error) {
	return matcher.Match(ev, outer, c.Pattern, v)
}

// MultiCapture zips several Captures against a sequence of values of
// equal length (spec §4.5 "zipped against a sequence of values of equal
// length; all must match; bindings accumulate into one env; any
// identifier conflict across patterns fails the match"). len(values)
// must equal len(m.Captures); callers enumerating permutations
// (MultiPredicate/MultiProjection below) guarantee this.
type MultiCapture struct {
	Captures []Capture
}

func (m MultiCapture) Apply(ev Evaluator, outer *environment.Env, values []value.Value) (*environment.Env, error) {
	acc := environment.New()
	for i, c := range m.Captures {
		local, err := c.Apply(ev, outer, values[i])
		if err != nil {
			return nil, err
		}
		merged, conflict, ok := environment.Combine(acc, local)
		if !ok {
			return nil, &damascerr.PatternFail{Reason: damascerr.FailIdentifierConflict, Name: conflict}
		}
		acc = merged
	}
	return acc, nil
}

// Predicate tests whether v matches Pattern and, if so, whether Guard
// (evaluated with the pattern's bindings in scope) holds. A pattern
// mismatch yields ok=false with no error; a guard evaluation error or a
// non-boolean guard result is reported as a *damascerr.PredicateError.
type Predicate struct {
	Pattern ast.Pattern
	Guard   ast.Expression // optional
}

func (p Predicate) Test(ev Evaluator, outer *environment.Env, v value.Value) (bool, error) {
	local, err := matcher.Match(ev, outer, p.Pattern, v)
	if err != nil {
		if _, ok := err.(*damascerr.PatternFail); ok {
			return false, nil
		}
		return false, err
	}
	if p.Guard == nil {
		return true, nil
	}
	scope, _, ok := environment.Combine(outer, local)
	if !ok {
		return false, nil
	}
	gv, err := ev.Eval(scope, p.Guard)
	if err != nil {
		return false, &damascerr.PredicateError{Guard: err}
	}
	gb, isBool := gv.(value.Boolean)
	if !isBool {
		return false, &damascerr.PredicateError{Guard: &damascerr.EvalError{
			Reason:   damascerr.ReasonType,
			Location: p.Guard.GetLocation(),
			Expected: value.TypeBoolean,
			Actual:   gv.Tag(),
		}}
	}
	return gb.Value, nil
}

// MultiPredicate tests a MultiCapture plus an optional whole-tuple Guard
// against one candidate tuple (spec §4.5 "Predicate{capture, guard}: ...
// MultiPredicate{capture, guard}: as above over multiple values").
type MultiPredicate struct {
	Capture MultiCapture
	Guard   ast.Expression // optional
}

// Test matches tuple (len(tuple) == len(m.Capture.Captures)) and, on a
// successful match, evaluates Guard. It returns the tuple's bindings
// alongside the pass/fail verdict so callers (Enumerate, MultiProjection)
// can reuse the environment without re-matching.
func (m MultiPredicate) Test(ev Evaluator, outer *environment.Env, tuple []value.Value) (*environment.Env, bool, error) {
	local, err := m.Capture.Apply(ev, outer, tuple)
	if err != nil {
		if _, ok := err.(*damascerr.PatternFail); ok {
			return nil, false, nil
		}
		return nil, false, err
	}
	if m.Guard == nil {
		return local, true, nil
	}
	scope, _, ok := environment.Combine(outer, local)
	if !ok {
		return nil, false, nil
	}
	gv, err := ev.Eval(scope, m.Guard)
	if err != nil {
		return nil, false, &damascerr.PredicateError{Guard: err}
	}
	gb, isBool := gv.(value.Boolean)
	if !isBool {
		return nil, false, &damascerr.PredicateError{Guard: &damascerr.EvalError{
			Reason:   damascerr.ReasonType,
			Location: m.Guard.GetLocation(),
			Expected: value.TypeBoolean,
			Actual:   gv.Tag(),
		}}
	}
	return local, gb.Value, nil
}

// Enumerate runs Test against every ordered k-permutation of items, where
// k = len(m.Capture.Captures) (spec §8 scenario 4: "for every ordered
// pair (x,y) from the multiset {3,4,4,2} with x != y"; duplicates are
// preserved since permutations are drawn by position, not by value).
func (m MultiPredicate) Enumerate(ev Evaluator, outer *environment.Env, items []value.Value) ([]*environment.Env, error) {
	var out []*environment.Env
	err := forEachPermutation(items, len(m.Capture.Captures), func(tuple []value.Value) error {
		env, ok, testErr := m.Test(ev, outer, tuple)
		if testErr != nil {
			return testErr
		}
		if ok {
			out = append(out, env)
		}
		return nil
	})
	return out, err
}

// forEachPermutation calls visit once per ordered selection of k distinct
// positions from items, stopping early on the first error (mirrors
// internal/join's permutation enumeration, specialised to plain values
// since query has no bag identity to track).
func forEachPermutation(items []value.Value, k int, visit func([]value.Value) error) error {
	if k == 0 {
		return visit(nil)
	}
	if k > len(items) {
		return nil
	}
	used := make([]bool, len(items))
	tuple := make([]value.Value, k)
	var rec func(depth int) error
	rec = func(depth int) error {
		if depth == k {
			return visit(append([]value.Value{}, tuple...))
		}
		for i := range items {
			if used[i] {
				continue
			}
			used[i] = true
			tuple[depth] = items[i]
			if err := rec(depth + 1); err != nil {
				used[i] = false
				return err
			}
			used[i] = false
		}
		return nil
	}
	return rec(0)
}

// Projection matches Pattern against a value, optionally filters by
// Guard, and on success evaluates Output in the combined environment to
// produce the projected value (spec §4.5). A pattern mismatch or a
// failing guard is reported through *damascerr.ProjectionError wrapping
// the underlying PredicateError; an error evaluating Output is reported
// as the ProjectionError's Eval field.
type Projection struct {
	Pattern ast.Pattern
	Guard   ast.Expression // optional
	Output  ast.Expression
}

func (p Projection) Apply(ev Evaluator, outer *environment.Env, v value.Value) (value.Value, error) {
	local, err := matcher.Match(ev, outer, p.Pattern, v)
	if err != nil {
		pf, _ := err.(*damascerr.PatternFail)
		return nil, &damascerr.ProjectionError{Predicate: &damascerr.PredicateError{Pattern: pf}}
	}
	scope, _, ok := environment.Combine(outer, local)
	if !ok {
		return nil, &damascerr.ProjectionError{Predicate: &damascerr.PredicateError{
			Pattern: &damascerr.PatternFail{Reason: damascerr.FailIdentifierConflict},
		}}
	}
	if p.Guard != nil {
		gv, err := ev.Eval(scope, p.Guard)
		if err != nil {
			return nil, &damascerr.ProjectionError{Predicate: &damascerr.PredicateError{Guard: err}}
		}
		gb, isBool := gv.(value.Boolean)
		if !isBool || !gb.Value {
			return nil, &damascerr.ProjectionError{Predicate: &damascerr.PredicateError{
				Pattern: &damascerr.PatternFail{Reason: damascerr.FailLiteralMismatch},
			}}
		}
	}
	out, err := ev.Eval(scope, p.Output)
	if err != nil {
		if ee, ok := err.(*damascerr.EvalError); ok {
			return nil, &damascerr.ProjectionError{Eval: ee}
		}
		return nil, err
	}
	return out, nil
}

// MultiProjection runs Predicate over every k-permutation of a bag's
// values (k = len(Predicate.Capture.Captures)) and, for each tuple that
// matches and passes Guard, evaluates every expression in Projections in
// the tuple's bindings, flattening all results into one sequence (spec
// §4.5 "MultiProjection{predicate, projections: sequence} additionally
// evaluate ... many expressions in the extended env after a successful
// predicate"; spec §8 scenario 4 is the canonical two-pattern case).
type MultiProjection struct {
	Predicate   MultiPredicate
	Projections []ast.Expression
}

func (m MultiProjection) Map(ev Evaluator, outer *environment.Env, items []value.Value) ([]value.Value, error) {
	var out []value.Value
	err := forEachPermutation(items, len(m.Predicate.Capture.Captures), func(tuple []value.Value) error {
		local, ok, testErr := m.Predicate.Test(ev, outer, tuple)
		if testErr != nil {
			return testErr
		}
		if !ok {
			return nil
		}
		scope, _, combineOk := environment.Combine(outer, local)
		if !combineOk {
			return nil
		}
		for _, proj := range m.Projections {
			v, evalErr := ev.Eval(scope, proj)
			if evalErr != nil {
				return evalErr
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}
