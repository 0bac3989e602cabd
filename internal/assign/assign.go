// Package assign implements the assignment solver (spec §4.6, component
// C7): a batch of `pattern = expression` statements is ordered by data
// dependency (internal/topology) and then each statement is evaluated
// against the accumulating environment and matched, so later statements
// may reference identifiers bound by earlier ones regardless of the
// order they were written in. Grounded on the teacher's statement-list
// evaluation loop (funvibe-funxy/internal/evaluator/expressions_control.go
// handles sequential let-bindings the same evaluate-then-bind way, minus
// the dependency reordering this module's Non-goals require).
package assign

import (
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/matcher"
	"github.com/laszlokorte/damasc/internal/topology"
)

// Evaluator is the subset of the expression evaluator the solver needs.
type Evaluator = matcher.Evaluator

// Solve orders statements by dependency and evaluates them in that order
// against outer, returning only the newly produced bindings (not
// outer's), or on failure a damascerr.AssignmentError wrapping the
// TopologyError, PatternFail or evaluator EvalError that caused it.
func Solve(ev Evaluator, outer *environment.Env, statements []topology.Statement) (*environment.Env, error) {
	ordered, err := topology.Sort(statements)
	if err != nil {
		return nil, &damascerr.AssignmentError{Inner: err}
	}

	acc := environment.New()
	for _, stmt := range ordered {
		scope, _, ok := environment.Combine(outer, acc)
		if !ok {
			scope = acc
		}
		v, err := ev.Eval(scope, stmt.Expression)
		if err != nil {
			return nil, &damascerr.AssignmentError{Inner: err}
		}
		local, err := matcher.Match(ev, scope, stmt.Pattern, v)
		if err != nil {
			return nil, &damascerr.AssignmentError{Inner: err}
		}
		merged, conflictName, ok := environment.Combine(acc, local)
		if !ok {
			return nil, &damascerr.AssignmentError{Inner: &damascerr.PatternFail{
				Reason: damascerr.FailIdentifierConflict,
				Name:   conflictName,
			}}
		}
		acc = merged
	}
	return acc, nil
}
