// Package matcher implements structural pattern matching (spec §4.1,
// component C4): Pattern x Value -> local Environment | PatternFail.
//
// Pinned expressions and object computed-keys must be evaluated in the
// *outer*, read-only environment (spec §4.1, §9 "Pinned expressions vs.
// pattern-local expressions"). Since that requires running the full
// expression evaluator, and the evaluator in turn needs the matcher for
// Match expressions and lambda application, the two packages share that
// dependency through a narrow Evaluator interface instead of importing
// one another — the same decoupling the teacher repo achieves by putting
// both concerns in a single `evaluator` package, but expressed here as an
// interface seam so `matcher` stays a standalone, independently testable
// package per the original `damasc-lang/src/runtime/matching.rs` split.
package matcher

import (
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/value"
)

// Evaluator is the subset of the expression evaluator the matcher needs
// to evaluate pinned expressions and computed object keys.
type Evaluator interface {
	Eval(env *environment.Env, expr ast.Expression) (value.Value, error)
}

// Match attempts to match pattern against v, given a read-only outer
// environment (used only for pinned-expression/computed-key evaluation).
// On success it returns a fresh environment containing only the new
// bindings produced by this match (not outer's bindings).
func Match(ev Evaluator, outer *environment.Env, pattern ast.Pattern, v value.Value) (*environment.Env, error) {
	local := environment.New()
	if err := match(ev, outer, local, pattern, v); err != nil {
		return nil, err
	}
	return local, nil
}

func bindIdentifier(local *environment.Env, loc ast.Location, name string, v value.Value) error {
	if existing, ok := local.Get(name); ok {
		if !existing.Equal(v) {
			return &damascerr.PatternFail{
				Reason:   damascerr.FailIdentifierConflict,
				Location: loc,
				Name:     name,
			}
		}
		return nil
	}
	local.Set(name, v)
	return nil
}

func match(ev Evaluator, outer, local *environment.Env, pattern ast.Pattern, v value.Value) error {
	switch p := pattern.(type) {
	case *ast.DiscardPattern:
		return nil

	case *ast.IdentifierPattern:
		return bindIdentifier(local, p.Loc, p.Name, v)

	case *ast.CapturePattern:
		if err := match(ev, outer, local, p.Sub, v); err != nil {
			return err
		}
		return bindIdentifier(local, p.Loc, p.Name, v)

	case *ast.TypedDiscardPattern:
		tag, _ := value.ParseTypeTag(p.TypeName)
		if v.Tag() != tag {
			return &damascerr.PatternFail{
				Reason:   damascerr.FailTypeMismatch,
				Location: p.Loc,
				Expected: tag,
				Actual:   v.Tag(),
			}
		}
		return nil

	case *ast.TypedIdentifierPattern:
		tag, _ := value.ParseTypeTag(p.TypeName)
		if v.Tag() != tag {
			return &damascerr.PatternFail{
				Reason:   damascerr.FailTypeMismatch,
				Location: p.Loc,
				Expected: tag,
				Actual:   v.Tag(),
			}
		}
		return bindIdentifier(local, p.Loc, p.Name, v)

	case *ast.LiteralPattern:
		lit, err := value.FromLiteral(p.Literal)
		if err != nil {
			return &damascerr.PatternFail{Reason: damascerr.FailEvalError, Location: p.Loc, Inner: err}
		}
		if !lit.Equal(v) {
			return &damascerr.PatternFail{Reason: damascerr.FailLiteralMismatch, Location: p.Loc}
		}
		return nil

	case *ast.PinnedPattern:
		pinned, err := ev.Eval(outer, p.Expr)
		if err != nil {
			return &damascerr.PatternFail{Reason: damascerr.FailEvalError, Location: p.Loc, Inner: err}
		}
		if !pinned.Equal(v) {
			return &damascerr.PatternFail{Reason: damascerr.FailExpressionMismatch, Location: p.Loc}
		}
		return nil

	case *ast.ObjectPattern:
		return matchObject(ev, outer, local, p, v)

	case *ast.ArrayPattern:
		return matchArray(ev, outer, local, p, v)
	}
	return nil
}

func matchObject(ev Evaluator, outer, local *environment.Env, p *ast.ObjectPattern, v value.Value) error {
	obj, ok := v.(value.Object)
	if !ok {
		return &damascerr.PatternFail{
			Reason:   damascerr.FailTypeMismatch,
			Location: p.Loc,
			Expected: value.TypeObject,
			Actual:   v.Tag(),
		}
	}

	if p.Rest == ast.RestExact && len(p.Properties) != len(obj.Fields) {
		return &damascerr.PatternFail{
			Reason:   damascerr.FailObjectLengthMismatch,
			Location: p.Loc,
			Len:      len(p.Properties),
		}
	}

	remaining := obj
	for _, prop := range p.Properties {
		key := prop.Key
		if prop.KeyExpr != nil {
			kv, err := ev.Eval(outer, prop.KeyExpr)
			if err != nil {
				return &damascerr.PatternFail{Reason: damascerr.FailEvalError, Location: p.Loc, Inner: err}
			}
			ks, ok := kv.(value.String)
			if !ok {
				return &damascerr.PatternFail{
					Reason:   damascerr.FailTypeMismatch,
					Location: p.Loc,
					Expected: value.TypeString,
					Actual:   kv.Tag(),
				}
			}
			key = ks.Value
		}
		fv, ok := obj.Get(key)
		if !ok {
			return &damascerr.PatternFail{
				Reason:   damascerr.FailObjectKeyMismatch,
				Location: p.Loc,
				Name:     key,
			}
		}
		if err := match(ev, outer, local, prop.Value, fv); err != nil {
			return err
		}
		remaining = remaining.Without(key)
	}

	if p.Rest == ast.RestCollect {
		return match(ev, outer, local, p.RestBind, remaining)
	}
	return nil
}

func matchArray(ev Evaluator, outer, local *environment.Env, p *ast.ArrayPattern, v value.Value) error {
	arr, ok := v.(value.Array)
	if !ok {
		return &damascerr.PatternFail{
			Reason:   damascerr.FailTypeMismatch,
			Location: p.Loc,
			Expected: value.TypeArray,
			Actual:   v.Tag(),
		}
	}

	if p.Rest == ast.RestExact {
		if len(arr.Items) != len(p.Items) {
			return &damascerr.PatternFail{
				Reason:   damascerr.FailArrayLengthMismatch,
				Location: p.Loc,
				Len:      len(p.Items),
			}
		}
	} else if len(arr.Items) < len(p.Items) {
		return &damascerr.PatternFail{
			Reason:   damascerr.FailArrayMinimumLengthMismatch,
			Location: p.Loc,
			MinLen:   len(p.Items),
		}
	}

	for i, itemPat := range p.Items {
		if err := match(ev, outer, local, itemPat, arr.Items[i]); err != nil {
			return err
		}
	}

	if p.Rest == ast.RestCollect {
		tail := value.Array{Items: append([]value.Value{}, arr.Items[len(p.Items):]...)}
		return match(ev, outer, local, p.RestBind, tail)
	}
	return nil
}
