// Package evaluator implements expression evaluation (spec §4.2, component
// C5): Environment x Expression -> Value | EvalError. It is grounded on
// the teacher's evaluator.Evaluator/Eval dispatch
// (funvibe-funxy/internal/evaluator/evaluator.go), trimmed from the
// teacher's trait/generic/VM-aware dispatcher down to the plain
// tree-walking switch the spec's much smaller expression grammar needs,
// and returning (value.Value, error) pairs idiomatically instead of the
// teacher's in-band *Error sentinel object.
package evaluator

import (
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/matcher"
	"github.com/laszlokorte/damasc/internal/value"
)

// Evaluator evaluates expressions against an Environment. It holds no
// mutable state of its own; every call is independent, matching the
// spec's pure Environment x Expression -> Value | EvalError operation.
type Evaluator struct{}

// New returns a ready-to-use Evaluator.
func New() *Evaluator { return &Evaluator{} }

// Eval satisfies matcher.Evaluator and is the sole entry point recursed
// into by every case below, so pinned-expression/computed-key evaluation
// inside nested Match/LambdaApplication calls reuses the exact same
// dispatch.
func (e *Evaluator) Eval(env *environment.Env, expr ast.Expression) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		v, err := value.FromLiteral(n)
		if err != nil {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonInvalidNumber, Location: n.Loc, Name: n.Text, Inner: err}
		}
		return v, nil

	case *ast.Identifier:
		return e.evalIdentifier(env, n)

	case *ast.ArrayExpr:
		return e.evalArrayExpr(env, n)

	case *ast.ObjectExpr:
		return e.evalObjectExpr(env, n)

	case *ast.UnaryExpr:
		return e.evalUnary(env, n)

	case *ast.BinaryExpr:
		return e.evalBinary(env, n)

	case *ast.LogicalExpr:
		return e.evalLogical(env, n)

	case *ast.MemberExpr:
		return e.evalMember(env, n)

	case *ast.CallExpr:
		return e.evalCall(env, n)

	case *ast.TemplateExpr:
		return e.evalTemplate(env, n)

	case *ast.IfElseExpr:
		return e.evalIfElse(env, n)

	case *ast.MatchExpr:
		return e.evalMatch(env, n)

	case *ast.LambdaAbstraction:
		return NewLambda(env, n.Param, n.Body), nil

	case *ast.LambdaApplication:
		return e.evalLambdaApplication(env, n)

	case *ast.ArrayComp:
		return e.evalArrayComp(env, n)

	case *ast.ObjectComp:
		return e.evalObjectComp(env, n)
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonKind, Message: "unhandled expression node"}
}

func (e *Evaluator) evalIdentifier(env *environment.Env, n *ast.Identifier) (value.Value, error) {
	v, ok := env.Get(n.Name)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonUnknownIdentifier, Location: n.Loc, Name: n.Name}
	}
	return v, nil
}

func (e *Evaluator) evalArrayExpr(env *environment.Env, n *ast.ArrayExpr) (value.Value, error) {
	items := make([]value.Value, 0, len(n.Items))
	for _, it := range n.Items {
		v, err := e.Eval(env, it.Expr)
		if err != nil {
			return nil, err
		}
		if !it.Spread {
			items = append(items, v)
			continue
		}
		arr, ok := v.(value.Array)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: it.Expr.GetLocation(), Expected: value.TypeArray, Actual: v.Tag()}
		}
		items = append(items, arr.Items...)
	}
	return value.Array{Items: items}, nil
}

func (e *Evaluator) evalObjectExpr(env *environment.Env, n *ast.ObjectExpr) (value.Value, error) {
	fields := map[string]value.Value{}
	order := make([]string, 0, len(n.Items))
	set := func(k string, v value.Value) {
		if _, exists := fields[k]; !exists {
			order = append(order, k)
		}
		fields[k] = v
	}
	for _, it := range n.Items {
		if it.Spread != nil {
			v, err := e.Eval(env, it.Spread)
			if err != nil {
				return nil, err
			}
			obj, ok := v.(value.Object)
			if !ok {
				return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: it.Spread.GetLocation(), Expected: value.TypeObject, Actual: v.Tag()}
			}
			for _, f := range obj.Fields {
				set(f.Key, f.Value)
			}
			continue
		}
		key := it.Key
		if it.KeyExpr != nil {
			kv, err := e.Eval(env, it.KeyExpr)
			if err != nil {
				return nil, err
			}
			ks, ok := kv.(value.String)
			if !ok {
				return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: it.KeyExpr.GetLocation(), Expected: value.TypeString, Actual: kv.Tag()}
			}
			key = ks.Value
		}
		v, err := e.Eval(env, it.Value)
		if err != nil {
			return nil, err
		}
		set(key, v)
	}
	return value.NewObject(fields), nil
}

func (e *Evaluator) evalTemplate(env *environment.Env, n *ast.TemplateExpr) (value.Value, error) {
	var out []byte
	for _, part := range n.Parts {
		if part.Expr == nil {
			out = append(out, part.Text...)
			continue
		}
		v, err := e.Eval(env, part.Expr)
		if err != nil {
			return nil, err
		}
		sv, ok, convErr := toTemplateString(v)
		if convErr != nil {
			return nil, convErr
		}
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonCast, Location: part.Expr.GetLocation(), Expected: value.TypeString, Actual: v.Tag()}
		}
		out = append(out, sv...)
	}
	out = append(out, n.Suffix...)
	return value.String{Value: string(out)}, nil
}

func toTemplateString(v value.Value) (string, bool, error) {
	sv, ok := value.ConvertTo(v, value.TypeString)
	if !ok {
		return "", false, nil
	}
	return sv.(value.String).Value, true, nil
}

func (e *Evaluator) evalIfElse(env *environment.Env, n *ast.IfElseExpr) (value.Value, error) {
	cond, err := e.Eval(env, n.Cond)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(value.Boolean)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Cond.GetLocation(), Expected: value.TypeBoolean, Actual: cond.Tag()}
	}
	if b.Value {
		return e.Eval(env, n.Then)
	}
	if n.Else == nil {
		return value.Null{}, nil
	}
	return e.Eval(env, n.Else)
}

func (e *Evaluator) evalMatch(env *environment.Env, n *ast.MatchExpr) (value.Value, error) {
	subject, err := e.Eval(env, n.Subject)
	if err != nil {
		return nil, err
	}
	for _, c := range n.Cases {
		local, matchErr := matcher.Match(e, env, c.Pattern, subject)
		if matchErr != nil {
			continue
		}
		caseEnv, _, ok := environment.Combine(env, local)
		if !ok {
			continue
		}
		if c.Guard != nil {
			g, gErr := e.Eval(caseEnv, c.Guard)
			if gErr != nil {
				return nil, gErr
			}
			gb, isBool := g.(value.Boolean)
			if !isBool || !gb.Value {
				continue
			}
		}
		return e.Eval(caseEnv, c.Body)
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonPatternExhaustion, Location: n.Loc}
}

func (e *Evaluator) evalLambdaApplication(env *environment.Env, n *ast.LambdaApplication) (value.Value, error) {
	lv, err := e.Eval(env, n.Lambda)
	if err != nil {
		return nil, err
	}
	lam, ok := lv.(*Lambda)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Lambda.GetLocation(), Expected: value.TypeLambda, Actual: lv.Tag()}
	}
	arg, err := e.Eval(env, n.Arg)
	if err != nil {
		return nil, err
	}
	bound, matchErr := matcher.Match(e, lam.Captured, lam.Param, arg)
	if matchErr != nil {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonPatternErrorInEval, Location: n.Loc, Inner: matchErr}
	}
	callEnv, _, ok := environment.Combine(lam.Captured, bound)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonPatternErrorInEval, Location: n.Loc}
	}
	return e.Eval(callEnv, lam.Body)
}
