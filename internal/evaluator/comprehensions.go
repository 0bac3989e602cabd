package evaluator

import (
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/matcher"
	"github.com/laszlokorte/damasc/internal/value"
)

// evalSources walks the comprehension sources left to right (spec §4.3):
// each source's collection is evaluated, iterated in order, and matched
// against its pattern in the environment accumulated from the outer scope
// plus every preceding source's bindings. A Strong source treats a
// pattern mismatch as an evaluation error; a weak source silently skips
// the non-matching element. A present Predicate filters elements whose
// match succeeded, in either case. Once every source has been consumed,
// visit is called once per surviving combination with the fully combined
// environment.
func evalSources(e *Evaluator, outer *environment.Env, sources []ast.ComprehensionSource, idx int, acc *environment.Env, visit func(*environment.Env) error) error {
	if idx == len(sources) {
		return visit(acc)
	}
	src := sources[idx]

	scope, _, ok := environment.Combine(outer, acc)
	if !ok {
		scope = acc
	}
	coll, err := e.Eval(scope, src.Collection)
	if err != nil {
		return err
	}
	arr, ok := coll.(value.Array)
	if !ok {
		return &damascerr.EvalError{Reason: damascerr.ReasonType, Location: src.Collection.GetLocation(), Expected: value.TypeArray, Actual: coll.Tag()}
	}

	for _, item := range arr.Items {
		local, matchErr := matcher.Match(e, scope, src.Pattern, item)
		if matchErr != nil {
			if src.Strong {
				return &damascerr.EvalError{Reason: damascerr.ReasonPatternErrorInEval, Location: src.Pattern.GetLocation(), Inner: matchErr}
			}
			continue
		}
		next, _, ok := environment.Combine(acc, local)
		if !ok {
			if src.Strong {
				return &damascerr.EvalError{Reason: damascerr.ReasonPatternErrorInEval, Location: src.Pattern.GetLocation()}
			}
			continue
		}

		if src.Predicate != nil {
			predScope, _, ok := environment.Combine(outer, next)
			if !ok {
				predScope = next
			}
			pv, err := e.Eval(predScope, src.Predicate)
			if err != nil {
				return err
			}
			pb, isBool := pv.(value.Boolean)
			if !isBool || !pb.Value {
				continue
			}
		}

		if err := evalSources(e, outer, sources, idx+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) evalArrayComp(env *environment.Env, n *ast.ArrayComp) (value.Value, error) {
	var items []value.Value
	err := evalSources(e, env, n.Sources, 0, environment.New(), func(combined *environment.Env) error {
		scope, _, ok := environment.Combine(env, combined)
		if !ok {
			scope = combined
		}
		for _, it := range n.Projection {
			v, err := e.Eval(scope, it.Expr)
			if err != nil {
				return err
			}
			if !it.Spread {
				items = append(items, v)
				continue
			}
			arr, ok := v.(value.Array)
			if !ok {
				return &damascerr.EvalError{Reason: damascerr.ReasonType, Location: it.Expr.GetLocation(), Expected: value.TypeArray, Actual: v.Tag()}
			}
			items = append(items, arr.Items...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value.Array{Items: items}, nil
}

func (e *Evaluator) evalObjectComp(env *environment.Env, n *ast.ObjectComp) (value.Value, error) {
	fields := map[string]value.Value{}
	order := make([]string, 0)
	set := func(k string, v value.Value) {
		if _, exists := fields[k]; !exists {
			order = append(order, k)
		}
		fields[k] = v
	}

	err := evalSources(e, env, n.Sources, 0, environment.New(), func(combined *environment.Env) error {
		scope, _, ok := environment.Combine(env, combined)
		if !ok {
			scope = combined
		}
		for _, it := range n.Projection {
			if it.Spread != nil {
				v, err := e.Eval(scope, it.Spread)
				if err != nil {
					return err
				}
				obj, ok := v.(value.Object)
				if !ok {
					return &damascerr.EvalError{Reason: damascerr.ReasonType, Location: it.Spread.GetLocation(), Expected: value.TypeObject, Actual: v.Tag()}
				}
				for _, f := range obj.Fields {
					set(f.Key, f.Value)
				}
				continue
			}
			key := it.Key
			if it.KeyExpr != nil {
				kv, err := e.Eval(scope, it.KeyExpr)
				if err != nil {
					return err
				}
				ks, ok := kv.(value.String)
				if !ok {
					return &damascerr.EvalError{Reason: damascerr.ReasonType, Location: it.KeyExpr.GetLocation(), Expected: value.TypeString, Actual: kv.Tag()}
				}
				key = ks.Value
			}
			v, err := e.Eval(scope, it.Value)
			if err != nil {
				return err
			}
			set(key, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value.NewObject(fields), nil
}
