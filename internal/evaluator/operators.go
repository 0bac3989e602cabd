package evaluator

import (
	"math"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/value"
)

func (e *Evaluator) evalUnary(env *environment.Env, n *ast.UnaryExpr) (value.Value, error) {
	v, err := e.Eval(env, n.Arg)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.UnaryNot:
		b, ok := v.(value.Boolean)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Loc, Expected: value.TypeBoolean, Actual: v.Tag()}
		}
		return value.Boolean{Value: !b.Value}, nil
	case ast.UnaryPlus:
		i, ok := v.(value.Integer)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Loc, Expected: value.TypeInteger, Actual: v.Tag()}
		}
		return i, nil
	case ast.UnaryMinus:
		i, ok := v.(value.Integer)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Loc, Expected: value.TypeInteger, Actual: v.Tag()}
		}
		if i.Value == math.MinInt64 {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
		}
		return value.Integer{Value: -i.Value}, nil
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonKind, Location: n.Loc, Message: "unknown unary operator"}
}

func (e *Evaluator) evalLogical(env *environment.Env, n *ast.LogicalExpr) (value.Value, error) {
	lv, err := e.Eval(env, n.Left)
	if err != nil {
		return nil, err
	}
	lb, ok := lv.(value.Boolean)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Left.GetLocation(), Expected: value.TypeBoolean, Actual: lv.Tag()}
	}
	if n.Op == ast.LogicalAnd && !lb.Value {
		return value.Boolean{Value: false}, nil
	}
	if n.Op == ast.LogicalOr && lb.Value {
		return value.Boolean{Value: true}, nil
	}
	rv, err := e.Eval(env, n.Right)
	if err != nil {
		return nil, err
	}
	rb, ok := rv.(value.Boolean)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Right.GetLocation(), Expected: value.TypeBoolean, Actual: rv.Tag()}
	}
	return rb, nil
}

func (e *Evaluator) evalBinary(env *environment.Env, n *ast.BinaryExpr) (value.Value, error) {
	// `is` and `as` evaluate only the left operand; the right is a type
	// name token carried by the parser as an Identifier, not a value
	// expression to evaluate (spec §4.2).
	if n.Op == ast.OpIs || n.Op == ast.OpAs {
		return e.evalTypeOp(env, n)
	}

	lv, err := e.Eval(env, n.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.Eval(env, n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case ast.OpEq:
		return value.Boolean{Value: lv.Equal(rv)}, nil
	case ast.OpNeq:
		return value.Boolean{Value: !lv.Equal(rv)}, nil
	case ast.OpIn:
		return e.evalIn(n, lv, rv)
	}

	li, lok := lv.(value.Integer)
	ri, rok := rv.(value.Integer)
	if !lok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Left.GetLocation(), Expected: value.TypeInteger, Actual: lv.Tag()}
	}
	if !rok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Right.GetLocation(), Expected: value.TypeInteger, Actual: rv.Tag()}
	}

	switch n.Op {
	case ast.OpLt:
		return value.Boolean{Value: li.Value < ri.Value}, nil
	case ast.OpLte:
		return value.Boolean{Value: li.Value <= ri.Value}, nil
	case ast.OpGt:
		return value.Boolean{Value: li.Value > ri.Value}, nil
	case ast.OpGte:
		return value.Boolean{Value: li.Value >= ri.Value}, nil
	case ast.OpAdd:
		sum := li.Value + ri.Value
		if (ri.Value > 0 && sum < li.Value) || (ri.Value < 0 && sum > li.Value) {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
		}
		return value.Integer{Value: sum}, nil
	case ast.OpSub:
		diff := li.Value - ri.Value
		if (ri.Value < 0 && diff < li.Value) || (ri.Value > 0 && diff > li.Value) {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
		}
		return value.Integer{Value: diff}, nil
	case ast.OpMul:
		if li.Value != 0 && ri.Value != 0 {
			prod := li.Value * ri.Value
			if prod/ri.Value != li.Value {
				return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
			}
			return value.Integer{Value: prod}, nil
		}
		return value.Integer{Value: 0}, nil
	case ast.OpDiv:
		if ri.Value == 0 {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonMathDivisionByZero, Location: n.Loc}
		}
		if li.Value == math.MinInt64 && ri.Value == -1 {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
		}
		return value.Integer{Value: li.Value / ri.Value}, nil
	case ast.OpMod:
		if ri.Value == 0 {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonMathDivisionByZero, Location: n.Loc}
		}
		return value.Integer{Value: li.Value % ri.Value}, nil
	case ast.OpPow:
		return evalPow(n, li, ri)
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonKind, Location: n.Loc, Message: "unknown binary operator"}
}

func evalPow(n *ast.BinaryExpr, base, exp value.Integer) (value.Value, error) {
	if exp.Value < 0 {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonCast, Location: n.Loc, Message: "negative exponent"}
	}
	result := int64(1)
	b := base.Value
	ex := exp.Value
	for ex > 0 {
		if ex&1 == 1 {
			if b != 0 && result != 0 {
				next := result * b
				if next/b != result {
					return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
				}
				result = next
			} else {
				result = 0
			}
		}
		ex >>= 1
		if ex > 0 {
			if b != 0 {
				sq := b * b
				if sq/b != b {
					return nil, &damascerr.EvalError{Reason: damascerr.ReasonIntegerOverflow, Location: n.Loc}
				}
				b = sq
			}
		}
	}
	return value.Integer{Value: result}, nil
}

func (e *Evaluator) evalIn(n *ast.BinaryExpr, needle, haystack value.Value) (value.Value, error) {
	switch hs := haystack.(type) {
	case value.Array:
		for _, it := range hs.Items {
			if it.Equal(needle) {
				return value.Boolean{Value: true}, nil
			}
		}
		return value.Boolean{Value: false}, nil
	case value.Object:
		key, ok := needle.(value.String)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Left.GetLocation(), Expected: value.TypeString, Actual: needle.Tag()}
		}
		return value.Boolean{Value: hs.Has(key.Value)}, nil
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonCollectionType, Location: n.Right.GetLocation(), Actual: haystack.Tag()}
}

func (e *Evaluator) evalTypeOp(env *environment.Env, n *ast.BinaryExpr) (value.Value, error) {
	lv, err := e.Eval(env, n.Left)
	if err != nil {
		return nil, err
	}
	typeName, err := typeOperand(n.Right)
	if err != nil {
		return nil, err
	}
	target, ok := value.ParseTypeTag(typeName)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonCast, Location: n.Right.GetLocation(), Message: "unknown type name " + typeName}
	}
	if n.Op == ast.OpIs {
		return value.Boolean{Value: lv.Tag() == target}, nil
	}
	converted, ok := value.ConvertTo(lv, target)
	if !ok {
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonCast, Location: n.Loc, Expected: target, Actual: lv.Tag()}
	}
	return converted, nil
}

func typeOperand(expr ast.Expression) (string, error) {
	switch t := expr.(type) {
	case *ast.Identifier:
		return t.Name, nil
	case *ast.Literal:
		if t.Kind == ast.LiteralType {
			return t.Type, nil
		}
	}
	return "", &damascerr.EvalError{Reason: damascerr.ReasonCast, Location: expr.GetLocation(), Message: "expected a type name"}
}

func (e *Evaluator) evalMember(env *environment.Env, n *ast.MemberExpr) (value.Value, error) {
	obj, err := e.Eval(env, n.Object)
	if err != nil {
		return nil, err
	}

	if !n.Computed {
		ident, ok := n.Property.(*ast.Identifier)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonKind, Location: n.Loc, Message: "member property must be a name"}
		}
		o, ok := obj.(value.Object)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Object.GetLocation(), Expected: value.TypeObject, Actual: obj.Tag()}
		}
		fv, ok := o.Get(ident.Name)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonKeyNotDefined, Location: n.Loc, Name: ident.Name}
		}
		return fv, nil
	}

	idx, err := e.Eval(env, n.Property)
	if err != nil {
		return nil, err
	}
	switch o := obj.(type) {
	case value.Object:
		key, ok := idx.(value.String)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Property.GetLocation(), Expected: value.TypeString, Actual: idx.Tag()}
		}
		fv, ok := o.Get(key.Value)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonKeyNotDefined, Location: n.Loc, Name: key.Value}
		}
		return fv, nil
	case value.Array:
		ii, ok := idx.(value.Integer)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Property.GetLocation(), Expected: value.TypeInteger, Actual: idx.Tag()}
		}
		i := ii.Value
		if i < 0 {
			i += int64(len(o.Items))
		}
		if i < 0 || i >= int64(len(o.Items)) {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonOutOfBound, Location: n.Loc, Index: int(ii.Value), Len: len(o.Items)}
		}
		return o.Items[i], nil
	case value.String:
		ii, ok := idx.(value.Integer)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Property.GetLocation(), Expected: value.TypeInteger, Actual: idx.Tag()}
		}
		runes := []rune(o.Value)
		i := ii.Value
		if i < 0 {
			i += int64(len(runes))
		}
		if i < 0 || i >= int64(len(runes)) {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonOutOfBound, Location: n.Loc, Index: int(ii.Value), Len: len(runes)}
		}
		return value.String{Value: string(runes[i])}, nil
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonCollectionType, Location: n.Object.GetLocation(), Actual: obj.Tag()}
}

func (e *Evaluator) evalCall(env *environment.Env, n *ast.CallExpr) (value.Value, error) {
	arg, err := e.Eval(env, n.Arg)
	if err != nil {
		return nil, err
	}
	switch n.Name {
	case "length":
		switch a := arg.(type) {
		case value.Array:
			return value.Integer{Value: int64(len(a.Items))}, nil
		case value.Object:
			return value.Integer{Value: int64(len(a.Fields))}, nil
		case value.String:
			return value.Integer{Value: int64(len([]rune(a.Value)))}, nil
		}
		return nil, &damascerr.EvalError{Reason: damascerr.ReasonCollectionType, Location: n.Arg.GetLocation(), Actual: arg.Tag()}
	case "keys":
		o, ok := arg.(value.Object)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Arg.GetLocation(), Expected: value.TypeObject, Actual: arg.Tag()}
		}
		items := make([]value.Value, len(o.Fields))
		for i, f := range o.Fields {
			items[i] = value.String{Value: f.Key}
		}
		return value.Array{Items: items}, nil
	case "values":
		o, ok := arg.(value.Object)
		if !ok {
			return nil, &damascerr.EvalError{Reason: damascerr.ReasonType, Location: n.Arg.GetLocation(), Expected: value.TypeObject, Actual: arg.Tag()}
		}
		items := make([]value.Value, len(o.Fields))
		for i, f := range o.Fields {
			items[i] = f.Value
		}
		return value.Array{Items: items}, nil
	case "type":
		return value.Type{Tag_: arg.Tag()}, nil
	}
	return nil, &damascerr.EvalError{Reason: damascerr.ReasonUnknownFunction, Location: n.Loc, Name: n.Name}
}
