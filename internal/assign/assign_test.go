package assign_test

import (
	"testing"

	"github.com/laszlokorte/damasc/internal/assign"
	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/evaluator"
	"github.com/laszlokorte/damasc/internal/topology"
	"github.com/laszlokorte/damasc/internal/value"
)

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LiteralInteger, Text: value.Integer{Value: n}.String()}
}

func TestSolveBasicArrayDestructure(t *testing.T) {
	// let [x, y] = [23, 42]
	stmt := topology.Statement{
		Pattern: &ast.ArrayPattern{
			Items: []ast.Pattern{&ast.IdentifierPattern{Name: "x"}, &ast.IdentifierPattern{Name: "y"}},
			Rest:  ast.RestExact,
		},
		Expression: &ast.ArrayExpr{Items: []ast.ArrayItem{{Expr: intLit(23)}, {Expr: intLit(42)}}},
	}
	bindings, err := assign.Solve(evaluator.New(), environment.New(), []topology.Statement{stmt})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	x, _ := bindings.Get("x")
	y, _ := bindings.Get("y")
	if !x.Equal(value.Integer{Value: 23}) || !y.Equal(value.Integer{Value: 42}) {
		t.Fatalf("x=%v y=%v, want 23, 42", x, y)
	}
}

func TestSolveReordersByDependency(t *testing.T) {
	// t = type(x) ; {x:[_ is Integer, x]} = {x:[23, true]}
	// `x` is only defined by the second statement; the solver must run it
	// first so the first statement's `type(x)` sees a bound x (spec §8
	// scenario 3).
	first := topology.Statement{
		Pattern:    &ast.IdentifierPattern{Name: "t"},
		Expression: &ast.CallExpr{Name: "type", Arg: &ast.Identifier{Name: "x"}},
	}
	second := topology.Statement{
		Pattern: &ast.ObjectPattern{
			Properties: []ast.ObjectProperty{{
				Key: "x",
				Value: &ast.ArrayPattern{
					Items: []ast.Pattern{
						&ast.TypedDiscardPattern{TypeName: "Integer"},
						&ast.IdentifierPattern{Name: "x"},
					},
					Rest: ast.RestExact,
				},
			}},
			Rest: ast.RestExact,
		},
		Expression: &ast.ObjectExpr{Items: []ast.ObjectItem{{
			Key: "x",
			Value: &ast.ArrayExpr{Items: []ast.ArrayItem{
				{Expr: intLit(23)},
				{Expr: &ast.Literal{Kind: ast.LiteralBool, Bool: true}},
			}},
		}}},
	}

	bindings, err := assign.Solve(evaluator.New(), environment.New(), []topology.Statement{first, second})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	tv, _ := bindings.Get("t")
	xv, _ := bindings.Get("x")
	if tv.Tag() != value.TypeType {
		t.Fatalf("t = %v, want a Type value", tv)
	}
	if !xv.Equal(value.Boolean{Value: true}) {
		t.Fatalf("x = %v, want true", xv)
	}
}

func TestSolveSameOuterEnvTwiceYieldsIdenticalBindings(t *testing.T) {
	stmt := topology.Statement{
		Pattern:    &ast.IdentifierPattern{Name: "x"},
		Expression: &ast.BinaryExpr{Op: ast.OpAdd, Left: intLit(1), Right: intLit(1)},
	}
	ev := evaluator.New()
	outer := environment.New()
	b1, err := assign.Solve(ev, outer, []topology.Statement{stmt})
	if err != nil {
		t.Fatalf("first Solve failed: %v", err)
	}
	b2, err := assign.Solve(ev, outer, []topology.Statement{stmt})
	if err != nil {
		t.Fatalf("second Solve failed: %v", err)
	}
	x1, _ := b1.Get("x")
	x2, _ := b2.Get("x")
	if !x1.Equal(x2) {
		t.Fatalf("solving twice gave different bindings: %v vs %v", x1, x2)
	}
}
