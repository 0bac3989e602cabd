package query_test

import (
	"testing"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/evaluator"
	"github.com/laszlokorte/damasc/internal/query"
	"github.com/laszlokorte/damasc/internal/value"
)

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LiteralInteger, Text: value.Integer{Value: n}.String()}
}

func TestCaptureSingleValue(t *testing.T) {
	c := query.Capture{Pattern: &ast.IdentifierPattern{Name: "x"}}
	env, err := c.Apply(evaluator.New(), environment.New(), value.Integer{Value: 7})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	v, ok := env.Get("x")
	if !ok || !v.Equal(value.Integer{Value: 7}) {
		t.Fatalf("x = %v, %v", v, ok)
	}
}

func TestPredicateGuardFalseIsCleanMismatch(t *testing.T) {
	p := query.Predicate{
		Pattern: &ast.IdentifierPattern{Name: "x"},
		Guard:   &ast.BinaryExpr{Op: ast.OpGt, Left: &ast.Identifier{Name: "x"}, Right: intLit(10)},
	}
	ok, err := p.Test(evaluator.New(), environment.New(), value.Integer{Value: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected predicate to fail (3 is not > 10)")
	}
}

// TestMultiPredicateEnumeratesOrderedPairs exercises spec §8 scenario 4:
// for a multiset {3,4,4,2} and patterns x;y with guard x != y, the
// candidates are every ordered pair of distinct positions, duplicates
// preserved.
func TestMultiPredicateEnumeratesOrderedPairs(t *testing.T) {
	items := []value.Value{
		value.Integer{Value: 3}, value.Integer{Value: 4},
		value.Integer{Value: 4}, value.Integer{Value: 2},
	}
	mp := query.MultiPredicate{
		Capture: query.MultiCapture{Captures: []query.Capture{
			{Pattern: &ast.IdentifierPattern{Name: "x"}},
			{Pattern: &ast.IdentifierPattern{Name: "y"}},
		}},
		Guard: &ast.BinaryExpr{Op: ast.OpNeq, Left: &ast.Identifier{Name: "x"}, Right: &ast.Identifier{Name: "y"}},
	}
	envs, err := mp.Enumerate(evaluator.New(), environment.New(), items)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	// 4 items, k=2 permutations = 4*3 = 12 total; every one has x != y at
	// the position level except where both positions hold value 4, i.e.
	// positions (1,2) and (2,1) -- 2 of the 12 excluded -> 10 remain.
	if len(envs) != 10 {
		t.Fatalf("got %d surviving tuples, want 10", len(envs))
	}
}

func TestMultiProjectionProducesTriples(t *testing.T) {
	items := []value.Value{value.Integer{Value: 3}, value.Integer{Value: 4}}
	mproj := query.MultiProjection{
		Predicate: query.MultiPredicate{
			Capture: query.MultiCapture{Captures: []query.Capture{
				{Pattern: &ast.IdentifierPattern{Name: "x"}},
				{Pattern: &ast.IdentifierPattern{Name: "y"}},
			}},
			Guard: &ast.BinaryExpr{Op: ast.OpNeq, Left: &ast.Identifier{Name: "x"}, Right: &ast.Identifier{Name: "y"}},
		},
		Projections: []ast.Expression{&ast.ArrayExpr{Items: []ast.ArrayItem{
			{Expr: &ast.Identifier{Name: "x"}},
			{Expr: &ast.Identifier{Name: "y"}},
			{Expr: &ast.BinaryExpr{Op: ast.OpMul, Left: &ast.Identifier{Name: "x"}, Right: &ast.Identifier{Name: "y"}}},
		}}},
	}
	out, err := mproj.Map(evaluator.New(), environment.New(), items)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	// two distinct items -> 2 ordered pairs (3,4) and (4,3).
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}
	first := out[0].(value.Array)
	if !first.Items[0].Equal(value.Integer{Value: 3}) || !first.Items[2].Equal(value.Integer{Value: 12}) {
		t.Fatalf("got %v, want [3,4,12]", first)
	}
}
