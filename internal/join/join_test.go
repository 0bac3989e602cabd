package join_test

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/environment"
	"github.com/laszlokorte/damasc/internal/evaluator"
	"github.com/laszlokorte/damasc/internal/join"
	"github.com/laszlokorte/damasc/internal/value"
)

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LiteralInteger, Text: value.Integer{Value: n}.String()}
}

func TestRunSingleSourceFiltersByGuardAndDeletesConsumed(t *testing.T) {
	bundle := bag.NewBundle()
	items := bundle.Bag("items")
	items.Insert(value.Integer{Value: 1})
	items.Insert(value.Integer{Value: 2})
	items.Insert(value.Integer{Value: 3})

	j := join.Join{
		Sources: []join.Source{{
			Kind:     join.SourceNamed,
			Name:     "items",
			Patterns: []ast.Pattern{&ast.IdentifierPattern{Name: "x"}},
		}},
		Guard: &ast.BinaryExpr{Op: ast.OpGt, Left: &ast.Identifier{Name: "x"}, Right: intLit(1)},
		Sinks: []join.Sink{
			{Kind: join.SinkNamed, Name: "out", Expressions: []ast.Expression{
				&ast.BinaryExpr{Op: ast.OpMul, Left: &ast.Identifier{Name: "x"}, Right: intLit(10)},
			}},
			{Kind: join.SinkPrint, Expressions: []ast.Expression{&ast.Identifier{Name: "x"}}},
		},
	}

	txs, err := j.Run(evaluator.New(), environment.New(), bundle)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 3 candidates, guard x>1 passes for x=2 and x=3.
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	for _, tx := range txs {
		if len(tx.Insertions) != 1 || tx.Insertions[0].Bag != "out" {
			t.Fatalf("expected one insertion into out, got %v", tx.Insertions)
		}
		if len(tx.Printed) != 1 {
			t.Fatalf("expected one printed value, got %v", tx.Printed)
		}
		if len(tx.Deletions) != 1 || tx.Deletions[0].Bag != "items" {
			t.Fatalf("expected one deletion from items, got %v", tx.Deletions)
		}
	}
}

func TestRunTwoSourcesProducesCrossProduct(t *testing.T) {
	defer goleak.VerifyNone(t)

	bundle := bag.NewBundle()
	foo := bundle.Bag("foo")
	foo.Insert(value.Integer{Value: 1})
	foo.Insert(value.Integer{Value: 2})
	bar := bundle.Bag("bar")
	bar.Insert(value.Integer{Value: 10})
	bar.Insert(value.Integer{Value: 20})

	j := join.Join{
		Sources: []join.Source{
			{Kind: join.SourceNamed, Name: "foo", Patterns: []ast.Pattern{&ast.IdentifierPattern{Name: "x"}}},
			{Kind: join.SourceNamed, Name: "bar", Patterns: []ast.Pattern{&ast.IdentifierPattern{Name: "y"}}},
		},
		Sinks: []join.Sink{
			{Kind: join.SinkPrint, Expressions: []ast.Expression{
				&ast.BinaryExpr{Op: ast.OpAdd, Left: &ast.Identifier{Name: "x"}, Right: &ast.Identifier{Name: "y"}},
			}},
		},
	}

	txs, err := j.Run(evaluator.New(), environment.New(), bundle)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 2 x 2 cross product, no guard -> 4 rounds.
	if len(txs) != 4 {
		t.Fatalf("got %d transactions, want 4", len(txs))
	}
	for _, tx := range txs {
		if len(tx.Deletions) != 2 {
			t.Fatalf("expected 2 deletions (one per named source), got %v", tx.Deletions)
		}
	}
}

func TestRunConstantSourceNeverProducesDeletions(t *testing.T) {
	bundle := bag.NewBundle()
	j := join.Join{
		Sources: []join.Source{{
			Kind:     join.SourceConstant,
			Constant: []value.Value{value.Integer{Value: 5}, value.Integer{Value: 6}},
			Patterns: []ast.Pattern{&ast.IdentifierPattern{Name: "x"}},
		}},
		Sinks: []join.Sink{
			{Kind: join.SinkPrint, Expressions: []ast.Expression{&ast.Identifier{Name: "x"}}},
		},
	}
	txs, err := j.Run(evaluator.New(), environment.New(), bundle)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	for _, tx := range txs {
		if len(tx.Deletions) != 0 {
			t.Fatalf("constant source elements carry no identity, expected no deletions, got %v", tx.Deletions)
		}
	}
}

// TestRunManyCandidatesDoesNotLeakGoroutines exercises the data shape of
// spec §8 scenario 5 (foo ∋ x ⋈ bar ∋ [y], foo with a repeated value, bar
// with elements of varying length so only some match the single-element
// array pattern) at a scale large enough to be worth checking for leaked
// goroutines, not to pin down the scenario's exact tuple count (the spec
// itself calls that "depends on permutation enumeration").
func TestRunManyCandidatesDoesNotLeakGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	bundle := bag.NewBundle()
	foo := bundle.Bag("foo")
	for _, n := range []int64{22, 33, 44, 55, 66, 77, 77} {
		foo.Insert(value.Integer{Value: n})
	}
	bar := bundle.Bag("bar")
	barShapes := [][]int64{{77}, {44}, {66}, {66, 100}, {}}
	for _, shape := range barShapes {
		items := make([]value.Value, len(shape))
		for i, n := range shape {
			items[i] = value.Integer{Value: n}
		}
		bar.Insert(value.Array{Items: items})
	}

	j := join.Join{
		Sources: []join.Source{
			{Kind: join.SourceNamed, Name: "foo", Patterns: []ast.Pattern{&ast.IdentifierPattern{Name: "x"}}},
			{Kind: join.SourceNamed, Name: "bar", Patterns: []ast.Pattern{&ast.ArrayPattern{
				Items: []ast.Pattern{&ast.IdentifierPattern{Name: "y"}},
				Rest:  ast.RestExact,
			}}},
		},
		Sinks: []join.Sink{
			{Kind: join.SinkPrint, Expressions: []ast.Expression{&ast.Identifier{Name: "x"}}},
		},
	}

	txs, err := j.Run(evaluator.New(), environment.New(), bundle)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// foo has 7 elements (all match the bare identifier pattern); only the
	// 3 one-element bar arrays ([77],[44],[66]) match the exact-length
	// array pattern, so 7*3 = 21 rounds survive.
	if len(txs) != 21 {
		t.Fatalf("got %d transactions, want 21", len(txs))
	}
}

func TestRunPatternMismatchExcludesPermutation(t *testing.T) {
	bundle := bag.NewBundle()
	items := bundle.Bag("items")
	items.Insert(value.Integer{Value: 1})
	items.Insert(value.Boolean{Value: true})

	j := join.Join{
		Sources: []join.Source{{
			Kind:     join.SourceNamed,
			Name:     "items",
			Patterns: []ast.Pattern{&ast.TypedIdentifierPattern{TypeName: "Integer", Name: "x"}},
		}},
		Sinks: []join.Sink{
			{Kind: join.SinkPrint, Expressions: []ast.Expression{&ast.Identifier{Name: "x"}}},
		},
	}
	txs, err := j.Run(evaluator.New(), environment.New(), bundle)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1 (only the Integer element matches)", len(txs))
	}
}
