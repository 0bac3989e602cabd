package topology_test

import (
	"testing"

	"github.com/laszlokorte/damasc/internal/ast"
	"github.com/laszlokorte/damasc/internal/damascerr"
	"github.com/laszlokorte/damasc/internal/topology"
)

func ident(name string) *ast.IdentifierPattern { return &ast.IdentifierPattern{Name: name} }

func TestSortOrdersByDependency(t *testing.T) {
	// x = y + 1 ; y = 2   must be reordered to y first, x second.
	stmts := []topology.Statement{
		{Pattern: ident("x"), Expression: &ast.BinaryExpr{Op: ast.OpAdd,
			Left: &ast.Identifier{Name: "y"}, Right: &ast.Literal{Kind: ast.LiteralInteger, Text: "1"}}},
		{Pattern: ident("y"), Expression: &ast.Literal{Kind: ast.LiteralInteger, Text: "2"}},
	}
	ordered, err := topology.Sort(stmts)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if len(ordered) != 2 {
		t.Fatalf("got %d statements, want 2", len(ordered))
	}
	if ordered[0].Pattern.(*ast.IdentifierPattern).Name != "y" {
		t.Fatalf("expected y first, got %v", ordered[0].Pattern)
	}
}

func TestSortDetectsCycle(t *testing.T) {
	// x = y ; y = x  -- a genuine cycle.
	stmts := []topology.Statement{
		{Pattern: ident("x"), Expression: &ast.Identifier{Name: "y"}},
		{Pattern: ident("y"), Expression: &ast.Identifier{Name: "x"}},
	}
	_, err := topology.Sort(stmts)
	if _, ok := err.(*damascerr.TopologyError); !ok {
		t.Fatalf("expected TopologyError, got %v", err)
	}
}

func TestSortIsStableForIndependentStatements(t *testing.T) {
	stmts := []topology.Statement{
		{Pattern: ident("a"), Expression: &ast.Literal{Kind: ast.LiteralInteger, Text: "1"}},
		{Pattern: ident("b"), Expression: &ast.Literal{Kind: ast.LiteralInteger, Text: "2"}},
	}
	ordered, err := topology.Sort(stmts)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if ordered[0].Pattern.(*ast.IdentifierPattern).Name != "a" || ordered[1].Pattern.(*ast.IdentifierPattern).Name != "b" {
		t.Fatalf("expected source order preserved for independent statements, got %v", ordered)
	}
}
