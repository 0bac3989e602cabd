package value

import (
	"testing"

	"github.com/laszlokorte/damasc/internal/ast"
)

func TestTypeTagRoundTrip(t *testing.T) {
	for _, name := range []string{"Null", "Boolean", "Integer", "String", "Array", "Object", "Type", "Lambda"} {
		tag, ok := ParseTypeTag(name)
		if !ok {
			t.Fatalf("ParseTypeTag(%q) failed", name)
		}
		if got := tag.String(); got != name {
			t.Errorf("TypeTag(%q).String() = %q, want %q", name, got, name)
		}
	}
	if _, ok := ParseTypeTag("Nonsense"); ok {
		t.Error("ParseTypeTag(\"Nonsense\") unexpectedly succeeded")
	}
}

func TestObjectOrderedByKey(t *testing.T) {
	o := NewObject(map[string]Value{
		"z": Integer{Value: 1},
		"a": Integer{Value: 2},
		"m": Integer{Value: 3},
	})
	want := []string{"a", "m", "z"}
	for i, f := range o.Fields {
		if f.Key != want[i] {
			t.Fatalf("Fields[%d].Key = %q, want %q", i, f.Key, want[i])
		}
	}
}

func TestObjectPutWithoutPreserveOrder(t *testing.T) {
	o := NewObject(map[string]Value{"a": Integer{Value: 1}, "c": Integer{Value: 3}})
	o = o.Put("b", Integer{Value: 2})
	keys := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		keys[i] = f.Key
	}
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Fatalf("unexpected key order after Put: %v", keys)
	}
	o = o.Without("b")
	if o.Has("b") {
		t.Fatal("expected key b removed")
	}
	if len(o.Fields) != 2 {
		t.Fatalf("expected 2 fields after Without, got %d", len(o.Fields))
	}
}

func TestArrayEqual(t *testing.T) {
	a := Array{Items: []Value{Integer{Value: 1}, String{Value: "x"}}}
	b := Array{Items: []Value{Integer{Value: 1}, String{Value: "x"}}}
	c := Array{Items: []Value{Integer{Value: 1}, String{Value: "y"}}}
	if !a.Equal(b) {
		t.Error("expected a == b")
	}
	if a.Equal(c) {
		t.Error("expected a != c")
	}
}

func TestEqualDifferentTypesAreUnequal(t *testing.T) {
	if (Integer{Value: 1}).Equal(String{Value: "1"}) {
		t.Error("Integer(1) should not equal String(\"1\")")
	}
	if (Null{}).Equal(Boolean{Value: false}) {
		t.Error("Null should not equal Boolean(false)")
	}
}

func TestFromLiteral(t *testing.T) {
	tests := []struct {
		name string
		lit  *ast.Literal
		want Value
	}{
		{"null", &ast.Literal{Kind: ast.LiteralNull}, Null{}},
		{"true", &ast.Literal{Kind: ast.LiteralBool, Bool: true}, Boolean{Value: true}},
		{"string", &ast.Literal{Kind: ast.LiteralString, Text: "hi"}, String{Value: "hi"}},
		{"integer", &ast.Literal{Kind: ast.LiteralInteger, Text: "42"}, Integer{Value: 42}},
		{"negative", &ast.Literal{Kind: ast.LiteralInteger, Text: "-7"}, Integer{Value: -7}},
		{"type", &ast.Literal{Kind: ast.LiteralType, Type: "Array"}, Type{Tag_: TypeArray}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromLiteral(tt.lit)
			if err != nil {
				t.Fatalf("FromLiteral: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FromLiteral(%v) = %v, want %v", tt.lit, got, tt.want)
			}
		})
	}
}

func TestFromLiteralInvalidNumber(t *testing.T) {
	_, err := FromLiteral(&ast.Literal{Kind: ast.LiteralInteger, Text: "not-a-number"})
	if err == nil {
		t.Fatal("expected error for invalid integer literal")
	}
}
