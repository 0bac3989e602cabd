package value

import "testing"

func TestConvertSameTypeIsIdentity(t *testing.T) {
	values := []Value{
		Null{}, Boolean{Value: true}, Integer{Value: 7}, String{Value: "x"},
		Array{Items: []Value{Integer{Value: 1}}}, NewObject(map[string]Value{"a": Integer{Value: 1}}),
		Type{Tag_: TypeInteger},
	}
	for _, v := range values {
		got, ok := ConvertTo(v, v.Tag())
		if !ok {
			t.Fatalf("ConvertTo(%v, %v) failed", v, v.Tag())
		}
		if !got.Equal(v) {
			t.Errorf("v as type(v) = %v, want %v", got, v)
		}
	}
}

func TestConvertToType(t *testing.T) {
	got, ok := ConvertTo(Integer{Value: 1}, TypeType)
	if !ok || !got.Equal(Type{Tag_: TypeInteger}) {
		t.Fatalf("Integer as Type = %v, %v", got, ok)
	}
}

func TestConvertNullConversions(t *testing.T) {
	tests := []struct {
		target TypeTag
		want   Value
	}{
		{TypeString, String{Value: "null"}},
		{TypeInteger, Integer{Value: 0}},
		{TypeBoolean, Boolean{Value: false}},
		{TypeArray, Array{Items: nil}},
		{TypeObject, NewObject(nil)},
	}
	for _, tt := range tests {
		got, ok := ConvertTo(Null{}, tt.target)
		if !ok {
			t.Fatalf("Null as %v failed", tt.target)
		}
		if !got.Equal(tt.want) {
			t.Errorf("Null as %v = %v, want %v", tt.target, got, tt.want)
		}
	}
}

func TestConvertIntegerBooleanToStringAndInteger(t *testing.T) {
	i := Integer{Value: 1}
	s, ok := ConvertTo(i, TypeString)
	if !ok {
		t.Fatal("Integer as String failed")
	}
	if s.(String).Value != "1" {
		t.Fatalf("Integer(1) as String = %q", s.(String).Value)
	}

	b := Boolean{Value: true}
	bs, ok := ConvertTo(b, TypeString)
	if !ok || bs.(String).Value != "true" {
		t.Fatalf("Boolean(true) as String = %v, %v", bs, ok)
	}
	bi, ok := ConvertTo(b, TypeInteger)
	if !ok || !bi.Equal(Integer{Value: 1}) {
		t.Fatalf("Boolean(true) as Integer = %v, %v", bi, ok)
	}
}

func TestConvertObjectToArrayBooleanInteger(t *testing.T) {
	o := NewObject(map[string]Value{"a": Integer{Value: 1}, "b": Integer{Value: 2}})
	arr, ok := ConvertTo(o, TypeArray)
	if !ok {
		t.Fatal("Object as Array failed")
	}
	if len(arr.(Array).Items) != 2 {
		t.Fatalf("Object as Array had %d items, want 2", len(arr.(Array).Items))
	}

	b, ok := ConvertTo(o, TypeBoolean)
	if !ok || !b.Equal(Boolean{Value: true}) {
		t.Fatalf("non-empty Object as Boolean = %v, %v", b, ok)
	}
	empty := NewObject(nil)
	b, ok = ConvertTo(empty, TypeBoolean)
	if !ok || !b.Equal(Boolean{Value: false}) {
		t.Fatalf("empty Object as Boolean = %v, %v", b, ok)
	}

	n, ok := ConvertTo(o, TypeInteger)
	if !ok || !n.Equal(Integer{Value: 2}) {
		t.Fatalf("Object as Integer = %v, %v", n, ok)
	}
}

func TestConvertStringToArrayOfChars(t *testing.T) {
	arr, ok := ConvertTo(String{Value: "ab"}, TypeArray)
	if !ok {
		t.Fatal("String as Array failed")
	}
	items := arr.(Array).Items
	if len(items) != 2 || !items[0].Equal(String{Value: "a"}) || !items[1].Equal(String{Value: "b"}) {
		t.Fatalf("String(\"ab\") as Array = %v", items)
	}
}

func TestConvertUndefinedPairFails(t *testing.T) {
	if _, ok := ConvertTo(Array{}, TypeObject); ok {
		t.Error("Array as Object should have no defined conversion")
	}
	if _, ok := ConvertTo(Boolean{Value: true}, TypeArray); ok {
		t.Error("Boolean as Array should have no defined conversion")
	}
}
