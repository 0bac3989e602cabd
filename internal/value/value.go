// Package value implements the Damasc runtime value model: a small tagged
// union of JSON-like values plus lambdas, following the same one-struct-
// per-case shape the teacher evaluator uses for its Object union.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TypeTag enumerates the runtime type tags a value can carry.
type TypeTag int

const (
	TypeNull TypeTag = iota
	TypeBoolean
	TypeInteger
	TypeString
	TypeArray
	TypeObject
	TypeType
	TypeLambda
)

func (t TypeTag) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeBoolean:
		return "Boolean"
	case TypeInteger:
		return "Integer"
	case TypeString:
		return "String"
	case TypeArray:
		return "Array"
	case TypeObject:
		return "Object"
	case TypeType:
		return "Type"
	case TypeLambda:
		return "Lambda"
	default:
		return "Unknown"
	}
}

// ParseTypeTag resolves one of the surface type names to its TypeTag.
func ParseTypeTag(name string) (TypeTag, bool) {
	switch name {
	case "Null":
		return TypeNull, true
	case "Boolean":
		return TypeBoolean, true
	case "Integer":
		return TypeInteger, true
	case "String":
		return TypeString, true
	case "Array":
		return TypeArray, true
	case "Object":
		return TypeObject, true
	case "Type":
		return TypeType, true
	case "Lambda":
		return TypeLambda, true
	default:
		return 0, false
	}
}

// Value is the common interface every runtime value satisfies, mirroring
// the teacher's Object interface (Type/Inspect) but renamed to the spec's
// own vocabulary (Tag/String) and adding the structural Equal used
// pervasively by the matcher, evaluator and join engine.
type Value interface {
	Tag() TypeTag
	String() string
	Equal(other Value) bool
}

// Null is the single value of type Null.
type Null struct{}

func (Null) Tag() TypeTag       { return TypeNull }
func (Null) String() string     { return "null" }
func (Null) Equal(o Value) bool { _, ok := o.(Null); return ok }

// Boolean wraps a bool.
type Boolean struct{ Value bool }

func (b Boolean) Tag() TypeTag   { return TypeBoolean }
func (b Boolean) String() string { return strconv.FormatBool(b.Value) }
func (b Boolean) Equal(o Value) bool {
	ob, ok := o.(Boolean)
	return ok && ob.Value == b.Value
}

// Integer wraps an int64 (the spec's only numeric type).
type Integer struct{ Value int64 }

func (i Integer) Tag() TypeTag   { return TypeInteger }
func (i Integer) String() string { return strconv.FormatInt(i.Value, 10) }
func (i Integer) Equal(o Value) bool {
	oi, ok := o.(Integer)
	return ok && oi.Value == i.Value
}

// String wraps a text value.
type String struct{ Value string }

func (s String) Tag() TypeTag   { return TypeString }
func (s String) String() string { return s.Value }
func (s String) Equal(o Value) bool {
	os_, ok := o.(String)
	return ok && os_.Value == s.Value
}

// Array is an insertion-ordered sequence of values.
type Array struct{ Items []Value }

func (a Array) Tag() TypeTag { return TypeArray }
func (a Array) String() string {
	parts := make([]string, len(a.Items))
	for i, it := range a.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a Array) Equal(o Value) bool {
	oa, ok := o.(Array)
	if !ok || len(oa.Items) != len(a.Items) {
		return false
	}
	for i := range a.Items {
		if !a.Items[i].Equal(oa.Items[i]) {
			return false
		}
	}
	return true
}

// Field is a single key/value pair of an Object, kept sorted by Key —
// grounded on the teacher's RecordInstance ([]RecordField sorted by Key).
type Field struct {
	Key   string
	Value Value
}

// Object is an ordered mapping of unique string keys to values; iteration
// order is the sorted key order (spec §3 invariant).
type Object struct{ Fields []Field }

// NewObject builds an Object from a map, sorting the fields by key.
func NewObject(m map[string]Value) Object {
	fields := make([]Field, 0, len(m))
	for k, v := range m {
		fields = append(fields, Field{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })
	return Object{Fields: fields}
}

// Get returns the value for key and whether it was present.
func (o Object) Get(key string) (Value, bool) {
	idx := sort.Search(len(o.Fields), func(i int) bool { return o.Fields[i].Key >= key })
	if idx < len(o.Fields) && o.Fields[idx].Key == key {
		return o.Fields[idx].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Put returns a copy of o with key set to val (insert or overwrite),
// preserving sorted order. Objects are immutable once constructed.
func (o Object) Put(key string, val Value) Object {
	idx := sort.Search(len(o.Fields), func(i int) bool { return o.Fields[i].Key >= key })
	if idx < len(o.Fields) && o.Fields[idx].Key == key {
		next := make([]Field, len(o.Fields))
		copy(next, o.Fields)
		next[idx].Value = val
		return Object{Fields: next}
	}
	next := make([]Field, len(o.Fields)+1)
	copy(next[:idx], o.Fields[:idx])
	next[idx] = Field{Key: key, Value: val}
	copy(next[idx+1:], o.Fields[idx:])
	return Object{Fields: next}
}

// Without returns a copy of o with key removed, if present.
func (o Object) Without(key string) Object {
	idx := sort.Search(len(o.Fields), func(i int) bool { return o.Fields[i].Key >= key })
	if idx >= len(o.Fields) || o.Fields[idx].Key != key {
		return o
	}
	next := make([]Field, 0, len(o.Fields)-1)
	next = append(next, o.Fields[:idx]...)
	next = append(next, o.Fields[idx+1:]...)
	return Object{Fields: next}
}

func (o Object) Tag() TypeTag { return TypeObject }
func (o Object) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Key, f.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (o Object) Equal(other Value) bool {
	oo, ok := other.(Object)
	if !ok || len(oo.Fields) != len(o.Fields) {
		return false
	}
	for i := range o.Fields {
		if o.Fields[i].Key != oo.Fields[i].Key || !o.Fields[i].Value.Equal(oo.Fields[i].Value) {
			return false
		}
	}
	return true
}

// Lambda values are defined in package evaluator (evaluator.Lambda), not
// here: a Lambda carries a captured *environment.Env plus an ast.Pattern
// and ast.Expression, and environment.Env must itself store Value —
// defining Lambda alongside Environment avoids an import cycle while
// still satisfying this package's Value interface structurally.

// Type wraps a TypeTag as a first-class value (the result of the `type`
// builtin and the right-hand side of `is`/`as`).
type Type struct{ Tag_ TypeTag }

func (t Type) Tag() TypeTag   { return TypeType }
func (t Type) String() string { return t.Tag_.String() }
func (t Type) Equal(o Value) bool {
	ot, ok := o.(Type)
	return ok && ot.Tag_ == t.Tag_
}
