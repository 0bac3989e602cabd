package value

// ConvertTo implements the `as` conversion table from spec §4.2. It
// returns the converted value, or ok=false if the pair of types has no
// defined conversion (callers raise the Cast error in that case).
func ConvertTo(v Value, target TypeTag) (Value, bool) {
	if v.Tag() == target {
		return v, true
	}

	switch target {
	case TypeType:
		return Type{Tag_: v.Tag()}, true
	case TypeString:
		switch t := v.(type) {
		case Null:
			return String{Value: "null"}, true
		case Type:
			return String{Value: t.Tag_.String()}, true
		case Integer:
			return String{Value: t.String()}, true
		case Boolean:
			return String{Value: t.String()}, true
		}
		return nil, false
	}

	switch t := v.(type) {
	case Null:
		switch target {
		case TypeInteger:
			return Integer{Value: 0}, true
		case TypeBoolean:
			return Boolean{Value: false}, true
		case TypeArray:
			return Array{Items: nil}, true
		case TypeObject:
			return NewObject(nil), true
		}
	case Object:
		switch target {
		case TypeArray:
			items := make([]Value, len(t.Fields))
			for i, f := range t.Fields {
				items[i] = f.Value
			}
			return Array{Items: items}, true
		case TypeBoolean:
			return Boolean{Value: len(t.Fields) > 0}, true
		case TypeInteger:
			return Integer{Value: int64(len(t.Fields))}, true
		}
	case Array:
		switch target {
		case TypeBoolean:
			return Boolean{Value: len(t.Items) > 0}, true
		case TypeInteger:
			return Integer{Value: int64(len(t.Items))}, true
		}
	case String:
		switch target {
		case TypeBoolean:
			return Boolean{Value: t.Value != ""}, true
		case TypeArray:
			runes := []rune(t.Value)
			items := make([]Value, len(runes))
			for i, r := range runes {
				items[i] = String{Value: string(r)}
			}
			return Array{Items: items}, true
		}
	case Integer:
		switch target {
		case TypeBoolean:
			return Boolean{Value: t.Value != 0}, true
		}
	case Boolean:
		switch target {
		case TypeInteger:
			if t.Value {
				return Integer{Value: 1}, true
			}
			return Integer{Value: 0}, true
		}
	}

	return nil, false
}
