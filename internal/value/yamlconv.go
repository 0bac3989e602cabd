package value

import "fmt"

// FromYAML converts a Go value produced by yaml.Unmarshal (ints, floats,
// bool, string, []interface{}, map[string]interface{} or
// map[interface{}]interface{}) into a runtime Value, for loading bag
// bundle snapshots (spec SPEC_FULL.md §4.8 "damasc join <file> — loads a
// join AST and bag bundle snapshot (YAML)"). Grounded on the teacher's
// yaml decode helper (funvibe-funxy/internal/evaluator/builtins_yaml.go
// inferFromYaml): same case-by-case dispatch over yaml.v3's decoded Go
// types, adapted to build value.Value instead of the teacher's Object
// union, and folding floats with an integral value into Integer since the
// spec has no Float case at all.
func FromYAML(data interface{}) (Value, error) {
	switch v := data.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Boolean{Value: v}, nil
	case int:
		return Integer{Value: int64(v)}, nil
	case int64:
		return Integer{Value: v}, nil
	case float64:
		if v == float64(int64(v)) {
			return Integer{Value: int64(v)}, nil
		}
		return nil, fmt.Errorf("non-integral number %v has no Damasc value representation", v)
	case string:
		return String{Value: v}, nil
	case []interface{}:
		items := make([]Value, len(v))
		for i, item := range v {
			val, err := FromYAML(item)
			if err != nil {
				return nil, err
			}
			items[i] = val
		}
		return Array{Items: items}, nil
	case map[string]interface{}:
		fields := make(map[string]Value, len(v))
		for k, val := range v {
			fv, err := FromYAML(val)
			if err != nil {
				return nil, err
			}
			fields[k] = fv
		}
		return NewObject(fields), nil
	case map[interface{}]interface{}:
		fields := make(map[string]Value, len(v))
		for k, val := range v {
			fv, err := FromYAML(val)
			if err != nil {
				return nil, err
			}
			fields[fmt.Sprintf("%v", k)] = fv
		}
		return NewObject(fields), nil
	default:
		return nil, fmt.Errorf("unsupported YAML value type %T", data)
	}
}
