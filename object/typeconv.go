package object

import (
	"fmt"
	"strconv"

	"github.com/deepnoodle-ai/quantexpr/errz"
)

// AsFloat coerces an object to float64 using the engine's widening rules:
// Int converts, Float is identity, Bool becomes 0.0 or 1.0, String is
// parsed as a number. Any other type is a type error. Both execution
// backends use this coercion for arithmetic and comparison operands.
func AsFloat(obj Object) (float64, *errz.Error) {
	switch obj := obj.(type) {
	case *Int:
		return float64(obj.value), nil
	case *Float:
		return obj.value, nil
	case *Bool:
		if obj.value {
			return 1.0, nil
		}
		return 0.0, nil
	case *String:
		v, err := strconv.ParseFloat(obj.value, 64)
		if err != nil {
			return 0, errz.TypeErrorf("cannot parse %q as a number", obj.value)
		}
		return v, nil
	default:
		return 0, errz.TypeErrorf("expected a number (got %s)", obj.Type())
	}
}

// AsBool coerces an object to bool: Bool is identity, Int and Float are
// true when non-zero. Any other type is a type error.
func AsBool(obj Object) (bool, *errz.Error) {
	switch obj := obj.(type) {
	case *Bool:
		return obj.value, nil
	case *Int:
		return obj.value != 0, nil
	case *Float:
		return obj.value != 0.0, nil
	default:
		return false, errz.TypeErrorf("expected a boolean (got %s)", obj.Type())
	}
}

// FromGoType converts a native Go value into an Object. Maps and slices
// are converted recursively. An unsupported type is an error.
func FromGoType(value interface{}) (Object, error) {
	switch value := value.(type) {
	case Object:
		return value, nil
	case nil:
		return nil, fmt.Errorf("type error: cannot convert nil")
	case bool:
		return NewBool(value), nil
	case int:
		return NewInt(int64(value)), nil
	case int32:
		return NewInt(int64(value)), nil
	case int64:
		return NewInt(value), nil
	case float32:
		return NewFloat(float64(value)), nil
	case float64:
		return NewFloat(value), nil
	case string:
		return NewString(value), nil
	case []float64:
		return NewFloatSlice(value), nil
	case map[string]interface{}:
		items := make(map[string]Object, len(value))
		for k, v := range value {
			obj, err := FromGoType(v)
			if err != nil {
				return nil, err
			}
			items[k] = obj
		}
		return NewMap(items), nil
	case map[string]Object:
		return NewMap(value), nil
	default:
		return nil, fmt.Errorf("type error: unsupported type %T", value)
	}
}

// AsObjects converts a map of native Go values into a map of Objects.
func AsObjects(values map[string]interface{}) (map[string]Object, error) {
	result := make(map[string]Object, len(values))
	for k, v := range values {
		obj, err := FromGoType(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", k, err)
		}
		result[k] = obj
	}
	return result, nil
}
