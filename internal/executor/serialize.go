package executor

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"

	schema "github.com/aviodev/graphlet/internal/schema"
)

// serializeLeaf coerces a resolved scalar or enum value into a JSON-safe Go
// value. Enum results must be one of the declared value names. Custom
// scalars pass through untouched except for []byte, which becomes base64.
func serializeLeaf(typeObj *schema.Type, value any) (any, error) {
	value = normalizeLeaf(value)
	if value == nil {
		return nil, nil
	}
	if typeObj.Kind == schema.TypeKindEnum {
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("enum %s cannot serialize value of type %T", typeObj.Name, value)
		}
		for _, ev := range typeObj.EnumValues {
			if ev.Name == name {
				return name, nil
			}
		}
		return nil, fmt.Errorf("value %q is not a member of enum %s", name, typeObj.Name)
	}

	switch typeObj.Name {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		return serializeString(value)
	case "Boolean":
		return serializeBoolean(value)
	case "ID":
		return serializeID(value)
	default:
		if b, ok := value.([]byte); ok {
			return base64.StdEncoding.EncodeToString(b), nil
		}
		return value, nil
	}
}

// normalizeLeaf dereferences pointers and converts named basic types (for
// example a string-kinded enum type) to their underlying representation.
func normalizeLeaf(value any) any {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		if rv.IsValid() && rv.CanInterface() {
			return rv.Interface()
		}
		return value
	}
}

func serializeInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float64:
		if v == float64(int(v)) {
			return int(v), nil
		}
	}
	return nil, fmt.Errorf("cannot serialize %v (%T) as Int", value, value)
}

func serializeFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("cannot serialize %v (%T) as Float", value, value)
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return nil, fmt.Errorf("cannot serialize %v (%T) as String", value, value)
}

func serializeBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("cannot serialize %v (%T) as Boolean", value, value)
}

func serializeID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	}
	return nil, fmt.Errorf("cannot serialize %v (%T) as ID", value, value)
}
