package resolver

import (
	"reflect"
	"strings"
)

// Fallback is the default-resolver strategy consulted when no resolver is
// bound for a field. It is an explicit object rather than implicit behavior
// so its precedence below bound resolvers stays observable in tests.
type Fallback interface {
	Resolve(source any, fieldName string) (any, error)
}

// PropertyFallback reads a same-named property from the parent value: a map
// key, an exported struct field matching the name (case-insensitive), or a
// struct field whose json tag matches. Missing properties resolve to null,
// mirroring the trivial-resolver behavior of common GraphQL servers.
type PropertyFallback struct{}

func (PropertyFallback) Resolve(source any, fieldName string) (any, error) {
	if source == nil {
		return nil, nil
	}

	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		mv := v.MapIndex(reflect.ValueOf(fieldName))
		if !mv.IsValid() {
			return nil, nil
		}
		return mv.Interface(), nil

	case reflect.Struct:
		if fv := structProperty(v, fieldName); fv.IsValid() {
			return fv.Interface(), nil
		}
		return nil, nil

	default:
		return nil, nil
	}
}

func structProperty(v reflect.Value, fieldName string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, ok := sf.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == fieldName {
				return v.Field(i)
			}
		}
		if strings.EqualFold(sf.Name, fieldName) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
