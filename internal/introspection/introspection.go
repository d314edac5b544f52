// Package introspection grafts the __schema/__type meta fields onto a
// schema registry and binds their resolvers into a resolver table, exposing
// type and deprecation metadata without touching execution semantics.
package introspection

import (
	"context"
	"fmt"
	"sort"

	resolver "github.com/aviodev/graphlet/internal/resolver"
	schema "github.com/aviodev/graphlet/internal/schema"
)

// Enable returns a registry extended with the introspection meta types and
// binds the meta-field resolvers into table. It must run before the table
// is frozen. Introspection queries observe the original registry, so meta
// types never appear in their own output.
func Enable(original *schema.Registry, table *resolver.Table) (*schema.Registry, error) {
	extended := extendRegistry(original)

	queryType := original.QueryType()
	if queryType == nil {
		return nil, fmt.Errorf("introspection requires a query root type")
	}

	bindings := map[[2]string]resolver.Func{
		{queryType.Name, "__schema"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			return original, nil
		},
		{queryType.Name, "__type"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			name, _ := args["name"].(string)
			if t := original.Type(name); t != nil {
				return t, nil
			}
			return nil, nil
		},

		{"__Schema", "types"}:            schemaField(resolveSchemaTypes),
		{"__Schema", "queryType"}:        schemaField(func(r *schema.Registry) any { return r.QueryType() }),
		{"__Schema", "mutationType"}:     schemaField(func(r *schema.Registry) any { return nilableType(r.MutationType()) }),
		{"__Schema", "subscriptionType"}: schemaField(func(r *schema.Registry) any { return nilableType(r.SubscriptionType()) }),
		{"__Schema", "directives"}:       schemaField(resolveSchemaDirectives),
		{"__Schema", "description"}:      schemaField(func(r *schema.Registry) any { return r.Description() }),

		{"__Type", "kind"}:          typeField(original, resolveTypeKind),
		{"__Type", "name"}:          typeField(original, resolveTypeName),
		{"__Type", "description"}:   typeField(original, resolveTypeDescription),
		{"__Type", "fields"}:        typeField(original, resolveTypeFields),
		{"__Type", "interfaces"}:    typeField(original, resolveTypeInterfaces),
		{"__Type", "possibleTypes"}: typeField(original, resolveTypePossibleTypes),
		{"__Type", "enumValues"}:    typeField(original, resolveTypeEnumValues),
		{"__Type", "inputFields"}:   typeField(original, resolveTypeInputFields),
		{"__Type", "ofType"}:        typeField(original, resolveTypeOfType),

		{"__Field", "args"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			f := source.(*schema.Field)
			return filterInputValues(f.Arguments, boolArg(args, "includeDeprecated", false)), nil
		},
		{"__Field", "type"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			return source.(*schema.Field).Type, nil
		},
		{"__Field", "deprecationReason"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			f := source.(*schema.Field)
			return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
		},

		{"__InputValue", "type"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			return source.(*schema.InputValue).Type, nil
		},
		{"__InputValue", "defaultValue"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			v := source.(*schema.InputValue)
			if v.DefaultValue == nil {
				return nil, nil
			}
			return fmt.Sprintf("%v", v.DefaultValue), nil
		},
		{"__InputValue", "deprecationReason"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			v := source.(*schema.InputValue)
			return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
		},

		{"__EnumValue", "deprecationReason"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			v := source.(*schema.EnumValue)
			return deprecationReason(v.IsDeprecated, v.DeprecationReason), nil
		},

		{"__Directive", "locations"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			return source.(*schema.Directive).Locations, nil
		},
		{"__Directive", "args"}: func(ctx context.Context, source any, args map[string]any) (any, error) {
			d := source.(*schema.Directive)
			return filterInputValues(d.Arguments, boolArg(args, "includeDeprecated", false)), nil
		},
	}

	// Remaining meta fields (name, description, isDeprecated, isRepeatable)
	// read same-named properties, which the table's fallback covers.
	for k, fn := range bindings {
		if err := table.Bind(k[0], k[1], fn); err != nil {
			return nil, err
		}
	}

	return extended, nil
}

// schemaField adapts a registry accessor into a resolver.
func schemaField(fn func(*schema.Registry) any) resolver.Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		r, ok := source.(*schema.Registry)
		if !ok {
			return nil, fmt.Errorf("__Schema resolver received %T", source)
		}
		return fn(r), nil
	}
}

// typeField adapts a dual-source accessor: __Type values are either named
// type definitions or LIST/NON_NULL wrapper references.
func typeField(reg *schema.Registry, fn func(*schema.Registry, *schema.Type, *schema.TypeRef, map[string]any) any) resolver.Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		switch src := source.(type) {
		case *schema.Type:
			return fn(reg, src, nil, args), nil
		case *schema.TypeRef:
			if src.Kind == schema.TypeRefKindNamed {
				if def := reg.Type(src.Named); def != nil {
					return fn(reg, def, nil, args), nil
				}
			}
			return fn(reg, nil, src, args), nil
		default:
			return nil, fmt.Errorf("__Type resolver received %T", source)
		}
	}
}

func resolveTypeKind(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t != nil {
		return string(t.Kind)
	}
	switch ref.Kind {
	case schema.TypeRefKindList:
		return "LIST"
	case schema.TypeRefKindNonNull:
		return "NON_NULL"
	default:
		return "SCALAR"
	}
}

func resolveTypeName(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t != nil {
		return t.Name
	}
	return nil
}

func resolveTypeDescription(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t != nil && t.Description != "" {
		return t.Description
	}
	return nil
}

func resolveTypeFields(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t == nil || (t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface) {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.Field{}
	for _, f := range t.Fields {
		if !includeDeprecated && f.IsDeprecated {
			continue
		}
		out = append(out, f)
	}
	return out
}

func resolveTypeInterfaces(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t == nil || (t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface) {
		return nil
	}
	out := []*schema.Type{}
	for _, name := range t.Interfaces {
		if def := reg.Type(name); def != nil {
			out = append(out, def)
		}
	}
	return out
}

func resolveTypePossibleTypes(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.TypeKindUnion:
		out := []*schema.Type{}
		for _, name := range t.PossibleTypes {
			if def := reg.Type(name); def != nil {
				out = append(out, def)
			}
		}
		return out
	case schema.TypeKindInterface:
		out := []*schema.Type{}
		for _, name := range reg.TypeNames() {
			def := reg.Type(name)
			if def.Kind != schema.TypeKindObject {
				continue
			}
			for _, iface := range def.Interfaces {
				if iface == t.Name {
					out = append(out, def)
					break
				}
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	default:
		return nil
	}
}

func resolveTypeEnumValues(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t == nil || t.Kind != schema.TypeKindEnum {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.EnumValue{}
	for _, ev := range t.EnumValues {
		if !includeDeprecated && ev.IsDeprecated {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func resolveTypeInputFields(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if t == nil || t.Kind != schema.TypeKindInputObject {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.InputValue{}
	for _, iv := range t.InputFields {
		if !includeDeprecated && iv.IsDeprecated {
			continue
		}
		out = append(out, iv)
	}
	return out
}

func resolveTypeOfType(reg *schema.Registry, t *schema.Type, ref *schema.TypeRef, args map[string]any) any {
	if ref != nil && (ref.Kind == schema.TypeRefKindList || ref.Kind == schema.TypeRefKindNonNull) {
		return ref.OfType
	}
	return nil
}

func resolveSchemaTypes(r *schema.Registry) any {
	names := r.TypeNames()
	sort.Strings(names)
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		out = append(out, r.Type(name))
	}
	return out
}

func resolveSchemaDirectives(r *schema.Registry) any {
	dirs := r.Directives()
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs
}

func nilableType(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func boolArg(args map[string]any, name string, fallback bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return fallback
}

func filterInputValues(values []*schema.InputValue, includeDeprecated bool) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range values {
		if !includeDeprecated && v.IsDeprecated {
			continue
		}
		out = append(out, v)
	}
	return out
}
