package schema

import (
	"strconv"

	language "github.com/aviodev/graphlet/internal/language"
)

// BuildFromSDL parses SDL and returns a finalized registry.
//
// Root operation types come from the schema definition block when present,
// otherwise from the conventional Query/Mutation/Subscription names. Field
// and enum-value deprecation is read from @deprecated directives.
func BuildFromSDL(name, sdl string) (*Registry, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, err
	}

	reg := NewRegistry(schemaDescription(doc))

	queryType, mutationType, subscriptionType := "Query", "Mutation", "Subscription"
	for _, sd := range doc.Schema {
		for _, op := range sd.OperationTypes {
			switch op.Operation {
			case language.Query:
				queryType = op.Type
			case language.Mutation:
				mutationType = op.Type
			case language.Subscription:
				subscriptionType = op.Type
			}
		}
	}

	for _, def := range doc.Definitions {
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	for _, dd := range doc.Directives {
		d := NewDirective(dd.Name, dd.Description).SetRepeatable(dd.IsRepeatable)
		for _, loc := range dd.Locations {
			d.AddLocations(string(loc))
		}
		for _, arg := range dd.Arguments {
			d.AddArgument(buildArgument(arg))
		}
		if err := reg.RegisterDirective(d); err != nil {
			return nil, err
		}
	}

	if reg.Type(queryType) != nil {
		reg.SetQueryType(queryType)
	}
	if reg.Type(mutationType) != nil {
		reg.SetMutationType(mutationType)
	}
	if reg.Type(subscriptionType) != nil {
		reg.SetSubscriptionType(subscriptionType)
	}

	reg.Finalize()
	return reg, nil
}

func schemaDescription(doc *language.SchemaDocument) string {
	for _, sd := range doc.Schema {
		if sd.Description != "" {
			return sd.Description
		}
	}
	return ""
}

func buildDefinition(def *language.Definition) (*Type, error) {
	switch def.Kind {
	case language.Object, language.Interface:
		kind := TypeKindObject
		if def.Kind == language.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, fd := range def.Fields {
			t.AddField(buildFieldDefinition(fd))
		}
		return t, nil
	case language.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
		return t, nil
	case language.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, ev := range def.EnumValues {
			v := NewEnumValue(ev.Name, ev.Description)
			if reason, ok := deprecation(ev.Directives); ok {
				v.Deprecate(reason)
			}
			t.AddEnumValue(v)
		}
		return t, nil
	case language.Scalar:
		return NewType(def.Name, TypeKindScalar, def.Description), nil
	case language.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description)
		for _, fd := range def.Fields {
			v := NewInputValue(fd.Name, fd.Description, typeRefFromAST(fd.Type)).
				SetDefault(sdlValueToGo(fd.DefaultValue))
			if reason, ok := deprecation(fd.Directives); ok {
				v.Deprecate(reason)
			}
			t.AddInputField(v)
		}
		return t, nil
	default:
		return NewType(def.Name, TypeKindScalar, def.Description), nil
	}
}

func buildFieldDefinition(fd *language.FieldDefinition) *Field {
	f := NewField(fd.Name, fd.Description, typeRefFromAST(fd.Type))
	for _, arg := range fd.Arguments {
		f.AddArgument(buildArgument(arg))
	}
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	return f
}

func buildArgument(arg *language.ArgumentDefinition) *InputValue {
	v := NewInputValue(arg.Name, arg.Description, typeRefFromAST(arg.Type)).
		SetDefault(sdlValueToGo(arg.DefaultValue))
	if reason, ok := deprecation(arg.Directives); ok {
		v.Deprecate(reason)
	}
	return v
}

// deprecation extracts the @deprecated reason from a directive list.
func deprecation(directives language.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	reason := "No longer supported"
	for _, arg := range d.Arguments {
		if arg.Name == "reason" && arg.Value != nil {
			reason = arg.Value.Raw
		}
	}
	return reason, true
}

func typeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

// sdlValueToGo converts a literal default value from the SDL AST.
func sdlValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = sdlValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = sdlValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}
