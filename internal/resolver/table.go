// Package resolver maps (type name, field name) pairs to resolver functions
// and dispatches field resolution during execution.
package resolver

import (
	"context"
	"fmt"
)

// Func produces the value of one schema field given the parent value, the
// coerced field arguments and the request context. Request-scoped data (for
// example an authenticated principal) travels on ctx. Returning an error
// fails only this field; siblings are unaffected.
type Func func(ctx context.Context, source any, args map[string]any) (any, error)

// TypeFunc returns the concrete object type name for a value of an abstract
// (interface or union) type.
type TypeFunc func(ctx context.Context, value any) (string, error)

// DuplicateResolverError reports a second Bind for the same field.
type DuplicateResolverError struct {
	Type  string
	Field string
}

func (e *DuplicateResolverError) Error() string {
	return fmt.Sprintf("resolver for %s.%s is already bound", e.Type, e.Field)
}

// FrozenError reports a Bind attempt after Freeze.
type FrozenError struct {
	Type  string
	Field string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("resolver table is frozen; cannot bind %s.%s", e.Type, e.Field)
}

type key struct {
	typeName string
	field    string
}

// Table holds at most one resolver per field plus an explicit fallback
// strategy used when no resolver is bound. Like the schema registry it is
// built once at startup, frozen, and then shared read-only across requests.
type Table struct {
	resolvers     map[key]Func
	typeResolvers map[string]TypeFunc
	fallback      Fallback
	frozen        bool
}

// NewTable creates an empty table with the property-reading fallback.
func NewTable() *Table {
	return &Table{
		resolvers:     make(map[key]Func),
		typeResolvers: make(map[string]TypeFunc),
		fallback:      PropertyFallback{},
	}
}

// SetFallback replaces the default-resolver strategy. A nil fallback makes
// unbound fields resolve to null.
func (t *Table) SetFallback(f Fallback) *Table {
	t.fallback = f
	return t
}

// Bind associates fn with (typeName, fieldName). Rebinding fails with
// *DuplicateResolverError; binding after Freeze fails with *FrozenError.
func (t *Table) Bind(typeName, fieldName string, fn Func) error {
	if t.frozen {
		return &FrozenError{Type: typeName, Field: fieldName}
	}
	k := key{typeName: typeName, field: fieldName}
	if _, exists := t.resolvers[k]; exists {
		return &DuplicateResolverError{Type: typeName, Field: fieldName}
	}
	t.resolvers[k] = fn
	return nil
}

// MustBind is Bind for static wiring; it panics on error.
func (t *Table) MustBind(typeName, fieldName string, fn Func) *Table {
	if err := t.Bind(typeName, fieldName, fn); err != nil {
		panic(err)
	}
	return t
}

// BindType associates a concrete-type resolver with an abstract type name.
func (t *Table) BindType(typeName string, fn TypeFunc) error {
	if t.frozen {
		return &FrozenError{Type: typeName}
	}
	if _, exists := t.typeResolvers[typeName]; exists {
		return &DuplicateResolverError{Type: typeName}
	}
	t.typeResolvers[typeName] = fn
	return nil
}

// Freeze makes the table immutable.
func (t *Table) Freeze() { t.frozen = true }

// Bound reports whether a resolver is bound for (typeName, fieldName).
func (t *Table) Bound(typeName, fieldName string) bool {
	_, ok := t.resolvers[key{typeName: typeName, field: fieldName}]
	return ok
}

// Resolve invokes the bound resolver for (typeName, fieldName), or the
// fallback strategy when none is bound. The returned value is complete when
// Resolve returns; the engine never observes a partially produced value.
func (t *Table) Resolve(ctx context.Context, typeName, fieldName string, source any, args map[string]any) (any, error) {
	if fn, ok := t.resolvers[key{typeName: typeName, field: fieldName}]; ok {
		return fn(ctx, source, args)
	}
	if t.fallback == nil {
		return nil, nil
	}
	return t.fallback.Resolve(source, fieldName)
}

// ResolveType returns the concrete type name for a value of abstractType.
// Without a bound TypeFunc it falls back to a "__typename" property on the
// value.
func (t *Table) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if fn, ok := t.typeResolvers[abstractType]; ok {
		return fn(ctx, value)
	}
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type for abstract type %q", abstractType)
}
