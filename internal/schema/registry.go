package schema

// Registry holds the named types, directive definitions and root operation
// type names for one schema. It is mutable during construction and becomes
// immutable after Finalize, at which point it is safe to share across
// concurrent requests without locking.
type Registry struct {
	queryType        string
	mutationType     string
	subscriptionType string
	types            map[string]*Type
	directives       map[string]*Directive
	description      string
	frozen           bool
}

// NewRegistry creates an empty registry pre-populated with the builtin
// scalars and the @include/@skip/@deprecated directive definitions.
func NewRegistry(description string) *Registry {
	r := &Registry{
		types:       make(map[string]*Type),
		directives:  make(map[string]*Directive),
		description: description,
	}
	for _, t := range builtinScalars {
		r.types[t.Name] = t
	}
	for _, d := range builtinDirectives {
		r.directives[d.Name] = d
	}
	return r
}

// SetQueryType designates the root type for query operations.
func (r *Registry) SetQueryType(name string) *Registry { r.queryType = name; return r }

// SetMutationType designates the root type for mutation operations.
func (r *Registry) SetMutationType(name string) *Registry { r.mutationType = name; return r }

// SetSubscriptionType designates the root type for subscription operations.
func (r *Registry) SetSubscriptionType(name string) *Registry { r.subscriptionType = name; return r }

// Register adds a named type. It fails with *DuplicateTypeError when the
// name is taken and with *FrozenError after Finalize.
func (r *Registry) Register(t *Type) error {
	if r.frozen {
		return &FrozenError{Name: t.Name}
	}
	if _, exists := r.types[t.Name]; exists {
		return &DuplicateTypeError{Name: t.Name}
	}
	r.types[t.Name] = t
	return nil
}

// RegisterDirective adds a directive definition under the same rules as Register.
func (r *Registry) RegisterDirective(d *Directive) error {
	if r.frozen {
		return &FrozenError{Name: "@" + d.Name}
	}
	if _, exists := r.directives[d.Name]; exists {
		return &DuplicateTypeError{Name: "@" + d.Name}
	}
	r.directives[d.Name] = d
	return nil
}

// MustRegister is Register for static schema construction; it panics on error.
func (r *Registry) MustRegister(types ...*Type) *Registry {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Finalize freezes the registry. Further Register calls fail with *FrozenError.
func (r *Registry) Finalize() { r.frozen = true }

// Frozen reports whether Finalize has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// Type returns the named type, or nil when absent.
func (r *Registry) Type(name string) *Type { return r.types[name] }

// Directive returns the named directive definition, or nil when absent.
func (r *Registry) Directive(name string) *Directive { return r.directives[name] }

// LookupField returns the field definition for (typeName, fieldName).
// Missing types and missing fields both yield *NotFoundError.
func (r *Registry) LookupField(typeName, fieldName string) (*Field, error) {
	t := r.types[typeName]
	if t == nil {
		return nil, &NotFoundError{Type: typeName}
	}
	f := t.Field(fieldName)
	if f == nil {
		return nil, &NotFoundError{Type: typeName, Field: fieldName}
	}
	return f, nil
}

// QueryType returns the root query type (nil if absent).
func (r *Registry) QueryType() *Type { return r.types[r.queryType] }

// MutationType returns the root mutation type (nil if absent).
func (r *Registry) MutationType() *Type { return r.types[r.mutationType] }

// SubscriptionType returns the root subscription type (nil if absent).
func (r *Registry) SubscriptionType() *Type { return r.types[r.subscriptionType] }

// Description returns the schema description.
func (r *Registry) Description() string { return r.description }

// TypeNames returns the names of all registered types in map order.
func (r *Registry) TypeNames() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	return out
}

// Directives returns all directive definitions in map order.
func (r *Registry) Directives() []*Directive {
	out := make([]*Directive, 0, len(r.directives))
	for _, d := range r.directives {
		out = append(out, d)
	}
	return out
}

// Clone returns an unfrozen shallow copy sharing the type definitions.
// The introspection layer uses it to graft meta types onto a user schema.
func (r *Registry) Clone() *Registry {
	out := &Registry{
		queryType:        r.queryType,
		mutationType:     r.mutationType,
		subscriptionType: r.subscriptionType,
		types:            make(map[string]*Type, len(r.types)),
		directives:       make(map[string]*Directive, len(r.directives)),
		description:      r.description,
	}
	for name, t := range r.types {
		out.types[name] = t
	}
	for name, d := range r.directives {
		out.directives[name] = d
	}
	return out
}

// ReplaceType swaps a type definition in place, ignoring the frozen flag.
// It is restricted to construction-time composition such as introspection
// grafting onto a cloned registry.
func (r *Registry) ReplaceType(t *Type) { r.types[t.Name] = t }
