package executor

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"

	eventbus "github.com/aviodev/graphlet/internal/eventbus"
	events "github.com/aviodev/graphlet/internal/events"
	language "github.com/aviodev/graphlet/internal/language"
	resolver "github.com/aviodev/graphlet/internal/resolver"
	schema "github.com/aviodev/graphlet/internal/schema"
)

// Executor walks a parsed query document against a schema registry and a
// resolver table, producing a response tree plus a list of errors.
type Executor struct {
	registry *schema.Registry
	table    *resolver.Table
	limit    int
}

// Option configures an Executor.
type Option func(*Executor)

// WithGoroutineLimit caps the number of sibling fields resolved
// concurrently at each level of a query operation. 0 means no cap.
func WithGoroutineLimit(n int) Option {
	return func(e *Executor) { e.limit = n }
}

// New creates an Executor over the given registry and table. Both must be
// fully constructed; they are shared read-only across concurrent requests.
func New(registry *schema.Registry, table *resolver.Table, opts ...Option) *Executor {
	e := &Executor{registry: registry, table: table}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// executionState is the read-only per-request context shared by every field
// resolution of one operation. It is created when the request arrives and
// discarded with the response.
type executionState struct {
	ctx       context.Context
	registry  *schema.Registry
	table     *resolver.Table
	document  *language.QueryDocument
	variables map[string]any
	limit     int
}

// branch collects the errors of one independent unit of work. Each sibling
// field resolves into its own branch, so concurrent siblings never share
// error state; parents merge child branches in document order.
type branch struct {
	errors []*Error
}

func (b *branch) addError(message string, path Path, pos *language.Position) {
	e := &Error{Message: message, Path: path}
	if pos != nil {
		e.Locations = []Location{{Line: pos.Line, Column: pos.Column}}
	}
	b.errors = append(b.errors, e)
}

func (b *branch) hasErrorAt(path Path) bool {
	for _, err := range b.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// ExecuteRequest executes one operation from document. Mutation root fields
// run strictly in document order; query fields at each level may resolve
// concurrently. Response key order and error order always follow document
// order.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	rootValue any,
) *Response {
	operation := operationForName(document, operationName)
	if operation == nil {
		return &Response{Errors: []*Error{{Message: "operation not found"}}}
	}

	variables, err := coerceVariableValues(e.registry, operation, variableValues)
	if err != nil {
		return &Response{Errors: []*Error{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.registry.QueryType()
	case language.Mutation:
		rootType = e.registry.MutationType()
	case language.Subscription:
		rootType = e.registry.SubscriptionType()
	default:
		return &Response{Errors: []*Error{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &Response{Errors: []*Error{{Message: fmt.Sprintf("schema does not define a root type for %s operations", operation.Operation)}}}
	}

	state := &executionState{
		ctx:       ctx,
		registry:  e.registry,
		table:     e.table,
		document:  document,
		variables: variables,
		limit:     e.limit,
	}

	br := &branch{}
	serial := operation.Operation == language.Mutation
	data, ok := executeSelectionSet(state, br, rootType, operation.SelectionSet, rootValue, nil, serial)

	resp := &Response{Errors: br.errors}
	if ok {
		resp.Data = data
	}
	return resp
}

// fieldSlot carries one collected field through resolution and back into
// document-order assembly.
type fieldSlot struct {
	cf       collectedField
	branch   *branch
	fieldDef *schema.Field
	value    any
	omit     bool
}

// executeSelectionSet resolves one level of the selection tree. The second
// return value is false when a non-nullable field resolved to null, telling
// the caller to propagate null upward.
func executeSelectionSet(
	state *executionState,
	br *branch,
	objectType *schema.Type,
	selectionSet language.SelectionSet,
	source any,
	path Path,
	serial bool,
) (*ResultMap, bool) {
	grouped := collectFields(state, objectType, selectionSet)

	slots := make([]*fieldSlot, len(grouped))
	for i, cf := range grouped {
		slots[i] = &fieldSlot{cf: cf, branch: &branch{}}
	}

	run := func(s *fieldSlot) {
		fieldPath := appendPath(path, s.cf.ResponseName)
		s.value, s.fieldDef, s.omit = executeField(state, s.branch, objectType, source, s.cf.Fields, fieldPath)
	}

	if serial || len(slots) <= 1 {
		// Mutation root fields: each completes, subtree included, before
		// the next resolver starts.
		for _, s := range slots {
			run(s)
		}
	} else {
		g := new(errgroup.Group)
		if state.limit > 0 {
			g.SetLimit(state.limit)
		}
		for _, s := range slots {
			s := s
			g.Go(func() error {
				run(s)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := NewResultMap()
	ok := true
	for _, s := range slots {
		br.errors = append(br.errors, s.branch.errors...)
		if s.omit {
			continue
		}
		if s.fieldDef != nil && schema.IsNonNull(s.fieldDef.Type) && isNullish(s.value) {
			// Keep merging sibling errors, then hand null to the parent.
			ok = false
			continue
		}
		if isNullish(s.value) {
			result.Set(s.cf.ResponseName, nil)
		} else {
			result.Set(s.cf.ResponseName, s.value)
		}
	}
	if !ok {
		return nil, false
	}
	return result, true
}

// executeField resolves one collected field group. omit is true when the
// field must not appear in the result at all (unknown field).
func executeField(
	state *executionState,
	br *branch,
	objectType *schema.Type,
	source any,
	fields []*language.Field,
	path Path,
) (value any, fieldDef *schema.Field, omit bool) {
	field := fields[0]

	if field.Name == "__typename" {
		return objectType.Name, nil, false
	}

	fieldDef, err := state.registry.LookupField(objectType.Name, field.Name)
	if err != nil {
		br.addError(fmt.Sprintf("Cannot query field %q on type %q", field.Name, objectType.Name), path, field.Position)
		return nil, nil, true
	}

	args := coerceArgumentValues(fieldDef, field.Arguments, state.variables, br, path)

	// A cancelled request stops launching resolvers; in-flight ones finish
	// but the transport discards the whole response.
	if ctxErr := state.ctx.Err(); ctxErr != nil {
		br.addError(fmt.Sprintf("operation aborted: %s", ctxErr), path, field.Position)
		return nil, fieldDef, false
	}

	resolved := resolveField(state, br, objectType.Name, field.Name, source, args, path, field.Position)
	completed := completeValue(state, br, fieldDef.Type, fields, resolved, path)
	return completed, fieldDef, false
}

// resolveField dispatches to the resolver table and converts a failure into
// an error on this field's branch.
func resolveField(
	state *executionState,
	br *branch,
	typeName, fieldName string,
	source any,
	args map[string]any,
	path Path,
	pos *language.Position,
) any {
	eventbus.Publish(state.ctx, events.ResolveStart{ObjectType: typeName, Field: fieldName})
	start := time.Now()
	value, err := state.table.Resolve(state.ctx, typeName, fieldName, source, args)
	eventbus.Publish(state.ctx, events.ResolveFinish{
		ObjectType: typeName,
		Field:      fieldName,
		Err:        err,
		Duration:   time.Since(start),
	})
	if err != nil {
		br.addError(err.Error(), path, pos)
		return nil
	}
	return value
}

// completeValue turns a raw resolver result into a response value according
// to the field's declared type.
func completeValue(state *executionState, br *branch, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !br.hasErrorAt(path) {
				br.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", pathString(path)), path, fields[0].Position)
			}
			return nil
		}
		completed := completeValue(state, br, schema.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded at this path; propagate only.
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, br, fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := state.registry.Type(namedType)
	if typeObj == nil {
		br.addError(fmt.Sprintf("Unknown type: %s", namedType), path, nil)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := serializeLeaf(typeObj, result)
		if err != nil {
			br.addError(err.Error(), path, nil)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		return completeObjectValue(state, br, typeObj, fields, result, path)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, br, typeObj, fields, result, path)
	default:
		br.addError(fmt.Sprintf("Cannot complete value of unexpected type kind: %s", typeObj.Kind), path, nil)
		return nil
	}
}

// completeListValue requires the resolver result to be an ordered sequence.
// A failure in one element nullifies only that element unless the element
// type is non-nullable, in which case the whole list becomes null.
func completeListValue(state *executionState, br *branch, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			br.addError(fmt.Sprintf("Expected a list for field %s, got %T", pathString(path), result), path, fields[0].Position)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		v := completeValue(state, br, inner, fields, item, p)
		if schema.IsNonNull(inner) && isNullish(v) {
			// Error already recorded by the inner completion.
			return nil
		}
		if isNullish(v) {
			completed[i] = nil
		} else {
			completed[i] = v
		}
	}
	return completed
}

func completeObjectValue(state *executionState, br *branch, objectType *schema.Type, fields []*language.Field, result any, path Path) any {
	sub := mergeSelectionSets(fields)
	if len(sub) == 0 {
		br.addError(fmt.Sprintf("Field %s of type %s must have a selection of subfields", pathString(path), objectType.Name), path, fields[0].Position)
		return nil
	}
	m, ok := executeSelectionSet(state, br, objectType, sub, result, path, false)
	if !ok {
		return nil
	}
	return m
}

func completeAbstractValue(state *executionState, br *branch, abstractType *schema.Type, fields []*language.Field, result any, path Path) any {
	typeName, err := state.table.ResolveType(state.ctx, abstractType.Name, result)
	if err != nil {
		br.addError(err.Error(), path, nil)
		return nil
	}
	objectType := state.registry.Type(typeName)
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		br.addError(fmt.Sprintf("Abstract type %s must resolve to an object type, got %q", abstractType.Name, typeName), path, nil)
		return nil
	}
	return completeObjectValue(state, br, objectType, fields, result, path)
}

// operationForName retrieves the requested operation from the document. An
// empty name selects the document's only operation.
func operationForName(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

// mergeSelectionSets merges the sub-selections of a collected field group.
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func appendPath(path Path, elem any) Path {
	out := make(Path, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

func pathString(path Path) string {
	result := ""
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				result += "."
			}
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

// isNullish reports nil interfaces and typed nils (pointer, map, slice...).
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
