package executor

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	language "github.com/aviodev/graphlet/internal/language"
	resolver "github.com/aviodev/graphlet/internal/resolver"
	schema "github.com/aviodev/graphlet/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// dataJSON renders the response data tree, which preserves document order.
func dataJSON(t *testing.T, resp *Response) string {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	return string(b)
}

// errorSummaries flattens response errors to "message @ path" strings,
// dropping source locations so expectations stay readable.
func errorSummaries(resp *Response) []string {
	out := make([]string, len(resp.Errors))
	for i, e := range resp.Errors {
		s := e.Message
		if len(e.Path) > 0 {
			s += " @ " + pathString(e.Path)
		}
		out[i] = s
	}
	return out
}

// callRecorder tracks resolver invocation order across goroutines.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(objectType, field string) {
	r.mu.Lock()
	r.calls = append(r.calls, objectType+"."+field)
	r.mu.Unlock()
}

func (r *callRecorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// value returns a resolver that yields a fixed value.
func value(v any) resolver.Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return v, nil
	}
}

// failing returns a resolver that always errors.
func failing(err error) resolver.Func {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// bookRegistry builds the schema used across the error-handling tests:
// a Query.book object with a non-nullable title.
func bookRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry("").
		SetQueryType("Query").
		MustRegister(
			schema.NewType("Query", schema.TypeKindObject, "").
				AddField(schema.NewField("book", "", schema.NamedType("Book"))).
				AddField(schema.NewField("books", "", schema.ListType(schema.NamedType("Book")))),
			schema.NewType("Book", schema.TypeKindObject, "").
				AddField(schema.NewField("title", "", schema.NonNullType(schema.NamedType("String")))).
				AddField(schema.NewField("author", "", schema.NamedType("String"))).
				AddField(schema.NewField("year", "", schema.NamedType("Int"))),
		)
	reg.Finalize()
	return reg
}

// newTable builds a frozen table from (Type.field -> resolver) bindings.
func newTable(t *testing.T, bindings map[string]resolver.Func) *resolver.Table {
	t.Helper()
	tbl := resolver.NewTable()
	for key, fn := range bindings {
		typeName, fieldName, ok := splitKey(key)
		if !ok {
			t.Fatalf("invalid binding key %q", key)
		}
		tbl.MustBind(typeName, fieldName, fn)
	}
	tbl.Freeze()
	return tbl
}

func splitKey(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
