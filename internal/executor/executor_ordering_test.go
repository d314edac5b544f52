package executor

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	resolver "github.com/aviodev/graphlet/internal/resolver"
	schema "github.com/aviodev/graphlet/internal/schema"
)

func scalarTripleRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry("").
		SetQueryType("Query").
		SetMutationType("Mutation").
		MustRegister(
			schema.NewType("Query", schema.TypeKindObject, "").
				AddField(schema.NewField("a", "", schema.NamedType("String"))).
				AddField(schema.NewField("b", "", schema.NamedType("String"))).
				AddField(schema.NewField("c", "", schema.NamedType("String"))),
			schema.NewType("Mutation", schema.TypeKindObject, "").
				AddField(schema.NewField("first", "", schema.NamedType("String"))).
				AddField(schema.NewField("second", "", schema.NamedType("String"))).
				AddField(schema.NewField("third", "", schema.NamedType("String"))),
		)
	reg.Finalize()
	return reg
}

func TestQuerySiblingOutputFollowsDocumentOrder(t *testing.T) {
	reg := scalarTripleRegistry(t)
	// Stagger completion so any order dependence on resolver timing shows up.
	tbl := newTable(t, map[string]resolver.Func{
		"Query.a": func(ctx context.Context, source any, args map[string]any) (any, error) {
			time.Sleep(20 * time.Millisecond)
			return "A", nil
		},
		"Query.b": func(ctx context.Context, source any, args map[string]any) (any, error) {
			time.Sleep(10 * time.Millisecond)
			return "B", nil
		},
		"Query.c": value("C"),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ a b c }"), "", nil, nil)

	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", errorSummaries(resp))
	}
	want := `{"a":"A","b":"B","c":"C"}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
}

func TestMutationRootFieldsRunSerially(t *testing.T) {
	reg := scalarTripleRegistry(t)
	rec := &callRecorder{}
	mk := func(name string, delay time.Duration) resolver.Func {
		return func(ctx context.Context, source any, args map[string]any) (any, error) {
			time.Sleep(delay)
			rec.record("Mutation", name)
			return name, nil
		}
	}
	// The slowest resolver runs first; serial execution keeps it ahead.
	tbl := newTable(t, map[string]resolver.Func{
		"Mutation.first":  mk("first", 30*time.Millisecond),
		"Mutation.second": mk("second", 10*time.Millisecond),
		"Mutation.third":  mk("third", 0),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "mutation { first second third }"), "", nil, nil)

	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", errorSummaries(resp))
	}
	wantCalls := []string{"Mutation.first", "Mutation.second", "Mutation.third"}
	if diff := cmp.Diff(wantCalls, rec.Calls()); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}
	want := `{"first":"first","second":"second","third":"third"}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
}

func TestAliasesProduceDistinctResponseKeys(t *testing.T) {
	reg := bookRegistry(t)
	book := map[string]any{"title": "1984", "author": "George Orwell"}
	tbl := newTable(t, map[string]resolver.Func{"Query.book": value(book)})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ first: book { title } second: book { author } }`), "", nil, nil)

	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", errorSummaries(resp))
	}
	want := `{"first":{"title":"1984"},"second":{"author":"George Orwell"}}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
}

func TestDuplicateFieldSelectionsMerge(t *testing.T) {
	reg := bookRegistry(t)
	book := map[string]any{"title": "1984", "author": "George Orwell"}
	tbl := newTable(t, map[string]resolver.Func{"Query.book": value(book)})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ book { title } book { author } }`), "", nil, nil)

	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", errorSummaries(resp))
	}
	want := `{"book":{"title":"1984","author":"George Orwell"}}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
}

func TestGoroutineLimitStillCompletesAllFields(t *testing.T) {
	reg := scalarTripleRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.a": value("A"),
		"Query.b": value("B"),
		"Query.c": value("C"),
	})
	exec := New(reg, tbl, WithGoroutineLimit(1))

	resp := exec.ExecuteRequest(context.Background(), mustParseQuery(t, "{ a b c }"), "", nil, nil)

	if len(resp.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", errorSummaries(resp))
	}
	want := `{"a":"A","b":"B","c":"C"}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
}
