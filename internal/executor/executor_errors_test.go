package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	resolver "github.com/aviodev/graphlet/internal/resolver"
	schema "github.com/aviodev/graphlet/internal/schema"
)

func TestNullableFieldErrorIsIsolated(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.book":  value(map[string]any{"title": "1984"}),
		"Book.author": failing(errors.New("author service unavailable")),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ book { title author } }`), "", nil, nil)

	want := `{"book":{"title":"1984","author":null}}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
	wantErrs := []string{"author service unavailable @ book.author"}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNonNullFieldErrorPropagatesToNullableAncestor(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.book": value(map[string]any{"author": "George Orwell"}),
		"Book.title": failing(errors.New("title lookup failed")),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ book { title author } }`), "", nil, nil)

	// Book.title is non-nullable, so the whole book object becomes null.
	want := `{"book":null}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
	wantErrs := []string{"title lookup failed @ book.title"}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNonNullNullWithoutErrorGetsSyntheticError(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.book": value(map[string]any{"author": "George Orwell"}),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ book { title } }`), "", nil, nil)

	want := `{"book":null}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
	wantErrs := []string{"Cannot return null for non-nullable field book.title @ book.title"}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNonNullRootFieldErrorNullsData(t *testing.T) {
	reg := schema.NewRegistry("").
		SetQueryType("Query").
		MustRegister(
			schema.NewType("Query", schema.TypeKindObject, "").
				AddField(schema.NewField("required", "", schema.NonNullType(schema.NamedType("String")))).
				AddField(schema.NewField("optional", "", schema.NamedType("String"))),
		)
	reg.Finalize()
	tbl := newTable(t, map[string]resolver.Func{
		"Query.required": failing(errors.New("boom")),
		"Query.optional": value("ok"),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ required optional }`), "", nil, nil)

	if resp.Data != nil {
		t.Fatalf("expected null data, got %s", dataJSON(t, resp))
	}
	wantErrs := []string{"boom @ required"}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSiblingErrorsReportedInDocumentOrder(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.book":  value(map[string]any{"title": "1984"}),
		"Book.author": failing(errors.New("author failed")),
		"Book.year":   failing(errors.New("year failed")),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ book { author year title } }`), "", nil, nil)

	want := `{"book":{"author":null,"year":null,"title":"1984"}}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
	wantErrs := []string{"author failed @ book.author", "year failed @ book.year"}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFieldIsOmittedWithValidationError(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.book": value(map[string]any{"title": "1984"}),
	})
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `{ book { title isbn } }`), "", nil, nil)

	want := `{"book":{"title":"1984"}}`
	if got := dataJSON(t, resp); got != want {
		t.Fatalf("data mismatch:\ngot  %s\nwant %s", got, want)
	}
	wantErrs := []string{`Cannot query field "isbn" on type "Book" @ book.isbn`}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownOperationName(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, nil)
	exec := New(reg, tbl)

	resp := exec.ExecuteRequest(context.Background(),
		mustParseQuery(t, `query A { book { title } }`), "B", nil, nil)

	if resp.Data != nil {
		t.Fatal("expected null data")
	}
	wantErrs := []string{"operation not found"}
	if diff := cmp.Diff(wantErrs, errorSummaries(resp)); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCancelledContextAbortsExecution(t *testing.T) {
	reg := bookRegistry(t)
	tbl := newTable(t, map[string]resolver.Func{
		"Query.book": value(map[string]any{"title": "1984"}),
	})
	exec := New(reg, tbl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := exec.ExecuteRequest(ctx, mustParseQuery(t, `{ book { title } }`), "", nil, nil)

	if len(resp.Errors) == 0 {
		t.Fatal("expected abort errors")
	}
	for _, e := range resp.Errors {
		if e.Message == "" {
			t.Fatal("expected error messages")
		}
	}
}
