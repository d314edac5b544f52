package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const librarySDL = `
type Query {
  book(id: ID!): Book
  books(limit: Int = 10): [Book!]
}

type Mutation {
  addBook(input: BookInput!): Book
}

type Book implements Node {
  id: ID!
  title: String!
  author: String
  format: Format @deprecated(reason: "Use editions instead")
}

interface Node {
  id: ID!
}

union SearchResult = Book | Shelf

type Shelf implements Node {
  id: ID!
  label: String
}

enum Format {
  HARDCOVER
  PAPERBACK
  AUDIO @deprecated
}

input BookInput {
  title: String!
  author: String
}
`

func TestBuildFromSDL(t *testing.T) {
	reg, err := BuildFromSDL("library.graphql", librarySDL)
	require.NoError(t, err)
	require.True(t, reg.Frozen())

	require.Equal(t, "Query", reg.QueryType().Name)
	require.Equal(t, "Mutation", reg.MutationType().Name)
	require.Nil(t, reg.SubscriptionType())

	book := reg.Type("Book")
	require.NotNil(t, book)
	require.Equal(t, TypeKindObject, book.Kind)
	require.Equal(t, []string{"Node"}, book.Interfaces)
	require.Equal(t, "String!", book.Field("title").Type.String())

	format := book.Field("format")
	require.True(t, format.IsDeprecated)
	require.Equal(t, "Use editions instead", format.DeprecationReason)

	union := reg.Type("SearchResult")
	require.Equal(t, TypeKindUnion, union.Kind)
	require.Equal(t, []string{"Book", "Shelf"}, union.PossibleTypes)

	enum := reg.Type("Format")
	require.Equal(t, TypeKindEnum, enum.Kind)
	require.Len(t, enum.EnumValues, 3)
	require.True(t, enum.EnumValues[2].IsDeprecated)
	require.Equal(t, "No longer supported", enum.EnumValues[2].DeprecationReason)

	input := reg.Type("BookInput")
	require.Equal(t, TypeKindInputObject, input.Kind)
	require.Len(t, input.InputFields, 2)

	booksField := reg.QueryType().Field("books")
	require.Equal(t, "[Book!]", booksField.Type.String())
	require.Equal(t, 10, booksField.Argument("limit").DefaultValue)
}

func TestBuildFromSDLSchemaBlockRootTypes(t *testing.T) {
	reg, err := BuildFromSDL("custom.graphql", `
		schema { query: Root }
		type Root { ping: String }
	`)
	require.NoError(t, err)
	require.Equal(t, "Root", reg.QueryType().Name)
	require.Nil(t, reg.MutationType())
}

func TestBuildFromSDLSyntaxError(t *testing.T) {
	_, err := BuildFromSDL("bad.graphql", `type Query {`)
	require.Error(t, err)
}

func TestRenderRoundTrip(t *testing.T) {
	reg, err := BuildFromSDL("library.graphql", librarySDL)
	require.NoError(t, err)

	// Render, rebuild, render again: output must be a fixed point.
	first := Render(reg)
	reg2, err := BuildFromSDL("rendered.graphql", first)
	require.NoError(t, err)
	second := Render(reg2)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("render round-trip mismatch (-first +second):\n%s", diff)
	}
}

func TestRenderOmitsBuiltins(t *testing.T) {
	reg := NewRegistry("").
		SetQueryType("Query").
		MustRegister(NewType("Query", TypeKindObject, "").
			AddField(NewField("ping", "", NamedType("String"))))
	reg.Finalize()

	want := "type Query {\n  ping: String\n}\n"
	require.Equal(t, want, Render(reg))
}
