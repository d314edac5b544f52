package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aviodev/graphlet/internal/resolver"
)

const testSDL = `
type Query {
  book: Book
  greeting: String
}

type Book {
  title: String!
  author: String
}
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunRequiresCommand(t *testing.T) {
	require.Error(t, run(nil))
	require.Error(t, run([]string{"frobnicate"}))
}

func TestHelpTopics(t *testing.T) {
	require.NoError(t, run([]string{"help"}))
	require.NoError(t, run([]string{"help", "serve"}))
	require.Error(t, run([]string{"help", "nope"}))
}

func TestCheckValidSchema(t *testing.T) {
	path := writeTempFile(t, "schema.graphql", testSDL)
	require.NoError(t, run([]string{"check", "-schema.file", path}))
}

func TestCheckInvalidSchema(t *testing.T) {
	path := writeTempFile(t, "schema.graphql", "type Query {")
	require.Error(t, run([]string{"check", "-schema.file", path}))
}

func TestCheckRequiresSchemaFlag(t *testing.T) {
	require.Error(t, run([]string{"check"}))
}

func TestPrintSDLWritesNormalizedOutput(t *testing.T) {
	in := writeTempFile(t, "schema.graphql", testSDL)
	out := filepath.Join(t.TempDir(), "out.graphql")
	require.NoError(t, run([]string{"print-sdl", "-schema.file", in, "-out", out}))

	rendered, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(rendered), "type Book {")
	require.Contains(t, string(rendered), "title: String!")
}

func TestBindDataDocumentFlatDocument(t *testing.T) {
	reg, err := loadSchema(writeTempFile(t, "schema.graphql", testSDL))
	require.NoError(t, err)
	data := writeTempFile(t, "data.yaml", `
greeting: hello
book:
  title: "1984"
  author: George Orwell
`)

	tbl := resolver.NewTable()
	require.NoError(t, bindDataDocument(reg, tbl, data))
	tbl.Freeze()

	v, err := tbl.Resolve(context.Background(), "Query", "greeting", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	v, err = tbl.Resolve(context.Background(), "Query", "book", nil, nil)
	require.NoError(t, err)
	book, ok := v.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "1984", book["title"])
}

func TestBindDataDocumentRejectsUnknownField(t *testing.T) {
	reg, err := loadSchema(writeTempFile(t, "schema.graphql", testSDL))
	require.NoError(t, err)
	data := writeTempFile(t, "data.yaml", "magazine: nope\n")

	tbl := resolver.NewTable()
	require.Error(t, bindDataDocument(reg, tbl, data))
}

func TestBindDataDocumentSectionedDocument(t *testing.T) {
	reg, err := loadSchema(writeTempFile(t, "schema.graphql", testSDL))
	require.NoError(t, err)
	data := writeTempFile(t, "data.yaml", `
query:
  greeting: hi
`)

	tbl := resolver.NewTable()
	require.NoError(t, bindDataDocument(reg, tbl, data))

	v, err := tbl.Resolve(context.Background(), "Query", "greeting", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "hi", v)
}
