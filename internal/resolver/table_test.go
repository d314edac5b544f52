package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBindAndResolve(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Bind("Query", "book", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return map[string]any{"title": "1984"}, nil
	}))
	tbl.Freeze()

	require.True(t, tbl.Bound("Query", "book"))
	require.False(t, tbl.Bound("Query", "books"))

	v, err := tbl.Resolve(context.Background(), "Query", "book", nil, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"title": "1984"}, v)
}

func TestBindRejectsDuplicates(t *testing.T) {
	tbl := NewTable()
	fn := func(ctx context.Context, source any, args map[string]any) (any, error) { return nil, nil }
	require.NoError(t, tbl.Bind("Query", "book", fn))

	err := tbl.Bind("Query", "book", fn)
	var dup *DuplicateResolverError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "Query", dup.Type)
	require.Equal(t, "book", dup.Field)
}

func TestBindAfterFreezeFails(t *testing.T) {
	tbl := NewTable()
	tbl.Freeze()

	err := tbl.Bind("Query", "book", func(ctx context.Context, source any, args map[string]any) (any, error) { return nil, nil })
	var frozen *FrozenError
	require.ErrorAs(t, err, &frozen)
}

func TestBoundResolverTakesPrecedenceOverFallback(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Bind("Book", "title", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return "from resolver", nil
	}))
	tbl.Freeze()

	source := map[string]any{"title": "from property"}
	v, err := tbl.Resolve(context.Background(), "Book", "title", source, nil)
	require.NoError(t, err)
	require.Equal(t, "from resolver", v)
}

func TestUnboundFieldUsesPropertyFallback(t *testing.T) {
	tbl := NewTable()
	tbl.Freeze()

	source := map[string]any{"title": "1984"}
	v, err := tbl.Resolve(context.Background(), "Book", "title", source, nil)
	require.NoError(t, err)
	require.Equal(t, "1984", v)
}

func TestNilFallbackResolvesNull(t *testing.T) {
	tbl := NewTable().SetFallback(nil)
	tbl.Freeze()

	v, err := tbl.Resolve(context.Background(), "Book", "title", map[string]any{"title": "1984"}, nil)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestResolverErrorsPassThrough(t *testing.T) {
	tbl := NewTable()
	boom := errors.New("boom")
	require.NoError(t, tbl.Bind("Query", "fail", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, boom
	}))
	tbl.Freeze()

	_, err := tbl.Resolve(context.Background(), "Query", "fail", nil, nil)
	require.ErrorIs(t, err, boom)
}

func TestResolveTypeFromBoundFunc(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.BindType("Node", func(ctx context.Context, v any) (string, error) {
		return "Person", nil
	}))
	tbl.Freeze()

	name, err := tbl.ResolveType(context.Background(), "Node", struct{}{})
	require.NoError(t, err)
	require.Equal(t, "Person", name)
}

func TestResolveTypeFromTypenameProperty(t *testing.T) {
	tbl := NewTable()
	tbl.Freeze()

	name, err := tbl.ResolveType(context.Background(), "Node", map[string]any{"__typename": "Photo"})
	require.NoError(t, err)
	require.Equal(t, "Photo", name)

	_, err = tbl.ResolveType(context.Background(), "Node", map[string]any{})
	require.Error(t, err)
}
