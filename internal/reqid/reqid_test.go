package reqid

import (
	"context"
	"testing"
)

func TestNewContextStoresID(t *testing.T) {
	ctx, id := NewContext(context.Background())
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected id in context")
	}
	if got != id {
		t.Fatalf("got %q want %q", got, id)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no id in fresh context")
	}
}

func TestIDsAreUnique(t *testing.T) {
	_, a := NewContext(context.Background())
	_, b := NewContext(context.Background())
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
}
