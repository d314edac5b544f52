package executor

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResultMapPreservesInsertionOrder(t *testing.T) {
	m := NewResultMap()
	m.Set("zebra", 1)
	m.Set("apple", 2)
	m.Set("mango", 3)

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"zebra":1,"apple":2,"mango":3}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
	if diff := cmp.Diff([]string{"zebra", "apple", "mango"}, m.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestResultMapSetKeepsPositionOnOverwrite(t *testing.T) {
	m := NewResultMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	b, _ := json.Marshal(m)
	want := `{"a":3,"b":2}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
	if m.Len() != 2 {
		t.Fatalf("got len %d want 2", m.Len())
	}
}

func TestResponseMarshalsNullData(t *testing.T) {
	resp := &Response{Errors: []*Error{{Message: "boom", Path: Path{"book", "title"}}}}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"data":null,"errors":[{"message":"boom","path":["book","title"]}]}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestNestedResultMapMarshal(t *testing.T) {
	inner := NewResultMap()
	inner.Set("title", "1984")
	outer := NewResultMap()
	outer.Set("book", inner)

	b, _ := json.Marshal(&Response{Data: outer})
	want := `{"data":{"book":{"title":"1984"}}}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}
