package executor

import (
	"testing"

	schema "github.com/aviodev/graphlet/internal/schema"
)

func TestSerializeEnumRejectsUnknownMember(t *testing.T) {
	enum := schema.NewType("Format", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("HARDCOVER", "")).
		AddEnumValue(schema.NewEnumValue("PAPERBACK", ""))

	v, err := serializeLeaf(enum, "PAPERBACK")
	if err != nil {
		t.Fatal(err)
	}
	if v != "PAPERBACK" {
		t.Fatalf("got %v", v)
	}

	if _, err := serializeLeaf(enum, "VINYL"); err == nil {
		t.Fatal("expected error for unknown enum member")
	}
	if _, err := serializeLeaf(enum, 3); err == nil {
		t.Fatal("expected error for non-string enum value")
	}
}

func TestSerializeIDCoercesInts(t *testing.T) {
	id := schema.NewType("ID", schema.TypeKindScalar, "")
	v, err := serializeLeaf(id, 42)
	if err != nil {
		t.Fatal(err)
	}
	if v != "42" {
		t.Fatalf("got %v", v)
	}
}

func TestSerializeDereferencesPointers(t *testing.T) {
	str := schema.NewType("String", schema.TypeKindScalar, "")
	s := "hello"
	v, err := serializeLeaf(str, &s)
	if err != nil {
		t.Fatal(err)
	}
	if v != "hello" {
		t.Fatalf("got %v", v)
	}

	var nilp *string
	v, err = serializeLeaf(str, nilp)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("got %v want nil", v)
	}
}

func TestSerializeNamedStringType(t *testing.T) {
	type kind string
	str := schema.NewType("String", schema.TypeKindScalar, "")
	v, err := serializeLeaf(str, kind("OBJECT"))
	if err != nil {
		t.Fatal(err)
	}
	if v != "OBJECT" {
		t.Fatalf("got %v", v)
	}
}

func TestSerializeIntRejectsFractional(t *testing.T) {
	intType := schema.NewType("Int", schema.TypeKindScalar, "")
	if _, err := serializeLeaf(intType, 1.5); err == nil {
		t.Fatal("expected error for fractional Int")
	}
	v, err := serializeLeaf(intType, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Fatalf("got %v", v)
	}
}
