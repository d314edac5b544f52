package schema

import "fmt"

// DuplicateTypeError reports a second registration under an already-taken name.
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("type %q is already registered", e.Name)
}

// FrozenError reports a registration attempt after Finalize.
type FrozenError struct {
	Name string
}

func (e *FrozenError) Error() string {
	return fmt.Sprintf("schema is finalized; cannot register %q", e.Name)
}

// NotFoundError reports a failed type or field lookup.
type NotFoundError struct {
	Type  string
	Field string
}

func (e *NotFoundError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("type %q not found", e.Type)
	}
	return fmt.Sprintf("field %q not found on type %q", e.Field, e.Type)
}
