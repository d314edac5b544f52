package executor

import (
	"bytes"
	"encoding/json"
)

// Path locates a field in the response tree: field names or aliases as
// strings, list indices as ints, ordered from the root.
type Path []any

// Location is a position in the source query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is one entry in the response error list.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// Response is the result of executing one operation. Data is null when the
// operation failed entirely or a non-nullable root field resolved to null.
type Response struct {
	Data   *ResultMap `json:"data"`
	Errors []*Error   `json:"errors,omitempty"`
}

// ResultMap is an insertion-ordered object value. Response keys always
// follow document order regardless of the completion order of concurrently
// resolved fields, so encoding cannot go through a plain Go map.
type ResultMap struct {
	keys   []string
	values map[string]any
}

func NewResultMap() *ResultMap {
	return &ResultMap{values: make(map[string]any)}
}

// Set stores value under key, keeping the position of an existing key.
func (m *ResultMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *ResultMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of keys.
func (m *ResultMap) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order.
func (m *ResultMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// MarshalJSON encodes the object with keys in insertion order.
func (m *ResultMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
