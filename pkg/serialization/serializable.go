// Package serialization turns MCP domain objects into JSON responses,
// optionally gzip-compressed according to the client's Accept-Encoding.
package serialization

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotSerializable is returned when a value does not implement Serializable.
var ErrNotSerializable = errors.New("value does not implement ToDict")

// Serializable is implemented by every value that can be rendered as a JSON
// object. ToDict must return only JSON-encodable values.
type Serializable interface {
	ToDict() map[string]any
}

// Dict adapts a plain map to Serializable.
type Dict map[string]any

// ToDict returns the map itself.
func (d Dict) ToDict() map[string]any {
	return d
}

// CapabilityError reports a value that lacks the ToDict capability. It is a
// programming error and is never retried.
type CapabilityError struct {
	Type string
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s must implement ToDict() map[string]any", e.Type)
}

// Is makes errors.Is(err, ErrNotSerializable) hold.
func (e *CapabilityError) Is(target error) bool {
	return target == ErrNotSerializable
}

// AsSerializable checks v for the ToDict capability at runtime. Use it where
// values arrive as any; typed call sites should take Serializable directly.
func AsSerializable(v any) (Serializable, error) {
	if s, ok := v.(Serializable); ok && !isNil(s) {
		return s, nil
	}
	return nil, &CapabilityError{Type: fmt.Sprintf("%T", v)}
}

// isNil reports whether s is nil or a typed nil pointer.
func isNil(s Serializable) bool {
	if s == nil {
		return true
	}
	rv := reflect.ValueOf(s)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
